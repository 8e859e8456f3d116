package gen

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/kodgen"
	"github.com/syssam/kodgen/entity"
)

func TestUnitBaseModules(t *testing.T) {
	u, err := NewUnitBase(".kg.h", WithOutputDir(t.TempDir()))
	require.NoError(t, err)

	late := NewModule("late")
	late.Order = 10
	first := NewModule("first")
	second := NewModule("second")
	u.AddModule(late)
	u.AddModule(first)
	u.AddModule(second)

	names := func() []string {
		var out []string
		for _, m := range u.Modules() {
			out = append(out, m.Name)
		}
		return out
	}
	assert.Equal(t, []string{"first", "second", "late"}, names())
	assert.True(t, u.RemoveModule(first))
	assert.False(t, u.RemoveModule(first))
	assert.Equal(t, []string{"second", "late"}, names())

	lowest := NewModule("lowest")
	lowest.Order = math.MinInt
	highest := NewModule("highest")
	highest.Order = math.MaxInt
	u.AddModule(highest)
	u.AddModule(lowest)
	assert.Equal(t, []string{"lowest", "second", "late", "highest"}, names())
}

func TestUnitBaseRunModules(t *testing.T) {
	u, err := NewUnitBase(".kg.h", WithOutputDir(t.TempDir()))
	require.NoError(t, err)
	bad := newEcho("bad", "A")
	bad.fail = true
	u.AddModule(NewModule("one", newEcho("1", "A")))
	u.AddModule(NewModule("two", bad))
	u.AddModule(NewModule("three", newEcho("3", "A")))

	res, e := testEntity(t, "A")
	var out strings.Builder
	err = u.RunModules(e, NewBaseEnv(res, nil), &out)
	require.Error(t, err)
	assert.Equal(t, "1:A;", out.String())
}

func TestUnitBaseCheckSettings(t *testing.T) {
	t.Run("CreatesDir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		u, err := NewUnitBase(".kg.h", WithOutputDir(dir))
		require.NoError(t, err)
		require.NoError(t, u.CheckSettings())
		assert.DirExists(t, dir)
	})

	t.Run("FileInTheWay", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(path, nil, 0o644))
		u, err := NewUnitBase(".kg.h", WithOutputDir(path))
		require.NoError(t, err)
		err = u.CheckSettings()
		require.Error(t, err)
		assert.True(t, kodgen.IsSetupError(err))
	})

	t.Run("Uncreatable", func(t *testing.T) {
		parent := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(parent, nil, 0o644))
		u, err := NewUnitBase(".kg.h", WithOutputDir(filepath.Join(parent, "out")))
		require.NoError(t, err)
		assert.True(t, kodgen.IsSetupError(u.CheckSettings()))
	})

	t.Run("MissingOutputDir", func(t *testing.T) {
		u, err := NewUnitBase(".kg.h")
		require.NoError(t, err)
		assert.True(t, kodgen.IsSetupError(u.CheckSettings()))
	})
}

func TestUnitBaseUpToDate(t *testing.T) {
	src := filepath.Join(t.TempDir(), "player.h")
	require.NoError(t, os.WriteFile(src, []byte("class Player {};"), 0o644))
	out := t.TempDir()
	u, err := NewUnitBase(".kg.h", WithOutputDir(out))
	require.NoError(t, err)

	gen := u.GeneratedPath(src)
	assert.Equal(t, filepath.Join(out, "player.kg.h"), gen)
	assert.False(t, u.IsUpToDate(src), "missing output")

	require.NoError(t, os.WriteFile(gen, nil, 0o644))
	now := time.Now()
	require.NoError(t, os.Chtimes(src, now, now))
	require.NoError(t, os.Chtimes(gen, now, now))
	assert.False(t, u.IsUpToDate(src), "equal times are stale")

	require.NoError(t, os.Chtimes(gen, now.Add(time.Second), now.Add(time.Second)))
	assert.True(t, u.IsUpToDate(src))

	require.NoError(t, os.Chtimes(src, now.Add(2*time.Second), now.Add(2*time.Second)))
	assert.False(t, u.IsUpToDate(src))
}

func TestUnitBaseRun(t *testing.T) {
	u, err := NewUnitBase(".kg.h", WithOutputDir(t.TempDir()))
	require.NoError(t, err)
	var calls []string
	u.Use(func(next Generator) Generator {
		return GenerateFunc(func(ctx context.Context, res *entity.ParsingResult) error {
			calls = append(calls, "pre:"+res.File)
			err := next.Generate(ctx, res)
			calls = append(calls, "post")
			return err
		})
	})
	boom := errors.New("boom")
	err = u.Run(context.Background(), entity.NewParsingResult("a.h"), func(context.Context, *entity.ParsingResult) error {
		calls = append(calls, "core")
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"pre:a.h", "core", "post"}, calls)

	err = u.Run(context.Background(), nil, nil)
	assert.True(t, kodgen.IsInternalError(err))
}

func TestUnitBaseClone(t *testing.T) {
	u, err := NewUnitBase(".kg.h", WithOutputDir("out"))
	require.NoError(t, err)
	m := NewModule("m")
	u.AddModule(m)

	c := u.CloneBase()
	c.Config().OutputDir = "other"
	c.AddModule(NewModule("extra"))
	c.Use(func(next Generator) Generator { return next })

	assert.Equal(t, "out", u.Config().OutputDir)
	assert.Len(t, u.Modules(), 1)
	assert.Empty(t, u.Config().Hooks)
	assert.Same(t, m, c.Modules()[0], "modules are shared")
}

func TestBanner(t *testing.T) {
	assert.Equal(t, "// a\n// b\n", Banner("//", "a\nb"))
	assert.Empty(t, Banner("//", ""))
}

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()

	t.Run("Write", func(t *testing.T) {
		w := &FileWriter{}
		path := filepath.Join(dir, "sub", "a.kg.h")
		require.NoError(t, w.Write(path, []byte("hello")))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
		m := w.Metrics()
		assert.Equal(t, 1, m.FilesWritten)
		assert.Equal(t, int64(5), m.TotalBytes)
	})

	t.Run("Format", func(t *testing.T) {
		w := &FileWriter{Format: func(_ string, src []byte) ([]byte, error) {
			return []byte(strings.ToUpper(string(src))), nil
		}}
		path := filepath.Join(dir, "b.kg.h")
		require.NoError(t, w.Write(path, []byte("hello")))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "HELLO", string(data))
	})

	t.Run("FormatError", func(t *testing.T) {
		w := &FileWriter{Format: func(string, []byte) ([]byte, error) {
			return nil, errors.New("syntax error")
		}}
		path := filepath.Join(dir, "c.kg.go")
		err := w.Write(path, []byte("package"))
		require.Error(t, err)
		assert.NoFileExists(t, path)
		assert.FileExists(t, path+".error")
		assert.Equal(t, 0, w.Metrics().FilesWritten)
	})
}
