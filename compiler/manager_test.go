package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/kodgen"
	"github.com/syssam/kodgen/compiler/gen"
	"github.com/syssam/kodgen/compiler/gen/builtin"
	"github.com/syssam/kodgen/compiler/gen/macro"
	"github.com/syssam/kodgen/compiler/parse"
	"github.com/syssam/kodgen/entity"
	"github.com/syssam/kodgen/property"
)

// writeSources writes files into dir and backdates them so that outputs
// written during the test are always newer.
func writeSources(t *testing.T, dir string, files map[string]string) map[string]string {
	t.Helper()
	paths := make(map[string]string, len(files))
	past := time.Now().Add(-time.Hour)
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		require.NoError(t, os.Chtimes(path, past, past))
		paths[name] = path
	}
	return paths
}

func newPipeline(t *testing.T, outDir string) (parse.Parser, *macro.Unit) {
	t.Helper()
	reg := property.NewRegistry()
	u, err := macro.NewUnit(gen.WithOutputDir(outDir))
	require.NoError(t, err)
	_, err = builtin.Register(reg, u)
	require.NoError(t, err)
	return parse.NewHeaderParser(reg), u
}

func TestManagerScenario(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	paths := writeSources(t, src, map[string]string{
		"A.h": "namespace a { int x; }\n",
		"B.h": "class KGClass() B\n{\n\tKGField(Get, Set) int hp;\n};\n",
		"C.h": "class KGClass(Unknown) C {};\n",
	})
	all := []string{paths["A.h"], paths["B.h"], paths["C.h"]}
	parser, unit := newPipeline(t, out)
	m := NewManager(ManagerSettings{Directories: []string{src}})

	first := m.Run(context.Background(), parser, unit, WithForceRegenerate(true))
	assert.True(t, first.Completed)
	assert.False(t, first.Success())
	assert.Equal(t, all, first.Generated)
	assert.Empty(t, first.UpToDate)
	require.Len(t, first.Errors, 1)
	assert.Equal(t, paths["C.h"], first.Errors[0].File)
	var perr *property.Error
	require.ErrorAs(t, first.Errors[0].Err, &perr)
	assert.Equal(t, property.UnknownProperty, perr.Kind)
	assert.Len(t, first.Outputs, 3)
	assert.FileExists(t, filepath.Join(out, "B.kg.h"))
	assert.FileExists(t, filepath.Join(out, macro.MacrosFileName))

	second := m.Run(context.Background(), parser, unit)
	assert.True(t, second.Success())
	assert.Equal(t, all, second.UpToDate)
	assert.Empty(t, second.Generated)
	assert.NotEqual(t, first.RunID, second.RunID)

	// Touching a source regenerates that file only.
	now := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(paths["B.h"], now, now))
	third := m.Run(context.Background(), parser, unit)
	assert.Equal(t, []string{paths["B.h"]}, third.Generated)
	assert.Equal(t, []string{paths["A.h"], paths["C.h"]}, third.UpToDate)

	// A deleted output is regenerated even though its source is older.
	require.NoError(t, os.Remove(filepath.Join(out, "A.kg.h")))
	fourth := m.Run(context.Background(), parser, unit)
	assert.True(t, fourth.Success(), "%v", fourth.Errors)
	assert.Equal(t, []string{paths["A.h"]}, fourth.Generated)
	assert.Equal(t, []string{paths["B.h"], paths["C.h"]}, fourth.UpToDate)
	assert.FileExists(t, filepath.Join(out, "A.kg.h"))
}

func TestManagerThreadCounts(t *testing.T) {
	src := t.TempDir()
	files := make(map[string]string)
	for i := range 20 {
		files[fmt.Sprintf("f%02d.h", i)] = fmt.Sprintf("class KGClass() T%d\n{\n\tKGField(Get) int v;\n};\n", i)
	}
	writeSources(t, src, files)
	m := NewManager(ManagerSettings{Directories: []string{src}})

	var reports []*Report
	for _, threads := range []int{1, 4} {
		parser, unit := newPipeline(t, t.TempDir())
		r := m.Run(context.Background(), parser, unit, WithThreadCount(threads), WithForceRegenerate(true))
		require.True(t, r.Success(), "%v", r.Errors)
		reports = append(reports, r)
	}
	assert.Len(t, reports[0].Generated, 20)
	assert.Equal(t, reports[0].Generated, reports[1].Generated)
	base := func(paths []string) []string {
		var out []string
		for _, p := range paths {
			out = append(out, filepath.Base(p))
		}
		return out
	}
	assert.Equal(t, base(reports[0].Outputs), base(reports[1].Outputs))
}

func TestManagerThreadCountsWithErrors(t *testing.T) {
	src := t.TempDir()
	files := make(map[string]string)
	for i := range 20 {
		var content string
		switch i % 4 {
		case 1:
			content = fmt.Sprintf("class KGClass(Unknown) T%d {};\n", i)
		case 2:
			content = fmt.Sprintf("namespace n%d {\n", i)
		case 3:
			content = fmt.Sprintf("class KGClass() T%d\n{\n\tKGField(Get(const, const)) int v;\n};\n", i)
		default:
			content = fmt.Sprintf("class KGClass() T%d\n{\n\tKGField(Get) int v;\n};\n", i)
		}
		files[fmt.Sprintf("f%02d.h", i)] = content
	}
	writeSources(t, src, files)
	m := NewManager(ManagerSettings{Directories: []string{src}})

	type outcome struct {
		generated []string
		errors    []string
	}
	run := func(threads int) outcome {
		parser, unit := newPipeline(t, t.TempDir())
		r := m.Run(context.Background(), parser, unit, WithThreadCount(threads), WithForceRegenerate(true))
		require.True(t, r.Completed)
		o := outcome{generated: r.Generated}
		for _, e := range r.Errors {
			o.errors = append(o.errors, e.Error())
		}
		return o
	}

	single := run(1)
	assert.Len(t, single.generated, 15, "parse failures are not generated")
	assert.Len(t, single.errors, 15)
	for _, threads := range []int{4, 0} {
		assert.Equal(t, single, run(threads), "threads=%d", threads)
	}
}

func TestManagerCancelledDuringRun(t *testing.T) {
	src := t.TempDir()
	files := make(map[string]string)
	for i := range 8 {
		files[fmt.Sprintf("f%d.h", i)] = fmt.Sprintf("class KGClass() T%d {};\n", i)
	}
	writeSources(t, src, files)
	parser, unit := newPipeline(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	unit.Use(func(next gen.Generator) gen.Generator {
		return gen.GenerateFunc(func(ctx context.Context, res *entity.ParsingResult) error {
			cancel()
			return next.Generate(ctx, res)
		})
	})

	r := NewManager(ManagerSettings{Directories: []string{src}}).Run(ctx, parser, unit, WithThreadCount(2))
	assert.True(t, r.Completed)
	assert.Empty(t, r.Generated)
	require.Len(t, r.Errors, 8, "every file is reported once")
	for _, e := range r.Errors {
		assert.ErrorIs(t, e.Err, context.Canceled)
	}
}

func TestManagerFileErrors(t *testing.T) {
	src, out := t.TempDir(), t.TempDir()
	paths := writeSources(t, src, map[string]string{
		"good.h":   "class KGClass() Good {};\n",
		"bad.h":    "class KGClass() Bad {};\n",
		"broken.h": "namespace a {\n",
	})
	parser, unit := newPipeline(t, out)
	boom := errors.New("boom")
	unit.Use(func(next gen.Generator) gen.Generator {
		return gen.GenerateFunc(func(ctx context.Context, res *entity.ParsingResult) error {
			if strings.HasSuffix(res.File, "bad.h") {
				return boom
			}
			return next.Generate(ctx, res)
		})
	})
	wd, err := os.Getwd()
	require.NoError(t, err)
	missing, err := filepath.Rel(wd, filepath.Join(src, "missing.h"))
	require.NoError(t, err)
	m := NewManager(ManagerSettings{
		Directories: []string{src},
		Files:       []string{missing},
	})
	r := m.Run(context.Background(), parser, unit, WithThreadCount(2))
	assert.True(t, r.Completed)
	assert.False(t, r.Success())
	assert.Equal(t, []string{paths["good.h"]}, r.Generated)

	assert.ErrorIs(t, r.ErrorsOf(paths["bad.h"])[0], boom)
	require.Len(t, r.ErrorsOf(paths["broken.h"]), 1)
	assert.True(t, kodgen.IsParseError(r.ErrorsOf(paths["broken.h"])[0]))
	require.Len(t, r.ErrorsOf(filepath.Join(src, "missing.h")), 1, "missing files are keyed by absolute path")
	assert.Len(t, r.Errors, 3)
	assert.NoFileExists(t, filepath.Join(out, "bad.kg.h"))
	assert.NoFileExists(t, filepath.Join(out, "broken.kg.h"))
}

func TestManagerSetupErrors(t *testing.T) {
	src := t.TempDir()
	writeSources(t, src, map[string]string{"a.h": "class KGClass() A {};\n"})
	m := NewManager(ManagerSettings{Directories: []string{src}})

	t.Run("OutputIsFile", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "out")
		require.NoError(t, os.WriteFile(file, nil, 0o644))
		parser, unit := newPipeline(t, file)
		r := m.Run(context.Background(), parser, unit)
		assert.False(t, r.Completed)
		assert.False(t, r.Success())
		require.Len(t, r.Errors, 1)
		assert.True(t, kodgen.IsSetupError(r.Errors[0].Err))
		assert.Empty(t, r.Generated)
		assert.Empty(t, r.UpToDate)
	})

	t.Run("NilCollaborators", func(t *testing.T) {
		parser, unit := newPipeline(t, t.TempDir())
		for _, r := range []*Report{
			m.Run(context.Background(), nil, unit),
			m.Run(context.Background(), parser, nil),
		} {
			assert.False(t, r.Completed)
			require.Len(t, r.Errors, 1)
			assert.True(t, kodgen.IsSetupError(r.Errors[0].Err))
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		out := t.TempDir()
		parser, unit := newPipeline(t, out)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := m.Run(ctx, parser, unit)
		assert.False(t, r.Completed)
		assert.ErrorIs(t, r.Errors[0].Err, context.Canceled)
		assert.NoFileExists(t, filepath.Join(out, "a.kg.h"))
	})
}

func TestManagerFiles(t *testing.T) {
	src := t.TempDir()
	paths := writeSources(t, src, map[string]string{
		"a.h":           "",
		"b.hpp":         "",
		"notes.txt":     "",
		"skip/c.h":      "",
		"deep/d.h":      "",
		"deep/ignore.h": "",
	})
	m := NewManager(ManagerSettings{
		Files:              []string{paths["notes.txt"], paths["a.h"]},
		Directories:        []string{src},
		IgnoredFiles:       []string{paths["deep/ignore.h"]},
		IgnoredDirectories: []string{filepath.Join(src, "skip")},
	})
	files, errs := m.Files()
	assert.Empty(t, errs)
	assert.Equal(t, []string{paths["a.h"], paths["b.hpp"], paths["deep/d.h"], paths["notes.txt"]}, files)

	m.Settings.SupportedExtensions = []string{".txt"}
	m.Settings.Files = nil
	files, _ = m.Files()
	assert.Equal(t, []string{paths["notes.txt"]}, files)

	m.Settings.Directories = []string{filepath.Join(src, "none")}
	m.Settings.Files = []string{src}
	files, errs = m.Files()
	assert.Empty(t, files)
	assert.Len(t, errs, 2, "a directory in Files and a missing directory")
}

func TestThreadCount(t *testing.T) {
	assert.Equal(t, runtime.NumCPU(), ThreadCount(0))
	assert.Equal(t, 3, ThreadCount(3))

	files := []string{"a", "b", "c", "d", "e"}
	assert.Equal(t, [][]string{{"a", "c", "e"}, {"b", "d"}}, partition(files, 2))
	assert.Equal(t, [][]string{{"a"}}, partition(files[:1], 4))
	assert.Empty(t, partition(nil, 4))
}

func TestWithin(t *testing.T) {
	dir := filepath.Join("/", "src", "skip")
	assert.True(t, Within(dir, dir))
	assert.True(t, Within(filepath.Join(dir, "a.h"), dir))
	assert.False(t, Within(filepath.Join("/", "src", "skipped", "a.h"), dir))
	assert.False(t, Within(filepath.Join("/", "src", "a.h"), dir))
}
