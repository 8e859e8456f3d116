package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/kodgen"
)

const tomlSettings = `
thread_count = 4
force = true

[manager]
directories = ["include"]
ignored_directories = ["include/third_party"]
supported_extensions = [".h"]

[output]
dir = "generated"
extension = ".gen.h"

[parsing]
property_separator = ";"
sub_property_start = "["
sub_property_end = "]"
abort_on_first_error = true

[parsing.macros]
class = "RfrkClass"
`

const yamlSettings = `
thread_count: 2
manager:
  files: [/abs/player.h, rel/enemy.h]
output:
  dir: /abs/out
  backend: go
  package: refl
parsing:
  macros:
    field: RfrkField
`

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()

	t.Run("TOML", func(t *testing.T) {
		path := filepath.Join(dir, "kodgen.toml")
		require.NoError(t, os.WriteFile(path, []byte(tomlSettings), 0o644))
		s, err := LoadSettings(path)
		require.NoError(t, err)
		assert.Equal(t, 4, s.ThreadCount)
		assert.True(t, s.Force)
		assert.Equal(t, []string{filepath.Join(dir, "include")}, s.Manager.Directories)
		assert.Equal(t, []string{filepath.Join(dir, "include", "third_party")}, s.Manager.IgnoredDirectories)
		assert.Equal(t, filepath.Join(dir, "generated"), s.Output.Dir)
		assert.Equal(t, ".gen.h", s.Output.Extension)

		ps, err := s.Parsing.ParserSettings()
		require.NoError(t, err)
		assert.Equal(t, ';', ps.Splitter.PropertySeparator)
		assert.Equal(t, '[', ps.Splitter.SubPropertyStart)
		assert.Equal(t, rune(0), ps.Splitter.SubPropertySeparator, "unset characters keep the parser default")
		assert.Equal(t, "RfrkClass", ps.Macros.Class)
		assert.True(t, ps.AbortOnFirstError)
	})

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(dir, "kodgen.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yamlSettings), 0o644))
		s, err := LoadSettings(path)
		require.NoError(t, err)
		assert.Equal(t, 2, s.ThreadCount)
		assert.Equal(t, []string{"/abs/player.h", filepath.Join(dir, "rel", "enemy.h")}, s.Manager.Files)
		assert.Equal(t, "/abs/out", s.Output.Dir)
		assert.Equal(t, "go", s.Output.Backend)
		assert.Equal(t, "RfrkField", s.Parsing.Macros.Field)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := LoadSettings(filepath.Join(dir, "missing.toml"))
		assert.True(t, kodgen.IsSetupError(err))

		ini := filepath.Join(dir, "kodgen.ini")
		require.NoError(t, os.WriteFile(ini, nil, 0o644))
		_, err = LoadSettings(ini)
		assert.True(t, kodgen.IsSetupError(err))

		bad := filepath.Join(dir, "bad.toml")
		require.NoError(t, os.WriteFile(bad, []byte("thread_count = ["), 0o644))
		_, err = LoadSettings(bad)
		assert.True(t, kodgen.IsSetupError(err))
	})

	t.Run("BadCharacter", func(t *testing.T) {
		_, err := ParsingSettings{PropertySeparator: ";;", SubPropertyEnd: "»"}.ParserSettings()
		require.Error(t, err)
		assert.True(t, kodgen.IsSetupError(err))
		ps, err := ParsingSettings{SubPropertyEnd: "»"}.ParserSettings()
		require.NoError(t, err)
		assert.Equal(t, '»', ps.Splitter.SubPropertyEnd)
	})
}

func TestReportSummary(t *testing.T) {
	r := &Report{
		RunID:     uuid.New(),
		Completed: true,
		Generated: []string{"/src/b.h"},
		UpToDate:  []string{"/src/a.h"},
		Errors: []FileError{
			{File: "/src/b.h", Err: errors.New("unknown property")},
		},
		Duration: 1500 * time.Millisecond,
	}
	assert.False(t, r.Success())
	assert.Equal(t, "/src/b.h: unknown property", r.Errors[0].Error())

	for _, name := range []string{"report.yaml", "report.msgpack"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", name)
			require.NoError(t, WriteSummary(path, r))
			s, err := ReadSummary(path)
			require.NoError(t, err)
			assert.Equal(t, r.Summary(), s)
			assert.Equal(t, r.RunID.String(), s.RunID)
			assert.Equal(t, "unknown property", s.Errors[0].Message)
		})
	}

	require.Error(t, WriteSummary(filepath.Join(t.TempDir(), "report.json"), r))
	_, err := ReadSummary(filepath.Join(t.TempDir(), "report.json"))
	require.Error(t, err)
}

func TestReportSort(t *testing.T) {
	r := &Report{
		Generated: []string{"/src/b.h", "/src/a.h"},
		Errors: []FileError{
			{File: "/src/b.h", Err: errors.New("second")},
			{File: "/src/b.h", Err: errors.New("first")},
			{File: "/src/a.h", Err: errors.New("zzz")},
		},
	}
	r.sort()
	assert.Equal(t, []string{"/src/a.h", "/src/b.h"}, r.Generated)
	var got []string
	for _, e := range r.Errors {
		got = append(got, e.Error())
	}
	assert.Equal(t, []string{"/src/a.h: zzz", "/src/b.h: first", "/src/b.h: second"}, got)
}
