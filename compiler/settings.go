package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/syssam/kodgen"
	"github.com/syssam/kodgen/compiler/parse"
	"github.com/syssam/kodgen/property"
)

// Settings is the content of a kodgen settings file.
//
//	thread_count = 4
//
//	[manager]
//	directories = ["include"]
//
//	[output]
//	dir = "generated"
type Settings struct {
	Manager ManagerSettings `toml:"manager" yaml:"manager"`
	Output  OutputSettings  `toml:"output" yaml:"output"`
	Parsing ParsingSettings `toml:"parsing" yaml:"parsing"`
	// ThreadCount is the number of workers, 0 for one per CPU.
	ThreadCount int `toml:"thread_count" yaml:"thread_count"`
	// Force regenerates files that are up to date.
	Force bool `toml:"force" yaml:"force"`
}

// OutputSettings configures the generation unit.
type OutputSettings struct {
	Dir       string `toml:"dir" yaml:"dir"`
	Extension string `toml:"extension" yaml:"extension"`
	Header    string `toml:"header" yaml:"header"`
	// Backend is "macro" (default) or "go".
	Backend string `toml:"backend" yaml:"backend"`
	// Package is the package of generated Go files.
	Package string `toml:"package" yaml:"package"`
}

// ParsingSettings configures the header parser.
type ParsingSettings struct {
	Macros               parse.MacroNames `toml:"macros" yaml:"macros"`
	PropertySeparator    string           `toml:"property_separator" yaml:"property_separator"`
	SubPropertySeparator string           `toml:"sub_property_separator" yaml:"sub_property_separator"`
	SubPropertyStart     string           `toml:"sub_property_start" yaml:"sub_property_start"`
	SubPropertyEnd       string           `toml:"sub_property_end" yaml:"sub_property_end"`
	IgnoredCharacters    string           `toml:"ignored_characters" yaml:"ignored_characters"`
	AbortOnFirstError    bool             `toml:"abort_on_first_error" yaml:"abort_on_first_error"`
}

// ParserSettings converts s into parser settings.
func (s ParsingSettings) ParserSettings() (parse.Settings, error) {
	var errs []error
	char := func(name, v string) rune {
		if v == "" {
			return 0
		}
		r, size := utf8.DecodeRuneInString(v)
		if size != len(v) {
			errs = append(errs, kodgen.NewSetupError(name, fmt.Sprintf("%q is not a single character", v), nil))
			return 0
		}
		return r
	}
	ps := parse.Settings{
		Macros: s.Macros,
		Splitter: property.SplitterSettings{
			PropertySeparator:    char("PropertySeparator", s.PropertySeparator),
			SubPropertySeparator: char("SubPropertySeparator", s.SubPropertySeparator),
			SubPropertyStart:     char("SubPropertyStart", s.SubPropertyStart),
			SubPropertyEnd:       char("SubPropertyEnd", s.SubPropertyEnd),
			IgnoredCharacters:    s.IgnoredCharacters,
		},
		AbortOnFirstError: s.AbortOnFirstError,
	}
	return ps, errors.Join(errs...)
}

// LoadSettings reads a TOML (.toml) or YAML (.yaml, .yml) settings file.
// Relative paths in the file are resolved against its directory.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kodgen.NewSetupError("Settings", "cannot read "+path, err)
	}
	var s Settings
	switch ext := filepath.Ext(path); ext {
	case ".toml":
		err = toml.Unmarshal(data, &s)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &s)
	default:
		return nil, kodgen.NewSetupError("Settings", fmt.Sprintf("unsupported settings format %q", ext), nil)
	}
	if err != nil {
		return nil, kodgen.NewSetupError("Settings", "cannot decode "+path, err)
	}
	s.resolve(filepath.Dir(path))
	return &s, nil
}

func (s *Settings) resolve(base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	all := func(ps []string) {
		for i, p := range ps {
			ps[i] = abs(p)
		}
	}
	all(s.Manager.Files)
	all(s.Manager.Directories)
	all(s.Manager.IgnoredFiles)
	all(s.Manager.IgnoredDirectories)
	s.Output.Dir = abs(s.Output.Dir)
}
