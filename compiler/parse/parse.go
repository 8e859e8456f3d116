// Package parse turns annotated C++-style headers into entity trees.
package parse

import (
	"context"
	"log/slog"

	"github.com/syssam/kodgen/entity"
	"github.com/syssam/kodgen/property"
)

// Parser produces the entity tree of one source file. A Parser is used by a
// single goroutine; concurrent runs get their own copy through Clone.
type Parser interface {
	// Parse reads path and returns its entity tree. Recoverable problems,
	// such as rejected properties, are reported in the result's Errors; a
	// non-nil error means the file cannot be generated.
	Parse(ctx context.Context, path string) (*entity.ParsingResult, error)
	// Clone returns an independent parser with the same settings.
	Clone() Parser
}

// MacroNames are the annotation macros recognized for each entity kind.
type MacroNames struct {
	Namespace string `toml:"namespace" yaml:"namespace"`
	Class     string `toml:"class" yaml:"class"`
	Struct    string `toml:"struct" yaml:"struct"`
	Field     string `toml:"field" yaml:"field"`
	Method    string `toml:"method" yaml:"method"`
	Enum      string `toml:"enum" yaml:"enum"`
	EnumValue string `toml:"enum_value" yaml:"enum_value"`
}

// DefaultMacroNames returns the KG* macro names.
func DefaultMacroNames() MacroNames {
	return MacroNames{
		Namespace: "KGNamespace",
		Class:     "KGClass",
		Struct:    "KGStruct",
		Field:     "KGField",
		Method:    "KGMethod",
		Enum:      "KGEnum",
		EnumValue: "KGEnumVal",
	}
}

// Name returns the macro used to annotate entities of kind k.
func (m MacroNames) Name(k entity.Kind) string {
	switch k {
	case entity.Namespace:
		return m.Namespace
	case entity.Class:
		return m.Class
	case entity.Struct:
		return m.Struct
	case entity.Field:
		return m.Field
	case entity.Method:
		return m.Method
	case entity.Enum:
		return m.Enum
	case entity.EnumValue:
		return m.EnumValue
	}
	return ""
}

// Kind returns the entity kind annotated by the macro name.
func (m MacroNames) Kind(name string) (entity.Kind, bool) {
	for k := entity.Namespace; k <= entity.EnumValue; k++ {
		if n := m.Name(k); n != "" && n == name {
			return k, true
		}
	}
	return 0, false
}

// WithDefaults returns m with empty names set to the defaults.
func (m MacroNames) WithDefaults() MacroNames {
	def := DefaultMacroNames()
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&m.Namespace, def.Namespace)
	fill(&m.Class, def.Class)
	fill(&m.Struct, def.Struct)
	fill(&m.Field, def.Field)
	fill(&m.Method, def.Method)
	fill(&m.Enum, def.Enum)
	fill(&m.EnumValue, def.EnumValue)
	return m
}

// Settings configures a HeaderParser.
type Settings struct {
	Macros   MacroNames
	Splitter property.SplitterSettings
	// AbortOnFirstError turns the first recoverable problem of a file into
	// a parse failure.
	AbortOnFirstError bool
}

// HeaderParser parses annotated headers. Only annotated classes, structs,
// enums, fields and methods enter the tree; namespaces always do, as does
// every enumerator of an annotated enum.
type HeaderParser struct {
	settings Settings
	rules    *property.Registry
	splitter *property.Splitter
	logger   *slog.Logger
}

// NewHeaderParser returns a parser validating properties against rules.
// A nil registry disables validation.
func NewHeaderParser(rules *property.Registry) *HeaderParser {
	p := &HeaderParser{rules: rules, logger: slog.Default()}
	return p.WithSettings(Settings{})
}

// WithSettings replaces the settings. Empty macro names and zero splitter
// runes fall back to the defaults.
func (p *HeaderParser) WithSettings(s Settings) *HeaderParser {
	s.Macros = s.Macros.WithDefaults()
	p.splitter = property.NewSplitter(s.Splitter)
	s.Splitter = p.splitter.Settings()
	p.settings = s
	return p
}

// WithLogger sets the logger.
func (p *HeaderParser) WithLogger(l *slog.Logger) *HeaderParser {
	if l != nil {
		p.logger = l
	}
	return p
}

// Settings returns the effective settings.
func (p *HeaderParser) Settings() Settings {
	return p.settings
}

// Clone implements Parser. The rule registry is shared read-only.
func (p *HeaderParser) Clone() Parser {
	c := *p
	c.splitter = property.NewSplitter(p.settings.Splitter)
	return &c
}

var _ Parser = (*HeaderParser)(nil)
