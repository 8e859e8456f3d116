package property

import (
	"fmt"
	"strings"

	"github.com/syssam/kodgen"
	"github.com/syssam/kodgen/entity"
)

// SplitterSettings configures the characters of the annotation syntax.
type SplitterSettings struct {
	PropertySeparator    rune
	SubPropertySeparator rune
	SubPropertyStart     rune
	SubPropertyEnd       rune
	IgnoredCharacters    string
}

// DefaultSplitterSettings returns the settings for annotations such as
// `Get(const, &), Set`.
func DefaultSplitterSettings() SplitterSettings {
	return SplitterSettings{
		PropertySeparator:    ',',
		SubPropertySeparator: ',',
		SubPropertyStart:     '(',
		SubPropertyEnd:       ')',
		IgnoredCharacters:    " \t\r\n",
	}
}

// Splitter turns annotation text into a property group.
type Splitter struct {
	settings SplitterSettings
}

// NewSplitter returns a splitter using settings. Zero runes fall back to the
// defaults.
func NewSplitter(settings SplitterSettings) *Splitter {
	def := DefaultSplitterSettings()
	if settings.PropertySeparator == 0 {
		settings.PropertySeparator = def.PropertySeparator
	}
	if settings.SubPropertySeparator == 0 {
		settings.SubPropertySeparator = def.SubPropertySeparator
	}
	if settings.SubPropertyStart == 0 {
		settings.SubPropertyStart = def.SubPropertyStart
	}
	if settings.SubPropertyEnd == 0 {
		settings.SubPropertyEnd = def.SubPropertyEnd
	}
	if settings.IgnoredCharacters == "" {
		settings.IgnoredCharacters = def.IgnoredCharacters
	}
	return &Splitter{settings: settings}
}

// Settings returns the effective settings.
func (s *Splitter) Settings() SplitterSettings {
	return s.settings
}

// Split parses text into properties. Sub-properties may contain nested
// brackets and double-quoted strings, which are kept verbatim.
func (s *Splitter) Split(text string) (entity.PropertyGroup, error) {
	var (
		group   entity.PropertyGroup
		cur     strings.Builder
		name    string
		subs    []string
		hasSubs bool
		closed  bool
		depth   int
		quoted  bool
		escaped bool
	)
	set := s.settings
	syntaxErr := func(offset int, format string, args ...any) error {
		return fmt.Errorf("%w: %s at offset %d in %q", kodgen.ErrPropertySyntax, fmt.Sprintf(format, args...), offset, text)
	}
	flush := func(offset int) error {
		if !hasSubs {
			name = s.trim(cur.String())
		} else if rest := s.trim(cur.String()); rest != "" {
			return syntaxErr(offset, "unexpected %q after sub-properties", rest)
		}
		cur.Reset()
		if name == "" {
			return syntaxErr(offset, "empty property name")
		}
		if strings.ContainsAny(name, set.IgnoredCharacters) {
			return syntaxErr(offset, "invalid property name %q", name)
		}
		group = append(group, entity.Property{Name: name, SubProperties: subs})
		name, subs, hasSubs, closed = "", nil, false, false
		return nil
	}
	addSub := func(offset int, allowEmpty bool) error {
		sub := s.trim(cur.String())
		cur.Reset()
		if sub == "" {
			if allowEmpty {
				return nil
			}
			return syntaxErr(offset, "empty sub-property")
		}
		subs = append(subs, sub)
		return nil
	}
	for i, r := range text {
		switch {
		case quoted:
			cur.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				quoted = false
			}
		case r == '"':
			if depth == 0 {
				return nil, syntaxErr(i, "string outside sub-properties")
			}
			quoted = true
			cur.WriteRune(r)
		case r == set.SubPropertyStart:
			if depth == 0 {
				if closed {
					return nil, syntaxErr(i, "duplicate sub-property list")
				}
				name = s.trim(cur.String())
				cur.Reset()
				hasSubs = true
			} else {
				cur.WriteRune(r)
			}
			depth++
		case r == set.SubPropertyEnd:
			switch depth {
			case 0:
				return nil, syntaxErr(i, "unbalanced %q", r)
			case 1:
				if err := addSub(i, len(subs) == 0); err != nil {
					return nil, err
				}
				closed = true
			default:
				cur.WriteRune(r)
			}
			depth--
		case depth == 1 && r == set.SubPropertySeparator:
			if err := addSub(i, false); err != nil {
				return nil, err
			}
		case depth == 0 && r == set.PropertySeparator:
			if err := flush(i); err != nil {
				return nil, err
			}
		default:
			cur.WriteRune(r)
		}
	}
	switch {
	case quoted:
		return nil, syntaxErr(len(text), "unterminated string")
	case depth > 0:
		return nil, syntaxErr(len(text), "missing %q", set.SubPropertyEnd)
	}
	if len(group) == 0 && !hasSubs && s.trim(cur.String()) == "" {
		return nil, nil
	}
	if err := flush(len(text)); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *Splitter) trim(v string) string {
	return strings.Trim(v, s.settings.IgnoredCharacters)
}
