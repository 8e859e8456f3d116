// Package builtin provides ready-made properties for the macro backend:
//
//	KGField(Get(const, &))  generates a getter in the class footer
//	KGField(Set)            generates a setter in the class footer
//	KGEnum(ToString)        generates an enumerator-to-name function
package builtin

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/kodgen/entity"
	"github.com/syssam/kodgen/property"
)

// Property names.
const (
	Get      = "Get"
	Set      = "Set"
	ToString = "ToString"
)

// Sub-properties of Get and Set.
const (
	SubConst     = "const"
	SubRef       = "&"
	SubPtr       = "*"
	SubExplicit  = "explicit"
	fieldPattern = `const|&|\*|explicit`
)

// GetRule validates Get: fields only, sub-properties among const, &, * and
// explicit, each at most once, & and * exclusive.
type GetRule struct {
	*property.ComplexRule
}

// NewGetRule returns the Get rule.
func NewGetRule() *GetRule {
	return &GetRule{property.NewComplexRule(entity.Field.Mask(), fieldPattern).WithCount(0, 4)}
}

// ValidateGroup implements property.Rule.
func (r *GetRule) ValidateGroup(group entity.PropertyGroup, index int) error {
	if err := r.ComplexRule.ValidateGroup(group, index); err != nil {
		return err
	}
	subs := group[index].SubProperties
	if err := unique(subs); err != nil {
		return err
	}
	if slices.Contains(subs, SubRef) && slices.Contains(subs, SubPtr) {
		return errors.New("& and * cannot be combined")
	}
	return nil
}

// SetRule validates Set: fields only, at most the explicit sub-property,
// never on a const field.
type SetRule struct {
	*property.ComplexRule
}

// NewSetRule returns the Set rule.
func NewSetRule() *SetRule {
	return &SetRule{property.NewComplexRule(entity.Field.Mask(), SubExplicit).WithCount(0, 1)}
}

// ValidateEntity implements property.Rule.
func (r *SetRule) ValidateEntity(e *entity.Entity, _ int) error {
	if isConst(e.Type) {
		return fmt.Errorf("field %s of type %q is const", e.Name, e.Type)
	}
	return nil
}

// NewToStringRule returns the ToString rule: enums only, no sub-properties.
func NewToStringRule() *property.SimpleRule {
	return property.NewSimpleRule(entity.Enum.Mask())
}

// RegisterRules adds the Get, Set and ToString rules to reg.
func RegisterRules(reg *property.Registry) error {
	return errors.Join(
		reg.Register(Get, NewGetRule()),
		reg.Register(Set, NewSetRule()),
		reg.Register(ToString, NewToStringRule()),
	)
}

func unique(subs []string) error {
	seen := make(map[string]bool, len(subs))
	for _, s := range subs {
		if seen[s] {
			return fmt.Errorf("sub-property %q repeated", s)
		}
		seen[s] = true
	}
	return nil
}

// isConst reports whether a declared type is const at top level, e.g.
// "const int" or "int const", but not "const char*".
func isConst(typ string) bool {
	t := strings.TrimSpace(typ)
	if strings.HasSuffix(t, "const") {
		return true
	}
	return strings.HasPrefix(t, "const ") && !strings.ContainsAny(t, "*&")
}
