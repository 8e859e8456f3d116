package property

import (
	"fmt"
	"regexp"

	"github.com/syssam/kodgen/entity"
)

// SimpleRule accepts a property without sub-properties on a fixed set of
// entity kinds.
type SimpleRule struct {
	BaseRule
	Kinds entity.KindMask
}

// NewSimpleRule returns a rule allowing the property on the given kinds.
func NewSimpleRule(kinds entity.KindMask) *SimpleRule {
	return &SimpleRule{Kinds: kinds}
}

// ValidateMainSyntax implements Rule.
func (r *SimpleRule) ValidateMainSyntax(name string, kind entity.Kind) error {
	return checkKind(name, kind, r.Kinds)
}

// ValidateSubSyntax implements Rule.
func (r *SimpleRule) ValidateSubSyntax(sub string, index int) error {
	return fmt.Errorf("takes no sub-properties, got %q", sub)
}

// ComplexRule accepts sub-properties matching regular expressions. The
// sub-property at index j must fully match pattern j; sub-properties past the
// last pattern are matched against the last one.
type ComplexRule struct {
	BaseRule
	Kinds entity.KindMask
	// Min and Max bound the number of sub-properties. Max < 0 means no bound.
	Min, Max int

	patterns []*regexp.Regexp
}

// NewComplexRule returns a rule with the given sub-property patterns. It
// panics if a pattern does not compile.
func NewComplexRule(kinds entity.KindMask, patterns ...string) *ComplexRule {
	r := &ComplexRule{Kinds: kinds, Max: -1}
	for _, p := range patterns {
		r.patterns = append(r.patterns, regexp.MustCompile(`^(?:`+p+`)$`))
	}
	return r
}

// WithCount sets the allowed number of sub-properties.
func (r *ComplexRule) WithCount(minCount, maxCount int) *ComplexRule {
	r.Min, r.Max = minCount, maxCount
	return r
}

// ValidateMainSyntax implements Rule.
func (r *ComplexRule) ValidateMainSyntax(name string, kind entity.Kind) error {
	return checkKind(name, kind, r.Kinds)
}

// ValidateSubSyntax implements Rule.
func (r *ComplexRule) ValidateSubSyntax(sub string, index int) error {
	if len(r.patterns) == 0 {
		return nil
	}
	re := r.patterns[min(index, len(r.patterns)-1)]
	if !re.MatchString(sub) {
		return fmt.Errorf("sub-property %q does not match %s", sub, re)
	}
	return nil
}

// ValidateGroup implements Rule.
func (r *ComplexRule) ValidateGroup(group entity.PropertyGroup, index int) error {
	n := len(group[index].SubProperties)
	if n < r.Min {
		return fmt.Errorf("expects at least %d sub-properties, got %d", r.Min, n)
	}
	if r.Max >= 0 && n > r.Max {
		return fmt.Errorf("expects at most %d sub-properties, got %d", r.Max, n)
	}
	return nil
}

// Exclusive wraps rule so that the property cannot share an entity with any
// of the named properties.
func Exclusive(rule Rule, names ...string) Rule {
	return &exclusive{Rule: rule, names: names}
}

type exclusive struct {
	Rule
	names []string
}

func (r *exclusive) ValidateGroup(group entity.PropertyGroup, index int) error {
	for i, p := range group {
		if i == index {
			continue
		}
		for _, name := range r.names {
			if p.Name == name {
				return fmt.Errorf("cannot be combined with %q", name)
			}
		}
	}
	return r.Rule.ValidateGroup(group, index)
}

func checkKind(name string, kind entity.Kind, allowed entity.KindMask) error {
	if !allowed.Has(kind) {
		return fmt.Errorf("%s cannot be attached to a %s (allowed: %s)", name, kind, allowed)
	}
	return nil
}
