package property

import (
	"fmt"
	"slices"
	"sync"

	"github.com/syssam/kodgen"
	"github.com/syssam/kodgen/entity"
)

// Registry maps property names to their rules. It is safe for concurrent
// use and is shared read-only by every worker during a run.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register assigns rule to name. A name can be owned by one rule only.
func (r *Registry) Register(name string, rule Rule) error {
	if name == "" {
		return fmt.Errorf("property: empty property name")
	}
	if rule == nil {
		return fmt.Errorf("property: nil rule for %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[name]; ok {
		return fmt.Errorf("%w: %q", kodgen.ErrDuplicateRule, name)
	}
	r.rules[name] = rule
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, rule Rule) {
	if err := r.Register(name, rule); err != nil {
		panic(err)
	}
}

// Unregister removes the rule owning name and reports whether there was one.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rules[name]
	delete(r.rules, name)
	return ok
}

// Lookup returns the rule registered for the exact name.
func (r *Registry) Lookup(name string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[name]
	return rule, ok
}

// Names returns the registered property names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks the property group of e and returns the first failure, or
// nil. The checks run in this order: rule lookup, main syntax and
// sub-property syntax for each property, then group consistency for each
// property, then entity eligibility for each property.
func (r *Registry) Validate(e *entity.Entity) *Error {
	group := e.Properties
	if len(group) == 0 {
		return nil
	}
	fail := func(kind ErrorKind, index, sub int, err error) *Error {
		return &Error{
			Kind:        kind,
			Index:       index,
			SubIndex:    sub,
			Property:    group[index].Name,
			Entity:      e.FullName(),
			Line:        e.Line,
			Description: err.Error(),
		}
	}
	rules := make([]Rule, len(group))
	for i, p := range group {
		rule, ok := r.Lookup(p.Name)
		if !ok {
			return fail(UnknownProperty, i, -1, fmt.Errorf("no rule registered for %q", p.Name))
		}
		if err := rule.ValidateMainSyntax(p.Name, e.Kind); err != nil {
			return fail(InvalidMainPropertySyntax, i, -1, err)
		}
		for j, sub := range p.SubProperties {
			if err := rule.ValidateSubSyntax(sub, j); err != nil {
				return fail(InvalidSubPropertySyntax, i, j, err)
			}
		}
		rules[i] = rule
	}
	for i, rule := range rules {
		if err := rule.ValidateGroup(group, i); err != nil {
			return fail(InvalidPropertyGroup, i, -1, err)
		}
	}
	for i, rule := range rules {
		if err := rule.ValidateEntity(e, i); err != nil {
			return fail(InvalidEntityForProperty, i, -1, err)
		}
	}
	return nil
}

// ValidateTree validates every entity of the parsed file. A rejected entity
// keeps its place in the tree but loses its properties, and the failure is
// appended to res.Errors. With stopOnFirst the walk ends at the first
// failure. It returns the number of rejected entities.
func (r *Registry) ValidateTree(res *entity.ParsingResult, stopOnFirst bool) int {
	rejected := 0
	res.Walk(func(e *entity.Entity) entity.IterationResult {
		verr := r.Validate(e)
		if verr == nil {
			return entity.Recurse
		}
		rejected++
		e.Properties = nil
		res.Errors = append(res.Errors, verr)
		if stopOnFirst {
			return entity.AbortWithFailure
		}
		return entity.Recurse
	})
	return rejected
}
