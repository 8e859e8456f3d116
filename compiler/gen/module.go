package gen

import (
	"slices"
	"strings"

	"github.com/syssam/kodgen"
	"github.com/syssam/kodgen/entity"
)

// Module bundles property generators. Generators are not owned by the
// module; the caller keeps them alive and must not mutate them during a run,
// as modules are shared by every worker.
type Module struct {
	// Name identifies the module in errors and logs.
	Name string
	// Order sorts modules inside a unit, lower first. Modules with the same
	// order keep their insertion order.
	Order int

	generators []PropertyCodeGen
}

// NewModule returns a module holding the given generators.
func NewModule(name string, generators ...PropertyCodeGen) *Module {
	return &Module{Name: name, generators: generators}
}

// AddGenerator appends g. Generators run in registration order.
func (m *Module) AddGenerator(g PropertyCodeGen) {
	m.generators = append(m.generators, g)
}

// RemoveGenerator removes g and reports whether it was registered.
func (m *Module) RemoveGenerator(g PropertyCodeGen) bool {
	i := slices.Index(m.generators, g)
	if i < 0 {
		return false
	}
	m.generators = slices.Delete(m.generators, i, i+1)
	return true
}

// Generators returns the registered generators in order.
func (m *Module) Generators() []PropertyCodeGen {
	return slices.Clone(m.generators)
}

// GenerateCode offers every property of e, in annotation order, to every
// generator, in registration order. A nil entity produces nothing. The first
// generator error aborts the module for e.
func (m *Module) GenerateCode(e *entity.Entity, env Env, out *strings.Builder) error {
	if e == nil {
		return nil
	}
	for i, p := range e.Properties {
		for _, g := range m.generators {
			if !g.ShouldGenerate(e, p, i) {
				continue
			}
			if err := g.Generate(e, p, i, env, out); err != nil {
				gerr := kodgen.NewGenerationError(m.Name, e.FullName(), "property "+p.Name, err)
				if env != nil && env.Result() != nil {
					gerr.File = env.Result().File
				}
				return gerr
			}
		}
	}
	return nil
}
