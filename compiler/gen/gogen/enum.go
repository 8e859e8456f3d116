package gogen

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/kodgen/compiler/gen"
	"github.com/syssam/kodgen/entity"
)

// EnumNamesGenerator declares the enumerator names of every enum carrying
// its property:
//
//	var GameColorNames = []string{"Red", "Green", "Blue"}
type EnumNamesGenerator struct {
	gen.NamedPropertyGenerator
}

// NewEnumNamesGenerator returns a generator bound to property.
func NewEnumNamesGenerator(property string) *EnumNamesGenerator {
	return &EnumNamesGenerator{gen.NamedPropertyGenerator{Property: property, Kinds: entity.Enum.Mask()}}
}

// GenerateGo implements Generator.
func (g *EnumNamesGenerator) GenerateGo(e *entity.Entity, _ entity.Property, _ int, env *Env) error {
	name := GoName(e.FullName()) + "Names"
	env.File().Commentf("%s lists the enumerators of %s.", name, e.FullName())
	env.File().Var().Id(name).Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
		for _, v := range e.Children {
			g.Lit(v.Name)
		}
	})
	return nil
}

var _ Generator = (*EnumNamesGenerator)(nil)
