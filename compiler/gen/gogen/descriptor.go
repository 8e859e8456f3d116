package gogen

import (
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/inflect"

	"github.com/syssam/kodgen/entity"
)

const entityPkg = "github.com/syssam/kodgen/entity"

var kindIdents = [...]string{
	entity.Namespace: "Namespace",
	entity.Class:     "Class",
	entity.Struct:    "Struct",
	entity.Field:     "Field",
	entity.Method:    "Method",
	entity.Enum:      "Enum",
	entity.EnumValue: "EnumValue",
}

// infoLiteral renders info as an element of a []*entity.Info literal.
func infoLiteral(info *entity.Info) jen.Code {
	d := jen.Dict{
		jen.Id("Kind"):     jen.Qual(entityPkg, kindIdents[info.Kind]),
		jen.Id("Name"):     jen.Lit(info.Name),
		jen.Id("FullName"): jen.Lit(info.FullName),
	}
	if info.Type != "" {
		d[jen.Id("Type")] = jen.Lit(info.Type)
	}
	if info.Value != "" {
		d[jen.Id("Value")] = jen.Lit(info.Value)
	}
	if info.Line > 0 {
		d[jen.Id("Line")] = jen.Lit(info.Line)
	}
	if len(info.Properties) > 0 {
		d[jen.Id("Properties")] = jen.Qual(entityPkg, "PropertyGroup").ValuesFunc(func(g *jen.Group) {
			for _, p := range info.Properties {
				pd := jen.Dict{jen.Id("Name"): jen.Lit(p.Name)}
				if len(p.SubProperties) > 0 {
					pd[jen.Id("SubProperties")] = jen.Index().String().ValuesFunc(func(g *jen.Group) {
						for _, s := range p.SubProperties {
							g.Lit(s)
						}
					})
				}
				g.Values(pd)
			}
		})
	}
	if len(info.Children) > 0 {
		d[jen.Id("Children")] = jen.Index().Op("*").Qual(entityPkg, "Info").ValuesFunc(func(g *jen.Group) {
			for _, c := range info.Children {
				g.Add(infoLiteral(c))
			}
		})
	}
	return jen.Values(d)
}

// DescriptorName returns the variable holding the entities of source, e.g.
// "PlayerEntities" for "player.h".
func DescriptorName(source string) string {
	base := filepath.Base(source)
	return GoName(strings.TrimSuffix(base, filepath.Ext(base))) + "Entities"
}

// GoName turns a C++ name, qualified or not, into an exported Go
// identifier: "game::max_health" gives "GameMaxHealth".
func GoName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := inflect.Camelize(b.String())
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = "X" + out
	}
	return out
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}
