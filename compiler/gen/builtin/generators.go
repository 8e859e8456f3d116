package builtin

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/syssam/kodgen/compiler/gen"
	"github.com/syssam/kodgen/compiler/gen/macro"
	"github.com/syssam/kodgen/entity"
)

// GetGenerator writes getters for fields annotated with Get.
type GetGenerator struct {
	gen.NamedPropertyGenerator
}

// NewGetGenerator returns the Get generator.
func NewGetGenerator() *GetGenerator {
	return &GetGenerator{gen.NamedPropertyGenerator{Property: Get, Kinds: entity.Field.Mask()}}
}

// GenerateClassFooter implements macro.ClassFooterGenerator.
//
//	Get                ->  int getHealth() const { return health; }
//	Get(const, &)      ->  const std::string& getName() const { return name; }
//	Get(*)             ->  Stats* getStats() { return &stats; }
//	Get(explicit)      ->  int getHealth() const;
func (g *GetGenerator) GenerateClassFooter(e *entity.Entity, p entity.Property, _ int, _ *macro.Env, out *strings.Builder) error {
	subs := p.SubProperties
	ret, expr := e.Type, e.Name
	switch {
	case slices.Contains(subs, SubRef):
		ret += "&"
	case slices.Contains(subs, SubPtr):
		ret += "*"
		expr = "&" + e.Name
	}
	indirect := ret != e.Type
	if slices.Contains(subs, SubConst) {
		ret = "const " + ret
	}
	qualifier := ""
	if !indirect || slices.Contains(subs, SubConst) {
		qualifier = " const"
	}
	decl := fmt.Sprintf("%s %s()%s", ret, AccessorName("get", e.Name), qualifier)
	if slices.Contains(subs, SubExplicit) {
		fmt.Fprintf(out, "%s;\n", decl)
		return nil
	}
	fmt.Fprintf(out, "%s { return %s; }\n", decl, expr)
	return nil
}

// SetGenerator writes setters for fields annotated with Set.
type SetGenerator struct {
	gen.NamedPropertyGenerator
}

// NewSetGenerator returns the Set generator.
func NewSetGenerator() *SetGenerator {
	return &SetGenerator{gen.NamedPropertyGenerator{Property: Set, Kinds: entity.Field.Mask()}}
}

// GenerateClassFooter implements macro.ClassFooterGenerator.
func (g *SetGenerator) GenerateClassFooter(e *entity.Entity, p entity.Property, _ int, _ *macro.Env, out *strings.Builder) error {
	param := e.Type + " value"
	if !isScalar(e.Type) {
		param = "const " + e.Type + "& value"
	}
	decl := fmt.Sprintf("void %s(%s)", AccessorName("set", e.Name), param)
	if slices.Contains(p.SubProperties, SubExplicit) {
		fmt.Fprintf(out, "%s;\n", decl)
		return nil
	}
	fmt.Fprintf(out, "%s { %s = value; }\n", decl, e.Name)
	return nil
}

// ToStringGenerator declares, then defines, a function returning the name
// of each enumerator of an enum annotated with ToString.
type ToStringGenerator struct {
	gen.NamedPropertyGenerator
}

// NewToStringGenerator returns the ToString generator.
func NewToStringGenerator() *ToStringGenerator {
	return &ToStringGenerator{gen.NamedPropertyGenerator{Property: ToString, Kinds: entity.Enum.Mask()}}
}

// PreGenerate implements macro.PreGenerator.
func (g *ToStringGenerator) PreGenerate(e *entity.Entity, _ entity.Property, _ int, env *macro.Env) error {
	if len(e.Children) == 0 {
		env.Logger().Warn("enum has no enumerators", "entity", e.FullName())
	}
	return nil
}

// GenerateHeaderFileFooter implements macro.HeaderFileFooterGenerator.
func (g *ToStringGenerator) GenerateHeaderFileFooter(e *entity.Entity, _ entity.Property, _ int, _ *macro.Env, out *strings.Builder) error {
	fmt.Fprintf(out, "%s;\n", toStringSignature(e))
	return nil
}

// GenerateSourceFileHeader implements macro.SourceFileHeaderGenerator.
// Enumerators are compared in declaration order so an alias resolves to the
// first enumerator sharing its value.
func (g *ToStringGenerator) GenerateSourceFileHeader(e *entity.Entity, _ entity.Property, _ int, _ *macro.Env, out *strings.Builder) error {
	fmt.Fprintf(out, "%s\n{\n", toStringSignature(e))
	for _, v := range e.Children {
		fmt.Fprintf(out, "\tif (value == %s) return %q;\n", v.FullName(), v.Name)
	}
	out.WriteString("\treturn \"\";\n}\n")
	return nil
}

func toStringSignature(e *entity.Entity) string {
	return fmt.Sprintf("const char* toString(%s value) noexcept", e.FullName())
}

// AccessorName returns prefix followed by the camelized field name, e.g.
// ("get", "max_health") gives "getMaxHealth".
func AccessorName(prefix, field string) string {
	return prefix + inflect.Camelize(strings.TrimPrefix(field, "_"))
}

var scalars = map[string]bool{
	"bool": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "unsigned": true, "signed": true,
	"size_t": true, "std::size_t": true,
	"int8_t": true, "int16_t": true, "int32_t": true, "int64_t": true,
	"uint8_t": true, "uint16_t": true, "uint32_t": true, "uint64_t": true,
	"std::int8_t": true, "std::int16_t": true, "std::int32_t": true, "std::int64_t": true,
	"std::uint8_t": true, "std::uint16_t": true, "std::uint32_t": true, "std::uint64_t": true,
}

// isScalar reports whether values of typ are passed by value.
func isScalar(typ string) bool {
	if strings.HasSuffix(typ, "*") || strings.HasSuffix(typ, "&") {
		return true
	}
	for _, w := range strings.Fields(typ) {
		if !scalars[w] {
			return false
		}
	}
	return typ != ""
}

var (
	_ macro.ClassFooterGenerator      = (*GetGenerator)(nil)
	_ macro.ClassFooterGenerator      = (*SetGenerator)(nil)
	_ macro.PreGenerator              = (*ToStringGenerator)(nil)
	_ macro.HeaderFileFooterGenerator = (*ToStringGenerator)(nil)
	_ macro.SourceFileHeaderGenerator = (*ToStringGenerator)(nil)
)
