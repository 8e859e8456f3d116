package builtin_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/kodgen"
	"github.com/syssam/kodgen/compiler/gen"
	"github.com/syssam/kodgen/compiler/gen/builtin"
	"github.com/syssam/kodgen/compiler/gen/macro"
	"github.com/syssam/kodgen/compiler/parse"
	"github.com/syssam/kodgen/entity"
	"github.com/syssam/kodgen/property"
)

const gameHeader = `#pragma once

namespace game
{
	enum class KGEnum(ToString) Color { Red, Green = 4, Alias = 4, Default = Red, Zero = 0 };

	class KGClass() Player
	{
		KGField(Get(const, &), Set) std::string name;
		KGField(Get, Set(explicit)) int max_health;
		KGField(Get(*)) Stats stats;
		KGField(Get(explicit)) const int id;

		game_Player_GENERATED
	};
}

File_game_GENERATED
`

func TestRegisterAndGenerate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "game.h")
	require.NoError(t, os.WriteFile(src, []byte(gameHeader), 0o644))

	reg := property.NewRegistry()
	u, err := macro.NewUnit(gen.WithOutputDir(filepath.Join(dir, "out")))
	require.NoError(t, err)
	m, err := builtin.Register(reg, u)
	require.NoError(t, err)
	assert.Equal(t, builtin.ModuleName, m.Name)
	assert.Len(t, m.Generators(), 3)
	assert.Equal(t, []string{"Get", "Set", "ToString"}, reg.Names())

	res, err := parse.NewHeaderParser(reg).Parse(context.Background(), src)
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	path, err := u.Generate(context.Background(), res)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, strings.Join([]string{
		"#define game_Player_GENERATED",
		"const std::string& getName() const { return name; }",
		"void setName(const std::string& value) { name = value; }",
		"int getMaxHealth() const { return max_health; }",
		"void setMaxHealth(int value);",
		"Stats* getStats() { return &stats; }",
		"const int getId() const;",
	}, " \\\n\t")+"\n")

	assert.Contains(t, out, "#define File_game_GENERATED \\\n\tconst char* toString(game::Color value) noexcept;\n")
	assert.Contains(t, out, `const char* toString(game::Color value) noexcept
{
	if (value == game::Color::Red) return "Red";
	if (value == game::Color::Green) return "Green";
	if (value == game::Color::Alias) return "Alias";
	if (value == game::Color::Default) return "Default";
	if (value == game::Color::Zero) return "Zero";
	return "";
}`)
	assert.NotContains(t, out, "switch", "aliased values would repeat case labels")

	t.Run("DuplicateRegistration", func(t *testing.T) {
		_, err := builtin.Register(reg, u)
		require.Error(t, err)
		assert.ErrorIs(t, err, kodgen.ErrDuplicateRule)
		assert.Len(t, u.Modules(), 1)
	})
}

func TestRules(t *testing.T) {
	reg := property.NewRegistry()
	require.NoError(t, builtin.RegisterRules(reg))

	tests := []struct {
		name  string
		kind  entity.Kind
		typ   string
		props entity.PropertyGroup
		want  property.ErrorKind
		ok    bool
	}{
		{name: "GetPlain", kind: entity.Field, typ: "int", props: entity.PropertyGroup{{Name: "Get"}}, ok: true},
		{name: "GetAll", kind: entity.Field, typ: "int", props: entity.PropertyGroup{{Name: "Get", SubProperties: []string{"const", "&", "explicit"}}}, ok: true},
		{name: "GetOnClass", kind: entity.Class, props: entity.PropertyGroup{{Name: "Get"}}, want: property.InvalidMainPropertySyntax},
		{name: "GetBadSub", kind: entity.Field, typ: "int", props: entity.PropertyGroup{{Name: "Get", SubProperties: []string{"volatile"}}}, want: property.InvalidSubPropertySyntax},
		{name: "GetRefAndPtr", kind: entity.Field, typ: "int", props: entity.PropertyGroup{{Name: "Get", SubProperties: []string{"&", "*"}}}, want: property.InvalidPropertyGroup},
		{name: "GetRepeated", kind: entity.Field, typ: "int", props: entity.PropertyGroup{{Name: "Get", SubProperties: []string{"const", "const"}}}, want: property.InvalidPropertyGroup},
		{name: "SetExplicit", kind: entity.Field, typ: "int", props: entity.PropertyGroup{{Name: "Set", SubProperties: []string{"explicit"}}}, ok: true},
		{name: "SetTwoSubs", kind: entity.Field, typ: "int", props: entity.PropertyGroup{{Name: "Set", SubProperties: []string{"explicit", "explicit"}}}, want: property.InvalidPropertyGroup},
		{name: "SetConst", kind: entity.Field, typ: "const int", props: entity.PropertyGroup{{Name: "Set"}}, want: property.InvalidEntityForProperty},
		{name: "SetConstPointer", kind: entity.Field, typ: "char* const", props: entity.PropertyGroup{{Name: "Set"}}, want: property.InvalidEntityForProperty},
		{name: "SetPointerToConst", kind: entity.Field, typ: "const char*", props: entity.PropertyGroup{{Name: "Set"}}, ok: true},
		{name: "ToString", kind: entity.Enum, props: entity.PropertyGroup{{Name: "ToString"}}, ok: true},
		{name: "ToStringSub", kind: entity.Enum, props: entity.PropertyGroup{{Name: "ToString", SubProperties: []string{"x"}}}, want: property.InvalidSubPropertySyntax},
		{name: "ToStringOnField", kind: entity.Field, typ: "int", props: entity.PropertyGroup{{Name: "ToString"}}, want: property.InvalidMainPropertySyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := entity.NewTree()
			parent := (*entity.Entity)(nil)
			if tt.kind == entity.Field {
				var err error
				parent, err = tree.Add(nil, entity.Class, "C")
				require.NoError(t, err)
			}
			e, err := tree.Add(parent, tt.kind, "x")
			require.NoError(t, err)
			e.Type = tt.typ
			e.Properties = tt.props

			verr := reg.Validate(e)
			if tt.ok {
				assert.Nil(t, verr)
				return
			}
			require.NotNil(t, verr)
			assert.Equal(t, tt.want, verr.Kind, verr.Error())
		})
	}
}

func TestAccessorName(t *testing.T) {
	assert.Equal(t, "getHealth", builtin.AccessorName("get", "health"))
	assert.Equal(t, "setMaxHealth", builtin.AccessorName("set", "max_health"))
	assert.Equal(t, "getCount", builtin.AccessorName("get", "_count"))
}
