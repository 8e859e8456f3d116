package builtin

import (
	"github.com/syssam/kodgen/compiler/gen"
	"github.com/syssam/kodgen/compiler/gen/macro"
	"github.com/syssam/kodgen/property"
)

// ModuleName is the name of the module registered by Register.
const ModuleName = "builtin"

// Register adds the builtin rules to reg and the builtin generators to u,
// in a single module. It fails without touching u when a rule name is
// already taken.
func Register(reg *property.Registry, u *macro.Unit) (*gen.Module, error) {
	if err := RegisterRules(reg); err != nil {
		return nil, err
	}
	return u.AddGenerators(ModuleName, NewGetGenerator(), NewSetGenerator(), NewToStringGenerator()), nil
}
