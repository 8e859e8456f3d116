package macro

import (
	"log/slog"
	"strings"

	"github.com/syssam/kodgen"
	"github.com/syssam/kodgen/compiler/gen"
	"github.com/syssam/kodgen/entity"
)

// Env is the generation environment of the macro unit. It carries the
// location code is currently generated for.
type Env struct {
	*gen.BaseEnv
	location Location
}

// NewEnv returns an environment generating res at loc.
func NewEnv(res *entity.ParsingResult, logger *slog.Logger, loc Location) *Env {
	return &Env{BaseEnv: gen.NewBaseEnv(res, logger), location: loc}
}

// Location returns the location being generated.
func (e *Env) Location() Location { return e.location }

// Generator is a property generator of the macro unit. It only decides which
// properties it handles; the code itself comes from the optional
// per-location interfaces below, detected when the generator is adapted.
type Generator interface {
	ShouldGenerate(e *entity.Entity, p entity.Property, index int) bool
}

type (
	// PreGenerator runs before any code is generated for a property.
	PreGenerator interface {
		PreGenerate(e *entity.Entity, p entity.Property, index int, env *Env) error
	}
	// PostGenerator runs after every location has been generated for a
	// property.
	PostGenerator interface {
		PostGenerate(e *entity.Entity, p entity.Property, index int, env *Env) error
	}
	// HeaderFileHeaderGenerator emits code at HeaderFileHeader.
	HeaderFileHeaderGenerator interface {
		GenerateHeaderFileHeader(e *entity.Entity, p entity.Property, index int, env *Env, out *strings.Builder) error
	}
	// ClassFooterGenerator emits code at ClassFooter. It is only called for
	// classes, structs, fields and methods.
	ClassFooterGenerator interface {
		GenerateClassFooter(e *entity.Entity, p entity.Property, index int, env *Env, out *strings.Builder) error
	}
	// HeaderFileFooterGenerator emits code at HeaderFileFooter.
	HeaderFileFooterGenerator interface {
		GenerateHeaderFileFooter(e *entity.Entity, p entity.Property, index int, env *Env, out *strings.Builder) error
	}
	// SourceFileHeaderGenerator emits code at SourceFileHeader.
	SourceFileHeaderGenerator interface {
		GenerateSourceFileHeader(e *entity.Entity, p entity.Property, index int, env *Env, out *strings.Builder) error
	}
)

// Adapt turns g into a gen.PropertyCodeGen dispatching on the location of
// the environment it is run with.
func Adapt(g Generator) gen.PropertyCodeGen {
	return &adapter{g: g}
}

type adapter struct {
	g Generator
}

func (a *adapter) ShouldGenerate(e *entity.Entity, p entity.Property, index int) bool {
	return a.g.ShouldGenerate(e, p, index)
}

func (a *adapter) Generate(e *entity.Entity, p entity.Property, index int, env gen.Env, out *strings.Builder) error {
	menv, ok := env.(*Env)
	if !ok {
		return kodgen.NewInternalError("macro generator %T run with %T environment", a.g, env)
	}
	switch loc := menv.Location(); loc {
	case HeaderFileHeader:
		if pre, ok := a.g.(PreGenerator); ok {
			if err := pre.PreGenerate(e, p, index, menv); err != nil {
				return err
			}
		}
		if g, ok := a.g.(HeaderFileHeaderGenerator); ok {
			return g.GenerateHeaderFileHeader(e, p, index, menv, out)
		}
	case ClassFooter:
		if g, ok := a.g.(ClassFooterGenerator); ok {
			return g.GenerateClassFooter(e, p, index, menv, out)
		}
	case HeaderFileFooter:
		if g, ok := a.g.(HeaderFileFooterGenerator); ok {
			return g.GenerateHeaderFileFooter(e, p, index, menv, out)
		}
	case SourceFileHeader:
		if g, ok := a.g.(SourceFileHeaderGenerator); ok {
			if err := g.GenerateSourceFileHeader(e, p, index, menv, out); err != nil {
				return err
			}
		}
		if post, ok := a.g.(PostGenerator); ok {
			return post.PostGenerate(e, p, index, menv)
		}
	default:
		menv.Logger().Error("invalid code generation location",
			"location", loc.String(), "entity", e.FullName(), "property", p.Name)
		return kodgen.NewInternalError("invalid code generation location %s", loc)
	}
	return nil
}
