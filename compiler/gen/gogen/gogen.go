// Package gogen generates, for every parsed header, a Go file describing its
// entities. Generators can add their own declarations to the file.
package gogen

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/tools/imports"

	"github.com/syssam/kodgen"
	"github.com/syssam/kodgen/compiler/gen"
	"github.com/syssam/kodgen/entity"
)

// DefaultExtension is the extension of generated Go files.
const DefaultExtension = ".kg.go"

// DefaultPackage is the package name of generated files.
const DefaultPackage = "reflection"

// Env is the generation environment of the Go unit.
type Env struct {
	*gen.BaseEnv
	file *jen.File
}

// NewEnv returns an environment adding declarations to f.
func NewEnv(res *entity.ParsingResult, logger *slog.Logger, f *jen.File) *Env {
	return &Env{BaseEnv: gen.NewBaseEnv(res, logger), file: f}
}

// File returns the file being generated.
func (e *Env) File() *jen.File { return e.file }

// Generator adds Go declarations for the properties it handles.
type Generator interface {
	ShouldGenerate(e *entity.Entity, p entity.Property, index int) bool
	GenerateGo(e *entity.Entity, p entity.Property, index int, env *Env) error
}

// Adapt turns g into a gen.PropertyCodeGen. The text builder handed to the
// adapted generator is not used: code goes to the jen.File of the Env.
func Adapt(g Generator) gen.PropertyCodeGen {
	return adapter{g}
}

type adapter struct{ Generator }

func (a adapter) Generate(e *entity.Entity, p entity.Property, index int, env gen.Env, _ *strings.Builder) error {
	genv, ok := env.(*Env)
	if !ok {
		return kodgen.NewInternalError("go generator %T run with %T environment", a.Generator, env)
	}
	return a.GenerateGo(e, p, index, genv)
}

// Unit writes one Go file per parsed file.
type Unit struct {
	*gen.UnitBase

	pkg    string
	writer *gen.FileWriter
}

// NewUnit returns a unit generating files of package pkg. An empty pkg
// means DefaultPackage.
func NewUnit(pkg string, opts ...gen.Option) (*Unit, error) {
	base, err := gen.NewUnitBase(DefaultExtension, opts...)
	if err != nil {
		return nil, err
	}
	if pkg == "" {
		pkg = DefaultPackage
	}
	if !isIdentifier(pkg) {
		return nil, kodgen.NewSetupError("Package", fmt.Sprintf("invalid package name %q", pkg), nil)
	}
	return &Unit{UnitBase: base, pkg: pkg, writer: &gen.FileWriter{Format: format}}, nil
}

// Package returns the package name of generated files.
func (u *Unit) Package() string { return u.pkg }

// Writer returns the writer shared by the unit and its clones.
func (u *Unit) Writer() *gen.FileWriter { return u.writer }

// AddGenerators adapts gens into a new module named name, registers it and
// returns it.
func (u *Unit) AddGenerators(name string, gens ...Generator) *gen.Module {
	m := gen.NewModule(name)
	for _, g := range gens {
		m.AddGenerator(Adapt(g))
	}
	u.AddModule(m)
	return m
}

// Clone implements gen.Unit.
func (u *Unit) Clone() gen.Unit {
	return &Unit{UnitBase: u.CloneBase(), pkg: u.pkg, writer: u.writer}
}

// Generate implements gen.Unit.
func (u *Unit) Generate(ctx context.Context, res *entity.ParsingResult) (string, error) {
	if res == nil {
		return "", kodgen.NewInternalError("nil parsing result")
	}
	path := u.GeneratedPath(res.File)
	err := u.Run(ctx, res, func(ctx context.Context, res *entity.ParsingResult) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := u.build(res)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := f.Render(&buf); err != nil {
			gerr := kodgen.NewGenerationError("", "", "render "+filepath.Base(path), err)
			gerr.File = res.File
			return gerr
		}
		return u.writer.Write(path, buf.Bytes())
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (u *Unit) build(res *entity.ParsingResult) (*jen.File, error) {
	f := jen.NewFile(u.pkg)
	if h := u.Config().Header; h != "" {
		f.HeaderComment(h)
	}
	f.PackageComment("Source: " + filepath.Base(res.File))

	var roots []jen.Code
	for _, c := range res.Root().Children {
		roots = append(roots, infoLiteral(c.Info()))
	}
	f.Commentf("%s describes the entities of %s.", DescriptorName(res.File), filepath.Base(res.File))
	f.Var().Id(DescriptorName(res.File)).Op("=").Index().Op("*").Qual(entityPkg, "Info").ValuesFunc(func(g *jen.Group) {
		for _, r := range roots {
			g.Add(r)
		}
	})

	env := NewEnv(res, u.Logger(), f)
	var unused strings.Builder
	if err := u.RunModules(nil, env, &unused); err != nil {
		return nil, err
	}
	var genErr error
	res.Walk(func(e *entity.Entity) entity.IterationResult {
		if err := u.RunModules(e, env, &unused); err != nil {
			genErr = err
			return entity.AbortWithFailure
		}
		return entity.Recurse
	})
	if genErr != nil {
		return nil, genErr
	}
	return f, nil
}

// format runs goimports on generated sources.
func format(path string, src []byte) ([]byte, error) {
	return imports.Process(path, src, nil)
}

var _ gen.Unit = (*Unit)(nil)
