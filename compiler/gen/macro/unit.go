package macro

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/syssam/kodgen"
	"github.com/syssam/kodgen/compiler/gen"
	"github.com/syssam/kodgen/compiler/parse"
	"github.com/syssam/kodgen/entity"
)

// DefaultExtension is the extension of generated headers.
const DefaultExtension = ".kg.h"

// SourceDefine is the macro a translation unit defines to compile the
// SourceFileHeader section of a generated header.
const SourceDefine = "KODGEN_SOURCE"

// Unit generates one macro header per parsed file.
type Unit struct {
	*gen.UnitBase

	macros parse.MacroNames
	writer *gen.FileWriter
}

// NewUnit returns a unit generating <stem>.kg.h files unless another
// extension is configured.
func NewUnit(opts ...gen.Option) (*Unit, error) {
	base, err := gen.NewUnitBase(DefaultExtension, opts...)
	if err != nil {
		return nil, err
	}
	return &Unit{UnitBase: base, macros: parse.DefaultMacroNames(), writer: &gen.FileWriter{}}, nil
}

// WithMacros sets the annotation macros written to EntityMacros.h. They
// should match the names the parser recognizes.
func (u *Unit) WithMacros(m parse.MacroNames) *Unit {
	u.macros = m.WithDefaults()
	return u
}

// Macros returns the annotation macro names.
func (u *Unit) Macros() parse.MacroNames { return u.macros }

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

// WriteSetupFiles writes EntityMacros.h to the output directory.
func (u *Unit) WriteSetupFiles(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteMacrosFile(u.Config().OutputDir, u.macros)
}

// Clone implements gen.Unit.
func (u *Unit) Clone() gen.Unit {
	return &Unit{UnitBase: u.CloneBase(), macros: u.macros, writer: u.writer}
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
		code, err := u.collect(res)
		if err != nil {
			return err
		}
		return u.writer.Write(path, []byte(u.render(res, code)))
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// fileCode is the code generated for one file, split per location.
type fileCode struct {
	sections [LocationCount][]string
	records  []*entity.Entity
	footers  map[entity.ID][]string
}

// collect runs the modules once per location: first file-wide, then on
// every entity of the tree.
func (u *Unit) collect(res *entity.ParsingResult) (*fileCode, error) {
	code := &fileCode{footers: make(map[entity.ID][]string)}
	res.Walk(func(e *entity.Entity) entity.IterationResult {
		if entity.Records.Has(e.Kind) {
			code.records = append(code.records, e)
		}
		return entity.Recurse
	})

	var out strings.Builder
	for _, loc := range Locations() {
		env := NewEnv(res, u.Logger(), loc)
		out.Reset()
		if err := u.RunModules(nil, env, &out); err != nil {
			return nil, err
		}
		code.sections[loc] = append(code.sections[loc], lines(out.String())...)

		var genErr error
		res.Walk(func(e *entity.Entity) entity.IterationResult {
			if loc == ClassFooter && !(entity.Records | entity.Members).Has(e.Kind) {
				return entity.Recurse
			}
			out.Reset()
			if err := u.RunModules(e, env, &out); err != nil {
				genErr = err
				return entity.AbortWithFailure
			}
			generated := lines(out.String())
			if len(generated) == 0 {
				return entity.Recurse
			}
			if loc != ClassFooter {
				code.sections[loc] = append(code.sections[loc], generated...)
				return entity.Recurse
			}
			owner := e
			if !entity.Records.Has(e.Kind) {
				owner = e.Enclosing(entity.Records)
			}
			if owner == nil {
				genErr = kodgen.NewInternalError("%s has no enclosing class", e)
				return entity.AbortWithFailure
			}
			code.footers[owner.ID] = append(code.footers[owner.ID], generated...)
			return entity.Recurse
		})
		if genErr != nil {
			return nil, genErr
		}
	}
	return code, nil
}

func (u *Unit) render(res *entity.ParsingResult, code *fileCode) string {
	var b strings.Builder
	b.WriteString(gen.Banner("//", u.Config().Header))
	fmt.Fprintf(&b, "// Source: %s\n\n", filepath.Base(res.File))
	b.WriteString("#pragma once\n\n")
	fmt.Fprintf(&b, "#include %q\n\n", MacrosFileName)

	if s := code.sections[HeaderFileHeader]; len(s) > 0 {
		b.WriteString(strings.Join(s, HeaderFileHeader.Joiner()))
		b.WriteString("\n\n")
	}
	for _, r := range code.records {
		writeDefine(&b, RecordMacro(r), code.footers[r.ID], ClassFooter.Joiner())
	}
	writeDefine(&b, FileMacro(res.File), code.sections[HeaderFileFooter], HeaderFileFooter.Joiner())

	fmt.Fprintf(&b, "#ifdef %s\n\n", SourceDefine)
	if s := code.sections[SourceFileHeader]; len(s) > 0 {
		b.WriteString(strings.Join(s, SourceFileHeader.Joiner()))
		b.WriteString("\n\n")
	}
	b.WriteString("#endif\n")
	return b.String()
}

func writeDefine(b *strings.Builder, name string, body []string, joiner string) {
	b.WriteString("#define " + name)
	if len(body) > 0 {
		b.WriteString(joiner)
		b.WriteString(strings.Join(body, joiner))
	}
	b.WriteString("\n\n")
}

// RecordMacro returns the macro a class or struct expands in its body,
// e.g. "game_Player_GENERATED".
func RecordMacro(e *entity.Entity) string {
	return identifier(strings.ReplaceAll(e.FullName(), "::", "_")) + "_GENERATED"
}

// FileMacro returns the macro expanded at the bottom of the source header,
// e.g. "File_player_GENERATED".
func FileMacro(source string) string {
	base := filepath.Base(source)
	return "File_" + identifier(strings.TrimSuffix(base, filepath.Ext(base))) + "_GENERATED"
}

func identifier(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, s)
}

// lines splits generated text into lines, dropping trailing blank lines.
func lines(s string) []string {
	s = strings.TrimRight(s, " \t\r\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

var _ gen.Unit = (*Unit)(nil)
