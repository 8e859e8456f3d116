package gen

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/syssam/kodgen"
	"github.com/syssam/kodgen/entity"
)

// Unit turns one parsed file into one generated file. A unit is used by a
// single goroutine at a time; workers get their own copy through Clone.
type Unit interface {
	// Config returns the settings of the unit.
	Config() *Config
	// CheckSettings validates the settings and prepares the output
	// directory. It is called once before any file is processed.
	CheckSettings() error
	// GeneratedPath returns the output path for the source file.
	GeneratedPath(source string) string
	// IsUpToDate reports whether the output of source is newer than it.
	IsUpToDate(source string) bool
	// Generate writes the output of res and returns its path.
	Generate(ctx context.Context, res *entity.ParsingResult) (string, error)
	// Clone returns an independent copy sharing the read-only modules.
	Clone() Unit
}

// UnitBase implements the parts of Unit that do not depend on the output
// format. Concrete units embed it.
type UnitBase struct {
	config  *Config
	modules []*Module
}

// NewUnitBase returns a base with the given default extension.
func NewUnitBase(defaultExt string, opts ...Option) (*UnitBase, error) {
	c, err := NewConfig(defaultExt, opts...)
	if err != nil {
		return nil, err
	}
	return &UnitBase{config: c}, nil
}

// Config returns the settings of the unit.
func (u *UnitBase) Config() *Config { return u.config }

// Logger returns the unit logger.
func (u *UnitBase) Logger() *slog.Logger { return u.config.Logger }

// Use appends hooks run around the generation of every file.
func (u *UnitBase) Use(hooks ...Hook) {
	u.config.Hooks = append(u.config.Hooks, hooks...)
}

// AddModule registers m. Modules run sorted by Order, then insertion order.
func (u *UnitBase) AddModule(m *Module) {
	u.modules = append(u.modules, m)
	slices.SortStableFunc(u.modules, func(a, b *Module) int { return cmp.Compare(a.Order, b.Order) })
}

// RemoveModule unregisters m and reports whether it was registered.
func (u *UnitBase) RemoveModule(m *Module) bool {
	i := slices.Index(u.modules, m)
	if i < 0 {
		return false
	}
	u.modules = slices.Delete(u.modules, i, i+1)
	return true
}

// Modules returns the registered modules in generation order.
func (u *UnitBase) Modules() []*Module {
	return slices.Clone(u.modules)
}

// RunModules runs every module on e, stopping at the first failure.
func (u *UnitBase) RunModules(e *entity.Entity, env Env, out *strings.Builder) error {
	for _, m := range u.modules {
		if err := m.GenerateCode(e, env, out); err != nil {
			return err
		}
	}
	return nil
}

// CheckSettings validates the config and creates the output directory when
// it does not exist.
func (u *UnitBase) CheckSettings() error {
	if err := u.config.Check(); err != nil {
		return err
	}
	info, err := os.Stat(u.config.OutputDir)
	switch {
	case err == nil && !info.IsDir():
		return kodgen.NewSetupError("OutputDir", u.config.OutputDir+" is not a directory", nil)
	case err == nil:
		return nil
	case !errors.Is(err, os.ErrNotExist):
		return kodgen.NewSetupError("OutputDir", "cannot stat "+u.config.OutputDir, err)
	}
	if err := os.MkdirAll(u.config.OutputDir, 0o755); err != nil {
		return kodgen.NewSetupError("OutputDir", "cannot create "+u.config.OutputDir, err)
	}
	return nil
}

// GeneratedPath returns OutputDir/<source name without extension><Extension>.
func (u *UnitBase) GeneratedPath(source string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(u.config.OutputDir, base+u.config.Extension)
}

// IsUpToDate reports whether the generated file exists and its modification
// time is strictly after the source's.
func (u *UnitBase) IsUpToDate(source string) bool {
	return IsNewer(u.GeneratedPath(source), source)
}

// Run generates res through the configured hooks, core being the innermost
// generator.
func (u *UnitBase) Run(ctx context.Context, res *entity.ParsingResult, core GenerateFunc) error {
	if res == nil {
		return kodgen.NewInternalError("nil parsing result")
	}
	return Chain(core, u.config.Hooks...).Generate(ctx, res)
}

// CloneBase returns a copy with its own config and module list. Modules and
// generators are shared.
func (u *UnitBase) CloneBase() *UnitBase {
	c := *u.config
	c.Hooks = slices.Clone(u.config.Hooks)
	return &UnitBase{config: &c, modules: slices.Clone(u.modules)}
}

// IsNewer reports whether target exists and was modified strictly after
// source. A missing source counts as stale.
func IsNewer(target, source string) bool {
	ti, err := os.Stat(target)
	if err != nil {
		return false
	}
	si, err := os.Stat(source)
	if err != nil {
		return false
	}
	return ti.ModTime().After(si.ModTime())
}

// Banner formats header as a comment using prefix, one line per header line.
func Banner(prefix, header string) string {
	if header == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(header, "\n") {
		fmt.Fprintf(&b, "%s %s\n", prefix, line)
	}
	return b.String()
}
