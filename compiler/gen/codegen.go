package gen

import (
	"log/slog"
	"strings"

	"github.com/syssam/kodgen/entity"
)

// Env is the per-file context handed to property generators. Units extend
// it with their own state, e.g. the current location.
type Env interface {
	// Result returns the file being generated.
	Result() *entity.ParsingResult
	// Logger returns the logger of the unit.
	Logger() *slog.Logger
}

// BaseEnv is the minimal Env implementation.
type BaseEnv struct {
	result *entity.ParsingResult
	logger *slog.Logger
}

// NewBaseEnv returns an Env for res.
func NewBaseEnv(res *entity.ParsingResult, logger *slog.Logger) *BaseEnv {
	if logger == nil {
		logger = slog.Default()
	}
	return &BaseEnv{result: res, logger: logger.With("file", res.File)}
}

// Result implements Env.
func (e *BaseEnv) Result() *entity.ParsingResult { return e.result }

// Logger implements Env.
func (e *BaseEnv) Logger() *slog.Logger { return e.logger }

// PropertyCodeGen emits code for properties it recognizes.
type PropertyCodeGen interface {
	// ShouldGenerate reports whether the generator handles the property at
	// index of e.
	ShouldGenerate(e *entity.Entity, p entity.Property, index int) bool
	// Generate appends code for the property at index of e to out.
	Generate(e *entity.Entity, p entity.Property, index int, env Env, out *strings.Builder) error
}

// NamedPropertyGenerator is embedded by generators bound to a single
// property name.
type NamedPropertyGenerator struct {
	// Property is the handled property name.
	Property string
	// Kinds restricts the entity kinds. Zero means every kind.
	Kinds entity.KindMask
}

// ShouldGenerate implements part of PropertyCodeGen.
func (g NamedPropertyGenerator) ShouldGenerate(e *entity.Entity, p entity.Property, _ int) bool {
	if p.Name != g.Property {
		return false
	}
	return g.Kinds == entity.NoKinds || g.Kinds.Has(e.Kind)
}
