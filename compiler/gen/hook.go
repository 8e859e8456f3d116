package gen

import (
	"context"

	"github.com/syssam/kodgen/entity"
)

// Generator generates the output of one parsed file.
type Generator interface {
	Generate(ctx context.Context, res *entity.ParsingResult) error
}

// GenerateFunc adapts a function to the Generator interface.
type GenerateFunc func(ctx context.Context, res *entity.ParsingResult) error

// Generate implements Generator.
func (f GenerateFunc) Generate(ctx context.Context, res *entity.ParsingResult) error {
	return f(ctx, res)
}

// Hook wraps a Generator to run code before or after it.
type Hook func(Generator) Generator

// Chain applies hooks to g. The first hook is the outermost one.
func Chain(g Generator, hooks ...Hook) Generator {
	for i := len(hooks) - 1; i >= 0; i-- {
		g = hooks[i](g)
	}
	return g
}
