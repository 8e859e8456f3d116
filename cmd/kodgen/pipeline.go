package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/syssam/kodgen/compiler"
	"github.com/syssam/kodgen/compiler/gen"
	"github.com/syssam/kodgen/compiler/gen/builtin"
	"github.com/syssam/kodgen/compiler/gen/gogen"
	"github.com/syssam/kodgen/compiler/gen/macro"
	"github.com/syssam/kodgen/compiler/parse"
	"github.com/syssam/kodgen/property"
)

// pipeline is everything a run needs, built from settings.
type pipeline struct {
	settings *compiler.Settings
	rules    *property.Registry
	parser   *parse.HeaderParser
	unit     gen.Unit
	manager  *compiler.Manager
}

func newPipeline(s *compiler.Settings, logger *slog.Logger) (*pipeline, error) {
	ps, err := s.Parsing.ParserSettings()
	if err != nil {
		return nil, err
	}
	p := &pipeline{settings: s, rules: property.NewRegistry()}
	p.parser = parse.NewHeaderParser(p.rules).WithSettings(ps).WithLogger(logger)

	var unitOpts []gen.Option
	if s.Output.Dir != "" {
		unitOpts = append(unitOpts, gen.WithOutputDir(s.Output.Dir))
	}
	if s.Output.Extension != "" {
		unitOpts = append(unitOpts, gen.WithExtension(s.Output.Extension))
	}
	if s.Output.Header != "" {
		unitOpts = append(unitOpts, gen.WithHeader(s.Output.Header))
	}
	unitOpts = append(unitOpts, gen.WithLogger(logger))

	switch s.Output.Backend {
	case "", "macro":
		u, err := macro.NewUnit(unitOpts...)
		if err != nil {
			return nil, err
		}
		u.WithMacros(p.parser.Settings().Macros)
		if _, err := builtin.Register(p.rules, u); err != nil {
			return nil, err
		}
		p.unit = u
	case "go":
		u, err := gogen.NewUnit(s.Output.Package, unitOpts...)
		if err != nil {
			return nil, err
		}
		if err := builtin.RegisterRules(p.rules); err != nil {
			return nil, err
		}
		u.AddGenerators("enums", gogen.NewEnumNamesGenerator(builtin.ToString))
		p.unit = u
	default:
		return nil, fmt.Errorf("unknown backend %q", s.Output.Backend)
	}

	p.manager = compiler.NewManager(s.Manager)
	p.manager.Logger = logger
	return p, nil
}

func (p *pipeline) run(ctx context.Context) *compiler.Report {
	return p.manager.Run(ctx, p.parser, p.unit,
		compiler.WithThreadCount(p.settings.ThreadCount),
		compiler.WithForceRegenerate(p.settings.Force))
}
