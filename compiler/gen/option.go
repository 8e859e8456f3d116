package gen

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/syssam/kodgen"
)

// DefaultHeader is the banner written at the top of generated files.
const DefaultHeader = "Code generated by kodgen. DO NOT EDIT."

// Config holds the settings a Unit needs to compute output paths and
// up-to-dateness.
type Config struct {
	// OutputDir is the directory generated files are written to.
	OutputDir string
	// Extension replaces the extension of the source file name,
	// e.g. ".kg.h" turns "player.h" into "player.kg.h".
	Extension string
	// Header is the banner written at the top of generated files.
	Header string
	// Hooks wrap the generation of every file.
	Hooks []Hook
	// Logger receives generation diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Option configures a Unit.
type Option func(*Config) error

// WithOutputDir sets the output directory.
func WithOutputDir(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return kodgen.NewSetupError("OutputDir", "output directory cannot be empty", nil)
		}
		c.OutputDir = dir
		return nil
	}
}

// WithExtension sets the generated-file extension.
// The extension must start with a dot, for example ".kg.h".
func WithExtension(ext string) Option {
	return func(c *Config) error {
		if err := checkExtension(ext); err != nil {
			return err
		}
		c.Extension = ext
		return nil
	}
}

// WithHeader sets the banner of generated files.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithHooks adds generation hooks.
func WithHooks(hooks ...Hook) Option {
	return func(c *Config) error {
		for _, h := range hooks {
			if h == nil {
				return kodgen.NewSetupError("Hooks", "hook cannot be nil", nil)
			}
		}
		c.Hooks = append(c.Hooks, hooks...)
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		if l == nil {
			return kodgen.NewSetupError("Logger", "logger cannot be nil", nil)
		}
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Check reports settings that are structurally inconsistent. It does not
// touch the file system.
func (c *Config) Check() error {
	if c.OutputDir == "" {
		return kodgen.NewSetupError("OutputDir", "output directory is not set", nil)
	}
	return checkExtension(c.Extension)
}

// NewConfig creates a Config with the given defaults and options.
func NewConfig(defaultExt string, opts ...Option) (*Config, error) {
	c := &Config{Extension: defaultExt, Header: DefaultHeader}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c, nil
}

// MustNewConfig is like NewConfig but panics on error.
func MustNewConfig(defaultExt string, opts ...Option) *Config {
	c, err := NewConfig(defaultExt, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func checkExtension(ext string) error {
	switch {
	case ext == "":
		return kodgen.NewSetupError("Extension", "extension cannot be empty", nil)
	case !strings.HasPrefix(ext, "."):
		return kodgen.NewSetupError("Extension", "extension must start with a dot: "+ext, nil)
	case strings.ContainsAny(ext, `/\`):
		return kodgen.NewSetupError("Extension", "extension cannot contain a path separator: "+ext, nil)
	}
	return nil
}
