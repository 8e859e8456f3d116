package compiler

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/kodgen"
	"github.com/syssam/kodgen/compiler/gen"
	"github.com/syssam/kodgen/compiler/parse"
)

// DefaultThreadCount is used when the hardware concurrency is unknown.
const DefaultThreadCount = 8

// ManagerSettings selects the files a Manager processes.
type ManagerSettings struct {
	// Files are processed whatever their extension.
	Files []string `toml:"files" yaml:"files"`
	// Directories are searched recursively for files with a supported
	// extension.
	Directories []string `toml:"directories" yaml:"directories"`
	// IgnoredFiles are never processed.
	IgnoredFiles []string `toml:"ignored_files" yaml:"ignored_files"`
	// IgnoredDirectories are not searched, nor are their files processed.
	IgnoredDirectories []string `toml:"ignored_directories" yaml:"ignored_directories"`
	// SupportedExtensions filters the files found in Directories.
	// Defaults to .h and .hpp.
	SupportedExtensions []string `toml:"supported_extensions" yaml:"supported_extensions"`
}

// DefaultExtensions are the supported extensions when none are set.
var DefaultExtensions = []string{".h", ".hpp"}

// SetupWriter is implemented by units that need files written once per run,
// before any source is processed.
type SetupWriter interface {
	WriteSetupFiles(ctx context.Context) error
}

// Manager runs a parser and a unit over a set of files.
type Manager struct {
	Settings ManagerSettings
	Logger   *slog.Logger
}

// NewManager returns a manager using the default logger.
func NewManager(settings ManagerSettings) *Manager {
	return &Manager{Settings: settings, Logger: slog.Default()}
}

// RunOption configures a single run.
type RunOption func(*runConfig)

type runConfig struct {
	force   bool
	threads int
}

// WithForceRegenerate regenerates every file, up to date or not.
func WithForceRegenerate(force bool) RunOption {
	return func(c *runConfig) { c.force = force }
}

// WithThreadCount sets the number of workers. 0 means one per CPU, 1 runs
// every file on the calling goroutine.
func WithThreadCount(n int) RunOption {
	return func(c *runConfig) { c.threads = max(n, 0) }
}

// ThreadCount resolves a requested worker count.
func ThreadCount(n int) int {
	if n > 0 {
		return n
	}
	if c := runtime.NumCPU(); c > 0 {
		return c
	}
	return DefaultThreadCount
}

// Run processes the files selected by the settings and reports the outcome.
// Failures of individual files are recorded and do not stop the others;
// failures of the setup abort the run before any file is touched.
func (m *Manager) Run(ctx context.Context, parser parse.Parser, unit gen.Unit, opts ...RunOption) *Report {
	start := time.Now()
	cfg := runConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	report := &Report{RunID: uuid.New()}
	log := m.logger().With("run", report.RunID.String())
	defer func() {
		report.Duration = time.Since(start)
		report.sort()
	}()

	if err := checkSetup(ctx, parser, unit); err != nil {
		log.Error("generation setup failed", "error", err)
		report.Errors = append(report.Errors, FileError{Err: err})
		return report
	}
	report.Completed = true

	files, missing := m.Files()
	report.Errors = append(report.Errors, missing...)
	var todo []string
	for _, f := range files {
		if !cfg.force && unit.IsUpToDate(f) {
			report.UpToDate = append(report.UpToDate, f)
			continue
		}
		todo = append(todo, f)
	}

	threads := ThreadCount(cfg.threads)
	log.Info("processing files", "files", len(todo), "up_to_date", len(report.UpToDate), "workers", threads)
	if threads == 1 {
		report.merge(process(ctx, log, parser, unit, todo))
		return report
	}

	chunks := partition(todo, threads)
	partials := make([]*Report, len(chunks))
	var g errgroup.Group
	g.SetLimit(threads)
	for i, chunk := range chunks {
		p, u := parser.Clone(), unit.Clone()
		g.Go(func() error {
			partials[i] = process(ctx, log.With("worker", i), p, u, chunk)
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("run interrupted", "error", err)
	}
	for _, p := range partials {
		report.merge(p)
	}
	return report
}

// process parses and generates files in order and returns their outcome.
func process(ctx context.Context, log *slog.Logger, parser parse.Parser, unit gen.Unit, files []string) *Report {
	partial := &Report{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			partial.Errors = append(partial.Errors, FileError{File: f, Err: err})
			continue
		}
		res, err := parser.Parse(ctx, f)
		if err != nil {
			log.Warn("parse failed", "file", f, "error", err)
			partial.Errors = append(partial.Errors, FileError{File: f, Err: err})
			continue
		}
		for _, e := range res.Errors {
			partial.Errors = append(partial.Errors, FileError{File: f, Err: e})
		}
		out, err := unit.Generate(ctx, res)
		if err != nil {
			log.Warn("generation failed", "file", f, "error", err)
			partial.Errors = append(partial.Errors, FileError{File: f, Err: err})
			continue
		}
		log.Debug("generated", "file", f, "output", out)
		partial.Generated = append(partial.Generated, f)
		partial.Outputs = append(partial.Outputs, out)
	}
	return partial
}

// partition deals files round-robin into at most n chunks.
func partition(files []string, n int) [][]string {
	n = min(n, len(files))
	chunks := make([][]string, n)
	for i, f := range files {
		chunks[i%n] = append(chunks[i%n], f)
	}
	return chunks
}

func checkSetup(ctx context.Context, parser parse.Parser, unit gen.Unit) error {
	switch {
	case parser == nil:
		return kodgen.NewSetupError("Parser", "parser is nil", nil)
	case unit == nil:
		return kodgen.NewSetupError("Unit", "unit is nil", nil)
	}
	if err := unit.CheckSettings(); err != nil {
		if !kodgen.IsSetupError(err) {
			err = kodgen.NewSetupError("Unit", "invalid unit settings", err)
		}
		return err
	}
	if sw, ok := unit.(SetupWriter); ok {
		if err := sw.WriteSetupFiles(ctx); err != nil {
			return kodgen.NewSetupError("SetupFiles", "cannot write setup files", err)
		}
	}
	return nil
}

// Files returns the sorted, absolute paths of the files to process, and an
// error for each configured path that cannot be read.
func (m *Manager) Files() ([]string, []FileError) {
	var (
		errs    []FileError
		found   = make(map[string]bool)
		exts    = m.Settings.SupportedExtensions
		ignoreF = absAll(m.Settings.IgnoredFiles)
		ignoreD = absAll(m.Settings.IgnoredDirectories)
	)
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	ignored := func(path string) bool {
		if slices.Contains(ignoreF, path) {
			return true
		}
		for _, d := range ignoreD {
			if Within(path, d) {
				return true
			}
		}
		return false
	}

	for _, f := range m.Settings.Files {
		path, err := filepath.Abs(f)
		if err == nil {
			var info os.FileInfo
			if info, err = os.Stat(path); err == nil && info.IsDir() {
				err = errors.New("is a directory")
			}
		}
		if err != nil {
			if path == "" {
				path = f
			}
			errs = append(errs, FileError{File: path, Err: kodgen.NewParseError(path, 0, "cannot read input file", err)})
			continue
		}
		if !ignored(path) {
			found[path] = true
		}
	}

	for _, d := range m.Settings.Directories {
		root, err := filepath.Abs(d)
		if err != nil {
			errs = append(errs, FileError{File: d, Err: kodgen.NewParseError(d, 0, "cannot read input directory", err)})
			continue
		}
		err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if ignored(path) {
				if entry.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !entry.IsDir() && slices.Contains(exts, filepath.Ext(path)) {
				found[path] = true
			}
			return nil
		})
		if err != nil {
			errs = append(errs, FileError{File: d, Err: kodgen.NewParseError(d, 0, "cannot read input directory", err)})
		}
	}

	files := make([]string, 0, len(found))
	for f := range found {
		files = append(files, f)
	}
	slices.Sort(files)
	return files, errs
}

func (m *Manager) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func absAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			out = append(out, abs)
		}
	}
	return out
}

// Within reports whether path is dir or below it.
func Within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
