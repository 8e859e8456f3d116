package compiler

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// FileError is a failure attached to the file it happened in. File is
// empty for run-level failures.
type FileError struct {
	File string
	Err  error
}

func (e FileError) Error() string {
	if e.File == "" {
		return e.Err.Error()
	}
	return e.File + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error { return e.Err }

// Report is the outcome of a run. Its lists are sorted.
type Report struct {
	RunID uuid.UUID
	// Completed is false when the setup checks failed and no file was
	// processed.
	Completed bool
	// Generated lists the source files whose output was written.
	Generated []string
	// Outputs lists the generated files.
	Outputs []string
	// UpToDate lists the source files skipped because their output is newer.
	UpToDate []string
	Errors   []FileError
	Duration time.Duration
}

// Success reports whether the run completed without any error.
func (r *Report) Success() bool {
	return r.Completed && len(r.Errors) == 0
}

// ErrorsOf returns the errors recorded for file.
func (r *Report) ErrorsOf(file string) []error {
	var errs []error
	for _, fe := range r.Errors {
		if fe.File == file {
			errs = append(errs, fe.Err)
		}
	}
	return errs
}

func (r *Report) merge(p *Report) {
	if p == nil {
		return
	}
	r.Generated = append(r.Generated, p.Generated...)
	r.Outputs = append(r.Outputs, p.Outputs...)
	r.UpToDate = append(r.UpToDate, p.UpToDate...)
	r.Errors = append(r.Errors, p.Errors...)
}

func (r *Report) sort() {
	slices.Sort(r.Generated)
	slices.Sort(r.Outputs)
	slices.Sort(r.UpToDate)
	slices.SortStableFunc(r.Errors, func(a, b FileError) int {
		return cmp.Or(strings.Compare(a.File, b.File), strings.Compare(a.Err.Error(), b.Err.Error()))
	})
}

// Summary is the serializable form of a Report.
type Summary struct {
	RunID     string         `yaml:"run_id" msgpack:"run_id"`
	Completed bool           `yaml:"completed" msgpack:"completed"`
	Success   bool           `yaml:"success" msgpack:"success"`
	Generated []string       `yaml:"generated,omitempty" msgpack:"generated,omitempty"`
	Outputs   []string       `yaml:"outputs,omitempty" msgpack:"outputs,omitempty"`
	UpToDate  []string       `yaml:"up_to_date,omitempty" msgpack:"up_to_date,omitempty"`
	Errors    []ErrorSummary `yaml:"errors,omitempty" msgpack:"errors,omitempty"`
	Duration  time.Duration  `yaml:"duration" msgpack:"duration"`
}

// ErrorSummary is the serializable form of a FileError.
type ErrorSummary struct {
	File    string `yaml:"file,omitempty" msgpack:"file,omitempty"`
	Message string `yaml:"message" msgpack:"message"`
}

// Summary returns the serializable form of r.
func (r *Report) Summary() *Summary {
	s := &Summary{
		RunID:     r.RunID.String(),
		Completed: r.Completed,
		Success:   r.Success(),
		Generated: r.Generated,
		Outputs:   r.Outputs,
		UpToDate:  r.UpToDate,
		Duration:  r.Duration,
	}
	for _, fe := range r.Errors {
		s.Errors = append(s.Errors, ErrorSummary{File: fe.File, Message: fe.Err.Error()})
	}
	return s
}

// WriteSummary writes the summary of r to path, as YAML for .yaml and .yml
// files and as MessagePack for .msgpack and .mp files.
func WriteSummary(path string, r *Report) error {
	var (
		data []byte
		err  error
	)
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(r.Summary())
	case ".msgpack", ".mp":
		data, err = msgpack.Marshal(r.Summary())
	default:
		return fmt.Errorf("compiler: unsupported report format %q", ext)
	}
	if err != nil {
		return fmt.Errorf("compiler: encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("compiler: create directory for %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadSummary reads a summary written by WriteSummary.
func ReadSummary(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compiler: read report: %w", err)
	}
	var s Summary
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &s)
	case ".msgpack", ".mp":
		err = msgpack.Unmarshal(data, &s)
	default:
		return nil, fmt.Errorf("compiler: unsupported report format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("compiler: decode %s: %w", filepath.Base(path), err)
	}
	return &s, nil
}
