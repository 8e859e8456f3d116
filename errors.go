package kodgen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure classes of a generation run.
var (
	// ErrSetup is returned when a run is aborted before any file is processed.
	ErrSetup = errors.New("kodgen: invalid setup")

	// ErrParse is returned when a source file cannot be parsed.
	ErrParse = errors.New("kodgen: parse failed")

	// ErrPropertyValidation is returned when an entity's properties are rejected.
	ErrPropertyValidation = errors.New("kodgen: property validation failed")

	// ErrGeneration is returned when a generator fails mid-dispatch.
	ErrGeneration = errors.New("kodgen: code generation failed")

	// ErrInternal is returned when an internal invariant is broken.
	ErrInternal = errors.New("kodgen: internal error")

	// ErrInvalidNesting is returned when an entity kind cannot be nested
	// under its parent's kind.
	ErrInvalidNesting = errors.New("kodgen: invalid entity nesting")

	// ErrDuplicateRule is returned when a property name already has a rule.
	ErrDuplicateRule = errors.New("kodgen: duplicate property rule")

	// ErrPropertySyntax is returned when an annotation string is malformed.
	ErrPropertySyntax = errors.New("kodgen: malformed property annotation")
)

// SetupError represents a fatal configuration problem detected before
// dispatching any file.
type SetupError struct {
	Option  string // Setting name, e.g. "OutputDir"
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SetupError) Error() string {
	var b strings.Builder
	b.WriteString("kodgen: setup error")
	if e.Option != "" {
		fmt.Fprintf(&b, " for %q", e.Option)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SetupError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrSetup.
func (e *SetupError) Is(target error) bool {
	return target == ErrSetup
}

// NewSetupError returns a new SetupError.
func NewSetupError(option, message string, cause error) *SetupError {
	return &SetupError{Option: option, Message: message, Cause: cause}
}

// IsSetupError returns true if the error is a SetupError.
func IsSetupError(err error) bool {
	if err == nil {
		return false
	}
	var e *SetupError
	return errors.As(err, &e) || errors.Is(err, ErrSetup)
}

// ParseError represents a failure to turn a source file into an entity tree.
type ParseError struct {
	File    string
	Line    int // 0 when unknown
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("kodgen: parse error")
	if e.File != "" {
		b.WriteString(" in ")
		b.WriteString(e.File)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// NewParseError returns a new ParseError.
func NewParseError(file string, line int, message string, cause error) *ParseError {
	return &ParseError{File: file, Line: line, Message: message, Cause: cause}
}

// IsParseError returns true if the error is a ParseError.
func IsParseError(err error) bool {
	if err == nil {
		return false
	}
	var e *ParseError
	return errors.As(err, &e) || errors.Is(err, ErrParse)
}

// GenerationError represents a failure raised by a generation module or one
// of its property generators.
type GenerationError struct {
	File    string // Source file being generated
	Entity  string // Qualified entity name (if applicable)
	Module  string // Module name (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("kodgen: generation error")
	if e.Module != "" {
		fmt.Fprintf(&b, " in module %s", e.Module)
	}
	if e.Entity != "" {
		fmt.Fprintf(&b, " for %s", e.Entity)
	}
	if e.File != "" {
		fmt.Fprintf(&b, " (%s)", e.File)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrGeneration.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

// NewGenerationError returns a new GenerationError.
func NewGenerationError(module, entity, message string, cause error) *GenerationError {
	return &GenerationError{Module: module, Entity: entity, Message: message, Cause: cause}
}

// IsGenerationError returns true if the error is a GenerationError.
func IsGenerationError(err error) bool {
	if err == nil {
		return false
	}
	var e *GenerationError
	return errors.As(err, &e) || errors.Is(err, ErrGeneration)
}

// InternalError represents a broken invariant, such as an unknown
// generation location. It is never swallowed.
type InternalError struct {
	Message string
}

// Error implements the error interface.
func (e *InternalError) Error() string {
	return "kodgen: internal error: " + e.Message
}

// Is reports whether the target matches ErrInternal.
func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

// NewInternalError returns a new InternalError with a formatted message.
func NewInternalError(format string, args ...any) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}

// IsInternalError returns true if the error is an InternalError.
func IsInternalError(err error) bool {
	if err == nil {
		return false
	}
	var e *InternalError
	return errors.As(err, &e) || errors.Is(err, ErrInternal)
}
