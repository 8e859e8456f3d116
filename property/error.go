package property

import (
	"fmt"
	"strings"

	"github.com/syssam/kodgen"
)

// ErrorKind classifies why a property group was rejected.
type ErrorKind uint8

// Validation failure kinds, in the order the checks run.
const (
	UnknownProperty ErrorKind = iota
	InvalidMainPropertySyntax
	InvalidSubPropertySyntax
	InvalidPropertyGroup
	InvalidEntityForProperty
)

var errorKindNames = [...]string{
	UnknownProperty:           "UnknownProperty",
	InvalidMainPropertySyntax: "InvalidMainPropertySyntax",
	InvalidSubPropertySyntax:  "InvalidSubPropertySyntax",
	InvalidPropertyGroup:      "InvalidPropertyGroup",
	InvalidEntityForProperty:  "InvalidEntityForProperty",
}

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// Error describes a rejected property group. Index is the position of the
// offending property in the group; SubIndex is the offending sub-property
// for InvalidSubPropertySyntax and -1 otherwise.
type Error struct {
	Kind        ErrorKind
	Index       int
	SubIndex    int
	Property    string
	Entity      string // Qualified name of the entity
	Line        int
	Description string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "kodgen: %s: property %q (index %d", e.Kind, e.Property, e.Index)
	if e.Kind == InvalidSubPropertySyntax && e.SubIndex >= 0 {
		fmt.Fprintf(&b, ", sub-property %d", e.SubIndex)
	}
	b.WriteString(")")
	if e.Entity != "" {
		b.WriteString(" on ")
		b.WriteString(e.Entity)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Description != "" {
		b.WriteString(": ")
		b.WriteString(e.Description)
	}
	return b.String()
}

// Is reports whether the target matches kodgen.ErrPropertyValidation.
func (e *Error) Is(target error) bool {
	return target == kodgen.ErrPropertyValidation
}
