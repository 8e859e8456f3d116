// Package property gives annotations typed, checked semantics through a
// registry of per-name rules.
package property

import (
	"github.com/syssam/kodgen/entity"
)

// Rule validates every use of one property name. A nil error means the
// check passed; the message of a non-nil error becomes the description of
// the validation failure.
type Rule interface {
	// ValidateMainSyntax checks that the property may be attached to an
	// entity of the given kind.
	ValidateMainSyntax(name string, kind entity.Kind) error
	// ValidateSubSyntax checks the sub-property at the given 0-based index.
	ValidateSubSyntax(sub string, index int) error
	// ValidateGroup cross-checks the property at index against the whole
	// group once every property passed the syntax checks.
	ValidateGroup(group entity.PropertyGroup, index int) error
	// ValidateEntity checks the fully assembled entity the property at
	// index is attached to.
	ValidateEntity(e *entity.Entity, index int) error
}

// BaseRule accepts everything. Embed it to implement only some checks.
type BaseRule struct{}

// ValidateMainSyntax implements Rule.
func (BaseRule) ValidateMainSyntax(string, entity.Kind) error { return nil }

// ValidateSubSyntax implements Rule.
func (BaseRule) ValidateSubSyntax(string, int) error { return nil }

// ValidateGroup implements Rule.
func (BaseRule) ValidateGroup(entity.PropertyGroup, int) error { return nil }

// ValidateEntity implements Rule.
func (BaseRule) ValidateEntity(*entity.Entity, int) error { return nil }
