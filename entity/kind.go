package entity

import (
	"fmt"
	"strings"
)

// Kind is the closed set of declaration kinds an entity can have.
type Kind uint8

// Entity kinds.
const (
	Namespace Kind = iota
	Class
	Struct
	Field
	Method
	Enum
	EnumValue
)

var kindNames = [...]string{
	Namespace: "namespace",
	Class:     "class",
	Struct:    "struct",
	Field:     "field",
	Method:    "method",
	Enum:      "enum",
	EnumValue: "enumvalue",
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

// Mask returns the single-bit mask of k.
func (k Kind) Mask() KindMask {
	return 1 << k
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("entity: invalid kind %d", k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind returns the kind with the given name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("entity: unknown kind %q", s)
}

// KindMask is a set of kinds.
type KindMask uint16

// Common kind sets.
const (
	Records    = KindMask(1<<Class | 1<<Struct)
	Members    = KindMask(1<<Field | 1<<Method)
	AllKinds   = KindMask(1<<len(kindNames) - 1)
	NoKinds    = KindMask(0)
	Containers = KindMask(1<<Namespace) | Records | KindMask(1<<Enum)
)

// Kinds builds a mask from the given kinds.
func Kinds(kinds ...Kind) KindMask {
	var m KindMask
	for _, k := range kinds {
		m |= k.Mask()
	}
	return m
}

// Has reports whether k is in the set.
func (m KindMask) Has(k Kind) bool {
	return k.Valid() && m&k.Mask() != 0
}

// String lists the kinds of the set separated by "|".
func (m KindMask) String() string {
	var parts []string
	for k := range kindNames {
		if m.Has(Kind(k)) {
			parts = append(parts, kindNames[k])
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// nesting maps a parent kind to the kinds it may contain.
var nesting = [...]KindMask{
	Namespace: Kinds(Namespace, Class, Struct, Enum),
	Class:     Records | Members | Enum.Mask(),
	Struct:    Records | Members | Enum.Mask(),
	Enum:      EnumValue.Mask(),
}

// CanNest reports whether an entity of kind child may be declared directly
// inside an entity of kind parent.
func CanNest(parent, child Kind) bool {
	if int(parent) >= len(nesting) {
		return false
	}
	return nesting[parent].Has(child)
}
