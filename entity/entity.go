// Package entity defines the tree of parsed declarations and the traversal
// primitive shared by validation and code generation.
package entity

import (
	"fmt"
	"strings"

	"github.com/syssam/kodgen"
)

// Property is a single named annotation with its ordered arguments.
type Property struct {
	Name          string   `yaml:"name"`
	SubProperties []string `yaml:"sub_properties,omitempty"`
}

// String renders the property as it would be written in an annotation.
func (p Property) String() string {
	if len(p.SubProperties) == 0 {
		return p.Name
	}
	return p.Name + "(" + strings.Join(p.SubProperties, ", ") + ")"
}

// PropertyGroup is the ordered list of properties attached to one entity.
// The order is the user's annotation order.
type PropertyGroup []Property

// Index returns the position of the first property named name, or -1.
func (g PropertyGroup) Index(name string) int {
	for i, p := range g {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether the group contains a property named name.
func (g PropertyGroup) Has(name string) bool {
	return g.Index(name) >= 0
}

// String renders the group as a comma separated annotation list.
func (g PropertyGroup) String() string {
	parts := make([]string, len(g))
	for i, p := range g {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// ID identifies an entity inside its Tree.
type ID int

// NoID is the parent ID of the tree root.
const NoID ID = -1

// Entity is one parsed declaration.
type Entity struct {
	ID   ID
	Kind Kind
	Name string
	// Type is the declared type of a field, the return type of a method or
	// the underlying type of an enum.
	Type string
	// Value is the initializer of an enum value, if any.
	Value string
	// Line is the 1-based source line of the declaration, 0 if unknown.
	Line       int
	Properties PropertyGroup
	Children   []*Entity

	parent ID
	tree   *Tree
}

// Parent returns the enclosing entity, or nil for the tree root.
func (e *Entity) Parent() *Entity {
	if e.tree == nil {
		return nil
	}
	return e.tree.Lookup(e.parent)
}

// IsRoot reports whether e is the synthetic file-scope namespace.
func (e *Entity) IsRoot() bool {
	return e.parent == NoID
}

// FullName returns the qualified name of e, e.g. "game::Player::health".
func (e *Entity) FullName() string {
	var names []string
	for n := e; n != nil && !n.IsRoot(); n = n.Parent() {
		names = append(names, n.Name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "::")
}

// Enclosing returns the nearest ancestor whose kind is in mask, or nil.
func (e *Entity) Enclosing(mask KindMask) *Entity {
	for p := e.Parent(); p != nil; p = p.Parent() {
		if mask.Has(p.Kind) && !p.IsRoot() {
			return p
		}
	}
	return nil
}

// String implements fmt.Stringer.
func (e *Entity) String() string {
	return e.Kind.String() + " " + e.FullName()
}

// Tree is the arena owning every entity parsed from one file. Entities refer
// to their parent by ID, never by pointer.
type Tree struct {
	nodes []*Entity
}

// NewTree returns a tree holding only the synthetic root namespace.
func NewTree() *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, &Entity{ID: 0, Kind: Namespace, parent: NoID, tree: t})
	return t
}

// Root returns the synthetic file-scope namespace.
func (t *Tree) Root() *Entity {
	return t.nodes[0]
}

// Len returns the number of entities, root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Lookup returns the entity with the given ID, or nil.
func (t *Tree) Lookup(id ID) *Entity {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Add appends a new child of the given kind to parent. A nil parent means
// the root. It fails with kodgen.ErrInvalidNesting when the kind cannot be
// declared inside parent.
func (t *Tree) Add(parent *Entity, kind Kind, name string) (*Entity, error) {
	if parent == nil {
		parent = t.Root()
	}
	if parent.tree != t {
		return nil, fmt.Errorf("entity: parent %s belongs to another tree", parent)
	}
	if !CanNest(parent.Kind, kind) {
		return nil, fmt.Errorf("%w: %s %q inside %s", kodgen.ErrInvalidNesting, kind, name, parent.Kind)
	}
	e := &Entity{
		ID:     ID(len(t.nodes)),
		Kind:   kind,
		Name:   name,
		parent: parent.ID,
		tree:   t,
	}
	t.nodes = append(t.nodes, e)
	parent.Children = append(parent.Children, e)
	return e, nil
}

// Find returns the entity with the given qualified name, or nil.
func (t *Tree) Find(fullName string) *Entity {
	for _, e := range t.nodes[1:] {
		if e.FullName() == fullName {
			return e
		}
	}
	return nil
}

// ParsingResult is the outcome of parsing one source file. It is read-only
// once the parser returns it.
type ParsingResult struct {
	File string
	Tree *Tree
	// Errors holds the recoverable problems found while parsing, such as
	// rejected properties. The file is still generated.
	Errors []error
}

// NewParsingResult returns an empty result for file.
func NewParsingResult(file string) *ParsingResult {
	return &ParsingResult{File: file, Tree: NewTree()}
}

// Root returns the file-scope namespace.
func (r *ParsingResult) Root() *Entity {
	return r.Tree.Root()
}

// Walk visits the entities of the file, starting at the children of the
// root, and returns the final iteration result.
func (r *ParsingResult) Walk(visit Visitor) IterationResult {
	return Walk(r.Root().Children, visit)
}
