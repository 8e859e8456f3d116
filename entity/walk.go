package entity

import "fmt"

// IterationResult tells Walk how to continue after visiting an entity.
type IterationResult uint8

const (
	// Recurse visits the children of the entity, then its next sibling.
	Recurse IterationResult = iota
	// Continue skips the children and moves to the next sibling.
	Continue
	// Break skips the children and every remaining sibling of the same kind.
	// Siblings of other kinds are still visited.
	Break
	// AbortWithSuccess stops the whole walk; the caller treats it as success.
	AbortWithSuccess
	// AbortWithFailure stops the whole walk; the caller treats it as failure.
	AbortWithFailure
)

var iterationNames = [...]string{
	Recurse:          "Recurse",
	Continue:         "Continue",
	Break:            "Break",
	AbortWithSuccess: "AbortWithSuccess",
	AbortWithFailure: "AbortWithFailure",
}

// String implements fmt.Stringer.
func (r IterationResult) String() string {
	if int(r) < len(iterationNames) {
		return iterationNames[r]
	}
	return fmt.Sprintf("IterationResult(%d)", r)
}

// Aborted reports whether r stops the walk.
func (r IterationResult) Aborted() bool {
	return r == AbortWithSuccess || r == AbortWithFailure
}

// Visitor is called once per visited entity.
type Visitor func(*Entity) IterationResult

// Walk visits nodes depth-first in declaration order. It returns the abort
// result that stopped the walk, or Recurse if every reachable entity was
// visited. A visitor returning a value outside the declared results stops
// the walk with AbortWithFailure.
func Walk(nodes []*Entity, visit Visitor) IterationResult {
	var skipped KindMask
	for _, n := range nodes {
		if skipped.Has(n.Kind) {
			continue
		}
		switch r := visit(n); r {
		case Recurse:
			if res := Walk(n.Children, visit); res.Aborted() {
				return res
			}
		case Continue:
		case Break:
			skipped |= n.Kind.Mask()
		case AbortWithSuccess, AbortWithFailure:
			return r
		default:
			return AbortWithFailure
		}
	}
	return Recurse
}
