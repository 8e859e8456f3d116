// Package macro generates C++ headers whose code is spliced into the
// annotated sources through preprocessor macros.
//
// Code is emitted at four locations of the generated file. Two of them,
// ClassFooter and HeaderFileFooter, live inside #define bodies, so their lines
// are joined with line continuations:
//
//	#define game_Player_GENERATED \
//		int getHealth() const { return health; }
package macro

import "strconv"

// Location is a place in the generated file code can be emitted to.
type Location uint8

const (
	// HeaderFileHeader is plain code at the top of the generated header.
	HeaderFileHeader Location = iota
	// ClassFooter is expanded by the <Class>_GENERATED macro inside the body
	// of the annotated class.
	ClassFooter
	// HeaderFileFooter is expanded by the File_<Stem>_GENERATED macro at the
	// bottom of the annotated header.
	HeaderFileFooter
	// SourceFileHeader is compiled once, in the translation unit defining
	// KODGEN_SOURCE before including the generated header.
	SourceFileHeader

	// LocationCount is the number of locations. It is not a valid location.
	LocationCount
)

var locationNames = [...]string{
	HeaderFileHeader: "HeaderFileHeader",
	ClassFooter:      "ClassFooter",
	HeaderFileFooter: "HeaderFileFooter",
	SourceFileHeader: "SourceFileHeader",
}

// Locations returns every valid location in generation order.
func Locations() []Location {
	return []Location{HeaderFileHeader, ClassFooter, HeaderFileFooter, SourceFileHeader}
}

func (l Location) String() string {
	if l < LocationCount {
		return locationNames[l]
	}
	return "Location(" + strconv.Itoa(int(l)) + ")"
}

// Valid reports whether l is one of the four locations.
func (l Location) Valid() bool { return l < LocationCount }

// InMacro reports whether code at l ends up in a #define body.
func (l Location) InMacro() bool { return l == ClassFooter || l == HeaderFileFooter }

// Joiner returns the separator placed between two lines generated at l.
func (l Location) Joiner() string {
	if l.InMacro() {
		return " \\\n\t"
	}
	return "\n"
}
