package macro

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/syssam/kodgen/compiler/gen"
	"github.com/syssam/kodgen/compiler/parse"
	"github.com/syssam/kodgen/entity"
)

// MacrosFileName is the name of the file defining the annotation macros.
const MacrosFileName = "EntityMacros.h"

// ParsingDefine is defined while the parser reads the sources, turning the
// annotation macros into attributes.
const ParsingDefine = "KODGEN_PARSING"

// WriteMacrosFile writes EntityMacros.h to dir. The file is left untouched
// when it already has the expected content.
func WriteMacrosFile(dir string, names parse.MacroNames) error {
	path := filepath.Join(dir, MacrosFileName)
	content := MacrosFile(names)
	if old, err := os.ReadFile(path); err == nil && bytes.Equal(old, content) {
		return nil
	}
	return (&gen.FileWriter{}).Write(path, content)
}

// MacrosFile returns the content of EntityMacros.h for names.
func MacrosFile(names parse.MacroNames) []byte {
	var b bytes.Buffer
	b.WriteString(gen.Banner("//", gen.DefaultHeader))
	b.WriteString("\n#pragma once\n\n")
	fmt.Fprintf(&b, "#ifdef %s\n\n", ParsingDefine)
	for k := entity.Namespace; k <= entity.EnumValue; k++ {
		n := names.Name(k)
		fmt.Fprintf(&b, "#define %s(...) __attribute__((annotate(%q #__VA_ARGS__)))\n", n, n+":")
	}
	b.WriteString("\n#else\n\n")
	for k := entity.Namespace; k <= entity.EnumValue; k++ {
		fmt.Fprintf(&b, "#define %s(...)\n", names.Name(k))
	}
	b.WriteString("\n#endif\n")
	return b.Bytes()
}
