// Command kodgen generates code from annotated C++ headers.
//
//	kodgen generate -o generated include/
//	kodgen watch --config kodgen.toml
//	kodgen inspect include/player.h
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
