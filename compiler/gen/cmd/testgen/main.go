// testgen is a simple test program to demonstrate the macro and Go backends.
// Run: go run ./compiler/gen/cmd/testgen
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/syssam/kodgen/compiler"
	"github.com/syssam/kodgen/compiler/gen"
	"github.com/syssam/kodgen/compiler/gen/builtin"
	"github.com/syssam/kodgen/compiler/gen/gogen"
	"github.com/syssam/kodgen/compiler/gen/macro"
	"github.com/syssam/kodgen/compiler/parse"
	"github.com/syssam/kodgen/property"
)

var headers = map[string]string{
	"player.h": `#pragma once

#include "Generated/player.kg.h"

namespace game
{
	enum class KGEnum(ToString) Team { Red, Blue };

	class KGClass() Player
	{
		KGField(Get(const, &), Set) std::string name;
		KGField(Get, Set) int health;

		game_Player_GENERATED
	};
}

File_player_GENERATED
`,
	"weapon.h": `#pragma once

namespace game
{
	struct KGStruct() Weapon
	{
		KGField(Get) float damage;

		game_Weapon_GENERATED
	};
}

File_weapon_GENERATED
`,
}

func main() {
	// Create a temp directory for sources and output
	dir, err := os.MkdirTemp("", "kodgen-test-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	src := filepath.Join(dir, "include")
	if err := os.MkdirAll(src, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create source dir: %v\n", err)
		os.Exit(1)
	}
	for name, content := range headers {
		if err := os.WriteFile(filepath.Join(src, name), []byte(content), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write %s: %v\n", name, err)
			os.Exit(1)
		}
	}
	fmt.Printf("Sources: %s\n", src)

	manager := compiler.NewManager(compiler.ManagerSettings{Directories: []string{src}})

	// Macro backend with the builtin properties
	rules := property.NewRegistry()
	hdr, err := macro.NewUnit(gen.WithOutputDir(filepath.Join(dir, "Generated")))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create unit: %v\n", err)
		os.Exit(1)
	}
	if _, err := builtin.Register(rules, hdr); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register properties: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Generating headers...")
	show(manager.Run(context.Background(), parse.NewHeaderParser(rules), hdr))

	// Go backend describing the same entities
	gorules := property.NewRegistry()
	if err := builtin.RegisterRules(gorules); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register properties: %v\n", err)
		os.Exit(1)
	}
	gounit, err := gogen.NewUnit("reflection", gen.WithOutputDir(filepath.Join(dir, "reflection")))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create unit: %v\n", err)
		os.Exit(1)
	}
	gounit.AddGenerators("enums", gogen.NewEnumNamesGenerator(builtin.ToString))
	fmt.Println("Generating Go descriptors...")
	show(manager.Run(context.Background(), parse.NewHeaderParser(gorules), gounit))

	// Show sample output
	fmt.Println("\n--- Sample: player.kg.h ---")
	if content, err := os.ReadFile(filepath.Join(dir, "Generated", "player.kg.h")); err == nil {
		fmt.Print(string(content))
	}

	fmt.Printf("\nTo inspect generated code: ls -la %s\n", dir)
	fmt.Println("Done!")
}

func show(r *compiler.Report) {
	for _, e := range r.Errors {
		fmt.Fprintf(os.Stderr, "  error: %v\n", e)
	}
	for _, out := range r.Outputs {
		info, err := os.Stat(out)
		if err != nil {
			continue
		}
		fmt.Printf("  %s (%d bytes)\n", filepath.Base(out), info.Size())
	}
	if !r.Success() {
		os.Exit(1)
	}
}
