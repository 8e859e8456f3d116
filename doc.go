// Package kodgen is a reflection code generator for annotated C++-style
// headers.
//
// Source files are parsed into entity trees (package entity), the
// annotations attached to each entity are validated against registered
// property rules (package property), and generation modules emit companion
// code for every file whose output is stale (packages compiler and
// compiler/gen).
//
// A typical program wires the pieces together like this:
//
//	rules := property.NewRegistry()
//	unit, _ := macro.NewUnit(gen.WithOutputDir("generated"))
//	builtin.Register(rules, unit)
//
//	m := compiler.NewManager(compiler.ManagerSettings{Directories: []string{"include"}})
//	report := m.Run(ctx, parse.NewHeaderParser(rules), unit)
//	for _, fe := range report.Errors {
//		log.Println(fe.File, fe.Err)
//	}
//
// The root package only holds the error taxonomy shared by every stage.
package kodgen
