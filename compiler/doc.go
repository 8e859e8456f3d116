// Package compiler drives code generation over a set of source files.
//
// A Manager finds the files to process, skips the ones whose output is newer
// than their source, and fans the rest out to workers. Each worker owns a
// clone of the parser and of the unit, so nothing but the final report is
// shared between goroutines:
//
//	m := compiler.NewManager(compiler.ManagerSettings{Directories: []string{"include"}})
//	report := m.Run(ctx, parser, unit, compiler.WithThreadCount(4))
//	if !report.Success() {
//		for _, fe := range report.Errors {
//			log.Println(fe.File, fe.Err)
//		}
//	}
package compiler
