// Package gen provides the code generation dispatch pipeline.
//
// # Architecture
//
// Generation for one parsed file flows like this:
//
//	ParsingResult (entity tree)
//	        ↓
//	   Unit (output path, up-to-date check, hooks)
//	        ↓
//	   Module... (ordered, shared read-only between workers)
//	        ↓
//	   PropertyCodeGen... (offered every property of every entity)
//	        ↓
//	   generated file
//
// # Key Types
//
//   - PropertyCodeGen: emits text for one property of one entity
//   - Module: an ordered list of PropertyCodeGen run per entity
//   - Unit: turns a ParsingResult into one generated file
//   - UnitBase: the shared part of every Unit (settings, modules, hooks)
//   - Config: output directory, extension and header of a Unit
//
// Concrete units live in subpackages: macro writes C++ headers whose content
// is routed by Location, gogen writes Go reflection descriptors.
//
// # Extension Points
//
// Hooks wrap the generation of a whole file:
//
//	unit.Use(func(next gen.Generator) gen.Generator {
//		return gen.GenerateFunc(func(ctx context.Context, res *entity.ParsingResult) error {
//			// before
//			err := next.Generate(ctx, res)
//			// after
//			return err
//		})
//	})
package gen
