// Package wat compiles WebAssembly Text format into binary modules.
//
// It exists so the inspector can accept human-readable input and so
// tests can build fixtures without hand-assembling bytes:
//
//	bin, err := wat.Compile(`(module
//		(func $add (export "add") (param i32 i32) (result i32)
//			(i32.add (local.get 0) (local.get 1)))
//	)`)
//
// $identifiers on the module, functions, types, tables, memories,
// globals, element and data segments are emitted as a "name" custom
// section, so the compiled binary carries its debug names.
//
// Supported features:
//   - Functions with params, results, locals (named and indexed)
//   - Plain, folded, and mixed instruction forms
//   - Imports and exports, including the inline abbreviations
//   - Control flow: block/loop/if with labels, br, br_if, br_table
//   - call, call_indirect with type uses
//   - The full MVP numeric instruction set, sign extension, saturating
//     truncations, and memory access with offset=/align=
//   - Bulk memory and table operations
//   - Reference types: funcref, externref, ref.null, ref.func
//   - Table, memory, global declarations; element and data segments
//     (active and passive)
//   - Comments: line (;;) and block (; ;)
//
// Not supported: SIMD, threads/atomics, exception handling, GC types,
// memory64, multiple memories.
package wat
