// Package wasminspect inspects WebAssembly binary modules: it indexes
// their structure into byte-ranged items, resolves debug names from the
// "name" custom section, and renders range-restricted textual
// disassembly.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	wasminspect/       Root package with the Module facade
//	├── wasm/          Binary substrate: payload stream, section readers,
//	│                  name-section codec, disassembler, validator, encoder
//	├── wat/           Text format to binary compiler
//	├── index/         Structural item indexer and name alias resolver
//	├── printer/       Sink-driven renderer, range sinks, annotated hex dump
//	├── errors/        Structured error types
//	└── cmd/inspect/   Command line interface
//
// # Quick Start
//
// Load a module (binary or text) and inspect it:
//
//	mod := wasminspect.New(data)
//	if ve := mod.Validate(); ve != nil {
//	    log.Fatalf("%s at 0x%x", ve.Message, ve.Offset)
//	}
//	for _, item := range mod.Items() {
//	    fmt.Printf("%-20s [%#x, %#x)\n", item.DisplayName, item.Range.Start, item.Range.End)
//	}
//	text, err := mod.PrintPlain(mod.FullRange())
//
// Items carry half-open byte ranges into the module buffer, so any item
// can be handed back to PrintPlain or PrintRich to render just that
// slice of the module.
//
// All operations are pure functions of the immutable buffer; a Module
// is safe for concurrent use.
package wasminspect
