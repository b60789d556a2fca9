// Package wasm decodes WebAssembly binary modules with byte-accurate
// position tracking.
//
// The core type is Stream, a pull parser that yields one Payload per
// structural unit of the module in file order. Every payload carries the
// absolute byte range it occupies and section payloads expose per-entry
// offsets, so callers can map any decoded value back to the bytes that
// produced it. ParseModule drives a Stream to completion and collects
// the results into a Module when positions are not needed.
//
// The package also provides a name section codec (DecodeNameSection,
// EncodeNameSection), an instruction-level disassembler with offsets
// (NewDisassembler), structural validation (Validate) and re-encoding of
// a Module (Encode).
package wasm
