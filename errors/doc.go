// Package errors provides structured error types for the wasm-inspect library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: item path, section name, byte offset, and
// cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseParse, errors.KindInvalidData).
//		Section("code").
//		Offset(0x134).
//		Detail("body size exceeds section").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated(errors.PhaseParse, "global", 0x2a)
//	err := errors.OutOfBounds(errors.PhaseValidate, path, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
