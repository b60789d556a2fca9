package wasminspect

import (
	"context"
	"encoding/binary"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-inspect/index"
	"github.com/wippyai/wasm-inspect/printer"
	"github.com/wippyai/wasm-inspect/wasm"
	"github.com/wippyai/wasm-inspect/wat"
)

// Range is a half-open byte interval into a module buffer.
type Range = wasm.Range

// Item is one structural element of the module index.
type Item = index.Item

// Part is one tagged fragment of rich rendered output.
type Part = printer.Part

// PartKind tags one element of a rich rendering.
type PartKind = printer.PartKind

// Part kinds, re-exported so rich output can be consumed without
// importing the printer package.
const (
	PartStr     = printer.PartStr
	PartNewline = printer.PartNewline
	PartName    = printer.PartName
	PartLiteral = printer.PartLiteral
	PartKeyword = printer.PartKeyword
	PartType    = printer.PartType
	PartComment = printer.PartComment
	PartReset   = printer.PartReset
)

// ValidateError describes a validation failure with its byte offset.
type ValidateError = wasm.ValidateError

// Module owns an immutable binary buffer and derives every inspection
// from it. Operations are pure functions of the buffer, so a Module is
// safe for concurrent reads.
type Module struct {
	data []byte
}

// New wraps a binary module. Input that does not start with the wasm
// magic is treated as text format source and compiled; if compilation
// fails the input is kept as-is and later operations report it as a
// malformed binary.
func New(input []byte) *Module {
	if len(input) >= 4 && binary.LittleEndian.Uint32(input) == wasm.Magic {
		return &Module{data: input}
	}
	bin, err := wat.Compile(string(input))
	if err != nil {
		Logger().Debug("text format conversion failed, treating input as binary",
			zap.Error(err))
		return &Module{data: input}
	}
	return &Module{data: bin}
}

// Bytes returns the underlying binary buffer. Callers must not mutate it.
func (m *Module) Bytes() []byte {
	return m.data
}

// Validate checks the module structurally and then compiles it with
// wazero for full type and body validation. It returns nil when the
// module is valid.
func (m *Module) Validate() *ValidateError {
	if err := wasm.Validate(m.data); err != nil {
		if ve, ok := err.(*wasm.ValidateError); ok {
			return ve
		}
		return &ValidateError{Message: err.Error()}
	}

	ctx := context.Background()
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer r.Close(ctx)
	compiled, err := r.CompileModule(ctx, m.data)
	if err != nil {
		return &ValidateError{Message: err.Error()}
	}
	_ = compiled.Close(ctx)
	return nil
}

// Items returns the structural index with debug names applied. It is a
// best effort query: any decode failure yields an empty list.
func (m *Module) Items() []Item {
	items, err := index.Items(m.data)
	if err != nil {
		Logger().Debug("item indexing failed", zap.Error(err))
		return nil
	}
	aliases, err := index.Aliases(m.data)
	if err != nil {
		Logger().Debug("alias resolution failed", zap.Error(err))
		return nil
	}
	index.Resolve(items, aliases)
	return items
}

// PrintPlain renders the module as text, keeping only lines whose
// binary offset falls inside r.
func (m *Module) PrintPlain(r Range) (string, error) {
	sink := printer.NewRangeText(r)
	if err := printer.Print(m.data, sink); err != nil {
		return "", err
	}
	return sink.String(), nil
}

// PrintRich renders the module as tagged parts, keeping only lines
// whose binary offset falls inside r.
func (m *Module) PrintRich(r Range) ([]Part, error) {
	sink := printer.NewRangeParts(r)
	if err := printer.Print(m.data, sink); err != nil {
		return nil, err
	}
	return sink.Parts(), nil
}

// FullRange covers the whole buffer.
func (m *Module) FullRange() Range {
	return Range{Start: 0, End: len(m.data)}
}
