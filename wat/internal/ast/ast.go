package ast

import "github.com/wippyai/wasm-inspect/wasm"

// Module is the resolved form of a text format module. All symbolic
// references have been turned into numeric indices by the parser;
// instruction sequences remain symbolic until the encoder lowers them.
type Module struct {
	Types    []wasm.FuncType
	Imports  []wasm.Import
	Funcs    []uint32 // type index per locally defined function
	Tables   []wasm.TableType
	Memories []wasm.MemoryType
	Globals  []Global
	Exports  []wasm.Export
	Start    *uint32
	Elems    []Elem
	Code     []FuncBody
	Data     []Data
	Names    wasm.NameSection
}

// Global pairs a global type with its symbolic init expression.
type Global struct {
	Init []Instr
	Type wasm.GlobalType
}

// Elem is an element segment before lowering. Flags follow the binary
// format encoding.
type Elem struct {
	Offset   []Instr
	FuncIdxs []uint32
	Flags    uint32
	TableIdx uint32
	Type     wasm.ValType
}

// IsActive reports whether the segment initializes a table at
// instantiation and therefore carries an offset expression.
func (e Elem) IsActive() bool {
	return e.Flags&0x01 == 0
}

// FuncBody is a function's local declarations and instruction sequence.
type FuncBody struct {
	Locals []wasm.LocalEntry
	Body   []Instr
}

// Data is a data segment before lowering.
type Data struct {
	Offset []Instr
	Init   []byte
	Flags  uint32
	MemIdx uint32
}

// Instr is one instruction with its immediate. Imm holds nil, uint32,
// int32, int64, float32, float64, wasm.ValType, or one of the immediate
// structs below, depending on the opcode.
type Instr struct {
	Imm    any
	Opcode byte
}

// BlockType is the immediate of block, loop and if. TypeIdx is negative
// when the block uses the shorthand form in Simple (a value type byte or
// 0x40 for no result).
type BlockType struct {
	TypeIdx int64
	Simple  byte
}

// Memarg is the immediate of memory access instructions. Align is the
// exponent actually encoded.
type Memarg struct {
	Align  uint32
	Offset uint32
}

// CallIndirect is the immediate of call_indirect.
type CallIndirect struct {
	TypeIdx  uint32
	TableIdx uint32
}

// BrTable is the immediate of br_table.
type BrTable struct {
	Labels  []uint32
	Default uint32
}

// Misc is the immediate bundle of a 0xFC prefixed instruction. Args are
// written in encoding order after the subopcode.
type Misc struct {
	Args []uint32
	Sub  uint32
}
