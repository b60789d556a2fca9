package wasm

// Range is a half-open byte interval [Start, End) into a module buffer.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether offset falls inside the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Module represents a parsed WebAssembly module.
type Module struct {
	Types          []FuncType
	Imports        []Import
	Funcs          []uint32 // Type indices for locally defined functions
	Tables         []TableType
	Memories       []MemoryType
	Globals        []Global
	Exports        []Export
	Start          *uint32
	Elements       []Element
	Code           []FuncBody
	Data           []DataSegment
	DataCount      *uint32
	Tags           []TagType
	CustomSections []CustomSection
}

// FuncType is a function signature.
type FuncType struct {
	Params  []ValType
	Results []ValType
}

func (ft FuncType) Equal(other FuncType) bool {
	if len(ft.Params) != len(other.Params) || len(ft.Results) != len(other.Results) {
		return false
	}
	for i, p := range ft.Params {
		if p != other.Params[i] {
			return false
		}
	}
	for i, r := range ft.Results {
		if r != other.Results[i] {
			return false
		}
	}
	return true
}

// ValType is a WebAssembly value type encoding.
type ValType byte

func (v ValType) String() string {
	switch v {
	case ValI32:
		return "i32"
	case ValI64:
		return "i64"
	case ValF32:
		return "f32"
	case ValF64:
		return "f64"
	case ValV128:
		return "v128"
	case ValFuncRef:
		return "funcref"
	case ValExtern:
		return "externref"
	case ValRefNull:
		return "ref null"
	case ValRef:
		return "ref"
	default:
		return "unknown"
	}
}

// Import represents an imported function, table, memory, global, or tag.
type Import struct {
	Desc   ImportDesc
	Module string
	Name   string
}

// ImportDesc describes an imported item.
// Kind uses KindFunc, KindTable, KindMemory, KindGlobal, or KindTag constants.
type ImportDesc struct {
	Table   *TableType
	Memory  *MemoryType
	Global  *GlobalType
	Tag     *TagType
	TypeIdx uint32
	Kind    byte
}

// TableType describes a table with element type and size limits.
type TableType struct {
	Limits   Limits
	ElemType byte
}

// MemoryType describes a linear memory with size limits.
type MemoryType struct {
	Limits Limits
}

// Limits describes size constraints for tables and memories.
type Limits struct {
	Max      *uint64
	Min      uint64
	Shared   bool
	Memory64 bool
}

// GlobalType describes a global variable's type and mutability.
type GlobalType struct {
	ValType ValType
	Mutable bool
}

// Global represents a global variable with type and initialization.
type Global struct {
	Type GlobalType
	Init []byte // Raw init expression bytes
}

// TagType describes an exception handling tag type.
type TagType struct {
	Attribute byte   // Tag attribute (0 = exception)
	TypeIdx   uint32 // Function type index for tag signature
}

// Export describes an exported item.
// Kind uses KindFunc, KindTable, KindMemory, KindGlobal, or KindTag constants.
type Export struct {
	Name string
	Kind byte
	Idx  uint32
}

// Element represents an element segment.
// Flags determine the format:
//   - 0: active, tableIdx=0, offset expr, vec(funcidx)
//   - 1: passive, elemkind, vec(funcidx)
//   - 2: active, tableIdx, offset expr, elemkind, vec(funcidx)
//   - 3: declarative, elemkind, vec(funcidx)
//   - 4: active, tableIdx=0, offset expr, vec(expr)
//   - 5: passive, reftype, vec(expr)
//   - 6: active, tableIdx, offset expr, reftype, vec(expr)
//   - 7: declarative, reftype, vec(expr)
type Element struct {
	Offset   []byte
	FuncIdxs []uint32
	Exprs    [][]byte
	Flags    uint32
	TableIdx uint32
	ElemKind byte
	Type     ValType
}

// IsActive reports whether the segment initializes a table at instantiation.
func (e Element) IsActive() bool {
	return e.Flags&0x01 == 0
}

// FuncBody represents a function's local declarations and bytecode.
type FuncBody struct {
	Locals []LocalEntry
	Code   []byte // Raw code bytes including end opcode
}

// LocalEntry represents a group of local variables with the same type.
type LocalEntry struct {
	Count   uint32
	ValType ValType
}

// DataSegment represents a data segment.
// Flags determine the format:
//   - 0: active, memIdx=0, offset expr, vec(byte)
//   - 1: passive, vec(byte)
//   - 2: active, memIdx, offset expr, vec(byte)
type DataSegment struct {
	Offset []byte
	Init   []byte
	Flags  uint32
	MemIdx uint32
}

// IsPassive reports whether the segment is loaded on demand.
func (d DataSegment) IsPassive() bool {
	return d.Flags == 1
}

// CustomSection holds a named custom section's data.
type CustomSection struct {
	Name string
	Data []byte
}

// NumImportedFuncs returns the number of imported functions.
func (m *Module) NumImportedFuncs() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == KindFunc {
			n++
		}
	}
	return n
}

// NumImportedGlobals returns the number of imported globals.
func (m *Module) NumImportedGlobals() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == KindGlobal {
			n++
		}
	}
	return n
}

// NumImportedTables returns the number of imported tables.
func (m *Module) NumImportedTables() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == KindTable {
			n++
		}
	}
	return n
}

// NumImportedMemories returns the number of imported memories.
func (m *Module) NumImportedMemories() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == KindMemory {
			n++
		}
	}
	return n
}

// NumImportedTags returns the number of imported tags.
func (m *Module) NumImportedTags() int {
	n := 0
	for _, imp := range m.Imports {
		if imp.Desc.Kind == KindTag {
			n++
		}
	}
	return n
}

// FuncTypeAt returns the signature for the function at funcIdx in the
// module's combined (imported + defined) function index space, or nil if
// the index or its type reference is out of bounds.
func (m *Module) FuncTypeAt(funcIdx uint32) *FuncType {
	imported := m.NumImportedFuncs()
	if int(funcIdx) < imported {
		i := 0
		for _, imp := range m.Imports {
			if imp.Desc.Kind != KindFunc {
				continue
			}
			if i == int(funcIdx) {
				if int(imp.Desc.TypeIdx) < len(m.Types) {
					return &m.Types[imp.Desc.TypeIdx]
				}
				return nil
			}
			i++
		}
		return nil
	}
	local := int(funcIdx) - imported
	if local >= len(m.Funcs) {
		return nil
	}
	typeIdx := m.Funcs[local]
	if int(typeIdx) >= len(m.Types) {
		return nil
	}
	return &m.Types[typeIdx]
}
