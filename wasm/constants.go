package wasm

// WebAssembly binary format magic number and version.
const (
	// Magic is the WebAssembly binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported WebAssembly binary format version.
	Version uint32 = 0x01
)

// HeaderSize is the byte length of the magic number plus version.
const HeaderSize = 8

// Section IDs define the binary identifiers for each module section.
// Sections must appear in increasing canonical order (except custom sections).
const (
	SectionCustom    byte = 0  // Custom section (can appear anywhere)
	SectionType      byte = 1  // Type section (function signatures)
	SectionImport    byte = 2  // Import section
	SectionFunction  byte = 3  // Function section (type indices)
	SectionTable     byte = 4  // Table section
	SectionMemory    byte = 5  // Memory section
	SectionGlobal    byte = 6  // Global section
	SectionExport    byte = 7  // Export section
	SectionStart     byte = 8  // Start section
	SectionElement   byte = 9  // Element section
	SectionCode      byte = 10 // Code section (function bodies)
	SectionData      byte = 11 // Data section
	SectionDataCount byte = 12 // Data count section (bulk memory)
	SectionTag       byte = 13 // Tag section (exception handling)
)

// Import/Export descriptor kinds identify the type of imported or exported item.
const (
	KindFunc   byte = 0 // Function import/export
	KindTable  byte = 1 // Table import/export
	KindMemory byte = 2 // Memory import/export
	KindGlobal byte = 3 // Global import/export
	KindTag    byte = 4 // Tag import/export (exception handling)
)

// Value type encodings as defined in the WebAssembly binary format.
const (
	ValI32     ValType = 0x7F // 32-bit integer
	ValI64     ValType = 0x7E // 64-bit integer
	ValF32     ValType = 0x7D // 32-bit float
	ValF64     ValType = 0x7C // 64-bit float
	ValV128    ValType = 0x7B // 128-bit vector (SIMD)
	ValFuncRef ValType = 0x70 // Function reference
	ValExtern  ValType = 0x6F // External reference

	// Typed reference forms (heap type immediate follows)
	ValRefNull ValType = 0x63 // (ref null ht)
	ValRef     ValType = 0x64 // (ref ht)
)

// FuncTypeByte marks a function type in the type section.
const FuncTypeByte byte = 0x60

// BlockTypeVoid is the empty block type encoding (0x40 as s33).
const BlockTypeVoid int64 = -64

// Control flow opcodes
const (
	OpUnreachable        byte = 0x00
	OpNop                byte = 0x01
	OpBlock              byte = 0x02
	OpLoop               byte = 0x03
	OpIf                 byte = 0x04
	OpElse               byte = 0x05
	OpEnd                byte = 0x0B
	OpBr                 byte = 0x0C
	OpBrIf               byte = 0x0D
	OpBrTable            byte = 0x0E
	OpReturn             byte = 0x0F
	OpCall               byte = 0x10
	OpCallIndirect       byte = 0x11
	OpReturnCall         byte = 0x12 // Tail call proposal
	OpReturnCallIndirect byte = 0x13 // Tail call proposal
)

// Reference type opcodes
const (
	OpRefNull   byte = 0xD0
	OpRefIsNull byte = 0xD1
	OpRefFunc   byte = 0xD2
)

// Parametric opcodes
const (
	OpDrop       byte = 0x1A
	OpSelect     byte = 0x1B
	OpSelectType byte = 0x1C
)

// Variable access opcodes
const (
	OpLocalGet  byte = 0x20
	OpLocalSet  byte = 0x21
	OpLocalTee  byte = 0x22
	OpGlobalGet byte = 0x23
	OpGlobalSet byte = 0x24
)

// Table opcodes (WASM 2.0)
const (
	OpTableGet byte = 0x25
	OpTableSet byte = 0x26
)

// Memory opcode bounds: loads 0x28-0x35, stores 0x36-0x3E.
const (
	OpI32Load    byte = 0x28
	OpI64Store32 byte = 0x3E
)

// Memory size/grow opcodes
const (
	OpMemorySize byte = 0x3F
	OpMemoryGrow byte = 0x40
)

// Constant opcodes
const (
	OpI32Const byte = 0x41
	OpI64Const byte = 0x42
	OpF32Const byte = 0x43
	OpF64Const byte = 0x44
)

// Numeric opcode bounds: comparisons and arithmetic, no immediates.
const (
	OpI32Eqz       byte = 0x45
	OpI64Extend32S byte = 0xC4
)

// Extended-const arithmetic allowed in init expressions.
const (
	OpI32Add byte = 0x6A
	OpI32Sub byte = 0x6B
	OpI32Mul byte = 0x6C
	OpI32And byte = 0x71
	OpI32Or  byte = 0x72
	OpI32Xor byte = 0x73
	OpI64Add byte = 0x7C
	OpI64Sub byte = 0x7D
	OpI64Mul byte = 0x7E
	OpI64And byte = 0x83
	OpI64Or  byte = 0x84
	OpI64Xor byte = 0x85
)

// Multi-byte opcode prefixes
const (
	OpPrefixGC     byte = 0xFB // GC proposal operations
	OpPrefixMisc   byte = 0xFC // Saturating truncation, bulk memory, table ops
	OpPrefixSIMD   byte = 0xFD // 128-bit vector operations
	OpPrefixAtomic byte = 0xFE // Threads proposal atomics
)

// 0xFC prefix sub-opcodes
const (
	MiscI32TruncSatF32S uint32 = 0
	MiscI64TruncSatF64U uint32 = 7
	MiscMemoryInit      uint32 = 8
	MiscDataDrop        uint32 = 9
	MiscMemoryCopy      uint32 = 10
	MiscMemoryFill      uint32 = 11
	MiscTableInit       uint32 = 12
	MiscElemDrop        uint32 = 13
	MiscTableCopy       uint32 = 14
	MiscTableGrow       uint32 = 15
	MiscTableSize       uint32 = 16
	MiscTableFill       uint32 = 17
)

// SimdV128Const is the 0xFD prefix sub-opcode for v128.const.
const SimdV128Const uint32 = 12

// Limits flag bits
const (
	LimitsHasMax   byte = 0x01 // Maximum is present
	LimitsShared   byte = 0x02 // Shared memory (threads)
	LimitsMemory64 byte = 0x04 // 64-bit address space
)

// NameSectionName is the custom section name carrying debug names.
const NameSectionName = "name"

// Name subsection IDs within the "name" custom section, per the
// extended-name-section proposal numbering.
const (
	NameModule   byte = 0
	NameFunction byte = 1
	NameLocal    byte = 2
	NameLabel    byte = 3
	NameType     byte = 4
	NameTable    byte = 5
	NameMemory   byte = 6
	NameGlobal   byte = 7
	NameElem     byte = 8
	NameData     byte = 9
	NameField    byte = 10
	NameTag      byte = 11
)
