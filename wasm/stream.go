package wasm

import (
	"errors"
	"fmt"
	"io"

	"github.com/wippyai/wasm-inspect/wasm/internal/binary"
)

// Errors returned by Stream.
var (
	ErrInvalidMagic   = errors.New("invalid wasm magic number")
	ErrInvalidVersion = errors.New("invalid wasm version")
)

// Payload is one structural unit of a module, produced in file order by a
// Stream. Every payload carries the absolute byte range it occupies;
// section payloads additionally carry per-entry offsets and decoded entry
// values.
type Payload interface {
	payload()
}

// HeaderPayload is the magic number and version at the start of a module.
type HeaderPayload struct {
	Range   Range
	Version uint32
}

// TypeEntry is one type definition. Type is nil for non-function forms
// (GC struct/array/sub definitions), which are skipped, not decoded.
type TypeEntry struct {
	Type   *FuncType
	Offset int
}

// TypeSectionPayload covers the type section contents.
type TypeSectionPayload struct {
	Entries []TypeEntry
	Range   Range
}

// ImportEntry is one import with its absolute offset.
type ImportEntry struct {
	Import Import
	Offset int
}

// ImportSectionPayload covers the import section contents.
type ImportSectionPayload struct {
	Entries []ImportEntry
	Range   Range
}

// FuncEntry is one function declaration (type index) with its offset.
type FuncEntry struct {
	Offset  int
	TypeIdx uint32
}

// FunctionSectionPayload covers the function section contents.
type FunctionSectionPayload struct {
	Entries []FuncEntry
	Range   Range
}

// TableEntry is one table definition with its offset.
type TableEntry struct {
	Table  TableType
	Offset int
}

// TableSectionPayload covers the table section contents.
type TableSectionPayload struct {
	Entries []TableEntry
	Range   Range
}

// MemoryEntry is one memory definition with its offset.
type MemoryEntry struct {
	Memory MemoryType
	Offset int
}

// MemorySectionPayload covers the memory section contents.
type MemorySectionPayload struct {
	Entries []MemoryEntry
	Range   Range
}

// TagEntry is one tag definition with its offset.
type TagEntry struct {
	Tag    TagType
	Offset int
}

// TagSectionPayload covers the tag section contents.
type TagSectionPayload struct {
	Entries []TagEntry
	Range   Range
}

// GlobalEntry is one global definition with its offset.
type GlobalEntry struct {
	Global Global
	Offset int
}

// GlobalSectionPayload covers the global section contents.
type GlobalSectionPayload struct {
	Entries []GlobalEntry
	Range   Range
}

// ExportEntry is one export with its offset.
type ExportEntry struct {
	Export Export
	Offset int
}

// ExportSectionPayload covers the export section contents.
type ExportSectionPayload struct {
	Entries []ExportEntry
	Range   Range
}

// StartSectionPayload covers the start section.
type StartSectionPayload struct {
	Range   Range
	FuncIdx uint32
}

// ElementEntry is one element segment with its offset.
type ElementEntry struct {
	Element Element
	Offset  int
}

// ElementSectionPayload covers the element section contents.
type ElementSectionPayload struct {
	Entries []ElementEntry
	Range   Range
}

// CodeSectionPayload announces the code section. The declared function
// bodies follow as individual CodeEntryPayload values unless SkipCode is
// called.
type CodeSectionPayload struct {
	Range Range
	Count uint32
}

// CodeEntryPayload is one function body. Range covers the body size
// prefix through the end of the body, so consecutive entries tile the
// code section after its count. BodyOffset is where the body itself
// (its locals) begins, just past the size prefix. Code holds the raw
// instruction bytes beginning at absolute offset CodeOffset.
type CodeEntryPayload struct {
	Locals     []LocalEntry
	Code       []byte
	Range      Range
	BodyOffset int
	CodeOffset int
}

// DataCountPayload covers the data count section.
type DataCountPayload struct {
	Range Range
	Count uint32
}

// DataEntry is one data segment with its offset.
type DataEntry struct {
	Data   DataSegment
	Offset int
}

// DataSectionPayload covers the data section contents.
type DataSectionPayload struct {
	Entries []DataEntry
	Range   Range
}

// CustomSectionPayload is a custom section. Data excludes the name label;
// DataOffset is the absolute offset Data begins at.
type CustomSectionPayload struct {
	Name       string
	Data       []byte
	Range      Range
	DataOffset int
}

// EndPayload marks the end of the module. Offset equals the buffer length.
type EndPayload struct {
	Offset int
}

func (HeaderPayload) payload()          {}
func (TypeSectionPayload) payload()     {}
func (ImportSectionPayload) payload()   {}
func (FunctionSectionPayload) payload() {}
func (TableSectionPayload) payload()    {}
func (MemorySectionPayload) payload()   {}
func (TagSectionPayload) payload()      {}
func (GlobalSectionPayload) payload()   {}
func (ExportSectionPayload) payload()   {}
func (StartSectionPayload) payload()    {}
func (ElementSectionPayload) payload()  {}
func (CodeSectionPayload) payload()     {}
func (CodeEntryPayload) payload()       {}
func (DataCountPayload) payload()       {}
func (DataSectionPayload) payload()     {}
func (CustomSectionPayload) payload()   {}
func (EndPayload) payload()             {}

// Stream is a pull parser over a WebAssembly binary. Each Next call
// produces the next Payload in file order with absolute byte offsets.
type Stream struct {
	r          *binary.Reader
	data       []byte
	codeEnd    int
	bodiesLeft uint32
	headerDone bool
	inCode     bool
	endDone    bool
}

// NewStream creates a Stream over data.
func NewStream(data []byte) *Stream {
	return &Stream{r: binary.NewReader(data), data: data}
}

// Position returns the absolute offset of the next unconsumed byte.
func (s *Stream) Position() int {
	return s.r.Position()
}

// Next returns the next payload. After the EndPayload it returns io.EOF.
func (s *Stream) Next() (Payload, error) {
	if s.endDone {
		return nil, io.EOF
	}

	if !s.headerDone {
		return s.readHeader()
	}

	if s.inCode {
		if s.bodiesLeft > 0 {
			return s.readCodeEntry()
		}
		if s.r.Position() != s.codeEnd {
			return nil, s.r.WrapError("code section", errors.New("size does not match bodies"))
		}
		s.inCode = false
	}

	if s.r.Len() == 0 {
		s.endDone = true
		return EndPayload{Offset: len(s.data)}, nil
	}

	return s.readSection()
}

// SkipCode skips all remaining function bodies of the current code
// section by its declared size. It is only valid after a
// CodeSectionPayload, before the bodies were consumed.
func (s *Stream) SkipCode() error {
	if !s.inCode {
		return errors.New("wasm: not inside a code section")
	}
	if err := s.r.Skip(s.codeEnd - s.r.Position()); err != nil {
		return s.r.WrapError("code section", errors.New("invalid declared size"))
	}
	s.inCode = false
	s.bodiesLeft = 0
	return nil
}

func (s *Stream) readHeader() (Payload, error) {
	magic, err := s.r.ReadU32LE()
	if err != nil {
		return nil, s.r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}
	version, err := s.r.ReadU32LE()
	if err != nil {
		return nil, s.r.WrapError("header", err)
	}
	if version != Version {
		return nil, ErrInvalidVersion
	}
	s.headerDone = true
	return HeaderPayload{Range: Range{0, HeaderSize}, Version: version}, nil
}

func (s *Stream) readSection() (Payload, error) {
	id, err := s.r.ReadByte()
	if err != nil {
		return nil, s.r.WrapError("section header", err)
	}
	size, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("section size", err)
	}
	start := s.r.Position()
	end := start + int(size)
	if end > len(s.data) {
		return nil, s.r.WrapError("section size", fmt.Errorf("declared size %d exceeds buffer", size))
	}
	sec := Range{Start: start, End: end}

	var p Payload
	switch id {
	case SectionCustom:
		p, err = s.readCustomSection(sec)
	case SectionType:
		p, err = s.readTypeSection(sec)
	case SectionImport:
		p, err = s.readImportSection(sec)
	case SectionFunction:
		p, err = s.readFunctionSection(sec)
	case SectionTable:
		p, err = s.readTableSection(sec)
	case SectionMemory:
		p, err = s.readMemorySection(sec)
	case SectionTag:
		p, err = s.readTagSection(sec)
	case SectionGlobal:
		p, err = s.readGlobalSection(sec)
	case SectionExport:
		p, err = s.readExportSection(sec)
	case SectionStart:
		p, err = s.readStartSection(sec)
	case SectionElement:
		p, err = s.readElementSection(sec)
	case SectionCode:
		count, cerr := s.r.ReadU32()
		if cerr != nil {
			return nil, s.r.WrapError("code section", cerr)
		}
		s.inCode = true
		s.bodiesLeft = count
		s.codeEnd = end
		return CodeSectionPayload{Range: sec, Count: count}, nil
	case SectionDataCount:
		p, err = s.readDataCountSection(sec)
	case SectionData:
		p, err = s.readDataSection(sec)
	default:
		return nil, s.r.WrapError("section header", fmt.Errorf("unknown section ID 0x%02x", id))
	}
	if err != nil {
		return nil, err
	}
	if s.r.Position() != end {
		return nil, s.r.WrapError(sectionName(id), errors.New("size does not match contents"))
	}
	return p, nil
}

func (s *Stream) readCodeEntry() (Payload, error) {
	entryStart := s.r.Position()
	bodySize, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("function body", err)
	}
	bodyOffset := s.r.Position()
	bodyEnd := bodyOffset + int(bodySize)
	if bodyEnd > s.codeEnd {
		return nil, s.r.WrapError("function body", fmt.Errorf("declared size %d exceeds section", bodySize))
	}

	localCount, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("function body", err)
	}
	var locals []LocalEntry
	for i := uint32(0); i < localCount; i++ {
		n, err := s.r.ReadU32()
		if err != nil {
			return nil, s.r.WrapError("function locals", err)
		}
		t, err := s.r.ReadByte()
		if err != nil {
			return nil, s.r.WrapError("function locals", err)
		}
		if t == byte(ValRefNull) || t == byte(ValRef) {
			if _, err := s.r.ReadS64(); err != nil {
				return nil, s.r.WrapError("function locals", err)
			}
		}
		locals = append(locals, LocalEntry{Count: n, ValType: ValType(t)})
	}

	codeOffset := s.r.Position()
	code, err := s.r.ReadBytes(bodyEnd - codeOffset)
	if err != nil {
		return nil, s.r.WrapError("function body", err)
	}

	s.bodiesLeft--
	return CodeEntryPayload{
		Range:      Range{Start: entryStart, End: bodyEnd},
		Locals:     locals,
		Code:       code,
		BodyOffset: bodyOffset,
		CodeOffset: codeOffset,
	}, nil
}

func (s *Stream) readCustomSection(sec Range) (Payload, error) {
	name, err := s.r.ReadName()
	if err != nil {
		return nil, s.r.WrapError("custom section", err)
	}
	dataOffset := s.r.Position()
	data, err := s.r.ReadBytes(sec.End - dataOffset)
	if err != nil {
		return nil, s.r.WrapError("custom section", err)
	}
	return CustomSectionPayload{Range: sec, Name: name, Data: data, DataOffset: dataOffset}, nil
}

func (s *Stream) readTypeSection(sec Range) (Payload, error) {
	count, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("type section", err)
	}
	p := TypeSectionPayload{Range: sec}
	for i := uint32(0); i < count; i++ {
		entries, err := readTypeDef(s.r)
		if err != nil {
			return nil, s.r.WrapError("type section", err)
		}
		p.Entries = append(p.Entries, entries...)
	}
	return p, nil
}

func (s *Stream) readImportSection(sec Range) (Payload, error) {
	count, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("import section", err)
	}
	p := ImportSectionPayload{Range: sec, Entries: make([]ImportEntry, count)}
	for i := uint32(0); i < count; i++ {
		offset := s.r.Position()
		imp, err := readImport(s.r)
		if err != nil {
			return nil, s.r.WrapError("import section", err)
		}
		p.Entries[i] = ImportEntry{Offset: offset, Import: imp}
	}
	return p, nil
}

func (s *Stream) readFunctionSection(sec Range) (Payload, error) {
	count, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("function section", err)
	}
	p := FunctionSectionPayload{Range: sec, Entries: make([]FuncEntry, count)}
	for i := uint32(0); i < count; i++ {
		offset := s.r.Position()
		typeIdx, err := s.r.ReadU32()
		if err != nil {
			return nil, s.r.WrapError("function section", err)
		}
		p.Entries[i] = FuncEntry{Offset: offset, TypeIdx: typeIdx}
	}
	return p, nil
}

func (s *Stream) readTableSection(sec Range) (Payload, error) {
	count, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("table section", err)
	}
	p := TableSectionPayload{Range: sec, Entries: make([]TableEntry, count)}
	for i := uint32(0); i < count; i++ {
		offset := s.r.Position()
		table, err := readTableType(s.r)
		if err != nil {
			return nil, s.r.WrapError("table section", err)
		}
		p.Entries[i] = TableEntry{Offset: offset, Table: table}
	}
	return p, nil
}

func (s *Stream) readMemorySection(sec Range) (Payload, error) {
	count, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("memory section", err)
	}
	p := MemorySectionPayload{Range: sec, Entries: make([]MemoryEntry, count)}
	for i := uint32(0); i < count; i++ {
		offset := s.r.Position()
		mem, err := readMemoryType(s.r)
		if err != nil {
			return nil, s.r.WrapError("memory section", err)
		}
		p.Entries[i] = MemoryEntry{Offset: offset, Memory: mem}
	}
	return p, nil
}

func (s *Stream) readTagSection(sec Range) (Payload, error) {
	count, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("tag section", err)
	}
	p := TagSectionPayload{Range: sec, Entries: make([]TagEntry, count)}
	for i := uint32(0); i < count; i++ {
		offset := s.r.Position()
		tag, err := readTagType(s.r)
		if err != nil {
			return nil, s.r.WrapError("tag section", err)
		}
		p.Entries[i] = TagEntry{Offset: offset, Tag: tag}
	}
	return p, nil
}

func (s *Stream) readGlobalSection(sec Range) (Payload, error) {
	count, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("global section", err)
	}
	p := GlobalSectionPayload{Range: sec, Entries: make([]GlobalEntry, count)}
	for i := uint32(0); i < count; i++ {
		offset := s.r.Position()
		globalType, err := readGlobalType(s.r)
		if err != nil {
			return nil, s.r.WrapError("global section", err)
		}
		init, err := readInitExpr(s.r)
		if err != nil {
			return nil, s.r.WrapError("global section", err)
		}
		p.Entries[i] = GlobalEntry{Offset: offset, Global: Global{Type: globalType, Init: init}}
	}
	return p, nil
}

func (s *Stream) readExportSection(sec Range) (Payload, error) {
	count, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("export section", err)
	}
	p := ExportSectionPayload{Range: sec, Entries: make([]ExportEntry, count)}
	for i := uint32(0); i < count; i++ {
		offset := s.r.Position()
		exp, err := readExport(s.r)
		if err != nil {
			return nil, s.r.WrapError("export section", err)
		}
		p.Entries[i] = ExportEntry{Offset: offset, Export: exp}
	}
	return p, nil
}

func (s *Stream) readStartSection(sec Range) (Payload, error) {
	idx, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("start section", err)
	}
	return StartSectionPayload{Range: sec, FuncIdx: idx}, nil
}

func (s *Stream) readElementSection(sec Range) (Payload, error) {
	count, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("element section", err)
	}
	p := ElementSectionPayload{Range: sec, Entries: make([]ElementEntry, count)}
	for i := uint32(0); i < count; i++ {
		offset := s.r.Position()
		elem, err := readElement(s.r)
		if err != nil {
			return nil, s.r.WrapError("element section", err)
		}
		p.Entries[i] = ElementEntry{Offset: offset, Element: elem}
	}
	return p, nil
}

func (s *Stream) readDataCountSection(sec Range) (Payload, error) {
	count, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("data count section", err)
	}
	return DataCountPayload{Range: sec, Count: count}, nil
}

func (s *Stream) readDataSection(sec Range) (Payload, error) {
	count, err := s.r.ReadU32()
	if err != nil {
		return nil, s.r.WrapError("data section", err)
	}
	p := DataSectionPayload{Range: sec, Entries: make([]DataEntry, count)}
	for i := uint32(0); i < count; i++ {
		offset := s.r.Position()
		seg, err := readDataSegment(s.r)
		if err != nil {
			return nil, s.r.WrapError("data section", err)
		}
		p.Entries[i] = DataEntry{Offset: offset, Data: seg}
	}
	return p, nil
}

func sectionName(id byte) string {
	switch id {
	case SectionCustom:
		return "custom section"
	case SectionType:
		return "type section"
	case SectionImport:
		return "import section"
	case SectionFunction:
		return "function section"
	case SectionTable:
		return "table section"
	case SectionMemory:
		return "memory section"
	case SectionGlobal:
		return "global section"
	case SectionExport:
		return "export section"
	case SectionStart:
		return "start section"
	case SectionElement:
		return "element section"
	case SectionCode:
		return "code section"
	case SectionData:
		return "data section"
	case SectionDataCount:
		return "data count section"
	case SectionTag:
		return "tag section"
	default:
		return fmt.Sprintf("section 0x%02x", id)
	}
}
