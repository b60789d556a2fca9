package wasm

import (
	"errors"
	"fmt"
	"io"

	"github.com/wippyai/wasm-inspect/wasm/internal/binary"
)

// Composite type forms used by the GC proposal. Non-function forms are
// skipped during decoding so their index slots stay accounted for.
const (
	typeFormRec      byte = 0x4E
	typeFormSub      byte = 0x50
	typeFormSubFinal byte = 0x4F
	typeFormStruct   byte = 0x5F
	typeFormArray    byte = 0x5E
)

// ParseModule decodes a complete module from data. It drives a Stream to
// the end and collects every section into a Module. Byte ranges and
// per-entry offsets are discarded; use Stream directly when they matter.
func ParseModule(data []byte) (*Module, error) {
	m := &Module{}
	s := NewStream(data)
	for {
		p, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return m, nil
			}
			return nil, err
		}
		switch p := p.(type) {
		case TypeSectionPayload:
			for _, e := range p.Entries {
				if e.Type != nil {
					m.Types = append(m.Types, *e.Type)
				} else {
					m.Types = append(m.Types, FuncType{})
				}
			}
		case ImportSectionPayload:
			for _, e := range p.Entries {
				m.Imports = append(m.Imports, e.Import)
			}
		case FunctionSectionPayload:
			for _, e := range p.Entries {
				m.Funcs = append(m.Funcs, e.TypeIdx)
			}
		case TableSectionPayload:
			for _, e := range p.Entries {
				m.Tables = append(m.Tables, e.Table)
			}
		case MemorySectionPayload:
			for _, e := range p.Entries {
				m.Memories = append(m.Memories, e.Memory)
			}
		case TagSectionPayload:
			for _, e := range p.Entries {
				m.Tags = append(m.Tags, e.Tag)
			}
		case GlobalSectionPayload:
			for _, e := range p.Entries {
				m.Globals = append(m.Globals, e.Global)
			}
		case ExportSectionPayload:
			for _, e := range p.Entries {
				m.Exports = append(m.Exports, e.Export)
			}
		case StartSectionPayload:
			idx := p.FuncIdx
			m.Start = &idx
		case ElementSectionPayload:
			for _, e := range p.Entries {
				m.Elements = append(m.Elements, e.Element)
			}
		case CodeEntryPayload:
			m.Code = append(m.Code, FuncBody{Locals: p.Locals, Code: p.Code})
		case DataCountPayload:
			count := p.Count
			m.DataCount = &count
		case DataSectionPayload:
			for _, e := range p.Entries {
				m.Data = append(m.Data, e.Data)
			}
		case CustomSectionPayload:
			m.CustomSections = append(m.CustomSections, CustomSection{Name: p.Name, Data: p.Data})
		case EndPayload:
			return m, nil
		}
	}
}

// readTypeDef decodes one type definition, which may be a recursion
// group containing several subtypes. One entry is produced per member so
// type indices line up.
func readTypeDef(r *binary.Reader) ([]TypeEntry, error) {
	form, err := r.PeekByte()
	if err != nil {
		return nil, err
	}
	if form != typeFormRec {
		offset := r.Position()
		ft, err := readSubType(r)
		if err != nil {
			return nil, err
		}
		return []TypeEntry{{Offset: offset, Type: ft}}, nil
	}
	if _, err := r.ReadByte(); err != nil {
		return nil, err
	}
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	entries := make([]TypeEntry, count)
	for i := uint32(0); i < count; i++ {
		offset := r.Position()
		ft, err := readSubType(r)
		if err != nil {
			return nil, err
		}
		entries[i] = TypeEntry{Offset: offset, Type: ft}
	}
	return entries, nil
}

func readSubType(r *binary.Reader) (*FuncType, error) {
	form, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if form == typeFormSub || form == typeFormSubFinal {
		supers, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < supers; i++ {
			if _, err := r.ReadU32(); err != nil {
				return nil, err
			}
		}
		form, err = r.ReadByte()
		if err != nil {
			return nil, err
		}
	}
	switch form {
	case FuncTypeByte:
		return readFuncTypeBody(r)
	case typeFormStruct:
		fields, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < fields; i++ {
			if err := skipFieldType(r); err != nil {
				return nil, err
			}
		}
		return nil, nil
	case typeFormArray:
		if err := skipFieldType(r); err != nil {
			return nil, err
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown type form 0x%02x", form)
	}
}

func readFuncTypeBody(r *binary.Reader) (*FuncType, error) {
	numParams, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	ft := &FuncType{Params: make([]ValType, numParams)}
	for i := uint32(0); i < numParams; i++ {
		if ft.Params[i], err = readValType(r); err != nil {
			return nil, err
		}
	}
	numResults, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	ft.Results = make([]ValType, numResults)
	for i := uint32(0); i < numResults; i++ {
		if ft.Results[i], err = readValType(r); err != nil {
			return nil, err
		}
	}
	return ft, nil
}

// readValType reads a value type, consuming the heap type immediate of
// the shorthand reference forms.
func readValType(r *binary.Reader) (ValType, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, err
	}
	vt := ValType(b)
	if vt == ValRefNull || vt == ValRef {
		if _, err := r.ReadS64(); err != nil {
			return 0, err
		}
	}
	return vt, nil
}

func skipFieldType(r *binary.Reader) error {
	b, err := r.ReadByte()
	if err != nil {
		return err
	}
	// Packed storage types i8 (0x78) and i16 (0x77) carry nothing extra.
	if vt := ValType(b); vt == ValRefNull || vt == ValRef {
		if _, err := r.ReadS64(); err != nil {
			return err
		}
	}
	_, err = r.ReadByte() // mutability
	return err
}

func readImport(r *binary.Reader) (Import, error) {
	var imp Import
	var err error
	if imp.Module, err = r.ReadName(); err != nil {
		return imp, err
	}
	if imp.Name, err = r.ReadName(); err != nil {
		return imp, err
	}
	kind, err := r.ReadByte()
	if err != nil {
		return imp, err
	}
	imp.Desc.Kind = kind
	switch kind {
	case KindFunc:
		imp.Desc.TypeIdx, err = r.ReadU32()
	case KindTable:
		var t TableType
		if t, err = readTableType(r); err == nil {
			imp.Desc.Table = &t
		}
	case KindMemory:
		var m MemoryType
		if m, err = readMemoryType(r); err == nil {
			imp.Desc.Memory = &m
		}
	case KindGlobal:
		var g GlobalType
		if g, err = readGlobalType(r); err == nil {
			imp.Desc.Global = &g
		}
	case KindTag:
		var t TagType
		if t, err = readTagType(r); err == nil {
			imp.Desc.Tag = &t
		}
	default:
		err = fmt.Errorf("unknown import kind 0x%02x", kind)
	}
	return imp, err
}

func readLimits(r *binary.Reader) (Limits, error) {
	var l Limits
	flags, err := r.ReadByte()
	if err != nil {
		return l, err
	}
	if flags&^(LimitsHasMax|LimitsShared|LimitsMemory64) != 0 {
		return l, fmt.Errorf("unknown limits flags 0x%02x", flags)
	}
	l.Shared = flags&LimitsShared != 0
	l.Memory64 = flags&LimitsMemory64 != 0
	if l.Memory64 {
		if l.Min, err = r.ReadU64(); err != nil {
			return l, err
		}
	} else {
		min, err := r.ReadU32()
		if err != nil {
			return l, err
		}
		l.Min = uint64(min)
	}
	if flags&LimitsHasMax != 0 {
		var max uint64
		if l.Memory64 {
			max, err = r.ReadU64()
		} else {
			var m32 uint32
			m32, err = r.ReadU32()
			max = uint64(m32)
		}
		if err != nil {
			return l, err
		}
		l.Max = &max
	}
	return l, nil
}

func readTableType(r *binary.Reader) (TableType, error) {
	var t TableType
	elemType, err := r.ReadByte()
	if err != nil {
		return t, err
	}
	t.ElemType = elemType
	if vt := ValType(elemType); vt == ValRefNull || vt == ValRef {
		if _, err := r.ReadS64(); err != nil {
			return t, err
		}
	}
	t.Limits, err = readLimits(r)
	return t, err
}

func readMemoryType(r *binary.Reader) (MemoryType, error) {
	limits, err := readLimits(r)
	return MemoryType{Limits: limits}, err
}

func readGlobalType(r *binary.Reader) (GlobalType, error) {
	var g GlobalType
	vt, err := readValType(r)
	if err != nil {
		return g, err
	}
	g.ValType = vt
	mut, err := r.ReadByte()
	if err != nil {
		return g, err
	}
	if mut > 1 {
		return g, fmt.Errorf("invalid mutability flag 0x%02x", mut)
	}
	g.Mutable = mut == 1
	return g, nil
}

func readTagType(r *binary.Reader) (TagType, error) {
	var t TagType
	attr, err := r.ReadByte()
	if err != nil {
		return t, err
	}
	t.Attribute = attr
	t.TypeIdx, err = r.ReadU32()
	return t, err
}

func readExport(r *binary.Reader) (Export, error) {
	var e Export
	var err error
	if e.Name, err = r.ReadName(); err != nil {
		return e, err
	}
	if e.Kind, err = r.ReadByte(); err != nil {
		return e, err
	}
	if e.Kind > KindTag {
		return e, fmt.Errorf("unknown export kind 0x%02x", e.Kind)
	}
	e.Idx, err = r.ReadU32()
	return e, err
}

// readInitExpr consumes a constant expression including its terminating
// end opcode and returns the raw bytes.
func readInitExpr(r *binary.Reader) ([]byte, error) {
	start := r.Position()
	for {
		op, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		switch op {
		case OpEnd:
			return r.Slice(start, r.Position()), nil
		case OpI32Const:
			_, err = r.ReadS32()
		case OpI64Const:
			_, err = r.ReadS64()
		case OpF32Const:
			err = r.Skip(4)
		case OpF64Const:
			err = r.Skip(8)
		case OpGlobalGet, OpRefFunc:
			_, err = r.ReadU32()
		case OpRefNull:
			_, err = r.ReadS64()
		case OpI32Add, OpI32Sub, OpI32Mul, OpI64Add, OpI64Sub, OpI64Mul:
			// Extended constant expressions carry no immediates.
		case OpPrefixSIMD:
			var sub uint32
			if sub, err = r.ReadU32(); err == nil {
				if sub != SimdV128Const {
					return nil, fmt.Errorf("non-constant vector opcode %d in constant expression", sub)
				}
				err = r.Skip(16)
			}
		default:
			return nil, fmt.Errorf("non-constant opcode 0x%02x in constant expression", op)
		}
		if err != nil {
			return nil, err
		}
	}
}

func readElement(r *binary.Reader) (Element, error) {
	var e Element
	flags, err := r.ReadU32()
	if err != nil {
		return e, err
	}
	if flags > 7 {
		return e, fmt.Errorf("invalid element segment flags 0x%02x", flags)
	}
	e.Flags = flags
	e.Type = ValFuncRef

	if e.IsActive() {
		if flags&0x02 != 0 {
			if e.TableIdx, err = r.ReadU32(); err != nil {
				return e, err
			}
		}
		if e.Offset, err = readInitExpr(r); err != nil {
			return e, err
		}
	}

	if flags&0x04 == 0 {
		// Function index encoding, optionally prefixed by an elemkind.
		if flags&0x03 != 0 {
			if e.ElemKind, err = r.ReadByte(); err != nil {
				return e, err
			}
			if e.ElemKind != 0 {
				return e, fmt.Errorf("unknown elemkind 0x%02x", e.ElemKind)
			}
		}
		count, err := r.ReadU32()
		if err != nil {
			return e, err
		}
		e.FuncIdxs = make([]uint32, count)
		for i := uint32(0); i < count; i++ {
			if e.FuncIdxs[i], err = r.ReadU32(); err != nil {
				return e, err
			}
		}
		return e, nil
	}

	// Expression encoding, optionally prefixed by a reference type.
	if flags&0x03 != 0 {
		if e.Type, err = readValType(r); err != nil {
			return e, err
		}
	}
	count, err := r.ReadU32()
	if err != nil {
		return e, err
	}
	e.Exprs = make([][]byte, count)
	for i := uint32(0); i < count; i++ {
		if e.Exprs[i], err = readInitExpr(r); err != nil {
			return e, err
		}
	}
	return e, nil
}

func readDataSegment(r *binary.Reader) (DataSegment, error) {
	var d DataSegment
	flags, err := r.ReadU32()
	if err != nil {
		return d, err
	}
	if flags > 2 {
		return d, fmt.Errorf("invalid data segment flags 0x%02x", flags)
	}
	d.Flags = flags
	if flags == 2 {
		if d.MemIdx, err = r.ReadU32(); err != nil {
			return d, err
		}
	}
	if !d.IsPassive() {
		if d.Offset, err = readInitExpr(r); err != nil {
			return d, err
		}
	}
	size, err := r.ReadU32()
	if err != nil {
		return d, err
	}
	d.Init, err = r.ReadBytes(int(size))
	return d, err
}
