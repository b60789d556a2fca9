package wasm

import (
	"github.com/wippyai/wasm-inspect/wasm/internal/binary"
)

// Encode serializes the module back to binary form. Sections are
// written in canonical order and empty ones are omitted. Custom sections
// are appended after the data section.
//
// Typed reference info not kept by the decoded model (GC heap types) is
// not reproduced, so Encode is only faithful for modules that stay
// within that shape. It exists to build modules programmatically, as the
// text compiler does.
func (m *Module) Encode() []byte {
	w := binary.NewWriter()
	w.WriteU32LE(Magic)
	w.WriteU32LE(Version)

	if len(m.Types) > 0 {
		encodeSection(w, SectionType, func(s *binary.Writer) {
			s.WriteU32(uint32(len(m.Types)))
			for i := range m.Types {
				encodeFuncType(s, &m.Types[i])
			}
		})
	}
	if len(m.Imports) > 0 {
		encodeSection(w, SectionImport, func(s *binary.Writer) {
			s.WriteU32(uint32(len(m.Imports)))
			for i := range m.Imports {
				encodeImport(s, &m.Imports[i])
			}
		})
	}
	if len(m.Funcs) > 0 {
		encodeSection(w, SectionFunction, func(s *binary.Writer) {
			s.WriteU32(uint32(len(m.Funcs)))
			for _, typeIdx := range m.Funcs {
				s.WriteU32(typeIdx)
			}
		})
	}
	if len(m.Tables) > 0 {
		encodeSection(w, SectionTable, func(s *binary.Writer) {
			s.WriteU32(uint32(len(m.Tables)))
			for i := range m.Tables {
				encodeTableType(s, &m.Tables[i])
			}
		})
	}
	if len(m.Memories) > 0 {
		encodeSection(w, SectionMemory, func(s *binary.Writer) {
			s.WriteU32(uint32(len(m.Memories)))
			for i := range m.Memories {
				encodeLimits(s, &m.Memories[i].Limits)
			}
		})
	}
	if len(m.Tags) > 0 {
		encodeSection(w, SectionTag, func(s *binary.Writer) {
			s.WriteU32(uint32(len(m.Tags)))
			for _, t := range m.Tags {
				s.Byte(t.Attribute)
				s.WriteU32(t.TypeIdx)
			}
		})
	}
	if len(m.Globals) > 0 {
		encodeSection(w, SectionGlobal, func(s *binary.Writer) {
			s.WriteU32(uint32(len(m.Globals)))
			for i := range m.Globals {
				g := &m.Globals[i]
				s.Byte(byte(g.Type.ValType))
				if g.Type.Mutable {
					s.Byte(1)
				} else {
					s.Byte(0)
				}
				s.WriteBytes(g.Init)
			}
		})
	}
	if len(m.Exports) > 0 {
		encodeSection(w, SectionExport, func(s *binary.Writer) {
			s.WriteU32(uint32(len(m.Exports)))
			for _, e := range m.Exports {
				s.WriteName(e.Name)
				s.Byte(e.Kind)
				s.WriteU32(e.Idx)
			}
		})
	}
	if m.Start != nil {
		encodeSection(w, SectionStart, func(s *binary.Writer) {
			s.WriteU32(*m.Start)
		})
	}
	if len(m.Elements) > 0 {
		encodeSection(w, SectionElement, func(s *binary.Writer) {
			s.WriteU32(uint32(len(m.Elements)))
			for i := range m.Elements {
				encodeElement(s, &m.Elements[i])
			}
		})
	}
	if m.DataCount != nil {
		encodeSection(w, SectionDataCount, func(s *binary.Writer) {
			s.WriteU32(*m.DataCount)
		})
	}
	if len(m.Code) > 0 {
		encodeSection(w, SectionCode, func(s *binary.Writer) {
			s.WriteU32(uint32(len(m.Code)))
			for i := range m.Code {
				encodeFuncBody(s, &m.Code[i])
			}
		})
	}
	if len(m.Data) > 0 {
		encodeSection(w, SectionData, func(s *binary.Writer) {
			s.WriteU32(uint32(len(m.Data)))
			for i := range m.Data {
				encodeDataSegment(s, &m.Data[i])
			}
		})
	}
	for _, c := range m.CustomSections {
		encodeSection(w, SectionCustom, func(s *binary.Writer) {
			s.WriteName(c.Name)
			s.WriteBytes(c.Data)
		})
	}
	return w.Bytes()
}

func encodeSection(w *binary.Writer, id byte, fill func(*binary.Writer)) {
	s := binary.NewWriter()
	fill(s)
	w.Byte(id)
	w.WriteU32(uint32(s.Len()))
	w.WriteBytes(s.Bytes())
}

func encodeFuncType(w *binary.Writer, ft *FuncType) {
	w.Byte(FuncTypeByte)
	w.WriteU32(uint32(len(ft.Params)))
	for _, p := range ft.Params {
		w.Byte(byte(p))
	}
	w.WriteU32(uint32(len(ft.Results)))
	for _, r := range ft.Results {
		w.Byte(byte(r))
	}
}

func encodeImport(w *binary.Writer, imp *Import) {
	w.WriteName(imp.Module)
	w.WriteName(imp.Name)
	w.Byte(imp.Desc.Kind)
	switch imp.Desc.Kind {
	case KindFunc:
		w.WriteU32(imp.Desc.TypeIdx)
	case KindTable:
		encodeTableType(w, imp.Desc.Table)
	case KindMemory:
		encodeLimits(w, &imp.Desc.Memory.Limits)
	case KindGlobal:
		w.Byte(byte(imp.Desc.Global.ValType))
		if imp.Desc.Global.Mutable {
			w.Byte(1)
		} else {
			w.Byte(0)
		}
	case KindTag:
		w.Byte(imp.Desc.Tag.Attribute)
		w.WriteU32(imp.Desc.Tag.TypeIdx)
	}
}

func encodeTableType(w *binary.Writer, t *TableType) {
	w.Byte(t.ElemType)
	encodeLimits(w, &t.Limits)
}

func encodeLimits(w *binary.Writer, l *Limits) {
	var flags byte
	if l.Max != nil {
		flags |= LimitsHasMax
	}
	if l.Shared {
		flags |= LimitsShared
	}
	if l.Memory64 {
		flags |= LimitsMemory64
	}
	w.Byte(flags)
	if l.Memory64 {
		w.WriteU64(l.Min)
		if l.Max != nil {
			w.WriteU64(*l.Max)
		}
	} else {
		w.WriteU32(uint32(l.Min))
		if l.Max != nil {
			w.WriteU32(uint32(*l.Max))
		}
	}
}

func encodeElement(w *binary.Writer, e *Element) {
	w.WriteU32(e.Flags)
	if e.IsActive() {
		if e.Flags&0x02 != 0 {
			w.WriteU32(e.TableIdx)
		}
		w.WriteBytes(e.Offset)
	}
	if e.Flags&0x04 == 0 {
		if e.Flags&0x03 != 0 {
			w.Byte(e.ElemKind)
		}
		w.WriteU32(uint32(len(e.FuncIdxs)))
		for _, idx := range e.FuncIdxs {
			w.WriteU32(idx)
		}
		return
	}
	if e.Flags&0x03 != 0 {
		w.Byte(byte(e.Type))
	}
	w.WriteU32(uint32(len(e.Exprs)))
	for _, expr := range e.Exprs {
		w.WriteBytes(expr)
	}
}

func encodeFuncBody(w *binary.Writer, b *FuncBody) {
	body := binary.NewWriter()
	body.WriteU32(uint32(len(b.Locals)))
	for _, l := range b.Locals {
		body.WriteU32(l.Count)
		body.Byte(byte(l.ValType))
	}
	body.WriteBytes(b.Code)

	w.WriteU32(uint32(body.Len()))
	w.WriteBytes(body.Bytes())
}

func encodeDataSegment(w *binary.Writer, d *DataSegment) {
	w.WriteU32(d.Flags)
	if d.Flags == 2 {
		w.WriteU32(d.MemIdx)
	}
	if !d.IsPassive() {
		w.WriteBytes(d.Offset)
	}
	w.WriteU32(uint32(len(d.Init)))
	w.WriteBytes(d.Init)
}
