package wasm

import (
	"errors"
	"fmt"
	"io"
)

// ValidateError describes a structural validation failure and where in
// the buffer it was detected.
type ValidateError struct {
	Message string
	Offset  int
}

func (e *ValidateError) Error() string {
	return fmt.Sprintf("%s (at offset 0x%x)", e.Message, e.Offset)
}

// sectionRank gives the mandatory ordering of non-custom sections. The
// data count section sits between element and code, the tag section
// between memory and global.
var sectionRank = map[byte]int{
	SectionType:      1,
	SectionImport:    2,
	SectionFunction:  3,
	SectionTable:     4,
	SectionMemory:    5,
	SectionTag:       6,
	SectionGlobal:    7,
	SectionExport:    8,
	SectionStart:     9,
	SectionElement:   10,
	SectionDataCount: 11,
	SectionCode:      12,
	SectionData:      13,
}

// Validate performs structural validation of a module: section ordering,
// index bounds across all index spaces, and cross-section count
// agreement. It does not type-check function bodies.
func Validate(data []byte) error {
	v := &validator{s: NewStream(data)}
	return v.run()
}

type validator struct {
	s *Stream

	numTypes   uint32
	numFuncs   uint32
	numTables  uint32
	numMems    uint32
	numGlobals uint32
	numTags    uint32
	numElems   uint32

	declaredBodies uint32
	seenBodies     uint32
	dataCount      *uint32
	numData        uint32
	lastRank       int
}

func (v *validator) run() error {
	for {
		p, err := v.s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := v.payload(p); err != nil {
			return err
		}
	}
}

func (v *validator) fail(offset int, format string, args ...any) error {
	return &ValidateError{Message: fmt.Sprintf(format, args...), Offset: offset}
}

func (v *validator) order(id byte, sec Range) error {
	rank := sectionRank[id]
	if rank <= v.lastRank {
		return v.fail(sec.Start, "%s out of order", sectionName(id))
	}
	v.lastRank = rank
	return nil
}

func (v *validator) payload(p Payload) error {
	switch p := p.(type) {
	case TypeSectionPayload:
		if err := v.order(SectionType, p.Range); err != nil {
			return err
		}
		v.numTypes = uint32(len(p.Entries))

	case ImportSectionPayload:
		if err := v.order(SectionImport, p.Range); err != nil {
			return err
		}
		for _, e := range p.Entries {
			switch e.Import.Desc.Kind {
			case KindFunc:
				if e.Import.Desc.TypeIdx >= v.numTypes {
					return v.fail(e.Offset, "import %q.%q: type index %d out of range",
						e.Import.Module, e.Import.Name, e.Import.Desc.TypeIdx)
				}
				v.numFuncs++
			case KindTable:
				v.numTables++
			case KindMemory:
				v.numMems++
			case KindGlobal:
				v.numGlobals++
			case KindTag:
				if e.Import.Desc.Tag.TypeIdx >= v.numTypes {
					return v.fail(e.Offset, "import %q.%q: type index %d out of range",
						e.Import.Module, e.Import.Name, e.Import.Desc.Tag.TypeIdx)
				}
				v.numTags++
			}
		}

	case FunctionSectionPayload:
		if err := v.order(SectionFunction, p.Range); err != nil {
			return err
		}
		for _, e := range p.Entries {
			if e.TypeIdx >= v.numTypes {
				return v.fail(e.Offset, "function type index %d out of range", e.TypeIdx)
			}
		}
		v.declaredBodies = uint32(len(p.Entries))
		v.numFuncs += v.declaredBodies

	case TableSectionPayload:
		if err := v.order(SectionTable, p.Range); err != nil {
			return err
		}
		for _, e := range p.Entries {
			if err := v.limits(e.Offset, e.Table.Limits); err != nil {
				return err
			}
		}
		v.numTables += uint32(len(p.Entries))

	case MemorySectionPayload:
		if err := v.order(SectionMemory, p.Range); err != nil {
			return err
		}
		for _, e := range p.Entries {
			if err := v.limits(e.Offset, e.Memory.Limits); err != nil {
				return err
			}
		}
		v.numMems += uint32(len(p.Entries))

	case TagSectionPayload:
		if err := v.order(SectionTag, p.Range); err != nil {
			return err
		}
		for _, e := range p.Entries {
			if e.Tag.TypeIdx >= v.numTypes {
				return v.fail(e.Offset, "tag type index %d out of range", e.Tag.TypeIdx)
			}
		}
		v.numTags += uint32(len(p.Entries))

	case GlobalSectionPayload:
		if err := v.order(SectionGlobal, p.Range); err != nil {
			return err
		}
		v.numGlobals += uint32(len(p.Entries))

	case ExportSectionPayload:
		if err := v.order(SectionExport, p.Range); err != nil {
			return err
		}
		seen := make(map[string]bool, len(p.Entries))
		for _, e := range p.Entries {
			if seen[e.Export.Name] {
				return v.fail(e.Offset, "duplicate export name %q", e.Export.Name)
			}
			seen[e.Export.Name] = true
			var space uint32
			switch e.Export.Kind {
			case KindFunc:
				space = v.numFuncs
			case KindTable:
				space = v.numTables
			case KindMemory:
				space = v.numMems
			case KindGlobal:
				space = v.numGlobals
			case KindTag:
				space = v.numTags
			}
			if e.Export.Idx >= space {
				return v.fail(e.Offset, "export %q: index %d out of range", e.Export.Name, e.Export.Idx)
			}
		}

	case StartSectionPayload:
		if err := v.order(SectionStart, p.Range); err != nil {
			return err
		}
		if p.FuncIdx >= v.numFuncs {
			return v.fail(p.Range.Start, "start function index %d out of range", p.FuncIdx)
		}

	case ElementSectionPayload:
		if err := v.order(SectionElement, p.Range); err != nil {
			return err
		}
		for _, e := range p.Entries {
			if e.Element.IsActive() && e.Element.TableIdx >= v.numTables {
				return v.fail(e.Offset, "element segment table index %d out of range", e.Element.TableIdx)
			}
			for _, idx := range e.Element.FuncIdxs {
				if idx >= v.numFuncs {
					return v.fail(e.Offset, "element segment function index %d out of range", idx)
				}
			}
		}
		v.numElems = uint32(len(p.Entries))

	case DataCountPayload:
		if err := v.order(SectionDataCount, p.Range); err != nil {
			return err
		}
		count := p.Count
		v.dataCount = &count

	case CodeSectionPayload:
		if err := v.order(SectionCode, p.Range); err != nil {
			return err
		}
		if p.Count != v.declaredBodies {
			return v.fail(p.Range.Start, "code section has %d bodies but function section declares %d",
				p.Count, v.declaredBodies)
		}

	case CodeEntryPayload:
		v.seenBodies++

	case DataSectionPayload:
		if err := v.order(SectionData, p.Range); err != nil {
			return err
		}
		for _, e := range p.Entries {
			if !e.Data.IsPassive() && e.Data.MemIdx >= v.numMems {
				return v.fail(e.Offset, "data segment memory index %d out of range", e.Data.MemIdx)
			}
		}
		v.numData = uint32(len(p.Entries))
		if v.dataCount != nil && *v.dataCount != v.numData {
			return v.fail(p.Range.Start, "data count section says %d segments, data section has %d",
				*v.dataCount, v.numData)
		}

	case EndPayload:
		if v.declaredBodies != v.seenBodies {
			return v.fail(p.Offset, "function section declares %d bodies, code section has %d",
				v.declaredBodies, v.seenBodies)
		}
	}
	return nil
}

func (v *validator) limits(offset int, l Limits) error {
	if l.Max != nil && *l.Max < l.Min {
		return v.fail(offset, "limits maximum %d below minimum %d", *l.Max, l.Min)
	}
	return nil
}
