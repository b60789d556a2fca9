package wasm

import (
	"sort"

	"github.com/wippyai/wasm-inspect/wasm/internal/binary"
)

// NameEntry associates one index with a debug name.
type NameEntry struct {
	Name  string
	Index uint32
}

// NameSection holds the decoded contents of a "name" custom section.
// Subsections the inspector has no use for (locals, labels, fields) are
// skipped during decoding.
type NameSection struct {
	Module    string
	Funcs     []NameEntry
	Types     []NameEntry
	Tables    []NameEntry
	Memories  []NameEntry
	Globals   []NameEntry
	Elems     []NameEntry
	Datas     []NameEntry
	Tags      []NameEntry
	HasModule bool
}

// Empty reports whether the section carries no names at all.
func (ns *NameSection) Empty() bool {
	return !ns.HasModule &&
		len(ns.Funcs) == 0 && len(ns.Types) == 0 &&
		len(ns.Tables) == 0 && len(ns.Memories) == 0 &&
		len(ns.Globals) == 0 && len(ns.Elems) == 0 &&
		len(ns.Datas) == 0 && len(ns.Tags) == 0
}

// DecodeNameSection parses the payload of a "name" custom section. base
// is the absolute offset of data within the module, used for error
// positions. Unknown subsection IDs are skipped.
func DecodeNameSection(data []byte, base int) (*NameSection, error) {
	ns := &NameSection{}
	r := binary.NewReaderAt(data, base)
	for r.Len() > 0 {
		id, err := r.ReadByte()
		if err != nil {
			return nil, r.WrapError("name section", err)
		}
		size, err := r.ReadU32()
		if err != nil {
			return nil, r.WrapError("name section", err)
		}
		payload, err := r.ReadBytes(int(size))
		if err != nil {
			return nil, r.WrapError("name section", err)
		}
		sub := binary.NewReaderAt(payload, r.Position()-len(payload))

		switch id {
		case NameModule:
			if ns.Module, err = sub.ReadName(); err != nil {
				return nil, sub.WrapError("module name", err)
			}
			ns.HasModule = true
		case NameFunction:
			ns.Funcs, err = readNameMap(sub)
		case NameType:
			ns.Types, err = readNameMap(sub)
		case NameTable:
			ns.Tables, err = readNameMap(sub)
		case NameMemory:
			ns.Memories, err = readNameMap(sub)
		case NameGlobal:
			ns.Globals, err = readNameMap(sub)
		case NameElem:
			ns.Elems, err = readNameMap(sub)
		case NameData:
			ns.Datas, err = readNameMap(sub)
		case NameTag:
			ns.Tags, err = readNameMap(sub)
		default:
			// Locals, labels, fields and future subsections.
		}
		if err != nil {
			return nil, sub.WrapError("name section", err)
		}
	}
	return ns, nil
}

func readNameMap(r *binary.Reader) ([]NameEntry, error) {
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	entries := make([]NameEntry, count)
	for i := uint32(0); i < count; i++ {
		if entries[i].Index, err = r.ReadU32(); err != nil {
			return nil, err
		}
		if entries[i].Name, err = r.ReadName(); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// EncodeNameSection produces the payload of a "name" custom section,
// without the section header or the "name" label. Name maps are written
// in ascending index order as the binary format requires.
func EncodeNameSection(ns *NameSection) []byte {
	w := binary.NewWriter()
	if ns.HasModule {
		sub := binary.NewWriter()
		sub.WriteName(ns.Module)
		writeSubsection(w, NameModule, sub.Bytes())
	}
	writeNameMap(w, NameFunction, ns.Funcs)
	writeNameMap(w, NameType, ns.Types)
	writeNameMap(w, NameTable, ns.Tables)
	writeNameMap(w, NameMemory, ns.Memories)
	writeNameMap(w, NameGlobal, ns.Globals)
	writeNameMap(w, NameElem, ns.Elems)
	writeNameMap(w, NameData, ns.Datas)
	writeNameMap(w, NameTag, ns.Tags)
	return w.Bytes()
}

func writeNameMap(w *binary.Writer, id byte, entries []NameEntry) {
	if len(entries) == 0 {
		return
	}
	sorted := make([]NameEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	sub := binary.NewWriter()
	sub.WriteU32(uint32(len(sorted)))
	for _, e := range sorted {
		sub.WriteU32(e.Index)
		sub.WriteName(e.Name)
	}
	writeSubsection(w, id, sub.Bytes())
}

func writeSubsection(w *binary.Writer, id byte, payload []byte) {
	w.Byte(id)
	w.WriteU32(uint32(len(payload)))
	w.WriteBytes(payload)
}
