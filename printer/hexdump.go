package printer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-inspect/wasm"
)

const dumpRowBytes = 4

// Dump renders an annotated hex dump of the module: every byte appears
// in an offset-prefixed hex column, and the first row of each
// structural region carries a note saying what the bytes encode. Item
// notes use the same keys the index package produces.
func Dump(data []byte) (string, error) {
	d := &dumper{data: data}
	s := wasm.NewStream(data)

	var funcs, globals, memories, tables, types, tags, elems, datas int

	for {
		p, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return d.b.String(), nil
			}
			return "", err
		}
		switch p := p.(type) {
		case wasm.HeaderPayload:
			d.print(p.Range.End, "version "+strconv.FormatUint(uint64(p.Version), 10))

		case wasm.TypeSectionPayload:
			d.section(p.Range, "type")
			d.entries(p.Range, offsetNotes("type", &types, offsetsOfType(p.Entries)))

		case wasm.ImportSectionPayload:
			d.section(p.Range, "import")
			notes := make([]regionNote, len(p.Entries))
			for i, e := range p.Entries {
				var key string
				switch e.Import.Desc.Kind {
				case wasm.KindFunc:
					key = note("func", &funcs)
				case wasm.KindTable:
					key = note("table", &tables)
				case wasm.KindMemory:
					key = note("memory", &memories)
				case wasm.KindGlobal:
					key = note("global", &globals)
				case wasm.KindTag:
					key = note("tag", &tags)
				}
				notes[i] = regionNote{offset: e.Offset, note: "import " + key}
			}
			d.entries(p.Range, notes)

		case wasm.FunctionSectionPayload:
			d.section(p.Range, "function")
			notes := make([]regionNote, len(p.Entries))
			for i, e := range p.Entries {
				notes[i] = regionNote{
					offset: e.Offset,
					note:   fmt.Sprintf("func %d type %d", funcs+i, e.TypeIdx),
				}
			}
			d.entries(p.Range, notes)

		case wasm.TableSectionPayload:
			d.section(p.Range, "table")
			notes := make([]regionNote, len(p.Entries))
			for i, e := range p.Entries {
				notes[i] = regionNote{offset: e.Offset, note: note("table", &tables)}
			}
			d.entries(p.Range, notes)

		case wasm.MemorySectionPayload:
			d.section(p.Range, "memory")
			notes := make([]regionNote, len(p.Entries))
			for i, e := range p.Entries {
				notes[i] = regionNote{offset: e.Offset, note: note("memory", &memories)}
			}
			d.entries(p.Range, notes)

		case wasm.TagSectionPayload:
			d.section(p.Range, "tag")
			notes := make([]regionNote, len(p.Entries))
			for i, e := range p.Entries {
				notes[i] = regionNote{offset: e.Offset, note: note("tag", &tags)}
			}
			d.entries(p.Range, notes)

		case wasm.GlobalSectionPayload:
			d.section(p.Range, "global")
			notes := make([]regionNote, len(p.Entries))
			for i, e := range p.Entries {
				notes[i] = regionNote{offset: e.Offset, note: note("global", &globals)}
			}
			d.entries(p.Range, notes)

		case wasm.ExportSectionPayload:
			d.section(p.Range, "export")
			notes := make([]regionNote, len(p.Entries))
			for i, e := range p.Entries {
				notes[i] = regionNote{offset: e.Offset, note: "export " + strconv.Quote(e.Export.Name)}
			}
			d.entries(p.Range, notes)

		case wasm.StartSectionPayload:
			d.section(p.Range, "start")
			d.print(p.Range.End, "start func "+strconv.FormatUint(uint64(p.FuncIdx), 10))

		case wasm.ElementSectionPayload:
			d.section(p.Range, "element")
			notes := make([]regionNote, len(p.Entries))
			for i, e := range p.Entries {
				notes[i] = regionNote{offset: e.Offset, note: note("elem", &elems)}
			}
			d.entries(p.Range, notes)

		case wasm.CodeSectionPayload:
			d.section(p.Range, "code")

		case wasm.CodeEntryPayload:
			if d.cur < p.Range.Start {
				d.print(p.Range.Start, "count")
			}
			d.print(p.Range.End, note("func", &funcs)+" body")

		case wasm.DataCountPayload:
			d.section(p.Range, "data count")
			d.print(p.Range.End, strconv.FormatUint(uint64(p.Count), 10)+" segments")

		case wasm.DataSectionPayload:
			d.section(p.Range, "data")
			notes := make([]regionNote, len(p.Entries))
			for i, e := range p.Entries {
				notes[i] = regionNote{offset: e.Offset, note: note("data", &datas)}
			}
			d.entries(p.Range, notes)

		case wasm.CustomSectionPayload:
			d.section(p.Range, "custom")
			d.print(p.Range.End, "custom "+strconv.Quote(p.Name))

		case wasm.EndPayload:
			if d.cur < p.Offset {
				d.print(p.Offset, "")
			}
			return d.b.String(), nil
		}
	}
}

type regionNote struct {
	note   string
	offset int
}

func note(kind string, counter *int) string {
	s := kind + " " + strconv.Itoa(*counter)
	*counter++
	return s
}

func offsetNotes(kind string, counter *int, offsets []int) []regionNote {
	out := make([]regionNote, len(offsets))
	for i, off := range offsets {
		out[i] = regionNote{offset: off, note: note(kind, counter)}
	}
	return out
}

func offsetsOfType(entries []wasm.TypeEntry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Offset
	}
	return out
}

type dumper struct {
	b    strings.Builder
	data []byte
	cur  int
}

// section annotates the id and size bytes that precede the section
// contents.
func (d *dumper) section(sec wasm.Range, name string) {
	d.print(sec.Start, "section "+name)
}

// entries prints each member's region; the bytes between the section
// start and the first member are the member count.
func (d *dumper) entries(sec wasm.Range, notes []regionNote) {
	if len(notes) == 0 {
		if d.cur < sec.End {
			d.print(sec.End, "")
		}
		return
	}
	if d.cur < notes[0].offset {
		d.print(notes[0].offset, "count")
	}
	for i, n := range notes {
		end := sec.End
		if i+1 < len(notes) {
			end = notes[i+1].offset
		}
		d.print(end, n.note)
	}
}

// print emits the bytes from the current position up to end, four per
// row, with the note on the first row.
func (d *dumper) print(end int, note string) {
	if end <= d.cur {
		return
	}
	bytes := d.data[d.cur:end]
	for row := 0; row*dumpRowBytes < len(bytes); row++ {
		if row == 0 {
			fmt.Fprintf(&d.b, "0x%04x |", d.cur)
		} else {
			d.b.WriteString("       |")
		}
		for j := 0; j < dumpRowBytes; j++ {
			k := row*dumpRowBytes + j
			if k < len(bytes) {
				fmt.Fprintf(&d.b, " %02x", bytes[k])
			} else {
				d.b.WriteString("   ")
			}
		}
		if row == 0 && note != "" {
			d.b.WriteString(" | ")
			d.b.WriteString(note)
		}
		d.b.WriteByte('\n')
	}
	d.cur = end
}
