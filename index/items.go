package index

import (
	"errors"
	"io"
	"strconv"

	"github.com/wippyai/wasm-inspect/wasm"
)

// Item is one structural element of a module with the byte range it
// occupies. RawName is a synthetic key ("module", "types", "func 0",
// "global 2", ...) where the numeric part counts across the whole
// module, imports included. DisplayName carries the debug name resolved
// for the key, or repeats RawName when none exists.
type Item struct {
	RawName     string
	DisplayName string
	Range       wasm.Range
}

// Items walks the module once and returns its items in file order.
// DisplayName is left equal to RawName; use Resolve to merge debug
// names in.
//
// Container sections produce one item spanning the whole section plus
// one item per member. Sibling members tile: each member's range ends
// where the next member starts, and the last member ends at the section
// end. Export and start sections produce a single section-wide item.
// The function section produces nothing; defined functions are indexed
// from their code section bodies with the same counter the import pass
// started, so the keys follow the module-wide function index space.
func Items(data []byte) ([]Item, error) {
	ix := &indexer{}
	ix.push(wasm.Range{Start: 0, End: len(data)}, "module")

	s := wasm.NewStream(data)
	for {
		p, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ix.items, nil
			}
			return nil, err
		}
		switch p := p.(type) {
		case wasm.TypeSectionPayload:
			ix.push(p.Range, "types")
			ix.members(p.Range, "type", &ix.types, offsetsOf(p.Entries, func(e wasm.TypeEntry) int { return e.Offset }))
		case wasm.ImportSectionPayload:
			ix.imports(p)
		case wasm.TableSectionPayload:
			ix.push(p.Range, "tables")
			ix.members(p.Range, "table", &ix.tables, offsetsOf(p.Entries, func(e wasm.TableEntry) int { return e.Offset }))
		case wasm.MemorySectionPayload:
			ix.push(p.Range, "memories")
			ix.members(p.Range, "memory", &ix.memories, offsetsOf(p.Entries, func(e wasm.MemoryEntry) int { return e.Offset }))
		case wasm.TagSectionPayload:
			ix.push(p.Range, "tags")
			ix.members(p.Range, "tag", &ix.tags, offsetsOf(p.Entries, func(e wasm.TagEntry) int { return e.Offset }))
		case wasm.GlobalSectionPayload:
			ix.push(p.Range, "globals")
			ix.members(p.Range, "global", &ix.globals, offsetsOf(p.Entries, func(e wasm.GlobalEntry) int { return e.Offset }))
		case wasm.ExportSectionPayload:
			ix.push(p.Range, "exports")
		case wasm.StartSectionPayload:
			ix.push(p.Range, "start")
		case wasm.ElementSectionPayload:
			ix.push(p.Range, "elems")
			ix.members(p.Range, "elem", &ix.elems, offsetsOf(p.Entries, func(e wasm.ElementEntry) int { return e.Offset }))
		case wasm.CodeSectionPayload:
			ix.push(p.Range, "funcs")
		case wasm.CodeEntryPayload:
			ix.push(wasm.Range{Start: p.BodyOffset, End: p.Range.End}, key("func", ix.funcs))
			ix.funcs++
		case wasm.DataSectionPayload:
			ix.push(p.Range, "data")
			ix.members(p.Range, "data", &ix.data, offsetsOf(p.Entries, func(e wasm.DataEntry) int { return e.Offset }))
		case wasm.EndPayload:
			return ix.items, nil
		}
	}
}

// indexer carries the item list and the per-kind counters shared across
// all sections of one walk.
type indexer struct {
	items    []Item
	funcs    int
	globals  int
	memories int
	tables   int
	types    int
	tags     int
	elems    int
	data     int
}

func (ix *indexer) push(r wasm.Range, rawName string) {
	ix.items = append(ix.items, Item{Range: r, RawName: rawName, DisplayName: rawName})
}

// members emits one item per member offset. Each member starts as an
// empty range at its offset; seeing the next member patches the
// previous one closed, and the last member is closed at the section
// end. The section item pushed before remains untouched, so it keeps
// the full container range.
func (ix *indexer) members(sec wasm.Range, kind string, counter *int, offsets []int) {
	for i, offset := range offsets {
		if i != 0 {
			ix.items[len(ix.items)-1].Range.End = offset
		}
		ix.push(wasm.Range{Start: offset, End: offset}, key(kind, *counter))
		*counter++
	}
	if len(offsets) != 0 {
		ix.items[len(ix.items)-1].Range.End = sec.End
	}
}

// imports is the one container whose members feed different counters,
// chosen by the imported entity kind.
func (ix *indexer) imports(p wasm.ImportSectionPayload) {
	ix.push(p.Range, "imports")
	for i, e := range p.Entries {
		if i != 0 {
			ix.items[len(ix.items)-1].Range.End = e.Offset
		}
		var counter *int
		var kind string
		switch e.Import.Desc.Kind {
		case wasm.KindFunc:
			kind, counter = "func", &ix.funcs
		case wasm.KindTable:
			kind, counter = "table", &ix.tables
		case wasm.KindMemory:
			kind, counter = "memory", &ix.memories
		case wasm.KindGlobal:
			kind, counter = "global", &ix.globals
		case wasm.KindTag:
			kind, counter = "tag", &ix.tags
		}
		ix.push(wasm.Range{Start: e.Offset, End: e.Offset}, key(kind, *counter))
		*counter++
	}
	if len(p.Entries) != 0 {
		ix.items[len(ix.items)-1].Range.End = p.Range.End
	}
}

func key(kind string, n int) string {
	return kind + " " + strconv.Itoa(n)
}

func offsetsOf[E any](entries []E, offset func(E) int) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = offset(e)
	}
	return out
}
