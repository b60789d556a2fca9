package index_test

import (
	"testing"

	"github.com/wippyai/wasm-inspect/index"
	"github.com/wippyai/wasm-inspect/wasm"
)

// fixture builds a module with one imported and two defined functions,
// a global, a memory, an element segment and a data segment.
func fixture() *wasm.Module {
	max := uint64(4)
	return &wasm.Module{
		Types: []wasm.FuncType{
			{Params: []wasm.ValType{wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}},
			{},
		},
		Imports: []wasm.Import{
			{Module: "env", Name: "log", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 1}},
			{Module: "env", Name: "tick", Desc: wasm.ImportDesc{Kind: wasm.KindGlobal,
				Global: &wasm.GlobalType{ValType: wasm.ValI32}}},
		},
		Funcs: []uint32{0, 1},
		Tables: []wasm.TableType{
			{ElemType: byte(wasm.ValFuncRef), Limits: wasm.Limits{Min: 1, Max: &max}},
		},
		Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}},
		Globals: []wasm.Global{
			{Type: wasm.GlobalType{ValType: wasm.ValI32, Mutable: true}, Init: []byte{0x41, 0x00, 0x0B}},
		},
		Exports: []wasm.Export{{Name: "run", Kind: wasm.KindFunc, Idx: 1}},
		Elements: []wasm.Element{
			{Flags: 0, Offset: []byte{0x41, 0x00, 0x0B}, FuncIdxs: []uint32{1}, Type: wasm.ValFuncRef},
		},
		Code: []wasm.FuncBody{
			{Code: []byte{0x20, 0x00, 0x0B}},
			{Code: []byte{0x41, 0x07, 0x0B}},
		},
		Data: []wasm.DataSegment{
			{Flags: 0, Offset: []byte{0x41, 0x00, 0x0B}, Init: []byte("abc")},
			{Flags: 1, Init: []byte("xyz")},
		},
	}
}

func itemsByKey(items []index.Item) map[string]index.Item {
	m := make(map[string]index.Item, len(items))
	for _, it := range items {
		m[it.RawName] = it
	}
	return m
}

func TestItemsModuleFirst(t *testing.T) {
	data := fixture().Encode()
	items, err := index.Items(data)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) == 0 || items[0].RawName != "module" {
		t.Fatalf("first item = %+v", items)
	}
	if items[0].Range != (wasm.Range{Start: 0, End: len(data)}) {
		t.Errorf("module range = %+v, want [0,%d)", items[0].Range, len(data))
	}
}

func TestItemsFunctionIndexSpace(t *testing.T) {
	items, err := index.Items(fixture().Encode())
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	var funcs []string
	for _, it := range items {
		switch it.RawName {
		case "func 0", "func 1", "func 2", "func 3":
			funcs = append(funcs, it.RawName)
		}
	}
	// One import plus two bodies, numbered continuously in file order.
	want := []string{"func 0", "func 1", "func 2"}
	if len(funcs) != len(want) {
		t.Fatalf("func items = %v", funcs)
	}
	for i := range want {
		if funcs[i] != want[i] {
			t.Errorf("func item %d = %q, want %q", i, funcs[i], want[i])
		}
	}

	byKey := itemsByKey(items)
	if _, ok := byKey["global 0"]; !ok {
		t.Error("imported global missing from index")
	}
	if _, ok := byKey["global 1"]; !ok {
		t.Error("defined global should continue the import counter")
	}
}

func TestItemsSiblingRangesTile(t *testing.T) {
	items, err := index.Items(fixture().Encode())
	if err != nil {
		t.Fatalf("Items: %v", err)
	}

	// Collect members per container and check contiguity.
	containers := map[string][]string{
		"types":   {"type 0", "type 1"},
		"imports": {"func 0", "global 0"},
		"data":    {"data 0", "data 1"},
	}
	byKey := itemsByKey(items)
	for container, members := range containers {
		sec, ok := byKey[container]
		if !ok {
			t.Fatalf("container %q missing", container)
		}
		for i, member := range members {
			it, ok := byKey[member]
			if !ok {
				t.Fatalf("member %q missing", member)
			}
			if it.Range.Start > it.Range.End {
				t.Errorf("%s: inverted range %+v", member, it.Range)
			}
			if !sec.Range.Contains(it.Range.Start) {
				t.Errorf("%s starts at %d outside container %+v", member, it.Range.Start, sec.Range)
			}
			if i > 0 {
				prev := byKey[members[i-1]]
				if prev.Range.End != it.Range.Start {
					t.Errorf("%s ends at %d, %s starts at %d", members[i-1], prev.Range.End, member, it.Range.Start)
				}
			}
		}
		last := byKey[members[len(members)-1]]
		if last.Range.End != sec.Range.End {
			t.Errorf("last member of %q ends at %d, container at %d", container, last.Range.End, sec.Range.End)
		}
	}
}

func TestItemsSectionWithoutMembers(t *testing.T) {
	items, err := index.Items(fixture().Encode())
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	byKey := itemsByKey(items)
	exp := byKey["exports"]
	if exp.Range.Len() == 0 {
		t.Errorf("exports item should cover its whole section, got %+v", exp.Range)
	}
}

func TestItemsEmptyModule(t *testing.T) {
	data := (&wasm.Module{}).Encode()
	items, err := index.Items(data)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 1 || items[0].RawName != "module" {
		t.Fatalf("items = %+v", items)
	}
}

func TestItemsIdempotent(t *testing.T) {
	data := fixture().Encode()
	a, err := index.Items(data)
	if err != nil {
		t.Fatal(err)
	}
	b, err := index.Items(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("item %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestItemsMalformed(t *testing.T) {
	data := fixture().Encode()
	if _, err := index.Items(data[:len(data)-2]); err == nil {
		t.Error("expected error for truncated module")
	}

	// A code section whose declared size exceeds the buffer.
	bad := []byte{0x00, 0x61, 0x73, 0x6D, 1, 0, 0, 0, 10, 0x7F, 1}
	if _, err := index.Items(bad); err == nil {
		t.Error("expected error for oversized code section")
	}
}
