package printer_test

import (
	"strings"
	"testing"

	"github.com/wippyai/wasm-inspect/printer"
	"github.com/wippyai/wasm-inspect/wasm"
)

func fixture() *wasm.Module {
	return &wasm.Module{
		Types: []wasm.FuncType{
			{Params: []wasm.ValType{wasm.ValI32, wasm.ValI32}, Results: []wasm.ValType{wasm.ValI32}},
			{},
		},
		Imports: []wasm.Import{
			{Module: "env", Name: "log", Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: 1}},
		},
		Funcs:    []uint32{0},
		Memories: []wasm.MemoryType{{Limits: wasm.Limits{Min: 1}}},
		Globals: []wasm.Global{
			{Type: wasm.GlobalType{ValType: wasm.ValI32, Mutable: true}, Init: []byte{0x41, 0x2A, 0x0B}},
		},
		Exports: []wasm.Export{{Name: "add", Kind: wasm.KindFunc, Idx: 1}},
		Code: []wasm.FuncBody{
			{Code: []byte{
				0x20, 0x00, // local.get 0
				0x20, 0x01, // local.get 1
				0x6A, // i32.add
				0x0B, // end
			}},
		},
		Data: []wasm.DataSegment{
			{Flags: 0, Offset: []byte{0x41, 0x00, 0x0B}, Init: []byte("hi\x00")},
		},
	}
}

func printAll(t *testing.T, data []byte) string {
	t.Helper()
	sink := printer.NewRangeText(wasm.Range{Start: 0, End: len(data)})
	if err := printer.Print(data, sink); err != nil {
		t.Fatalf("Print: %v", err)
	}
	return sink.String()
}

func TestPrintFullModule(t *testing.T) {
	out := printAll(t, fixture().Encode())

	for _, want := range []string{
		"(module\n",
		`(type (;0;) (func (param i32 i32) (result i32)))`,
		`(import "env" "log" (func (;0;) (type 1)))`,
		"(memory (;0;) 1)",
		"(global (;0;) (mut i32) (i32.const 42))",
		`(export "add" (func 1))`,
		"(func (;1;) (type 0) (param i32 i32) (result i32)",
		"local.get 0",
		"i32.add",
		`(data (;0;) (i32.const 0) "hi\00")`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
	if !strings.HasSuffix(out, ")\n") {
		t.Errorf("output does not close the module:\n%s", out)
	}
	// The body's own closing end is implied by the closing parenthesis.
	if strings.Contains(out, "\n    end") {
		t.Errorf("body end should not be printed:\n%s", out)
	}
}

func TestPrintUsesDebugNames(t *testing.T) {
	m := fixture()
	m.CustomSections = append(m.CustomSections, wasm.CustomSection{
		Name: wasm.NameSectionName,
		Data: wasm.EncodeNameSection(&wasm.NameSection{
			Module:    "calc",
			HasModule: true,
			Funcs: []wasm.NameEntry{
				{Index: 0, Name: "log"},
				{Index: 1, Name: "add"},
			},
		}),
	})
	out := printAll(t, m.Encode())

	for _, want := range []string{
		"(module $calc",
		"(func $log (;0;)",
		"(func $add (;1;)",
		`(export "add" (func $add))`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestPrintRangeRestricted(t *testing.T) {
	data := fixture().Encode()
	full := printAll(t, data)

	sink := printer.NewRangeText(wasm.Range{Start: 0, End: 8})
	if err := printer.Print(data, sink); err != nil {
		t.Fatalf("Print: %v", err)
	}
	got := sink.String()
	if !strings.Contains(got, "(module") {
		t.Errorf("header window output = %q", got)
	}
	if strings.Contains(got, "type") || strings.Contains(got, "func") {
		t.Errorf("header window leaked section lines: %q", got)
	}
	if len(got) >= len(full) {
		t.Error("restricted output should be smaller than the full render")
	}
}

func TestPrintEmptyRange(t *testing.T) {
	data := fixture().Encode()
	sink := printer.NewRangeText(wasm.Range{Start: 12, End: 12})
	if err := printer.Print(data, sink); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if got := sink.String(); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestPrintPlainAndRichAgree(t *testing.T) {
	data := fixture().Encode()
	r := wasm.Range{Start: 0, End: len(data)}

	text := printer.NewRangeText(r)
	if err := printer.Print(data, text); err != nil {
		t.Fatal(err)
	}
	parts := printer.NewRangeParts(r)
	if err := printer.Print(data, parts); err != nil {
		t.Fatal(err)
	}
	if text.String() != parts.Text() {
		t.Errorf("plain and rich disagree:\n%q\n%q", text.String(), parts.Text())
	}
}

func TestPrintRichHasMarkers(t *testing.T) {
	data := fixture().Encode()
	parts := printer.NewRangeParts(wasm.Range{Start: 0, End: len(data)})
	if err := printer.Print(data, parts); err != nil {
		t.Fatal(err)
	}
	kinds := map[printer.PartKind]bool{}
	for _, p := range parts.Parts() {
		kinds[p.Kind] = true
	}
	for _, want := range []printer.PartKind{
		printer.PartKeyword, printer.PartLiteral, printer.PartType,
		printer.PartComment, printer.PartReset, printer.PartNewline,
	} {
		if !kinds[want] {
			t.Errorf("no part of kind %v in rich output", want)
		}
	}
}

func TestPrintMalformed(t *testing.T) {
	data := fixture().Encode()
	sink := printer.NewRangeText(wasm.Range{Start: 0, End: len(data)})
	if err := printer.Print(data[:len(data)-2], sink); err == nil {
		t.Error("expected error for truncated module")
	}
}

func TestDump(t *testing.T) {
	data := fixture().Encode()
	out, err := printer.Dump(data)
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !strings.HasPrefix(out, "0x0000 | 00 61 73 6d") {
		t.Errorf("dump does not start with the magic row:\n%s", out)
	}
	for _, want := range []string{
		"version 1",
		"section type",
		"type 0",
		`import func 0`,
		"func 1 body",
		"section data",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q\n%s", want, out)
		}
	}

	// Every byte of the module appears in the dump exactly once.
	hexBytes := 0
	for _, line := range strings.Split(out, "\n") {
		if i := strings.Index(line, "|"); i >= 0 {
			rest := line[i+1:]
			if j := strings.Index(rest, "|"); j >= 0 {
				rest = rest[:j]
			}
			hexBytes += len(strings.Fields(rest))
		}
	}
	if hexBytes != len(data) {
		t.Errorf("dump shows %d bytes, module has %d", hexBytes, len(data))
	}
}
