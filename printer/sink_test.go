package printer_test

import (
	"testing"

	"github.com/wippyai/wasm-inspect/printer"
	"github.com/wippyai/wasm-inspect/wasm"
)

func TestRangeTextFiltering(t *testing.T) {
	sink := printer.NewRangeText(wasm.Range{Start: 10, End: 20})

	sink.StartLine(5)
	sink.Write("before window")
	sink.Newline()

	sink.StartLine(10)
	sink.Write("first kept")
	sink.Newline()

	sink.StartLine(-1) // synthetic line, offset unchanged
	sink.Write("also kept")
	sink.Newline()

	sink.StartLine(19)
	sink.Write("last kept")
	sink.Newline()

	sink.StartLine(20)
	sink.Write("past window")
	sink.Newline()

	want := "first kept\nalso kept\nlast kept\n"
	if got := sink.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRangeTextEmptyWindow(t *testing.T) {
	sink := printer.NewRangeText(wasm.Range{Start: 5, End: 5})
	sink.StartLine(5)
	sink.Write("anything")
	sink.Newline()
	if got := sink.String(); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestRangePartsCoalescing(t *testing.T) {
	sink := printer.NewRangeParts(wasm.Range{Start: 0, End: 100})
	sink.StartLine(0)
	sink.Write("(")
	sink.Write("module")
	sink.StartKeyword()
	sink.Write("func")
	sink.Write(" $f")
	sink.ResetColor()
	sink.Newline()

	parts := sink.Parts()
	want := []printer.PartKind{
		printer.PartStr, printer.PartKeyword, printer.PartStr,
		printer.PartReset, printer.PartNewline,
	}
	if len(parts) != len(want) {
		t.Fatalf("parts = %+v", parts)
	}
	for i, k := range want {
		if parts[i].Kind != k {
			t.Errorf("part %d kind = %v, want %v", i, parts[i].Kind, k)
		}
	}
	if parts[0].Text != "(module" {
		t.Errorf("first run = %q", parts[0].Text)
	}
	if parts[2].Text != "func $f" {
		t.Errorf("run after marker = %q", parts[2].Text)
	}
	if parts[4].Offset != 0 {
		t.Errorf("newline offset = %d", parts[4].Offset)
	}
}

func TestRangePartsSuppressesMarkers(t *testing.T) {
	sink := printer.NewRangeParts(wasm.Range{Start: 50, End: 60})
	sink.StartLine(0)
	sink.StartKeyword()
	sink.Write("dropped")
	sink.ResetColor()
	sink.Newline()
	if got := sink.Parts(); len(got) != 0 {
		t.Errorf("parts = %+v, want none", got)
	}
}

func TestRangePartsNewlineCarriesOffset(t *testing.T) {
	sink := printer.NewRangeParts(wasm.Range{Start: 0, End: 100})
	sink.StartLine(42)
	sink.Write("x")
	sink.Newline()
	parts := sink.Parts()
	if len(parts) != 2 || parts[1].Kind != printer.PartNewline || parts[1].Offset != 42 {
		t.Fatalf("parts = %+v", parts)
	}
}
