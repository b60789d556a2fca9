package cli

import (
	"bytes"
	"testing"

	wasminspect "github.com/wippyai/wasm-inspect"
)

func TestParseRange(t *testing.T) {
	full := wasminspect.Range{Start: 0, End: 100}

	tests := []struct {
		name    string
		spec    string
		want    wasminspect.Range
		wantErr bool
	}{
		{name: "empty means full", spec: "", want: full},
		{name: "both bounds", spec: "8:24", want: wasminspect.Range{Start: 8, End: 24}},
		{name: "hex bounds", spec: "0x10:0x20", want: wasminspect.Range{Start: 16, End: 32}},
		{name: "open start", spec: ":40", want: wasminspect.Range{Start: 0, End: 40}},
		{name: "open end", spec: "12:", want: wasminspect.Range{Start: 12, End: 100}},
		{name: "missing colon", spec: "12", wantErr: true},
		{name: "reversed bounds", spec: "30:10", wantErr: true},
		{name: "garbage start", spec: "abc:10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRange(tt.spec, full)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseRange(%q) succeeded, want error", tt.spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRange(%q): %v", tt.spec, err)
			}
			if got != tt.want {
				t.Errorf("parseRange(%q) = %+v, want %+v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	if !colorEnabled("always", &buf) {
		t.Error("always should force color on")
	}
	if colorEnabled("never", &buf) {
		t.Error("never should force color off")
	}
	// a plain buffer is not a terminal
	if colorEnabled("auto", &buf) {
		t.Error("auto should disable color for non-TTY writers")
	}
}

func TestRenderPartsPlainStyles(t *testing.T) {
	parts := []wasminspect.Part{
		{Kind: wasminspect.PartKeyword},
		{Kind: wasminspect.PartStr, Text: "(module"},
		{Kind: wasminspect.PartReset},
		{Kind: wasminspect.PartStr, Text: ")"},
		{Kind: wasminspect.PartNewline},
	}
	got := renderParts(parts, newStyles(false))
	if got != "(module)\n" {
		t.Errorf("renderParts = %q, want %q", got, "(module)\n")
	}
}
