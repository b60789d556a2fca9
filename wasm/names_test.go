package wasm_test

import (
	"testing"

	"github.com/wippyai/wasm-inspect/wasm"
)

func TestNameSectionRoundTrip(t *testing.T) {
	ns := &wasm.NameSection{
		Module:    "calc",
		HasModule: true,
		Funcs: []wasm.NameEntry{
			{Index: 2, Name: "mul"},
			{Index: 0, Name: "log"},
		},
		Globals: []wasm.NameEntry{{Index: 0, Name: "counter"}},
		Datas:   []wasm.NameEntry{{Index: 0, Name: "greeting"}},
	}
	payload := wasm.EncodeNameSection(ns)

	got, err := wasm.DecodeNameSection(payload, 100)
	if err != nil {
		t.Fatalf("DecodeNameSection: %v", err)
	}
	if !got.HasModule || got.Module != "calc" {
		t.Errorf("module name = %q (present %v)", got.Module, got.HasModule)
	}
	// Encoding sorts name maps by index.
	if len(got.Funcs) != 2 || got.Funcs[0].Index != 0 || got.Funcs[0].Name != "log" {
		t.Errorf("funcs = %+v", got.Funcs)
	}
	if got.Funcs[1].Name != "mul" {
		t.Errorf("funcs = %+v", got.Funcs)
	}
	if len(got.Globals) != 1 || got.Globals[0].Name != "counter" {
		t.Errorf("globals = %+v", got.Globals)
	}
	if len(got.Datas) != 1 || got.Datas[0].Name != "greeting" {
		t.Errorf("datas = %+v", got.Datas)
	}
}

func TestNameSectionSkipsUnknownSubsections(t *testing.T) {
	// A local-names subsection (ID 2) followed by a function subsection.
	funcs := wasm.EncodeNameSection(&wasm.NameSection{
		Funcs: []wasm.NameEntry{{Index: 0, Name: "main"}},
	})
	payload := append([]byte{2, 3, 0xAA, 0xBB, 0xCC}, funcs...)

	got, err := wasm.DecodeNameSection(payload, 0)
	if err != nil {
		t.Fatalf("DecodeNameSection: %v", err)
	}
	if len(got.Funcs) != 1 || got.Funcs[0].Name != "main" {
		t.Errorf("funcs = %+v", got.Funcs)
	}
}

func TestNameSectionTruncated(t *testing.T) {
	payload := []byte{1, 10, 1} // function subsection claiming 10 bytes
	if _, err := wasm.DecodeNameSection(payload, 0); err == nil {
		t.Fatal("expected error for truncated subsection")
	}
}

func TestNameSectionEmpty(t *testing.T) {
	ns, err := wasm.DecodeNameSection(nil, 0)
	if err != nil {
		t.Fatalf("DecodeNameSection: %v", err)
	}
	if !ns.Empty() {
		t.Error("expected empty section")
	}
	if got := wasm.EncodeNameSection(ns); len(got) != 0 {
		t.Errorf("encoded empty section to %d bytes", len(got))
	}
}
