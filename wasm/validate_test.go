package wasm_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/wippyai/wasm-inspect/wasm"
)

func TestValidateOK(t *testing.T) {
	if err := wasm.Validate(testModule().Encode()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateIndexBounds(t *testing.T) {
	tests := []struct {
		mutate func(*wasm.Module)
		name   string
		want   string
	}{
		{
			name:   "function type index",
			mutate: func(m *wasm.Module) { m.Funcs[0] = 9 },
			want:   "type index 9 out of range",
		},
		{
			name:   "import type index",
			mutate: func(m *wasm.Module) { m.Imports[0].Desc.TypeIdx = 7 },
			want:   "type index 7 out of range",
		},
		{
			name:   "export function index",
			mutate: func(m *wasm.Module) { m.Exports[0].Idx = 42 },
			want:   `export "add": index 42 out of range`,
		},
		{
			name:   "export memory index",
			mutate: func(m *wasm.Module) { m.Exports[1].Idx = 1 },
			want:   `export "mem": index 1 out of range`,
		},
		{
			name: "duplicate export name",
			mutate: func(m *wasm.Module) {
				m.Exports[1].Name = "add"
				m.Exports[1].Idx = 0
			},
			want: `duplicate export name "add"`,
		},
		{
			name:   "start function index",
			mutate: func(m *wasm.Module) { s := uint32(5); m.Start = &s },
			want:   "start function index 5 out of range",
		},
		{
			name:   "element function index",
			mutate: func(m *wasm.Module) { m.Elements[0].FuncIdxs[0] = 8 },
			want:   "element segment function index 8 out of range",
		},
		{
			name:   "data memory index",
			mutate: func(m *wasm.Module) { m.Data[0].Flags = 2; m.Data[0].MemIdx = 3 },
			want:   "data segment memory index 3 out of range",
		},
		{
			name:   "limits max below min",
			mutate: func(m *wasm.Module) { max := uint64(0); m.Tables[0].Limits.Max = &max },
			want:   "limits maximum 0 below minimum 1",
		},
		{
			name:   "data count mismatch",
			mutate: func(m *wasm.Module) { c := uint32(3); m.DataCount = &c },
			want:   "data count section says 3 segments",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModule()
			tt.mutate(m)
			err := wasm.Validate(m.Encode())
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verr *wasm.ValidateError
			if !errors.As(err, &verr) {
				t.Fatalf("error type %T: %v", err, err)
			}
			if !strings.Contains(verr.Message, tt.want) {
				t.Errorf("message %q does not contain %q", verr.Message, tt.want)
			}
			if verr.Offset < 0 || verr.Offset > len(m.Encode()) {
				t.Errorf("offset %d out of buffer", verr.Offset)
			}
		})
	}
}

func TestValidateSectionOrder(t *testing.T) {
	// A table section followed by a type section.
	data := []byte{
		0x00, 0x61, 0x73, 0x6D, 1, 0, 0, 0,
		4, 4, 1, 0x70, 0x00, 0x00, // table section
		1, 4, 1, 0x60, 0, 0, // type section, out of order
	}
	err := wasm.Validate(data)
	if err == nil {
		t.Fatal("expected ordering error")
	}
	if !strings.Contains(err.Error(), "type section out of order") {
		t.Errorf("got %v", err)
	}
}

func TestValidateCodeCountMismatch(t *testing.T) {
	m := testModule()
	m.Code = m.Code[:1]
	err := wasm.Validate(m.Encode())
	if err == nil {
		t.Fatal("expected code count error")
	}
	if !strings.Contains(err.Error(), "bodies") {
		t.Errorf("got %v", err)
	}
}
