package wat_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wippyai/wasm-inspect/wasm"
	"github.com/wippyai/wasm-inspect/wat"
)

func compile(t *testing.T, src string) *wasm.Module {
	t.Helper()
	bin, err := wat.Compile(src)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	mod, err := wasm.ParseModule(bin)
	if err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	return mod
}

func TestCompileEmptyModule(t *testing.T) {
	bin, err := wat.Compile("(module)")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(bin) != 8 {
		t.Errorf("expected header only, got %d bytes", len(bin))
	}
	if bin[0] != 0x00 || bin[1] != 0x61 || bin[2] != 0x73 || bin[3] != 0x6D {
		t.Error("missing magic bytes")
	}
}

func TestCompileFunction(t *testing.T) {
	mod := compile(t, `(module
		(func (export "add") (param i32 i32) (result i32)
			(i32.add (local.get 0) (local.get 1))))`)

	if len(mod.Types) != 1 || len(mod.Types[0].Params) != 2 || len(mod.Types[0].Results) != 1 {
		t.Fatalf("unexpected types: %+v", mod.Types)
	}
	if len(mod.Funcs) != 1 || mod.Funcs[0] != 0 {
		t.Fatalf("unexpected funcs: %v", mod.Funcs)
	}
	if len(mod.Exports) != 1 || mod.Exports[0].Name != "add" || mod.Exports[0].Kind != wasm.KindFunc {
		t.Fatalf("unexpected exports: %+v", mod.Exports)
	}

	want := []byte{0x20, 0x00, 0x20, 0x01, 0x6A, 0x0B}
	if len(mod.Code) != 1 || !bytes.Equal(mod.Code[0].Code, want) {
		t.Errorf("body = %x, want %x", mod.Code[0].Code, want)
	}
}

func TestCompilePlainForm(t *testing.T) {
	mod := compile(t, `(module
		(func (result i32)
			i32.const 2
			i32.const 3
			i32.mul))`)

	want := []byte{0x41, 0x02, 0x41, 0x03, 0x6C, 0x0B}
	if !bytes.Equal(mod.Code[0].Code, want) {
		t.Errorf("body = %x, want %x", mod.Code[0].Code, want)
	}
}

func TestCompileNames(t *testing.T) {
	bin, err := wat.Compile(`(module $calc
		(func $add (param $a i32) (param $b i32) (result i32)
			(i32.add (local.get $a) (local.get $b)))
		(global $count (mut i32) (i32.const 0)))`)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	mod, err := wasm.ParseModule(bin)
	if err != nil {
		t.Fatalf("output does not parse: %v", err)
	}

	var ns *wasm.NameSection
	for _, cs := range mod.CustomSections {
		if cs.Name == wasm.NameSectionName {
			ns, err = wasm.DecodeNameSection(cs.Data, 0)
			if err != nil {
				t.Fatalf("DecodeNameSection: %v", err)
			}
		}
	}
	if ns == nil {
		t.Fatal("no name section emitted")
	}
	if !ns.HasModule || ns.Module != "calc" {
		t.Errorf("module name = %q, want calc", ns.Module)
	}
	if len(ns.Funcs) != 1 || ns.Funcs[0].Name != "add" || ns.Funcs[0].Index != 0 {
		t.Errorf("func names = %+v", ns.Funcs)
	}
	if len(ns.Globals) != 1 || ns.Globals[0].Name != "count" {
		t.Errorf("global names = %+v", ns.Globals)
	}
}

func TestCompileImportsPrecedeDefined(t *testing.T) {
	mod := compile(t, `(module
		(func $local (result i32) (call $imported))
		(import "env" "f" (func $imported (result i32))))`)

	if len(mod.Imports) != 1 || mod.Imports[0].Module != "env" {
		t.Fatalf("unexpected imports: %+v", mod.Imports)
	}
	// $imported is function 0, so the call must reference index 0
	want := []byte{0x10, 0x00, 0x0B}
	if !bytes.Equal(mod.Code[0].Code, want) {
		t.Errorf("body = %x, want %x", mod.Code[0].Code, want)
	}
}

func TestCompileControlFlow(t *testing.T) {
	mod := compile(t, `(module
		(func (param i32) (result i32)
			(block $exit (result i32)
				(loop $again
					(br_if $exit (i32.const 1) (local.get 0))
					(br $again))
				i32.const 0)))`)

	body := mod.Code[0].Code
	if body[0] != 0x02 || body[1] != 0x7F {
		t.Errorf("expected block with i32 result, got %x", body[:2])
	}
	found := false
	for _, b := range body {
		if b == 0x03 {
			found = true
		}
	}
	if !found {
		t.Error("loop opcode missing from body")
	}
}

func TestCompileIfThenElse(t *testing.T) {
	mod := compile(t, `(module
		(func (param i32) (result i32)
			(if (result i32) (local.get 0)
				(then (i32.const 1))
				(else (i32.const 2)))))`)

	want := []byte{
		0x20, 0x00, // local.get 0
		0x04, 0x7F, // if (result i32)
		0x41, 0x01, // i32.const 1
		0x05,       // else
		0x41, 0x02, // i32.const 2
		0x0B, // end (if)
		0x0B, // end (func)
	}
	if !bytes.Equal(mod.Code[0].Code, want) {
		t.Errorf("body = %x, want %x", mod.Code[0].Code, want)
	}
}

func TestCompileMemoryAndData(t *testing.T) {
	mod := compile(t, `(module
		(memory (export "mem") 1 4)
		(data (i32.const 8) "hi\00")
		(data $blob "raw"))`)

	if len(mod.Memories) != 1 || mod.Memories[0].Limits.Min != 1 {
		t.Fatalf("unexpected memories: %+v", mod.Memories)
	}
	if len(mod.Data) != 2 {
		t.Fatalf("expected 2 data segments, got %d", len(mod.Data))
	}
	if mod.Data[0].Flags != 0 || !bytes.Equal(mod.Data[0].Init, []byte{'h', 'i', 0}) {
		t.Errorf("active segment = %+v", mod.Data[0])
	}
	if !mod.Data[1].IsPassive() || string(mod.Data[1].Init) != "raw" {
		t.Errorf("passive segment = %+v", mod.Data[1])
	}
}

func TestCompileTableAndElem(t *testing.T) {
	mod := compile(t, `(module
		(table $t 2 funcref)
		(func $a)
		(func $b)
		(elem (i32.const 0) func $a $b))`)

	if len(mod.Tables) != 1 || mod.Tables[0].ElemType != byte(wasm.ValFuncRef) {
		t.Fatalf("unexpected tables: %+v", mod.Tables)
	}
	if len(mod.Elements) != 1 {
		t.Fatalf("expected 1 element segment, got %d", len(mod.Elements))
	}
	el := mod.Elements[0]
	if !el.IsActive() || len(el.FuncIdxs) != 2 || el.FuncIdxs[1] != 1 {
		t.Errorf("element segment = %+v", el)
	}
}

func TestCompileStartAndGlobal(t *testing.T) {
	mod := compile(t, `(module
		(global $g i32 (i32.const 42))
		(func $init (global.get $g) drop)
		(start $init))`)

	if mod.Start == nil || *mod.Start != 0 {
		t.Fatalf("start = %v", mod.Start)
	}
	if len(mod.Globals) != 1 || mod.Globals[0].Type.Mutable {
		t.Fatalf("globals = %+v", mod.Globals)
	}
	wantInit := []byte{0x41, 0x2A, 0x0B}
	if !bytes.Equal(mod.Globals[0].Init, wantInit) {
		t.Errorf("init = %x, want %x", mod.Globals[0].Init, wantInit)
	}
}

func TestCompileMemarg(t *testing.T) {
	mod := compile(t, `(module
		(memory 1)
		(func (param i32) (result i32)
			(i32.load offset=16 align=2 (local.get 0))))`)

	want := []byte{0x20, 0x00, 0x28, 0x01, 0x10, 0x0B}
	if !bytes.Equal(mod.Code[0].Code, want) {
		t.Errorf("body = %x, want %x", mod.Code[0].Code, want)
	}
}

func TestCompilePassiveDataEmitsDataCount(t *testing.T) {
	mod := compile(t, `(module
		(memory 1)
		(data $seg "abc")
		(func
			(memory.init $seg (i32.const 0) (i32.const 0) (i32.const 3))
			(data.drop $seg)))`)

	if mod.DataCount == nil || *mod.DataCount != 1 {
		t.Fatalf("data count = %v", mod.DataCount)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name, src, wantErr string
	}{
		{"not a module", "(func)", "expected (module"},
		{"unclosed", "(module", "unclosed"},
		{"unknown instruction", "(module (func (bogus)))", "unknown instruction"},
		{"unknown value type", "(module (func (param bogus)))", "unknown value type"},
		{"unknown label", "(module (func (block (br $missing))))", "unknown label"},
		{"unknown func", `(module (export "f" (func $nope)))`, "unknown func"},
		{"bad alignment", "(module (memory 1) (func (drop (i32.load align=3 (i32.const 0)))))", "power of two"},
		{"trailing tokens", "(module) extra", "unexpected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := wat.Compile(tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q missing %q", err, tt.wantErr)
			}
		})
	}
}
