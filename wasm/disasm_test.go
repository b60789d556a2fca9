package wasm_test

import (
	"errors"
	"io"
	"testing"

	"github.com/wippyai/wasm-inspect/wasm"
)

func disassembleAll(t *testing.T, code []byte, base int) []wasm.Instr {
	t.Helper()
	d := wasm.NewDisassembler(code, base)
	var out []wasm.Instr
	for {
		in, err := d.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out
			}
			t.Fatalf("Next: %v", err)
		}
		out = append(out, in)
	}
}

func TestDisassembleBasic(t *testing.T) {
	code := []byte{
		0x20, 0x00, // local.get 0
		0x41, 0x85, 0x01, // i32.const 133
		0x6A,             // i32.add
		0x28, 0x02, 0x04, // i32.load offset=4
		0x0B, // end
	}
	instrs := disassembleAll(t, code, 100)

	wantNames := []string{"local.get", "i32.const", "i32.add", "i32.load", "end"}
	wantOffsets := []int{100, 102, 105, 106, 109}
	if len(instrs) != len(wantNames) {
		t.Fatalf("got %d instructions, want %d", len(instrs), len(wantNames))
	}
	for i, in := range instrs {
		if in.Name != wantNames[i] {
			t.Errorf("instr %d: name %q, want %q", i, in.Name, wantNames[i])
		}
		if in.Offset != wantOffsets[i] {
			t.Errorf("instr %d: offset %d, want %d", i, in.Offset, wantOffsets[i])
		}
	}

	if op := instrs[0].Operands[0]; op.Kind != wasm.OperandLocal || op.Index != 0 {
		t.Errorf("local.get operand = %+v", op)
	}
	if op := instrs[1].Operands[0]; op.Kind != wasm.OperandText || op.Text != "133" {
		t.Errorf("i32.const operand = %+v", op)
	}
	// Natural alignment is not printed, a nonzero offset is.
	if got := instrs[3].Operands; len(got) != 1 || got[0].Text != "offset=4" {
		t.Errorf("i32.load operands = %+v", got)
	}
}

func TestDisassembleControl(t *testing.T) {
	code := []byte{
		0x02, 0x7F, // block (result i32)
		0x41, 0x01, // i32.const 1
		0x0C, 0x00, // br 0
		0x0B, // end
		0x0B, // end
	}
	instrs := disassembleAll(t, code, 0)
	if !instrs[0].OpensBlock() {
		t.Error("block should open a nested block")
	}
	if got := instrs[0].Operands[0].Text; got != "(result i32)" {
		t.Errorf("block type = %q", got)
	}
	if op := instrs[2].Operands[0]; op.Kind != wasm.OperandLabel || op.Index != 0 {
		t.Errorf("br operand = %+v", op)
	}
}

func TestDisassembleCallIndirect(t *testing.T) {
	code := []byte{0x11, 0x02, 0x00, 0x0B} // call_indirect (type 2) (table 0)
	instrs := disassembleAll(t, code, 0)
	ops := instrs[0].Operands
	if len(ops) != 2 || ops[0].Kind != wasm.OperandType || ops[0].Index != 2 {
		t.Fatalf("operands = %+v", ops)
	}
	if ops[1].Kind != wasm.OperandTable {
		t.Errorf("second operand = %+v", ops[1])
	}
}

func TestDisassembleMiscPrefix(t *testing.T) {
	code := []byte{
		0xFC, 0x0B, 0x00, // memory.fill
		0xFC, 0x08, 0x01, 0x00, // memory.init 1
		0x0B,
	}
	instrs := disassembleAll(t, code, 0)
	if instrs[0].Name != "memory.fill" || len(instrs[0].Operands) != 0 {
		t.Errorf("memory.fill = %+v", instrs[0])
	}
	if instrs[1].Name != "memory.init" {
		t.Errorf("memory.init = %+v", instrs[1])
	}
	if op := instrs[1].Operands[0]; op.Kind != wasm.OperandData || op.Index != 1 {
		t.Errorf("memory.init operand = %+v", op)
	}
}

func TestDisassembleRefOps(t *testing.T) {
	code := []byte{
		0xD0, 0x70, // ref.null func
		0xD2, 0x03, // ref.func 3
		0x0B,
	}
	instrs := disassembleAll(t, code, 0)
	if got := instrs[0].Operands[0].Text; got != "func" {
		t.Errorf("ref.null operand = %q", got)
	}
	if op := instrs[1].Operands[0]; op.Kind != wasm.OperandFunc || op.Index != 3 {
		t.Errorf("ref.func operand = %+v", op)
	}
}

func TestDisassembleUnknownOpcode(t *testing.T) {
	d := wasm.NewDisassembler([]byte{0xF5}, 0)
	if _, err := d.Next(); err == nil {
		t.Fatal("expected error for unknown opcode")
	}
}
