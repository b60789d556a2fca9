package encoder

import (
	"github.com/wippyai/wasm-inspect/wasm"
	"github.com/wippyai/wasm-inspect/wat/internal/ast"
)

// EncodeExpr lowers an instruction sequence to bytecode, terminated by
// the end opcode as expressions and function bodies require.
func EncodeExpr(ins []ast.Instr) []byte {
	buf := &Buffer{}
	for _, in := range ins {
		EncodeInstr(buf, in)
	}
	buf.Byte(wasm.OpEnd)
	return buf.Bytes
}

func EncodeInstr(buf *Buffer, in ast.Instr) {
	buf.Byte(in.Opcode)

	switch imm := in.Imm.(type) {
	case nil:

	case uint32:
		buf.U32(imm)

	case int32:
		buf.I64(int64(imm))

	case int64:
		buf.I64(imm)

	case float32:
		buf.F32(imm)

	case float64:
		buf.F64(imm)

	case byte:
		// memory.size/grow memory index, ref.null heap type
		buf.Byte(imm)

	case ast.BlockType:
		if imm.TypeIdx >= 0 {
			buf.I64(imm.TypeIdx)
		} else {
			buf.Byte(imm.Simple)
		}

	case ast.Memarg:
		buf.U32(imm.Align)
		buf.U32(imm.Offset)

	case ast.CallIndirect:
		buf.U32(imm.TypeIdx)
		buf.U32(imm.TableIdx)

	case ast.BrTable:
		buf.U32(uint32(len(imm.Labels)))
		for _, label := range imm.Labels {
			buf.U32(label)
		}
		buf.U32(imm.Default)

	case []wasm.ValType:
		// typed select
		buf.U32(uint32(len(imm)))
		for _, t := range imm {
			buf.Byte(byte(t))
		}

	case ast.Misc:
		buf.U32(imm.Sub)
		for _, arg := range imm.Args {
			buf.U32(arg)
		}
	}
}
