package encoder

import (
	"encoding/binary"
	"math"
)

// Buffer accumulates instruction bytes. Section framing is handled by
// the binary module encoder; this only needs opcode and immediate forms.
type Buffer struct {
	Bytes []byte
}

func (b *Buffer) Byte(v byte) {
	b.Bytes = append(b.Bytes, v)
}

// U32 writes unsigned LEB128 encoding.
func (b *Buffer) U32(v uint32) {
	for {
		byt := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			byt |= 0x80
		}
		b.Byte(byt)
		if v == 0 {
			break
		}
	}
}

// I64 writes signed LEB128 encoding. Signed 32-bit and 33-bit values
// share the same encoding widened to int64.
func (b *Buffer) I64(v int64) {
	for {
		byt := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && byt&0x40 == 0) || (v == -1 && byt&0x40 != 0) {
			b.Byte(byt)
			return
		}
		b.Byte(byt | 0x80)
	}
}

func (b *Buffer) F32(v float32) {
	b.Bytes = binary.LittleEndian.AppendUint32(b.Bytes, math.Float32bits(v))
}

func (b *Buffer) F64(v float64) {
	b.Bytes = binary.LittleEndian.AppendUint64(b.Bytes, math.Float64bits(v))
}
