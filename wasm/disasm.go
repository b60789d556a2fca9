package wasm

import (
	"fmt"
	"io"
	"strconv"

	"github.com/wippyai/wasm-inspect/wasm/internal/binary"
)

// OperandKind says how an instruction operand should be rendered. Index
// kinds refer into a module index space and can be substituted with
// debug names; text operands are already formatted.
type OperandKind int

const (
	OperandText OperandKind = iota
	OperandFunc
	OperandType
	OperandGlobal
	OperandTable
	OperandMemory
	OperandLocal
	OperandLabel
	OperandElem
	OperandData
	OperandTag
)

// Operand is one rendered instruction operand.
type Operand struct {
	Text  string
	Index uint32
	Kind  OperandKind
}

// Instr is one decoded instruction with its absolute byte offset.
type Instr struct {
	Name     string
	Operands []Operand
	Offset   int
	Sub      uint32
	Opcode   byte
}

// OpensBlock reports whether the instruction starts a nested block.
func (i Instr) OpensBlock() bool {
	switch i.Opcode {
	case OpBlock, OpLoop, OpIf, 0x06: // try
		return true
	}
	return false
}

// Disassembler iterates over the instructions of a function body. base
// is the absolute offset of code within the module buffer.
type Disassembler struct {
	r *binary.Reader
}

// NewDisassembler creates a Disassembler over code.
func NewDisassembler(code []byte, base int) *Disassembler {
	return &Disassembler{r: binary.NewReaderAt(code, base)}
}

// Next decodes the next instruction. It returns io.EOF when the body is
// exhausted.
func (d *Disassembler) Next() (Instr, error) {
	if d.r.Len() == 0 {
		return Instr{}, io.EOF
	}
	offset := d.r.Position()
	op, err := d.r.ReadByte()
	if err != nil {
		return Instr{}, err
	}

	switch op {
	case OpPrefixMisc:
		return d.nextMisc(offset)
	case OpPrefixSIMD:
		return d.nextSIMD(offset)
	case OpPrefixGC:
		return d.nextGC(offset)
	case OpPrefixAtomic:
		return d.nextAtomic(offset)
	}

	in := Instr{Offset: offset, Opcode: op, Name: opcodeNames[op]}
	if in.Name == "" {
		return Instr{}, fmt.Errorf("wasm: unknown opcode 0x%02x at offset %d", op, offset)
	}

	switch op {
	case OpBlock, OpLoop, OpIf, 0x06:
		err = d.blockType(&in)
	case OpBr, OpBrIf, 0xD5, 0xD6, 0x09, 0x18: // rethrow and delegate take a label too
		err = d.indexOperand(&in, OperandLabel)
	case OpBrTable:
		var count uint32
		if count, err = d.r.ReadU32(); err == nil {
			for i := uint32(0); i <= count && err == nil; i++ {
				err = d.indexOperand(&in, OperandLabel)
			}
		}
	case OpCall, OpReturnCall, OpRefFunc:
		err = d.indexOperand(&in, OperandFunc)
	case OpCallIndirect, OpReturnCallIndirect:
		if err = d.indexOperand(&in, OperandType); err == nil {
			err = d.indexOperand(&in, OperandTable)
		}
	case 0x08, 0x07: // throw, catch
		err = d.indexOperand(&in, OperandTag)
	case OpLocalGet, OpLocalSet, OpLocalTee:
		err = d.indexOperand(&in, OperandLocal)
	case OpGlobalGet, OpGlobalSet:
		err = d.indexOperand(&in, OperandGlobal)
	case OpTableGet, OpTableSet:
		err = d.indexOperand(&in, OperandTable)
	case OpMemorySize, OpMemoryGrow:
		var idx uint32
		if idx, err = d.r.ReadU32(); err == nil && idx != 0 {
			in.Operands = append(in.Operands, Operand{Kind: OperandMemory, Index: idx})
		}
	case OpI32Const:
		var v int32
		if v, err = d.r.ReadS32(); err == nil {
			in.Operands = append(in.Operands, textOperand(strconv.FormatInt(int64(v), 10)))
		}
	case OpI64Const:
		var v int64
		if v, err = d.r.ReadS64(); err == nil {
			in.Operands = append(in.Operands, textOperand(strconv.FormatInt(v, 10)))
		}
	case OpF32Const:
		var v float32
		if v, err = d.r.ReadF32(); err == nil {
			in.Operands = append(in.Operands, textOperand(formatFloat(float64(v), 32)))
		}
	case OpF64Const:
		var v float64
		if v, err = d.r.ReadF64(); err == nil {
			in.Operands = append(in.Operands, textOperand(formatFloat(v, 64)))
		}
	case OpRefNull:
		var ht int64
		if ht, err = d.r.ReadS64(); err == nil {
			in.Operands = append(in.Operands, heapTypeOperand(ht))
		}
	case OpSelectType:
		var count uint32
		if count, err = d.r.ReadU32(); err == nil {
			for i := uint32(0); i < count && err == nil; i++ {
				var vt ValType
				if vt, err = readValType(d.r); err == nil {
					in.Operands = append(in.Operands, textOperand("(result "+vt.String()+")"))
				}
			}
		}
	default:
		if op >= 0x28 && op <= 0x3E {
			err = d.memarg(&in, naturalAlign[op])
		}
	}
	if err != nil {
		return Instr{}, err
	}
	return in, nil
}

func (d *Disassembler) nextMisc(offset int) (Instr, error) {
	sub, err := d.r.ReadU32()
	if err != nil {
		return Instr{}, err
	}
	name, ok := miscNames[sub]
	if !ok {
		return Instr{}, fmt.Errorf("wasm: unknown 0xFC opcode %d at offset %d", sub, offset)
	}
	in := Instr{Offset: offset, Opcode: OpPrefixMisc, Sub: sub, Name: name}

	switch sub {
	case MiscMemoryInit:
		if err = d.indexOperand(&in, OperandData); err == nil {
			err = d.memIdx(&in)
		}
	case MiscDataDrop:
		err = d.indexOperand(&in, OperandData)
	case MiscMemoryCopy:
		if err = d.memIdx(&in); err == nil {
			err = d.memIdx(&in)
		}
	case MiscMemoryFill:
		err = d.memIdx(&in)
	case MiscTableInit:
		if err = d.indexOperand(&in, OperandElem); err == nil {
			err = d.indexOperand(&in, OperandTable)
		}
	case MiscElemDrop:
		err = d.indexOperand(&in, OperandElem)
	case MiscTableCopy:
		if err = d.indexOperand(&in, OperandTable); err == nil {
			err = d.indexOperand(&in, OperandTable)
		}
	case MiscTableGrow, MiscTableSize, MiscTableFill:
		err = d.indexOperand(&in, OperandTable)
	}
	if err != nil {
		return Instr{}, err
	}
	return in, nil
}

func (d *Disassembler) nextSIMD(offset int) (Instr, error) {
	sub, err := d.r.ReadU32()
	if err != nil {
		return Instr{}, err
	}
	name, ok := simdNames[sub]
	if !ok {
		name = "v128.op" + strconv.FormatUint(uint64(sub), 10)
	}
	in := Instr{Offset: offset, Opcode: OpPrefixSIMD, Sub: sub, Name: name}

	switch {
	case sub <= 11 || sub == 92 || sub == 93:
		err = d.memarg(&in, 0)
	case sub == 12: // v128.const
		var bytes []byte
		if bytes, err = d.r.ReadBytes(16); err == nil {
			in.Operands = append(in.Operands, textOperand(formatV128(bytes)))
		}
	case sub == 13: // i8x16.shuffle
		var lanes []byte
		if lanes, err = d.r.ReadBytes(16); err == nil {
			for _, l := range lanes {
				in.Operands = append(in.Operands, textOperand(strconv.Itoa(int(l))))
			}
		}
	case sub >= 21 && sub <= 34: // lane extract/replace
		var lane byte
		if lane, err = d.r.ReadByte(); err == nil {
			in.Operands = append(in.Operands, textOperand(strconv.Itoa(int(lane))))
		}
	case sub >= 84 && sub <= 91: // load/store lane
		if err = d.memarg(&in, 0); err == nil {
			var lane byte
			if lane, err = d.r.ReadByte(); err == nil {
				in.Operands = append(in.Operands, textOperand(strconv.Itoa(int(lane))))
			}
		}
	}
	if err != nil {
		return Instr{}, err
	}
	return in, nil
}

func (d *Disassembler) nextGC(offset int) (Instr, error) {
	sub, err := d.r.ReadU32()
	if err != nil {
		return Instr{}, err
	}
	name, ok := gcNames[sub]
	if !ok {
		return Instr{}, fmt.Errorf("wasm: unknown 0xFB opcode %d at offset %d", sub, offset)
	}
	in := Instr{Offset: offset, Opcode: OpPrefixGC, Sub: sub, Name: name}

	switch sub {
	case 0, 1, 6, 7, 11, 12, 13, 14, 16: // typeidx only
		err = d.indexOperand(&in, OperandType)
	case 2, 3, 4, 5: // struct field access: typeidx, fieldidx
		if err = d.indexOperand(&in, OperandType); err == nil {
			var field uint32
			if field, err = d.r.ReadU32(); err == nil {
				in.Operands = append(in.Operands, textOperand(strconv.FormatUint(uint64(field), 10)))
			}
		}
	case 8: // array.new_fixed: typeidx, count
		if err = d.indexOperand(&in, OperandType); err == nil {
			var n uint32
			if n, err = d.r.ReadU32(); err == nil {
				in.Operands = append(in.Operands, textOperand(strconv.FormatUint(uint64(n), 10)))
			}
		}
	case 9, 18: // typeidx, dataidx
		if err = d.indexOperand(&in, OperandType); err == nil {
			err = d.indexOperand(&in, OperandData)
		}
	case 10, 19: // typeidx, elemidx
		if err = d.indexOperand(&in, OperandType); err == nil {
			err = d.indexOperand(&in, OperandElem)
		}
	case 17: // array.copy: two typeidx
		if err = d.indexOperand(&in, OperandType); err == nil {
			err = d.indexOperand(&in, OperandType)
		}
	case 20, 21, 22, 23: // ref.test and ref.cast: heaptype
		var ht int64
		if ht, err = d.r.ReadS64(); err == nil {
			in.Operands = append(in.Operands, heapTypeOperand(ht))
		}
	case 24, 25: // br_on_cast: flags, label, two heaptypes
		if _, err = d.r.ReadByte(); err == nil {
			if err = d.indexOperand(&in, OperandLabel); err == nil {
				for i := 0; i < 2 && err == nil; i++ {
					var ht int64
					if ht, err = d.r.ReadS64(); err == nil {
						in.Operands = append(in.Operands, heapTypeOperand(ht))
					}
				}
			}
		}
	}
	if err != nil {
		return Instr{}, err
	}
	return in, nil
}

func (d *Disassembler) nextAtomic(offset int) (Instr, error) {
	sub, err := d.r.ReadU32()
	if err != nil {
		return Instr{}, err
	}
	in := Instr{
		Offset: offset,
		Opcode: OpPrefixAtomic,
		Sub:    sub,
		Name:   "atomic.op" + strconv.FormatUint(uint64(sub), 10),
	}
	if sub == 3 { // atomic.fence
		in.Name = "atomic.fence"
		_, err = d.r.ReadByte()
	} else {
		err = d.memarg(&in, 0)
	}
	if err != nil {
		return Instr{}, err
	}
	return in, nil
}

func (d *Disassembler) blockType(in *Instr) error {
	bt, err := d.r.ReadS64()
	if err != nil {
		return err
	}
	switch {
	case bt == BlockTypeVoid:
	case bt >= 0:
		in.Operands = append(in.Operands, Operand{Kind: OperandType, Index: uint32(bt)})
	default:
		vt := ValType(byte(bt & 0x7F))
		if vt == ValRefNull || vt == ValRef {
			ht, err := d.r.ReadS64()
			if err != nil {
				return err
			}
			in.Operands = append(in.Operands, textOperand("(result "+refTypeString(vt, ht)+")"))
		} else {
			in.Operands = append(in.Operands, textOperand("(result "+vt.String()+")"))
		}
	}
	return nil
}

func (d *Disassembler) indexOperand(in *Instr, kind OperandKind) error {
	idx, err := d.r.ReadU32()
	if err != nil {
		return err
	}
	in.Operands = append(in.Operands, Operand{Kind: kind, Index: idx})
	return nil
}

func (d *Disassembler) memIdx(in *Instr) error {
	idx, err := d.r.ReadU32()
	if err != nil {
		return err
	}
	if idx != 0 {
		in.Operands = append(in.Operands, Operand{Kind: OperandMemory, Index: idx})
	}
	return nil
}

func (d *Disassembler) memarg(in *Instr, natural uint32) error {
	align, err := d.r.ReadU32()
	if err != nil {
		return err
	}
	if align&0x40 != 0 { // multi-memory: explicit memory index
		align &^= 0x40
		idx, err := d.r.ReadU32()
		if err != nil {
			return err
		}
		in.Operands = append(in.Operands, Operand{Kind: OperandMemory, Index: idx})
	}
	offset, err := d.r.ReadU64()
	if err != nil {
		return err
	}
	if offset != 0 {
		in.Operands = append(in.Operands, textOperand("offset="+strconv.FormatUint(offset, 10)))
	}
	if align != natural {
		in.Operands = append(in.Operands, textOperand("align="+strconv.FormatUint(1<<align, 10)))
	}
	return nil
}

func textOperand(s string) Operand {
	return Operand{Kind: OperandText, Text: s}
}

func heapTypeOperand(ht int64) Operand {
	if ht >= 0 {
		return Operand{Kind: OperandType, Index: uint32(ht)}
	}
	return textOperand(heapTypeString(ht))
}

func heapTypeString(ht int64) string {
	switch byte(ht & 0x7F) {
	case byte(ValFuncRef):
		return "func"
	case byte(ValExtern):
		return "extern"
	case 0x6E:
		return "any"
	case 0x6D:
		return "eq"
	case 0x6C:
		return "i31"
	case 0x6B:
		return "struct"
	case 0x6A:
		return "array"
	case 0x71:
		return "none"
	case 0x72:
		return "noextern"
	case 0x73:
		return "nofunc"
	case 0x69:
		return "exn"
	default:
		return strconv.FormatInt(ht, 10)
	}
}

func refTypeString(vt ValType, ht int64) string {
	inner := heapTypeString(ht)
	if ht >= 0 {
		inner = strconv.FormatInt(ht, 10)
	}
	if vt == ValRefNull {
		return "(ref null " + inner + ")"
	}
	return "(ref " + inner + ")"
}

func formatFloat(v float64, bits int) string {
	s := strconv.FormatFloat(v, 'g', -1, bits)
	// The text format spells infinities and NaN differently.
	switch s {
	case "+Inf":
		return "inf"
	case "-Inf":
		return "-inf"
	case "NaN":
		return "nan"
	}
	return s
}

func formatV128(b []byte) string {
	lo := uint64(0)
	hi := uint64(0)
	for i := 0; i < 8; i++ {
		lo |= uint64(b[i]) << (8 * i)
		hi |= uint64(b[8+i]) << (8 * i)
	}
	return fmt.Sprintf("i64x2 0x%016x 0x%016x", lo, hi)
}
