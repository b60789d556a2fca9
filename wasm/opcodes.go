package wasm

// opcodeNames maps single-byte opcodes to their text format mnemonics.
// Prefixed opcodes (0xFB-0xFE) are resolved through their own tables.
var opcodeNames = [256]string{
	OpUnreachable:        "unreachable",
	OpNop:                "nop",
	OpBlock:              "block",
	OpLoop:               "loop",
	OpIf:                 "if",
	OpElse:               "else",
	0x06:                 "try",
	0x07:                 "catch",
	0x08:                 "throw",
	0x09:                 "rethrow",
	0x0A:                 "throw_ref",
	OpEnd:                "end",
	OpBr:                 "br",
	OpBrIf:               "br_if",
	OpBrTable:            "br_table",
	OpReturn:             "return",
	OpCall:               "call",
	OpCallIndirect:       "call_indirect",
	OpReturnCall:         "return_call",
	OpReturnCallIndirect: "return_call_indirect",
	0x18:                 "delegate",
	0x19:                 "catch_all",
	OpDrop:               "drop",
	OpSelect:             "select",
	OpSelectType:         "select",
	OpLocalGet:           "local.get",
	OpLocalSet:           "local.set",
	OpLocalTee:           "local.tee",
	OpGlobalGet:          "global.get",
	OpGlobalSet:          "global.set",
	OpTableGet:           "table.get",
	OpTableSet:           "table.set",
	0x28:                 "i32.load",
	0x29:                 "i64.load",
	0x2A:                 "f32.load",
	0x2B:                 "f64.load",
	0x2C:                 "i32.load8_s",
	0x2D:                 "i32.load8_u",
	0x2E:                 "i32.load16_s",
	0x2F:                 "i32.load16_u",
	0x30:                 "i64.load8_s",
	0x31:                 "i64.load8_u",
	0x32:                 "i64.load16_s",
	0x33:                 "i64.load16_u",
	0x34:                 "i64.load32_s",
	0x35:                 "i64.load32_u",
	0x36:                 "i32.store",
	0x37:                 "i64.store",
	0x38:                 "f32.store",
	0x39:                 "f64.store",
	0x3A:                 "i32.store8",
	0x3B:                 "i32.store16",
	0x3C:                 "i64.store8",
	0x3D:                 "i64.store16",
	0x3E:                 "i64.store32",
	OpMemorySize:         "memory.size",
	OpMemoryGrow:         "memory.grow",
	OpI32Const:           "i32.const",
	OpI64Const:           "i64.const",
	OpF32Const:           "f32.const",
	OpF64Const:           "f64.const",
	OpI32Eqz:             "i32.eqz",
	0x46:                 "i32.eq",
	0x47:                 "i32.ne",
	0x48:                 "i32.lt_s",
	0x49:                 "i32.lt_u",
	0x4A:                 "i32.gt_s",
	0x4B:                 "i32.gt_u",
	0x4C:                 "i32.le_s",
	0x4D:                 "i32.le_u",
	0x4E:                 "i32.ge_s",
	0x4F:                 "i32.ge_u",
	0x50:                 "i64.eqz",
	0x51:                 "i64.eq",
	0x52:                 "i64.ne",
	0x53:                 "i64.lt_s",
	0x54:                 "i64.lt_u",
	0x55:                 "i64.gt_s",
	0x56:                 "i64.gt_u",
	0x57:                 "i64.le_s",
	0x58:                 "i64.le_u",
	0x59:                 "i64.ge_s",
	0x5A:                 "i64.ge_u",
	0x5B:                 "f32.eq",
	0x5C:                 "f32.ne",
	0x5D:                 "f32.lt",
	0x5E:                 "f32.gt",
	0x5F:                 "f32.le",
	0x60:                 "f32.ge",
	0x61:                 "f64.eq",
	0x62:                 "f64.ne",
	0x63:                 "f64.lt",
	0x64:                 "f64.gt",
	0x65:                 "f64.le",
	0x66:                 "f64.ge",
	0x67:                 "i32.clz",
	0x68:                 "i32.ctz",
	0x69:                 "i32.popcnt",
	OpI32Add:             "i32.add",
	OpI32Sub:             "i32.sub",
	OpI32Mul:             "i32.mul",
	0x6D:                 "i32.div_s",
	0x6E:                 "i32.div_u",
	0x6F:                 "i32.rem_s",
	0x70:                 "i32.rem_u",
	OpI32And:             "i32.and",
	OpI32Or:              "i32.or",
	OpI32Xor:             "i32.xor",
	0x74:                 "i32.shl",
	0x75:                 "i32.shr_s",
	0x76:                 "i32.shr_u",
	0x77:                 "i32.rotl",
	0x78:                 "i32.rotr",
	0x79:                 "i64.clz",
	0x7A:                 "i64.ctz",
	0x7B:                 "i64.popcnt",
	OpI64Add:             "i64.add",
	OpI64Sub:             "i64.sub",
	OpI64Mul:             "i64.mul",
	0x7F:                 "i64.div_s",
	0x80:                 "i64.div_u",
	0x81:                 "i64.rem_s",
	0x82:                 "i64.rem_u",
	OpI64And:             "i64.and",
	OpI64Or:              "i64.or",
	OpI64Xor:             "i64.xor",
	0x86:                 "i64.shl",
	0x87:                 "i64.shr_s",
	0x88:                 "i64.shr_u",
	0x89:                 "i64.rotl",
	0x8A:                 "i64.rotr",
	0x8B:                 "f32.abs",
	0x8C:                 "f32.neg",
	0x8D:                 "f32.ceil",
	0x8E:                 "f32.floor",
	0x8F:                 "f32.trunc",
	0x90:                 "f32.nearest",
	0x91:                 "f32.sqrt",
	0x92:                 "f32.add",
	0x93:                 "f32.sub",
	0x94:                 "f32.mul",
	0x95:                 "f32.div",
	0x96:                 "f32.min",
	0x97:                 "f32.max",
	0x98:                 "f32.copysign",
	0x99:                 "f64.abs",
	0x9A:                 "f64.neg",
	0x9B:                 "f64.ceil",
	0x9C:                 "f64.floor",
	0x9D:                 "f64.trunc",
	0x9E:                 "f64.nearest",
	0x9F:                 "f64.sqrt",
	0xA0:                 "f64.add",
	0xA1:                 "f64.sub",
	0xA2:                 "f64.mul",
	0xA3:                 "f64.div",
	0xA4:                 "f64.min",
	0xA5:                 "f64.max",
	0xA6:                 "f64.copysign",
	0xA7:                 "i32.wrap_i64",
	0xA8:                 "i32.trunc_f32_s",
	0xA9:                 "i32.trunc_f32_u",
	0xAA:                 "i32.trunc_f64_s",
	0xAB:                 "i32.trunc_f64_u",
	0xAC:                 "i64.extend_i32_s",
	0xAD:                 "i64.extend_i32_u",
	0xAE:                 "i64.trunc_f32_s",
	0xAF:                 "i64.trunc_f32_u",
	0xB0:                 "i64.trunc_f64_s",
	0xB1:                 "i64.trunc_f64_u",
	0xB2:                 "f32.convert_i32_s",
	0xB3:                 "f32.convert_i32_u",
	0xB4:                 "f32.convert_i64_s",
	0xB5:                 "f32.convert_i64_u",
	0xB6:                 "f32.demote_f64",
	0xB7:                 "f64.convert_i32_s",
	0xB8:                 "f64.convert_i32_u",
	0xB9:                 "f64.convert_i64_s",
	0xBA:                 "f64.convert_i64_u",
	0xBB:                 "f64.promote_f32",
	0xBC:                 "i32.reinterpret_f32",
	0xBD:                 "i64.reinterpret_f64",
	0xBE:                 "f32.reinterpret_i32",
	0xBF:                 "f64.reinterpret_i64",
	0xC0:                 "i32.extend8_s",
	0xC1:                 "i32.extend16_s",
	0xC2:                 "i32.extend32_s",
	0xC3:                 "i64.extend8_s",
	0xC4:                 "i64.extend32_s",
	OpRefNull:            "ref.null",
	OpRefIsNull:          "ref.is_null",
	OpRefFunc:            "ref.func",
	0xD3:                 "ref.eq",
	0xD4:                 "ref.as_non_null",
	0xD5:                 "br_on_null",
	0xD6:                 "br_on_non_null",
}

// naturalAlign maps the memory access opcodes to their natural alignment
// exponent. A memarg align below the natural value is printed explicitly.
var naturalAlign = map[byte]uint32{
	0x28: 2, 0x29: 3, 0x2A: 2, 0x2B: 3,
	0x2C: 0, 0x2D: 0, 0x2E: 1, 0x2F: 1,
	0x30: 0, 0x31: 0, 0x32: 1, 0x33: 1,
	0x34: 2, 0x35: 2,
	0x36: 2, 0x37: 3, 0x38: 2, 0x39: 3,
	0x3A: 0, 0x3B: 1, 0x3C: 0, 0x3D: 1, 0x3E: 2,
}

var miscNames = map[uint32]string{
	0:  "i32.trunc_sat_f32_s",
	1:  "i32.trunc_sat_f32_u",
	2:  "i32.trunc_sat_f64_s",
	3:  "i32.trunc_sat_f64_u",
	4:  "i64.trunc_sat_f32_s",
	5:  "i64.trunc_sat_f32_u",
	6:  "i64.trunc_sat_f64_s",
	7:  "i64.trunc_sat_f64_u",
	8:  "memory.init",
	9:  "data.drop",
	10: "memory.copy",
	11: "memory.fill",
	12: "table.init",
	13: "elem.drop",
	14: "table.copy",
	15: "table.grow",
	16: "table.size",
	17: "table.fill",
}

var gcNames = map[uint32]string{
	0:  "struct.new",
	1:  "struct.new_default",
	2:  "struct.get",
	3:  "struct.get_s",
	4:  "struct.get_u",
	5:  "struct.set",
	6:  "array.new",
	7:  "array.new_default",
	8:  "array.new_fixed",
	9:  "array.new_data",
	10: "array.new_elem",
	11: "array.get",
	12: "array.get_s",
	13: "array.get_u",
	14: "array.set",
	15: "array.len",
	16: "array.fill",
	17: "array.copy",
	18: "array.init_data",
	19: "array.init_elem",
	20: "ref.test",
	21: "ref.test null",
	22: "ref.cast",
	23: "ref.cast null",
	24: "br_on_cast",
	25: "br_on_cast_fail",
	26: "any.convert_extern",
	27: "extern.convert_any",
	28: "ref.i31",
	29: "i31.get_s",
	30: "i31.get_u",
}

// simdNames covers the vector opcodes the disassembler names directly;
// everything else is rendered by its numeric sub-opcode.
var simdNames = map[uint32]string{
	0:   "v128.load",
	1:   "v128.load8x8_s",
	2:   "v128.load8x8_u",
	3:   "v128.load16x4_s",
	4:   "v128.load16x4_u",
	5:   "v128.load32x2_s",
	6:   "v128.load32x2_u",
	7:   "v128.load8_splat",
	8:   "v128.load16_splat",
	9:   "v128.load32_splat",
	10:  "v128.load64_splat",
	11:  "v128.store",
	12:  "v128.const",
	13:  "i8x16.shuffle",
	14:  "i8x16.swizzle",
	15:  "i8x16.splat",
	16:  "i16x8.splat",
	17:  "i32x4.splat",
	18:  "i64x2.splat",
	19:  "f32x4.splat",
	20:  "f64x2.splat",
	21:  "i8x16.extract_lane_s",
	22:  "i8x16.extract_lane_u",
	23:  "i8x16.replace_lane",
	24:  "i16x8.extract_lane_s",
	25:  "i16x8.extract_lane_u",
	26:  "i16x8.replace_lane",
	27:  "i32x4.extract_lane",
	28:  "i32x4.replace_lane",
	29:  "i64x2.extract_lane",
	30:  "i64x2.replace_lane",
	31:  "f32x4.extract_lane",
	32:  "f32x4.replace_lane",
	33:  "f64x2.extract_lane",
	34:  "f64x2.replace_lane",
	77:  "v128.not",
	78:  "v128.and",
	80:  "v128.or",
	81:  "v128.xor",
	82:  "v128.bitselect",
	83:  "v128.any_true",
	84:  "v128.load8_lane",
	85:  "v128.load16_lane",
	86:  "v128.load32_lane",
	87:  "v128.load64_lane",
	88:  "v128.store8_lane",
	89:  "v128.store16_lane",
	90:  "v128.store32_lane",
	91:  "v128.store64_lane",
	92:  "v128.load32_zero",
	93:  "v128.load64_zero",
	110: "i8x16.add",
	113: "i8x16.sub",
	142: "i16x8.add",
	145: "i16x8.sub",
	149: "i16x8.mul",
	174: "i32x4.add",
	177: "i32x4.sub",
	181: "i32x4.mul",
	206: "i64x2.add",
	209: "i64x2.sub",
	213: "i64x2.mul",
	228: "f32x4.add",
	229: "f32x4.sub",
	230: "f32x4.mul",
	231: "f32x4.div",
	240: "f64x2.add",
	241: "f64x2.sub",
	242: "f64x2.mul",
	243: "f64x2.div",
}
