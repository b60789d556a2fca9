package parser

import (
	"math/bits"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-inspect/wasm"
	"github.com/wippyai/wasm-inspect/wat/internal/ast"
	"github.com/wippyai/wasm-inspect/wat/internal/token"
)

// bodyCtx tracks the label stack and local names while one instruction
// sequence is parsed.
type bodyCtx struct {
	p      *Parser
	locals map[string]uint32
	labels []string
}

// parseBody parses an instruction sequence in plain, folded, or mixed
// form. It is used for function bodies and for constant expressions,
// where locals is nil.
func (p *Parser) parseBody(nodes []*node, locals map[string]uint32) ([]ast.Instr, error) {
	c := &bodyCtx{p: p, locals: locals}
	var out []ast.Instr
	if err := c.seq(nodes, &out); err != nil {
		return nil, err
	}
	if len(c.labels) > 0 {
		return nil, errIndex("label", uint32(len(c.labels)))
	}
	return out, nil
}

func (c *bodyCtx) seq(nodes []*node, out *[]ast.Instr) error {
	for i := 0; i < len(nodes); {
		n := nodes[i]
		if n.isList() {
			i++
			if err := c.folded(n, out); err != nil {
				return err
			}
			continue
		}
		if err := c.plain(nodes, &i, out); err != nil {
			return err
		}
	}
	return nil
}

// plain parses one instruction in linear form, consuming its immediates
// from the following nodes.
func (c *bodyCtx) plain(nodes []*node, i *int, out *[]ast.Instr) error {
	m := nodes[*i]
	name := m.tok.Value
	*i++

	switch name {
	case "block", "loop", "if":
		op, _ := wasm.OpcodeByName(name)
		label := c.takeLabel(nodes, i)
		bt, err := c.blockType(nodes, i)
		if err != nil {
			return err
		}
		c.labels = append(c.labels, label)
		*out = append(*out, ast.Instr{Opcode: op, Imm: bt})
		return nil
	case "else":
		c.skipLabel(nodes, i)
		*out = append(*out, ast.Instr{Opcode: wasm.OpElse})
		return nil
	case "end":
		if len(c.labels) == 0 {
			return m.errf("end without open block")
		}
		c.labels = c.labels[:len(c.labels)-1]
		c.skipLabel(nodes, i)
		*out = append(*out, ast.Instr{Opcode: wasm.OpEnd})
		return nil
	}

	in, err := c.instr(m, nodes, i)
	if err != nil {
		return err
	}
	*out = append(*out, in)
	return nil
}

// folded parses one parenthesized instruction, emitting its operand
// subexpressions before the instruction itself.
func (c *bodyCtx) folded(n *node, out *[]ast.Instr) error {
	if len(n.items) == 0 || n.items[0].isList() {
		return n.errf("expected instruction")
	}
	m := n.items[0]
	name := m.tok.Value

	switch name {
	case "block", "loop":
		op, _ := wasm.OpcodeByName(name)
		i := 1
		label := c.takeLabel(n.items, &i)
		bt, err := c.blockType(n.items, &i)
		if err != nil {
			return err
		}
		c.labels = append(c.labels, label)
		*out = append(*out, ast.Instr{Opcode: op, Imm: bt})
		if err := c.seq(n.items[i:], out); err != nil {
			return err
		}
		c.labels = c.labels[:len(c.labels)-1]
		*out = append(*out, ast.Instr{Opcode: wasm.OpEnd})
		return nil

	case "if":
		i := 1
		label := c.takeLabel(n.items, &i)
		bt, err := c.blockType(n.items, &i)
		if err != nil {
			return err
		}
		// condition subexpressions precede the then arm
		for i < len(n.items) && n.items[i].isList() &&
			n.items[i].keyword() != "then" && n.items[i].keyword() != "else" {
			if err := c.folded(n.items[i], out); err != nil {
				return err
			}
			i++
		}
		c.labels = append(c.labels, label)
		*out = append(*out, ast.Instr{Opcode: wasm.OpIf, Imm: bt})
		if i >= len(n.items) || n.items[i].keyword() != "then" {
			return n.errf("if requires a then arm")
		}
		if err := c.seq(n.items[i].items[1:], out); err != nil {
			return err
		}
		i++
		if i < len(n.items) {
			if n.items[i].keyword() != "else" {
				return n.items[i].errf("expected else arm")
			}
			if arm := n.items[i].items[1:]; len(arm) > 0 {
				*out = append(*out, ast.Instr{Opcode: wasm.OpElse})
				if err := c.seq(arm, out); err != nil {
					return err
				}
			}
			i++
		}
		if i < len(n.items) {
			return n.items[i].errf("unexpected node after else arm")
		}
		c.labels = c.labels[:len(c.labels)-1]
		*out = append(*out, ast.Instr{Opcode: wasm.OpEnd})
		return nil

	case "then", "else":
		return n.errf("%s outside of if", name)
	}

	i := 1
	in, err := c.instr(m, n.items, &i)
	if err != nil {
		return err
	}
	for _, operand := range n.items[i:] {
		if !operand.isList() {
			return operand.errf("expected folded operand")
		}
		if err := c.folded(operand, out); err != nil {
			return err
		}
	}
	*out = append(*out, in)
	return nil
}

// instr builds one non-control instruction, consuming immediates at *i.
func (c *bodyCtx) instr(m *node, nodes []*node, i *int) (ast.Instr, error) {
	name := m.tok.Value

	if sub, ok := wasm.MiscOpByName(name); ok {
		return c.miscInstr(m, name, sub, nodes, i)
	}

	op, ok := wasm.OpcodeByName(name)
	if !ok {
		return ast.Instr{}, m.errf("unknown instruction %q", name)
	}

	switch name {
	case "br", "br_if":
		depth, err := c.labelIdx(nodes, i)
		if err != nil {
			return ast.Instr{}, err
		}
		return ast.Instr{Opcode: op, Imm: depth}, nil

	case "br_table":
		var targets []uint32
		for *i < len(nodes) && !nodes[*i].isList() && isIdxAtom(nodes[*i]) {
			depth, err := c.labelIdx(nodes, i)
			if err != nil {
				return ast.Instr{}, err
			}
			targets = append(targets, depth)
		}
		if len(targets) == 0 {
			return ast.Instr{}, m.errf("br_table requires at least a default label")
		}
		imm := ast.BrTable{Labels: targets[:len(targets)-1], Default: targets[len(targets)-1]}
		return ast.Instr{Opcode: op, Imm: imm}, nil

	case "call", "return_call", "ref.func":
		idx, err := c.spaceIdx(nodes, i, c.p.funcs, "func")
		if err != nil {
			return ast.Instr{}, err
		}
		return ast.Instr{Opcode: op, Imm: idx}, nil

	case "call_indirect", "return_call_indirect":
		tableIdx := uint32(0)
		if *i < len(nodes) && !nodes[*i].isList() && isIdxAtom(nodes[*i]) {
			idx, err := c.p.resolveIdx(nodes[*i], c.p.tables, "table")
			if err != nil {
				return ast.Instr{}, err
			}
			tableIdx = idx
			*i++
		}
		sub := nodes[*i:]
		before := len(sub)
		typeIdx, _, _, err := c.p.parseTypeUse(&sub)
		if err != nil {
			return ast.Instr{}, err
		}
		*i += before - len(sub)
		return ast.Instr{Opcode: op, Imm: ast.CallIndirect{TypeIdx: typeIdx, TableIdx: tableIdx}}, nil

	case "local.get", "local.set", "local.tee":
		idx, err := c.spaceIdx(nodes, i, c.locals, "local")
		if err != nil {
			return ast.Instr{}, err
		}
		return ast.Instr{Opcode: op, Imm: idx}, nil

	case "global.get", "global.set":
		idx, err := c.spaceIdx(nodes, i, c.p.globals, "global")
		if err != nil {
			return ast.Instr{}, err
		}
		return ast.Instr{Opcode: op, Imm: idx}, nil

	case "table.get", "table.set":
		idx := uint32(0)
		if *i < len(nodes) && !nodes[*i].isList() && isIdxAtom(nodes[*i]) {
			v, err := c.p.resolveIdx(nodes[*i], c.p.tables, "table")
			if err != nil {
				return ast.Instr{}, err
			}
			idx = v
			*i++
		}
		return ast.Instr{Opcode: op, Imm: idx}, nil

	case "memory.size", "memory.grow":
		return ast.Instr{Opcode: op, Imm: byte(0)}, nil

	case "ref.null":
		if *i >= len(nodes) || nodes[*i].isList() {
			return ast.Instr{}, m.errf("ref.null requires a heap type")
		}
		var heap byte
		switch nodes[*i].tok.Value {
		case "func", "funcref":
			heap = byte(wasm.ValFuncRef)
		case "extern", "externref":
			heap = byte(wasm.ValExtern)
		default:
			return ast.Instr{}, nodes[*i].errf("unknown heap type %q", nodes[*i].tok.Value)
		}
		*i++
		return ast.Instr{Opcode: op, Imm: heap}, nil

	case "select":
		if *i < len(nodes) && nodes[*i].isList() && nodes[*i].keyword() == "result" {
			var types []wasm.ValType
			for _, item := range nodes[*i].items[1:] {
				vt, err := parseValType(item)
				if err != nil {
					return ast.Instr{}, err
				}
				types = append(types, vt)
			}
			*i++
			return ast.Instr{Opcode: wasm.OpSelectType, Imm: types}, nil
		}
		return ast.Instr{Opcode: wasm.OpSelect}, nil

	case "i32.const":
		t, err := c.numberAtom(m, nodes, i)
		if err != nil {
			return ast.Instr{}, err
		}
		v, err := parseI32Tok(t)
		if err != nil {
			return ast.Instr{}, err
		}
		return ast.Instr{Opcode: op, Imm: v}, nil

	case "i64.const":
		t, err := c.numberAtom(m, nodes, i)
		if err != nil {
			return ast.Instr{}, err
		}
		v, err := parseI64Tok(t)
		if err != nil {
			return ast.Instr{}, err
		}
		return ast.Instr{Opcode: op, Imm: v}, nil

	case "f32.const":
		t, err := c.numberAtom(m, nodes, i)
		if err != nil {
			return ast.Instr{}, err
		}
		v, err := parseF32Tok(t)
		if err != nil {
			return ast.Instr{}, err
		}
		return ast.Instr{Opcode: op, Imm: v}, nil

	case "f64.const":
		t, err := c.numberAtom(m, nodes, i)
		if err != nil {
			return ast.Instr{}, err
		}
		v, err := parseF64Tok(t)
		if err != nil {
			return ast.Instr{}, err
		}
		return ast.Instr{Opcode: op, Imm: v}, nil
	}

	if natural, ok := wasm.NaturalAlign(op); ok {
		ma, err := c.memarg(nodes, i, natural)
		if err != nil {
			return ast.Instr{}, err
		}
		return ast.Instr{Opcode: op, Imm: ma}, nil
	}

	return ast.Instr{Opcode: op}, nil
}

func (c *bodyCtx) miscInstr(m *node, name string, sub uint32, nodes []*node, i *int) (ast.Instr, error) {
	misc := ast.Misc{Sub: sub}

	takeIdx := func(space map[string]uint32, what string) (uint32, error) {
		if *i >= len(nodes) || nodes[*i].isList() || !isIdxAtom(nodes[*i]) {
			return 0, m.errf("%s requires a %s index", name, what)
		}
		idx, err := c.p.resolveIdx(nodes[*i], space, what)
		if err != nil {
			return 0, err
		}
		*i++
		return idx, nil
	}
	optionalIdx := func(space map[string]uint32, what string) (uint32, bool, error) {
		if *i >= len(nodes) || nodes[*i].isList() || !isIdxAtom(nodes[*i]) {
			return 0, false, nil
		}
		idx, err := c.p.resolveIdx(nodes[*i], space, what)
		if err != nil {
			return 0, false, err
		}
		*i++
		return idx, true, nil
	}

	switch name {
	case "memory.init":
		idx, err := takeIdx(c.p.datas, "data")
		if err != nil {
			return ast.Instr{}, err
		}
		misc.Args = []uint32{idx, 0}
	case "data.drop":
		idx, err := takeIdx(c.p.datas, "data")
		if err != nil {
			return ast.Instr{}, err
		}
		misc.Args = []uint32{idx}
	case "memory.copy":
		misc.Args = []uint32{0, 0}
	case "memory.fill":
		misc.Args = []uint32{0}
	case "table.init":
		// two indices mean the table index comes first in the text,
		// while the encoding puts the segment index first
		twoIdx := *i+1 < len(nodes) &&
			!nodes[*i].isList() && isIdxAtom(nodes[*i]) &&
			!nodes[*i+1].isList() && isIdxAtom(nodes[*i+1])
		if twoIdx {
			tbl, err := takeIdx(c.p.tables, "table")
			if err != nil {
				return ast.Instr{}, err
			}
			seg, err := takeIdx(c.p.elems, "elem")
			if err != nil {
				return ast.Instr{}, err
			}
			misc.Args = []uint32{seg, tbl}
		} else {
			seg, err := takeIdx(c.p.elems, "elem")
			if err != nil {
				return ast.Instr{}, err
			}
			misc.Args = []uint32{seg, 0}
		}
	case "elem.drop":
		idx, err := takeIdx(c.p.elems, "elem")
		if err != nil {
			return ast.Instr{}, err
		}
		misc.Args = []uint32{idx}
	case "table.copy":
		dst, ok, err := optionalIdx(c.p.tables, "table")
		if err != nil {
			return ast.Instr{}, err
		}
		if !ok {
			misc.Args = []uint32{0, 0}
			break
		}
		src, err := takeIdx(c.p.tables, "table")
		if err != nil {
			return ast.Instr{}, err
		}
		misc.Args = []uint32{dst, src}
	case "table.grow", "table.size", "table.fill":
		idx, _, err := optionalIdx(c.p.tables, "table")
		if err != nil {
			return ast.Instr{}, err
		}
		misc.Args = []uint32{idx}
	default:
		// saturating truncations carry no immediates
	}

	return ast.Instr{Opcode: wasm.OpPrefixMisc, Imm: misc}, nil
}

// blockType reads an optional (type idx) or (result ...) annotation.
// Multi-value results are registered as a function type.
func (c *bodyCtx) blockType(nodes []*node, i *int) (ast.BlockType, error) {
	bt := ast.BlockType{TypeIdx: -1, Simple: 0x40}

	if *i < len(nodes) && nodes[*i].isList() && nodes[*i].keyword() == "type" {
		t := nodes[*i]
		if len(t.items) != 2 {
			return bt, t.errf("malformed type use")
		}
		idx, err := c.p.resolveIdx(t.items[1], c.p.types, "type")
		if err != nil {
			return bt, err
		}
		*i++
		return ast.BlockType{TypeIdx: int64(idx)}, nil
	}

	var results []wasm.ValType
	for *i < len(nodes) && nodes[*i].isList() && nodes[*i].keyword() == "result" {
		for _, item := range nodes[*i].items[1:] {
			vt, err := parseValType(item)
			if err != nil {
				return bt, err
			}
			results = append(results, vt)
		}
		*i++
	}

	switch len(results) {
	case 0:
		return bt, nil
	case 1:
		return ast.BlockType{TypeIdx: -1, Simple: byte(results[0])}, nil
	default:
		idx := c.p.findOrAddType(wasm.FuncType{Results: results})
		return ast.BlockType{TypeIdx: int64(idx)}, nil
	}
}

func (c *bodyCtx) takeLabel(nodes []*node, i *int) string {
	if *i < len(nodes) && !nodes[*i].isList() && isName(nodes[*i].tok.Value) {
		label := nodes[*i].tok.Value
		*i++
		return label
	}
	return ""
}

// skipLabel drops the optional repeated label after end and else.
func (c *bodyCtx) skipLabel(nodes []*node, i *int) {
	if *i < len(nodes) && !nodes[*i].isList() && isName(nodes[*i].tok.Value) {
		*i++
	}
}

// labelIdx resolves a branch target, either a relative depth or a
// $label bound by an enclosing block.
func (c *bodyCtx) labelIdx(nodes []*node, i *int) (uint32, error) {
	if *i >= len(nodes) || nodes[*i].isList() {
		return 0, errIndex("label", 0)
	}
	t := nodes[*i].tok
	if isName(t.Value) {
		for d := len(c.labels) - 1; d >= 0; d-- {
			if c.labels[d] == t.Value {
				*i++
				return uint32(len(c.labels) - 1 - d), nil
			}
		}
		return 0, nodes[*i].errf("unknown label %s", t.Value)
	}
	if t.Type != token.Number {
		return 0, errIndex("label", 0)
	}
	idx, err := parseU32Tok(t)
	if err != nil {
		return 0, err
	}
	*i++
	return idx, nil
}

func (c *bodyCtx) spaceIdx(nodes []*node, i *int, space map[string]uint32, what string) (uint32, error) {
	if *i >= len(nodes) || nodes[*i].isList() {
		return 0, errIndex(what, 0)
	}
	idx, err := c.p.resolveIdx(nodes[*i], space, what)
	if err != nil {
		return 0, err
	}
	*i++
	return idx, nil
}

func (c *bodyCtx) numberAtom(m *node, nodes []*node, i *int) (*token.Token, error) {
	if *i >= len(nodes) || nodes[*i].isList() || nodes[*i].tok.Type != token.Number {
		if *i < len(nodes) && !nodes[*i].isList() && nodes[*i].tok.Type == token.Ident {
			// inf and nan spellings tokenize as identifiers
			t := nodes[*i].tok
			*i++
			return t, nil
		}
		return nil, m.errf("%s requires a literal", m.tok.Value)
	}
	t := nodes[*i].tok
	*i++
	return t, nil
}

// memarg reads the optional offset= and align= immediates. The text
// align is a byte count, encoded as its exponent.
func (c *bodyCtx) memarg(nodes []*node, i *int, natural uint32) (ast.Memarg, error) {
	ma := ast.Memarg{Align: natural}

	for *i < len(nodes) && !nodes[*i].isList() {
		v := nodes[*i].tok.Value
		switch {
		case strings.HasPrefix(v, "offset="):
			off, err := strconv.ParseUint(strings.ReplaceAll(v[len("offset="):], "_", ""), 0, 32)
			if err != nil {
				return ma, nodes[*i].errf("invalid offset %q", v)
			}
			ma.Offset = uint32(off)
		case strings.HasPrefix(v, "align="):
			align, err := strconv.ParseUint(strings.ReplaceAll(v[len("align="):], "_", ""), 0, 32)
			if err != nil || align == 0 || align&(align-1) != 0 {
				return ma, nodes[*i].errf("alignment must be a power of two")
			}
			ma.Align = uint32(bits.TrailingZeros64(align))
		default:
			return ma, nil
		}
		*i++
	}
	return ma, nil
}

// isIdxAtom reports whether an atom can stand for an index.
func isIdxAtom(n *node) bool {
	return n.tok.Type == token.Number || isName(n.tok.Value)
}
