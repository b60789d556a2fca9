package printer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-inspect/wasm"
)

// Print renders the module in text format, feeding the sink one line at
// a time. Each line is announced with its binary offset so range-scoped
// sinks can filter; lines with no binary counterpart (closing
// parentheses) are announced with a negative offset. If the sink also
// implements Marker it receives semantic highlighting markers around
// names, keywords, literals, types and comments.
func Print(data []byte, sink Sink) error {
	nm, err := scanNames(data)
	if err != nil {
		return err
	}
	r := &renderer{sink: sink, names: nm}
	r.marker, _ = sink.(Marker)
	return r.run(data)
}

// names holds debug names per index space, merged from every "name"
// custom section of the module.
type names struct {
	funcs    map[uint32]string
	types    map[uint32]string
	tables   map[uint32]string
	memories map[uint32]string
	globals  map[uint32]string
	elems    map[uint32]string
	datas    map[uint32]string
	tags     map[uint32]string
	module   string
}

// scanNames makes a quick pass over the module for its name sections,
// skipping the code section by size.
func scanNames(data []byte) (*names, error) {
	nm := &names{
		funcs:    map[uint32]string{},
		types:    map[uint32]string{},
		tables:   map[uint32]string{},
		memories: map[uint32]string{},
		globals:  map[uint32]string{},
		elems:    map[uint32]string{},
		datas:    map[uint32]string{},
		tags:     map[uint32]string{},
	}
	s := wasm.NewStream(data)
	for {
		p, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nm, nil
			}
			return nil, err
		}
		switch p := p.(type) {
		case wasm.CodeSectionPayload:
			if err := s.SkipCode(); err != nil {
				return nil, err
			}
		case wasm.CustomSectionPayload:
			if p.Name != wasm.NameSectionName {
				continue
			}
			ns, err := wasm.DecodeNameSection(p.Data, p.DataOffset)
			if err != nil {
				return nil, err
			}
			if ns.HasModule {
				nm.module = ns.Module
			}
			fillNameMap(nm.funcs, ns.Funcs)
			fillNameMap(nm.types, ns.Types)
			fillNameMap(nm.tables, ns.Tables)
			fillNameMap(nm.memories, ns.Memories)
			fillNameMap(nm.globals, ns.Globals)
			fillNameMap(nm.elems, ns.Elems)
			fillNameMap(nm.datas, ns.Datas)
			fillNameMap(nm.tags, ns.Tags)
		case wasm.EndPayload:
			return nm, nil
		}
	}
}

func fillNameMap(m map[uint32]string, entries []wasm.NameEntry) {
	for _, e := range entries {
		m[e.Index] = e.Name
	}
}

type renderer struct {
	sink   Sink
	marker Marker
	names  *names

	// Module shape gathered while walking, needed by later sections.
	types     []*wasm.FuncType
	funcTypes []uint32

	typeIdx   int
	funcIdx   int
	tableIdx  int
	memoryIdx int
	globalIdx int
	tagIdx    int
	elemIdx   int
	dataIdx   int
	bodyIdx   int

	indent int
}

func (r *renderer) run(data []byte) error {
	s := wasm.NewStream(data)
	for {
		p, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		switch p := p.(type) {
		case wasm.HeaderPayload:
			r.header(p)
		case wasm.TypeSectionPayload:
			r.typeSection(p)
		case wasm.ImportSectionPayload:
			r.importSection(p)
		case wasm.FunctionSectionPayload:
			for _, e := range p.Entries {
				r.funcTypes = append(r.funcTypes, e.TypeIdx)
			}
		case wasm.TableSectionPayload:
			r.tableSection(p)
		case wasm.MemorySectionPayload:
			r.memorySection(p)
		case wasm.TagSectionPayload:
			r.tagSection(p)
		case wasm.GlobalSectionPayload:
			r.globalSection(p)
		case wasm.ExportSectionPayload:
			r.exportSection(p)
		case wasm.StartSectionPayload:
			r.startSection(p)
		case wasm.ElementSectionPayload:
			r.elementSection(p)
		case wasm.CodeEntryPayload:
			if err := r.codeEntry(p); err != nil {
				return err
			}
		case wasm.DataSectionPayload:
			r.dataSection(p)
		case wasm.EndPayload:
			r.indent = 0
			r.startLine(-1)
			r.text(")")
			r.endLine()
			return nil
		}
	}
}

// Line plumbing. Every line is opened with its binary offset and closed
// with a newline; indentation is written as part of the line text.

func (r *renderer) startLine(offset int) {
	r.sink.StartLine(offset)
	r.sink.Write(strings.Repeat("  ", r.indent))
}

func (r *renderer) endLine() {
	r.sink.Newline()
}

func (r *renderer) text(s string) {
	r.sink.Write(s)
}

func (r *renderer) tagged(kind func(Marker), s string) {
	if r.marker != nil {
		kind(r.marker)
	}
	r.sink.Write(s)
	if r.marker != nil {
		r.marker.ResetColor()
	}
}

func (r *renderer) keyword(s string) { r.tagged(Marker.StartKeyword, s) }
func (r *renderer) name(s string)    { r.tagged(Marker.StartName, s) }
func (r *renderer) literal(s string) { r.tagged(Marker.StartLiteral, s) }
func (r *renderer) typ(s string)     { r.tagged(Marker.StartType, s) }
func (r *renderer) comment(s string) { r.tagged(Marker.StartComment, s) }

// idOrIndex writes " $name" when a valid debug name exists for idx in
// m, then always writes the " (;idx;)" index comment so numeric
// references stay resolvable.
func (r *renderer) idAndIndex(m map[uint32]string, idx int) {
	if id, ok := validID(m, uint32(idx)); ok {
		r.text(" ")
		r.name(id)
	}
	r.text(" ")
	r.comment("(;" + strconv.Itoa(idx) + ";)")
}

// ref writes a space-separated reference: the debug name when one
// exists, the numeric index otherwise.
func (r *renderer) ref(m map[uint32]string, idx uint32) {
	if id, ok := validID(m, idx); ok {
		r.name(id)
		return
	}
	r.literal(strconv.FormatUint(uint64(idx), 10))
}

func validID(m map[uint32]string, idx uint32) (string, bool) {
	s, ok := m[idx]
	if !ok || s == "" {
		return "", false
	}
	for _, c := range s {
		if !isIDChar(c) {
			return "", false
		}
	}
	return "$" + s, true
}

func isIDChar(c rune) bool {
	switch {
	case c >= '0' && c <= '9', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		return true
	}
	return strings.ContainsRune("!#$%&'*+-./:<=>?@\\^_`|~", c)
}

func (r *renderer) header(p wasm.HeaderPayload) {
	r.startLine(p.Range.Start)
	r.text("(")
	r.keyword("module")
	if r.names.module != "" {
		if id, ok := validID(map[uint32]string{0: r.names.module}, 0); ok {
			r.text(" ")
			r.name(id)
		}
	}
	r.endLine()
	r.indent = 1
}

func (r *renderer) typeSection(p wasm.TypeSectionPayload) {
	for _, e := range p.Entries {
		r.types = append(r.types, e.Type)
		r.startLine(e.Offset)
		r.text("(")
		r.keyword("type")
		r.idAndIndex(r.names.types, r.typeIdx)
		if e.Type != nil {
			r.text(" (")
			r.keyword("func")
			r.funcSig(e.Type)
			r.text(")")
		}
		r.text(")")
		r.endLine()
		r.typeIdx++
	}
}

func (r *renderer) funcSig(ft *wasm.FuncType) {
	if len(ft.Params) > 0 {
		r.text(" (")
		r.keyword("param")
		for _, p := range ft.Params {
			r.text(" ")
			r.typ(p.String())
		}
		r.text(")")
	}
	if len(ft.Results) > 0 {
		r.text(" (")
		r.keyword("result")
		for _, res := range ft.Results {
			r.text(" ")
			r.typ(res.String())
		}
		r.text(")")
	}
}

func (r *renderer) importSection(p wasm.ImportSectionPayload) {
	for _, e := range p.Entries {
		r.startLine(e.Offset)
		r.text("(")
		r.keyword("import")
		r.text(" ")
		r.literal(quote(e.Import.Module))
		r.text(" ")
		r.literal(quote(e.Import.Name))
		r.text(" (")
		switch e.Import.Desc.Kind {
		case wasm.KindFunc:
			r.keyword("func")
			r.idAndIndex(r.names.funcs, r.funcIdx)
			r.typeUse(e.Import.Desc.TypeIdx)
			r.funcIdx++
		case wasm.KindTable:
			r.keyword("table")
			r.idAndIndex(r.names.tables, r.tableIdx)
			r.tableType(e.Import.Desc.Table)
			r.tableIdx++
		case wasm.KindMemory:
			r.keyword("memory")
			r.idAndIndex(r.names.memories, r.memoryIdx)
			r.limits(e.Import.Desc.Memory.Limits)
			r.memoryIdx++
		case wasm.KindGlobal:
			r.keyword("global")
			r.idAndIndex(r.names.globals, r.globalIdx)
			r.globalType(e.Import.Desc.Global)
			r.globalIdx++
		case wasm.KindTag:
			r.keyword("tag")
			r.idAndIndex(r.names.tags, r.tagIdx)
			r.typeUse(e.Import.Desc.Tag.TypeIdx)
			r.tagIdx++
		}
		r.text("))")
		r.endLine()
	}
}

func (r *renderer) typeUse(typeIdx uint32) {
	r.text(" (")
	r.keyword("type")
	r.text(" ")
	r.ref(r.names.types, typeIdx)
	r.text(")")
}

func (r *renderer) tableType(t *wasm.TableType) {
	r.limits(t.Limits)
	r.text(" ")
	switch wasm.ValType(t.ElemType) {
	case wasm.ValFuncRef:
		r.typ("funcref")
	case wasm.ValExtern:
		r.typ("externref")
	default:
		r.typ(wasm.ValType(t.ElemType).String())
	}
}

func (r *renderer) limits(l wasm.Limits) {
	if l.Memory64 {
		r.text(" ")
		r.typ("i64")
	}
	r.text(" ")
	r.literal(strconv.FormatUint(l.Min, 10))
	if l.Max != nil {
		r.text(" ")
		r.literal(strconv.FormatUint(*l.Max, 10))
	}
	if l.Shared {
		r.text(" ")
		r.keyword("shared")
	}
}

func (r *renderer) globalType(g *wasm.GlobalType) {
	r.text(" ")
	if g.Mutable {
		r.text("(")
		r.keyword("mut")
		r.text(" ")
		r.typ(g.ValType.String())
		r.text(")")
	} else {
		r.typ(g.ValType.String())
	}
}

func (r *renderer) tableSection(p wasm.TableSectionPayload) {
	for _, e := range p.Entries {
		r.startLine(e.Offset)
		r.text("(")
		r.keyword("table")
		r.idAndIndex(r.names.tables, r.tableIdx)
		t := e.Table
		r.tableType(&t)
		r.text(")")
		r.endLine()
		r.tableIdx++
	}
}

func (r *renderer) memorySection(p wasm.MemorySectionPayload) {
	for _, e := range p.Entries {
		r.startLine(e.Offset)
		r.text("(")
		r.keyword("memory")
		r.idAndIndex(r.names.memories, r.memoryIdx)
		r.limits(e.Memory.Limits)
		r.text(")")
		r.endLine()
		r.memoryIdx++
	}
}

func (r *renderer) tagSection(p wasm.TagSectionPayload) {
	for _, e := range p.Entries {
		r.startLine(e.Offset)
		r.text("(")
		r.keyword("tag")
		r.idAndIndex(r.names.tags, r.tagIdx)
		r.typeUse(e.Tag.TypeIdx)
		r.text(")")
		r.endLine()
		r.tagIdx++
	}
}

func (r *renderer) globalSection(p wasm.GlobalSectionPayload) {
	for _, e := range p.Entries {
		r.startLine(e.Offset)
		r.text("(")
		r.keyword("global")
		r.idAndIndex(r.names.globals, r.globalIdx)
		g := e.Global.Type
		r.globalType(&g)
		r.text(" ")
		if err := r.constExpr(e.Global.Init); err != nil {
			r.literal("...")
		}
		r.text(")")
		r.endLine()
		r.globalIdx++
	}
}

// constExpr renders an init expression inline, dropping the trailing
// end opcode.
func (r *renderer) constExpr(init []byte) error {
	d := wasm.NewDisassembler(init, 0)
	first := true
	for {
		in, err := d.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if in.Opcode == wasm.OpEnd {
			continue
		}
		if !first {
			r.text(" ")
		}
		first = false
		r.text("(")
		r.instr(in)
		r.text(")")
	}
}

func (r *renderer) exportSection(p wasm.ExportSectionPayload) {
	for _, e := range p.Entries {
		r.startLine(e.Offset)
		r.text("(")
		r.keyword("export")
		r.text(" ")
		r.literal(quote(e.Export.Name))
		r.text(" (")
		switch e.Export.Kind {
		case wasm.KindFunc:
			r.keyword("func")
			r.text(" ")
			r.ref(r.names.funcs, e.Export.Idx)
		case wasm.KindTable:
			r.keyword("table")
			r.text(" ")
			r.ref(r.names.tables, e.Export.Idx)
		case wasm.KindMemory:
			r.keyword("memory")
			r.text(" ")
			r.ref(r.names.memories, e.Export.Idx)
		case wasm.KindGlobal:
			r.keyword("global")
			r.text(" ")
			r.ref(r.names.globals, e.Export.Idx)
		case wasm.KindTag:
			r.keyword("tag")
			r.text(" ")
			r.ref(r.names.tags, e.Export.Idx)
		}
		r.text("))")
		r.endLine()
	}
}

func (r *renderer) startSection(p wasm.StartSectionPayload) {
	r.startLine(p.Range.Start)
	r.text("(")
	r.keyword("start")
	r.text(" ")
	r.ref(r.names.funcs, p.FuncIdx)
	r.text(")")
	r.endLine()
}

func (r *renderer) elementSection(p wasm.ElementSectionPayload) {
	for _, e := range p.Entries {
		r.startLine(e.Offset)
		r.text("(")
		r.keyword("elem")
		r.idAndIndex(r.names.elems, r.elemIdx)
		el := e.Element
		if el.IsActive() {
			if el.TableIdx != 0 {
				r.text(" (")
				r.keyword("table")
				r.text(" ")
				r.ref(r.names.tables, el.TableIdx)
				r.text(")")
			}
			r.text(" ")
			if err := r.constExpr(el.Offset); err != nil {
				r.literal("...")
			}
		} else if el.Flags&0x03 == 0x03 {
			r.text(" ")
			r.keyword("declare")
		}
		if el.Exprs == nil {
			r.text(" ")
			r.keyword("func")
			for _, idx := range el.FuncIdxs {
				r.text(" ")
				r.ref(r.names.funcs, idx)
			}
		} else {
			r.text(" ")
			r.typ(refTypeName(el.Type))
			for _, expr := range el.Exprs {
				r.text(" ")
				if err := r.constExpr(expr); err != nil {
					r.literal("...")
				}
			}
		}
		r.text(")")
		r.endLine()
		r.elemIdx++
	}
}

func refTypeName(vt wasm.ValType) string {
	switch vt {
	case wasm.ValFuncRef:
		return "funcref"
	case wasm.ValExtern:
		return "externref"
	default:
		return vt.String()
	}
}

func (r *renderer) codeEntry(p wasm.CodeEntryPayload) error {
	r.startLine(p.BodyOffset)
	r.text("(")
	r.keyword("func")
	r.idAndIndex(r.names.funcs, r.funcIdx)
	if r.bodyIdx < len(r.funcTypes) {
		typeIdx := r.funcTypes[r.bodyIdx]
		r.typeUse(typeIdx)
		if int(typeIdx) < len(r.types) && r.types[typeIdx] != nil {
			r.funcSig(r.types[typeIdx])
		}
	}
	r.endLine()

	r.indent = 2
	if len(p.Locals) > 0 {
		r.startLine(p.BodyOffset)
		r.text("(")
		r.keyword("local")
		for _, l := range p.Locals {
			for i := uint32(0); i < l.Count; i++ {
				r.text(" ")
				r.typ(l.ValType.String())
			}
		}
		r.text(")")
		r.endLine()
	}

	if err := r.body(p.Code, p.CodeOffset); err != nil {
		r.indent = 1
		return err
	}

	r.indent = 1
	r.startLine(-1)
	r.text(")")
	r.endLine()

	r.funcIdx++
	r.bodyIdx++
	return nil
}

func (r *renderer) body(code []byte, base int) error {
	d := wasm.NewDisassembler(code, base)
	depth := 0
	for {
		in, err := d.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		lineDepth := depth
		switch in.Opcode {
		case wasm.OpEnd:
			depth--
			if depth < 0 {
				// The body's closing end is implied by the func's
				// closing parenthesis.
				continue
			}
			lineDepth = depth
		case wasm.OpElse, 0x07, 0x19: // else, catch, catch_all
			lineDepth = depth - 1
		}

		saved := r.indent
		r.indent += lineDepth
		r.startLine(in.Offset)
		r.instr(in)
		r.endLine()
		r.indent = saved

		if in.OpensBlock() {
			depth++
		}
	}
}

// instr writes one instruction: mnemonic plus operands.
func (r *renderer) instr(in wasm.Instr) {
	r.keyword(in.Name)
	for _, op := range in.Operands {
		r.text(" ")
		r.operand(op)
	}
}

func (r *renderer) operand(op wasm.Operand) {
	switch op.Kind {
	case wasm.OperandText:
		r.literal(op.Text)
	case wasm.OperandFunc:
		r.ref(r.names.funcs, op.Index)
	case wasm.OperandType:
		r.text("(")
		r.keyword("type")
		r.text(" ")
		r.ref(r.names.types, op.Index)
		r.text(")")
	case wasm.OperandGlobal:
		r.ref(r.names.globals, op.Index)
	case wasm.OperandTable:
		r.ref(r.names.tables, op.Index)
	case wasm.OperandMemory:
		r.ref(r.names.memories, op.Index)
	case wasm.OperandElem:
		r.ref(r.names.elems, op.Index)
	case wasm.OperandData:
		r.ref(r.names.datas, op.Index)
	case wasm.OperandTag:
		r.ref(r.names.tags, op.Index)
	default: // labels, locals
		r.literal(strconv.FormatUint(uint64(op.Index), 10))
	}
}

func (r *renderer) dataSection(p wasm.DataSectionPayload) {
	for _, e := range p.Entries {
		r.startLine(e.Offset)
		r.text("(")
		r.keyword("data")
		r.idAndIndex(r.names.datas, r.dataIdx)
		seg := e.Data
		if !seg.IsPassive() {
			if seg.MemIdx != 0 {
				r.text(" (")
				r.keyword("memory")
				r.text(" ")
				r.ref(r.names.memories, seg.MemIdx)
				r.text(")")
			}
			r.text(" ")
			if err := r.constExpr(seg.Offset); err != nil {
				r.literal("...")
			}
		}
		r.text(" ")
		r.literal(quoteBytes(seg.Init))
		r.text(")")
		r.endLine()
		r.dataIdx++
	}
}

func quote(s string) string {
	return quoteBytes([]byte(s))
}

// quoteBytes renders bytes as a text format string literal: printable
// ASCII stays literal, everything else becomes a two-digit hex escape.
func quoteBytes(b []byte) string {
	var out strings.Builder
	out.WriteByte('"')
	for _, c := range b {
		switch {
		case c == '"':
			out.WriteString(`\"`)
		case c == '\\':
			out.WriteString(`\\`)
		case c >= 0x20 && c < 0x7F:
			out.WriteByte(c)
		default:
			fmt.Fprintf(&out, `\%02x`, c)
		}
	}
	out.WriteByte('"')
	return out.String()
}
