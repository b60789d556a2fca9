package parser

import (
	"github.com/wippyai/wasm-inspect/wasm"
	"github.com/wippyai/wasm-inspect/wat/internal/ast"
)

func (p *Parser) parseField(f *node) error {
	switch f.keyword() {
	case "type":
		// registered during the declaration pass
		return nil
	case "import":
		return p.parseImport(f)
	case "func":
		return p.parseFunc(f)
	case "table":
		return p.parseTable(f)
	case "memory":
		return p.parseMemory(f)
	case "global":
		return p.parseGlobal(f)
	case "export":
		return p.parseExport(f)
	case "start":
		return p.parseStart(f)
	case "elem":
		return p.parseElem(f)
	case "data":
		return p.parseData(f)
	}
	return nil
}

func (p *Parser) parseImport(f *node) error {
	mod, err := stringAtom(f.items[1])
	if err != nil {
		return err
	}
	name, err := stringAtom(f.items[2])
	if err != nil {
		return err
	}
	desc, err := p.parseImportDesc(f.items[3])
	if err != nil {
		return err
	}
	p.mod.Imports = append(p.mod.Imports, wasm.Import{Module: mod, Name: name, Desc: desc})
	p.bumpImportedCursor(desc.Kind)
	return nil
}

func (p *Parser) parseImportDesc(d *node) (wasm.ImportDesc, error) {
	rest := d.items[1:]
	if len(rest) > 0 && !rest[0].isList() && isName(rest[0].tok.Value) {
		rest = rest[1:]
	}

	switch d.keyword() {
	case "func":
		typeIdx, _, _, err := p.parseTypeUse(&rest)
		if err != nil {
			return wasm.ImportDesc{}, err
		}
		return wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: typeIdx}, nil
	case "table":
		tt, err := p.parseTableType(d, rest)
		if err != nil {
			return wasm.ImportDesc{}, err
		}
		return wasm.ImportDesc{Kind: wasm.KindTable, Table: &tt}, nil
	case "memory":
		limits, err := p.parseLimits(d, rest)
		if err != nil {
			return wasm.ImportDesc{}, err
		}
		return wasm.ImportDesc{Kind: wasm.KindMemory, Memory: &wasm.MemoryType{Limits: limits}}, nil
	case "global":
		if len(rest) != 1 {
			return wasm.ImportDesc{}, d.errf("malformed global type")
		}
		gt, err := p.parseGlobalType(rest[0])
		if err != nil {
			return wasm.ImportDesc{}, err
		}
		return wasm.ImportDesc{Kind: wasm.KindGlobal, Global: &gt}, nil
	}
	return wasm.ImportDesc{}, d.errf("unknown import kind %q", d.keyword())
}

func (p *Parser) bumpImportedCursor(kind byte) {
	switch kind {
	case wasm.KindFunc:
		p.importedFuncCursor++
	case wasm.KindTable:
		p.importedTableCursor++
	case wasm.KindMemory:
		p.importedMemCursor++
	case wasm.KindGlobal:
		p.importedGlobalCursor++
	}
}

// collectInlineExports consumes leading (export "name") abbreviations.
func collectInlineExports(rest *[]*node) ([]string, error) {
	var names []string
	for len(*rest) > 0 && (*rest)[0].isList() && (*rest)[0].keyword() == "export" {
		e := (*rest)[0]
		if len(e.items) != 2 {
			return nil, e.errf("malformed inline export")
		}
		name, err := stringAtom(e.items[1])
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		*rest = (*rest)[1:]
	}
	return names, nil
}

// takeInlineImport consumes an (import "mod" "name") abbreviation.
func takeInlineImport(rest *[]*node) (mod, name string, ok bool, err error) {
	if len(*rest) == 0 || !(*rest)[0].isList() || (*rest)[0].keyword() != "import" {
		return "", "", false, nil
	}
	imp := (*rest)[0]
	if len(imp.items) != 3 {
		return "", "", false, imp.errf("malformed inline import")
	}
	if mod, err = stringAtom(imp.items[1]); err != nil {
		return "", "", false, err
	}
	if name, err = stringAtom(imp.items[2]); err != nil {
		return "", "", false, err
	}
	*rest = (*rest)[1:]
	return mod, name, true, nil
}

func (p *Parser) addExports(names []string, kind byte, idx uint32) {
	for _, name := range names {
		p.mod.Exports = append(p.mod.Exports, wasm.Export{Name: name, Kind: kind, Idx: idx})
	}
}

func (p *Parser) parseFunc(f *node) error {
	rest := f.items[1:]
	if len(rest) > 0 && !rest[0].isList() && isName(rest[0].tok.Value) {
		rest = rest[1:]
	}
	exports, err := collectInlineExports(&rest)
	if err != nil {
		return err
	}

	if mod, name, ok, err := takeInlineImport(&rest); err != nil {
		return err
	} else if ok {
		typeIdx, _, _, err := p.parseTypeUse(&rest)
		if err != nil {
			return err
		}
		idx := p.importedFuncCursor
		p.importedFuncCursor++
		p.mod.Imports = append(p.mod.Imports, wasm.Import{
			Module: mod, Name: name,
			Desc: wasm.ImportDesc{Kind: wasm.KindFunc, TypeIdx: typeIdx},
		})
		p.addExports(exports, wasm.KindFunc, idx)
		return nil
	}

	idx := p.funcCursor
	p.funcCursor++
	p.addExports(exports, wasm.KindFunc, idx)

	typeIdx, paramNames, numParams, err := p.parseTypeUse(&rest)
	if err != nil {
		return err
	}
	locals, localNames, err := p.parseFuncLocals(&rest, paramNames, numParams)
	if err != nil {
		return err
	}
	body, err := p.parseBody(rest, localNames)
	if err != nil {
		return err
	}

	p.mod.Funcs = append(p.mod.Funcs, typeIdx)
	p.mod.Code = append(p.mod.Code, ast.FuncBody{Locals: locals, Body: body})
	return nil
}

func (p *Parser) parseTable(f *node) error {
	rest := f.items[1:]
	if len(rest) > 0 && !rest[0].isList() && isName(rest[0].tok.Value) {
		rest = rest[1:]
	}
	exports, err := collectInlineExports(&rest)
	if err != nil {
		return err
	}

	if mod, name, ok, err := takeInlineImport(&rest); err != nil {
		return err
	} else if ok {
		tt, err := p.parseTableType(f, rest)
		if err != nil {
			return err
		}
		idx := p.importedTableCursor
		p.importedTableCursor++
		p.mod.Imports = append(p.mod.Imports, wasm.Import{
			Module: mod, Name: name,
			Desc: wasm.ImportDesc{Kind: wasm.KindTable, Table: &tt},
		})
		p.addExports(exports, wasm.KindTable, idx)
		return nil
	}

	tt, err := p.parseTableType(f, rest)
	if err != nil {
		return err
	}
	idx := p.tableCursor
	p.tableCursor++
	p.mod.Tables = append(p.mod.Tables, tt)
	p.addExports(exports, wasm.KindTable, idx)
	return nil
}

func (p *Parser) parseMemory(f *node) error {
	rest := f.items[1:]
	if len(rest) > 0 && !rest[0].isList() && isName(rest[0].tok.Value) {
		rest = rest[1:]
	}
	exports, err := collectInlineExports(&rest)
	if err != nil {
		return err
	}

	if mod, name, ok, err := takeInlineImport(&rest); err != nil {
		return err
	} else if ok {
		limits, err := p.parseLimits(f, rest)
		if err != nil {
			return err
		}
		idx := p.importedMemCursor
		p.importedMemCursor++
		p.mod.Imports = append(p.mod.Imports, wasm.Import{
			Module: mod, Name: name,
			Desc: wasm.ImportDesc{Kind: wasm.KindMemory, Memory: &wasm.MemoryType{Limits: limits}},
		})
		p.addExports(exports, wasm.KindMemory, idx)
		return nil
	}

	limits, err := p.parseLimits(f, rest)
	if err != nil {
		return err
	}
	idx := p.memCursor
	p.memCursor++
	p.mod.Memories = append(p.mod.Memories, wasm.MemoryType{Limits: limits})
	p.addExports(exports, wasm.KindMemory, idx)
	return nil
}

func (p *Parser) parseGlobal(f *node) error {
	rest := f.items[1:]
	if len(rest) > 0 && !rest[0].isList() && isName(rest[0].tok.Value) {
		rest = rest[1:]
	}
	exports, err := collectInlineExports(&rest)
	if err != nil {
		return err
	}

	if mod, name, ok, err := takeInlineImport(&rest); err != nil {
		return err
	} else if ok {
		if len(rest) != 1 {
			return f.errf("malformed global type")
		}
		gt, err := p.parseGlobalType(rest[0])
		if err != nil {
			return err
		}
		idx := p.importedGlobalCursor
		p.importedGlobalCursor++
		p.mod.Imports = append(p.mod.Imports, wasm.Import{
			Module: mod, Name: name,
			Desc: wasm.ImportDesc{Kind: wasm.KindGlobal, Global: &gt},
		})
		p.addExports(exports, wasm.KindGlobal, idx)
		return nil
	}

	if len(rest) == 0 {
		return f.errf("global requires a type")
	}
	gt, err := p.parseGlobalType(rest[0])
	if err != nil {
		return err
	}
	init, err := p.parseBody(rest[1:], nil)
	if err != nil {
		return err
	}
	idx := p.globalCursor
	p.globalCursor++
	p.mod.Globals = append(p.mod.Globals, ast.Global{Type: gt, Init: init})
	p.addExports(exports, wasm.KindGlobal, idx)
	return nil
}

func (p *Parser) parseExport(f *node) error {
	if len(f.items) != 3 || !f.items[2].isList() {
		return f.errf("malformed export")
	}
	name, err := stringAtom(f.items[1])
	if err != nil {
		return err
	}
	desc := f.items[2]
	if len(desc.items) != 2 {
		return desc.errf("malformed export descriptor")
	}

	var kind byte
	var space map[string]uint32
	switch desc.keyword() {
	case "func":
		kind, space = wasm.KindFunc, p.funcs
	case "table":
		kind, space = wasm.KindTable, p.tables
	case "memory":
		kind, space = wasm.KindMemory, p.mems
	case "global":
		kind, space = wasm.KindGlobal, p.globals
	default:
		return desc.errf("unknown export kind %q", desc.keyword())
	}
	idx, err := p.resolveIdx(desc.items[1], space, desc.keyword())
	if err != nil {
		return err
	}
	p.mod.Exports = append(p.mod.Exports, wasm.Export{Name: name, Kind: kind, Idx: idx})
	return nil
}

func (p *Parser) parseStart(f *node) error {
	if len(f.items) != 2 {
		return f.errf("malformed start")
	}
	idx, err := p.resolveIdx(f.items[1], p.funcs, "func")
	if err != nil {
		return err
	}
	p.mod.Start = &idx
	return nil
}

func (p *Parser) parseElem(f *node) error {
	rest := f.items[1:]
	if len(rest) > 0 && !rest[0].isList() && isName(rest[0].tok.Value) {
		rest = rest[1:]
	}

	elem := ast.Elem{Type: wasm.ValFuncRef}

	declare := len(rest) > 0 && !rest[0].isList() && rest[0].tok.Value == "declare"
	if declare {
		rest = rest[1:]
		elem.Flags = 3
	}

	if len(rest) > 0 && rest[0].isList() && rest[0].keyword() == "table" {
		t := rest[0]
		if len(t.items) != 2 {
			return t.errf("malformed table use")
		}
		idx, err := p.resolveIdx(t.items[1], p.tables, "table")
		if err != nil {
			return err
		}
		elem.TableIdx = idx
		rest = rest[1:]
	}

	// an offset expression makes the segment active
	if len(rest) > 0 && rest[0].isList() && rest[0].keyword() != "item" {
		offsetNode := rest[0]
		rest = rest[1:]
		var items []*node
		if offsetNode.keyword() == "offset" {
			items = offsetNode.items[1:]
		} else {
			items = []*node{offsetNode}
		}
		offset, err := p.parseBody(items, nil)
		if err != nil {
			return err
		}
		elem.Offset = offset
		if elem.TableIdx != 0 {
			elem.Flags = 2
		}
	} else if !declare {
		elem.Flags = 1
	}

	if len(rest) > 0 && !rest[0].isList() && rest[0].tok.Value == "func" {
		rest = rest[1:]
	}
	for _, n := range rest {
		idx, err := p.resolveIdx(n, p.funcs, "func")
		if err != nil {
			return err
		}
		elem.FuncIdxs = append(elem.FuncIdxs, idx)
	}

	p.mod.Elems = append(p.mod.Elems, elem)
	return nil
}

func (p *Parser) parseData(f *node) error {
	rest := f.items[1:]
	if len(rest) > 0 && !rest[0].isList() && isName(rest[0].tok.Value) {
		rest = rest[1:]
	}

	data := ast.Data{Flags: 1}

	if len(rest) > 0 && rest[0].isList() && rest[0].keyword() == "memory" {
		m := rest[0]
		if len(m.items) != 2 {
			return m.errf("malformed memory use")
		}
		idx, err := p.resolveIdx(m.items[1], p.mems, "memory")
		if err != nil {
			return err
		}
		data.MemIdx = idx
		rest = rest[1:]
	}

	if len(rest) > 0 && rest[0].isList() {
		offsetNode := rest[0]
		rest = rest[1:]
		var items []*node
		if offsetNode.keyword() == "offset" {
			items = offsetNode.items[1:]
		} else {
			items = []*node{offsetNode}
		}
		offset, err := p.parseBody(items, nil)
		if err != nil {
			return err
		}
		data.Offset = offset
		if data.MemIdx != 0 {
			data.Flags = 2
		} else {
			data.Flags = 0
		}
	}

	for _, n := range rest {
		if n.isList() || n.tok.Type != stringTokenType {
			return n.errf("expected data string")
		}
		chunk, err := unescape(n.tok)
		if err != nil {
			return err
		}
		data.Init = append(data.Init, chunk...)
	}

	p.mod.Data = append(p.mod.Data, data)
	return nil
}
