package parser

import (
	"github.com/wippyai/wasm-inspect/errors"
	"github.com/wippyai/wasm-inspect/wasm"
	"github.com/wippyai/wasm-inspect/wat/internal/ast"
	"github.com/wippyai/wasm-inspect/wat/internal/token"
)

// node is one element of the s-expression tree: an atom carrying its
// token, or a parenthesized list carrying its opening token.
type node struct {
	items []*node
	tok   *token.Token
	open  *token.Token
}

func (n *node) isList() bool { return n.tok == nil }

// keyword returns the first atom of a list, or "" for atoms and empty
// lists.
func (n *node) keyword() string {
	if n.isList() && len(n.items) > 0 && !n.items[0].isList() {
		return n.items[0].tok.Value
	}
	return ""
}

func (n *node) pos() (line, col int) {
	t := n.tok
	if t == nil {
		t = n.open
	}
	if t == nil {
		return 0, 0
	}
	return t.Line, t.Col
}

func (n *node) errf(msg string, args ...any) error {
	line, col := n.pos()
	return errors.NewSyntaxError(line, col, msg, args...)
}

// Parser resolves a token stream into an ast.Module. Symbolic
// $identifiers are collected in a declaration pass so forward references
// work, then every field is parsed in a second pass.
type Parser struct {
	mod     *ast.Module
	types   map[string]uint32
	funcs   map[string]uint32
	globals map[string]uint32
	mems    map[string]uint32
	tables  map[string]uint32
	elems   map[string]uint32
	datas   map[string]uint32

	numImportedFuncs   uint32
	numImportedGlobals uint32
	numImportedMems    uint32
	numImportedTables  uint32

	// pass two cursors through each index space, split between
	// imported and locally defined items
	funcCursor           uint32
	globalCursor         uint32
	memCursor            uint32
	tableCursor          uint32
	importedFuncCursor   uint32
	importedGlobalCursor uint32
	importedMemCursor    uint32
	importedTableCursor  uint32

	tokens []token.Token
	pos    int
}

func New(tokens []token.Token) *Parser {
	return &Parser{
		tokens:  tokens,
		mod:     &ast.Module{},
		types:   make(map[string]uint32),
		funcs:   make(map[string]uint32),
		globals: make(map[string]uint32),
		mems:    make(map[string]uint32),
		tables:  make(map[string]uint32),
		elems:   make(map[string]uint32),
		datas:   make(map[string]uint32),
	}
}

func (p *Parser) Parse() (*ast.Module, error) {
	root, err := p.readNode()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		t := p.tokens[p.pos]
		return nil, errors.NewSyntaxError(t.Line, t.Col, "unexpected %q after module", t.Value)
	}
	if root.keyword() != "module" {
		return nil, root.errf("expected (module ...)")
	}

	fields := root.items[1:]
	if len(fields) > 0 && !fields[0].isList() && isName(fields[0].tok.Value) {
		p.mod.Names.Module = fields[0].tok.Value[1:]
		p.mod.Names.HasModule = true
		fields = fields[1:]
	}

	if err := p.declare(fields); err != nil {
		return nil, err
	}
	for _, f := range fields {
		if err := p.parseField(f); err != nil {
			return nil, err
		}
	}
	return p.mod, nil
}

func (p *Parser) readNode() (*node, error) {
	if p.pos >= len(p.tokens) {
		return nil, errors.NewSyntaxError(0, 0, "unexpected end of input")
	}
	t := &p.tokens[p.pos]
	p.pos++

	switch t.Type {
	case token.LParen:
		n := &node{open: t}
		for {
			if p.pos >= len(p.tokens) {
				return nil, errors.NewSyntaxError(t.Line, t.Col, "unclosed parenthesis")
			}
			if p.tokens[p.pos].Type == token.RParen {
				p.pos++
				return n, nil
			}
			child, err := p.readNode()
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, child)
		}
	case token.RParen:
		return nil, errors.NewSyntaxError(t.Line, t.Col, "unexpected ')'")
	default:
		return &node{tok: t}, nil
	}
}

// declare walks the module fields once, assigning every index space
// before any field body is parsed. Imported items precede defined ones
// in each space regardless of where the fields appear in the source.
func (p *Parser) declare(fields []*node) error {
	type decl struct {
		name     string
		imported bool
	}
	var funcs, globals, mems, tables []decl
	var elemIdx, dataIdx uint32

	record := func(kind string, name string, imported bool) {
		d := decl{name: name, imported: imported}
		switch kind {
		case "func":
			funcs = append(funcs, d)
		case "global":
			globals = append(globals, d)
		case "memory":
			mems = append(mems, d)
		case "table":
			tables = append(tables, d)
		}
	}

	for _, f := range fields {
		if !f.isList() || len(f.items) == 0 {
			return f.errf("expected module field")
		}
		kw := f.keyword()
		name := fieldName(f)

		switch kw {
		case "type":
			if name != "" {
				if _, dup := p.types[name]; dup {
					return f.errf("duplicate type name %s", name)
				}
				p.types[name] = uint32(len(p.mod.Types))
			}
			ft, err := p.parseTypeFunc(f)
			if err != nil {
				return err
			}
			p.mod.Types = append(p.mod.Types, ft)
		case "import":
			if len(f.items) < 4 || !f.items[3].isList() {
				return f.errf("malformed import")
			}
			desc := f.items[3]
			record(desc.keyword(), fieldName(desc), true)
		case "func", "global", "memory", "table":
			record(kw, name, hasInlineImport(f))
		case "elem":
			if name != "" {
				p.elems[name] = elemIdx
			}
			elemIdx++
		case "data":
			if name != "" {
				p.datas[name] = dataIdx
			}
			dataIdx++
		case "export", "start":
		default:
			return f.errf("unknown module field %q", kw)
		}
	}

	assign := func(decls []decl, m map[string]uint32, names *[]wasm.NameEntry) (imported uint32, err error) {
		idx := uint32(0)
		for _, d := range decls {
			if d.imported {
				imported++
			}
		}
		var nextImported, nextDefined uint32
		nextDefined = imported
		for _, d := range decls {
			if d.imported {
				idx = nextImported
				nextImported++
			} else {
				idx = nextDefined
				nextDefined++
			}
			if d.name == "" {
				continue
			}
			if _, dup := m[d.name]; dup {
				return 0, errors.NewSyntaxError(0, 0, "duplicate name %s", d.name)
			}
			m[d.name] = idx
			if names != nil {
				*names = append(*names, wasm.NameEntry{Index: idx, Name: d.name[1:]})
			}
		}
		return imported, nil
	}

	var err error
	if p.numImportedFuncs, err = assign(funcs, p.funcs, &p.mod.Names.Funcs); err != nil {
		return err
	}
	if p.numImportedGlobals, err = assign(globals, p.globals, &p.mod.Names.Globals); err != nil {
		return err
	}
	if p.numImportedMems, err = assign(mems, p.mems, &p.mod.Names.Memories); err != nil {
		return err
	}
	if p.numImportedTables, err = assign(tables, p.tables, &p.mod.Names.Tables); err != nil {
		return err
	}
	for name, idx := range p.types {
		p.mod.Names.Types = append(p.mod.Names.Types, wasm.NameEntry{Index: idx, Name: name[1:]})
	}
	for name, idx := range p.elems {
		p.mod.Names.Elems = append(p.mod.Names.Elems, wasm.NameEntry{Index: idx, Name: name[1:]})
	}
	for name, idx := range p.datas {
		p.mod.Names.Datas = append(p.mod.Names.Datas, wasm.NameEntry{Index: idx, Name: name[1:]})
	}

	p.funcCursor = p.numImportedFuncs
	p.globalCursor = p.numImportedGlobals
	p.memCursor = p.numImportedMems
	p.tableCursor = p.numImportedTables
	return nil
}

// fieldName returns the $name directly after a field keyword, or "".
func fieldName(f *node) string {
	if len(f.items) > 1 && !f.items[1].isList() && isName(f.items[1].tok.Value) {
		return f.items[1].tok.Value
	}
	return ""
}

// hasInlineImport reports whether a func/global/memory/table field uses
// the (import "mod" "name") abbreviation.
func hasInlineImport(f *node) bool {
	for _, item := range f.items[1:] {
		if item.isList() && item.keyword() == "import" {
			return true
		}
	}
	return false
}

func isName(s string) bool {
	return len(s) > 1 && s[0] == '$'
}

func (p *Parser) findOrAddType(ft wasm.FuncType) uint32 {
	for i, t := range p.mod.Types {
		if t.Equal(ft) {
			return uint32(i)
		}
	}
	idx := uint32(len(p.mod.Types))
	p.mod.Types = append(p.mod.Types, ft)
	return idx
}
