package parser

import (
	"github.com/wippyai/wasm-inspect/wasm"
)

// parseTypeFunc handles a (type $name? (func ...)) field.
func (p *Parser) parseTypeFunc(f *node) (wasm.FuncType, error) {
	for _, item := range f.items[1:] {
		if item.isList() && item.keyword() == "func" {
			rest := item.items[1:]
			sig, _, err := p.parseSig(&rest)
			if err != nil {
				return wasm.FuncType{}, err
			}
			if len(rest) > 0 {
				return wasm.FuncType{}, rest[0].errf("unexpected token in function type")
			}
			return sig, nil
		}
	}
	return wasm.FuncType{}, f.errf("type field requires (func ...)")
}

// parseTypeUse consumes an optional (type idx) reference plus inline
// (param ...) and (result ...) lists. It returns the resolved type index,
// the named parameters, and the parameter count for local numbering.
func (p *Parser) parseTypeUse(rest *[]*node) (uint32, map[string]uint32, int, error) {
	var explicit *uint32
	if len(*rest) > 0 && (*rest)[0].isList() && (*rest)[0].keyword() == "type" {
		t := (*rest)[0]
		if len(t.items) != 2 {
			return 0, nil, 0, t.errf("malformed type use")
		}
		idx, err := p.resolveIdx(t.items[1], p.types, "type")
		if err != nil {
			return 0, nil, 0, err
		}
		explicit = &idx
		*rest = (*rest)[1:]
	}

	sig, names, err := p.parseSig(rest)
	if err != nil {
		return 0, nil, 0, err
	}

	if explicit != nil {
		if int(*explicit) >= len(p.mod.Types) {
			return 0, nil, 0, errIndex("type", *explicit)
		}
		declared := p.mod.Types[*explicit]
		if (len(sig.Params) > 0 || len(sig.Results) > 0) && !declared.Equal(sig) {
			return 0, nil, 0, errTypeUseMismatch(*explicit)
		}
		return *explicit, names, len(declared.Params), nil
	}
	return p.findOrAddType(sig), names, len(sig.Params), nil
}

// parseSig consumes leading (param ...) and (result ...) lists.
func (p *Parser) parseSig(rest *[]*node) (wasm.FuncType, map[string]uint32, error) {
	var sig wasm.FuncType
	names := make(map[string]uint32)
	sawResult := false

	for len(*rest) > 0 && (*rest)[0].isList() {
		n := (*rest)[0]
		switch n.keyword() {
		case "param":
			if sawResult {
				return sig, nil, n.errf("param after result")
			}
			items := n.items[1:]
			if len(items) > 0 && !items[0].isList() && isName(items[0].tok.Value) {
				if len(items) != 2 {
					return sig, nil, n.errf("named param takes exactly one type")
				}
				vt, err := parseValType(items[1])
				if err != nil {
					return sig, nil, err
				}
				names[items[0].tok.Value] = uint32(len(sig.Params))
				sig.Params = append(sig.Params, vt)
			} else {
				for _, item := range items {
					vt, err := parseValType(item)
					if err != nil {
						return sig, nil, err
					}
					sig.Params = append(sig.Params, vt)
				}
			}
		case "result":
			sawResult = true
			for _, item := range n.items[1:] {
				vt, err := parseValType(item)
				if err != nil {
					return sig, nil, err
				}
				sig.Results = append(sig.Results, vt)
			}
		default:
			return sig, names, nil
		}
		*rest = (*rest)[1:]
	}
	return sig, names, nil
}

// parseFuncLocals consumes leading (local ...) lists. Named locals join
// the parameter names in a single lookup map, numbered after the params.
func (p *Parser) parseFuncLocals(rest *[]*node, paramNames map[string]uint32, numParams int) ([]wasm.LocalEntry, map[string]uint32, error) {
	names := paramNames
	if names == nil {
		names = make(map[string]uint32)
	}
	var entries []wasm.LocalEntry
	idx := uint32(numParams)

	add := func(vt wasm.ValType) {
		if n := len(entries); n > 0 && entries[n-1].ValType == vt {
			entries[n-1].Count++
		} else {
			entries = append(entries, wasm.LocalEntry{Count: 1, ValType: vt})
		}
		idx++
	}

	for len(*rest) > 0 && (*rest)[0].isList() && (*rest)[0].keyword() == "local" {
		n := (*rest)[0]
		items := n.items[1:]
		if len(items) > 0 && !items[0].isList() && isName(items[0].tok.Value) {
			if len(items) != 2 {
				return nil, nil, n.errf("named local takes exactly one type")
			}
			vt, err := parseValType(items[1])
			if err != nil {
				return nil, nil, err
			}
			names[items[0].tok.Value] = idx
			add(vt)
		} else {
			for _, item := range items {
				vt, err := parseValType(item)
				if err != nil {
					return nil, nil, err
				}
				add(vt)
			}
		}
		*rest = (*rest)[1:]
	}
	return entries, names, nil
}

func parseValType(n *node) (wasm.ValType, error) {
	if n.isList() {
		return 0, n.errf("expected value type")
	}
	switch n.tok.Value {
	case "i32":
		return wasm.ValI32, nil
	case "i64":
		return wasm.ValI64, nil
	case "f32":
		return wasm.ValF32, nil
	case "f64":
		return wasm.ValF64, nil
	case "v128":
		return wasm.ValV128, nil
	case "funcref":
		return wasm.ValFuncRef, nil
	case "externref":
		return wasm.ValExtern, nil
	}
	return 0, n.errf("unknown value type %q", n.tok.Value)
}

func (p *Parser) parseGlobalType(n *node) (wasm.GlobalType, error) {
	if n.isList() {
		if n.keyword() != "mut" || len(n.items) != 2 {
			return wasm.GlobalType{}, n.errf("malformed global type")
		}
		vt, err := parseValType(n.items[1])
		if err != nil {
			return wasm.GlobalType{}, err
		}
		return wasm.GlobalType{ValType: vt, Mutable: true}, nil
	}
	vt, err := parseValType(n)
	if err != nil {
		return wasm.GlobalType{}, err
	}
	return wasm.GlobalType{ValType: vt}, nil
}

func (p *Parser) parseTableType(f *node, rest []*node) (wasm.TableType, error) {
	if len(rest) < 2 {
		return wasm.TableType{}, f.errf("malformed table type")
	}
	limits, err := p.parseLimits(f, rest[:len(rest)-1])
	if err != nil {
		return wasm.TableType{}, err
	}
	ref := rest[len(rest)-1]
	vt, err := parseValType(ref)
	if err != nil {
		return wasm.TableType{}, err
	}
	if vt != wasm.ValFuncRef && vt != wasm.ValExtern {
		return wasm.TableType{}, ref.errf("table element must be a reference type")
	}
	return wasm.TableType{Limits: limits, ElemType: byte(vt)}, nil
}

func (p *Parser) parseLimits(f *node, rest []*node) (wasm.Limits, error) {
	if len(rest) == 0 || len(rest) > 2 {
		return wasm.Limits{}, f.errf("malformed limits")
	}
	min, err := parseUintAtom(rest[0])
	if err != nil {
		return wasm.Limits{}, err
	}
	limits := wasm.Limits{Min: min}
	if len(rest) == 2 {
		max, err := parseUintAtom(rest[1])
		if err != nil {
			return wasm.Limits{}, err
		}
		limits.Max = &max
	}
	return limits, nil
}
