package encoder

import (
	"github.com/wippyai/wasm-inspect/wasm"
	"github.com/wippyai/wasm-inspect/wat/internal/ast"
)

// Encode lowers a resolved text format module to binary. Debug names
// collected from $identifiers become a trailing "name" custom section.
func Encode(m *ast.Module) []byte {
	mod := &wasm.Module{
		Types:    m.Types,
		Imports:  m.Imports,
		Funcs:    m.Funcs,
		Tables:   m.Tables,
		Memories: m.Memories,
		Exports:  m.Exports,
		Start:    m.Start,
	}

	for _, g := range m.Globals {
		mod.Globals = append(mod.Globals, wasm.Global{
			Type: g.Type,
			Init: EncodeExpr(g.Init),
		})
	}

	for _, e := range m.Elems {
		el := wasm.Element{
			Flags:    e.Flags,
			TableIdx: e.TableIdx,
			FuncIdxs: e.FuncIdxs,
			Type:     e.Type,
		}
		if e.IsActive() {
			el.Offset = EncodeExpr(e.Offset)
		}
		mod.Elements = append(mod.Elements, el)
	}

	for _, body := range m.Code {
		mod.Code = append(mod.Code, wasm.FuncBody{
			Locals: body.Locals,
			Code:   EncodeExpr(body.Body),
		})
	}

	passive := false
	for _, d := range m.Data {
		seg := wasm.DataSegment{
			Flags:  d.Flags,
			MemIdx: d.MemIdx,
			Init:   d.Init,
		}
		if d.Flags != 1 {
			seg.Offset = EncodeExpr(d.Offset)
		} else {
			passive = true
		}
		mod.Data = append(mod.Data, seg)
	}
	// Passive segments are referenced from code by index, which requires
	// the data count section to precede the code section.
	if passive && len(mod.Code) > 0 {
		n := uint32(len(mod.Data))
		mod.DataCount = &n
	}

	if !m.Names.Empty() {
		mod.CustomSections = append(mod.CustomSections, wasm.CustomSection{
			Name: wasm.NameSectionName,
			Data: wasm.EncodeNameSection(&m.Names),
		})
	}

	return mod.Encode()
}
