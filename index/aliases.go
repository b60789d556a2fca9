package index

import (
	"errors"
	"io"
	"strconv"

	"github.com/wippyai/wasm-inspect/wasm"
)

// Aliases walks the module a second time and collects debug names from
// its "name" custom sections, keyed by the same synthetic keys Items
// produces. The code section is skipped by its declared size since no
// names live there. A module without a name section yields an empty
// map.
//
// Every "name" section found is decoded; on duplicate keys the later
// entry wins, both across sections and within one name map.
func Aliases(data []byte) (map[string]string, error) {
	aliases := make(map[string]string)
	s := wasm.NewStream(data)
	for {
		p, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return aliases, nil
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
			mergeNames(aliases, ns)
		case wasm.EndPayload:
			return aliases, nil
		}
	}
}

// Resolve sets each item's DisplayName from the alias map, falling back
// to the raw key. Ranges are never touched.
func Resolve(items []Item, aliases map[string]string) {
	for i := range items {
		if name, ok := aliases[items[i].RawName]; ok {
			items[i].DisplayName = name
		} else {
			items[i].DisplayName = items[i].RawName
		}
	}
}

func mergeNames(aliases map[string]string, ns *wasm.NameSection) {
	if ns.HasModule {
		aliases["module"] = ns.Module
	}
	mergeNameMap(aliases, "func", ns.Funcs)
	mergeNameMap(aliases, "type", ns.Types)
	mergeNameMap(aliases, "table", ns.Tables)
	mergeNameMap(aliases, "memory", ns.Memories)
	mergeNameMap(aliases, "global", ns.Globals)
	mergeNameMap(aliases, "elem", ns.Elems)
	mergeNameMap(aliases, "data", ns.Datas)
	mergeNameMap(aliases, "tag", ns.Tags)
}

func mergeNameMap(aliases map[string]string, kind string, entries []wasm.NameEntry) {
	for _, e := range entries {
		aliases[kind+" "+strconv.FormatUint(uint64(e.Index), 10)] = e.Name
	}
}
