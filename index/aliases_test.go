package index_test

import (
	"testing"

	"github.com/wippyai/wasm-inspect/index"
	"github.com/wippyai/wasm-inspect/wasm"
)

func withNames(m *wasm.Module, ns *wasm.NameSection) *wasm.Module {
	m.CustomSections = append(m.CustomSections, wasm.CustomSection{
		Name: wasm.NameSectionName,
		Data: wasm.EncodeNameSection(ns),
	})
	return m
}

func TestAliases(t *testing.T) {
	m := withNames(fixture(), &wasm.NameSection{
		Module:    "calc",
		HasModule: true,
		Funcs: []wasm.NameEntry{
			{Index: 0, Name: "log"},
			{Index: 2, Name: "run"},
		},
		Globals: []wasm.NameEntry{{Index: 1, Name: "counter"}},
		Elems:   []wasm.NameEntry{{Index: 0, Name: "dispatch"}},
		Datas:   []wasm.NameEntry{{Index: 1, Name: "strings"}},
	})

	aliases, err := index.Aliases(m.Encode())
	if err != nil {
		t.Fatalf("Aliases: %v", err)
	}
	want := map[string]string{
		"module":   "calc",
		"func 0":   "log",
		"func 2":   "run",
		"global 1": "counter",
		"elem 0":   "dispatch",
		"data 1":   "strings",
	}
	if len(aliases) != len(want) {
		t.Errorf("aliases = %v", aliases)
	}
	for k, v := range want {
		if aliases[k] != v {
			t.Errorf("aliases[%q] = %q, want %q", k, aliases[k], v)
		}
	}
}

func TestAliasesAbsentNameSection(t *testing.T) {
	aliases, err := index.Aliases(fixture().Encode())
	if err != nil {
		t.Fatalf("Aliases: %v", err)
	}
	if len(aliases) != 0 {
		t.Errorf("aliases = %v, want none", aliases)
	}
}

func TestAliasesLastWriteWins(t *testing.T) {
	m := fixture()
	withNames(m, &wasm.NameSection{Funcs: []wasm.NameEntry{{Index: 1, Name: "first"}}})
	withNames(m, &wasm.NameSection{Funcs: []wasm.NameEntry{{Index: 1, Name: "second"}}})

	aliases, err := index.Aliases(m.Encode())
	if err != nil {
		t.Fatalf("Aliases: %v", err)
	}
	if aliases["func 1"] != "second" {
		t.Errorf(`aliases["func 1"] = %q, want "second"`, aliases["func 1"])
	}
}

func TestAliasesMalformedNameSection(t *testing.T) {
	m := fixture()
	m.CustomSections = append(m.CustomSections, wasm.CustomSection{
		Name: wasm.NameSectionName,
		Data: []byte{1, 50, 0}, // function subsection claiming 50 bytes
	})
	if _, err := index.Aliases(m.Encode()); err == nil {
		t.Error("expected error for malformed name section")
	}
}

func TestResolve(t *testing.T) {
	m := withNames(fixture(), &wasm.NameSection{
		Funcs: []wasm.NameEntry{{Index: 2, Name: "run"}},
	})
	data := m.Encode()

	items, err := index.Items(data)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	aliases, err := index.Aliases(data)
	if err != nil {
		t.Fatalf("Aliases: %v", err)
	}
	index.Resolve(items, aliases)

	byKey := itemsByKey(items)
	if got := byKey["func 2"].DisplayName; got != "run" {
		t.Errorf(`func 2 display name = %q, want "run"`, got)
	}
	// Unnamed items fall back to their raw key.
	if got := byKey["func 0"].DisplayName; got != "func 0" {
		t.Errorf(`func 0 display name = %q`, got)
	}
	if got := byKey["module"].DisplayName; got != "module" {
		t.Errorf(`module display name = %q`, got)
	}
}
