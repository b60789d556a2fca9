package token

import (
	"testing"
)

func TestTokenizeBasic(t *testing.T) {
	tokens := Tokenize(`(module (func $add (param i32)))`)

	want := []struct {
		value string
		typ   Type
	}{
		{"(", LParen}, {"module", Ident},
		{"(", LParen}, {"func", Ident}, {"$add", Ident},
		{"(", LParen}, {"param", Ident}, {"i32", Ident}, {")", RParen},
		{")", RParen}, {")", RParen},
	}

	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i].Value != w.value || tokens[i].Type != w.typ {
			t.Errorf("token %d = {%q %v}, want {%q %v}",
				i, tokens[i].Value, tokens[i].Type, w.value, w.typ)
		}
	}
}

func TestTokenizeComments(t *testing.T) {
	tokens := Tokenize(`
		;; line comment
		(module (; block (; nested ;) comment ;) )
	`)
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3: %v", len(tokens), tokens)
	}
	if tokens[1].Value != "module" {
		t.Errorf("token 1 = %q, want module", tokens[1].Value)
	}
}

func TestTokenizeNumbers(t *testing.T) {
	tests := []struct {
		src   string
		value string
		typ   Type
	}{
		{"42", "42", Number},
		{"-17", "-17", Number},
		{"0xFF", "0xFF", Number},
		{"1_000", "1_000", Number},
		{"3.14", "3.14", Number},
		{"1e10", "1e10", Number},
		{"0x1p-3", "0x1p-3", Number},
		{"-inf", "-inf", Ident},
		{"+nan:0x400", "+nan:0x400", Ident},
		{"nan", "nan", Ident},
	}
	for _, tt := range tests {
		tokens := Tokenize(tt.src)
		if len(tokens) != 1 {
			t.Errorf("%q: got %d tokens, want 1", tt.src, len(tokens))
			continue
		}
		if tokens[0].Value != tt.value || tokens[0].Type != tt.typ {
			t.Errorf("%q = {%q %v}, want {%q %v}",
				tt.src, tokens[0].Value, tokens[0].Type, tt.value, tt.typ)
		}
	}
}

func TestTokenizeStrings(t *testing.T) {
	tokens := Tokenize(`(data "hi \"there\" \00")`)
	if len(tokens) != 4 {
		t.Fatalf("got %d tokens, want 4: %v", len(tokens), tokens)
	}
	if tokens[2].Type != String {
		t.Fatalf("token 2 type = %v, want string", tokens[2].Type)
	}
	// escapes stay raw for the parser to decode
	if tokens[2].Value != `hi \"there\" \00` {
		t.Errorf("string value = %q", tokens[2].Value)
	}
}

func TestTokenizePositions(t *testing.T) {
	tokens := Tokenize("(module\n  (func))")
	if tokens[0].Line != 1 || tokens[0].Col != 1 {
		t.Errorf("token 0 at %d:%d, want 1:1", tokens[0].Line, tokens[0].Col)
	}
	// "(func" opens at line 2, column 3
	if tokens[2].Line != 2 || tokens[2].Col != 3 {
		t.Errorf("token 2 at %d:%d, want 2:3", tokens[2].Line, tokens[2].Col)
	}
}

func TestTokenizeOffsetEquals(t *testing.T) {
	tokens := Tokenize("i32.load offset=4 align=2")
	if len(tokens) != 3 {
		t.Fatalf("got %d tokens, want 3: %v", len(tokens), tokens)
	}
	if tokens[1].Value != "offset=4" || tokens[1].Type != Ident {
		t.Errorf("token 1 = {%q %v}", tokens[1].Value, tokens[1].Type)
	}
}
