package parser

import (
	"math"
	"strconv"
	"strings"

	"github.com/wippyai/wasm-inspect/errors"
	"github.com/wippyai/wasm-inspect/wat/internal/token"
)

const stringTokenType = token.String

func errIndex(what string, idx uint32) error {
	return errors.NewSyntaxError(0, 0, "%s index %d out of range", what, idx)
}

func errTypeUseMismatch(idx uint32) error {
	return errors.NewSyntaxError(0, 0, "inline signature disagrees with type %d", idx)
}

func (p *Parser) resolveIdx(n *node, space map[string]uint32, what string) (uint32, error) {
	if n.isList() {
		return 0, n.errf("expected %s index", what)
	}
	v := n.tok.Value
	if isName(v) {
		if idx, ok := space[v]; ok {
			return idx, nil
		}
		return 0, n.errf("unknown %s %s", what, v)
	}
	return parseU32Tok(n.tok)
}

func stringAtom(n *node) (string, error) {
	if n.isList() || n.tok.Type != token.String {
		return "", n.errf("expected string literal")
	}
	raw, err := unescape(n.tok)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// unescape decodes the escape sequences of a raw string token.
func unescape(t *token.Token) ([]byte, error) {
	s := t.Value
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(s) {
			return nil, errors.NewSyntaxError(t.Line, t.Col, "trailing backslash in string")
		}
		switch e := s[i]; e {
		case 't':
			out = append(out, '\t')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case '"', '\'', '\\':
			out = append(out, e)
		case 'u':
			if i+1 >= len(s) || s[i+1] != '{' {
				return nil, errors.NewSyntaxError(t.Line, t.Col, "malformed unicode escape")
			}
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return nil, errors.NewSyntaxError(t.Line, t.Col, "malformed unicode escape")
			}
			code, err := strconv.ParseUint(s[i+2:i+end], 16, 32)
			if err != nil {
				return nil, errors.NewSyntaxError(t.Line, t.Col, "malformed unicode escape")
			}
			out = append(out, string(rune(code))...)
			i += end
		default:
			if i+1 >= len(s) {
				return nil, errors.NewSyntaxError(t.Line, t.Col, "malformed hex escape")
			}
			b, err := strconv.ParseUint(s[i:i+2], 16, 8)
			if err != nil {
				return nil, errors.NewSyntaxError(t.Line, t.Col, "malformed hex escape")
			}
			out = append(out, byte(b))
			i++
		}
	}
	return out, nil
}

func numericValue(t *token.Token) string {
	return strings.ReplaceAll(t.Value, "_", "")
}

func parseUintAtom(n *node) (uint64, error) {
	if n.isList() || n.tok.Type != token.Number {
		return 0, n.errf("expected unsigned integer")
	}
	v, err := strconv.ParseUint(numericValue(n.tok), 0, 64)
	if err != nil {
		return 0, n.errf("invalid integer %q", n.tok.Value)
	}
	return v, nil
}

func parseU32Tok(t *token.Token) (uint32, error) {
	v, err := strconv.ParseUint(strings.ReplaceAll(t.Value, "_", ""), 0, 32)
	if err != nil {
		return 0, errors.NewSyntaxError(t.Line, t.Col, "invalid index %q", t.Value)
	}
	return uint32(v), nil
}

// parseI32Tok accepts both signed and unsigned spellings of a 32-bit
// integer, as the text format does.
func parseI32Tok(t *token.Token) (int32, error) {
	s := strings.ReplaceAll(t.Value, "_", "")
	if v, err := strconv.ParseInt(s, 0, 32); err == nil {
		return int32(v), nil
	}
	if v, err := strconv.ParseUint(s, 0, 32); err == nil {
		return int32(v), nil
	}
	return 0, errors.NewSyntaxError(t.Line, t.Col, "invalid i32 literal %q", t.Value)
}

func parseI64Tok(t *token.Token) (int64, error) {
	s := strings.ReplaceAll(t.Value, "_", "")
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return v, nil
	}
	if v, err := strconv.ParseUint(s, 0, 64); err == nil {
		return int64(v), nil
	}
	return 0, errors.NewSyntaxError(t.Line, t.Col, "invalid i64 literal %q", t.Value)
}

func parseF64Tok(t *token.Token) (float64, error) {
	s := strings.ReplaceAll(t.Value, "_", "")
	if v, ok := specialFloat(s); ok {
		return v, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.NewSyntaxError(t.Line, t.Col, "invalid float literal %q", t.Value)
	}
	return v, nil
}

func parseF32Tok(t *token.Token) (float32, error) {
	s := strings.ReplaceAll(t.Value, "_", "")
	if v, ok := specialFloat(s); ok {
		return float32(v), nil
	}
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, errors.NewSyntaxError(t.Line, t.Col, "invalid float literal %q", t.Value)
	}
	return float32(v), nil
}

func specialFloat(s string) (float64, bool) {
	neg := false
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	} else if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	switch {
	case s == "inf":
		if neg {
			return math.Inf(-1), true
		}
		return math.Inf(1), true
	case s == "nan" || strings.HasPrefix(s, "nan:"):
		// payload spellings all map to the canonical NaN
		return math.NaN(), true
	}
	return 0, false
}
