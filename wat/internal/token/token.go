package token

// Type classifies a lexical token.
type Type int

const (
	LParen Type = iota
	RParen
	Ident
	String
	Number
)

func (t Type) String() string {
	switch t {
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Ident:
		return "identifier"
	case String:
		return "string"
	case Number:
		return "number"
	}
	return "unknown"
}

// Token is one lexical element of text format source. String values keep
// their escape sequences raw; the parser decodes them.
type Token struct {
	Value string
	Type  Type
	Line  int
	Col   int
}

type scanner struct {
	src  string
	pos  int
	line int
	col  int
}

// Tokenize splits text format source into tokens, discarding whitespace,
// line comments and nestable block comments.
func Tokenize(src string) []Token {
	s := scanner{src: src, line: 1, col: 1}
	var tokens []Token
	for {
		tok, ok := s.next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

func (s *scanner) advance() byte {
	c := s.src[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func (s *scanner) peekAt(off int) byte {
	if s.pos+off >= len(s.src) {
		return 0
	}
	return s.src[s.pos+off]
}

func (s *scanner) next() (Token, bool) {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.advance()
		case c == ';' && s.peekAt(1) == ';':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.advance()
			}
		case c == '(' && s.peekAt(1) == ';':
			s.skipBlockComment()
		default:
			return s.scanToken()
		}
	}
	return Token{}, false
}

func (s *scanner) skipBlockComment() {
	s.advance()
	s.advance()
	depth := 1
	for s.pos < len(s.src) && depth > 0 {
		if s.src[s.pos] == '(' && s.peekAt(1) == ';' {
			depth++
			s.advance()
		} else if s.src[s.pos] == ';' && s.peekAt(1) == ')' {
			depth--
			s.advance()
		}
		s.advance()
	}
}

func (s *scanner) scanToken() (Token, bool) {
	line, col := s.line, s.col
	c := s.src[s.pos]

	switch {
	case c == '(':
		s.advance()
		return Token{Value: "(", Type: LParen, Line: line, Col: col}, true
	case c == ')':
		s.advance()
		return Token{Value: ")", Type: RParen, Line: line, Col: col}, true
	case c == '"':
		return s.scanString(line, col), true
	case c == '-' || c == '+' || isDigit(c):
		return s.scanNumberOrSigned(line, col), true
	default:
		return s.scanIdent(line, col), true
	}
}

func (s *scanner) scanString(line, col int) Token {
	s.advance()
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != '"' {
		if s.src[s.pos] == '\\' && s.pos+1 < len(s.src) {
			s.advance()
		}
		s.advance()
	}
	value := s.src[start:s.pos]
	if s.pos < len(s.src) {
		s.advance()
	}
	return Token{Value: value, Type: String, Line: line, Col: col}
}

// scanNumberOrSigned handles numbers plus the signed special float
// spellings -inf, +inf, -nan and nan:0x payloads.
func (s *scanner) scanNumberOrSigned(line, col int) Token {
	start := s.pos
	c := s.src[s.pos]
	if c == '-' || c == '+' {
		rest := s.src[s.pos+1:]
		if hasPrefix(rest, "inf") || hasPrefix(rest, "nan") {
			tok := s.scanIdent(line, col)
			return tok
		}
		s.advance()
	}
	for s.pos < len(s.src) && isNumberChar(s.src[s.pos], s.src, start, s.pos) {
		s.advance()
	}
	return Token{Value: s.src[start:s.pos], Type: Number, Line: line, Col: col}
}

func (s *scanner) scanIdent(line, col int) Token {
	start := s.pos
	for s.pos < len(s.src) && isIdentChar(s.src[s.pos]) {
		s.advance()
	}
	if s.pos == start {
		// Unknown byte, consume it so the scanner always progresses.
		s.advance()
	}
	return Token{Value: s.src[start:s.pos], Type: Ident, Line: line, Col: col}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexLetter(c byte) bool {
	return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isNumberChar(c byte, src string, start, pos int) bool {
	if isDigit(c) || isHexLetter(c) || c == '.' || c == '_' ||
		c == 'x' || c == 'X' || c == 'p' || c == 'P' {
		return true
	}
	// Exponent signs are part of the number only right after e/E/p/P.
	if (c == '-' || c == '+') && pos > start {
		prev := src[pos-1]
		return prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P'
	}
	return false
}

func isIdentChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', isDigit(c):
		return true
	}
	switch c {
	case '$', '_', '.', '-', '+', '*', '/', '\\', '^', '~', '=', '<', '>',
		'!', '?', '@', '#', '%', '&', '|', ':', '\'', '`':
		return true
	}
	return false
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
