package printer

import (
	"strings"

	"github.com/wippyai/wasm-inspect/wasm"
)

// Sink receives rendered output. The renderer announces each line with
// StartLine before writing its fragments; offset is the position in the
// module binary the line corresponds to, or negative for synthetic
// lines with no binary origin.
type Sink interface {
	Write(s string)
	Newline()
	StartLine(offset int)
}

// Marker is the optional highlighting half of the sink contract. A sink
// that implements it receives zero-width semantic markers bracketing
// the text that follows them. Sinks that don't care simply don't
// implement the interface.
type Marker interface {
	StartName()
	StartLiteral()
	StartKeyword()
	StartType()
	StartComment()
	ResetColor()
}

// PartKind tags one element of a rich rendering.
type PartKind int

const (
	PartStr PartKind = iota
	PartNewline
	PartName
	PartLiteral
	PartKeyword
	PartType
	PartComment
	PartReset
)

// Part is one element of a rich rendering: a text run, a newline with
// the binary offset it was emitted at, or a zero-width semantic tag.
type Part struct {
	Text   string
	Offset int
	Kind   PartKind
}

// RangeText accumulates plain text, keeping only lines whose starting
// binary offset falls inside a byte range fixed at construction.
// Filtering is at line granularity: the offset only moves on StartLine,
// and every emission while it sits outside the window is dropped.
type RangeText struct {
	b       strings.Builder
	start   int
	end     int
	current int
}

// NewRangeText creates a text sink bound to r.
func NewRangeText(r wasm.Range) *RangeText {
	return &RangeText{start: r.Start, end: r.End}
}

func (t *RangeText) suppressed() bool {
	return t.current < t.start || t.current >= t.end
}

func (t *RangeText) Write(s string) {
	if t.suppressed() {
		return
	}
	t.b.WriteString(s)
}

func (t *RangeText) Newline() {
	if t.suppressed() {
		return
	}
	t.b.WriteByte('\n')
}

func (t *RangeText) StartLine(offset int) {
	if offset >= 0 {
		t.current = offset
	}
}

// String returns the accumulated text.
func (t *RangeText) String() string {
	return t.b.String()
}

// RangeParts accumulates tagged parts for highlighting, with the same
// line-granular range filtering as RangeText. Consecutive text writes
// with no marker between them coalesce into one PartStr run.
type RangeParts struct {
	parts   []Part
	start   int
	end     int
	current int
}

// NewRangeParts creates a rich sink bound to r.
func NewRangeParts(r wasm.Range) *RangeParts {
	return &RangeParts{start: r.Start, end: r.End}
}

func (p *RangeParts) suppressed() bool {
	return p.current < p.start || p.current >= p.end
}

func (p *RangeParts) Write(s string) {
	if p.suppressed() {
		return
	}
	if n := len(p.parts); n > 0 && p.parts[n-1].Kind == PartStr {
		p.parts[n-1].Text += s
		return
	}
	p.parts = append(p.parts, Part{Kind: PartStr, Text: s})
}

func (p *RangeParts) Newline() {
	if p.suppressed() {
		return
	}
	p.parts = append(p.parts, Part{Kind: PartNewline, Offset: p.current})
}

func (p *RangeParts) StartLine(offset int) {
	if offset >= 0 {
		p.current = offset
	}
}

func (p *RangeParts) mark(kind PartKind) {
	if p.suppressed() {
		return
	}
	p.parts = append(p.parts, Part{Kind: kind})
}

func (p *RangeParts) StartName()    { p.mark(PartName) }
func (p *RangeParts) StartLiteral() { p.mark(PartLiteral) }
func (p *RangeParts) StartKeyword() { p.mark(PartKeyword) }
func (p *RangeParts) StartType()    { p.mark(PartType) }
func (p *RangeParts) StartComment() { p.mark(PartComment) }
func (p *RangeParts) ResetColor()   { p.mark(PartReset) }

// Parts returns the accumulated sequence.
func (p *RangeParts) Parts() []Part {
	return p.parts
}

// Text concatenates the text runs, rendering newlines and dropping
// tags. It equals what a RangeText over the same range would hold.
func (p *RangeParts) Text() string {
	var b strings.Builder
	for _, part := range p.parts {
		switch part.Kind {
		case PartStr:
			b.WriteString(part.Text)
		case PartNewline:
			b.WriteByte('\n')
		}
	}
	return b.String()
}
