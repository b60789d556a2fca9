package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // binary decoding
	PhaseIndex    Phase = "index"    // structural item indexing
	PhaseAlias    Phase = "alias"    // name section resolution
	PhasePrint    Phase = "print"    // textual rendering
	PhaseValidate Phase = "validate" // module validation
	PhaseCompile  Phase = "compile"  // text format compilation
	PhaseLoad     Phase = "load"     // input loading
)

// Kind categorizes the error
type Kind string

const (
	KindInvalidData   Kind = "invalid_data"
	KindTruncated     Kind = "truncated"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindOutOfOrder    Kind = "out_of_order"
	KindCountMismatch Kind = "count_mismatch"
	KindUnsupported   Kind = "unsupported"
	KindInvalidUTF8   Kind = "invalid_utf8"
	KindOverflow      Kind = "overflow"
	KindDuplicate     Kind = "duplicate"
	KindNotFound      Kind = "not_found"
	KindInvalidInput  Kind = "invalid_input"
	KindSyntax        Kind = "syntax"
)

// Error is the structured error type used throughout the inspector
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Section string
	Detail  string
	Path    []string
	Offset  int // byte offset into the module, -1 when not applicable
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Section != "" {
		b.WriteString(" in ")
		b.WriteString(e.Section)
		b.WriteString(" section")
	}

	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset 0x%x", e.Offset)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase:  phase,
			Kind:   kind,
			Offset: -1,
		},
	}
}

// Path sets the item path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Section sets the section name
func (b *Builder) Section(name string) *Builder {
	b.err.Section = name
	return b
}

// Offset sets the byte offset into the module
func (b *Builder) Offset(off int) *Builder {
	b.err.Offset = off
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Truncated creates an unexpected-end-of-data error
func Truncated(phase Phase, section string, offset int) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTruncated,
		Section: section,
		Offset:  offset,
		Detail:  "unexpected end of data",
	}
}

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Offset: -1,
		Detail: fmt.Sprintf("index %d out of bounds (count %d)", index, length),
		Value:  index,
	}
}

// OutOfOrder creates a section ordering error
func OutOfOrder(section, after string, offset int) *Error {
	return &Error{
		Phase:   PhaseValidate,
		Kind:    KindOutOfOrder,
		Section: section,
		Offset:  offset,
		Detail:  fmt.Sprintf("must not follow %s section", after),
	}
}

// CountMismatch creates a declared-versus-actual count error
func CountMismatch(what string, declared, actual int) *Error {
	return &Error{
		Phase:  PhaseValidate,
		Kind:   KindCountMismatch,
		Offset: -1,
		Detail: fmt.Sprintf("%s count %d does not match declared %d", what, actual, declared),
		Value:  actual,
	}
}

// Unsupported creates an unsupported construct error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Offset: -1,
		Detail: what,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, section string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:   phase,
		Kind:    KindInvalidUTF8,
		Section: section,
		Offset:  -1,
		Detail:  fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// Overflow creates a varint overflow error
func Overflow(phase Phase, section string, offset int) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindOverflow,
		Section: section,
		Offset:  offset,
		Detail:  "varint exceeds encodable range",
	}
}

// Duplicate creates a duplicate name error
func Duplicate(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Offset: -1,
		Detail: fmt.Sprintf("duplicate %s %q", what, name),
		Value:  name,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Offset: -1,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Offset: -1,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, section string, offset int, detail string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindInvalidData,
		Section: section,
		Offset:  offset,
		Detail:  detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates an input loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Offset: -1,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a binary parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Offset: -1,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}

// SyntaxError describes a failure at a position in text format source
type SyntaxError struct {
	Detail string
	Line   int
	Col    int
}

// NewSyntaxError creates a text format syntax error
func NewSyntaxError(line, col int, msg string, args ...any) *SyntaxError {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	return &SyntaxError{Line: line, Col: col, Detail: msg}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("[compile] syntax at %d:%d: %s", e.Line, e.Col, e.Detail)
}

// Is reports whether target matches this error type
func (e *SyntaxError) Is(target error) bool {
	_, ok := target.(*SyntaxError)
	return ok
}
