package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// Errors returned by Reader methods.
var (
	ErrOverflow  = errors.New("leb128: overflow")
	ErrTruncated = errors.New("unexpected end of data")
)

// Reader reads WASM binary primitives from a byte slice while tracking the
// absolute offset each value was read from. The base offset lets a reader
// over a sub-slice (a section body, a function body) report positions in
// the original buffer.
type Reader struct {
	data []byte
	base int
	pos  int
}

// NewReader creates a Reader over data with positions starting at zero.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// NewReaderAt creates a Reader over data whose positions are reported
// relative to base in some enclosing buffer.
func NewReaderAt(data []byte, base int) *Reader {
	return &Reader{data: data, base: base}
}

// Position returns the absolute offset of the next byte to be read.
func (r *Reader) Position() int {
	return r.base + r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// Slice returns the bytes between two absolute positions. The returned
// slice aliases the underlying buffer. Both positions must lie within
// the region already consumed.
func (r *Reader) Slice(from, to int) []byte {
	return r.data[from-r.base : to-r.base]
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, r.wrapError(ErrTruncated)
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// PeekByte returns the next byte without advancing.
func (r *Reader) PeekByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, r.wrapError(ErrTruncated)
	}
	return r.data[r.pos], nil
}

// ReadBytes reads exactly n bytes. The returned slice aliases the
// underlying buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, r.wrapError(ErrTruncated)
	}
	buf := r.data[r.pos : r.pos+n]
	r.pos += n
	return buf, nil
}

// Skip advances past n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 || n > r.Len() {
		return r.wrapError(ErrTruncated)
	}
	r.pos += n
	return nil
}

// ReadU32 reads an unsigned LEB128 encoded uint32.
func (r *Reader) ReadU32() (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, r.wrapError(ErrOverflow)
		}
	}
}

// ReadU64 reads an unsigned LEB128 encoded uint64.
func (r *Reader) ReadU64() (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 70 {
			return 0, r.wrapError(ErrOverflow)
		}
	}
}

// ReadS32 reads a signed LEB128 encoded int32.
func (r *Reader) ReadS32() (int32, error) {
	var result int32
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= int32(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift >= 35 {
			return 0, r.wrapError(ErrOverflow)
		}
	}
	// Sign extend
	if shift < 32 && b&0x40 != 0 {
		result |= ^int32(0) << shift
	}
	return result, nil
}

// ReadS64 reads a signed LEB128 encoded int64. Also used for s33 heap
// type immediates.
func (r *Reader) ReadS64() (int64, error) {
	var result int64
	var shift uint
	var b byte
	var err error
	for {
		b, err = r.ReadByte()
		if err != nil {
			return 0, err
		}
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift >= 70 {
			return 0, r.wrapError(ErrOverflow)
		}
	}
	// Sign extend
	if shift < 64 && b&0x40 != 0 {
		result |= ^int64(0) << shift
	}
	return result, nil
}

// SkipLEB skips one LEB128 value of any width without decoding it.
func (r *Reader) SkipLEB() error {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}
		if b&0x80 == 0 {
			return nil
		}
	}
}

// ReadName reads a UTF-8 encoded name (length-prefixed byte sequence).
func (r *Reader) ReadName() (string, error) {
	length, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	data, err := r.ReadBytes(int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", r.wrapError(errors.New("invalid UTF-8 in name"))
	}
	return string(data), nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadF32 reads a little-endian IEEE 754 float32 (fixed 4 bytes).
func (r *Reader) ReadF32() (float32, error) {
	bits, err := r.ReadU32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadF64 reads a little-endian IEEE 754 float64 (fixed 8 bytes).
func (r *Reader) ReadF64() (float64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf)), nil
}

// ReadRemaining reads all unread bytes.
func (r *Reader) ReadRemaining() ([]byte, error) {
	return r.ReadBytes(r.Len())
}

func (r *Reader) wrapError(err error) error {
	return fmt.Errorf("at offset %d: %w", r.Position(), err)
}

// ParseError is a decode failure with the absolute offset it occurred at.
type ParseError struct {
	Err      error
	Section  string
	Position int
}

func (e *ParseError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("wasm: %s at offset %d: %v", e.Section, e.Position, e.Err)
	}
	return fmt.Sprintf("wasm: at offset %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapError creates a ParseError at the current position.
func (r *Reader) WrapError(section string, err error) error {
	return &ParseError{
		Position: r.Position(),
		Section:  section,
		Err:      err,
	}
}
