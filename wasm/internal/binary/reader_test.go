package binary

import (
	"errors"
	"testing"
)

func TestVarintRoundTrip(t *testing.T) {
	u32s := []uint32{0, 1, 127, 128, 624485, 0xFFFFFFFF}
	s64s := []int64{0, 1, -1, 63, -64, 64, -65, 624485, -624485, 1<<62 - 1, -(1 << 62)}

	w := NewWriter()
	for _, v := range u32s {
		w.WriteU32(v)
	}
	for _, v := range s64s {
		w.WriteS64(v)
	}

	r := NewReader(w.Bytes())
	for _, want := range u32s {
		got, err := r.ReadU32()
		if err != nil {
			t.Fatalf("ReadU32: %v", err)
		}
		if got != want {
			t.Errorf("ReadU32 = %d, want %d", got, want)
		}
	}
	for _, want := range s64s {
		got, err := r.ReadS64()
		if err != nil {
			t.Fatalf("ReadS64: %v", err)
		}
		if got != want {
			t.Errorf("ReadS64 = %d, want %d", got, want)
		}
	}
	if r.Len() != 0 {
		t.Errorf("%d bytes left over", r.Len())
	}
}

func TestReaderPositions(t *testing.T) {
	r := NewReaderAt([]byte{0x01, 0x02, 0x03, 0x04}, 100)
	if r.Position() != 100 {
		t.Fatalf("Position = %d", r.Position())
	}
	if _, err := r.ReadBytes(2); err != nil {
		t.Fatal(err)
	}
	if r.Position() != 102 {
		t.Errorf("Position = %d after read", r.Position())
	}
	if got := r.Slice(100, 102); len(got) != 2 || got[0] != 0x01 {
		t.Errorf("Slice = %v", got)
	}
	if err := r.Skip(3); !errors.Is(err, ErrTruncated) {
		t.Errorf("Skip past end = %v", err)
	}
}

func TestReadU32Overflow(t *testing.T) {
	r := NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	if _, err := r.ReadU32(); !errors.Is(err, ErrOverflow) {
		t.Errorf("got %v, want overflow", err)
	}
}

func TestReadName(t *testing.T) {
	w := NewWriter()
	w.WriteName("héllo")
	r := NewReader(w.Bytes())
	got, err := r.ReadName()
	if err != nil {
		t.Fatalf("ReadName: %v", err)
	}
	if got != "héllo" {
		t.Errorf("ReadName = %q", got)
	}

	r = NewReader([]byte{2, 0xFF, 0xFE})
	if _, err := r.ReadName(); err == nil {
		t.Error("expected error for invalid UTF-8")
	}
}
