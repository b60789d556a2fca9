package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:   PhaseParse,
				Kind:    KindInvalidData,
				Path:    []string{"elem", "2", "offset"},
				Section: "element",
				Offset:  0x4a,
				Detail:  "non-constant opcode",
			},
			contains: []string{"[parse]", "invalid_data", "elem.2.offset", "element section", "0x4a", "non-constant opcode"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase:  PhaseIndex,
				Kind:   KindOutOfBounds,
				Offset: -1,
			},
			contains: []string{"[index]", "out_of_bounds"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseValidate,
				Kind:   KindTruncated,
				Offset: -1,
				Detail: "code section",
				Cause:  errors.New("unexpected end of data"),
			},
			contains: []string{"[validate]", "truncated", "code section", "caused by", "unexpected end of data"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !containsSubstring(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_OffsetZeroPrinted(t *testing.T) {
	err := &Error{Phase: PhaseParse, Kind: KindTruncated, Offset: 0}
	if !containsSubstring(err.Error(), "offset 0x0") {
		t.Errorf("offset zero should be printed, got %q", err.Error())
	}

	err = &Error{Phase: PhaseParse, Kind: KindTruncated, Offset: -1}
	if containsSubstring(err.Error(), "offset") {
		t.Errorf("negative offset should be omitted, got %q", err.Error())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Offset: -1,
		Cause:  cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	// Test with errors.Unwrap
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase:  PhaseParse,
		Kind:   KindTruncated,
		Offset: -1,
		Path:   []string{"foo"},
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhaseParse, Kind: KindTruncated}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseIndex, Kind: KindTruncated}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhaseParse, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	// Test with errors.Is
	target := &Error{Phase: PhaseParse, Kind: KindTruncated}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseParse, KindInvalidData).
		Path("global", "1").
		Section("global").
		Offset(0x3f).
		Value(byte(0x07)).
		Cause(cause).
		Detail("mutability flag %d out of range", 7).
		Build()

	if err.Phase != PhaseParse {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseParse)
	}
	if err.Kind != KindInvalidData {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidData)
	}
	if len(err.Path) != 2 || err.Path[0] != "global" || err.Path[1] != "1" {
		t.Errorf("Path = %v, want [global 1]", err.Path)
	}
	if err.Section != "global" {
		t.Errorf("Section = %v, want 'global'", err.Section)
	}
	if err.Offset != 0x3f {
		t.Errorf("Offset = %v, want 0x3f", err.Offset)
	}
	if err.Value != byte(0x07) {
		t.Errorf("Value = %v, want 0x07", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "mutability flag 7 out of range" {
		t.Errorf("Detail = %v, want 'mutability flag 7 out of range'", err.Detail)
	}
}

func TestBuilder_DefaultOffset(t *testing.T) {
	err := New(PhasePrint, KindUnsupported).Build()
	if err.Offset != -1 {
		t.Errorf("Offset = %v, want -1 by default", err.Offset)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Truncated", func(t *testing.T) {
		err := Truncated(PhaseParse, "code", 0x128)
		if err.Kind != KindTruncated {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTruncated)
		}
		if err.Section != "code" || err.Offset != 0x128 {
			t.Errorf("Section=%v Offset=%v", err.Section, err.Offset)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseValidate, []string{"export", "run"}, 10, 5)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != 10 {
			t.Errorf("Value = %v, want 10", err.Value)
		}
	})

	t.Run("OutOfOrder", func(t *testing.T) {
		err := OutOfOrder("type", "import", 0x20)
		if err.Kind != KindOutOfOrder {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfOrder)
		}
		if !containsSubstring(err.Detail, "import") {
			t.Errorf("Detail = %v, should name the preceding section", err.Detail)
		}
	})

	t.Run("CountMismatch", func(t *testing.T) {
		err := CountMismatch("function body", 3, 2)
		if err.Kind != KindCountMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindCountMismatch)
		}
		if !containsSubstring(err.Detail, "3") || !containsSubstring(err.Detail, "2") {
			t.Errorf("Detail = %v, should contain both counts", err.Detail)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseCompile, "exception handling")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		data := []byte{0xff, 0xfe}
		err := InvalidUTF8(PhaseParse, "export", data)
		if err.Kind != KindInvalidUTF8 {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidUTF8)
		}
		if !containsSubstring(err.Detail, "fffe") {
			t.Errorf("Detail = %v, should contain hex preview", err.Detail)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseParse, "memory", 0x19)
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		err := Duplicate(PhaseValidate, "export", "run")
		if err.Kind != KindDuplicate {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDuplicate)
		}
		if err.Value != "run" {
			t.Errorf("Value = %v, want 'run'", err.Value)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseAlias, "function", "compute")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
	})

	t.Run("InvalidData", func(t *testing.T) {
		err := InvalidData(PhaseParse, "table", 0x30, "reserved flags")
		if err.Kind != KindInvalidData {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidData)
		}
		if err.Offset != 0x30 {
			t.Errorf("Offset = %v, want 0x30", err.Offset)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("leb128: overflow")
		err := Wrap(PhaseIndex, KindOverflow, cause, "section size")
		if !errors.Is(err, cause) {
			t.Error("wrapped error should match cause via errors.Is")
		}
	})

	t.Run("ParseFailed", func(t *testing.T) {
		cause := errors.New("unexpected end of data")
		err := ParseFailed("import section", cause)
		if err.Phase != PhaseParse {
			t.Errorf("Phase = %v, want %v", err.Phase, PhaseParse)
		}
		if !errors.Is(err, cause) {
			t.Error("ParseFailed should wrap cause")
		}
	})

	t.Run("Load", func(t *testing.T) {
		cause := errors.New("bad magic")
		err := Load("read module", cause)
		if err.Phase != PhaseLoad {
			t.Errorf("Phase = %v, want %v", err.Phase, PhaseLoad)
		}
	})
}

func TestSyntaxError(t *testing.T) {
	err := NewSyntaxError(3, 14, "expected %q, found %q", ")", "func")

	msg := err.Error()
	if !containsSubstring(msg, "3:14") {
		t.Errorf("error should contain position, got %q", msg)
	}
	if !containsSubstring(msg, `expected ")", found "func"`) {
		t.Errorf("error should contain formatted detail, got %q", msg)
	}

	if !errors.Is(err, &SyntaxError{}) {
		t.Error("errors.Is should match SyntaxError")
	}
}

func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && containsSubstringHelper(s, substr)))
}

func containsSubstringHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
