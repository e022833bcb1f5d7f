package domain

import (
	"errors"
	"testing"
)

// TestRepScheme_RoundTrip verifies the round-trip law: decoding an encoded
// scheme yields the original scheme for every kind.
func TestRepScheme_RoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		scheme   RepScheme
		setCount int
		encoded  string
	}{
		{"fixed reps", NewFixedScheme("12"), 4, "12"},
		{"timed hold", NewTimedScheme("45"), 3, "45"},
		{"descending pyramid", NewPyramidScheme("12", "10", "8"), 3, "12 - 10 - 8"},
		{"ascending pyramid", NewPyramidScheme("8", "10", "12", "15"), 4, "8 - 10 - 12 - 15"},
		{"single-set pyramid", NewPyramidScheme("20"), 1, "20"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := tc.scheme.Encode(tc.setCount)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if raw != tc.encoded {
				t.Errorf("Encode = %q, want %q", raw, tc.encoded)
			}

			decoded, err := DecodeRepScheme(raw, tc.scheme.Kind, tc.setCount)
			if err != nil {
				t.Fatalf("DecodeRepScheme failed: %v", err)
			}
			if decoded.Kind != tc.scheme.Kind {
				t.Errorf("decoded kind = %q, want %q", decoded.Kind, tc.scheme.Kind)
			}
			if len(decoded.Values) != len(tc.scheme.Values) {
				t.Fatalf("decoded %d values, want %d", len(decoded.Values), len(tc.scheme.Values))
			}
			for i := range decoded.Values {
				if decoded.Values[i] != tc.scheme.Values[i] {
					t.Errorf("value[%d] = %q, want %q", i, decoded.Values[i], tc.scheme.Values[i])
				}
			}
		})
	}
}

// TestRepScheme_PyramidCountMismatch verifies that a pyramid whose value
// count disagrees with the set count is rejected on both encode and decode.
func TestRepScheme_PyramidCountMismatch(t *testing.T) {
	scheme := NewPyramidScheme("12", "10", "8")

	if _, err := scheme.Encode(4); err == nil {
		t.Error("Encode with 4 sets and 3 values: expected error, got nil")
	} else {
		var validationErr ValidationError
		if !errors.As(err, &validationErr) {
			t.Errorf("Encode error is %T, want ValidationError", err)
		}
	}

	if _, err := DecodeRepScheme("12 - 10 - 8", RepSchemePyramid, 4); err == nil {
		t.Error("DecodeRepScheme with 4 sets and 3 values: expected error, got nil")
	}
}

// TestRepScheme_FixedIgnoresSetCount verifies that fixed and timed schemes
// encode the same scalar regardless of the set count.
func TestRepScheme_FixedIgnoresSetCount(t *testing.T) {
	for _, setCount := range []int{1, 6, 12} {
		raw, err := NewFixedScheme("15").Encode(setCount)
		if err != nil {
			t.Fatalf("Encode with %d sets failed: %v", setCount, err)
		}
		if raw != "15" {
			t.Errorf("Encode with %d sets = %q, want %q", setCount, raw, "15")
		}
	}
}

// TestRepScheme_UnknownKind verifies that an unrecognized kind is rejected.
func TestRepScheme_UnknownKind(t *testing.T) {
	if _, err := DecodeRepScheme("12", RepSchemeKind("drop_set"), 3); err == nil {
		t.Error("DecodeRepScheme with unknown kind: expected error, got nil")
	}
}
