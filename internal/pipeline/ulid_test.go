package pipeline

import (
	"strings"
	"testing"
)

func TestGenerateULID_FormatAndOrder(t *testing.T) {
	prev := ""
	seen := make(map[string]bool)
	for range 1000 {
		id := generateULID()
		if len(id) != 26 {
			t.Fatalf("expected 26 chars, got %d (%q)", len(id), id)
		}
		for _, c := range id {
			if !strings.ContainsRune(crockford, c) {
				t.Fatalf("unexpected character %q in %q", c, id)
			}
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		if id[:10] < prev {
			t.Fatalf("timestamp prefix went backwards: %q after %q", id[:10], prev)
		}
		prev = id[:10]
	}
}

func TestEncodeULID(t *testing.T) {
	var zero [16]byte
	if got := encodeULID(zero); got != strings.Repeat("0", 26) {
		t.Errorf("expected all zeros, got %q", got)
	}

	var ones [16]byte
	for i := range ones {
		ones[i] = 0xFF
	}
	if got := encodeULID(ones); got != "7"+strings.Repeat("Z", 25) {
		t.Errorf("expected max ULID, got %q", got)
	}

	var one [16]byte
	one[15] = 1
	if got := encodeULID(one); got != strings.Repeat("0", 25)+"1" {
		t.Errorf("expected trailing 1, got %q", got)
	}
}
