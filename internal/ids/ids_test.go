package ids

import "testing"

func TestGenerateMonotonic(t *testing.T) {
	prev := Generate()
	for i := 0; i < 1000; i++ {
		next := Generate()
		if next <= prev {
			t.Fatalf("id went backwards: prev=%d next=%d", prev, next)
		}
		prev = next
	}
}

func TestGenerateStringIsNonEmpty(t *testing.T) {
	s := GenerateString()
	if len(s) == 0 {
		t.Fatal("expected non-empty id string")
	}
}

func TestSetNodeIDClampsOutOfRange(t *testing.T) {
	SetNodeID(5000)
	if defaultGen.nodeID != 1 {
		t.Fatalf("expected out-of-range node id to clamp to 1, got %d", defaultGen.nodeID)
	}
	SetNodeID(7)
	if defaultGen.nodeID != 7 {
		t.Fatalf("expected node id 7, got %d", defaultGen.nodeID)
	}
}

func TestNewTraceIDLength(t *testing.T) {
	id := NewTraceID()
	if len(id) != 32 {
		t.Fatalf("expected 32 hex chars, got %d (%q)", len(id), id)
	}
	for _, c := range id {
		isHex := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')
		if !isHex {
			t.Fatalf("non-hex character in trace id: %q", id)
		}
	}
}

func TestNewTraceIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		id := NewTraceID()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate trace id generated: %s", id)
		}
		seen[id] = struct{}{}
	}
}
