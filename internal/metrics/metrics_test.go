package metrics

import "testing"

func TestCountersAccumulate(t *testing.T) {
	m := New()
	m.IncPackets()
	m.IncPackets()
	m.AddBytes(128)
	m.IncErrors()

	snap := m.Snapshot()
	if snap.PacketsTotal != 2 {
		t.Fatalf("expected 2 packets, got %d", snap.PacketsTotal)
	}
	if snap.BytesTotal != 128 {
		t.Fatalf("expected 128 bytes, got %d", snap.BytesTotal)
	}
	if snap.ErrorTotal != 1 {
		t.Fatalf("expected 1 error, got %d", snap.ErrorTotal)
	}
}
