package session

import (
	"testing"
	"time"
)

func newTestSession(id uint64) *Session {
	return New(id, "trace", testConfig(), time.Now())
}

func TestRegistryBindUserEvictsPriorSession(t *testing.T) {
	r := NewRegistry()
	s1 := newTestSession(1)
	s2 := newTestSession(2)
	r.Add(s1)
	r.Add(s2)

	if evicted := r.BindUser("u-1", s1.ID()); evicted != nil {
		t.Fatal("expected no eviction on first bind")
	}
	evicted := r.BindUser("u-1", s2.ID())
	if evicted != s1 {
		t.Fatalf("expected session 1 to be evicted when user rebinds, got %v", evicted)
	}

	bound, ok := r.GetByUser("u-1")
	if !ok || bound.ID() != s2.ID() {
		t.Fatalf("expected u-1 bound to session 2, got %+v ok=%v", bound, ok)
	}
}

func TestRegistryRemoveReleasesUserBinding(t *testing.T) {
	r := NewRegistry()
	s := newTestSession(1)
	r.Add(s)
	s.AttachUserContext(&UserContext{UserID: "u-1"})
	r.BindUser("u-1", s.ID())

	r.Remove(s.ID())

	if _, ok := r.Get(s.ID()); ok {
		t.Fatal("expected session removed")
	}
	if _, ok := r.GetByUser("u-1"); ok {
		t.Fatal("expected user binding released on remove")
	}
}

func TestRegistrySnapshotCount(t *testing.T) {
	r := NewRegistry()
	r.Add(newTestSession(1))
	r.Add(newTestSession(2))
	r.Add(newTestSession(3))

	if r.Count() != 3 {
		t.Fatalf("expected count 3, got %d", r.Count())
	}
	if len(r.Snapshot()) != 3 {
		t.Fatalf("expected snapshot length 3, got %d", len(r.Snapshot()))
	}
}
