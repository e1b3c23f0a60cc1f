package config

import "testing"

func TestDefaultHasExpectedProtocolWindow(t *testing.T) {
	c := Default()
	if c.Protocol.MinVersion != 1 || c.Protocol.MaxVersion != 3 {
		t.Fatalf("expected protocol window [1,3], got [%d,%d]", c.Protocol.MinVersion, c.Protocol.MaxVersion)
	}
}

func TestDecodeOverlaysOntoDefaults(t *testing.T) {
	payload := map[string]any{
		"session": map[string]any{
			"overflow_policy": "disconnect",
		},
		"match_queue": map[string]any{
			"mmr_window": 75,
		},
	}
	c, err := Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Session.OverflowPolicy != "disconnect" {
		t.Fatalf("expected overridden overflow_policy, got %q", c.Session.OverflowPolicy)
	}
	if c.MatchQueue.MMRWindow != 75 {
		t.Fatalf("expected overridden mmr_window, got %d", c.MatchQueue.MMRWindow)
	}
	// untouched fields keep their defaults
	if c.Token.TTLSec != 300 {
		t.Fatalf("expected default token ttl 300, got %d", c.Token.TTLSec)
	}
}

func TestWatcherCurrentReflectsInitial(t *testing.T) {
	c := Default()
	w := NewWatcher(c)
	if w.Current() != c {
		t.Fatal("expected Current to return the initial config")
	}
}

func TestWatcherApplySwapsPointer(t *testing.T) {
	w := NewWatcher(Default())
	before := w.Current()
	w.apply(`{"token":{"ttl_sec":900}}`)
	after := w.Current()
	if after == before {
		t.Fatal("expected apply to swap the config pointer")
	}
	if after.Token.TTLSec != 900 {
		t.Fatalf("expected ttl_sec=900 after apply, got %d", after.Token.TTLSec)
	}
}

func TestWatcherApplyIgnoresInvalidJSON(t *testing.T) {
	w := NewWatcher(Default())
	before := w.Current()
	w.apply("not json")
	if w.Current() != before {
		t.Fatal("expected invalid payload to leave config unchanged")
	}
}
