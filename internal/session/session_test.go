package session

import (
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		BucketCapacity:      1000,
		BucketRefillPerSec:  1000,
		SendQueueLimitBytes: 100,
		OverflowPolicy:      DropOldest,
		HeartbeatInterval:   10 * time.Second,
		Timeout:             30 * time.Second,
	}
}

func TestEnqueueDequeueFIFO(t *testing.T) {
	now := time.Now()
	s := New(1, "trace-1", testConfig(), now)

	if !s.EnqueueSend([]byte("a"), now) {
		t.Fatal("expected first enqueue to succeed")
	}
	if !s.EnqueueSend([]byte("b"), now) {
		t.Fatal("expected second enqueue to succeed")
	}

	p1, ok1 := s.DequeueSend()
	p2, ok2 := s.DequeueSend()
	_, ok3 := s.DequeueSend()

	if !ok1 || !ok2 || ok3 {
		t.Fatalf("unexpected dequeue results: ok1=%v ok2=%v ok3=%v", ok1, ok2, ok3)
	}
	if string(p1) != "a" || string(p2) != "b" {
		t.Fatalf("expected FIFO order, got %q then %q", p1, p2)
	}
}

func TestQueuedBytesInvariant(t *testing.T) {
	now := time.Now()
	s := New(1, "trace-1", testConfig(), now)
	s.EnqueueSend([]byte("abc"), now)
	s.EnqueueSend([]byte("de"), now)
	if s.QueuedBytes() != 5 {
		t.Fatalf("expected queued bytes 5, got %d", s.QueuedBytes())
	}
	s.DequeueSend()
	if s.QueuedBytes() != 2 {
		t.Fatalf("expected queued bytes 2 after dequeue, got %d", s.QueuedBytes())
	}
}

func TestEnqueueFailsAfterDisconnect(t *testing.T) {
	now := time.Now()
	s := New(1, "trace-1", testConfig(), now)
	s.Disconnect("test")
	if s.EnqueueSend([]byte("x"), now) {
		t.Fatal("expected enqueue to fail once disconnected")
	}
}

func TestEnqueueFailsWhenRateLimited(t *testing.T) {
	now := time.Now()
	cfg := testConfig()
	cfg.BucketCapacity = 5
	cfg.BucketRefillPerSec = 0
	s := New(1, "trace-1", cfg, now)
	if !s.EnqueueSend([]byte("abcde"), now) {
		t.Fatal("expected first 5-byte payload to fit the bucket")
	}
	if s.EnqueueSend([]byte("f"), now) {
		t.Fatal("expected second payload to be rate limited")
	}
}

func TestDropOldestOverflowPolicy(t *testing.T) {
	now := time.Now()
	cfg := testConfig()
	cfg.SendQueueLimitBytes = 10
	s := New(1, "trace-1", cfg, now)

	s.EnqueueSend([]byte("0123456789"), now) // fills exactly to the limit
	if !s.EnqueueSend([]byte("AB"), now) {
		t.Fatal("expected DropOldest to make room and accept the new payload")
	}
	p, ok := s.DequeueSend()
	if !ok {
		t.Fatal("expected a remaining payload after drop-oldest eviction")
	}
	if s.QueuedBytes()+int64(len(p)) > cfg.SendQueueLimitBytes {
		t.Fatalf("expected total queued bytes to respect the limit")
	}
}

func TestDropNewestOverflowPolicyRejectsWithoutMutatingQueue(t *testing.T) {
	now := time.Now()
	cfg := testConfig()
	cfg.SendQueueLimitBytes = 5
	cfg.OverflowPolicy = DropNewest
	s := New(1, "trace-1", cfg, now)

	s.EnqueueSend([]byte("12345"), now)
	before := s.QueuedBytes()
	if s.EnqueueSend([]byte("x"), now) {
		t.Fatal("expected DropNewest to reject the overflowing payload")
	}
	if s.QueuedBytes() != before {
		t.Fatalf("expected queue unchanged after DropNewest rejection, got %d want %d", s.QueuedBytes(), before)
	}
}

func TestDisconnectOverflowPolicyDisconnectsSession(t *testing.T) {
	now := time.Now()
	cfg := testConfig()
	cfg.SendQueueLimitBytes = 5
	cfg.OverflowPolicy = Disconnect
	s := New(1, "trace-1", cfg, now)

	s.EnqueueSend([]byte("12345"), now)
	if s.EnqueueSend([]byte("x"), now) {
		t.Fatal("expected Disconnect policy to reject the overflowing payload")
	}
	if s.IsConnected() {
		t.Fatal("expected session to be disconnected after overflow")
	}
	if s.DisconnectReason() != "send queue overflow" {
		t.Fatalf("expected disconnect reason 'send queue overflow', got %q", s.DisconnectReason())
	}
}

func TestTickDisconnectsOnTimeoutIgnoringSendActivity(t *testing.T) {
	now := time.Now()
	cfg := testConfig()
	cfg.Timeout = 5 * time.Second
	s := New(1, "trace-1", cfg, now)

	// Sends happen, but no further receives: tick should still time out
	// purely off last_receive, matching the documented quirk that sends
	// don't refresh the timeout clock.
	later := now.Add(1 * time.Second)
	s.EnqueueSend([]byte("keepalive-ish"), later)

	expired := now.Add(10 * time.Second)
	alive := s.Tick(expired)
	if alive {
		t.Fatal("expected session to be disconnected after exceeding idle timeout")
	}
	if s.DisconnectReason() != "timeout" {
		t.Fatalf("expected disconnect reason 'timeout', got %q", s.DisconnectReason())
	}
}

func TestTickKeepsAliveSessionConnected(t *testing.T) {
	now := time.Now()
	s := New(1, "trace-1", testConfig(), now)
	soon := now.Add(1 * time.Second)
	if !s.Tick(soon) {
		t.Fatal("expected session to remain alive within the timeout window")
	}
}

func TestShouldSendHeartbeat(t *testing.T) {
	now := time.Now()
	cfg := testConfig()
	cfg.HeartbeatInterval = 2 * time.Second
	s := New(1, "trace-1", cfg, now)

	if s.ShouldSendHeartbeat(now.Add(1 * time.Second)) {
		t.Fatal("expected no heartbeat due yet")
	}
	if !s.ShouldSendHeartbeat(now.Add(3 * time.Second)) {
		t.Fatal("expected heartbeat due after the interval elapses")
	}
	s.MarkHeartbeatSent(now.Add(3 * time.Second))
	if s.ShouldSendHeartbeat(now.Add(4 * time.Second)) {
		t.Fatal("expected heartbeat clock reset after MarkHeartbeatSent")
	}
}

func TestUserContextAttachClear(t *testing.T) {
	now := time.Now()
	s := New(1, "trace-1", testConfig(), now)
	if s.UserContext() != nil {
		t.Fatal("expected no user context initially")
	}
	s.AttachUserContext(&UserContext{UserID: "u-1", Token: "t-1"})
	if s.UserContext().UserID != "u-1" {
		t.Fatal("expected attached user context to be readable")
	}
	s.ClearUserContext()
	if s.UserContext() != nil {
		t.Fatal("expected user context cleared")
	}
}

func TestProtocolVersionAndLastSeq(t *testing.T) {
	now := time.Now()
	s := New(1, "trace-1", testConfig(), now)
	s.SetProtocolVersion(3)
	if s.ProtocolVersion() != 3 {
		t.Fatal("expected protocol version round trip")
	}
	s.SetLastSeq(42)
	if s.LastSeq() != 42 {
		t.Fatal("expected last seq round trip")
	}
}
