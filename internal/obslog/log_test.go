package obslog

import (
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

type buf struct {
	strings.Builder
}

func (b *buf) Sync() error { return nil }

func TestEventEmitsSchemaFields(t *testing.T) {
	var b buf
	l := New(zapcore.AddSync(&b), zapcore.DebugLevel)

	Event(l, zapcore.InfoLevel, "packet_received", "decoded frame",
		TraceID("abc123"), SessionID(42), PacketType(1), ProtocolVersion(3), Bytes(128))

	line := strings.TrimSpace(b.String())
	if line == "" {
		t.Fatal("expected a log line to be written")
	}

	var rec map[string]any
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("log line is not valid JSON: %v (%s)", err, line)
	}

	for _, key := range []string{"timestamp", "level", "event", "message", "trace_id", "session_id", "packet_type", "protocol_version", "bytes"} {
		if _, ok := rec[key]; !ok {
			t.Errorf("missing expected field %q in log record: %v", key, rec)
		}
	}

	if rec["event"] != "packet_received" {
		t.Errorf("expected event=packet_received, got %v", rec["event"])
	}
	if rec["message"] != "decoded frame" {
		t.Errorf("expected message=decoded frame, got %v", rec["message"])
	}
}

func TestLevelHelpersDoNotPanic(t *testing.T) {
	var b buf
	old := Log
	Log = New(zapcore.AddSync(&b), zapcore.DebugLevel)
	defer func() { Log = old }()

	Info("x", "info msg")
	Warn("x", "warn msg")
	Error("x", "error msg")
	Debug("x", "debug msg")

	if strings.Count(b.String(), "\n") < 4 {
		t.Fatalf("expected 4 log lines, got: %q", b.String())
	}
}
