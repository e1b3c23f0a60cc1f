// Package obslog wraps a process-wide zap.Logger configured so its JSON
// output matches the core's structured-log schema field for field:
// timestamp, level, event, message, plus the optional correlation fields
// (trace_id, session_trace_id, request_trace_id, session_id, packet_type,
// protocol_version, bytes, user_id, reason). The core only emits records
// through this package; where they end up (console, file, shipping agent)
// is decided by whoever configures the sink at process startup.
package obslog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Log *zap.Logger

func init() {
	Log = New(zapcore.AddSync(os.Stdout), zapcore.InfoLevel)
}

// New builds a logger writing JSON lines with the schema's field names to
// the given sink. The package's init uses it for the default stdout logger;
// tests call it with zaptest-style buffers.
func New(sink zapcore.WriteSyncer, level zapcore.Level) *zap.Logger {
	encCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, level)
	return zap.New(core)
}

// Event logs one structured record carrying the `event` field every
// dispatcher/session/service log line sets (e.g. "packet_received",
// "session_disconnected", "reward_granted").
func Event(l *zap.Logger, level zapcore.Level, event, message string, fields ...zap.Field) {
	all := append([]zap.Field{zap.String("event", event)}, fields...)
	switch level {
	case zapcore.DebugLevel:
		l.Debug(message, all...)
	case zapcore.WarnLevel:
		l.Warn(message, all...)
	case zapcore.ErrorLevel:
		l.Error(message, all...)
	default:
		l.Info(message, all...)
	}
}

func Info(event, message string, fields ...zap.Field)  { Event(Log, zapcore.InfoLevel, event, message, fields...) }
func Warn(event, message string, fields ...zap.Field)  { Event(Log, zapcore.WarnLevel, event, message, fields...) }
func Error(event, message string, fields ...zap.Field) { Event(Log, zapcore.ErrorLevel, event, message, fields...) }
func Debug(event, message string, fields ...zap.Field) { Event(Log, zapcore.DebugLevel, event, message, fields...) }

// Correlation field helpers kept centralized so every call site uses the
// exact key names the schema expects.
func TraceID(v string) zap.Field          { return zap.String("trace_id", v) }
func SessionTraceID(v string) zap.Field   { return zap.String("session_trace_id", v) }
func RequestTraceID(v string) zap.Field   { return zap.String("request_trace_id", v) }
func SessionID(v uint64) zap.Field        { return zap.Uint64("session_id", v) }
func PacketType(v uint16) zap.Field       { return zap.Uint16("packet_type", v) }
func ProtocolVersion(v uint16) zap.Field  { return zap.Uint16("protocol_version", v) }
func Bytes(v int) zap.Field               { return zap.Int("bytes", v) }
func UserID(v string) zap.Field           { return zap.String("user_id", v) }
func Reason(v string) zap.Field           { return zap.String("reason", v) }
