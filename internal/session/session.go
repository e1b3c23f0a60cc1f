// Package session implements the per-connection Session state machine: a
// rate-limited, bounded outbound queue with three overflow policies, the
// liveness clocks that drive heartbeats and idle timeout, and the
// SessionRegistry that enforces one live session per user.
package session

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"dungeonhub/internal/obslog"
	"dungeonhub/internal/ratelimit"
)

// OverflowPolicy selects what EnqueueSend does when the outbound queue
// would exceed its byte limit.
type OverflowPolicy int

const (
	DropNewest OverflowPolicy = iota
	DropOldest
	Disconnect
)

// UserContext is the authenticated identity attached to a session after a
// successful login.
type UserContext struct {
	UserID string
	Token  string
}

// Config carries the fixed, per-session parameters decided at creation
// time (from AppConfig) rather than mutated afterward.
type Config struct {
	BucketCapacity      int64
	BucketRefillPerSec  int64
	SendQueueLimitBytes int64
	OverflowPolicy      OverflowPolicy
	HeartbeatInterval   time.Duration
	Timeout             time.Duration
}

// Session is owned by the server for the lifetime of one connection.
type Session struct {
	mu sync.Mutex

	id              uint64
	traceID         string
	protocolVersion uint16
	connected       bool
	userCtx         *UserContext

	bucket *ratelimit.Bucket

	sendQueue           [][]byte
	queuedBytes         int64
	sendQueueLimitBytes int64
	overflowPolicy      OverflowPolicy

	heartbeatInterval time.Duration
	timeout           time.Duration
	lastReceive       time.Time
	lastHeartbeat     time.Time
	lastActivity      time.Time

	lastSeq uint64

	disconnectReason string
}

// New creates a connected session with a full token bucket and clocks
// seeded at now.
func New(id uint64, traceID string, cfg Config, now time.Time) *Session {
	return &Session{
		id:                  id,
		traceID:             traceID,
		connected:           true,
		bucket:              ratelimit.NewBucket(cfg.BucketCapacity, cfg.BucketRefillPerSec, now),
		sendQueueLimitBytes: cfg.SendQueueLimitBytes,
		overflowPolicy:      cfg.OverflowPolicy,
		heartbeatInterval:   cfg.HeartbeatInterval,
		timeout:             cfg.Timeout,
		lastReceive:         now,
		lastHeartbeat:       now,
		lastActivity:        now,
	}
}

func (s *Session) ID() uint64      { return s.id }
func (s *Session) TraceID() string { return s.traceID }

func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// OnReceive touches the liveness clocks driven by inbound traffic.
func (s *Session) OnReceive(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastReceive = now
	s.lastActivity = now
}

// EnqueueSend attempts to queue payload for outbound delivery, applying
// the rate limiter and then the configured overflow policy.
func (s *Session) EnqueueSend(payload []byte, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return false
	}

	size := int64(len(payload))
	if !s.bucket.Consume(size, now) {
		obslog.Warn("session_rate_limited", "payload rejected by token bucket",
			obslog.SessionID(s.id), obslog.SessionTraceID(s.traceID), obslog.Bytes(len(payload)))
		return false
	}

	next := s.queuedBytes + size
	if next > s.sendQueueLimitBytes {
		switch s.overflowPolicy {
		case Disconnect:
			s.disconnectLocked("send queue overflow")
			return false
		case DropOldest:
			for next > s.sendQueueLimitBytes && len(s.sendQueue) > 0 {
				dropped := s.sendQueue[0]
				s.sendQueue = s.sendQueue[1:]
				s.queuedBytes -= int64(len(dropped))
				next -= int64(len(dropped))
			}
		case DropNewest:
			obslog.Warn("session_queue_overflow", "payload dropped, queue at limit",
				obslog.SessionID(s.id), obslog.SessionTraceID(s.traceID), obslog.Bytes(len(payload)))
			return false
		}
	}

	s.sendQueue = append(s.sendQueue, payload)
	s.queuedBytes += size
	s.lastActivity = now
	return true
}

// DequeueSend removes and returns the oldest queued payload, for the
// transport writer to drain.
func (s *Session) DequeueSend() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sendQueue) == 0 {
		return nil, false
	}
	payload := s.sendQueue[0]
	s.sendQueue = s.sendQueue[1:]
	s.queuedBytes -= int64(len(payload))
	return payload, true
}

// QueuedBytes reports the current sum of queued payload sizes.
func (s *Session) QueuedBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queuedBytes
}

func (s *Session) ShouldSendHeartbeat(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected && now.Sub(s.lastHeartbeat) >= s.heartbeatInterval
}

// MarkHeartbeatSent records that a heartbeat was just emitted.
func (s *Session) MarkHeartbeatSent(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastHeartbeat = now
}

// Tick advances the idle-timeout clock and returns whether the session is
// still alive. Per the session's documented behavior, a timeout check only
// considers inbound receive activity, not outbound send activity.
func (s *Session) Tick(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.connected && now.Sub(s.lastReceive) >= s.timeout {
		s.disconnectLocked("timeout")
	}
	return s.connected
}

// Disconnect marks the session dead for the given reason; no further
// EnqueueSend calls succeed afterward.
func (s *Session) Disconnect(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disconnectLocked(reason)
}

func (s *Session) disconnectLocked(reason string) {
	if !s.connected {
		return
	}
	s.connected = false
	s.disconnectReason = reason
	obslog.Info("session_disconnected", "session disconnected",
		obslog.SessionID(s.id), obslog.SessionTraceID(s.traceID), obslog.Reason(reason))
}

func (s *Session) DisconnectReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnectReason
}

func (s *Session) AttachUserContext(uc *UserContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userCtx = uc
}

func (s *Session) ClearUserContext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userCtx = nil
}

func (s *Session) UserContext() *UserContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userCtx
}

func (s *Session) SetProtocolVersion(v uint16) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protocolVersion = v
}

func (s *Session) ProtocolVersion() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.protocolVersion
}

func (s *Session) SetLastSeq(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeq = seq
}

func (s *Session) LastSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq
}

// LogFields returns the correlation fields every structured log line about
// this session should carry.
func (s *Session) LogFields() []zap.Field {
	return []zap.Field{obslog.SessionID(s.id), obslog.SessionTraceID(s.traceID)}
}
