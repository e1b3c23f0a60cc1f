// Package dispatcher implements the core control flow: decode a frame,
// authenticate, route to a domain service, respond, fan out side effects.
// It owns no transport; cmd/dungeonhubd feeds it decoded frames from
// whatever I/O layer it wires up and writes the returned bytes back out.
package dispatcher

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"math/rand"
	"time"

	"dungeonhub/internal/auth"
	"dungeonhub/internal/chatsvc"
	"dungeonhub/internal/config"
	"dungeonhub/internal/guild"
	"dungeonhub/internal/ids"
	"dungeonhub/internal/instance"
	"dungeonhub/internal/inventory"
	"dungeonhub/internal/matchqueue"
	"dungeonhub/internal/metrics"
	"dungeonhub/internal/obslog"
	"dungeonhub/internal/party"
	"dungeonhub/internal/reward"
	"dungeonhub/internal/reward/droptable"
	"dungeonhub/internal/session"
	"dungeonhub/internal/wire"
)

// devPassword is the fixed literal credential accepted in dev; §6/§7 call
// out that a real credential interface replaces this before production.
const devPassword = "letmein"

// Server wires every domain service together and implements the single
// per-packet entry point. It holds no transport of its own.
type Server struct {
	cfg *config.AppConfig

	registry   *session.Registry
	tokens     *auth.TokenService
	parties    *party.Service
	guilds     *guild.Service
	chat       *chatsvc.Service
	matchq     *matchqueue.Queue
	instances  *instance.Manager
	rewards    *reward.Service
	inventory  inventory.Store
	drops      *droptable.DropTable
	metrics    *metrics.Metrics

	endpoint string

	rng *rand.Rand
}

// New builds a Server with every domain service freshly constructed from
// cfg, and wires the party/guild/chat event sinks to fan out frames
// through the session registry's send queues.
func New(cfg *config.AppConfig, inv inventory.Store, endpoint string) *Server {
	s := &Server{
		cfg:       cfg,
		registry:  session.NewRegistry(),
		tokens:    auth.NewTokenService(auth.Options{Secret: []byte(cfg.Token.Secret), TTL: time.Duration(cfg.Token.TTLSec) * time.Second}),
		parties:   party.NewService(time.Duration(cfg.Party.InviteTTLSec) * time.Second),
		guilds:    guild.NewService(),
		chat:      chatsvc.NewService(),
		matchq:    matchqueue.NewQueue(matchqueue.Config{MinPartySize: 1, MaxPartySize: 5, MaxMMRDelta: cfg.MatchQueue.MMRWindow, ExpansionPerSecond: float64(cfg.MatchQueue.WindowStepPerSec)}),
		instances: instance.NewManager(),
		rewards:   reward.NewService(),
		inventory: inv,
		drops:     droptable.NewDefault(),
		metrics:   metrics.New(),
		endpoint:  endpoint,
		rng:       rand.New(rand.NewSource(1)),
	}
	s.parties.SetEventSink(s.sendPartyEvent)
	s.guilds.SetEventSink(s.sendGuildEvent)
	s.chat.SetEventSink(s.sendChatEvent)
	return s
}

func (s *Server) Registry() *session.Registry   { return s.registry }
func (s *Server) Metrics() metrics.Snapshot     { return s.metrics.Snapshot() }
func (s *Server) Instances() *instance.Manager  { return s.instances }

// SessionUser returns the user id bound to sessionID, if the session
// exists and is authenticated.
func (s *Server) SessionUser(sessionID uint64) (string, bool) {
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return "", false
	}
	uc := sess.UserContext()
	if uc == nil {
		return "", false
	}
	return uc.UserID, true
}

// sessionConfig derives a per-session Config from the app config.
func (s *Server) sessionConfig() session.Config {
	policy := session.DropOldest
	switch s.cfg.Session.OverflowPolicy {
	case "drop_newest":
		policy = session.DropNewest
	case "disconnect":
		policy = session.Disconnect
	}
	return session.Config{
		BucketCapacity:      s.cfg.RateLimit.CapacityBytes,
		BucketRefillPerSec:  s.cfg.RateLimit.RefillPerSec,
		SendQueueLimitBytes: s.cfg.Session.SendQueueLimitBytes,
		OverflowPolicy:      policy,
		HeartbeatInterval:   time.Duration(s.cfg.Session.HeartbeatIntervalSec) * time.Second,
		Timeout:             time.Duration(s.cfg.Session.IdleTimeoutSec) * time.Second,
	}
}

// NewSession creates and registers a fresh session for a newly accepted
// connection, for the transport layer to call before feeding it frames.
func (s *Server) NewSession(now time.Time) *session.Session {
	sess := session.New(uint64(ids.Generate()), ids.NewTraceID(), s.sessionConfig(), now)
	s.registry.Add(sess)
	return sess
}

// sendPartyEvent/sendGuildEvent/sendChatEvent translate domain events into
// wire frames and push them onto the subject session's outbound queue.
func (s *Server) sendPartyEvent(sessionID uint64, ev party.Event) {
	var wireType uint16
	switch ev.Type {
	case party.EventMemberJoined:
		wireType = wire.PartyEventMemberJoined
	case party.EventMemberLeft:
		wireType = wire.PartyEventMemberLeft
	case party.EventLeaderChanged:
		wireType = wire.PartyEventLeaderChanged
	case party.EventDisbanded:
		wireType = wire.PartyEventDisbanded
	case party.EventInviteReceived:
		wireType = wire.PartyEventInviteReceived
	case party.EventInviteExpired:
		wireType = wire.PartyEventInviteExpired
	}
	frame := &wire.PartyEvent{EventType: wireType, PartyID: ev.PartyID, SubjectUserID: ev.SubjectUserID}
	s.pushTo(sessionID, wire.TypePartyEvent, frame.Encode())
}

func (s *Server) sendGuildEvent(sessionID uint64, ev guild.Event) {
	var wireType uint16
	switch ev.Type {
	case guild.EventMemberJoined:
		wireType = wire.GuildEventMemberJoined
	case guild.EventMemberLeft:
		wireType = wire.GuildEventMemberLeft
	case guild.EventDisbanded:
		wireType = wire.GuildEventDisbanded
	}
	frame := &wire.GuildEvent{EventType: wireType, GuildID: ev.GuildID, SubjectUserID: ev.SubjectUserID}
	s.pushTo(sessionID, wire.TypeGuildEvent, frame.Encode())
}

func (s *Server) sendChatEvent(sessionID uint64, ev chatsvc.Event) {
	frame := &wire.ChatEvent{Scope: ev.Scope, PartyID: ev.PartyID, SenderUserID: ev.SenderUserID, Text: ev.Text}
	s.pushTo(sessionID, wire.TypeChatEvent, frame.Encode())
}

func (s *Server) pushTo(sessionID uint64, packetType uint16, payload []byte) {
	sess, ok := s.registry.Get(sessionID)
	if !ok {
		return
	}
	frame := wire.Encode(packetType, sess.ProtocolVersion(), payload)
	sess.EnqueueSend(frame, time.Now())
}

// HandlePacket is the one control-flow entry point for every inbound
// frame: metrics/trace preamble, version check, then the per-type
// handler. It returns the response frame to write back, or nil for
// notify-only packets with nothing to answer.
func (s *Server) HandlePacket(sess *session.Session, hdr wire.Header, payload []byte, now time.Time) []byte {
	s.metrics.IncPackets()
	s.metrics.AddBytes(uint64(len(payload)))
	requestTraceID := ids.NewTraceID()

	obslog.Info("packet_received", "decoded frame",
		obslog.SessionID(sess.ID()), obslog.SessionTraceID(sess.TraceID()), obslog.RequestTraceID(requestTraceID),
		obslog.PacketType(hdr.Type), obslog.ProtocolVersion(hdr.Version), obslog.Bytes(len(payload)))

	sess.OnReceive(now)
	sess.SetProtocolVersion(hdr.Version)

	if hdr.Version < s.cfg.Protocol.MinVersion || hdr.Version > s.cfg.Protocol.MaxVersion {
		s.metrics.IncErrors()
		obslog.Warn("packet_rejected", "protocol version out of range",
			obslog.SessionID(sess.ID()), obslog.RequestTraceID(requestTraceID), obslog.ProtocolVersion(hdr.Version))
		reject := &wire.VersionReject{
			Min: s.cfg.Protocol.MinVersion, Max: s.cfg.Protocol.MaxVersion,
			Client: hdr.Version, Message: "protocol version out of range",
		}
		return wire.Encode(wire.TypeVersionReject, hdr.Version, reject.Encode())
	}

	ctx := context.Background()

	switch hdr.Type {
	case wire.TypeLoginReq:
		return s.handleLogin(sess, payload, now)
	case wire.TypeLogoutReq:
		return s.handleLogout(sess)
	case wire.TypeSessionReconnectReq:
		return s.handleSessionReconnect(sess, payload, now)
	case wire.TypePartyCreateReq:
		return s.handlePartyCreate(sess, payload)
	case wire.TypePartyInviteReq:
		return s.handlePartyInvite(sess, payload, now)
	case wire.TypePartyAcceptReq:
		return s.handlePartyAccept(sess, payload, now)
	case wire.TypePartyDisbandReq:
		return s.handlePartyDisband(sess, payload)
	case wire.TypeGuildCreateReq:
		return s.handleGuildCreate(sess, payload)
	case wire.TypeGuildJoinReq:
		return s.handleGuildJoin(sess, payload)
	case wire.TypeGuildLeaveReq:
		return s.handleGuildLeave(sess, payload)
	case wire.TypeChatSendReq:
		return s.handleChatSend(sess, payload)
	case wire.TypeMatchReq:
		return s.handleMatchReq(sess, payload, now)
	case wire.TypeDungeonEnterReq:
		return s.handleDungeonEnter(sess, payload)
	case wire.TypeDungeonResultNotify:
		return s.handleDungeonResult(ctx, sess, payload)
	case wire.TypeInventoryUpdateNotify:
		return s.handleInventoryUpdate(ctx, sess, payload)
	default:
		s.metrics.IncErrors()
		obslog.Warn("packet_rejected", "unknown packet type",
			obslog.SessionID(sess.ID()), obslog.RequestTraceID(requestTraceID), obslog.PacketType(hdr.Type))
		return nil
	}
}

func (s *Server) fail(event string, sess *session.Session) {
	s.metrics.IncErrors()
	obslog.Warn(event, "handler failed", obslog.SessionID(sess.ID()))
}

// requireAuth returns the session's bound user id, or false if it has
// none (the UNAUTHENTICATED case every authenticated handler shares).
func requireAuth(sess *session.Session) (string, bool) {
	uc := sess.UserContext()
	if uc == nil {
		return "", false
	}
	return uc.UserID, true
}

// Tick advances every session's liveness clock, drops dead sessions, and
// sweeps expired party invites.
func (s *Server) Tick(now time.Time) {
	for _, sess := range s.registry.Snapshot() {
		if !sess.Tick(now) {
			s.releaseSessionBindings(sess.ID())
			s.registry.Remove(sess.ID())
		}
	}
	s.parties.ExpireInvites(now)
}

// ForceDisconnect logs and removes a session, cascading cleanup through
// every domain service that keys on session id.
func (s *Server) ForceDisconnect(sessionID uint64, reason, requestTraceID string) {
	obslog.Info("session_force_disconnected", "forcing session disconnect",
		obslog.SessionID(sessionID), obslog.RequestTraceID(requestTraceID), obslog.Reason(reason))
	s.releaseSessionBindings(sessionID)
	s.registry.Remove(sessionID)
}

// releaseSessionBindings drops sessionID's party/guild membership and
// instance/character side-table entries, per the spec's "on destruction
// its user/party/guild/instance bindings are released."
func (s *Server) releaseSessionBindings(sessionID uint64) {
	if partyID, ok := s.parties.PartyOf(sessionID); ok {
		_ = s.parties.RemoveMember(partyID, sessionID)
		s.matchq.Dequeue(partyID)
	}
	if guildID, ok := s.guilds.GuildOf(sessionID); ok {
		_ = s.guilds.Leave(guildID, sessionID)
	}
	s.instances.ReleaseSession(sessionID)
}

// newTicket mints a 128-bit random hex ticket for a dungeon match.
func newTicket() string {
	var b [16]byte
	_, _ = crand.Read(b[:])
	return hex.EncodeToString(b[:])
}
