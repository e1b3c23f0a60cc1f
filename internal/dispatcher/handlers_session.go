package dispatcher

import (
	"time"

	"dungeonhub/internal/errs"
	"dungeonhub/internal/obslog"
	"dungeonhub/internal/session"
	"dungeonhub/internal/wire"
)

func (s *Server) respond(sess *session.Session, packetType uint16, payload []byte) []byte {
	return wire.Encode(packetType, sess.ProtocolVersion(), payload)
}

func (s *Server) handleLogin(sess *session.Session, payload []byte, now time.Time) []byte {
	var req wire.LoginReq
	if err := req.Decode(payload); err != nil {
		s.fail("login_failed", sess)
		res := &wire.LoginRes{Accepted: false, Message: errs.ErrMalformed.Msg}
		return s.respond(sess, wire.TypeLoginRes, res.Encode())
	}

	if req.Password != devPassword {
		s.fail("login_failed", sess)
		res := &wire.LoginRes{Accepted: false, Message: errs.ErrInvalidCredentials.Msg}
		return s.respond(sess, wire.TypeLoginRes, res.Encode())
	}

	if _, bound := s.registry.GetByUser(req.UserID); bound {
		s.fail("login_failed", sess)
		res := &wire.LoginRes{Accepted: false, Message: errs.ErrUserAlreadyBound.Msg}
		return s.respond(sess, wire.TypeLoginRes, res.Encode())
	}

	token, err := s.tokens.Issue(req.UserID, now)
	if err != nil {
		s.fail("login_failed", sess)
		res := &wire.LoginRes{Accepted: false, Message: "token issue failed"}
		return s.respond(sess, wire.TypeLoginRes, res.Encode())
	}

	sess.AttachUserContext(&session.UserContext{UserID: req.UserID, Token: token})
	s.registry.BindUser(req.UserID, sess.ID())

	obslog.Info("login_succeeded", "session authenticated", obslog.SessionID(sess.ID()), obslog.UserID(req.UserID))
	res := &wire.LoginRes{Accepted: true, Token: token, Message: "OK"}
	return s.respond(sess, wire.TypeLoginRes, res.Encode())
}

func (s *Server) handleLogout(sess *session.Session) []byte {
	if uc := sess.UserContext(); uc != nil {
		s.tokens.Revoke(uc.Token)
	}
	sess.ClearUserContext()
	s.releaseSessionBindings(sess.ID())
	s.registry.Remove(sess.ID())
	res := &wire.LogoutRes{Success: true, Message: "OK"}
	return s.respond(sess, wire.TypeLogoutRes, res.Encode())
}

// handleSessionReconnect validates the submitted token, migrates every
// cross-service binding from the previously-held session id to the
// reconnecting one, and restores the sequence counter.
func (s *Server) handleSessionReconnect(sess *session.Session, payload []byte, now time.Time) []byte {
	var req wire.SessionReconnectReq
	if err := req.Decode(payload); err != nil {
		s.fail("session_reconnect_failed", sess)
		res := &wire.SessionReconnectRes{Success: false, Code: errs.ErrMalformed.Msg}
		return s.respond(sess, wire.TypeSessionReconnectRes, res.Encode())
	}

	userID, ok := s.tokens.Validate(req.Token, now)
	if !ok {
		s.fail("session_reconnect_failed", sess)
		res := &wire.SessionReconnectRes{Success: false, Code: errs.ErrUnauthenticated.Msg}
		return s.respond(sess, wire.TypeSessionReconnectRes, res.Encode())
	}

	var lastSeq uint64 = req.LastSeq
	if prev, ok := s.registry.GetByUser(userID); ok && prev.ID() != sess.ID() {
		if prev.LastSeq() > lastSeq {
			lastSeq = prev.LastSeq()
		}
		s.migrateSession(prev.ID(), sess.ID())
		s.registry.Remove(prev.ID())
	}

	sess.AttachUserContext(&session.UserContext{UserID: userID, Token: req.Token})
	s.registry.BindUser(userID, sess.ID())
	sess.SetLastSeq(lastSeq)

	res := &wire.SessionReconnectRes{Success: true, Code: "OK", ResumeSeq: lastSeq + 1}
	return s.respond(sess, wire.TypeSessionReconnectRes, res.Encode())
}

// migrateSession moves every cross-service binding keyed by oldID onto
// newID: party/guild membership, instance side-tables.
func (s *Server) migrateSession(oldID, newID uint64) {
	if partyID, ok := s.parties.PartyOf(oldID); ok {
		s.parties.RebindMember(partyID, oldID, newID)
	}
	if guildID, ok := s.guilds.GuildOf(oldID); ok {
		s.guilds.RebindMember(guildID, oldID, newID)
	}
	if instID, ok := s.instances.SessionInstance(oldID); ok {
		s.instances.BindSessionInstance(newID, instID)
	}
	if charID, ok := s.instances.SessionChar(oldID); ok {
		s.instances.BindSessionChar(newID, charID)
	}
}
