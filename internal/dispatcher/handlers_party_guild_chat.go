package dispatcher

import (
	"time"

	"dungeonhub/internal/chatsvc"
	"dungeonhub/internal/errs"
	"dungeonhub/internal/guild"
	"dungeonhub/internal/party"
	"dungeonhub/internal/session"
	"dungeonhub/internal/wire"
)

func (s *Server) handlePartyCreate(sess *session.Session, payload []byte) []byte {
	var req wire.PartyCreateReq
	if err := req.Decode(payload); err != nil {
		s.fail("party_create_failed", sess)
		res := &wire.PartyCreateRes{Success: false, Code: errs.ErrMalformed.Msg}
		return s.respond(sess, wire.TypePartyCreateRes, res.Encode())
	}
	userID, ok := requireAuth(sess)
	if !ok {
		s.fail("party_create_failed", sess)
		res := &wire.PartyCreateRes{Success: false, Code: errs.ErrUnauthenticated.Msg}
		return s.respond(sess, wire.TypePartyCreateRes, res.Encode())
	}

	partyID := s.parties.CreateParty(sess.ID(), userID)
	res := &wire.PartyCreateRes{Success: true, Code: "OK", PartyID: partyID}
	return s.respond(sess, wire.TypePartyCreateRes, res.Encode())
}

func (s *Server) handlePartyInvite(sess *session.Session, payload []byte, now time.Time) []byte {
	var req wire.PartyInviteReq
	if err := req.Decode(payload); err != nil {
		s.fail("party_invite_failed", sess)
		res := &wire.PartyInviteRes{Success: false, Code: errs.ErrMalformed.Msg}
		return s.respond(sess, wire.TypePartyInviteRes, res.Encode())
	}
	if _, ok := requireAuth(sess); !ok {
		s.fail("party_invite_failed", sess)
		res := &wire.PartyInviteRes{Success: false, Code: errs.ErrUnauthenticated.Msg}
		return s.respond(sess, wire.TypePartyInviteRes, res.Encode())
	}

	inviteeSess, ok := s.registry.GetByUser(req.InviteeUserID)
	if !ok {
		s.fail("party_invite_failed", sess)
		res := &wire.PartyInviteRes{Success: false, Code: "INVITEE_NOT_ONLINE"}
		return s.respond(sess, wire.TypePartyInviteRes, res.Encode())
	}

	if err := s.parties.Invite(req.PartyID, sess.ID(), inviteeSess.ID(), req.InviteeUserID, now); err != nil {
		s.fail("party_invite_failed", sess)
		res := &wire.PartyInviteRes{Success: false, Code: partyErrCode(err)}
		return s.respond(sess, wire.TypePartyInviteRes, res.Encode())
	}

	res := &wire.PartyInviteRes{Success: true, Code: "OK"}
	return s.respond(sess, wire.TypePartyInviteRes, res.Encode())
}

func (s *Server) handlePartyAccept(sess *session.Session, payload []byte, now time.Time) []byte {
	var req wire.PartyAcceptReq
	if err := req.Decode(payload); err != nil {
		s.fail("party_accept_failed", sess)
		res := &wire.PartyAcceptRes{Success: false, Code: errs.ErrMalformed.Msg}
		return s.respond(sess, wire.TypePartyAcceptRes, res.Encode())
	}
	if _, ok := requireAuth(sess); !ok {
		s.fail("party_accept_failed", sess)
		res := &wire.PartyAcceptRes{Success: false, Code: errs.ErrUnauthenticated.Msg}
		return s.respond(sess, wire.TypePartyAcceptRes, res.Encode())
	}

	if !req.Accept {
		if err := s.parties.RejectInvite(req.PartyID, sess.ID()); err != nil {
			s.fail("party_accept_failed", sess)
			res := &wire.PartyAcceptRes{Success: false, Code: partyErrCode(err)}
			return s.respond(sess, wire.TypePartyAcceptRes, res.Encode())
		}
		res := &wire.PartyAcceptRes{Success: true, Code: "OK"}
		return s.respond(sess, wire.TypePartyAcceptRes, res.Encode())
	}

	if err := s.parties.AcceptInvite(req.PartyID, sess.ID(), now); err != nil {
		s.fail("party_accept_failed", sess)
		res := &wire.PartyAcceptRes{Success: false, Code: partyErrCode(err)}
		return s.respond(sess, wire.TypePartyAcceptRes, res.Encode())
	}
	res := &wire.PartyAcceptRes{Success: true, Code: "OK"}
	return s.respond(sess, wire.TypePartyAcceptRes, res.Encode())
}

func (s *Server) handlePartyDisband(sess *session.Session, payload []byte) []byte {
	var req wire.PartyDisbandReq
	if err := req.Decode(payload); err != nil {
		s.fail("party_disband_failed", sess)
		res := &wire.PartyDisbandRes{Success: false, Code: errs.ErrMalformed.Msg}
		return s.respond(sess, wire.TypePartyDisbandRes, res.Encode())
	}
	if _, ok := requireAuth(sess); !ok {
		s.fail("party_disband_failed", sess)
		res := &wire.PartyDisbandRes{Success: false, Code: errs.ErrUnauthenticated.Msg}
		return s.respond(sess, wire.TypePartyDisbandRes, res.Encode())
	}

	if err := s.parties.DisbandParty(req.PartyID, sess.ID()); err != nil {
		s.fail("party_disband_failed", sess)
		res := &wire.PartyDisbandRes{Success: false, Code: partyErrCode(err)}
		return s.respond(sess, wire.TypePartyDisbandRes, res.Encode())
	}
	s.matchq.Dequeue(req.PartyID)
	res := &wire.PartyDisbandRes{Success: true, Code: "OK"}
	return s.respond(sess, wire.TypePartyDisbandRes, res.Encode())
}

func partyErrCode(err error) string {
	switch err {
	case party.ErrPartyNotFound:
		return "PARTY_NOT_FOUND"
	case party.ErrNotMember:
		return "NOT_PARTY_MEMBER"
	case party.ErrNotLeader:
		return "NOT_LEADER"
	case party.ErrAlreadyInParty:
		return "ALREADY_IN_PARTY"
	case party.ErrInviteExists:
		return "INVITE_EXISTS"
	case party.ErrInviteNotFound:
		return "INVITE_NOT_FOUND"
	case party.ErrInviteExpired:
		return "INVITE_EXPIRED"
	case party.ErrInviteeAssigned:
		return "INVITEE_ASSIGNED"
	default:
		return "PARTY_FAILED"
	}
}

func (s *Server) handleGuildCreate(sess *session.Session, payload []byte) []byte {
	var req wire.GuildCreateReq
	if err := req.Decode(payload); err != nil {
		s.fail("guild_create_failed", sess)
		res := &wire.GuildCreateRes{Success: false, Code: errs.ErrMalformed.Msg}
		return s.respond(sess, wire.TypeGuildCreateRes, res.Encode())
	}
	userID, ok := requireAuth(sess)
	if !ok {
		s.fail("guild_create_failed", sess)
		res := &wire.GuildCreateRes{Success: false, Code: errs.ErrUnauthenticated.Msg}
		return s.respond(sess, wire.TypeGuildCreateRes, res.Encode())
	}

	guildID, err := s.guilds.Create(req.Name, sess.ID(), userID)
	if err != nil {
		s.fail("guild_create_failed", sess)
		res := &wire.GuildCreateRes{Success: false, Code: guildErrCode(err)}
		return s.respond(sess, wire.TypeGuildCreateRes, res.Encode())
	}
	res := &wire.GuildCreateRes{Success: true, Code: "OK", GuildID: guildID}
	return s.respond(sess, wire.TypeGuildCreateRes, res.Encode())
}

func (s *Server) handleGuildJoin(sess *session.Session, payload []byte) []byte {
	var req wire.GuildJoinReq
	if err := req.Decode(payload); err != nil {
		s.fail("guild_join_failed", sess)
		res := &wire.GuildJoinRes{Success: false, Code: errs.ErrMalformed.Msg}
		return s.respond(sess, wire.TypeGuildJoinRes, res.Encode())
	}
	userID, ok := requireAuth(sess)
	if !ok {
		s.fail("guild_join_failed", sess)
		res := &wire.GuildJoinRes{Success: false, Code: errs.ErrUnauthenticated.Msg}
		return s.respond(sess, wire.TypeGuildJoinRes, res.Encode())
	}

	if err := s.guilds.Join(req.GuildID, sess.ID(), userID); err != nil {
		s.fail("guild_join_failed", sess)
		res := &wire.GuildJoinRes{Success: false, Code: guildErrCode(err)}
		return s.respond(sess, wire.TypeGuildJoinRes, res.Encode())
	}
	res := &wire.GuildJoinRes{Success: true, Code: "OK"}
	return s.respond(sess, wire.TypeGuildJoinRes, res.Encode())
}

func (s *Server) handleGuildLeave(sess *session.Session, payload []byte) []byte {
	var req wire.GuildLeaveReq
	if err := req.Decode(payload); err != nil {
		s.fail("guild_leave_failed", sess)
		res := &wire.GuildLeaveRes{Success: false, Code: errs.ErrMalformed.Msg}
		return s.respond(sess, wire.TypeGuildLeaveRes, res.Encode())
	}
	if _, ok := requireAuth(sess); !ok {
		s.fail("guild_leave_failed", sess)
		res := &wire.GuildLeaveRes{Success: false, Code: errs.ErrUnauthenticated.Msg}
		return s.respond(sess, wire.TypeGuildLeaveRes, res.Encode())
	}

	guildID, ok := s.guilds.GuildOf(sess.ID())
	if !ok {
		s.fail("guild_leave_failed", sess)
		res := &wire.GuildLeaveRes{Success: false, Code: "NOT_GUILD_MEMBER"}
		return s.respond(sess, wire.TypeGuildLeaveRes, res.Encode())
	}

	if err := s.guilds.Leave(guildID, sess.ID()); err != nil {
		s.fail("guild_leave_failed", sess)
		res := &wire.GuildLeaveRes{Success: false, Code: guildErrCode(err)}
		return s.respond(sess, wire.TypeGuildLeaveRes, res.Encode())
	}
	res := &wire.GuildLeaveRes{Success: true, Code: "OK"}
	return s.respond(sess, wire.TypeGuildLeaveRes, res.Encode())
}

func guildErrCode(err error) string {
	switch err {
	case guild.ErrGuildNotFound:
		return "GUILD_NOT_FOUND"
	case guild.ErrAlreadyMember:
		return "ALREADY_MEMBER"
	case guild.ErrNotMember:
		return "NOT_GUILD_MEMBER"
	case guild.ErrAlreadyInGuild:
		return "ALREADY_IN_GUILD"
	default:
		return "GUILD_FAILED"
	}
}

// handleChatSend fans text out to the resolved recipient set: every
// authenticated session for Global, or the sender's party members for
// Party (party_id == 0 resolves to the sender's current party).
func (s *Server) handleChatSend(sess *session.Session, payload []byte) []byte {
	var req wire.ChatSendReq
	if err := req.Decode(payload); err != nil {
		s.fail("chat_send_failed", sess)
		res := &wire.ChatSendRes{Success: false, Code: errs.ErrMalformed.Msg}
		return s.respond(sess, wire.TypeChatSendRes, res.Encode())
	}
	userID, ok := requireAuth(sess)
	if !ok {
		s.fail("chat_send_failed", sess)
		res := &wire.ChatSendRes{Success: false, Code: errs.ErrUnauthenticated.Msg}
		return s.respond(sess, wire.TypeChatSendRes, res.Encode())
	}

	switch req.Scope {
	case wire.ChatEventGlobal:
		recipients := s.authenticatedSessionIDs()
		if err := s.chat.SendGlobal(userID, req.Text, recipients); err != nil {
			s.fail("chat_send_failed", sess)
			res := &wire.ChatSendRes{Success: false, Code: chatErrCode(err)}
			return s.respond(sess, wire.TypeChatSendRes, res.Encode())
		}
	case wire.ChatEventParty:
		partyID := req.PartyID
		if partyID == 0 {
			pid, ok := s.parties.PartyOf(sess.ID())
			if !ok {
				s.fail("chat_send_failed", sess)
				res := &wire.ChatSendRes{Success: false, Code: "NO_PARTY"}
				return s.respond(sess, wire.TypeChatSendRes, res.Encode())
			}
			partyID = pid
		}
		p, ok := s.parties.Get(partyID)
		if !ok {
			s.fail("chat_send_failed", sess)
			res := &wire.ChatSendRes{Success: false, Code: "PARTY_NOT_FOUND"}
			return s.respond(sess, wire.TypeChatSendRes, res.Encode())
		}
		if _, isMember := p.Members[sess.ID()]; !isMember {
			s.fail("chat_send_failed", sess)
			res := &wire.ChatSendRes{Success: false, Code: "NOT_PARTY_MEMBER"}
			return s.respond(sess, wire.TypeChatSendRes, res.Encode())
		}
		recipients := make([]uint64, 0, len(p.Members))
		for sid := range p.Members {
			recipients = append(recipients, sid)
		}
		if err := s.chat.SendParty(userID, partyID, req.Text, recipients); err != nil {
			s.fail("chat_send_failed", sess)
			res := &wire.ChatSendRes{Success: false, Code: chatErrCode(err)}
			return s.respond(sess, wire.TypeChatSendRes, res.Encode())
		}
	default:
		s.fail("chat_send_failed", sess)
		res := &wire.ChatSendRes{Success: false, Code: "INVALID_SCOPE"}
		return s.respond(sess, wire.TypeChatSendRes, res.Encode())
	}

	res := &wire.ChatSendRes{Success: true, Code: "OK"}
	return s.respond(sess, wire.TypeChatSendRes, res.Encode())
}

func (s *Server) authenticatedSessionIDs() []uint64 {
	var out []uint64
	for _, sess := range s.registry.Snapshot() {
		if sess.UserContext() != nil {
			out = append(out, sess.ID())
		}
	}
	return out
}

func chatErrCode(err error) string {
	if err == chatsvc.ErrEmptyText {
		return "EMPTY_TEXT"
	}
	return "CHAT_FAILED"
}
