// Package party implements the party service: create/invite/accept/reject/
// disband/remove-member state transitions, invite expiry, and an
// event-sink callback the dispatcher wires to per-session frame enqueue.
package party

import (
	"errors"
	"sync"
	"time"

	"dungeonhub/internal/ids"
)

var (
	ErrNotMember       = errors.New("party: caller is not a member of this party")
	ErrNotLeader       = errors.New("party: only the leader may perform this action")
	ErrPartyNotFound   = errors.New("party: not found")
	ErrAlreadyInParty  = errors.New("party: invitee already belongs to a party")
	ErrInviteExists    = errors.New("party: invite already outstanding")
	ErrInviteNotFound  = errors.New("party: no such invite")
	ErrInviteExpired   = errors.New("party: invite has expired")
	ErrInviteeAssigned = errors.New("party: invitee is no longer unassigned")
)

const DefaultInviteTTL = 5 * time.Minute

type EventType int

const (
	EventMemberJoined EventType = iota
	EventMemberLeft
	EventLeaderChanged
	EventDisbanded
	EventInviteReceived
	EventInviteExpired
)

// Event is a domain-level notification the dispatcher translates into a
// wire.PartyEvent frame for each recipient session.
type Event struct {
	Type          EventType
	PartyID       uint64
	SubjectUserID string
}

// EventSink receives one call per (recipient session, event) pair.
type EventSink func(sessionID uint64, event Event)

type Member struct {
	SessionID uint64
	UserID    string
}

type Party struct {
	ID              uint64
	LeaderSessionID uint64
	Members         map[uint64]Member // sessionID -> Member
}

type invite struct {
	inviterSessionID uint64
	inviteeUserID    string
	sentAt           time.Time
}

// Service owns every live party and its pending invites.
type Service struct {
	mu         sync.Mutex
	parties    map[uint64]*Party
	memberOf   map[uint64]uint64          // sessionID -> partyID
	invites    map[uint64]map[uint64]invite // partyID -> inviteeSessionID -> invite
	inviteTTL  time.Duration
	sink       EventSink
}

func NewService(inviteTTL time.Duration) *Service {
	if inviteTTL <= 0 {
		inviteTTL = DefaultInviteTTL
	}
	return &Service{
		parties:   make(map[uint64]*Party),
		memberOf:  make(map[uint64]uint64),
		invites:   make(map[uint64]map[uint64]invite),
		inviteTTL: inviteTTL,
	}
}

func (s *Service) SetEventSink(sink EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

func (s *Service) emit(recipients []uint64, ev Event) {
	if s.sink == nil {
		return
	}
	for _, sid := range recipients {
		s.sink(sid, ev)
	}
}

// CreateParty starts a new party with exactly the leader as its sole
// member.
func (s *Service) CreateParty(leaderSessionID uint64, leaderUserID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uint64(ids.Generate())
	s.parties[id] = &Party{
		ID:              id,
		LeaderSessionID: leaderSessionID,
		Members: map[uint64]Member{
			leaderSessionID: {SessionID: leaderSessionID, UserID: leaderUserID},
		},
	}
	s.memberOf[leaderSessionID] = id
	return id
}

// PartyOf returns the party a session currently belongs to, if any.
func (s *Service) PartyOf(sessionID uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.memberOf[sessionID]
	return id, ok
}

func (s *Service) memberSessionIDsLocked(p *Party) []uint64 {
	out := make([]uint64, 0, len(p.Members))
	for sid := range p.Members {
		out = append(out, sid)
	}
	return out
}

// Invite lets inviterSessionID invite inviteeSessionID/inviteeUserID into
// partyID. The invitee must not already be a member of any party and must
// not already have an outstanding invite to this party.
func (s *Service) Invite(partyID, inviterSessionID, inviteeSessionID uint64, inviteeUserID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.parties[partyID]
	if !ok {
		return ErrPartyNotFound
	}
	if _, isMember := p.Members[inviterSessionID]; !isMember {
		return ErrNotMember
	}
	if _, already := s.memberOf[inviteeSessionID]; already {
		return ErrAlreadyInParty
	}
	if byInvitee, ok := s.invites[partyID]; ok {
		if _, exists := byInvitee[inviteeSessionID]; exists {
			return ErrInviteExists
		}
	} else {
		s.invites[partyID] = make(map[uint64]invite)
	}

	s.invites[partyID][inviteeSessionID] = invite{
		inviterSessionID: inviterSessionID,
		inviteeUserID:    inviteeUserID,
		sentAt:           now,
	}

	s.emit([]uint64{inviteeSessionID}, Event{Type: EventInviteReceived, PartyID: partyID, SubjectUserID: inviteeUserID})
	return nil
}

// AcceptInvite admits inviteeSessionID into partyID if its invite exists,
// hasn't expired, and the invitee is still unassigned. An expired invite
// is purged and reported as ErrInviteExpired.
func (s *Service) AcceptInvite(partyID, inviteeSessionID uint64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.parties[partyID]
	if !ok {
		return ErrPartyNotFound
	}
	byInvitee, ok := s.invites[partyID]
	if !ok {
		return ErrInviteNotFound
	}
	inv, ok := byInvitee[inviteeSessionID]
	if !ok {
		return ErrInviteNotFound
	}
	if now.Sub(inv.sentAt) > s.inviteTTL {
		delete(byInvitee, inviteeSessionID)
		s.emit([]uint64{inviteeSessionID}, Event{Type: EventInviteExpired, PartyID: partyID, SubjectUserID: inv.inviteeUserID})
		return ErrInviteExpired
	}
	if _, already := s.memberOf[inviteeSessionID]; already {
		delete(byInvitee, inviteeSessionID)
		return ErrInviteeAssigned
	}

	delete(byInvitee, inviteeSessionID)
	p.Members[inviteeSessionID] = Member{SessionID: inviteeSessionID, UserID: inv.inviteeUserID}
	s.memberOf[inviteeSessionID] = partyID

	s.emit(s.memberSessionIDsLocked(p), Event{Type: EventMemberJoined, PartyID: partyID, SubjectUserID: inv.inviteeUserID})
	return nil
}

// RejectInvite drops a pending invite without joining the party.
func (s *Service) RejectInvite(partyID, inviteeSessionID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byInvitee, ok := s.invites[partyID]
	if !ok {
		return ErrInviteNotFound
	}
	if _, ok := byInvitee[inviteeSessionID]; !ok {
		return ErrInviteNotFound
	}
	delete(byInvitee, inviteeSessionID)
	return nil
}

// ExpireInvites purges every invite older than the configured TTL across
// all parties, emitting an InviteExpired event per invitee. Called
// periodically by the dispatcher's tick loop as the eager alternative to
// lazy expiry inside AcceptInvite.
func (s *Service) ExpireInvites(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for partyID, byInvitee := range s.invites {
		for inviteeSessionID, inv := range byInvitee {
			if now.Sub(inv.sentAt) > s.inviteTTL {
				delete(byInvitee, inviteeSessionID)
				s.emit([]uint64{inviteeSessionID}, Event{Type: EventInviteExpired, PartyID: partyID, SubjectUserID: inv.inviteeUserID})
				n++
			}
		}
	}
	return n
}

// DisbandParty tears down partyID; only the leader may call this.
func (s *Service) DisbandParty(partyID, callerSessionID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disbandLocked(partyID, callerSessionID, true)
}

func (s *Service) disbandLocked(partyID, callerSessionID uint64, requireLeader bool) error {
	p, ok := s.parties[partyID]
	if !ok {
		return ErrPartyNotFound
	}
	if requireLeader && callerSessionID != p.LeaderSessionID {
		return ErrNotLeader
	}

	members := s.memberSessionIDsLocked(p)
	for sid := range p.Members {
		delete(s.memberOf, sid)
	}
	delete(s.parties, partyID)
	delete(s.invites, partyID)

	s.emit(members, Event{Type: EventDisbanded, PartyID: partyID})
	return nil
}

// RemoveMember removes targetSessionID from partyID. If the target is the
// leader, the whole party is disbanded instead.
func (s *Service) RemoveMember(partyID, targetSessionID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.parties[partyID]
	if !ok {
		return ErrPartyNotFound
	}
	member, isMember := p.Members[targetSessionID]
	if !isMember {
		return ErrNotMember
	}
	if targetSessionID == p.LeaderSessionID {
		return s.disbandLocked(partyID, targetSessionID, false)
	}

	delete(p.Members, targetSessionID)
	delete(s.memberOf, targetSessionID)

	remaining := s.memberSessionIDsLocked(p)
	s.emit(append(remaining, targetSessionID), Event{Type: EventMemberLeft, PartyID: partyID, SubjectUserID: member.UserID})
	return nil
}

// RebindMember migrates a member's session id in place (e.g. on
// reconnect), preserving leadership and membership without emitting a
// join/leave event.
func (s *Service) RebindMember(partyID, oldSessionID, newSessionID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.parties[partyID]
	if !ok {
		return ErrPartyNotFound
	}
	member, isMember := p.Members[oldSessionID]
	if !isMember {
		return ErrNotMember
	}

	member.SessionID = newSessionID
	delete(p.Members, oldSessionID)
	p.Members[newSessionID] = member
	delete(s.memberOf, oldSessionID)
	s.memberOf[newSessionID] = partyID
	if p.LeaderSessionID == oldSessionID {
		p.LeaderSessionID = newSessionID
	}
	return nil
}

// Get returns the party state for inspection (tests, dispatcher reads).
func (s *Service) Get(partyID uint64) (*Party, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.parties[partyID]
	if !ok {
		return nil, false
	}
	cp := &Party{ID: p.ID, LeaderSessionID: p.LeaderSessionID, Members: make(map[uint64]Member, len(p.Members))}
	for k, v := range p.Members {
		cp.Members[k] = v
	}
	return cp, true
}
