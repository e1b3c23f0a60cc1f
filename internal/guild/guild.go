// Package guild implements the in-memory guild service: create, join,
// leave, with leader-departure cascading to disband, and an event-sink
// callback fanned out to members the same way the party service does.
package guild

import (
	"errors"
	"sync"

	"dungeonhub/internal/ids"
)

var (
	ErrGuildNotFound  = errors.New("guild: not found")
	ErrAlreadyMember  = errors.New("guild: user is already a member")
	ErrNotMember      = errors.New("guild: user is not a member of this guild")
	ErrAlreadyInGuild = errors.New("guild: user already belongs to a guild")
)

type EventType int

const (
	EventMemberJoined EventType = iota
	EventMemberLeft
	EventDisbanded
)

type Event struct {
	Type          EventType
	GuildID       uint64
	SubjectUserID string
}

type EventSink func(sessionID uint64, event Event)

type Member struct {
	SessionID uint64
	UserID    string
}

type Guild struct {
	ID              uint64
	Name            string
	LeaderSessionID uint64
	Members         map[uint64]Member
}

type Service struct {
	mu       sync.Mutex
	guilds   map[uint64]*Guild
	memberOf map[uint64]uint64 // sessionID -> guildID
	sink     EventSink
}

func NewService() *Service {
	return &Service{
		guilds:   make(map[uint64]*Guild),
		memberOf: make(map[uint64]uint64),
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

func (s *Service) memberSessionIDsLocked(g *Guild) []uint64 {
	out := make([]uint64, 0, len(g.Members))
	for sid := range g.Members {
		out = append(out, sid)
	}
	return out
}

// Create founds a new guild with the founder as leader and sole member.
func (s *Service) Create(name string, founderSessionID uint64, founderUserID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, already := s.memberOf[founderSessionID]; already {
		return 0, ErrAlreadyInGuild
	}

	id := uint64(ids.Generate())
	s.guilds[id] = &Guild{
		ID:              id,
		Name:            name,
		LeaderSessionID: founderSessionID,
		Members: map[uint64]Member{
			founderSessionID: {SessionID: founderSessionID, UserID: founderUserID},
		},
	}
	s.memberOf[founderSessionID] = id
	return id, nil
}

// Join admits sessionID/userID into guildID provided they belong to no
// guild yet.
func (s *Service) Join(guildID, sessionID uint64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guilds[guildID]
	if !ok {
		return ErrGuildNotFound
	}
	if _, already := s.memberOf[sessionID]; already {
		return ErrAlreadyInGuild
	}

	g.Members[sessionID] = Member{SessionID: sessionID, UserID: userID}
	s.memberOf[sessionID] = guildID

	s.emit(s.memberSessionIDsLocked(g), Event{Type: EventMemberJoined, GuildID: guildID, SubjectUserID: userID})
	return nil
}

// Leave removes sessionID from its guild. If the departing member is the
// leader, the guild is disbanded instead of transferring leadership.
func (s *Service) Leave(guildID, sessionID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guilds[guildID]
	if !ok {
		return ErrGuildNotFound
	}
	member, isMember := g.Members[sessionID]
	if !isMember {
		return ErrNotMember
	}

	if sessionID == g.LeaderSessionID {
		members := s.memberSessionIDsLocked(g)
		for sid := range g.Members {
			delete(s.memberOf, sid)
		}
		delete(s.guilds, guildID)
		s.emit(members, Event{Type: EventDisbanded, GuildID: guildID})
		return nil
	}

	delete(g.Members, sessionID)
	delete(s.memberOf, sessionID)

	remaining := s.memberSessionIDsLocked(g)
	s.emit(append(remaining, sessionID), Event{Type: EventMemberLeft, GuildID: guildID, SubjectUserID: member.UserID})
	return nil
}

// GuildOf returns the guild a session currently belongs to, if any.
func (s *Service) GuildOf(sessionID uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.memberOf[sessionID]
	return id, ok
}

// RebindMember migrates a member's session id in place (e.g. on
// reconnect), preserving leadership and membership without emitting a
// join/leave event.
func (s *Service) RebindMember(guildID, oldSessionID, newSessionID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.guilds[guildID]
	if !ok {
		return ErrGuildNotFound
	}
	member, isMember := g.Members[oldSessionID]
	if !isMember {
		return ErrNotMember
	}

	member.SessionID = newSessionID
	delete(g.Members, oldSessionID)
	g.Members[newSessionID] = member
	delete(s.memberOf, oldSessionID)
	s.memberOf[newSessionID] = guildID
	if g.LeaderSessionID == oldSessionID {
		g.LeaderSessionID = newSessionID
	}
	return nil
}

func (s *Service) Get(guildID uint64) (*Guild, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guilds[guildID]
	if !ok {
		return nil, false
	}
	cp := &Guild{ID: g.ID, Name: g.Name, LeaderSessionID: g.LeaderSessionID, Members: make(map[uint64]Member, len(g.Members))}
	for k, v := range g.Members {
		cp.Members[k] = v
	}
	return cp, true
}
