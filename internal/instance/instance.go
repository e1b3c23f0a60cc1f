// Package instance implements the dungeon instance state machine and the
// server-level side tables that key off it.
package instance

import (
	"errors"
	"sync"

	"dungeonhub/internal/ids"
	"dungeonhub/internal/party"
)

var (
	ErrInstanceNotFound     = errors.New("instance: not found")
	ErrPartyNotFound        = errors.New("instance: party not found")
	ErrTransitionDisallowed = errors.New("instance: transition not allowed")
	ErrPartyHasNoLeader     = errors.New("instance: party has no members or its leader has left")
)

type State int

const (
	Waiting State = iota
	Ready
	Playing
	Clear
	Fail
	Terminate
)

var allowed = map[State]map[State]bool{
	Waiting:   {Ready: true, Terminate: true},
	Ready:     {Playing: true, Terminate: true},
	Playing:   {Clear: true, Fail: true, Terminate: true},
	Clear:     {Terminate: true},
	Fail:      {Terminate: true},
	Terminate: {},
}

type Instance struct {
	ID      uint64
	PartyID uint64
	State   State
}

// Manager owns every live instance plus the side tables the dispatcher
// keys off: party_id -> instance_id, instance_id -> ticket/seed/grant_id,
// session_id -> instance_id/char_id.
type Manager struct {
	mu sync.Mutex

	instances      map[uint64]*Instance
	partyInstances map[uint64]uint64 // party_id -> instance_id
	tickets        map[uint64]string // instance_id -> ticket
	seeds          map[uint64]uint32 // instance_id -> seed
	rewardGrants   map[uint64]uint64 // instance_id -> grant_id

	sessionInstances map[uint64]uint64 // session_id -> instance_id
	sessionChars     map[uint64]uint64 // session_id -> char_id
}

func NewManager() *Manager {
	return &Manager{
		instances:        make(map[uint64]*Instance),
		partyInstances:   make(map[uint64]uint64),
		tickets:          make(map[uint64]string),
		seeds:            make(map[uint64]uint32),
		rewardGrants:     make(map[uint64]uint64),
		sessionInstances: make(map[uint64]uint64),
		sessionChars:     make(map[uint64]uint64),
	}
}

// CreateInstance spawns a Waiting instance for partyID, failing if the
// party does not exist.
func (m *Manager) CreateInstance(partyID uint64, partySvc *party.Service) (*Instance, error) {
	if _, ok := partySvc.Get(partyID); !ok {
		return nil, ErrPartyNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := uint64(ids.Generate())
	inst := &Instance{ID: id, PartyID: partyID, State: Waiting}
	m.instances[id] = inst
	m.partyInstances[partyID] = id
	return inst, nil
}

// BindTicket records the handshake ticket minted for instanceID at match
// time.
func (m *Manager) BindTicket(instanceID uint64, ticket string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[instanceID] = ticket
}

// BindSeed records the PRNG seed drawn for instanceID at match time.
func (m *Manager) BindSeed(instanceID uint64, seed uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seeds[instanceID] = seed
}

func (m *Manager) Ticket(instanceID uint64) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[instanceID]
	return t, ok
}

func (m *Manager) Seed(instanceID uint64) (uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.seeds[instanceID]
	return s, ok
}

func (m *Manager) InstanceForParty(partyID uint64) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.partyInstances[partyID]
	return id, ok
}

// RequestTransition drives instanceID's state machine to next. Moving
// into Ready or Playing additionally requires the owning party to still
// have members and a leader.
func (m *Manager) RequestTransition(instanceID uint64, next State, partySvc *party.Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[instanceID]
	if !ok {
		return ErrInstanceNotFound
	}
	if inst.State == next {
		return ErrTransitionDisallowed
	}
	if !allowed[inst.State][next] {
		return ErrTransitionDisallowed
	}
	if next == Ready || next == Playing {
		p, ok := partySvc.Get(inst.PartyID)
		if !ok || len(p.Members) == 0 {
			return ErrPartyHasNoLeader
		}
		if _, leaderPresent := p.Members[p.LeaderSessionID]; !leaderPresent {
			return ErrPartyHasNoLeader
		}
	}

	inst.State = next
	return nil
}

// TerminateInstance forces instanceID to Terminate regardless of its
// current state.
func (m *Manager) TerminateInstance(instanceID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[instanceID]
	if !ok {
		return ErrInstanceNotFound
	}
	inst.State = Terminate
	return nil
}

// Size reports the number of live instances, used by tests asserting the
// end-to-end match scenario spawned exactly the expected count.
func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.instances)
}

func (m *Manager) Get(instanceID uint64) (*Instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[instanceID]
	if !ok {
		return nil, false
	}
	cp := *inst
	return &cp, true
}

// BindSessionInstance records the instance a session has entered.
func (m *Manager) BindSessionInstance(sessionID, instanceID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionInstances[sessionID] = instanceID
}

func (m *Manager) SessionInstance(sessionID uint64) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.sessionInstances[sessionID]
	return id, ok
}

// BindSessionChar records the character id a session has selected for an
// instance run.
func (m *Manager) BindSessionChar(sessionID, charID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionChars[sessionID] = charID
}

func (m *Manager) SessionChar(sessionID uint64) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.sessionChars[sessionID]
	return id, ok
}

// RewardGrant reports the grant id already recorded for instanceID, if
// any, implementing the reward-duplicate check.
func (m *Manager) RewardGrant(instanceID uint64) (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.rewardGrants[instanceID]
	return id, ok
}

// SetRewardGrant latches grantID against instanceID once a reward has
// been successfully applied.
func (m *Manager) SetRewardGrant(instanceID, grantID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rewardGrants[instanceID] = grantID
}

// ReleaseSession drops every side-table entry keyed by sessionID, used
// when a session disconnects.
func (m *Manager) ReleaseSession(sessionID uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessionInstances, sessionID)
	delete(m.sessionChars, sessionID)
}
