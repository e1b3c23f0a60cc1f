// Package inventory implements the polymorphic inventory store contract
// (in-memory, persistent, cached) that the reward service transacts
// against: load/save, add/remove/set with an append-only change log, and
// snapshot-based begin/commit/rollback transactions.
package inventory

import (
	"context"
	"errors"
	"sync"
)

var ErrInventoryNotFound = errors.New("inventory: not found")

type ChangeKind int

const (
	ChangeAdd ChangeKind = iota
	ChangeRemove
	ChangeSet
)

type Change struct {
	ID     uint64
	Kind   ChangeKind
	ItemID uint32
	Qty    uint32
	Reason string
}

// State is the full persisted shape of one character's inventory.
type State struct {
	InventoryID  string
	Items        map[uint32]uint32
	ChangeLog    []Change
	NextChangeID uint64
}

func newState(inventoryID string) *State {
	return &State{InventoryID: inventoryID, Items: make(map[uint32]uint32)}
}

func (s *State) clone() *State {
	cp := &State{
		InventoryID:  s.InventoryID,
		Items:        make(map[uint32]uint32, len(s.Items)),
		ChangeLog:    make([]Change, len(s.ChangeLog)),
		NextChangeID: s.NextChangeID,
	}
	for k, v := range s.Items {
		cp.Items[k] = v
	}
	copy(cp.ChangeLog, s.ChangeLog)
	return cp
}

// Transaction is a snapshot of one inventory's state taken at begin;
// rollback restores it verbatim. Interleaved transactions on the same
// inventory are last-writer-wins on rollback, by design.
//
// Linked optionally carries a second layer's own Transaction for a
// composite Store (inventory/cached) that brackets two independent
// backends: each layer's Commit/Rollback must be driven off its own
// snapshot, never the other layer's, so Linked is never read or written
// outside a composite Store's BeginTransaction/Commit/Rollback.
type Transaction struct {
	ID          uint64
	InventoryID string
	snapshot    *State
	Linked      *Transaction
}

// NewTransactionSnapshot lets out-of-package Store implementations (pg,
// mongo, redis) construct a Transaction around a snapshot they loaded
// themselves.
func NewTransactionSnapshot(inventoryID string, state *State) *Transaction {
	return &Transaction{InventoryID: inventoryID, snapshot: state.clone()}
}

// Snapshot returns a defensive copy of the state captured at begin.
func (t *Transaction) Snapshot() *State {
	return t.snapshot.clone()
}

// Store is implemented by the in-memory, persistent (pg/mongo), and
// cached inventory backends with identical operation semantics.
type Store interface {
	Load(ctx context.Context, inventoryID string) (*State, bool, error)
	Save(ctx context.Context, state *State) error

	Add(ctx context.Context, inventoryID string, itemID, qty uint32, reason string) (bool, error)
	Remove(ctx context.Context, inventoryID string, itemID, qty uint32, reason string) (bool, error)
	Set(ctx context.Context, inventoryID string, itemID, qty uint32, reason string) error

	ChangeLog(ctx context.Context, inventoryID string) ([]Change, error)

	BeginTransaction(ctx context.Context, inventoryID string) (*Transaction, error)
	CommitTransaction(ctx context.Context, tx *Transaction) error
	RollbackTransaction(ctx context.Context, tx *Transaction) error
}

// MemoryStore is the reference in-memory Store implementation.
type MemoryStore struct {
	mu    sync.Mutex
	byInv map[string]*State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byInv: make(map[string]*State)}
}

func (m *MemoryStore) getOrCreateLocked(inventoryID string) *State {
	st, ok := m.byInv[inventoryID]
	if !ok {
		st = newState(inventoryID)
		m.byInv[inventoryID] = st
	}
	return st
}

func (m *MemoryStore) Load(_ context.Context, inventoryID string) (*State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.byInv[inventoryID]
	if !ok {
		return nil, false, nil
	}
	return st.clone(), true, nil
}

func (m *MemoryStore) Save(_ context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byInv[state.InventoryID] = state.clone()
	return nil
}

func (m *MemoryStore) Add(_ context.Context, inventoryID string, itemID, qty uint32, reason string) (bool, error) {
	if qty == 0 {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.getOrCreateLocked(inventoryID)
	st.Items[itemID] += qty
	st.ChangeLog = append(st.ChangeLog, Change{ID: st.NextChangeID, Kind: ChangeAdd, ItemID: itemID, Qty: qty, Reason: reason})
	st.NextChangeID++
	return true, nil
}

func (m *MemoryStore) Remove(_ context.Context, inventoryID string, itemID, qty uint32, reason string) (bool, error) {
	if qty == 0 {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.getOrCreateLocked(inventoryID)
	current := st.Items[itemID]
	if current < qty {
		return false, nil
	}
	remaining := current - qty
	if remaining == 0 {
		delete(st.Items, itemID)
	} else {
		st.Items[itemID] = remaining
	}
	st.ChangeLog = append(st.ChangeLog, Change{ID: st.NextChangeID, Kind: ChangeRemove, ItemID: itemID, Qty: qty, Reason: reason})
	st.NextChangeID++
	return true, nil
}

func (m *MemoryStore) Set(_ context.Context, inventoryID string, itemID, qty uint32, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.getOrCreateLocked(inventoryID)
	if qty == 0 {
		delete(st.Items, itemID)
	} else {
		st.Items[itemID] = qty
	}
	st.ChangeLog = append(st.ChangeLog, Change{ID: st.NextChangeID, Kind: ChangeSet, ItemID: itemID, Qty: qty, Reason: reason})
	st.NextChangeID++
	return nil
}

func (m *MemoryStore) ChangeLog(_ context.Context, inventoryID string) ([]Change, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.byInv[inventoryID]
	if !ok {
		return nil, nil
	}
	out := make([]Change, len(st.ChangeLog))
	copy(out, st.ChangeLog)
	return out, nil
}

func (m *MemoryStore) BeginTransaction(_ context.Context, inventoryID string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.getOrCreateLocked(inventoryID)
	return &Transaction{InventoryID: inventoryID, snapshot: st.clone()}, nil
}

func (m *MemoryStore) CommitTransaction(_ context.Context, _ *Transaction) error {
	return nil
}

func (m *MemoryStore) RollbackTransaction(_ context.Context, tx *Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byInv[tx.InventoryID] = tx.snapshot.clone()
	return nil
}
