// Package cached composes a persistent inventory.Store with a cache
// inventory.Store: reads hit cache first and backfill on miss, writes go
// to persistent first and replay on cache (refreshing the cache from
// persistent if the replay fails), and change_log is always served from
// persistent.
package cached

import (
	"context"

	"dungeonhub/internal/inventory"
)

type Store struct {
	persistent inventory.Store
	cache      inventory.Store
}

func New(persistent, cache inventory.Store) *Store {
	return &Store{persistent: persistent, cache: cache}
}

func (s *Store) Load(ctx context.Context, inventoryID string) (*inventory.State, bool, error) {
	if st, ok, err := s.cache.Load(ctx, inventoryID); err == nil && ok {
		return st, true, nil
	}

	st, ok, err := s.persistent.Load(ctx, inventoryID)
	if err != nil || !ok {
		return st, ok, err
	}
	_ = s.cache.Save(ctx, st)
	return st, true, nil
}

func (s *Store) Save(ctx context.Context, state *inventory.State) error {
	if err := s.persistent.Save(ctx, state); err != nil {
		return err
	}
	if err := s.cache.Save(ctx, state); err != nil {
		s.refreshCache(ctx, state.InventoryID)
	}
	return nil
}

func (s *Store) refreshCache(ctx context.Context, inventoryID string) {
	if st, ok, err := s.persistent.Load(ctx, inventoryID); err == nil && ok {
		_ = s.cache.Save(ctx, st)
	}
}

func (s *Store) Add(ctx context.Context, inventoryID string, itemID, qty uint32, reason string) (bool, error) {
	applied, err := s.persistent.Add(ctx, inventoryID, itemID, qty, reason)
	if err != nil || !applied {
		return applied, err
	}
	if _, err := s.cache.Add(ctx, inventoryID, itemID, qty, reason); err != nil {
		s.refreshCache(ctx, inventoryID)
	}
	return true, nil
}

func (s *Store) Remove(ctx context.Context, inventoryID string, itemID, qty uint32, reason string) (bool, error) {
	applied, err := s.persistent.Remove(ctx, inventoryID, itemID, qty, reason)
	if err != nil || !applied {
		return applied, err
	}
	if _, err := s.cache.Remove(ctx, inventoryID, itemID, qty, reason); err != nil {
		s.refreshCache(ctx, inventoryID)
	}
	return true, nil
}

func (s *Store) Set(ctx context.Context, inventoryID string, itemID, qty uint32, reason string) error {
	if err := s.persistent.Set(ctx, inventoryID, itemID, qty, reason); err != nil {
		return err
	}
	if err := s.cache.Set(ctx, inventoryID, itemID, qty, reason); err != nil {
		s.refreshCache(ctx, inventoryID)
	}
	return nil
}

func (s *Store) ChangeLog(ctx context.Context, inventoryID string) ([]inventory.Change, error) {
	return s.persistent.ChangeLog(ctx, inventoryID)
}

// BeginTransaction opens independent snapshots on both layers and links
// the cache's transaction onto the persistent one it returns, so Commit/
// Rollback can later drive each layer off its own snapshot rather than
// cross-applying the persistent snapshot onto the cache (or vice versa).
func (s *Store) BeginTransaction(ctx context.Context, inventoryID string) (*inventory.Transaction, error) {
	cacheTx, err := s.cache.BeginTransaction(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	persistentTx, err := s.persistent.BeginTransaction(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	persistentTx.Linked = cacheTx
	return persistentTx, nil
}

func (s *Store) CommitTransaction(ctx context.Context, tx *inventory.Transaction) error {
	if err := s.persistent.CommitTransaction(ctx, tx); err != nil {
		return err
	}
	if tx.Linked == nil {
		return nil
	}
	return s.cache.CommitTransaction(ctx, tx.Linked)
}

func (s *Store) RollbackTransaction(ctx context.Context, tx *inventory.Transaction) error {
	if err := s.persistent.RollbackTransaction(ctx, tx); err != nil {
		return err
	}
	if tx.Linked == nil {
		return nil
	}
	return s.cache.RollbackTransaction(ctx, tx.Linked)
}
