// Package redisstore is a Redis-backed cache inventory.Store. It holds
// only the current item map per inventory; change_log is intentionally
// not durable here, matching the contract that the cached composite
// serves change_log from its persistent layer.
package redisstore

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"dungeonhub/internal/errs"
	"dungeonhub/internal/inventory"
)

const keyPrefix = "dungeonhub:inv:"

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func key(inventoryID string) string {
	return keyPrefix + inventoryID
}

func (s *Store) Load(ctx context.Context, inventoryID string) (*inventory.State, bool, error) {
	raw, err := s.client.Get(ctx, key(inventoryID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errs.WrapMsg(err, "redisstore: load failed")
	}

	var cached struct {
		Items        map[uint32]uint32 `json:"items"`
		NextChangeID uint64             `json:"next_change_id"`
	}
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, errs.WrapMsg(err, "redisstore: decode failed")
	}
	return &inventory.State{InventoryID: inventoryID, Items: cached.Items, NextChangeID: cached.NextChangeID}, true, nil
}

func (s *Store) Save(ctx context.Context, state *inventory.State) error {
	payload, err := json.Marshal(struct {
		Items        map[uint32]uint32 `json:"items"`
		NextChangeID uint64             `json:"next_change_id"`
	}{Items: state.Items, NextChangeID: state.NextChangeID})
	if err != nil {
		return errs.WrapMsg(err, "redisstore: encode failed")
	}
	if err := s.client.Set(ctx, key(state.InventoryID), payload, 0).Err(); err != nil {
		return errs.WrapMsg(err, "redisstore: save failed")
	}
	return nil
}

func (s *Store) Add(ctx context.Context, inventoryID string, itemID, qty uint32, reason string) (bool, error) {
	if qty == 0 {
		return false, nil
	}
	st, _, err := s.Load(ctx, inventoryID)
	if err != nil {
		return false, err
	}
	if st == nil {
		st = &inventory.State{InventoryID: inventoryID, Items: make(map[uint32]uint32)}
	}
	st.Items[itemID] += qty
	st.NextChangeID++
	return true, s.Save(ctx, st)
}

func (s *Store) Remove(ctx context.Context, inventoryID string, itemID, qty uint32, reason string) (bool, error) {
	if qty == 0 {
		return false, nil
	}
	st, ok, err := s.Load(ctx, inventoryID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
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
	st.NextChangeID++
	return true, s.Save(ctx, st)
}

func (s *Store) Set(ctx context.Context, inventoryID string, itemID, qty uint32, reason string) error {
	st, _, err := s.Load(ctx, inventoryID)
	if err != nil {
		return err
	}
	if st == nil {
		st = &inventory.State{InventoryID: inventoryID, Items: make(map[uint32]uint32)}
	}
	if qty == 0 {
		delete(st.Items, itemID)
	} else {
		st.Items[itemID] = qty
	}
	st.NextChangeID++
	return s.Save(ctx, st)
}

// ChangeLog is not served from the cache layer; callers should read it
// from the persistent store instead.
func (s *Store) ChangeLog(ctx context.Context, inventoryID string) ([]inventory.Change, error) {
	return nil, nil
}

func (s *Store) BeginTransaction(ctx context.Context, inventoryID string) (*inventory.Transaction, error) {
	st, ok, err := s.Load(ctx, inventoryID)
	if err != nil {
		return nil, err
	}
	if !ok {
		st = &inventory.State{InventoryID: inventoryID, Items: make(map[uint32]uint32)}
	}
	return inventory.NewTransactionSnapshot(inventoryID, st), nil
}

func (s *Store) CommitTransaction(ctx context.Context, _ *inventory.Transaction) error {
	return nil
}

func (s *Store) RollbackTransaction(ctx context.Context, tx *inventory.Transaction) error {
	return s.Save(ctx, tx.Snapshot())
}

// Invalidate drops the cached entry, forcing the next Load to backfill
// from the persistent layer.
func (s *Store) Invalidate(ctx context.Context, inventoryID string) error {
	if err := s.client.Del(ctx, key(inventoryID)).Err(); err != nil {
		return errs.WrapMsg(err, "redisstore: invalidate failed")
	}
	return nil
}
