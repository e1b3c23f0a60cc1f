// Package reward implements grant_rewards_detailed: a grant applies a
// list of items to an inventory with Pending/Completed/Failed latching
// and reverse-order rollback on partial failure.
package reward

import (
	"context"
	"sync"

	"dungeonhub/internal/inventory"
)

type GrantStatus int

const (
	GrantNone GrantStatus = iota
	GrantPending
	GrantCompleted
	GrantFailed
)

type GrantResult int

const (
	ResultCompleted GrantResult = iota
	ResultDuplicate
	ResultFailed
)

type Item struct {
	ItemID uint32
	Qty    uint32
}

// Service tracks grant status per grant id so a completed (or still
// pending) grant can never be re-applied.
type Service struct {
	mu     sync.Mutex
	status map[uint64]GrantStatus
}

func NewService() *Service {
	return &Service{status: make(map[uint64]GrantStatus)}
}

func (s *Service) beginGrant(grantID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.status[grantID]
	if st == GrantPending || st == GrantCompleted {
		return false
	}
	s.status[grantID] = GrantPending
	return true
}

func (s *Service) setStatus(grantID uint64, st GrantStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[grantID] = st
}

func (s *Service) Status(grantID uint64) GrantStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status[grantID]
}

// GrantRewardsDetailed applies items to inventoryID via store, in order.
// On any failed add it rolls back applied items in reverse and marks the
// grant Failed; a grant already Pending or Completed is rejected as
// Duplicate without touching the inventory.
func (s *Service) GrantRewardsDetailed(ctx context.Context, store inventory.Store, inventoryID string, grantID uint64, items []Item) (GrantResult, error) {
	if !s.beginGrant(grantID) {
		return ResultDuplicate, nil
	}

	applied := make([]Item, 0, len(items))
	for _, item := range items {
		ok, err := store.Add(ctx, inventoryID, item.ItemID, item.Qty, "reward_grant")
		if err != nil {
			s.rollback(ctx, store, inventoryID, applied, grantID)
			return ResultFailed, err
		}
		if !ok {
			s.rollback(ctx, store, inventoryID, applied, grantID)
			return ResultFailed, nil
		}
		applied = append(applied, item)
	}

	s.setStatus(grantID, GrantCompleted)
	return ResultCompleted, nil
}

func (s *Service) rollback(ctx context.Context, store inventory.Store, inventoryID string, applied []Item, grantID uint64) {
	for i := len(applied) - 1; i >= 0; i-- {
		_, _ = store.Remove(ctx, inventoryID, applied[i].ItemID, applied[i].Qty, "reward_grant_rollback")
	}
	s.setStatus(grantID, GrantFailed)
}

// GrantRewards is the boolean-only convenience form of
// GrantRewardsDetailed.
func (s *Service) GrantRewards(ctx context.Context, store inventory.Store, inventoryID string, grantID uint64, items []Item) (bool, error) {
	result, err := s.GrantRewardsDetailed(ctx, store, inventoryID, grantID, items)
	return result == ResultCompleted, err
}
