package reward

import (
	"context"
	"errors"
	"testing"

	"dungeonhub/internal/inventory"
)

func TestGrantRewardsDetailedCompletesAndApplies(t *testing.T) {
	store := inventory.NewMemoryStore()
	svc := NewService()
	ctx := context.Background()

	result, err := svc.GrantRewardsDetailed(ctx, store, "char-1", 1, []Item{
		{ItemID: 1001, Qty: 3},
		{ItemID: 2001, Qty: 1},
	})
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if result != ResultCompleted {
		t.Fatalf("expected Completed, got %v", result)
	}

	st, _, _ := store.Load(ctx, "char-1")
	if st.Items[1001] != 3 || st.Items[2001] != 1 {
		t.Fatalf("expected inventory delta to equal requested items, got %+v", st.Items)
	}
}

func TestGrantRewardsDetailedRejectsDuplicateGrant(t *testing.T) {
	store := inventory.NewMemoryStore()
	svc := NewService()
	ctx := context.Background()

	svc.GrantRewardsDetailed(ctx, store, "char-1", 1, []Item{{ItemID: 1001, Qty: 1}})
	result, err := svc.GrantRewardsDetailed(ctx, store, "char-1", 1, []Item{{ItemID: 1001, Qty: 1}})
	if err != nil {
		t.Fatalf("second grant: %v", err)
	}
	if result != ResultDuplicate {
		t.Fatalf("expected Duplicate for a re-submitted completed grant, got %v", result)
	}
}

// failingStore wraps MemoryStore but rejects Add for a specific item id,
// letting us exercise the reverse-order rollback path.
type failingStore struct {
	*inventory.MemoryStore
	failItemID uint32
}

func (f *failingStore) Add(ctx context.Context, inventoryID string, itemID, qty uint32, reason string) (bool, error) {
	if itemID == f.failItemID {
		return false, errors.New("simulated add failure")
	}
	return f.MemoryStore.Add(ctx, inventoryID, itemID, qty, reason)
}

func TestGrantRewardsDetailedRollsBackOnPartialFailure(t *testing.T) {
	store := &failingStore{MemoryStore: inventory.NewMemoryStore(), failItemID: 3001}
	svc := NewService()
	ctx := context.Background()

	before, _, _ := store.Load(ctx, "char-1")
	_ = before

	result, err := svc.GrantRewardsDetailed(ctx, store, "char-1", 1, []Item{
		{ItemID: 1001, Qty: 5},
		{ItemID: 2001, Qty: 2},
		{ItemID: 3001, Qty: 1}, // fails here
	})
	if err == nil {
		t.Fatal("expected an error from the failing store")
	}
	if result != ResultFailed {
		t.Fatalf("expected Failed, got %v", result)
	}

	st, _, _ := store.Load(ctx, "char-1")
	if len(st.Items) != 0 {
		t.Fatalf("expected inventory restored to pre-call state (empty), got %+v", st.Items)
	}
	if svc.Status(1) != GrantFailed {
		t.Fatalf("expected grant status Failed, got %v", svc.Status(1))
	}
}
