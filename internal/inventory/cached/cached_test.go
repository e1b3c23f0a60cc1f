package cached

import (
	"context"
	"testing"

	"dungeonhub/internal/inventory"
)

// TestRollbackRestoresEachLayerToItsOwnSnapshot exercises a cache that
// has already diverged from persistent before BeginTransaction runs
// (the state a half-applied Save without a refreshCache leaves behind).
// Rollback must restore each layer to what it itself held at begin, not
// cross-apply the other layer's snapshot.
func TestRollbackRestoresEachLayerToItsOwnSnapshot(t *testing.T) {
	ctx := context.Background()
	persistent := inventory.NewMemoryStore()
	cache := inventory.NewMemoryStore()

	persistent.Add(ctx, "char-1", 1001, 5, "loot")
	cache.Add(ctx, "char-1", 1001, 5, "loot")
	cache.Add(ctx, "char-1", 9999, 1, "stale-cache-only")

	s := New(persistent, cache)

	tx, err := s.BeginTransaction(ctx, "char-1")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	if _, err := s.Add(ctx, "char-1", 1001, 2, "loot"); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := s.RollbackTransaction(ctx, tx); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	persistentState, _, _ := persistent.Load(ctx, "char-1")
	if persistentState.Items[1001] != 5 {
		t.Fatalf("expected persistent item 1001 restored to 5, got %d", persistentState.Items[1001])
	}

	cacheState, _, _ := cache.Load(ctx, "char-1")
	if cacheState.Items[1001] != 5 {
		t.Fatalf("expected cache item 1001 restored to 5, got %d", cacheState.Items[1001])
	}
	if _, exists := cacheState.Items[9999]; !exists {
		t.Fatal("expected cache-only item 9999 to survive rollback, since it predates begin on the cache's own snapshot")
	}
}

func TestCommitAppliesToBothLayers(t *testing.T) {
	ctx := context.Background()
	persistent := inventory.NewMemoryStore()
	cache := inventory.NewMemoryStore()
	s := New(persistent, cache)

	tx, err := s.BeginTransaction(ctx, "char-1")
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := s.Add(ctx, "char-1", 1001, 3, "loot"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.CommitTransaction(ctx, tx); err != nil {
		t.Fatalf("commit: %v", err)
	}

	persistentState, _, _ := persistent.Load(ctx, "char-1")
	if persistentState.Items[1001] != 3 {
		t.Fatalf("expected persistent item 1001 == 3, got %d", persistentState.Items[1001])
	}
	cacheState, _, _ := cache.Load(ctx, "char-1")
	if cacheState.Items[1001] != 3 {
		t.Fatalf("expected cache item 1001 == 3, got %d", cacheState.Items[1001])
	}
}
