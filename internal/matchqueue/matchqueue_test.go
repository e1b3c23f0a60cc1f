package matchqueue

import (
	"testing"
	"time"
)

func TestEnqueueRejectsPartySizeOutOfRange(t *testing.T) {
	q := NewQueue(DefaultConfig())
	err := q.Enqueue(Candidate{PartyID: 1, DungeonID: 10, PartySize: 6, EnqueuedAt: time.Now()})
	if err != ErrPartySizeOutOfRange {
		t.Fatalf("expected ErrPartySizeOutOfRange, got %v", err)
	}
}

func TestEnqueueReplacesDuplicatePartyWithoutDuplicatingOrder(t *testing.T) {
	q := NewQueue(DefaultConfig())
	now := time.Now()
	q.Enqueue(Candidate{PartyID: 1, DungeonID: 10, PartySize: 2, MMR: 1000, EnqueuedAt: now})
	q.Enqueue(Candidate{PartyID: 1, DungeonID: 10, PartySize: 2, MMR: 1200, EnqueuedAt: now})

	if q.Len() != 1 {
		t.Fatalf("expected a single entry after replace, got %d", q.Len())
	}
}

func TestFindMatchPairsCompatibleMMRWithinWindow(t *testing.T) {
	q := NewQueue(DefaultConfig())
	now := time.Now()
	q.Enqueue(Candidate{PartyID: 1, DungeonID: 10, Difficulty: 1, PartySize: 2, MMR: 1000, EnqueuedAt: now})
	q.Enqueue(Candidate{PartyID: 2, DungeonID: 10, Difficulty: 1, PartySize: 2, MMR: 1030, EnqueuedAt: now})

	a, b, ok := q.FindMatch(now)
	if !ok {
		t.Fatal("expected a match within the MMR window")
	}
	if (a.PartyID != 1 && b.PartyID != 1) || (a.PartyID != 2 && b.PartyID != 2) {
		t.Fatalf("expected parties 1 and 2 matched, got %+v %+v", a, b)
	}
	if q.Len() != 0 {
		t.Fatalf("expected matched parties removed from queue, got %d remaining", q.Len())
	}
}

func TestFindMatchRejectsTooFarOutsideWindowUntilWaitExpandsIt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxMMRDelta = 50
	cfg.ExpansionPerSecond = 10
	q := NewQueue(cfg)
	now := time.Now()
	q.Enqueue(Candidate{PartyID: 1, DungeonID: 10, Difficulty: 1, PartySize: 2, MMR: 1000, EnqueuedAt: now})
	q.Enqueue(Candidate{PartyID: 2, DungeonID: 10, Difficulty: 1, PartySize: 2, MMR: 1100, EnqueuedAt: now})

	if _, _, ok := q.FindMatch(now); ok {
		t.Fatal("expected no match immediately: delta 100 exceeds base window 50")
	}

	// After 6 seconds of waiting the window expands by 60, covering delta 100.
	later := now.Add(6 * time.Second)
	if _, _, ok := q.FindMatch(later); !ok {
		t.Fatal("expected wait-time expansion to eventually permit the match")
	}
}

func TestFindMatchRequiresSameDungeonAndDifficulty(t *testing.T) {
	q := NewQueue(DefaultConfig())
	now := time.Now()
	q.Enqueue(Candidate{PartyID: 1, DungeonID: 10, Difficulty: 1, PartySize: 2, MMR: 1000, EnqueuedAt: now})
	q.Enqueue(Candidate{PartyID: 2, DungeonID: 11, Difficulty: 1, PartySize: 2, MMR: 1000, EnqueuedAt: now})

	if _, _, ok := q.FindMatch(now); ok {
		t.Fatal("expected no match across different dungeons")
	}
}

func TestFindMatchPrefersOldestCandidateFirst(t *testing.T) {
	q := NewQueue(DefaultConfig())
	now := time.Now()
	// Party 1 enqueued first and is compatible with both 2 and 3; it
	// should be matched with whichever compatible partner appears first
	// in insertion order (party 2), not skipped over for party 3.
	q.Enqueue(Candidate{PartyID: 1, DungeonID: 10, Difficulty: 1, PartySize: 2, MMR: 1000, EnqueuedAt: now})
	q.Enqueue(Candidate{PartyID: 2, DungeonID: 10, Difficulty: 1, PartySize: 2, MMR: 1010, EnqueuedAt: now.Add(time.Second)})
	q.Enqueue(Candidate{PartyID: 3, DungeonID: 10, Difficulty: 1, PartySize: 2, MMR: 1020, EnqueuedAt: now.Add(2 * time.Second)})

	a, b, ok := q.FindMatch(now.Add(3 * time.Second))
	if !ok {
		t.Fatal("expected a match")
	}
	if a.PartyID != 1 && b.PartyID != 1 {
		t.Fatalf("expected oldest candidate (party 1) to be matched first, got %+v %+v", a, b)
	}
}

func TestDequeueRemovesCandidate(t *testing.T) {
	q := NewQueue(DefaultConfig())
	q.Enqueue(Candidate{PartyID: 1, DungeonID: 10, PartySize: 2, EnqueuedAt: time.Now()})
	q.Dequeue(1)
	if q.Contains(1) {
		t.Fatal("expected candidate removed")
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}
}
