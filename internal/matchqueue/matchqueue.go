// Package matchqueue implements party matchmaking: insertion-ordered
// candidate holding, MMR-window pairing with wait-time expansion, and
// oldest-candidate-first matching guarantees.
package matchqueue

import (
	"errors"
	"sync"
	"time"
)

var ErrPartySizeOutOfRange = errors.New("matchqueue: party size outside allowed range")

// Config bounds party size and controls pairing tolerance growth.
type Config struct {
	MinPartySize        int
	MaxPartySize         int
	MaxMMRDelta          int64
	ExpansionPerSecond   float64
}

func DefaultConfig() Config {
	return Config{
		MinPartySize:       1,
		MaxPartySize:       5,
		MaxMMRDelta:        50,
		ExpansionPerSecond: 10,
	}
}

// Candidate is a party waiting for a match.
type Candidate struct {
	PartyID    uint64
	DungeonID  uint64
	Difficulty uint16
	PartySize  int
	MMR        int64
	EnqueuedAt time.Time
}

// Queue holds candidates in one insertion order shared by every
// dungeon/difficulty bucket.
type Queue struct {
	mu    sync.Mutex
	cfg   Config
	order []uint64             // party_ids, insertion order, global across buckets
	byID  map[uint64]Candidate // party_id -> candidate
}

func NewQueue(cfg Config) *Queue {
	if cfg.MaxPartySize <= 0 {
		cfg = DefaultConfig()
	}
	return &Queue{cfg: cfg, byID: make(map[uint64]Candidate)}
}

// Enqueue adds or replaces the candidate for partyID. A second enqueue
// for the same party replaces its prior entry and keeps its existing place
// in insertion order; a party not already queued enters at the back.
func (q *Queue) Enqueue(c Candidate) error {
	if c.PartySize < q.cfg.MinPartySize || c.PartySize > q.cfg.MaxPartySize {
		return ErrPartySizeOutOfRange
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.byID[c.PartyID]; !exists {
		q.order = append(q.order, c.PartyID)
	}
	q.byID[c.PartyID] = c
	return nil
}

// Dequeue removes partyID from the queue, e.g. on cancellation.
func (q *Queue) Dequeue(partyID uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.removeLocked(partyID)
}

func (q *Queue) removeLocked(partyID uint64) {
	if _, ok := q.byID[partyID]; !ok {
		return
	}
	delete(q.byID, partyID)
	for i, id := range q.order {
		if id == partyID {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

func compatible(cfg Config, a, b Candidate, now time.Time) bool {
	if a.DungeonID != b.DungeonID || a.Difficulty != b.Difficulty {
		return false
	}
	waitA := now.Sub(a.EnqueuedAt).Seconds()
	waitB := now.Sub(b.EnqueuedAt).Seconds()
	minWait := waitA
	if waitB < minWait {
		minWait = waitB
	}
	tolerance := cfg.MaxMMRDelta + int64(cfg.ExpansionPerSecond*minWait)
	delta := a.MMR - b.MMR
	if delta < 0 {
		delta = -delta
	}
	return delta <= tolerance
}

// FindMatch scans candidates in insertion order, pairing the oldest
// candidate with the first compatible partner (by MMR window expanded by
// wait time), and removes the matched pair. Returns ok=false if no
// compatible pair exists yet.
func (q *Queue) FindMatch(now time.Time) (a, b Candidate, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i := 0; i < len(q.order); i++ {
		candA, exists := q.byID[q.order[i]]
		if !exists {
			continue
		}
		for j := i + 1; j < len(q.order); j++ {
			candB, exists := q.byID[q.order[j]]
			if !exists {
				continue
			}
			if compatible(q.cfg, candA, candB, now) {
				q.removeLocked(candA.PartyID)
				q.removeLocked(candB.PartyID)
				return candA, candB, true
			}
		}
	}
	return Candidate{}, Candidate{}, false
}

// Len reports the number of parties currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// Contains reports whether partyID currently holds a place in the queue.
func (q *Queue) Contains(partyID uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.byID[partyID]
	return ok
}
