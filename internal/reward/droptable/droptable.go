// Package droptable implements probability-weighted bonus reward rolls,
// layered on top of the core grant contract as a supplemental drop
// table: each entry independently rolls a chance and, on success,
// contributes a random quantity within its configured range.
package droptable

import (
	"math/rand"
	"sync"

	"dungeonhub/internal/reward"
)

type Entry struct {
	ItemID      uint32
	MinQuantity uint32
	MaxQuantity uint32
	Probability float64
}

// DropTable holds named bonus tables keyed by table id (e.g. dungeon
// difficulty tier).
type DropTable struct {
	mu     sync.RWMutex
	tables map[uint32][]Entry
}

func New() *DropTable {
	return &DropTable{tables: make(map[uint32][]Entry)}
}

// NewDefault seeds the standard starter table used by dev/testing
// environments.
func NewDefault() *DropTable {
	d := New()
	d.AddEntry(1, Entry{ItemID: 1001, MinQuantity: 1, MaxQuantity: 2, Probability: 0.75})
	d.AddEntry(1, Entry{ItemID: 2001, MinQuantity: 1, MaxQuantity: 1, Probability: 0.25})
	d.AddEntry(1, Entry{ItemID: 3001, MinQuantity: 2, MaxQuantity: 4, Probability: 0.10})
	return d
}

func (d *DropTable) AddEntry(tableID uint32, entry Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables[tableID] = append(d.tables[tableID], entry)
}

func (d *DropTable) HasTable(tableID uint32) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.tables[tableID]
	return ok
}

// Roll independently evaluates every entry in tableID against rng and
// returns the items that hit, each with a random quantity in its range.
func (d *DropTable) Roll(tableID uint32, rng *rand.Rand) []reward.Item {
	d.mu.RLock()
	entries := d.tables[tableID]
	d.mu.RUnlock()
	if len(entries) == 0 {
		return nil
	}

	var rewards []reward.Item
	for _, e := range entries {
		if rng.Float64() > e.Probability {
			continue
		}
		minQty, maxQty := e.MinQuantity, e.MaxQuantity
		if minQty > maxQty {
			minQty, maxQty = maxQty, minQty
		}
		qty := minQty
		if maxQty > minQty {
			qty = minQty + uint32(rng.Intn(int(maxQty-minQty+1)))
		}
		rewards = append(rewards, reward.Item{ItemID: e.ItemID, Qty: qty})
	}
	return rewards
}
