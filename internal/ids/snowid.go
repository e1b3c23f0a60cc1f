package ids

import (
	"strconv"
	"sync"
	"time"
)

// generator mints the 64-bit ids this module hands out for every
// server-assigned identifier that crosses a component boundary: session
// ids, party/guild/instance ids, match tickets' numeric companions, and
// reward grant ids. All of them share one generator so a single node's
// ids stay monotonic across every domain that calls Generate, which the
// dispatcher relies on when it logs/correlates by id across services.
type generator struct {
	mu       sync.Mutex
	epochMS  int64
	nodeID   int64 // 0~1023, see SetNodeID
	seq      int64 // 0~4095, reset each millisecond
	lastTSMS int64
}

var (
	defaultGen *generator
	once       sync.Once
)

func initDefault() {
	once.Do(func() {
		defaultGen = &generator{
			epochMS: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
			nodeID:  1,
		}
	})
}

// Generate returns a new monotonic snowflake-style id: 41 bits of
// millisecond timestamp since the package epoch, 10 bits of node id, 12
// bits of per-millisecond sequence.
func Generate() int64 {
	initDefault()
	return defaultGen.next()
}

func GenerateString() string {
	return strconv.FormatInt(Generate(), 10)
}

// SetNodeID configures the node id (0~1023) this process mints ids
// under. cmd/dungeonhubd calls this once at startup with
// config.AppConfig.NodeID before the dispatcher mints any session,
// party, instance, or grant id, so ids minted by two DungeonHub
// processes sharing a node id range never collide.
func SetNodeID(nodeID int64) {
	initDefault()
	if nodeID < 0 || nodeID > 1023 {
		nodeID = 1
	}
	defaultGen.nodeID = nodeID
}

func (g *generator) next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	for {
		now := time.Now().UnixMilli()
		if now < g.lastTSMS {
			// Clock moved backwards (NTP step, VM migration): wait it out
			// rather than risk handing out a duplicate id.
			time.Sleep(time.Duration(g.lastTSMS-now) * time.Millisecond)
			continue
		}
		if now == g.lastTSMS {
			g.seq = (g.seq + 1) & 0xFFF
			if g.seq == 0 {
				// Sequence exhausted within this millisecond: busy-wait for
				// the next tick instead of overflowing into the node bits.
				for now <= g.lastTSMS {
					now = time.Now().UnixMilli()
				}
			}
		} else {
			g.seq = 0
		}
		g.lastTSMS = now

		ts := (now - g.epochMS) & ((1 << 41) - 1)
		return (ts << 22) | (g.nodeID << 12) | g.seq
	}
}
