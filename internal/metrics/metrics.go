// Package metrics holds the process-wide atomic counters the dispatcher
// increments on every packet.
package metrics

import "sync/atomic"

type Metrics struct {
	packetsTotal atomic.Uint64
	bytesTotal   atomic.Uint64
	errorTotal   atomic.Uint64
}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncPackets() {
	m.packetsTotal.Add(1)
}

func (m *Metrics) AddBytes(n uint64) {
	m.bytesTotal.Add(n)
}

func (m *Metrics) IncErrors() {
	m.errorTotal.Add(1)
}

// Snapshot is a read-only copy of the current counter values.
type Snapshot struct {
	PacketsTotal uint64
	BytesTotal   uint64
	ErrorTotal   uint64
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		PacketsTotal: m.packetsTotal.Load(),
		BytesTotal:   m.bytesTotal.Load(),
		ErrorTotal:   m.errorTotal.Load(),
	}
}
