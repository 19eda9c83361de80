// Package stats implements dnsseedd's observability layer: request and
// RCODE counters, a diagnostic most-queried-names tracker, a unique
// source-address estimator, and periodic snapshot persistence. None of it
// is consulted by the responder to produce an answer — it only observes.
package stats

import (
	"sync/atomic"

	"github.com/dnsseedd/dnsseed/internal/dnsseed/domain"
)

type atomicCounter struct {
	v atomic.Uint64
}

func (c *atomicCounter) add(delta uint64) { c.v.Add(delta) }
func (c *atomicCounter) load() uint64     { return c.v.Load() }

// rcodeHistogramSize covers the IANA-assigned RCODE range (0-10); this
// server only ever produces 0, 1, 4, or 5, but the histogram is sized for
// the full assigned range rather than just the values it emits.
const rcodeHistogramSize = 11

// Counters is the atomic request/RCODE counter set. A nil *Counters
// silently discards everything it is asked to record, since every method
// guards against a nil receiver.
type Counters struct {
	requests atomicCounter
	rcodes   [rcodeHistogramSize]atomicCounter
}

// NewCounters returns a zeroed Counters.
func NewCounters() *Counters {
	return &Counters{}
}

// RecordRequest increments the request count.
func (c *Counters) RecordRequest() {
	if c == nil {
		return
	}
	c.requests.add(1)
}

// RecordResponse increments rcode's histogram slot.
func (c *Counters) RecordResponse(rcode domain.RCode) {
	if c == nil {
		return
	}
	c.rcodes[clampRCode(rcode)].add(1)
}

// Requests returns the total request count.
func (c *Counters) Requests() uint64 {
	if c == nil {
		return 0
	}
	return c.requests.load()
}

// RCodeCount returns how many responses carried rcode.
func (c *Counters) RCodeCount(rcode domain.RCode) uint64 {
	if c == nil {
		return 0
	}
	return c.rcodes[clampRCode(rcode)].load()
}

func clampRCode(rcode domain.RCode) int {
	idx := int(rcode)
	if idx >= rcodeHistogramSize {
		return rcodeHistogramSize - 1
	}
	return idx
}

// CounterSnapshot is a point-in-time copy of Counters, suitable for
// persisting to a Store.
type CounterSnapshot struct {
	Requests uint64
	RCodes   [rcodeHistogramSize]uint64
}

// Snapshot copies the current counter values.
func (c *Counters) Snapshot() CounterSnapshot {
	if c == nil {
		return CounterSnapshot{}
	}
	snap := CounterSnapshot{Requests: c.Requests()}
	for i := range c.rcodes {
		snap.RCodes[i] = c.rcodes[i].load()
	}
	return snap
}
