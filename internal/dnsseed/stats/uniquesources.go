package stats

import (
	"sync"
	"time"

	bloomfilter "github.com/bits-and-blooms/bloom/v3"

	"github.com/dnsseedd/dnsseed/internal/dnsseed/common/clock"
)

// UniqueSources estimates how many distinct source addresses have queried
// the server during the current window, using a Bloom filter rather than
// an exact set to bound memory under adversarial query volume. The filter
// resets on a fixed interval so the estimate reflects recent traffic
// rather than the server's entire uptime.
type UniqueSources struct {
	mu          sync.Mutex
	filter      *bloomfilter.BloomFilter
	count       uint64
	capacity    uint
	fpRate      float64
	resetEvery  time.Duration
	clock       clock.Clock
	windowStart time.Time
}

// NewUniqueSources returns a UniqueSources sized for capacity distinct
// addresses at the given false-positive rate, resetting every resetEvery.
func NewUniqueSources(capacity uint, fpRate float64, resetEvery time.Duration, c clock.Clock) *UniqueSources {
	return &UniqueSources{
		filter:      bloomfilter.NewWithEstimates(capacity, fpRate),
		capacity:    capacity,
		fpRate:      fpRate,
		resetEvery:  resetEvery,
		clock:       c,
		windowStart: c.Now(),
	}
}

// Observe records a query from addr, returning true if addr had not
// already been seen in the current window.
func (u *UniqueSources) Observe(addr string) bool {
	if u == nil {
		return false
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.maybeResetLocked()

	key := []byte(addr)
	if u.filter.Test(key) {
		return false
	}
	u.filter.Add(key)
	u.count++
	return true
}

// Estimate returns the current window's distinct-source-address count.
func (u *UniqueSources) Estimate() uint64 {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.maybeResetLocked()
	return u.count
}

func (u *UniqueSources) maybeResetLocked() {
	now := u.clock.Now()
	if now.Sub(u.windowStart) < u.resetEvery {
		return
	}
	u.filter = bloomfilter.NewWithEstimates(u.capacity, u.fpRate)
	u.count = 0
	u.windowStart = now
}
