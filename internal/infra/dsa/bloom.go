// Package dsa holds small data structures used on the reward hot path.
package dsa

import (
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ─── Event Filter ───────────────────────────────────────────────────────────
// Probabilistic membership for journaled event IDs.
//   - Contains false → the ID was never added (no false negatives)
//   - Contains true  → the ID was probably added; confirm with the journal

// FilterConfig sizes an event filter.
type FilterConfig struct {
	ExpectedEvents int     // events the filter is sized for
	FPRate         float64 // target false positive rate, e.g. 0.001
}

// DefaultFilterConfig sizes for 100k events at 0.1% false positives.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		ExpectedEvents: 100_000,
		FPRate:         0.001,
	}
}

// EventFilter is a Bloom filter over event IDs. Safe for concurrent use.
type EventFilter struct {
	mu      sync.RWMutex
	bits    []uint64
	numBits uint64
	numHash uint64
	count   int
}

// NewEventFilter creates a filter sized for cfg.
//
//	m = -(n * ln(p)) / (ln(2)^2)
//	k = (m/n) * ln(2)
func NewEventFilter(cfg FilterConfig) *EventFilter {
	def := DefaultFilterConfig()
	if cfg.ExpectedEvents <= 0 {
		cfg.ExpectedEvents = def.ExpectedEvents
	}
	if cfg.FPRate <= 0 || cfg.FPRate >= 1 {
		cfg.FPRate = def.FPRate
	}

	n := float64(cfg.ExpectedEvents)
	m := uint64(math.Ceil(-(n * math.Log(cfg.FPRate)) / (math.Ln2 * math.Ln2)))
	k := uint64(math.Ceil(float64(m) / n * math.Ln2))
	if m < 64 {
		m = 64
	}
	if k == 0 {
		k = 1
	}

	return &EventFilter{
		bits:    make([]uint64, (m+63)/64),
		numBits: m,
		numHash: k,
	}
}

// Add records id.
func (f *EventFilter) Add(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	h1, h2 := hashes(id)
	for i := uint64(0); i < f.numHash; i++ {
		pos := (h1 + i*h2) % f.numBits
		f.bits[pos/64] |= 1 << (pos % 64)
	}
	f.count++
}

// Contains reports whether id may have been added.
func (f *EventFilter) Contains(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	h1, h2 := hashes(id)
	for i := uint64(0); i < f.numHash; i++ {
		pos := (h1 + i*h2) % f.numBits
		if f.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}

// Count returns the number of Add calls.
func (f *EventFilter) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.count
}

// EstimatedFPRate is (1 - e^(-kn/m))^k for the current fill.
func (f *EventFilter) EstimatedFPRate() float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()

	m := float64(f.numBits)
	k := float64(f.numHash)
	n := float64(f.count)
	return math.Pow(1-math.Exp(-k*n/m), k)
}

// Size returns the bit count and hash count.
func (f *EventFilter) Size() (numBits, numHash uint64) {
	return f.numBits, f.numHash
}

// Reset clears the filter.
func (f *EventFilter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.bits)
	f.count = 0
}

// hashes derives two base hashes for double hashing: h_i = h1 + i*h2.
func hashes(id string) (uint64, uint64) {
	h1 := xxhash.Sum64String(id)
	h2 := h1>>33 | h1<<31
	return h1, h2 | 1
}
