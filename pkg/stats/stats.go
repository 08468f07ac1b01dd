// Package stats provides an explicit, caller-owned counter bag for
// measuring search efficiency (spec.md §5, §9 design notes).
//
// The source keeps this as process-wide mutable state; §9 explicitly
// flags that as wrong for a systems language and asks for an explicit
// collector threaded through calls instead. Grounded on the shape of
// the teacher's basic.PageStats (a plain counter struct, no external
// library) — that's the right scope here too: this is a one-shot
// comparison counter, not something a metrics library's scrape-based
// model fits.
package stats

import "sync"

// Collector accumulates named counters. The zero value is ready to use.
// Safe for concurrent increments, but intended for single-threaded use
// within one search call as spec.md §5 describes.
type Collector struct {
	mu       sync.Mutex
	counters map[string]uint64
}

// Well-known counter names. pkg/record's search operations increment
// KeyComparisons; nothing in this module increments PagesVisited.
const (
	KeyComparisons = "key_comparisons"
	PagesVisited   = "pages_visited"
)

// New returns a ready-to-use Collector.
func New() *Collector {
	return &Collector{counters: make(map[string]uint64)}
}

// Add increments the named counter by delta. A nil Collector silently
// discards the increment, so callers may pass nil to opt out of
// measurement entirely.
func (c *Collector) Add(name string, delta uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counters == nil {
		c.counters = make(map[string]uint64)
	}
	c.counters[name] += delta
}

// Get returns the current value of the named counter.
func (c *Collector) Get(name string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[name]
}

// Reset zeroes all counters so the Collector can be reused for another
// measurement, matching the source's "callers reset between
// measurements" convention (spec.md §5).
func (c *Collector) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters = make(map[string]uint64)
}

// Snapshot returns a copy of all counters.
func (c *Collector) Snapshot() map[string]uint64 {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]uint64, len(c.counters))
	for k, v := range c.counters {
		out[k] = v
	}
	return out
}
