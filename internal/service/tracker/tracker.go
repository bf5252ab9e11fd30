// Package tracker counts work in flight: dispatches being handled and
// external calls waiting on a gateway or text generator.
package tracker

import "sync/atomic"

// Tracker counts running work using atomics. The zero value is ready.
type Tracker struct {
	running atomic.Int64
	peak    atomic.Int64
	total   atomic.Uint64
}

// Inc marks one unit of work as started.
func (t *Tracker) Inc() {
	n := t.running.Add(1)
	t.total.Add(1)
	for {
		p := t.peak.Load()
		if n <= p || t.peak.CompareAndSwap(p, n) {
			return
		}
	}
}

// Dec marks one unit of work as finished.
func (t *Tracker) Dec() { t.running.Add(-1) }

// Track calls Inc and returns the matching Dec.
func (t *Tracker) Track() func() {
	t.Inc()
	return t.Dec
}

// Running returns the current in-flight count.
func (t *Tracker) Running() int64 { return t.running.Load() }

// Peak returns the highest in-flight count seen.
func (t *Tracker) Peak() int64 { return t.peak.Load() }

// Total returns how many units were ever started.
func (t *Tracker) Total() uint64 { return t.total.Load() }
