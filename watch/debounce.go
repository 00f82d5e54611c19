// Package watch keeps manifests in sync with filesystem changes.
package watch

import (
	"sync"
	"time"
)

// Debouncer collects values until no new value arrived for a quiet period
// and then hands them to flush in one call. Flushes never overlap.
type Debouncer[T any] struct {
	quiet time.Duration
	flush func([]T)

	mu      sync.Mutex
	pending []T
	timer   *time.Timer
	stopped bool

	flushMu sync.Mutex
}

// NewDebouncer returns a debouncer that calls flush after quiet has passed
// since the last Add.
func NewDebouncer[T any](quiet time.Duration, flush func([]T)) *Debouncer[T] {
	return &Debouncer[T]{quiet: quiet, flush: flush}
}

// Add queues v and restarts the quiet period. Values added after Stop are dropped.
func (d *Debouncer[T]) Add(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = append(d.pending, v)
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.Flush)
}

// Pending returns the number of values waiting for the next flush.
func (d *Debouncer[T]) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Remove drops the pending values drop reports true for and returns how
// many were dropped.
func (d *Debouncer[T]) Remove(drop func(T) bool) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.pending[:0]
	for _, v := range d.pending {
		if !drop(v) {
			kept = append(kept, v)
		}
	}
	n := len(d.pending) - len(kept)
	clear(d.pending[len(kept):])
	d.pending = kept
	return n
}

// Flush hands the pending values to flush now.
func (d *Debouncer[T]) Flush() {
	d.flushMu.Lock()
	defer d.flushMu.Unlock()

	d.mu.Lock()
	batch := d.pending
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	if len(batch) > 0 {
		d.flush(batch)
	}
}

// Stop flushes what is pending and drops later values.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.Flush()
}
