package method

import "sync/atomic"

// UpdateTracker counts cord operations per method over a tracked cord's
// lifetime.
//
// The counters use relaxed atomic adds so that statistics readers can
// copy them without taking the owning node's lock. The tracker is not
// independently synchronized beyond that: callers must hold the owning
// node's lock while recording, and copies taken concurrently with
// updates are eventually consistent, not linearizable. That trade-off
// is intentional - the counters feed best-effort production
// monitoring, not correctness-critical reads.
type UpdateTracker struct {
	counts [NumMethods]atomic.Int64
}

// Record counts a single invocation of method m.
//
// Caller must hold the owning node's lock.
func (t *UpdateTracker) Record(m Method) {
	t.RecordN(m, 1)
}

// RecordN counts n invocations of method m.
//
// Out-of-range methods are ignored rather than faulted: the tracker is
// a counting sink, not a validator.
func (t *UpdateTracker) RecordN(m Method, n int64) {
	if m < NumMethods {
		t.counts[m].Add(n)
	}
}

// Value returns the current count for method m, 0 if m was never
// recorded.
func (t *UpdateTracker) Value(m Method) int64 {
	if m >= NumMethods {
		return 0
	}
	return t.counts[m].Load()
}

// Total returns the sum of all per-method counts.
func (t *UpdateTracker) Total() int64 {
	var total int64
	for i := range t.counts {
		total += t.counts[i].Load()
	}
	return total
}

// Copy returns a value snapshot of the tracker.
//
// The copy is lossy with respect to concurrent Record calls: each
// counter is read individually, so a copy taken mid-update may reflect
// some but not all of a batch of increments.
func (t *UpdateTracker) Copy() *UpdateTracker {
	c := &UpdateTracker{}
	for i := range t.counts {
		c.counts[i].Store(t.counts[i].Load())
	}
	return c
}
