// Package handle implements deferred reclamation for tracked-cord
// records.
//
// A record removed from the tracking registry may still be visited by
// a diagnostic reader that started walking the registry before the
// removal. Readers announce themselves by taking a Snapshot; a removed
// record is handed to the package-wide delete queue and is only
// released once every snapshot that existed at removal time has itself
// been released.
//
// The queue is generation stamped: a monotonic counter assigns each
// enqueued handle (and each snapshot marker) its logical position, and
// reclamation drops exactly the queue prefix older than the oldest
// live snapshot. With no live snapshot the queue is empty and deleted
// handles are dropped immediately.
//
// "Released" here means unlinked from the queue so the garbage
// collector can reclaim the record; the queue's reference is what
// keeps a logically deleted record alive for in-flight readers.
package handle

import (
	"sync"
	"sync/atomic"

	"golang.org/x/exp/slices"
)

// Handle is the base of objects whose reclamation must wait for
// outstanding snapshots.
//
// Embed it in any record that readers may hold across its logical
// deletion, and pass the embedded handle to Delete instead of dropping
// the last reference directly.
type Handle struct {
	snapshot bool

	// gen is the generation stamp assigned when the handle enters the
	// delete queue. Zero means the handle was never enqueued.
	gen atomic.Uint64
}

// IsSnapshot reports whether this handle is a snapshot marker rather
// than a deleted record.
func (h *Handle) IsSnapshot() bool {
	return h.snapshot
}

// global is the process-wide delete queue. Initialized empty; no
// teardown beyond process exit.
var global struct {
	mu      sync.Mutex
	dq      []*Handle // oldest enqueued first
	nextGen atomic.Uint64
}

// Snapshot pins the delete queue for the duration of a diagnostic
// read.
//
// While a snapshot is alive, every handle enqueued before it remains
// reachable through the queue, so a reader that obtained a record
// pointer before the record's removal can keep dereferencing it.
// Release the snapshot as soon as the read finishes; it is the only
// thing holding deleted records in memory.
type Snapshot struct {
	Handle

	released atomic.Bool
}

// NewSnapshot atomically inserts a snapshot marker into the delete
// queue and returns it.
func NewSnapshot() *Snapshot {
	s := &Snapshot{}
	s.snapshot = true

	global.mu.Lock()
	s.gen.Store(global.nextGen.Add(1))
	global.dq = append(global.dq, &s.Handle)
	global.mu.Unlock()

	return s
}

// Release removes the snapshot's marker from the delete queue and
// reclaims every entry no older live snapshot still pins.
//
// Release is idempotent; only the first call has effect.
func (s *Snapshot) Release() {
	if s == nil || !s.released.CompareAndSwap(false, true) {
		return
	}

	global.mu.Lock()
	for i, h := range global.dq {
		if h == &s.Handle {
			global.dq = append(global.dq[:i], global.dq[i+1:]...)
			break
		}
	}
	cleanLocked()
	global.mu.Unlock()
}

// DiagnosticsHandleIsSafeToInspect reports whether h may be
// dereferenced under this snapshot: h is live (never enqueued) or was
// deleted after the snapshot was taken.
func (s *Snapshot) DiagnosticsHandleIsSafeToInspect(h *Handle) bool {
	if h == nil {
		return true
	}
	gen := h.gen.Load()
	if gen == 0 {
		return true
	}
	return gen > s.gen.Load()
}

// Delete hands h to the delete queue.
//
// If no snapshot is live, no reader can legitimately hold h and it is
// dropped on the spot. Otherwise h joins the queue and stays reachable
// until every snapshot that predates its removal has been released.
// The caller must not dereference h after this call.
func Delete(h *Handle) {
	if h == nil {
		return
	}

	global.mu.Lock()
	defer global.mu.Unlock()

	if !anySnapshotLocked() {
		return
	}
	h.gen.Store(global.nextGen.Add(1))
	global.dq = append(global.dq, h)
}

// SafeToDelete reports whether the delete queue holds no live
// snapshot, i.e. a deleted handle would be dropped immediately.
func SafeToDelete() bool {
	global.mu.Lock()
	defer global.mu.Unlock()
	return !anySnapshotLocked()
}

// anySnapshotLocked reports whether the queue holds a snapshot marker.
// Caller holds global.mu.
func anySnapshotLocked() bool {
	for _, h := range global.dq {
		if h.snapshot {
			return true
		}
	}
	return false
}

// cleanLocked reclaims the queue prefix older than the oldest live
// snapshot: leading non-snapshot entries are unlinked so the garbage
// collector can take them. Caller holds global.mu.
func cleanLocked() {
	i := 0
	for i < len(global.dq) && !global.dq[i].snapshot {
		i++
	}
	if i == 0 {
		return
	}
	// Reslice into a fresh backing array so dropped entries lose their
	// last queue reference.
	global.dq = append([]*Handle(nil), global.dq[i:]...)
}

// DiagnosticsGetDeleteQueue returns a copy of the delete queue, newest
// entry first. Diagnostics and test use only.
func DiagnosticsGetDeleteQueue() []*Handle {
	global.mu.Lock()
	q := slices.Clone(global.dq)
	global.mu.Unlock()

	slices.Reverse(q)
	return q
}

// Reset clears the delete queue. Test use only; never call while
// snapshots are live in other goroutines.
func Reset() {
	global.mu.Lock()
	global.dq = nil
	global.mu.Unlock()
}
