// Package info implements the tracked-cord record (CordzInfo) and the
// global registry of live records.
//
// When a cord is selected for profiling, TrackCord attaches a
// CordzInfo to it. The record captures the creation call stack, the
// method that created the cord and, for cords created from another
// cord, the parent's stack and creation method. For the rest of the
// cord's life the record counts updates per method and carries the
// cord's current size, until UntrackCord removes it.
//
// Live records form an intrusive singly traversed list, newest first,
// protected by one process-wide mutex. The mutex is held only for
// pointer relinking; head and next pointers are additionally atomic so
// diagnostic readers can walk the list under a handle.Snapshot without
// taking the lock. A record unlinked while a walker holds it stays
// dereferenceable until the walker's snapshot is released (see package
// handle).
package info

import (
	"sync"
	"sync/atomic"

	"github.com/kolkov/cordz/internal/cordz/cordrep"
	"github.com/kolkov/cordz/internal/cordz/handle"
	"github.com/kolkov/cordz/internal/cordz/method"
	"github.com/kolkov/cordz/internal/cordz/sampler"
	"github.com/kolkov/cordz/internal/cordz/stackdepot"
)

// CordzInfo is the per-cord tracking record.
//
// One record exists per sampled cord, from TrackCord until
// UntrackCord. The record does not own the cord; the cord exclusively
// owns the reference to its record.
type CordzInfo struct {
	handle.Handle

	// Registry linkage, newest first. Written under the registry
	// mutex, read atomically by snapshot walkers. ciNext stays intact
	// after removal so an in-flight walker holding this record can
	// continue its traversal.
	ciNext atomic.Pointer[CordzInfo]
	ciPrev atomic.Pointer[CordzInfo]

	// mu guards rep. held mirrors the lock state so SetCordRep can
	// check the caller honored the locking contract.
	mu   sync.Mutex
	held atomic.Bool
	rep  *cordrep.CordRep

	// Creation-site diagnostics, immutable after TrackCord.
	stack        uint64
	parentStack  uint64
	method       method.Method
	parentMethod method.Method

	// tracker counts updates per method; size is the last recorded
	// cord size. Both readable lock-free by Statistics.
	tracker method.UpdateTracker
	size    atomic.Int64
}

// InlineData is the tracked-cord holder: the cord's inline storage as
// seen by the tracking layer. It pairs the representation root with
// the slot the cord's CordzInfo lives in while the cord is sampled.
type InlineData struct {
	rep *cordrep.CordRep
	ci  atomic.Pointer[CordzInfo]
}

// NewInlineData returns a holder for the given representation root.
func NewInlineData(rep *cordrep.CordRep) *InlineData {
	return &InlineData{rep: rep}
}

// Rep returns the holder's representation root.
func (d *InlineData) Rep() *cordrep.CordRep {
	return d.rep
}

// CordzInfo returns the holder's tracking record, nil if the cord is
// not sampled.
func (d *InlineData) CordzInfo() *CordzInfo {
	return d.ci.Load()
}

// registry is the process-wide list of live records. Initialized
// empty; no teardown beyond process exit. All access goes through the
// package's operations, never raw.
var registry struct {
	mu   sync.Mutex
	head atomic.Pointer[CordzInfo]
}

// TrackCord starts tracking the cord held by data, recording m as its
// creation method. The new record is stored on data and becomes the
// registry head.
//
// The creation stack is captured best effort before any lock is taken;
// an empty stack is valid and degrades diagnostics only.
func TrackCord(data *InlineData, m method.Method) *CordzInfo {
	return trackCord(data, nil, m, 2)
}

// TrackChildCord is TrackCord for a cord created from parent. If
// parent is itself tracked, the record copies the parent's creation
// stack and method; an untracked parent yields an empty parent stack
// and parent method Unknown.
func TrackChildCord(data, parent *InlineData, m method.Method) *CordzInfo {
	return trackCord(data, parent, m, 2)
}

// MaybeTrackCord tracks the cord only if the sampler selects it,
// returning nil otherwise. This is the entry point cord constructors
// call on every cord; TrackCord is for callers that already decided.
func MaybeTrackCord(data *InlineData, m method.Method) *CordzInfo {
	if !sampler.ShouldProfile() {
		return nil
	}
	return trackCord(data, nil, m, 2)
}

func trackCord(data, parent *InlineData, m method.Method, skip int) *CordzInfo {
	ci := &CordzInfo{
		rep:          data.rep,
		method:       m,
		parentMethod: method.Unknown,
		stack:        stackdepot.Capture(skip),
	}
	if parent != nil {
		if pi := parent.CordzInfo(); pi != nil {
			ci.parentStack = pi.stack
			ci.parentMethod = pi.method
		}
	}
	if data.rep != nil {
		ci.size.Store(data.rep.Length)
	}
	ci.tracker.Record(m)
	data.ci.Store(ci)

	registry.mu.Lock()
	head := registry.head.Load()
	ci.ciNext.Store(head)
	if head != nil {
		head.ciPrev.Store(ci)
	}
	registry.head.Store(ci)
	registry.mu.Unlock()

	return ci
}

// UntrackCord stops tracking: the record's representation pointer is
// cleared, the record leaves the registry, and it is handed to the
// delete queue. The untracking cord must not dereference the record
// afterwards, but an in-flight snapshot walker still may.
func UntrackCord(ci *CordzInfo) {
	if ci == nil {
		return
	}
	ci.mu.Lock()
	ci.rep = nil
	ci.mu.Unlock()
	ci.untrack()
}

// untrack unlinks the record from the registry and defers its
// reclamation. ciNext is deliberately left intact for walkers already
// holding the record.
func (ci *CordzInfo) untrack() {
	registry.mu.Lock()
	prev, next := ci.ciPrev.Load(), ci.ciNext.Load()
	if prev != nil {
		prev.ciNext.Store(next)
	} else {
		registry.head.Store(next)
	}
	if next != nil {
		next.ciPrev.Store(prev)
	}
	registry.mu.Unlock()

	handle.Delete(&ci.Handle)
}

// Head returns the most recently tracked record, nil if none is
// tracked. The caller must hold a live snapshot for the whole
// traversal; it is what keeps returned records dereferenceable.
func Head(s *handle.Snapshot) *CordzInfo {
	if s == nil {
		panic("cordz: Head requires a live snapshot")
	}
	return registry.head.Load()
}

// Next returns the record tracked immediately before ci, nil at the
// end of the list. Valid on a record obtained under s even if the
// record has since been untracked.
func (ci *CordzInfo) Next(s *handle.Snapshot) *CordzInfo {
	if s == nil {
		panic("cordz: Next requires a live snapshot")
	}
	return ci.ciNext.Load()
}

// Lock acquires the record's lock and attributes the pending update to
// m. Pair with Unlock.
func (ci *CordzInfo) Lock(m method.Method) {
	ci.mu.Lock()
	ci.held.Store(true)
	ci.tracker.Record(m)
}

// Unlock releases the record's lock. If the representation was set to
// nil while locked, the cord is done with this record and Unlock
// untracks it as its last act.
func (ci *CordzInfo) Unlock() {
	tracked := ci.rep != nil
	ci.held.Store(false)
	ci.mu.Unlock()
	if !tracked {
		ci.untrack()
	}
}

// SetCordRep swaps the tracked representation pointer. Requires the
// record's lock; calling it unlocked is a programming error and
// panics. Setting nil leaves the record visible but empty until the
// matching Unlock removes it from the registry.
func (ci *CordzInfo) SetCordRep(rep *cordrep.CordRep) {
	if !ci.held.Load() {
		panic("cordz: SetCordRep requires the CordzInfo lock to be held")
	}
	ci.rep = rep
}

// CordRepForTesting returns the representation pointer without the
// record's lock. Diagnostic and test use only; not a general
// concurrency-safe read.
func (ci *CordzInfo) CordRepForTesting() *cordrep.CordRep {
	return ci.rep
}

// Stack returns the program counters of the creation stack, nil if no
// stack was captured.
func (ci *CordzInfo) Stack() []uintptr {
	return stackdepot.Get(ci.stack).PCs()
}

// ParentStack returns the parent's creation stack, nil if the cord has
// no tracked parent.
func (ci *CordzInfo) ParentStack() []uintptr {
	return stackdepot.Get(ci.parentStack).PCs()
}

// FormatStack returns the symbolized creation stack, empty when no
// stack was captured or no symbols resolve.
func (ci *CordzInfo) FormatStack() string {
	return stackdepot.Get(ci.stack).Format()
}

// RecordMetrics stores the cord's current size. No structural lock is
// required; the field is independently atomic.
func (ci *CordzInfo) RecordMetrics(size int64) {
	ci.size.Store(size)
}

// ResetForTesting empties the registry. Test use only; never call
// while other goroutines track or walk.
func ResetForTesting() {
	registry.mu.Lock()
	registry.head.Store(nil)
	registry.mu.Unlock()
}
