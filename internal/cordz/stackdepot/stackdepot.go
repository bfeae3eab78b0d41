// Package stackdepot implements deduplicated storage for the call
// stacks captured when cords are sampled.
//
// Every sampled cord records the stack of its creation site, and a
// child cord additionally references its parent's stack. Most cords of
// a given program are created from a handful of call sites, so the
// depot stores each unique stack once and hands out a 64-bit hash as
// the reference. A tracked-cord record then carries two 8-byte hashes
// instead of two full program-counter arrays.
//
// Design:
//   - Fixed-depth capture (32 frames) via runtime.Callers
//   - FNV-1a hash over the captured program counters
//   - Global sync.Map keyed by hash (lock-free reads, rare writes)
//
// Stack capture is best effort. Capture returning 0 means no stack was
// available; Get(0) returns nil and a nil StackTrace formats as empty.
// Absent stacks degrade diagnostic quality only, never tracking
// correctness.
package stackdepot

import (
	"fmt"
	"hash/fnv"
	"runtime"
	"strings"
	"sync"
	"unsafe"
)

// MaxFrames is the maximum number of stack frames captured per cord.
//
// Creation sites of interest are almost always visible within the top
// 32 frames; deeper frames add memory without adding signal.
const MaxFrames = 32

// StackTrace is a captured creation-site stack.
//
// The PC array is fixed-size so that all depot entries have the same
// footprint; Depth gives the number of valid leading entries.
type StackTrace struct {
	PC    [MaxFrames]uintptr
	Depth int
}

// depot is the global deduplication store, hash -> *StackTrace.
// Entries are immutable once stored.
var depot sync.Map

// Capture records the current call stack and returns its depot hash.
//
// skip is the number of stack frames to omit on top of Capture itself,
// so Capture(0) starts the recorded stack at Capture's caller. If the
// identical stack has been captured before, the existing entry is
// reused and its hash returned.
//
// Returns 0 when the runtime reports no stack; callers treat that as a
// valid empty stack.
func Capture(skip int) uint64 {
	// Skip runtime.Callers and Capture itself, plus caller-requested frames.
	var pcs [MaxFrames]uintptr
	n := runtime.Callers(2+skip, pcs[:])
	if n == 0 {
		return 0
	}

	hash := hashPCs(pcs[:n])
	if _, ok := depot.Load(hash); ok {
		return hash
	}

	depot.Store(hash, &StackTrace{PC: pcs, Depth: n})
	return hash
}

// Get retrieves a stack trace by its depot hash.
//
// Returns nil for hash 0 (no stack captured) and for unknown hashes.
func Get(hash uint64) *StackTrace {
	if hash == 0 {
		return nil
	}
	val, ok := depot.Load(hash)
	if !ok {
		return nil
	}
	return val.(*StackTrace)
}

// hashPCs computes the FNV-1a hash of the captured program counters.
// Fast, well distributed for PC sequences, and in the standard library.
func hashPCs(pcs []uintptr) uint64 {
	h := fnv.New64a()
	for _, pc := range pcs {
		//nolint:gosec // G103: reading the PC value as bytes for hashing only.
		pcBytes := (*[8]byte)(unsafe.Pointer(&pc))[:]
		_, _ = h.Write(pcBytes) // Write never fails for hash.Hash.
	}
	return h.Sum64()
}

// PCs returns the valid program counters of the trace.
//
// A nil trace yields nil, which callers treat as an empty stack.
func (st *StackTrace) PCs() []uintptr {
	if st == nil {
		return nil
	}
	return st.PC[:st.Depth]
}

// Format symbolizes the trace into a human-readable listing:
//
//	cordz.sampleNewCord()
//	    /path/to/cord.go:118
//
// Symbol resolution is best effort: frames the runtime cannot resolve
// are dropped silently, and a nil or fully-unresolvable trace formats
// as the empty string.
func (st *StackTrace) Format() string {
	if st == nil || st.Depth == 0 {
		return ""
	}

	frames := runtime.CallersFrames(st.PCs())

	var buf strings.Builder
	for {
		frame, more := frames.Next()
		if frame.PC == 0 {
			break
		}
		if frame.Function != "" {
			fmt.Fprintf(&buf, "%s()\n", frame.Function)
			fmt.Fprintf(&buf, "    %s:%d\n", frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return buf.String()
}

// Reset clears the depot. Test use only; not safe concurrently with
// Capture or Get.
func Reset() {
	depot = sync.Map{}
}

// Stats returns the number of unique stacks stored and their
// approximate memory footprint in bytes. O(n) over the depot; not for
// hot paths.
func Stats() (uniqueStacks int, totalBytes int64) {
	depot.Range(func(_, _ any) bool {
		uniqueStacks++
		return true
	})

	// Fixed PC array plus depth, plus sync.Map entry overhead.
	const bytesPerStack = MaxFrames*8 + 8 + 32
	return uniqueStacks, int64(uniqueStacks) * bytesPerStack
}
