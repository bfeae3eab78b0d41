// Package cordz provides the public API for sampling-based cord
// lifecycle tracking.
//
// Cordz instruments a cord (rope-like string) implementation for
// production profiling. A small fraction of cords, chosen by a cheap
// sampling decision, get a tracking record capturing where and how
// they were created; the record then counts every update operation and
// carries the cord's size until the cord is destroyed. A diagnostic
// reader can walk the live records at any time without blocking the
// cords being tracked.
//
// # Quick Start
//
// The cord implementation calls into cordz from its constructors,
// mutators and destructor:
//
//	// Constructor: sample this cord?
//	info := cordz.MaybeTrackCord(data, cordz.MethodConstructorString)
//
//	// Mutator: attribute the update and swap the representation.
//	if info != nil {
//		info.Lock(cordz.MethodAppendString)
//		info.SetCordRep(newRep)
//		info.Unlock()
//	}
//
//	// Destructor.
//	cordz.UntrackCord(info)
//
// Sampling is off by default. Enable it programmatically:
//
//	cordz.Enable(1000) // profile every 1000th cord
//
// or at process start via the CORDZ_SAMPLE_RATE environment variable.
//
// # Reading samples
//
// [CollectSamples] returns a consistent snapshot of all tracked cords,
// largest first. [DumpTo] writes a formatted report, and [NewReporter]
// buffers periodic collection passes for a slower exporter:
//
//	samples := cordz.CollectSamples()
//	_ = cordz.DumpTo(os.Stderr)
//
// # Concurrency contract
//
// Track, untrack and collection may run concurrently from any number
// of goroutines. Per-record mutation (SetCordRep) requires the
// record's own lock, taken via Lock(method); calling SetCordRep
// without it panics. Statistics reads are lock-free and eventually
// consistent - they serve monitoring, not correctness-critical reads.
//
// Collection walks the registry under an internal snapshot: a record
// untracked mid-walk stays safely dereferenceable until the walk
// finishes, via the deferred-reclamation delete queue.
package cordz
