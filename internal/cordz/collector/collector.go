// Package collector turns the live tracking registry into sample
// reports for an in-process or out-of-process diagnostic exporter.
//
// Collect walks the registry under a handle.Snapshot, so it never
// blocks cord tracking and never observes a record mid-destruction.
// Each visited record is snapshot-copied into a plain Sample; the
// registry is touched only through atomic head/next reads.
//
// Reporter buffers whole reports in a bounded FIFO so that collection
// (cheap, on a timer) can run independently of export (possibly slow,
// behind a writer). When the buffer is full the oldest report is
// dropped; monitoring data is best effort by design.
package collector

import (
	"fmt"
	"io"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/eapache/queue"
	"golang.org/x/exp/slices"

	"github.com/kolkov/cordz/internal/cordz/handle"
	"github.com/kolkov/cordz/internal/cordz/info"
	"github.com/kolkov/cordz/internal/cordz/method"
)

// Sample is one tracked cord's diagnostics, decoupled from the live
// record.
type Sample struct {
	// Size is the cord's last recorded size in bytes.
	Size int64

	// Method is the operation that created the cord; ParentMethod the
	// one that created its parent (Unknown without a tracked parent).
	Method       method.Method
	ParentMethod method.Method

	// Updates is the total number of recorded update operations.
	Updates int64

	// Stack is the symbolized creation stack, empty when capture or
	// symbolization yielded nothing.
	Stack string
}

// Report is one collection pass over the registry.
type Report struct {
	// Taken is when the pass ran.
	Taken time.Time

	// Samples holds the tracked cords seen, largest first.
	Samples []Sample
}

// Collect walks the registry once and returns the tracked cords,
// largest first.
//
// The walk holds no lock; a snapshot taken for the duration of the
// pass keeps every visited record dereferenceable even if it is
// untracked mid-walk.
func Collect() []Sample {
	snap := handle.NewSnapshot()
	defer snap.Release()

	var samples []Sample
	for ci := info.Head(snap); ci != nil; ci = ci.Next(snap) {
		st := ci.Statistics()
		samples = append(samples, Sample{
			Size:         st.Size,
			Method:       st.Method,
			ParentMethod: st.ParentMethod,
			Updates:      st.UpdateTracker.Total(),
			Stack:        ci.FormatStack(),
		})
	}

	slices.SortFunc(samples, func(a, b Sample) int {
		switch {
		case a.Size > b.Size:
			return -1
		case a.Size < b.Size:
			return 1
		default:
			return 0
		}
	})
	return samples
}

// DefaultMaxPending bounds a Reporter's report buffer when the caller
// does not choose one.
const DefaultMaxPending = 16

// Reporter buffers collection passes for later export.
type Reporter struct {
	mu      sync.Mutex
	pending *queue.Queue // of Report, oldest first
	max     int
	dropped uint64
}

// NewReporter returns a reporter buffering at most maxPending reports;
// maxPending <= 0 selects DefaultMaxPending.
func NewReporter(maxPending int) *Reporter {
	if maxPending <= 0 {
		maxPending = DefaultMaxPending
	}
	return &Reporter{pending: queue.New(), max: maxPending}
}

// Capture runs one collection pass and queues the report, dropping the
// oldest pending reports if the buffer is full. Returns the number of
// cords sampled in this pass.
func (r *Reporter) Capture() int {
	rep := Report{Taken: time.Now(), Samples: Collect()}

	r.mu.Lock()
	for r.pending.Length() >= r.max {
		r.pending.Remove()
		r.dropped++
	}
	r.pending.Add(rep)
	r.mu.Unlock()

	return len(rep.Samples)
}

// Pending returns the number of buffered reports.
func (r *Reporter) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending.Length()
}

// Drain writes all buffered reports to w and empties the buffer.
// Reports dropped since the last drain are noted at the end.
func (r *Reporter) Drain(w io.Writer) error {
	r.mu.Lock()
	reports := make([]Report, 0, r.pending.Length())
	for r.pending.Length() > 0 {
		reports = append(reports, r.pending.Remove().(Report))
	}
	dropped := r.dropped
	r.dropped = 0
	r.mu.Unlock()

	for _, rep := range reports {
		if err := writeReport(w, rep); err != nil {
			return err
		}
	}
	if dropped > 0 {
		if _, err := fmt.Fprintf(w, "cordz: %d report(s) dropped since last drain\n", dropped); err != nil {
			return err
		}
	}
	return nil
}

// WriteReport formats one report to w in the style of the runtime's
// diagnostic dumps.
func WriteReport(w io.Writer, rep Report) error {
	return writeReport(w, rep)
}

// writeReport formats one report in the style of the runtime's
// diagnostic dumps.
func writeReport(w io.Writer, rep Report) error {
	var total int64
	for _, s := range rep.Samples {
		total += s.Size
	}
	totalBytes, err := safecast.Conv[uint64](total)
	if err != nil {
		return fmt.Errorf("cordz: report total overflows: %w", err)
	}

	if _, err := fmt.Fprintf(w, "==================\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "CORDZ SAMPLE REPORT @ %s\n", rep.Taken.Format(time.RFC3339)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Tracked cords: %d, total bytes: %d\n", len(rep.Samples), totalBytes); err != nil {
		return err
	}
	for i, s := range rep.Samples {
		_, err := fmt.Fprintf(w, "--- sample %d: %d bytes, created by %s (parent: %s), %d update(s)\n",
			i+1, s.Size, s.Method, s.ParentMethod, s.Updates)
		if err != nil {
			return err
		}
		if s.Stack != "" {
			if _, err := io.WriteString(w, s.Stack); err != nil {
				return err
			}
		}
	}
	_, err = fmt.Fprintf(w, "==================\n")
	return err
}
