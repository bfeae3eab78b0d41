package cordz_test

import (
	"strings"
	"testing"

	"github.com/kolkov/cordz/cordz"
	"github.com/kolkov/cordz/internal/cordz/handle"
	"github.com/kolkov/cordz/internal/cordz/info"
	"github.com/kolkov/cordz/internal/cordz/sampler"
)

// resetTracking gives each test an empty registry, delete queue and
// sampler.
func resetTracking() {
	info.ResetForTesting()
	handle.Reset()
	sampler.Reset()
}

// TestTrackingLifecycle exercises the full public flow: enable
// sampling, construct, mutate, collect, destroy.
func TestTrackingLifecycle(t *testing.T) {
	resetTracking()
	defer cordz.Disable()

	cordz.Enable(1)
	if !cordz.IsEnabled() {
		t.Fatal("IsEnabled() = false after Enable")
	}
	if got := cordz.SampleRate(); got != 1 {
		t.Errorf("SampleRate() = %d, want 1", got)
	}

	// Constructor.
	data := cordz.NewInlineData(cordz.NewFlat(128))
	ci := cordz.MaybeTrackCord(data, cordz.MethodConstructorString)
	if ci == nil {
		t.Fatal("MaybeTrackCord = nil with rate 1")
	}

	// Mutator.
	ci.Lock(cordz.MethodAppendString)
	ci.SetCordRep(cordz.NewFlat(256))
	ci.Unlock()
	ci.RecordMetrics(256)

	// Collection.
	samples := cordz.CollectSamples()
	if len(samples) != 1 {
		t.Fatalf("CollectSamples() returned %d samples, want 1", len(samples))
	}
	if samples[0].Size != 256 {
		t.Errorf("sample Size = %d, want 256", samples[0].Size)
	}
	if samples[0].Method != cordz.MethodConstructorString {
		t.Errorf("sample Method = %s, want %s", samples[0].Method, cordz.MethodConstructorString)
	}
	if samples[0].Updates != 2 {
		t.Errorf("sample Updates = %d, want 2 (constructor + append)", samples[0].Updates)
	}

	// Destructor.
	cordz.UntrackCord(ci)
	if got := cordz.CollectSamples(); len(got) != 0 {
		t.Errorf("CollectSamples() returned %d samples after untrack, want 0", len(got))
	}
}

// TestUntrackNil tests that destructors may call UntrackCord
// unconditionally.
func TestUntrackNil(t *testing.T) {
	resetTracking()
	cordz.UntrackCord(nil)
}

// TestChildCord tests parent attribution through the facade.
func TestChildCord(t *testing.T) {
	resetTracking()

	parent := cordz.NewInlineData(cordz.NewFlat(64))
	child := cordz.NewInlineData(cordz.NewFlat(32))

	pi := cordz.TrackCord(parent, cordz.MethodConstructorString)
	ci := cordz.TrackChildCord(child, parent, cordz.MethodConstructorCord)

	stats := ci.Statistics()
	if stats.ParentMethod != cordz.MethodConstructorString {
		t.Errorf("ParentMethod = %s, want %s", stats.ParentMethod, cordz.MethodConstructorString)
	}
	if len(ci.ParentStack()) == 0 {
		t.Error("ParentStack() is empty for a tracked parent")
	}

	cordz.UntrackCord(pi)
	cordz.UntrackCord(ci)
}

// TestDumpTo tests the one-shot formatted dump.
func TestDumpTo(t *testing.T) {
	resetTracking()

	data := cordz.NewInlineData(cordz.NewFlat(512))
	ci := cordz.TrackCord(data, cordz.MethodConstructorString)
	defer cordz.UntrackCord(ci)

	var buf strings.Builder
	if err := cordz.DumpTo(&buf); err != nil {
		t.Fatalf("DumpTo failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "CORDZ SAMPLE REPORT") {
		t.Errorf("dump missing report header:\n%s", out)
	}
	if !strings.Contains(out, "Tracked cords: 1, total bytes: 512") {
		t.Errorf("dump missing summary line:\n%s", out)
	}
}

// TestGetInfo tests runtime info reporting.
func TestGetInfo(t *testing.T) {
	resetTracking()

	ri := cordz.GetInfo()
	if ri.Version != cordz.Version {
		t.Errorf("Version = %q, want %q", ri.Version, cordz.Version)
	}
	if ri.SamplingEnabled {
		t.Error("SamplingEnabled = true after reset")
	}

	cordz.Enable(500)
	defer cordz.Disable()
	ri = cordz.GetInfo()
	if !ri.SamplingEnabled {
		t.Error("SamplingEnabled = false after Enable")
	}
	if ri.SampleRate != 500 {
		t.Errorf("SampleRate = %d, want 500", ri.SampleRate)
	}
}
