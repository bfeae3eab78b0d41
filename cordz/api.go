// Package cordz public API surface.
//
// See doc.go for detailed documentation and examples.
package cordz

import (
	"io"
	"time"

	"github.com/kolkov/cordz/internal/cordz/collector"
	"github.com/kolkov/cordz/internal/cordz/cordrep"
	"github.com/kolkov/cordz/internal/cordz/info"
	"github.com/kolkov/cordz/internal/cordz/method"
	"github.com/kolkov/cordz/internal/cordz/sampler"
)

// Method identifies a cord operation for update tracking.
type Method = method.Method

// The tracked cord operations. MethodUnknown is reported for cords
// whose origin was not observed.
const (
	MethodUnknown              = method.Unknown
	MethodAppendCord           = method.AppendCord
	MethodAppendString         = method.AppendString
	MethodAssignCord           = method.AssignCord
	MethodAssignString         = method.AssignString
	MethodClear                = method.Clear
	MethodConstructorCord      = method.ConstructorCord
	MethodConstructorString    = method.ConstructorString
	MethodFlatten              = method.Flatten
	MethodGetAppendRegion      = method.GetAppendRegion
	MethodMakeCordFromExternal = method.MakeCordFromExternal
	MethodMoveAppendCord       = method.MoveAppendCord
	MethodMoveAssignCord       = method.MoveAssignCord
	MethodMovePrependCord      = method.MovePrependCord
	MethodPrependCord          = method.PrependCord
	MethodPrependString        = method.PrependString
	MethodRemovePrefix         = method.RemovePrefix
	MethodRemoveSuffix         = method.RemoveSuffix
	MethodSubCord              = method.SubCord
)

// CordRep is the opaque representation root a tracked cord points at.
type CordRep = cordrep.CordRep

// InlineData is the tracked-cord holder the cord implementation embeds.
type InlineData = info.InlineData

// CordzInfo is the per-cord tracking record.
type CordzInfo = info.CordzInfo

// Statistics is a plain-value snapshot of one record's diagnostics.
type Statistics = info.Statistics

// Sample is one tracked cord's diagnostics as returned by collection.
type Sample = collector.Sample

// Report is one collection pass over the registry.
type Report = collector.Report

// Reporter buffers collection passes for later export.
type Reporter = collector.Reporter

// NewFlat returns a representation node for a flat buffer of n bytes.
func NewFlat(n int64) *CordRep {
	return cordrep.NewFlat(n)
}

// NewInlineData returns a tracked-cord holder for the given
// representation root.
func NewInlineData(rep *CordRep) *InlineData {
	return info.NewInlineData(rep)
}

// Enable turns sampling on, profiling every sampleRate-th cord.
// A sampleRate of 0 or 1 profiles every cord.
func Enable(sampleRate uint64) {
	sampler.Enable(sampleRate)
}

// Disable turns sampling off. Already-tracked cords stay tracked until
// untracked; MaybeTrackCord stops selecting new ones.
func Disable() {
	sampler.Disable()
}

// IsEnabled reports whether sampling is on.
func IsEnabled() bool {
	return sampler.IsEnabled()
}

// SampleRate returns the configured sampling rate, 0 when sampling is
// disabled.
func SampleRate() uint64 {
	return sampler.Rate()
}

// MaybeTrackCord tracks the cord held by data only if the sampler
// selects it, returning nil otherwise. Cord constructors call this on
// every new cord.
func MaybeTrackCord(data *InlineData, m Method) *CordzInfo {
	return info.MaybeTrackCord(data, m)
}

// TrackCord unconditionally starts tracking the cord held by data,
// recording m as its creation method.
func TrackCord(data *InlineData, m Method) *CordzInfo {
	return info.TrackCord(data, m)
}

// TrackChildCord is TrackCord for a cord created from parent, copying
// the parent's creation stack and method when the parent is itself
// tracked.
func TrackChildCord(data, parent *InlineData, m Method) *CordzInfo {
	return info.TrackChildCord(data, parent, m)
}

// UntrackCord stops tracking. Safe to call with nil, so cord
// destructors can call it unconditionally.
func UntrackCord(ci *CordzInfo) {
	info.UntrackCord(ci)
}

// CollectSamples walks the live records once and returns them as
// plain samples, largest first. Never blocks cord tracking.
func CollectSamples() []Sample {
	return collector.Collect()
}

// NewReporter returns a reporter buffering at most maxPending
// collection passes; maxPending <= 0 selects the default bound.
func NewReporter(maxPending int) *Reporter {
	return collector.NewReporter(maxPending)
}

// DumpTo runs one collection pass and writes the formatted report
// to w.
func DumpTo(w io.Writer) error {
	return collector.WriteReport(w, collector.Report{
		Taken:   time.Now(),
		Samples: collector.Collect(),
	})
}
