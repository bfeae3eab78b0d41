// Package sampler decides which cords get a tracking record.
//
// Tracking every cord in a production process would be prohibitively
// expensive; instead the cord constructors ask ShouldProfile on every
// new cord and only selected cords are tracked. Selection uses an
// atomic position counter with modulo-based choice: every rate-th
// cord is profiled. The counter doubles as a pseudo-random source -
// concurrent construction naturally scatters which call sites land on
// the selected positions - without any RNG cost on the hot path.
//
// Sampling is disabled by default (no cord is tracked). It can be
// enabled programmatically via Enable, or at process start through the
// CORDZ_SAMPLE_RATE environment variable.
package sampler

import (
	"os"
	"strconv"
	"sync/atomic"
)

// EnvSampleRate is the environment variable consulted once at init.
// A positive integer value N enables profiling of every Nth cord;
// anything else leaves sampling disabled.
const EnvSampleRate = "CORDZ_SAMPLE_RATE"

var (
	// enabled gates the whole sampler. Checked first so a disabled
	// sampler costs one predictable branch per cord.
	enabled atomic.Bool

	// rate selects every rate-th cord. Values <= 1 profile every cord
	// while enabled.
	rate atomic.Uint64

	// pos is the global cord-construction position counter.
	pos atomic.Uint64

	// Selection statistics, for monitoring and tests.
	totalCords   atomic.Uint64
	sampledCords atomic.Uint64
)

func init() {
	if v := os.Getenv(EnvSampleRate); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			Enable(n)
		}
	}
}

// Enable turns sampling on, profiling every sampleRate-th cord.
// A sampleRate of 0 or 1 profiles every cord.
func Enable(sampleRate uint64) {
	rate.Store(sampleRate)
	enabled.Store(true)
}

// Disable turns sampling off; ShouldProfile returns false until the
// next Enable.
func Disable() {
	enabled.Store(false)
}

// IsEnabled reports whether any cords are being selected.
func IsEnabled() bool {
	return enabled.Load()
}

// Rate returns the configured sampling rate, 0 when sampling is
// disabled.
func Rate() uint64 {
	if !enabled.Load() {
		return 0
	}
	return rate.Load()
}

// ShouldProfile reports whether the cord being constructed should get
// a tracking record.
//
// Called on every cord construction; must stay cheap. Disabled is a
// single branch. Enabled is one atomic add and a modulo.
func ShouldProfile() bool {
	if !enabled.Load() {
		return false
	}
	totalCords.Add(1)

	r := rate.Load()
	if r <= 1 {
		sampledCords.Add(1)
		return true
	}

	if pos.Add(1)%r == 0 {
		sampledCords.Add(1)
		return true
	}
	return false
}

// Stats returns the number of cords seen and selected since the last
// reset. Approximate under concurrency, which is fine for the
// monitoring reads it serves.
func Stats() (total, sampled uint64) {
	return totalCords.Load(), sampledCords.Load()
}

// Reset disables sampling and zeroes counters. Test use only.
func Reset() {
	enabled.Store(false)
	rate.Store(0)
	pos.Store(0)
	totalCords.Store(0)
	sampledCords.Store(0)
}
