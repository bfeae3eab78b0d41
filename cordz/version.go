package cordz

import "github.com/kolkov/cordz/internal/cordz/sampler"

// Version information for the cordz tracking runtime.
const (
	// Version is the current version of the tracking runtime.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides runtime information about the tracking subsystem.
type Info struct {
	// Version is the runtime version string.
	Version string

	// SamplingEnabled indicates whether cord sampling is active.
	SamplingEnabled bool

	// SampleRate is the configured rate, 0 when sampling is disabled.
	SampleRate uint64
}

// GetInfo returns information about the tracking runtime.
//
// Example:
//
//	info := cordz.GetInfo()
//	fmt.Printf("cordz %s (sampling: %v)\n", info.Version, info.SamplingEnabled)
func GetInfo() Info {
	return Info{
		Version:         Version,
		SamplingEnabled: sampler.IsEnabled(),
		SampleRate:      sampler.Rate(),
	}
}
