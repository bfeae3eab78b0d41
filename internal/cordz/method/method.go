// Package method enumerates the cord operations that cordz tracking
// attributes updates to, and implements the per-node update counters.
//
// Every mutation of a tracked cord is tagged with the Method that
// performed it. The tags serve two purposes:
//   - They identify the operation that created a cord (and, for cords
//     created from another cord, the operation that created the parent).
//   - They index the per-node UpdateTracker counters, which record how
//     often each operation touched the cord over its lifetime.
package method

// Method identifies a cord operation for update tracking.
//
// Unknown is the zero value and is reported for cords whose origin was
// not observed, for example a child sampled from a parent that was
// itself never sampled.
type Method uint8

// The set of tracked cord operations.
//
// NumMethods must remain the last entry: it sizes the UpdateTracker
// counter array.
const (
	Unknown Method = iota
	AppendCord
	AppendString
	AssignCord
	AssignString
	Clear
	ConstructorCord
	ConstructorString
	Flatten
	GetAppendRegion
	MakeCordFromExternal
	MoveAppendCord
	MoveAssignCord
	MovePrependCord
	PrependCord
	PrependString
	RemovePrefix
	RemoveSuffix
	SubCord

	NumMethods
)

// methodNames maps Method values to their display names.
var methodNames = [NumMethods]string{
	Unknown:              "Unknown",
	AppendCord:           "AppendCord",
	AppendString:         "AppendString",
	AssignCord:           "AssignCord",
	AssignString:         "AssignString",
	Clear:                "Clear",
	ConstructorCord:      "ConstructorCord",
	ConstructorString:    "ConstructorString",
	Flatten:              "Flatten",
	GetAppendRegion:      "GetAppendRegion",
	MakeCordFromExternal: "MakeCordFromExternal",
	MoveAppendCord:       "MoveAppendCord",
	MoveAssignCord:       "MoveAssignCord",
	MovePrependCord:      "MovePrependCord",
	PrependCord:          "PrependCord",
	PrependString:        "PrependString",
	RemovePrefix:         "RemovePrefix",
	RemoveSuffix:         "RemoveSuffix",
	SubCord:              "SubCord",
}

// String returns the display name of the method.
func (m Method) String() string {
	if m >= NumMethods {
		return "Invalid"
	}
	return methodNames[m]
}
