// Package cordrep defines the representation node the cordz tracking
// layer observes.
//
// A cord's tree of representation nodes lives in the string library
// proper; the tracking layer only needs an opaque reference with a
// length observable. CordRep is that reference. It carries no tree
// structure and no buffer management - those belong to the cord
// implementation, not to its diagnostics.
package cordrep

// CordRep is the root of a cord's representation tree as seen by the
// tracking layer.
//
// A tracked cord holds exactly one CordRep reference at a time. The
// pointer identity is what the tracking layer records and swaps; the
// Length field is the only attribute it reads.
type CordRep struct {
	// Length is the total number of bytes reachable from this node.
	Length int64
}

// NewFlat returns a representation node for a flat buffer of n bytes.
//
// The tracking layer uses this in tests as the smallest possible stand-in
// for a real representation tree.
func NewFlat(n int64) *CordRep {
	return &CordRep{Length: n}
}
