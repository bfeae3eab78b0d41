package info

import "github.com/kolkov/cordz/internal/cordz/method"

// Statistics is a plain-value snapshot of a record's diagnostics.
type Statistics struct {
	// Size is the last recorded cord size in bytes.
	Size int64

	// Method is the operation that created the cord.
	Method method.Method

	// ParentMethod is the operation that created the cord's parent,
	// Unknown when the cord has no tracked parent.
	ParentMethod method.Method

	// UpdateTracker holds the per-method update counts at snapshot
	// time.
	UpdateTracker *method.UpdateTracker
}

// Statistics copies the record's size, methods and update counts into
// a plain value.
//
// The copy is taken lock-free and tolerates concurrent updates: it is
// eventually consistent, not linearizable. That suffices for the
// best-effort monitoring reads it serves.
func (ci *CordzInfo) Statistics() Statistics {
	return Statistics{
		Size:          ci.size.Load(),
		Method:        ci.method,
		ParentMethod:  ci.parentMethod,
		UpdateTracker: ci.tracker.Copy(),
	}
}
