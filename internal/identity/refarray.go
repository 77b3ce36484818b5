package identity

import "github.com/roach88/collcopy/internal/ir"

// RefArray holds weak references to records by unique ID.
type RefArray struct {
	reg  *Registry
	uids []uint32
}

// NewRefArray creates an empty reference array resolved through reg.
func NewRefArray(reg *Registry) *RefArray {
	return &RefArray{reg: reg}
}

// Add references obj, registering it when it has no identity yet.
func (a *RefArray) Add(obj ir.Object) {
	a.uids = append(a.uids, a.reg.Register(obj))
}

// At resolves the i-th reference. Returns nil when the index is out of range
// or the referenced record is no longer registered.
func (a *RefArray) At(i int) ir.Object {
	if i < 0 || i >= len(a.uids) {
		return nil
	}
	obj, ok := a.reg.Lookup(a.uids[i])
	if !ok {
		return nil
	}
	return obj
}

// UID returns the i-th unique ID.
func (a *RefArray) UID(i int) uint32 {
	if i < 0 || i >= len(a.uids) {
		return 0
	}
	return a.uids[i]
}

// Len returns the number of references.
func (a *RefArray) Len() int { return len(a.uids) }
