package ir

// Ref is the reference bookkeeping carried by every array record.
//
// The fields belong to the process-wide reference-tracking layer, not to the
// physics content of the record: a value copy of a record duplicates them
// verbatim, which makes the copy impersonate the original in any table keyed
// by UniqueID. Ref is never serialised.
type Ref struct {
	UniqueID   uint32 `json:"-" yaml:"-"`
	HasUUID    bool   `json:"-" yaml:"-"`
	Referenced bool   `json:"-" yaml:"-"`
}

func (r *Ref) ref() *Ref { return r }

// Reset clears all identity fields.
func (r *Ref) Reset() {
	*r = Ref{}
}

// IsZero reports whether no identity field is set.
func (r Ref) IsZero() bool {
	return r.UniqueID == 0 && !r.HasUUID && !r.Referenced
}

// Object is a record that can be stored in an Array.
// Implemented by *Cluster, *ESDTrack and *AODTrack.
type Object interface {
	ElementType() ElementType
	ref() *Ref
}

// RefOf returns the identity fields of obj for in-place modification.
func RefOf(obj Object) *Ref {
	return obj.ref()
}
