package ir

import "fmt"

// ElementType names the concrete record type an Array holds.
type ElementType string

const (
	ElemESDCluster ElementType = "ESDCaloCluster"
	ElemAODCluster ElementType = "AODCaloCluster"
	ElemESDTrack   ElementType = "ESDTrack"
	ElemAODTrack   ElementType = "AODTrack"
)

// Kind returns the collection kind an array of this element type has.
func (t ElementType) Kind() Kind {
	switch t {
	case ElemESDCluster, ElemAODCluster:
		return KindClusters
	case ElemESDTrack, ElemAODTrack:
		return KindTracks
	}
	return KindUndefined
}

// Format returns the storage format of the element type.
func (t ElementType) Format() Format {
	switch t {
	case ElemESDCluster, ElemESDTrack:
		return FormatESD
	case ElemAODCluster, ElemAODTrack:
		return FormatAOD
	}
	return FormatUnknown
}

// Valid reports whether t is a known element type.
func (t ElementType) Valid() bool {
	return t.Kind() != KindUndefined
}

// ParseElementType validates an element type name.
func ParseElementType(s string) (ElementType, error) {
	t := ElementType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown element type %q", s)
	}
	return t, nil
}

func (t ElementType) newObject() Object {
	switch t {
	case ElemESDCluster:
		return &Cluster{Format: FormatESD}
	case ElemAODCluster:
		return &Cluster{Format: FormatAOD}
	case ElemESDTrack:
		return &ESDTrack{}
	case ElemAODTrack:
		return &AODTrack{}
	}
	return nil
}

// Array is a named container of records of one fixed element type.
// Slots may be empty; Len counts slots, Entries counts occupied ones.
type Array struct {
	name     string
	elemType ElementType
	items    []Object
}

// NewArray creates an empty array of the given element type.
func NewArray(elemType ElementType, name string) (*Array, error) {
	if !elemType.Valid() {
		return nil, fmt.Errorf("new array %q: unknown element type %q", name, elemType)
	}
	return &Array{name: NormalizeName(name), elemType: elemType}, nil
}

func (a *Array) Name() string        { return a.name }
func (a *Array) SetName(name string) { a.name = NormalizeName(name) }
func (a *Array) Kind() Kind          { return a.elemType.Kind() }
func (a *Array) Len() int            { return len(a.items) }

// ElementType returns the record type fixed at creation.
func (a *Array) ElementType() ElementType { return a.elemType }

// Entries returns the number of occupied slots.
func (a *Array) Entries() int {
	n := 0
	for _, obj := range a.items {
		if obj != nil {
			n++
		}
	}
	return n
}

// Clear empties the array.
func (a *Array) Clear() {
	clear(a.items)
	a.items = a.items[:0]
}

// Reset empties the array and sizes it to n empty slots.
func (a *Array) Reset(n int) {
	a.Clear()
	if n <= 0 {
		return
	}
	if cap(a.items) < n {
		a.items = make([]Object, n)
		return
	}
	a.items = a.items[:n]
}

// At returns the record at slot i, or nil for an empty or out-of-range slot.
func (a *Array) At(i int) Object {
	if i < 0 || i >= len(a.items) {
		return nil
	}
	return a.items[i]
}

// New constructs a default record of the array's element type at slot i,
// growing the array when needed, and returns it.
func (a *Array) New(i int) Object {
	a.grow(i)
	obj := a.elemType.newObject()
	a.items[i] = obj
	return obj
}

// Put stores obj at slot i. A nil obj empties the slot. A cluster with no
// format tag is stamped with the array's format.
func (a *Array) Put(i int, obj Object) error {
	if i < 0 {
		return fmt.Errorf("array %q: negative index %d", a.name, i)
	}
	if obj != nil {
		if c, ok := obj.(*Cluster); ok && c.Format == FormatUnknown {
			c.Format = a.elemType.Format()
		}
		if obj.ElementType() != a.elemType {
			return fmt.Errorf("array %q: cannot store %s in array of %s", a.name, obj.ElementType(), a.elemType)
		}
	}
	a.grow(i)
	a.items[i] = obj
	return nil
}

// Append stores obj in a new slot at the end.
func (a *Array) Append(obj Object) error {
	return a.Put(len(a.items), obj)
}

func (a *Array) grow(i int) {
	if i < len(a.items) {
		return
	}
	a.items = append(a.items, make([]Object, i+1-len(a.items))...)
}
