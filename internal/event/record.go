package event

import (
	"errors"
	"fmt"

	"github.com/roach88/collcopy/internal/ir"
)

var (
	// ErrNoEvent is returned when the requested input stream has no record
	// for the current event. Callers treat it as a per-event miss.
	ErrNoEvent = errors.New("event record not available")

	// ErrDuplicateName is returned when a collection is appended under a
	// name that already exists in the record.
	ErrDuplicateName = errors.New("duplicate collection name")
)

// Namespace is the lookup/append contract of one event record.
// FindListObject returns nil when no collection has the given name.
type Namespace interface {
	FindListObject(name string) ir.Collection
	AddObject(c ir.Collection) error
}

// Input supplies event records and probes the storage format of the run.
type Input interface {
	Format() ir.Format
	Event(embedding bool) (Namespace, error)
}

// Record is an ordered, name-keyed set of collections.
//
// Collections appended through AddObject are branches: they belong to the
// record and survive Reset. Collections added through Load or Replace are
// inputs of the current event and are dropped by Reset.
type Record struct {
	number  int64
	objects []ir.Collection
	branch  []bool
	index   map[string]int
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{index: make(map[string]int)}
}

// Number returns the event number the record currently holds.
func (r *Record) Number() int64 { return r.number }

// SetNumber sets the event number.
func (r *Record) SetNumber(n int64) { r.number = n }

// FindListObject returns the collection named name, or nil.
func (r *Record) FindListObject(name string) ir.Collection {
	i, ok := r.index[ir.NormalizeName(name)]
	if !ok {
		return nil
	}
	return r.objects[i]
}

// AddObject appends c as a branch. Names are unique within a record: an
// existing collection is never shadowed or overwritten.
func (r *Record) AddObject(c ir.Collection) error {
	return r.add("add object", c, true)
}

// Load appends c as an input collection of the current event. Duplicate
// names are rejected like in AddObject.
func (r *Record) Load(c ir.Collection) error {
	return r.add("load object", c, false)
}

func (r *Record) add(op string, c ir.Collection, branch bool) error {
	if c == nil {
		return fmt.Errorf("%s: nil collection", op)
	}
	name := ir.NormalizeName(c.Name())
	if name == "" {
		return fmt.Errorf("%s: empty collection name", op)
	}
	if _, exists := r.index[name]; exists {
		return fmt.Errorf("%s %q: %w", op, name, ErrDuplicateName)
	}
	r.index[name] = len(r.objects)
	r.objects = append(r.objects, c)
	r.branch = append(r.branch, branch)
	return nil
}

// Replace stores c under its name, replacing any collection of that name
// in place or loading it as an input otherwise. A replaced branch stays a
// branch. Used by readers refilling the record.
func (r *Record) Replace(c ir.Collection) error {
	if c == nil {
		return fmt.Errorf("replace object: nil collection")
	}
	name := ir.NormalizeName(c.Name())
	if i, exists := r.index[name]; exists {
		r.objects[i] = c
		return nil
	}
	return r.Load(c)
}

// Names returns the collection names in insertion order.
func (r *Record) Names() []string {
	names := make([]string, len(r.objects))
	for i, c := range r.objects {
		names[i] = ir.NormalizeName(c.Name())
	}
	return names
}

// Collections returns the collections in insertion order.
func (r *Record) Collections() []ir.Collection {
	out := make([]ir.Collection, len(r.objects))
	copy(out, r.objects)
	return out
}

// Len returns the number of collections.
func (r *Record) Len() int { return len(r.objects) }

// IsBranch reports whether the collection named name was appended through
// AddObject.
func (r *Record) IsBranch(name string) bool {
	i, ok := r.index[ir.NormalizeName(name)]
	return ok && r.branch[i]
}

// Reset prepares the record for the next event: branches are kept with
// their contents cleared, input collections are dropped.
func (r *Record) Reset() {
	objects := r.objects[:0]
	branch := r.branch[:0]
	clear(r.index)
	for i, c := range r.objects {
		if !r.branch[i] {
			continue
		}
		c.Clear()
		r.index[ir.NormalizeName(c.Name())] = len(objects)
		objects = append(objects, c)
		branch = append(branch, true)
	}
	clear(r.objects[len(objects):])
	r.objects = objects
	r.branch = branch
	r.number = 0
}
