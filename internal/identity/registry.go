// Package identity implements the process-wide reference-tracking layer as an
// explicit service.
//
// A Registry hands out unique IDs to referenced records and resolves weak
// references (RefArray) back to them. A record duplicated by value carries
// its original's unique ID and reference bits; until ClearIdentity is applied
// to it, the registry resolves references to the copy as the original.
package identity

import (
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/collcopy/internal/ir"
)

// Registry maps unique IDs to records.
//
// Thread-safety: all methods are safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	next    uint32
	objects map[uint32]ir.Object
	uuids   map[ir.Object]uuid.UUID
}

// NewRegistry creates an empty registry. The first assigned ID is 1;
// 0 means "no identity".
func NewRegistry() *Registry {
	return &Registry{
		objects: make(map[uint32]ir.Object),
		uuids:   make(map[ir.Object]uuid.UUID),
	}
}

// Register marks obj as referenced and returns its unique ID.
//
// A record that already reads as referenced keeps the ID it carries, which is
// exactly how an uncleared copy ends up sharing its original's ID.
func (r *Registry) Register(obj ir.Object) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref := ir.RefOf(obj)
	if ref.Referenced && ref.UniqueID != 0 {
		return ref.UniqueID
	}

	r.next++
	ref.UniqueID = r.next
	ref.Referenced = true
	r.objects[ref.UniqueID] = obj
	return ref.UniqueID
}

// Lookup resolves a unique ID.
func (r *Registry) Lookup(uid uint32) (ir.Object, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.objects[uid]
	return obj, ok
}

// AssignUUID attaches a time-ordered UUID to obj and sets its HasUUID bit.
// An object that already has one keeps it.
func (r *Registry) AssignUUID(obj ir.Object) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.uuids[obj]; ok {
		return id
	}
	id := uuid.Must(uuid.NewV7())
	r.uuids[obj] = id
	ir.RefOf(obj).HasUUID = true
	return id
}

// UUID returns the UUID attached to obj.
func (r *Registry) UUID(obj ir.Object) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.uuids[obj]
	return id, ok
}

// ClearIdentity resets obj's unique ID, UUID bit and referenced bit and drops
// any UUID attached to obj itself. Entries owned by other records, including
// the original obj was copied from, are left untouched.
func (r *Registry) ClearIdentity(obj ir.Object) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref := ir.RefOf(obj)
	if owner, ok := r.objects[ref.UniqueID]; ok && owner == obj {
		delete(r.objects, ref.UniqueID)
	}
	delete(r.uuids, obj)
	ref.Reset()
}

// Len returns the number of registered records.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.objects)
}
