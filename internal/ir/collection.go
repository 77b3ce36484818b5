package ir

import "golang.org/x/text/unicode/norm"

// Collection is a named, kind-typed container inside one event record.
// The name is the only identity a collection has within its record.
type Collection interface {
	Name() string
	Kind() Kind

	// Len returns the number of slots in the collection.
	Len() int

	// Clear drops the contents but keeps name and type.
	Clear()
}

// NormalizeName returns the NFC form of a collection name.
// Lookups and insertions always go through this so that visually identical
// names in different Unicode forms address the same collection.
func NormalizeName(name string) string {
	return norm.NFC.String(name)
}
