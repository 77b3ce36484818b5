// Package engine implements the collection replication engine.
//
// An Engine mirrors one existing collection of an event record into a new,
// independently owned collection of the same kind. It is configured once
// with a kind (cells, clusters or tracks), a source name and a destination
// name, either of which may be the "usedefault" sentinel.
//
// LIFECYCLE:
//
// Uninitialized --Initialize--> Initialized --Copy (per event)--> Initialized
//
// Initialize runs once: it resolves sentinel names for the run's storage
// format, validates the configuration and appends the destination collection
// to the record. Every later event only copies. A fatal error in either step
// moves the engine to StateFailed, which is terminal: there is no retry,
// since the failures are static configuration errors or corrupted data.
//
// ERROR CLASSES:
//
//   - Fatal: empty name, unknown kind, name collision, missing collection,
//     kind mismatch, count mismatch. Returned as *RuntimeError.
//   - Transient: the event record is unavailable for the current event. The
//     event is skipped with a debug log and Exec returns nil.
//
// The engine is single-threaded and synchronous. It holds destination
// collections by name only; the event record owns them once appended.
package engine
