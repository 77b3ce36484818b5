// Package store provides SQLite-backed storage for event records.
//
// The store is the event source and sink of a copy run:
//   - Events: one row per (seq, stream) with run number and storage format
//   - Collections: one row per named collection of an event stream, holding
//     the encoded payload, its entry count and its content digest
//
// # Ordering
//
//   - Events are read in seq order
//   - Collections are read in insertion order (rowid), which is the order
//     they are added to a record
//
// # Integrity
//
//   - A collection requires the header of its (seq, stream); writes without
//     one fail with ErrEventMissing
//   - A collection carries the storage format of its header; writes of
//     another format fail with ErrFormatMismatch
//   - Databases migrated by a newer schema are refused with ErrSchemaTooNew
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Payloads are produced by ir.MarshalCollection; digests by ir.DigestEncoded.
package store
