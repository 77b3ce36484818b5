// Package ir provides the in-memory representation of calorimeter event
// collections: per-channel cell deposits, clusters built from those deposits,
// and reconstructed tracks.
//
// This package contains data types and their codecs only. All other internal
// packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Every collection is addressed by a single NFC-normalised name
//   - Arrays fix their element type at creation, never per record
//   - Records carry their storage format (ESD or AOD) as an explicit tag
//   - Reference bookkeeping (Ref) is process-local and never serialised
package ir
