package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/collcopy/internal/ir"
)

// createTestStore creates a new store in a temporary directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// writeTestEvent stores a header for (seq, stream) with minimal fields.
func writeTestEvent(t *testing.T, s *Store, seq int64, stream Stream, format ir.Format) {
	t.Helper()
	h := EventHeader{Seq: seq, Stream: stream, RunNumber: 244918, Format: format}
	if err := s.WriteEvent(context.Background(), h); err != nil {
		t.Fatalf("WriteEvent(%d, %s) failed: %v", seq, stream, err)
	}
}
