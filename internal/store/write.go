package store

import (
	"context"
	"fmt"

	"github.com/roach88/collcopy/internal/ir"
)

// WriteEvent inserts an event header.
// Uses ON CONFLICT DO NOTHING for idempotency - duplicate headers are silently ignored.
func (s *Store) WriteEvent(ctx context.Context, h EventHeader) error {
	if err := validateStream(h.Stream); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (seq, stream, run_number, format)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(seq, stream) DO NOTHING
	`,
		h.Seq,
		string(h.Stream),
		h.RunNumber,
		h.Format.String(),
	)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// WriteCollection stores c under (seq, stream, c.Name()).
// An existing row with the same key is replaced, so re-running a copy over
// the same events overwrites its previous output.
//
// The event header of (seq, stream) must be stored first; its absence
// yields ErrEventMissing. A collection of another storage format than the
// header yields ErrFormatMismatch.
func (s *Store) WriteCollection(ctx context.Context, seq int64, stream Stream, c ir.Collection) error {
	if err := validateStream(stream); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}

	enc, err := ir.MarshalCollection(c)
	if err != nil {
		return fmt.Errorf("write collection: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collections
		(event_seq, stream, name, kind, element_type, title, format, entries, payload, digest)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_seq, stream, name) DO UPDATE SET
			kind = excluded.kind,
			element_type = excluded.element_type,
			title = excluded.title,
			format = excluded.format,
			entries = excluded.entries,
			payload = excluded.payload,
			digest = excluded.digest
	`,
		seq,
		string(stream),
		enc.Name,
		enc.Kind.String(),
		string(enc.ElementType),
		enc.Title,
		enc.Format.String(),
		enc.Entries,
		string(enc.Payload),
		ir.DigestEncoded(enc),
	)
	if err != nil {
		return fmt.Errorf("write collection %q: %w", enc.Name, constraintError(err))
	}
	return nil
}
