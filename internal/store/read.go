package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/collcopy/internal/ir"
)

// ErrNotFound is returned when a requested event or collection is not stored.
var ErrNotFound = errors.New("not found")

// ReadEventSeqs returns the distinct event sequence numbers in ascending order.
func (s *Store) ReadEventSeqs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT seq FROM events ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("read event seqs: %w", err)
	}
	defer rows.Close()

	var seqs []int64
	for rows.Next() {
		var seq int64
		if err := rows.Scan(&seq); err != nil {
			return nil, fmt.Errorf("read event seqs: %w", err)
		}
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read event seqs: %w", err)
	}
	return seqs, nil
}

// ReadEventHeaders returns the stored streams of one event, primary first.
func (s *Store) ReadEventHeaders(ctx context.Context, seq int64) ([]EventHeader, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, stream, run_number, format
		FROM events
		WHERE seq = ?
		ORDER BY CASE stream WHEN 'primary' THEN 0 ELSE 1 END
	`, seq)
	if err != nil {
		return nil, fmt.Errorf("read event %d: %w", seq, err)
	}
	defer rows.Close()

	var headers []EventHeader
	for rows.Next() {
		var (
			h      EventHeader
			stream string
			format string
		)
		if err := rows.Scan(&h.Seq, &stream, &h.RunNumber, &format); err != nil {
			return nil, fmt.Errorf("read event %d: %w", seq, err)
		}
		h.Stream = Stream(stream)
		h.Format, err = ir.ParseFormat(format)
		if err != nil {
			return nil, fmt.Errorf("read event %d: %w", seq, err)
		}
		headers = append(headers, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read event %d: %w", seq, err)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("read event %d: %w", seq, ErrNotFound)
	}
	return headers, nil
}

// ReadCollections decodes every collection of one event stream in insertion order.
func (s *Store) ReadCollections(ctx context.Context, seq int64, stream Stream) ([]ir.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, kind, element_type, title, format, entries, payload
		FROM collections
		WHERE event_seq = ? AND stream = ?
		ORDER BY rowid ASC
	`, seq, string(stream))
	if err != nil {
		return nil, fmt.Errorf("read collections of event %d/%s: %w", seq, stream, err)
	}
	defer rows.Close()

	var out []ir.Collection
	for rows.Next() {
		c, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("read collections of event %d/%s: %w", seq, stream, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read collections of event %d/%s: %w", seq, stream, err)
	}
	return out, nil
}

// ReadCollection decodes one named collection.
// Returns ErrNotFound if the collection is not stored.
func (s *Store) ReadCollection(ctx context.Context, seq int64, stream Stream, name string) (ir.Collection, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, kind, element_type, title, format, entries, payload
		FROM collections
		WHERE event_seq = ? AND stream = ? AND name = ?
	`, seq, string(stream), ir.NormalizeName(name))

	c, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read collection %q of event %d/%s: %w", name, seq, stream, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read collection %q of event %d/%s: %w", name, seq, stream, err)
	}
	return c, nil
}

// ReadCollectionInfos lists the collections of one event stream without
// decoding payloads.
func (s *Store) ReadCollectionInfos(ctx context.Context, seq int64, stream Stream) ([]CollectionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, kind, element_type, title, format, entries, digest
		FROM collections
		WHERE event_seq = ? AND stream = ?
		ORDER BY rowid ASC
	`, seq, string(stream))
	if err != nil {
		return nil, fmt.Errorf("read collection infos: %w", err)
	}
	defer rows.Close()

	var infos []CollectionInfo
	for rows.Next() {
		var (
			info     CollectionInfo
			elemType string
		)
		if err := rows.Scan(&info.Name, &info.Kind, &elemType, &info.Title, &info.Format, &info.Entries, &info.Digest); err != nil {
			return nil, fmt.Errorf("read collection infos: %w", err)
		}
		info.ElementType = ir.ElementType(elemType)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read collection infos: %w", err)
	}
	return infos, nil
}

// CountCollections returns the number of stored collections of a kind.
func (s *Store) CountCollections(ctx context.Context, kind ir.Kind) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM collections WHERE kind = ?
	`, kind.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count collections: %w", err)
	}
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row rowScanner) (ir.Collection, error) {
	var (
		name, kind, elemType, title, format, payload string
		entries                                       int
	)
	if err := row.Scan(&name, &kind, &elemType, &title, &format, &entries, &payload); err != nil {
		return nil, err
	}

	k, err := ir.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	f, err := ir.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	return ir.UnmarshalCollection(ir.Encoded{
		Name:        name,
		Title:       title,
		Kind:        k,
		ElementType: ir.ElementType(elemType),
		Format:      f,
		Entries:     entries,
		Payload:     []byte(payload),
	})
}
