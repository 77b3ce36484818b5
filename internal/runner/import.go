package runner

import (
	"context"
	"fmt"

	"github.com/roach88/collcopy/internal/event"
	"github.com/roach88/collcopy/internal/store"
)

// ImportResult counts what Import stored.
type ImportResult struct {
	Events      int `json:"events"`
	Collections int `json:"collections"`
}

// Import writes the events of doc to s. Event i of the document is stored
// under sequence number firstSeq+i. Importing the same document twice
// overwrites the collections it wrote the first time.
//
// Every stream is built before anything is written, so a document with a
// duplicate collection name in one stream (event.ErrDuplicateName) or a
// malformed collection leaves the store untouched.
func Import(ctx context.Context, s *store.Store, doc *event.Document, firstSeq int64) (*ImportResult, error) {
	format := doc.StorageFormat()
	res := &ImportResult{}

	type pending struct {
		seq    int64
		stream store.Stream
		rec    *event.Record
	}
	var streams []pending
	for i, ev := range doc.Events {
		seq := firstSeq + int64(i)
		for _, st := range []struct {
			stream store.Stream
			spec   *event.StreamSpec
		}{
			{store.StreamPrimary, ev.Primary},
			{store.StreamEmbedded, ev.Embedded},
		} {
			if st.spec == nil {
				continue
			}
			rec, err := st.spec.Build(format)
			if err != nil {
				return res, fmt.Errorf("event %d/%s: %w", seq, st.stream, err)
			}
			streams = append(streams, pending{seq: seq, stream: st.stream, rec: rec})
		}
	}

	for _, p := range streams {
		hdr := store.EventHeader{Seq: p.seq, Stream: p.stream, RunNumber: doc.RunNumber, Format: format}
		if err := s.WriteEvent(ctx, hdr); err != nil {
			return res, err
		}
		for _, c := range p.rec.Collections() {
			if err := s.WriteCollection(ctx, p.seq, p.stream, c); err != nil {
				return res, err
			}
			res.Collections++
		}
	}
	res.Events = len(doc.Events)
	return res, nil
}
