package store

import (
	"fmt"

	"github.com/roach88/collcopy/internal/ir"
)

// Stream names an input stream of an event.
type Stream string

const (
	StreamPrimary  Stream = "primary"
	StreamEmbedded Stream = "embedded"
)

// StreamFor returns the stream an engine with the given embedding flag reads.
func StreamFor(embedding bool) Stream {
	if embedding {
		return StreamEmbedded
	}
	return StreamPrimary
}

// EventHeader identifies one stream of one event.
type EventHeader struct {
	Seq       int64
	Stream    Stream
	RunNumber int64
	Format    ir.Format
}

// CollectionInfo summarizes a stored collection without decoding it.
type CollectionInfo struct {
	Name        string         `json:"name"`
	Kind        string         `json:"kind"`
	ElementType ir.ElementType `json:"element_type,omitempty"`
	Title       string         `json:"title,omitempty"`
	Format      string         `json:"format"`
	Entries     int            `json:"entries"`
	Digest      string         `json:"digest"`
}

func validateStream(s Stream) error {
	if s != StreamPrimary && s != StreamEmbedded {
		return fmt.Errorf("unknown stream %q", s)
	}
	return nil
}
