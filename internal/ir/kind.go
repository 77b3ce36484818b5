package ir

import (
	"fmt"
	"strings"
)

// Kind identifies which of the three replicable collection shapes a
// collection holds.
type Kind int

const (
	// KindUndefined is the zero value and never a valid engine kind.
	KindUndefined Kind = iota

	// KindCells is a dense per-channel deposit container.
	KindCells

	// KindClusters is an array of clusters.
	KindClusters

	// KindTracks is an array of reconstructed tracks.
	KindTracks
)

var kindNames = map[Kind]string{
	KindUndefined: "undefined",
	KindCells:     "cells",
	KindClusters:  "clusters",
	KindTracks:    "tracks",
}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the three replicable kinds.
func (k Kind) Valid() bool {
	return k == KindCells || k == KindClusters || k == KindTracks
}

// ParseKind parses a configuration kind name. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cells", "calocells":
		return KindCells, nil
	case "clusters", "cluster":
		return KindClusters, nil
	case "tracks", "track":
		return KindTracks, nil
	}
	return KindUndefined, fmt.Errorf("unknown collection kind %q", s)
}

// Format is the on-record storage representation of an event.
// ESD and AOD use distinct concrete record types for clusters and tracks.
type Format int

const (
	FormatUnknown Format = iota
	FormatESD
	FormatAOD
)

// String returns the lower-case format name.
func (f Format) String() string {
	switch f {
	case FormatESD:
		return "esd"
	case FormatAOD:
		return "aod"
	}
	return "unknown"
}

// ParseFormat parses "esd" or "aod" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "esd":
		return FormatESD, nil
	case "aod":
		return FormatAOD, nil
	}
	return FormatUnknown, fmt.Errorf("unknown storage format %q", s)
}
