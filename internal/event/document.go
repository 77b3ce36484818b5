package event

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/collcopy/internal/ir"
)

// Document is the YAML form of a sequence of events, used for imports and
// test scenarios.
//
//	format: esd
//	run_number: 1
//	events:
//	  - primary:
//	      cells:
//	        - name: EMCALCells
//	          cells: [{abs_id: 1, amplitude: 0.5}]
//	      clusters:
//	        - name: CaloClusters
//	          entries: [{e: 1.2, labels: [5]}]
//	      tracks:
//	        - name: Tracks
//	          esd: [{id: 1}]
type Document struct {
	Format    string      `yaml:"format"`
	RunNumber int64       `yaml:"run_number,omitempty"`
	Events    []EventSpec `yaml:"events"`
}

// EventSpec describes the streams of one event.
type EventSpec struct {
	Primary  *StreamSpec `yaml:"primary,omitempty"`
	Embedded *StreamSpec `yaml:"embedded,omitempty"`
}

// StreamSpec lists the collections of one input stream.
type StreamSpec struct {
	Cells    []CellsSpec    `yaml:"cells,omitempty"`
	Clusters []ClustersSpec `yaml:"clusters,omitempty"`
	Tracks   []TracksSpec   `yaml:"tracks,omitempty"`
}

// CellsSpec describes a deposit container. Title defaults to Name.
type CellsSpec struct {
	Name  string    `yaml:"name"`
	Title string    `yaml:"title,omitempty"`
	Cells []ir.Cell `yaml:"cells"`
}

// ClustersSpec describes a cluster array.
type ClustersSpec struct {
	Name    string       `yaml:"name"`
	Entries []ir.Cluster `yaml:"entries"`
}

// TracksSpec describes a track array. Only the list matching the run's
// storage format may be set.
type TracksSpec struct {
	Name string        `yaml:"name"`
	ESD  []ir.ESDTrack `yaml:"esd,omitempty"`
	AOD  []ir.AODTrack `yaml:"aod,omitempty"`
}

// LoadDocument reads and strictly decodes an event document.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event document: %w", err)
	}
	return ParseDocument(data)
}

// ParseDocument strictly decodes an event document. Unknown fields are
// rejected.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse event document: %w", err)
	}
	if _, err := ir.ParseFormat(doc.Format); err != nil {
		return nil, fmt.Errorf("invalid event document: %w", err)
	}
	return &doc, nil
}

// StorageFormat returns the parsed storage format of the document.
func (d *Document) StorageFormat() ir.Format {
	f, _ := ir.ParseFormat(d.Format)
	return f
}

// Collections builds the collections of the stream in declaration order:
// cells, then clusters, then tracks.
func (s *StreamSpec) Collections(format ir.Format) ([]ir.Collection, error) {
	var out []ir.Collection

	for _, cs := range s.Cells {
		title := cs.Title
		if title == "" {
			title = cs.Name
		}
		cells := ir.NewCaloCells(cs.Name, title, format, ir.CellEMCAL)
		for _, c := range cs.Cells {
			cells.Add(c)
		}
		out = append(out, cells)
	}

	clusterType := ir.ElemESDCluster
	trackType := ir.ElemESDTrack
	if format == ir.FormatAOD {
		clusterType = ir.ElemAODCluster
		trackType = ir.ElemAODTrack
	}

	for _, cs := range s.Clusters {
		arr, err := ir.NewArray(clusterType, cs.Name)
		if err != nil {
			return nil, err
		}
		for i := range cs.Entries {
			c := cs.Entries[i]
			c.Format = format
			if err := arr.Append(&c); err != nil {
				return nil, err
			}
		}
		out = append(out, arr)
	}

	for _, ts := range s.Tracks {
		arr, err := ir.NewArray(trackType, ts.Name)
		if err != nil {
			return nil, err
		}
		switch {
		case format == ir.FormatESD && len(ts.AOD) > 0:
			return nil, fmt.Errorf("tracks %q: aod tracks in an esd event", ts.Name)
		case format == ir.FormatAOD && len(ts.ESD) > 0:
			return nil, fmt.Errorf("tracks %q: esd tracks in an aod event", ts.Name)
		}
		for i := range ts.ESD {
			t := ts.ESD[i]
			if err := arr.Append(&t); err != nil {
				return nil, err
			}
		}
		for i := range ts.AOD {
			t := ts.AOD[i]
			if err := arr.Append(&t); err != nil {
				return nil, err
			}
		}
		out = append(out, arr)
	}

	return out, nil
}

// Build creates a fresh record holding the stream's collections.
func (s *StreamSpec) Build(format ir.Format) (*Record, error) {
	colls, err := s.Collections(format)
	if err != nil {
		return nil, err
	}
	rec := NewRecord()
	for _, c := range colls {
		if err := rec.Load(c); err != nil {
			return nil, err
		}
	}
	return rec, nil
}
