package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/roach88/collcopy/internal/ir"
	"github.com/roach88/collcopy/internal/testutil"
)

func TestReadEventSeqs_Empty(t *testing.T) {
	s := createTestStore(t)

	seqs, err := s.ReadEventSeqs(context.Background())
	if err != nil {
		t.Fatalf("ReadEventSeqs() failed: %v", err)
	}
	if len(seqs) != 0 {
		t.Errorf("seqs = %v, want empty", seqs)
	}
}

func TestReadEventSeqs_DistinctAscending(t *testing.T) {
	s := createTestStore(t)

	writeTestEvent(t, s, 3, StreamPrimary, ir.FormatESD)
	writeTestEvent(t, s, 1, StreamPrimary, ir.FormatESD)
	writeTestEvent(t, s, 1, StreamEmbedded, ir.FormatESD)
	writeTestEvent(t, s, 2, StreamPrimary, ir.FormatESD)

	seqs, err := s.ReadEventSeqs(context.Background())
	if err != nil {
		t.Fatalf("ReadEventSeqs() failed: %v", err)
	}
	want := []int64{1, 2, 3}
	if !reflect.DeepEqual(seqs, want) {
		t.Errorf("seqs = %v, want %v", seqs, want)
	}
}

func TestReadEventHeaders_PrimaryFirst(t *testing.T) {
	s := createTestStore(t)

	writeTestEvent(t, s, 1, StreamEmbedded, ir.FormatAOD)
	writeTestEvent(t, s, 1, StreamPrimary, ir.FormatAOD)

	headers, err := s.ReadEventHeaders(context.Background(), 1)
	if err != nil {
		t.Fatalf("ReadEventHeaders() failed: %v", err)
	}
	if len(headers) != 2 {
		t.Fatalf("len(headers) = %d, want 2", len(headers))
	}
	if headers[0].Stream != StreamPrimary || headers[1].Stream != StreamEmbedded {
		t.Errorf("streams = [%s %s], want [primary embedded]", headers[0].Stream, headers[1].Stream)
	}
	if headers[0].Format != ir.FormatAOD {
		t.Errorf("format = %s, want aod", headers[0].Format)
	}
}

func TestReadEventHeaders_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadEventHeaders(context.Background(), 5)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReadCollections_InsertionOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	writeTestEvent(t, s, 1, StreamPrimary, ir.FormatAOD)

	// Names chosen so that lexical order differs from insertion order.
	in := []ir.Collection{
		testutil.Tracks("tracks", ir.FormatAOD, 2),
		testutil.Cells("emcalCells", ir.FormatAOD, 3),
		testutil.Clusters("caloClusters", ir.FormatAOD, 1, false),
	}
	for _, c := range in {
		if err := s.WriteCollection(ctx, 1, StreamPrimary, c); err != nil {
			t.Fatalf("WriteCollection(%s) failed: %v", c.Name(), err)
		}
	}

	out, err := s.ReadCollections(ctx, 1, StreamPrimary)
	if err != nil {
		t.Fatalf("ReadCollections() failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i].Name() != in[i].Name() {
			t.Errorf("out[%d].Name() = %q, want %q", i, out[i].Name(), in[i].Name())
		}
		if out[i].Kind() != in[i].Kind() {
			t.Errorf("out[%d].Kind() = %s, want %s", i, out[i].Kind(), in[i].Kind())
		}
	}
}

func TestReadCollection_RestoresContent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	writeTestEvent(t, s, 1, StreamPrimary, ir.FormatESD)

	clusters := testutil.Clusters("CaloClusters", ir.FormatESD, 3, true)
	if err := s.WriteCollection(ctx, 1, StreamPrimary, clusters); err != nil {
		t.Fatalf("WriteCollection() failed: %v", err)
	}

	got, err := s.ReadCollection(ctx, 1, StreamPrimary, "CaloClusters")
	if err != nil {
		t.Fatalf("ReadCollection() failed: %v", err)
	}
	arr, ok := got.(*ir.Array)
	if !ok {
		t.Fatalf("ReadCollection() returned %T, want *ir.Array", got)
	}
	if arr.ElementType() != ir.ElemESDCluster {
		t.Errorf("element type = %s, want %s", arr.ElementType(), ir.ElemESDCluster)
	}
	if ir.MustDigest(arr) != ir.MustDigest(clusters) {
		t.Error("digest changed across a store round trip")
	}

	c, ok := arr.At(1).(*ir.Cluster)
	if !ok {
		t.Fatalf("At(1) = %T, want *ir.Cluster", arr.At(1))
	}
	if c.Format != ir.FormatESD {
		t.Errorf("cluster format = %s, want esd", c.Format)
	}
	if c.NLabels() != 0 {
		t.Errorf("NLabels() = %d, want 0 for unlabelled odd entry", c.NLabels())
	}
}

func TestReadCollection_CellsKeepTitle(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	writeTestEvent(t, s, 1, StreamPrimary, ir.FormatAOD)

	if err := s.WriteCollection(ctx, 1, StreamPrimary, testutil.Cells("emcalCellsCopy", ir.FormatAOD, 17)); err != nil {
		t.Fatalf("WriteCollection() failed: %v", err)
	}

	got, err := s.ReadCollection(ctx, 1, StreamPrimary, "emcalCellsCopy")
	if err != nil {
		t.Fatalf("ReadCollection() failed: %v", err)
	}
	cells, ok := got.(*ir.CaloCells)
	if !ok {
		t.Fatalf("ReadCollection() returned %T, want *ir.CaloCells", got)
	}
	if cells.Title() != "emcalCellsCopy" {
		t.Errorf("title = %q, want %q", cells.Title(), "emcalCellsCopy")
	}
	if cells.NumberOfCells() != 17 {
		t.Errorf("NumberOfCells() = %d, want 17", cells.NumberOfCells())
	}
	if cells.CellType() != ir.CellEMCAL {
		t.Errorf("CellType() = %s, want EMCAL", cells.CellType())
	}
}

func TestReadCollection_NotFound(t *testing.T) {
	s := createTestStore(t)
	writeTestEvent(t, s, 1, StreamPrimary, ir.FormatAOD)

	_, err := s.ReadCollection(context.Background(), 1, StreamPrimary, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReadCollectionInfos_And_Count(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	writeTestEvent(t, s, 1, StreamPrimary, ir.FormatAOD)
	writeTestEvent(t, s, 2, StreamPrimary, ir.FormatAOD)

	for _, seq := range []int64{1, 2} {
		if err := s.WriteCollection(ctx, seq, StreamPrimary, testutil.Tracks("tracks", ir.FormatAOD, 3)); err != nil {
			t.Fatalf("WriteCollection() failed: %v", err)
		}
	}
	if err := s.WriteCollection(ctx, 1, StreamPrimary, testutil.Cells("emcalCells", ir.FormatAOD, 2)); err != nil {
		t.Fatalf("WriteCollection() failed: %v", err)
	}

	infos, err := s.ReadCollectionInfos(ctx, 1, StreamPrimary)
	if err != nil {
		t.Fatalf("ReadCollectionInfos() failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("len(infos) = %d, want 2", len(infos))
	}
	if infos[0].Name != "tracks" || infos[0].Entries != 3 || infos[0].ElementType != ir.ElemAODTrack {
		t.Errorf("infos[0] = %+v", infos[0])
	}
	if infos[1].Kind != "cells" || infos[1].Digest == "" {
		t.Errorf("infos[1] = %+v", infos[1])
	}

	n, err := s.CountCollections(ctx, ir.KindTracks)
	if err != nil {
		t.Fatalf("CountCollections() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountCollections(tracks) = %d, want 2", n)
	}
}
