package runner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/collcopy/internal/engine"
	"github.com/roach88/collcopy/internal/event"
	"github.com/roach88/collcopy/internal/identity"
	"github.com/roach88/collcopy/internal/ir"
	"github.com/roach88/collcopy/internal/store"
	"github.com/roach88/collcopy/internal/testutil"
)

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func writeEvent(t *testing.T, s *store.Store, seq int64, stream store.Stream, format ir.Format, colls ...ir.Collection) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.WriteEvent(ctx, store.EventHeader{Seq: seq, Stream: stream, Format: format}))
	for _, c := range colls {
		require.NoError(t, s.WriteCollection(ctx, seq, stream, c))
	}
}

func TestRunner_EmptyStore(t *testing.T) {
	s := setupTestStore(t)

	summary, err := New(s, nil).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, summary.Events)
	assert.Equal(t, "unknown", summary.Format)
}

func TestRunner_CopiesEveryEvent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	for seq := int64(1); seq <= 3; seq++ {
		writeEvent(t, s, seq, store.StreamPrimary, ir.FormatAOD,
			testutil.Cells("emcalCells", ir.FormatAOD, int(seq)*4),
			testutil.Tracks("tracks", ir.FormatAOD, int(seq)),
		)
	}

	tasks := []Task{
		{Name: "cells", Config: engine.Config{Kind: ir.KindCells, Source: engine.UseDefault, Dest: "emcalCellsCopy"}},
		{Name: "tracks", Config: engine.Config{Kind: ir.KindTracks, Source: engine.UseDefault, Dest: "tracksCopy"}},
	}
	summary, err := New(s, tasks).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, "aod", summary.Format)
	assert.Equal(t, 3, summary.Events)
	assert.Equal(t, 6, summary.Written)
	assert.Equal(t, 0, summary.Skipped)
	require.Len(t, summary.Tasks, 2)
	assert.Equal(t, "emcalCells", summary.Tasks[0].Source)
	assert.Equal(t, "initialized", summary.Tasks[1].State)
	assert.Equal(t, 1, summary.Tasks[1].Stats.Created)
	assert.Equal(t, 3, summary.Tasks[1].Stats.Copies)

	for seq := int64(1); seq <= 3; seq++ {
		cells, err := s.ReadCollection(ctx, seq, store.StreamPrimary, "emcalCellsCopy")
		require.NoError(t, err)
		assert.Equal(t, int(seq)*4, cells.Len(), "event %d", seq)
		assert.Equal(t, "emcalCellsCopy", cells.(*ir.CaloCells).Title())

		src, err := s.ReadCollection(ctx, seq, store.StreamPrimary, "tracks")
		require.NoError(t, err)
		dst, err := s.ReadCollection(ctx, seq, store.StreamPrimary, "tracksCopy")
		require.NoError(t, err)
		assert.Equal(t, ir.MustDigest(src), ir.MustDigest(dst))
	}
}

func TestRunner_EmbeddedStreamSkips(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	writeEvent(t, s, 1, store.StreamPrimary, ir.FormatESD, testutil.Tracks("Tracks", ir.FormatESD, 2))
	writeEvent(t, s, 1, store.StreamEmbedded, ir.FormatESD, testutil.Tracks("Tracks", ir.FormatESD, 5))
	writeEvent(t, s, 2, store.StreamPrimary, ir.FormatESD, testutil.Tracks("Tracks", ir.FormatESD, 1))

	tasks := []Task{{
		Name:   "embedded-tracks",
		Config: engine.Config{Kind: ir.KindTracks, Source: engine.UseDefault, Dest: "TracksEmbedded", Embedding: true},
	}}
	summary, err := New(s, tasks).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Events)
	assert.Equal(t, 1, summary.Written)
	assert.Equal(t, 1, summary.Skipped)

	dst, err := s.ReadCollection(ctx, 1, store.StreamEmbedded, "TracksEmbedded")
	require.NoError(t, err)
	assert.Equal(t, 5, dst.Len())

	_, err = s.ReadCollection(ctx, 1, store.StreamPrimary, "TracksEmbedded")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunner_FatalErrorAborts(t *testing.T) {
	s := setupTestStore(t)
	writeEvent(t, s, 1, store.StreamPrimary, ir.FormatAOD, testutil.Cells("emcalCells", ir.FormatAOD, 3))
	writeEvent(t, s, 2, store.StreamPrimary, ir.FormatAOD, testutil.Cells("emcalCells", ir.FormatAOD, 3))

	tasks := []Task{{
		Name:   "collide",
		Config: engine.Config{Kind: ir.KindCells, Source: engine.UseDefault, Dest: engine.UseDefault},
	}}
	summary, err := New(s, tasks).Run(context.Background())

	require.Error(t, err)
	assert.True(t, engine.IsNameCollision(err))
	assert.Equal(t, 0, summary.Events)
	assert.Equal(t, 0, summary.Written)
	require.Len(t, summary.Tasks, 1)
	assert.Equal(t, "failed", summary.Tasks[0].State)
}

func TestRunner_SourceMissingInLaterEvent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	writeEvent(t, s, 1, store.StreamPrimary, ir.FormatAOD, testutil.Tracks("tracks", ir.FormatAOD, 3))
	writeEvent(t, s, 2, store.StreamPrimary, ir.FormatAOD, testutil.Cells("emcalCells", ir.FormatAOD, 4))

	tasks := []Task{{Name: "tracks", Config: engine.Config{Kind: ir.KindTracks, Source: "tracks", Dest: "tracksCopy"}}}
	summary, err := New(s, tasks).Run(ctx)

	require.Error(t, err)
	assert.True(t, engine.IsCollectionNotFound(err))
	assert.Equal(t, 1, summary.Events)
	assert.Equal(t, 1, summary.Written)
	assert.Equal(t, "failed", summary.Tasks[0].State)

	_, err = s.ReadCollection(ctx, 2, store.StreamPrimary, "tracksCopy")
	assert.ErrorIs(t, err, store.ErrNotFound, "no empty copy is written for the failed event")
}

func TestRunner_FormatChangeIsAnError(t *testing.T) {
	s := setupTestStore(t)
	writeEvent(t, s, 1, store.StreamPrimary, ir.FormatAOD, testutil.Tracks("tracks", ir.FormatAOD, 1))
	writeEvent(t, s, 2, store.StreamPrimary, ir.FormatESD, testutil.Tracks("Tracks", ir.FormatESD, 1))

	tasks := []Task{{Name: "t", Config: engine.Config{Kind: ir.KindTracks, Source: engine.UseDefault, Dest: "tracksCopy"}}}
	summary, err := New(s, tasks).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "differs from run format")
	assert.Equal(t, 1, summary.Events)
}

func TestRunner_SharedRegistry(t *testing.T) {
	s := setupTestStore(t)
	writeEvent(t, s, 1, store.StreamPrimary, ir.FormatAOD, testutil.Tracks("tracks", ir.FormatAOD, 2))

	reg := identity.NewRegistry()
	tasks := []Task{{Name: "t", Config: engine.Config{Kind: ir.KindTracks, Source: engine.UseDefault, Dest: "tracksCopy"}}}
	_, err := New(s, tasks, WithRegistry(reg)).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len(), "copies never enter the registry under their original's ID")
}

func TestRunner_ContextCancelled(t *testing.T) {
	s := setupTestStore(t)
	writeEvent(t, s, 1, store.StreamPrimary, ir.FormatAOD, testutil.Tracks("tracks", ir.FormatAOD, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(s, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestImport(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc, err := event.ParseDocument([]byte(`
format: aod
run_number: 7
events:
  - primary:
      cells:
        - name: emcalCells
          cells: [{abs_id: 1, amplitude: 0.5}]
      tracks:
        - name: tracks
          aod: [{id: 1}, {id: 2}]
  - primary:
      tracks:
        - name: tracks
          aod: [{id: 3}]
    embedded:
      tracks:
        - name: tracks
          aod: [{id: 4}]
`))
	require.NoError(t, err)

	res, err := Import(ctx, s, doc, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Events)
	assert.Equal(t, 4, res.Collections)

	headers, err := s.ReadEventHeaders(ctx, 2)
	require.NoError(t, err)
	require.Len(t, headers, 2)
	assert.Equal(t, int64(7), headers[0].RunNumber)

	// Re-import overwrites instead of duplicating.
	_, err = Import(ctx, s, doc, 1)
	require.NoError(t, err)
	n, err := s.CountCollections(ctx, ir.KindTracks)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestImport_DuplicateNameInStream(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc, err := event.ParseDocument([]byte(`
format: aod
events:
  - primary:
      tracks:
        - name: tracks
          aod: [{id: 1}]
  - primary:
      tracks:
        - name: tracks
          aod: [{id: 2}, {id: 3}]
        - name: tracks
          aod: [{id: 4}]
`))
	require.NoError(t, err)

	res, err := Import(ctx, s, doc, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, event.ErrDuplicateName)
	assert.Contains(t, err.Error(), "event 2/primary")
	assert.Equal(t, 0, res.Collections)

	seqs, err := s.ReadEventSeqs(ctx)
	require.NoError(t, err)
	assert.Empty(t, seqs, "a rejected document writes nothing")
}

func TestImport_SameNameAcrossStreams(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	doc, err := event.ParseDocument([]byte(`
format: esd
events:
  - primary:
      tracks:
        - name: Tracks
          esd: [{id: 1}]
    embedded:
      tracks:
        - name: Tracks
          esd: [{id: 2}]
`))
	require.NoError(t, err)

	res, err := Import(ctx, s, doc, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Collections)
}
