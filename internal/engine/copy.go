package engine

import (
	"context"
	"fmt"

	"github.com/roach88/collcopy/internal/event"
	"github.com/roach88/collcopy/internal/ir"
)

// unsetValue marks cluster fields that are not meaningful on a copy.
const unsetValue = -1

// Copy refreshes the destination collection from the source for the current
// event. The engine must be initialized.
func (e *Engine) Copy(ctx context.Context) error {
	switch e.state {
	case StateFailed:
		return e.err
	case StateUninitialized:
		return &RuntimeError{
			Code:    ErrCodeNotInitialized,
			Message: "copy requested before the destination collection was created",
			Kind:    e.cfg.Kind,
			Name:    e.dest,
		}
	}

	rec, ok := e.currentEvent(ctx)
	if !ok {
		return nil
	}

	var err error
	switch e.cfg.Kind {
	case ir.KindCells:
		err = e.copyCells(ctx, rec)
	case ir.KindClusters:
		err = e.copyClusters(ctx, rec)
	case ir.KindTracks:
		err = e.copyTracks(ctx, rec)
	default:
		err = NewUnknownKindError(e.cfg.Kind)
	}
	if err != nil {
		return e.fail(ctx, err)
	}

	e.stats.Copies++
	return nil
}

func (e *Engine) copyCells(ctx context.Context, rec event.Namespace) error {
	src, err := lookup[ir.Cells](rec, e.cfg.Kind, "source", e.source)
	if err != nil {
		return err
	}
	dst, err := lookup[ir.Cells](rec, e.cfg.Kind, "destination", e.dest)
	if err != nil {
		return err
	}

	e.logger.DebugContext(ctx, "before copy", "source_cells", src.NumberOfCells())

	src.Copy(dst)
	// The copy renamed dst after the source; restore its own name.
	dst.SetName(e.dest)
	dst.SetTitle(e.dest)

	e.logger.DebugContext(ctx, "after copy",
		"source_cells", src.NumberOfCells(), "dest_cells", dst.NumberOfCells())

	if src.NumberOfCells() != dst.NumberOfCells() {
		return NewCountMismatchError(e.cfg.Kind, e.dest, src.NumberOfCells(), dst.NumberOfCells())
	}
	return nil
}

func (e *Engine) copyClusters(ctx context.Context, rec event.Namespace) error {
	src, dst, err := e.lookupArrays(rec)
	if err != nil {
		return err
	}

	e.logger.DebugContext(ctx, "before copy",
		"source_entries", src.Entries(), "dest_entries", dst.Entries())

	n := src.Len()
	dst.Reset(n)
	for i := 0; i < n; i++ {
		obj := src.At(i)
		if obj == nil {
			continue
		}
		oc, ok := obj.(*ir.Cluster)
		if !ok {
			return NewKindMismatchError(e.cfg.Kind, e.source, string(obj.ElementType()))
		}
		dc, ok := dst.New(i).(*ir.Cluster)
		if !ok {
			return NewKindMismatchError(e.cfg.Kind, e.dest, string(dst.ElementType()))
		}
		copyCluster(dc, oc)
	}

	e.logger.DebugContext(ctx, "after copy",
		"source_entries", src.Entries(), "dest_entries", dst.Entries())

	if src.Len() != dst.Len() {
		return NewCountMismatchError(e.cfg.Kind, e.dest, src.Len(), dst.Len())
	}
	return nil
}

// copyCluster copies every reconstructed quantity of oc into dc. The CPV
// distance and chi2 are reset: dc is a copy, not a reconstruction.
func copyCluster(dc, oc *ir.Cluster) {
	dc.Type = oc.Type
	dc.E = oc.E
	dc.Position = oc.Position
	dc.CellsAbsID = append([]int32(nil), oc.CellsAbsID...)
	dc.CellsAmplitudeFraction = append([]float64(nil), oc.CellsAmplitudeFraction...)
	dc.ID = oc.ID
	dc.Dispersion = oc.Dispersion
	dc.EmcCpvDistance = unsetValue
	dc.Chi2 = unsetValue
	dc.TOF = oc.TOF
	dc.NExMax = oc.NExMax
	dc.M02 = oc.M02
	dc.M20 = oc.M20
	dc.DistanceToBadChannel = oc.DistanceToBadChannel
	dc.MCEnergyFraction = oc.MCEnergyFraction

	// No MC labels on real data.
	if oc.NLabels() == 0 {
		return
	}

	switch dc.Format {
	case ir.FormatESD:
		dc.AddLabels(oc.Labels)
	case ir.FormatAOD:
		dc.SetLabel(oc.Labels, oc.NLabels())
	}
}

func (e *Engine) copyTracks(ctx context.Context, rec event.Namespace) error {
	src, dst, err := e.lookupArrays(rec)
	if err != nil {
		return err
	}

	e.logger.DebugContext(ctx, "before copy",
		"source_entries", src.Entries(), "dest_entries", dst.Entries())

	n := src.Len()
	dst.Reset(n)
	for i := 0; i < n; i++ {
		obj := src.At(i)
		if obj == nil {
			continue
		}

		var dup ir.Object
		switch e.format {
		case ir.FormatESD:
			t, ok := obj.(*ir.ESDTrack)
			if !ok {
				return NewKindMismatchError(e.cfg.Kind, e.source, string(obj.ElementType()))
			}
			dup = t.Clone()
		default:
			t, ok := obj.(*ir.AODTrack)
			if !ok {
				return NewKindMismatchError(e.cfg.Kind, e.source, string(obj.ElementType()))
			}
			dup = t.Clone()
		}

		if err := dst.Put(i, dup); err != nil {
			return NewKindMismatchError(e.cfg.Kind, e.dest, string(dst.ElementType()))
		}

		// The value copy carries the original's unique ID and reference
		// bits; left set, weak references would resolve to the original.
		e.identity.ClearIdentity(dup)
	}

	e.logger.DebugContext(ctx, "after copy",
		"source_entries", src.Entries(), "dest_entries", dst.Entries())

	if src.Len() != dst.Len() {
		return NewCountMismatchError(e.cfg.Kind, e.dest, src.Len(), dst.Len())
	}
	return nil
}

// lookupArrays fetches the source and destination arrays. A source array of
// another kind is reported, not coerced.
func (e *Engine) lookupArrays(rec event.Namespace) (src, dst *ir.Array, err error) {
	src, err = lookup[*ir.Array](rec, e.cfg.Kind, "source", e.source)
	if err != nil {
		return nil, nil, err
	}
	dst, err = lookup[*ir.Array](rec, e.cfg.Kind, "destination", e.dest)
	if err != nil {
		return nil, nil, err
	}
	if src.Kind() != e.cfg.Kind {
		return nil, nil, NewKindMismatchError(e.cfg.Kind, e.source, string(src.ElementType()))
	}
	if dst.ElementType() != e.elemType {
		return nil, nil, NewKindMismatchError(e.cfg.Kind, e.dest, string(dst.ElementType()))
	}
	return src, dst, nil
}

// lookup finds a collection by name and asserts its concrete shape.
func lookup[T ir.Collection](rec event.Namespace, kind ir.Kind, role, name string) (T, error) {
	var zero T
	coll := rec.FindListObject(name)
	if coll == nil {
		return zero, NewCollectionNotFoundError(kind, role, name)
	}
	typed, ok := coll.(T)
	if !ok {
		return zero, NewKindMismatchError(kind, name, fmt.Sprintf("%s (%T)", coll.Kind(), coll))
	}
	return typed, nil
}
