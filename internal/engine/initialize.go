package engine

import (
	"context"

	"github.com/roach88/collcopy/internal/event"
	"github.com/roach88/collcopy/internal/ir"
)

// Initialize creates the destination collection in the current event record.
//
// It is a no-op once the engine is initialized and returns the stored error
// once it has failed. When no record is available the engine stays
// uninitialized and Initialize returns nil; the next event retries.
func (e *Engine) Initialize(ctx context.Context) error {
	switch e.state {
	case StateInitialized:
		return nil
	case StateFailed:
		return e.err
	}

	rec, ok := e.currentEvent(ctx)
	if !ok {
		return nil
	}

	if e.source == "" {
		return e.fail(ctx, NewEmptyNameError(e.cfg.Kind, "source"))
	}
	if e.dest == "" {
		return e.fail(ctx, NewEmptyNameError(e.cfg.Kind, "destination"))
	}
	if !e.cfg.Kind.Valid() {
		return e.fail(ctx, NewUnknownKindError(e.cfg.Kind))
	}

	source, err := ResolveName(e.cfg.Kind, e.source, e.format)
	if err != nil {
		return e.fail(ctx, err)
	}
	dest, err := ResolveName(e.cfg.Kind, e.dest, e.format)
	if err != nil {
		return e.fail(ctx, err)
	}
	e.source = ir.NormalizeName(source)
	e.dest = ir.NormalizeName(dest)

	if err := e.newBranch(ctx, rec); err != nil {
		return e.fail(ctx, err)
	}

	e.state = StateInitialized
	e.logger.InfoContext(ctx, "copy engine initialized",
		"kind", e.cfg.Kind,
		"source", e.source,
		"dest", e.dest,
		"format", e.format,
		"embedding", e.cfg.Embedding,
	)
	return nil
}

// newBranch appends a fresh destination collection to rec. It never shadows
// an existing collection.
func (e *Engine) newBranch(ctx context.Context, rec event.Namespace) error {
	if existing := rec.FindListObject(e.dest); existing != nil {
		return NewNameCollisionError(e.cfg.Kind, e.dest)
	}

	var coll ir.Collection
	switch e.cfg.Kind {
	case ir.KindCells:
		coll = ir.NewCaloCells(e.dest, e.dest, e.format, ir.CellEMCAL)
	case ir.KindClusters, ir.KindTracks:
		elemType, err := ElementTypeFor(e.cfg.Kind, e.format)
		if err != nil {
			return err
		}
		arr, err := ir.NewArray(elemType, e.dest)
		if err != nil {
			return err
		}
		e.elemType = elemType
		coll = arr
	default:
		return NewUnknownKindError(e.cfg.Kind)
	}

	if err := rec.AddObject(coll); err != nil {
		// Only a duplicate name can fail here.
		return NewNameCollisionError(e.cfg.Kind, e.dest)
	}
	e.stats.Created++

	e.logger.DebugContext(ctx, "created destination collection",
		"kind", e.cfg.Kind, "name", e.dest, "element_type", e.elemType)
	return nil
}
