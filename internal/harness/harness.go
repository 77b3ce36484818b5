package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/collcopy/internal/engine"
	"github.com/roach88/collcopy/internal/event"
	"github.com/roach88/collcopy/internal/identity"
	"github.com/roach88/collcopy/internal/ir"
	"github.com/roach88/collcopy/internal/store"
)

// Harness is the scenario execution engine.
type Harness struct {
	store    *store.Store
	engine   *engine.Engine
	registry *identity.Registry
	handler  *event.Handler
	primary  *event.Record
	embedded *event.Record
	format   ir.Format
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
//  1. Create fresh in-memory database and one engine for the task
//  2. For every event: refill the reused records, execute the engine,
//     record the trace entry and persist the event's collections
//  3. Stop at the first fatal error
//  4. Evaluate assertions against the trace, counters and store
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with the engine logging to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	ctx := context.Background()

	format, err := ir.ParseFormat(scenario.Format)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}
	cfg, err := scenario.Task.EngineConfig()
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:    st,
		registry: identity.NewRegistry(),
		handler:  event.NewHandler(format),
		primary:  event.NewRecord(),
		embedded: event.NewRecord(),
		format:   format,
		logger:   logger,
	}
	h.engine = engine.New(cfg, h.handler,
		engine.WithIdentityService(h.registry),
		engine.WithLogger(logger.With("scenario", scenario.Name)),
	)

	result := NewResult()

	for i, spec := range scenario.Events {
		sources, err := h.load(spec)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}

		before := h.engine.Stats()
		execErr := h.engine.Exec(ctx)

		ev := TraceEvent{Event: i}
		switch {
		case execErr != nil:
			ev.Outcome = OutcomeFailed
			ev.Code = string(engine.ErrorCode(execErr))
			if ev.Code == "" {
				return nil, fmt.Errorf("event %d: %w", i, execErr)
			}
		case h.engine.Stats().Copies > before.Copies:
			ev.Outcome = OutcomeCopied
			ev.Dest = h.destSummary()
			if check, ok := h.checkIdentity(i, sources); ok {
				result.identity = append(result.identity, check)
			}
		default:
			ev.Outcome = OutcomeSkipped
		}
		result.AddTrace(ev)

		if err := h.persist(ctx, int64(i+1)); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}

		if execErr != nil {
			result.ErrorCode = ev.Code
			break
		}
	}
	result.Stats = h.engine.Stats()

	if err := EvaluateAssertions(ctx, st, result, scenario.Assertions); err != nil {
		result.AddError(err.Error())
	}
	return result, nil
}

// sourceRefs holds weak references to the source tracks of one event.
type sourceRefs struct {
	objects []ir.Object
	refs    *identity.RefArray
}

// load refills the reused records with the event's streams. Source tracks
// of the copied stream are referenced through the registry so identity
// resets are observable.
func (h *Harness) load(spec event.EventSpec) (*sourceRefs, error) {
	h.primary.Reset()
	h.embedded.Reset()
	h.handler.SetPrimary(nil)
	h.handler.SetEmbedded(nil)

	sources := &sourceRefs{refs: identity.NewRefArray(h.registry)}
	fill := func(s *event.StreamSpec, rec *event.Record, embedding bool) error {
		colls, err := s.Collections(h.format)
		if err != nil {
			return err
		}
		for _, c := range colls {
			if err := rec.Replace(c); err != nil {
				return err
			}
		}
		if embedding != h.engine.Config().Embedding {
			return nil
		}
		cfg := h.engine.Config()
		name, err := engine.ResolveName(cfg.Kind, cfg.Source, h.format)
		if err != nil {
			return nil
		}
		arr, ok := rec.FindListObject(name).(*ir.Array)
		if !ok || arr.Kind() != ir.KindTracks {
			return nil
		}
		for j := 0; j < arr.Len(); j++ {
			if obj := arr.At(j); obj != nil {
				sources.refs.Add(obj)
				sources.objects = append(sources.objects, obj)
			}
		}
		return nil
	}

	if spec.Primary != nil {
		if err := fill(spec.Primary, h.primary, false); err != nil {
			return nil, fmt.Errorf("primary: %w", err)
		}
		h.handler.SetPrimary(h.primary)
	}
	if spec.Embedded != nil {
		if err := fill(spec.Embedded, h.embedded, true); err != nil {
			return nil, fmt.Errorf("embedded: %w", err)
		}
		h.handler.SetEmbedded(h.embedded)
	}
	return sources, nil
}

// currentRecord returns the record the engine reads from, or nil.
func (h *Harness) currentRecord() event.Namespace {
	ns, err := h.handler.Event(h.engine.Config().Embedding)
	if err != nil {
		return nil
	}
	return ns
}

func (h *Harness) destSummary() *CollectionSummary {
	ns := h.currentRecord()
	if ns == nil {
		return nil
	}
	c := ns.FindListObject(h.engine.DestName())
	if c == nil {
		return nil
	}
	return &CollectionSummary{
		Name:    c.Name(),
		Kind:    c.Kind().String(),
		Entries: c.Len(),
	}
}

// checkIdentity inspects a freshly copied track array.
func (h *Harness) checkIdentity(i int, sources *sourceRefs) (IdentityCheck, bool) {
	ns := h.currentRecord()
	if ns == nil {
		return IdentityCheck{}, false
	}
	arr, ok := ns.FindListObject(h.engine.DestName()).(*ir.Array)
	if !ok || arr.Kind() != ir.KindTracks {
		return IdentityCheck{}, false
	}

	check := IdentityCheck{Event: i, Name: arr.Name(), Cleared: true, Resolved: true}
	for j := 0; j < arr.Len(); j++ {
		obj := arr.At(j)
		if obj == nil {
			continue
		}
		ref := ir.RefOf(obj)
		if ref.UniqueID != 0 || ref.Referenced || ref.HasUUID {
			check.Cleared = false
		}
	}
	for j, src := range sources.objects {
		if sources.refs.At(j) != src {
			check.Resolved = false
		}
	}
	return check, true
}

// persist stores every available stream of the current event.
func (h *Harness) persist(ctx context.Context, seq int64) error {
	streams := []struct {
		stream store.Stream
		rec    *event.Record
	}{
		{store.StreamPrimary, h.handler.Primary()},
		{store.StreamEmbedded, h.handler.Embedded()},
	}
	for _, s := range streams {
		if s.rec == nil {
			continue
		}
		if err := h.store.WriteEvent(ctx, store.EventHeader{Seq: seq, Stream: s.stream, Format: h.format}); err != nil {
			return err
		}
		for _, c := range s.rec.Collections() {
			if err := h.store.WriteCollection(ctx, seq, s.stream, c); err != nil {
				return err
			}
		}
	}
	return nil
}
