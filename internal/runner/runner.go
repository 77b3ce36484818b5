// Package runner drives copy engines over the events of a store.
//
// One Runner owns one event.Handler whose primary and embedded records are
// reused across events, the way a framework reuses its event objects: each
// event the records are cleared, refilled from the store, every engine runs
// in configuration order, and the destination collections the engines
// produced are written back to the same event stream.
//
// A fatal engine error aborts the run. Events without a record for an
// engine's stream are skipped by that engine and counted.
package runner

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

// Task is one named engine configuration.
type Task struct {
	Name   string
	Config engine.Config
}

// TaskSummary reports what one engine did over the run.
type TaskSummary struct {
	Name   string       `json:"name"`
	Kind   string       `json:"kind"`
	Source string       `json:"source"`
	Dest   string       `json:"dest"`
	State  string       `json:"state"`
	Stats  engine.Stats `json:"stats"`
}

// Summary reports the outcome of a run.
type Summary struct {
	Format  string        `json:"format"`
	Events  int           `json:"events"`
	Skipped int           `json:"skipped"`
	Written int           `json:"written"`
	Tasks   []TaskSummary `json:"tasks"`
}

// Runner executes tasks over every event in a store.
type Runner struct {
	store    *store.Store
	tasks    []Task
	logger   *slog.Logger
	registry *identity.Registry
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Defaults to discarding output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithRegistry sets the identity registry shared by all engines.
// Defaults to a fresh registry per Runner.
func WithRegistry(reg *identity.Registry) Option {
	return func(r *Runner) {
		r.registry = reg
	}
}

// New creates a runner over s.
func New(s *store.Store, tasks []Task, opts ...Option) *Runner {
	r := &Runner{
		store:    s,
		tasks:    tasks,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		registry: identity.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes all stored events in sequence order.
//
// The storage format of the run is the format of the first event; an event
// of another format is an error. The returned summary is valid even when an
// error is returned and reflects the events processed so far.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{Format: ir.FormatUnknown.String()}

	seqs, err := r.store.ReadEventSeqs(ctx)
	if err != nil {
		return summary, err
	}
	if len(seqs) == 0 {
		r.logger.InfoContext(ctx, "no events to process")
		return summary, nil
	}

	first, err := r.store.ReadEventHeaders(ctx, seqs[0])
	if err != nil {
		return summary, err
	}
	format := first[0].Format
	summary.Format = format.String()

	handler := event.NewHandler(format)
	primary := event.NewRecord()
	embedded := event.NewRecord()

	engines := make([]*engine.Engine, len(r.tasks))
	for i, task := range r.tasks {
		engines[i] = engine.New(task.Config, handler,
			engine.WithIdentityService(r.registry),
			engine.WithLogger(r.logger.With("task", task.Name)),
		)
	}
	defer func() {
		summary.Tasks = r.summarize(engines)
		for _, e := range engines {
			summary.Skipped += e.Stats().Skipped
		}
	}()

	for _, seq := range seqs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if err := r.load(ctx, handler, primary, embedded, seq, format); err != nil {
			return summary, err
		}

		for i, e := range engines {
			before := e.Stats().Copies
			if err := e.Exec(ctx); err != nil {
				return summary, fmt.Errorf("event %d, task %q: %w", seq, r.tasks[i].Name, err)
			}
			if e.Stats().Copies == before {
				continue
			}

			n, err := r.persist(ctx, handler, e, seq)
			if err != nil {
				return summary, err
			}
			summary.Written += n
		}

		summary.Events++
		r.logger.DebugContext(ctx, "event processed", "seq", seq)
	}

	r.logger.InfoContext(ctx, "run complete",
		"events", summary.Events,
		"written", summary.Written,
		"format", summary.Format,
	)
	return summary, nil
}

// load clears the reused records and refills them with the streams stored
// for seq. A stream without a stored header leaves its record unset.
func (r *Runner) load(ctx context.Context, h *event.Handler, primary, embedded *event.Record, seq int64, format ir.Format) error {
	primary.Reset()
	embedded.Reset()
	h.SetPrimary(nil)
	h.SetEmbedded(nil)

	headers, err := r.store.ReadEventHeaders(ctx, seq)
	if err != nil {
		return err
	}

	for _, hdr := range headers {
		if hdr.Format != format {
			return fmt.Errorf("event %d/%s: storage format %s differs from run format %s",
				seq, hdr.Stream, hdr.Format, format)
		}

		rec := primary
		if hdr.Stream == store.StreamEmbedded {
			rec = embedded
		}

		colls, err := r.store.ReadCollections(ctx, seq, hdr.Stream)
		if err != nil {
			return err
		}
		for _, c := range colls {
			if err := rec.Replace(c); err != nil {
				return fmt.Errorf("event %d/%s: %w", seq, hdr.Stream, err)
			}
		}
		rec.SetNumber(seq)

		if hdr.Stream == store.StreamEmbedded {
			h.SetEmbedded(rec)
		} else {
			h.SetPrimary(rec)
		}
	}
	return nil
}

// persist writes the destination collection of e for the current event.
func (r *Runner) persist(ctx context.Context, h *event.Handler, e *engine.Engine, seq int64) (int, error) {
	embedding := e.Config().Embedding
	ns, err := h.Event(embedding)
	if err != nil {
		return 0, err
	}
	coll := ns.FindListObject(e.DestName())
	if coll == nil {
		return 0, fmt.Errorf("event %d: destination %q vanished from the record", seq, e.DestName())
	}
	if err := r.store.WriteCollection(ctx, seq, store.StreamFor(embedding), coll); err != nil {
		return 0, err
	}
	return 1, nil
}

func (r *Runner) summarize(engines []*engine.Engine) []TaskSummary {
	out := make([]TaskSummary, len(engines))
	for i, e := range engines {
		cfg := e.Config()
		out[i] = TaskSummary{
			Name:   r.tasks[i].Name,
			Kind:   cfg.Kind.String(),
			Source: e.SourceName(),
			Dest:   e.DestName(),
			State:  e.State().String(),
			Stats:  e.Stats(),
		}
	}
	return out
}
