package engine

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/collcopy/internal/event"
	"github.com/roach88/collcopy/internal/ir"
)

// Config is the construction-time configuration of one engine.
type Config struct {
	// Kind is the collection kind to replicate.
	Kind ir.Kind

	// Source names the collection to copy. May be UseDefault.
	Source string

	// Dest names the collection to create. May be UseDefault, which almost
	// always collides with the source and is rejected at initialization.
	Dest string

	// Embedding selects the embedded input stream instead of the primary.
	Embedding bool
}

// State is the lifecycle state of an engine.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// IdentityService resets the reference bookkeeping of a duplicated record so
// it does not impersonate its original.
type IdentityService interface {
	ClearIdentity(obj ir.Object)
}

// resetIdentity clears the identity fields without consulting any registry.
type resetIdentity struct{}

func (resetIdentity) ClearIdentity(obj ir.Object) {
	ir.RefOf(obj).Reset()
}

// Stats counts what an engine has done so far.
type Stats struct {
	// Created is the number of destination collections appended (0 or 1).
	Created int `json:"created"`

	// Copies is the number of events copied.
	Copies int `json:"copies"`

	// Skipped is the number of events skipped because no record was available.
	Skipped int `json:"skipped"`
}

// Engine replicates one collection per event. See the package documentation
// for the lifecycle.
//
// INVARIANTS:
//   - cfg never changes after construction
//   - source and dest are concrete and non-empty once state is StateInitialized
//   - the destination collection is created at most once per engine
type Engine struct {
	cfg      Config
	input    event.Input
	identity IdentityService
	logger   *slog.Logger
	format   ir.Format

	state  State
	err    error
	source string
	dest   string

	// elemType is the destination element type for array kinds, resolved
	// once at initialization.
	elemType ir.ElementType

	stats Stats
}

// Option configures an Engine.
type Option func(*Engine)

// WithIdentityService sets the service used to clear the identity of copied
// tracks. Defaults to resetting the fields in place.
func WithIdentityService(svc IdentityService) Option {
	return func(e *Engine) {
		e.identity = svc
	}
}

// WithLogger sets the logger. Defaults to discarding output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine reading events from input.
//
// The storage format is probed once here. Without an input the engine logs
// an error and assumes AOD.
func New(cfg Config, input event.Input, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		input:    input,
		identity: resetIdentity{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		source:   cfg.Source,
		dest:     cfg.Dest,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.format = ir.FormatAOD
	if input == nil {
		e.logger.Error("input handler not found", "kind", cfg.Kind)
	} else if input.Format() == ir.FormatESD {
		e.format = ir.FormatESD
	}

	return e
}

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// Err returns the fatal error that moved the engine to StateFailed.
func (e *Engine) Err() error { return e.err }

// Config returns the construction-time configuration.
func (e *Engine) Config() Config { return e.cfg }

// Format returns the storage format probed at construction.
func (e *Engine) Format() ir.Format { return e.format }

// SourceName returns the source name; concrete once initialized.
func (e *Engine) SourceName() string { return e.source }

// DestName returns the destination name; concrete once initialized.
func (e *Engine) DestName() string { return e.dest }

// Stats returns the counters.
func (e *Engine) Stats() Stats { return e.stats }

// Exec is the per-event entry point: it initializes the engine on first use
// and copies the collection.
//
// Returns nil without effect when the event record is unavailable. Returns a
// *RuntimeError on any fatal condition; the run must stop.
func (e *Engine) Exec(ctx context.Context) error {
	switch e.state {
	case StateFailed:
		return e.err
	case StateUninitialized:
		if err := e.Initialize(ctx); err != nil {
			return err
		}
		// Only continue if initialized successfully
		if e.state != StateInitialized {
			return nil
		}
	}
	return e.Copy(ctx)
}

// fail moves the engine to the terminal failed state.
func (e *Engine) fail(ctx context.Context, err error) error {
	e.state = StateFailed
	e.err = err
	e.logger.ErrorContext(ctx, "copy engine failed", "kind", e.cfg.Kind, "error", err)
	return err
}

// currentEvent fetches the record of the configured stream. Any retrieval
// failure is a per-event miss, reported as ok=false.
func (e *Engine) currentEvent(ctx context.Context) (rec event.Namespace, ok bool) {
	if e.input == nil {
		e.stats.Skipped++
		e.logger.DebugContext(ctx, "could not retrieve event, skipping", "reason", "no input handler")
		return nil, false
	}
	rec, err := e.input.Event(e.cfg.Embedding)
	if err != nil || rec == nil {
		e.stats.Skipped++
		e.logger.DebugContext(ctx, "could not retrieve event, skipping",
			"kind", e.cfg.Kind, "embedding", e.cfg.Embedding, "error", err)
		return nil, false
	}
	return rec, true
}
