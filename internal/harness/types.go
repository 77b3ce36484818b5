package harness

import "github.com/roach88/collcopy/internal/engine"

// Trace outcomes of one event.
const (
	OutcomeCopied  = "copied"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// TraceEvent records what the engine did with one event.
type TraceEvent struct {
	Event   int                `json:"event"`
	Outcome string             `json:"outcome"`
	Code    string             `json:"code,omitempty"`
	Dest    *CollectionSummary `json:"dest,omitempty"`
}

// CollectionSummary describes the destination collection after a copy.
type CollectionSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Entries int    `json:"entries"`
}

// IdentityCheck is the identity state of a copied track array, captured
// right after the copy because identity bits are never persisted.
type IdentityCheck struct {
	Event int
	Name  string

	// Cleared is true when no copied track carries an identity.
	Cleared bool

	// Resolved is true when every source track still resolves to itself
	// through the registry.
	Resolved bool
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// Trace has one entry per processed event. A fatal error ends the trace.
	Trace []TraceEvent `json:"trace"`

	// ErrorCode is the code of the error that stopped the run, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// Stats are the engine counters at the end of the run.
	Stats engine.Stats `json:"stats"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	identity []IdentityCheck
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends the trace entry of one event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}

// Identity returns the identity check captured for event, if any.
func (r *Result) Identity(event int) (IdentityCheck, bool) {
	for _, c := range r.identity {
		if c.Event == event {
			return c, true
		}
	}
	return IdentityCheck{}, false
}
