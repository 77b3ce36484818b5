package event

import (
	"github.com/roach88/collcopy/internal/ir"
)

// Handler is the input handler of a run. It implements Input.
type Handler struct {
	format   ir.Format
	primary  *Record
	embedded *Record
}

// NewHandler creates a handler for a run of the given storage format with
// an empty primary record and no embedded stream.
func NewHandler(format ir.Format) *Handler {
	return &Handler{format: format, primary: NewRecord()}
}

// Format returns the storage format of the run.
func (h *Handler) Format() ir.Format { return h.format }

// Primary returns the primary record.
func (h *Handler) Primary() *Record { return h.primary }

// Embedded returns the embedded record, or nil when the run has none.
func (h *Handler) Embedded() *Record { return h.embedded }

// SetPrimary replaces the primary record. A nil record marks the current
// event as unavailable.
func (h *Handler) SetPrimary(r *Record) { h.primary = r }

// SetEmbedded replaces the embedded record.
func (h *Handler) SetEmbedded(r *Record) { h.embedded = r }

// Event returns the record of the requested stream.
func (h *Handler) Event(embedding bool) (Namespace, error) {
	r := h.primary
	if embedding {
		r = h.embedded
	}
	if r == nil {
		return nil, ErrNoEvent
	}
	return r, nil
}
