package harness

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/collcopy/internal/ir"
	"github.com/roach88/collcopy/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, ev := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s", ev.Event, ev.Outcome)
		if ev.Code != "" {
			fmt.Fprintf(&buf, " %s", ev.Code)
		}
		if ev.Dest != nil {
			fmt.Fprintf(&buf, " %s(%d)", ev.Dest.Name, ev.Dest.Entries)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

// EvaluateAssertions runs all assertions and returns the first failure.
// Assertions are evaluated in order; evaluation stops at the first failure.
func EvaluateAssertions(ctx context.Context, st *store.Store, result *Result, assertions []Assertion) error {
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertOutcome:
			err = assertOutcome(result, a)
		case AssertError:
			err = assertError(result, a)
		case AssertStats:
			err = assertStats(result, a)
		case AssertCollection:
			err = assertCollection(ctx, st, result, a)
		case AssertCluster:
			err = assertCluster(ctx, st, result, a)
		case AssertIdentityCleared:
			err = assertIdentityCleared(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			return fmt.Errorf("assertion %d failed: %w", i, err)
		}
	}
	return nil
}

func assertOutcome(result *Result, a Assertion) error {
	for _, ev := range result.Trace {
		if ev.Event != a.Event {
			continue
		}
		if ev.Outcome == a.Outcome && (a.Code == "" || ev.Code == a.Code) {
			return nil
		}
		return &AssertionError{
			Type:     AssertOutcome,
			Expected: fmt.Sprintf("event %d %s %s", a.Event, a.Outcome, a.Code),
			Actual:   fmt.Sprintf("event %d %s %s", ev.Event, ev.Outcome, ev.Code),
			Trace:    result.Trace,
		}
	}
	return &AssertionError{
		Type:     AssertOutcome,
		Expected: fmt.Sprintf("event %d %s", a.Event, a.Outcome),
		Actual:   "event not processed",
		Trace:    result.Trace,
	}
}

func assertError(result *Result, a Assertion) error {
	if result.ErrorCode == a.Code {
		return nil
	}
	return &AssertionError{
		Type:     AssertError,
		Expected: fmt.Sprintf("error code %q", a.Code),
		Actual:   fmt.Sprintf("error code %q", result.ErrorCode),
		Trace:    result.Trace,
	}
}

func assertStats(result *Result, a Assertion) error {
	checks := []struct {
		name string
		want *int
		got  int
	}{
		{"created", a.Created, result.Stats.Created},
		{"copies", a.Copies, result.Stats.Copies},
		{"skipped", a.Skipped, result.Stats.Skipped},
	}
	for _, c := range checks {
		if c.want != nil && *c.want != c.got {
			return &AssertionError{
				Type:     AssertStats,
				Expected: fmt.Sprintf("%s = %d", c.name, *c.want),
				Actual:   fmt.Sprintf("%s = %d", c.name, c.got),
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

func streamOf(a Assertion) store.Stream {
	if a.Stream == "embedded" {
		return store.StreamEmbedded
	}
	return store.StreamPrimary
}

func assertCollection(ctx context.Context, st *store.Store, result *Result, a Assertion) error {
	seq := int64(a.Event + 1)
	c, err := st.ReadCollection(ctx, seq, streamOf(a), a.Name)
	if errors.Is(err, store.ErrNotFound) {
		if a.Absent {
			return nil
		}
		return &AssertionError{
			Type:     AssertCollection,
			Expected: fmt.Sprintf("collection %q stored for event %d", a.Name, a.Event),
			Actual:   "not found",
			Trace:    result.Trace,
		}
	}
	if err != nil {
		return err
	}
	if a.Absent {
		return &AssertionError{
			Type:     AssertCollection,
			Expected: fmt.Sprintf("no collection %q for event %d", a.Name, a.Event),
			Actual:   fmt.Sprintf("%s collection with %d entries", c.Kind(), c.Len()),
			Trace:    result.Trace,
		}
	}

	if a.Entries != nil && c.Len() != *a.Entries {
		return &AssertionError{
			Type:     AssertCollection,
			Expected: fmt.Sprintf("%q has %d entries", a.Name, *a.Entries),
			Actual:   fmt.Sprintf("%d entries", c.Len()),
			Trace:    result.Trace,
		}
	}

	if a.Title != nil {
		cells, ok := c.(*ir.CaloCells)
		if !ok {
			return fmt.Errorf("collection %q holds %s, title applies to cells", a.Name, c.Kind())
		}
		if cells.Title() != *a.Title {
			return &AssertionError{
				Type:     AssertCollection,
				Expected: fmt.Sprintf("%q titled %q", a.Name, *a.Title),
				Actual:   fmt.Sprintf("titled %q", cells.Title()),
				Trace:    result.Trace,
			}
		}
	}

	if a.SameAs != "" {
		other, err := st.ReadCollection(ctx, seq, streamOf(a), a.SameAs)
		if err != nil {
			return fmt.Errorf("collection %q: %w", a.SameAs, err)
		}
		got, err := ir.Digest(c)
		if err != nil {
			return err
		}
		want, err := ir.Digest(other)
		if err != nil {
			return err
		}
		if got != want {
			return &AssertionError{
				Type:     AssertCollection,
				Expected: fmt.Sprintf("%q identical to %q (%s)", a.Name, a.SameAs, want),
				Actual:   got,
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

func assertCluster(ctx context.Context, st *store.Store, result *Result, a Assertion) error {
	c, err := st.ReadCollection(ctx, int64(a.Event+1), streamOf(a), a.Name)
	if err != nil {
		return fmt.Errorf("collection %q: %w", a.Name, err)
	}
	arr, ok := c.(*ir.Array)
	if !ok || arr.Kind() != ir.KindClusters {
		return fmt.Errorf("collection %q holds %s, not clusters", a.Name, c.Kind())
	}
	cl, ok := arr.At(a.Index).(*ir.Cluster)
	if !ok {
		return &AssertionError{
			Type:     AssertCluster,
			Expected: fmt.Sprintf("cluster at %s[%d]", a.Name, a.Index),
			Actual:   "empty slot",
			Trace:    result.Trace,
		}
	}

	fail := func(field string, want, got any) error {
		return &AssertionError{
			Type:     AssertCluster,
			Expected: fmt.Sprintf("%s[%d].%s = %v", a.Name, a.Index, field, want),
			Actual:   fmt.Sprintf("%v", got),
			Trace:    result.Trace,
		}
	}

	if a.Labels != nil && !slices.Equal(cl.Labels, *a.Labels) {
		return fail("labels", *a.Labels, cl.Labels)
	}
	if a.Energy != nil && cl.E != *a.Energy {
		return fail("e", *a.Energy, cl.E)
	}
	if a.EmcCpvDistance != nil && cl.EmcCpvDistance != *a.EmcCpvDistance {
		return fail("emc_cpv_distance", *a.EmcCpvDistance, cl.EmcCpvDistance)
	}
	if a.Chi2 != nil && cl.Chi2 != *a.Chi2 {
		return fail("chi2", *a.Chi2, cl.Chi2)
	}
	return nil
}

func assertIdentityCleared(result *Result, a Assertion) error {
	check, ok := result.Identity(a.Event)
	if !ok || ir.NormalizeName(check.Name) != ir.NormalizeName(a.Name) {
		return &AssertionError{
			Type:     AssertIdentityCleared,
			Expected: fmt.Sprintf("tracks %q copied at event %d", a.Name, a.Event),
			Actual:   "no track copy recorded",
			Trace:    result.Trace,
		}
	}
	if !check.Cleared {
		return &AssertionError{
			Type:     AssertIdentityCleared,
			Expected: "copied tracks carry no identity",
			Actual:   "a copied track keeps its original's identity",
			Trace:    result.Trace,
		}
	}
	if !check.Resolved {
		return &AssertionError{
			Type:     AssertIdentityCleared,
			Expected: "source tracks resolve to themselves",
			Actual:   "a source track reference resolves elsewhere",
			Trace:    result.Trace,
		}
	}
	return nil
}
