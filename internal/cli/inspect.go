package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/collcopy/internal/store"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Database string
	Event    int64
}

// StreamView lists the collections of one stream of one event.
type StreamView struct {
	Seq         int64                  `json:"seq"`
	Stream      store.Stream           `json:"stream"`
	RunNumber   int64                  `json:"run_number,omitempty"`
	Format      string                 `json:"format"`
	Collections []store.CollectionInfo `json:"collections"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List the collections stored per event",
		Long: `List every stored collection with its kind, entry count and content
digest. Two collections with the same digest hold identical contents.

Example:
  collcopy inspect --db ./events.db
  collcopy inspect --db ./events.db --event 3 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().Int64Var(&opts.Event, "event", 0, "only show this event sequence number (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runInspect(opts *InspectOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := openExistingStore(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	views, err := collectViews(ctx, st, opts.Event)
	if errors.Is(err, store.ErrNotFound) {
		_ = formatter.Error(ErrCodeInput, fmt.Sprintf("event %d not found", opts.Event), nil)
		return WrapExitError(ExitCommandError, "event not found", err)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read events", err)
	}

	return formatter.Result(views, func(w io.Writer) {
		if len(views) == 0 {
			fmt.Fprintln(w, "No events stored.")
			return
		}
		for _, v := range views {
			fmt.Fprintf(w, "event %d [%s, %s]\n", v.Seq, v.Stream, v.Format)
			for _, c := range v.Collections {
				digest := c.Digest
				if len(digest) > 12 {
					digest = digest[:12]
				}
				fmt.Fprintf(w, "  %-20s %-8s %5d  %s\n", c.Name, c.Kind, c.Entries, digest)
			}
		}
	})
}

func collectViews(ctx context.Context, st *store.Store, only int64) ([]StreamView, error) {
	seqs := []int64{only}
	if only == 0 {
		var err error
		seqs, err = st.ReadEventSeqs(ctx)
		if err != nil {
			return nil, err
		}
	}

	views := []StreamView{}
	for _, seq := range seqs {
		headers, err := st.ReadEventHeaders(ctx, seq)
		if err != nil {
			return nil, err
		}
		for _, h := range headers {
			infos, err := st.ReadCollectionInfos(ctx, seq, h.Stream)
			if err != nil {
				return nil, err
			}
			views = append(views, StreamView{
				Seq:         seq,
				Stream:      h.Stream,
				RunNumber:   h.RunNumber,
				Format:      h.Format.String(),
				Collections: infos,
			})
		}
	}
	return views, nil
}
