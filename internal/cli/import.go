package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/collcopy/internal/event"
	"github.com/roach88/collcopy/internal/runner"
	"github.com/roach88/collcopy/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
	FirstSeq int64
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <events.yaml>",
		Short: "Load events from a YAML document into the database",
		Long: `Import the events of a YAML event document into the database,
creating it if it does not exist. Event i of the document is stored under
sequence number --first-seq + i; importing again overwrites the same events.

Example:
  collcopy import --db ./events.db events.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().Int64Var(&opts.FirstSeq, "first-seq", 1, "sequence number of the first imported event")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.FirstSeq < 1 {
		_ = formatter.Error(ErrCodeInput, "--first-seq must be at least 1", nil)
		return NewExitError(ExitCommandError, "invalid --first-seq")
	}

	doc, err := event.LoadDocument(path)
	if err != nil {
		_ = formatter.Error(ErrCodeInput, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load event document", err)
	}
	formatter.VerboseLog("Loaded %d event(s) from %s", len(doc.Events), path)

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := runner.Import(ctx, st, doc, opts.FirstSeq)
	if err != nil {
		_ = formatter.Error(ErrCodeInput, err.Error(), nil)
		return WrapExitError(ExitFailure, "import failed", err)
	}

	return formatter.Result(res, func(w io.Writer) {
		fmt.Fprintf(w, "Imported %d event(s), %d collection(s) into %s\n", res.Events, res.Collections, opts.Database)
	})
}
