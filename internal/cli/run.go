package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/collcopy/internal/config"
	"github.com/roach88/collcopy/internal/engine"
	"github.com/roach88/collcopy/internal/identity"
	"github.com/roach88/collcopy/internal/runner"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string
	Config   string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Copy collections of every stored event",
		Long: `Run the configured copy tasks over every event stored in the database.

Each task copies one collection kind (cells, clusters or tracks) into a new
collection of the same event. Copies are written back to the database.
A fatal task error (name collision, missing collection, count mismatch)
stops the run.

The database path is taken from --db, then COLLCOPY_DATABASE, then the
config file's "database" field. The database must already exist; create it
with "collcopy import".

Example:
  collcopy run --config tasks.cue --db ./events.db
  collcopy run --config tasks.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCopy(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database")
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "path to task configuration (.cue, .yaml) (required)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runCopy(opts *RunOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logger := newLogger(formatter.GetErrWriter(), opts.Verbose || cfg.Verbose)

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = cfg.Database
	}
	if dbPath == "" {
		_ = formatter.Error(ErrCodeConfig, "no database configured (use --db, COLLCOPY_DATABASE or the config file)", nil)
		return NewExitError(ExitCommandError, "no database configured")
	}

	tasks, err := cfg.RunnerTasks()
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid tasks", err)
	}

	logger.Info("opening database", "path", dbPath)
	st, err := openExistingStore(formatter, dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.New(st, tasks,
		runner.WithLogger(logger),
		runner.WithRegistry(identity.NewRegistry()),
	)
	summary, runErr := r.Run(ctx)

	if runErr != nil {
		var re *engine.RuntimeError
		if errors.As(runErr, &re) {
			_ = formatter.Error(string(re.Code), runErr.Error(), runDetails(summary, re))
			return WrapExitError(ExitFailure, "copy failed", runErr)
		}
		if errors.Is(runErr, context.Canceled) {
			logger.Info("run interrupted", "events", summary.Events)
		}
		_ = formatter.Error(ErrCodeRun, runErr.Error(), summary)
		return WrapExitError(ExitFailure, "run failed", runErr)
	}

	return formatter.Result(summary, func(w io.Writer) {
		writeSummary(w, summary)
	})
}

func runDetails(summary *runner.Summary, re *engine.RuntimeError) map[string]any {
	details := map[string]any{"summary": summary}
	if re.Name != "" {
		details["name"] = re.Name
	}
	for k, v := range re.Details {
		details[k] = v
	}
	return details
}

func writeSummary(w io.Writer, s *runner.Summary) {
	fmt.Fprintf(w, "Processed %d event(s) (%s), wrote %d collection(s), %d skip(s)\n",
		s.Events, s.Format, s.Written, s.Skipped)
	for _, t := range s.Tasks {
		fmt.Fprintf(w, "  %-12s %-8s %s -> %s  copies=%d skipped=%d state=%s\n",
			t.Name, t.Kind, t.Source, t.Dest, t.Stats.Copies, t.Stats.Skipped, t.State)
	}
}
