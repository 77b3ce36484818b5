package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/collcopy/internal/config"
)

// ValidationError is one configuration problem.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Tasks  []config.Task     `json:"tasks,omitempty"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a task configuration without running it",
		Long: `Validate a CUE or YAML task configuration.

Checks the schema, the collection kinds, that every task has a name and
that no two tasks create the same destination in the same stream.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Validating %s", path)

	cfg, err := config.Load(path)
	if err != nil {
		return outputValidationError(formatter, toValidationError(err))
	}

	for _, t := range cfg.Tasks {
		formatter.VerboseLog("Task %s: %s %s -> %s (embedding=%t)", t.Name, t.Kind, t.Source, t.Dest, t.Embedding)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Tasks: cfg.Tasks})
	}
	fmt.Fprintf(formatter.Writer, "✓ Config valid (%d task(s))\n", len(cfg.Tasks))
	return nil
}

// toValidationError extracts field and line from a config error.
func toValidationError(err error) ValidationError {
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		ve := ValidationError{Field: cfgErr.Field, Message: cfgErr.Message}
		if cfgErr.Pos.IsValid() {
			ve.Line = cfgErr.Pos.Line()
		}
		return ve
	}
	return ValidationError{Message: err.Error()}
}

// outputValidationError outputs a validation failure.
func outputValidationError(formatter *OutputFormatter, ve ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: []ValidationError{ve}},
			Error: &CLIError{
				Code:    ErrCodeConfig,
				Message: ve.Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, "validation failed")
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	if ve.Line > 0 {
		fmt.Fprintf(formatter.Writer, "line %d\n", ve.Line)
	}
	if ve.Field != "" {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", ve.Field, ve.Message)
	} else {
		fmt.Fprintf(formatter.Writer, "  %s\n", ve.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, "validation failed")
}
