package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/predc/internal/compiler"
)

// DocumentValidationError is a validation error tagged with its document.
type DocumentValidationError struct {
	Document string `json:"document"`
	compiler.ValidationError
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                      `json:"valid"`
	Documents int                       `json:"documents"`
	Errors    []DocumentValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <documents-file>",
		Short: "Validate document predicates without compiling",
		Long: `Check every document predicate for structural problems: inverted
ranges, empty keys or value sets, and malformed feature conjunctions.

All problems are reported, not just the first. Faster than compile for
development feedback.`,
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
	formatter := newFormatter(opts, cmd)

	loaded, err := LoadInput(opts, path)
	if err != nil {
		code, message := loadErrorParts(err)
		return outputCommandError(formatter, code, message)
	}

	var errs []DocumentValidationError
	for _, in := range loaded.Inputs {
		formatter.VerboseLog("Validating document: %s", in.ID)
		for _, ve := range compiler.Validate(in.Predicate) {
			errs = append(errs, DocumentValidationError{Document: in.ID, ValidationError: ve})
		}
	}

	if len(errs) > 0 {
		return outputValidationErrors(formatter, len(loaded.Inputs), errs)
	}
	return outputValidateSuccess(formatter, len(loaded.Inputs))
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, documents int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Documents: documents})
	}

	fmt.Fprintf(formatter.Writer, "✓ %d document(s) valid\n", documents)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, documents int, errs []DocumentValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:     false,
				Documents: documents,
				Errors:    errs,
			},
			Error: &CLIError{
				Code:    ErrCodeInvalid,
				Message: errs[0].Error(),
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")

	current := ""
	for _, err := range errs {
		if err.Document != current {
			current = err.Document
			fmt.Fprintf(formatter.Writer, "\ndocument %s\n", current)
		}
		fmt.Fprintf(formatter.Writer, "  %s\n", err.ValidationError.Error())
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
