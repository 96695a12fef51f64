package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/predc/internal/annotator"
	"github.com/roach88/predc/internal/compiler"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompiledDocument is the JSON form of one compiled document.
type CompiledDocument struct {
	ID           string                `json:"id"`
	Constant     *bool                 `json:"constant,omitempty"`
	Tree         string                `json:"tree,omitempty"`
	MinFeature   int                   `json:"min_feature"`
	IntervalEnd  uint32                `json:"interval_end"`
	Features     []annotator.Feature   `json:"features,omitempty"`
	Conjunctions []CompiledConjunction `json:"conjunctions,omitempty"`
}

// CompiledConjunction is the JSON form of one feature conjunction.
type CompiledConjunction struct {
	Conjunction string   `json:"conjunction"`
	Intervals   []uint32 `json:"intervals"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <documents-file>",
		Short: "Compile document predicates to interval annotations",
		Long: `Compile the predicate of every document in a YAML or JSON file.

Each predicate is simplified, its ranges partitioned, and every leaf
annotated with the intervals and bounds a posting-list index stores.

Examples:
  predc compile docs.yaml
  predc compile docs.yaml --options options.cue --workers 4
  predc compile docs.yaml --format json -o annotations.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write JSON annotations to this file")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	outputs, err := compileFile(opts.RootOptions, path, cmd, formatter)
	if err != nil {
		return err
	}

	docs := lo.Map(outputs, func(out compiler.Output, _ int) CompiledDocument {
		return newCompiledDocument(out)
	})

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeCompiledToFile(docs, opts.Output); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(docs)
	}

	// Human-readable text output
	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d document(s)\n", len(outputs))
	for _, out := range outputs {
		fmt.Fprintf(w, "\ndocument %s\n", out.ID)
		if err := writeResultText(w, out.Result); err != nil {
			return err
		}
	}
	if opts.Output != "" {
		fmt.Fprintf(w, "\nWrote annotations to %s\n", opts.Output)
	}
	return nil
}

// compileFile loads path and compiles every document in it. Errors are
// already reported through formatter.
func compileFile(opts *RootOptions, path string, cmd *cobra.Command, formatter *OutputFormatter) ([]compiler.Output, error) {
	loaded, err := LoadInput(opts, path)
	if err != nil {
		code, message := loadErrorParts(err)
		return nil, outputCommandError(formatter, code, message)
	}
	formatter.VerboseLog("Loaded %d document(s) from %s (%s)", len(loaded.Inputs), path, loaded.Options)

	c := compiler.New(loaded.Options, compiler.WithLogger(newLogger(opts, formatter.GetErrWriter())))
	outputs, err := c.CompileBatch(commandContext(cmd), loaded.Inputs, opts.Workers)
	if err != nil {
		return nil, outputCompileError(formatter, err)
	}
	return outputs, nil
}

func newCompiledDocument(out compiler.Output) CompiledDocument {
	doc := CompiledDocument{ID: out.ID, Constant: out.Result.Constant}
	ann := out.Result.Annotations
	if ann == nil {
		return doc
	}
	doc.Tree = out.Result.Tree.String()
	doc.MinFeature = ann.MinFeature
	doc.IntervalEnd = ann.IntervalEnd
	doc.Features = ann.Features()
	doc.Conjunctions = lo.Map(ann.Conjunctions(), func(c *annotator.ConjunctionIntervals, _ int) CompiledConjunction {
		return CompiledConjunction{Conjunction: c.Conjunction.String(), Intervals: c.Intervals}
	})
	return doc
}

// writeResultText writes the text rendering of one compiled document.
func writeResultText(w io.Writer, res *compiler.Result) error {
	if res.Constant != nil {
		_, err := fmt.Fprintf(w, "constant: %t\n", *res.Constant)
		return err
	}
	if _, err := fmt.Fprintf(w, "tree: %s\n", res.Tree); err != nil {
		return err
	}
	return res.Annotations.WriteText(w)
}

// outputCompileError reports a pipeline failure.
func outputCompileError(formatter *OutputFormatter, err error) error {
	message := err.Error()
	_ = formatter.Error(ErrCodeCompileFailed, message, nil)
	// A rejected document is a compile failure (exit code 1)
	return WrapExitError(ExitFailure, "compilation failed", err)
}

// outputCommandError reports a problem with the command's input.
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// writeCompiledToFile writes the compiled documents as indented JSON.
func writeCompiledToFile(docs []CompiledDocument, filename string) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling annotations: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
