package cli

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/roach88/predc/internal/compiler"
)

// ExplainedDocument is the JSON form of one document's compilation trace.
type ExplainedDocument struct {
	ID     string           `json:"id"`
	Input  string           `json:"input"`
	Stages []ExplainedStage `json:"stages"`
	Result CompiledDocument `json:"result"`
}

// ExplainedStage is the tree as it left one pipeline stage.
type ExplainedStage struct {
	Stage      string `json:"stage"`
	Tree       string `json:"tree"`
	DurationNS int64  `json:"duration_ns"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <documents-file>",
		Short: "Show the predicate tree after every pipeline stage",
		Long: `Compile every document and print its tree after each rewrite stage:
and-or, booleans, or, complex-nodes and not-reorder. A tree that folds to a
constant stops after the booleans stage.

Examples:
  predc explain docs.yaml
  predc explain docs.yaml --options options.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runExplain(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, err := LoadInput(opts, path)
	if err != nil {
		code, message := loadErrorParts(err)
		return outputCommandError(formatter, code, message)
	}

	c := compiler.New(loaded.Options, compiler.WithLogger(newLogger(opts, formatter.GetErrWriter())))
	explained := make([]ExplainedDocument, 0, len(loaded.Inputs))
	traces := make([]*compiler.Trace, 0, len(loaded.Inputs))
	for _, in := range loaded.Inputs {
		trace, err := c.Explain(in.Predicate)
		if err != nil {
			return outputCompileError(formatter, fmt.Errorf("document %s: %w", in.ID, err))
		}
		traces = append(traces, trace)
		explained = append(explained, ExplainedDocument{
			ID:    in.ID,
			Input: in.Predicate.String(),
			Stages: lo.Map(trace.Stages, func(s compiler.StageOutput, _ int) ExplainedStage {
				return ExplainedStage{Stage: s.Stage, Tree: s.Tree.String(), DurationNS: s.Duration.Nanoseconds()}
			}),
			Result: newCompiledDocument(compiler.Output{ID: in.ID, Result: trace.Result}),
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(explained)
	}

	w := formatter.Writer
	for i, doc := range explained {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "document %s\n", doc.ID)
		fmt.Fprintf(w, "  input: %s\n", doc.Input)
		for _, s := range doc.Stages {
			fmt.Fprintf(w, "  %s: %s\n", s.Stage, s.Tree)
			formatter.VerboseLog("%s %s took %dns", doc.ID, s.Stage, s.DurationNS)
		}
		res := traces[i].Result
		if res.Constant != nil {
			fmt.Fprintf(w, "  result: constant %t\n", *res.Constant)
			continue
		}
		fmt.Fprintf(w, "  result: min_feature=%d interval_end=%d\n", res.Annotations.MinFeature, res.Annotations.IntervalEnd)
	}
	return nil
}
