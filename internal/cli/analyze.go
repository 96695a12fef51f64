package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/predc/internal/annotator"
)

// AnalyzedDocument is the analysis of one compiled document.
type AnalyzedDocument struct {
	ID         string `json:"id"`
	Constant   *bool  `json:"constant,omitempty"`
	MinFeature int    `json:"min_feature"`
	TreeSize   int    `json:"tree_size"`
	Nodes      int    `json:"nodes"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <documents-file>",
		Short: "Report the minimum feature count and tree size of each document",
		Long: `Compile every document and report how many features a query must
supply for it to possibly match (min_feature) and how many interval slots its
annotated tree uses (tree_size).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runAnalyze(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	outputs, err := compileFile(opts, path, cmd, formatter)
	if err != nil {
		return err
	}

	analyzed := make([]AnalyzedDocument, len(outputs))
	for i, out := range outputs {
		doc := AnalyzedDocument{ID: out.ID, Constant: out.Result.Constant}
		if out.Result.Constant == nil {
			res, err := annotator.Analyze(out.Result.Tree)
			if err != nil {
				return outputCompileError(formatter, fmt.Errorf("document %s: %w", out.ID, err))
			}
			doc.MinFeature = res.MinFeature
			doc.TreeSize = res.TreeSize
			doc.Nodes = len(res.SizeMap)
		}
		analyzed[i] = doc
	}

	if formatter.Format == "json" {
		return formatter.Success(analyzed)
	}

	w := formatter.Writer
	for _, doc := range analyzed {
		if doc.Constant != nil {
			fmt.Fprintf(w, "%s: constant %t\n", doc.ID, *doc.Constant)
			continue
		}
		fmt.Fprintf(w, "%s: min_feature=%d tree_size=%d nodes=%d\n", doc.ID, doc.MinFeature, doc.TreeSize, doc.Nodes)
	}
	return nil
}
