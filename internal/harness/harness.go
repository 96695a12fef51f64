package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/predc/internal/annotator"
	"github.com/roach88/predc/internal/compiler"
	"github.com/roach88/predc/internal/config"
	"github.com/roach88/predc/internal/optimizer"
	"github.com/roach88/predc/internal/predicate"
)

// Harness compiles scenario predicates with one set of options.
type Harness struct {
	opts     *predicate.Options
	compiler *compiler.Compiler
	logger   *slog.Logger
}

// outcome is what one compilation produced: a tree with annotations, a
// constant, or an error code.
type outcome struct {
	tree        predicate.Predicate
	constant    *bool
	annotations *annotator.Annotations
	code        string
}

// Run executes a scenario and returns the result.
//
// Validation and compile failures are outcomes that error assertions can
// match. The returned error is reserved for scenarios that cannot run at
// all, such as unusable options or a malformed predicate document.
func Run(scenario *Scenario) (*Result, error) {
	file := config.File{}
	if scenario.Options != nil {
		file = *scenario.Options
	}
	opts, err := file.Options()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: options: %w", scenario.Name, err)
	}

	p, err := scenario.Predicate.Predicate()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	// Suppress logs in tests
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Harness{
		opts:     opts,
		compiler: compiler.New(opts, compiler.WithLogger(logger)),
		logger:   logger,
	}

	out := h.compile(p, scenario.Raw)
	report, err := out.report()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: report: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Report = report
	for i, assertion := range scenario.Assertions {
		if err := evaluate(out, assertion); err != nil {
			result.AddError(fmt.Sprintf("assertion %d (%s): %v", i, assertion.Type, err))
		}
	}
	h.logger.Debug("scenario complete", "name", scenario.Name, "pass", result.Pass)
	return result, nil
}

func (h *Harness) compile(p predicate.Predicate, raw bool) outcome {
	if errs := compiler.Validate(p); len(errs) > 0 {
		return outcome{code: errs[0].Code}
	}

	if raw {
		tree, err := optimizer.TransformComplexNodes(p, h.opts)
		if err != nil {
			return outcome{code: errorCode(err)}
		}
		ann, err := annotator.Annotate(tree)
		if err != nil {
			return outcome{code: errorCode(err)}
		}
		return outcome{tree: tree, annotations: ann}
	}

	res, err := h.compiler.Compile(p)
	if err != nil {
		return outcome{code: errorCode(err)}
	}
	return outcome{tree: res.Tree, constant: res.Constant, annotations: res.Annotations}
}

// report renders the outcome for golden comparison.
func (o outcome) report() (string, error) {
	var sb strings.Builder
	switch {
	case o.code != "":
		fmt.Fprintf(&sb, "error: %s\n", o.code)
	case o.constant != nil:
		fmt.Fprintf(&sb, "constant: %t\n", *o.constant)
	default:
		fmt.Fprintf(&sb, "tree: %s\n", o.tree)
		if err := o.annotations.WriteText(&sb); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// errorCode returns the code of a compile error, or UNKNOWN.
func errorCode(err error) string {
	var pe *predicate.Error
	if errors.As(err, &pe) {
		return string(pe.Code)
	}
	return "UNKNOWN"
}
