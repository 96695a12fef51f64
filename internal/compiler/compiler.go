package compiler

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/predc/internal/annotator"
	"github.com/roach88/predc/internal/optimizer"
	"github.com/roach88/predc/internal/predicate"
)

// Stage names, in pipeline order.
const (
	StageAndOr      = "and-or"
	StageBooleans   = "booleans"
	StageOr         = "or"
	StageComplex    = "complex-nodes"
	StageNotReorder = "not-reorder"
)

// Compiler runs the predicate pipeline:
//
//	and/or simplification -> constant folding -> or merging ->
//	range partitioning -> not-node reordering -> annotation
//
// A Compiler holds no per-tree state and is safe for concurrent use.
type Compiler struct {
	opts   *predicate.Options
	logger *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for stage timings and summaries.
//
// Default: a logger that discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// New creates a Compiler. A nil opts uses predicate.DefaultOptions.
func New(opts *predicate.Options, options ...Option) *Compiler {
	if opts == nil {
		opts = predicate.DefaultOptions()
	}
	c := &Compiler{
		opts:   opts,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Options returns the options trees are compiled with.
func (c *Compiler) Options() *predicate.Options { return c.opts }

// Result is a compiled predicate.
//
// When the tree folds to a constant, Constant is set and Tree and
// Annotations are nil: the document matches every query or none.
type Result struct {
	Tree        predicate.Predicate
	Constant    *bool
	Annotations *annotator.Annotations
}

// StageOutput is the tree as it left one pipeline stage.
type StageOutput struct {
	Stage    string
	Tree     predicate.Predicate
	Duration time.Duration
}

// Trace records every stage of one compilation.
type Trace struct {
	Stages []StageOutput
	Result *Result
}

// Compile runs the full pipeline on p. The input tree is not modified.
func (c *Compiler) Compile(p predicate.Predicate) (*Result, error) {
	trace, err := c.run(p, false)
	if err != nil {
		return nil, err
	}
	return trace.Result, nil
}

// Explain is like Compile but also returns the tree after each stage.
func (c *Compiler) Explain(p predicate.Predicate) (*Trace, error) {
	return c.run(p, true)
}

type stage struct {
	name string
	fn   func(predicate.Predicate) (predicate.Predicate, error)
}

func (c *Compiler) stages() []stage {
	return []stage{
		{StageAndOr, func(p predicate.Predicate) (predicate.Predicate, error) {
			return optimizer.SimplifyAndOr(p), nil
		}},
		{StageBooleans, func(p predicate.Predicate) (predicate.Predicate, error) {
			return optimizer.SimplifyBooleans(p), nil
		}},
		{StageOr, func(p predicate.Predicate) (predicate.Predicate, error) {
			return optimizer.SimplifyOr(p), nil
		}},
		{StageComplex, func(p predicate.Predicate) (predicate.Predicate, error) {
			return optimizer.TransformComplexNodes(p, c.opts)
		}},
		{StageNotReorder, func(p predicate.Predicate) (predicate.Predicate, error) {
			reordered, _ := optimizer.ReorderNotNodes(p)
			return reordered, nil
		}},
	}
}

func (c *Compiler) run(p predicate.Predicate, keep bool) (*Trace, error) {
	if p == nil {
		return nil, predicate.Invariantf("nil predicate")
	}

	trace := &Trace{}
	tree := p
	for _, s := range c.stages() {
		start := time.Now()
		next, err := s.fn(tree)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		elapsed := time.Since(start)
		c.logger.Debug("stage complete", "stage", s.name, "duration", elapsed)
		if keep {
			trace.Stages = append(trace.Stages, StageOutput{Stage: s.name, Tree: next, Duration: elapsed})
		}
		tree = next

		if b, ok := tree.(*predicate.BooleanPredicate); ok && s.name == StageBooleans {
			value := b.Value
			c.logger.Info("predicate folded to constant", "value", value)
			trace.Result = &Result{Constant: &value}
			return trace, nil
		}
	}

	ann, err := annotator.Annotate(tree)
	if err != nil {
		return nil, fmt.Errorf("annotate: %w", err)
	}
	c.logger.Info("predicate compiled",
		"min_feature", ann.MinFeature,
		"interval_end", ann.IntervalEnd,
		"features", len(ann.IntervalMap),
		"range_features", len(ann.BoundsMap),
		"conjunctions", len(ann.FeatureConjunctions),
	)
	trace.Result = &Result{Tree: tree, Annotations: ann}
	return trace, nil
}
