package compiler

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/predc/internal/predicate"
)

// Input is one document's predicate, identified for error reporting.
type Input struct {
	ID        string
	Predicate predicate.Predicate
}

// Output pairs a compiled result with the id of its input.
type Output struct {
	ID     string
	Result *Result
}

// CompileBatch compiles independent predicates on up to workers goroutines.
// A workers value below 1 uses GOMAXPROCS.
//
// Outputs are in input order. The first failure cancels the remaining work
// and is returned wrapped with the failing input's id. Cancellation is only
// observed between inputs; a tree already being compiled runs to completion.
func (c *Compiler) CompileBatch(ctx context.Context, inputs []Input, workers int) ([]Output, error) {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	outputs := make([]Output, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := c.Compile(in.Predicate)
			if err != nil {
				return fmt.Errorf("document %s: %w", in.ID, err)
			}
			outputs[i] = Output{ID: in.ID, Result: res}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.logger.Info("batch compiled", "documents", len(inputs), "workers", workers)
	return outputs, nil
}
