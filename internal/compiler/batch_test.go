package compiler

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/predc/internal/predicate"
)

func batchInputs(n int) []Input {
	inputs := make([]Input, n)
	for i := range inputs {
		inputs[i] = Input{
			ID: fmt.Sprintf("doc-%d", i),
			Predicate: predicate.And(
				predicate.Feature("id").InSet(fmt.Sprint(i)),
				predicate.Feature("age").InRange(int64(i), int64(i*100+99)),
			),
		}
	}
	return inputs
}

func TestCompileBatchKeepsOrder(t *testing.T) {
	inputs := batchInputs(50)

	outputs, err := New(nil).CompileBatch(context.Background(), inputs, 4)
	require.NoError(t, err)
	require.Len(t, outputs, len(inputs))

	for i, out := range outputs {
		assert.Equal(t, inputs[i].ID, out.ID)
		require.NotNil(t, out.Result.Annotations)
		_, ok := out.Result.Annotations.IntervalMap[predicate.FeatureHash(fmt.Sprintf("id=%d", i))]
		assert.True(t, ok, "output %d holds the wrong document", i)
	}
}

func TestCompileBatchMatchesSequential(t *testing.T) {
	inputs := batchInputs(10)
	c := New(nil)

	outputs, err := c.CompileBatch(context.Background(), inputs, 0)
	require.NoError(t, err)

	for i, in := range inputs {
		res, err := c.Compile(in.Predicate)
		require.NoError(t, err)
		assert.Equal(t, res.Annotations, outputs[i].Result.Annotations)
	}
}

func TestCompileBatchError(t *testing.T) {
	inputs := batchInputs(5)
	inputs[3].Predicate = predicate.Feature("age").InRange(5, 1)

	_, err := New(nil).CompileBatch(context.Background(), inputs, 2)
	require.Error(t, err)
	assert.True(t, predicate.IsMalformedError(err))
	assert.Contains(t, err.Error(), "document doc-3")
}

func TestCompileBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).CompileBatch(ctx, batchInputs(5), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompileBatchEmpty(t *testing.T) {
	outputs, err := New(nil).CompileBatch(context.Background(), nil, 2)
	require.NoError(t, err)
	assert.Empty(t, outputs)
}
