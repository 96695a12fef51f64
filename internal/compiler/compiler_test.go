package compiler

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/predc/internal/annotator"
	"github.com/roach88/predc/internal/predicate"
)

func TestCompile(t *testing.T) {
	// not(a or not b) and (c or c') and age in [18..65]
	p := predicate.And(
		predicate.Not(predicate.Or(predicate.Feature("a").InSet("1"), predicate.Feature("b").NotInSet("2"))),
		predicate.Or(predicate.Feature("c").InSet("x"), predicate.Feature("c").InSet("y")),
		predicate.Feature("age").InRange(18, 65),
	)

	res, err := New(predicate.MustNewOptions(10)).Compile(p)
	require.NoError(t, err)
	require.Nil(t, res.Constant)

	assert.Equal(t, "and(not(a in [1]), b in [2], c in [x, y], age in [18..65])", res.Tree.String())

	ann := res.Annotations
	assert.Equal(t, 4, ann.MinFeature)
	assert.Equal(t, uint32(5), ann.IntervalEnd)
	assert.Equal(t, []uint32{annotator.Pack(1, 1)}, ann.IntervalMap[predicate.FeatureHash("a=1")])
	assert.Equal(t, []uint32{annotator.Pack(1, 0)}, ann.IntervalMap[predicate.FeatureHash(annotator.ZStarCompressedAttributeName)])
	assert.Equal(t, []uint32{annotator.Pack(3, 3)}, ann.IntervalMap[predicate.FeatureHash("b=2")])
	assert.Equal(t, []uint32{annotator.Pack(4, 4)}, ann.IntervalMap[predicate.FeatureHash("c=x")])
	assert.Equal(t, []uint32{annotator.Pack(4, 4)}, ann.IntervalMap[predicate.FeatureHash("c=y")])
	assert.Len(t, ann.BoundsMap, 6)
}

func TestCompileDoesNotModifyInput(t *testing.T) {
	r := predicate.Feature("age").InRange(18, 65)
	p := predicate.Not(predicate.And(r, predicate.Feature("a").InSet("1")))
	before := p.String()

	_, err := New(nil).Compile(p)
	require.NoError(t, err)
	assert.Equal(t, before, p.String())
	assert.Empty(t, r.Partitions)
}

func TestCompileConstant(t *testing.T) {
	tests := []struct {
		name     string
		input    predicate.Predicate
		expected bool
	}{
		{"true", predicate.True(), true},
		{"false", predicate.Not(predicate.True()), false},
		{"and false", predicate.And(predicate.Feature("a").InSet("1"), predicate.False()), false},
		{"or not false", predicate.Or(predicate.Feature("a").InSet("1"), predicate.Not(predicate.False())), true},
		{"empty and", predicate.And(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(nil).Compile(tt.input)
			require.NoError(t, err)
			require.NotNil(t, res.Constant)
			assert.Equal(t, tt.expected, *res.Constant)
			assert.Nil(t, res.Annotations)
			assert.Nil(t, res.Tree)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	c := New(nil)

	_, err := c.Compile(predicate.And(predicate.Feature("a").InSet("1"), predicate.Feature("age").InRange(9, 1)))
	require.Error(t, err)
	assert.True(t, predicate.IsMalformedError(err))
	assert.Contains(t, err.Error(), StageComplex)

	_, err = c.Compile(nil)
	assert.True(t, predicate.IsInvariantError(err))
}

func TestExplain(t *testing.T) {
	p := predicate.Or(
		predicate.Feature("a").InSet("1"),
		predicate.Not(predicate.And(predicate.Feature("b").InSet("2"), predicate.True())),
		predicate.Feature("a").InSet("3"),
	)

	trace, err := New(nil).Explain(p)
	require.NoError(t, err)
	require.Len(t, trace.Stages, 5)

	names := make([]string, len(trace.Stages))
	for i, s := range trace.Stages {
		names[i] = s.Stage
	}
	assert.Equal(t, []string{StageAndOr, StageBooleans, StageOr, StageComplex, StageNotReorder}, names)

	assert.Equal(t, "or(a in [1], not(b in [2]), not(true), a in [3])", trace.Stages[0].Tree.String())
	assert.Equal(t, "or(a in [1], not(b in [2]), a in [3])", trace.Stages[1].Tree.String())
	assert.Equal(t, "or(a in [1, 3], not(b in [2]))", trace.Stages[2].Tree.String())
	assert.NotNil(t, trace.Result.Annotations)
}

func TestExplainStopsAtConstant(t *testing.T) {
	trace, err := New(nil).Explain(predicate.Or(predicate.True(), predicate.Feature("a").InSet("1")))
	require.NoError(t, err)
	assert.Len(t, trace.Stages, 2)
	assert.True(t, *trace.Result.Constant)
}

func TestCompileLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := New(nil, WithLogger(logger)).Compile(predicate.Feature("a").InSet("1"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "stage=complex-nodes")
	assert.Contains(t, buf.String(), "predicate compiled")
	assert.Contains(t, buf.String(), "min_feature=1")
}
