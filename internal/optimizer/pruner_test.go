package optimizer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/predc/internal/predicate"
)

func TestPruneRange(t *testing.T) {
	bounded := predicate.MustNewOptions(8, predicate.WithLowerBound(-100), predicate.WithUpperBound(100))
	positive := predicate.MustNewOptions(8, predicate.WithLowerBound(10), predicate.WithUpperBound(100))
	edge := int64(math.MaxInt64 - 7)

	tests := []struct {
		name     string
		input    *predicate.FeatureRange
		opts     *predicate.Options
		from, to int64
	}{
		{"unbounded closed", predicate.Feature("x").InRange(-5, 5), predicate.DefaultOptions(), -5, 5},
		{"unbounded open", predicate.Feature("x").GreaterThanOrEqualTo(5), predicate.DefaultOptions(), 5, math.MaxInt64},
		{"open lower", predicate.Feature("x").LessThanOrEqualTo(5), predicate.DefaultOptions(), math.MinInt64, 5},
		{"clamped to adjusted", predicate.Feature("x").InRange(-1000, 1000), bounded, -511, 511},
		{"open resolves to adjusted", predicate.Feature("x").GreaterThanOrEqualTo(50), bounded, 50, 511},
		{"above upper bound", predicate.Feature("x").InRange(600, 700), bounded, edge, math.MaxInt64},
		{"below lower bound", predicate.Feature("x").InRange(-700, -600), bounded, -math.MaxInt64, -edge},
		{"negative side pruned", predicate.Feature("x").InRange(-50, 50), positive, 0, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to, err := PruneRange(tt.input, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}
}

func TestPruneRangeMalformed(t *testing.T) {
	_, _, err := PruneRange(predicate.Feature("x").InRange(5, 3), predicate.DefaultOptions())
	require.Error(t, err)
	assert.True(t, predicate.IsMalformedError(err))

	var pe *predicate.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "x", pe.Key)
}
