package predicate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangePartitionLabel(t *testing.T) {
	tests := []struct {
		name     string
		part     Partition
		expected string
		low      int64
		high     int64
	}{
		{"block", NewBlockPartition("age", 0, 63, false), "age=0-63", 0, 63},
		{"negative block", NewBlockPartition("age", 10, 19, true), "age=-19-10", -19, -10},
		{"edge", NewEdgePartition("age", 120, 0, 3, false), "age=120", 120, 123},
		{"negative edge", NewEdgePartition("age", 120, 0, 3, true), "age=-120", -123, -120},
		{"negative zero edge", NewEdgePartition("age", 0, 1, 5, true), "age=-0", -5, -1},
		{"min int64 edge", NewEdgePartition("age", 1<<63, 0, 0, true), "age=-9223372036854775808", math.MinInt64, math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.part.Label())
			low, high := tt.part.Bounds()
			assert.Equal(t, tt.low, low)
			assert.Equal(t, tt.high, high)
		})
	}
}

func TestEdgeBoundsRoundTrip(t *testing.T) {
	edge := NewEdgePartition("age", 40, 2, 7, false)
	bounds := edge.EncodeBounds()
	assert.NotZero(t, bounds)

	low, high, ok := DecodeBounds(bounds)
	assert.True(t, ok)
	assert.Equal(t, int32(2), low)
	assert.Equal(t, int32(7), high)

	// Digit bounds [0,0] still differ from the zero bounds of a block.
	assert.NotZero(t, NewEdgePartition("age", 0, 0, 0, false).EncodeBounds())

	_, _, ok = DecodeBounds(0)
	assert.False(t, ok)
}
