package predicate

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOptionsDefaults(t *testing.T) {
	opts, err := NewOptions(8)
	require.NoError(t, err)

	assert.Equal(t, int32(8), opts.Arity())
	assert.Equal(t, int64(math.MinInt64), opts.LowerBound())
	assert.Equal(t, int64(math.MaxInt64), opts.UpperBound())
	assert.Equal(t, int64(math.MinInt64), opts.AdjustedLowerBound())
	assert.Equal(t, int64(math.MaxInt64), opts.AdjustedUpperBound())
}

func TestNewOptionsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		arity int
		opts  []Option
	}{
		{"arity one", 1, nil},
		{"arity zero", 0, nil},
		{"arity too large", MaxArity + 1, nil},
		{"inverted bounds", 8, []Option{WithLowerBound(10), WithUpperBound(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOptions(tt.arity, tt.opts...)
			require.Error(t, err)
			assert.True(t, IsOptionsError(err))
		})
	}
}

func TestMustNewOptionsPanics(t *testing.T) {
	assert.Panics(t, func() { MustNewOptions(1) })
}

func TestAdjustedBounds(t *testing.T) {
	tests := []struct {
		name          string
		arity         int
		lower, upper  int64
		adjustedLower int64
		adjustedUpper int64
	}{
		{"powers of eight", 8, -100, 100, -511, 511},
		{"exact power minus one", 8, -63, 63, -63, 63},
		{"exact power", 8, -64, 64, -511, 511},
		{"single digit", 8, -7, 7, -7, 7},
		{"zero", 8, 0, 0, -7, 7},
		{"positive lower", 10, 5, 1000, 0, 9999},
		{"negative upper", 10, -1000, -5, -9999, -1},
		{"binary", 2, -5, 5, -7, 7},
		{"overflow", 8, math.MinInt64 + 1, math.MaxInt64 - 1, -math.MaxInt64, math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := MustNewOptions(tt.arity, WithLowerBound(tt.lower), WithUpperBound(tt.upper))
			assert.Equal(t, tt.adjustedLower, opts.AdjustedLowerBound())
			assert.Equal(t, tt.adjustedUpper, opts.AdjustedUpperBound())
		})
	}
}

func TestAdjustedBoundsConcurrentRead(t *testing.T) {
	opts := MustNewOptions(8, WithLowerBound(-100), WithUpperBound(100))

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, int64(-511), opts.AdjustedLowerBound())
			assert.Equal(t, int64(511), opts.AdjustedUpperBound())
		}()
	}
	wg.Wait()
}

func TestDefaultOptions(t *testing.T) {
	assert.Equal(t, int32(DefaultArity), DefaultOptions().Arity())
	assert.Equal(t, "arity=8 lower=-9223372036854775808 upper=9223372036854775807", DefaultOptions().String())
}
