package predicate

import (
	"fmt"
	"math"
	"sync"
)

// Arity limits accepted by NewOptions.
const (
	MinArity     = 2
	MaxArity     = 1 << 16
	DefaultArity = 8
)

// Options configures range decomposition.
//
// Options is read-only after construction and safe to share across goroutines
// compiling different trees. The adjusted bounds are derived lazily and
// memoized on first use.
type Options struct {
	arity      int32
	lowerBound int64
	upperBound int64

	adjustedLower func() int64
	adjustedUpper func() int64
}

// Option configures Options construction.
type Option func(*Options)

// WithLowerBound sets the smallest value range features are expected to take.
func WithLowerBound(bound int64) Option {
	return func(o *Options) {
		o.lowerBound = bound
	}
}

// WithUpperBound sets the largest value range features are expected to take.
func WithUpperBound(bound int64) Option {
	return func(o *Options) {
		o.upperBound = bound
	}
}

// NewOptions creates Options for the given arity. Bounds default to the full
// signed 64-bit range.
func NewOptions(arity int, opts ...Option) (*Options, error) {
	if arity < MinArity || arity > MaxArity {
		return nil, &Error{
			Code:    ErrCodeInvalidOptions,
			Message: fmt.Sprintf("arity must be in [%d, %d], got %d", MinArity, MaxArity, arity),
		}
	}
	o := &Options{
		arity:      int32(arity),
		lowerBound: math.MinInt64,
		upperBound: math.MaxInt64,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.lowerBound > o.upperBound {
		return nil, &Error{
			Code:    ErrCodeInvalidOptions,
			Message: fmt.Sprintf("lower bound %d exceeds upper bound %d", o.lowerBound, o.upperBound),
		}
	}
	o.adjustedLower = sync.OnceValue(o.computeAdjustedLowerBound)
	o.adjustedUpper = sync.OnceValue(o.computeAdjustedUpperBound)
	return o, nil
}

// MustNewOptions is like NewOptions but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustNewOptions(arity int, opts ...Option) *Options {
	o, err := NewOptions(arity, opts...)
	if err != nil {
		panic(err)
	}
	return o
}

// DefaultOptions returns Options with DefaultArity and unbounded values.
func DefaultOptions() *Options {
	return MustNewOptions(DefaultArity)
}

// Arity returns the decomposition branching factor.
func (o *Options) Arity() int32 { return o.arity }

// LowerBound returns the configured lower bound.
func (o *Options) LowerBound() int64 { return o.lowerBound }

// UpperBound returns the configured upper bound.
func (o *Options) UpperBound() int64 { return o.upperBound }

// AdjustedLowerBound returns the lower bound rounded outward to -(arity^k - 1).
func (o *Options) AdjustedLowerBound() int64 { return o.adjustedLower() }

// AdjustedUpperBound returns the upper bound rounded outward to arity^k - 1.
func (o *Options) AdjustedUpperBound() int64 { return o.adjustedUpper() }

func (o *Options) String() string {
	return fmt.Sprintf("arity=%d lower=%d upper=%d", o.arity, o.lowerBound, o.upperBound)
}

func (o *Options) computeAdjustedLowerBound() int64 {
	switch {
	case o.lowerBound == math.MinInt64:
		return math.MinInt64
	case o.lowerBound > 0:
		return 0
	default:
		return -adjustBound(int64(o.arity), -o.lowerBound)
	}
}

func (o *Options) computeAdjustedUpperBound() int64 {
	switch {
	case o.upperBound == math.MaxInt64:
		return math.MaxInt64
	case o.upperBound < 0:
		// 0 belongs to the non-negative side.
		return -1
	default:
		return adjustBound(int64(o.arity), o.upperBound)
	}
}

// adjustBound returns the smallest arity^k - 1 (k >= 1) that is >= bound,
// or math.MaxInt64 when arity^k would overflow.
func adjustBound(arity, bound int64) int64 {
	adjusted := arity
	limit := math.MaxInt64 / arity
	for value := bound / arity; value > 0; value /= arity {
		if adjusted > limit {
			return math.MaxInt64
		}
		adjusted *= arity
	}
	return adjusted - 1
}
