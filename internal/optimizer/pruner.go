package optimizer

import (
	"fmt"
	"math"

	"github.com/roach88/predc/internal/predicate"
)

// PruneRange resolves the effective inclusive bounds of r under opts.
//
// Open bounds resolve to the adjusted bounds. A range lying entirely above
// the upper bound (or below the lower bound) cannot match any query value the
// index accepts; instead of vanishing it is snapped to a small synthetic block
// at the far end of the representable range, so it still yields a small,
// well-formed partition set. In-range bounds are clamped to the adjusted
// bounds.
//
// A range whose explicit from exceeds its explicit to is malformed.
func PruneRange(r *predicate.FeatureRange, opts *predicate.Options) (from, to int64, err error) {
	if r.From != nil && r.To != nil && *r.From > *r.To {
		return 0, 0, &predicate.Error{
			Code:    predicate.ErrCodeMalformedRange,
			Message: fmt.Sprintf("from %d exceeds to %d", *r.From, *r.To),
			Key:     r.Key,
		}
	}

	from = opts.AdjustedLowerBound()
	if r.From != nil {
		from = *r.From
	}
	to = opts.AdjustedUpperBound()
	if r.To != nil {
		to = *r.To
	}

	// Start of the last arity block below math.MaxInt64, mirrored in
	// magnitude for the negative side.
	edge := math.MaxInt64 - math.MaxInt64%int64(opts.Arity())

	switch {
	case from > opts.UpperBound():
		if opts.UpperBound() < edge {
			return edge, math.MaxInt64, nil
		}
		// The bound sits inside the last block, so [from, to] is already tiny.
		return from, to, nil
	case to < opts.LowerBound():
		if opts.LowerBound() > -edge {
			return -math.MaxInt64, -edge, nil
		}
		return from, to, nil
	}

	from = max(from, opts.AdjustedLowerBound())
	to = min(to, opts.AdjustedUpperBound())
	if from > to {
		return 0, 0, &predicate.Error{
			Code:    predicate.ErrCodeMalformedRange,
			Message: fmt.Sprintf("resolved from %d exceeds resolved to %d", from, to),
			Key:     r.Key,
		}
	}
	return from, to, nil
}
