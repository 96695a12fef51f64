package optimizer

import (
	"cmp"
	"fmt"
	"math"
	"math/bits"
	"slices"

	"github.com/roach88/predc/internal/predicate"
)

// minInt64Magnitude is |math.MinInt64|, which has no positive int64 form.
const minInt64Magnitude = uint64(1) << 63

// TransformComplexNodes decomposes every FeatureRange reachable through
// operators into arity-aligned partitions.
//
// Existing partitions are discarded and recomputed. The range node is
// otherwise unchanged. Feature conjunctions are not descended into.
func TransformComplexNodes(p predicate.Predicate, opts *predicate.Options) (predicate.Predicate, error) {
	switch n := p.(type) {
	case *predicate.Conjunction:
		children, err := transformChildren(n.Children, opts)
		if err != nil {
			return nil, err
		}
		return predicate.NewConjunction(children...), nil
	case *predicate.Disjunction:
		children, err := transformChildren(n.Children, opts)
		if err != nil {
			return nil, err
		}
		return predicate.NewDisjunction(children...), nil
	case *predicate.Negation:
		operand, err := TransformComplexNodes(n.Operand, opts)
		if err != nil {
			return nil, err
		}
		return predicate.NewNegation(operand), nil
	case *predicate.FeatureRange:
		parts, err := PartitionRange(n, opts)
		if err != nil {
			return nil, err
		}
		return n.WithPartitions(parts), nil
	default:
		return p, nil
	}
}

func transformChildren(children []predicate.Predicate, opts *predicate.Options) ([]predicate.Predicate, error) {
	out := make([]predicate.Predicate, len(children))
	for i, child := range children {
		transformed, err := TransformComplexNodes(child, opts)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		out[i] = transformed
	}
	return out, nil
}

// PartitionRange computes the partitions of r under opts, ordered by their
// lower bound.
//
// Negative and non-negative values are decomposed separately in magnitude
// space. Within one sign the range is split into at most two edge partitions
// for the misaligned remainders of the outermost arity blocks, plus whole
// blocks that are merged one arity level at a time, so the result holds at
// most 2*arity partitions per level.
func PartitionRange(r *predicate.FeatureRange, opts *predicate.Options) ([]predicate.Partition, error) {
	from, to, err := PruneRange(r, opts)
	if err != nil {
		return nil, err
	}

	d := &decomposer{key: r.Key, arity: uint64(opts.Arity())}
	switch {
	case to < 0:
		d.negative(from, to)
	case from < 0:
		d.negative(from, -1)
		d.decompose(0, uint64(to), false)
	default:
		d.decompose(uint64(from), uint64(to), false)
	}

	slices.SortFunc(d.parts, func(a, b predicate.Partition) int {
		la, _ := a.Bounds()
		lb, _ := b.Bounds()
		return cmp.Compare(la, lb)
	})
	return d.parts, nil
}

type decomposer struct {
	key   string
	arity uint64
	parts []predicate.Partition
}

// negative decomposes [from, to] with to < 0 in magnitude space.
func (d *decomposer) negative(from, to int64) {
	if from == math.MinInt64 {
		// |MinInt64| overflows int64, so it gets its own single-value edge
		// labeled with the unsigned magnitude.
		d.parts = append(d.parts, predicate.NewEdgePartition(d.key, minInt64Magnitude, 0, 0, true))
		if to == math.MinInt64 {
			return
		}
		from++
	}
	d.decompose(uint64(-to), uint64(-from), true)
}

// decompose partitions the magnitude range [lo, hi], where hi < 1<<63.
func (d *decomposer) decompose(lo, hi uint64, negated bool) {
	a := d.arity
	loDigit, hiDigit := lo%a, hi%a

	if lo/a == hi/a {
		// Both ends fall in one arity block.
		if loDigit == 0 && hiDigit == a-1 {
			d.block(lo, a, negated)
			return
		}
		d.edge(lo-loDigit, loDigit, hiDigit, negated)
		return
	}

	if loDigit != 0 {
		d.edge(lo-loDigit, loDigit, a-1, negated)
		lo = lo - loDigit + a
	}
	if hiDigit != a-1 {
		d.edge(hi-hiDigit, 0, hiDigit, negated)
		hi = hi - hiDigit - 1
	}
	if lo > hi {
		return
	}
	d.aligned(lo, hi, a, negated)
}

// aligned covers [lo, hi] whose ends are aligned to size, emitting the
// unmergeable size-blocks at both ends and climbing one arity level per step.
func (d *decomposer) aligned(lo, hi, size uint64, negated bool) {
	for {
		overflow, next := bits.Mul64(size, d.arity)
		if overflow != 0 {
			d.blocks(lo, hi, size, negated)
			return
		}
		// First next-aligned boundary at or above lo, and the exclusive end
		// of the last whole next-block inside [lo, hi].
		up := lo
		if rem := lo % next; rem != 0 {
			base := lo - rem
			if base > math.MaxUint64-next {
				d.blocks(lo, hi, size, negated)
				return
			}
			up = base + next
		}
		down := (hi + 1) - (hi+1)%next
		if up >= down {
			d.blocks(lo, hi, size, negated)
			return
		}
		if lo < up {
			d.blocks(lo, up-1, size, negated)
		}
		if down <= hi {
			d.blocks(down, hi, size, negated)
		}
		lo, hi, size = up, down-1, next
	}
}

func (d *decomposer) blocks(lo, hi, size uint64, negated bool) {
	for b := lo; b <= hi; b += size {
		d.block(b, size, negated)
	}
}

func (d *decomposer) block(base, size uint64, negated bool) {
	d.parts = append(d.parts, predicate.NewBlockPartition(d.key, base, base+size-1, negated))
}

func (d *decomposer) edge(base, lowDigit, highDigit uint64, negated bool) {
	d.parts = append(d.parts, predicate.NewEdgePartition(d.key, base, int32(lowDigit), int32(highDigit), negated))
}
