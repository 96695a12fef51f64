package predicate

import (
	"fmt"
	"strconv"
)

// Partition is one indexable piece of a decomposed FeatureRange.
//
// Implemented by RangePartition (a fully aligned block) and
// RangeEdgePartition (a misaligned remainder inside one arity block).
type Partition interface {
	// Label is the feature label the index stores the partition under.
	Label() string

	// Bounds returns the signed, inclusive value range the partition covers.
	Bounds() (low, high int64)
}

// RangePartition covers the aligned block [Low, High].
//
// Negated partitions live in magnitude space: a query value -v is looked up
// under the magnitude v, so the label spells the magnitudes.
type RangePartition struct {
	Key     string
	Low     int64
	High    int64
	Negated bool
}

// Label returns "key=low-high", or "key=-|low|-|high|" for negative blocks.
func (p RangePartition) Label() string {
	if p.Negated {
		return fmt.Sprintf("%s=-%d-%d", p.Key, magnitude(p.Low), magnitude(p.High))
	}
	return fmt.Sprintf("%s=%d-%d", p.Key, p.Low, p.High)
}

// Bounds implements Partition.
func (p RangePartition) Bounds() (int64, int64) { return p.Low, p.High }

// RangeEdgePartition covers digits [LowDigit, HighDigit] of the arity block
// whose base is Value. The embedded RangePartition holds the signed bounds.
type RangeEdgePartition struct {
	RangePartition
	Value     int64
	LowDigit  int32
	HighDigit int32
}

// Label returns "key=value", or "key=-|value|" for negative blocks.
func (p RangeEdgePartition) Label() string {
	if p.Negated {
		return p.Key + "=-" + strconv.FormatUint(magnitude(p.Value), 10)
	}
	return p.Key + "=" + strconv.FormatInt(p.Value, 10)
}

// boundsEdgeFlag marks encoded bounds as belonging to an edge partition, so
// digit bounds [0,0] never collide with the zero bounds of a whole block.
const boundsEdgeFlag = uint64(1) << 63

// EncodeBounds packs the digit bounds as flag | low<<32 | high.
func (p RangeEdgePartition) EncodeBounds() uint64 {
	return boundsEdgeFlag | uint64(uint32(p.LowDigit))<<32 | uint64(uint32(p.HighDigit))
}

// DecodeBounds reverses EncodeBounds. ok is false for zero (whole block) bounds.
func DecodeBounds(bounds uint64) (lowDigit, highDigit int32, ok bool) {
	if bounds&boundsEdgeFlag == 0 {
		return 0, 0, false
	}
	return int32(uint32(bounds >> 32 & 0x7fffffff)), int32(uint32(bounds)), true
}

// NewBlockPartition creates a whole-block partition over magnitudes
// [lo, hi]. For negated blocks the signed bounds are [-hi, -lo].
func NewBlockPartition(key string, lo, hi uint64, negated bool) RangePartition {
	if negated {
		return RangePartition{Key: key, Low: negate(hi), High: negate(lo), Negated: true}
	}
	return RangePartition{Key: key, Low: int64(lo), High: int64(hi)}
}

// NewEdgePartition creates an edge partition for digits [lowDigit,
// highDigit] of the block whose magnitude base is base.
func NewEdgePartition(key string, base uint64, lowDigit, highDigit int32, negated bool) RangeEdgePartition {
	lo := base + uint64(lowDigit)
	hi := base + uint64(highDigit)
	return RangeEdgePartition{
		RangePartition: NewBlockPartition(key, lo, hi, negated),
		Value:          signed(base, negated),
		LowDigit:       lowDigit,
		HighDigit:      highDigit,
	}
}

// magnitude returns |v| as uint64; math.MinInt64 maps to 1<<63.
func magnitude(v int64) uint64 {
	if v < 0 {
		return uint64(-v)
	}
	return uint64(v)
}

// negate maps a magnitude in [0, 1<<63] to its negative signed value.
func negate(m uint64) int64 {
	return int64(-m)
}

func signed(m uint64, negated bool) int64 {
	if negated {
		return negate(m)
	}
	return int64(m)
}
