package annotator

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/predc/internal/predicate"
)

// ZStarCompressedAttributeName is the label of the feature every query
// supplies, under which negated leaves register their exclusion markers.
const ZStarCompressedAttributeName = "z-star-compressed"

// MaxIntervalEnd is the largest slot number a packed interval can hold.
const MaxIntervalEnd = 0xFFFF

// IntervalWithBounds is a range partition interval. Bounds is zero for a
// whole partition and RangeEdgePartition.EncodeBounds for an edge.
type IntervalWithBounds struct {
	Interval uint32 `json:"interval"`
	Bounds   uint64 `json:"bounds"`
}

// ConjunctionIntervals collects the intervals of every occurrence of one
// feature conjunction.
type ConjunctionIntervals struct {
	Conjunction *predicate.FeatureConjunction
	Intervals   []uint32
}

// Annotations is the index-ready form of a predicate tree.
type Annotations struct {
	MinFeature  int
	IntervalEnd uint32

	// IntervalMap holds the intervals of feature set values and z-star
	// markers, keyed by feature hash.
	IntervalMap map[uint64][]uint32

	// BoundsMap holds the intervals of range partitions, keyed by the hash
	// of the partition label.
	BoundsMap map[uint64][]IntervalWithBounds

	// FeatureConjunctions is keyed by the canonical encoding of the
	// conjunction.
	FeatureConjunctions map[string]*ConjunctionIntervals

	// Labels maps every hash used above back to its label.
	Labels map[uint64]string
}

// Pack combines two slot numbers into an interval.
func Pack(begin, end uint32) uint32 {
	return begin<<16 | end
}

// Unpack splits an interval into its slot numbers.
func Unpack(interval uint32) (begin, end uint32) {
	return interval >> 16, interval & 0xFFFF
}

// Annotate analyzes p and assigns an interval to every leaf occurrence.
//
// Slots 1..TreeSize are handed out left to right. Each conjunction child
// takes as many slots as its subtree has leaves, except the last child which
// stretches to the end of its parent's span; disjunction children share the
// parent's span. A positive leaf in [b,e] is indexed at b<<16|e. A negated
// leaf occupies two slots: its features are indexed at [b,e-1] and a z-star
// marker (e-1)<<16|(b-1) records the exclusion.
func Annotate(p predicate.Predicate) (*Annotations, error) {
	res, err := Analyze(p)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	if res.TreeSize > MaxIntervalEnd {
		return nil, &predicate.Error{
			Code:    predicate.ErrCodeCapacityExceeded,
			Message: fmt.Sprintf("tree needs %d interval slots, at most %d fit", res.TreeSize, MaxIntervalEnd),
		}
	}

	a := &annotator{
		sizes: res.SizeMap,
		out: &Annotations{
			MinFeature:          res.MinFeature,
			IntervalEnd:         uint32(res.TreeSize),
			IntervalMap:         make(map[uint64][]uint32),
			BoundsMap:           make(map[uint64][]IntervalWithBounds),
			FeatureConjunctions: make(map[string]*ConjunctionIntervals),
			Labels:              make(map[uint64]string),
		},
	}
	if err := a.assign(p, 1, uint32(res.TreeSize), false); err != nil {
		return nil, err
	}
	if a.leftNodeLeaves != uint32(res.TreeSize) {
		return nil, predicate.Invariantf("assigned %d slots, tree has %d", a.leftNodeLeaves, res.TreeSize)
	}
	return a.out, nil
}

type annotator struct {
	sizes          map[NodeID]int
	next           NodeID
	leftNodeLeaves uint32
	out            *Annotations
}

func (a *annotator) assign(p predicate.Predicate, begin, end uint32, negated bool) error {
	id := a.next
	a.next++

	switch n := p.(type) {
	case *predicate.Conjunction:
		current := begin
		for i, child := range n.Children {
			if i == len(n.Children)-1 {
				return a.assign(child, current, end, false)
			}
			next := a.leftNodeLeaves + uint32(a.sizes[a.next]) + 1
			if err := a.assign(child, current, next-1, false); err != nil {
				return err
			}
			current = next
		}
		return nil
	case *predicate.Disjunction:
		for _, child := range n.Children {
			if err := a.assign(child, begin, end, false); err != nil {
				return err
			}
		}
		return nil
	case *predicate.Negation:
		if !isFeatureLeaf(n.Operand) {
			return predicate.Invariantf("negation of %s", describe(n.Operand))
		}
		return a.assign(n.Operand, begin, end, !negated)
	case *predicate.FeatureSet, *predicate.FeatureRange, *predicate.FeatureConjunction:
		return a.leaf(p, begin, end, negated)
	default:
		return predicate.Invariantf("unexpected %s at node %d", describe(p), id)
	}
}

func (a *annotator) leaf(p predicate.Predicate, begin, end uint32, negated bool) error {
	interval := Pack(begin, end)
	if negated {
		interval = Pack(begin, end-1)
		if err := a.register(ZStarCompressedAttributeName, Pack(end-1, begin-1)); err != nil {
			return err
		}
		a.leftNodeLeaves += 2
	} else {
		a.leftNodeLeaves++
	}

	switch n := p.(type) {
	case *predicate.FeatureSet:
		for _, label := range n.Labels() {
			if err := a.register(label, interval); err != nil {
				return err
			}
		}
	case *predicate.FeatureRange:
		if len(n.Partitions) == 0 {
			return &predicate.Error{
				Code:    predicate.ErrCodeInvariantViolation,
				Message: "range has not been partitioned",
				Key:     n.Key,
			}
		}
		for _, part := range n.Partitions {
			var bounds uint64
			if edge, ok := part.(predicate.RangeEdgePartition); ok {
				bounds = edge.EncodeBounds()
			}
			h, err := a.hash(part.Label())
			if err != nil {
				return err
			}
			a.out.BoundsMap[h] = append(a.out.BoundsMap[h], IntervalWithBounds{Interval: interval, Bounds: bounds})
		}
	case *predicate.FeatureConjunction:
		key, err := predicate.CanonicalKey(n)
		if err != nil {
			return predicate.Invariantf("feature conjunction: %v", err)
		}
		ci, ok := a.out.FeatureConjunctions[key]
		if !ok {
			ci = &ConjunctionIntervals{Conjunction: n}
			a.out.FeatureConjunctions[key] = ci
		}
		ci.Intervals = append(ci.Intervals, interval)
	}
	return nil
}

func (a *annotator) register(label string, interval uint32) error {
	h, err := a.hash(label)
	if err != nil {
		return err
	}
	a.out.IntervalMap[h] = append(a.out.IntervalMap[h], interval)
	return nil
}

// hash returns the feature hash of label, recording the label and rejecting
// two labels that collide.
func (a *annotator) hash(label string) (uint64, error) {
	label = norm.NFC.String(label)
	h := predicate.FeatureHash(label)
	if prev, ok := a.out.Labels[h]; ok && prev != label {
		return 0, predicate.Invariantf("labels %q and %q hash to %#x", prev, label, h)
	}
	a.out.Labels[h] = label
	return h, nil
}
