package annotator

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/roach88/predc/internal/predicate"
)

// Feature is one indexed label and everything stored under its hash.
type Feature struct {
	Label     string               `json:"label"`
	Hash      uint64               `json:"hash"`
	Intervals []uint32             `json:"intervals,omitempty"`
	Bounds    []IntervalWithBounds `json:"bounds,omitempty"`
}

// Features lists the IntervalMap and BoundsMap entries ordered by label.
func (a *Annotations) Features() []Feature {
	hashes := lo.Union(lo.Keys(a.IntervalMap), lo.Keys(a.BoundsMap))
	features := lo.Map(hashes, func(h uint64, _ int) Feature {
		return Feature{
			Label:     a.Labels[h],
			Hash:      h,
			Intervals: a.IntervalMap[h],
			Bounds:    a.BoundsMap[h],
		}
	})
	slices.SortFunc(features, func(x, y Feature) int {
		return cmp.Compare(x.Label, y.Label)
	})
	return features
}

// Conjunctions lists the feature conjunctions ordered by their rendering.
func (a *Annotations) Conjunctions() []*ConjunctionIntervals {
	out := lo.Values(a.FeatureConjunctions)
	slices.SortFunc(out, func(x, y *ConjunctionIntervals) int {
		return cmp.Compare(x.Conjunction.String(), y.Conjunction.String())
	})
	return out
}

// FormatInterval renders an interval as 0xBBBBEEEE.
func FormatInterval(interval uint32) string {
	return fmt.Sprintf("0x%08x", interval)
}

// FormatBounds renders a range interval, with its digits for edge partitions.
func FormatBounds(b IntervalWithBounds) string {
	if low, high, ok := predicate.DecodeBounds(b.Bounds); ok {
		return fmt.Sprintf("%s digits %d-%d", FormatInterval(b.Interval), low, high)
	}
	return FormatInterval(b.Interval)
}

// WriteText writes a line-oriented rendering of a, keyed by label so the
// output does not depend on the hash function.
func (a *Annotations) WriteText(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "min_feature: %d\n", a.MinFeature)
	fmt.Fprintf(&sb, "interval_end: %d\n", a.IntervalEnd)

	var features, ranges []Feature
	for _, f := range a.Features() {
		if len(f.Intervals) > 0 {
			features = append(features, f)
		}
		if len(f.Bounds) > 0 {
			ranges = append(ranges, f)
		}
	}

	if len(features) > 0 {
		sb.WriteString("features:\n")
		for _, f := range features {
			fmt.Fprintf(&sb, "  %s: [%s]\n", f.Label, strings.Join(lo.Map(f.Intervals, func(i uint32, _ int) string {
				return FormatInterval(i)
			}), " "))
		}
	}
	if len(ranges) > 0 {
		sb.WriteString("ranges:\n")
		for _, f := range ranges {
			fmt.Fprintf(&sb, "  %s: [%s]\n", f.Label, strings.Join(lo.Map(f.Bounds, func(b IntervalWithBounds, _ int) string {
				return FormatBounds(b)
			}), ", "))
		}
	}
	if conj := a.Conjunctions(); len(conj) > 0 {
		sb.WriteString("conjunctions:\n")
		for _, c := range conj {
			fmt.Fprintf(&sb, "  %s: [%s]\n", c.Conjunction, strings.Join(lo.Map(c.Intervals, func(i uint32, _ int) string {
				return FormatInterval(i)
			}), " "))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
