package harness

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/roach88/predc/internal/annotator"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Actual)
}

// evaluate checks one assertion against an outcome.
func evaluate(out outcome, a Assertion) error {
	switch a.Type {
	case AssertError:
		if out.code != a.Code {
			return &AssertionError{Type: a.Type, Expected: "error " + a.Code, Actual: out.describe()}
		}
		return nil
	case AssertConstant:
		if out.constant == nil || *out.constant != *a.Value {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprintf("constant %t", *a.Value), Actual: out.describe()}
		}
		return nil
	}

	if out.annotations == nil {
		return &AssertionError{Type: a.Type, Expected: "an annotated tree", Actual: out.describe()}
	}
	ann := out.annotations

	switch a.Type {
	case AssertMinFeature:
		if ann.MinFeature != *a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(*a.Count), Actual: fmt.Sprint(ann.MinFeature)}
		}
	case AssertIntervalEnd:
		if int(ann.IntervalEnd) != *a.Count {
			return &AssertionError{Type: a.Type, Expected: fmt.Sprint(*a.Count), Actual: fmt.Sprint(ann.IntervalEnd)}
		}
	case AssertIntervals:
		feature, ok := findFeature(ann, a.Label)
		if !ok || !slices.Equal(feature.Intervals, a.Intervals) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s: %s", a.Label, formatIntervals(a.Intervals)),
				Actual:   fmt.Sprintf("%s: %s", a.Label, formatIntervals(feature.Intervals)),
			}
		}
	case AssertRanges:
		feature, _ := findFeature(ann, a.Label)
		got := lo.Map(feature.Bounds, func(b annotator.IntervalWithBounds, _ int) string {
			return annotator.FormatBounds(b)
		})
		if !slices.Equal(got, a.Ranges) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s: %v", a.Label, a.Ranges),
				Actual:   fmt.Sprintf("%s: %v", a.Label, got),
			}
		}
	case AssertTree:
		if got := out.tree.String(); got != a.Tree {
			return &AssertionError{Type: a.Type, Expected: a.Tree, Actual: got}
		}
	}
	return nil
}

func findFeature(ann *annotator.Annotations, label string) (annotator.Feature, bool) {
	return lo.Find(ann.Features(), func(f annotator.Feature) bool {
		return f.Label == label
	})
}

func formatIntervals(intervals []uint32) string {
	return fmt.Sprint(lo.Map(intervals, func(i uint32, _ int) string {
		return annotator.FormatInterval(i)
	}))
}

func (o outcome) describe() string {
	switch {
	case o.code != "":
		return "error " + o.code
	case o.constant != nil:
		return fmt.Sprintf("constant %t", *o.constant)
	default:
		return "tree " + o.tree.String()
	}
}
