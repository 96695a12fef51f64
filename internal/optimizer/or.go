package optimizer

import (
	"github.com/samber/lo"

	"github.com/roach88/predc/internal/predicate"
)

// SimplifyOr merges the feature-set children of every disjunction that share
// a key into one feature set holding the union of their values.
//
// The merged set takes the position of the first set with that key; other
// children keep their relative order. A disjunction reduced to one child is
// replaced by that child. Leaves, including feature conjunctions, are not
// descended into.
func SimplifyOr(p predicate.Predicate) predicate.Predicate {
	switch n := p.(type) {
	case *predicate.Disjunction:
		children := mergeFeatureSets(lo.Map(n.Children, func(c predicate.Predicate, _ int) predicate.Predicate {
			return SimplifyOr(c)
		}))
		if len(children) == 1 {
			return children[0]
		}
		return predicate.NewDisjunction(children...)
	case *predicate.Conjunction:
		return predicate.NewConjunction(lo.Map(n.Children, func(c predicate.Predicate, _ int) predicate.Predicate {
			return SimplifyOr(c)
		})...)
	case *predicate.Negation:
		return predicate.NewNegation(SimplifyOr(n.Operand))
	default:
		return p
	}
}

func mergeFeatureSets(children []predicate.Predicate) []predicate.Predicate {
	out := make([]predicate.Predicate, 0, len(children))
	slot := make(map[string]int) // key -> index in out
	for _, child := range children {
		fs, ok := child.(*predicate.FeatureSet)
		if !ok {
			out = append(out, child)
			continue
		}
		i, seen := slot[fs.Key]
		if !seen {
			slot[fs.Key] = len(out)
			out = append(out, fs)
			continue
		}
		prev := out[i].(*predicate.FeatureSet)
		out[i] = predicate.NewFeatureSet(fs.Key, lo.Union(prev.Values, fs.Values)...)
	}
	return out
}
