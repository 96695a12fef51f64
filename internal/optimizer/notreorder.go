package optimizer

import "github.com/roach88/predc/internal/predicate"

// ReorderNotNodes groups children that end in negation at a predictable edge
// of every operator: first in a conjunction, last in a disjunction.
//
// The boolean result reports whether satisfying the subtree always passes
// through a negated branch. A negation always does; a conjunction does when
// all of its children do; a disjunction does when any child does. Leaves
// never do. The relative order within each group is preserved.
func ReorderNotNodes(p predicate.Predicate) (predicate.Predicate, bool) {
	switch n := p.(type) {
	case *predicate.Negation:
		return n, true
	case *predicate.Conjunction:
		negated, other := splitNegationEnding(n.Children)
		return predicate.NewConjunction(append(negated, other...)...), len(other) == 0
	case *predicate.Disjunction:
		negated, other := splitNegationEnding(n.Children)
		return predicate.NewDisjunction(append(other, negated...)...), len(negated) > 0
	default:
		return p, false
	}
}

func splitNegationEnding(children []predicate.Predicate) (negated, other []predicate.Predicate) {
	negated = make([]predicate.Predicate, 0, len(children))
	other = make([]predicate.Predicate, 0, len(children))
	for _, child := range children {
		reordered, ends := ReorderNotNodes(child)
		if ends {
			negated = append(negated, reordered)
		} else {
			other = append(other, reordered)
		}
	}
	return negated, other
}
