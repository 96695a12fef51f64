package optimizer

import "github.com/roach88/predc/internal/predicate"

// SimplifyBooleans folds constants bottom-up.
//
// A conjunction containing false becomes false and drops true children; a
// disjunction containing true becomes true and drops false children. An
// operator left with no children becomes its identity constant and one left
// with a single child is replaced by that child. A negated constant is
// inverted. SimplifyBooleans is idempotent.
func SimplifyBooleans(p predicate.Predicate) predicate.Predicate {
	switch n := p.(type) {
	case *predicate.Conjunction:
		children, short := foldConstants(n.Children, false)
		if short {
			return predicate.False()
		}
		switch len(children) {
		case 0:
			return predicate.True()
		case 1:
			return children[0]
		}
		return predicate.NewConjunction(children...)
	case *predicate.Disjunction:
		children, short := foldConstants(n.Children, true)
		if short {
			return predicate.True()
		}
		switch len(children) {
		case 0:
			return predicate.False()
		case 1:
			return children[0]
		}
		return predicate.NewDisjunction(children...)
	case *predicate.Negation:
		operand := SimplifyBooleans(n.Operand)
		if b, ok := operand.(*predicate.BooleanPredicate); ok {
			return predicate.NewBoolean(!b.Value)
		}
		return predicate.NewNegation(operand)
	default:
		return p
	}
}

// foldConstants simplifies children, dropping constants equal to !dominant.
// It reports short=true as soon as a child simplifies to dominant.
func foldConstants(children []predicate.Predicate, dominant bool) (out []predicate.Predicate, short bool) {
	out = make([]predicate.Predicate, 0, len(children))
	for _, child := range children {
		simplified := SimplifyBooleans(child)
		if b, ok := simplified.(*predicate.BooleanPredicate); ok {
			if b.Value == dominant {
				return nil, true
			}
			continue
		}
		out = append(out, simplified)
	}
	return out, false
}
