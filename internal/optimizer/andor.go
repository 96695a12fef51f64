package optimizer

import "github.com/roach88/predc/internal/predicate"

// SimplifyAndOr pushes negations down to the leaves and flattens nested
// operators of the same kind.
//
// After SimplifyAndOr no Negation wraps a Conjunction, Disjunction or
// Negation. A nil tree yields nil.
func SimplifyAndOr(p predicate.Predicate) predicate.Predicate {
	return SimplifyAndOrNegated(p, false)
}

// SimplifyAndOrNegated simplifies p as if it were wrapped in a negation when
// negated is true.
func SimplifyAndOrNegated(p predicate.Predicate, negated bool) predicate.Predicate {
	switch n := p.(type) {
	case nil:
		return nil
	case *predicate.Negation:
		return SimplifyAndOrNegated(n.Operand, !negated)
	case *predicate.Conjunction:
		// De Morgan: not(a and b) == not(a) or not(b)
		if negated {
			return predicate.NewDisjunction(simplifyOperands(n.Children, negated, isDisjunction)...)
		}
		return predicate.NewConjunction(simplifyOperands(n.Children, negated, isConjunction)...)
	case *predicate.Disjunction:
		if negated {
			return predicate.NewConjunction(simplifyOperands(n.Children, negated, isConjunction)...)
		}
		return predicate.NewDisjunction(simplifyOperands(n.Children, negated, isDisjunction)...)
	default:
		if negated {
			return predicate.NewNegation(p)
		}
		return p
	}
}

// simplifyOperands simplifies every child and splices children whose
// simplified form has the same kind as the parent.
func simplifyOperands(children []predicate.Predicate, negated bool, sameKind func(predicate.Predicate) ([]predicate.Predicate, bool)) []predicate.Predicate {
	out := make([]predicate.Predicate, 0, len(children))
	for _, child := range children {
		simplified := SimplifyAndOrNegated(child, negated)
		if simplified == nil {
			continue
		}
		if grandChildren, ok := sameKind(simplified); ok {
			out = append(out, grandChildren...)
			continue
		}
		out = append(out, simplified)
	}
	return out
}

func isConjunction(p predicate.Predicate) ([]predicate.Predicate, bool) {
	if c, ok := p.(*predicate.Conjunction); ok {
		return c.Children, true
	}
	return nil, false
}

func isDisjunction(p predicate.Predicate) ([]predicate.Predicate, bool) {
	if d, ok := p.(*predicate.Disjunction); ok {
		return d.Children, true
	}
	return nil, false
}
