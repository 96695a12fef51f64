package predicate

import (
	"slices"

	"github.com/samber/lo"
)

// NewConjunction creates a Conjunction over children.
func NewConjunction(children ...Predicate) *Conjunction {
	return &Conjunction{Children: children}
}

// NewDisjunction creates a Disjunction over children.
func NewDisjunction(children ...Predicate) *Disjunction {
	return &Disjunction{Children: children}
}

// NewNegation creates a Negation of operand.
func NewNegation(operand Predicate) *Negation {
	return &Negation{Operand: operand}
}

// NewFeatureSet creates a FeatureSet. Values are sorted and de-duplicated.
func NewFeatureSet(key string, values ...string) *FeatureSet {
	vals := lo.Uniq(values)
	slices.Sort(vals)
	return &FeatureSet{Key: key, Values: vals}
}

// NewFeatureRange creates a FeatureRange. A nil bound is open.
func NewFeatureRange(key string, from, to *int64) *FeatureRange {
	return &FeatureRange{Key: key, From: from, To: to}
}

// NewFeatureConjunction creates a FeatureConjunction over operands.
func NewFeatureConjunction(operands ...Predicate) *FeatureConjunction {
	return &FeatureConjunction{Operands: operands}
}

// NewBoolean creates a BooleanPredicate.
func NewBoolean(value bool) *BooleanPredicate {
	return &BooleanPredicate{Value: value}
}

// And is shorthand for NewConjunction.
func And(children ...Predicate) *Conjunction { return NewConjunction(children...) }

// Or is shorthand for NewDisjunction.
func Or(children ...Predicate) *Disjunction { return NewDisjunction(children...) }

// Not is shorthand for NewNegation.
func Not(operand Predicate) *Negation { return NewNegation(operand) }

// True returns the constant true.
func True() *BooleanPredicate { return NewBoolean(true) }

// False returns the constant false.
func False() *BooleanPredicate { return NewBoolean(false) }

// Int64 returns a pointer to v, for range bounds.
func Int64(v int64) *int64 { return &v }

// FeatureBuilder builds leaves for one feature key.
//
// Example:
//
//	Feature("country").InSet("no", "se")
//	Feature("age").InRange(18, 65)
//	Feature("age").GreaterThanOrEqualTo(18)
type FeatureBuilder struct {
	key string
}

// Feature starts a leaf for key.
func Feature(key string) FeatureBuilder {
	return FeatureBuilder{key: key}
}

// InSet returns a FeatureSet for the builder's key.
func (b FeatureBuilder) InSet(values ...string) *FeatureSet {
	return NewFeatureSet(b.key, values...)
}

// NotInSet returns the negation of InSet.
func (b FeatureBuilder) NotInSet(values ...string) *Negation {
	return NewNegation(b.InSet(values...))
}

// InRange returns a closed FeatureRange [from, to].
func (b FeatureBuilder) InRange(from, to int64) *FeatureRange {
	return NewFeatureRange(b.key, Int64(from), Int64(to))
}

// GreaterThanOrEqualTo returns the range [from, +inf).
func (b FeatureBuilder) GreaterThanOrEqualTo(from int64) *FeatureRange {
	return NewFeatureRange(b.key, Int64(from), nil)
}

// LessThanOrEqualTo returns the range (-inf, to].
func (b FeatureBuilder) LessThanOrEqualTo(to int64) *FeatureRange {
	return NewFeatureRange(b.key, nil, Int64(to))
}
