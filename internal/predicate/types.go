package predicate

import (
	"slices"
	"strconv"
	"strings"
)

// Predicate is a node in a boolean predicate tree.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern enables exhaustive type switches in the
// optimizer and annotator.
//
// Node types:
//   - Conjunction, Disjunction: operators over ordered children
//   - Negation: operator over a single operand
//   - FeatureSet, FeatureRange: leaves tested against query features
//   - FeatureConjunction: an atomic leaf bundling several features
//   - BooleanPredicate: a constant
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package

	// String renders the node in a compact, deterministic notation.
	String() string
}

// Conjunction is satisfied when all children are satisfied.
//
// Child order carries no meaning before the not-node reordering stage;
// after it, negated children form a contiguous prefix.
type Conjunction struct {
	Children []Predicate
}

func (*Conjunction) predicateNode() {}

func (c *Conjunction) String() string {
	return "and(" + joinChildren(c.Children) + ")"
}

// Disjunction is satisfied when any child is satisfied.
type Disjunction struct {
	Children []Predicate
}

func (*Disjunction) predicateNode() {}

func (d *Disjunction) String() string {
	return "or(" + joinChildren(d.Children) + ")"
}

// Negation inverts its operand. After and/or simplification it wraps only leaves.
type Negation struct {
	Operand Predicate
}

func (*Negation) predicateNode() {}

func (n *Negation) String() string {
	if n.Operand == nil {
		return "not()"
	}
	return "not(" + n.Operand.String() + ")"
}

// FeatureSet is true iff the query supplies Key with a value in Values.
type FeatureSet struct {
	Key    string
	Values []string // sorted, unique
}

func (*FeatureSet) predicateNode() {}

func (f *FeatureSet) String() string {
	quoted := make([]string, len(f.Values))
	for i, v := range f.Values {
		quoted[i] = quote(v)
	}
	return quote(f.Key) + " in [" + strings.Join(quoted, ", ") + "]"
}

// Labels returns the feature label for every value, in value order.
func (f *FeatureSet) Labels() []string {
	labels := make([]string, len(f.Values))
	for i, v := range f.Values {
		labels[i] = FeatureLabel(f.Key, v)
	}
	return labels
}

// FeatureRange is true iff the query supplies Key with an integer value in
// [From, To]. A nil bound is open and resolves to the configured bound.
//
// Partitions is empty until the complex node transformer runs.
type FeatureRange struct {
	Key        string
	From       *int64
	To         *int64
	Partitions []Partition
}

func (*FeatureRange) predicateNode() {}

func (r *FeatureRange) String() string {
	var sb strings.Builder
	sb.WriteString(quote(r.Key))
	sb.WriteString(" in [")
	if r.From != nil {
		sb.WriteString(strconv.FormatInt(*r.From, 10))
	}
	sb.WriteString("..")
	if r.To != nil {
		sb.WriteString(strconv.FormatInt(*r.To, 10))
	}
	sb.WriteString("]")
	return sb.String()
}

// WithPartitions returns a copy of the range carrying the given partitions.
func (r *FeatureRange) WithPartitions(parts []Partition) *FeatureRange {
	return &FeatureRange{Key: r.Key, From: r.From, To: r.To, Partitions: parts}
}

// FeatureConjunction is an atomic leaf that holds when all operands hold.
//
// The annotator treats it as a single feature; two conjunctions with the same
// operands (in any order) are the same feature.
type FeatureConjunction struct {
	Operands []Predicate
}

func (*FeatureConjunction) predicateNode() {}

func (c *FeatureConjunction) String() string {
	parts := make([]string, len(c.Operands))
	for i, op := range c.Operands {
		parts[i] = op.String()
	}
	slices.Sort(parts)
	return "conj(" + strings.Join(parts, ", ") + ")"
}

// BooleanPredicate is a constant.
type BooleanPredicate struct {
	Value bool
}

func (*BooleanPredicate) predicateNode() {}

func (b *BooleanPredicate) String() string {
	return strconv.FormatBool(b.Value)
}

// IsLeaf reports whether p is a leaf for interval purposes.
func IsLeaf(p Predicate) bool {
	switch p.(type) {
	case *FeatureSet, *FeatureRange, *FeatureConjunction, *BooleanPredicate:
		return true
	default:
		return false
	}
}

func joinChildren(children []Predicate) string {
	parts := make([]string, len(children))
	for i, c := range children {
		if c == nil {
			parts[i] = "nil"
			continue
		}
		parts[i] = c.String()
	}
	return strings.Join(parts, ", ")
}

// quote leaves plain identifiers bare and quotes everything else.
func quote(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_', r == '-', r == '.', r == ':', r == '/', r == '@':
		default:
			return strconv.Quote(s)
		}
	}
	return s
}
