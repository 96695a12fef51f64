package annotator

import (
	"math/big"

	"github.com/roach88/predc/internal/predicate"
)

// NodeID identifies a node by its position in a preorder walk of the tree.
// The root is 0. A Negation and its operand get consecutive ids; operands of
// a FeatureConjunction are part of the leaf and get none.
type NodeID int

// AnalyzerResult summarizes a predicate tree.
type AnalyzerResult struct {
	// MinFeature is the smallest number of features a query must supply
	// for the tree to possibly match.
	MinFeature int

	// TreeSize is the number of leaf slots, counting 2 for a negated leaf.
	TreeSize int

	// SizeMap holds the slot count of every node.
	SizeMap map[NodeID]int
}

// Analyze computes the MinFeature and slot sizes of p.
//
// A positive feature occurring n times in the tree contributes 1/n, so a
// feature repeated across branches is not counted once per branch. A feature
// set weighs as its rarest value. Conjunctions add up their children,
// disjunctions take the lightest child. The sum is rounded up, and one more
// feature is required when the tree has a negated leaf because such trees
// are only matched through the z-star feature.
func Analyze(p predicate.Predicate) (AnalyzerResult, error) {
	occ := make(map[string]int)
	if err := countOccurrences(p, false, occ); err != nil {
		return AnalyzerResult{}, err
	}

	a := &analyzer{occurrences: occ, sizes: make(map[NodeID]int)}
	weight, size, err := a.visit(p, false)
	if err != nil {
		return AnalyzerResult{}, err
	}

	minFeature := ceil(weight)
	if a.hasNegation {
		minFeature++
	}
	return AnalyzerResult{MinFeature: minFeature, TreeSize: size, SizeMap: a.sizes}, nil
}

type analyzer struct {
	occurrences map[string]int
	sizes       map[NodeID]int
	next        NodeID
	hasNegation bool
}

func (a *analyzer) visit(p predicate.Predicate, negated bool) (*big.Rat, int, error) {
	id := a.next
	a.next++

	switch n := p.(type) {
	case *predicate.Conjunction:
		if len(n.Children) == 0 {
			return nil, 0, predicate.Invariantf("conjunction with no children")
		}
		total, size := new(big.Rat), 0
		for _, child := range n.Children {
			w, s, err := a.visit(child, false)
			if err != nil {
				return nil, 0, err
			}
			total.Add(total, w)
			size += s
		}
		a.sizes[id] = size
		return total, size, nil
	case *predicate.Disjunction:
		if len(n.Children) == 0 {
			return nil, 0, predicate.Invariantf("disjunction with no children")
		}
		var lightest *big.Rat
		size := 0
		for _, child := range n.Children {
			w, s, err := a.visit(child, false)
			if err != nil {
				return nil, 0, err
			}
			if lightest == nil || w.Cmp(lightest) < 0 {
				lightest = w
			}
			size += s
		}
		a.sizes[id] = size
		return lightest, size, nil
	case *predicate.Negation:
		if !isFeatureLeaf(n.Operand) {
			return nil, 0, predicate.Invariantf("negation of %s", describe(n.Operand))
		}
		w, s, err := a.visit(n.Operand, true)
		if err != nil {
			return nil, 0, err
		}
		a.sizes[id] = s
		return w, s, nil
	case *predicate.FeatureSet, *predicate.FeatureRange, *predicate.FeatureConjunction:
		size := 1
		weight := new(big.Rat)
		if negated {
			a.hasNegation = true
			size = 2
		} else {
			keys, err := occurrenceKeys(p)
			if err != nil {
				return nil, 0, err
			}
			for _, k := range keys {
				w := big.NewRat(1, int64(a.occurrences[k]))
				if weight.Sign() == 0 || w.Cmp(weight) < 0 {
					weight = w
				}
			}
		}
		a.sizes[id] = size
		return weight, size, nil
	default:
		return nil, 0, predicate.Invariantf("unexpected %s in tree", describe(p))
	}
}

// countOccurrences counts the positive occurrences of every occurrence key.
func countOccurrences(p predicate.Predicate, negated bool, occ map[string]int) error {
	switch n := p.(type) {
	case *predicate.Conjunction:
		for _, child := range n.Children {
			if err := countOccurrences(child, false, occ); err != nil {
				return err
			}
		}
	case *predicate.Disjunction:
		for _, child := range n.Children {
			if err := countOccurrences(child, false, occ); err != nil {
				return err
			}
		}
	case *predicate.Negation:
		return countOccurrences(n.Operand, true, occ)
	case *predicate.FeatureSet, *predicate.FeatureRange, *predicate.FeatureConjunction:
		if negated {
			return nil
		}
		keys, err := occurrenceKeys(p)
		if err != nil {
			return err
		}
		for _, k := range keys {
			occ[k]++
		}
	}
	return nil
}

// occurrenceKeys returns the keys under which a positive leaf is counted:
// one per value for a feature set, the feature key for a range and the
// canonical encoding for a feature conjunction.
func occurrenceKeys(p predicate.Predicate) ([]string, error) {
	switch n := p.(type) {
	case *predicate.FeatureSet:
		if len(n.Values) == 0 {
			return nil, &predicate.Error{
				Code:    predicate.ErrCodeInvariantViolation,
				Message: "feature set with no values",
				Key:     n.Key,
			}
		}
		return n.Labels(), nil
	case *predicate.FeatureRange:
		return []string{"range:" + n.Key}, nil
	case *predicate.FeatureConjunction:
		key, err := predicate.CanonicalKey(n)
		if err != nil {
			return nil, predicate.Invariantf("feature conjunction: %v", err)
		}
		return []string{key}, nil
	default:
		return nil, predicate.Invariantf("%s is not a feature leaf", describe(p))
	}
}

func isFeatureLeaf(p predicate.Predicate) bool {
	switch p.(type) {
	case *predicate.FeatureSet, *predicate.FeatureRange, *predicate.FeatureConjunction:
		return true
	default:
		return false
	}
}

func describe(p predicate.Predicate) string {
	if p == nil {
		return "nil"
	}
	return p.String()
}

func ceil(r *big.Rat) int {
	q, m := new(big.Int).DivMod(r.Num(), r.Denom(), new(big.Int))
	n := int(q.Int64())
	if m.Sign() != 0 {
		n++
	}
	return n
}
