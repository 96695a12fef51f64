package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/predc/internal/predicate"
)

// Validation error codes (E100-E199)
const (
	ErrNilNode             = "E101" // missing operand or child
	ErrEmptyFeatureKey     = "E102" // feature key is empty
	ErrEmptyFeatureSet     = "E103" // feature set has no values
	ErrInvertedRange       = "E104" // range from exceeds to
	ErrInvalidConjunctOp   = "E105" // feature conjunction operand is not a feature leaf
	ErrEmptyConjunction    = "E106" // feature conjunction has no operands
	ErrDuplicateConjunctOp = "E107" // feature conjunction repeats a key
)

// ValidationError is a structural problem in a predicate tree.
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Path, e.Message)
}

// Validate checks p for structural problems the pipeline would reject or
// silently mis-handle. Returns all errors found (does not fail-fast).
//
// Paths name each node by its operator and child index, e.g. "and[1].not".
func Validate(p predicate.Predicate) []ValidationError {
	var errs []ValidationError
	validateNode(p, "$", &errs)
	return errs
}

func validateNode(p predicate.Predicate, path string, errs *[]ValidationError) {
	add := func(code, format string, args ...any) {
		*errs = append(*errs, ValidationError{Path: path, Message: fmt.Sprintf(format, args...), Code: code})
	}

	switch n := p.(type) {
	case nil:
		add(ErrNilNode, "missing predicate")
	case *predicate.Conjunction:
		for i, child := range n.Children {
			validateNode(child, fmt.Sprintf("%s.and[%d]", path, i), errs)
		}
	case *predicate.Disjunction:
		for i, child := range n.Children {
			validateNode(child, fmt.Sprintf("%s.or[%d]", path, i), errs)
		}
	case *predicate.Negation:
		validateNode(n.Operand, path+".not", errs)
	case *predicate.FeatureSet:
		if strings.TrimSpace(n.Key) == "" {
			add(ErrEmptyFeatureKey, "feature key is required")
		}
		if len(n.Values) == 0 {
			add(ErrEmptyFeatureSet, "feature %q needs at least one value", n.Key)
		}
	case *predicate.FeatureRange:
		if strings.TrimSpace(n.Key) == "" {
			add(ErrEmptyFeatureKey, "range key is required")
		}
		if n.From != nil && n.To != nil && *n.From > *n.To {
			add(ErrInvertedRange, "range %q from %d exceeds to %d", n.Key, *n.From, *n.To)
		}
	case *predicate.FeatureConjunction:
		validateConjunction(n, path, errs)
	case *predicate.BooleanPredicate:
	default:
		add(ErrNilNode, "unsupported predicate type %T", p)
	}
}

func validateConjunction(c *predicate.FeatureConjunction, path string, errs *[]ValidationError) {
	if len(c.Operands) == 0 {
		*errs = append(*errs, ValidationError{Path: path, Message: "conjunction needs at least one operand", Code: ErrEmptyConjunction})
		return
	}

	keys := make(map[string]bool)
	for i, op := range c.Operands {
		opPath := fmt.Sprintf("%s.conjunction[%d]", path, i)
		leaf := op
		if neg, ok := op.(*predicate.Negation); ok {
			leaf = neg.Operand
		}

		var key string
		switch l := leaf.(type) {
		case *predicate.FeatureSet:
			key = l.Key
		case *predicate.FeatureRange:
			key = l.Key
		default:
			*errs = append(*errs, ValidationError{
				Path:    opPath,
				Message: "operand must be a feature, a range, or the negation of one",
				Code:    ErrInvalidConjunctOp,
			})
			continue
		}

		validateNode(op, opPath, errs)
		if keys[key] {
			*errs = append(*errs, ValidationError{
				Path:    opPath,
				Message: fmt.Sprintf("key %q appears more than once", key),
				Code:    ErrDuplicateConjunctOp,
			})
		}
		keys[key] = true
	}
}
