package document

import (
	"fmt"
	"strings"

	"github.com/roach88/predc/internal/predicate"
)

// Node is the encoded form of one predicate node. Exactly one field is set.
type Node struct {
	And         []Node       `yaml:"and,omitempty" json:"and,omitempty"`
	Or          []Node       `yaml:"or,omitempty" json:"or,omitempty"`
	Not         *Node        `yaml:"not,omitempty" json:"not,omitempty"`
	Feature     *FeatureNode `yaml:"feature,omitempty" json:"feature,omitempty"`
	Range       *RangeNode   `yaml:"range,omitempty" json:"range,omitempty"`
	Conjunction []Node       `yaml:"conjunction,omitempty" json:"conjunction,omitempty"`
	Bool        *bool        `yaml:"bool,omitempty" json:"bool,omitempty"`
}

// FeatureNode encodes a FeatureSet.
type FeatureNode struct {
	Key string   `yaml:"key" json:"key"`
	In  []string `yaml:"in" json:"in"`
}

// RangeNode encodes a FeatureRange. A missing bound is open.
type RangeNode struct {
	Key  string `yaml:"key" json:"key"`
	From *int64 `yaml:"from,omitempty" json:"from,omitempty"`
	To   *int64 `yaml:"to,omitempty" json:"to,omitempty"`
}

// NodeError reports a node that cannot be converted, with its path from the
// root ("predicate.and[1].not").
type NodeError struct {
	Path    string
	Message string
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Predicate converts the node into a predicate tree.
func (n Node) Predicate() (predicate.Predicate, error) {
	return n.convert("predicate")
}

func (n Node) convert(path string) (predicate.Predicate, error) {
	if set := n.keys(); len(set) != 1 {
		msg := "node is empty"
		if len(set) > 1 {
			msg = "node sets more than one of " + strings.Join(set, ", ")
		}
		return nil, &NodeError{Path: path, Message: msg}
	}

	switch {
	case len(n.And) > 0:
		children, err := convertAll(n.And, path+".and")
		if err != nil {
			return nil, err
		}
		return predicate.NewConjunction(children...), nil
	case len(n.Or) > 0:
		children, err := convertAll(n.Or, path+".or")
		if err != nil {
			return nil, err
		}
		return predicate.NewDisjunction(children...), nil
	case n.Not != nil:
		operand, err := n.Not.convert(path + ".not")
		if err != nil {
			return nil, err
		}
		return predicate.NewNegation(operand), nil
	case n.Feature != nil:
		if n.Feature.Key == "" {
			return nil, &NodeError{Path: path + ".feature", Message: "key is required"}
		}
		if len(n.Feature.In) == 0 {
			return nil, &NodeError{Path: path + ".feature", Message: "in needs at least one value"}
		}
		return predicate.NewFeatureSet(n.Feature.Key, n.Feature.In...), nil
	case n.Range != nil:
		if n.Range.Key == "" {
			return nil, &NodeError{Path: path + ".range", Message: "key is required"}
		}
		return predicate.NewFeatureRange(n.Range.Key, n.Range.From, n.Range.To), nil
	case len(n.Conjunction) > 0:
		operands, err := convertAll(n.Conjunction, path+".conjunction")
		if err != nil {
			return nil, err
		}
		return predicate.NewFeatureConjunction(operands...), nil
	default:
		return predicate.NewBoolean(*n.Bool), nil
	}
}

func convertAll(nodes []Node, path string) ([]predicate.Predicate, error) {
	out := make([]predicate.Predicate, len(nodes))
	for i, child := range nodes {
		p, err := child.convert(fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// keys lists the node kinds that are set. Empty lists count as unset.
func (n Node) keys() []string {
	var set []string
	if len(n.And) > 0 {
		set = append(set, "and")
	}
	if len(n.Or) > 0 {
		set = append(set, "or")
	}
	if n.Not != nil {
		set = append(set, "not")
	}
	if n.Feature != nil {
		set = append(set, "feature")
	}
	if n.Range != nil {
		set = append(set, "range")
	}
	if len(n.Conjunction) > 0 {
		set = append(set, "conjunction")
	}
	if n.Bool != nil {
		set = append(set, "bool")
	}
	return set
}

// FromPredicate encodes a predicate tree. Range partitions are not encoded.
func FromPredicate(p predicate.Predicate) (Node, error) {
	switch n := p.(type) {
	case *predicate.Conjunction:
		children, err := fromAll(n.Children)
		return Node{And: children}, err
	case *predicate.Disjunction:
		children, err := fromAll(n.Children)
		return Node{Or: children}, err
	case *predicate.Negation:
		operand, err := FromPredicate(n.Operand)
		if err != nil {
			return Node{}, err
		}
		return Node{Not: &operand}, nil
	case *predicate.FeatureSet:
		return Node{Feature: &FeatureNode{Key: n.Key, In: n.Values}}, nil
	case *predicate.FeatureRange:
		return Node{Range: &RangeNode{Key: n.Key, From: n.From, To: n.To}}, nil
	case *predicate.FeatureConjunction:
		operands, err := fromAll(n.Operands)
		return Node{Conjunction: operands}, err
	case *predicate.BooleanPredicate:
		v := n.Value
		return Node{Bool: &v}, nil
	default:
		return Node{}, fmt.Errorf("cannot encode %T", p)
	}
}

func fromAll(children []predicate.Predicate) ([]Node, error) {
	out := make([]Node, len(children))
	for i, c := range children {
		node, err := FromPredicate(c)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = node
	}
	return out, nil
}
