package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/predc/internal/config"
	"github.com/roach88/predc/internal/document"
)

// Scenario defines a conformance scenario: one predicate and the
// properties its compilation must have.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Options configures range decomposition. Nil means the defaults.
	Options *config.File `yaml:"options,omitempty"`

	// Raw skips the rewrite stages; see the package documentation.
	Raw bool `yaml:"raw,omitempty"`

	// Predicate is the tree under test.
	Predicate document.Node `yaml:"predicate"`

	// Assertions validate the compilation.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one property of a compilation.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is the expected value (used by min_feature, interval_end).
	Count *int `yaml:"count,omitempty"`

	// Label is the feature label (used by intervals, ranges).
	Label string `yaml:"label,omitempty"`

	// Intervals are the expected packed intervals (used by intervals).
	Intervals []uint32 `yaml:"intervals,omitempty"`

	// Ranges are the expected range intervals (used by ranges).
	Ranges []string `yaml:"ranges,omitempty"`

	// Tree is the expected rendering of the compiled tree (used by tree).
	Tree string `yaml:"tree,omitempty"`

	// Value is the expected constant (used by constant).
	Value *bool `yaml:"value,omitempty"`

	// Code is the expected error code (used by error).
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertMinFeature  = "min_feature"
	AssertIntervalEnd = "interval_end"
	AssertIntervals   = "intervals"
	AssertRanges      = "ranges"
	AssertTree        = "tree"
	AssertConstant    = "constant"
	AssertError       = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertMinFeature, AssertIntervalEnd:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for %s", index, a.Type)
		}
	case AssertIntervals:
		if a.Label == "" || len(a.Intervals) == 0 {
			return fmt.Errorf("assertions[%d]: label and intervals are required for intervals", index)
		}
	case AssertRanges:
		if a.Label == "" || len(a.Ranges) == 0 {
			return fmt.Errorf("assertions[%d]: label and ranges are required for ranges", index)
		}
	case AssertTree:
		if a.Tree == "" {
			return fmt.Errorf("assertions[%d]: tree is required for tree", index)
		}
	case AssertConstant:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for constant", index)
		}
	case AssertError:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
