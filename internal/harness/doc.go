// Package harness runs conformance scenarios against the predicate compiler.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: negated-duplicates
//	description: "What this scenario validates"
//	options: {arity: 8}          # optional, defaults as in config
//	predicate:
//	  and:
//	    - feature: {key: key, in: [value]}
//	    - not: {feature: {key: key, in: [value]}}
//	assertions:
//	  - type: min_feature
//	    count: 2
//	  - type: intervals
//	    label: key=value
//	    intervals: [0x00010001]
//
// # Assertion Types
//
//   - min_feature: the annotated MinFeature equals count
//   - interval_end: the annotated IntervalEnd equals count
//   - intervals: the intervals stored under label match, in any order
//   - ranges: the range intervals stored under label match, rendered like
//     "0x00010001 digits 5-9"
//   - tree: the compiled tree renders as tree
//   - constant: the predicate folds to value
//   - error: compilation fails with code
//
// Scenarios run the full compiler pipeline. A scenario with raw: true only
// partitions ranges and then annotates the tree as written, which pins
// interval assignment independently of the rewrite stages.
//
// # Golden Files
//
// Result.Report is a label-keyed text rendering of the compilation that
// golden files compare against, so they do not depend on hash values.
package harness
