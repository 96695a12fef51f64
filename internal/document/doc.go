// Package document reads and writes predicate trees in a structural YAML
// form. JSON input is accepted since YAML is a superset of it.
//
// Every node is a mapping with exactly one key:
//
//	and: [node, ...]
//	or: [node, ...]
//	not: node
//	feature: {key: country, in: [no, se]}
//	range: {key: age, from: 18, to: 65}   # from/to optional
//	conjunction: [node, ...]
//	bool: true
//
// A file holds either one document (id + predicate) or a batch
// (documents: [...]). Several YAML documents separated by --- are read in
// order. Documents without an id get one from the configured IDGenerator.
package document
