// Package optimizer implements the tree-rewriting stages of the predicate
// compilation pipeline.
//
// Stages run in a fixed order, each consuming the previous stage's output:
//
//  1. SimplifyAndOr: push negation to leaves (De Morgan), flatten same-kind operators
//  2. SimplifyBooleans: fold constants, collapse single-child operators
//  3. SimplifyOr: merge sibling feature sets sharing a key under a disjunction
//  4. TransformComplexNodes: decompose numeric ranges into arity-aligned partitions
//  5. ReorderNotNodes: group negation-ending children at a predictable edge
//
// Every stage is a pure function: it returns a new tree and never mutates its
// input. Stages assume the invariants established by the stages before them
// and are not required to be re-entrant on already-normalized input.
package optimizer
