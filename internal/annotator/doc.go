// Package annotator assigns interval annotations to a compiled predicate tree.
//
// Analyze measures the tree: how many leaf slots it occupies and the minimum
// number of positive features a query must supply for the tree to be
// satisfiable. Annotate turns the tree into per-feature interval lists that
// an index stores instead of the tree itself.
//
// Both functions expect the output of the optimizer pipeline: negations wrap
// only leaves, constants are folded away and every range carries its
// partitions. Trees that break these rules are rejected with an
// INVARIANT_VIOLATION error.
//
// Intervals pack two 16-bit slot numbers, begin<<16 | end. Slots are
// numbered from 1 and a tree may use at most MaxIntervalEnd of them.
package annotator
