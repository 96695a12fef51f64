// Package predicate defines the boolean predicate tree compiled by predc.
//
// This package contains the data model only: node types, numeric range
// partitions, compile options, feature labels and hashing. The optimizer and
// annotator packages import predicate; predicate imports nothing internal.
//
// Key design constraints:
//   - Predicate is a sealed interface; only node types in this package implement it
//   - Trees are single-owner values; stages return new trees instead of mutating
//   - FeatureSet values are a set: sorted and de-duplicated on construction
//   - FeatureConjunction identity is structural (see CanonicalKey), never pointer identity
package predicate
