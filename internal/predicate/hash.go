package predicate

import (
	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/unicode/norm"
)

// FeatureLabel returns the label a key/value feature is indexed under.
func FeatureLabel(key, value string) string {
	return key + "=" + value
}

// FeatureHash computes the 64-bit hash a feature label is indexed under.
//
// Labels are NFC normalized first so that canonically equivalent spellings
// of the same key or value land on the same posting list. Query-side feature
// generation must hash with the same function.
func FeatureHash(label string) uint64 {
	return xxhash.Sum64String(norm.NFC.String(label))
}
