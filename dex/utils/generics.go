// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package utils

import (
	"sort"

	"golang.org/x/exp/constraints"
)

// MapKeys returns the keys of m in no particular order.
func MapKeys[K comparable, V any](m map[K]V) []K {
	ks := make([]K, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	return ks
}

// SortedKeys is MapKeys with the keys in ascending order.
func SortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	ks := MapKeys(m)
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })
	return ks
}
