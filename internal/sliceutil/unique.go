// Package sliceutil provides generic slice helpers.
package sliceutil

// UniqueBy returns items with duplicates removed, keeping the first
// occurrence of each key and preserving order. The catalog client uses it
// to collapse repeated course records, keyed by course ID.
//
// When the input already has no duplicates the input slice is returned
// as-is without allocating.
func UniqueBy[T any, K comparable](items []T, key func(T) K) []T {
	seen := make(map[K]struct{}, len(items))

	// Scan for the first duplicate; most fetches have none.
	first := -1
	for i, item := range items {
		k := key(item)
		if _, dup := seen[k]; dup {
			first = i
			break
		}
		seen[k] = struct{}{}
	}
	if first < 0 {
		return items
	}

	result := append([]T(nil), items[:first]...)
	for _, item := range items[first+1:] {
		k := key(item)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		result = append(result, item)
	}
	return result
}
