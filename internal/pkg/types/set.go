// Package types holds small generic containers shared across packages.
package types

import (
	"cmp"
	"maps"
	"slices"
)

// Set is a hash set of comparable values. The zero value is not usable; build
// sets with NewSet. Methods that change the set modify it in place.
type Set[T comparable] map[T]struct{}

// NewSet returns a set holding the given values.
func NewSet[T comparable](values ...T) Set[T] {
	s := make(Set[T], len(values))
	s.Add(values...)
	return s
}

// Add inserts values into the set.
func (s Set[T]) Add(values ...T) {
	for _, v := range values {
		s[v] = struct{}{}
	}
}

// Has reports whether v is in the set.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// AddIfAbsent inserts v and reports whether it was not present before.
// It is the building block for first-occurrence deduplication.
func (s Set[T]) AddIfAbsent(v T) bool {
	if s.Has(v) {
		return false
	}

	s[v] = struct{}{}
	return true
}

// Sorted returns the elements in ascending order.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	return slices.Sorted(maps.Keys(s))
}
