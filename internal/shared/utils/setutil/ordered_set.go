// Package setutil provides generic set utilities.
package setutil

// OrderedSet is a set that remembers first-insertion order.
type OrderedSet[T comparable] struct {
	index map[T]struct{}
	items []T
}

func NewOrderedSet[T comparable](capacity int) *OrderedSet[T] {
	return &OrderedSet[T]{
		index: make(map[T]struct{}, capacity),
		items: make([]T, 0, capacity),
	}
}

// Add inserts v and reports whether it was not already present.
func (s *OrderedSet[T]) Add(v T) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *OrderedSet[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

func (s *OrderedSet[T]) Len() int {
	return len(s.items)
}

// ToSlice returns a copy of the elements in insertion order.
func (s *OrderedSet[T]) ToSlice() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// Unique returns the distinct elements of values, keeping the first occurrence.
func Unique[T comparable](values []T) []T {
	s := NewOrderedSet[T](len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s.items
}

// Difference returns the elements of a that are not in b, in a's order.
func Difference[T comparable](a, b []T) []T {
	exclude := make(map[T]struct{}, len(b))
	for _, v := range b {
		exclude[v] = struct{}{}
	}
	var out []T
	for _, v := range a {
		if _, ok := exclude[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
