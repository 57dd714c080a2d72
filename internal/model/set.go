package model

// Set is an unordered collection of distinct comparable values.
type Set[T comparable] map[T]struct{}

// NewSet builds a Set holding the given values.
func NewSet[T comparable](values ...T) Set[T] {
	set := make(Set[T], len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}

	return set
}

// Contains reports whether v is a member of the set. A nil set contains nothing.
func (s Set[T]) Contains(v T) bool {
	_, ok := s[v]
	return ok
}

// ContainsAny reports whether any of the values is a member of the set.
func (s Set[T]) ContainsAny(values ...T) bool {
	for _, v := range values {
		if s.Contains(v) {
			return true
		}
	}

	return false
}
