package skills

import "sort"

// Set is an unordered collection of skill terms.
type Set map[string]struct{}

// NewSet builds a Set from terms.
func NewSet(terms ...string) Set {
	s := make(Set, len(terms))
	for _, t := range terms {
		s[t] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(term string) bool {
	_, ok := s[term]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int { return len(s) }

// Intersect returns the members present in both s and other.
func (s Set) Intersect(other Set) Set {
	out := make(Set)
	for t := range s {
		if other.Has(t) {
			out[t] = struct{}{}
		}
	}
	return out
}

// Difference returns the members of s that are not in other.
func (s Set) Difference(other Set) Set {
	out := make(Set)
	for t := range s {
		if !other.Has(t) {
			out[t] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in ascending order. Never nil, so an empty set
// encodes as [] in JSON.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
