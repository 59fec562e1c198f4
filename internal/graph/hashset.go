package graph

import "slices"

// HashSet is a set of object hashes.
type HashSet map[string]struct{}

func NewHashSet(hashes ...string) HashSet {
	set := make(HashSet, len(hashes))
	for _, hash := range hashes {
		set.Add(hash)
	}
	return set
}

func (s HashSet) Add(hash string) {
	s[hash] = struct{}{}
}

func (s HashSet) Has(hash string) bool {
	_, ok := s[hash]
	return ok
}

func (s HashSet) Len() int {
	return len(s)
}

// Difference returns the hashes in s that are not in other.
func (s HashSet) Difference(other HashSet) HashSet {
	out := make(HashSet)
	for hash := range s {
		if !other.Has(hash) {
			out.Add(hash)
		}
	}
	return out
}

// Intersect returns the hashes present in both sets.
func (s HashSet) Intersect(other HashSet) HashSet {
	out := make(HashSet)
	for hash := range s {
		if other.Has(hash) {
			out.Add(hash)
		}
	}
	return out
}

// Union returns every hash present in either set.
func (s HashSet) Union(other HashSet) HashSet {
	out := make(HashSet, len(s)+len(other))
	for hash := range s {
		out.Add(hash)
	}
	for hash := range other {
		out.Add(hash)
	}
	return out
}

// Sorted returns the hashes in ascending order.
func (s HashSet) Sorted() []string {
	hashes := make([]string, 0, len(s))
	for hash := range s {
		hashes = append(hashes, hash)
	}
	slices.Sort(hashes)
	return hashes
}
