package ngram

import "sort"

// Profile is a set of distinct n-grams.
type Profile map[string]struct{}

// NewProfile builds a profile from the given n-grams.
func NewProfile(grams ...string) Profile {
	p := make(Profile, len(grams))
	for _, g := range grams {
		p[g] = struct{}{}
	}
	return p
}

// Len returns the number of distinct n-grams.
func (p Profile) Len() int {
	return len(p)
}

// Contains reports whether gram is part of the profile.
func (p Profile) Contains(gram string) bool {
	_, ok := p[gram]
	return ok
}

// Sorted returns the profile members in lexicographic order.
func (p Profile) Sorted() []string {
	out := make([]string, 0, len(p))
	for g := range p {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// SPI returns the Sequence Profile Intersection of a and b: the number of n-grams
// the two profiles share.
func SPI(a, b Profile) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	shared := 0
	for g := range a {
		if _, ok := b[g]; ok {
			shared++
		}
	}
	return shared
}
