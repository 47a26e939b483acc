// Package ngram extracts character n-grams and builds truncated profiles.
package ngram

import (
	"sort"

	"github.com/verte-zerg/spiauthor/internal/model"
)

// Extract returns every length-n substring of text, in order, using a stride of one
// code point. Case, punctuation and whitespace are kept as-is.
func Extract(text string, n int) []string {
	if n < 1 {
		return nil
	}
	runes := []rune(text)
	if len(runes) < n {
		return []string{}
	}
	out := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		out = append(out, string(runes[i:i+n]))
	}
	return out
}

// Counts returns the frequency of every distinct n-gram of text.
func Counts(text string, n int) map[string]int {
	counts := make(map[string]int)
	for _, gram := range Extract(text, n) {
		counts[gram]++
	}
	return counts
}

// Ranked returns the distinct n-grams ordered by frequency, most frequent first.
// Equal frequencies are ordered lexicographically so truncation is deterministic.
func Ranked(counts map[string]int) []string {
	type item struct {
		gram  string
		count int
	}
	items := make([]item, 0, len(counts))
	for gram, count := range counts {
		items = append(items, item{gram: gram, count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].count == items[j].count {
			return items[i].gram < items[j].gram
		}
		return items[i].count > items[j].count
	})
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.gram
	}
	return out
}

// Top builds the profile of text: the s most frequent n-grams, or every distinct
// n-gram when s is model.KeepAll.
func Top(text string, n, s int) Profile {
	counts := Counts(text, n)
	if s == model.KeepAll || s >= len(counts) {
		p := make(Profile, len(counts))
		for gram := range counts {
			p[gram] = struct{}{}
		}
		return p
	}
	ranked := Ranked(counts)
	p := make(Profile, s)
	for _, gram := range ranked[:s] {
		p[gram] = struct{}{}
	}
	return p
}
