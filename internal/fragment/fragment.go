// Package fragment splits the known corpus into word-preserving fragments.
package fragment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/verte-zerg/spiauthor/internal/model"
)

// ErrTooFew is returned when the corpus cannot yield at least one fragment.
var ErrTooFew = errors.New("fragment count below one")

// IDPrefix names fragments Known1..Knownk.
const IDPrefix = "Known"

// Count derives the fragment count from the lengths, in code points, of the known
// corpus and the disputed text, so each fragment is about as long as the disputed text.
func Count(knownRunes, disputedRunes int) (int, error) {
	if disputedRunes <= 0 {
		return 0, fmt.Errorf("%w: disputed text is empty", ErrTooFew)
	}
	k := knownRunes / disputedRunes
	if k < 1 {
		return 0, fmt.Errorf("%w: known corpus (%d chars) is shorter than the disputed text (%d chars)", ErrTooFew, knownRunes, disputedRunes)
	}
	return k, nil
}

// Split cuts text into exactly k fragments of floor(words/k) words each. Words left
// over after k full steps are dropped rather than redistributed.
func Split(text string, k int) ([]model.Fragment, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k=%d", ErrTooFew, k)
	}
	words := strings.Fields(text)
	step := len(words) / k
	if step < 1 {
		return nil, fmt.Errorf("%w: %d words cannot fill %d fragments", ErrTooFew, len(words), k)
	}
	out := make([]model.Fragment, 0, k)
	for i := 0; i < k; i++ {
		start := i * step
		chunk := words[start : start+step]
		out = append(out, model.Fragment{
			ID:    fmt.Sprintf("%s%d", IDPrefix, i+1),
			Index: i,
			Text:  strings.Join(chunk, " "),
			Words: len(chunk),
		})
	}
	return out, nil
}

// Preview returns the first limit words of text followed by an ellipsis.
func Preview(text string, limit int) string {
	words := strings.Fields(text)
	if limit <= 0 || len(words) == 0 {
		return ""
	}
	if len(words) > limit {
		words = words[:limit]
	}
	return strings.Join(words, " ") + "..."
}
