package fragment

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func numberedWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return words
}

func TestSplitEvenWords(t *testing.T) {
	words := numberedWords(100)
	frags, err := Split(strings.Join(words, " "), 5)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(frags) != 5 {
		t.Fatalf("expected 5 fragments, got %d", len(frags))
	}
	for i, f := range frags {
		if f.Words != 20 {
			t.Fatalf("fragment %d: expected 20 words, got %d", i, f.Words)
		}
		want := strings.Join(words[i*20:i*20+20], " ")
		if f.Text != want {
			t.Fatalf("fragment %d: unexpected text %q", i, f.Text)
		}
		if f.ID != fmt.Sprintf("Known%d", i+1) {
			t.Fatalf("fragment %d: unexpected id %q", i, f.ID)
		}
	}
}

func TestSplitDropsRemainder(t *testing.T) {
	words := numberedWords(103)
	frags, err := Split(strings.Join(words, " "), 5)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(frags) != 5 {
		t.Fatalf("expected 5 fragments, got %d", len(frags))
	}
	last := strings.Fields(frags[4].Text)
	if last[len(last)-1] != "w99" {
		t.Fatalf("expected last fragment to end at w99, got %q", last[len(last)-1])
	}
}

func TestSplitCollapsesWhitespace(t *testing.T) {
	frags, err := Split("a\tb\n\nc   d", 2)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if frags[0].Text != "a b" || frags[1].Text != "c d" {
		t.Fatalf("unexpected fragments: %+v", frags)
	}
}

func TestSplitRejectsZeroStep(t *testing.T) {
	if _, err := Split("one two", 3); !errors.Is(err, ErrTooFew) {
		t.Fatalf("expected ErrTooFew, got %v", err)
	}
	if _, err := Split("one two", 0); !errors.Is(err, ErrTooFew) {
		t.Fatalf("expected ErrTooFew for k=0, got %v", err)
	}
}

func TestCount(t *testing.T) {
	k, err := Count(1000, 199)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if k != 5 {
		t.Fatalf("expected 5, got %d", k)
	}
	if _, err := Count(100, 101); !errors.Is(err, ErrTooFew) {
		t.Fatalf("expected ErrTooFew, got %v", err)
	}
	if _, err := Count(100, 0); !errors.Is(err, ErrTooFew) {
		t.Fatalf("expected ErrTooFew for empty disputed text, got %v", err)
	}
}

func TestPreview(t *testing.T) {
	text := strings.Join(numberedWords(30), " ")
	got := Preview(text, 20)
	if !strings.HasSuffix(got, "w19...") {
		t.Fatalf("unexpected preview %q", got)
	}
	if Preview("short text", 20) != "short text..." {
		t.Fatalf("unexpected short preview")
	}
}

func FuzzSplit(f *testing.F) {
	f.Add("the quick brown fox jumps over the lazy dog", 3)
	f.Add("a", 1)
	f.Fuzz(func(t *testing.T, text string, k int) {
		if k < 1 || k > 64 {
			return
		}
		frags, err := Split(text, k)
		words := strings.Fields(text)
		if len(words) < k {
			if err == nil {
				t.Fatalf("expected error for %d words and k=%d", len(words), k)
			}
			return
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(frags) != k {
			t.Fatalf("expected %d fragments, got %d", k, len(frags))
		}
		step := len(words) / k
		for _, fr := range frags {
			if fr.Words != step {
				t.Fatalf("fragment %s has %d words, want %d", fr.ID, fr.Words, step)
			}
		}
	})
}
