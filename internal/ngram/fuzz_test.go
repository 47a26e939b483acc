package ngram

import (
	"testing"
	"unicode/utf8"
)

func FuzzExtract(f *testing.F) {
	f.Add("the quick brown fox", 3)
	f.Add("", 1)
	f.Add("ñandú", 2)
	f.Add("a", 5)

	f.Fuzz(func(t *testing.T, text string, n int) {
		if n < 1 || n > 16 || !utf8.ValidString(text) {
			return
		}
		grams := Extract(text, n)
		want := utf8.RuneCountInString(text) - n + 1
		if want < 0 {
			want = 0
		}
		if len(grams) != want {
			t.Fatalf("Extract(%q, %d): got %d grams, want %d", text, n, len(grams), want)
		}
		for _, g := range grams {
			if utf8.RuneCountInString(g) != n {
				t.Fatalf("gram %q has length %d, want %d", g, utf8.RuneCountInString(g), n)
			}
		}
		full := Top(text, n, 0)
		if SPI(full, full) != full.Len() {
			t.Fatalf("SPI(p, p) != |p| for %q", text)
		}
	})
}
