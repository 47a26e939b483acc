package reportui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapWords breaks text into lines no wider than width display cells. Words wider
// than width are split.
func wrapWords(text string, width int) string {
	words := strings.Fields(text)
	if width <= 0 || len(words) == 0 {
		return strings.Join(words, " ")
	}
	var out strings.Builder
	lineWidth := 0
	for _, word := range words {
		for _, piece := range splitWide(word, width) {
			pieceWidth := runewidth.StringWidth(piece)
			switch {
			case lineWidth == 0:
			case lineWidth+1+pieceWidth > width:
				out.WriteRune('\n')
				lineWidth = 0
			default:
				out.WriteRune(' ')
				lineWidth++
			}
			out.WriteString(piece)
			lineWidth += pieceWidth
		}
	}
	return out.String()
}

func splitWide(word string, width int) []string {
	if runewidth.StringWidth(word) <= width {
		return []string{word}
	}
	var pieces []string
	var cur strings.Builder
	curWidth := 0
	for _, r := range word {
		w := runewidth.RuneWidth(r)
		if curWidth+w > width && curWidth > 0 {
			pieces = append(pieces, cur.String())
			cur.Reset()
			curWidth = 0
		}
		cur.WriteRune(r)
		curWidth += w
	}
	if cur.Len() > 0 {
		pieces = append(pieces, cur.String())
	}
	return pieces
}
