package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Column describes one table column. Right aligns cells to the column's right edge.
type Column struct {
	Title string
	Right bool
}

// Left and Right build columns for the common cases.
func Left(title string) Column  { return Column{Title: title} }
func Right(title string) Column { return Column{Title: title, Right: true} }

// RenderTable writes rows under cols, padded to the widest cell of each column
// in terminal cells. Missing cells render empty; extra cells are dropped.
func RenderTable(w io.Writer, cols []Column, rows [][]string) error {
	for _, line := range layoutTable(cols, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func layoutTable(cols []Column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = runewidth.StringWidth(col.Title)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(cols); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	titles := make([]string, len(cols))
	for i, col := range cols {
		titles[i] = col.Title
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, joinCells(cols, widths, titles))
	for _, row := range rows {
		lines = append(lines, joinCells(cols, widths, row))
	}
	return lines
}

func joinCells(cols []Column, widths []int, cells []string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if col.Right {
			parts[i] = runewidth.FillLeft(cell, widths[i])
		} else {
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}
