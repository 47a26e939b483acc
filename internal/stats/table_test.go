package stats

import (
	"bytes"
	"testing"
)

func TestLayoutTableAlignsColumns(t *testing.T) {
	cols := []Column{Left("Fragment"), Right("SPI"), Right("z")}
	rows := [][]string{
		{"Known1", "812", "-0.53"},
		{"Known10", "7", "1.20"},
	}

	lines := layoutTable(cols, rows)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Fragment SPI     z" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Known1   812 -0.53" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Known10    7  1.20" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestLayoutTableWideRunes(t *testing.T) {
	lines := layoutTable([]Column{Left("Tag"), Left("Note")}, [][]string{{"文字", "x"}})
	if lines[1] != "文字 x" {
		t.Fatalf("unexpected wide-rune row: %q", lines[1])
	}
}

func TestLayoutTableRaggedRows(t *testing.T) {
	lines := layoutTable([]Column{Left("A"), Right("B")}, [][]string{{"x"}, {"y", "10", "extra"}})
	if lines[1] != "x" {
		t.Fatalf("unexpected short row: %q", lines[1])
	}
	if lines[2] != "y 10" {
		t.Fatalf("unexpected long row: %q", lines[2])
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTable(&buf, []Column{Left("A")}, [][]string{{"1"}}); err != nil {
		t.Fatalf("RenderTable failed: %v", err)
	}
	if buf.String() != "A\n1\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
