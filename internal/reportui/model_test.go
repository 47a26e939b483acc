package reportui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/spiauthor/internal/model"
	"github.com/verte-zerg/spiauthor/internal/stats"
)

func testRun() model.Run {
	scores := []model.FragmentScore{
		{ID: "Known1", SPI: 30, Z: -1.26, Preview: "alfa brav char..."},
		{ID: "Known2", SPI: 35, Z: -0.63, Preview: "delt echo foxt..."},
		{ID: "Known3", SPI: 40, Z: 0, Preview: "golf hote indi..."},
		{ID: "Known4", SPI: 45, Z: 0.63, Preview: "juli alfa brav..."},
		{ID: "Known5", SPI: 50, Z: 1.26, Preview: "char delt echo..."},
	}
	return model.Run{
		Params:       model.Params{N: 3, TopS: model.KeepAll},
		Tag:          "n3_LALL",
		Known:        model.Source{Path: "Known.zip", Runes: 499, Words: 100, Documents: []string{"a.txt"}},
		Disputed:     model.Source{Path: "Unknown.txt", Runes: 99, Words: 20},
		Scores:       scores,
		DisputedSPI:  30,
		Population:   model.Population{Mean: 40, Sigma: 7.91, Size: 5},
		DisputedZ:    -1.26,
		Verdict:      model.Compatible,
		Distribution: stats.ChooseDistribution(5),
		CreatedAt:    time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
	}
}

func sized(t *testing.T, m *Model) *Model {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(*Model)
}

func press(m *Model, key string) *Model {
	var msg tea.KeyMsg
	switch key {
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(*Model)
}

func TestViewEmptyBeforeSize(t *testing.T) {
	m := NewModel(testRun(), nil, false)
	if m.View() != "" {
		t.Fatalf("expected empty view before window size")
	}
}

func TestSummaryTab(t *testing.T) {
	m := sized(t, NewModel(testRun(), nil, false))
	view := m.View()
	for _, want := range []string{"Summary", "Fragments", "Density", "Model: n3_LALL", "Compatible with author style", "Disputed z"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q", want)
		}
	}
	if lines := strings.Split(view, "\n"); len(lines) != 40 {
		t.Fatalf("expected 40 lines, got %d", len(lines))
	}
}

func TestSummaryShowsHistoryTrend(t *testing.T) {
	history := []model.RunSummary{{DisputedZ: -1.26}, {DisputedZ: 0.4}, {DisputedZ: -3}}
	out := renderSummary(testRun(), history, 100)
	if !strings.Contains(out, "Disputed z over 3 runs") {
		t.Fatalf("expected trend line, got %q", out)
	}
}

func TestTabNavigationWraps(t *testing.T) {
	m := sized(t, NewModel(testRun(), nil, false))
	m = press(m, "left")
	if m.activeTab != tabDensity {
		t.Fatalf("expected density tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "Student t distribution (df=4) - model n3_LALL") {
		t.Fatalf("expected density plot title in view")
	}
	m = press(m, "right")
	if m.activeTab != tabSummary {
		t.Fatalf("expected summary tab, got %d", m.activeTab)
	}
}

func TestFragmentsFilter(t *testing.T) {
	m := sized(t, NewModel(testRun(), nil, false))
	m = press(m, "right")
	if m.activeTab != tabFragments {
		t.Fatalf("expected fragments tab")
	}
	if !strings.Contains(m.View(), "Known5") {
		t.Fatalf("expected all fragments listed")
	}

	m = press(m, "/")
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	for _, r := range "golf" {
		m = press(m, string(r))
	}
	m = press(m, "enter")
	if m.filterMode {
		t.Fatalf("expected filter mode to end")
	}
	if len(m.visible) != 1 || m.visible[0].ID != "Known3" {
		t.Fatalf("unexpected visible fragments %+v", m.visible)
	}
	if !strings.Contains(m.View(), `filter="golf"`) {
		t.Fatalf("expected active filter in header")
	}

	m = press(m, "/")
	m = press(m, "esc")
	if m.filter != "golf" {
		t.Fatalf("esc should keep the applied filter, got %q", m.filter)
	}
}

func TestFilterQDoesNotQuit(t *testing.T) {
	m := sized(t, NewModel(testRun(), nil, false))
	m = press(m, "right")
	m = press(m, "/")
	m = press(m, "q")
	if !m.filterMode {
		t.Fatalf("q inside the filter must not leave filter mode")
	}
	if m.filterInput.Value() != "q" {
		t.Fatalf("expected q to be typed into the filter, got %q", m.filterInput.Value())
	}
}

func TestFilterScores(t *testing.T) {
	scores := testRun().Scores
	if got := filterScores(scores, ""); len(got) != len(scores) {
		t.Fatalf("empty filter should keep all scores")
	}
	if got := filterScores(scores, "KNOWN4"); len(got) != 1 || got[0].ID != "Known4" {
		t.Fatalf("unexpected match %+v", got)
	}
	if got := filterScores(scores, "alfa"); len(got) != 2 {
		t.Fatalf("expected 2 preview matches, got %d", len(got))
	}
}
