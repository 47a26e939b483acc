// Package reportui provides the Bubble Tea viewer for a completed run.
package reportui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/spiauthor/internal/model"
	"github.com/verte-zerg/spiauthor/internal/stats"
)

const (
	tabSummary = iota
	tabFragments
	tabDensity
)

const (
	plotHeight    = 14
	detailHeight  = 4
	extremesCount = 3
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

var verdictColors = map[model.Verdict]lipgloss.Color{
	model.Compatible:             lipgloss.Color("#52C41A"),
	model.Divergent:              lipgloss.Color("#C89A3A"),
	model.SignificantlyDivergent: lipgloss.Color("#FA8C16"),
	model.StronglyDivergent:      lipgloss.Color("#FF4D4F"),
}

// Model implements the Bubble Tea run viewer.
type Model struct {
	run     model.Run
	history []model.RunSummary
	density stats.Density
	color   bool
	errMsg  string

	tabs       []string
	activeTab  int
	viewports  []viewport.Model
	fragTable  table.Model
	fragLayout tableLayout
	visible    []model.FragmentScore

	width  int
	height int

	filterMode  bool
	filterInput textinput.Model
	filter      string
}

type tableLayout struct {
	width    int
	height   int
	rowCount int
}

// NewModel constructs a viewer for run. history holds earlier runs of the same
// tag, newest first, and may be empty.
func NewModel(run model.Run, history []model.RunSummary, color bool) *Model {
	m := &Model{
		run:     run,
		history: history,
		color:   color,
		tabs:    []string{"Summary", "Fragments", "Density"},
	}
	m.density = stats.BuildDensity(run.Tag, run.Distribution, run.FragmentZ(), run.DisputedZ)
	m.filterInput = newFilterInput("Filter: ")
	m.fragTable = buildFragmentTable(0, 1)
	m.initViewports()
	m.applyFilter()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			if m.activeTab == tabFragments {
				return m.startFilter()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabFragments {
				m.fragTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabFragments {
				m.fragTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabFragments {
				var cmd tea.Cmd
				m.fragTable, cmd = m.fragTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = "fragment id or words"
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.setFragmentTableSize(m.width, m.tableHeight(vpHeight))
	promptWidth := lipgloss.Width(m.filterInput.Prompt)
	m.filterInput.Width = maxInt(10, m.width-promptWidth-2)
}

func (m *Model) tableHeight(bodyHeight int) int {
	return maxInt(2, bodyHeight-detailHeight)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabFragments {
		m.fragTable.Focus()
	} else {
		m.fragTable.Blur()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	info := padLines(m.renderRunInfo(), m.width)
	return tabs + "\n" + info
}

func (m *Model) renderRunInfo() string {
	filter := "none"
	if m.filter != "" {
		filter = strconv.Quote(m.filter)
	}
	info := fmt.Sprintf("Model: %s  n=%d  s=%s  created=%s  filter=%s",
		m.run.Tag, m.run.Params.N, m.run.Params.TopSLabel(), m.run.CreatedAt.Local().Format("2006-01-02 15:04"), filter)
	return headerStyle.Render(truncateLine(info, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q"
	if m.activeTab == tabFragments {
		help = "Nav: left/right  Select: up/down  Filter: /  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.filterInput.View()
	}
	if m.errMsg != "" {
		return m.renderHelp() + "\n" + errorStyle.Render(m.errMsg)
	}
	return m.renderHelp()
}

func (m *Model) renderBody(height int) string {
	if m.activeTab == tabFragments {
		if len(m.run.Scores) == 0 {
			return fitLines("No fragments scored.", m.width, height)
		}
		if len(m.visible) == 0 {
			return fitLines("No fragments match the filter.", m.width, height)
		}
		view := tableMutedStyle.Render(m.fragTable.View())
		detail := m.renderSelectedFragment()
		return fitLines(view+"\n"+detail, m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderSelectedFragment() string {
	idx := m.fragTable.Cursor()
	if idx < 0 || idx >= len(m.visible) {
		return ""
	}
	s := m.visible[idx]
	title := cardTitleStyle.Render(fmt.Sprintf("%s  SPI=%d  z=%.2f", s.ID, s.SPI, s.Z))
	width := m.width
	if width <= 0 {
		width = 80
	}
	return title + "\n" + wrapWords(s.Preview, width)
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabSummary].SetContent(renderSummary(m.run, m.history, width))
	m.viewports[tabDensity].SetContent(renderDensity(m.run, m.density, width, m.color))
}

func renderSummary(run model.Run, history []model.RunSummary, width int) string {
	cards := []string{
		metricCard("Disputed z", fmt.Sprintf("%.2f", run.DisputedZ)),
		metricCard("Disputed SPI", strconv.Itoa(run.DisputedSPI)),
		metricCard("Fragment mean", fmt.Sprintf("%.2f", run.Population.Mean)),
		metricCard("Std deviation", fmt.Sprintf("%.2f", run.Population.Sigma)),
		metricCard("Fragments", strconv.Itoa(len(run.Scores))),
	}
	var grid string
	if width < 80 {
		grid = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
		grid = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}

	verdict := lipgloss.NewStyle().Bold(true).Foreground(verdictColors[run.Verdict]).Render(run.Verdict.String())
	lines := []string{
		grid,
		"",
		"Verdict: " + verdict,
		headerStyle.Render(run.Distribution.Label()),
		"",
		wrapWords(fmt.Sprintf("Known corpus: %s (%d chars, %d words, %d documents)", run.Known.Path, run.Known.Runes, run.Known.Words, len(run.Known.Documents)), width),
		wrapWords(fmt.Sprintf("Disputed text: %s (%d chars, %d words)", run.Disputed.Path, run.Disputed.Runes, run.Disputed.Words), width),
	}
	if len(history) > 1 {
		zs := make([]float64, 0, len(history))
		for i := len(history) - 1; i >= 0; i-- {
			zs = append(zs, history[i].DisputedZ)
		}
		lines = append(lines, "", headerStyle.Render(fmt.Sprintf("Disputed z over %d runs: %s", len(history), stats.Sparkline(zs))))
	}
	lines = append(lines, "", strings.TrimRight(stats.SummaryText(run), "\n"))
	return strings.Join(lines, "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderDensity(run model.Run, d stats.Density, width int, color bool) string {
	var buf bytes.Buffer
	if err := stats.PlotDensityWithColor(&buf, d, stats.PlotWidthFor(width), plotHeight, color); err != nil {
		return fmt.Sprintf("Failed to render density: %v", err)
	}
	if err := stats.RenderExtremes(&buf, run, extremesCount); err != nil {
		return fmt.Sprintf("Failed to render extremes: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func fragmentColumns(width int) []table.Column {
	previewWidth := maxInt(10, width-8-7-8-4)
	return []table.Column{
		{Title: "Fragment", Width: 8},
		{Title: "SPI", Width: 7},
		{Title: "z", Width: 8},
		{Title: "Preview", Width: previewWidth},
	}
}

func fragmentRows(scores []model.FragmentScore, previewWidth int) []table.Row {
	rows := make([]table.Row, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, table.Row{
			s.ID,
			strconv.Itoa(s.SPI),
			fmt.Sprintf("%.2f", s.Z),
			runewidth.Truncate(s.Preview, previewWidth, "…"),
		})
	}
	return rows
}

func buildFragmentTable(width, height int) table.Model {
	t := table.New(
		table.WithColumns(fragmentColumns(width)),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(fragmentTableStyles())
	return t
}

func fragmentTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// applyFilter recomputes the visible fragments and refreshes the table rows.
func (m *Model) applyFilter() {
	m.visible = filterScores(m.run.Scores, m.filter)
	width := m.width
	if width <= 0 {
		width = 80
	}
	cols := fragmentColumns(width)
	m.fragTable.SetRows(nil)
	m.fragTable.SetColumns(cols)
	m.fragTable.SetRows(fragmentRows(m.visible, cols[len(cols)-1].Width))
	m.fragTable.GotoTop()
	m.fragLayout.rowCount = len(m.visible)
}

func (m *Model) setFragmentTableSize(width, height int) {
	viewportHeight := maxInt(1, height-1)
	if m.fragLayout.width == width && m.fragLayout.height == viewportHeight {
		return
	}
	m.fragLayout.width = width
	m.fragLayout.height = viewportHeight
	cols := fragmentColumns(width)
	m.fragTable.SetRows(nil)
	m.fragTable.SetColumns(cols)
	m.fragTable.SetRows(fragmentRows(m.visible, cols[len(cols)-1].Width))
	m.fragTable.SetWidth(width)
	m.fragTable.SetHeight(viewportHeight)
}

func filterScores(scores []model.FragmentScore, filter string) []model.FragmentScore {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return append([]model.FragmentScore(nil), scores...)
	}
	out := make([]model.FragmentScore, 0, len(scores))
	for _, s := range scores {
		if strings.Contains(strings.ToLower(s.ID), filter) || strings.Contains(strings.ToLower(s.Preview), filter) {
			out = append(out, s)
		}
	}
	return out
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterInput.SetValue(m.filter)
	m.filterInput.CursorEnd()
	return m, m.filterInput.Focus()
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.filter = strings.TrimSpace(m.filterInput.Value())
		m.filterMode = false
		m.filterInput.Blur()
		m.applyFilter()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
