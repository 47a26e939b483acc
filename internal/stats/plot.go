package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

type lineStyle struct {
	name   string
	period int
	on     int
}

type ansiColor struct {
	name string
	code string
}

type plotLayer struct {
	name  string
	style lineStyle
	color ansiColor
}

const (
	defaultPlotHeight   = 12
	minPlotWidth        = 10
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var (
	solidLine  = lineStyle{name: "solid", period: 1, on: 1}
	dashedLine = lineStyle{name: "dashed", period: 6, on: 3}
	dottedLine = lineStyle{name: "dotted", period: 4, on: 1}
	markerDots = lineStyle{name: "markers", period: 1, on: 1}
)

var (
	colorCyan   = ansiColor{name: "cyan", code: "\x1b[36m"}
	colorYellow = ansiColor{name: "yellow", code: "\x1b[33m"}
	colorRed    = ansiColor{name: "red", code: "\x1b[31m"}
	colorGray   = ansiColor{name: "gray", code: "\x1b[90m"}
)

// Layer order is draw priority: the first layer owning a cell picks its colour.
const (
	layerDisputed = iota
	layerFragments
	layerCurve
	layerZero
	layerCount
)

// PlotDensity renders the density plot as braille text.
func PlotDensity(w io.Writer, d Density, width, height int) error {
	return plotDensity(w, d, width, height, false)
}

// PlotDensityWithColor renders the density plot with optional forced color output.
func PlotDensityWithColor(w io.Writer, d Density, width, height int, forceColor bool) error {
	return plotDensity(w, d, width, height, forceColor)
}

func plotDensity(w io.Writer, d Density, width, height int, forceColor bool) error {
	if len(d.Curve) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	layers := []plotLayer{
		layerDisputed:  {name: "Disputed", style: dottedLine, color: colorRed},
		layerFragments: {name: "Fragments", style: markerDots, color: colorYellow},
		layerCurve:     {name: d.Distribution.Label(), style: solidLine, color: colorCyan},
		layerZero:      {name: "z = 0", style: dashedLine, color: colorGray},
	}

	xmin, xmax, ymax := d.Bounds()
	dotsX := width * 2
	dotsY := height * 4
	toX := func(x float64) int {
		return valueToCol(x, xmin, xmax, dotsX)
	}
	toY := func(y float64) int {
		return valueToRow(y, 0, ymax, dotsY)
	}

	cells := make([][][]uint8, layerCount)
	for i := range cells {
		cells[i] = makeCells(height, width)
	}

	if xmin <= 0 && xmax >= 0 {
		zx := toX(0)
		for y := 0; y < dotsY; y++ {
			if layers[layerZero].style.shouldPlot(y) {
				setBrailleDot(cells[layerZero], zx, y)
			}
		}
	}

	prevX, prevY := -1, -1
	for _, p := range d.Curve {
		px, py := toX(p.X), toY(p.Y)
		if prevX >= 0 {
			drawLine(prevX, prevY, px, py, func(dx, dy int) {
				setBrailleDot(cells[layerCurve], dx, dy)
			})
		} else {
			setBrailleDot(cells[layerCurve], px, py)
		}
		prevX, prevY = px, py
	}

	for _, p := range d.Fragments {
		plotMarker(cells[layerFragments], toX(p.X), toY(p.Y))
	}

	dx := toX(d.Disputed.X)
	for y := 0; y < dotsY; y++ {
		if layers[layerDisputed].style.shouldPlot(y) {
			setBrailleDot(cells[layerDisputed], dx, y)
		}
	}
	plotMarker(cells[layerDisputed], dx, toY(d.Disputed.Y))

	useColor := shouldUseColor(w, forceColor)
	axisLabels := makeAxisLabels(height, ymax)
	leftAxisWidth := 0
	for _, label := range axisLabels {
		if n := utf8.RuneCountInString(label); n > leftAxisWidth {
			leftAxisWidth = n
		}
	}

	if d.Title != "" {
		if _, err := fmt.Fprintln(w, d.Title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(fmt.Sprintf("%*s%s", leftAxisWidth, axisLabels[y], axisSeparator))
		for x := 0; x < width; x++ {
			mask, layerIdx := composeCell(cells, x, y)
			ch := brailleFromMask(mask)
			if useColor && layerIdx >= 0 {
				row.WriteString(layers[layerIdx].color.code)
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, xAxisLine(leftAxisWidth, width, xmin, xmax)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Disputed: z=%.2f density=%.4f\n", d.Disputed.X, d.Disputed.Y); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderLegend(layers, useColor)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

func plotMarker(cells [][]uint8, x, y int) {
	for _, off := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {-1, 0}, {0, -1}} {
		setBrailleDot(cells, x+off[0], y+off[1])
	}
}

func xAxisLine(leftAxisWidth, width int, xmin, xmax float64) string {
	left := fmt.Sprintf("%.2f", xmin)
	right := fmt.Sprintf("%.2f", xmax)
	gap := width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	prefix := strings.Repeat(" ", leftAxisWidth+utf8.RuneCountInString(axisSeparator))
	return prefix + left + strings.Repeat(" ", gap) + right
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axisWidth := utf8.RuneCountInString(fmt.Sprintf("%.2f", 0.0)) + utf8.RuneCountInString(axisSeparator)
	plotWidth := totalWidth - axisWidth
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func makeAxisLabels(height int, ymax float64) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = fmt.Sprintf("%.2f", ymax)
	if height > 2 {
		labels[height/2] = fmt.Sprintf("%.2f", ymax/2)
	}
	if height > 1 {
		labels[height-1] = fmt.Sprintf("%.2f", 0.0)
	}
	return labels
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func composeCell(layerCells [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	layerIdx := -1
	for i, cells := range layerCells {
		if y < 0 || y >= len(cells) {
			continue
		}
		if x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		if layerIdx == -1 {
			layerIdx = i
		}
		mask |= cellMask
	}
	return mask, layerIdx
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

func valueToCol(v, minVal, maxVal float64, width int) int {
	if width <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	col := int(math.Round(pos * float64(width-1)))
	if col < 0 {
		col = 0
	}
	if col >= width {
		col = width - 1
	}
	return col
}

func valueToRow(v, minVal, maxVal float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	row := int(math.Round((1 - pos) * float64(height-1)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}

func renderLegend(layers []plotLayer, useColor bool) string {
	parts := make([]string, 0, len(layers))
	marker := brailleFromMask(0x1b)
	for _, l := range layers {
		label := fmt.Sprintf("%c %s (%s)", marker, l.name, l.style.name)
		if useColor {
			label = l.color.code + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) {
		return
	}
	if cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
