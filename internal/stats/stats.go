package stats

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/verte-zerg/spiauthor/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the narrative summary of a run.
func RenderSummary(w io.Writer, run model.Run) error {
	lines := []string{
		fmt.Sprintf("SPI normalized summary - model %s", run.Tag),
		fmt.Sprintf("- SPI_normalized(disputed): %.2f", run.DisputedZ),
		fmt.Sprintf("- Fragment mean: %.2f", run.Population.Mean),
		fmt.Sprintf("- Standard deviation: %.2f", run.Population.Sigma),
		fmt.Sprintf("- Fragments: %d (%s)", len(run.Scores), run.Distribution.Label()),
		fmt.Sprintf("- Verdict: %s", run.Verdict),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// SummaryText returns RenderSummary's output as a string.
func SummaryText(run model.Run) string {
	var buf bytes.Buffer
	_ = RenderSummary(&buf, run)
	return buf.String()
}

// RenderFragmentTable prints per-fragment scores, the disputed text last.
func RenderFragmentTable(w io.Writer, run model.Run) error {
	if len(run.Scores) == 0 {
		_, err := fmt.Fprintln(w, "No fragments scored.")
		return err
	}
	cols := []Column{Left("Fragment"), Right("SPI"), Right("z"), Left("Preview")}
	rows := make([][]string, 0, len(run.Scores)+1)
	for _, s := range run.Scores {
		rows = append(rows, []string{s.ID, strconv.Itoa(s.SPI), fmt.Sprintf("%.2f", s.Z), s.Preview})
	}
	rows = append(rows, []string{"Disputed", strconv.Itoa(run.DisputedSPI), fmt.Sprintf("%.2f", run.DisputedZ), ""})
	if err := RenderTable(w, cols, rows); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderExtremes prints the fragments farthest from the mean, up to limit on each side.
func RenderExtremes(w io.Writer, run model.Run, limit int) error {
	if len(run.Scores) == 0 || limit <= 0 {
		return nil
	}
	sorted := make([]model.FragmentScore, len(run.Scores))
	copy(sorted, run.Scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Z < sorted[j].Z
	})
	if limit > len(sorted) {
		limit = len(sorted)
	}
	low := sorted[:limit]
	high := make([]model.FragmentScore, 0, limit)
	for i := len(sorted) - 1; i >= len(sorted)-limit; i-- {
		high = append(high, sorted[i])
	}
	format := func(scores []model.FragmentScore) string {
		parts := make([]string, len(scores))
		for i, s := range scores {
			parts[i] = fmt.Sprintf("%s (%.2f)", s.ID, s.Z)
		}
		return strings.Join(parts, ", ")
	}
	if _, err := fmt.Fprintf(w, "Lowest z: %s\n", format(low)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Highest z: %s\n", format(high)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Spread: %s\n", Sparkline(run.FragmentZ())); err != nil {
		return err
	}
	return nil
}

// RenderHistory prints stored runs, newest first, as an aligned table.
func RenderHistory(w io.Writer, runs []model.RunSummary) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	cols := []Column{
		Right("ID"), Left("When"), Left("Tag"), Right("k"), Right("Mean"),
		Right("Sigma"), Right("SPI"), Right("z"), Left("Verdict"),
	}
	rows := make([][]string, 0, len(runs))
	zs := make([]float64, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Tag,
			strconv.Itoa(r.FragmentCount),
			fmt.Sprintf("%.2f", r.Mean),
			fmt.Sprintf("%.2f", r.Sigma),
			strconv.Itoa(r.DisputedSPI),
			fmt.Sprintf("%.2f", r.DisputedZ),
			r.Verdict.String(),
		})
	}
	for i := len(runs) - 1; i >= 0; i-- {
		zs = append(zs, runs[i].DisputedZ)
	}
	if err := RenderTable(w, cols, rows); err != nil {
		return err
	}
	if len(zs) > 1 {
		if _, err := fmt.Fprintf(w, "\nDisputed z trend (oldest to newest): %s\n", Sparkline(zs)); err != nil {
			return err
		}
	}
	return nil
}
