package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/spiauthor/internal/model"
)

func sampleRun() model.Run {
	return model.Run{
		Params: model.Params{N: 4, TopS: 1000},
		Tag:    "n4_L1000",
		Scores: []model.FragmentScore{
			{ID: "Known1", SPI: 800, Z: -1.0, Preview: "one two..."},
			{ID: "Known2", SPI: 820, Z: 0.0, Preview: "three four..."},
			{ID: "Known3", SPI: 840, Z: 1.0, Preview: "five six..."},
		},
		DisputedSPI:  700,
		DisputedZ:    -6.0,
		Population:   model.Population{Mean: 820, Sigma: 20, Size: 3},
		Verdict:      model.StronglyDivergent,
		Distribution: model.Distribution{Kind: model.StudentT, DF: 2},
	}
}

func TestRenderSummary(t *testing.T) {
	got := SummaryText(sampleRun())
	want := strings.Join([]string{
		"SPI normalized summary - model n4_L1000",
		"- SPI_normalized(disputed): -6.00",
		"- Fragment mean: 820.00",
		"- Standard deviation: 20.00",
		"- Fragments: 3 (Student t distribution (df=2))",
		"- Verdict: Strongly divergent from author style",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderFragmentTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderFragmentTable(&buf, sampleRun()))
	lines := strings.Split(buf.String(), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "Fragment"))
	assert.Contains(t, lines[1], "Known1")
	assert.Contains(t, lines[1], "-1.00")
	assert.True(t, strings.HasPrefix(lines[4], "Disputed"))
	assert.Contains(t, lines[4], "-6.00")
}

func TestRenderExtremes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderExtremes(&buf, sampleRun(), 1))
	out := buf.String()
	assert.Contains(t, out, "Lowest z: Known1 (-1.00)")
	assert.Contains(t, out, "Highest z: Known3 (1.00)")
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHistory(&buf, nil))
	assert.Equal(t, "No runs found.\n", buf.String())

	buf.Reset()
	runs := []model.RunSummary{
		{ID: 2, Tag: "n4_L1000", FragmentCount: 12, DisputedZ: 0.4, Verdict: model.Compatible, CreatedAt: time.Unix(200, 0)},
		{ID: 1, Tag: "n3_LALL", FragmentCount: 12, DisputedZ: -2.5, Verdict: model.Divergent, CreatedAt: time.Unix(100, 0)},
	}
	require.NoError(t, RenderHistory(&buf, runs))
	out := buf.String()
	assert.Contains(t, out, "n4_L1000")
	assert.Contains(t, out, "Compatible with author style")
	assert.Contains(t, out, "Disputed z trend")
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "", Sparkline(nil))
	assert.Equal(t, "+++", Sparkline([]float64{1, 1, 1}))
	assert.Equal(t, " @", Sparkline([]float64{0, 1}))
}
