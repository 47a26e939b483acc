package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/spiauthor/internal/model"
)

func TestChooseDistribution(t *testing.T) {
	assert.Equal(t, model.Distribution{Kind: model.StudentT, DF: 49}, ChooseDistribution(50))
	assert.Equal(t, model.Distribution{Kind: model.Normal}, ChooseDistribution(51))
	assert.Equal(t, model.Distribution{Kind: model.StudentT, DF: 1}, ChooseDistribution(2))
}

func TestPDFValues(t *testing.T) {
	assert.InDelta(t, 1/math.Sqrt(2*math.Pi), NormalPDF(0), 1e-12)
	// Cauchy peak.
	assert.InDelta(t, 1/math.Pi, StudentTPDF(0, 1), 1e-12)
	// Large df approaches the normal.
	assert.InDelta(t, NormalPDF(1.3), StudentTPDF(1.3, 1e6), 1e-5)
	assert.Equal(t, NormalPDF(0.5), PDF(model.Distribution{Kind: model.Normal}, 0.5))
}

func TestStudentTIntegratesToOne(t *testing.T) {
	xs := Linspace(-60, 60, 200001)
	step := xs[1] - xs[0]
	var area float64
	for _, x := range xs {
		area += StudentTPDF(x, 4) * step
	}
	assert.InDelta(t, 1.0, area, 1e-3)
}

func TestLinspace(t *testing.T) {
	xs := Linspace(-1, 1, 5)
	assert.Equal(t, []float64{-1, -0.5, 0, 0.5, 1}, xs)
	assert.Nil(t, Linspace(0, 1, 0))
	assert.Equal(t, []float64{3}, Linspace(3, 9, 1))
}

func TestBuildDensity(t *testing.T) {
	dist := ChooseDistribution(4)
	d := BuildDensity("n4_L1000", dist, []float64{-1, -0.5, 0.5, 1}, 0.2)
	require.Len(t, d.Curve, 500)
	assert.InDelta(t, -3.0, d.Curve[0].X, 1e-12)
	assert.InDelta(t, 3.0, d.Curve[len(d.Curve)-1].X, 1e-12)
	assert.Equal(t, "Student t distribution (df=3) - model n4_L1000", d.Title)
	require.Len(t, d.Fragments, 4)
	assert.InDelta(t, PDF(dist, 0.2), d.Disputed.Y, 1e-12)
}

func TestBuildDensityWidensForDisputed(t *testing.T) {
	d := BuildDensity("n3_LALL", ChooseDistribution(3), []float64{-1, 0, 1}, 7.5)
	xmin, xmax, ymax := d.Bounds()
	assert.InDelta(t, -3.0, xmin, 1e-12)
	assert.InDelta(t, 9.5, xmax, 1e-12)
	assert.Greater(t, ymax, 0.0)
}
