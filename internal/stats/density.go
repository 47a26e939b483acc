package stats

import (
	"math"

	"github.com/verte-zerg/spiauthor/internal/model"
)

const (
	// normalThreshold is the largest fragment count still drawn against a t curve.
	normalThreshold = 50
	curveSamples    = 500
	curveMargin     = 2.0
)

// ChooseDistribution picks the reference curve for k fragments: Student t with
// k-1 degrees of freedom up to 50 fragments, the standard normal above that.
func ChooseDistribution(k int) model.Distribution {
	if k > normalThreshold {
		return model.Distribution{Kind: model.Normal}
	}
	return model.Distribution{Kind: model.StudentT, DF: k - 1}
}

// PDF evaluates the density of d at x.
func PDF(d model.Distribution, x float64) float64 {
	if d.Kind == model.Normal || d.DF < 1 {
		return NormalPDF(x)
	}
	return StudentTPDF(x, float64(d.DF))
}

// NormalPDF is the standard normal density.
func NormalPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

// StudentTPDF is the Student t density with df degrees of freedom.
func StudentTPDF(x, df float64) float64 {
	a, _ := math.Lgamma((df + 1) / 2)
	b, _ := math.Lgamma(df / 2)
	logNorm := a - b - 0.5*math.Log(df*math.Pi)
	return math.Exp(logNorm - (df+1)/2*math.Log1p(x*x/df))
}

// Linspace returns count evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, count int) []float64 {
	if count <= 0 {
		return nil
	}
	if count == 1 {
		return []float64{lo}
	}
	out := make([]float64, count)
	step := (hi - lo) / float64(count-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[count-1] = hi
	return out
}

// Point is a position on the density plot.
type Point struct {
	X float64
	Y float64
}

// Density holds everything needed to draw the density plot of a run.
type Density struct {
	Title        string
	Distribution model.Distribution
	Curve        []Point
	Fragments    []Point
	Disputed     Point
}

// BuildDensity samples the reference curve over [min(z)-2, max(z)+2], widened to
// keep the disputed text in view, and places the fragments and the disputed text on it.
func BuildDensity(tag string, dist model.Distribution, fragmentZ []float64, disputedZ float64) Density {
	lo, hi := disputedZ, disputedZ
	for _, z := range fragmentZ {
		lo = math.Min(lo, z)
		hi = math.Max(hi, z)
	}
	lo -= curveMargin
	hi += curveMargin

	xs := Linspace(lo, hi, curveSamples)
	curve := make([]Point, len(xs))
	for i, x := range xs {
		curve[i] = Point{X: x, Y: PDF(dist, x)}
	}
	frags := make([]Point, len(fragmentZ))
	for i, z := range fragmentZ {
		frags[i] = Point{X: z, Y: PDF(dist, z)}
	}
	return Density{
		Title:        dist.Label() + " - model " + tag,
		Distribution: dist,
		Curve:        curve,
		Fragments:    frags,
		Disputed:     Point{X: disputedZ, Y: PDF(dist, disputedZ)},
	}
}

// Bounds returns the x range and the highest y value of the plot.
func (d Density) Bounds() (xmin, xmax, ymax float64) {
	xmin, xmax = math.Inf(1), math.Inf(-1)
	for _, p := range d.Curve {
		xmin = math.Min(xmin, p.X)
		xmax = math.Max(xmax, p.X)
		ymax = math.Max(ymax, p.Y)
	}
	points := make([]Point, 0, len(d.Fragments)+1)
	points = append(points, d.Fragments...)
	points = append(points, d.Disputed)
	for _, p := range points {
		xmin = math.Min(xmin, p.X)
		xmax = math.Max(xmax, p.X)
		ymax = math.Max(ymax, p.Y)
	}
	if math.IsInf(xmin, 1) {
		xmin, xmax = -1, 1
	}
	if xmax-xmin < 1e-9 {
		xmin--
		xmax++
	}
	if ymax <= 0 {
		ymax = 1
	}
	return xmin, xmax, ymax
}
