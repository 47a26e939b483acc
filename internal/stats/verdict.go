package stats

import (
	"math"

	"github.com/verte-zerg/spiauthor/internal/model"
)

const (
	compatibleLimit  = 2.0
	divergentLimit   = 3.0
	significantLimit = 4.0
)

// Classify maps the magnitude of a z-score to a verdict. Each band includes its
// upper bound.
func Classify(z float64) model.Verdict {
	abs := math.Abs(z)
	switch {
	case abs <= compatibleLimit:
		return model.Compatible
	case abs <= divergentLimit:
		return model.Divergent
	case abs <= significantLimit:
		return model.SignificantlyDivergent
	default:
		return model.StronglyDivergent
	}
}
