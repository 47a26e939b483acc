// Package stats contains statistics calculations and reporting.
package stats

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/spiauthor/internal/model"
)

var (
	// ErrInsufficientData is returned when fewer than two scores are available.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrDegenerateDistribution is returned when every score is identical.
	ErrDegenerateDistribution = errors.New("degenerate distribution")
)

// Fit computes the mean and sample standard deviation (ddof=1) of scores.
func Fit(scores []int) (model.Population, error) {
	if len(scores) < 2 {
		return model.Population{}, fmt.Errorf("%w: need at least 2 fragment scores, got %d", ErrInsufficientData, len(scores))
	}
	var sum float64
	for _, s := range scores {
		sum += float64(s)
	}
	mean := sum / float64(len(scores))
	var ss float64
	for _, s := range scores {
		d := float64(s) - mean
		ss += d * d
	}
	sigma := math.Sqrt(ss / float64(len(scores)-1))
	if sigma == 0 || math.IsNaN(sigma) {
		return model.Population{}, fmt.Errorf("%w: all %d fragment scores equal %d", ErrDegenerateDistribution, len(scores), scores[0])
	}
	return model.Population{Mean: mean, Sigma: sigma, Size: len(scores)}, nil
}

// Normalize returns (raw-mean)/sigma.
func Normalize(raw, mean, sigma float64) float64 {
	return (raw - mean) / sigma
}

// MeanStd returns the mean and sample standard deviation of values.
// It returns zeros when fewer than two values are given.
func MeanStd(values []float64) (float64, float64) {
	if len(values) < 2 {
		if len(values) == 1 {
			return values[0], 0
		}
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(ss / float64(len(values)-1))
}
