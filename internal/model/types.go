// Package model defines shared data structures.
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// KeepAll is the TopS sentinel meaning "keep every distinct n-gram".
const KeepAll = 0

// Params holds the two parameters of a model run.
type Params struct {
	N    int
	TopS int
}

// Tag returns the model identifier, e.g. n4_L1000 or n3_LALL.
func (p Params) Tag() string {
	if p.TopS == KeepAll {
		return fmt.Sprintf("n%d_LALL", p.N)
	}
	return fmt.Sprintf("n%d_L%d", p.N, p.TopS)
}

// TopSLabel renders TopS the way it is accepted on the command line.
func (p Params) TopSLabel() string {
	if p.TopS == KeepAll {
		return "none"
	}
	return strconv.Itoa(p.TopS)
}

// ParseParams validates the n-gram length and truncation arguments.
// s accepts a positive integer, or "none"/"all" (any case) for KeepAll.
func ParseParams(nArg, sArg string) (Params, error) {
	n, err := strconv.Atoi(strings.TrimSpace(nArg))
	if err != nil {
		return Params{}, fmt.Errorf("n must be a positive integer, got %q", nArg)
	}
	if n < 1 {
		return Params{}, fmt.Errorf("n must be >= 1, got %d", n)
	}
	s, err := ParseTopS(sArg)
	if err != nil {
		return Params{}, err
	}
	return Params{N: n, TopS: s}, nil
}

// ParseTopS parses the truncation argument.
func ParseTopS(sArg string) (int, error) {
	trimmed := strings.TrimSpace(sArg)
	switch strings.ToLower(trimmed) {
	case "none", "all":
		return KeepAll, nil
	case "":
		return 0, fmt.Errorf("s must be a positive integer or 'none'")
	}
	s, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("s must be a positive integer or 'none', got %q", sArg)
	}
	if s < 1 {
		return 0, fmt.Errorf("s must be >= 1 or 'none', got %d", s)
	}
	return s, nil
}

// Fragment is one word-preserving slice of the known corpus.
type Fragment struct {
	ID    string
	Index int
	Text  string
	Words int
}

// FragmentScore is the raw and normalized SPI of one fragment.
type FragmentScore struct {
	ID      string
	SPI     int
	Z       float64
	Preview string
}

// Population summarizes the fragment SPI scores used for normalization.
type Population struct {
	Mean  float64
	Sigma float64
	Size  int
}

// Z converts a raw SPI score to a z-score against the population.
func (p Population) Z(raw int) float64 {
	return (float64(raw) - p.Mean) / p.Sigma
}

// Verdict is the compatibility judgment for the disputed text.
type Verdict int

// Verdict bands ordered by increasing divergence.
const (
	Compatible Verdict = iota
	Divergent
	SignificantlyDivergent
	StronglyDivergent
)

// String returns the human-readable verdict.
func (v Verdict) String() string {
	switch v {
	case Compatible:
		return "Compatible with author style"
	case Divergent:
		return "Divergent from author style (caution)"
	case SignificantlyDivergent:
		return "Significantly divergent from author style"
	case StronglyDivergent:
		return "Strongly divergent from author style"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// Key returns a stable identifier used in storage and manifests.
func (v Verdict) Key() string {
	switch v {
	case Compatible:
		return "compatible"
	case Divergent:
		return "divergent"
	case SignificantlyDivergent:
		return "significantly_divergent"
	case StronglyDivergent:
		return "strongly_divergent"
	default:
		return "unknown"
	}
}

// ParseVerdict is the inverse of Verdict.Key.
func ParseVerdict(key string) (Verdict, error) {
	for _, v := range []Verdict{Compatible, Divergent, SignificantlyDivergent, StronglyDivergent} {
		if v.Key() == key {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown verdict %q", key)
}

// DistributionKind names the reference curve drawn in the density plot.
type DistributionKind string

// Reference curves.
const (
	StudentT DistributionKind = "t"
	Normal   DistributionKind = "normal"
)

// Distribution is the reference curve for a fragment population.
type Distribution struct {
	Kind DistributionKind
	DF   int
}

// Label returns the plot label for the distribution.
func (d Distribution) Label() string {
	if d.Kind == Normal {
		return "Normal distribution"
	}
	return fmt.Sprintf("Student t distribution (df=%d)", d.DF)
}

// Source describes where an input text came from.
type Source struct {
	Path      string
	Documents []string
	Runes     int
	Words     int
}

// Run is the aggregate result of one parameterized analysis.
type Run struct {
	Params       Params
	Tag          string
	Known        Source
	Disputed     Source
	Fragments    []Fragment
	Scores       []FragmentScore
	KnownProfile int
	DisputedSPI  int
	Population   Population
	DisputedZ    float64
	Verdict      Verdict
	Distribution Distribution
	CreatedAt    time.Time
}

// FragmentZ returns the fragment z-scores in fragment order.
func (r Run) FragmentZ() []float64 {
	out := make([]float64, len(r.Scores))
	for i, s := range r.Scores {
		out[i] = s.Z
	}
	return out
}

// RunSummary is a stored run as listed by the history store.
type RunSummary struct {
	ID            int64
	Tag           string
	N             int
	TopS          int
	KnownPath     string
	DisputedPath  string
	ResultsDir    string
	FragmentCount int
	Mean          float64
	Sigma         float64
	DisputedSPI   int
	DisputedZ     float64
	Verdict       Verdict
	CreatedAt     time.Time
}
