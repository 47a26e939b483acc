package analysis

import (
	"context"
	"errors"
	"io/fs"

	"github.com/verte-zerg/spiauthor/internal/stats"
)

var (
	// ErrInput marks unreadable, missing or empty inputs.
	ErrInput = errors.New("input error")
	// ErrConfiguration marks parameters that cannot produce a valid fragment population.
	ErrConfiguration = errors.New("configuration error")
	// ErrInsufficientData is returned when fewer than two fragments are scored.
	ErrInsufficientData = stats.ErrInsufficientData
	// ErrDegenerateDistribution is returned when every fragment scores the same.
	ErrDegenerateDistribution = stats.ErrDegenerateDistribution
	// ErrArtifactIO marks failures while staging or committing artifacts.
	ErrArtifactIO = errors.New("artifact i/o error")
)

// Code is a coarse error category used for exit codes and log fields.
type Code string

const (
	CodeUnknown       Code = "unknown"
	CodeInput         Code = "input"
	CodeConfiguration Code = "configuration"
	CodeData          Code = "data"
	CodeIO            Code = "io"
	CodeCancel        Code = "cancel"
)

// Classify maps err to a Code using sentinels only.
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	switch {
	case errors.Is(err, ErrInput):
		return CodeInput
	case errors.Is(err, ErrConfiguration):
		return CodeConfiguration
	case errors.Is(err, ErrInsufficientData), errors.Is(err, ErrDegenerateDistribution):
		return CodeData
	case errors.Is(err, ErrArtifactIO):
		return CodeIO
	}
	var perr *fs.PathError
	if errors.As(err, &perr) {
		return CodeIO
	}
	return CodeUnknown
}

// ExitCode returns the process exit status for err.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch Classify(err) {
	case CodeInput:
		return 2
	case CodeConfiguration:
		return 3
	case CodeData:
		return 4
	case CodeIO:
		return 5
	default:
		return 1
	}
}
