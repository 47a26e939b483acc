// Package analysis runs the SPI attribution pipeline over loaded texts.
package analysis

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/spiauthor/internal/fragment"
	"github.com/verte-zerg/spiauthor/internal/model"
	"github.com/verte-zerg/spiauthor/internal/ngram"
	"github.com/verte-zerg/spiauthor/internal/stats"
)

// PreviewWords is the number of words kept in a fragment preview.
const PreviewWords = 20

// Text is one loaded input with its origin.
type Text struct {
	Source model.Source
	Body   string
}

// Inputs are the two texts of a run.
type Inputs struct {
	Known    Text
	Disputed Text
}

// Validate checks params and inputs before any computation.
func Validate(in Inputs, p model.Params) error {
	if p.N < 1 {
		return fmt.Errorf("%w: n must be >= 1, got %d", ErrConfiguration, p.N)
	}
	if p.TopS < 0 {
		return fmt.Errorf("%w: s must be >= 1 or keep-all, got %d", ErrConfiguration, p.TopS)
	}
	if strings.TrimSpace(in.Known.Body) == "" {
		return fmt.Errorf("%w: known corpus %q is empty", ErrInput, in.Known.Source.Path)
	}
	if strings.TrimSpace(in.Disputed.Body) == "" {
		return fmt.Errorf("%w: disputed text %q is empty", ErrInput, in.Disputed.Source.Path)
	}
	if runes := utf8.RuneCountInString(in.Disputed.Body); p.N > runes {
		return fmt.Errorf("%w: n=%d exceeds disputed text length (%d chars)", ErrConfiguration, p.N, runes)
	}
	return nil
}

// Run computes the normalized SPI of the disputed text against fragments of the
// known corpus. It performs no I/O; logger may be nil.
func Run(in Inputs, p model.Params, logger *slog.Logger) (model.Run, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := Validate(in, p); err != nil {
		return model.Run{}, err
	}
	tag := p.Tag()
	logger = logger.With("tag", tag)

	known := describe(in.Known)
	disputed := describe(in.Disputed)

	k, err := fragment.Count(known.Runes, disputed.Runes)
	if err != nil {
		return model.Run{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	frags, err := fragment.Split(in.Known.Body, k)
	if err != nil {
		return model.Run{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	logger.Debug("fragmented known corpus", "fragment_size", disputed.Runes, "fragments", k, "words_per_fragment", frags[0].Words)

	for _, f := range frags {
		if runes := utf8.RuneCountInString(f.Text); p.N > runes {
			return model.Run{}, fmt.Errorf("%w: n=%d exceeds fragment %s length (%d chars)", ErrConfiguration, p.N, f.ID, runes)
		}
	}

	knownProfile := ngram.Top(in.Known.Body, p.N, p.TopS)
	raw := make([]int, len(frags))
	for i, f := range frags {
		raw[i] = ngram.SPI(ngram.Top(f.Text, p.N, p.TopS), knownProfile)
	}
	disputedSPI := ngram.SPI(ngram.Top(in.Disputed.Body, p.N, p.TopS), knownProfile)
	logger.Debug("scored", "known_profile", knownProfile.Len(), "disputed_spi", disputedSPI)

	pop, err := stats.Fit(raw)
	if err != nil {
		return model.Run{}, fmt.Errorf("model %s: %w", tag, err)
	}

	scores := make([]model.FragmentScore, len(frags))
	for i, f := range frags {
		scores[i] = model.FragmentScore{
			ID:      f.ID,
			SPI:     raw[i],
			Z:       pop.Z(raw[i]),
			Preview: fragment.Preview(f.Text, PreviewWords),
		}
	}
	disputedZ := pop.Z(disputedSPI)
	verdict := stats.Classify(disputedZ)
	logger.Debug("classified", "mean", pop.Mean, "sigma", pop.Sigma, "z", disputedZ, "verdict", verdict.Key())

	return model.Run{
		Params:       p,
		Tag:          tag,
		Known:        known,
		Disputed:     disputed,
		Fragments:    frags,
		Scores:       scores,
		KnownProfile: knownProfile.Len(),
		DisputedSPI:  disputedSPI,
		Population:   pop,
		DisputedZ:    disputedZ,
		Verdict:      verdict,
		Distribution: stats.ChooseDistribution(k),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func describe(t Text) model.Source {
	src := t.Source
	src.Runes = utf8.RuneCountInString(t.Body)
	src.Words = len(strings.Fields(t.Body))
	return src
}
