package analysis

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/spiauthor/internal/fragment"
	"github.com/verte-zerg/spiauthor/internal/model"
	"github.com/verte-zerg/spiauthor/internal/ngram"
)

var vocabulary = []string{"alfa", "brav", "char", "delt", "echo", "foxt", "golf", "hote", "indi", "juli"}

// block cycles through the first period vocabulary words, 20 words in total.
func block(period int) []string {
	words := make([]string, 20)
	for i := range words {
		words[i] = vocabulary[i%period]
	}
	return words
}

// corpus is five 20-word blocks of increasing variety; each block has 5*period
// distinct trigrams, giving fragment SPIs 30, 35, 40, 45 and 50.
func corpus() string {
	var words []string
	for period := 6; period <= 10; period++ {
		words = append(words, block(period)...)
	}
	return strings.Join(words, " ")
}

func inputs(known, disputed string) Inputs {
	return Inputs{
		Known:    Text{Source: model.Source{Path: "known.zip"}, Body: known},
		Disputed: Text{Source: model.Source{Path: "disputed.txt"}, Body: disputed},
	}
}

func TestRunCompatibleWhenDisputedIsAFragment(t *testing.T) {
	disputed := strings.Join(block(6), " ")
	run, err := Run(inputs(corpus(), disputed), model.Params{N: 3, TopS: model.KeepAll}, nil)
	require.NoError(t, err)

	assert.Equal(t, "n3_LALL", run.Tag)
	require.Len(t, run.Scores, 5)
	for i, s := range run.Scores {
		assert.Equal(t, fmt.Sprintf("Known%d", i+1), s.ID)
		assert.Equal(t, 30+5*i, s.SPI)
	}
	assert.InDelta(t, 40.0, run.Population.Mean, 1e-9)
	assert.InDelta(t, math.Sqrt(62.5), run.Population.Sigma, 1e-9)
	assert.Equal(t, 30, run.DisputedSPI)
	assert.InDelta(t, -10/math.Sqrt(62.5), run.DisputedZ, 1e-9)
	assert.Equal(t, model.Compatible, run.Verdict)
	assert.Equal(t, model.Distribution{Kind: model.StudentT, DF: 4}, run.Distribution)
	assert.Equal(t, 499, run.Known.Runes)
	assert.Equal(t, 99, run.Disputed.Runes)
	assert.True(t, strings.HasSuffix(run.Scores[0].Preview, "..."))
}

func TestRunZeroOverlapIsStronglyDivergent(t *testing.T) {
	disputed := strings.TrimSpace(strings.Repeat("qqqq ", 20))
	run, err := Run(inputs(corpus(), disputed), model.Params{N: 3, TopS: model.KeepAll}, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, run.DisputedSPI)
	assert.InDelta(t, -40/math.Sqrt(62.5), run.DisputedZ, 1e-9)
	assert.Equal(t, model.StronglyDivergent, run.Verdict)
}

func TestRunFragmentScoresEqualOwnProfile(t *testing.T) {
	known := strings.Repeat("the quick brown fox ", 50)
	disputed := strings.Repeat("the quick brown fox ", 10)

	k, err := fragment.Count(len([]rune(known)), len([]rune(disputed)))
	require.NoError(t, err)
	assert.Equal(t, 5, k)

	frags, err := fragment.Split(known, k)
	require.NoError(t, err)
	full := ngram.Top(known, 3, model.KeepAll)
	for _, f := range frags {
		own := ngram.Top(f.Text, 3, model.KeepAll)
		assert.Equal(t, own.Len(), ngram.SPI(own, full), f.ID)
	}

	// Identical fragments leave no variance to normalize against.
	_, err = Run(inputs(known, disputed), model.Params{N: 3, TopS: model.KeepAll}, nil)
	assert.ErrorIs(t, err, ErrDegenerateDistribution)
	assert.Equal(t, 4, ExitCode(err))
}

func TestRunTruncatedProfiles(t *testing.T) {
	disputed := strings.Join(block(6), " ")
	run, err := Run(inputs(corpus(), disputed), model.Params{N: 3, TopS: 25}, nil)
	if err != nil {
		// A truncated population may collapse; it must then be reported, never NaN.
		assert.True(t, errors.Is(err, ErrDegenerateDistribution), "unexpected error %v", err)
		return
	}
	assert.Equal(t, "n3_L25", run.Tag)
	for _, s := range run.Scores {
		assert.LessOrEqual(t, s.SPI, 25)
		assert.False(t, math.IsNaN(s.Z))
	}
}

func TestValidate(t *testing.T) {
	p := model.Params{N: 3, TopS: model.KeepAll}

	err := Validate(inputs(corpus(), "  \n\t "), p)
	assert.ErrorIs(t, err, ErrInput)

	err = Validate(inputs("", "abc"), p)
	assert.ErrorIs(t, err, ErrInput)

	err = Validate(inputs(corpus(), "ab"), p)
	assert.ErrorIs(t, err, ErrConfiguration)

	err = Validate(inputs(corpus(), "abc"), model.Params{N: 0})
	assert.ErrorIs(t, err, ErrConfiguration)

	assert.NoError(t, Validate(inputs(corpus(), "abc"), p))
}

func TestRunConfigurationErrors(t *testing.T) {
	p := model.Params{N: 3, TopS: model.KeepAll}

	// Known shorter than disputed: no fragments.
	_, err := Run(inputs("short", "a much longer disputed text"), p, nil)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.ErrorIs(t, err, fragment.ErrTooFew)

	// Fragments of one character cannot hold a bigram.
	_, err = Run(inputs("a b c d", "xy"), model.Params{N: 2, TopS: model.KeepAll}, nil)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Equal(t, 3, ExitCode(err))
}

func TestRunSingleFragmentIsInsufficient(t *testing.T) {
	_, err := Run(inputs("one two three four", "five six seven"), model.Params{N: 2, TopS: model.KeepAll}, nil)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{fmt.Errorf("load: %w", ErrInput), 2},
		{fmt.Errorf("k: %w", ErrConfiguration), 3},
		{fmt.Errorf("fit: %w", ErrInsufficientData), 4},
		{fmt.Errorf("commit: %w", ErrArtifactIO), 5},
		{&fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, 5},
		{errors.New("boom"), 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExitCode(tc.err), "%v", tc.err)
	}
	assert.Equal(t, CodeData, Classify(ErrDegenerateDistribution))
}
