package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/spiauthor/internal/model"
)

// Manifest records the parameters, inputs and statistics of one committed run.
type Manifest struct {
	Tag          string          `yaml:"tag"`
	N            int             `yaml:"n"`
	TopS         string          `yaml:"s"`
	CreatedAt    time.Time       `yaml:"created_at"`
	Known        SourceEntry     `yaml:"known"`
	Disputed     SourceEntry     `yaml:"disputed"`
	KnownProfile int             `yaml:"known_profile_size"`
	Distribution string          `yaml:"distribution"`
	DF           int             `yaml:"df,omitempty"`
	Mean         float64         `yaml:"mean"`
	Sigma        float64         `yaml:"sigma"`
	DisputedSPI  int             `yaml:"disputed_spi"`
	DisputedZ    float64         `yaml:"disputed_z"`
	Verdict      string          `yaml:"verdict"`
	Fragments    []FragmentEntry `yaml:"fragments"`
	Files        []string        `yaml:"files"`
}

// SourceEntry describes one input.
type SourceEntry struct {
	Path      string   `yaml:"path"`
	Documents []string `yaml:"documents,omitempty"`
	Chars     int      `yaml:"chars"`
	Words     int      `yaml:"words"`
}

// FragmentEntry is one scored fragment.
type FragmentEntry struct {
	ID      string  `yaml:"id"`
	Words   int     `yaml:"words"`
	SPI     int     `yaml:"spi"`
	Z       float64 `yaml:"z"`
	Preview string  `yaml:"preview,omitempty"`
}

// NewManifest builds the manifest of run.
func NewManifest(run model.Run, files []string) Manifest {
	m := Manifest{
		Tag:          run.Tag,
		N:            run.Params.N,
		TopS:         run.Params.TopSLabel(),
		CreatedAt:    run.CreatedAt,
		Known:        sourceEntry(run.Known),
		Disputed:     sourceEntry(run.Disputed),
		KnownProfile: run.KnownProfile,
		Distribution: string(run.Distribution.Kind),
		DF:           run.Distribution.DF,
		Mean:         run.Population.Mean,
		Sigma:        run.Population.Sigma,
		DisputedSPI:  run.DisputedSPI,
		DisputedZ:    run.DisputedZ,
		Verdict:      run.Verdict.Key(),
		Files:        files,
	}
	words := make(map[string]int, len(run.Fragments))
	for _, f := range run.Fragments {
		words[f.ID] = f.Words
	}
	for _, s := range run.Scores {
		m.Fragments = append(m.Fragments, FragmentEntry{ID: s.ID, Words: words[s.ID], SPI: s.SPI, Z: s.Z, Preview: s.Preview})
	}
	return m
}

func sourceEntry(s model.Source) SourceEntry {
	return SourceEntry{Path: s.Path, Documents: s.Documents, Chars: s.Runes, Words: s.Words}
}

// Run rebuilds the run described by the manifest. Fragment texts are not included.
func (m Manifest) Run() (model.Run, error) {
	params, err := model.ParseParams(fmt.Sprint(m.N), m.TopS)
	if err != nil {
		return model.Run{}, fmt.Errorf("manifest %s: %w", m.Tag, err)
	}
	verdict, err := model.ParseVerdict(m.Verdict)
	if err != nil {
		return model.Run{}, fmt.Errorf("manifest %s: %w", m.Tag, err)
	}
	run := model.Run{
		Params:       params,
		Tag:          m.Tag,
		Known:        model.Source{Path: m.Known.Path, Documents: m.Known.Documents, Runes: m.Known.Chars, Words: m.Known.Words},
		Disputed:     model.Source{Path: m.Disputed.Path, Documents: m.Disputed.Documents, Runes: m.Disputed.Chars, Words: m.Disputed.Words},
		KnownProfile: m.KnownProfile,
		DisputedSPI:  m.DisputedSPI,
		Population:   model.Population{Mean: m.Mean, Sigma: m.Sigma, Size: len(m.Fragments)},
		DisputedZ:    m.DisputedZ,
		Verdict:      verdict,
		Distribution: model.Distribution{Kind: model.DistributionKind(m.Distribution), DF: m.DF},
		CreatedAt:    m.CreatedAt,
	}
	for i, f := range m.Fragments {
		run.Fragments = append(run.Fragments, model.Fragment{ID: f.ID, Index: i, Words: f.Words})
		run.Scores = append(run.Scores, model.FragmentScore{ID: f.ID, SPI: f.SPI, Z: f.Z, Preview: f.Preview})
	}
	return run, nil
}

// ReadManifest loads the manifest committed for tag under root.
func ReadManifest(root, tag string) (Manifest, error) {
	data, err := os.ReadFile(filepath.Join(root, tag, manifestName(tag)))
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest for %s: %w", tag, err)
	}
	return m, nil
}

func manifestName(tag string) string {
	return "manifest_" + tag + ".yaml"
}
