// Package artifact writes the on-disk result set of a run.
package artifact

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/spiauthor/internal/analysis"
	"github.com/verte-zerg/spiauthor/internal/model"
	"github.com/verte-zerg/spiauthor/internal/stats"
)

// FragmentDir holds the fragment texts inside a tag directory.
const FragmentDir = "fragments"

const (
	permDir  = 0o755
	permFile = 0o644
)

// Writer commits run artifacts under Root/<tag>.
type Writer struct {
	Root       string
	PlotWidth  int
	PlotHeight int
}

// Dir returns the directory holding the artifacts of tag.
func (w Writer) Dir(tag string) string {
	return filepath.Join(w.Root, tag)
}

// Write stages every artifact of run in a temporary directory and renames it into
// place, replacing any set previously committed for the same tag. On failure the
// staged files are removed and a prior set is left as it was.
func (w Writer) Write(ctx context.Context, run model.Run) (string, error) {
	if run.Tag == "" {
		return "", fmt.Errorf("%w: run has no tag", analysis.ErrArtifactIO)
	}
	if err := os.MkdirAll(w.Root, permDir); err != nil {
		return "", fmt.Errorf("%w: create results dir: %w", analysis.ErrArtifactIO, err)
	}
	staging, err := os.MkdirTemp(w.Root, ".stage-"+run.Tag+"-*")
	if err != nil {
		return "", fmt.Errorf("%w: create staging dir: %w", analysis.ErrArtifactIO, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(staging)
		}
	}()

	if err := w.stage(ctx, staging, run); err != nil {
		return "", fmt.Errorf("%w: stage %s: %w", analysis.ErrArtifactIO, run.Tag, err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dest := w.Dir(run.Tag)
	if err := replaceDir(staging, dest); err != nil {
		return "", fmt.Errorf("%w: commit %s: %w", analysis.ErrArtifactIO, run.Tag, err)
	}
	committed = true
	return dest, nil
}

// Files lists the artifact paths of tag relative to its directory.
func Files(run model.Run) []string {
	tag := run.Tag
	files := []string{
		"fragments_" + tag + ".csv",
		"disputed_" + tag + ".csv",
		"density_" + tag + ".svg",
		"density_" + tag + ".txt",
		"summary_" + tag + ".txt",
		manifestName(tag),
	}
	for _, f := range run.Fragments {
		files = append(files, filepath.ToSlash(filepath.Join(FragmentDir, f.ID+".txt")))
	}
	return files
}

func (w Writer) stage(ctx context.Context, dir string, run model.Run) error {
	tag := run.Tag
	density := stats.BuildDensity(tag, run.Distribution, run.FragmentZ(), run.DisputedZ)

	steps := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"fragments_" + tag + ".csv", func(out io.Writer) error { return writeFragmentCSV(out, run) }},
		{"disputed_" + tag + ".csv", func(out io.Writer) error { return writeDisputedCSV(out, run) }},
		{"density_" + tag + ".svg", func(out io.Writer) error { return WriteSVG(out, density) }},
		{"density_" + tag + ".txt", func(out io.Writer) error {
			return stats.PlotDensity(out, density, w.plotWidth(), w.PlotHeight)
		}},
		{"summary_" + tag + ".txt", func(out io.Writer) error { return stats.RenderSummary(out, run) }},
		{manifestName(tag), func(out io.Writer) error {
			data, err := yaml.Marshal(NewManifest(run, Files(run)))
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		}},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(dir, step.name), step.write); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	fragDir := filepath.Join(dir, FragmentDir)
	if err := os.MkdirAll(fragDir, permDir); err != nil {
		return err
	}
	for _, f := range run.Fragments {
		if err := ctx.Err(); err != nil {
			return err
		}
		text := f.Text
		if err := writeFile(filepath.Join(fragDir, f.ID+".txt"), func(out io.Writer) error {
			_, err := io.WriteString(out, text)
			return err
		}); err != nil {
			return fmt.Errorf("%s: %w", f.ID, err)
		}
	}
	return nil
}

func (w Writer) plotWidth() int {
	if w.PlotWidth > 0 {
		return w.PlotWidth
	}
	return stats.PlotWidthFor(80)
}

func writeFile(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), permFile)
}

func writeFragmentCSV(out io.Writer, run model.Run) error {
	cw := csv.NewWriter(out)
	if err := cw.Write([]string{"model_tag", "fragment_id", "normalized_spi"}); err != nil {
		return err
	}
	for _, s := range run.Scores {
		if err := cw.Write([]string{run.Tag, s.ID, formatFloat(s.Z)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeDisputedCSV(out io.Writer, run model.Run) error {
	cw := csv.NewWriter(out)
	if err := cw.Write([]string{"model_tag", "normalized_spi"}); err != nil {
		return err
	}
	if err := cw.Write([]string{run.Tag, formatFloat(run.DisputedZ)}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// replaceDir renames staging to dest. An existing dest is moved aside first and
// restored if the final rename fails.
func replaceDir(staging, dest string) error {
	var backup string
	if _, err := os.Stat(dest); err == nil {
		backup = filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".old")
		if err := os.RemoveAll(backup); err != nil {
			return err
		}
		if err := os.Rename(dest, backup); err != nil {
			return err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.Rename(staging, dest); err != nil {
		if backup != "" {
			_ = os.Rename(backup, dest)
		}
		return err
	}
	if backup != "" {
		_ = os.RemoveAll(backup)
	}
	return nil
}
