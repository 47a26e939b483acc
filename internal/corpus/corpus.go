// Package corpus loads the known corpus and the disputed text from disk.
package corpus

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/verte-zerg/spiauthor/internal/analysis"
	"github.com/verte-zerg/spiauthor/internal/model"
)

// Separator joins the documents of a corpus.
const Separator = " "

type document struct {
	name string
	text string
}

// LoadKnown reads the known corpus at p: a .zip archive, a directory, or a single
// document. Documents are ordered by name and joined by Separator.
func LoadKnown(p string) (analysis.Text, error) {
	info, err := os.Stat(p)
	if err != nil {
		return analysis.Text{}, fmt.Errorf("%w: known corpus: %w", analysis.ErrInput, err)
	}
	var docs []document
	switch {
	case info.IsDir():
		docs, err = loadDir(p)
	case strings.EqualFold(filepath.Ext(p), ".zip"):
		docs, err = loadZip(p)
	default:
		var doc document
		doc, err = loadFile(p)
		docs = []document{doc}
	}
	if err != nil {
		return analysis.Text{}, fmt.Errorf("%w: known corpus %s: %w", analysis.ErrInput, p, err)
	}
	if len(docs) == 0 {
		return analysis.Text{}, fmt.Errorf("%w: known corpus %s contains no supported documents (%s)", analysis.ErrInput, p, strings.Join(Extensions(), ", "))
	}
	return join(p, docs), nil
}

// LoadDisputed reads the single disputed document at p.
func LoadDisputed(p string) (analysis.Text, error) {
	info, err := os.Stat(p)
	if err != nil {
		return analysis.Text{}, fmt.Errorf("%w: disputed text: %w", analysis.ErrInput, err)
	}
	if info.IsDir() {
		return analysis.Text{}, fmt.Errorf("%w: disputed text %s is a directory", analysis.ErrInput, p)
	}
	doc, err := loadFile(p)
	if err != nil {
		return analysis.Text{}, fmt.Errorf("%w: disputed text %s: %w", analysis.ErrInput, p, err)
	}
	return join(p, []document{doc}), nil
}

func join(p string, docs []document) analysis.Text {
	names := make([]string, len(docs))
	texts := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.name
		texts[i] = d.text
	}
	return analysis.Text{
		Source: model.Source{Path: p, Documents: names},
		Body:   strings.Join(texts, Separator),
	}
}

func loadFile(p string) (document, error) {
	raw, err := os.ReadFile(p)
	if err != nil {
		return document{}, err
	}
	name := filepath.Base(p)
	text, err := decode(name, raw)
	if err != nil {
		return document{}, err
	}
	return document{name: name, text: text}, nil
}

func loadDir(root string) ([]document, error) {
	var names []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if skipped(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && Supported(rel) {
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	docs := make([]document, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
		if err != nil {
			return nil, err
		}
		text, err := decode(name, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, document{name: name, text: text})
	}
	return docs, nil
}

func loadZip(p string) ([]document, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer func() {
		if cerr := zr.Close(); cerr != nil {
			_ = cerr
		}
	}()

	files := make([]*zip.File, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || skipped(f.Name) || !Supported(f.Name) {
			continue
		}
		files = append(files, f)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	docs := make([]document, 0, len(files))
	for _, f := range files {
		raw, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		text, err := decode(f.Name, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, document{name: f.Name, text: text})
	}
	return docs, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return raw, nil
}

// skipped reports whether an archive or directory entry is metadata rather than a document.
func skipped(name string) bool {
	for _, part := range strings.Split(strings.Trim(name, "/"), "/") {
		if part == "__MACOSX" || strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// Supported reports whether name has a document extension the loader can read.
func Supported(name string) bool {
	_, ok := decoders[strings.ToLower(path.Ext(name))]
	return ok
}

// Extensions lists the supported document extensions.
func Extensions() []string {
	out := make([]string, 0, len(decoders))
	for ext := range decoders {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}
