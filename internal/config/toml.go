// Package config provides configuration helpers and TOML parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Inputs InputsConfig `toml:"inputs"`
	Output OutputConfig `toml:"output"`
	Sweep  SweepConfig  `toml:"sweep"`
	Plot   PlotConfig   `toml:"plot"`
}

// InputsConfig maps default input paths.
type InputsConfig struct {
	Known    *string `toml:"known"`
	Disputed *string `toml:"disputed"`
}

// OutputConfig maps where results go.
type OutputConfig struct {
	ResultsDir *string `toml:"results-dir"`
	History    *bool   `toml:"history"`
}

// SweepConfig maps the default parameter grid of the sweep command.
type SweepConfig struct {
	N    []int    `toml:"n"`
	S    []string `toml:"s"`
	Jobs *int     `toml:"jobs"`
}

// PlotConfig maps braille plot settings.
type PlotConfig struct {
	Width  *int  `toml:"width"`
	Height *int  `toml:"height"`
	Color  *bool `toml:"color"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Template is written by EnsureConfig when no config exists yet.
const Template = `# spiauthor configuration

[inputs]
# known = "~/corpus/Known.zip"
# disputed = "~/corpus/Unknown.txt"

[output]
# results-dir = "~/.local/share/spiauthor/results"
# history = true

[sweep]
# n = [3, 4, 5]
# s = ["500", "1000", "none"]
# jobs = 4

[plot]
# width = 72
# height = 12
# color = false
`

// EnsureConfig creates the config file from Template if it does not exist.
// It reports whether the file was created.
func EnsureConfig(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config: %w", err)
	}
	return true, nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
