package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Inputs.Known != nil || cfg.Output.History != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[inputs]
known = "/corpus/Known.zip"

[output]
history = false

[sweep]
n = [3, 4]
s = ["500", "none"]
jobs = 2

[plot]
height = 16
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Inputs.Known == nil || *cfg.Inputs.Known != "/corpus/Known.zip" {
		t.Fatalf("unexpected known: %v", cfg.Inputs.Known)
	}
	if cfg.Inputs.Disputed != nil {
		t.Fatalf("expected disputed unset")
	}
	if cfg.Output.History == nil || *cfg.Output.History {
		t.Fatalf("expected history=false")
	}
	if len(cfg.Sweep.N) != 2 || cfg.Sweep.S[1] != "none" || *cfg.Sweep.Jobs != 2 {
		t.Fatalf("unexpected sweep config %+v", cfg.Sweep)
	}
	if cfg.Plot.Height == nil || *cfg.Plot.Height != 16 || cfg.Plot.Width != nil {
		t.Fatalf("unexpected plot config %+v", cfg.Plot)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[output]\nresults = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "output.results") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestEnsureConfigWritesParsableTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spiauthor", "config.toml")
	created, err := EnsureConfig(path)
	if err != nil || !created {
		t.Fatalf("EnsureConfig: created=%v err=%v", created, err)
	}
	created, err = EnsureConfig(path)
	if err != nil || created {
		t.Fatalf("second EnsureConfig: created=%v err=%v", created, err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "spiauthor", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "spiauthor", "history.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultResultsDir(); got != filepath.Join("/data", "spiauthor", "results") {
		t.Fatalf("unexpected results dir %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := ExpandHome("~/corpus"); got != filepath.Join("/home/tester", "corpus") {
		t.Fatalf("unexpected expansion %q", got)
	}
	if got := ExpandHome("/abs"); got != "/abs" {
		t.Fatalf("unexpected expansion %q", got)
	}
}
