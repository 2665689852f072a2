package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated")
	}
	for _, f := range cfg.Sources.Feeds {
		if f.Category == "" {
			t.Errorf("feed %q missing category", f.URL)
		}
	}

	if cfg.Engine.PicksPerDose != 5 {
		t.Errorf("expected 5 picks per dose, got %d", cfg.Engine.PicksPerDose)
	}
	if cfg.Engine.MinScore != 40 {
		t.Errorf("expected min score 40, got %d", cfg.Engine.MinScore)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Audience != "general" {
		t.Errorf("expected audience 'general', got %q", cfg.Audience)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
engine:
  picks_per_dose: 3
  category_cap: 1
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.Engine.PicksPerDose != 3 {
		t.Errorf("expected 3 picks, got %d", cfg.Engine.PicksPerDose)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.Engine.MinScore != 40 {
		t.Errorf("expected default min score, got %d", cfg.Engine.MinScore)
	}
	if cfg.Generation.OllamaURL != "http://localhost:11434" {
		t.Errorf("expected default ollama_url, got %q", cfg.Generation.OllamaURL)
	}
	if cfg.Schedule.Morning != "0 7 * * *" {
		t.Errorf("expected default morning cron, got %q", cfg.Schedule.Morning)
	}
}

func TestEngineOptions(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	opts := cfg.Engine.Options()
	if opts.K != 5 || opts.CategoryCap != 2 || opts.MinScore != 40 {
		t.Errorf("unexpected engine options: %+v", opts)
	}
	if !opts.RelaxCapWhenUniform {
		t.Error("expected relaxation flag on by default")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated from file")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
