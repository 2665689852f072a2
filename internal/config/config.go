package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nashra-news/nashra/internal/engine"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources    Sources    `yaml:"sources"`
	Engine     Engine     `yaml:"engine"`
	Generation Generation `yaml:"generation"`
	Schedule   Schedule   `yaml:"schedule"`
	Audience   string     `yaml:"audience"`
	Output     Output     `yaml:"output"`
	Server     Server     `yaml:"server"`
	Logging    Logging    `yaml:"logging"`
}

type Sources struct {
	Feeds []Feed `yaml:"feeds"`
}

type Feed struct {
	URL      string `yaml:"url"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

// Engine holds the dose selection parameters.
type Engine struct {
	PicksPerDose        int  `yaml:"picks_per_dose"`
	CategoryCap         int  `yaml:"category_cap"`
	MinScore            int  `yaml:"min_score"`
	RelaxCapWhenUniform bool `yaml:"relax_cap_when_uniform"`
	PoolWindowHours     int  `yaml:"pool_window_hours"`
	PoolLimit           int  `yaml:"pool_limit"`
}

// Options converts the configured parameters to engine options.
func (e Engine) Options() engine.Options {
	return engine.Options{
		K:                   e.PicksPerDose,
		CategoryCap:         e.CategoryCap,
		MinScore:            e.MinScore,
		RelaxCapWhenUniform: e.RelaxCapWhenUniform,
	}
}

// Generation configures the external copy generator.
type Generation struct {
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	OllamaURL   string `yaml:"ollama_url"`
	OpenAIModel string `yaml:"openai_model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	MaxTokens   int    `yaml:"max_tokens"`
}

// Schedule maps each slot to a cron spec for the schedule daemon.
type Schedule struct {
	Morning string `yaml:"morning"`
	Noon    string `yaml:"noon"`
	Evening string `yaml:"evening"`
	Night   string `yaml:"night"`
}

// Spec returns the cron spec for a slot.
func (s Schedule) Spec(slot engine.Slot) string {
	switch slot {
	case engine.Morning:
		return s.Morning
	case engine.Noon:
		return s.Noon
	case engine.Evening:
		return s.Evening
	default:
		return s.Night
	}
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for nashra.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "nashra")
}

// DataDir returns the XDG data directory for nashra.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "nashra")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/nashra/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'nashra init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Engine: Engine{
			PicksPerDose:        5,
			CategoryCap:         2,
			MinScore:            40,
			RelaxCapWhenUniform: true,
			PoolWindowHours:     48,
			PoolLimit:           60,
		},
		Generation: Generation{
			Provider:    "ollama",
			Model:       "qwen2.5:7b",
			OllamaURL:   "http://localhost:11434",
			OpenAIModel: "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			MaxTokens:   256,
		},
		Schedule: Schedule{
			Morning: "0 7 * * *",
			Noon:    "0 12 * * *",
			Evening: "0 18 * * *",
			Night:   "0 22 * * *",
		},
		Audience: "general",
		Server:   Server{Port: 8000},
		Logging:  Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
