// Package config loads the optional YAML configuration file and .env
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/spaceai/spaceai/internal/state"
)

type Config struct {
	Resolution  string `yaml:"resolution"`
	AspectRatio string `yaml:"aspect_ratio"`
	FlashModel  string `yaml:"flash_model"`
	ProModel    string `yaml:"pro_model"`
	DataDir     string `yaml:"data_dir"`
	LogLevel    string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Resolution:  state.Resolution2K.String(),
		AspectRatio: state.AspectSquare.String(),
		LogLevel:    "info",
	}
}

// Load reads the config file at path, or the default location when
// path is empty. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		defaultPath, err := defaultPath()
		if err != nil {
			return cfg, nil
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cfg.Resolution != "" && !state.Resolution(cfg.Resolution).IsValid() {
		return cfg, fmt.Errorf("invalid resolution %q in %s", cfg.Resolution, path)
	}
	if cfg.AspectRatio != "" && !state.AspectRatio(cfg.AspectRatio).IsValid() {
		return cfg, fmt.Errorf("invalid aspect ratio %q in %s", cfg.AspectRatio, path)
	}
	if cfg.Resolution == "" {
		cfg.Resolution = state.Resolution2K.String()
	}
	if cfg.AspectRatio == "" {
		cfg.AspectRatio = state.AspectSquare.String()
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

func defaultPath() (string, error) {
	if testDir := os.Getenv("SPACEAI_CONFIG_DIR"); testDir != "" {
		return filepath.Join(testDir, "config.yaml"), nil
	}
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "spaceai", "config.yaml"), nil
}

// LoadDotenv pulls a local .env into the environment without
// overriding variables that are already set.
func LoadDotenv() {
	_ = godotenv.Load()
}
