package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "BedAtelier")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "BedAtelier")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "bed-atelier")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "bed-atelier")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return validate(cfg)
}

// validate rejects values the session cannot run with.
func validate(cfg *Config) error {
	if cfg.Camera.Transition < 0 {
		return fmt.Errorf("camera.transition must not be negative, got %s", cfg.Camera.Transition)
	}
	if cfg.Assets.LoadConcurrency < 0 {
		return fmt.Errorf("assets.load_concurrency must not be negative, got %d", cfg.Assets.LoadConcurrency)
	}
	if cfg.Assets.MaxTextureSize < 0 {
		return fmt.Errorf("assets.max_texture_size must not be negative, got %d", cfg.Assets.MaxTextureSize)
	}
	return nil
}
