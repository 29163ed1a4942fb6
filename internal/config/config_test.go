package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if len(cfg.Assets.Roots) != 1 || cfg.Assets.Roots[0] != "public" {
		t.Errorf("expected asset roots [public], got %v", cfg.Assets.Roots)
	}
	if cfg.Assets.MaxTextureSize != 1024 {
		t.Errorf("expected max texture size 1024, got %d", cfg.Assets.MaxTextureSize)
	}
	if cfg.Assets.LoadConcurrency != 4 {
		t.Errorf("expected load concurrency 4, got %d", cfg.Assets.LoadConcurrency)
	}

	if cfg.Camera.Transition != 1200*time.Millisecond {
		t.Errorf("expected transition 1200ms, got %v", cfg.Camera.Transition)
	}
	if cfg.Camera.FrameRate != 60 {
		t.Errorf("expected frame rate 60, got %d", cfg.Camera.FrameRate)
	}

	if cfg.Catalog.Path != "" {
		t.Errorf("expected built-in catalog, got %s", cfg.Catalog.Path)
	}
	if cfg.Export.Dir != "proposals" {
		t.Errorf("expected export dir 'proposals', got %s", cfg.Export.Dir)
	}
}

func TestFrameInterval(t *testing.T) {
	tests := []struct {
		fps  int
		want time.Duration
	}{
		{60, time.Second / 60},
		{30, time.Second / 30},
		{0, time.Second / 60},
		{-5, time.Second / 60},
	}

	for _, tt := range tests {
		got := CameraConfig{FrameRate: tt.fps}.FrameInterval()
		if got != tt.want {
			t.Errorf("FrameInterval(%d) = %v, want %v", tt.fps, got, tt.want)
		}
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
logging:
  level: "debug"
  log_file: "atelier.log"

assets:
  roots: ["textures", "overrides"]
  archives: ["fabrics.zip"]
  max_texture_size: 512
  load_concurrency: 2

catalog:
  path: "catalog.yaml"

scene:
  manifest: "bed.yaml"

camera:
  transition: 800ms
  frame_rate: 30

export:
  dir: "/var/lib/atelier"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "atelier.log" {
		t.Errorf("expected log file 'atelier.log', got %s", cfg.Logging.LogFile)
	}
	if len(cfg.Assets.Roots) != 2 || cfg.Assets.Roots[1] != "overrides" {
		t.Errorf("expected roots [textures overrides], got %v", cfg.Assets.Roots)
	}
	if len(cfg.Assets.Archives) != 1 || cfg.Assets.Archives[0] != "fabrics.zip" {
		t.Errorf("expected archives [fabrics.zip], got %v", cfg.Assets.Archives)
	}
	if cfg.Assets.MaxTextureSize != 512 {
		t.Errorf("expected max texture size 512, got %d", cfg.Assets.MaxTextureSize)
	}
	if cfg.Catalog.Path != "catalog.yaml" {
		t.Errorf("expected catalog path, got %s", cfg.Catalog.Path)
	}
	if cfg.Scene.Manifest != "bed.yaml" {
		t.Errorf("expected scene manifest, got %s", cfg.Scene.Manifest)
	}
	if cfg.Camera.Transition != 800*time.Millisecond {
		t.Errorf("expected transition 800ms, got %v", cfg.Camera.Transition)
	}
	if cfg.Camera.FrameRate != 30 {
		t.Errorf("expected frame rate 30, got %d", cfg.Camera.FrameRate)
	}
	if cfg.Export.Dir != "/var/lib/atelier" {
		t.Errorf("expected export dir, got %s", cfg.Export.Dir)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "camera:\n  frame_rate: not a number\n  invalid syntax here\n"},
		{"unknown key", "camera:\n  framerate: 30\n"},
		{"negative transition", "camera:\n  transition: -1s\n"},
		{"negative concurrency", "assets:\n  load_concurrency: -2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "invalid.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			if err := loadFromFile(Default(), configPath); err == nil {
				t.Error("expected error loading invalid config, got nil")
			}
		})
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("empty config should load, got %v", err)
	}
	if cfg.Camera.FrameRate != 60 {
		t.Errorf("defaults should survive an empty file, got frame rate %d", cfg.Camera.FrameRate)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("camera:\n  frame_rate: 30\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Catalog.Path = "custom.yaml"
	cfg.Camera.Transition = 2 * time.Second
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reloading saved config: %v", err)
	}
	if loaded.Catalog.Path != "custom.yaml" {
		t.Errorf("expected catalog path custom.yaml, got %s", loaded.Catalog.Path)
	}
	if loaded.Camera.Transition != 2*time.Second {
		t.Errorf("expected transition 2s, got %v", loaded.Camera.Transition)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only config.yaml after save, got %d entries", len(entries))
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "assets flag replaces roots",
			setup: func() { *flagAssets = "/srv/textures" },
			verify: func(t *testing.T, cfg *Config) {
				if len(cfg.Assets.Roots) != 1 || cfg.Assets.Roots[0] != "/srv/textures" {
					t.Errorf("expected roots [/srv/textures], got %v", cfg.Assets.Roots)
				}
			},
			teardown: func() { *flagAssets = "" },
		},
		{
			name: "catalog and scene flags",
			setup: func() {
				*flagCatalog = "catalog.yaml"
				*flagScene = "scene.yaml"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Catalog.Path != "catalog.yaml" {
					t.Errorf("expected catalog.yaml, got %s", cfg.Catalog.Path)
				}
				if cfg.Scene.Manifest != "scene.yaml" {
					t.Errorf("expected scene.yaml, got %s", cfg.Scene.Manifest)
				}
			},
			teardown: func() {
				*flagCatalog = ""
				*flagScene = ""
			},
		},
		{
			name:  "export dir flag",
			setup: func() { *flagExportDir = "out" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Dir != "out" {
					t.Errorf("expected export dir out, got %s", cfg.Export.Dir)
				}
			},
			teardown: func() { *flagExportDir = "" },
		},
		{
			name:  "fps flag",
			setup: func() { *flagFrameRate = 120 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Camera.FrameRate != 120 {
					t.Errorf("expected frame rate 120, got %d", cfg.Camera.FrameRate)
				}
			},
			teardown: func() { *flagFrameRate = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
camera:
  transition: 900ms
  frame_rate: 24
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagFrameRate = 90
	defer func() {
		*flagConfig = ""
		*flagFrameRate = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Frame rate from flag, transition from file
	if cfg.Camera.FrameRate != 90 {
		t.Errorf("expected frame rate 90 from flag, got %d", cfg.Camera.FrameRate)
	}
	if cfg.Camera.Transition != 900*time.Millisecond {
		t.Errorf("expected transition 900ms from file, got %v", cfg.Camera.Transition)
	}
}
