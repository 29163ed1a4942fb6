// Package config handles application configuration loading and management.
package config

import "time"

// Config holds all configurator settings.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Assets  AssetsConfig  `yaml:"assets"`
	Catalog CatalogConfig `yaml:"catalog"`
	Scene   SceneConfig   `yaml:"scene"`
	Camera  CameraConfig  `yaml:"camera"`
	Export  ExportConfig  `yaml:"export"`
}

// AssetsConfig holds texture source settings.
type AssetsConfig struct {
	Roots           []string `yaml:"roots"`            // Directories searched for texture files
	Archives        []string `yaml:"archives"`         // Zip archives searched for texture files
	MaxTextureSize  int      `yaml:"max_texture_size"` // Longest edge in pixels, 0 = unlimited
	LoadConcurrency int      `yaml:"load_concurrency"` // Parallel channel loads per bundle
}

// CatalogConfig points at an optional material catalog file.
// An empty path uses the built-in catalog.
type CatalogConfig struct {
	Path string `yaml:"path"`
}

// SceneConfig points at an optional scene manifest.
// An empty path uses the built-in bed node layout.
type SceneConfig struct {
	Manifest string `yaml:"manifest"`
}

// CameraConfig holds camera animation settings.
type CameraConfig struct {
	Transition time.Duration `yaml:"transition"`
	FrameRate  int           `yaml:"frame_rate"`
}

// ExportConfig holds proposal output settings.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Assets: AssetsConfig{
			Roots:           []string{"public"},
			MaxTextureSize:  1024,
			LoadConcurrency: 4,
		},
		Camera: CameraConfig{
			Transition: 1200 * time.Millisecond,
			FrameRate:  60,
		},
		Export: ExportConfig{
			Dir: "proposals",
		},
	}
}

// FrameInterval returns the tick period for the configured frame rate.
func (c CameraConfig) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.FrameRate)
}
