package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagAssets    = flag.String("assets", "", "Texture root directory (replaces configured roots)")
	flagCatalog   = flag.String("catalog", "", "Material catalog YAML file")
	flagScene     = flag.String("scene", "", "Scene manifest YAML file")
	flagExportDir = flag.String("export-dir", "", "Directory for saved and exported proposals")
	flagFrameRate = flag.Int("fps", 0, "Frame loop rate")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagAssets != "" {
		cfg.Assets.Roots = []string{*flagAssets}
	}
	if *flagCatalog != "" {
		cfg.Catalog.Path = *flagCatalog
	}
	if *flagScene != "" {
		cfg.Scene.Manifest = *flagScene
	}
	if *flagExportDir != "" {
		cfg.Export.Dir = *flagExportDir
	}
	if *flagFrameRate > 0 {
		cfg.Camera.FrameRate = *flagFrameRate
	}
}
