// atelier is an interactive terminal front end for the bed configurator.
// It drives a headless session: every command mutates the configuration and
// the scene, camera and price follow.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/bed-atelier/internal/assets"
	"github.com/Faultbox/bed-atelier/internal/catalog"
	"github.com/Faultbox/bed-atelier/internal/config"
	"github.com/Faultbox/bed-atelier/internal/configurator"
	"github.com/Faultbox/bed-atelier/internal/logger"
	"github.com/Faultbox/bed-atelier/internal/proposal"
	"github.com/Faultbox/bed-atelier/internal/scene"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Bed Atelier ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("atelier failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	cat := catalog.Builtin()
	if cfg.Catalog.Path != "" {
		loaded, err := catalog.Load(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		cat = loaded
	}

	var graph *scene.Graph
	if cfg.Scene.Manifest != "" {
		g, err := scene.LoadManifest(cfg.Scene.Manifest)
		if err != nil {
			return err
		}
		graph = g
	}

	mgr := assets.NewManager()
	defer mgr.Close()
	for _, dir := range cfg.Assets.Roots {
		if err := mgr.AddDir(dir); err != nil {
			logger.Warn("skipping asset root", zap.Error(err))
		}
	}
	for _, archive := range cfg.Assets.Archives {
		if err := mgr.AddArchive(archive); err != nil {
			logger.Warn("skipping asset archive", zap.Error(err))
		}
	}

	session := configurator.New(cat, configurator.Options{
		Loader:          mgr,
		Graph:           graph,
		MaxTextureSize:  cfg.Assets.MaxTextureSize,
		LoadConcurrency: cfg.Assets.LoadConcurrency,
		Transition:      cfg.Camera.Transition,
		FrameInterval:   cfg.Camera.FrameInterval(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loopDone := make(chan error, 1)
	go func() { loopDone <- session.Run(ctx) }()

	sh := &shell{
		session: session,
		sink:    proposal.NewDirSink(cfg.Export.Dir),
		out:     os.Stdout,
	}
	err := sh.run(ctx, os.Stdin)

	stop()
	<-loopDone
	session.Close()
	return err
}
