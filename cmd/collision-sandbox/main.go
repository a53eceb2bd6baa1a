package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/joho/godotenv"
	"github.com/milk9111/collision/config"
	"github.com/milk9111/collision/prefabs"
)

func main() {
	envFile := flag.String("env", ".env", "optional env file loaded before COLLISION_* overrides")
	levelName := flag.String("level", "", "level name in levels/ (overrides COLLISION_LEVEL)")
	flag.Parse()

	envErr := godotenv.Load(*envFile)

	cfg := config.Load()
	if *levelName != "" {
		cfg.Sandbox.LevelFile = *levelName
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "sandbox",
		Level:           cfg.Sandbox.Level(),
		ReportTimestamp: true,
	})
	if envErr != nil {
		logger.Debug("no env file, using environment only", "file", *envFile)
	}

	prefabs.DiskRoot = cfg.Sandbox.PrefabsDir

	game, err := NewGame(cfg, logger)
	if err != nil {
		logger.Fatal("setup failed", "err", err)
	}

	if cfg.Sandbox.Watch && cfg.Sandbox.PrefabsDir != "" {
		w, err := prefabs.NewWatcher(cfg.Sandbox.PrefabsDir, cfg.Sandbox.PrefabsDir+"/scripts")
		if err != nil {
			logger.Warn("prefab hot reload disabled", "dir", cfg.Sandbox.PrefabsDir, "err", err)
		} else {
			defer w.Close()
			game.watch(w)
		}
	}

	if cfg.Debug.Enabled {
		srv := startDebugServer(cfg.Debug, newDebugRouter(game.sys, cfg.Debug), logger)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Sandbox.Width*2, cfg.Sandbox.Height*2)
	ebiten.SetWindowTitle("collision sandbox")
	ebiten.SetTPS(cfg.Collision.TickRate)

	if err := ebiten.RunGame(game); err != nil {
		logger.Error("game exited", "err", err)
	}
}
