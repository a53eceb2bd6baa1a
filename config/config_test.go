package config

import (
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Collision.TickRate != 60 || cfg.Collision.LayersFile != "layers.yaml" {
		t.Fatalf("unexpected collision defaults %+v", cfg.Collision)
	}
	if !cfg.Debug.Enabled || cfg.Debug.ListenAddr != "127.0.0.1:6061" {
		t.Fatalf("unexpected debug defaults %+v", cfg.Debug)
	}
	if cfg.Sandbox.Level() != log.InfoLevel {
		t.Fatalf("expected info level")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COLLISION_TICK_RATE", "30")
	t.Setenv("COLLISION_CAPACITY", "not-a-number")
	t.Setenv("COLLISION_TILE_SIZE", "16")
	t.Setenv("COLLISION_LOG_LEVEL", "debug")
	t.Setenv("COLLISION_WATCH", "false")
	t.Setenv("COLLISION_PREFABS_DIR", "")
	t.Setenv("COLLISION_DEBUG_SERVER", "false")
	t.Setenv("COLLISION_DEBUG_ADDR", "127.0.0.1:9999")

	cfg := Load()
	if cfg.Collision.TickRate != 30 || cfg.Collision.TickInterval() != time.Second/30 {
		t.Fatalf("tick rate override ignored: %+v", cfg.Collision)
	}
	if cfg.Collision.Capacity != 64 {
		t.Fatalf("bad int should fall back to default, got %d", cfg.Collision.Capacity)
	}
	if cfg.Collision.TileSize != 16 {
		t.Fatalf("tile size override ignored")
	}
	if cfg.Sandbox.Level() != log.DebugLevel || cfg.Sandbox.Watch {
		t.Fatalf("sandbox overrides ignored: %+v", cfg.Sandbox)
	}
	if cfg.Sandbox.PrefabsDir != "" {
		t.Fatalf("empty prefabs dir should disable disk overrides, got %q", cfg.Sandbox.PrefabsDir)
	}
	if cfg.Debug.Enabled || cfg.Debug.ListenAddr != "127.0.0.1:9999" {
		t.Fatalf("debug overrides ignored: %+v", cfg.Debug)
	}
}

func TestUnknownLogLevelFallsBack(t *testing.T) {
	cfg := DefaultSandbox()
	cfg.LogLevel = "loud"
	if cfg.Level() != log.InfoLevel {
		t.Fatalf("expected info fallback")
	}
}
