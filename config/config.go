// Package config holds defaults for the collision subsystem and the sandbox,
// with COLLISION_* environment overrides.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// CollisionConfig tunes the collision system itself.
type CollisionConfig struct {
	TickRate   int    // ticks per second
	Capacity   int    // expected collider count, sizes the broad phase
	LayersFile string // layer matrix prefab
	TileSize   float64
}

func DefaultCollision() CollisionConfig {
	return CollisionConfig{
		TickRate:   60,
		Capacity:   64,
		LayersFile: "layers.yaml",
		TileSize:   32,
	}
}

func CollisionFromEnv() CollisionConfig {
	cfg := DefaultCollision()

	if v := getEnvInt("COLLISION_TICK_RATE", 0); v > 0 {
		cfg.TickRate = v
	}
	if v := getEnvInt("COLLISION_CAPACITY", 0); v > 0 {
		cfg.Capacity = v
	}
	if v := os.Getenv("COLLISION_LAYERS_FILE"); v != "" {
		cfg.LayersFile = v
	}
	if v := getEnvFloat("COLLISION_TILE_SIZE", 0); v > 0 {
		cfg.TileSize = v
	}

	return cfg
}

// TickInterval is the wall time of one tick.
func (c CollisionConfig) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRate)
}

// SandboxConfig drives cmd/collision-sandbox.
type SandboxConfig struct {
	Width      int
	Height     int
	LevelFile  string
	PrefabsDir string
	Watch      bool
	LogLevel   string
}

func DefaultSandbox() SandboxConfig {
	return SandboxConfig{
		Width:      384,
		Height:     256,
		LevelFile:  "arena.json",
		PrefabsDir: "prefabs",
		Watch:      true,
		LogLevel:   "info",
	}
}

func SandboxFromEnv() SandboxConfig {
	cfg := DefaultSandbox()

	if v := getEnvInt("COLLISION_WINDOW_WIDTH", 0); v > 0 {
		cfg.Width = v
	}
	if v := getEnvInt("COLLISION_WINDOW_HEIGHT", 0); v > 0 {
		cfg.Height = v
	}
	if v := os.Getenv("COLLISION_LEVEL"); v != "" {
		cfg.LevelFile = v
	}
	if v, ok := os.LookupEnv("COLLISION_PREFABS_DIR"); ok {
		cfg.PrefabsDir = v
	}
	if os.Getenv("COLLISION_WATCH") == "false" {
		cfg.Watch = false
	}
	if v := os.Getenv("COLLISION_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	return cfg
}

// Level returns the configured log level, falling back to info.
func (c SandboxConfig) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// DebugConfig controls the debug HTTP server.
type DebugConfig struct {
	Enabled    bool
	ListenAddr string
	// SnapshotRate caps /snapshot requests per second.
	SnapshotRate float64
}

func DefaultDebug() DebugConfig {
	return DebugConfig{
		Enabled:      true,
		ListenAddr:   "127.0.0.1:6061",
		SnapshotRate: 10,
	}
}

func DebugFromEnv() DebugConfig {
	cfg := DefaultDebug()

	if os.Getenv("COLLISION_DEBUG_SERVER") == "false" {
		cfg.Enabled = false
	}
	if v := os.Getenv("COLLISION_DEBUG_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := getEnvFloat("COLLISION_SNAPSHOT_RATE", 0); v > 0 {
		cfg.SnapshotRate = v
	}

	return cfg
}

// Config is everything the sandbox needs.
type Config struct {
	Collision CollisionConfig
	Sandbox   SandboxConfig
	Debug     DebugConfig
}

func Default() Config {
	return Config{
		Collision: DefaultCollision(),
		Sandbox:   DefaultSandbox(),
		Debug:     DefaultDebug(),
	}
}

// Load returns the configuration with environment overrides applied.
func Load() Config {
	return Config{
		Collision: CollisionFromEnv(),
		Sandbox:   SandboxFromEnv(),
		Debug:     DebugFromEnv(),
	}
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
