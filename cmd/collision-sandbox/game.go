package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/collision/config"
	"github.com/milk9111/collision/ecs"
	"github.com/milk9111/collision/ecs/entity"
	"github.com/milk9111/collision/ecs/system"
	"github.com/milk9111/collision/levels"
	"github.com/milk9111/collision/prefabs"
)

// errQuit ends RunGame cleanly.
var errQuit = errors.New("quit")

type Game struct {
	cfg    config.Config
	logger *log.Logger

	world      *ecs.World
	sys        *system.CollisionSystem
	controller *playerController
	level      entity.LoadedLevel

	watcher *prefabs.Watcher
	pause   *pausePanel
	paused  bool
	frames  int
}

func NewGame(cfg config.Config, logger *log.Logger) (*Game, error) {
	layers, err := prefabs.LoadLayerMatrix(cfg.Collision.LayersFile)
	if err != nil {
		return nil, err
	}

	entity.Logger = logger.WithPrefix("prefab")
	sys := system.NewCollisionSystem(layers,
		system.WithLogger(logger.WithPrefix("collision")),
		system.WithCapacity(cfg.Collision.Capacity),
	)

	g := &Game{
		cfg:        cfg,
		logger:     logger,
		sys:        sys,
		controller: newPlayerController(sys, keyboardAxis, 2),
	}
	if err := g.reset(); err != nil {
		return nil, err
	}
	g.pause = newPausePanel(g)
	return g, nil
}

// reset rebuilds the world from the level.
func (g *Game) reset() error {
	lvl, err := levels.LoadLevelFromFS(g.cfg.Sandbox.LevelFile)
	if err != nil {
		return err
	}

	w := ecs.NewWorld()
	g.sys.Reset()
	g.sys.Attach(w)
	loaded, err := entity.LoadLevelToWorld(w, lvl, g.cfg.Collision.TileSize)
	if err != nil {
		return err
	}

	w.AddSystem(g.controller)
	w.AddSystem(g.sys)
	w.AddSystem(&triggerLogger{logger: g.logger})

	g.world = w
	g.level = loaded
	g.logger.Info("level loaded", "level", g.cfg.Sandbox.LevelFile, "entities", len(loaded.Spawned), "skipped", loaded.Skipped)
	return nil
}

func (g *Game) watch(w *prefabs.Watcher) {
	g.watcher = w
}

func (g *Game) Update() error {
	g.drainReloads()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
		if g.paused && g.pause != nil {
			g.pause.refresh(g.sys.Layers())
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.reset(); err != nil {
			g.logger.Error("reset failed", "err", err)
		}
	}
	if g.paused {
		if g.pause != nil {
			g.pause.ui.Update()
		}
		return nil
	}

	g.frames++
	g.world.Update()
	return nil
}

func (g *Game) drainReloads() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case change, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.applyChange(change)
		case err, ok := <-g.watcher.Errors:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Warn("prefab watcher", "err", err)
		default:
			return
		}
	}
}

func (g *Game) applyChange(change prefabs.Change) {
	switch change.Kind {
	case prefabs.ChangeSpec:
		if change.Name != g.cfg.Collision.LayersFile {
			g.logger.Info("prefab changed, press R to rebuild", "file", change.Name)
			return
		}
		layers, err := prefabs.LoadLayerMatrix(change.Name)
		if err != nil {
			g.logger.Error("layer reload failed", "file", change.Name, "err", err)
			return
		}
		g.sys.SetLayers(layers)
		if g.pause != nil {
			g.pause.refresh(layers)
		}
	case prefabs.ChangeScript:
		n, err := reloadScripts(g.world, change.Name, g.logger)
		if err != nil {
			g.logger.Error("script reload failed", "file", change.Name, "err", err)
			return
		}
		g.logger.Info("script reloaded", "file", change.Name, "entities", n)
	}
}

// reloadScripts recompiles every script trigger loaded from name. Script state
// starts fresh.
func reloadScripts(w *ecs.World, name string, logger *log.Logger) (int, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return 0, err
	}
	base := filepath.Base(name)
	var targets []ecs.Entity
	ecs.ForEach(w, system.ScriptTriggerComponent.Kind(), func(e ecs.Entity, st *system.ScriptTrigger) {
		if filepath.Base(st.Path) == base {
			targets = append(targets, e)
		}
	})
	for _, e := range targets {
		old, _ := ecs.Get(w, e, system.ScriptTriggerComponent.Kind())
		st, err := system.NewScriptTrigger(old.Path, src, logger)
		if err != nil {
			return 0, err
		}
		if err := ecs.Add(w, e, system.ScriptTriggerComponent.Kind(), st); err != nil {
			return 0, err
		}
	}
	return len(targets), nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	drawWorld(screen, g.world, g.sys.State())

	frame := g.sys.State().Frame()
	status := ""
	if g.paused {
		status = "  [paused]"
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"tick %d  solid %d  triggers %d  fps %.0f%s\nWASD move  P pause  R reset  Esc quit",
		frame.Tick, len(frame.Collisions), len(frame.Triggers), ebiten.ActualFPS(), status,
	))
	if g.paused && g.pause != nil {
		g.pause.ui.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Sandbox.Width, g.cfg.Sandbox.Height
}

// triggerLogger drains trigger events pushed during the tick.
type triggerLogger struct {
	logger *log.Logger
}

func (t *triggerLogger) Update(w *ecs.World) {
	for _, evt := range w.Events().Drain() {
		te, ok := evt.Data.(ecs.TriggerEvent)
		if evt.Type != ecs.EventTrigger || !ok {
			continue
		}
		t.logger.Debug("trigger", "entity", te.Entity, "other", te.Other, "phase", te.Phase)
	}
}
