package entity

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/milk9111/collision/collision"
	"github.com/milk9111/collision/ecs"
	"github.com/milk9111/collision/ecs/component"
	"github.com/milk9111/collision/levels"
)

// LoadedLevel lists what LoadLevelToWorld created.
type LoadedLevel struct {
	Terrain  ecs.Entity
	Spawned  []ecs.Entity
	Skipped  []string
	GridSize [2]int
}

// LoadLevelToWorld adds one environment grid collider for the physics tiles
// and builds a prefab for every placed entity. Types without a prefab are
// skipped.
func LoadLevelToWorld(world *ecs.World, lvl *levels.Level, tileSize float64) (LoadedLevel, error) {
	var out LoadedLevel
	if world == nil || lvl == nil {
		return out, fmt.Errorf("load level: world and level are required")
	}

	grid, err := lvl.CollisionGrid(tileSize)
	if err != nil {
		return out, fmt.Errorf("load level: %w", err)
	}
	cols, rows := grid.Size()
	out.GridSize = [2]int{cols, rows}

	if grid.OccupiedCount() > 0 {
		e := ecs.CreateEntity(world)
		if err := ecs.Add(world, e, component.TransformComponent.Kind(), &component.Transform{ScaleX: 1, ScaleY: 1}); err != nil {
			return out, err
		}
		if err := ecs.Add(world, e, component.ColliderComponent.Kind(), component.NewCollider(grid, collision.LayerEnvironment)); err != nil {
			return out, err
		}
		out.Terrain = e
	}

	for _, ent := range lvl.Entities {
		name := strings.ToLower(strings.TrimSpace(ent.Type))
		if name == "" {
			continue
		}
		e, err := BuildEntityAt(world, name+".yaml", float64(ent.X), float64(ent.Y))
		if errors.Is(err, fs.ErrNotExist) {
			Logger.Debug("no prefab for level entity", "type", ent.Type)
			out.Skipped = append(out.Skipped, ent.Type)
			continue
		}
		if err != nil {
			return out, fmt.Errorf("load level: %w", err)
		}
		out.Spawned = append(out.Spawned, e)
	}

	return out, nil
}
