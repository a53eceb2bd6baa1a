package entity

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/milk9111/collision/collision"
	"github.com/milk9111/collision/ecs"
	"github.com/milk9111/collision/ecs/component"
	"github.com/milk9111/collision/ecs/system"
	"github.com/milk9111/collision/prefabs"
)

type entityPrefabSpec = prefabs.EntityBuildSpec

type buildContext struct {
	PrefabPath string
	Logger     *log.Logger
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":        addTransform,
	"collider":         addCollider,
	"trigger_recorder": addTriggerRecorder,
	"trigger_script":   addTriggerScript,
}

var componentBuildOrder = []string{
	"transform",
	"collider",
	"trigger_recorder",
	"trigger_script",
}

// Logger receives messages from script triggers built by BuildEntity.
var Logger = log.WithPrefix("prefab")

func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	return buildFromSpec(w, prefabPath, spec)
}

// BuildEntityAt builds a prefab and moves it to (x, y).
func BuildEntityAt(w *ecs.World, prefabPath string, x, y float64) (ecs.Entity, error) {
	e, err := BuildEntity(w, prefabPath)
	if err != nil {
		return 0, err
	}
	if err := SetEntityTransform(w, e, x, y, 0); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: %w", prefabPath, err)
	}
	return e, nil
}

func buildFromSpec(w *ecs.World, prefabPath string, spec entityPrefabSpec) (ecs.Entity, error) {
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	unknown := make([]string, 0)
	for name := range spec.Components {
		if _, ok := componentRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return 0, fmt.Errorf("build entity: %q: no builder for components %v", prefabPath, unknown)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: prefabPath, Logger: Logger}

	for _, name := range componentBuildOrder {
		raw, ok := spec.Components[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
	}

	return e, nil
}

func SetEntityTransform(w *ecs.World, e ecs.Entity, x, y, rotation float64) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{ScaleX: 1, ScaleY: 1}
	}
	t.X = x
	t.Y = y
	t.Rotation = rotation
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	if spec.ScaleX == 0 {
		spec.ScaleX = 1
	}
	if spec.ScaleY == 0 {
		spec.ScaleY = 1
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		X:        spec.X,
		Y:        spec.Y,
		ScaleX:   spec.ScaleX,
		ScaleY:   spec.ScaleY,
		Rotation: spec.Rotation,
	})
}

type colliderSpec = prefabs.ColliderComponentSpec

func addCollider(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[colliderSpec](raw)
	if err != nil {
		return fmt.Errorf("decode collider spec: %w", err)
	}
	shape, err := spec.Shape.Shape()
	if err != nil {
		return err
	}
	layer, err := collision.ParseLayer(spec.Layer)
	if err != nil {
		return err
	}
	if !ecs.Has(w, e, component.TransformComponent.Kind()) {
		if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{ScaleX: 1, ScaleY: 1}); err != nil {
			return err
		}
	}

	c := component.NewCollider(shape, layer)
	c.Trigger = spec.Trigger
	c.Enabled = !spec.Disabled
	c.Offset = spec.Offset.Vector()
	return ecs.Add(w, e, component.ColliderComponent.Kind(), c)
}

func addTriggerRecorder(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.TriggerRecorderComponent.Kind(), &component.TriggerRecorder{})
}

type triggerScriptSpec = prefabs.TriggerScriptComponentSpec

func addTriggerScript(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[triggerScriptSpec](raw)
	if err != nil {
		return fmt.Errorf("decode trigger_script spec: %w", err)
	}
	if spec.Script == "" {
		return fmt.Errorf("trigger_script requires a script path")
	}
	c, ok := ecs.Get(w, e, component.ColliderComponent.Kind())
	if !ok || !c.Trigger {
		return fmt.Errorf("trigger_script requires a trigger collider on the same entity")
	}

	src, err := prefabs.LoadScript(spec.Script)
	if err != nil {
		return fmt.Errorf("load script %q: %w", spec.Script, err)
	}
	st, err := system.NewScriptTrigger(spec.Script, src, ctx.Logger)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, system.ScriptTriggerComponent.Kind(), st)
}
