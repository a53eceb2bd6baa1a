package prefabs

import "gopkg.in/yaml.v3"

// EntityBuildSpec is a prefab: a name plus raw component specs keyed by
// component name. Each entry is decoded by the builder that owns it.
type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

type TransformComponentSpec struct {
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	ScaleX   float64 `yaml:"scale_x"`
	ScaleY   float64 `yaml:"scale_y"`
	Rotation float64 `yaml:"rotation"`
}

type ColliderComponentSpec struct {
	Shape   ShapeSpec  `yaml:"shape"`
	Layer   string     `yaml:"layer"`
	Trigger bool       `yaml:"trigger"`
	Offset  VectorSpec `yaml:"offset"`
	// Disabled is inverted so a missing key means enabled.
	Disabled bool `yaml:"disabled"`
}

type TriggerScriptComponentSpec struct {
	Script string `yaml:"script"`
}
