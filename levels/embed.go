package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/milk9111/collision/collision"
	"github.com/milk9111/collision/common"
)

//go:embed *.json
var LevelsFS embed.FS

var ErrInvalidLevel = errors.New("levels: invalid level")

type Level struct {
	Width     int         `json:"width"`
	Height    int         `json:"height"`
	Layers    [][]int     `json:"layers"`
	LayerMeta []LayerMeta `json:"layer_meta,omitempty"`
	Entities  []Entity    `json:"entities,omitempty"`
}

type LayerMeta struct {
	Physics bool `json:"physics"`
}

// Entity places a prefab, named by Type, at pixel coordinates.
type Entity struct {
	Type  string         `json:"type"`
	X     int            `json:"x"`
	Y     int            `json:"y"`
	Props map[string]any `json:"props,omitempty"`
}

func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

func (l *Level) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidLevel, l.Width, l.Height)
	}
	for i, layer := range l.Layers {
		if len(layer) != l.Width*l.Height {
			return fmt.Errorf("%w: layer %d has %d tiles, want %d", ErrInvalidLevel, i, len(layer), l.Width*l.Height)
		}
	}
	return nil
}

// HasPhysics reports whether tiles on layer idx block movement. Without any
// layer metadata the first layer is the physics layer.
func (l *Level) HasPhysics(idx int) bool {
	if len(l.LayerMeta) == 0 {
		return idx == 0
	}
	if idx < 0 || idx >= len(l.LayerMeta) {
		return false
	}
	return l.LayerMeta[idx].Physics
}

// PhysicsTiles merges every physics layer into one tile slice. A cell is
// non-zero if any physics layer has a tile there.
func (l *Level) PhysicsTiles() []int {
	out := make([]int, l.Width*l.Height)
	for idx, layer := range l.Layers {
		if !l.HasPhysics(idx) {
			continue
		}
		for i, id := range layer {
			if i < len(out) && id > 0 {
				out[i] = id
			}
		}
	}
	return out
}

// CollisionGrid returns the level's solid tiles as a grid shape. cellSize <= 0
// uses common.TileSize.
func (l *Level) CollisionGrid(cellSize float64) (collision.Grid, error) {
	if err := l.Validate(); err != nil {
		return collision.Grid{}, err
	}
	if cellSize <= 0 {
		cellSize = common.TileSize
	}
	return collision.GridFromTiles(l.Width, l.Height, l.PhysicsTiles(), cellSize)
}
