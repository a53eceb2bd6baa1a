package prefabs

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collision/collision"
	"gopkg.in/yaml.v3"
)

// LayersFile is the default layer matrix prefab.
const LayersFile = "layers.yaml"

var ErrInvalidShapeSpec = errors.New("prefabs: invalid shape spec")

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// LayerMatrixSpec lists, per layer, the layers it interacts with. Listing a
// pair once is enough; the matrix is symmetric.
//
//	layers:
//	  player: [enemy, environment]
type LayerMatrixSpec struct {
	Layers map[string][]string `yaml:"layers"`
}

func (s LayerMatrixSpec) Matrix() (collision.LayerMatrix, error) {
	names := make([]string, 0, len(s.Layers))
	for name := range s.Layers {
		names = append(names, name)
	}
	sort.Strings(names)

	b := collision.NewLayerMatrixBuilder()
	for _, name := range names {
		a, err := collision.ParseLayer(name)
		if err != nil {
			return collision.LayerMatrix{}, fmt.Errorf("prefabs: layer matrix: %w", err)
		}
		for _, otherName := range s.Layers[name] {
			other, err := collision.ParseLayer(otherName)
			if err != nil {
				return collision.LayerMatrix{}, fmt.Errorf("prefabs: layer matrix %s: %w", name, err)
			}
			b.Allow(a, other)
		}
	}
	return b.Build()
}

// MatrixSpec is the inverse of Matrix, used when writing a matrix back out.
func MatrixSpec(m collision.LayerMatrix) LayerMatrixSpec {
	spec := LayerMatrixSpec{Layers: map[string][]string{}}
	for _, p := range m.Pairs() {
		spec.Layers[p.A.String()] = append(spec.Layers[p.A.String()], p.B.String())
	}
	return spec
}

func LoadLayerMatrix(filename string) (collision.LayerMatrix, error) {
	spec, err := LoadSpec[LayerMatrixSpec](filename)
	if err != nil {
		return collision.LayerMatrix{}, err
	}
	return spec.Matrix()
}

type VectorSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v VectorSpec) Vector() cp.Vector {
	return cp.Vector{X: v.X, Y: v.Y}
}

// ShapeSpec holds exactly one shape variant.
type ShapeSpec struct {
	Circle *CircleSpec `yaml:"circle"`
	Grid   *GridSpec   `yaml:"grid"`
}

type CircleSpec struct {
	Radius float64    `yaml:"radius"`
	Offset VectorSpec `yaml:"offset"`
}

// GridSpec describes cells as text rows: '#' is occupied, anything else is
// empty. All rows must have the same width.
type GridSpec struct {
	CellSize float64  `yaml:"cell_size"`
	Rows     []string `yaml:"rows"`
}

func (s ShapeSpec) Shape() (collision.Shape, error) {
	switch {
	case s.Circle != nil && s.Grid != nil:
		return nil, fmt.Errorf("%w: both circle and grid set", ErrInvalidShapeSpec)
	case s.Circle != nil:
		c, err := collision.NewCircle(s.Circle.Offset.Vector(), s.Circle.Radius)
		if err != nil {
			return nil, err
		}
		return c, nil
	case s.Grid != nil:
		g, err := s.Grid.Grid()
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: no shape set", ErrInvalidShapeSpec)
	}
}

func (g GridSpec) Grid() (collision.Grid, error) {
	if len(g.Rows) == 0 {
		return collision.Grid{}, fmt.Errorf("%w: grid has no rows", ErrInvalidShapeSpec)
	}
	cols := len(g.Rows[0])
	solid := make([]bool, 0, cols*len(g.Rows))
	for i, row := range g.Rows {
		if len(row) != cols {
			return collision.Grid{}, fmt.Errorf("%w: grid row %d has width %d, want %d", ErrInvalidShapeSpec, i, len(row), cols)
		}
		for j := 0; j < len(row); j++ {
			solid = append(solid, row[j] == '#')
		}
	}
	return collision.NewGrid(g.CellSize, cols, len(g.Rows), solid)
}

func (g GridSpec) String() string {
	return strings.Join(g.Rows, "\n")
}
