// Package collision holds the geometry side of collision detection:
// immutable shapes, the layer interaction matrix, contacts and the
// shape-vs-shape solver. It knows nothing about entities.
package collision

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/collision/common"
)

var (
	ErrInvalidRadius   = errors.New("collision: circle radius must be positive")
	ErrInvalidGrid     = errors.New("collision: invalid grid dimensions")
	ErrInvalidCellSize = errors.New("collision: grid cell size must be positive")
)

// ShapeKind discriminates the concrete shape variants.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota + 1
	ShapeGrid
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCircle:
		return "circle"
	case ShapeGrid:
		return "grid"
	default:
		return fmt.Sprintf("shape(%d)", uint8(k))
	}
}

// Shape is pure geometry input to the solver. Implementations are immutable.
type Shape interface {
	Kind() ShapeKind
	// Bounds returns the world-space bounding box when the shape's owner
	// sits at pos.
	Bounds(pos cp.Vector) cp.BB
}

// Circle is a circle whose centre sits at an offset from the owner position.
type Circle struct {
	offset cp.Vector
	radius float64
}

// NewCircle builds a circle shape. The radius must be positive.
func NewCircle(offset cp.Vector, radius float64) (Circle, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return Circle{}, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}
	return Circle{offset: offset, radius: radius}, nil
}

// MustCircle is NewCircle for static setup code; it panics on invalid input.
func MustCircle(offset cp.Vector, radius float64) Circle {
	c, err := NewCircle(offset, radius)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Circle) Kind() ShapeKind { return ShapeCircle }

func (c Circle) Offset() cp.Vector { return c.offset }

func (c Circle) Radius() float64 { return c.radius }

// Center returns the circle centre in world space for an owner at pos.
func (c Circle) Center(pos cp.Vector) cp.Vector {
	return pos.Add(c.offset)
}

func (c Circle) Bounds(pos cp.Vector) cp.BB {
	return cp.NewBBForCircle(c.Center(pos), c.radius)
}

// Grid is a tilemap-style shape: a row-major block of square cells, each
// either occupied or empty. The owner position is the grid's top-left corner.
type Grid struct {
	cellSize float64
	cols     int
	rows     int
	solid    []bool
}

// NewGrid builds a grid shape. solid is copied and must hold cols*rows flags.
func NewGrid(cellSize float64, cols, rows int, solid []bool) (Grid, error) {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return Grid{}, fmt.Errorf("%w: %v", ErrInvalidCellSize, cellSize)
	}
	if cols <= 0 || rows <= 0 || len(solid) != cols*rows {
		return Grid{}, fmt.Errorf("%w: %dx%d with %d cells", ErrInvalidGrid, cols, rows, len(solid))
	}
	cells := make([]bool, len(solid))
	copy(cells, solid)
	return Grid{cellSize: cellSize, cols: cols, rows: rows, solid: cells}, nil
}

// GridFromTiles builds a grid from a level tile layer; any non-zero tile is
// occupied.
func GridFromTiles(cols, rows int, tiles []int, cellSize float64) (Grid, error) {
	if cols <= 0 || rows <= 0 || len(tiles) != cols*rows {
		return Grid{}, fmt.Errorf("%w: %dx%d with %d tiles", ErrInvalidGrid, cols, rows, len(tiles))
	}
	solid := make([]bool, len(tiles))
	for i, v := range tiles {
		solid[i] = v != 0
	}
	return NewGrid(cellSize, cols, rows, solid)
}

func (g Grid) Kind() ShapeKind { return ShapeGrid }

func (g Grid) CellSize() float64 { return g.cellSize }

// Size returns the grid dimensions in cells.
func (g Grid) Size() (cols, rows int) { return g.cols, g.rows }

// Solid reports whether the cell is occupied. Out-of-range cells are empty.
func (g Grid) Solid(col, row int) bool {
	if col < 0 || row < 0 || col >= g.cols || row >= g.rows {
		return false
	}
	return g.solid[row*g.cols+col]
}

// OccupiedCount returns how many cells are occupied.
func (g Grid) OccupiedCount() int {
	n := 0
	for _, s := range g.solid {
		if s {
			n++
		}
	}
	return n
}

func (g Grid) Bounds(pos cp.Vector) cp.BB {
	return cp.BB{
		L: pos.X,
		B: pos.Y,
		R: pos.X + float64(g.cols)*g.cellSize,
		T: pos.Y + float64(g.rows)*g.cellSize,
	}
}

// CellBounds returns the world-space box of one cell for a grid at origin.
func (g Grid) CellBounds(origin cp.Vector, col, row int) cp.BB {
	x0 := origin.X + float64(col)*g.cellSize
	y0 := origin.Y + float64(row)*g.cellSize
	return cp.BB{L: x0, B: y0, R: x0 + g.cellSize, T: y0 + g.cellSize}
}

// CellRange returns the inclusive range of cells covered by bb, clamped to
// the grid. ok is false when bb lies entirely outside the grid.
func (g Grid) CellRange(origin cp.Vector, bb cp.BB) (minCol, minRow, maxCol, maxRow int, ok bool) {
	if !g.Bounds(origin).Intersects(bb) {
		return 0, 0, 0, 0, false
	}
	inv := 1.0 / g.cellSize
	minCol = common.ClampInt(int(math.Floor((bb.L-origin.X)*inv)), 0, g.cols-1)
	maxCol = common.ClampInt(int(math.Floor((bb.R-origin.X)*inv)), 0, g.cols-1)
	minRow = common.ClampInt(int(math.Floor((bb.B-origin.Y)*inv)), 0, g.rows-1)
	maxRow = common.ClampInt(int(math.Floor((bb.T-origin.Y)*inv)), 0, g.rows-1)
	return minCol, minRow, maxCol, maxRow, true
}
