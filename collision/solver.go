package collision

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

// ErrUnsupportedShapePair means no solver is registered for a shape
// combination. It is a configuration error, never "no collision".
var ErrUnsupportedShapePair = errors.New("collision: unsupported shape pair")

// Contact describes an intersection between shape A and shape B.
type Contact struct {
	// Point is an approximate world-space point inside the overlap.
	Point cp.Vector
	// Normal is the unit direction from A toward B.
	Normal cp.Vector
	// Depth is the penetration depth along Normal.
	Depth float64
}

// Flip returns the contact as seen from B toward A.
func (c Contact) Flip() Contact {
	return Contact{Point: c.Point, Normal: c.Normal.Neg(), Depth: c.Depth}
}

// SolveFunc tests a against b. It reports a contact only for real overlap.
// A shape of an unexpected concrete type is an error wrapping
// ErrUnsupportedShapePair, never a miss.
type SolveFunc func(a Shape, posA cp.Vector, b Shape, posB cp.Vector) (Contact, bool, error)

type kindPair struct {
	a, b ShapeKind
}

// Solver dispatches shape pairs to their SolveFunc. Register everything during
// setup; Solve is safe for concurrent use once registration is done.
type Solver struct {
	funcs map[kindPair]SolveFunc
}

// NewSolver returns a solver with circle-circle and circle-grid registered.
func NewSolver() *Solver {
	s := &Solver{funcs: make(map[kindPair]SolveFunc)}
	s.Register(ShapeCircle, ShapeCircle, solveCircleCircle)
	s.Register(ShapeCircle, ShapeGrid, solveCircleGrid)
	return s
}

// Register installs fn for (a, b). The reversed order (b, a) is served by the
// same function with the arguments swapped and the normal flipped, unless it
// has its own registration.
func (s *Solver) Register(a, b ShapeKind, fn SolveFunc) {
	if s.funcs == nil {
		s.funcs = make(map[kindPair]SolveFunc)
	}
	s.funcs[kindPair{a, b}] = fn
}

// Supports reports whether a pair of kinds can be solved.
func (s *Solver) Supports(a, b ShapeKind) bool {
	if s == nil {
		return false
	}
	if _, ok := s.funcs[kindPair{a, b}]; ok {
		return true
	}
	_, ok := s.funcs[kindPair{b, a}]
	return ok
}

// Solve tests two shapes at their world positions. *Circle and *Grid are
// accepted and solved as their values.
func (s *Solver) Solve(a Shape, posA cp.Vector, b Shape, posB cp.Vector) (Contact, bool, error) {
	a, b = derefShape(a), derefShape(b)
	if a == nil || b == nil {
		return Contact{}, false, nil
	}
	if s != nil {
		if fn, ok := s.funcs[kindPair{a.Kind(), b.Kind()}]; ok {
			return fn(a, posA, b, posB)
		}
		if fn, ok := s.funcs[kindPair{b.Kind(), a.Kind()}]; ok {
			c, hit, err := fn(b, posB, a, posA)
			if err != nil || !hit {
				return Contact{}, false, err
			}
			return c.Flip(), true, nil
		}
	}
	return Contact{}, false, fmt.Errorf("%w: %s vs %s", ErrUnsupportedShapePair, a.Kind(), b.Kind())
}

// derefShape turns pointers to the built-in shapes into values. A nil
// pointer becomes a nil Shape.
func derefShape(s Shape) Shape {
	switch v := s.(type) {
	case *Circle:
		if v == nil {
			return nil
		}
		return *v
	case *Grid:
		if v == nil {
			return nil
		}
		return *v
	}
	return s
}

func shapeTypeError(want string, got Shape) error {
	return fmt.Errorf("%w: %s solver got %T", ErrUnsupportedShapePair, want, got)
}

// solveCircleCircle rejects on squared distance and only takes the square
// root once overlap is confirmed. Touching circles do not collide.
func solveCircleCircle(a Shape, posA cp.Vector, b Shape, posB cp.Vector) (Contact, bool, error) {
	ca, ok := a.(Circle)
	if !ok {
		return Contact{}, false, shapeTypeError("circle", a)
	}
	cb, ok := b.(Circle)
	if !ok {
		return Contact{}, false, shapeTypeError("circle", b)
	}
	centerA := ca.Center(posA)
	centerB := cb.Center(posB)
	delta := centerB.Sub(centerA)
	distSq := delta.LengthSq()
	sum := ca.radius + cb.radius
	if distSq >= sum*sum {
		return Contact{}, false, nil
	}

	dist := math.Sqrt(distSq)
	normal := cp.Vector{X: 1, Y: 0}
	if dist > 0 {
		normal = delta.Mult(1 / dist)
	}
	depth := sum - dist
	return Contact{
		Point:  centerA.Add(normal.Mult(ca.radius - depth/2)),
		Normal: normal,
		Depth:  depth,
	}, true, nil
}

// solveCircleGrid tests the occupied cells under the circle's bounding box and
// keeps the deepest contact.
func solveCircleGrid(a Shape, posA cp.Vector, b Shape, posB cp.Vector) (Contact, bool, error) {
	circle, ok := a.(Circle)
	if !ok {
		return Contact{}, false, shapeTypeError("circle", a)
	}
	grid, ok := b.(Grid)
	if !ok {
		return Contact{}, false, shapeTypeError("grid", b)
	}

	center := circle.Center(posA)
	r := circle.radius
	minCol, minRow, maxCol, maxRow, ok := grid.CellRange(posB, cp.NewBBForCircle(center, r))
	if !ok {
		return Contact{}, false, nil
	}

	var best Contact
	found := false
	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			if !grid.Solid(col, row) {
				continue
			}
			c, hit := circleCellContact(center, r, grid.CellBounds(posB, col, row))
			if !hit {
				continue
			}
			if !found || c.Depth > best.Depth {
				best = c
				found = true
			}
		}
	}
	return best, found, nil
}

func circleCellContact(center cp.Vector, r float64, cell cp.BB) (Contact, bool) {
	closest := cp.Vector{
		X: math.Max(cell.L, math.Min(center.X, cell.R)),
		Y: math.Max(cell.B, math.Min(center.Y, cell.T)),
	}
	delta := closest.Sub(center)
	distSq := delta.LengthSq()
	if distSq >= r*r {
		return Contact{}, false
	}

	if distSq > 0 {
		dist := math.Sqrt(distSq)
		return Contact{Point: closest, Normal: delta.Mult(1 / dist), Depth: r - dist}, true
	}

	// Centre inside the cell: push out through the nearest face. The normal
	// points from the circle into the cell, opposite the face's outward normal.
	faces := [4]struct {
		dist   float64
		normal cp.Vector
		point  cp.Vector
	}{
		{center.X - cell.L, cp.Vector{X: 1, Y: 0}, cp.Vector{X: cell.L, Y: center.Y}},
		{cell.R - center.X, cp.Vector{X: -1, Y: 0}, cp.Vector{X: cell.R, Y: center.Y}},
		{center.Y - cell.B, cp.Vector{X: 0, Y: 1}, cp.Vector{X: center.X, Y: cell.B}},
		{cell.T - center.Y, cp.Vector{X: 0, Y: -1}, cp.Vector{X: center.X, Y: cell.T}},
	}
	nearest := faces[0]
	for _, f := range faces[1:] {
		if f.dist < nearest.dist {
			nearest = f
		}
	}
	return Contact{Point: nearest.point, Normal: nearest.normal, Depth: r + nearest.dist}, true
}
