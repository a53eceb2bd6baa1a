package collision

import (
	"errors"
	"math"
	"testing"

	"github.com/jakecoffman/cp"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestSolveCircleCircle(t *testing.T) {
	s := NewSolver()
	unit := MustCircle(cp.Vector{}, 1)

	cases := []struct {
		name   string
		a, b   Circle
		posA   cp.Vector
		posB   cp.Vector
		hit    bool
		depth  float64
		normal cp.Vector
	}{
		{"overlap", unit, unit, cp.Vector{}, cp.Vector{X: 1.5}, true, 0.5, cp.Vector{X: 1}},
		{"far_apart", unit, unit, cp.Vector{}, cp.Vector{X: 5}, false, 0, cp.Vector{}},
		{"touching", unit, unit, cp.Vector{}, cp.Vector{X: 2}, false, 0, cp.Vector{}},
		{"vertical", unit, unit, cp.Vector{}, cp.Vector{Y: -1}, true, 1, cp.Vector{Y: -1}},
		{"coincident", unit, unit, cp.Vector{X: 3, Y: 3}, cp.Vector{X: 3, Y: 3}, true, 2, cp.Vector{X: 1}},
		{"offset_moves_centre", MustCircle(cp.Vector{X: 3}, 1), unit, cp.Vector{}, cp.Vector{X: 4.5}, true, 0.5, cp.Vector{X: 1}},
		{"different_radii", MustCircle(cp.Vector{}, 2), MustCircle(cp.Vector{}, 0.5), cp.Vector{}, cp.Vector{X: 2}, true, 0.5, cp.Vector{X: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, hit, err := s.Solve(tc.a, tc.posA, tc.b, tc.posB)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if hit != tc.hit {
				t.Fatalf("expected hit=%v, got %v", tc.hit, hit)
			}
			if !hit {
				return
			}
			if !near(c.Depth, tc.depth) {
				t.Fatalf("expected depth %v, got %v", tc.depth, c.Depth)
			}
			if !near(c.Normal.X, tc.normal.X) || !near(c.Normal.Y, tc.normal.Y) {
				t.Fatalf("expected normal %v, got %v", tc.normal, c.Normal)
			}
		})
	}
}

func TestSolveCircleCircleContactPointBetweenCentres(t *testing.T) {
	s := NewSolver()
	unit := MustCircle(cp.Vector{}, 1)
	c, hit, err := s.Solve(unit, cp.Vector{}, unit, cp.Vector{X: 1.5})
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if !near(c.Point.X, 0.75) || !near(c.Point.Y, 0) {
		t.Fatalf("expected contact point at (0.75, 0), got %v", c.Point)
	}
}

func TestSolveIsSymmetric(t *testing.T) {
	s := NewSolver()
	unit := MustCircle(cp.Vector{}, 1)
	ab, hitAB, _ := s.Solve(unit, cp.Vector{}, unit, cp.Vector{X: 1.5})
	ba, hitBA, _ := s.Solve(unit, cp.Vector{X: 1.5}, unit, cp.Vector{})
	if hitAB != hitBA {
		t.Fatalf("expected symmetric hit, got %v and %v", hitAB, hitBA)
	}
	if !near(ab.Depth, ba.Depth) || !near(ab.Normal.X, -ba.Normal.X) {
		t.Fatalf("expected mirrored contacts, got %+v and %+v", ab, ba)
	}
}

func testGrid(t *testing.T) Grid {
	t.Helper()
	// 3x3 with only the centre cell solid, 10 units per cell.
	g, err := NewGrid(10, 3, 3, []bool{
		false, false, false,
		false, true, false,
		false, false, false,
	})
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func TestSolveCircleGrid(t *testing.T) {
	s := NewSolver()
	g := testGrid(t)

	cases := []struct {
		name   string
		center cp.Vector
		radius float64
		hit    bool
		depth  float64
		normal cp.Vector
	}{
		{"empty_cell_only", cp.Vector{X: 5, Y: 5}, 2, false, 0, cp.Vector{}},
		{"left_of_solid", cp.Vector{X: 8, Y: 15}, 3, true, 1, cp.Vector{X: 1}},
		{"touching_face", cp.Vector{X: 7, Y: 15}, 3, false, 0, cp.Vector{}},
		{"above_solid", cp.Vector{X: 15, Y: 8}, 3, true, 1, cp.Vector{Y: 1}},
		{"centre_inside_near_right", cp.Vector{X: 19, Y: 15}, 2, true, 3, cp.Vector{X: -1}},
		{"outside_grid", cp.Vector{X: 100, Y: 100}, 5, false, 0, cp.Vector{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			circle := MustCircle(cp.Vector{}, tc.radius)
			c, hit, err := s.Solve(circle, tc.center, g, cp.Vector{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if hit != tc.hit {
				t.Fatalf("expected hit=%v, got %v (%+v)", tc.hit, hit, c)
			}
			if !hit {
				return
			}
			if !near(c.Depth, tc.depth) {
				t.Fatalf("expected depth %v, got %v", tc.depth, c.Depth)
			}
			if !near(c.Normal.X, tc.normal.X) || !near(c.Normal.Y, tc.normal.Y) {
				t.Fatalf("expected normal %v, got %v", tc.normal, c.Normal)
			}
		})
	}
}

func TestSolveGridCircleFlipsNormal(t *testing.T) {
	s := NewSolver()
	g := testGrid(t)
	circle := MustCircle(cp.Vector{}, 3)

	c, hit, err := s.Solve(g, cp.Vector{}, circle, cp.Vector{X: 8, Y: 15})
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if !near(c.Normal.X, -1) || !near(c.Normal.Y, 0) {
		t.Fatalf("expected normal pointing from grid to circle, got %v", c.Normal)
	}
}

func TestSolveGridOffsetOrigin(t *testing.T) {
	s := NewSolver()
	g := testGrid(t)
	circle := MustCircle(cp.Vector{}, 3)
	origin := cp.Vector{X: 100, Y: -50}

	_, hit, err := s.Solve(circle, cp.Vector{X: 108, Y: -35}, g, origin)
	if err != nil || !hit {
		t.Fatalf("expected hit against moved grid, got hit=%v err=%v", hit, err)
	}
}

func TestSolveUnsupportedPair(t *testing.T) {
	s := NewSolver()
	g := testGrid(t)
	_, hit, err := s.Solve(g, cp.Vector{}, g, cp.Vector{})
	if !errors.Is(err, ErrUnsupportedShapePair) {
		t.Fatalf("expected ErrUnsupportedShapePair, got %v", err)
	}
	if hit {
		t.Fatalf("unsupported pair must not report a hit")
	}
	if s.Supports(ShapeGrid, ShapeGrid) {
		t.Fatalf("grid-grid should not be supported")
	}
	if !s.Supports(ShapeGrid, ShapeCircle) {
		t.Fatalf("grid-circle should be served by the circle-grid solver")
	}
}

func TestSolveRegisterCustom(t *testing.T) {
	s := NewSolver()
	calls := 0
	s.Register(ShapeGrid, ShapeGrid, func(a Shape, posA cp.Vector, b Shape, posB cp.Vector) (Contact, bool, error) {
		calls++
		return Contact{Normal: cp.Vector{X: 1}, Depth: 1}, true, nil
	})
	g := testGrid(t)
	_, hit, err := s.Solve(g, cp.Vector{}, g, cp.Vector{})
	if err != nil || !hit || calls != 1 {
		t.Fatalf("expected custom solver to run once, got hit=%v err=%v calls=%d", hit, err, calls)
	}
}

// fakeCircle claims the circle kind without being a Circle.
type fakeCircle struct{}

func (fakeCircle) Kind() ShapeKind { return ShapeCircle }

func (fakeCircle) Bounds(pos cp.Vector) cp.BB { return cp.NewBBForCircle(pos, 1) }

func TestSolvePointerShapes(t *testing.T) {
	s := NewSolver()
	circle := MustCircle(cp.Vector{}, 1)
	grid := testGrid(t)
	var nilCircle *Circle

	tests := []struct {
		name    string
		a, b    Shape
		posB    cp.Vector
		wantHit bool
	}{
		{name: "pointer circle overlaps value", a: &circle, b: circle, posB: cp.Vector{X: 1.5}, wantHit: true},
		{name: "value circle overlaps pointer", a: circle, b: &circle, posB: cp.Vector{X: 1.5}, wantHit: true},
		{name: "pointer circles apart", a: &circle, b: &circle, posB: cp.Vector{X: 5}},
		{name: "pointer grid swapped", a: &grid, b: circle, posB: cp.Vector{X: 15, Y: 15}, wantHit: true},
		{name: "nil pointer is no shape", a: nilCircle, b: circle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, hit, err := s.Solve(tt.a, cp.Vector{}, tt.b, tt.posB)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if hit != tt.wantHit {
				t.Fatalf("hit=%v, want %v", hit, tt.wantHit)
			}
		})
	}
}

func TestSolveForeignShapeIsError(t *testing.T) {
	s := NewSolver()
	circle := MustCircle(cp.Vector{}, 1)
	grid := testGrid(t)

	tests := []struct {
		name string
		a, b Shape
	}{
		{name: "circle-circle", a: fakeCircle{}, b: circle},
		{name: "circle-circle swapped", a: circle, b: fakeCircle{}},
		{name: "circle-grid", a: fakeCircle{}, b: grid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, hit, err := s.Solve(tt.a, cp.Vector{}, tt.b, cp.Vector{})
			if !errors.Is(err, ErrUnsupportedShapePair) {
				t.Fatalf("want ErrUnsupportedShapePair, got %v", err)
			}
			if hit {
				t.Fatalf("a failed solve must not report a hit")
			}
		})
	}
}
