package collision

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownLayer = errors.New("collision: unknown layer")

// Layer is a collision category tag.
type Layer uint8

const (
	LayerPlayer Layer = iota
	LayerEnemy
	LayerEnvironment
	LayerTrigger
	LayerProjectile

	// LayerCount is always last.
	LayerCount
)

var layerNames = [LayerCount]string{
	LayerPlayer:      "player",
	LayerEnemy:       "enemy",
	LayerEnvironment: "environment",
	LayerTrigger:     "trigger",
	LayerProjectile:  "projectile",
}

func (l Layer) Valid() bool {
	return l < LayerCount
}

func (l Layer) String() string {
	if !l.Valid() {
		return fmt.Sprintf("layer(%d)", uint8(l))
	}
	return layerNames[l]
}

// ParseLayer resolves a layer by its case-insensitive name.
func ParseLayer(name string) (Layer, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range layerNames {
		if s == n {
			return Layer(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLayer, name)
}

func (l Layer) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownLayer, uint8(l))
	}
	return []byte(l.String()), nil
}

func (l *Layer) UnmarshalText(text []byte) error {
	parsed, err := ParseLayer(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// LayerPair names two layers allowed to interact.
type LayerPair struct {
	A, B Layer
}

// LayerMatrix is a symmetric "can A collide with B" relation. Each row is a
// bitmask of the layers that row may touch. The zero value allows nothing.
// A matrix is fixed once built; share it freely between goroutines.
type LayerMatrix struct {
	rows [LayerCount]uint32
}

// NewLayerMatrix builds a matrix where exactly the given pairs interact.
func NewLayerMatrix(pairs ...LayerPair) (LayerMatrix, error) {
	b := NewLayerMatrixBuilder()
	for _, p := range pairs {
		b.Allow(p.A, p.B)
	}
	return b.Build()
}

// AllLayers returns a matrix where every layer interacts with every other.
func AllLayers() LayerMatrix {
	var m LayerMatrix
	for i := range m.rows {
		m.rows[i] = 1<<uint32(LayerCount) - 1
	}
	return m
}

// CanCollide reports whether colliders on a and b may interact.
func (m LayerMatrix) CanCollide(a, b Layer) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	return m.rows[a]&(1<<uint32(b)) != 0
}

// Mask returns the bitmask row for l.
func (m LayerMatrix) Mask(l Layer) uint32 {
	if !l.Valid() {
		return 0
	}
	return m.rows[l]
}

// Pairs lists the allowed pairs with A <= B, in layer order.
func (m LayerMatrix) Pairs() []LayerPair {
	var out []LayerPair
	for a := Layer(0); a < LayerCount; a++ {
		for b := a; b < LayerCount; b++ {
			if m.CanCollide(a, b) {
				out = append(out, LayerPair{A: a, B: b})
			}
		}
	}
	return out
}

// LayerMatrixBuilder accumulates allowed pairs before freezing them into a
// LayerMatrix. Invalid layers are remembered and reported by Build.
type LayerMatrixBuilder struct {
	rows [LayerCount]uint32
	err  error
}

func NewLayerMatrixBuilder() *LayerMatrixBuilder {
	return &LayerMatrixBuilder{}
}

// Allow marks a and b as interacting in both directions.
func (b *LayerMatrixBuilder) Allow(a, c Layer) *LayerMatrixBuilder {
	if !a.Valid() || !c.Valid() {
		if b.err == nil {
			b.err = fmt.Errorf("%w: pair (%d, %d)", ErrUnknownLayer, uint8(a), uint8(c))
		}
		return b
	}
	b.rows[a] |= 1 << uint32(c)
	b.rows[c] |= 1 << uint32(a)
	return b
}

func (b *LayerMatrixBuilder) Build() (LayerMatrix, error) {
	if b.err != nil {
		return LayerMatrix{}, b.err
	}
	return LayerMatrix{rows: b.rows}, nil
}
