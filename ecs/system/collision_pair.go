package system

import (
	"errors"
	"fmt"

	"github.com/milk9111/collision/collision"
	"github.com/milk9111/collision/ecs"
	"github.com/milk9111/collision/ecs/component"
)

var ErrSelfPair = errors.New("collision: entity paired with itself")

// PairKey identifies an unordered pair of entities. A is always the lower
// handle.
type PairKey struct {
	A, B ecs.Entity
}

func MakePairKey(a, b ecs.Entity) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// Involves reports whether e is one side of the key.
func (k PairKey) Involves(e ecs.Entity) bool {
	return k.A == e || k.B == e
}

func (k PairKey) String() string {
	return fmt.Sprintf("%s:%s", k.A, k.B)
}

// Pair is two colliding (or potentially colliding) entities. Colliders are
// copies taken when the pair was built so published pairs never change.
type Pair struct {
	A, B      ecs.Entity
	ColliderA component.Collider
	ColliderB component.Collider
	// Contact is only meaningful on confirmed pairs. Its normal points from
	// A toward B.
	Contact collision.Contact
	Trigger bool
}

// NewPair orders the sides so A < B.
func NewPair(a ecs.Entity, ca component.Collider, b ecs.Entity, cb component.Collider) (Pair, error) {
	if a == b {
		return Pair{}, fmt.Errorf("%w: %s", ErrSelfPair, a)
	}
	if b < a {
		a, b = b, a
		ca, cb = cb, ca
	}
	return Pair{
		A:         a,
		B:         b,
		ColliderA: ca,
		ColliderB: cb,
		Trigger:   ca.Trigger || cb.Trigger,
	}, nil
}

func (p Pair) Key() PairKey {
	return MakePairKey(p.A, p.B)
}

// Other returns the partner of e, or false when e is not in the pair.
func (p Pair) Other(e ecs.Entity) (ecs.Entity, bool) {
	switch e {
	case p.A:
		return p.B, true
	case p.B:
		return p.A, true
	default:
		return 0, false
	}
}

func (p Pair) Involves(e ecs.Entity) bool {
	return p.A == e || p.B == e
}
