package common

// TileSize is the edge length in pixels of one level tile.
const TileSize = 32

// ClampInt clamps v into [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
