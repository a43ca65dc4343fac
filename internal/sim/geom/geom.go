// Package geom holds the coordinate algebra of the tiled world. Four
// spaces are involved: world positions (float scene units), chunk
// coordinates (signed, chunks are centered on coord*extent), local tile
// coordinates (non-negative, within one chunk) and global tile
// coordinates (signed, chunk independent).
package geom

import (
	"math"

	"terrastream.world/internal/sim/mathx"
)

type Vec2 struct {
	X, Y float64
}

type IVec2 struct {
	X, Y int
}

func (a IVec2) Add(b IVec2) IVec2 { return IVec2{a.X + b.X, a.Y + b.Y} }

// Chebyshev is the chessboard distance between two chunk coordinates.
func (a IVec2) Chebyshev(b IVec2) int {
	return mathx.Chebyshev(a.X, a.Y, b.X, b.Y)
}

// Less orders coordinates row-major, for deterministic iteration.
func (a IVec2) Less(b IVec2) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.X < b.X
}

// Grid parameterizes all conversions. ChunkSize is the tile count per
// chunk per axis (positive), TileSize the world extent of one tile.
type Grid struct {
	ChunkSize IVec2
	TileSize  Vec2
}

// ChunkExtent is the world-space size of one chunk.
func (g Grid) ChunkExtent() Vec2 {
	return Vec2{
		X: float64(g.ChunkSize.X) * g.TileSize.X,
		Y: float64(g.ChunkSize.Y) * g.TileSize.Y,
	}
}

// TilesPerChunk is the length of a chunk's tile and resource arrays.
func (g Grid) TilesPerChunk() int {
	return g.ChunkSize.X * g.ChunkSize.Y
}

// WorldToChunk returns the chunk containing a world position. Chunks are
// centered, so chunk 0 covers [-extent/2, extent/2) on each axis. The
// division floors toward negative infinity; truncation would fold the
// negative half of chunk -1 into chunk 0.
func (g Grid) WorldToChunk(p Vec2) IVec2 {
	ext := g.ChunkExtent()
	return IVec2{
		X: int(math.Floor((p.X + ext.X/2) / ext.X)),
		Y: int(math.Floor((p.Y + ext.Y/2) / ext.Y)),
	}
}

// ChunkToWorld returns the world position of a chunk's center.
func (g Grid) ChunkToWorld(c IVec2) Vec2 {
	ext := g.ChunkExtent()
	return Vec2{X: float64(c.X) * ext.X, Y: float64(c.Y) * ext.Y}
}

// WorldToTile returns the local tile coordinate of a world position
// within its containing chunk. The offset from the chunk's lower corner
// is non-negative, so plain truncation is in range.
func (g Grid) WorldToTile(p Vec2) IVec2 {
	ext := g.ChunkExtent()
	c := g.WorldToChunk(p)
	origin := g.ChunkToWorld(c)
	lowerX := origin.X - ext.X/2
	lowerY := origin.Y - ext.Y/2
	tx := int((p.X - lowerX) / g.TileSize.X)
	ty := int((p.Y - lowerY) / g.TileSize.Y)
	// Guard the upper edge against float rounding.
	if tx >= g.ChunkSize.X {
		tx = g.ChunkSize.X - 1
	}
	if ty >= g.ChunkSize.Y {
		ty = g.ChunkSize.Y - 1
	}
	return IVec2{X: tx, Y: ty}
}

// TileToWorldOffset returns the offset of a tile's center relative to its
// chunk's origin. The half-size division truncates toward zero on
// purpose: odd chunk sizes keep the historical one-tile asymmetry between
// the negative and positive chunk edges.
func (g Grid) TileToWorldOffset(t IVec2) Vec2 {
	return Vec2{
		X: float64(t.X-g.ChunkSize.X/2)*g.TileSize.X + g.TileSize.X/2,
		Y: float64(t.Y-g.ChunkSize.Y/2)*g.TileSize.Y + g.TileSize.Y/2,
	}
}

// TileToWorld returns the world position of a tile's center.
func (g Grid) TileToWorld(c, t IVec2) Vec2 {
	origin := g.ChunkToWorld(c)
	off := g.TileToWorldOffset(t)
	return Vec2{X: origin.X + off.X, Y: origin.Y + off.Y}
}

// WorldToGlobal returns the chunk-independent tile coordinate containing
// a world position.
func (g Grid) WorldToGlobal(p Vec2) IVec2 {
	c := g.WorldToChunk(p)
	t := g.WorldToTile(p)
	return g.LocalToGlobal(c, t)
}

// LocalToGlobal composes a chunk coordinate and local tile coordinate
// into a global tile coordinate.
func (g Grid) LocalToGlobal(c, t IVec2) IVec2 {
	return IVec2{
		X: c.X*g.ChunkSize.X + t.X - g.ChunkSize.X/2,
		Y: c.Y*g.ChunkSize.Y + t.Y - g.ChunkSize.Y/2,
	}
}

// GlobalToLocal splits a global tile coordinate into its chunk and local
// tile coordinates. Euclidean modulo keeps the tile coordinate in range
// for negative inputs.
func (g Grid) GlobalToLocal(gt IVec2) (chunk, tile IVec2) {
	sx := gt.X + g.ChunkSize.X/2
	sy := gt.Y + g.ChunkSize.Y/2
	tile = IVec2{X: mathx.Mod(sx, g.ChunkSize.X), Y: mathx.Mod(sy, g.ChunkSize.Y)}
	chunk = IVec2{X: mathx.FloorDiv(sx, g.ChunkSize.X), Y: mathx.FloorDiv(sy, g.ChunkSize.Y)}
	return chunk, tile
}

// TileIndex maps a local tile coordinate to its row-major array index.
func (g Grid) TileIndex(t IVec2) int {
	return t.Y*g.ChunkSize.X + t.X
}

// TileCoordAt is the inverse of TileIndex.
func (g Grid) TileCoordAt(index int) IVec2 {
	return IVec2{X: index % g.ChunkSize.X, Y: index / g.ChunkSize.X}
}
