package world

import (
	"crypto/sha256"
	"fmt"

	"terrastream.world/internal/sim/gen"
	"terrastream.world/internal/sim/geom"
)

// State is the generation lifecycle of a chunk. Transitions only move
// forward; visibility is tracked separately and only matters once the
// chunk is StateResourceReady.
type State uint8

const (
	StateSpawned State = iota
	StateTilePending
	StateTileReady
	StateResourcePending
	StateResourceReady
)

func (s State) String() string {
	switch s {
	case StateSpawned:
		return "spawned"
	case StateTilePending:
		return "tile_pending"
	case StateTileReady:
		return "tile_ready"
	case StateResourcePending:
		return "resource_pending"
	case StateResourceReady:
		return "resource_ready"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Chunk is one generated region of the world. The tile and resource
// arrays are installed exactly once and never mutated afterwards, which
// is what makes sharing them with observer goroutines safe.
type Chunk struct {
	Coord   geom.IVec2
	State   State
	Visible bool

	Tiles     []gen.TileKind
	Resources []gen.ResourceKind

	TileDigest     [32]byte
	ResourceDigest [32]byte
}

func digestTiles(tiles []gen.TileKind) [32]byte {
	h := sha256.New()
	for _, t := range tiles {
		h.Write([]byte{byte(t)})
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func digestResources(resources []gen.ResourceKind) [32]byte {
	h := sha256.New()
	for _, r := range resources {
		h.Write([]byte{byte(r)})
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
