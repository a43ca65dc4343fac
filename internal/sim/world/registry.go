package world

import (
	"fmt"
	"sort"

	"terrastream.world/internal/sim/gen"
	"terrastream.world/internal/sim/geom"
)

// Registry is the authoritative map from chunk coordinate to chunk
// record. It is owned by the controlling loop: no locking, no concurrent
// access. Chunks are never removed once created.
type Registry struct {
	grid    geom.Grid
	chunks  map[geom.IVec2]*Chunk
	visible map[geom.IVec2]*Chunk
}

func NewRegistry(grid geom.Grid) *Registry {
	return &Registry{
		grid:    grid,
		chunks:  map[geom.IVec2]*Chunk{},
		visible: map[geom.IVec2]*Chunk{},
	}
}

// GetOrCreate returns the chunk at coord, creating the placeholder
// record if it does not exist yet. Idempotent: the registry never holds
// two records for the same coordinate.
func (r *Registry) GetOrCreate(coord geom.IVec2) *Chunk {
	if ch, ok := r.chunks[coord]; ok {
		return ch
	}
	ch := &Chunk{Coord: coord, State: StateSpawned}
	r.chunks[coord] = ch
	return ch
}

func (r *Registry) Get(coord geom.IVec2) (*Chunk, bool) {
	ch, ok := r.chunks[coord]
	return ch, ok
}

func (r *Registry) Contains(coord geom.IVec2) bool {
	_, ok := r.chunks[coord]
	return ok
}

func (r *Registry) Len() int { return len(r.chunks) }

// Coords returns every chunk coordinate in row-major order, for
// deterministic scans.
func (r *Registry) Coords() []geom.IVec2 {
	coords := make([]geom.IVec2, 0, len(r.chunks))
	for c := range r.chunks {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	return coords
}

// VisibleCoords returns the coordinates of all visible chunks, sorted.
func (r *Registry) VisibleCoords() []geom.IVec2 {
	coords := make([]geom.IVec2, 0, len(r.visible))
	for c := range r.visible {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	return coords
}

// BeginTiles transitions a chunk into StateTilePending. Called by the
// scheduler immediately after a successful dispatch, which is what makes
// double-dispatch impossible.
func (r *Registry) BeginTiles(coord geom.IVec2) {
	ch := r.mustGet(coord)
	if ch.State != StateSpawned {
		panic(fmt.Sprintf("world: BeginTiles on chunk %v in state %v", coord, ch.State))
	}
	ch.State = StateTilePending
}

// BeginResources transitions a chunk into StateResourcePending.
func (r *Registry) BeginResources(coord geom.IVec2) {
	ch := r.mustGet(coord)
	if ch.State != StateTileReady {
		panic(fmt.Sprintf("world: BeginResources on chunk %v in state %v", coord, ch.State))
	}
	ch.State = StateResourcePending
}

// InstallTiles installs a generated tile array. Installing on a chunk
// that is not tile-pending is a programming error and fails loudly.
func (r *Registry) InstallTiles(coord geom.IVec2, tiles []gen.TileKind) *Chunk {
	ch := r.mustGet(coord)
	if ch.State != StateTilePending {
		panic(fmt.Sprintf("world: InstallTiles on chunk %v in state %v", coord, ch.State))
	}
	if len(tiles) != r.grid.TilesPerChunk() {
		panic(fmt.Sprintf("world: InstallTiles on chunk %v with %d tiles, want %d", coord, len(tiles), r.grid.TilesPerChunk()))
	}
	ch.Tiles = tiles
	ch.TileDigest = digestTiles(tiles)
	ch.State = StateTileReady
	return ch
}

// InstallResources installs a generated resource array, making the chunk
// eligible for visibility.
func (r *Registry) InstallResources(coord geom.IVec2, resources []gen.ResourceKind) *Chunk {
	ch := r.mustGet(coord)
	if ch.State != StateResourcePending {
		panic(fmt.Sprintf("world: InstallResources on chunk %v in state %v", coord, ch.State))
	}
	if len(resources) != r.grid.TilesPerChunk() {
		panic(fmt.Sprintf("world: InstallResources on chunk %v with %d entries, want %d", coord, len(resources), r.grid.TilesPerChunk()))
	}
	ch.Resources = resources
	ch.ResourceDigest = digestResources(resources)
	ch.State = StateResourceReady
	return ch
}

// MarkVisible shows a resource-ready chunk. Reports whether the flag
// changed.
func (r *Registry) MarkVisible(coord geom.IVec2) bool {
	ch := r.mustGet(coord)
	if ch.State != StateResourceReady {
		panic(fmt.Sprintf("world: MarkVisible on chunk %v in state %v", coord, ch.State))
	}
	if ch.Visible {
		return false
	}
	ch.Visible = true
	r.visible[coord] = ch
	return true
}

// MarkHidden hides a chunk. Reports whether the flag changed.
func (r *Registry) MarkHidden(coord geom.IVec2) bool {
	ch := r.mustGet(coord)
	if !ch.Visible {
		return false
	}
	ch.Visible = false
	delete(r.visible, coord)
	return true
}

func (r *Registry) mustGet(coord geom.IVec2) *Chunk {
	ch, ok := r.chunks[coord]
	if !ok {
		panic(fmt.Sprintf("world: no chunk at %v", coord))
	}
	return ch
}
