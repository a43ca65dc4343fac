package world

import "terrastream.world/internal/sim/geom"

// Streamer keeps the registry populated around the viewer and toggles
// visibility. All radii are Chebyshev distances in chunks; the load
// radius is strictly smaller than the spawn radius, so chunks are
// created ahead of the point where they must be shown.
type Streamer struct {
	grid   geom.Grid
	spawnR int
	loadR  int
}

func NewStreamer(grid geom.Grid, spawnRadius, loadRadius int) *Streamer {
	return &Streamer{grid: grid, spawnR: spawnRadius, loadR: loadRadius}
}

// Tick runs one streaming pass for the given viewer position. It never
// blocks on generation: a chunk inside the load radius that has no
// resource data yet simply stays hidden until a later tick. Returns the
// coordinates that became visible and hidden.
func (st *Streamer) Tick(reg *Registry, viewer geom.Vec2) (shown, hidden []geom.IVec2) {
	cam := st.grid.WorldToChunk(viewer)

	for dy := -st.spawnR; dy <= st.spawnR; dy++ {
		for dx := -st.spawnR; dx <= st.spawnR; dx++ {
			reg.GetOrCreate(cam.Add(geom.IVec2{X: dx, Y: dy}))
		}
	}

	for dy := -st.loadR; dy <= st.loadR; dy++ {
		for dx := -st.loadR; dx <= st.loadR; dx++ {
			coord := cam.Add(geom.IVec2{X: dx, Y: dy})
			ch, ok := reg.Get(coord)
			if !ok || ch.State != StateResourceReady || ch.Visible {
				continue
			}
			reg.MarkVisible(coord)
			shown = append(shown, coord)
		}
	}

	for _, coord := range reg.VisibleCoords() {
		if coord.Chebyshev(cam) > st.loadR {
			reg.MarkHidden(coord)
			hidden = append(hidden, coord)
		}
	}

	return shown, hidden
}

// Discover spawns chunks around an arbitrary world position, for
// collaborators other than the camera (exploring units, scripted
// reveals). Discovered chunks generate like any other but stay hidden
// until the viewer's load radius reaches them.
func (st *Streamer) Discover(reg *Registry, pos geom.Vec2, radius int) {
	center := st.grid.WorldToChunk(pos)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			reg.GetOrCreate(center.Add(geom.IVec2{X: dx, Y: dy}))
		}
	}
}
