// Package gen turns sub-seeded noise fields and blue-noise placement into
// per-chunk tile and resource arrays. Every function here is a pure
// function of (seed, chunk coordinate, grid, config): regenerating a
// chunk always reproduces bit-identical data, regardless of discovery
// order or thread interleaving.
package gen

import (
	"terrastream.world/internal/sim/geom"
	"terrastream.world/internal/sim/mathx"
	"terrastream.world/internal/sim/noise"
	"terrastream.world/internal/sim/sampling"
)

// TerrainField samples the fractal classification field over one chunk's
// window at tile resolution. Shared by the tile pass and the resource
// pass (band eligibility), which therefore agree bit for bit.
func TerrainField(worldSeed uint64, coord geom.IVec2, grid geom.Grid, cfg Config) []float64 {
	f := noise.NewFractal(
		mathx.FieldSeed(worldSeed, mathx.DomainTerrain),
		cfg.Terrain.Frequency,
		cfg.Terrain.Octaves,
		cfg.Terrain.Persistence,
		cfg.Terrain.Lacunarity,
	)
	return noise.SampleWindow(f, coord, cfg.Terrain.BoundsInterval, grid.ChunkSize.X, grid.ChunkSize.Y)
}

// GenerateTiles thresholds the terrain field into tile kinds.
func GenerateTiles(worldSeed uint64, coord geom.IVec2, grid geom.Grid, cfg Config) []TileKind {
	field := TerrainField(worldSeed, coord, grid, cfg)
	tiles := make([]TileKind, len(field))
	for i, v := range field {
		switch {
		case v < cfg.Terrain.WaterThreshold:
			tiles[i] = TileWater
		case v < cfg.Terrain.GrassThreshold:
			tiles[i] = TileGrass
		default:
			tiles[i] = TileBarren
		}
	}
	return tiles
}

// DensityField samples one resource kind's cellular mask over the
// chunk's window at tile resolution.
func DensityField(worldSeed uint64, coord geom.IVec2, grid geom.Grid, cfg Config, kind ResourceKind) []float64 {
	p, maskDomain, _ := cfg.params(kind)
	w := noise.NewWorley(mathx.FieldSeed(worldSeed, maskDomain), p.Frequency)
	return noise.SampleWindow(w, coord, cfg.Terrain.BoundsInterval, grid.ChunkSize.X, grid.ChunkSize.Y)
}

// discPoints are the raw blue-noise candidates for one chunk and kind, in
// tile units over [0, chunk_size). The sub-seed is derived per chunk per
// kind, so neighbouring chunks never repeat the same pattern.
func discPoints(worldSeed uint64, coord geom.IVec2, grid geom.Grid, p ResourceParams, placeDomain mathx.Domain) []geom.Vec2 {
	seed := mathx.ChunkSeed(worldSeed, placeDomain, coord.X, coord.Y)
	area := geom.Vec2{X: float64(grid.ChunkSize.X), Y: float64(grid.ChunkSize.Y)}
	return sampling.NewDisc(seed).Sample(p.Radius, area, p.K)
}

// GenerateResources produces the resource array for a chunk whose tile
// array is already known. For each kind, in fixed order, the blue-noise
// candidates are filtered by the tile classification, the terrain-field
// band and the density mask; the first kind to claim a tile wins.
func GenerateResources(worldSeed uint64, coord geom.IVec2, grid geom.Grid, cfg Config, tiles []TileKind) []ResourceKind {
	field := TerrainField(worldSeed, coord, grid, cfg)
	resources := make([]ResourceKind, len(tiles))

	for _, kind := range []ResourceKind{ResourceTree, ResourceRock} {
		p, _, placeDomain := cfg.params(kind)
		density := DensityField(worldSeed, coord, grid, cfg, kind)

		for _, pt := range discPoints(worldSeed, coord, grid, p, placeDomain) {
			tile := geom.IVec2{X: int(pt.X), Y: int(pt.Y)}
			if tile.X >= grid.ChunkSize.X || tile.Y >= grid.ChunkSize.Y {
				continue
			}
			i := grid.TileIndex(tile)
			if resources[i] != ResourceNone {
				continue
			}
			if !p.eligible(tiles[i]) {
				continue
			}
			if field[i] < p.MinNoise || field[i] >= p.MaxNoise {
				continue
			}
			if density[i] > p.DiscardThreshold {
				continue
			}
			resources[i] = kind
		}
	}

	return resources
}

// PlacementPoint is an exact world-space prop position with the terrain
// value at its tile, for renderer-side variant selection.
type PlacementPoint struct {
	Pos   geom.Vec2
	Noise float64
}

// PlacementPoints recomputes world-space positions for a chunk's placed
// resources of one kind. Renderers call this instead of receiving point
// lists over the wire; the same sub-seed derivation guarantees they agree
// with the generator.
func PlacementPoints(worldSeed uint64, coord geom.IVec2, grid geom.Grid, cfg Config, kind ResourceKind, tiles []TileKind, resources []ResourceKind) []PlacementPoint {
	field := TerrainField(worldSeed, coord, grid, cfg)
	p, _, placeDomain := cfg.params(kind)
	density := DensityField(worldSeed, coord, grid, cfg, kind)
	origin := grid.ChunkToWorld(coord)
	ext := grid.ChunkExtent()

	// A tile is claimed by the first passing candidate, exactly as in
	// GenerateResources; later candidates on the same tile were skipped.
	claimed := make(map[int]bool)

	var out []PlacementPoint
	for _, pt := range discPoints(worldSeed, coord, grid, p, placeDomain) {
		tile := geom.IVec2{X: int(pt.X), Y: int(pt.Y)}
		if tile.X >= grid.ChunkSize.X || tile.Y >= grid.ChunkSize.Y {
			continue
		}
		i := grid.TileIndex(tile)
		if resources[i] != kind || claimed[i] {
			continue
		}
		if !p.eligible(tiles[i]) {
			continue
		}
		if field[i] < p.MinNoise || field[i] >= p.MaxNoise {
			continue
		}
		if density[i] > p.DiscardThreshold {
			continue
		}
		claimed[i] = true
		out = append(out, PlacementPoint{
			Pos: geom.Vec2{
				X: origin.X - ext.X/2 + pt.X*grid.TileSize.X,
				Y: origin.Y - ext.Y/2 + pt.Y*grid.TileSize.Y,
			},
			Noise: field[i],
		})
	}
	return out
}

// TreeVariant reports whether the snowy tree prop should be used for a
// placement with the given terrain value.
func TreeVariant(cfg Config, noiseValue float64) bool {
	return noiseValue >= cfg.TreeVariantThreshold
}
