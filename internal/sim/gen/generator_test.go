package gen

import (
	"testing"

	"terrastream.world/internal/sim/geom"
	"terrastream.world/internal/sim/mathx"
)

var testGrid = geom.Grid{ChunkSize: geom.IVec2{X: 32, Y: 32}, TileSize: geom.Vec2{X: 16, Y: 16}}

func TestGenerateTilesDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	for _, coord := range []geom.IVec2{{X: 0, Y: 0}, {X: -3, Y: 7}, {X: 100, Y: -100}} {
		a := GenerateTiles(0, coord, testGrid, cfg)
		b := GenerateTiles(0, coord, testGrid, cfg)
		if len(a) != testGrid.TilesPerChunk() {
			t.Fatalf("tile array length %d, want %d", len(a), testGrid.TilesPerChunk())
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("chunk %v tile %d differs across runs", coord, i)
			}
		}
	}
}

func TestGenerateTilesSeedSensitive(t *testing.T) {
	cfg := DefaultConfig()
	a := GenerateTiles(1, geom.IVec2{X: 0, Y: 0}, testGrid, cfg)
	b := GenerateTiles(2, geom.IVec2{X: 0, Y: 0}, testGrid, cfg)
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different world seeds produced identical chunks")
	}
}

func TestGenerateTilesThresholds(t *testing.T) {
	cfg := DefaultConfig()
	field := TerrainField(0, geom.IVec2{X: 2, Y: -1}, testGrid, cfg)
	tiles := GenerateTiles(0, geom.IVec2{X: 2, Y: -1}, testGrid, cfg)
	for i, v := range field {
		var want TileKind
		switch {
		case v < cfg.Terrain.WaterThreshold:
			want = TileWater
		case v < cfg.Terrain.GrassThreshold:
			want = TileGrass
		default:
			want = TileBarren
		}
		if tiles[i] != want {
			t.Fatalf("tile %d classified %v for value %v, want %v", i, tiles[i], v, want)
		}
	}
}

func TestGenerateResourcesDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	coord := geom.IVec2{X: -2, Y: 3}
	tiles := GenerateTiles(0, coord, testGrid, cfg)
	a := GenerateResources(0, coord, testGrid, cfg, tiles)
	b := GenerateResources(0, coord, testGrid, cfg, tiles)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("resource %d differs across runs", i)
		}
	}
}

func TestResourcesRespectEligibleTiles(t *testing.T) {
	cfg := DefaultConfig()
	for _, coord := range []geom.IVec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: -1}, {X: 4, Y: -2}} {
		tiles := GenerateTiles(0, coord, testGrid, cfg)
		resources := GenerateResources(0, coord, testGrid, cfg, tiles)
		for i, r := range resources {
			switch r {
			case ResourceTree:
				if !cfg.Tree.eligible(tiles[i]) {
					t.Fatalf("chunk %v tile %d: tree on ineligible %v", coord, i, tiles[i])
				}
			case ResourceRock:
				if !cfg.Rock.eligible(tiles[i]) {
					t.Fatalf("chunk %v tile %d: rock on ineligible %v", coord, i, tiles[i])
				}
			}
		}
	}
}

func TestNeighborChunksDiffer(t *testing.T) {
	// The per-chunk placement sub-seed must break the repeating pattern a
	// shared sampler seed would produce.
	cfg := DefaultConfig()
	a := discPoints(0, geom.IVec2{X: 0, Y: 0}, testGrid, cfg.Tree, mathx.DomainTreePlace)
	b := discPoints(0, geom.IVec2{X: 1, Y: 0}, testGrid, cfg.Tree, mathx.DomainTreePlace)
	if len(a) == len(b) {
		same := true
		for i := range a {
			if a[i] != b[i] {
				same = false
				break
			}
		}
		if same {
			t.Fatal("adjacent chunks produced identical placement patterns")
		}
	}
}

func TestPlacementPointsMatchResources(t *testing.T) {
	cfg := DefaultConfig()
	coord := geom.IVec2{X: 3, Y: 3}
	tiles := GenerateTiles(0, coord, testGrid, cfg)
	resources := GenerateResources(0, coord, testGrid, cfg, tiles)

	for _, kind := range []ResourceKind{ResourceTree, ResourceRock} {
		points := PlacementPoints(0, coord, testGrid, cfg, kind, tiles, resources)
		placed := 0
		for _, r := range resources {
			if r == kind {
				placed++
			}
		}
		if len(points) != placed {
			t.Fatalf("%v: %d placement points for %d placed tiles", kind, len(points), placed)
		}
		origin := testGrid.ChunkToWorld(coord)
		ext := testGrid.ChunkExtent()
		for _, pp := range points {
			// Each point must fall inside its chunk's world bounds.
			if pp.Pos.X < origin.X-ext.X/2 || pp.Pos.X >= origin.X+ext.X/2 ||
				pp.Pos.Y < origin.Y-ext.Y/2 || pp.Pos.Y >= origin.Y+ext.Y/2 {
				t.Fatalf("%v placement %v outside chunk %v", kind, pp.Pos, coord)
			}
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := cfg
	bad.Tree.Radius = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("zero tree radius accepted")
	}
	bad = cfg
	bad.Rock.MinNoise = bad.Rock.MaxNoise
	if err := bad.Validate(); err == nil {
		t.Fatal("empty rock band accepted")
	}
}
