package geom

import "testing"

func grid(csx, csy int, tsx, tsy float64) Grid {
	return Grid{ChunkSize: IVec2{csx, csy}, TileSize: Vec2{tsx, tsy}}
}

func TestIVec2Add(t *testing.T) {
	if got := (IVec2{2, -3}).Add(IVec2{-5, 4}); got != (IVec2{-3, 1}) {
		t.Errorf("Add = %v, want (-3,1)", got)
	}
}

func TestChunkRoundTrip(t *testing.T) {
	g := grid(32, 32, 16, 16)
	for y := -5; y <= 5; y++ {
		for x := -5; x <= 5; x++ {
			c := IVec2{x, y}
			if got := g.WorldToChunk(g.ChunkToWorld(c)); got != c {
				t.Errorf("round trip of %v produced %v", c, got)
			}
		}
	}
}

func TestChunkToWorldCentering(t *testing.T) {
	g := grid(2, 2, 4, 4)
	if got := g.ChunkToWorld(IVec2{1, 1}); got != (Vec2{8, 8}) {
		t.Errorf("ChunkToWorld((1,1)) = %v, want (8,8)", got)
	}
	if got := g.ChunkToWorld(IVec2{-1, 1}); got != (Vec2{-8, 8}) {
		t.Errorf("ChunkToWorld((-1,1)) = %v, want (-8,8)", got)
	}
}

func TestWorldToChunkNegativeFloor(t *testing.T) {
	g := grid(2, 2, 4, 4)
	// Truncation would wrongly produce (0,1) for x=-8.
	if got := g.WorldToChunk(Vec2{-8, 8}); got != (IVec2{-1, 1}) {
		t.Errorf("WorldToChunk((-8,8)) = %v, want (-1,1)", got)
	}
	// Chunk 0 covers [-extent/2, extent/2).
	if got := g.WorldToChunk(Vec2{-4, 0}); got != (IVec2{-1, 0}) {
		t.Errorf("WorldToChunk((-4,0)) = %v, want (-1,0)", got)
	}
	if got := g.WorldToChunk(Vec2{3.99, 3.99}); got != (IVec2{0, 0}) {
		t.Errorf("WorldToChunk((3.99,3.99)) = %v, want (0,0)", got)
	}
	if got := g.WorldToChunk(Vec2{4, 4}); got != (IVec2{1, 1}) {
		t.Errorf("WorldToChunk((4,4)) = %v, want (1,1)", got)
	}
}

func TestWorldToGlobal(t *testing.T) {
	g := grid(2, 2, 4, 4)
	if got := g.WorldToGlobal(Vec2{8, 8}); got != (IVec2{2, 2}) {
		t.Errorf("WorldToGlobal((8,8)) = %v, want (2,2)", got)
	}
	if got := g.WorldToGlobal(Vec2{-8, 8}); got != (IVec2{-2, 2}) {
		t.Errorf("WorldToGlobal((-8,8)) = %v, want (-2,2)", got)
	}
}

func TestTileToWorldOffset(t *testing.T) {
	g := grid(16, 16, 32, 32)
	if got := g.TileToWorldOffset(IVec2{12, 12}); got != (Vec2{144, 144}) {
		t.Errorf("TileToWorldOffset((12,12)) = %v, want (144,144)", got)
	}
}

func TestGlobalLocalRoundTrip(t *testing.T) {
	g := grid(32, 32, 16, 16)
	for gy := -70; gy <= 70; gy += 7 {
		for gx := -70; gx <= 70; gx += 7 {
			gt := IVec2{gx, gy}
			c, tile := g.GlobalToLocal(gt)
			if tile.X < 0 || tile.X >= g.ChunkSize.X || tile.Y < 0 || tile.Y >= g.ChunkSize.Y {
				t.Fatalf("tile coordinate %v out of range for global %v", tile, gt)
			}
			if back := g.LocalToGlobal(c, tile); back != gt {
				t.Fatalf("GlobalToLocal(%v) = (%v, %v), LocalToGlobal returned %v", gt, c, tile, back)
			}
		}
	}
}

func TestTileIndexRoundTrip(t *testing.T) {
	g := grid(32, 16, 1, 1)
	for i := 0; i < g.TilesPerChunk(); i++ {
		tc := g.TileCoordAt(i)
		if got := g.TileIndex(tc); got != i {
			t.Fatalf("TileIndex(TileCoordAt(%d)) = %d", i, got)
		}
	}
	if g.TileIndex(IVec2{3, 2}) != 2*32+3 {
		t.Fatal("row-major indexing broken")
	}
}

func TestWorldToTileInRange(t *testing.T) {
	g := grid(32, 32, 16, 16)
	positions := []Vec2{
		{0, 0}, {-255.9, -255.9}, {255.9, 255.9},
		{-256, -256}, {511, -1}, {-0.001, 0.001},
	}
	for _, p := range positions {
		tc := g.WorldToTile(p)
		if tc.X < 0 || tc.X >= 32 || tc.Y < 0 || tc.Y >= 32 {
			t.Errorf("WorldToTile(%v) = %v, out of range", p, tc)
		}
	}
}

func TestTileToWorldAgreesWithWorldToTile(t *testing.T) {
	g := grid(4, 4, 2, 2)
	for cy := -2; cy <= 2; cy++ {
		for cx := -2; cx <= 2; cx++ {
			c := IVec2{cx, cy}
			for i := 0; i < g.TilesPerChunk(); i++ {
				tile := g.TileCoordAt(i)
				p := g.TileToWorld(c, tile)
				if got := g.WorldToChunk(p); got != c {
					t.Fatalf("tile center %v of chunk %v resolved to chunk %v", tile, c, got)
				}
				if got := g.WorldToTile(p); got != tile {
					t.Fatalf("tile center %v of chunk %v resolved to tile %v", tile, c, got)
				}
			}
		}
	}
}
