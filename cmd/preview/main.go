// Command preview renders a square region of the generated world to a
// PNG, one pixel per tile. Purely offline: the same seed and tuning
// always produce a byte-identical image, which makes it a handy
// regression check when touching generation code.
package main

import (
	"flag"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"terrastream.world/internal/sim/gen"
	"terrastream.world/internal/sim/geom"
	"terrastream.world/internal/tuning"
)

var (
	colWater     = color.RGBA{36, 88, 168, 255}
	colGrass     = color.RGBA{92, 158, 74, 255}
	colBarren    = color.RGBA{158, 140, 108, 255}
	colTree      = color.RGBA{30, 84, 38, 255}
	colSnowyTree = color.RGBA{214, 228, 222, 255}
	colRock      = color.RGBA{84, 84, 90, 255}
)

func main() {
	var (
		seed       = flag.Uint64("seed", 1337, "world seed")
		radius     = flag.Int("radius", 4, "chunk radius around the origin")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "path to tuning.yaml")
		out        = flag.String("out", "preview.png", "output png path")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[preview] ", log.LstdFlags)

	tune, err := tuning.Load(strings.TrimSpace(*tuningPath))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		tune = tuning.Defaults()
	}
	cfg, err := tune.WorldConfig("preview", *seed)
	if err != nil {
		logger.Fatalf("world config: %v", err)
	}
	grid := cfg.Grid
	r := *radius

	width := (2*r + 1) * grid.ChunkSize.X
	height := (2*r + 1) * grid.ChunkSize.Y
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for cy := -r; cy <= r; cy++ {
		for cx := -r; cx <= r; cx++ {
			coord := geom.IVec2{X: cx, Y: cy}
			tiles := gen.GenerateTiles(cfg.Seed, coord, grid, cfg.Gen)
			resources := gen.GenerateResources(cfg.Seed, coord, grid, cfg.Gen, tiles)
			snowy := snowyTiles(cfg.Seed, coord, grid, cfg.Gen, tiles, resources)

			// Image y grows downward; world y grows upward.
			px0 := (cx + r) * grid.ChunkSize.X
			py0 := (r - cy) * grid.ChunkSize.Y
			for i, kind := range tiles {
				t := grid.TileCoordAt(i)
				c := tileColor(kind)
				switch resources[i] {
				case gen.ResourceTree:
					c = colTree
					if snowy[i] {
						c = colSnowyTree
					}
				case gen.ResourceRock:
					c = colRock
				}
				img.SetRGBA(px0+t.X, py0+grid.ChunkSize.Y-1-t.Y, c)
			}
		}
	}

	if dir := filepath.Dir(*out); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.Create(*out)
	if err != nil {
		logger.Fatalf("create %s: %v", *out, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		logger.Fatalf("encode png: %v", err)
	}
	logger.Printf("seed=%d radius=%d -> %s (%dx%d)", cfg.Seed, r, *out, width, height)
}

func tileColor(kind gen.TileKind) color.RGBA {
	switch kind {
	case gen.TileWater:
		return colWater
	case gen.TileGrass:
		return colGrass
	default:
		return colBarren
	}
}

// snowyTiles marks the tiles whose tree placement selects the snowy
// variant, reusing the exact renderer-side recomputation path.
func snowyTiles(seed uint64, coord geom.IVec2, grid geom.Grid, cfg gen.Config, tiles []gen.TileKind, resources []gen.ResourceKind) map[int]bool {
	out := map[int]bool{}
	for _, pp := range gen.PlacementPoints(seed, coord, grid, cfg, gen.ResourceTree, tiles, resources) {
		if !gen.TreeVariant(cfg, pp.Noise) {
			continue
		}
		tile := grid.WorldToTile(pp.Pos)
		out[grid.TileIndex(tile)] = true
	}
	return out
}
