package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"terrastream.world/internal/sim/gen"
)

const sample = `
protocol_version: "1"
tick_rate_hz: 10
chunk_size: [16, 16]
tile_size: [8, 8]
spawn_radius: 4
load_radius: 2
workers: 2
queue_size: 32
terrain:
  frequency: 1.0
  octaves: 4
  persistence: 0.5
  lacunarity: 2.0
  bounds_interval: 1.0
  water_threshold: 0.0
  grass_threshold: 0.12
tree:
  frequency: 10.0
  min_noise: 0.0
  max_noise: 1.0
  discard_threshold: -0.2
  radius: 2.0
  k: 30
  eligible_tiles: [grass]
rock:
  frequency: 4.0
  min_noise: 0.0
  max_noise: 0.25
  discard_threshold: -0.75
  radius: 4.0
  k: 30
  eligible_tiles: [grass, barren]
tree_variant_threshold: 0.25
`

func writeSample(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAndWorldConfig(t *testing.T) {
	tn, err := Load(writeSample(t, sample))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg, err := tn.WorldConfig("w1", 7)
	if err != nil {
		t.Fatalf("WorldConfig: %v", err)
	}
	if cfg.Seed != 7 || cfg.ID != "w1" {
		t.Fatalf("identity not threaded: %+v", cfg)
	}
	if cfg.Grid.ChunkSize.X != 16 || cfg.Grid.TileSize.Y != 8 {
		t.Fatalf("grid mismatch: %+v", cfg.Grid)
	}
	if cfg.TickRateHz != 10 || cfg.SpawnRadius != 4 || cfg.LoadRadius != 2 {
		t.Fatalf("streaming params mismatch: %+v", cfg)
	}
	if got := cfg.Gen.Rock.EligibleTiles; len(got) != 2 || got[0] != gen.TileGrass || got[1] != gen.TileBarren {
		t.Fatalf("rock eligible tiles: %v", got)
	}
}

func TestDefaultsValidate(t *testing.T) {
	cfg, err := Defaults().WorldConfig("default", 0)
	if err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	def := gen.DefaultConfig()
	if cfg.Gen.Terrain != def.Terrain {
		t.Fatalf("default terrain drifted: %+v", cfg.Gen.Terrain)
	}
	if cfg.Gen.TreeVariantThreshold != def.TreeVariantThreshold {
		t.Fatalf("default variant threshold drifted: %v", cfg.Gen.TreeVariantThreshold)
	}
}

func TestWorldConfigRejectsBadInput(t *testing.T) {
	tn := Defaults()
	tn.ChunkSize = []int{32}
	if _, err := tn.WorldConfig("w", 0); err == nil {
		t.Fatal("one-element chunk_size accepted")
	}

	tn = Defaults()
	tn.Tree.EligibleTiles = []string{"lava"}
	if _, err := tn.WorldConfig("w", 0); err == nil {
		t.Fatal("unknown tile kind accepted")
	}

	tn = Defaults()
	tn.LoadRadius = tn.SpawnRadius
	if _, err := tn.WorldConfig("w", 0); err == nil {
		t.Fatal("load radius == spawn radius accepted")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file did not error")
	}
}
