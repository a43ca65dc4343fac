package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"terrastream.world/internal/sim/gen"
	"terrastream.world/internal/sim/geom"
	"terrastream.world/internal/sim/world"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz  int       `yaml:"tick_rate_hz"`
	ChunkSize   []int     `yaml:"chunk_size"`
	TileSize    []float64 `yaml:"tile_size"`
	SpawnRadius int       `yaml:"spawn_radius"`
	LoadRadius  int       `yaml:"load_radius"`

	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`

	Terrain TerrainTuning  `yaml:"terrain"`
	Tree    ResourceTuning `yaml:"tree"`
	Rock    ResourceTuning `yaml:"rock"`

	TreeVariantThreshold float64 `yaml:"tree_variant_threshold"`
}

type TerrainTuning struct {
	Frequency      float64 `yaml:"frequency"`
	Octaves        int     `yaml:"octaves"`
	Persistence    float64 `yaml:"persistence"`
	Lacunarity     float64 `yaml:"lacunarity"`
	BoundsInterval float64 `yaml:"bounds_interval"`
	WaterThreshold float64 `yaml:"water_threshold"`
	GrassThreshold float64 `yaml:"grass_threshold"`
}

type ResourceTuning struct {
	Frequency        float64  `yaml:"frequency"`
	MinNoise         float64  `yaml:"min_noise"`
	MaxNoise         float64  `yaml:"max_noise"`
	DiscardThreshold float64  `yaml:"discard_threshold"`
	Radius           float64  `yaml:"radius"`
	K                int      `yaml:"k"`
	EligibleTiles    []string `yaml:"eligible_tiles"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Defaults mirrors configs/tuning.yaml.
func Defaults() Tuning {
	g := gen.DefaultConfig()
	return Tuning{
		ProtocolVersion:      "1",
		TickRateHz:           20,
		ChunkSize:            []int{32, 32},
		TileSize:             []float64{16, 16},
		SpawnRadius:          8,
		LoadRadius:           3,
		Workers:              4,
		QueueSize:            512,
		Terrain:              terrainTuning(g.Terrain),
		Tree:                 resourceTuning(g.Tree),
		Rock:                 resourceTuning(g.Rock),
		TreeVariantThreshold: g.TreeVariantThreshold,
	}
}

func terrainTuning(p gen.TerrainParams) TerrainTuning {
	return TerrainTuning{
		Frequency:      p.Frequency,
		Octaves:        p.Octaves,
		Persistence:    p.Persistence,
		Lacunarity:     p.Lacunarity,
		BoundsInterval: p.BoundsInterval,
		WaterThreshold: p.WaterThreshold,
		GrassThreshold: p.GrassThreshold,
	}
}

func resourceTuning(p gen.ResourceParams) ResourceTuning {
	names := make([]string, len(p.EligibleTiles))
	for i, k := range p.EligibleTiles {
		names[i] = k.String()
	}
	return ResourceTuning{
		Frequency:        p.Frequency,
		MinNoise:         p.MinNoise,
		MaxNoise:         p.MaxNoise,
		DiscardThreshold: p.DiscardThreshold,
		Radius:           p.Radius,
		K:                p.K,
		EligibleTiles:    names,
	}
}

// WorldConfig maps the tuning onto a validated world configuration.
func (t Tuning) WorldConfig(id string, seed uint64) (world.Config, error) {
	if len(t.ChunkSize) != 2 {
		return world.Config{}, fmt.Errorf("chunk_size wants [x, y], got %v", t.ChunkSize)
	}
	if len(t.TileSize) != 2 {
		return world.Config{}, fmt.Errorf("tile_size wants [x, y], got %v", t.TileSize)
	}

	tree, err := t.Tree.params("tree")
	if err != nil {
		return world.Config{}, err
	}
	rock, err := t.Rock.params("rock")
	if err != nil {
		return world.Config{}, err
	}

	cfg := world.Config{
		ID:          id,
		Seed:        seed,
		TickRateHz:  t.TickRateHz,
		Grid: geom.Grid{
			ChunkSize: geom.IVec2{X: t.ChunkSize[0], Y: t.ChunkSize[1]},
			TileSize:  geom.Vec2{X: t.TileSize[0], Y: t.TileSize[1]},
		},
		SpawnRadius: t.SpawnRadius,
		LoadRadius:  t.LoadRadius,
		Workers:     t.Workers,
		QueueSize:   t.QueueSize,
		Gen: gen.Config{
			Terrain: gen.TerrainParams{
				Frequency:      t.Terrain.Frequency,
				Octaves:        t.Terrain.Octaves,
				Persistence:    t.Terrain.Persistence,
				Lacunarity:     t.Terrain.Lacunarity,
				BoundsInterval: t.Terrain.BoundsInterval,
				WaterThreshold: t.Terrain.WaterThreshold,
				GrassThreshold: t.Terrain.GrassThreshold,
			},
			Tree:                 tree,
			Rock:                 rock,
			TreeVariantThreshold: t.TreeVariantThreshold,
		},
	}
	if err := cfg.Validate(); err != nil {
		return world.Config{}, err
	}
	return cfg, nil
}

func (r ResourceTuning) params(name string) (gen.ResourceParams, error) {
	tiles := make([]gen.TileKind, 0, len(r.EligibleTiles))
	for _, n := range r.EligibleTiles {
		k, err := parseTileKind(n)
		if err != nil {
			return gen.ResourceParams{}, fmt.Errorf("%s eligible_tiles: %w", name, err)
		}
		tiles = append(tiles, k)
	}
	return gen.ResourceParams{
		Frequency:        r.Frequency,
		MinNoise:         r.MinNoise,
		MaxNoise:         r.MaxNoise,
		DiscardThreshold: r.DiscardThreshold,
		Radius:           r.Radius,
		K:                r.K,
		EligibleTiles:    tiles,
	}, nil
}

func parseTileKind(name string) (gen.TileKind, error) {
	switch name {
	case "water":
		return gen.TileWater, nil
	case "grass":
		return gen.TileGrass, nil
	case "barren":
		return gen.TileBarren, nil
	default:
		return 0, fmt.Errorf("unknown tile kind %q", name)
	}
}
