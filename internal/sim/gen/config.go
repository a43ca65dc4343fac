package gen

import (
	"fmt"

	"terrastream.world/internal/sim/mathx"
)

// TerrainParams shape the fractal classification field and its cut
// points. Thresholds are configuration, never derived from the field.
type TerrainParams struct {
	Frequency      float64
	Octaves        int
	Persistence    float64
	Lacunarity     float64
	BoundsInterval float64
	WaterThreshold float64 // value below -> water
	GrassThreshold float64 // value below -> grass, else barren
}

// ResourceParams describe one resource kind's density mask and placement
// sampler.
type ResourceParams struct {
	Frequency        float64    // worley frequency of the density mask
	MinNoise         float64    // terrain-field band: eligible when value in [MinNoise, MaxNoise)
	MaxNoise         float64
	DiscardThreshold float64    // keep only density values <= this (local minima near feature points)
	Radius           float64    // poisson-disc separation, in tiles
	K                int        // poisson-disc attempts per active point
	EligibleTiles    []TileKind // tile kinds that may carry this resource
}

func (p ResourceParams) eligible(k TileKind) bool {
	for _, e := range p.EligibleTiles {
		if e == k {
			return true
		}
	}
	return false
}

// Config is the full generation parameter set, fixed at process start.
type Config struct {
	Terrain TerrainParams
	Tree    ResourceParams
	Rock    ResourceParams

	// TreeVariantThreshold picks the snowy tree prop above this terrain
	// value. Rendering-side only; generation ignores it.
	TreeVariantThreshold float64
}

// DefaultConfig mirrors the historical tuning constants.
func DefaultConfig() Config {
	return Config{
		Terrain: TerrainParams{
			Frequency:      1.0,
			Octaves:        6,
			Persistence:    0.5,
			Lacunarity:     2.0,
			BoundsInterval: 1.0,
			WaterThreshold: 0.0,
			GrassThreshold: 0.12,
		},
		Tree: ResourceParams{
			Frequency:        10.0,
			MinNoise:         0.0,
			MaxNoise:         1.0,
			DiscardThreshold: -0.2,
			Radius:           2.0,
			K:                30,
			EligibleTiles:    []TileKind{TileGrass},
		},
		Rock: ResourceParams{
			Frequency:        4.0,
			MinNoise:         0.0,
			MaxNoise:         0.25,
			DiscardThreshold: -0.75,
			Radius:           4.0,
			K:                30,
			EligibleTiles:    []TileKind{TileGrass, TileBarren},
		},
		TreeVariantThreshold: 0.25,
	}
}

func (c Config) Validate() error {
	if c.Terrain.Octaves < 1 {
		return fmt.Errorf("terrain octaves must be >= 1, got %d", c.Terrain.Octaves)
	}
	if c.Terrain.BoundsInterval <= 0 {
		return fmt.Errorf("terrain bounds interval must be positive, got %v", c.Terrain.BoundsInterval)
	}
	if c.Terrain.WaterThreshold > c.Terrain.GrassThreshold {
		return fmt.Errorf("water threshold %v above grass threshold %v", c.Terrain.WaterThreshold, c.Terrain.GrassThreshold)
	}
	for _, rp := range []struct {
		name string
		p    ResourceParams
	}{{"tree", c.Tree}, {"rock", c.Rock}} {
		if rp.p.Radius <= 0 {
			return fmt.Errorf("%s poisson radius must be positive, got %v", rp.name, rp.p.Radius)
		}
		if rp.p.K <= 0 {
			return fmt.Errorf("%s poisson k must be positive, got %d", rp.name, rp.p.K)
		}
		if rp.p.MinNoise >= rp.p.MaxNoise {
			return fmt.Errorf("%s noise band [%v, %v) is empty", rp.name, rp.p.MinNoise, rp.p.MaxNoise)
		}
		if len(rp.p.EligibleTiles) == 0 {
			return fmt.Errorf("%s has no eligible tile kinds", rp.name)
		}
	}
	return nil
}

func (c Config) params(kind ResourceKind) (ResourceParams, mathx.Domain, mathx.Domain) {
	switch kind {
	case ResourceTree:
		return c.Tree, mathx.DomainTreeMask, mathx.DomainTreePlace
	case ResourceRock:
		return c.Rock, mathx.DomainRockMask, mathx.DomainRockPlace
	default:
		panic(fmt.Sprintf("gen: no parameters for resource kind %v", kind))
	}
}
