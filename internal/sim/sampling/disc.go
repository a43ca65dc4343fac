// Package sampling implements deterministic blue-noise point placement
// (Bridson's Poisson-disc algorithm). All randomness comes from a seeded
// source consumed in a fixed order, so a run is a pure function of
// (seed, radius, area, k).
package sampling

import (
	"math"
	"math/rand"

	"terrastream.world/internal/sim/geom"
)

// Disc samples points with a guaranteed minimum pairwise separation
// inside a rectangular area anchored at the origin.
type Disc struct {
	rng *rand.Rand
}

func NewDisc(seed uint64) *Disc {
	return &Disc{rng: rand.New(rand.NewSource(int64(seed)))}
}

// Sample returns blue-noise points in [0, size.X) x [0, size.Y), each
// pair at least radius apart. k bounds the candidate attempts per active
// point. The draw order is fixed: initial x, initial y, then per outer
// iteration the active index, and per attempt the angle and the annulus
// distance.
func (d *Disc) Sample(radius float64, size geom.Vec2, k int) []geom.Vec2 {
	if radius <= 0 || size.X <= 0 || size.Y <= 0 {
		return nil
	}
	if k <= 0 {
		k = 30
	}

	// Cell size r/sqrt(2) guarantees at most one sample per cell, so the
	// grid can store a single index.
	cellSize := radius / math.Sqrt2
	gridW := int(math.Ceil(size.X / cellSize))
	gridH := int(math.Ceil(size.Y / cellSize))

	grid := make([]int, gridW*gridH)
	for i := range grid {
		grid[i] = -1
	}

	var samples []geom.Vec2
	var active []geom.Vec2

	cellOf := func(p geom.Vec2) (int, int) {
		gx := int(p.X / cellSize)
		gy := int(p.Y / cellSize)
		if gx >= gridW {
			gx = gridW - 1
		}
		if gy >= gridH {
			gy = gridH - 1
		}
		return gx, gy
	}

	accept := func(p geom.Vec2) {
		gx, gy := cellOf(p)
		grid[gy*gridW+gx] = len(samples)
		samples = append(samples, p)
		active = append(active, p)
	}

	valid := func(p geom.Vec2) bool {
		if p.X < 0 || p.X >= size.X || p.Y < 0 || p.Y >= size.Y {
			return false
		}
		gx, gy := cellOf(p)
		// 5x5 neighborhood: a conflicting sample can be at most two cells
		// away at this cell size.
		minX := maxInt(gx-2, 0)
		maxX := minInt(gx+2, gridW-1)
		minY := maxInt(gy-2, 0)
		maxY := minInt(gy+2, gridH-1)
		for y := minY; y <= maxY; y++ {
			for x := minX; x <= maxX; x++ {
				idx := grid[y*gridW+x]
				if idx < 0 {
					continue
				}
				dx := p.X - samples[idx].X
				dy := p.Y - samples[idx].Y
				if math.Sqrt(dx*dx+dy*dy) < radius {
					return false
				}
			}
		}
		return true
	}

	initial := geom.Vec2{
		X: d.rng.Float64() * size.X,
		Y: d.rng.Float64() * size.Y,
	}
	accept(initial)

	for len(active) > 0 {
		index := int(d.rng.Float64() * float64(len(active)))
		sample := active[index]

		found := false
		for i := 0; i < k; i++ {
			angle := d.rng.Float64() * 2 * math.Pi
			distance := radius * (d.rng.Float64() + 1.0)
			candidate := geom.Vec2{
				X: sample.X + math.Cos(angle)*distance,
				Y: sample.Y + math.Sin(angle)*distance,
			}
			if valid(candidate) {
				accept(candidate)
				found = true
				break
			}
		}

		if !found {
			// Fully surrounded: drop from the active list, keep the sample.
			active = append(active[:index], active[index+1:]...)
		}
	}

	return samples
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
