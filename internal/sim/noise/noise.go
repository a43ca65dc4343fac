// Package noise produces the deterministic fields that drive terrain
// classification and resource masking. Both field families are sampled
// over per-chunk windows of the same continuous function, so neighbouring
// chunks line up without seams.
package noise

import (
	"math"

	"github.com/aquilax/go-perlin"

	"terrastream.world/internal/sim/geom"
	"terrastream.world/internal/sim/mathx"
)

// Field is a continuous 2D scalar function in noise space.
type Field interface {
	At(x, y float64) float64
}

// Fractal is multi-octave gradient noise. Persistence maps onto the
// backend's amplitude falloff (alpha = 1/persistence), lacunarity onto
// its frequency multiplier.
type Fractal struct {
	p    *perlin.Perlin
	freq float64
}

func NewFractal(seed uint64, frequency float64, octaves int, persistence, lacunarity float64) *Fractal {
	if octaves < 1 {
		octaves = 1
	}
	if persistence <= 0 {
		persistence = 0.5
	}
	if lacunarity <= 0 {
		lacunarity = 2.0
	}
	if frequency == 0 {
		frequency = 1.0
	}
	alpha := 1.0 / persistence
	return &Fractal{
		p:    perlin.NewPerlin(alpha, lacunarity, int32(octaves), int64(seed)),
		freq: frequency,
	}
}

func (f *Fractal) At(x, y float64) float64 {
	return f.p.Noise2D(x*f.freq, y*f.freq)
}

// Worley is cellular noise: one feature point per unit lattice cell,
// placed by the seeded hash, value derived from the euclidean distance to
// the nearest feature point. Output is in [-1, 1] with -1 at feature
// points, like a distance-return cellular field.
type Worley struct {
	seed uint64
	freq float64
}

func NewWorley(seed uint64, frequency float64) *Worley {
	if frequency == 0 {
		frequency = 1.0
	}
	return &Worley{seed: seed, freq: frequency}
}

func (w *Worley) At(x, y float64) float64 {
	x *= w.freq
	y *= w.freq
	cx := int(math.Floor(x))
	cy := int(math.Floor(y))

	min := math.MaxFloat64
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			nx := cx + dx
			ny := cy + dy
			h := mathx.Hash2(w.seed, nx, ny)
			fx := float64(nx) + float64(h&0xffff)/65536.0
			fy := float64(ny) + float64((h>>16)&0xffff)/65536.0
			ddx := x - fx
			ddy := y - fy
			if d := math.Sqrt(ddx*ddx + ddy*ddy); d < min {
				min = d
			}
		}
	}
	v := min*2 - 1
	if v > 1 {
		v = 1
	}
	return v
}

// SampleWindow evaluates a field over the chunk's window: the interval
// [c*interval - interval/2, c*interval + interval/2) on each axis,
// sampled at w*h tile centers. Windows of adjacent chunks tile the noise
// plane with uniform sample spacing and no gaps or overlap.
func SampleWindow(f Field, coord geom.IVec2, interval float64, w, h int) []float64 {
	x0 := float64(coord.X)*interval - interval/2
	y0 := float64(coord.Y)*interval - interval/2
	stepX := interval / float64(w)
	stepY := interval / float64(h)

	out := make([]float64, w*h)
	for yi := 0; yi < h; yi++ {
		sy := y0 + (float64(yi)+0.5)*stepY
		for xi := 0; xi < w; xi++ {
			sx := x0 + (float64(xi)+0.5)*stepX
			out[yi*w+xi] = f.At(sx, sy)
		}
	}
	return out
}
