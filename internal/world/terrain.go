package world

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Terrain is a square heightmap centred on the origin. Heights are stored on a
// regular res×res lattice and sampled bilinearly in between; positions outside
// the square clamp to the nearest edge sample.
type Terrain struct {
	size    float64
	res     int
	step    float64
	half    float64
	heights []float64 // row-major, z rows then x columns
}

// wave is one sine component of the generated surface.
type wave struct {
	dirX, dirZ float64
	freq       float64
	phase      float64
	weight     float64
}

// NewTerrain generates rolling hills as a weighted sum of directional sine
// waves. The same seed always yields the same surface.
func NewTerrain(size float64, res int, amplitude float64, seed int64) *Terrain {
	t := newLattice(size, res)
	rng := rand.New(rand.NewSource(seed))

	waves := make([]wave, 4)
	var total float64
	for i := range waves {
		angle := rng.Float64() * 2 * math.Pi
		waves[i] = wave{
			dirX:   math.Cos(angle),
			dirZ:   math.Sin(angle),
			freq:   (0.02 + rng.Float64()*0.06) * float64(i+1),
			phase:  rng.Float64() * 2 * math.Pi,
			weight: 1 / float64(i+1),
		}
		total += waves[i].weight
	}

	for row := 0; row < res; row++ {
		z := float64(row)*t.step - t.half
		for col := 0; col < res; col++ {
			x := float64(col)*t.step - t.half
			var h float64
			for _, w := range waves {
				h += w.weight * math.Sin(w.freq*(w.dirX*x+w.dirZ*z)+w.phase)
			}
			t.heights[row*res+col] = amplitude * h / total
		}
	}
	return t
}

// NewFlatTerrain returns a level surface at the given height.
func NewFlatTerrain(size, height float64) *Terrain {
	t := newLattice(size, 2)
	for i := range t.heights {
		t.heights[i] = height
	}
	return t
}

func newLattice(size float64, res int) *Terrain {
	if res < 2 {
		res = 2
	}
	return &Terrain{
		size:    size,
		res:     res,
		step:    size / float64(res-1),
		half:    size / 2,
		heights: make([]float64, res*res),
	}
}

// Size returns the edge length of the terrain square.
func (t *Terrain) Size() float64 { return t.size }

// Contains reports whether (x, z) lies over the terrain square.
func (t *Terrain) Contains(x, z float64) bool {
	return x >= -t.half && x <= t.half && z >= -t.half && z <= t.half
}

func (t *Terrain) at(col, row int) float64 {
	col = clampInt(col, 0, t.res-1)
	row = clampInt(row, 0, t.res-1)
	return t.heights[row*t.res+col]
}

// SampleHeight returns the interpolated surface height at (x, z).
func (t *Terrain) SampleHeight(x, z float64) float64 {
	fx := (clamp(x, -t.half, t.half) + t.half) / t.step
	fz := (clamp(z, -t.half, t.half) + t.half) / t.step
	col, row := int(math.Floor(fx)), int(math.Floor(fz))
	tx, tz := fx-float64(col), fz-float64(row)

	h00 := t.at(col, row)
	h10 := t.at(col+1, row)
	h01 := t.at(col, row+1)
	h11 := t.at(col+1, row+1)

	top := h00 + (h10-h00)*tx
	bottom := h01 + (h11-h01)*tx
	return top + (bottom-top)*tz
}

// Normal returns the unit surface normal at (x, z) from central differences.
func (t *Terrain) Normal(x, z float64) mgl64.Vec3 {
	d := t.step
	dx := t.SampleHeight(x+d, z) - t.SampleHeight(x-d, z)
	dz := t.SampleHeight(x, z+d) - t.SampleHeight(x, z-d)
	return mgl64.Vec3{-dx, 2 * d, -dz}.Normalize()
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
