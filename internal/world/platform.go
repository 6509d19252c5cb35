package world

import "github.com/go-gl/mathgl/mgl64"

// Platform is an axis-aligned walkable slab on the ground layer. Only its top
// face takes part in ground queries.
type Platform struct {
	MinX, MinZ float64
	MaxX, MaxZ float64
	Top        float64
}

func (p Platform) covers(x, z float64) bool {
	return x >= p.MinX && x <= p.MaxX && z >= p.MinZ && z <= p.MaxZ
}

// Center returns the middle of the platform's top face.
func (p Platform) Center() mgl64.Vec3 {
	return mgl64.Vec3{(p.MinX + p.MaxX) / 2, p.Top, (p.MinZ + p.MaxZ) / 2}
}
