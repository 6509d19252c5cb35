package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/zsurv/horde/internal/config"
	"github.com/zsurv/horde/internal/core/ecs"
)

// LayerMask selects which surfaces a ground query may hit.
type LayerMask uint32

const (
	LayerGround  LayerMask = 1 << iota // authored platforms
	LayerTerrain                       // generated heightmap

	LayerAll = LayerGround | LayerTerrain
)

// Up is the world up axis.
var Up = mgl64.Vec3{0, 1, 0}

// Hit is the first surface found by a downward ray.
type Hit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Distance float64
	Layer    LayerMask
}

// Overlap describes one body found by OverlapSphere.
type Overlap struct {
	ID   ecs.EntityID
	Tag  string
	Name string
}

const (
	gridCellSize = 4.0
	maxRayLength = 1e4
)

// Physics answers the ground and proximity queries the simulation needs and
// owns every kinematic character body. Accessed only from the game loop.
type Physics struct {
	terrain   *Terrain
	platforms []Platform
	bodies    *ecs.Store[Character]
	grid      *Grid
	maxRadius float64
	log       *zap.Logger
}

// NewPhysics builds a physics world over the given terrain (may be nil) and
// platforms.
func NewPhysics(terrain *Terrain, platforms []Platform, log *zap.Logger) *Physics {
	if log == nil {
		log = zap.NewNop()
	}
	return &Physics{
		terrain:   terrain,
		platforms: platforms,
		bodies:    ecs.NewStore[Character](),
		grid:      NewGrid(gridCellSize),
		log:       log,
	}
}

// Terrain returns the heightmap, or nil when the world has none.
func (p *Physics) Terrain() *Terrain { return p.terrain }

// Platforms returns the static platforms.
func (p *Physics) Platforms() []Platform { return p.platforms }

// BodyCount returns the number of registered bodies.
func (p *Physics) BodyCount() int { return p.bodies.Len() }

// RaycastDown casts a ray straight down from origin and returns the nearest
// surface within maxDistance whose layer is in mask.
func (p *Physics) RaycastDown(origin mgl64.Vec3, maxDistance float64, mask LayerMask) (Hit, bool) {
	var best Hit
	found := false
	x, y, z := origin.X(), origin.Y(), origin.Z()

	if mask&LayerGround != 0 {
		for _, pl := range p.platforms {
			if !pl.covers(x, z) || pl.Top > y {
				continue
			}
			d := y - pl.Top
			if d > maxDistance || (found && d >= best.Distance) {
				continue
			}
			best = Hit{
				Point:    mgl64.Vec3{x, pl.Top, z},
				Normal:   Up,
				Distance: d,
				Layer:    LayerGround,
			}
			found = true
		}
	}

	if mask&LayerTerrain != 0 && p.terrain != nil && p.terrain.Contains(x, z) {
		h := p.terrain.SampleHeight(x, z)
		d := y - h
		if h <= y && d <= maxDistance && (!found || d < best.Distance) {
			best = Hit{
				Point:    mgl64.Vec3{x, h, z},
				Normal:   p.terrain.Normal(x, z),
				Distance: d,
				Layer:    LayerTerrain,
			}
			found = true
		}
	}
	return best, found
}

// OverlapSphere returns every enabled body whose upright capsule intersects
// the sphere. Bodies that are inactive or have collision disabled are skipped.
func (p *Physics) OverlapSphere(center mgl64.Vec3, radius float64) []Overlap {
	var out []Overlap
	for _, id := range p.grid.Nearby(center.X(), center.Z(), radius+p.maxRadius) {
		c, ok := p.bodies.Get(id)
		if !ok || !c.active || !c.collision {
			continue
		}
		if c.intersectsSphere(center, radius) {
			out = append(out, Overlap{ID: c.id, Tag: c.tag, Name: c.name})
		}
	}
	return out
}

// AddCharacter creates an inactive character body parked at the origin.
func (p *Physics) AddCharacter(id ecs.EntityID, tag string, radius, height float64) *Character {
	c := &Character{
		id:        id,
		tag:       tag,
		radius:    radius,
		height:    height,
		rotation:  mgl64.QuatIdent(),
		collision: true,
		physics:   p,
	}
	p.bodies.Set(id, c)
	p.grid.Add(id, 0, 0)
	p.maxRadius = math.Max(p.maxRadius, radius)
	p.log.Debug("character added", zap.Stringer("id", id), zap.String("tag", tag))
	return c
}

// Character returns the body registered under id.
func (p *Physics) Character(id ecs.EntityID) (*Character, bool) {
	return p.bodies.Get(id)
}

// Remove drops a body from the world. Physics is tracked by the ECS world so
// destroyed entities lose their bodies.
func (p *Physics) Remove(id ecs.EntityID) {
	c, ok := p.bodies.Get(id)
	if !ok {
		return
	}
	p.grid.Remove(id, c.position.X(), c.position.Z())
	p.bodies.Remove(id)
}

// NewFromConfig builds the terrain and platforms described by the world
// config section.
func NewFromConfig(cfg config.WorldConfig, seed int64, log *zap.Logger) *Physics {
	terrain := NewTerrain(cfg.Size, cfg.Resolution, cfg.Amplitude, seed)
	platforms := make([]Platform, 0, len(cfg.Platforms))
	for _, pc := range cfg.Platforms {
		platforms = append(platforms, Platform{
			MinX: math.Min(pc.MinX, pc.MaxX),
			MinZ: math.Min(pc.MinZ, pc.MaxZ),
			MaxX: math.Max(pc.MinX, pc.MaxX),
			MaxZ: math.Max(pc.MinZ, pc.MaxZ),
			Top:  pc.Top,
		})
	}
	return NewPhysics(terrain, platforms, log)
}
