package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zsurv/horde/internal/core/ecs"
)

const (
	stepOffset = 0.3  // highest ledge a character walks onto
	skinWidth  = 0.01 // contact tolerance when resolving against the ground
)

// Character is a kinematic upright capsule. Moves are resolved against the
// ground only: with collision enabled the body cannot sink below the surface
// beneath it and reports whether it is standing on it.
type Character struct {
	id        ecs.EntityID
	tag       string
	name      string
	position  mgl64.Vec3
	rotation  mgl64.Quat
	radius    float64
	height    float64
	collision bool
	active    bool
	grounded  bool
	physics   *Physics
}

func (c *Character) ID() ecs.EntityID     { return c.id }
func (c *Character) Tag() string          { return c.tag }
func (c *Character) Name() string         { return c.name }
func (c *Character) SetName(name string)  { c.name = name }
func (c *Character) Position() mgl64.Vec3 { return c.position }
func (c *Character) Rotation() mgl64.Quat { return c.rotation }
func (c *Character) Radius() float64      { return c.radius }
func (c *Character) Grounded() bool       { return c.grounded }
func (c *Character) Active() bool         { return c.active }
func (c *Character) Collision() bool      { return c.collision }

func (c *Character) SetRotation(q mgl64.Quat) { c.rotation = q }
func (c *Character) SetActive(on bool)        { c.active = on }

// SetCollision toggles ground resolution and visibility to OverlapSphere.
func (c *Character) SetCollision(on bool) {
	c.collision = on
	if !on {
		c.grounded = false
	}
}

// Place teleports the body without ground resolution.
func (c *Character) Place(pos mgl64.Vec3, rot mgl64.Quat) {
	c.setPosition(pos)
	c.rotation = rot
	c.grounded = false
}

// Move displaces the body by delta. With collision enabled the result is
// clamped to the ground under the new position.
func (c *Character) Move(delta mgl64.Vec3) {
	next := c.position.Add(delta)
	c.grounded = false
	if c.collision && c.physics != nil {
		from := mgl64.Vec3{next.X(), math.Max(c.position.Y(), next.Y()) + stepOffset, next.Z()}
		if hit, ok := c.physics.RaycastDown(from, maxRayLength, LayerAll); ok && next.Y() <= hit.Point.Y()+skinWidth {
			next[1] = hit.Point.Y()
			c.grounded = true
		}
	}
	c.setPosition(next)
}

func (c *Character) setPosition(pos mgl64.Vec3) {
	if c.physics != nil {
		c.physics.grid.Move(c.id, c.position.X(), c.position.Z(), pos.X(), pos.Z())
	}
	c.position = pos
}

// intersectsSphere tests the sphere against the capsule's vertical segment.
func (c *Character) intersectsSphere(center mgl64.Vec3, radius float64) bool {
	bottom := c.position.Y() + c.radius
	top := c.position.Y() + math.Max(c.height-c.radius, c.radius)
	y := clamp(center.Y(), bottom, top)
	closest := mgl64.Vec3{c.position.X(), y, c.position.Z()}
	d := closest.Sub(center)
	r := radius + c.radius
	return d.Dot(d) <= r*r
}
