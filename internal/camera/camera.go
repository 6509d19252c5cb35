package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zsurv/horde/internal/config"
)

var up = mgl64.Vec3{0, 1, 0}

// Camera is a perspective camera that trails the player from behind and
// above. Matrices are rebuilt on every Follow/LookAt; WorldToViewport reads
// the cached view-projection.
type Camera struct {
	fovY     float64 // radians
	aspect   float64
	near     float64
	far      float64
	distance float64
	height   float64

	eye    mgl64.Vec3
	target mgl64.Vec3
	view   mgl64.Mat4
	proj   mgl64.Mat4
	vp     mgl64.Mat4
}

// New creates a camera at the origin looking down +Z.
func New(cfg config.CameraConfig) *Camera {
	c := &Camera{
		fovY:     mgl64.DegToRad(cfg.FOV),
		aspect:   cfg.Aspect,
		near:     cfg.Near,
		far:      cfg.Far,
		distance: cfg.Distance,
		height:   cfg.Height,
	}
	c.proj = mgl64.Perspective(c.fovY, c.aspect, c.near, c.far)
	c.LookAt(mgl64.Vec3{}, mgl64.Vec3{0, 0, 1})
	return c
}

// LookAt places the camera at eye facing target.
func (c *Camera) LookAt(eye, target mgl64.Vec3) {
	c.eye = eye
	c.target = target
	c.view = mgl64.LookAtV(eye, target, up)
	c.vp = c.proj.Mul4(c.view)
}

// Follow positions the camera behind the subject along its horizontal facing
// and aims slightly above the subject's feet.
func (c *Camera) Follow(pos, forward mgl64.Vec3) {
	flat := mgl64.Vec3{forward.X(), 0, forward.Z()}
	if flat.Len() < 1e-9 {
		flat = mgl64.Vec3{0, 0, 1}
	}
	flat = flat.Normalize()
	eye := pos.Sub(flat.Mul(c.distance)).Add(up.Mul(c.height))
	c.LookAt(eye, pos.Add(up.Mul(c.height*0.5)))
}

// WorldToViewport projects p into viewport space: x and y are 0..1 across
// the visible rectangle (origin bottom-left) and z is the distance in front
// of the camera along its view axis. Points behind the camera get z <= 0.
func (c *Camera) WorldToViewport(p mgl64.Vec3) mgl64.Vec3 {
	clip := c.vp.Mul4x1(p.Vec4(1))
	w := clip.W()
	if math.Abs(w) < 1e-12 {
		return mgl64.Vec3{0.5, 0.5, 0}
	}
	return mgl64.Vec3{
		(clip.X()/w + 1) / 2,
		(clip.Y()/w + 1) / 2,
		w,
	}
}

// Visible reports whether p lands inside the viewport in front of the camera.
func (c *Camera) Visible(p mgl64.Vec3) bool {
	v := c.WorldToViewport(p)
	return v.Z() > 0 && v.X() >= 0 && v.X() <= 1 && v.Y() >= 0 && v.Y() <= 1
}

func (c *Camera) Eye() mgl64.Vec3    { return c.eye }
func (c *Camera) Target() mgl64.Vec3 { return c.target }

// Forward returns the unit view direction.
func (c *Camera) Forward() mgl64.Vec3 {
	return c.target.Sub(c.eye).Normalize()
}
