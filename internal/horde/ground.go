package horde

import "github.com/go-gl/mathgl/mgl64"

var (
	worldUp      = mgl64.Vec3{0, 1, 0}
	worldForward = mgl64.Vec3{0, 0, 1}
)

const (
	snapRayHeight   = 2.0
	snapRayLength   = 5.0
	normalRayHeight = 1.5
	normalRayLength = 5.0
)

// snapToGround drops p onto the ground layer under it. A miss falls back to
// the terrain height; with no terrain either, p is returned unchanged.
func (m *Manager) snapToGround(p mgl64.Vec3) mgl64.Vec3 {
	if m.physics != nil {
		if hit, ok := m.physics.RaycastDown(p.Add(worldUp.Mul(snapRayHeight)), snapRayLength, m.cfg.GroundMask); ok {
			return hit.Point
		}
	}
	if m.terrain != nil {
		return mgl64.Vec3{p.X(), m.terrain.SampleHeight(p.X(), p.Z()), p.Z()}
	}
	return p
}

// groundNormal returns the ground-layer surface normal under p, or world up.
func (m *Manager) groundNormal(p mgl64.Vec3) mgl64.Vec3 {
	if m.physics != nil {
		if hit, ok := m.physics.RaycastDown(p.Add(worldUp.Mul(normalRayHeight)), normalRayLength, m.cfg.GroundMask); ok {
			return hit.Normal
		}
	}
	return worldUp
}

// lookRotation returns the rotation that maps +Z onto forward while keeping
// its +Y as close to up as possible.
func lookRotation(forward, up mgl64.Vec3) mgl64.Quat {
	if forward.Len() < 1e-9 {
		return mgl64.QuatIdent()
	}
	z := forward.Normalize()
	x := up.Cross(z)
	if x.Len() < 1e-9 {
		// forward is parallel to up; any perpendicular axis will do
		x = worldForward.Cross(z)
		if x.Len() < 1e-9 {
			x = mgl64.Vec3{1, 0, 0}
		}
	}
	x = x.Normalize()
	y := z.Cross(x)
	return mgl64.Mat4ToQuat(mgl64.Mat3FromCols(x, y, z).Mat4()).Normalize()
}

// yawRotation turns around world up by deg degrees.
func yawRotation(deg float64) mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(deg), worldUp)
}

// flatDirection is the horizontal unit vector from -> to, and false when the
// two points share an XZ position.
func flatDirection(from, to mgl64.Vec3) (mgl64.Vec3, bool) {
	d := mgl64.Vec3{to.X() - from.X(), 0, to.Z() - from.Z()}
	if d.Len() < 1e-9 {
		return mgl64.Vec3{}, false
	}
	return d.Normalize(), true
}

// moveTowards steps current toward target by at most maxDelta.
func moveTowards(current, target mgl64.Vec3, maxDelta float64) mgl64.Vec3 {
	d := target.Sub(current)
	dist := d.Len()
	if dist <= maxDelta || dist == 0 {
		return target
	}
	return current.Add(d.Mul(maxDelta / dist))
}

// insideUnitSphere samples a point uniformly from the unit ball.
func (m *Manager) insideUnitSphere() mgl64.Vec3 {
	for {
		v := mgl64.Vec3{
			m.rng.Float64()*2 - 1,
			m.rng.Float64()*2 - 1,
			m.rng.Float64()*2 - 1,
		}
		if v.Dot(v) <= 1 {
			return v
		}
	}
}
