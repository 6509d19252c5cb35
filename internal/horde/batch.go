package horde

import "github.com/go-gl/mathgl/mgl64"

// submitBatches draws every dummy as one instance, chunked to the renderer's
// per-call limit. The matrix buffer is reused across ticks.
func (m *Manager) submitBatches() {
	m.matrices = m.matrices[:0]
	for _, a := range m.agents {
		if a.removed || a.Tier != TierDummy {
			continue
		}
		m.matrices = append(m.matrices, dummyTransform(a))
	}
	if m.renderer == nil {
		return
	}
	for i := 0; i < len(m.matrices); i += m.cfg.BatchSize {
		end := min(i+m.cfg.BatchSize, len(m.matrices))
		m.renderer.DrawInstanced(m.mesh, m.material, m.matrices[i:end])
	}
}

// dummyTransform is the agent's world matrix: its facing tilted onto the
// ground normal, unit scale.
func dummyTransform(a *Agent) mgl64.Mat4 {
	up := a.UpNormal
	if up.Len() < 1e-9 {
		up = worldUp
	}
	rot := lookRotation(a.Rotation.Rotate(worldForward), up)
	return mgl64.Translate3D(a.Position.X(), a.Position.Y(), a.Position.Z()).Mul4(rot.Mat4())
}

// Transforms returns the dummy matrices submitted on the last tick. Only
// valid until the next tick.
func (m *Manager) Transforms() []mgl64.Mat4 { return m.matrices }
