package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// Counter is a headless renderer that only tallies what would be drawn.
type Counter struct {
	Frames    int
	Calls     int // DrawInstanced calls in the last presented frame
	Instances int // transforms in the last presented frame
	Markers   int // markers in the last presented frame
	Oversized int // calls that exceeded MaxInstancesPerBatch, all time

	calls     int
	instances int
	log       *zap.Logger
}

func NewCounter(log *zap.Logger) *Counter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Counter{log: log}
}

func (c *Counter) DrawInstanced(mesh Mesh, material Material, transforms []mgl64.Mat4) {
	if len(transforms) > MaxInstancesPerBatch {
		c.Oversized++
		c.log.Warn("instanced batch over limit",
			zap.String("mesh", mesh.Name),
			zap.Int("instances", len(transforms)))
	}
	c.calls++
	c.instances += len(transforms)
}

func (c *Counter) Present(frame Frame) {
	c.Frames++
	c.Calls, c.Instances, c.Markers = c.calls, c.instances, len(frame.Markers)
	c.calls, c.instances = 0, 0
}

func (c *Counter) Close() {}
