package render

import (
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
)

// MaxInstancesPerBatch is the most transforms one DrawInstanced call accepts.
const MaxInstancesPerBatch = 1023

// Mesh identifies the shape drawn for every instance of a batch.
type Mesh struct {
	Name  string
	Glyph rune
}

// Material identifies the surface drawn for every instance of a batch.
type Material struct {
	Name  string
	Color tcell.Color
}

// Marker is a single non-instanced object such as an active zombie or the
// player.
type Marker struct {
	Position mgl64.Vec3
	Glyph    rune
	Color    tcell.Color
}

// Frame carries everything besides instanced batches that is shown once per
// tick.
type Frame struct {
	Player  mgl64.Vec3
	Markers []Marker
	HUD     string
}

// Renderer is the output surface a session draws into. Batches accumulate
// until Present shows the frame.
type Renderer interface {
	DrawInstanced(mesh Mesh, material Material, transforms []mgl64.Mat4)
	Present(frame Frame)
	Close()
}

// Position extracts the translation of a world matrix.
func Position(m mgl64.Mat4) mgl64.Vec3 {
	return m.Col(3).Vec3()
}
