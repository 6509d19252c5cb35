package system

import (
	"time"

	"github.com/zsurv/horde/internal/camera"
	coresys "github.com/zsurv/horde/internal/core/system"
	"github.com/zsurv/horde/internal/player"
)

// CameraSystem keeps the camera behind the player. It runs before the
// population so tier switching sees this tick's view. Phase 1 (PreUpdate).
type CameraSystem struct {
	camera *camera.Camera
	player *player.Player
}

func NewCameraSystem(cam *camera.Camera, p *player.Player) *CameraSystem {
	return &CameraSystem{camera: cam, player: p}
}

func (s *CameraSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *CameraSystem) Update(_ time.Duration) {
	s.camera.Follow(s.player.Position(), s.player.Forward())
}
