package system

import (
	"time"

	coresys "github.com/zsurv/horde/internal/core/system"
	"github.com/zsurv/horde/internal/player"
)

// PlayerSystem moves the player and fires its weapon. Phase 0 (Input).
type PlayerSystem struct {
	player *player.Player
	gunner *player.Gunner // nil when unarmed
	game   Session
}

func NewPlayerSystem(p *player.Player, gunner *player.Gunner, game Session) *PlayerSystem {
	return &PlayerSystem{player: p, gunner: gunner, game: game}
}

func (s *PlayerSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *PlayerSystem) Update(dt time.Duration) {
	if !s.game.Playing() {
		return
	}
	s.player.Update(dt)
	if s.gunner != nil {
		s.gunner.Update(dt)
	}
}
