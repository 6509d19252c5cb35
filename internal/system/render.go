package system

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	coresys "github.com/zsurv/horde/internal/core/system"
	"github.com/zsurv/horde/internal/horde"
	"github.com/zsurv/horde/internal/player"
	"github.com/zsurv/horde/internal/render"
)

// RenderSystem presents the frame: instanced dummies were already submitted
// by the population, this adds the active zombies as markers and the HUD.
// Phase 4 (Output).
type RenderSystem struct {
	renderer render.Renderer
	manager  *horde.Manager
	player   *player.Player
	game     Session

	markers []render.Marker
}

func NewRenderSystem(r render.Renderer, m *horde.Manager, p *player.Player, game Session) *RenderSystem {
	return &RenderSystem{renderer: r, manager: m, player: p, game: game}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *RenderSystem) Update(_ time.Duration) {
	s.markers = s.markers[:0]
	s.manager.EachActive(func(z *horde.Zombie) {
		m := render.Marker{Position: z.Position(), Glyph: 'Z', Color: tcell.ColorRed}
		switch {
		case z.State() == horde.StateDying:
			m.Glyph, m.Color = 'x', tcell.ColorGray
		case z.State() == horde.StateAttacking:
			m.Color = tcell.ColorOrangeRed
		}
		s.markers = append(s.markers, m)
	})
	s.renderer.Present(render.Frame{
		Player:  s.player.Position(),
		Markers: s.markers,
		HUD:     s.hud(),
	})
}

func (s *RenderSystem) hud() string {
	st := s.manager.Stats()
	return fmt.Sprintf("%s | wave %d | kills %d | active %d | population %d | hp %d/%d",
		s.game.State(), st.Waves, st.Kills, st.Active, st.Population,
		max(s.player.Health(), 0), s.player.MaxHealth())
}
