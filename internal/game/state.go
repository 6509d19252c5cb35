package game

import (
	"time"

	"go.uber.org/zap"

	"github.com/zsurv/horde/internal/core/event"
)

// State is the session phase.
type State uint8

const (
	StateStartMenu State = iota
	StatePlaying
	StateGameOver
	StateVictory
)

func (s State) String() string {
	switch s {
	case StateStartMenu:
		return "start_menu"
	case StatePlaying:
		return "playing"
	case StateGameOver:
		return "game_over"
	case StateVictory:
		return "victory"
	default:
		return "unknown"
	}
}

// Population is started when play begins.
type Population interface {
	Start()
}

// Game tracks the session state. A session runs StartMenu -> Playing and ends
// in exactly one of GameOver or Victory.
type Game struct {
	state      State
	population Population
	bus        *event.Bus
	log        *zap.Logger
	now        func() time.Time

	startedAt time.Time
	endedAt   time.Time
}

func New(bus *event.Bus, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	return &Game{
		state: StateStartMenu,
		bus:   bus,
		log:   log,
		now:   time.Now,
	}
}

// Attach sets the population started by StartGame.
func (g *Game) Attach(p Population) { g.population = p }

func (g *Game) State() State         { return g.state }
func (g *Game) Playing() bool        { return g.state == StatePlaying }
func (g *Game) Over() bool           { return g.state == StateGameOver || g.state == StateVictory }
func (g *Game) StartedAt() time.Time { return g.startedAt }
func (g *Game) EndedAt() time.Time   { return g.endedAt }

// StartGame leaves the start menu and starts the population. It returns false
// if the game was already started.
func (g *Game) StartGame() bool {
	if g.state != StateStartMenu {
		return false
	}
	g.startedAt = g.now()
	g.transition(StatePlaying)
	if g.population != nil {
		g.population.Start()
	}
	return true
}

// ReportVictory ends a running game as won.
func (g *Game) ReportVictory() { g.end(StateVictory) }

// ReportDefeat ends a running game as lost.
func (g *Game) ReportDefeat() { g.end(StateGameOver) }

func (g *Game) end(to State) {
	if g.state != StatePlaying {
		g.log.Debug("ignoring end of game", zap.Stringer("state", g.state), zap.Stringer("to", to))
		return
	}
	g.endedAt = g.now()
	g.transition(to)
}

func (g *Game) transition(to State) {
	from := g.state
	g.state = to
	at := g.now()
	event.Emit(g.bus, event.GameStateChanged{From: from.String(), To: to.String(), At: at})
	g.log.Info("game state changed",
		zap.Stringer("from", from),
		zap.Stringer("to", to))
}
