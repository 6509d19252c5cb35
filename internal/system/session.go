package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	coresys "github.com/zsurv/horde/internal/core/system"
	"github.com/zsurv/horde/internal/game"
	"github.com/zsurv/horde/internal/horde"
	"github.com/zsurv/horde/internal/persist"
	"github.com/zsurv/horde/internal/player"
)

// Session is the read side of the game state machine.
type Session interface {
	State() game.State
	Playing() bool
	Over() bool
	StartedAt() time.Time
	EndedAt() time.Time
}

// SessionSaver stores finished sessions.
type SessionSaver interface {
	Save(ctx context.Context, row *persist.SessionRow) error
}

// PersistenceSystem records the session summary once the game has ended.
// Without a saver the summary is only logged. Phase 5 (Persist).
type PersistenceSystem struct {
	game    Session
	manager *horde.Manager
	player  *player.Player
	gunner  *player.Gunner
	saver   SessionSaver
	name    string
	seed    int64
	log     *zap.Logger

	saved bool
	row   *persist.SessionRow
}

func NewPersistenceSystem(g Session, m *horde.Manager, p *player.Player, gunner *player.Gunner, saver SessionSaver, name string, seed int64, log *zap.Logger) *PersistenceSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &PersistenceSystem{
		game:    g,
		manager: m,
		player:  p,
		gunner:  gunner,
		saver:   saver,
		name:    name,
		seed:    seed,
		log:     log,
	}
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	if s.saved || !s.game.Over() {
		return
	}
	s.saved = true
	s.row = s.Summary()
	s.log.Info("session finished",
		zap.String("outcome", s.row.Outcome),
		zap.Int("kills", s.row.Kills),
		zap.Int("waves", s.row.Waves),
		zap.Int("peak_population", s.row.PeakPopulation),
		zap.Duration("duration", s.row.Duration()))
	if s.saver == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.saver.Save(ctx, s.row); err != nil {
		s.log.Error("save session", zap.Error(err))
		return
	}
	s.log.Info("session saved", zap.Int64("id", s.row.ID))
}

// Saved reports whether the finished session has been handled.
func (s *PersistenceSystem) Saved() bool { return s.saved }

// Summary builds the session row from the current state. For an unfinished
// game the end time is now.
func (s *PersistenceSystem) Summary() *persist.SessionRow {
	st := s.manager.Stats()
	row := &persist.SessionRow{
		ServerName:     s.name,
		Seed:           s.seed,
		Outcome:        s.game.State().String(),
		Kills:          st.Kills,
		Waves:          st.Waves,
		PeakPopulation: st.Peak,
		DamageTaken:    s.player.DamageTaken(),
		StartedAt:      s.game.StartedAt(),
		EndedAt:        s.game.EndedAt(),
	}
	if s.gunner != nil {
		row.ShotsFired = s.gunner.Shots()
	}
	if row.EndedAt.IsZero() {
		row.EndedAt = time.Now()
	}
	return row
}
