package horde

import (
	"time"

	"go.uber.org/zap"

	"github.com/zsurv/horde/internal/core/event"
	"github.com/zsurv/horde/internal/scripting"
)

type spawnPhase uint8

const (
	phaseIdle        spawnPhase = iota // Start not called yet
	phaseCheck                         // top of the cycle: is spawning still allowed?
	phaseWaitCeiling                   // waiting for population headroom
	phaseWaitTimer                     // waiting out the spawn interval
	phaseDone                          // spawning disabled, never resumes
)

// Spawner is the wave scheduler. It is a step function polled once per tick
// and never blocks: each wait is a phase it stays in until the condition
// holds. The stop flag is only looked at between waves.
type Spawner struct {
	m       *Manager
	waves   WaveSizer
	phase   spawnPhase
	pending int
	waited  time.Duration
	count   int
	skip    bool // first cycle skips both waits
}

func newSpawner(m *Manager, waves WaveSizer) *Spawner {
	return &Spawner{m: m, waves: waves}
}

func (s *Spawner) start() {
	s.pending = s.m.cfg.InitialWaveSize
	s.skip = s.m.cfg.ImmediateFirstWave
	s.phase = phaseCheck
}

// Pending returns the size requested for the next wave before the per-wave cap.
func (s *Spawner) Pending() int { return s.pending }

// Waves returns the number of waves spawned so far.
func (s *Spawner) Waves() int { return s.count }

// Done reports whether the scheduler has stopped for good.
func (s *Spawner) Done() bool { return s.phase == phaseDone }

// Step advances the scheduler by dt of simulation time. At most one wave is
// spawned per call. Time only passes while the game is being played.
//
// The stop check and the ceiling wait take no time: the interval starts
// counting with the dt of the step that clears them. The step that spawns a
// wave re-arms the next cycle without counting its dt again, so waves are
// exactly SpawnInterval apart while the population stays under the ceiling.
func (s *Spawner) Step(dt time.Duration) {
	if !s.m.game.Playing() {
		return
	}
	spent := false
	for {
		switch s.phase {
		case phaseIdle, phaseDone:
			return

		case phaseCheck:
			if s.m.spawningDisabled {
				s.phase = phaseDone
				s.m.log.Info("wave scheduler stopped", zap.Int("waves", s.count))
				return
			}
			s.phase = phaseWaitCeiling

		case phaseWaitCeiling:
			if !s.skip && s.m.Population() >= s.m.cfg.PopulationCeiling {
				return
			}
			s.phase = phaseWaitTimer
			s.waited = 0

		case phaseWaitTimer:
			if spent {
				return
			}
			if !s.skip {
				s.waited += dt
				if s.waited < s.m.cfg.SpawnInterval {
					return
				}
			}
			s.skip = false
			s.spawnWave()
			s.phase = phaseCheck
			spent = true
		}
	}
}

func (s *Spawner) spawnWave() {
	m := s.m
	n := min(s.pending, m.cfg.MaxPerWave)
	for i := 0; i < n; i++ {
		m.spawnAgent()
	}
	s.count++

	next := s.pending + m.cfg.WaveIncrement
	if s.waves != nil {
		next = s.waves.NextWaveSize(scripting.WaveContext{
			Wave:       s.count,
			Pending:    s.pending,
			Increment:  m.cfg.WaveIncrement,
			MaxPerWave: m.cfg.MaxPerWave,
			Population: m.Population(),
			Ceiling:    m.cfg.PopulationCeiling,
		})
	}
	s.pending = next

	event.Emit(m.bus, event.WaveSpawned{
		Wave:       s.count,
		Count:      n,
		Population: m.Population(),
		NextSize:   next,
	})
	m.log.Info("wave spawned",
		zap.Int("wave", s.count),
		zap.Int("count", n),
		zap.Int("population", m.Population()),
		zap.Int("next", next))
}
