package system

import (
	"time"

	"github.com/zsurv/horde/internal/core/ecs"
	coresys "github.com/zsurv/horde/internal/core/system"
	"github.com/zsurv/horde/internal/horde"
)

// PopulationSystem runs the zombie population: tier switching, active
// behaviour, dummy movement and batch submission. Phase 2 (Update).
type PopulationSystem struct {
	manager *horde.Manager
}

func NewPopulationSystem(m *horde.Manager) *PopulationSystem {
	return &PopulationSystem{manager: m}
}

func (s *PopulationSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *PopulationSystem) Update(dt time.Duration) {
	s.manager.Tick(dt)
}

// SpawnSystem polls the wave scheduler. Phase 3 (PostUpdate).
type SpawnSystem struct {
	spawner *horde.Spawner
}

func NewSpawnSystem(sp *horde.Spawner) *SpawnSystem {
	return &SpawnSystem{spawner: sp}
}

func (s *SpawnSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *SpawnSystem) Update(dt time.Duration) {
	s.spawner.Step(dt)
}

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Phase 6 (Cleanup).
type CleanupSystem struct {
	world     *ecs.World
	destroyed int
}

func NewCleanupSystem(world *ecs.World) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.destroyed += s.world.FlushDestroyQueue()
}

// Destroyed reports how many entities have been destroyed so far.
func (s *CleanupSystem) Destroyed() int { return s.destroyed }
