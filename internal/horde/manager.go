package horde

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/zsurv/horde/internal/core/ecs"
	"github.com/zsurv/horde/internal/core/event"
	"github.com/zsurv/horde/internal/render"
	"github.com/zsurv/horde/internal/world"
)

// Deps are the collaborators a Manager is wired to. Player, Game and Camera
// are required; everything else degrades gracefully when absent.
type Deps struct {
	Player   Player
	Game     GameState
	Camera   Camera
	Physics  Physics
	Terrain  Terrain
	Renderer Renderer
	NewBody  BodyFactory
	Damage   DamageCalculator
	Waves    WaveSizer
	World    *ecs.World
	Bus      *event.Bus
	Rand     *rand.Rand
	Log      *zap.Logger

	SpawnPoints []mgl64.Vec3
	Mesh        render.Mesh
	Material    render.Material
}

// Stats is a snapshot of the population for HUDs and persistence.
type Stats struct {
	Population int
	Active     int
	Suspended  int
	Kills      int
	Waves      int
	Peak       int
	Pool       PoolStats
}

// Manager owns every zombie agent. Each tick it switches agents between the
// dummy and active tiers by camera visibility, runs the active controllers,
// moves the dummies and submits them as instanced batches.
// Accessed only from the game loop goroutine.
type Manager struct {
	cfg Config

	player   Player
	game     GameState
	camera   Camera
	physics  Physics
	terrain  Terrain
	renderer Renderer
	damage   DamageCalculator
	world    *ecs.World
	bus      *event.Bus
	rng      *rand.Rand
	log      *zap.Logger

	spawnPoints []mgl64.Vec3
	mesh        render.Mesh
	material    render.Material

	agents    []*Agent
	pool      *Pool
	delays    DelayQueue
	spawner   *Spawner
	occupancy int
	kills     int
	removals  int
	nextName  int
	peak      int
	matrices  []mgl64.Mat4

	started          bool
	ticking          bool // inside Tick
	spawningDisabled bool
	victoryReported  bool
}

// NewManager wires a manager to its collaborators.
func NewManager(cfg Config, deps Deps) (*Manager, error) {
	switch {
	case deps.Player == nil:
		return nil, errors.New("horde: player is required")
	case deps.Game == nil:
		return nil, errors.New("horde: game state is required")
	case deps.Camera == nil:
		return nil, errors.New("horde: camera is required")
	case cfg.ActiveBudget < 0:
		return nil, fmt.Errorf("horde: active budget cannot be negative, got %d", cfg.ActiveBudget)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = render.MaxInstancesPerBatch
	}
	if cfg.GroundMask == 0 {
		cfg.GroundMask = world.LayerAll
	}

	m := &Manager{
		cfg:         cfg,
		player:      deps.Player,
		game:        deps.Game,
		camera:      deps.Camera,
		physics:     deps.Physics,
		terrain:     deps.Terrain,
		renderer:    deps.Renderer,
		damage:      deps.Damage,
		world:       deps.World,
		bus:         deps.Bus,
		rng:         deps.Rand,
		log:         deps.Log,
		spawnPoints: deps.SpawnPoints,
		mesh:        deps.Mesh,
		material:    deps.Material,
		nextName:    1,
	}
	if m.world == nil {
		m.world = ecs.NewWorld()
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}

	var build func() (*Zombie, error)
	if deps.NewBody != nil {
		build = func() (*Zombie, error) {
			body, err := deps.NewBody(m.world.CreateEntity(), ZombieTag)
			if err != nil {
				return nil, fmt.Errorf("new zombie body: %w", err)
			}
			return newZombie(m, body), nil
		}
	}
	m.pool = newPool(cfg.PoolLimit, build, m.log)
	m.spawner = newSpawner(m, deps.Waves)
	return m, nil
}

// Start begins the wave scheduler. Only the first call has any effect.
func (m *Manager) Start() {
	if m.started {
		return
	}
	m.started = true
	m.spawner.start()
	m.log.Info("population started",
		zap.Int("active_budget", m.cfg.ActiveBudget),
		zap.Int("initial_wave", m.cfg.InitialWaveSize),
		zap.Int("ceiling", m.cfg.PopulationCeiling))
}

// Prewarm builds up to n idle active instances so early promotions do not
// construct bodies mid-game.
func (m *Manager) Prewarm(n int) int {
	return m.pool.Prewarm(n)
}

// DisableSpawning stops the wave scheduler at its next cycle. One-way.
func (m *Manager) DisableSpawning() {
	if m.spawningDisabled {
		return
	}
	m.spawningDisabled = true
	m.log.Info("spawning disabled", zap.Int("population", m.Population()))
}

// SpawningDisabled reports whether DisableSpawning has been called.
func (m *Manager) SpawningDisabled() bool { return m.spawningDisabled }

// Spawner returns the wave scheduler driven by the spawn system.
func (m *Manager) Spawner() *Spawner { return m.spawner }

// Pool returns the active instance pool.
func (m *Manager) Pool() *Pool { return m.pool }

// Delays returns the deferred pool-return queue.
func (m *Manager) Delays() *DelayQueue { return &m.delays }

// Agents returns the live agent list. The slice is only valid until the next
// tick and must not be modified.
func (m *Manager) Agents() []*Agent { return m.agents }

// ActiveCount returns the number of agents currently holding an instance.
func (m *Manager) ActiveCount() int { return m.occupancy }

// Kills returns the number of zombies killed this session.
func (m *Manager) Kills() int { return m.kills }

// Population returns the number of living agents in either tier.
func (m *Manager) Population() int { return len(m.agents) - m.removals }

// EachActive calls fn for every instance with a visible body, including ones
// playing their death animation.
func (m *Manager) EachActive(fn func(z *Zombie)) {
	for _, z := range m.pool.all {
		if z.state != StatePooled {
			fn(z)
		}
	}
}

// Stats returns a snapshot of population counters.
func (m *Manager) Stats() Stats {
	s := Stats{
		Population: m.Population(),
		Active:     m.occupancy,
		Kills:      m.kills,
		Waves:      m.spawner.Waves(),
		Peak:       m.peak,
		Pool:       m.pool.Stats(),
	}
	for _, a := range m.agents {
		if !a.removed && a.MovementSuspended {
			s.Suspended++
		}
	}
	return s
}

// Tick advances the population by one step. Nothing happens unless the game
// is being played.
func (m *Manager) Tick(dt time.Duration) {
	if !m.game.Playing() {
		return
	}
	m.ticking = true
	m.delays.Advance(dt, m.returnToPool)
	m.switchTiers()
	m.updateActive(dt)
	m.flushRemovals()
	m.moveDummies(dt)
	if m.occupancy < m.cfg.ActiveBudget {
		for _, a := range m.agents {
			a.MovementSuspended = false
		}
	}
	m.submitBatches()
	m.ticking = false
}

// switchTiers promotes newly visible dummies while the budget allows and
// demotes active agents that left the view.
func (m *Manager) switchTiers() {
	for _, a := range m.agents {
		if a.removed {
			continue
		}
		visible := m.visible(a.Position)
		switch {
		case a.Tier == TierActive && !visible:
			m.Demote(a)
		case a.Tier == TierDummy && visible:
			if m.occupancy < m.cfg.ActiveBudget {
				m.Promote(a)
			} else {
				a.MovementSuspended = true
			}
		}
	}
}

func (m *Manager) visible(p mgl64.Vec3) bool {
	v := m.camera.WorldToViewport(p)
	return v.Z() > 0 && v.X() >= 0 && v.X() <= 1 && v.Y() >= 0 && v.Y() <= 1
}

// Promote attaches an active instance to a dummy agent at its previous
// ground-snapped position. It returns false when the agent is not a dummy,
// the budget is spent or no instance could be obtained; the agent then stays
// a dummy and is retried on a later pass.
func (m *Manager) Promote(a *Agent) bool {
	if a.removed || a.Tier != TierDummy || m.occupancy >= m.cfg.ActiveBudget {
		return false
	}
	z, ok := m.pool.Acquire()
	if !ok {
		m.log.Debug("no active instance available", zap.Stringer("agent", a.ID))
		return false
	}
	name := fmt.Sprintf("Zombie - %d", m.nextName)
	m.nextName++
	z.attach(a, name, m.snapToGround(a.PrevPosition), a.Rotation)

	a.Active = z
	a.Tier = TierActive
	a.MovementSuspended = false
	m.occupancy++
	event.Emit(m.bus, event.ZombiePromoted{AgentID: a.ID, Name: name})
	return true
}

// Demote copies the instance's transform back into the agent, re-snaps it to
// the ground and releases the instance. Demoting a dummy is a no-op.
func (m *Manager) Demote(a *Agent) bool {
	z := a.Active
	if a.Tier != TierActive || z == nil {
		return false
	}
	name := z.Name()
	a.Position = m.snapToGround(z.body.Position())
	a.Rotation = z.body.Rotation()
	m.pool.Release(z)

	a.Active = nil
	a.Tier = TierDummy
	m.occupancy--
	event.Emit(m.bus, event.ZombieDemoted{AgentID: a.ID, Name: name})
	return true
}

// updateActive runs each attached controller and mirrors the body's position
// into its agent so the next visibility pass judges where the zombie is now.
func (m *Manager) updateActive(dt time.Duration) {
	for _, a := range m.agents {
		if a.removed || a.Tier != TierActive {
			continue
		}
		z := a.Active
		z.Update(dt)
		if a.Active == z {
			a.Position = z.Position()
		}
	}
}

// NotifyDeath removes a dead agent from the population: the kill is counted,
// its instance stops counting against the budget and the agent is queued for
// removal. Reaching the kill target reports victory once and stops spawning.
// Calling it for an agent whose instance is still alive kills the instance.
func (m *Manager) NotifyDeath(a *Agent) {
	if a == nil || a.removed {
		return
	}
	if z := a.Active; z != nil {
		if z.state != StateDying {
			z.die()
			return
		}
		m.pool.Retire(z)
		m.occupancy--
	}
	a.Active = nil
	a.Tier = TierDummy
	a.MovementSuspended = false
	a.removed = true
	m.removals++
	m.kills++
	m.world.MarkForDestruction(a.ID)

	if m.cfg.KillTarget > 0 && m.kills >= m.cfg.KillTarget && !m.victoryReported {
		m.victoryReported = true
		m.DisableSpawning()
		m.log.Info("kill target reached", zap.Int("kills", m.kills))
		m.game.ReportVictory()
	}
}

// scheduleReturn queues a dying instance's return. A death reported between
// ticks, by the player's weapon for example, belongs to the tick about to run,
// so its countdown starts from that tick's clock.
func (m *Manager) scheduleReturn(z *Zombie) {
	if m.ticking {
		m.delays.Schedule(m.cfg.DeathDelay, z)
		return
	}
	m.delays.Hold(m.cfg.DeathDelay, z)
}

// returnToPool fires when a dying instance's delay elapses.
func (m *Manager) returnToPool(z *Zombie) {
	m.pool.Return(z)
}

// flushRemovals compacts dead agents out of the population.
func (m *Manager) flushRemovals() {
	if m.removals == 0 {
		return
	}
	kept := m.agents[:0]
	for _, a := range m.agents {
		if !a.removed {
			kept = append(kept, a)
		}
	}
	for i := len(kept); i < len(m.agents); i++ {
		m.agents[i] = nil
	}
	m.agents = kept
	m.removals = 0
}

// moveDummies walks every dummy toward the player, keeping it on the ground
// and facing its direction of travel.
func (m *Manager) moveDummies(dt time.Duration) {
	target := m.player.Position()
	step := m.cfg.DummyChaseSpeed * dt.Seconds()
	for _, a := range m.agents {
		if a.removed || a.Tier != TierDummy {
			continue
		}
		a.PrevPosition = a.Position
		if a.MovementSuspended {
			continue
		}
		if dir, ok := flatDirection(a.Position, target); ok {
			a.Rotation = lookRotation(dir, worldUp)
		}
		a.Position = m.snapToGround(moveTowards(a.Position, target, step))
		a.UpNormal = m.groundNormal(a.Position)
	}
}

// spawnAgent appends one dummy at a random spot around a spawn point.
func (m *Manager) spawnAgent() *Agent {
	offset := m.insideUnitSphere().Mul(m.cfg.SpawnRadius)
	offset[1] = 0
	pos := m.snapToGround(m.spawnPoint().Add(offset))
	a := &Agent{
		ID:           m.world.CreateEntity(),
		Position:     pos,
		PrevPosition: pos,
		Rotation:     yawRotation(m.rng.Float64() * 360),
		UpNormal:     worldUp,
		Tier:         TierDummy,
	}
	m.agents = append(m.agents, a)
	if n := m.Population(); n > m.peak {
		m.peak = n
	}
	return a
}

// spawnPoint picks a configured spawn point, or a random point within the
// spawn radius of the origin when none are configured.
func (m *Manager) spawnPoint() mgl64.Vec3 {
	if len(m.spawnPoints) > 0 {
		return m.spawnPoints[m.rng.Intn(len(m.spawnPoints))]
	}
	return m.insideUnitSphere().Mul(m.cfg.SpawnRadius)
}
