package horde

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zsurv/horde/internal/core/ecs"
	"github.com/zsurv/horde/internal/core/event"
	"github.com/zsurv/horde/internal/data"
	"github.com/zsurv/horde/internal/render"
	"github.com/zsurv/horde/internal/world"
)

type fakeCamera struct {
	fn func(p mgl64.Vec3) mgl64.Vec3
}

func (c *fakeCamera) WorldToViewport(p mgl64.Vec3) mgl64.Vec3 {
	if c.fn == nil {
		return mgl64.Vec3{0.5, 0.5, -1}
	}
	return c.fn(p)
}

// showIf makes points satisfying pred project to the centre of the view.
func (c *fakeCamera) showIf(pred func(p mgl64.Vec3) bool) {
	c.fn = func(p mgl64.Vec3) mgl64.Vec3 {
		if pred(p) {
			return mgl64.Vec3{0.5, 0.5, 5}
		}
		return mgl64.Vec3{0.5, 0.5, -5}
	}
}

func (c *fakeCamera) showAll()  { c.showIf(func(mgl64.Vec3) bool { return true }) }
func (c *fakeCamera) showNone() { c.showIf(func(mgl64.Vec3) bool { return false }) }

type fakePlayer struct {
	pos    mgl64.Vec3
	damage []int
}

func (p *fakePlayer) Position() mgl64.Vec3   { return p.pos }
func (p *fakePlayer) ApplyDamage(amount int) { p.damage = append(p.damage, amount) }

func (p *fakePlayer) total() int {
	n := 0
	for _, d := range p.damage {
		n += d
	}
	return n
}

type fakeGame struct {
	playing   bool
	victories int
}

func (g *fakeGame) Playing() bool { return g.playing }

func (g *fakeGame) ReportVictory() {
	g.victories++
	g.playing = false
}

type fakeRenderer struct {
	batches [][]mgl64.Mat4
}

func (r *fakeRenderer) DrawInstanced(_ render.Mesh, _ render.Material, transforms []mgl64.Mat4) {
	r.batches = append(r.batches, append([]mgl64.Mat4(nil), transforms...))
}

func (r *fakeRenderer) sizes() []int {
	out := make([]int, len(r.batches))
	for i, b := range r.batches {
		out[i] = len(b)
	}
	return out
}

type testEnv struct {
	m      *Manager
	cam    *fakeCamera
	player *fakePlayer
	game   *fakeGame
	phys   *world.Physics
	rend   *fakeRenderer
	bus    *event.Bus
}

const tick = 50 * time.Millisecond

func testConfig() Config {
	return Config{
		ActiveBudget:      5,
		SpawnRadius:       2,
		DummyChaseSpeed:   2,
		SpawnInterval:     time.Second,
		InitialWaveSize:   2,
		WaveIncrement:     3,
		MaxPerWave:        10,
		PopulationCeiling: 100,
		BatchSize:         1023,
		DeathDelay:        time.Second,
		GroundMask:        world.LayerAll,
		Zombie: data.ZombieTemplate{
			Name:           "walker",
			Speed:          2,
			Damage:         5,
			AttackInterval: time.Second,
			MaxHealth:      10,
			AttackRange:    1,
		},
	}
}

func newEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	phys := world.NewPhysics(world.NewFlatTerrain(200, 0), nil, nil)
	env := &testEnv{
		cam:    &fakeCamera{},
		player: &fakePlayer{pos: mgl64.Vec3{0, 0, 60}},
		game:   &fakeGame{playing: true},
		phys:   phys,
		rend:   &fakeRenderer{},
		bus:    event.NewBus(),
	}
	m, err := NewManager(cfg, Deps{
		Player:   env.player,
		Game:     env.game,
		Camera:   env.cam,
		Physics:  phys,
		Terrain:  phys.Terrain(),
		Renderer: env.rend,
		NewBody: func(id ecs.EntityID, tag string) (Body, error) {
			return phys.AddCharacter(id, tag, 0.4, 1.8), nil
		},
		World: ecs.NewWorld(),
		Bus:   env.bus,
		Rand:  rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	env.m = m
	return env
}

// addAgent appends a dummy standing at pos.
func (e *testEnv) addAgent(pos mgl64.Vec3) *Agent {
	a := e.m.spawnAgent()
	a.Position, a.PrevPosition = pos, pos
	return a
}

// promoted adds a dummy at pos and promotes it directly.
func (e *testEnv) promoted(t *testing.T, pos mgl64.Vec3) *Zombie {
	t.Helper()
	a := e.addAgent(pos)
	if !e.m.Promote(a) {
		t.Fatalf("promote at %v failed", pos)
	}
	return a.Active
}

func checkInvariants(t *testing.T, m *Manager) {
	t.Helper()
	active := 0
	for _, a := range m.Agents() {
		if a.Removed() {
			continue
		}
		if (a.Tier == TierActive) != (a.Active != nil) {
			t.Fatalf("agent %s: tier %s with handle %v", a.ID, a.Tier, a.Active != nil)
		}
		if a.Tier == TierActive {
			active++
			if a.Active.Agent() != a {
				t.Fatalf("agent %s: instance attached to another agent", a.ID)
			}
		}
	}
	if active != m.Pool().InUse() || active != m.ActiveCount() {
		t.Fatalf("active agents %d, pool in use %d, occupancy %d", active, m.Pool().InUse(), m.ActiveCount())
	}
	if active > m.cfg.ActiveBudget {
		t.Fatalf("active agents %d exceed budget %d", active, m.cfg.ActiveBudget)
	}
}

func vecNear(a, b mgl64.Vec3, tol float64) bool {
	return a.Sub(b).Len() <= tol
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }
