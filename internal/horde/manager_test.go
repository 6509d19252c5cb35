package horde

import (
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zsurv/horde/internal/core/event"
	"github.com/zsurv/horde/internal/world"
)

func TestNewManagerRequiresCollaborators(t *testing.T) {
	cfg := testConfig()
	if _, err := NewManager(cfg, Deps{Game: &fakeGame{}, Camera: &fakeCamera{}}); err == nil {
		t.Error("expected error without player")
	}
	if _, err := NewManager(cfg, Deps{Player: &fakePlayer{}, Camera: &fakeCamera{}}); err == nil {
		t.Error("expected error without game state")
	}
	if _, err := NewManager(cfg, Deps{Player: &fakePlayer{}, Game: &fakeGame{}}); err == nil {
		t.Error("expected error without camera")
	}
	m, err := NewManager(cfg, Deps{Player: &fakePlayer{}, Game: &fakeGame{playing: true}, Camera: &fakeCamera{}})
	if err != nil {
		t.Fatalf("minimal manager: %v", err)
	}
	m.Tick(tick) // no physics, terrain or renderer
}

func TestBudgetSaturation(t *testing.T) {
	env := newEnv(t, testConfig()) // budget 5
	for i := 0; i < 10; i++ {
		env.addAgent(mgl64.Vec3{float64(i) * 2, 0, 0})
	}
	env.cam.showAll()
	env.m.Tick(tick)

	if got := env.m.ActiveCount(); got != 5 {
		t.Fatalf("active = %d, want 5", got)
	}
	suspended, active := 0, 0
	for _, a := range env.m.Agents() {
		switch {
		case a.Tier == TierActive:
			active++
			if a.MovementSuspended {
				t.Errorf("active agent %s suspended", a.ID)
			}
		case a.MovementSuspended:
			suspended++
			if a.Position != a.PrevPosition {
				t.Errorf("suspended agent %s moved from %v to %v", a.ID, a.PrevPosition, a.Position)
			}
		}
	}
	if active != 5 || suspended != 5 {
		t.Errorf("active=%d suspended=%d, want 5 and 5", active, suspended)
	}
	if s := env.m.Stats(); s.Suspended != 5 || s.Active != 5 || s.Population != 10 {
		t.Errorf("stats = %+v", s)
	}
	checkInvariants(t, env.m)
}

func TestPromotionNamesAreUnique(t *testing.T) {
	env := newEnv(t, testConfig())
	z1 := env.promoted(t, mgl64.Vec3{0, 0, 0})
	z2 := env.promoted(t, mgl64.Vec3{3, 0, 0})
	if z1.Name() != "Zombie - 1" || z2.Name() != "Zombie - 2" {
		t.Errorf("names = %q, %q", z1.Name(), z2.Name())
	}
	env.m.Demote(z1.Agent())
	z3 := env.promoted(t, mgl64.Vec3{6, 0, 0})
	if z3.Name() != "Zombie - 3" {
		t.Errorf("recycled instance name = %q, want Zombie - 3", z3.Name())
	}
}

func TestDemoteIsIdempotent(t *testing.T) {
	env := newEnv(t, testConfig())
	z := env.promoted(t, mgl64.Vec3{4, 0, 4})
	a := z.Agent()

	if !env.m.Demote(a) {
		t.Fatal("first demote reported no change")
	}
	free := env.m.Pool().Stats().Free
	if env.m.Demote(a) {
		t.Error("second demote reported a change")
	}
	if env.m.ActiveCount() != 0 || env.m.Pool().Stats().Free != free {
		t.Errorf("second demote changed occupancy %d or pool free %d->%d",
			env.m.ActiveCount(), free, env.m.Pool().Stats().Free)
	}
	checkInvariants(t, env.m)
}

func TestPromoteDemoteRoundTrip(t *testing.T) {
	env := newEnv(t, testConfig())
	a := env.addAgent(mgl64.Vec3{7, 0, -3})
	before := a.PrevPosition

	if !env.m.Promote(a) {
		t.Fatal("promote failed")
	}
	body := a.Active.Body()
	if !vecNear(body.Position(), before, 0.02) {
		t.Errorf("body placed at %v, want near %v", body.Position(), before)
	}
	env.m.Demote(a)

	if a.Tier != TierDummy || a.Active != nil {
		t.Fatalf("tier=%s handle=%v after demote", a.Tier, a.Active != nil)
	}
	if !vecNear(a.Position, before, 1e-6) {
		t.Errorf("position after round trip = %v, want %v", a.Position, before)
	}
	if c, _ := env.phys.Character(body.ID()); c.Active() || c.Position() != (mgl64.Vec3{}) {
		t.Errorf("released body not parked: active=%v pos=%v", c.Active(), c.Position())
	}
}

func TestPromotionUsesPreviousPosition(t *testing.T) {
	env := newEnv(t, testConfig())
	a := env.addAgent(mgl64.Vec3{0, 0, 10})
	env.player.pos = mgl64.Vec3{0, 0, 0}

	// first tick: invisible, the dummy walks one step
	env.cam.showNone()
	env.m.Tick(500 * time.Millisecond)
	if !vecNear(a.Position, mgl64.Vec3{0, 0, 9}, 1e-6) || !vecNear(a.PrevPosition, mgl64.Vec3{0, 0, 10}, 1e-6) {
		t.Fatalf("after move pos=%v prev=%v", a.Position, a.PrevPosition)
	}

	// second tick: visible, promoted at the previous position
	env.cam.showAll()
	env.m.Promote(a)
	if got := a.Active.Body().Position(); !vecNear(got, mgl64.Vec3{0, 0, 10}, 0.02) {
		t.Errorf("promoted at %v, want previous position (0,0,10)", got)
	}
}

func TestVisibilityBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		viewport mgl64.Vec3
		want     bool
	}{
		{"centre", mgl64.Vec3{0.5, 0.5, 3}, true},
		{"corner", mgl64.Vec3{0, 1, 3}, true},
		{"right of view", mgl64.Vec3{1.0001, 0.5, 3}, false},
		{"below view", mgl64.Vec3{0.5, -0.0001, 3}, false},
		{"on camera plane", mgl64.Vec3{0.5, 0.5, 0}, false},
		{"behind", mgl64.Vec3{0.5, 0.5, -3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, testConfig())
			env.cam.fn = func(mgl64.Vec3) mgl64.Vec3 { return tt.viewport }
			env.addAgent(mgl64.Vec3{1, 0, 1})
			env.m.Tick(tick)
			if got := env.m.ActiveCount() == 1; got != tt.want {
				t.Errorf("promoted = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDemoteWhenLeavingView(t *testing.T) {
	env := newEnv(t, testConfig())
	a := env.addAgent(mgl64.Vec3{2, 0, 2})
	env.cam.showAll()
	env.m.Tick(tick)
	if a.Tier != TierActive {
		t.Fatal("agent not promoted")
	}

	env.cam.showNone()
	env.m.Tick(tick)
	if a.Tier != TierDummy || env.m.ActiveCount() != 0 || env.m.Pool().Stats().Free != 1 {
		t.Fatalf("tier=%s active=%d pool=%+v", a.Tier, env.m.ActiveCount(), env.m.Pool().Stats())
	}
	checkInvariants(t, env.m)
}

func TestPoolExhaustionSkipsPromotion(t *testing.T) {
	cfg := testConfig()
	cfg.PoolLimit = 1
	env := newEnv(t, cfg)
	a := env.addAgent(mgl64.Vec3{0, 0, 0})
	b := env.addAgent(mgl64.Vec3{5, 0, 0})
	env.cam.showAll()
	env.m.Tick(tick)

	if a.Tier != TierActive || b.Tier != TierDummy {
		t.Fatalf("tiers = %s, %s", a.Tier, b.Tier)
	}
	if b.MovementSuspended {
		t.Error("agent skipped for pool exhaustion was suspended")
	}

	// the instance frees up and the waiting agent gets it
	env.cam.showIf(func(p mgl64.Vec3) bool { return p.X() > 2.5 })
	env.m.Tick(tick)
	if a.Tier != TierDummy || b.Tier != TierActive {
		t.Fatalf("after release tiers = %s, %s", a.Tier, b.Tier)
	}
	if created := env.m.Pool().Stats().Created; created != 1 {
		t.Errorf("created = %d, want 1", created)
	}
	checkInvariants(t, env.m)
}

func TestNoBodyFactoryNeverPromotes(t *testing.T) {
	cam := &fakeCamera{}
	cam.showAll()
	m, err := NewManager(testConfig(), Deps{Player: &fakePlayer{}, Game: &fakeGame{playing: true}, Camera: cam})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	m.spawnAgent()
	m.Tick(tick)
	if m.ActiveCount() != 0 {
		t.Errorf("active = %d without a body factory", m.ActiveCount())
	}
}

func TestBudgetReleaseResumesMovement(t *testing.T) {
	cfg := testConfig()
	cfg.ActiveBudget = 1
	env := newEnv(t, cfg)
	env.player.pos = mgl64.Vec3{0, 0, 0}
	a := env.addAgent(mgl64.Vec3{10, 0, 0})
	b := env.addAgent(mgl64.Vec3{-10, 0, 0})

	env.cam.showAll()
	env.m.Tick(tick)
	if a.Tier != TierActive || !b.MovementSuspended {
		t.Fatalf("a=%s b suspended=%v", a.Tier, b.MovementSuspended)
	}

	// both leave the view: a is demoted, b keeps its flag through the
	// movement pass and is released at the end of the tick
	env.cam.showNone()
	env.m.Tick(tick)
	if b.MovementSuspended {
		t.Fatal("suspension not cleared after occupancy dropped")
	}
	if b.Position != (mgl64.Vec3{-10, 0, 0}) {
		t.Errorf("suspended agent moved during the releasing tick: %v", b.Position)
	}

	env.m.Tick(500 * time.Millisecond)
	if !vecNear(b.Position, mgl64.Vec3{-9, 0, 0}, 1e-6) {
		t.Errorf("released agent at %v, want (-9,0,0)", b.Position)
	}
}

func TestDummyMovement(t *testing.T) {
	env := newEnv(t, testConfig())
	env.player.pos = mgl64.Vec3{0, 0, 0}
	a := env.addAgent(mgl64.Vec3{10, 0, 0})
	env.cam.showNone()

	env.m.Tick(500 * time.Millisecond) // speed 2 -> one unit
	if !vecNear(a.Position, mgl64.Vec3{9, 0, 0}, 1e-6) {
		t.Errorf("position = %v, want (9,0,0)", a.Position)
	}
	if !vecNear(a.PrevPosition, mgl64.Vec3{10, 0, 0}, 1e-6) {
		t.Errorf("previous = %v, want (10,0,0)", a.PrevPosition)
	}
	if f := a.Rotation.Rotate(worldForward); !vecNear(f, mgl64.Vec3{-1, 0, 0}, 1e-6) {
		t.Errorf("facing = %v, want (-1,0,0)", f)
	}
	if !vecNear(a.UpNormal, worldUp, 1e-9) {
		t.Errorf("up normal = %v, want world up", a.UpNormal)
	}

	// never overshoots the player
	env.m.Tick(10 * time.Second)
	if !vecNear(a.Position, env.player.pos, 1e-6) {
		t.Errorf("position = %v, want player position", a.Position)
	}
}

func TestDummyFollowsGround(t *testing.T) {
	t.Run("steps onto platform", func(t *testing.T) {
		env := newEnv(t, testConfig())
		env.m.physics = world.NewPhysics(world.NewFlatTerrain(200, 0), []world.Platform{
			{MinX: -5, MinZ: -5, MaxX: 5, MaxZ: 5, Top: 1},
		}, nil)
		env.player.pos = mgl64.Vec3{0, 0, 0}
		a := env.addAgent(mgl64.Vec3{6, 0, 0})
		env.cam.showNone()

		env.m.Tick(time.Second) // two units, onto the platform
		if !vecNear(a.Position, mgl64.Vec3{4, 1, 0}, 1e-6) {
			t.Errorf("position = %v, want (4,1,0) on the platform", a.Position)
		}
	})

	t.Run("up normal from hills", func(t *testing.T) {
		env := newEnv(t, testConfig())
		terrain := world.NewTerrain(200, 65, 4, 11)
		env.m.physics = world.NewPhysics(terrain, nil, nil)
		env.m.terrain = terrain
		env.player.pos = mgl64.Vec3{0, 0, 0}
		a := env.addAgent(mgl64.Vec3{20, 0, 13})
		env.cam.showNone()

		env.m.Tick(tick)
		if !approx(a.Position.Y(), terrain.SampleHeight(a.Position.X(), a.Position.Z())) {
			t.Errorf("height %v off the terrain", a.Position.Y())
		}
		want := terrain.Normal(a.Position.X(), a.Position.Z())
		if !vecNear(a.UpNormal, want, 1e-9) {
			t.Errorf("up normal = %v, want %v", a.UpNormal, want)
		}
	})
}

func TestTickGatedByGameState(t *testing.T) {
	env := newEnv(t, testConfig())
	env.player.pos = mgl64.Vec3{0, 0, 0}
	a := env.addAgent(mgl64.Vec3{10, 0, 0})
	env.cam.showAll()
	env.game.playing = false

	env.m.Tick(time.Second)
	if a.Tier != TierDummy || a.Position != (mgl64.Vec3{10, 0, 0}) || len(env.rend.batches) != 0 {
		t.Fatalf("tick ran while not playing: tier=%s pos=%v batches=%d", a.Tier, a.Position, len(env.rend.batches))
	}
	if env.m.Delays().Now() != 0 {
		t.Errorf("simulation clock advanced to %v while not playing", env.m.Delays().Now())
	}
}

func TestBatchSubmission(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 4
	env := newEnv(t, cfg)
	for i := 0; i < 10; i++ {
		env.addAgent(mgl64.Vec3{float64(i), 0, 30})
	}
	env.player.pos = mgl64.Vec3{0, 0, 30}
	env.cam.showNone()
	env.m.Tick(tick)

	sizes := env.rend.sizes()
	if len(sizes) != 3 || sizes[0] != 4 || sizes[1] != 4 || sizes[2] != 2 {
		t.Fatalf("batch sizes = %v, want [4 4 2]", sizes)
	}
	for i, a := range env.m.Agents() {
		got := env.rend.batches[i/4][i%4].Col(3).Vec3()
		if !vecNear(got, a.Position, 1e-9) {
			t.Errorf("instance %d at %v, want %v", i, got, a.Position)
		}
	}

	// active agents are not part of the batch and the buffer is reused
	buf := &env.m.Transforms()[0]
	env.rend.batches = nil
	env.cam.showIf(func(p mgl64.Vec3) bool { return p.X() < 1.5 })
	env.m.Tick(tick)
	total := 0
	for _, n := range env.rend.sizes() {
		total += n
	}
	if total != 8 {
		t.Errorf("instances = %d, want 8 after two promotions", total)
	}
	if &env.m.Transforms()[0] != buf {
		t.Error("transform buffer was reallocated")
	}
}

func TestDummyTransformTiltsToNormal(t *testing.T) {
	a := &Agent{
		Position: mgl64.Vec3{1, 2, 3},
		Rotation: yawRotation(90), // faces +X
		UpNormal: mgl64.Vec3{0, 1, 1}.Normalize(),
	}
	mat := dummyTransform(a)
	if p := mat.Col(3).Vec3(); !vecNear(p, a.Position, 1e-9) {
		t.Errorf("translation = %v", p)
	}
	fwd := mat.Mul4x1(mgl64.Vec4{0, 0, 1, 0}).Vec3()
	if !vecNear(fwd, mgl64.Vec3{1, 0, 0}, 1e-6) {
		t.Errorf("forward = %v, want (1,0,0)", fwd)
	}
	up := mat.Mul4x1(mgl64.Vec4{0, 1, 0, 0}).Vec3()
	if !vecNear(up, a.UpNormal, 1e-6) {
		t.Errorf("up = %v, want ground normal %v", up, a.UpNormal)
	}
}

func TestSnapToGroundFallbacks(t *testing.T) {
	env := newEnv(t, testConfig())
	env.m.physics = world.NewPhysics(world.NewFlatTerrain(20, 0.5), []world.Platform{
		{MinX: 0, MinZ: 0, MaxX: 2, MaxZ: 2, Top: 1.5},
	}, nil)
	env.m.terrain = world.NewFlatTerrain(20, 0.5)

	tests := []struct {
		name string
		in   mgl64.Vec3
		want mgl64.Vec3
	}{
		{"platform hit", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{1, 1.5, 1}},
		{"terrain hit", mgl64.Vec3{-5, 0, -5}, mgl64.Vec3{-5, 0.5, -5}},
		{"ray too short, terrain sample", mgl64.Vec3{-5, 10, -5}, mgl64.Vec3{-5, 0.5, -5}},
		{"off the terrain, clamped sample", mgl64.Vec3{50, 3, 0}, mgl64.Vec3{50, 0.5, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := env.m.snapToGround(tt.in); !vecNear(got, tt.want, 1e-9) {
				t.Errorf("snap(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	env.m.physics = nil
	env.m.terrain = nil
	if got := env.m.snapToGround(mgl64.Vec3{1, 7, 1}); got != (mgl64.Vec3{1, 7, 1}) {
		t.Errorf("snap without collaborators = %v, want unchanged", got)
	}
}

func TestOccupancyInvariantUnderChurn(t *testing.T) {
	cfg := testConfig()
	cfg.InitialWaveSize = 10
	cfg.WaveIncrement = 5
	cfg.SpawnInterval = 100 * time.Millisecond
	cfg.PopulationCeiling = 60
	cfg.SpawnRadius = 15
	cfg.DeathDelay = 200 * time.Millisecond
	env := newEnv(t, cfg)
	env.player.pos = mgl64.Vec3{0, 0, 0}
	env.m.Start()

	rng := rand.New(rand.NewSource(99))
	for i := 0; i < 400; i++ {
		// Hold each view for a while so focused fire can finish a zombie
		// before it is demoted and healed.
		if i%30 == 0 {
			cut := rng.Float64()*8 - 4
			env.cam.showIf(func(p mgl64.Vec3) bool { return p.X() > cut })
		}

		if i%3 == 0 {
			var weakest *Zombie
			env.m.EachActive(func(z *Zombie) {
				if z.Alive() && (weakest == nil || z.Health() < weakest.Health()) {
					weakest = z
				}
			})
			if weakest != nil {
				weakest.TakeDamage(4)
			}
		}
		checkInvariants(t, env.m)

		env.m.Spawner().Step(tick)
		env.m.Tick(tick)
		checkInvariants(t, env.m)
	}

	if env.m.Kills() == 0 {
		t.Error("churn produced no kills")
	}
	for i := 0; i < 10; i++ {
		env.m.Tick(tick)
	}
	if r := env.m.Pool().Retiring(); r != 0 {
		t.Errorf("retiring = %d after death delays elapsed", r)
	}
}

func TestEventsEmitted(t *testing.T) {
	env := newEnv(t, testConfig())
	var promoted, demoted, died int
	event.Subscribe(env.bus, func(event.ZombiePromoted) { promoted++ })
	event.Subscribe(env.bus, func(event.ZombieDemoted) { demoted++ })
	event.Subscribe(env.bus, func(e event.ZombieDied) {
		died++
		if e.Kills != 1 || e.Name != "Zombie - 2" {
			t.Errorf("died event = %+v", e)
		}
	})

	z1 := env.promoted(t, mgl64.Vec3{0, 0, 0})
	z2 := env.promoted(t, mgl64.Vec3{3, 0, 0})
	env.m.Demote(z1.Agent())
	z2.TakeDamage(100)

	env.bus.SwapBuffers()
	env.bus.DispatchAll()
	if promoted != 2 || demoted != 1 || died != 1 {
		t.Errorf("promoted=%d demoted=%d died=%d", promoted, demoted, died)
	}
}
