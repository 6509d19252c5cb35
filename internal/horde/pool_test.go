package horde

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/zsurv/horde/internal/core/ecs"
)

func TestPoolFIFOAndLimit(t *testing.T) {
	env := newEnv(t, testConfig())
	built := 0
	p := newPool(2, func() (*Zombie, error) {
		built++
		body := env.phys.AddCharacter(env.m.world.CreateEntity(), ZombieTag, 0.4, 1.8)
		return newZombie(env.m, body), nil
	}, zap.NewNop())

	z1, ok1 := p.Acquire()
	z2, ok2 := p.Acquire()
	if !ok1 || !ok2 || built != 2 {
		t.Fatalf("acquire: %v %v built=%d", ok1, ok2, built)
	}
	if _, ok := p.Acquire(); ok {
		t.Fatal("acquired past the limit")
	}

	// attach so Release sees in-use instances
	z1.state, z2.state = StateApproaching, StateApproaching
	p.Release(z2)
	p.Release(z1)
	if got, _ := p.Acquire(); got != z2 {
		t.Error("pool is not first-in first-out")
	}
	if s := p.Stats(); s.InUse != 1 || s.Free != 1 || s.Created != 2 {
		t.Errorf("stats = %+v", s)
	}
}

func TestPoolReleaseResetsState(t *testing.T) {
	env := newEnv(t, testConfig())
	z := env.promoted(t, mgl64.Vec3{3, 0, 3})
	z.TakeDamage(3)
	z.attackTimer = 700 * time.Millisecond
	z.verticalVelocity = -4

	env.m.Demote(z.Agent())
	if z.State() != StatePooled || z.Health() != 10 || z.attackTimer != 0 || z.verticalVelocity != 0 || z.Agent() != nil {
		t.Errorf("released instance not reset: %+v", z)
	}
	if z.Position() != (mgl64.Vec3{}) || z.Body().Rotation() != mgl64.QuatIdent() {
		t.Errorf("released body not parked at origin: %v", z.Position())
	}
}

func TestPoolPrewarm(t *testing.T) {
	cfg := testConfig()
	cfg.PoolLimit = 3
	env := newEnv(t, cfg)
	if n := env.m.Prewarm(5); n != 3 {
		t.Fatalf("prewarmed %d, want 3", n)
	}
	if s := env.m.Pool().Stats(); s.Free != 3 || s.InUse != 0 {
		t.Fatalf("stats = %+v", s)
	}
	z := env.promoted(t, mgl64.Vec3{0, 0, 0})
	if env.m.Pool().Stats().Created != 3 || z.State() != StateApproaching {
		t.Error("promotion built a new instance despite prewarmed ones")
	}
}

func TestPoolBuildErrorSkipsPromotion(t *testing.T) {
	cam := &fakeCamera{}
	cam.showAll()
	m, err := NewManager(testConfig(), Deps{
		Player: &fakePlayer{},
		Game:   &fakeGame{playing: true},
		Camera: cam,
		NewBody: func(ecs.EntityID, string) (Body, error) {
			return nil, errors.New("no bodies left")
		},
	})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	a := m.spawnAgent()
	m.Tick(tick)
	if a.Tier != TierDummy || m.ActiveCount() != 0 {
		t.Errorf("tier=%s active=%d after build failure", a.Tier, m.ActiveCount())
	}
}

func TestDelayQueue(t *testing.T) {
	var q DelayQueue
	za, zb := &Zombie{}, &Zombie{}
	q.Schedule(time.Second, za)
	q.Advance(300*time.Millisecond, func(*Zombie) { t.Fatal("fired early") })
	q.Schedule(500*time.Millisecond, zb) // due at 800ms, before za

	var fired []*Zombie
	fire := func(z *Zombie) { fired = append(fired, z) }
	q.Advance(500*time.Millisecond, fire)
	if len(fired) != 1 || fired[0] != zb {
		t.Fatalf("fired %v at 800ms, want zb", fired)
	}
	q.Advance(200*time.Millisecond, fire)
	if len(fired) != 2 || fired[1] != za || q.Len() != 0 {
		t.Fatalf("fired %d entries, %d left", len(fired), q.Len())
	}
	q.Advance(time.Hour, fire)
	if len(fired) != 2 {
		t.Error("an entry fired twice")
	}
	if q.Now() != 300*time.Millisecond+500*time.Millisecond+200*time.Millisecond+time.Hour {
		t.Errorf("clock = %v", q.Now())
	}
}

func TestDelayQueueHold(t *testing.T) {
	var q DelayQueue
	q.Advance(time.Second, func(*Zombie) {})
	z := &Zombie{}
	q.Hold(200*time.Millisecond, z)

	var fired int
	fire := func(*Zombie) { fired++ }
	q.Advance(100*time.Millisecond, fire) // stamps due at 1.3s
	q.Advance(150*time.Millisecond, fire)
	if fired != 0 {
		t.Fatalf("held entry fired at %v", q.Now())
	}
	q.Advance(50*time.Millisecond, fire)
	if fired != 1 || q.Len() != 0 {
		t.Fatalf("fired=%d left=%d at %v", fired, q.Len(), q.Now())
	}
}
