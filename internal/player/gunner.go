package player

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/zsurv/horde/internal/core/event"
	"github.com/zsurv/horde/internal/data"
)

// singleAimAngle is the full aim cone of single-shot weapons without a
// configured cone.
const singleAimAngle = 10.0

// Target is anything the gun can hit.
type Target interface {
	Position() mgl64.Vec3
	Alive() bool
	TakeDamage(amount int)
}

// Targets enumerates the current candidates.
type Targets func(fn func(Target))

// Gunner fires the player's weapon automatically whenever the fire rate
// allows and something is in the line of fire.
type Gunner struct {
	weapon  *data.WeaponTemplate
	shooter *Player
	targets Targets
	timer   time.Duration

	shots int
	hits  int

	bus *event.Bus
	log *zap.Logger
}

func NewGunner(weapon *data.WeaponTemplate, shooter *Player, targets Targets, bus *event.Bus, log *zap.Logger) *Gunner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gunner{
		weapon:  weapon,
		shooter: shooter,
		targets: targets,
		timer:   weapon.FireRate,
		bus:     bus,
		log:     log,
	}
}

func (g *Gunner) Shots() int { return g.shots }
func (g *Gunner) Hits() int  { return g.hits }

// Update advances the fire timer and shoots when ready. It returns the number
// of targets hit this tick.
func (g *Gunner) Update(dt time.Duration) int {
	if g.shooter.Dead() {
		return 0
	}
	g.timer = min(g.timer+dt, g.weapon.FireRate)
	if g.timer < g.weapon.FireRate {
		return 0
	}
	victims := g.acquire()
	if len(victims) == 0 {
		return 0
	}
	g.timer = 0
	for _, t := range victims {
		t.TakeDamage(g.weapon.Damage)
	}
	g.shots++
	g.hits += len(victims)
	event.Emit(g.bus, event.ShotFired{Weapon: g.weapon.Name, Hits: len(victims)})
	g.log.Debug("shot fired", zap.String("weapon", g.weapon.Name), zap.Int("hits", len(victims)))
	return len(victims)
}

func (g *Gunner) acquire() []Target {
	if g.targets == nil {
		return nil
	}
	origin := g.shooter.Position()
	forward := g.shooter.Forward()

	cone := g.weapon.ConeAngle
	if g.weapon.FireType == data.FireSingle && cone <= 0 {
		cone = singleAimAngle
	}
	minCos := math.Cos(mgl64.DegToRad(cone / 2))

	var (
		hits    []Target
		nearest Target
		best    = math.Inf(1)
	)
	g.targets(func(t Target) {
		if !t.Alive() {
			return
		}
		d, ok := inCone(origin, forward, t.Position(), g.weapon.Range, minCos)
		if !ok {
			return
		}
		if g.weapon.FireType == data.FireCone {
			hits = append(hits, t)
			return
		}
		if d < best {
			best, nearest = d, t
		}
	})
	if nearest != nil {
		return []Target{nearest}
	}
	return hits
}

// inCone reports whether p lies within reach of origin and inside the
// horizontal cone around forward. It also returns the distance.
func inCone(origin, forward, p mgl64.Vec3, reach, minCos float64) (float64, bool) {
	to := p.Sub(origin)
	dist := to.Len()
	if dist > reach {
		return dist, false
	}
	flat := mgl64.Vec3{to.X(), 0, to.Z()}
	if flat.Len() < 1e-6 {
		return dist, true
	}
	return dist, flat.Normalize().Dot(forward) >= minCos
}
