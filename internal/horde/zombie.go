package horde

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/zsurv/horde/internal/core/event"
	"github.com/zsurv/horde/internal/data"
	"github.com/zsurv/horde/internal/scripting"
)

// State is the controller state of one active zombie instance.
type State uint8

const (
	StatePooled State = iota
	StateApproaching
	StateAttacking
	StateDying
)

func (s State) String() string {
	switch s {
	case StatePooled:
		return "pooled"
	case StateApproaching:
		return "approaching"
	case StateAttacking:
		return "attacking"
	case StateDying:
		return "dying"
	default:
		return "unknown"
	}
}

const (
	gravity          = -9.81
	groundedVelocity = -1.0 // keeps the body pressed onto the ground
	probeDistance    = 0.5
	probeRadius      = 0.3
	settleDistance   = 0.01
)

// Zombie is a full-fidelity zombie: a pooled body plus the chase/attack/death
// state machine driving it. The manager attaches it to an agent on promotion
// and calls Update once per tick while attached.
type Zombie struct {
	mgr  *Manager
	body Body
	tmpl data.ZombieTemplate

	agent            *Agent
	state            State
	health           int
	attackTimer      time.Duration
	verticalVelocity float64
	walking          bool
}

func newZombie(m *Manager, body Body) *Zombie {
	return &Zombie{
		mgr:    m,
		body:   body,
		tmpl:   m.cfg.Zombie,
		state:  StatePooled,
		health: m.cfg.Zombie.MaxHealth,
	}
}

func (z *Zombie) Body() Body           { return z.body }
func (z *Zombie) Agent() *Agent        { return z.agent }
func (z *Zombie) State() State         { return z.state }
func (z *Zombie) Health() int          { return z.health }
func (z *Zombie) Name() string         { return z.body.Name() }
func (z *Zombie) Position() mgl64.Vec3 { return z.body.Position() }

// Walking reports whether the zombie moved toward the player this tick.
func (z *Zombie) Walking() bool { return z.walking }

// Alive reports whether the zombie can still be hit.
func (z *Zombie) Alive() bool {
	return z.state == StateApproaching || z.state == StateAttacking
}

// attach binds the instance to an agent at the given spot. Collision stays off
// for this step while the body settles; the next Update turns it back on.
func (z *Zombie) attach(a *Agent, name string, pos mgl64.Vec3, rot mgl64.Quat) {
	z.agent = a
	z.state = StateApproaching
	z.health = z.tmpl.MaxHealth
	z.verticalVelocity = 0
	z.walking = false

	z.body.SetName(name)
	z.body.Place(pos, rot)
	z.body.SetActive(true)
	z.body.SetCollision(false)
	z.body.Move(worldUp.Mul(-settleDistance))
}

// Update runs one tick of the state machine.
func (z *Zombie) Update(dt time.Duration) {
	if !z.Alive() {
		return
	}
	z.body.SetCollision(true)

	target := z.mgr.player.Position()
	pos := z.body.Position()
	if pos.Sub(target).Len() <= z.tmpl.AttackRange {
		z.attack(dt)
		return
	}
	if z.state == StateAttacking {
		z.state = StateApproaching
	}
	z.approach(target, dt)
}

func (z *Zombie) attack(dt time.Duration) {
	if z.state != StateAttacking {
		z.state = StateAttacking
		if z.mgr.cfg.ResetAttackOnEngage {
			z.attackTimer = 0
		}
	}
	z.walking = false
	z.attackTimer += dt
	if z.attackTimer < z.tmpl.AttackInterval {
		return
	}
	z.attackTimer = 0

	dmg := z.damage()
	event.Emit(z.mgr.bus, event.ZombieAttacked{Name: z.Name(), Damage: dmg})
	z.mgr.player.ApplyDamage(dmg)
}

func (z *Zombie) damage() int {
	if z.mgr.damage == nil {
		return z.tmpl.Damage
	}
	return z.mgr.damage.CalcZombieDamage(scripting.ZombieAttackContext{
		Zombie:     z.tmpl.Name,
		BaseDamage: z.tmpl.Damage,
		Health:     z.health,
		MaxHealth:  z.tmpl.MaxHealth,
		Distance:   z.body.Position().Sub(z.mgr.player.Position()).Len(),
		Kills:      z.mgr.kills,
	})
}

func (z *Zombie) approach(target mgl64.Vec3, dt time.Duration) {
	z.walking = true
	dir, ok := flatDirection(z.body.Position(), target)
	if !ok {
		return
	}
	z.body.SetRotation(lookRotation(dir, worldUp))
	if z.pathBlocked(dir) {
		return
	}

	secs := dt.Seconds()
	if z.body.Grounded() {
		z.verticalVelocity = groundedVelocity
	} else {
		z.verticalVelocity += gravity * secs
	}
	move := dir.Mul(z.tmpl.Speed).Add(worldUp.Mul(z.verticalVelocity))
	z.body.Move(move.Mul(secs))
}

// pathBlocked probes just ahead for another zombie body. The zombie's own
// body is excluded by id.
func (z *Zombie) pathBlocked(dir mgl64.Vec3) bool {
	if z.mgr.physics == nil {
		return false
	}
	probe := z.body.Position().Add(dir.Mul(probeDistance))
	self := z.body.ID()
	for _, o := range z.mgr.physics.OverlapSphere(probe, probeRadius) {
		if o.ID != self && o.Tag == ZombieTag {
			return true
		}
	}
	return false
}

// TakeDamage subtracts health; the first hit that brings it to zero starts
// the death sequence. Hits on dying or pooled instances are ignored.
func (z *Zombie) TakeDamage(amount int) {
	if !z.Alive() {
		return
	}
	z.health -= amount
	if z.health <= 0 {
		z.die()
	}
}

// die reports the death and schedules the return to the pool. The body stays
// visible where it fell until the delay elapses.
func (z *Zombie) die() {
	z.state = StateDying
	z.walking = false
	a := z.agent
	pos := z.body.Position()

	m := z.mgr
	m.NotifyDeath(a)
	z.agent = nil
	m.scheduleReturn(z)

	id := a.ID
	event.Emit(m.bus, event.ZombieDied{
		AgentID: id,
		Name:    z.Name(),
		X:       pos.X(),
		Y:       pos.Y(),
		Z:       pos.Z(),
		Kills:   m.kills,
	})
	m.log.Debug("zombie died",
		zap.String("name", z.Name()),
		zap.Stringer("agent", id),
		zap.Int("kills", m.kills))
}
