package player

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/zsurv/horde/internal/config"
	"github.com/zsurv/horde/internal/core/event"
)

// Ground keeps the player on the terrain surface.
type Ground interface {
	SampleHeight(x, z float64) float64
}

// Spawning is stopped when the player dies.
type Spawning interface {
	DisableSpawning()
}

// Outcome receives the defeat report.
type Outcome interface {
	ReportDefeat()
}

// Player is the survivor the horde chases. It patrols by slowly turning in
// place, optionally walking, and never leaves the arena radius.
type Player struct {
	cfg    config.PlayerConfig
	ground Ground

	spawning Spawning
	outcome  Outcome

	pos       mgl64.Vec3
	yaw       float64 // degrees, 0 faces +Z
	health    int
	dead      bool
	damageSum int

	bus *event.Bus
	log *zap.Logger
}

func New(cfg config.PlayerConfig, ground Ground, bus *event.Bus, log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Player{
		cfg:    cfg,
		ground: ground,
		health: cfg.MaxHealth,
		bus:    bus,
		log:    log,
	}
	p.pos = p.onGround(mgl64.Vec3{})
	return p
}

// Bind connects the collaborators notified on death. The population and the
// game both need the player first, so they are bound after construction.
func (p *Player) Bind(spawning Spawning, outcome Outcome) {
	p.spawning = spawning
	p.outcome = outcome
}

func (p *Player) Position() mgl64.Vec3 { return p.pos }
func (p *Player) Yaw() float64         { return p.yaw }
func (p *Player) Health() int          { return p.health }
func (p *Player) MaxHealth() int       { return p.cfg.MaxHealth }
func (p *Player) Dead() bool           { return p.dead }
func (p *Player) DamageTaken() int     { return p.damageSum }

// Forward is the horizontal facing direction.
func (p *Player) Forward() mgl64.Vec3 {
	r := mgl64.DegToRad(p.yaw)
	return mgl64.Vec3{math.Sin(r), 0, math.Cos(r)}
}

// Rotation is the facing as a quaternion about world up.
func (p *Player) Rotation() mgl64.Quat {
	return mgl64.QuatRotate(mgl64.DegToRad(p.yaw), mgl64.Vec3{0, 1, 0})
}

// Place teleports the player and sets its facing.
func (p *Player) Place(x, z, yaw float64) {
	p.pos = p.onGround(mgl64.Vec3{x, 0, z})
	p.yaw = math.Mod(yaw, 360)
}

// Update advances the patrol. A dead player stands still.
func (p *Player) Update(dt time.Duration) {
	if p.dead {
		return
	}
	sec := dt.Seconds()
	p.yaw = math.Mod(p.yaw+p.cfg.TurnRate*sec, 360)
	if p.cfg.WalkSpeed == 0 {
		return
	}
	next := p.pos.Add(p.Forward().Mul(p.cfg.WalkSpeed * sec))
	if arena := p.cfg.Arena; arena > 0 {
		flat := mgl64.Vec2{next.X(), next.Z()}
		if flat.Len() > arena {
			flat = flat.Normalize().Mul(arena)
			next = mgl64.Vec3{flat.X(), next.Y(), flat.Y()}
			p.yaw = math.Mod(p.yaw+180, 360)
		}
	}
	p.pos = p.onGround(next)
}

// ApplyDamage reduces health. The killing blow disables spawning and reports
// defeat; later hits are ignored.
func (p *Player) ApplyDamage(amount int) {
	if p.dead || amount <= 0 {
		return
	}
	p.health -= amount
	p.damageSum += amount
	event.Emit(p.bus, event.PlayerHurt{Damage: amount, Health: p.health})
	if p.health > 0 {
		return
	}
	p.dead = true
	p.log.Info("player died", zap.Int("damage_taken", p.damageSum))
	if p.spawning != nil {
		p.spawning.DisableSpawning()
	}
	if p.outcome != nil {
		p.outcome.ReportDefeat()
	}
}

func (p *Player) onGround(v mgl64.Vec3) mgl64.Vec3 {
	if p.ground == nil {
		return v
	}
	return mgl64.Vec3{v.X(), p.ground.SampleHeight(v.X(), v.Z()), v.Z()}
}
