package horde

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zsurv/horde/internal/core/ecs"
)

// Tier selects which simulation path owns an agent on a given tick.
type Tier uint8

const (
	TierDummy  Tier = iota // batched instance, moved by the manager
	TierActive             // full controller with a physics body
)

func (t Tier) String() string {
	switch t {
	case TierDummy:
		return "dummy"
	case TierActive:
		return "active"
	default:
		return "unknown"
	}
}

// Agent is one logical zombie regardless of tier. The manager mutates it
// directly while it is a dummy; while active the attached controller's body
// is authoritative and Position is refreshed from it on demotion.
//
// Active is non-nil exactly when Tier == TierActive.
type Agent struct {
	ID                ecs.EntityID
	Position          mgl64.Vec3
	PrevPosition      mgl64.Vec3 // last tick's Position, used as the promotion point
	Rotation          mgl64.Quat
	UpNormal          mgl64.Vec3
	Tier              Tier
	Active            *Zombie
	MovementSuspended bool

	removed bool // died this tick, waiting for the removal flush
}

// Removed reports whether the agent has died and left the population.
func (a *Agent) Removed() bool { return a.removed }
