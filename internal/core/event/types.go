package event

import (
	"time"

	"github.com/zsurv/horde/internal/core/ecs"
)

// ZombieDied fires when an active zombie's health first reaches zero.
// Kills is the running kill count including this death.
type ZombieDied struct {
	AgentID ecs.EntityID
	Name    string
	X, Y, Z float64
	Kills   int
}

// ZombieAttacked fires each time an attacking zombie lands a hit on the player.
type ZombieAttacked struct {
	Name   string
	Damage int
}

// ZombiePromoted / ZombieDemoted track tier switches driven by camera visibility.
type ZombiePromoted struct {
	AgentID ecs.EntityID
	Name    string
}

type ZombieDemoted struct {
	AgentID ecs.EntityID
	Name    string
}

// WaveSpawned fires after the scheduler appends a wave of dummy agents.
type WaveSpawned struct {
	Wave       int
	Count      int
	Population int
	NextSize   int
}

// GameStateChanged fires on every game state transition.
type GameStateChanged struct {
	From string
	To   string
	At   time.Time
}

// PlayerHurt fires each time the player loses health. Health may go negative
// on the killing blow.
type PlayerHurt struct {
	Damage int
	Health int
}

// ShotFired fires when the player's weapon discharges.
type ShotFired struct {
	Weapon string
	Hits   int
}
