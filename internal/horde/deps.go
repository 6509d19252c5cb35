package horde

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zsurv/horde/internal/config"
	"github.com/zsurv/horde/internal/core/ecs"
	"github.com/zsurv/horde/internal/data"
	"github.com/zsurv/horde/internal/render"
	"github.com/zsurv/horde/internal/scripting"
	"github.com/zsurv/horde/internal/world"
)

// ZombieTag marks zombie bodies for the forward probe.
const ZombieTag = "Zombie"

// Player is the chase target and damage sink.
type Player interface {
	Position() mgl64.Vec3
	ApplyDamage(amount int)
}

// GameState gates the simulation and receives the victory report.
type GameState interface {
	Playing() bool
	ReportVictory()
}

// Physics answers ground and proximity queries.
type Physics interface {
	RaycastDown(origin mgl64.Vec3, maxDistance float64, mask world.LayerMask) (world.Hit, bool)
	OverlapSphere(center mgl64.Vec3, radius float64) []world.Overlap
}

// Terrain is the heightmap fallback for ground snapping.
type Terrain interface {
	SampleHeight(x, z float64) float64
}

// Camera decides tier visibility.
type Camera interface {
	WorldToViewport(p mgl64.Vec3) mgl64.Vec3
}

// Renderer draws the dummy tier.
type Renderer interface {
	DrawInstanced(mesh render.Mesh, material render.Material, transforms []mgl64.Mat4)
}

// Body is the physics/visual representation an active zombie drives.
type Body interface {
	ID() ecs.EntityID
	Name() string
	SetName(name string)
	Position() mgl64.Vec3
	Rotation() mgl64.Quat
	SetRotation(q mgl64.Quat)
	Place(pos mgl64.Vec3, rot mgl64.Quat)
	Move(delta mgl64.Vec3)
	Grounded() bool
	SetCollision(on bool)
	SetActive(on bool)
}

// BodyFactory builds a new body for a pooled zombie. It is only called when
// the pool has no free instance.
type BodyFactory func(id ecs.EntityID, tag string) (Body, error)

// DamageCalculator turns a zombie hit into player damage.
type DamageCalculator interface {
	CalcZombieDamage(ctx scripting.ZombieAttackContext) int
}

// WaveSizer decides how large the next spawn wave should be.
type WaveSizer interface {
	NextWaveSize(ctx scripting.WaveContext) int
}

// Config holds the static session settings of the population manager.
type Config struct {
	ActiveBudget        int
	SpawnRadius         float64
	DummyChaseSpeed     float64
	SpawnInterval       time.Duration
	InitialWaveSize     int
	WaveIncrement       int
	MaxPerWave          int
	PopulationCeiling   int
	KillTarget          int
	BatchSize           int
	DeathDelay          time.Duration
	ImmediateFirstWave  bool
	ResetAttackOnEngage bool
	PoolLimit           int
	GroundMask          world.LayerMask
	Zombie              data.ZombieTemplate
}

// NewConfig combines the population section with the resolved zombie template.
func NewConfig(p config.PopulationConfig, zombie data.ZombieTemplate) Config {
	return Config{
		ActiveBudget:        p.ActiveBudget,
		SpawnRadius:         p.SpawnRadius,
		DummyChaseSpeed:     p.DummyChaseSpeed,
		SpawnInterval:       p.SpawnInterval,
		InitialWaveSize:     p.InitialWaveSize,
		WaveIncrement:       p.WaveIncrement,
		MaxPerWave:          p.MaxPerWave,
		PopulationCeiling:   p.PopulationCeiling,
		KillTarget:          p.KillTarget,
		BatchSize:           p.BatchSize,
		DeathDelay:          p.DeathDelay,
		ImmediateFirstWave:  p.ImmediateFirstWave,
		ResetAttackOnEngage: p.ResetAttackOnEngage,
		PoolLimit:           p.PoolLimit,
		GroundMask:          world.LayerAll,
		Zombie:              zombie,
	}
}
