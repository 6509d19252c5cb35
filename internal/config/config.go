package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Population PopulationConfig `toml:"population"`
	Player     PlayerConfig     `toml:"player"`
	World      WorldConfig      `toml:"world"`
	Camera     CameraConfig     `toml:"camera"`
	Render     RenderConfig     `toml:"render"`
	Scripting  ScriptingConfig  `toml:"scripting"`
	Data       DataConfig       `toml:"data"`
	Database   DatabaseConfig   `toml:"database"`
	Logging    LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Name     string        `toml:"name"`
	TickRate time.Duration `toml:"tick_rate"`
	Seed     int64         `toml:"seed"` // 0 = seed from clock
}

// PopulationConfig holds every knob of the zombie population manager and its
// wave scheduler. Static for a session.
type PopulationConfig struct {
	ActiveBudget        int           `toml:"active_budget"`     // max zombies running full AI at once
	SpawnRadius         float64       `toml:"spawn_radius"`      // scatter radius around a spawn point
	DummyChaseSpeed     float64       `toml:"dummy_chase_speed"` // units/s for instanced zombies
	SpawnInterval       time.Duration `toml:"spawn_interval"`
	InitialWaveSize     int           `toml:"initial_wave_size"`
	WaveIncrement       int           `toml:"wave_increment"`
	MaxPerWave          int           `toml:"max_per_wave"`
	PopulationCeiling   int           `toml:"population_ceiling"`
	KillTarget          int           `toml:"kill_target"` // 0 = no victory condition
	BatchSize           int           `toml:"batch_size"`  // instances per draw call
	DeathDelay          time.Duration `toml:"death_delay"` // death animation time before pool return
	ImmediateFirstWave  bool          `toml:"immediate_first_wave"`
	ResetAttackOnEngage bool          `toml:"reset_attack_on_engage"`
	PoolLimit           int           `toml:"pool_limit"` // 0 = construct on demand without limit
	Zombie              string        `toml:"zombie"`     // template name in zombie_list.yaml
}

type PlayerConfig struct {
	MaxHealth int     `toml:"max_health"`
	Weapon    string  `toml:"weapon"`     // template name in weapon_list.yaml, empty = unarmed
	TurnRate  float64 `toml:"turn_rate"`  // degrees/s of the patrol turn
	WalkSpeed float64 `toml:"walk_speed"` // units/s along the facing direction
	Arena     float64 `toml:"arena"`      // player stays within this radius of the origin
}

type WorldConfig struct {
	Size       float64          `toml:"size"`       // terrain edge length (world units)
	Resolution int              `toml:"resolution"` // heightmap samples per edge
	Amplitude  float64          `toml:"amplitude"`  // terrain height variation
	Platforms  []PlatformConfig `toml:"platforms"`
}

type PlatformConfig struct {
	MinX float64 `toml:"min_x"`
	MinZ float64 `toml:"min_z"`
	MaxX float64 `toml:"max_x"`
	MaxZ float64 `toml:"max_z"`
	Top  float64 `toml:"top"`
}

type CameraConfig struct {
	FOV      float64 `toml:"fov"` // vertical, degrees
	Aspect   float64 `toml:"aspect"`
	Near     float64 `toml:"near"`
	Far      float64 `toml:"far"`
	Distance float64 `toml:"distance"` // behind the player
	Height   float64 `toml:"height"`   // above the player
}

type RenderConfig struct {
	Mode   string  `toml:"mode"`   // "none" or "terminal"
	Radius float64 `toml:"radius"` // world units shown from the player to the map edge
}

type ScriptingConfig struct {
	Dir string `toml:"dir"`
}

type DataConfig struct {
	Zombies     string `toml:"zombies"`
	Weapons     string `toml:"weapons"`
	SpawnPoints string `toml:"spawn_points"`
}

type DatabaseConfig struct {
	DSN             string        `toml:"dsn"` // empty = session persistence disabled
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration used when no file overrides it.
func Default() *Config {
	return defaults()
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	p := c.Population
	switch {
	case c.Server.TickRate <= 0:
		return fmt.Errorf("server.tick_rate must be positive, got %s", c.Server.TickRate)
	case p.ActiveBudget < 0:
		return fmt.Errorf("population.active_budget cannot be negative, got %d", p.ActiveBudget)
	case p.BatchSize <= 0:
		return fmt.Errorf("population.batch_size must be positive, got %d", p.BatchSize)
	case p.SpawnInterval < 0:
		return fmt.Errorf("population.spawn_interval cannot be negative, got %s", p.SpawnInterval)
	case p.MaxPerWave < 0 || p.InitialWaveSize < 0:
		return fmt.Errorf("population wave sizes cannot be negative")
	case p.PopulationCeiling <= 0:
		return fmt.Errorf("population.population_ceiling must be positive, got %d", p.PopulationCeiling)
	case p.DeathDelay < 0:
		return fmt.Errorf("population.death_delay cannot be negative, got %s", p.DeathDelay)
	case c.Player.MaxHealth <= 0:
		return fmt.Errorf("player.max_health must be positive, got %d", c.Player.MaxHealth)
	case c.World.Resolution < 2:
		return fmt.Errorf("world.resolution must be at least 2, got %d", c.World.Resolution)
	case c.Render.Mode != "none" && c.Render.Mode != "terminal":
		return fmt.Errorf("render.mode must be \"none\" or \"terminal\", got %q", c.Render.Mode)
	case c.Render.Mode == "terminal" && c.Render.Radius <= 0:
		return fmt.Errorf("render.radius must be positive, got %v", c.Render.Radius)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "horde",
			TickRate: 50 * time.Millisecond,
		},
		Population: PopulationConfig{
			ActiveBudget:      20,
			SpawnRadius:       10,
			DummyChaseSpeed:   1.5,
			SpawnInterval:     10 * time.Second,
			InitialWaveSize:   10,
			WaveIncrement:     5,
			MaxPerWave:        50,
			PopulationCeiling: 500,
			KillTarget:        100,
			BatchSize:         1023,
			DeathDelay:        time.Second,
			Zombie:            "walker",
		},
		Player: PlayerConfig{
			MaxHealth: 100,
			Weapon:    "shotgun",
			TurnRate:  12,
			WalkSpeed: 0,
			Arena:     40,
		},
		World: WorldConfig{
			Size:       200,
			Resolution: 129,
			Amplitude:  2,
		},
		Camera: CameraConfig{
			FOV:      60,
			Aspect:   16.0 / 9.0,
			Near:     0.3,
			Far:      120,
			Distance: 6,
			Height:   3,
		},
		Render: RenderConfig{
			Mode:   "none",
			Radius: 40,
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Data: DataConfig{
			Zombies:     "data/yaml/zombie_list.yaml",
			Weapons:     "data/yaml/weapon_list.yaml",
			SpawnPoints: "data/yaml/spawn_points.yaml",
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
