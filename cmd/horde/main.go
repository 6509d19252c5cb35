package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zsurv/horde/internal/camera"
	"github.com/zsurv/horde/internal/config"
	"github.com/zsurv/horde/internal/core/ecs"
	"github.com/zsurv/horde/internal/core/event"
	coresys "github.com/zsurv/horde/internal/core/system"
	"github.com/zsurv/horde/internal/data"
	"github.com/zsurv/horde/internal/game"
	"github.com/zsurv/horde/internal/horde"
	"github.com/zsurv/horde/internal/persist"
	"github.com/zsurv/horde/internal/player"
	"github.com/zsurv/horde/internal/render"
	"github.com/zsurv/horde/internal/scripting"
	"github.com/zsurv/horde/internal/system"
	"github.com/zsurv/horde/internal/world"
)

// Zombie capsule dimensions.
const (
	bodyRadius = 0.4
	bodyHeight = 1.8
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string, seed int64) {
	fmt.Println()
	fmt.Println("\033[31;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[31;1m  │\033[0m               HORDE  v0.1.0               \033[31;1m│\033[0m")
	fmt.Println("\033[31;1m  │\033[0m      zombie population simulation         \033[31;1m│\033[0m")
	fmt.Println("\033[31;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1msession:\033[0m %s \033[90m(seed: %d)\033[0m\n\n", name, seed)
}

func printSection(title string) {
	lineLen := max(46-len(title)-1, 3)
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := max(42-len(label)-len(numStr), 3)
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printSkip(msg string) {
	fmt.Printf("  \033[90m-\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/horde.toml"
	if p := os.Getenv("HORDE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	terminal := cfg.Render.Mode == "terminal"

	// 2. Init logger. The terminal owns stdout, so logs go to a file there.
	log, err := newLogger(cfg.Logging, terminal)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	seed := cfg.Server.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	printBanner(cfg.Server.Name, seed)

	// 3. Optional PostgreSQL session store
	printSection("database")
	var saver system.SessionSaver
	if cfg.Database.DSN != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, cfg.Server.Name, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(ctx, db.Pool, log)
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printStat("schema version", int(version))
		repo := persist.NewSessionRepo(db)
		recent, err := repo.Recent(ctx, 3)
		if err != nil {
			return fmt.Errorf("recent sessions: %w", err)
		}
		printStat("recent sessions", len(recent))
		for i := range recent {
			fmt.Printf("    \033[90m%s\033[0m\n", recent[i].Headline())
		}
		saver = repo
	} else {
		printSkip("no dsn, sessions are only logged")
	}
	fmt.Println()

	// 4. Data tables
	printSection("data")
	zombies, err := data.LoadZombieTable(cfg.Data.Zombies)
	if err != nil {
		return fmt.Errorf("load zombies: %w", err)
	}
	printStat("zombie templates", zombies.Count())
	zombie := zombies.Get(cfg.Population.Zombie)
	if zombie == nil {
		return fmt.Errorf("zombie template %q not found", cfg.Population.Zombie)
	}

	weapons, err := data.LoadWeaponTable(cfg.Data.Weapons)
	if err != nil {
		return fmt.Errorf("load weapons: %w", err)
	}
	printStat("weapon templates", weapons.Count())
	var weapon *data.WeaponTemplate
	if cfg.Player.Weapon != "" {
		if weapon = weapons.Get(cfg.Player.Weapon); weapon == nil {
			return fmt.Errorf("weapon %q not found", cfg.Player.Weapon)
		}
	}

	spawns, err := data.LoadSpawnPoints(cfg.Data.SpawnPoints)
	if err != nil {
		return fmt.Errorf("load spawn points: %w", err)
	}
	printStat("spawn points", len(spawns))
	spawnPoints := make([]mgl64.Vec3, 0, len(spawns))
	for _, sp := range spawns {
		spawnPoints = append(spawnPoints, mgl64.Vec3{sp.X, sp.Y, sp.Z})
	}
	fmt.Println()

	// 5. Lua scripting engine
	printSection("scripting")
	luaEngine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer luaEngine.Close()
	printOK("Lua engine loaded")
	fmt.Println()

	// 6. World, camera and renderer
	printSection("world")
	phys := world.NewFromConfig(cfg.World, seed, log)
	printStat("terrain resolution", cfg.World.Resolution)
	printStat("platforms", len(phys.Platforms()))
	cam := camera.New(cfg.Camera)

	var (
		renderer render.Renderer
		quit     <-chan struct{}
	)
	if terminal {
		term, err := render.NewTerminal(cfg.Render.Radius, log)
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		renderer, quit = term, term.Quit()
	} else {
		renderer = render.NewCounter(log)
	}
	defer renderer.Close()
	fmt.Println()

	// 7. Game, player and population
	printSection("population")
	ecsWorld := ecs.NewWorld()
	ecsWorld.Track(phys)
	bus := event.NewBus()
	g := game.New(bus, log)
	p := player.New(cfg.Player, phys.Terrain(), bus, log)

	manager, err := horde.NewManager(horde.NewConfig(cfg.Population, *zombie), horde.Deps{
		Player:   p,
		Game:     g,
		Camera:   cam,
		Physics:  phys,
		Terrain:  phys.Terrain(),
		Renderer: renderer,
		NewBody: func(id ecs.EntityID, tag string) (horde.Body, error) {
			return phys.AddCharacter(id, tag, bodyRadius, bodyHeight), nil
		},
		Damage:      luaEngine,
		Waves:       luaEngine,
		World:       ecsWorld,
		Bus:         bus,
		Rand:        rand.New(rand.NewSource(seed)),
		Log:         log,
		SpawnPoints: spawnPoints,
		Mesh:        render.Mesh{Name: "zombie", Glyph: '.'},
		Material:    render.Material{Name: "zombie_skin", Color: tcell.ColorGreen},
	})
	if err != nil {
		return fmt.Errorf("population: %w", err)
	}
	p.Bind(manager, g)
	g.Attach(manager)
	printStat("active budget", cfg.Population.ActiveBudget)
	printStat("prewarmed instances", manager.Prewarm(cfg.Population.ActiveBudget))

	var gunner *player.Gunner
	if weapon != nil {
		gunner = player.NewGunner(weapon, p, func(fn func(player.Target)) {
			manager.EachActive(func(z *horde.Zombie) { fn(z) })
		}, bus, log)
		printOK("armed with " + weapon.Name)
	}
	fmt.Println()

	// 8. Systems
	runner := coresys.NewRunner()
	persistence := system.NewPersistenceSystem(g, manager, p, gunner, saver, cfg.Server.Name, seed, log)
	runner.Register(system.NewPlayerSystem(p, gunner, g))
	runner.Register(system.NewEventSystem(bus))
	runner.Register(system.NewCameraSystem(cam, p))
	runner.Register(system.NewPopulationSystem(manager))
	runner.Register(system.NewSpawnSystem(manager.Spawner()))
	runner.Register(system.NewRenderSystem(renderer, manager, p, g))
	runner.Register(persistence)
	runner.Register(system.NewCleanupSystem(ecsWorld))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Server.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printStat("systems", runner.Len())
	printReady(fmt.Sprintf("tick every %s", cfg.Server.TickRate))
	fmt.Println()

	g.StartGame()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Server.TickRate)
			// Headless sessions end with the game; the terminal stays up
			// until the player quits.
			if persistence.Saved() && !terminal {
				return nil
			}
		case <-quit:
			log.Info("quit requested")
			return finish(persistence, g)
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return finish(persistence, g)
		}
	}
}

// finish logs the summary of a session interrupted before it ended.
func finish(ps *system.PersistenceSystem, g *game.Game) error {
	if ps.Saved() {
		return nil
	}
	row := ps.Summary()
	fmt.Printf("  interrupted while %s: %d kills over %d waves\n", g.State(), row.Kills, row.Waves)
	return nil
}

func newLogger(cfg config.LoggingConfig, toFile bool) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if toFile {
		zapCfg.OutputPaths = []string{"horde.log"}
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	return zapCfg.Build()
}
