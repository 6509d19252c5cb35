package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for tunable game formulas.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
// Missing subdirectories are skipped; every formula has a Go fallback.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "zombie", "wave"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// ZombieAttackContext holds pre-packed data for one zombie hit on the player.
type ZombieAttackContext struct {
	Zombie     string  // template name
	BaseDamage int     // template damage
	Health     int     // attacker's current health
	MaxHealth  int
	Distance   float64 // attacker to player
	Kills      int     // session kill count so far
}

// CalcZombieDamage calls the Lua calc_zombie_damage function. Falls back to
// the base damage when the function is missing or fails.
func (e *Engine) CalcZombieDamage(ctx ZombieAttackContext) int {
	fn := e.vm.GetGlobal("calc_zombie_damage")
	if fn == lua.LNil {
		return ctx.BaseDamage
	}

	t := e.vm.NewTable()
	t.RawSetString("zombie", lua.LString(ctx.Zombie))
	t.RawSetString("base_damage", lua.LNumber(ctx.BaseDamage))
	t.RawSetString("health", lua.LNumber(ctx.Health))
	t.RawSetString("max_health", lua.LNumber(ctx.MaxHealth))
	t.RawSetString("distance", lua.LNumber(ctx.Distance))
	t.RawSetString("kills", lua.LNumber(ctx.Kills))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_zombie_damage error", zap.Error(err))
		return ctx.BaseDamage
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua calc_zombie_damage returned non-number", zap.String("type", result.Type().String()))
		return ctx.BaseDamage
	}
	if n < 0 {
		return 0
	}
	return int(n)
}

// WaveContext holds the scheduler state handed to the wave growth formula.
type WaveContext struct {
	Wave       int // waves spawned so far, including the one just spawned
	Pending    int // size requested for the wave just spawned
	Increment  int // configured increment
	MaxPerWave int
	Population int
	Ceiling    int
}

// NextWaveSize calls the Lua calc_next_wave_size function. Falls back to
// Pending + Increment.
func (e *Engine) NextWaveSize(ctx WaveContext) int {
	fallback := ctx.Pending + ctx.Increment
	fn := e.vm.GetGlobal("calc_next_wave_size")
	if fn == lua.LNil {
		return fallback
	}

	t := e.vm.NewTable()
	t.RawSetString("wave", lua.LNumber(ctx.Wave))
	t.RawSetString("pending", lua.LNumber(ctx.Pending))
	t.RawSetString("increment", lua.LNumber(ctx.Increment))
	t.RawSetString("max_per_wave", lua.LNumber(ctx.MaxPerWave))
	t.RawSetString("population", lua.LNumber(ctx.Population))
	t.RawSetString("ceiling", lua.LNumber(ctx.Ceiling))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_next_wave_size error", zap.Error(err))
		return fallback
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok || n < 0 {
		e.log.Error("lua calc_next_wave_size returned invalid value", zap.String("value", result.String()))
		return fallback
	}
	return int(n)
}
