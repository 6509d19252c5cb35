package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ZombieTemplate holds the static stats of one zombie kind loaded from YAML.
// Only promoted (active) zombies use these; instanced zombies move at the
// population's dummy chase speed.
type ZombieTemplate struct {
	Name           string        `yaml:"name"`
	Speed          float64       `yaml:"speed"`           // units/s while approaching
	Damage         int           `yaml:"damage"`          // per landed attack
	AttackInterval time.Duration `yaml:"attack_interval"` // time between attacks in range
	MaxHealth      int           `yaml:"max_health"`
	AttackRange    float64       `yaml:"attack_range"`
}

type zombieListFile struct {
	Zombies []ZombieTemplate `yaml:"zombies"`
}

// ZombieTable holds all zombie templates indexed by name.
type ZombieTable struct {
	templates map[string]*ZombieTemplate
}

// LoadZombieTable loads zombie templates from a YAML file.
func LoadZombieTable(path string) (*ZombieTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read zombie_list: %w", err)
	}
	var f zombieListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse zombie_list: %w", err)
	}
	t := &ZombieTable{templates: make(map[string]*ZombieTemplate, len(f.Zombies))}
	for i := range f.Zombies {
		z := &f.Zombies[i]
		if err := z.validate(); err != nil {
			return nil, fmt.Errorf("zombie_list entry %d: %w", i, err)
		}
		if _, dup := t.templates[z.Name]; dup {
			return nil, fmt.Errorf("zombie_list: duplicate name %q", z.Name)
		}
		t.templates[z.Name] = z
	}
	return t, nil
}

func (z *ZombieTemplate) validate() error {
	switch {
	case z.Name == "":
		return fmt.Errorf("name is required")
	case z.Speed < 0:
		return fmt.Errorf("zombie %s: speed cannot be negative, got %v", z.Name, z.Speed)
	case z.Damage < 0:
		return fmt.Errorf("zombie %s: damage cannot be negative, got %d", z.Name, z.Damage)
	case z.AttackInterval <= 0:
		return fmt.Errorf("zombie %s: attack_interval must be positive, got %s", z.Name, z.AttackInterval)
	case z.MaxHealth <= 0:
		return fmt.Errorf("zombie %s: max_health must be positive, got %d", z.Name, z.MaxHealth)
	case z.AttackRange <= 0:
		return fmt.Errorf("zombie %s: attack_range must be positive, got %v", z.Name, z.AttackRange)
	}
	return nil
}

// Get returns a template by name, or nil if not found.
func (t *ZombieTable) Get(name string) *ZombieTemplate {
	return t.templates[name]
}

// Count returns the number of loaded templates.
func (t *ZombieTable) Count() int {
	return len(t.templates)
}
