package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FireType selects how a weapon picks its victims.
type FireType string

const (
	FireSingle FireType = "single" // nearest zombie in front
	FireCone   FireType = "cone"   // every zombie inside the cone
)

// WeaponTemplate describes a player weapon.
type WeaponTemplate struct {
	Name      string        `yaml:"name"`
	Damage    int           `yaml:"damage"`
	FireType  FireType      `yaml:"fire_type"`
	Range     float64       `yaml:"range"`      // full reach of the shot
	ConeAngle float64       `yaml:"cone_angle"` // full cone width, degrees
	FireRate  time.Duration `yaml:"fire_rate"`  // minimum time between shots
}

type weaponListFile struct {
	Weapons []WeaponTemplate `yaml:"weapons"`
}

type WeaponTable struct {
	templates map[string]*WeaponTemplate
}

// LoadWeaponTable loads weapon templates from a YAML file.
func LoadWeaponTable(path string) (*WeaponTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weapon_list: %w", err)
	}
	var f weaponListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse weapon_list: %w", err)
	}
	t := &WeaponTable{templates: make(map[string]*WeaponTemplate, len(f.Weapons))}
	for i := range f.Weapons {
		w := &f.Weapons[i]
		if w.FireType == "" {
			w.FireType = FireCone
		}
		if w.Name == "" {
			return nil, fmt.Errorf("weapon_list entry %d: name is required", i)
		}
		if w.FireType != FireSingle && w.FireType != FireCone {
			return nil, fmt.Errorf("weapon %s: unknown fire_type %q", w.Name, w.FireType)
		}
		if w.Damage <= 0 || w.Range <= 0 {
			return nil, fmt.Errorf("weapon %s: damage and range must be positive", w.Name)
		}
		if w.FireType == FireCone && (w.ConeAngle <= 0 || w.ConeAngle > 360) {
			return nil, fmt.Errorf("weapon %s: cone_angle must be in (0, 360], got %v", w.Name, w.ConeAngle)
		}
		t.templates[w.Name] = w
	}
	return t, nil
}

func (t *WeaponTable) Get(name string) *WeaponTemplate {
	return t.templates[name]
}

func (t *WeaponTable) Count() int {
	return len(t.templates)
}
