package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SpawnPoint is a named location zombie waves scatter around.
type SpawnPoint struct {
	Name string  `yaml:"name"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Z    float64 `yaml:"z"`
}

type spawnPointsFile struct {
	SpawnPoints []SpawnPoint `yaml:"spawn_points"`
}

// LoadSpawnPoints loads spawn points from a YAML file. A missing file is not an
// error: waves fall back to random points around the origin.
func LoadSpawnPoints(path string) ([]SpawnPoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read spawn_points: %w", err)
	}
	var f spawnPointsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawn_points: %w", err)
	}
	return f.SpawnPoints, nil
}
