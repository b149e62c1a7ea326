package tuning

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"geopits.dev/internal/sim/world"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	WorldSeed          string  `yaml:"world_seed"`
	GridStep           float64 `yaml:"grid_step"`
	NeighborhoodRadius int     `yaml:"neighborhood_radius"`
	SpawnProbability   float64 `yaml:"spawn_probability"`
	MaxTokensPerCache  int     `yaml:"max_tokens_per_cache"`

	Start        *Point  `yaml:"start"`
	MoveStep     float64 `yaml:"move_step"`
	HistoryLimit int     `yaml:"history_limit"`
}

type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

var ErrInvalid = errors.New("invalid tuning")

// Defaults mirrors configs/tuning.yaml.
func Defaults() Tuning {
	start := world.DefaultStart
	return Tuning{
		ProtocolVersion:    "1.0",
		WorldSeed:          world.DefaultSeed,
		GridStep:           world.DefaultGridStep,
		NeighborhoodRadius: world.DefaultNeighborhoodRadius,
		SpawnProbability:   world.DefaultSpawnProbability,
		MaxTokensPerCache:  world.DefaultMaxTokensPerCache,
		Start:              &Point{X: start.X, Y: start.Y},
		HistoryLimit:       world.DefaultHistoryLimit,
	}
}

// Load reads a tuning file. Keys missing from the file keep their defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	switch {
	case !(t.GridStep > 0) || math.IsInf(t.GridStep, 0):
		return fmt.Errorf("%w: grid_step must be > 0", ErrInvalid)
	case t.NeighborhoodRadius < 0:
		return fmt.Errorf("%w: neighborhood_radius must be >= 0", ErrInvalid)
	case math.IsNaN(t.SpawnProbability) || t.SpawnProbability < 0 || t.SpawnProbability >= 1:
		return fmt.Errorf("%w: spawn_probability must be in [0,1)", ErrInvalid)
	case t.MaxTokensPerCache < 0:
		return fmt.Errorf("%w: max_tokens_per_cache must be >= 0", ErrInvalid)
	case t.MoveStep < 0:
		return fmt.Errorf("%w: move_step must be >= 0", ErrInvalid)
	}
	return nil
}

// WorldConfig builds the world config for one session. An empty seed keeps
// the tuned seed.
func (t Tuning) WorldConfig(id, seed string) world.WorldConfig {
	if seed == "" {
		seed = t.WorldSeed
	}
	cfg := world.WorldConfig{
		ID:                 id,
		Seed:               seed,
		GridStep:           t.GridStep,
		NeighborhoodRadius: t.NeighborhoodRadius,
		SpawnProbability:   t.SpawnProbability,
		MaxTokensPerCache:  t.MaxTokensPerCache,
		MoveStep:           t.MoveStep,
		HistoryLimit:       t.HistoryLimit,
	}
	if t.Start != nil {
		cfg.Start = &world.Position{X: t.Start.X, Y: t.Start.Y}
	}
	return cfg
}
