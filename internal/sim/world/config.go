package world

import (
	"errors"
	"fmt"
	"math"
)

type WorldConfig struct {
	ID   string
	Seed string

	// Grid and window.
	GridStep           float64
	NeighborhoodRadius int

	// Worldgen.
	SpawnProbability  float64
	MaxTokensPerCache int

	// Player. Nil Start means the default spawn point.
	Start    *Position
	MoveStep float64

	// Trail length kept for renderers. Older points are dropped first.
	HistoryLimit int
}

const (
	DefaultSeed               = "seed"
	DefaultGridStep           = 1e-4
	DefaultNeighborhoodRadius = 8
	DefaultSpawnProbability   = 0.1
	DefaultMaxTokensPerCache  = 10
	DefaultHistoryLimit       = 10000
)

// DefaultStart is where a new player stands when no start is configured.
var DefaultStart = Position{X: 36.9995, Y: -122.0533}

var ErrInvalidConfig = errors.New("invalid world config")

// DefaultConfig returns a config with every worldgen and window parameter
// at its default. NeighborhoodRadius, SpawnProbability and
// MaxTokensPerCache are used as given, so a zero there means zero.
func DefaultConfig() WorldConfig {
	start := DefaultStart
	return WorldConfig{
		Seed:               DefaultSeed,
		GridStep:           DefaultGridStep,
		NeighborhoodRadius: DefaultNeighborhoodRadius,
		SpawnProbability:   DefaultSpawnProbability,
		MaxTokensPerCache:  DefaultMaxTokensPerCache,
		Start:              &start,
		HistoryLimit:       DefaultHistoryLimit,
	}
}

// applyDefaults fills fields whose zero value is never meaningful.
func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.Seed == "" {
		c.Seed = DefaultSeed
	}
	if c.GridStep == 0 {
		c.GridStep = DefaultGridStep
	}
	if c.Start == nil {
		start := DefaultStart
		c.Start = &start
	}
	if c.MoveStep <= 0 {
		c.MoveStep = c.GridStep
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
}

func (c WorldConfig) validate() error {
	switch {
	case !(c.GridStep > 0) || math.IsInf(c.GridStep, 0):
		return fmt.Errorf("%w: grid_step must be positive, got %v", ErrInvalidConfig, c.GridStep)
	case c.NeighborhoodRadius < 0:
		return fmt.Errorf("%w: neighborhood_radius must be >= 0, got %d", ErrInvalidConfig, c.NeighborhoodRadius)
	case math.IsNaN(c.SpawnProbability) || c.SpawnProbability < 0 || c.SpawnProbability >= 1:
		return fmt.Errorf("%w: spawn_probability must be in [0,1), got %v", ErrInvalidConfig, c.SpawnProbability)
	case c.MaxTokensPerCache < 0:
		return fmt.Errorf("%w: max_tokens_per_cache must be >= 0, got %d", ErrInvalidConfig, c.MaxTokensPerCache)
	case math.IsInf(c.MoveStep, 0) || math.IsNaN(c.MoveStep):
		return fmt.Errorf("%w: move_step must be finite", ErrInvalidConfig)
	case c.Start != nil && !c.Start.finite():
		return fmt.Errorf("%w: start position must be finite", ErrInvalidConfig)
	}
	return nil
}

// Gen returns the worldgen parameters derived from the config.
func (c WorldConfig) Gen() WorldGen {
	return WorldGen{
		Seed:              c.Seed,
		SpawnProbability:  c.SpawnProbability,
		MaxTokensPerCache: c.MaxTokensPerCache,
	}
}
