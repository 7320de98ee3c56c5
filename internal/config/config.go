package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/jdc08161063/vrp/internal/solver"
)

// Solver holds the tunable engine defaults, loadable from a YAML file.
type Solver struct {
	Iterations        int       `yaml:"iterations"`
	TimeBudgetMs      int       `yaml:"timeBudgetMs"`
	InitialTemp       float64   `yaml:"initialTemp"`
	Cooling           float64   `yaml:"cooling"`
	RuinWeights       []float64 `yaml:"ruinWeights"`
	UnassignedPenalty float64   `yaml:"unassignedPenalty"`

	StringRemoval solver.StringRemovalConfig `yaml:"stringRemoval"`
	WorstRemoval  solver.WorstRemovalConfig  `yaml:"worstRemoval"`
}

// Default mirrors the engine defaults.
func Default() Solver {
	d := solver.DefaultConfig()
	return Solver{
		Iterations:        d.Iterations,
		TimeBudgetMs:      int(d.TimeBudget / time.Millisecond),
		InitialTemp:       d.InitialTemp,
		Cooling:           d.Cooling,
		RuinWeights:       d.RuinWeights,
		UnassignedPenalty: d.UnassignedPenalty,
		StringRemoval:     d.StringRemoval,
		WorstRemoval:      d.WorstRemoval,
	}
}

// Load reads solver defaults from path, overlaying the built-in defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (Solver, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read solver config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse solver config: %w", err)
	}
	return cfg, nil
}

// FromEnv loads from the SOLVER_CONFIG path when set.
func FromEnv() (Solver, error) {
	return Load(os.Getenv("SOLVER_CONFIG"))
}

// EngineConfig converts the file shape into the engine's Config.
func (s Solver) EngineConfig() solver.Config {
	return solver.Config{
		Iterations:        s.Iterations,
		TimeBudget:        time.Duration(s.TimeBudgetMs) * time.Millisecond,
		InitialTemp:       s.InitialTemp,
		Cooling:           s.Cooling,
		RuinWeights:       s.RuinWeights,
		UnassignedPenalty: s.UnassignedPenalty,
		StringRemoval:     s.StringRemoval,
		WorstRemoval:      s.WorstRemoval,
	}
}
