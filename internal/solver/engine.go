package solver

import (
	"math"
	"time"
)

// StringRemovalConfig tunes the adjusted string removal strategy.
type StringRemovalConfig struct {
	Lmax  int     `yaml:"lmax" json:"lmax"`
	Cavg  int     `yaml:"cavg" json:"cavg"`
	Alpha float64 `yaml:"alpha" json:"alpha"`
}

// WorstRemovalConfig tunes the worst-job removal strategy.
type WorstRemovalConfig struct {
	Threshold int `yaml:"threshold" json:"threshold"`
	Skip      int `yaml:"skip" json:"skip"`
	Min       int `yaml:"min" json:"min"`
	Max       int `yaml:"max" json:"max"`
}

// Config tunes one search run.
type Config struct {
	Iterations        int
	TimeBudget        time.Duration
	InitialTemp       float64
	Cooling           float64
	Seed              int64
	RuinWeights       []float64 // [adjusted string, worst job]
	UnassignedPenalty float64
	StringRemoval     StringRemovalConfig
	WorstRemoval      WorstRemovalConfig
	SnapshotEvery     int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Iterations:        2000,
		TimeBudget:        5 * time.Second,
		InitialTemp:       1.0,
		Cooling:           0.995,
		RuinWeights:       []float64{1, 1},
		UnassignedPenalty: 1e6,
		StringRemoval:     StringRemovalConfig{Lmax: 30, Cavg: 15, Alpha: 0.01},
		WorstRemoval:      WorstRemovalConfig{Threshold: 32, Skip: 4, Min: 1, Max: 4},
		SnapshotEvery:     50,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.Iterations <= 0 {
		c.Iterations = d.Iterations
	}
	if c.TimeBudget <= 0 {
		c.TimeBudget = d.TimeBudget
	}
	if c.InitialTemp <= 0 {
		c.InitialTemp = d.InitialTemp
	}
	if c.Cooling <= 0 || c.Cooling >= 1 {
		c.Cooling = d.Cooling
	}
	if len(c.RuinWeights) != 2 {
		c.RuinWeights = d.RuinWeights
	}
	if c.UnassignedPenalty <= 0 {
		c.UnassignedPenalty = d.UnassignedPenalty
	}
	if c.StringRemoval == (StringRemovalConfig{}) {
		c.StringRemoval = d.StringRemoval
	}
	if c.WorstRemoval == (WorstRemovalConfig{}) {
		c.WorstRemoval = d.WorstRemoval
	}
	if c.SnapshotEvery <= 0 {
		c.SnapshotEvery = d.SnapshotEvery
	}
	return c
}

// Metrics reports what happened during a run.
type Metrics struct {
	RuinSelects   [2]int `json:"ruinSelects"`
	Iterations    int    `json:"iterations"`
	Improvements  int    `json:"improvements"`
	AcceptedWorse int    `json:"acceptedWorse"`
	BestCost      float64
	FinalCost     float64
	FinalWeights  [2]float64
	Snapshots     []WeightSnapshot
}

// WeightSnapshot captures operator weights at an iteration.
type WeightSnapshot struct {
	Iteration int
	Weights   [2]float64
}

// Progress is emitted to the caller while the search runs.
type Progress struct {
	Iteration int
	BestCost  float64
	CurrCost  float64
	Accepted  bool
}

// RoutePlan is one vehicle's resulting visit order.
type RoutePlan struct {
	VehicleID string
	JobIDs    []string
}

// Solution is the exported result of a run.
type Solution struct {
	Routes     []RoutePlan
	Cost       float64
	Unassigned map[string]string // job ID -> reason
}

// Solve runs the ruin-and-recreate search: seed a solution greedily, then
// repeatedly ruin with a weight-selected strategy, recreate, and accept by a
// simulated-annealing criterion, adapting operator weights on the way.
func Solve(p *Problem, lockedIDs []string, cfg Config, onProgress func(Progress)) (Solution, Metrics, error) {
	cfg = cfg.normalized()
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	random := NewRandom(cfg.Seed)

	locked := map[*Job]struct{}{}
	byID := map[string]*Job{}
	for _, job := range p.Jobs.All() {
		byID[job.ID] = job
	}
	for _, id := range lockedIDs {
		if job, ok := byID[id]; ok {
			locked[job] = struct{}{}
		}
	}

	sisr, err := NewAdjustedStringRemoval(cfg.StringRemoval.Lmax, cfg.StringRemoval.Cavg, cfg.StringRemoval.Alpha)
	if err != nil {
		return Solution{}, Metrics{}, err
	}
	worst, err := NewWorstJobRemoval(cfg.WorstRemoval.Threshold, cfg.WorstRemoval.Skip, cfg.WorstRemoval.Min, cfg.WorstRemoval.Max)
	if err != nil {
		return Solution{}, Metrics{}, err
	}
	ruins := []Ruin{sisr, worst}
	weights := append([]float64{}, cfg.RuinWeights...)
	recreate := GreedyInsertion{}
	search := &SearchContext{}

	curr := NewInsertionContext(p, random, locked)
	curr = recreate.Run(search, curr)
	best := curr.Copy()
	bestCost := curr.Cost(cfg.UnassignedPenalty)

	temp := cfg.InitialTemp
	m := Metrics{BestCost: bestCost}
	deadline := time.Now().Add(cfg.TimeBudget)

	for time.Now().Before(deadline) && m.Iterations < cfg.Iterations {
		m.Iterations++
		search.Generation = m.Iterations
		search.BestCost = bestCost

		op := rouletteIndex(weights, random)
		m.RuinSelects[op]++

		cand := curr.Copy()
		cand = ruins[op].Run(search, cand)
		cand = recreate.Run(search, cand)
		candCost := cand.Cost(cfg.UnassignedPenalty)

		delta := candCost - bestCost
		accepted := false
		if delta < 0 || random.UniformReal(0, 1) < math.Exp(-delta/(temp+1e-9)) {
			accepted = true
			curr = cand
			if candCost < bestCost {
				best = cand.Copy()
				bestCost = candCost
				weights[op] += 0.1
				m.Improvements++
				m.BestCost = bestCost
			} else {
				weights[op] += 0.01
				m.AcceptedWorse++
			}
		} else {
			weights[op] = math.Max(0.01, weights[op]*0.999)
		}
		temp *= cfg.Cooling

		if m.Iterations%cfg.SnapshotEvery == 0 {
			m.Snapshots = append(m.Snapshots, WeightSnapshot{Iteration: m.Iterations, Weights: [2]float64{weights[0], weights[1]}})
		}
		if onProgress != nil {
			onProgress(Progress{Iteration: m.Iterations, BestCost: bestCost, CurrCost: candCost, Accepted: accepted})
		}
	}

	m.FinalCost = bestCost
	m.FinalWeights = [2]float64{weights[0], weights[1]}
	return exportSolution(best, bestCost), m, nil
}

func exportSolution(ic *InsertionContext, cost float64) Solution {
	out := Solution{Cost: cost, Unassigned: map[string]string{}}
	for _, rc := range ic.Solution.Routes {
		route := rc.Route()
		plan := RoutePlan{VehicleID: route.Actor.Vehicle.ID, JobIDs: []string{}}
		for _, job := range route.Tour.Jobs() {
			plan.JobIDs = append(plan.JobIDs, job.ID)
		}
		out.Routes = append(out.Routes, plan)
	}
	for job, reason := range ic.Solution.Unassigned {
		out.Unassigned[job.ID] = string(reason)
	}
	// Required jobs left over at export time were never reinserted.
	for _, job := range ic.Solution.Required {
		out.Unassigned[job.ID] = string(ReasonNoRoute)
	}
	return out
}
