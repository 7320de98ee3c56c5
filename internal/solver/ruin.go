package solver

import "fmt"

// SearchContext carries outer-loop state visible to operators.
type SearchContext struct {
	Generation int
	BestCost   float64
}

// Ruin removes a subset of assigned jobs from the solution and parks them in
// the required pool for the recreate phase. Implementations never remove
// locked jobs, never touch the departure activity, and may legally remove
// nothing at all. A single call is not reentrant.
type Ruin interface {
	Run(search *SearchContext, ic *InsertionContext) *InsertionContext
}

// WeightedRuin picks exactly one of its strategies per call by roulette wheel
// over the configured weights, using the context's random stream.
type WeightedRuin struct {
	ruins   []Ruin
	weights []float64
}

// NewWeightedRuin validates and wraps the given strategies.
func NewWeightedRuin(ruins []Ruin, weights []float64) (*WeightedRuin, error) {
	if len(ruins) == 0 {
		return nil, fmt.Errorf("weighted ruin needs at least one strategy")
	}
	if len(ruins) != len(weights) {
		return nil, fmt.Errorf("weighted ruin has %d strategies but %d weights", len(ruins), len(weights))
	}
	return &WeightedRuin{ruins: ruins, weights: weights}, nil
}

func (w *WeightedRuin) Run(search *SearchContext, ic *InsertionContext) *InsertionContext {
	return w.ruins[rouletteIndex(w.weights, ic.Random)].Run(search, ic)
}

// SequentialRuin applies all of its strategies in order within one call.
type SequentialRuin []Ruin

func (s SequentialRuin) Run(search *SearchContext, ic *InsertionContext) *InsertionContext {
	for _, r := range s {
		ic = r.Run(search, ic)
	}
	return ic
}

// rouletteIndex selects an index proportionally to its weight.
func rouletteIndex(weights []float64, random Random) int {
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return 0
	}
	r := random.UniformReal(0, sum)
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return i
		}
	}
	return len(weights) - 1
}

// promoteRequired hands removed jobs to the recreate phase. Appending happens
// in removal order so a fixed seed reproduces the required pool exactly.
func promoteRequired(sol *SolutionContext, removed []*Job) {
	sol.Required = append(sol.Required, removed...)
}
