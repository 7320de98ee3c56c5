package solver

import "math/rand"

// Random is the single source of randomness threaded through every decision
// point of a search run. Implementations must be deterministic under a fixed
// seed; one logical stream per run makes the whole search reproducible.
type Random interface {
	// UniformInt returns a uniformly distributed integer in [lo, hi].
	UniformInt(lo, hi int) int
	// UniformReal returns a uniformly distributed float in [lo, hi).
	UniformReal(lo, hi float64) float64
	// CoinFlip returns true with probability 0.5.
	CoinFlip() bool
}

type seededRandom struct {
	rng *rand.Rand
}

// NewRandom returns a Random backed by a single seeded stream.
func NewRandom(seed int64) Random {
	return &seededRandom{rng: rand.New(rand.NewSource(seed))}
}

func (r *seededRandom) UniformInt(lo, hi int) int {
	if lo >= hi {
		return lo
	}
	return lo + r.rng.Intn(hi-lo+1)
}

func (r *seededRandom) UniformReal(lo, hi float64) float64 {
	if lo >= hi {
		return lo
	}
	return lo + r.rng.Float64()*(hi-lo)
}

func (r *seededRandom) CoinFlip() bool {
	return r.rng.Intn(2) == 0
}

// shuffleInPlace permutes idx using the shared random stream, so that a fixed
// seed reproduces route processing order as well.
func shuffleInPlace(idx []int, random Random) {
	for i := len(idx) - 1; i > 0; i-- {
		j := random.UniformInt(0, i)
		idx[i], idx[j] = idx[j], idx[i]
	}
}
