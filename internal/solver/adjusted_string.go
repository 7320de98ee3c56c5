package solver

import (
	"fmt"
	"math"
)

// AdjustedStringRemoval implements the ruin half of "Slack Induction by
// String Removals for Vehicle Routing Problems" (SISR) by Christiaens and
// Vanden Berghe. A string is a sequence of consecutive activities in one
// tour; cardinality is the number of customers in a string or tour.
type AdjustedStringRemoval struct {
	// lmax caps the removed string cardinality for a single tour.
	lmax int
	// cavg is the target average number of removed customers.
	cavg int
	// alpha is the preserved customers ratio.
	alpha float64
}

// NewAdjustedStringRemoval validates the SISR parameters.
func NewAdjustedStringRemoval(lmax, cavg int, alpha float64) (*AdjustedStringRemoval, error) {
	if lmax < 1 {
		return nil, fmt.Errorf("lmax must be >= 1, got %d", lmax)
	}
	if cavg < 1 {
		return nil, fmt.Errorf("cavg must be >= 1, got %d", cavg)
	}
	if alpha <= 0 || alpha > 1 {
		return nil, fmt.Errorf("alpha must be in (0, 1], got %g", alpha)
	}
	return &AdjustedStringRemoval{lmax: lmax, cavg: cavg, alpha: alpha}, nil
}

// DefaultAdjustedStringRemoval returns the strategy with the paper defaults.
func DefaultAdjustedStringRemoval() *AdjustedStringRemoval {
	r, err := NewAdjustedStringRemoval(30, 15, 0.01)
	if err != nil {
		panic(err)
	}
	return r
}

func (a *AdjustedStringRemoval) Run(_ *SearchContext, ic *InsertionContext) *InsertionContext {
	lsmax, ks := a.limits(ic.Solution.Routes, ic.Random)

	removedSet := map[*Job]struct{}{}
	removed := []*Job{}
	touched := map[*Actor]struct{}{}

	for _, job := range seedCandidates(ic.Problem, ic.Solution.Routes, ic.Random) {
		if _, ok := removedSet[job]; ok {
			continue
		}
		if len(touched) == ks {
			break
		}
		// Find a route holding the candidate that was not disturbed yet this
		// call; the candidate may belong only to routes already touched.
		var target *RouteContext
		for _, rc := range ic.Solution.Routes {
			if _, ok := touched[rc.Route().Actor]; ok {
				continue
			}
			if rc.Route().Tour.Contains(job) {
				target = rc
				break
			}
		}
		if target == nil {
			continue
		}
		tour := target.Route().Tour
		index := tour.Index(job)

		// Equations 8, 9: cardinality of the string removed from this tour.
		ltmax := tour.ActivityCount()
		if lsmax < ltmax {
			ltmax = lsmax
		}
		lt := int(math.Floor(ic.Random.UniformReal(1, float64(ltmax)+1)))

		touched[target.Route().Actor] = struct{}{}
		for _, sel := range selectString(tour, index, lt, a.alpha, ic.Random) {
			if _, locked := ic.Locked[sel]; locked {
				continue
			}
			target.RouteMut().Tour.Remove(sel)
			if _, ok := removedSet[sel]; !ok {
				removedSet[sel] = struct{}{}
				removed = append(removed, sel)
			}
		}
	}

	promoteRequired(ic.Solution, removed)
	return ic
}

// limits computes the initial parameters from equations 5-7 of the paper.
func (a *AdjustedStringRemoval) limits(routes []*RouteContext, random Random) (int, int) {
	// Equation 5: max removed string cardinality for each tour.
	lsmax := averageTourCardinality(routes)
	if m := float64(a.lmax); m < lsmax {
		lsmax = m
	}

	// Equation 6: max number of strings.
	ksmax := 4*float64(a.cavg)/(1+lsmax) - 1

	// Equation 7: number of strings to be removed.
	ks := int(math.Floor(random.UniformReal(1, ksmax+1)))

	return int(lsmax), ks
}

// averageTourCardinality is the mean activity count rounded to nearest.
func averageTourCardinality(routes []*RouteContext) float64 {
	if len(routes) == 0 {
		return 0
	}
	sum := 0.0
	for _, rc := range routes {
		sum += float64(rc.Route().Tour.ActivityCount())
	}
	return math.Round(sum / float64(len(routes)))
}

// seedCandidates returns the seed job followed by its proximity neighbors
// under the seed route's profile, unbounded by distance. The sequence is
// consumed once, front to back.
func seedCandidates(p *Problem, routes []*RouteContext, random Random) []*Job {
	rc, seed, ok := selectSeedJob(routes, random)
	if !ok {
		return nil
	}
	neighbors := p.Jobs.Neighbors(rc.Route().Actor.Vehicle.Profile, seed, math.MaxFloat64)
	out := make([]*Job, 0, len(neighbors)+1)
	out = append(out, seed)
	return append(out, neighbors...)
}

// selectSeedJob picks a uniformly random route and scans forward with
// wrap-around until a route with at least one job is found.
func selectSeedJob(routes []*RouteContext, random Random) (*RouteContext, *Job, bool) {
	if len(routes) == 0 {
		return nil, nil, false
	}
	start := random.UniformInt(0, len(routes)-1)
	ri := start
	for {
		rc := routes[ri]
		if rc.Route().Tour.HasJobs() {
			if job, ok := selectRandomJob(rc, random); ok {
				return rc, job, true
			}
		}
		ri = (ri + 1) % len(routes)
		if ri == start {
			break
		}
	}
	return nil, nil, false
}

// selectRandomJob picks a uniformly random activity position and scans
// forward with wrap-around until one bound to a job is found.
func selectRandomJob(rc *RouteContext, random Random) (*Job, bool) {
	size := rc.Route().Tour.ActivityCount()
	if size == 0 {
		return nil, false
	}
	start := random.UniformInt(1, size)
	ai := start
	for {
		if a := rc.Route().Tour.Get(ai); a != nil && a.Job != nil {
			return a.Job, true
		}
		ai = (ai + 1) % (size + 1)
		if ai == start {
			break
		}
	}
	return nil, false
}

// selectString picks the string of jobs to remove around the seed position.
func selectString(tour *Tour, index, cardinality int, alpha float64, random Random) []*Job {
	if random.CoinFlip() {
		return sequentialString(tour, index, cardinality, random)
	}
	return preservedString(tour, index, cardinality, alpha, random)
}

// sequentialString collects jobs from a contiguous block of exactly
// cardinality positions containing the seed position.
func sequentialString(tour *Tour, index, cardinality int, random Random) []*Job {
	begin, end := lowerBounds(cardinality, tour.ActivityCount(), index)
	start := random.UniformInt(begin, end)

	out := []*Job{}
	for i := start; i < start+cardinality; i++ {
		if a := tour.Get(i); a != nil && a.Job != nil {
			out = append(out, a.Job)
		}
	}
	return out
}

// preservedString grows a wider window and carves out an interior sub-block
// that is kept in the tour, producing a gapped string.
func preservedString(tour *Tour, index, cardinality int, alpha float64, random Random) []*Job {
	size := tour.ActivityCount()

	split := preservedCardinality(cardinality, size, alpha, random)
	total := cardinality + split

	begin, end := lowerBounds(total, size, index)
	startTotal := random.UniformInt(begin, end)

	splitStart := random.UniformInt(startTotal, startTotal+cardinality-1)
	splitEnd := splitStart + split

	// The seed job is removed even when it lands inside the preserved block;
	// shrinking the window keeps the realized cardinality at the requested
	// value.
	if index >= splitStart && index < splitEnd {
		total--
	}

	out := []*Job{}
	for i := startTotal; i < startTotal+total; i++ {
		if i >= splitStart && i < splitEnd && i != index {
			continue
		}
		if a := tour.Get(i); a != nil && a.Job != nil {
			out = append(out, a.Job)
		}
	}
	return out
}

// lowerBounds returns the inclusive range of valid first positions for a
// string of stringCrd positions around index, clamped so the string stays
// inside the tour and the end never precedes the start.
func lowerBounds(stringCrd, tourCrd, index int) (int, int) {
	start := index - stringCrd
	if start < 1 {
		start = 1
	}
	end := index + stringCrd
	if limit := tourCrd - stringCrd; end > limit {
		end = limit
	}
	if end < start {
		end = start
	}
	return start, end
}

// preservedCardinality grows the preserved block from 1, stopping with
// probability alpha per step, while the total window fits the tour.
func preservedCardinality(stringCrd, tourCrd int, alpha float64, random Random) int {
	if stringCrd == tourCrd {
		return 0
	}
	preserved := 1
	for stringCrd+preserved < tourCrd {
		if random.UniformReal(0, 1) < alpha {
			break
		}
		preserved++
	}
	return preserved
}
