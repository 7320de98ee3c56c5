package solver

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
)

// WorstJobRemoval ranks the jobs of each route by the marginal cost they add
// to their tour and greedily removes the most expensive ones together with
// their proximity neighbors.
type WorstJobRemoval struct {
	// threshold stops the strategy once this many jobs were removed.
	threshold int
	// worstSkip is the max random skip over the top of a savings ranking.
	worstSkip int
	// min and max bound the jobs removed per selected seed.
	min, max int
}

// NewWorstJobRemoval validates the removal parameters.
func NewWorstJobRemoval(threshold, worstSkip, min, max int) (*WorstJobRemoval, error) {
	if threshold < 1 {
		return nil, fmt.Errorf("threshold must be >= 1, got %d", threshold)
	}
	if worstSkip < 0 {
		return nil, fmt.Errorf("worst skip must be >= 0, got %d", worstSkip)
	}
	if min < 1 {
		return nil, fmt.Errorf("min must be >= 1, got %d", min)
	}
	if min > max {
		return nil, fmt.Errorf("min %d must not exceed max %d", min, max)
	}
	return &WorstJobRemoval{threshold: threshold, worstSkip: worstSkip, min: min, max: max}, nil
}

// DefaultWorstJobRemoval returns the strategy with its default parameters.
func DefaultWorstJobRemoval() *WorstJobRemoval {
	r, err := NewWorstJobRemoval(32, 4, 1, 4)
	if err != nil {
		panic(err)
	}
	return r
}

type jobSaving struct {
	job  *Job
	cost float64
}

type routeSavings struct {
	rc      *RouteContext
	savings []jobSaving
}

func (w *WorstJobRemoval) Run(_ *SearchContext, ic *InsertionContext) *InsertionContext {
	sol := ic.Solution

	canRemove := func(job *Job) bool {
		if _, ok := ic.Locked[job]; ok {
			return false
		}
		if _, ok := sol.Unassigned[job]; ok {
			return false
		}
		return true
	}

	routeJobs := routeJobIndex(sol)
	savings := routesCostSavings(ic)

	order := make([]int, len(savings))
	for i := range order {
		order[i] = i
	}
	shuffleInPlace(order, ic.Random)

	removedSet := map[*Job]struct{}{}
	removed := []*Job{}

	for _, si := range order {
		if len(removedSet) > w.threshold {
			break
		}
		rs := savings[si]

		skip := ic.Random.UniformInt(0, w.worstSkip)
		if n := len(rs.savings); n < skip {
			skip = n
		}
		var worst *Job
		seen := 0
		for _, s := range rs.savings {
			if !canRemove(s.job) {
				continue
			}
			if seen == skip {
				worst = s.job
				break
			}
			seen++
		}
		if worst == nil {
			continue
		}

		budget := ic.Random.UniformInt(w.min, w.max)
		profile := rs.rc.Route().Actor.Vehicle.Profile
		neighbors := ic.Problem.Jobs.Neighbors(profile, worst, math.MaxFloat64)

		taken := 0
		for _, job := range append([]*Job{worst}, neighbors...) {
			if taken == budget {
				break
			}
			if !canRemove(job) {
				continue
			}
			taken++
			// A job absent from every route is already unassigned; skip it.
			rc, ok := routeJobs[job]
			if !ok {
				continue
			}
			if rc.RouteMut().Tour.Remove(job) {
				if _, dup := removedSet[job]; !dup {
					removedSet[job] = struct{}{}
					removed = append(removed, job)
				}
			}
		}
	}

	promoteRequired(sol, removed)
	return ic
}

// routeJobIndex maps every assigned job to the route that holds it.
func routeJobIndex(sol *SolutionContext) map[*Job]*RouteContext {
	out := map[*Job]*RouteContext{}
	for _, rc := range sol.Routes {
		for _, job := range rc.Route().Tour.Jobs() {
			out[job] = rc
		}
	}
	return out
}

// routesCostSavings computes per-route job savings in parallel. Each route's
// computation reads only immutable problem and route state and writes to a
// private slot; mutation starts only after all results are merged.
func routesCostSavings(ic *InsertionContext) []routeSavings {
	routes := ic.Solution.Routes
	out := make([]routeSavings, len(routes))

	workers := runtime.NumCPU()
	if workers > len(routes) {
		workers = len(routes)
	}
	if workers < 1 {
		workers = 1
	}

	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				out[i] = routeCostSavings(ic.Problem, routes[i])
			}
		}()
	}
	for i := range routes {
		idx <- i
	}
	close(idx)
	wg.Wait()

	return out
}

// routeCostSavings slides a three-activity window over the tour and
// accumulates, per job, the cost the job's presence adds between its
// neighbors. Sorted descending; ties keep tour order so a fixed seed
// reproduces the ranking.
func routeCostSavings(p *Problem, rc *RouteContext) routeSavings {
	route := rc.Route()
	acts := route.Tour.All()

	order := []*Job{}
	acc := map[*Job]float64{}
	for i := 0; i+2 < len(acts); i++ {
		prev, mid, next := &acts[i], &acts[i+1], &acts[i+2]
		if mid.Job == nil {
			panic("worst removal: job activity without a bound job")
		}
		s := legCost(p, route.Actor, prev, mid) + legCost(p, route.Actor, mid, next) - legCost(p, route.Actor, prev, next)
		if _, ok := acc[mid.Job]; !ok {
			order = append(order, mid.Job)
		}
		acc[mid.Job] += s
	}

	savings := make([]jobSaving, len(order))
	for i, job := range order {
		savings[i] = jobSaving{job: job, cost: acc[job]}
	}
	sort.SliceStable(savings, func(a, b int) bool { return savings[a].cost > savings[b].cost })

	return routeSavings{rc: rc, savings: savings}
}

func legCost(p *Problem, actor *Actor, from, to *Activity) float64 {
	return p.Transport.Cost(actor, from.Location, to.Location, from.DepartureSec)
}
