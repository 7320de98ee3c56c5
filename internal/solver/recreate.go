package solver

import "math"

// Recreate reinserts required jobs into routes. Jobs with no feasible
// placement move to the unassigned pool with a reason.
type Recreate interface {
	Run(search *SearchContext, ic *InsertionContext) *InsertionContext
}

// GreedyInsertion repeatedly inserts the cheapest (job, route, position)
// combination across all required jobs until nothing fits anymore.
type GreedyInsertion struct{}

func (GreedyInsertion) Run(_ *SearchContext, ic *InsertionContext) *InsertionContext {
	sol := ic.Solution
	pending := sol.Required
	sol.Required = nil

	mutated := map[int]struct{}{}
	for len(pending) > 0 {
		bestJob, bestRoute, bestPos := -1, -1, -1
		bestDelta := math.MaxFloat64
		for ji, job := range pending {
			for riIdx, rc := range sol.Routes {
				route := rc.Route()
				if !capacityFits(route, job) {
					continue
				}
				for pos := 1; pos <= route.Tour.ActivityCount()+1; pos++ {
					if d := insertionDelta(ic.Problem, route, job, pos); d < bestDelta {
						bestDelta = d
						bestJob, bestRoute, bestPos = ji, riIdx, pos
					}
				}
			}
		}
		if bestJob < 0 {
			for _, job := range pending {
				sol.Unassigned[job] = ReasonNoCapacity
			}
			break
		}
		job := pending[bestJob]
		sol.Routes[bestRoute].RouteMut().Tour.Insert(job, bestPos)
		mutated[bestRoute] = struct{}{}
		pending = append(pending[:bestJob], pending[bestJob+1:]...)
	}

	for riIdx := range mutated {
		updateSchedule(ic.Problem, sol.Routes[riIdx])
	}
	return ic
}

// capacityFits checks the vehicle's capacity against the tour's total demand
// plus the candidate job. Zero capacity means unconstrained.
func capacityFits(route *Route, job *Job) bool {
	capacity := route.Actor.Vehicle.Capacity
	if capacity <= 0 {
		return true
	}
	total := job.Demand()
	for _, assigned := range route.Tour.Jobs() {
		total += assigned.Demand()
	}
	return total <= capacity
}

// insertionDelta approximates the cost of inserting the job's visits
// contiguously at pos: prev->first + internal legs + last->next - prev->next.
func insertionDelta(p *Problem, route *Route, job *Job, pos int) float64 {
	acts := route.Tour.All()
	prev := acts[pos-1]

	first := job.Visits[0].Location
	last := job.Visits[len(job.Visits)-1].Location

	delta := p.Transport.Cost(route.Actor, prev.Location, first, prev.DepartureSec)
	for i := 1; i < len(job.Visits); i++ {
		delta += p.Transport.Cost(route.Actor, job.Visits[i-1].Location, job.Visits[i].Location, prev.DepartureSec)
	}
	if pos < len(acts) {
		next := acts[pos]
		delta += p.Transport.Cost(route.Actor, last, next.Location, prev.DepartureSec)
		delta -= p.Transport.Cost(route.Actor, prev.Location, next.Location, prev.DepartureSec)
	}
	return delta
}

// updateSchedule recomputes departure marks with a single forward sweep so
// later cost lookups see consistent departures.
func updateSchedule(p *Problem, rc *RouteContext) {
	route := rc.Route()
	acts := route.Tour.All()
	for i := 1; i < len(acts); i++ {
		prev := route.Tour.Get(i - 1)
		cur := route.Tour.Get(i)
		cur.DepartureSec = prev.DepartureSec + p.Transport.Cost(route.Actor, prev.Location, cur.Location, prev.DepartureSec) + cur.ServiceSec
	}
}
