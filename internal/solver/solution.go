package solver

// Route pairs one actor with one tour.
type Route struct {
	Actor *Actor
	Tour  *Tour
}

func (r *Route) copyRoute() *Route {
	return &Route{Actor: r.Actor, Tour: r.Tour.copyTour()}
}

// RouteContext is the mutable handle used during search. Clones share the
// underlying route until one of them mutates it.
type RouteContext struct {
	route  *Route
	shared bool
}

// NewRouteContext creates a context with an empty tour for the actor.
func NewRouteContext(actor *Actor) *RouteContext {
	return &RouteContext{route: &Route{Actor: actor, Tour: NewTour(actor.Vehicle.Start)}}
}

// Route returns the underlying route for reads.
func (rc *RouteContext) Route() *Route { return rc.route }

// RouteMut returns the route for mutation, detaching it from any clones first.
func (rc *RouteContext) RouteMut() *Route {
	if rc.shared {
		rc.route = rc.route.copyRoute()
		rc.shared = false
	}
	return rc.route
}

// Clone returns a context sharing the route until either side mutates.
func (rc *RouteContext) Clone() *RouteContext {
	rc.shared = true
	return &RouteContext{route: rc.route, shared: true}
}

// UnassignedReason explains why a job could not be inserted.
type UnassignedReason string

const (
	ReasonNoCapacity UnassignedReason = "no_capacity"
	ReasonNoRoute    UnassignedReason = "no_route"
)

// SolutionContext aggregates all route contexts plus the three job pools.
// Every job lives in exactly one place: some tour, Required, or Unassigned.
type SolutionContext struct {
	Routes     []*RouteContext
	Required   []*Job
	Unassigned map[*Job]UnassignedReason
}

// NewSolutionContext creates an empty route per actor and parks every job in
// the required pool.
func NewSolutionContext(p *Problem) *SolutionContext {
	routes := make([]*RouteContext, len(p.Fleet))
	for i, actor := range p.Fleet {
		routes[i] = NewRouteContext(actor)
	}
	required := make([]*Job, len(p.Jobs.All()))
	copy(required, p.Jobs.All())
	return &SolutionContext{Routes: routes, Required: required, Unassigned: map[*Job]UnassignedReason{}}
}

func (s *SolutionContext) copySolution() *SolutionContext {
	routes := make([]*RouteContext, len(s.Routes))
	for i, rc := range s.Routes {
		routes[i] = rc.Clone()
	}
	required := make([]*Job, len(s.Required))
	copy(required, s.Required)
	unassigned := make(map[*Job]UnassignedReason, len(s.Unassigned))
	for job, reason := range s.Unassigned {
		unassigned[job] = reason
	}
	return &SolutionContext{Routes: routes, Required: required, Unassigned: unassigned}
}

// InsertionContext owns the problem reference, the mutable solution, the
// random stream and the locked-set snapshot for one search branch.
type InsertionContext struct {
	Problem  *Problem
	Solution *SolutionContext
	Random   Random
	Locked   map[*Job]struct{}
}

// NewInsertionContext builds the initial context with all jobs required.
func NewInsertionContext(p *Problem, random Random, locked map[*Job]struct{}) *InsertionContext {
	if locked == nil {
		locked = map[*Job]struct{}{}
	}
	return &InsertionContext{Problem: p, Solution: NewSolutionContext(p), Random: random, Locked: locked}
}

// Copy returns a context with a copied solution; problem, random stream and
// locked set are shared. Route tours copy lazily on first mutation.
func (ic *InsertionContext) Copy() *InsertionContext {
	return &InsertionContext{Problem: ic.Problem, Solution: ic.Solution.copySolution(), Random: ic.Random, Locked: ic.Locked}
}

// Cost sums transport cost along every tour plus a penalty for each job that
// is not assigned to any route.
func (ic *InsertionContext) Cost(unassignedPenalty float64) float64 {
	total := 0.0
	for _, rc := range ic.Solution.Routes {
		route := rc.Route()
		acts := route.Tour.All()
		for i := 1; i < len(acts); i++ {
			prev := acts[i-1]
			total += ic.Problem.Transport.Cost(route.Actor, prev.Location, acts[i].Location, prev.DepartureSec)
		}
	}
	total += unassignedPenalty * float64(len(ic.Solution.Required)+len(ic.Solution.Unassigned))
	return total
}
