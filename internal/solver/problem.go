package solver

import (
	"fmt"
	"math"
	"sort"
)

// Location is an index into the routing cost space of a profile.
type Location = int

// Visit is one schedulable stop of a job.
type Visit struct {
	Location   Location
	Demand     float64
	ServiceSec float64
}

// Job is an immutable, identity-compared unit of work. A single job carries
// one visit; a multi job carries an ordered group of visits that must be
// served together in order. Jobs are allocated once by the problem builder
// and compared by pointer afterwards.
type Job struct {
	index  int
	ID     string
	Visits []Visit
}

// Index returns the job's stable position in the registry.
func (j *Job) Index() int { return j.index }

// Place returns the job's primary location, used for proximity queries.
func (j *Job) Place() Location { return j.Visits[0].Location }

// Demand returns the total demand across the job's visits.
func (j *Job) Demand() float64 {
	d := 0.0
	for _, v := range j.Visits {
		d += v.Demand
	}
	return d
}

// Vehicle describes a fleet unit with its routing profile.
type Vehicle struct {
	ID       string
	Profile  int
	Capacity float64
	Start    Location
}

// Actor pairs a vehicle with its permissible tour detail. Identity-compared.
type Actor struct {
	index   int
	Vehicle *Vehicle
}

// Index returns the actor's stable position in the fleet.
func (a *Actor) Index() int { return a.index }

// Jobs is the registry of all jobs together with a per-profile proximity
// index. Neighbor lists are precomputed once, ordered nearest first.
type Jobs struct {
	all       []*Job
	neighbors map[int][]neighborList
}

type neighborEntry struct {
	job  *Job
	dist float64
}

type neighborList []neighborEntry

// Problem is the immutable problem definition shared across a search run.
type Problem struct {
	Jobs      *Jobs
	Fleet     []*Actor
	Transport TransportCost
}

// NewProblem allocates the job and actor arenas and builds the proximity
// index for every profile present in the fleet.
func NewProblem(jobs []JobSpec, vehicles []*Vehicle, transport TransportCost) (*Problem, error) {
	if len(jobs) == 0 {
		return nil, fmt.Errorf("problem has no jobs")
	}
	if len(vehicles) == 0 {
		return nil, fmt.Errorf("problem has no vehicles")
	}
	all := make([]*Job, len(jobs))
	for i, spec := range jobs {
		if len(spec.Visits) == 0 {
			return nil, fmt.Errorf("job %q has no visits", spec.ID)
		}
		all[i] = &Job{index: i, ID: spec.ID, Visits: spec.Visits}
	}
	fleet := make([]*Actor, len(vehicles))
	profiles := map[int]struct{}{}
	for i, v := range vehicles {
		fleet[i] = &Actor{index: i, Vehicle: v}
		profiles[v.Profile] = struct{}{}
	}
	registry := &Jobs{all: all, neighbors: map[int][]neighborList{}}
	for profile := range profiles {
		registry.neighbors[profile] = buildNeighborIndex(all, profile, transport)
	}
	return &Problem{Jobs: registry, Fleet: fleet, Transport: transport}, nil
}

// JobSpec is the input shape consumed by NewProblem.
type JobSpec struct {
	ID     string
	Visits []Visit
}

func buildNeighborIndex(all []*Job, profile int, transport TransportCost) []neighborList {
	lists := make([]neighborList, len(all))
	for i, seed := range all {
		entries := make(neighborList, 0, len(all)-1)
		for _, other := range all {
			if other == seed {
				continue
			}
			entries = append(entries, neighborEntry{job: other, dist: transport.Distance(profile, seed.Place(), other.Place())})
		}
		sort.SliceStable(entries, func(a, b int) bool { return entries[a].dist < entries[b].dist })
		lists[i] = entries
	}
	return lists
}

// All returns every job in registry order.
func (j *Jobs) All() []*Job { return j.all }

// Size returns the number of registered jobs.
func (j *Jobs) Size() int { return len(j.all) }

// Neighbors returns jobs ordered by proximity to job under the given profile,
// nearest first, bounded by maxDistance. The returned slice is a view into the
// precomputed index and is consumed in a single forward pass; callers must not
// mutate it.
func (j *Jobs) Neighbors(profile int, job *Job, maxDistance float64) []*Job {
	lists, ok := j.neighbors[profile]
	if !ok {
		return nil
	}
	entries := lists[job.index]
	n := len(entries)
	if maxDistance < math.MaxFloat64 {
		n = sort.Search(len(entries), func(i int) bool { return entries[i].dist > maxDistance })
	}
	out := make([]*Job, n)
	for i := 0; i < n; i++ {
		out[i] = entries[i].job
	}
	return out
}
