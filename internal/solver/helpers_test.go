package solver

import (
	"math"
	"testing"
)

// stubRandom replays scripted values. Calls with lo >= hi short-circuit to lo
// without consuming a value, mirroring the seeded implementation.
type stubRandom struct {
	ints  []int
	reals []float64
	flips []bool
}

func (s *stubRandom) UniformInt(lo, hi int) int {
	if lo >= hi {
		return lo
	}
	if len(s.ints) == 0 {
		panic("stubRandom: int script exhausted")
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v
}

func (s *stubRandom) UniformReal(lo, hi float64) float64 {
	if lo >= hi {
		return lo
	}
	if len(s.reals) == 0 {
		panic("stubRandom: real script exhausted")
	}
	v := s.reals[0]
	s.reals = s.reals[1:]
	return v
}

func (s *stubRandom) CoinFlip() bool {
	if len(s.flips) == 0 {
		panic("stubRandom: flip script exhausted")
	}
	v := s.flips[0]
	s.flips = s.flips[1:]
	return v
}

// lineProblem lays n jobs on a line one unit apart (job i at location i, ID
// "A", "B", ...) with every vehicle starting at location n.
func lineProblem(t *testing.T, n, vehicles int) *Problem {
	t.Helper()
	size := n + 1
	m := make([]float64, size*size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			m[i*size+j] = math.Abs(float64(i - j))
		}
	}
	tr, err := NewMatrixTransport(size, map[int][]float64{0: m})
	if err != nil {
		t.Fatalf("matrix transport: %v", err)
	}
	jobs := make([]JobSpec, n)
	for i := 0; i < n; i++ {
		jobs[i] = JobSpec{ID: string(rune('A' + i)), Visits: []Visit{{Location: i}}}
	}
	fleet := make([]*Vehicle, vehicles)
	for i := 0; i < vehicles; i++ {
		fleet[i] = &Vehicle{ID: "v" + string(rune('1'+i)), Profile: 0, Start: n}
	}
	p, err := NewProblem(jobs, fleet, tr)
	if err != nil {
		t.Fatalf("problem: %v", err)
	}
	return p
}

// assign inserts the given jobs at the tail of route ri and drops them from
// the required pool.
func assign(ic *InsertionContext, ri int, jobs ...*Job) {
	rc := ic.Solution.Routes[ri]
	for _, job := range jobs {
		rc.RouteMut().Tour.Insert(job, rc.Route().Tour.ActivityCount()+1)
	}
	inserted := map[*Job]struct{}{}
	for _, job := range jobs {
		inserted[job] = struct{}{}
	}
	keep := ic.Solution.Required[:0]
	for _, job := range ic.Solution.Required {
		if _, ok := inserted[job]; !ok {
			keep = append(keep, job)
		}
	}
	ic.Solution.Required = keep
}

func tourIDs(rc *RouteContext) []string {
	out := []string{}
	for _, job := range rc.Route().Tour.Jobs() {
		out = append(out, job.ID)
	}
	return out
}

func jobIDs(jobs []*Job) []string {
	out := []string{}
	for _, job := range jobs {
		out = append(out, job.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func jobByID(p *Problem, id string) *Job {
	for _, job := range p.Jobs.All() {
		if job.ID == id {
			return job
		}
	}
	return nil
}
