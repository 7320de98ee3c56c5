package solver

import "testing"

func TestWorstJobRemovalValidation(t *testing.T) {
	if _, err := NewWorstJobRemoval(0, 4, 1, 4); err == nil {
		t.Fatal("expected error for threshold < 1")
	}
	if _, err := NewWorstJobRemoval(32, -1, 1, 4); err == nil {
		t.Fatal("expected error for negative skip")
	}
	if _, err := NewWorstJobRemoval(32, 4, 0, 4); err == nil {
		t.Fatal("expected error for min < 1")
	}
	if _, err := NewWorstJobRemoval(32, 4, 5, 4); err == nil {
		t.Fatal("expected error for min > max")
	}
}

// detourProblem builds four jobs on a single route where J3 sits on a large
// detour: savings rank J3 (70) > J1 (20) > J2 (5), and J4 as the last stop
// has no window of its own.
func detourProblem(t *testing.T) *Problem {
	t.Helper()
	d := [][]float64{
		{0, 20, 10, 10, 10},
		{20, 0, 10, 45, 10},
		{10, 10, 0, 40, 10},
		{10, 45, 40, 0, 40},
		{10, 10, 10, 40, 0},
	}
	size := len(d)
	m := make([]float64, size*size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			m[i*size+j] = d[i][j]
		}
	}
	tr, err := NewMatrixTransport(size, map[int][]float64{0: m})
	if err != nil {
		t.Fatalf("matrix transport: %v", err)
	}
	jobs := []JobSpec{
		{ID: "J1", Visits: []Visit{{Location: 1}}},
		{ID: "J2", Visits: []Visit{{Location: 2}}},
		{ID: "J3", Visits: []Visit{{Location: 3}}},
		{ID: "J4", Visits: []Visit{{Location: 4}}},
	}
	p, err := NewProblem(jobs, []*Vehicle{{ID: "v1", Start: 0}}, tr)
	if err != nil {
		t.Fatalf("problem: %v", err)
	}
	return p
}

// With no skip and a budget of one, exactly the highest-savings job leaves.
func TestWorstJobRemovalPicksWorst(t *testing.T) {
	p := detourProblem(t)
	ic := NewInsertionContext(p, &stubRandom{}, nil)
	assign(ic, 0, p.Jobs.All()...)

	r, err := NewWorstJobRemoval(32, 0, 1, 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	r.Run(&SearchContext{}, ic)

	if got := jobIDs(ic.Solution.Required); !equalIDs(got, []string{"J3"}) {
		t.Fatalf("required: got %v, want [J3]", got)
	}
	if got := tourIDs(ic.Solution.Routes[0]); !equalIDs(got, []string{"J1", "J2", "J4"}) {
		t.Fatalf("tour: got %v, want [J1 J2 J4]", got)
	}
}

// Locking the worst job shifts the pick to the next ranked removable job.
func TestWorstJobRemovalSkipsLocked(t *testing.T) {
	p := detourProblem(t)
	locked := map[*Job]struct{}{jobByID(p, "J3"): {}}
	ic := NewInsertionContext(p, &stubRandom{}, locked)
	assign(ic, 0, p.Jobs.All()...)

	r, err := NewWorstJobRemoval(32, 0, 1, 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	r.Run(&SearchContext{}, ic)

	if got := jobIDs(ic.Solution.Required); !equalIDs(got, []string{"J1"}) {
		t.Fatalf("required: got %v, want [J1]", got)
	}
	if ic.Solution.Routes[0].Route().Tour.Index(jobByID(p, "J3")) < 0 {
		t.Fatal("locked job left the tour")
	}
}

// A neighbor sitting in the required pool passes the removable filter and
// consumes budget without any tour changing.
func TestWorstJobRemovalPoolNeighborConsumesBudget(t *testing.T) {
	p := lineProblem(t, 3, 1)
	ic := NewInsertionContext(p, &stubRandom{}, nil)
	a, b, c := jobByID(p, "A"), jobByID(p, "B"), jobByID(p, "C")
	assign(ic, 0, a, c) // B stays in the required pool

	r, err := NewWorstJobRemoval(32, 0, 2, 2)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	r.Run(&SearchContext{}, ic)

	if got := tourIDs(ic.Solution.Routes[0]); !equalIDs(got, []string{"C"}) {
		t.Fatalf("tour: got %v, want [C]", got)
	}
	want := []string{b.ID, a.ID} // B was already required, A got removed
	if got := jobIDs(ic.Solution.Required); !equalIDs(got, want) {
		t.Fatalf("required: got %v, want %v", got, want)
	}
}

func TestWorstJobRemovalThresholdBound(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		p := lineProblem(t, 8, 2)
		ic := NewInsertionContext(p, NewRandom(seed), nil)
		all := p.Jobs.All()
		assign(ic, 0, all[:4]...)
		assign(ic, 1, all[4:]...)

		r, err := NewWorstJobRemoval(1, 0, 2, 2)
		if err != nil {
			t.Fatalf("new: %v", err)
		}
		r.Run(&SearchContext{}, ic)

		// One seed may remove up to its budget before the threshold check
		// stops the next route.
		if n := len(ic.Solution.Required); n == 0 || n > 3 {
			t.Fatalf("seed %d: removed %d jobs, want 1..3", seed, n)
		}
	}
}

func TestWorstJobRemovalEmptySolutionNoop(t *testing.T) {
	p := lineProblem(t, 4, 1)
	ic := NewInsertionContext(p, NewRandom(1), nil)

	DefaultWorstJobRemoval().Run(&SearchContext{}, ic)

	if len(ic.Solution.Required) != 4 {
		t.Fatalf("required pool changed: %d jobs", len(ic.Solution.Required))
	}
}

func TestWorstJobRemovalDeterministic(t *testing.T) {
	run := func() []string {
		p := lineProblem(t, 10, 2)
		ic := NewInsertionContext(p, NewRandom(7), nil)
		all := p.Jobs.All()
		assign(ic, 0, all[:5]...)
		assign(ic, 1, all[5:]...)
		DefaultWorstJobRemoval().Run(&SearchContext{}, ic)
		return jobIDs(ic.Solution.Required)
	}
	first := run()
	second := run()
	if !equalIDs(first, second) {
		t.Fatalf("required pools diverged: %v vs %v", first, second)
	}
}

func TestRouteCostSavingsRanking(t *testing.T) {
	p := detourProblem(t)
	ic := NewInsertionContext(p, NewRandom(1), nil)
	assign(ic, 0, p.Jobs.All()...)

	rs := routeCostSavings(p, ic.Solution.Routes[0])
	got := []string{}
	for _, s := range rs.savings {
		got = append(got, s.job.ID)
	}
	if !equalIDs(got, []string{"J3", "J1", "J2"}) {
		t.Fatalf("savings order: got %v, want [J3 J1 J2]", got)
	}
	if rs.savings[0].cost != 70 {
		t.Fatalf("J3 savings: got %g, want 70", rs.savings[0].cost)
	}
}
