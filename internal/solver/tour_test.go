package solver

import "testing"

func TestTourInsertRemove(t *testing.T) {
	p := lineProblem(t, 3, 1)
	a, b, c := jobByID(p, "A"), jobByID(p, "B"), jobByID(p, "C")

	tour := NewTour(3)
	if tour.ActivityCount() != 0 {
		t.Fatalf("new tour has %d activities", tour.ActivityCount())
	}
	tour.Insert(a, 1)
	tour.Insert(c, 2)
	tour.Insert(b, 2) // between a and c
	if got := tour.ActivityCount(); got != 3 {
		t.Fatalf("activity count: got %d, want 3", got)
	}
	if tour.Index(b) != 2 {
		t.Fatalf("b at position %d, want 2", tour.Index(b))
	}
	if got := jobIDs(tour.Jobs()); !equalIDs(got, []string{"A", "B", "C"}) {
		t.Fatalf("jobs: got %v", got)
	}

	if !tour.Remove(b) {
		t.Fatal("remove reported nothing removed")
	}
	if tour.Remove(b) {
		t.Fatal("second remove reported a removal")
	}
	if tour.Contains(b) {
		t.Fatal("tour still contains removed job")
	}
	if got := tour.Get(0); got == nil || got.Job != nil {
		t.Fatal("departure activity was disturbed")
	}
}

func TestTourRemoveMultiVisitJob(t *testing.T) {
	multi := &Job{ID: "M", Visits: []Visit{{Location: 1}, {Location: 2}}}
	tour := NewTour(0)
	tour.Insert(multi, 1)
	if tour.ActivityCount() != 2 {
		t.Fatalf("multi job placed %d activities, want 2", tour.ActivityCount())
	}
	tour.Remove(multi)
	if tour.ActivityCount() != 0 {
		t.Fatalf("%d activities left after remove", tour.ActivityCount())
	}
}

func TestTourInsertPanicsOutOfRange(t *testing.T) {
	tour := NewTour(0)
	job := &Job{ID: "X", Visits: []Visit{{Location: 1}}}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on position 0")
		}
	}()
	tour.Insert(job, 0)
}

func TestTourGetOutOfRange(t *testing.T) {
	tour := NewTour(0)
	if tour.Get(-1) != nil || tour.Get(1) != nil {
		t.Fatal("out-of-range Get must return nil")
	}
}

func TestTourCopyIsIndependent(t *testing.T) {
	job := &Job{ID: "X", Visits: []Visit{{Location: 1}}}
	tour := NewTour(0)
	tour.Insert(job, 1)

	cp := tour.copyTour()
	cp.Remove(job)
	if !tour.Contains(job) {
		t.Fatal("removing from the copy mutated the original")
	}
}
