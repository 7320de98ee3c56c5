package solver

// Activity is one stop in a tour. The departure marker at position 0 has a
// nil Job and is never removed.
type Activity struct {
	Job          *Job
	Location     Location
	ServiceSec   float64
	DepartureSec float64
}

// Tour is an ordered activity sequence owned by exactly one route.
// Position 0 always holds the departure activity.
type Tour struct {
	activities []Activity
}

// NewTour creates a tour holding only the departure activity.
func NewTour(start Location) *Tour {
	return &Tour{activities: []Activity{{Location: start}}}
}

// ActivityCount returns the number of activities excluding the departure.
func (t *Tour) ActivityCount() int { return len(t.activities) - 1 }

// Get returns the activity at the raw position (0 is the departure), or nil
// when out of range.
func (t *Tour) Get(i int) *Activity {
	if i < 0 || i >= len(t.activities) {
		return nil
	}
	return &t.activities[i]
}

// All exposes the raw activity slice for read-only windowed scans.
func (t *Tour) All() []Activity { return t.activities }

// Index returns the position of the first activity bound to job, or -1.
func (t *Tour) Index(job *Job) int {
	for i := 1; i < len(t.activities); i++ {
		if t.activities[i].Job == job {
			return i
		}
	}
	return -1
}

// Contains reports whether any activity is bound to job.
func (t *Tour) Contains(job *Job) bool { return t.Index(job) >= 0 }

// HasJobs reports whether the tour holds at least one job-bound activity.
func (t *Tour) HasJobs() bool {
	for i := 1; i < len(t.activities); i++ {
		if t.activities[i].Job != nil {
			return true
		}
	}
	return false
}

// Jobs returns the distinct jobs in tour order.
func (t *Tour) Jobs() []*Job {
	seen := map[*Job]struct{}{}
	out := []*Job{}
	for i := 1; i < len(t.activities); i++ {
		job := t.activities[i].Job
		if job == nil {
			continue
		}
		if _, ok := seen[job]; ok {
			continue
		}
		seen[job] = struct{}{}
		out = append(out, job)
	}
	return out
}

// Remove detaches every activity bound to job and reports whether anything
// was removed. The departure activity is never a candidate.
func (t *Tour) Remove(job *Job) bool {
	removed := false
	kept := t.activities[:1]
	for i := 1; i < len(t.activities); i++ {
		if t.activities[i].Job == job {
			removed = true
			continue
		}
		kept = append(kept, t.activities[i])
	}
	t.activities = kept
	return removed
}

// Insert places the job's visit activities contiguously starting at pos,
// where pos is in [1, ActivityCount()+1]. Panics on a malformed position:
// that indicates corrupted bookkeeping upstream.
func (t *Tour) Insert(job *Job, pos int) {
	if pos < 1 || pos > len(t.activities) {
		panic("tour: insert position out of range")
	}
	acts := make([]Activity, 0, len(job.Visits))
	for _, v := range job.Visits {
		acts = append(acts, Activity{Job: job, Location: v.Location, ServiceSec: v.ServiceSec})
	}
	tail := append([]Activity{}, t.activities[pos:]...)
	t.activities = append(t.activities[:pos], append(acts, tail...)...)
}

func (t *Tour) copyTour() *Tour {
	acts := make([]Activity, len(t.activities))
	copy(acts, t.activities)
	return &Tour{activities: acts}
}
