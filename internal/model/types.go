package model

import "time"

// Wire types for the solve API.

// VisitIn is one stop of a job. A job with several visits is a multi job
// whose stops are served together in order.
type VisitIn struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Demand     float64 `json:"demand,omitempty"`
	ServiceSec float64 `json:"serviceSec,omitempty"`
}

type JobIn struct {
	ID     string    `json:"id"`
	Visits []VisitIn `json:"visits"`
}

type VehicleIn struct {
	ID       string  `json:"id"`
	Profile  int     `json:"profile,omitempty"`
	Capacity float64 `json:"capacity,omitempty"`
	StartLat float64 `json:"startLat"`
	StartLng float64 `json:"startLng"`
}

// SolverParams overrides the configured solver defaults per request.
type SolverParams struct {
	Iterations        int       `json:"iterations,omitempty"`
	TimeBudgetMs      int       `json:"timeBudgetMs,omitempty"`
	Seed              int64     `json:"seed,omitempty"`
	InitialTemp       float64   `json:"initialTemp,omitempty"`
	Cooling           float64   `json:"cooling,omitempty"`
	RuinWeights       []float64 `json:"ruinWeights,omitempty"`
	UnassignedPenalty float64   `json:"unassignedPenalty,omitempty"`
}

type SolveRequest struct {
	Jobs       []JobIn       `json:"jobs"`
	Vehicles   []VehicleIn   `json:"vehicles"`
	LockedJobs []string      `json:"lockedJobs,omitempty"`
	Params     *SolverParams `json:"params,omitempty"`
}

type RoutePlanOut struct {
	VehicleID string   `json:"vehicleId"`
	JobIDs    []string `json:"jobIds"`
}

type SolutionOut struct {
	Routes     []RoutePlanOut    `json:"routes"`
	Cost       float64           `json:"cost"`
	Unassigned map[string]string `json:"unassigned,omitempty"`
}

// RunMetrics mirrors the engine metrics worth persisting.
type RunMetrics struct {
	Iterations    int     `json:"iterations"`
	Improvements  int     `json:"improvements"`
	AcceptedWorse int     `json:"acceptedWorse"`
	BestCost      float64 `json:"bestCost"`
	RuinSelects   [2]int  `json:"ruinSelects"`
}

// Run is one solve run's lifecycle record.
type Run struct {
	ID        string       `json:"id"`
	Status    string       `json:"status"` // queued | running | done | failed
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Request   SolveRequest `json:"request"`
	Solution  *SolutionOut `json:"solution,omitempty"`
	Metrics   *RunMetrics  `json:"metrics,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// RunPatch carries partial run updates; nil fields are left unchanged.
type RunPatch struct {
	Status   *string
	Solution *SolutionOut
	Metrics  *RunMetrics
	Error    *string
}

const (
	RunQueued  = "queued"
	RunRunning = "running"
	RunDone    = "done"
	RunFailed  = "failed"
)
