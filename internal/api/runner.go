package api

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/jdc08161063/vrp/internal/metrics"
	"github.com/jdc08161063/vrp/internal/model"
	"github.com/jdc08161063/vrp/internal/solver"
)

// buildProblem converts the wire request into the solver's problem model.
// Locations are allocated per visit, plus one start location per vehicle.
func buildProblem(req model.SolveRequest) (*solver.Problem, error) {
	coords := [][2]float64{}
	jobs := make([]solver.JobSpec, 0, len(req.Jobs))
	for _, j := range req.Jobs {
		spec := solver.JobSpec{ID: j.ID}
		for _, v := range j.Visits {
			loc := len(coords)
			coords = append(coords, [2]float64{v.Lat, v.Lng})
			spec.Visits = append(spec.Visits, solver.Visit{Location: loc, Demand: v.Demand, ServiceSec: v.ServiceSec})
		}
		jobs = append(jobs, spec)
	}
	vehicles := make([]*solver.Vehicle, 0, len(req.Vehicles))
	for _, v := range req.Vehicles {
		loc := len(coords)
		coords = append(coords, [2]float64{v.StartLat, v.StartLng})
		vehicles = append(vehicles, &solver.Vehicle{ID: v.ID, Profile: v.Profile, Capacity: v.Capacity, Start: loc})
	}
	return solver.NewProblem(jobs, vehicles, solver.NewGeoTransport(coords))
}

func (s *Server) engineConfig(params *model.SolverParams) solver.Config {
	cfg := s.Defaults.EngineConfig()
	if params == nil {
		return cfg
	}
	if params.Iterations > 0 {
		cfg.Iterations = params.Iterations
	}
	if params.TimeBudgetMs > 0 {
		cfg.TimeBudget = time.Duration(params.TimeBudgetMs) * time.Millisecond
	}
	if params.Seed != 0 {
		cfg.Seed = params.Seed
	}
	if params.InitialTemp > 0 {
		cfg.InitialTemp = params.InitialTemp
	}
	if params.Cooling > 0 && params.Cooling < 1 {
		cfg.Cooling = params.Cooling
	}
	if len(params.RuinWeights) == 2 {
		cfg.RuinWeights = params.RuinWeights
	}
	if params.UnassignedPenalty > 0 {
		cfg.UnassignedPenalty = params.UnassignedPenalty
	}
	return cfg
}

// executeRun runs the solver for one run record, streaming progress events.
func (s *Server) executeRun(run model.Run) {
	ctx := context.Background()
	status := model.RunRunning
	_ = s.Store.UpdateRun(ctx, run.ID, model.RunPatch{Status: &status})
	s.Broker.Publish(run.ID, RunEvent{Type: "run.started", Data: map[string]any{"runId": run.ID}})

	problem, err := buildProblem(run.Request)
	if err != nil {
		s.failRun(ctx, run.ID, err)
		return
	}
	cfg := s.engineConfig(run.Request.Params)

	// Progress events are throttled so tight solver loops cannot flood the
	// broker.
	limiter := rate.NewLimiter(rate.Every(200*time.Millisecond), 1)
	start := time.Now()
	sol, m, err := solver.Solve(problem, run.Request.LockedJobs, cfg, func(p solver.Progress) {
		if !limiter.Allow() {
			return
		}
		s.Broker.Publish(run.ID, RunEvent{Type: "run.progress", Data: map[string]any{
			"runId":     run.ID,
			"iteration": p.Iteration,
			"bestCost":  p.BestCost,
			"currCost":  p.CurrCost,
			"accepted":  p.Accepted,
		}})
	})
	if err != nil {
		s.failRun(ctx, run.ID, err)
		return
	}

	metrics.SolveRuns.WithLabelValues(model.RunDone).Inc()
	metrics.SolveDuration.Observe(time.Since(start).Seconds())
	metrics.SolveIterations.Observe(float64(m.Iterations))
	metrics.UnassignedJobs.Observe(float64(len(sol.Unassigned)))
	metrics.RuinCalls.WithLabelValues("adjusted_string").Add(float64(m.RuinSelects[0]))
	metrics.RuinCalls.WithLabelValues("worst_job").Add(float64(m.RuinSelects[1]))

	out := solutionOut(sol)
	rm := &model.RunMetrics{
		Iterations:    m.Iterations,
		Improvements:  m.Improvements,
		AcceptedWorse: m.AcceptedWorse,
		BestCost:      m.BestCost,
		RuinSelects:   m.RuinSelects,
	}
	status = model.RunDone
	_ = s.Store.UpdateRun(ctx, run.ID, model.RunPatch{Status: &status, Solution: out, Metrics: rm})
	s.Broker.Publish(run.ID, RunEvent{Type: "run.done", Data: map[string]any{"runId": run.ID, "cost": sol.Cost, "iterations": m.Iterations}})
}

func (s *Server) failRun(ctx context.Context, id string, err error) {
	metrics.SolveRuns.WithLabelValues(model.RunFailed).Inc()
	status := model.RunFailed
	msg := err.Error()
	_ = s.Store.UpdateRun(ctx, id, model.RunPatch{Status: &status, Error: &msg})
	s.Broker.Publish(id, RunEvent{Type: "run.failed", Data: map[string]any{"runId": id, "error": msg}})
}

func solutionOut(sol solver.Solution) *model.SolutionOut {
	out := &model.SolutionOut{Cost: sol.Cost, Unassigned: sol.Unassigned}
	for _, r := range sol.Routes {
		out.Routes = append(out.Routes, model.RoutePlanOut{VehicleID: r.VehicleID, JobIDs: r.JobIDs})
	}
	return out
}
