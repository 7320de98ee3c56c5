package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jdc08161063/vrp/internal/model"
	"github.com/jdc08161063/vrp/internal/store"
)

// SolveHandler accepts a problem, records a run and solves it in the
// background. POST /v1/solve
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error(), r.URL.Path)
		return
	}
	if err := validateSolveRequest(req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid request", err.Error(), r.URL.Path)
		return
	}
	run, err := s.Store.CreateRun(r.Context(), req)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Create run failed", err.Error(), r.URL.Path)
		return
	}
	go s.executeRun(run)
	writeJSON(w, http.StatusAccepted, map[string]any{"runId": run.ID, "status": run.Status})
}

func validateSolveRequest(req model.SolveRequest) error {
	if len(req.Jobs) == 0 {
		return errors.New("jobs required")
	}
	if len(req.Vehicles) == 0 {
		return errors.New("vehicles required")
	}
	seen := map[string]struct{}{}
	for _, j := range req.Jobs {
		if j.ID == "" {
			return errors.New("job id required")
		}
		if _, dup := seen[j.ID]; dup {
			return fmt.Errorf("duplicate job id %q", j.ID)
		}
		seen[j.ID] = struct{}{}
		if len(j.Visits) == 0 {
			return fmt.Errorf("job %q has no visits", j.ID)
		}
	}
	for _, v := range req.Vehicles {
		if v.ID == "" {
			return errors.New("vehicle id required")
		}
	}
	return nil
}

// RunsHandler lists runs. GET /v1/runs
func (s *Server) RunsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, err := s.Store.ListRuns(r.Context(), limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List runs failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// RunByIDHandler serves GET /v1/runs/{id} and /v1/runs/{id}/events/stream.
func (s *Server) RunByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/runs/")
	if rest == r.URL.Path || rest == "" {
		writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) > 2 && parts[1] == "events" && parts[2] == "stream" {
		s.runEventsSSE(w, r, id)
		return
	}
	if len(parts) > 1 && parts[1] == "ws" {
		s.RunWSHandler(w, r, id)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	run, err := s.Store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Run not found", id, r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get run failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// runEventsSSE streams run events as server-sent events.
func (s *Server) runEventsSSE(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)

	fmt.Fprintf(w, "event: heartbeat\n")
	fmt.Fprintf(w, "data: {\"runId\":%q,\"ts\":%q}\n\n", id, time.Now().Format(time.RFC3339))
	flusher.Flush()

	notify := r.Context().Done()
	for {
		select {
		case <-notify:
			return
		case evt := <-ch:
			b, _ := json.Marshal(evt.Data)
			fmt.Fprintf(w, "event: %s\n", evt.Type)
			fmt.Fprintf(w, "data: %s\n\n", string(b))
			flusher.Flush()
		case <-time.After(15 * time.Second):
			fmt.Fprintf(w, "event: heartbeat\n")
			fmt.Fprintf(w, "data: {\"runId\":%q,\"ts\":%q}\n\n", id, time.Now().Format(time.RFC3339))
			flusher.Flush()
		}
	}
}

// HealthHandler reports liveness. GET /healthz
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ReadyHandler reports readiness. GET /readyz
func (s *Server) ReadyHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
