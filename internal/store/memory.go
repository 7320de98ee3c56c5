package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jdc08161063/vrp/internal/model"
)

// Memory is an in-memory Store used when no DATABASE_URL is configured.
type Memory struct {
	mu   sync.Mutex
	runs map[string]model.Run
}

func NewMemory() *Memory {
	return &Memory{runs: map[string]model.Run{}}
}

func (m *Memory) CreateRun(_ context.Context, req model.SolveRequest) (model.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	run := model.Run{
		ID:        uuid.New().String(),
		Status:    model.RunQueued,
		CreatedAt: now,
		UpdatedAt: now,
		Request:   req,
	}
	m.runs[run.ID] = run
	return run, nil
}

func (m *Memory) UpdateRun(_ context.Context, id string, patch model.RunPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Status != nil {
		run.Status = *patch.Status
	}
	if patch.Solution != nil {
		run.Solution = patch.Solution
	}
	if patch.Metrics != nil {
		run.Metrics = patch.Metrics
	}
	if patch.Error != nil {
		run.Error = *patch.Error
	}
	run.UpdatedAt = time.Now().UTC()
	m.runs[id] = run
	return nil
}

func (m *Memory) GetRun(_ context.Context, id string) (model.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return model.Run{}, ErrNotFound
	}
	return run, nil
}

func (m *Memory) ListRuns(_ context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Run, 0, len(m.runs))
	for _, run := range m.runs {
		out = append(out, run)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
