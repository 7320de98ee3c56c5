package store

import (
	"context"
	"errors"

	"github.com/jdc08161063/vrp/internal/model"
)

// Store is the run persistence interface used by the API server.
type Store interface {
	CreateRun(ctx context.Context, req model.SolveRequest) (model.Run, error)
	UpdateRun(ctx context.Context, id string, patch model.RunPatch) error
	GetRun(ctx context.Context, id string) (model.Run, error)
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)
}

var ErrNotFound = errors.New("not found")
