package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jdc08161063/vrp/internal/model"
)

// Postgres persists solve runs in a single table with JSON payload columns.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// EnsureSchema creates the runs table when missing (dev helper).
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS solve_runs (
        id UUID PRIMARY KEY,
        status TEXT NOT NULL,
        request JSONB NOT NULL,
        solution JSONB,
        metrics JSONB,
        error TEXT,
        created_at TIMESTAMPTZ NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL
    )`)
	return err
}

func (p *Postgres) CreateRun(ctx context.Context, req model.SolveRequest) (model.Run, error) {
	now := time.Now().UTC()
	run := model.Run{ID: uuid.New().String(), Status: model.RunQueued, CreatedAt: now, UpdatedAt: now, Request: req}
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO solve_runs (id, status, request, created_at, updated_at) VALUES ($1,$2,$3,$4,$5)`,
		run.ID, run.Status, toJSON(req), now, now)
	if err != nil {
		return model.Run{}, err
	}
	return run, nil
}

func (p *Postgres) UpdateRun(ctx context.Context, id string, patch model.RunPatch) error {
	run, err := p.GetRun(ctx, id)
	if err != nil {
		return err
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
	res, err := p.db.ExecContext(ctx,
		`UPDATE solve_runs SET status=$2, solution=$3, metrics=$4, error=$5, updated_at=$6 WHERE id=$1`,
		id, run.Status, toJSON(run.Solution), toJSON(run.Metrics), nullIfEmpty(run.Error), time.Now().UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) GetRun(ctx context.Context, id string) (model.Run, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT id::text, status, request, solution, metrics, COALESCE(error,''), created_at, updated_at FROM solve_runs WHERE id=$1`, id)
	return scanRun(row)
}

func (p *Postgres) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, status, request, solution, metrics, COALESCE(error,''), created_at, updated_at FROM solve_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (model.Run, error) {
	var run model.Run
	var reqJSON []byte
	var solJSON, metJSON sql.NullString
	err := row.Scan(&run.ID, &run.Status, &reqJSON, &solJSON, &metJSON, &run.Error, &run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, ErrNotFound
	}
	if err != nil {
		return model.Run{}, err
	}
	if err := json.Unmarshal(reqJSON, &run.Request); err != nil {
		return model.Run{}, err
	}
	if solJSON.Valid && solJSON.String != "" {
		var sol model.SolutionOut
		if err := json.Unmarshal([]byte(solJSON.String), &sol); err != nil {
			return model.Run{}, err
		}
		run.Solution = &sol
	}
	if metJSON.Valid && metJSON.String != "" {
		var met model.RunMetrics
		if err := json.Unmarshal([]byte(metJSON.String), &met); err != nil {
			return model.Run{}, err
		}
		run.Metrics = &met
	}
	return run, nil
}

func toJSON(v any) any {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	// A typed nil pointer marshals to the literal "null"; keep the column NULL
	// so reads report the payload as absent.
	if string(b) == "null" {
		return nil
	}
	return string(b)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
