package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jdc08161063/vrp/internal/model"
)

func TestMemoryCreateGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	run, err := m.CreateRun(ctx, model.SolveRequest{Jobs: []model.JobIn{{ID: "a"}}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run has no id")
	}
	if run.Status != model.RunQueued {
		t.Fatalf("status: got %s, want %s", run.Status, model.RunQueued)
	}
	if run.CreatedAt.IsZero() {
		t.Fatal("createdAt not set")
	}

	got, err := m.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Request.Jobs) != 1 || got.Request.Jobs[0].ID != "a" {
		t.Fatalf("request not persisted: %+v", got.Request)
	}
}

func TestMemoryGetUnknown(t *testing.T) {
	m := NewMemory()
	if _, err := m.GetRun(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := m.UpdateRun(context.Background(), "nope", model.RunPatch{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update: got %v, want ErrNotFound", err)
	}
}

func TestMemoryUpdatePatch(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	run, _ := m.CreateRun(ctx, model.SolveRequest{})

	status := model.RunFailed
	msg := "boom"
	if err := m.UpdateRun(ctx, run.ID, model.RunPatch{Status: &status, Error: &msg}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := m.GetRun(ctx, run.ID)
	if got.Status != model.RunFailed || got.Error != "boom" {
		t.Fatalf("patch not applied: %+v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Fatal("updatedAt not refreshed")
	}

	// Nil fields leave the run untouched.
	if err := m.UpdateRun(ctx, run.ID, model.RunPatch{}); err != nil {
		t.Fatalf("empty patch: %v", err)
	}
	got, _ = m.GetRun(ctx, run.ID)
	if got.Status != model.RunFailed || got.Error != "boom" {
		t.Fatalf("empty patch changed fields: %+v", got)
	}
}

func TestMemoryListRuns(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := m.CreateRun(ctx, model.SolveRequest{}); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	items, err := m.ListRuns(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].CreatedAt.After(items[i-1].CreatedAt) {
			t.Fatal("items not sorted newest first")
		}
	}

	items, err = m.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("list default limit: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("default limit: got %d items, want 5", len(items))
	}
}
