package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/docufi/core"
	"github.com/poiesic/docufi/storage"
)

func TestTaskLifecycle(t *testing.T) {
	taskRepo, docRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { docRepo.Close(); taskRepo.Close(); backend.Close() }()

	ctx := context.Background()

	task, err := taskRepo.CreateTask(ctx, "electric vehicles")
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}
	if task.Id == 0 {
		t.Fatal("Expected non-zero task ID")
	}
	if task.Status != core.TaskStatusPending {
		t.Fatalf("Expected PENDING status, got %v", task.Status)
	}

	retrieved, err := taskRepo.GetTask(ctx, task.Id)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if retrieved.Query != "electric vehicles" {
		t.Fatalf("Expected query 'electric vehicles', got %q", retrieved.Query)
	}

	// Move to IN_PROGRESS with a progress message
	status := core.TaskStatusInProgress
	progress := "Starting analysis..."
	updated, err := taskRepo.UpdateTask(ctx, task.Id, &storage.TaskUpdate{
		Status:   &status,
		Progress: &progress,
	})
	if err != nil {
		t.Fatalf("Failed to update task: %v", err)
	}
	if updated.Status != core.TaskStatusInProgress {
		t.Fatalf("Expected IN_PROGRESS, got %v", updated.Status)
	}
	if updated.Progress != progress {
		t.Fatalf("Expected progress %q, got %q", progress, updated.Progress)
	}
	if !updated.UpdatedAt.After(task.UpdatedAt) && !updated.UpdatedAt.Equal(task.UpdatedAt) {
		t.Fatal("UpdatedAt should not move backwards")
	}

	// Partial update: only progress changes, status survives
	progress2 := "Researching internal and external data..."
	updated, err = taskRepo.UpdateTask(ctx, task.Id, &storage.TaskUpdate{Progress: &progress2})
	if err != nil {
		t.Fatalf("Failed to update progress: %v", err)
	}
	if updated.Status != core.TaskStatusInProgress {
		t.Fatalf("Partial update clobbered status: %v", updated.Status)
	}
	if updated.Progress != progress2 {
		t.Fatalf("Expected progress %q, got %q", progress2, updated.Progress)
	}
}

func TestTaskNotFound(t *testing.T) {
	taskRepo, docRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { docRepo.Close(); taskRepo.Close(); backend.Close() }()

	ctx := context.Background()

	if _, err := taskRepo.GetTask(ctx, 9999); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	progress := "update"
	if _, err := taskRepo.UpdateTask(ctx, 9999, &storage.TaskUpdate{Progress: &progress}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound on update, got %v", err)
	}
}

func TestTaskTerminalWriteOnce(t *testing.T) {
	taskRepo, docRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { docRepo.Close(); taskRepo.Close(); backend.Close() }()

	ctx := context.Background()

	task, err := taskRepo.CreateTask(ctx, "solar panels")
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	completed := core.TaskStatusCompleted
	report := "# Market Analysis\n\nfull report"
	if _, err := taskRepo.UpdateTask(ctx, task.Id, &storage.TaskUpdate{Status: &completed, Report: &report}); err != nil {
		t.Fatalf("Failed to complete task: %v", err)
	}

	// Any write past a terminal state must be rejected
	failed := core.TaskStatusFailed
	if _, err := taskRepo.UpdateTask(ctx, task.Id, &storage.TaskUpdate{Status: &failed}); !errors.Is(err, storage.ErrTaskFinalized) {
		t.Fatalf("Expected ErrTaskFinalized, got %v", err)
	}
	progress := "late progress"
	if _, err := taskRepo.UpdateTask(ctx, task.Id, &storage.TaskUpdate{Progress: &progress}); !errors.Is(err, storage.ErrTaskFinalized) {
		t.Fatalf("Expected ErrTaskFinalized on progress write, got %v", err)
	}

	// Stored record is untouched
	got, err := taskRepo.GetTask(ctx, task.Id)
	if err != nil {
		t.Fatalf("Failed to get task: %v", err)
	}
	if got.Status != core.TaskStatusCompleted || got.Report != report {
		t.Fatalf("Terminal record mutated: status=%v report=%q", got.Status, got.Report)
	}
}

func TestTaskIDsUnique(t *testing.T) {
	taskRepo, docRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { docRepo.Close(); taskRepo.Close(); backend.Close() }()

	ctx := context.Background()

	seen := make(map[core.ID]bool)
	for i := 0; i < 10; i++ {
		task, err := taskRepo.CreateTask(ctx, "topic")
		if err != nil {
			t.Fatalf("Failed to create task: %v", err)
		}
		if seen[task.Id] {
			t.Fatalf("Duplicate task ID %d", task.Id)
		}
		seen[task.Id] = true
	}
}
