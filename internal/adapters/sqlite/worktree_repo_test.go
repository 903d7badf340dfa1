package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/cascade/internal/adapters/sqlite"
	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/ports/secondary"
)

func newWorktreeRecord(id, branch, path string) *secondary.WorktreeRecord {
	return &secondary.WorktreeRecord{
		ID:         id,
		Kind:       "feature",
		Slug:       "auth",
		Path:       path,
		Branch:     branch,
		BaseBranch: "contrib/main",
	}
}

func TestWorktreeRepositoryCreateAndGet(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewWorktreeRepository(testDB)
	ctx := context.Background()

	record := newWorktreeRecord("wt-abc123def456", "feature/auth", "/tmp/repo_feature_auth")
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "wt-abc123def456")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Branch != "feature/auth" || got.Status != "active" || got.BaseBranch != "contrib/main" {
		t.Errorf("unexpected record: %+v", got)
	}

	if _, err := repo.GetByID(ctx, "wt-missing"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("GetByID missing = %v, want ErrNotFound", err)
	}
}

func TestWorktreeRepositoryRejectsDuplicateActiveBranch(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewWorktreeRepository(testDB)
	ctx := context.Background()

	first := newWorktreeRecord("wt-000000000001", "feature/auth", "/tmp/a")
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dup := newWorktreeRecord("wt-000000000002", "feature/auth", "/tmp/b")
	if err := repo.Create(ctx, dup); !errors.Is(err, errors.ErrConflict) {
		t.Errorf("duplicate active branch = %v, want ErrConflict", err)
	}

	// Removing the first frees the branch for a new worktree.
	if err := repo.MarkRemoved(ctx, first.ID); err != nil {
		t.Fatalf("MarkRemoved failed: %v", err)
	}
	if err := repo.Create(ctx, dup); err != nil {
		t.Errorf("Create after removal failed: %v", err)
	}
}

func TestWorktreeRepositoryGetActiveByBranch(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewWorktreeRepository(testDB)
	ctx := context.Background()

	if got, err := repo.GetActiveByBranch(ctx, "feature/none"); err != nil || got != nil {
		t.Errorf("GetActiveByBranch(none) = %v, %v; want nil, nil", got, err)
	}

	record := newWorktreeRecord("wt-000000000001", "feature/auth", "/tmp/a")
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetActiveByBranch(ctx, "feature/auth")
	if err != nil {
		t.Fatalf("GetActiveByBranch failed: %v", err)
	}
	if got == nil || got.ID != record.ID {
		t.Errorf("GetActiveByBranch = %+v, want %s", got, record.ID)
	}
}

func TestWorktreeRepositoryMarkRemovedTwice(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewWorktreeRepository(testDB)
	ctx := context.Background()

	record := newWorktreeRecord("wt-000000000001", "feature/auth", "/tmp/a")
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.MarkRemoved(ctx, record.ID); err != nil {
		t.Fatalf("MarkRemoved failed: %v", err)
	}
	// Second removal reports not found; the service layer treats that as
	// an idempotent no-op.
	if err := repo.MarkRemoved(ctx, record.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("second MarkRemoved = %v, want ErrNotFound", err)
	}

	got, err := repo.GetByID(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != "removed" || got.RemovedAt == nil {
		t.Errorf("unexpected removed record: %+v", got)
	}
}

func TestWorktreeRepositoryList(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewWorktreeRepository(testDB)
	ctx := context.Background()

	a := newWorktreeRecord("wt-000000000001", "feature/a", "/tmp/a")
	b := newWorktreeRecord("wt-000000000002", "feature/b", "/tmp/b")
	for _, r := range []*secondary.WorktreeRecord{a, b} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if err := repo.MarkRemoved(ctx, b.ID); err != nil {
		t.Fatalf("MarkRemoved failed: %v", err)
	}

	active, err := repo.List(ctx, false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(active) != 1 || active[0].ID != a.ID {
		t.Errorf("List(active) = %+v, want only %s", active, a.ID)
	}

	all, err := repo.List(ctx, true)
	if err != nil {
		t.Fatalf("List(all) failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("List(all) returned %d, want 2", len(all))
	}
}
