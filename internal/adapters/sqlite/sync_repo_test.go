package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/cascade/internal/adapters/sqlite"
	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/ports/secondary"
)

func TestSyncRepositoryCreateAndGet(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewSyncRepository(testDB)
	ctx := context.Background()
	wtID := seedWorktree(t, testDB, "", "")

	record := &secondary.SyncRecord{
		WorktreeID: wtID,
		SyncType:   "phase",
		Pattern:    "phase_1_specify",
		Source:     "contrib/main",
		Target:     "feature/test",
		Status:     "in_progress",
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if record.SyncID == "" {
		t.Fatal("Create did not generate a sync ID")
	}

	got, err := repo.GetByID(ctx, record.SyncID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Pattern != "phase_1_specify" || got.WorktreeID != wtID || got.Status != "in_progress" {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.CompletedAt != nil {
		t.Error("new record should have no completion time")
	}
}

func TestSyncRepositoryNullWorktree(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewSyncRepository(testDB)
	ctx := context.Background()

	record := &secondary.SyncRecord{
		SyncType: "backmerge",
		Pattern:  "phase_7_backmerge",
		Source:   "release/1.4.0",
		Target:   "develop",
		Status:   "in_progress",
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, record.SyncID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.WorktreeID != "" {
		t.Errorf("repo-level record should have empty worktree ID, got %q", got.WorktreeID)
	}
}

func TestSyncRepositoryUpdateStatus(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewSyncRepository(testDB)
	ctx := context.Background()
	wtID := seedWorktree(t, testDB, "", "")

	record := &secondary.SyncRecord{
		WorktreeID: wtID,
		SyncType:   "phase",
		Pattern:    "phase_1_specify",
		Source:     "a",
		Target:     "b",
		Status:     "in_progress",
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.UpdateStatus(ctx, record.SyncID, "completed"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	got, err := repo.GetByID(ctx, record.SyncID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != "completed" {
		t.Errorf("status = %q, want completed", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("completed record missing completion time")
	}

	if err := repo.UpdateStatus(ctx, "missing-id", "failed"); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("UpdateStatus on missing record = %v, want ErrNotFound", err)
	}
}

func TestSyncRepositoryListByWorktree(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewSyncRepository(testDB)
	ctx := context.Background()
	wtID := seedWorktree(t, testDB, "", "")
	otherID := seedWorktree(t, testDB, "wt-000000000002", "feature/other")

	for i, pattern := range []string{"phase_1_specify", "phase_2_plan"} {
		record := &secondary.SyncRecord{
			SyncID:     "sync-" + pattern,
			WorktreeID: wtID,
			SyncType:   "phase",
			Pattern:    pattern,
			Source:     "a",
			Target:     "b",
			Status:     "completed",
		}
		if err := repo.Create(ctx, record); err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
	}
	if err := repo.Create(ctx, &secondary.SyncRecord{
		WorktreeID: otherID, SyncType: "phase", Pattern: "phase_1_specify",
		Source: "a", Target: "b", Status: "in_progress",
	}); err != nil {
		t.Fatalf("Create for other worktree failed: %v", err)
	}

	records, err := repo.ListByWorktree(ctx, wtID)
	if err != nil {
		t.Fatalf("ListByWorktree failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListByWorktree returned %d records, want 2", len(records))
	}
	if records[0].Pattern != "phase_1_specify" || records[1].Pattern != "phase_2_plan" {
		t.Errorf("records out of order: %v, %v", records[0].Pattern, records[1].Pattern)
	}
}

func TestSyncRepositoryListCompletedByTarget(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewSyncRepository(testDB)
	ctx := context.Background()

	for _, r := range []*secondary.SyncRecord{
		{SyncType: "promotion", Pattern: "phase_5_integrate", Source: "feature/x", Target: "contrib/main", Status: "completed"},
		{SyncType: "promotion", Pattern: "phase_5_integrate", Source: "feature/y", Target: "contrib/main", Status: "failed"},
		{SyncType: "promotion", Pattern: "phase_5_integrate", Source: "contrib/main", Target: "develop", Status: "completed"},
	} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	records, err := repo.ListCompletedByTarget(ctx, "promotion", "contrib/main")
	if err != nil {
		t.Fatalf("ListCompletedByTarget failed: %v", err)
	}
	if len(records) != 1 || records[0].Source != "feature/x" {
		t.Errorf("unexpected lineage records: %+v", records)
	}
}

func TestSyncRepositoryListStaleInProgress(t *testing.T) {
	testDB := setupTestDB(t)
	repo := sqlite.NewSyncRepository(testDB)
	ctx := context.Background()

	old := &secondary.SyncRecord{
		SyncType: "phase", Pattern: "phase_4_implement",
		Source: "a", Target: "b", Status: "in_progress",
	}
	if err := repo.Create(ctx, old); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// Backdate the record past the staleness cutoff.
	if _, err := testDB.Exec(
		"UPDATE sync_records SET created_at = datetime('now', '-2 days') WHERE sync_id = ?",
		old.SyncID,
	); err != nil {
		t.Fatalf("backdate failed: %v", err)
	}

	fresh := &secondary.SyncRecord{
		SyncType: "phase", Pattern: "phase_4_implement",
		Source: "a", Target: "b", Status: "in_progress",
	}
	if err := repo.Create(ctx, fresh); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	stale, err := repo.ListStaleInProgress(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ListStaleInProgress failed: %v", err)
	}
	if len(stale) != 1 || stale[0].SyncID != old.SyncID {
		t.Errorf("unexpected stale set: %+v", stale)
	}
}
