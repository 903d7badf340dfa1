// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/ports/secondary"
)

// SyncRepository implements secondary.SyncRepository with SQLite.
type SyncRepository struct {
	db *sql.DB
}

// NewSyncRepository creates a new SQLite sync repository.
func NewSyncRepository(db *sql.DB) *SyncRepository {
	return &SyncRepository{db: db}
}

const syncColumns = "sync_id, worktree_id, sync_type, phase_pattern, source_location, target_location, status, created_at, completed_at"

// Create appends a new sync record. A missing SyncID is generated here so
// callers outside the service layer stay honest about uniqueness.
func (r *SyncRepository) Create(ctx context.Context, record *secondary.SyncRecord) error {
	if record.SyncID == "" {
		record.SyncID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = "pending"
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sync_records (sync_id, worktree_id, sync_type, phase_pattern, source_location, target_location, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		record.SyncID, nullable(record.WorktreeID), record.SyncType, record.Pattern,
		record.Source, record.Target, record.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create sync record: %w", err)
	}
	return nil
}

// GetByID retrieves a sync record by its ID.
func (r *SyncRepository) GetByID(ctx context.Context, syncID string) (*secondary.SyncRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+syncColumns+" FROM sync_records WHERE sync_id = ?", syncID,
	)
	record, err := scanSyncRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "sync record %s", syncID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync record: %w", err)
	}
	return record, nil
}

// UpdateStatus mutates the status of a single record. Terminal statuses
// stamp completed_at; history rows are never rewritten.
func (r *SyncRepository) UpdateStatus(ctx context.Context, syncID, status string) error {
	var res sql.Result
	var err error
	if status == "completed" || status == "failed" {
		res, err = r.db.ExecContext(ctx,
			"UPDATE sync_records SET status = ?, completed_at = CURRENT_TIMESTAMP WHERE sync_id = ?",
			status, syncID,
		)
	} else {
		res, err = r.db.ExecContext(ctx,
			"UPDATE sync_records SET status = ? WHERE sync_id = ?",
			status, syncID,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to update sync record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update sync record: %w", err)
	}
	if affected == 0 {
		return errors.Wrapf(errors.ErrNotFound, "sync record %s", syncID)
	}
	return nil
}

// ListByWorktree returns all records for a worktree, oldest first.
func (r *SyncRepository) ListByWorktree(ctx context.Context, worktreeID string) ([]*secondary.SyncRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+syncColumns+" FROM sync_records WHERE worktree_id = ? ORDER BY created_at ASC, sync_id ASC",
		worktreeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync records: %w", err)
	}
	defer rows.Close()

	return collectSyncRecords(rows)
}

// ListCompletedByTarget returns completed records of a sync type whose
// target location matches.
func (r *SyncRepository) ListCompletedByTarget(ctx context.Context, syncType, target string) ([]*secondary.SyncRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+syncColumns+" FROM sync_records WHERE sync_type = ? AND target_location = ? AND status = 'completed' ORDER BY created_at ASC",
		syncType, target,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync records by target: %w", err)
	}
	defer rows.Close()

	return collectSyncRecords(rows)
}

// ListStaleInProgress returns in_progress records created before the cutoff.
func (r *SyncRepository) ListStaleInProgress(ctx context.Context, cutoff time.Time) ([]*secondary.SyncRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+syncColumns+" FROM sync_records WHERE status = 'in_progress' AND datetime(created_at) < datetime(?) ORDER BY created_at ASC",
		cutoff.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale sync records: %w", err)
	}
	defer rows.Close()

	return collectSyncRecords(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSyncRecord(row rowScanner) (*secondary.SyncRecord, error) {
	var (
		record      secondary.SyncRecord
		worktreeID  sql.NullString
		completedAt sql.NullTime
	)

	err := row.Scan(&record.SyncID, &worktreeID, &record.SyncType, &record.Pattern,
		&record.Source, &record.Target, &record.Status, &record.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	record.WorktreeID = worktreeID.String
	if completedAt.Valid {
		t := completedAt.Time
		record.CompletedAt = &t
	}
	return &record, nil
}

func collectSyncRecords(rows *sql.Rows) ([]*secondary.SyncRecord, error) {
	var records []*secondary.SyncRecord
	for rows.Next() {
		record, err := scanSyncRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// nullable maps "" to NULL for optional foreign keys.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
