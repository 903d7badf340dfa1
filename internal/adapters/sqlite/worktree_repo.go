package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/ports/secondary"
)

// WorktreeRepository implements secondary.WorktreeRepository with SQLite.
type WorktreeRepository struct {
	db *sql.DB
}

// NewWorktreeRepository creates a new SQLite worktree repository.
func NewWorktreeRepository(db *sql.DB) *WorktreeRepository {
	return &WorktreeRepository{db: db}
}

const worktreeColumns = "id, kind, slug, path, branch, base_branch, status, created_at, removed_at"

// Create persists a new worktree record. The partial unique indexes on
// (branch) and (path) for active rows enforce at-most-one-active-worktree
// at the storage layer as well.
func (r *WorktreeRepository) Create(ctx context.Context, record *secondary.WorktreeRecord) error {
	if record.Status == "" {
		record.Status = "active"
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO worktrees (id, kind, slug, path, branch, base_branch, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		record.ID, record.Kind, record.Slug, record.Path, record.Branch, record.BaseBranch, record.Status,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return errors.Wrapf(errors.ErrConflict, "worktree for branch %s", record.Branch)
		}
		return fmt.Errorf("failed to create worktree: %w", err)
	}
	return nil
}

// GetByID retrieves a worktree by its stable ID.
func (r *WorktreeRepository) GetByID(ctx context.Context, id string) (*secondary.WorktreeRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+worktreeColumns+" FROM worktrees WHERE id = ?", id,
	)
	record, err := scanWorktree(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "worktree %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	return record, nil
}

// GetActiveByBranch retrieves the live worktree for a branch, or nil.
func (r *WorktreeRepository) GetActiveByBranch(ctx context.Context, branch string) (*secondary.WorktreeRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+worktreeColumns+" FROM worktrees WHERE branch = ? AND status = 'active'", branch,
	)
	record, err := scanWorktree(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree by branch: %w", err)
	}
	return record, nil
}

// List retrieves worktrees, newest first.
func (r *WorktreeRepository) List(ctx context.Context, includeRemoved bool) ([]*secondary.WorktreeRecord, error) {
	query := "SELECT " + worktreeColumns + " FROM worktrees"
	if !includeRemoved {
		query += " WHERE status = 'active'"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}
	defer rows.Close()

	var records []*secondary.WorktreeRecord
	for rows.Next() {
		record, err := scanWorktree(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan worktree: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// MarkRemoved flips a worktree to removed and stamps the removal time.
func (r *WorktreeRepository) MarkRemoved(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE worktrees SET status = 'removed', removed_at = CURRENT_TIMESTAMP WHERE id = ? AND status = 'active'",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark worktree removed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark worktree removed: %w", err)
	}
	if affected == 0 {
		return errors.Wrapf(errors.ErrNotFound, "active worktree %s", id)
	}
	return nil
}

func scanWorktree(row rowScanner) (*secondary.WorktreeRecord, error) {
	var (
		record    secondary.WorktreeRecord
		removedAt sql.NullTime
	)

	err := row.Scan(&record.ID, &record.Kind, &record.Slug, &record.Path,
		&record.Branch, &record.BaseBranch, &record.Status, &record.CreatedAt, &removedAt)
	if err != nil {
		return nil, err
	}

	if removedAt.Valid {
		t := removedAt.Time
		record.RemovedAt = &t
	}
	return &record, nil
}
