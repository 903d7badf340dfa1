package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/ports/secondary"
)

// PRRepository implements secondary.PRRepository with SQLite.
type PRRepository struct {
	db *sql.DB
}

// NewPRRepository creates a new SQLite pull request repository.
func NewPRRepository(db *sql.DB) *PRRepository {
	return &PRRepository{db: db}
}

const prColumns = "id, edge, source_branch, target_branch, worktree_id, status, created_at, merged_at, closed_at"

// Create persists a new PR, generating its ID from the current max number.
func (r *PRRepository) Create(ctx context.Context, pr *secondary.PRRecord) error {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 4) AS INTEGER)), 0) FROM pull_requests",
	).Scan(&maxID)
	if err != nil {
		return fmt.Errorf("failed to generate PR ID: %w", err)
	}

	pr.ID = fmt.Sprintf("PR-%03d", maxID+1)
	if pr.Status == "" {
		pr.Status = "open"
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO pull_requests (id, edge, source_branch, target_branch, worktree_id, status) VALUES (?, ?, ?, ?, ?, ?)",
		pr.ID, pr.Edge, pr.Source, pr.Target, nullable(pr.WorktreeID), pr.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create PR: %w", err)
	}
	return nil
}

// GetByID retrieves a PR by its ID.
func (r *PRRepository) GetByID(ctx context.Context, id string) (*secondary.PRRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+prColumns+" FROM pull_requests WHERE id = ?", id,
	)
	pr, err := scanPR(row)
	if err == sql.ErrNoRows {
		return nil, errors.Wrapf(errors.ErrNotFound, "PR %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get PR: %w", err)
	}
	return pr, nil
}

// GetOpenBySource retrieves the open PR for a source branch, or nil.
func (r *PRRepository) GetOpenBySource(ctx context.Context, sourceBranch string) (*secondary.PRRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+prColumns+" FROM pull_requests WHERE source_branch = ? AND status IN ('draft', 'open') ORDER BY created_at DESC LIMIT 1",
		sourceBranch,
	)
	pr, err := scanPR(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get PR by source: %w", err)
	}
	return pr, nil
}

// UpdateStatus updates a PR's status, stamping terminal timestamps.
func (r *PRRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := "UPDATE pull_requests SET status = ? WHERE id = ?"
	switch status {
	case "merged":
		query = "UPDATE pull_requests SET status = ?, merged_at = CURRENT_TIMESTAMP WHERE id = ?"
	case "closed":
		query = "UPDATE pull_requests SET status = ?, closed_at = CURRENT_TIMESTAMP WHERE id = ?"
	}

	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update PR: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update PR: %w", err)
	}
	if affected == 0 {
		return errors.Wrapf(errors.ErrNotFound, "PR %s", id)
	}
	return nil
}

func scanPR(row rowScanner) (*secondary.PRRecord, error) {
	var (
		pr         secondary.PRRecord
		worktreeID sql.NullString
		mergedAt   sql.NullTime
		closedAt   sql.NullTime
	)

	err := row.Scan(&pr.ID, &pr.Edge, &pr.Source, &pr.Target, &worktreeID,
		&pr.Status, &pr.CreatedAt, &mergedAt, &closedAt)
	if err != nil {
		return nil, err
	}

	pr.WorktreeID = worktreeID.String
	if mergedAt.Valid {
		t := mergedAt.Time
		pr.MergedAt = &t
	}
	if closedAt.Valid {
		t := closedAt.Time
		pr.ClosedAt = &t
	}
	return &pr, nil
}
