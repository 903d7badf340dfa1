package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/cascade/internal/core/semver"
)

// ReleaseTagRepository implements secondary.ReleaseTagRepository with SQLite.
type ReleaseTagRepository struct {
	db *sql.DB
}

// NewReleaseTagRepository creates a new SQLite release tag repository.
func NewReleaseTagRepository(db *sql.DB) *ReleaseTagRepository {
	return &ReleaseTagRepository{db: db}
}

// Create records a released version and its tag name. The primary key on
// version makes reusing a version a hard storage error.
func (r *ReleaseTagRepository) Create(ctx context.Context, version, tag string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO release_tags (version, tag) VALUES (?, ?)",
		version, tag,
	)
	if err != nil {
		return fmt.Errorf("failed to record release tag %s: %w", tag, err)
	}
	return nil
}

// Latest returns the highest released version. Versions sort numerically,
// not lexically, so the comparison happens in Go.
func (r *ReleaseTagRepository) Latest(ctx context.Context) (string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT version FROM release_tags")
	if err != nil {
		return "", fmt.Errorf("failed to list release tags: %w", err)
	}
	defer rows.Close()

	var latest semver.Version
	found := false
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return "", fmt.Errorf("failed to scan release tag: %w", err)
		}
		v, err := semver.Parse(raw)
		if err != nil {
			return "", fmt.Errorf("corrupt release ledger: %w", err)
		}
		if !found || latest.Less(v) {
			latest = v
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if !found {
		return "", nil
	}
	return latest.String(), nil
}

// Exists reports whether a version has already been released.
func (r *ReleaseTagRepository) Exists(ctx context.Context, version string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM release_tags WHERE version = ?", version,
	).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to check release tag: %w", err)
	}
	return count > 0, nil
}
