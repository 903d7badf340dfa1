// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application
// drives external systems.
package secondary

import (
	"context"
	"time"
)

// SyncRecord represents one phase transition attempt as stored in
// persistence. Records are append-only: history rows are never rewritten,
// only the status and completion time of the same row mutate, by the
// writer that created it.
type SyncRecord struct {
	SyncID      string
	WorktreeID  string // empty for repo-level operations (stored as NULL)
	SyncType    string // phase, promotion, release, backmerge
	Pattern     string // phase_1_specify .. phase_7_backmerge
	Source      string
	Target      string
	Status      string // pending, in_progress, completed, failed
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// SyncRepository defines the secondary port for the sync ledger.
type SyncRepository interface {
	// Create appends a new sync record. The record's SyncID must be set.
	Create(ctx context.Context, record *SyncRecord) error

	// GetByID retrieves a sync record by its ID.
	GetByID(ctx context.Context, syncID string) (*SyncRecord, error)

	// UpdateStatus mutates the status of a single record. When the new
	// status is terminal (completed/failed) the completion time is set.
	UpdateStatus(ctx context.Context, syncID, status string) error

	// ListByWorktree returns all records for a worktree, oldest first.
	ListByWorktree(ctx context.Context, worktreeID string) ([]*SyncRecord, error)

	// ListCompletedByTarget returns completed records of the given sync
	// type whose target location matches. Used for lineage checks.
	ListCompletedByTarget(ctx context.Context, syncType, target string) ([]*SyncRecord, error)

	// ListStaleInProgress returns in_progress records created before the
	// cutoff. Used by the orphan sweep.
	ListStaleInProgress(ctx context.Context, cutoff time.Time) ([]*SyncRecord, error)
}

// WorktreeRecord represents a worktree as stored in persistence.
type WorktreeRecord struct {
	ID         string
	Kind       string
	Slug       string
	Path       string
	Branch     string
	BaseBranch string
	Status     string // active, removed
	CreatedAt  time.Time
	RemovedAt  *time.Time
}

// WorktreeRepository defines the secondary port for worktree persistence.
type WorktreeRepository interface {
	// Create persists a new worktree record.
	Create(ctx context.Context, record *WorktreeRecord) error

	// GetByID retrieves a worktree by its stable ID.
	GetByID(ctx context.Context, id string) (*WorktreeRecord, error)

	// GetActiveByBranch retrieves the live worktree bound to a branch,
	// or nil if none exists.
	GetActiveByBranch(ctx context.Context, branch string) (*WorktreeRecord, error)

	// List retrieves worktrees, optionally including removed ones.
	List(ctx context.Context, includeRemoved bool) ([]*WorktreeRecord, error)

	// MarkRemoved flips a worktree to removed and stamps the removal time.
	MarkRemoved(ctx context.Context, id string) error
}

// PRRecord represents a promotion review unit as stored in persistence.
type PRRecord struct {
	ID         string
	Edge       string
	Source     string
	Target     string
	WorktreeID string
	Status     string // draft, open, merged, closed
	CreatedAt  time.Time
	MergedAt   *time.Time
	ClosedAt   *time.Time
}

// PRRepository defines the secondary port for pull request persistence.
type PRRepository interface {
	// Create persists a new PR, generating its PR-NNN ID.
	Create(ctx context.Context, pr *PRRecord) error

	// GetByID retrieves a PR by its ID.
	GetByID(ctx context.Context, id string) (*PRRecord, error)

	// GetOpenBySource retrieves the open PR for a source branch, or nil.
	GetOpenBySource(ctx context.Context, sourceBranch string) (*PRRecord, error)

	// UpdateStatus updates a PR's status, stamping merged/closed times for
	// terminal states.
	UpdateStatus(ctx context.Context, id, status string) error
}

// ReleaseTagRepository defines the secondary port for the release ledger.
// One row per version ever tagged; versions are never reused.
type ReleaseTagRepository interface {
	// Create records a released version and its tag name.
	Create(ctx context.Context, version, tag string) error

	// Latest returns the highest released version string, or "" if no
	// release has shipped.
	Latest(ctx context.Context) (string, error)

	// Exists reports whether a version has already been released.
	Exists(ctx context.Context, version string) (bool, error)
}
