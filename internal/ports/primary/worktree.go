// Package primary defines the primary ports (driving interfaces) for the
// application - the service contracts the CLI adapters call.
package primary

import (
	"context"
	"time"
)

// Worktree is an isolated filesystem checkout bound to exactly one branch
// for its lifetime.
type Worktree struct {
	ID         string
	Kind       string
	Slug       string
	Path       string
	Branch     string
	BaseBranch string
	Status     string
	CreatedAt  time.Time
}

// CreateWorktreeRequest contains parameters for creating a worktree.
type CreateWorktreeRequest struct {
	Kind       string
	Slug       string
	BaseBranch string
	// SkipMetadata suppresses writing the metadata.json tracking file.
	SkipMetadata bool
}

// RemoveWorktreeRequest contains parameters for removing a worktree.
type RemoveWorktreeRequest struct {
	WorktreeID string
	// RetainBranch keeps the branch after the checkout is deleted.
	RetainBranch bool
}

// WorktreeService is the primary port for the worktree manager.
type WorktreeService interface {
	// Create creates a branch {kind}/{slug} from the base branch and an
	// isolated checkout at the deterministic path. At most one active
	// worktree may exist per branch.
	Create(ctx context.Context, req CreateWorktreeRequest) (*Worktree, error)

	// Remove deletes the checkout and, unless retained, the branch.
	// Removing an already-removed worktree is a no-op success.
	Remove(ctx context.Context, req RemoveWorktreeRequest) error

	// Get retrieves a worktree by its stable ID.
	Get(ctx context.Context, worktreeID string) (*Worktree, error)

	// GetByBranch retrieves the active worktree bound to a branch.
	GetByBranch(ctx context.Context, branch string) (*Worktree, error)

	// List retrieves all worktrees, optionally including removed ones.
	List(ctx context.Context, includeRemoved bool) ([]*Worktree, error)

	// Open opens the worktree in a tmux window.
	Open(ctx context.Context, worktreeID string) error
}
