package primary

import (
	"context"
	"time"

	"github.com/example/cascade/internal/core/hierarchy"
)

// PullRequest is a local review unit for one promotion edge.
type PullRequest struct {
	ID           string
	Edge         string
	SourceBranch string
	TargetBranch string
	WorktreeID   string
	Status       string
	CreatedAt    time.Time
}

// PromotionResult describes a finished promotion.
type PromotionResult struct {
	PRID            string
	SourceBranch    string
	TargetBranch    string
	SyncID          string
	WorktreeRemoved bool
}

// PromotionService is the primary port for the promotion orchestrator.
// Edges are processed strictly in hierarchy order; protected branches are
// only written through Finish's merge step.
type PromotionService interface {
	// Propose opens a review unit for promoting sourceBranch along edge.
	Propose(ctx context.Context, edge hierarchy.Edge, sourceBranch string) (*PullRequest, error)

	// Finish runs the quality gates and, only on full pass, merges and
	// cleans up the source worktree. Fails closed: a gate failure or
	// merge conflict leaves the worktree untouched and the sync record
	// failed.
	Finish(ctx context.Context, edge hierarchy.Edge, sourceBranch string) (*PromotionResult, error)
}
