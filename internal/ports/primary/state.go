package primary

import (
	"context"
	"time"

	"github.com/example/cascade/internal/core/phase"
)

// RecordTransitionRequest contains parameters for recording a phase
// transition attempt.
type RecordTransitionRequest struct {
	SyncType   string
	Pattern    string
	Source     string
	Target     string
	WorktreeID string // empty for repo-level operations
}

// Transition is one row of a worktree's audit trail.
type Transition struct {
	SyncID      string
	WorktreeID  string
	SyncType    string
	Pattern     string
	Source      string
	Target      string
	Status      string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// WorktreeState summarizes a worktree's progress through the workflow.
type WorktreeState struct {
	WorktreeID   string
	CurrentPhase phase.Phase
	LastPattern  string
	History      []Transition
}

// StateService is the primary port for the state store. Transitions are
// append-only; completed phases for a worktree always form a contiguous
// prefix of the seven-phase sequence.
type StateService interface {
	// RecordTransition appends a new in_progress record and returns its
	// sync ID. Out-of-order phases are rejected.
	RecordTransition(ctx context.Context, req RecordTransitionRequest) (string, error)

	// Complete marks a transition completed.
	Complete(ctx context.Context, syncID string) error

	// Fail marks a transition failed.
	Fail(ctx context.Context, syncID, reason string) error

	// QueryState derives the current phase and history for a worktree.
	// Pure read; never blocks a concurrent writer for another worktree.
	QueryState(ctx context.Context, worktreeID string) (*WorktreeState, error)

	// Sweep marks stale in_progress records with no live worktree as
	// failed and returns how many were swept.
	Sweep(ctx context.Context) (int, error)
}
