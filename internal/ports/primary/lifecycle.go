package primary

import (
	"context"

	"github.com/example/cascade/internal/core/phase"
)

// LifecycleService advances a worktree to its next phase through the typed
// phase dispatch registry.
type LifecycleService interface {
	// Advance runs the phase after the worktree's highest completed one
	// and returns which phase ran.
	Advance(ctx context.Context, worktreeID string) (phase.Phase, error)
}
