package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/example/cascade/internal/core/phase"
	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/ports/primary"
	"github.com/example/cascade/internal/ports/secondary"
)

// LifecycleServiceImpl implements the LifecycleService interface. It owns
// no phase semantics itself - it derives the next phase from the ledger
// and dispatches through the typed registry.
type LifecycleServiceImpl struct {
	registry     *phase.Registry
	state        primary.StateService
	worktreeRepo secondary.WorktreeRepository
	log          zerolog.Logger
}

// NewLifecycleService creates a new LifecycleService with injected
// dependencies.
func NewLifecycleService(
	registry *phase.Registry,
	state primary.StateService,
	worktreeRepo secondary.WorktreeRepository,
	log zerolog.Logger,
) *LifecycleServiceImpl {
	return &LifecycleServiceImpl{
		registry:     registry,
		state:        state,
		worktreeRepo: worktreeRepo,
		log:          log,
	}
}

// Advance runs the phase after the worktree's highest completed one and
// returns which phase ran.
func (s *LifecycleServiceImpl) Advance(ctx context.Context, worktreeID string) (phase.Phase, error) {
	worktree, err := s.worktreeRepo.GetByID(ctx, worktreeID)
	if err != nil {
		return phase.None, err
	}
	if worktree.Status != "active" {
		return phase.None, errors.Wrapf(errors.ErrPrecondition, "worktree %s is removed", worktreeID)
	}

	state, err := s.state.QueryState(ctx, worktreeID)
	if err != nil {
		return phase.None, err
	}
	next, ok := state.CurrentPhase.Next()
	if !ok {
		return phase.None, errors.Wrapf(errors.ErrPrecondition, "worktree %s has completed the full workflow", worktreeID)
	}

	runner, ok := s.registry.Runner(next)
	if !ok {
		return phase.None, errors.Wrapf(errors.ErrPrecondition, "no runner bound for phase %s", next)
	}

	s.log.Info().
		Str("worktree_id", worktreeID).
		Str("phase", next.String()).
		Msg("advancing worktree")

	if err := runner.Run(ctx, worktreeID); err != nil {
		return next, err
	}
	return next, nil
}
