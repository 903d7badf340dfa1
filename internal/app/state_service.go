package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/cascade/internal/core/phase"
	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/ports/primary"
	"github.com/example/cascade/internal/ports/secondary"
)

// validSyncTypes enumerates the ledger's record categories.
var validSyncTypes = map[string]bool{
	"phase":     true,
	"promotion": true,
	"release":   true,
	"backmerge": true,
}

// StateServiceImpl implements the StateService interface on the
// append-only sync ledger.
type StateServiceImpl struct {
	syncRepo     secondary.SyncRepository
	worktreeRepo secondary.WorktreeRepository
	staleness    time.Duration
	log          zerolog.Logger
}

// NewStateService creates a new StateService with injected dependencies.
func NewStateService(
	syncRepo secondary.SyncRepository,
	worktreeRepo secondary.WorktreeRepository,
	staleness time.Duration,
	log zerolog.Logger,
) *StateServiceImpl {
	return &StateServiceImpl{
		syncRepo:     syncRepo,
		worktreeRepo: worktreeRepo,
		staleness:    staleness,
		log:          log,
	}
}

// RecordTransition appends a new in_progress record and returns its sync
// ID. For worktree-bound records the requested phase must be the next one
// after the worktree's completed prefix - recording a phase out of order
// or re-recording a completed phase is rejected.
func (s *StateServiceImpl) RecordTransition(ctx context.Context, req primary.RecordTransitionRequest) (string, error) {
	if !validSyncTypes[req.SyncType] {
		return "", errors.Wrapf(errors.ErrPrecondition, "unknown sync type %q", req.SyncType)
	}
	p, err := phase.ParsePattern(req.Pattern)
	if err != nil {
		return "", errors.Wrap(errors.ErrPrecondition, err.Error())
	}

	if req.WorktreeID != "" {
		if _, err := s.worktreeRepo.GetByID(ctx, req.WorktreeID); err != nil {
			return "", err
		}

		completed, err := s.completedPhases(ctx, req.WorktreeID)
		if err != nil {
			return "", err
		}
		if completed[p] {
			return "", errors.Wrapf(errors.ErrPrecondition,
				"phase %s already completed for worktree %s", req.Pattern, req.WorktreeID)
		}
		next, ok := phase.Highest(completed).Next()
		if !ok {
			return "", errors.Wrapf(errors.ErrPrecondition,
				"worktree %s has completed every phase", req.WorktreeID)
		}
		if p != next {
			return "", errors.Wrapf(errors.ErrPrecondition,
				"phase %s is out of order for worktree %s: next allowed phase is %s",
				req.Pattern, req.WorktreeID, next.Pattern())
		}
	}

	record := &secondary.SyncRecord{
		WorktreeID: req.WorktreeID,
		SyncType:   req.SyncType,
		Pattern:    req.Pattern,
		Source:     req.Source,
		Target:     req.Target,
		Status:     "in_progress",
	}
	if err := s.syncRepo.Create(ctx, record); err != nil {
		return "", err
	}

	s.log.Debug().
		Str("sync_id", record.SyncID).
		Str("pattern", req.Pattern).
		Str("worktree_id", req.WorktreeID).
		Msg("transition recorded")
	return record.SyncID, nil
}

// Complete marks a transition completed.
func (s *StateServiceImpl) Complete(ctx context.Context, syncID string) error {
	return s.syncRepo.UpdateStatus(ctx, syncID, "completed")
}

// Fail marks a transition failed. The reason goes to the log, not the
// ledger - history rows stay minimal.
func (s *StateServiceImpl) Fail(ctx context.Context, syncID, reason string) error {
	if err := s.syncRepo.UpdateStatus(ctx, syncID, "failed"); err != nil {
		return err
	}
	s.log.Warn().Str("sync_id", syncID).Str("reason", reason).Msg("transition failed")
	return nil
}

// QueryState derives the current phase and full history for a worktree.
func (s *StateServiceImpl) QueryState(ctx context.Context, worktreeID string) (*primary.WorktreeState, error) {
	if _, err := s.worktreeRepo.GetByID(ctx, worktreeID); err != nil {
		return nil, err
	}

	records, err := s.syncRepo.ListByWorktree(ctx, worktreeID)
	if err != nil {
		return nil, err
	}

	state := &primary.WorktreeState{WorktreeID: worktreeID}
	completed := make(map[phase.Phase]bool)
	for _, record := range records {
		if record.Status == "completed" {
			if p, err := phase.ParsePattern(record.Pattern); err == nil {
				completed[p] = true
			}
		}
		state.LastPattern = record.Pattern
		state.History = append(state.History, primary.Transition{
			SyncID:      record.SyncID,
			WorktreeID:  record.WorktreeID,
			SyncType:    record.SyncType,
			Pattern:     record.Pattern,
			Source:      record.Source,
			Target:      record.Target,
			Status:      record.Status,
			CreatedAt:   record.CreatedAt,
			CompletedAt: record.CompletedAt,
		})
	}
	state.CurrentPhase = phase.Highest(completed)
	return state, nil
}

// Sweep fails stale in_progress records left behind by crashed runs. A
// record is swept when it is older than the staleness threshold and its
// worktree is gone or removed; repo-level records are always sweepable
// once stale.
func (s *StateServiceImpl) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-s.staleness)
	stale, err := s.syncRepo.ListStaleInProgress(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, record := range stale {
		if record.WorktreeID != "" {
			worktree, err := s.worktreeRepo.GetByID(ctx, record.WorktreeID)
			if err == nil && worktree.Status == "active" {
				continue
			}
			if err != nil && !errors.Is(err, errors.ErrNotFound) {
				return swept, err
			}
		}

		if err := s.syncRepo.UpdateStatus(ctx, record.SyncID, "failed"); err != nil {
			return swept, err
		}
		s.log.Info().Str("sync_id", record.SyncID).Str("pattern", record.Pattern).Msg("swept orphaned transition")
		swept++
	}
	return swept, nil
}

func (s *StateServiceImpl) completedPhases(ctx context.Context, worktreeID string) (map[phase.Phase]bool, error) {
	records, err := s.syncRepo.ListByWorktree(ctx, worktreeID)
	if err != nil {
		return nil, err
	}
	completed := make(map[phase.Phase]bool)
	for _, record := range records {
		if record.Status != "completed" {
			continue
		}
		if p, err := phase.ParsePattern(record.Pattern); err == nil {
			completed[p] = true
		}
	}
	return completed, nil
}
