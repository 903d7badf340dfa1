package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/example/cascade/internal/core/hierarchy"
	"github.com/example/cascade/internal/core/phase"
	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/ports/primary"
	"github.com/example/cascade/internal/ports/secondary"
)

// PromotionServiceImpl implements the PromotionService interface. It is
// the only writer (besides the release orchestrator) that ever touches
// protected branches, and only through its merge step.
type PromotionServiceImpl struct {
	repoRoot     string
	prRepo       secondary.PRRepository
	syncRepo     secondary.SyncRepository
	worktreeRepo secondary.WorktreeRepository
	git          secondary.Git
	state        primary.StateService
	gates        primary.GateService
	worktrees    primary.WorktreeService
	log          zerolog.Logger
}

// NewPromotionService creates a new PromotionService with injected
// dependencies.
func NewPromotionService(
	repoRoot string,
	prRepo secondary.PRRepository,
	syncRepo secondary.SyncRepository,
	worktreeRepo secondary.WorktreeRepository,
	git secondary.Git,
	state primary.StateService,
	gates primary.GateService,
	worktrees primary.WorktreeService,
	log zerolog.Logger,
) *PromotionServiceImpl {
	return &PromotionServiceImpl{
		repoRoot:     repoRoot,
		prRepo:       prRepo,
		syncRepo:     syncRepo,
		worktreeRepo: worktreeRepo,
		git:          git,
		state:        state,
		gates:        gates,
		worktrees:    worktrees,
		log:          log,
	}
}

// Propose opens a review unit for promoting sourceBranch along edge.
func (s *PromotionServiceImpl) Propose(ctx context.Context, edge hierarchy.Edge, sourceBranch string) (*primary.PullRequest, error) {
	worktree, target, err := s.resolveEdge(ctx, edge, sourceBranch)
	if err != nil {
		return nil, err
	}

	if err := s.checkGuard(ctx, edge, sourceBranch); err != nil {
		return nil, err
	}

	existing, err := s.prRepo.GetOpenBySource(ctx, sourceBranch)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Wrapf(errors.ErrConflict, "an open promotion %s already exists for %s", existing.ID, sourceBranch)
	}

	record := &secondary.PRRecord{
		Edge:   edge.String(),
		Source: sourceBranch,
		Target: target,
	}
	if worktree != nil {
		record.WorktreeID = worktree.ID
	}
	if err := s.prRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("pr_id", record.ID).
		Str("edge", edge.String()).
		Str("source", sourceBranch).
		Msg("promotion proposed")
	return toPullRequest(record), nil
}

// Finish runs the quality gates against the source and, only on a full
// pass, merges into the target branch, marks the review unit merged and
// cleans up the source worktree. Fails closed: a gate failure or merge
// conflict leaves the worktree untouched and the sync record failed.
func (s *PromotionServiceImpl) Finish(ctx context.Context, edge hierarchy.Edge, sourceBranch string) (*primary.PromotionResult, error) {
	worktree, target, err := s.resolveEdge(ctx, edge, sourceBranch)
	if err != nil {
		return nil, err
	}

	pr, err := s.prRepo.GetOpenBySource(ctx, sourceBranch)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, errors.Wrapf(errors.ErrPrecondition, "no open promotion for %s - run propose first", sourceBranch)
	}

	// Lineage is re-checked here: the world may have moved since propose.
	if err := s.checkGuard(ctx, edge, sourceBranch); err != nil {
		return nil, err
	}

	req := primary.RecordTransitionRequest{
		SyncType: "promotion",
		Pattern:  phase.Integrate.Pattern(),
		Source:   sourceBranch,
		Target:   target,
	}
	// Only the feature worktree tracks the seven-phase sequence; higher
	// edges are repo-level records.
	if edge == hierarchy.EdgeFeatureToContrib && worktree != nil {
		req.WorktreeID = worktree.ID
	}
	syncID, err := s.state.RecordTransition(ctx, req)
	if err != nil {
		return nil, err
	}

	gatePath := s.repoRoot
	if worktree != nil {
		gatePath = worktree.Path
	}
	result, err := s.gates.Run(ctx, gatePath)
	if err != nil {
		s.failSync(ctx, syncID, err.Error())
		return nil, err
	}
	if !result.Passed() {
		s.failSync(ctx, syncID, "quality gates failed")
		return nil, gateFailure(result)
	}

	message := fmt.Sprintf("Merge %s into %s (%s)", sourceBranch, target, pr.ID)
	if err := s.git.Merge(ctx, target, sourceBranch, message); err != nil {
		s.failSync(ctx, syncID, err.Error())
		return nil, errors.Wrapf(errors.ErrConflict, "merge of %s into %s failed: %v", sourceBranch, target, err)
	}

	if err := s.prRepo.UpdateStatus(ctx, pr.ID, "merged"); err != nil {
		return nil, err
	}
	if err := s.state.Complete(ctx, syncID); err != nil {
		return nil, err
	}

	removed := false
	if worktree != nil {
		if err := s.worktrees.Remove(ctx, primary.RemoveWorktreeRequest{WorktreeID: worktree.ID}); err != nil {
			s.log.Warn().Err(err).Str("worktree_id", worktree.ID).Msg("failed to clean up promoted worktree")
		} else {
			removed = true
		}
	}

	s.log.Info().
		Str("pr_id", pr.ID).
		Str("edge", edge.String()).
		Str("source", sourceBranch).
		Str("target", target).
		Msg("promotion finished")

	return &primary.PromotionResult{
		PRID:            pr.ID,
		SourceBranch:    sourceBranch,
		TargetBranch:    target,
		SyncID:          syncID,
		WorktreeRemoved: removed,
	}, nil
}

// resolveEdge looks up the source worktree (when one exists) and derives
// the target branch for the edge.
func (s *PromotionServiceImpl) resolveEdge(ctx context.Context, edge hierarchy.Edge, sourceBranch string) (*secondary.WorktreeRecord, string, error) {
	worktree, err := s.worktreeRepo.GetActiveByBranch(ctx, sourceBranch)
	if err != nil {
		return nil, "", err
	}

	baseBranch := ""
	if worktree != nil {
		baseBranch = worktree.BaseBranch
	}
	target, err := edge.Target(baseBranch)
	if err != nil {
		return nil, "", errors.Wrap(errors.ErrPrecondition, err.Error())
	}
	return worktree, target, nil
}

// checkGuard gathers lineage facts and evaluates the promotion guard.
func (s *PromotionServiceImpl) checkGuard(ctx context.Context, edge hierarchy.Edge, sourceBranch string) error {
	lineage := true
	if _, hasPred := edge.Predecessor(); hasPred {
		// A completed predecessor promotion targets this edge's source.
		records, err := s.syncRepo.ListCompletedByTarget(ctx, "promotion", sourceBranch)
		if err != nil {
			return err
		}
		lineage = len(records) > 0
	}

	guardCtx := hierarchy.PromoteContext{
		Edge:             edge,
		SourceBranch:     sourceBranch,
		LineageSatisfied: lineage,
	}
	if result := hierarchy.CanPromote(guardCtx); !result.Allowed {
		return errors.Wrap(errors.ErrPrecondition, result.Reason)
	}
	return nil
}

func (s *PromotionServiceImpl) failSync(ctx context.Context, syncID, reason string) {
	if err := s.state.Fail(ctx, syncID, reason); err != nil {
		s.log.Warn().Err(err).Str("sync_id", syncID).Msg("failed to mark transition failed")
	}
}

func toPullRequest(record *secondary.PRRecord) *primary.PullRequest {
	return &primary.PullRequest{
		ID:           record.ID,
		Edge:         record.Edge,
		SourceBranch: record.Source,
		TargetBranch: record.Target,
		WorktreeID:   record.WorktreeID,
		Status:       record.Status,
		CreatedAt:    record.CreatedAt,
	}
}
