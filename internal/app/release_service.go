package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/example/cascade/internal/core/hierarchy"
	"github.com/example/cascade/internal/core/phase"
	coreworktree "github.com/example/cascade/internal/core/worktree"
	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/ports/primary"
	"github.com/example/cascade/internal/ports/secondary"
)

// ReleaseServiceImpl implements the ReleaseService interface - the phase 6
// and 7 orchestrator.
type ReleaseServiceImpl struct {
	syncRepo     secondary.SyncRepository
	tagRepo      secondary.ReleaseTagRepository
	worktreeRepo secondary.WorktreeRepository
	git          secondary.Git
	state        primary.StateService
	gates        primary.GateService
	worktrees    primary.WorktreeService
	versions     primary.VersionService
	log          zerolog.Logger
}

// NewReleaseService creates a new ReleaseService with injected
// dependencies.
func NewReleaseService(
	syncRepo secondary.SyncRepository,
	tagRepo secondary.ReleaseTagRepository,
	worktreeRepo secondary.WorktreeRepository,
	git secondary.Git,
	state primary.StateService,
	gates primary.GateService,
	worktrees primary.WorktreeService,
	versions primary.VersionService,
	log zerolog.Logger,
) *ReleaseServiceImpl {
	return &ReleaseServiceImpl{
		syncRepo:     syncRepo,
		tagRepo:      tagRepo,
		worktreeRepo: worktreeRepo,
		git:          git,
		state:        state,
		gates:        gates,
		worktrees:    worktrees,
		versions:     versions,
		log:          log,
	}
}

// Release computes the next version from develop vs main, cuts
// release/{version} from develop in its own worktree, re-runs the gates
// on it, merges to main and tags the version. A develop that carries no
// version-relevant change yields ErrNoChange.
func (s *ReleaseServiceImpl) Release(ctx context.Context) (*primary.ReleaseResult, error) {
	next, err := s.versions.ComputeNext(ctx, hierarchy.BranchMain, hierarchy.BranchDevelop)
	if err != nil {
		return nil, err
	}

	// Versions are never reused, even across deleted tags.
	exists, err := s.tagRepo.Exists(ctx, next.String())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Wrapf(errors.ErrConflict, "version %s has already been released", next)
	}

	worktree, err := s.worktrees.Create(ctx, primary.CreateWorktreeRequest{
		Kind:       string(coreworktree.KindRelease),
		Slug:       next.String(),
		BaseBranch: hierarchy.BranchDevelop,
	})
	if err != nil {
		return nil, err
	}
	releaseBranch := worktree.Branch

	// Release records are repo-level: the release worktree exists only
	// for this one phase and never walks the earlier sequence.
	syncID, err := s.state.RecordTransition(ctx, primary.RecordTransitionRequest{
		SyncType: "release",
		Pattern:  phase.Release.Pattern(),
		Source:   hierarchy.BranchDevelop,
		Target:   hierarchy.BranchMain,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.gates.Run(ctx, worktree.Path)
	if err != nil {
		s.failSync(ctx, syncID, err.Error())
		return nil, err
	}
	if !result.Passed() {
		// The worktree stays behind for inspection.
		s.failSync(ctx, syncID, "quality gates failed on release branch")
		return nil, gateFailure(result)
	}

	message := fmt.Sprintf("Release %s", next.TagName())
	if err := s.git.Merge(ctx, hierarchy.BranchMain, releaseBranch, message); err != nil {
		s.failSync(ctx, syncID, err.Error())
		return nil, errors.Wrapf(errors.ErrConflict, "merge of %s into main failed: %v", releaseBranch, err)
	}

	if err := s.git.Tag(ctx, next.TagName(), message, hierarchy.BranchMain); err != nil {
		s.failSync(ctx, syncID, err.Error())
		return nil, err
	}
	if err := s.tagRepo.Create(ctx, next.String(), next.TagName()); err != nil {
		return nil, err
	}
	if err := s.state.Complete(ctx, syncID); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("version", next.String()).
		Str("branch", releaseBranch).
		Str("tag", next.TagName()).
		Msg("release shipped")

	return &primary.ReleaseResult{
		Version:       next,
		ReleaseBranch: releaseBranch,
		Tag:           next.TagName(),
		WorktreeID:    worktree.ID,
		SyncID:        syncID,
	}, nil
}

// Backmerge merges the release branch back into develop, rebases every
// active contrib/* branch onto the refreshed develop, and deletes the
// release branch with its worktree. The source is always the release
// branch - a main source is rejected.
func (s *ReleaseServiceImpl) Backmerge(ctx context.Context, sourceBranch string) (*primary.BackmergeResult, error) {
	if result := hierarchy.CanBackmerge(sourceBranch); !result.Allowed {
		return nil, errors.Wrap(errors.ErrPrecondition, result.Reason)
	}

	branchExists, err := s.git.BranchExists(ctx, sourceBranch)
	if err != nil {
		return nil, err
	}
	if !branchExists {
		return nil, errors.Wrapf(errors.ErrNotFound, "release branch %s", sourceBranch)
	}

	// Backmerge is a repo-level operation: no worktree walks this phase.
	syncID, err := s.state.RecordTransition(ctx, primary.RecordTransitionRequest{
		SyncType: "backmerge",
		Pattern:  phase.Backmerge.Pattern(),
		Source:   sourceBranch,
		Target:   hierarchy.BranchDevelop,
	})
	if err != nil {
		return nil, err
	}

	message := fmt.Sprintf("Backmerge %s into develop", sourceBranch)
	if err := s.git.Merge(ctx, hierarchy.BranchDevelop, sourceBranch, message); err != nil {
		s.failSync(ctx, syncID, err.Error())
		return nil, errors.Wrapf(errors.ErrConflict, "backmerge of %s failed: %v", sourceBranch, err)
	}

	contribs, err := s.git.ListBranches(ctx, hierarchy.PrefixContrib)
	if err != nil {
		s.failSync(ctx, syncID, err.Error())
		return nil, err
	}
	var rebased []string
	for _, contrib := range contribs {
		if err := s.git.Rebase(ctx, contrib, hierarchy.BranchDevelop); err != nil {
			s.failSync(ctx, syncID, err.Error())
			return nil, errors.Wrapf(errors.ErrConflict, "rebase of %s onto develop failed: %v", contrib, err)
		}
		rebased = append(rebased, contrib)
	}

	if err := s.removeReleaseBranch(ctx, sourceBranch); err != nil {
		s.failSync(ctx, syncID, err.Error())
		return nil, err
	}
	if err := s.state.Complete(ctx, syncID); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("source", sourceBranch).
		Int("rebased_contribs", len(rebased)).
		Msg("backmerge completed")

	return &primary.BackmergeResult{
		SourceBranch:    sourceBranch,
		RebasedContribs: rebased,
		SyncID:          syncID,
	}, nil
}

// removeReleaseBranch deletes the release worktree when one is still live,
// otherwise just the branch. Both paths tolerate already-gone state.
func (s *ReleaseServiceImpl) removeReleaseBranch(ctx context.Context, branch string) error {
	worktree, err := s.worktreeRepo.GetActiveByBranch(ctx, branch)
	if err != nil {
		return err
	}
	if worktree != nil {
		return s.worktrees.Remove(ctx, primary.RemoveWorktreeRequest{WorktreeID: worktree.ID})
	}
	if err := s.git.DeleteBranch(ctx, branch); err != nil && !errors.Is(err, errors.ErrNotFound) {
		return err
	}
	return nil
}

func (s *ReleaseServiceImpl) failSync(ctx context.Context, syncID, reason string) {
	if err := s.state.Fail(ctx, syncID, reason); err != nil {
		s.log.Warn().Err(err).Str("sync_id", syncID).Msg("failed to mark transition failed")
	}
}
