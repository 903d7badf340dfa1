// Package app contains application services that orchestrate between
// core business logic and secondary ports.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	coreworktree "github.com/example/cascade/internal/core/worktree"
	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/ports/primary"
	"github.com/example/cascade/internal/ports/secondary"
)

// WorktreeServiceImpl implements the WorktreeService interface.
type WorktreeServiceImpl struct {
	repoRoot     string
	worktreeRepo secondary.WorktreeRepository
	git          secondary.Git
	windows      secondary.WindowOpener
	log          zerolog.Logger
}

// NewWorktreeService creates a new WorktreeService with injected
// dependencies. windows may be nil when no multiplexer is available.
func NewWorktreeService(
	repoRoot string,
	worktreeRepo secondary.WorktreeRepository,
	git secondary.Git,
	windows secondary.WindowOpener,
	log zerolog.Logger,
) *WorktreeServiceImpl {
	return &WorktreeServiceImpl{
		repoRoot:     repoRoot,
		worktreeRepo: worktreeRepo,
		git:          git,
		windows:      windows,
		log:          log,
	}
}

// worktreeMetadata is the tracking file dropped into a fresh checkout so
// the worktree stays addressable without the database.
type worktreeMetadata struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Slug       string    `json:"slug"`
	Branch     string    `json:"branch"`
	BaseBranch string    `json:"base_branch"`
	CreatedAt  time.Time `json:"created_at"`
}

// Create creates a branch {kind}/{slug} from the base branch and an
// isolated checkout at the deterministic sibling path.
func (s *WorktreeServiceImpl) Create(ctx context.Context, req primary.CreateWorktreeRequest) (*primary.Worktree, error) {
	kind := coreworktree.Kind(req.Kind)
	slug := coreworktree.SanitizeSlug(req.Slug)
	branch := coreworktree.BranchName(kind, slug)
	path := coreworktree.DerivePath(s.repoRoot, kind, slug)

	// Gather facts; the guard decides.
	baseExists, err := s.git.BranchExists(ctx, req.BaseBranch)
	if err != nil {
		return nil, fmt.Errorf("failed to check base branch: %w", err)
	}

	live, err := s.worktreeRepo.GetActiveByBranch(ctx, branch)
	if err != nil {
		return nil, fmt.Errorf("failed to check for live worktree: %w", err)
	}

	pathOccupied := false
	if _, statErr := os.Stat(path); statErr == nil {
		pathOccupied = true
	}

	guardCtx := coreworktree.CreateContext{
		Kind:          kind,
		Slug:          slug,
		BaseBranch:    req.BaseBranch,
		BaseExists:    baseExists,
		LiveForBranch: live != nil,
		PathOccupied:  pathOccupied,
	}
	if result := coreworktree.CanCreate(guardCtx); !result.Allowed {
		sentinel := errors.ErrPrecondition
		if guardCtx.LiveForBranch || guardCtx.PathOccupied {
			sentinel = errors.ErrConflict
		}
		return nil, errors.Wrap(sentinel, result.Reason)
	}

	branchExists, err := s.git.BranchExists(ctx, branch)
	if err != nil {
		return nil, fmt.Errorf("failed to check branch: %w", err)
	}
	if !branchExists {
		if err := s.git.CreateBranch(ctx, branch, req.BaseBranch); err != nil {
			return nil, err
		}
	}

	if err := s.git.AddWorktree(ctx, path, branch); err != nil {
		return nil, err
	}

	record := &secondary.WorktreeRecord{
		ID:         coreworktree.DeriveID(path),
		Kind:       string(kind),
		Slug:       slug,
		Path:       path,
		Branch:     branch,
		BaseBranch: req.BaseBranch,
	}
	if err := s.worktreeRepo.Create(ctx, record); err != nil {
		// Roll the checkout back so git and the database agree.
		if rmErr := s.git.RemoveWorktree(ctx, path); rmErr != nil {
			s.log.Warn().Err(rmErr).Str("path", path).Msg("failed to roll back checkout")
		}
		return nil, err
	}

	if !req.SkipMetadata {
		if err := s.writeMetadata(path, record); err != nil {
			s.log.Warn().Err(err).Str("worktree_id", record.ID).Msg("failed to write metadata file")
		}
	}

	s.log.Info().
		Str("worktree_id", record.ID).
		Str("branch", branch).
		Str("path", path).
		Msg("worktree created")

	return toWorktree(record), nil
}

// Remove deletes the checkout and, unless retained, the branch. Removing
// an already-removed worktree succeeds without touching anything, so a
// crashed removal can simply be retried.
func (s *WorktreeServiceImpl) Remove(ctx context.Context, req primary.RemoveWorktreeRequest) error {
	record, err := s.worktreeRepo.GetByID(ctx, req.WorktreeID)
	if err != nil {
		return err
	}
	if record.Status == "removed" {
		s.log.Debug().Str("worktree_id", req.WorktreeID).Msg("worktree already removed")
		return nil
	}

	if err := s.git.RemoveWorktree(ctx, record.Path); err != nil && !errors.Is(err, errors.ErrNotFound) {
		return err
	}

	if !req.RetainBranch {
		if err := s.git.DeleteBranch(ctx, record.Branch); err != nil && !errors.Is(err, errors.ErrNotFound) {
			return err
		}
	}

	if err := s.worktreeRepo.MarkRemoved(ctx, record.ID); err != nil && !errors.Is(err, errors.ErrNotFound) {
		return err
	}

	s.log.Info().Str("worktree_id", record.ID).Str("branch", record.Branch).Msg("worktree removed")
	return nil
}

// Get retrieves a worktree by its stable ID.
func (s *WorktreeServiceImpl) Get(ctx context.Context, worktreeID string) (*primary.Worktree, error) {
	record, err := s.worktreeRepo.GetByID(ctx, worktreeID)
	if err != nil {
		return nil, err
	}
	return toWorktree(record), nil
}

// GetByBranch retrieves the active worktree bound to a branch.
func (s *WorktreeServiceImpl) GetByBranch(ctx context.Context, branch string) (*primary.Worktree, error) {
	record, err := s.worktreeRepo.GetActiveByBranch(ctx, branch)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "no active worktree for branch %s", branch)
	}
	return toWorktree(record), nil
}

// List retrieves all worktrees, optionally including removed ones.
func (s *WorktreeServiceImpl) List(ctx context.Context, includeRemoved bool) ([]*primary.Worktree, error) {
	records, err := s.worktreeRepo.List(ctx, includeRemoved)
	if err != nil {
		return nil, err
	}
	worktrees := make([]*primary.Worktree, 0, len(records))
	for _, record := range records {
		worktrees = append(worktrees, toWorktree(record))
	}
	return worktrees, nil
}

// Open opens the worktree in a tmux window named after its branch.
func (s *WorktreeServiceImpl) Open(ctx context.Context, worktreeID string) error {
	if s.windows == nil {
		return errors.Wrap(errors.ErrPrecondition, "no terminal multiplexer available")
	}

	record, err := s.worktreeRepo.GetByID(ctx, worktreeID)
	if err != nil {
		return err
	}
	if record.Status != "active" {
		return errors.Wrapf(errors.ErrPrecondition, "worktree %s is removed", worktreeID)
	}

	session := s.windows.CurrentSession()
	if session == "" {
		session = "cascade"
	}
	windowName := fmt.Sprintf("%s-%s", record.Kind, record.Slug)
	return s.windows.OpenWindow(session, windowName, record.Path)
}

func (s *WorktreeServiceImpl) writeMetadata(path string, record *secondary.WorktreeRecord) error {
	meta := worktreeMetadata{
		ID:         record.ID,
		Kind:       record.Kind,
		Slug:       record.Slug,
		Branch:     record.Branch,
		BaseBranch: record.BaseBranch,
		CreatedAt:  time.Now().UTC(),
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(path, "metadata.json"), data, 0o644)
}

func toWorktree(record *secondary.WorktreeRecord) *primary.Worktree {
	return &primary.Worktree{
		ID:         record.ID,
		Kind:       record.Kind,
		Slug:       record.Slug,
		Path:       record.Path,
		Branch:     record.Branch,
		BaseBranch: record.BaseBranch,
		Status:     record.Status,
		CreatedAt:  record.CreatedAt,
	}
}
