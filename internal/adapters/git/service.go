// Package git shells out to the git CLI for branch, worktree, merge, tag
// and diff primitives. Structured errors carry stderr so failures are
// actionable.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/example/cascade/internal/errors"
)

// Service provides git operations against a single repository clone.
type Service struct {
	repoRoot string
}

// NewService creates a git service rooted at the given clone.
func NewService(repoRoot string) *Service {
	return &Service{repoRoot: repoRoot}
}

// DiscoverRoot resolves the repository root containing dir.
func DiscoverRoot(ctx context.Context, dir string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel")
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("not inside a git repository: %s", strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// BranchExists checks if a local branch exists.
func (s *Service) BranchExists(ctx context.Context, branch string) (bool, error) {
	// rev-parse fails when the ref is missing - expected, not an error
	err := s.run(ctx, s.repoRoot, "rev-parse", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil, nil
}

// CreateBranch creates a new branch from a base branch without checking
// it out.
func (s *Service) CreateBranch(ctx context.Context, branch, base string) error {
	if err := s.run(ctx, s.repoRoot, "branch", branch, base); err != nil {
		return errors.Wrapf(err, "failed to create branch %s from %s", branch, base)
	}
	return nil
}

// DeleteBranch force-deletes a local branch. A missing branch maps to
// ErrNotFound so cleanup paths can treat it as already done.
func (s *Service) DeleteBranch(ctx context.Context, branch string) error {
	err := s.run(ctx, s.repoRoot, "branch", "-D", branch)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return errors.Wrapf(errors.ErrNotFound, "branch %s", branch)
		}
		return errors.Wrapf(err, "failed to delete branch %s", branch)
	}
	return nil
}

// ListBranches returns local branches under the given prefix.
func (s *Service) ListBranches(ctx context.Context, prefix string) ([]string, error) {
	output, err := s.output(ctx, s.repoRoot, "for-each-ref", "--format=%(refname:short)", "refs/heads/"+prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list branches under %s", prefix)
	}
	return splitLines(output), nil
}

// AddWorktree creates a checkout of branch at path.
func (s *Service) AddWorktree(ctx context.Context, path, branch string) error {
	if err := s.run(ctx, s.repoRoot, "worktree", "add", path, branch); err != nil {
		return errors.Wrapf(err, "failed to add worktree at %s", path)
	}
	return nil
}

// RemoveWorktree removes the checkout at path. A checkout that is already
// gone maps to ErrNotFound.
func (s *Service) RemoveWorktree(ctx context.Context, path string) error {
	err := s.run(ctx, s.repoRoot, "worktree", "remove", "--force", path)
	if err != nil {
		if strings.Contains(err.Error(), "is not a working tree") ||
			strings.Contains(err.Error(), "No such file or directory") {
			return errors.Wrapf(errors.ErrNotFound, "worktree at %s", path)
		}
		return errors.Wrapf(err, "failed to remove worktree at %s", path)
	}
	return nil
}

// Merge merges source into target with a merge commit. The previous
// checkout is restored afterwards; a conflicted merge is aborted so the
// repository is never left mid-merge.
func (s *Service) Merge(ctx context.Context, target, source, message string) error {
	prev, err := s.currentBranch(ctx)
	if err != nil {
		return err
	}

	if err := s.run(ctx, s.repoRoot, "checkout", target); err != nil {
		return errors.Wrapf(err, "failed to checkout %s", target)
	}
	defer func() {
		if prev != target {
			_ = s.run(ctx, s.repoRoot, "checkout", prev)
		}
	}()

	if err := s.run(ctx, s.repoRoot, "merge", "--no-ff", "-m", message, source); err != nil {
		_ = s.run(ctx, s.repoRoot, "merge", "--abort")
		return errors.Wrapf(err, "failed to merge %s into %s", source, target)
	}
	return nil
}

// Tag creates an annotated tag at the tip of branch.
func (s *Service) Tag(ctx context.Context, name, message, branch string) error {
	if err := s.run(ctx, s.repoRoot, "tag", "-a", name, "-m", message, branch); err != nil {
		return errors.Wrapf(err, "failed to tag %s at %s", name, branch)
	}
	return nil
}

// Rebase rebases branch onto the given base. A conflicted rebase is
// aborted and the previous checkout restored.
func (s *Service) Rebase(ctx context.Context, branch, onto string) error {
	prev, err := s.currentBranch(ctx)
	if err != nil {
		return err
	}

	if err := s.run(ctx, s.repoRoot, "checkout", branch); err != nil {
		return errors.Wrapf(err, "failed to checkout %s", branch)
	}
	defer func() {
		if prev != branch {
			_ = s.run(ctx, s.repoRoot, "checkout", prev)
		}
	}()

	if err := s.run(ctx, s.repoRoot, "rebase", onto); err != nil {
		_ = s.run(ctx, s.repoRoot, "rebase", "--abort")
		return errors.Wrapf(err, "failed to rebase %s onto %s", branch, onto)
	}
	return nil
}

// CommitSubjects returns subject lines of commits on candidate that are
// not on base.
func (s *Service) CommitSubjects(ctx context.Context, base, candidate string) ([]string, error) {
	output, err := s.output(ctx, s.repoRoot, "log", "--format=%s", base+".."+candidate)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list commits %s..%s", base, candidate)
	}
	return splitLines(output), nil
}

// ChangedFiles returns paths that differ between base and candidate,
// measured from their merge base.
func (s *Service) ChangedFiles(ctx context.Context, base, candidate string) ([]string, error) {
	output, err := s.output(ctx, s.repoRoot, "diff", "--name-only", base+"..."+candidate)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to diff %s...%s", base, candidate)
	}
	return splitLines(output), nil
}

func (s *Service) currentBranch(ctx context.Context) (string, error) {
	output, err := s.output(ctx, s.repoRoot, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", errors.Wrap(err, "failed to get current branch")
	}
	return strings.TrimSpace(output), nil
}

// run executes a git command and returns an error carrying stderr if it
// fails.
func (s *Service) run(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// output executes a git command and returns its stdout.
func (s *Service) output(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func splitLines(output string) []string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
