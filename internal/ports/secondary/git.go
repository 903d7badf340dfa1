package secondary

import "context"

// Git defines the secondary port for version-control primitives. The
// application only ever mutates protected branches through the
// orchestrators calling Merge - no other path writes to them.
type Git interface {
	// BranchExists reports whether a local branch exists.
	BranchExists(ctx context.Context, branch string) (bool, error)

	// CreateBranch creates branch from base without checking it out.
	CreateBranch(ctx context.Context, branch, base string) error

	// DeleteBranch force-deletes a local branch.
	DeleteBranch(ctx context.Context, branch string) error

	// ListBranches returns local branches matching the prefix.
	ListBranches(ctx context.Context, prefix string) ([]string, error)

	// AddWorktree creates a checkout of branch at path.
	AddWorktree(ctx context.Context, path, branch string) error

	// RemoveWorktree removes the checkout at path.
	RemoveWorktree(ctx context.Context, path string) error

	// Merge merges source into target with a merge commit (no
	// fast-forward). A conflicted merge is aborted and reported as an
	// error; the repository is left clean.
	Merge(ctx context.Context, target, source, message string) error

	// Tag creates an annotated tag at the tip of branch.
	Tag(ctx context.Context, name, message, branch string) error

	// Rebase rebases branch onto the given base branch.
	Rebase(ctx context.Context, branch, onto string) error

	// CommitSubjects returns subject lines of commits on candidate that
	// are not on base.
	CommitSubjects(ctx context.Context, base, candidate string) ([]string, error)

	// ChangedFiles returns paths that differ between base and candidate.
	ChangedFiles(ctx context.Context, base, candidate string) ([]string, error)
}
