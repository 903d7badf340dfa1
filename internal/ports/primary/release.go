package primary

import (
	"context"

	"github.com/example/cascade/internal/core/semver"
)

// ReleaseResult describes a completed release phase.
type ReleaseResult struct {
	Version       semver.Version
	ReleaseBranch string
	Tag           string
	WorktreeID    string
	SyncID        string
}

// BackmergeResult describes a completed backmerge phase.
type BackmergeResult struct {
	SourceBranch    string
	RebasedContribs []string
	SyncID          string
}

// ReleaseService is the primary port for the release/backmerge
// orchestrator. The backmerge source is always the release branch, never
// main.
type ReleaseService interface {
	// Release cuts release/{version} from develop, re-runs the gates on
	// it, promotes it to main and tags the version.
	Release(ctx context.Context) (*ReleaseResult, error)

	// Backmerge merges the release branch back into develop, rebases any
	// active contrib/* branch, and deletes the release branch. A main
	// source is rejected.
	Backmerge(ctx context.Context, sourceBranch string) (*BackmergeResult, error)
}
