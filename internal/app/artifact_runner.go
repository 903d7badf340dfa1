package app

import (
	"context"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	"github.com/example/cascade/internal/core/phase"
	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/ports/primary"
	"github.com/example/cascade/internal/ports/secondary"
)

// ArtifactPhaseRunner executes one of the artifact-producing phases
// (specify, plan, tasks, implement) for a worktree. The phase command is
// optional per-phase configuration; with no command the phase is a pure
// ledger transition driven by work done outside the tool.
type ArtifactPhaseRunner struct {
	phase        phase.Phase
	command      string
	state        primary.StateService
	worktreeRepo secondary.WorktreeRepository
	log          zerolog.Logger
}

// NewArtifactPhaseRunner creates a runner for one artifact phase.
func NewArtifactPhaseRunner(
	p phase.Phase,
	command string,
	state primary.StateService,
	worktreeRepo secondary.WorktreeRepository,
	log zerolog.Logger,
) *ArtifactPhaseRunner {
	return &ArtifactPhaseRunner{
		phase:        p,
		command:      command,
		state:        state,
		worktreeRepo: worktreeRepo,
		log:          log,
	}
}

// Run records the transition, executes the configured command inside the
// worktree and completes or fails the record based on its outcome.
func (r *ArtifactPhaseRunner) Run(ctx context.Context, worktreeID string) error {
	worktree, err := r.worktreeRepo.GetByID(ctx, worktreeID)
	if err != nil {
		return err
	}

	syncID, err := r.state.RecordTransition(ctx, primary.RecordTransitionRequest{
		SyncType:   "phase",
		Pattern:    r.phase.Pattern(),
		Source:     worktree.BaseBranch,
		Target:     worktree.Branch,
		WorktreeID: worktreeID,
	})
	if err != nil {
		return err
	}

	if r.command != "" {
		cmd := exec.CommandContext(ctx, "sh", "-c", r.command)
		cmd.Dir = worktree.Path
		output, err := cmd.CombinedOutput()
		if err != nil {
			diagnostic := strings.TrimSpace(string(output))
			if diagnostic == "" {
				diagnostic = err.Error()
			}
			if failErr := r.state.Fail(ctx, syncID, diagnostic); failErr != nil {
				r.log.Warn().Err(failErr).Str("sync_id", syncID).Msg("failed to mark transition failed")
			}
			return errors.Wrapf(err, "phase %s command failed: %s", r.phase, diagnostic)
		}
	}

	return r.state.Complete(ctx, syncID)
}
