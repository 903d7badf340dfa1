package app

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/example/cascade/internal/core/gate"
	"github.com/example/cascade/internal/errors"
)

// GateServiceImpl implements the GateService interface. Every run executes
// the full battery fresh against the worktree on disk - results are never
// cached, so a stale pass cannot gate a promotion.
type GateServiceImpl struct {
	specs []gate.Spec
	log   zerolog.Logger
}

// NewGateService creates a new GateService running the given battery.
func NewGateService(specs []gate.Spec, log zerolog.Logger) *GateServiceImpl {
	return &GateServiceImpl{specs: specs, log: log}
}

// Run executes the configured battery against a worktree. Checks are
// independent and run in parallel; results come back in battery order.
// The error is non-nil only for infrastructure problems - failing checks
// are reported through the result.
func (s *GateServiceImpl) Run(ctx context.Context, worktreePath string) (gate.Result, error) {
	if len(s.specs) == 0 {
		return gate.Result{}, errors.Wrap(errors.ErrPrecondition, "no quality gates configured")
	}
	if _, err := os.Stat(worktreePath); err != nil {
		return gate.Result{}, errors.Wrapf(errors.ErrPrecondition, "worktree path %s is not accessible", worktreePath)
	}

	checks := make([]gate.CheckResult, len(s.specs))
	group, ctx := errgroup.WithContext(ctx)
	for i, spec := range s.specs {
		group.Go(func() error {
			checks[i] = runCheck(ctx, worktreePath, spec)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return gate.Result{}, err
	}

	result := gate.Result{Checks: checks}
	s.log.Info().
		Str("path", worktreePath).
		Bool("passed", result.Passed()).
		Int("checks", len(checks)).
		Msg("quality gates ran")
	return result, nil
}

// gateFailure converts a failed gate result into a GateError carrying
// per-check diagnostics.
func gateFailure(result gate.Result) error {
	failures := result.Failures()
	diags := make([]errors.CheckDiagnostic, 0, len(failures))
	for _, f := range failures {
		diags = append(diags, errors.CheckDiagnostic{Name: f.Name, Diagnostic: f.Diagnostic})
	}
	return errors.NewGateError(diags)
}

func runCheck(ctx context.Context, dir string, spec gate.Spec) gate.CheckResult {
	start := time.Now()
	cmd := exec.CommandContext(ctx, "sh", "-c", spec.Command)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()

	result := gate.CheckResult{
		Name:     spec.Name,
		Passed:   err == nil,
		Duration: time.Since(start),
	}
	if err != nil {
		diagnostic := strings.TrimSpace(string(output))
		if diagnostic == "" {
			diagnostic = err.Error()
		}
		result.Diagnostic = diagnostic
	}
	return result
}
