package primary

import (
	"context"

	"github.com/example/cascade/internal/core/gate"
)

// GateService is the primary port for the quality gate runner. Results are
// computed fresh on every run - never cached - so a stale pass can never
// gate a promotion.
type GateService interface {
	// Run executes the configured battery against a worktree. The error is
	// non-nil only for infrastructure problems; a failing check is
	// reported through the result.
	Run(ctx context.Context, worktreePath string) (gate.Result, error)
}
