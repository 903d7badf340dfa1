package hierarchy

import (
	"fmt"
	"strings"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// PromoteContext provides the facts needed to evaluate a promotion guard.
// The caller gathers facts; the guard only decides.
type PromoteContext struct {
	Edge             Edge
	SourceBranch     string
	LineageSatisfied bool // a completed predecessor promotion exists for this lineage
}

// CanPromote evaluates whether an edge may be promoted.
// Rules:
// - Source branch must belong to the edge's source tier
// - Edges are processed strictly in hierarchy order: the predecessor edge
//   must have a completed record for this lineage
func CanPromote(ctx PromoteContext) GuardResult {
	if !ctx.Edge.SourceMatches(ctx.SourceBranch) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("branch %s is not a valid source for edge %s", ctx.SourceBranch, ctx.Edge),
		}
	}

	if _, hasPred := ctx.Edge.Predecessor(); hasPred && !ctx.LineageSatisfied {
		pred, _ := ctx.Edge.Predecessor()
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot promote %s: no completed %s promotion for this lineage", ctx.Edge, pred),
		}
	}

	return GuardResult{Allowed: true}
}

// CanBackmerge evaluates whether a branch may be merged back into develop.
// Rules:
// - The backmerge source is always a release/* branch
// - Merging main directly into develop is a distinct, disallowed operation
func CanBackmerge(sourceBranch string) GuardResult {
	if sourceBranch == BranchMain {
		return GuardResult{
			Allowed: false,
			Reason:  "backmerge from main into develop is disallowed - backmerge the release branch instead",
		}
	}

	if !strings.HasPrefix(sourceBranch, PrefixRelease) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("backmerge source must be a release/* branch, got %s", sourceBranch),
		}
	}

	return GuardResult{Allowed: true}
}
