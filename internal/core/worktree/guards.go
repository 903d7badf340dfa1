package worktree

import "fmt"

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

// CreateContext provides the facts for worktree-creation guards.
type CreateContext struct {
	Kind           Kind
	Slug           string
	BaseBranch     string
	BaseExists     bool
	LiveForBranch  bool // an active worktree already exists for the branch
	PathOccupied   bool // the derived path is already in use
}

// CanCreate evaluates whether a worktree can be created.
// Rules:
// - Kind must be known and slug must be name-safe
// - Base branch must exist
// - At most one active worktree per branch, and no path reuse
func CanCreate(ctx CreateContext) GuardResult {
	if !ValidKind(ctx.Kind) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("unknown worktree kind %q", ctx.Kind),
		}
	}

	if !ValidSlug(ctx.Slug) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("slug %q is not branch-name safe (lowercase letters, digits, hyphens, dots)", ctx.Slug),
		}
	}

	if !ctx.BaseExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("base branch %s does not exist", ctx.BaseBranch),
		}
	}

	if ctx.LiveForBranch {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("an active worktree already exists for branch %s", BranchName(ctx.Kind, ctx.Slug)),
		}
	}

	if ctx.PathOccupied {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("worktree path for %s/%s is already in use", ctx.Kind, ctx.Slug),
		}
	}

	return GuardResult{Allowed: true}
}
