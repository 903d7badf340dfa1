// Package phase defines the fixed seven-stage workflow sequence and its
// ordering rules. This is part of the functional core - no I/O, only pure
// functions and the typed dispatch registry.
package phase

import (
	"context"
	"fmt"
)

// Phase identifies one of the seven workflow stages. The zero value means
// "not started".
type Phase int

const (
	// None means no phase has completed yet.
	None Phase = iota
	// Specify captures requirements for the change.
	Specify
	// Plan produces the implementation plan.
	Plan
	// Tasks breaks the plan into units of work.
	Tasks
	// Implement is where code is written in the worktree.
	Implement
	// Integrate promotes the change up the branch hierarchy.
	Integrate
	// Release cuts and ships a release branch.
	Release
	// Backmerge folds the release branch back into develop.
	Backmerge
)

// patterns maps each phase to its persisted pattern tag. The tags are part
// of the sync_records schema and must never change.
var patterns = map[Phase]string{
	Specify:   "phase_1_specify",
	Plan:      "phase_2_plan",
	Tasks:     "phase_3_tasks",
	Implement: "phase_4_implement",
	Integrate: "phase_5_integrate",
	Release:   "phase_6_release",
	Backmerge: "phase_7_backmerge",
}

// All returns the seven phases in workflow order.
func All() []Phase {
	return []Phase{Specify, Plan, Tasks, Implement, Integrate, Release, Backmerge}
}

// Valid reports whether p is one of the seven phases.
func (p Phase) Valid() bool {
	_, ok := patterns[p]
	return ok
}

// Pattern returns the persisted pattern tag for the phase.
func (p Phase) Pattern() string {
	if s, ok := patterns[p]; ok {
		return s
	}
	return "phase_0_none"
}

// String returns the short phase name, e.g. "specify".
func (p Phase) String() string {
	names := map[Phase]string{
		None:      "none",
		Specify:   "specify",
		Plan:      "plan",
		Tasks:     "tasks",
		Implement: "implement",
		Integrate: "integrate",
		Release:   "release",
		Backmerge: "backmerge",
	}
	if s, ok := names[p]; ok {
		return s
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Next returns the phase that follows p, or false after the last phase.
func (p Phase) Next() (Phase, bool) {
	if p >= Backmerge {
		return None, false
	}
	return p + 1, true
}

// ParsePattern resolves a persisted pattern tag back to its phase.
func ParsePattern(pattern string) (Phase, error) {
	for p, s := range patterns {
		if s == pattern {
			return p, nil
		}
	}
	return None, fmt.Errorf("unknown phase pattern %q", pattern)
}

// IsPrefix reports whether the set of completed phases forms a contiguous
// prefix of the workflow order. Completed phases for a worktree must always
// satisfy this - a later phase can never complete while an earlier one has
// not.
func IsPrefix(completed map[Phase]bool) bool {
	seenGap := false
	for _, p := range All() {
		if completed[p] && seenGap {
			return false
		}
		if !completed[p] {
			seenGap = true
		}
	}
	return true
}

// Highest returns the highest-ordered completed phase, or None.
func Highest(completed map[Phase]bool) Phase {
	highest := None
	for _, p := range All() {
		if completed[p] {
			highest = p
		}
	}
	return highest
}

// Runner executes one phase for a worktree.
type Runner interface {
	Run(ctx context.Context, worktreeID string) error
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, worktreeID string) error

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, worktreeID string) error {
	return f(ctx, worktreeID)
}

// Registry is the typed dispatch table mapping each phase to the component
// that executes it. The mapping is fixed at wiring time - phases are never
// resolved by string matching at runtime.
type Registry struct {
	runners map[Phase]Runner
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{runners: make(map[Phase]Runner)}
}

// Register binds a runner to a phase. Rebinding a phase is an error.
func (r *Registry) Register(p Phase, runner Runner) error {
	if !p.Valid() {
		return fmt.Errorf("cannot register runner for invalid phase %d", int(p))
	}
	if _, exists := r.runners[p]; exists {
		return fmt.Errorf("runner already registered for phase %s", p)
	}
	r.runners[p] = runner
	return nil
}

// Runner returns the runner bound to a phase.
func (r *Registry) Runner(p Phase) (Runner, bool) {
	runner, ok := r.runners[p]
	return runner, ok
}
