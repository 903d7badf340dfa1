// Package gate defines quality gate specifications and result aggregation.
// A gate battery passes only if every check passes - no partial credit,
// no override.
package gate

import (
	"fmt"
	"strings"
	"time"
)

// Spec describes one independent quality check. Command is run through the
// shell in the worktree being checked; a zero exit status is a pass.
type Spec struct {
	Name    string
	Command string
}

// CheckResult is the outcome of a single check.
type CheckResult struct {
	Name       string
	Passed     bool
	Diagnostic string
	Duration   time.Duration
}

// Result is the outcome of one full gate run. It is ephemeral - computed
// fresh on every run and never persisted, so a stale pass can never be
// replayed.
type Result struct {
	Checks []CheckResult
}

// Passed reports whether every check passed.
func (r Result) Passed() bool {
	for _, c := range r.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Failures returns the checks that failed, in battery order.
func (r Result) Failures() []CheckResult {
	var failed []CheckResult
	for _, c := range r.Checks {
		if !c.Passed {
			failed = append(failed, c)
		}
	}
	return failed
}

// Summary renders a one-line-per-check report.
func (r Result) Summary() string {
	var b strings.Builder
	for _, c := range r.Checks {
		status := "PASS"
		if !c.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%s %s (%s)\n", status, c.Name, c.Duration.Round(time.Millisecond))
		if !c.Passed && c.Diagnostic != "" {
			fmt.Fprintf(&b, "  %s\n", strings.ReplaceAll(strings.TrimSpace(c.Diagnostic), "\n", "\n  "))
		}
	}
	return b.String()
}
