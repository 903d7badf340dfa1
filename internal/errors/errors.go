// Package errors provides centralized error handling for cascade.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error types can be checked
// using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
var (
	// ErrConflict indicates a duplicate resource, such as an attempt to
	// create a worktree for a branch that already has a live worktree.
	ErrConflict = errors.New("resource conflict")

	// ErrNotFound indicates a missing worktree, branch, or record.
	// Cleanup paths recover from this locally and treat it as success.
	ErrNotFound = errors.New("not found")

	// ErrGateFailure indicates one or more quality checks failed.
	// Always carried by a *GateError so callers get per-check diagnostics.
	ErrGateFailure = errors.New("quality gate failure")

	// ErrPrecondition indicates an out-of-order phase request or a
	// disallowed operation such as merging main into develop. Rejected,
	// never coerced.
	ErrPrecondition = errors.New("precondition violated")

	// ErrNoChange indicates version computation found nothing to bump.
	// Propagation stops the release phase.
	ErrNoChange = errors.New("no change to release")
)

// Exit codes for the CLI. Gate failures are distinguished from
// infrastructure failures so automation can tell a red build from a
// broken environment.
const (
	ExitSuccess        = 0
	ExitGateFailure    = 1
	ExitPrecondition   = 2
	ExitConflict       = 3
	ExitInfrastructure = 4
)

// ExitCode maps an error to the CLI exit code for its category.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrGateFailure):
		return ExitGateFailure
	case errors.Is(err, ErrPrecondition), errors.Is(err, ErrNoChange):
		return ExitPrecondition
	case errors.Is(err, ErrConflict):
		return ExitConflict
	default:
		return ExitInfrastructure
	}
}

// CheckDiagnostic describes a single failed quality check.
type CheckDiagnostic struct {
	Name       string
	Diagnostic string
}

// GateError reports which checks failed and why. A bare "failed" with no
// cause is a defect, so construction requires at least one diagnostic.
type GateError struct {
	Failures []CheckDiagnostic
}

// NewGateError creates a GateError from failed-check diagnostics.
func NewGateError(failures []CheckDiagnostic) *GateError {
	return &GateError{Failures: failures}
}

// Error lists every failed check by name with its diagnostic.
func (e *GateError) Error() string {
	if len(e.Failures) == 0 {
		return ErrGateFailure.Error()
	}
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Name, f.Diagnostic))
	}
	return fmt.Sprintf("quality gate failure: %s", strings.Join(parts, "; "))
}

// Unwrap makes errors.Is(err, ErrGateFailure) work on GateError.
func (e *GateError) Unwrap() error {
	return ErrGateFailure
}

// Is reports whether err is a sentinel from this package.
// Thin wrapper so callers don't need to import both packages.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a thin wrapper over errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
