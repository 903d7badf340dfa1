package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/cascade/internal/core/gate"
	"github.com/example/cascade/internal/errors"
)

func TestGateServiceRunsBatteryInOrder(t *testing.T) {
	specs := []gate.Spec{
		{Name: "build", Command: "true"},
		{Name: "test", Command: "echo '3 tests failed'; false"},
		{Name: "vet", Command: "true"},
	}
	svc := NewGateService(specs, testLogger)

	result, err := svc.Run(context.Background(), t.TempDir())
	require.NoError(t, err, "a failing check is not an infrastructure error")

	require.Len(t, result.Checks, 3)
	assert.Equal(t, "build", result.Checks[0].Name, "results come back in battery order")
	assert.Equal(t, "test", result.Checks[1].Name)
	assert.Equal(t, "vet", result.Checks[2].Name)

	assert.False(t, result.Passed())
	failures := result.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "test", failures[0].Name)
	assert.Contains(t, failures[0].Diagnostic, "3 tests failed")
}

func TestGateServiceAllPass(t *testing.T) {
	specs := []gate.Spec{
		{Name: "build", Command: "true"},
		{Name: "test", Command: "true"},
	}
	svc := NewGateService(specs, testLogger)

	result, err := svc.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.True(t, result.Passed())
	assert.Empty(t, result.Failures())
}

func TestGateServiceRerunIsDeterministic(t *testing.T) {
	specs := []gate.Spec{{Name: "check", Command: "false"}}
	svc := NewGateService(specs, testLogger)
	ctx := context.Background()
	dir := t.TempDir()

	first, err := svc.Run(ctx, dir)
	require.NoError(t, err)
	second, err := svc.Run(ctx, dir)
	require.NoError(t, err)

	assert.Equal(t, first.Passed(), second.Passed(), "fixed worktree state yields a fixed verdict")
}

func TestGateServiceMissingPath(t *testing.T) {
	svc := NewGateService([]gate.Spec{{Name: "build", Command: "true"}}, testLogger)

	_, err := svc.Run(context.Background(), "/nonexistent/worktree")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPrecondition))
}

func TestGateServiceEmptyBattery(t *testing.T) {
	svc := NewGateService(nil, testLogger)

	_, err := svc.Run(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrPrecondition))
}

func TestGateFailureCarriesDiagnostics(t *testing.T) {
	result := gate.Result{Checks: []gate.CheckResult{
		{Name: "build", Passed: true},
		{Name: "coverage", Passed: false, Diagnostic: "coverage 71.2% below threshold 80%"},
	}}

	err := gateFailure(result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrGateFailure))

	var gateErr *errors.GateError
	require.True(t, errors.As(err, &gateErr))
	require.Len(t, gateErr.Failures, 1)
	assert.Equal(t, "coverage", gateErr.Failures[0].Name)
}
