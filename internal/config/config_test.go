package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 80, cfg.CoverageThreshold)
	assert.Equal(t, 24*time.Hour, cfg.SweepStaleness)
	require.Len(t, cfg.Gates, 4)
	assert.Equal(t, "build", cfg.Gates[0].Name)
	assert.Contains(t, cfg.Gates[3].Command, "min=80")
}

func TestLoadFromFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(Dir(root), 0755))

	yaml := `log_level: debug
coverage_threshold: 90
sweep_staleness: 2h
gates:
  - name: smoke
    command: ./scripts/smoke.sh
`
	require.NoError(t, os.WriteFile(filepath.Join(Dir(root), "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 90, cfg.CoverageThreshold)
	assert.Equal(t, 2*time.Hour, cfg.SweepStaleness)
	require.Len(t, cfg.Gates, 1)
	assert.Equal(t, "smoke", cfg.Gates[0].Name)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(Dir(root), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(Dir(root), "config.yaml"), []byte("gates: {not-a-list"), 0644))

	_, err := Load(root)
	assert.Error(t, err)
}
