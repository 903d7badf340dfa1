// Package config loads the per-repository cascade configuration from
// .cascade/config.yaml, with CASCADE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Gate configures one quality check in the battery.
type Gate struct {
	Name    string `mapstructure:"name"`
	Command string `mapstructure:"command"`
}

// Config is the flat cascade configuration.
type Config struct {
	LogLevel          string            `mapstructure:"log_level"`
	CoverageThreshold int               `mapstructure:"coverage_threshold"`
	SweepStaleness    time.Duration     `mapstructure:"sweep_staleness"`
	Gates             []Gate            `mapstructure:"gates"`
	PhaseCommands     map[string]string `mapstructure:"phase_commands"`
}

// Dir returns the cascade state directory for a repository.
func Dir(repoRoot string) string {
	return filepath.Join(repoRoot, ".cascade")
}

// Load reads .cascade/config.yaml from the repository root. A missing file
// is not an error - defaults apply. Environment variables with the CASCADE_
// prefix override file values (e.g. CASCADE_LOG_LEVEL=debug).
func Load(repoRoot string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(Dir(repoRoot))

	v.SetEnvPrefix("CASCADE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("coverage_threshold", 80)
	v.SetDefault("sweep_staleness", "24h")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if len(cfg.Gates) == 0 {
		cfg.Gates = DefaultGates(cfg.CoverageThreshold)
	}

	return cfg, nil
}

// DefaultGates is the standard battery: build, tests, vet, and a total
// coverage threshold check.
func DefaultGates(coverageThreshold int) []Gate {
	coverage := fmt.Sprintf(
		`go test ./... -coverprofile=.cascade-cover.out >/dev/null && go tool cover -func=.cascade-cover.out | awk -v min=%d '/^total:/ { sub(/%%/, "", $3); if ($3+0 < min) { print "coverage " $3 "%% below threshold " min "%%"; exit 1 } }'`,
		coverageThreshold,
	)
	return []Gate{
		{Name: "build", Command: "go build ./..."},
		{Name: "test", Command: "go test ./..."},
		{Name: "vet", Command: "go vet ./..."},
		{Name: "coverage", Command: coverage},
	}
}
