// Package cli defines the cobra commands for the cascade CLI.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/cascade/internal/config"
	"github.com/example/cascade/internal/db"
	"github.com/example/cascade/internal/wire"
)

const defaultConfigYAML = `# cascade configuration
log_level: info
coverage_threshold: 80
sweep_staleness: 24h

# Override the quality gate battery. Leaving this empty uses the default
# battery: build, test, vet, coverage.
# gates:
#   - name: build
#     command: go build ./...

# Optional commands run by the artifact phases (specify, plan, tasks,
# implement) inside the worktree.
# phase_commands:
#   specify: ./scripts/specify.sh
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize cascade state for this repository",
	Long:  "Creates the .cascade directory, the state database and a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Resolving the root also opens the database and applies the schema.
		repoRoot := wire.RepoRoot()

		configPath := filepath.Join(config.Dir(repoRoot), "config.yaml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			if err := os.WriteFile(configPath, []byte(defaultConfigYAML), 0o644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Printf("✓ Created %s\n", configPath)
		} else {
			fmt.Printf("Config already exists at %s\n", configPath)
		}

		fmt.Printf("✓ State database at %s\n", db.Path(repoRoot))
		fmt.Println("cascade is ready")
		return nil
	},
}

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return initCmd
}
