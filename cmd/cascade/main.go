package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/cascade/internal/cli"
	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "cascade",
		Short:   "cascade - phased git workflow orchestrator",
		Version: version.String(),
		Long: `cascade drives changes through a fixed seven-phase workflow
(specify, plan, tasks, implement, integrate, release, backmerge),
each feature isolated in its own git worktree and every transition
recorded in a per-repository ledger.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.WorktreeCmd())
	rootCmd.AddCommand(cli.GatesCmd())
	rootCmd.AddCommand(cli.VersionCmd())
	rootCmd.AddCommand(cli.StateCmd())
	rootCmd.AddCommand(cli.PromoteCmd())
	rootCmd.AddCommand(cli.ReleaseCmd())
	rootCmd.AddCommand(cli.BackmergeCmd())
	rootCmd.AddCommand(cli.AdvanceCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
