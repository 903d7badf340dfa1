package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/cascade/internal/core/hierarchy"
	"github.com/example/cascade/internal/wire"
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Cut and ship the next release",
	Long:  "Computes the next version from develop, cuts release/{version} in its own worktree, runs the gates, merges to main and tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := wire.ReleaseService().Release(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("✓ Released %s\n", result.Tag)
		fmt.Printf("  Branch: %s (worktree %s)\n", result.ReleaseBranch, result.WorktreeID)
		fmt.Println("  Run 'cascade backmerge " + result.ReleaseBranch + "' to fold the release back into develop")
		return nil
	},
}

var backmergeCmd = &cobra.Command{
	Use:   "backmerge [release-branch|version]",
	Short: "Merge a shipped release back into develop",
	Long:  "Merges the release branch (never main) into develop, rebases active contrib branches and deletes the release branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := args[0]
		// A bare version like 1.4.0 names its release branch.
		if !strings.Contains(source, "/") {
			source = hierarchy.PrefixRelease + source
		}

		result, err := wire.ReleaseService().Backmerge(context.Background(), source)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Backmerged %s into develop\n", result.SourceBranch)
		for _, contrib := range result.RebasedContribs {
			fmt.Printf("  Rebased %s\n", contrib)
		}
		return nil
	},
}

// ReleaseCmd returns the release command
func ReleaseCmd() *cobra.Command {
	return releaseCmd
}

// BackmergeCmd returns the backmerge command
func BackmergeCmd() *cobra.Command {
	return backmergeCmd
}
