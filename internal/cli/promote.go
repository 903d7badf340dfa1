package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/cascade/internal/core/hierarchy"
	"github.com/example/cascade/internal/wire"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Promote branches up the hierarchy",
	Long:  "Moves work along the fixed edges feature->contrib, contrib->develop and develop->main, gated by the quality battery",
}

var promoteProposeCmd = &cobra.Command{
	Use:   "propose [edge] [source-branch]",
	Short: "Open a review unit for a promotion",
	Long:  "Edge is one of feature->contrib, contrib->develop, develop->main",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		edge, err := hierarchy.ParseEdge(args[0])
		if err != nil {
			return err
		}

		pr, err := wire.PromotionService().Propose(context.Background(), edge, args[1])
		if err != nil {
			return err
		}

		fmt.Printf("✓ Proposed %s: %s -> %s\n", pr.ID, pr.SourceBranch, pr.TargetBranch)
		return nil
	},
}

var promoteFinishCmd = &cobra.Command{
	Use:   "finish [edge] [source-branch]",
	Short: "Run the gates and merge a proposed promotion",
	Long:  "Re-checks lineage, runs the full battery against the source and merges only on a clean pass",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		edge, err := hierarchy.ParseEdge(args[0])
		if err != nil {
			return err
		}

		result, err := wire.PromotionService().Finish(context.Background(), edge, args[1])
		if err != nil {
			return err
		}

		fmt.Printf("✓ Merged %s into %s (%s)\n", result.SourceBranch, result.TargetBranch, result.PRID)
		if result.WorktreeRemoved {
			fmt.Println("  Source worktree cleaned up")
		}
		return nil
	},
}

func init() {
	promoteCmd.AddCommand(promoteProposeCmd)
	promoteCmd.AddCommand(promoteFinishCmd)
}

// PromoteCmd returns the promote command
func PromoteCmd() *cobra.Command {
	return promoteCmd
}
