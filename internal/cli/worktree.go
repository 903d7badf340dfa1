package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/cascade/internal/ports/primary"
	"github.com/example/cascade/internal/wire"
)

var worktreeCmd = &cobra.Command{
	Use:   "worktree",
	Short: "Manage isolated worktrees",
	Long:  "Create, remove, list and open the isolated checkouts that carry feature, contrib and release work",
}

var worktreeCreateCmd = &cobra.Command{
	Use:   "create [kind] [slug]",
	Short: "Create a worktree with its branch",
	Long:  "Creates branch {kind}/{slug} from the base branch and an isolated checkout next to the repository",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		base, _ := cmd.Flags().GetString("base")
		skipMetadata, _ := cmd.Flags().GetBool("skip-metadata")

		worktree, err := wire.WorktreeService().Create(ctx, primary.CreateWorktreeRequest{
			Kind:         args[0],
			Slug:         args[1],
			BaseBranch:   base,
			SkipMetadata: skipMetadata,
		})
		if err != nil {
			return err
		}

		fmt.Printf("✓ Created worktree %s\n", worktree.ID)
		fmt.Printf("  Branch: %s (from %s)\n", worktree.Branch, worktree.BaseBranch)
		fmt.Printf("  Path:   %s\n", worktree.Path)
		return nil
	},
}

var worktreeRemoveCmd = &cobra.Command{
	Use:   "remove [worktree-id]",
	Short: "Remove a worktree and its branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		retainBranch, _ := cmd.Flags().GetBool("retain-branch")

		err := wire.WorktreeService().Remove(ctx, primary.RemoveWorktreeRequest{
			WorktreeID:   args[0],
			RetainBranch: retainBranch,
		})
		if err != nil {
			return err
		}

		fmt.Printf("✓ Removed worktree %s\n", args[0])
		return nil
	},
}

var worktreeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List worktrees",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		all, _ := cmd.Flags().GetBool("all")

		worktrees, err := wire.WorktreeService().List(ctx, all)
		if err != nil {
			return err
		}

		if len(worktrees) == 0 {
			fmt.Println("No worktrees found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tBRANCH\tSTATUS\tPATH")
		for _, worktree := range worktrees {
			status := worktree.Status
			if status == "active" {
				status = color.New(color.FgGreen).Sprint(status)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				worktree.ID, worktree.Kind, worktree.Branch, status, worktree.Path)
		}
		return w.Flush()
	},
}

var worktreeOpenCmd = &cobra.Command{
	Use:   "open [worktree-id]",
	Short: "Open a worktree in a tmux window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		if err := wire.WorktreeService().Open(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Opened worktree %s\n", args[0])
		return nil
	},
}

func init() {
	worktreeCreateCmd.Flags().StringP("base", "b", "", "Base branch to create from (required)")
	_ = worktreeCreateCmd.MarkFlagRequired("base")
	worktreeCreateCmd.Flags().Bool("skip-metadata", false, "Do not write the metadata.json tracking file")

	worktreeRemoveCmd.Flags().Bool("retain-branch", false, "Keep the branch after deleting the checkout")

	worktreeListCmd.Flags().BoolP("all", "a", false, "Include removed worktrees")

	worktreeCmd.AddCommand(worktreeCreateCmd)
	worktreeCmd.AddCommand(worktreeRemoveCmd)
	worktreeCmd.AddCommand(worktreeListCmd)
	worktreeCmd.AddCommand(worktreeOpenCmd)
}

// WorktreeCmd returns the worktree command
func WorktreeCmd() *cobra.Command {
	return worktreeCmd
}
