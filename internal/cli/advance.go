package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/cascade/internal/wire"
)

var advanceCmd = &cobra.Command{
	Use:   "advance [worktree-id]",
	Short: "Run the next phase for a worktree",
	Long:  "Looks up the worktree's highest completed phase and dispatches the one that follows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ran, err := wire.LifecycleService().Advance(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("✓ Ran phase %s for %s\n", ran, args[0])
		return nil
	},
}

// AdvanceCmd returns the advance command
func AdvanceCmd() *cobra.Command {
	return advanceCmd
}
