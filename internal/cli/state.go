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

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect and maintain the sync ledger",
}

var stateRecordCmd = &cobra.Command{
	Use:   "record [sync-type] [pattern]",
	Short: "Record a transition attempt",
	Long:  "Appends a new in_progress sync record; phases for a worktree must be recorded in order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		source, _ := cmd.Flags().GetString("source")
		target, _ := cmd.Flags().GetString("target")
		worktreeID, _ := cmd.Flags().GetString("worktree")

		syncID, err := wire.StateService().RecordTransition(ctx, primary.RecordTransitionRequest{
			SyncType:   args[0],
			Pattern:    args[1],
			Source:     source,
			Target:     target,
			WorktreeID: worktreeID,
		})
		if err != nil {
			return err
		}
		fmt.Printf("✓ Recorded %s (%s)\n", args[1], syncID)
		return nil
	},
}

var stateCompleteCmd = &cobra.Command{
	Use:   "complete [sync-id]",
	Short: "Mark a transition completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wire.StateService().Complete(context.Background(), args[0]); err != nil {
			return err
		}
		fmt.Printf("✓ Completed %s\n", args[0])
		return nil
	},
}

var stateFailCmd = &cobra.Command{
	Use:   "fail [sync-id]",
	Short: "Mark a transition failed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")
		if err := wire.StateService().Fail(context.Background(), args[0], reason); err != nil {
			return err
		}
		fmt.Printf("✓ Failed %s\n", args[0])
		return nil
	},
}

var stateShowCmd = &cobra.Command{
	Use:   "show [worktree-id]",
	Short: "Show a worktree's phase state and history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := wire.StateService().QueryState(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Worktree: %s\n", state.WorktreeID)
		fmt.Printf("Current phase: %s\n", state.CurrentPhase)
		if state.LastPattern != "" {
			fmt.Printf("Last pattern: %s\n", state.LastPattern)
		}

		if len(state.History) == 0 {
			fmt.Println("\nNo transitions recorded")
			return nil
		}

		fmt.Println()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SYNC ID\tTYPE\tPATTERN\tSTATUS\tCREATED")
		for _, transition := range state.History {
			status := transition.Status
			switch status {
			case "completed":
				status = color.New(color.FgGreen).Sprint(status)
			case "failed":
				status = color.New(color.FgRed).Sprint(status)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				transition.SyncID, transition.SyncType, transition.Pattern,
				status, transition.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var stateSweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Fail stale in-progress records with no live worktree",
	RunE: func(cmd *cobra.Command, args []string) error {
		swept, err := wire.StateService().Sweep(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("✓ Swept %d orphaned transition(s)\n", swept)
		return nil
	},
}

func init() {
	stateRecordCmd.Flags().String("source", "", "Source location")
	stateRecordCmd.Flags().String("target", "", "Target location")
	stateRecordCmd.Flags().StringP("worktree", "w", "", "Worktree ID (omit for repo-level records)")

	stateFailCmd.Flags().String("reason", "", "Failure reason for the log")

	stateCmd.AddCommand(stateRecordCmd)
	stateCmd.AddCommand(stateCompleteCmd)
	stateCmd.AddCommand(stateFailCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateSweepCmd)
}

// StateCmd returns the state command
func StateCmd() *cobra.Command {
	return stateCmd
}
