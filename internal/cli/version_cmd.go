package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/cascade/internal/core/hierarchy"
	"github.com/example/cascade/internal/wire"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Inspect and compute release versions",
}

var versionCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the highest released version",
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := wire.VersionService().Current(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(current)
		return nil
	},
}

var versionNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Compute the next version from a diff",
	Long:  "Classifies the commits between base and candidate and prints the resulting version",
	RunE: func(cmd *cobra.Command, args []string) error {
		base, _ := cmd.Flags().GetString("base")
		candidate, _ := cmd.Flags().GetString("candidate")

		next, err := wire.VersionService().ComputeNext(context.Background(), base, candidate)
		if err != nil {
			return err
		}
		fmt.Println(next)
		return nil
	},
}

func init() {
	versionNextCmd.Flags().String("base", hierarchy.BranchMain, "Base branch of the diff")
	versionNextCmd.Flags().String("candidate", hierarchy.BranchDevelop, "Candidate branch of the diff")

	versionCmd.AddCommand(versionCurrentCmd)
	versionCmd.AddCommand(versionNextCmd)
}

// VersionCmd returns the version command
func VersionCmd() *cobra.Command {
	return versionCmd
}
