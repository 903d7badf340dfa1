package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/cascade/internal/core/gate"
	"github.com/example/cascade/internal/errors"
	"github.com/example/cascade/internal/wire"
)

var gatesCmd = &cobra.Command{
	Use:   "gates",
	Short: "Run the quality gate battery",
}

var gatesRunCmd = &cobra.Command{
	Use:   "run [path]",
	Short: "Run all quality gates against a worktree",
	Long:  "Runs the configured battery fresh against the given path (default: repository root) and reports per-check results",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		path := wire.RepoRoot()
		if len(args) == 1 {
			path = args[0]
		}

		result, err := wire.GateService().Run(ctx, path)
		if err != nil {
			return err
		}

		printGateResult(result)
		if !result.Passed() {
			failures := result.Failures()
			diags := make([]errors.CheckDiagnostic, 0, len(failures))
			for _, f := range failures {
				diags = append(diags, errors.CheckDiagnostic{Name: f.Name, Diagnostic: f.Diagnostic})
			}
			return errors.NewGateError(diags)
		}

		fmt.Println(color.New(color.FgGreen).Sprint("✓ All gates passed"))
		return nil
	},
}

func printGateResult(result gate.Result) {
	for _, check := range result.Checks {
		verdict := color.New(color.FgGreen).Sprint("PASS")
		if !check.Passed {
			verdict = color.New(color.FgRed).Sprint("FAIL")
		}
		fmt.Printf("%s  %-12s (%s)\n", verdict, check.Name, check.Duration.Round(time.Millisecond))
		if check.Diagnostic != "" {
			fmt.Printf("      %s\n", check.Diagnostic)
		}
	}
}

func init() {
	gatesCmd.AddCommand(gatesRunCmd)
}

// GatesCmd returns the gates command
func GatesCmd() *cobra.Command {
	return gatesCmd
}
