package main

import (
	"os"

	"github.com/aretw0/pdasim/internal/cli"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [blueprint] <input>",
	Short: "Explore an input to a verdict and print the tree",
	Long: `Runs the whole exploration at once. The exit code is 0 when the input is
accepted and 2 when it is rejected.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		env := setup(cmd)
		defer env.Close()

		ref := blueprintRef(cmd, args)
		input := args[len(args)-1]
		if len(args) == 1 && len(ref.Rules) == 0 {
			fail("Error: %v", cli.ErrNoBlueprint)
		}
		if len(args) == 1 {
			ref.Ref = ""
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		snap, err := cli.Simulate(cmd.Context(), env, ref, input, asJSON, os.Stdout)
		if err != nil {
			fail("Error: %v", err)
		}
		if snap.Status == domain.StatusRejected {
			os.Exit(2)
		}
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	addBlueprintFlags(simulateCmd)
	simulateCmd.Flags().Bool("json", false, "Print the session snapshot as JSON")
}
