package main

import (
	"os"

	"github.com/aretw0/pdasim/internal/cli"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <blueprint>",
	Short: "Describe an automaton: its tuple, rules and examples",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := setup(cmd)
		defer env.Close()

		raw, _ := cmd.Flags().GetBool("raw")
		if err := cli.Inspect(cmd.Context(), env, blueprintRef(cmd, args), !raw, os.Stdout); err != nil {
			fail("Error: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	addBlueprintFlags(inspectCmd)
	inspectCmd.Flags().Bool("raw", false, "Print Markdown instead of rendering it")
}
