package main

import (
	"os"

	"github.com/aretw0/pdasim/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <blueprint>",
	Short: "Export the transition diagram",
	Long:  `Outputs a Mermaid diagram (graph LR) of the automaton. With --input, the states visited by the run are highlighted.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := setup(cmd)
		defer env.Close()

		input, _ := cmd.Flags().GetString("input")
		if err := cli.Graph(cmd.Context(), env, blueprintRef(cmd, args), input, os.Stdout); err != nil {
			fail("Error: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	addBlueprintFlags(graphCmd)
	graphCmd.Flags().String("input", "", "Highlight the run of this input")
}
