package main

import (
	"os"

	"github.com/aretw0/pdasim/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [blueprint] [input]",
	Short: "Explore an input interactively",
	Long: `Starts an interactive simulation. Press space or enter to explore one more level,
p to play, s to pause, r to reset and q to quit.

With --session the progress is stored and resumed by later runs.`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		env := setup(cmd)
		defer env.Close()

		opts := cli.RunOptions{Blueprint: blueprintRef(cmd, args)}
		if len(opts.Blueprint.Rules) > 0 && len(args) == 1 {
			opts.Input = args[0]
		} else if len(args) > 1 {
			opts.Input = args[1]
		}
		if input, _ := cmd.Flags().GetString("input"); cmd.Flags().Changed("input") {
			opts.Input = input
		}
		opts.SessionID, _ = cmd.Flags().GetString("session")
		opts.Fresh, _ = cmd.Flags().GetBool("fresh")
		opts.Speed, _ = cmd.Flags().GetInt("speed")
		opts.Headless, _ = cmd.Flags().GetBool("headless")
		opts.Watch, _ = cmd.Flags().GetBool("watch")

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		if err := cli.Run(sigCtx, env, opts, os.Stdin, os.Stdout); err != nil {
			fail("Error: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addBlueprintFlags(runCmd)

	runCmd.Flags().String("input", "", "Input word (alternative to the second argument)")
	runCmd.Flags().String("session", "", "Persist progress under this session ID")
	runCmd.Flags().Bool("fresh", false, "Discard the stored session before starting")
	runCmd.Flags().Int("speed", 0, "Auto-play interval in milliseconds (default from config)")
	runCmd.Flags().Bool("headless", false, "Explore to a verdict without reading keys")
	runCmd.Flags().BoolP("watch", "w", false, "Restart when the blueprint file changes")
}
