package main

import (
	"fmt"
	"os"

	"github.com/aretw0/pdasim/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [blueprint...]",
	Short: "Run the examples stored with the automata",
	Long:  `Compiles each automaton and checks every example against its expected verdict. Without arguments, all automata in --dir are validated.`,
	Run: func(cmd *cobra.Command, args []string) {
		env := setup(cmd)
		defer env.Close()

		var refs []cli.BlueprintRef
		for _, arg := range args {
			refs = append(refs, cli.BlueprintRef{Ref: arg})
		}

		passed, err := cli.Validate(cmd.Context(), env, refs, os.Stdout)
		if err != nil {
			fail("Validation failed: %v", err)
		}
		if !passed {
			os.Exit(1)
		}
		fmt.Println("All examples passed! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
