package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/pdasim"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of pdasim",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pdasim version %s\n", strings.TrimSpace(pdasim.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
