package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent sessions",
	Long:  `List, inspect, and remove sessions stored by 'run --session' or the HTTP API.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored sessions",
	Run: func(cmd *cobra.Command, args []string) {
		env := setup(cmd)
		defer env.Close()

		sessions, err := env.Engine.ListSessions(cmd.Context())
		if err != nil {
			fail("Error listing sessions: %v", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No stored sessions found.")
			return
		}

		fmt.Println("Stored Sessions:")
		for _, id := range sessions {
			snap, err := env.Engine.Session(cmd.Context(), id)
			if err != nil {
				fmt.Printf("- %s (unreadable: %v)\n", id, err)
				continue
			}
			fmt.Printf("- %s  %s %q  %s after %d steps\n", id, snap.Blueprint.ID, snap.Input, snap.Status, snap.Steps)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <session-id>",
	Short: "Inspect the state of a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := setup(cmd)
		defer env.Close()

		sessionID := args[0]
		snap, err := env.Engine.Session(cmd.Context(), sessionID)
		if err != nil {
			fail("Error loading session '%s': %v", sessionID, err)
		}

		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			fail("Error marshaling session: %v", err)
		}

		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Remove one or more sessions",
	Args: func(cmd *cobra.Command, args []string) error {
		if all, _ := cmd.Flags().GetBool("all"); all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		env := setup(cmd)
		defer env.Close()

		if all, _ := cmd.Flags().GetBool("all"); all {
			ids, err := env.Engine.ListSessions(cmd.Context())
			if err != nil {
				fail("Error listing sessions: %v", err)
			}
			args = ids
		}

		hasError := false
		for _, sessionID := range args {
			if err := env.Engine.DeleteSession(cmd.Context(), sessionID); err != nil {
				fmt.Printf("Error removing '%s': %v\n", sessionID, err)
				hasError = true
			} else {
				fmt.Printf("Removed session '%s'\n", sessionID)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)

	sessionRmCmd.Flags().Bool("all", false, "Remove every stored session")
}
