package main

import (
	"fmt"
	"os"

	"github.com/aretw0/pdasim/internal/cli"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pdasim",
	Short: "pdasim explores pushdown automata step by step",
	Long: `pdasim simulates nondeterministic pushdown automata. Every step explores one more
level of configurations and draws it as an ASCII tree, until an accepting
configuration is found or no move is left.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the automata")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./"+cli.DefaultConfigFile+")")
	rootCmd.PersistentFlags().Bool("debug", false, "Log exploration events to stderr")
	rootCmd.PersistentFlags().String("sessions", "", "Session backend: memory, file or redis (overrides the config)")
}

// setup loads the configuration, applies the persistent flags and wires the engine.
func setup(cmd *cobra.Command, hooks ...domain.LifecycleHooks) *cli.Env {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := cli.LoadConfig(configPath, configPath != "")
	if err != nil {
		fail("Error loading config: %v", err)
	}

	if cmd.Flags().Changed("dir") || cfg.Dir == "" {
		cfg.Dir, _ = cmd.Flags().GetString("dir")
	}
	if backend, _ := cmd.Flags().GetString("sessions"); backend != "" {
		cfg.Sessions.Backend = backend
	}
	debug, _ := cmd.Flags().GetBool("debug")

	env, err := cli.Setup(cfg, debug, hooks...)
	if err != nil {
		fail("Error initializing pdasim: %v", err)
	}
	return env
}

// addBlueprintFlags registers the flags that describe an inline automaton.
func addBlueprintFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("rules", nil, `Inline transition rule, e.g. "d(q0,a,Z0)=(q0,AZ0)" (repeatable)`)
	cmd.Flags().StringSlice("final", nil, "Final states of the inline automaton")
}

// blueprintRef reads a blueprint reference from the flags and the first argument.
func blueprintRef(cmd *cobra.Command, args []string) cli.BlueprintRef {
	rules, _ := cmd.Flags().GetStringArray("rules")
	final, _ := cmd.Flags().GetStringSlice("final")
	ref := cli.BlueprintRef{Rules: rules, Final: final}
	if len(args) > 0 {
		ref.Ref = args[0]
	}
	return ref
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
