package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/pdasim/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts pdasim as an MCP Server, so AI agents can simulate inputs,
validate automata and export their diagrams as tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Run: func(cmd *cobra.Command, args []string) {
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		// Logs always go to Stderr, so they never corrupt JSON-RPC on Stdout.
		env := setup(cmd)
		defer env.Close()

		srv := mcp.NewServer(env.Engine, mcp.WithLogger(env.Logger))

		switch transport {
		case "stdio":
			env.Logger.Info("Starting pdasim MCP Server (Stdio)...")
			if err := srv.ServeStdio(); err != nil {
				env.Logger.Error("MCP Server execution failed", "err", err)
				os.Exit(1)
			}
		case "sse":
			env.Logger.Info("Starting pdasim MCP Server (SSE)", "port", port)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, port); err != nil {
				env.Logger.Error("MCP Server execution failed", "err", err)
				os.Exit(1)
			}
			env.Logger.Info("MCP Server stopped gracefully")
		default:
			fail("Unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
