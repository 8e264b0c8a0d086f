package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the ticktick-mcp application
var rootCmd = &cobra.Command{
	Use:   "ticktick-mcp",
	Short: "MCP server for the TickTick task management API",
	Long: `ticktick-mcp is an MCP (Model Context Protocol) server that exposes the
TickTick (and Dida365) task management API to AI assistants.

It handles the OAuth authorization flow, persists and refreshes tokens,
and provides tools for managing projects and tasks.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "ticktick-mcp version %s\n" .Version}}`)

	// If no subcommand is provided, run the serve command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
