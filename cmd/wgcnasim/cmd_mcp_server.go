package main

import (
	"fmt"

	"github.com/milescsmith/WGCNA/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing the
simulate_modules, list_runs and get_run tools, the configured scenario
(wgcnasim://config) and recorded runs (wgcnasim://runs/{id}).

Logs go to stderr so they do not corrupt the protocol stream.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, root, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if err := settings.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			server, err := mcp.NewServer(&mcp.Config{
				Name:     "wgcnasim",
				Version:  version,
				Root:     root,
				Settings: settings,
				Logger:   newLogger(cmd, settings.Logging.Level),
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			return server.Run(cmd.Context())
		},
	}
}
