package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/milescsmith/WGCNA/internal/config"
	"github.com/milescsmith/WGCNA/internal/logging"
	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wgcnasim",
		Short: "Synthetic co-expression data for WGCNA",
		Long: `wgcnasim generates synthetic gene expression matrices with known
co-expression modules, module eigengenes and a binary trait.

Runs are fully determined by their seed and configuration, exported as
Arrow and CSV files, and recorded in a per-project SQLite registry.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	rootCmd.PersistentFlags().String("config", "", "Config file (default <root>/.wgcnasim/config.yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(),
		newRunsCmd(),
		newVerifyCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}

// loadSettings loads configuration for the --root/--config flags.
func loadSettings(cmd *cobra.Command) (*config.SimConfig, string, error) {
	root, _ := cmd.Flags().GetString("root")
	path, _ := cmd.Flags().GetString("config")

	settings, err := config.Load(root, path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	return settings, root, nil
}

// newLogger writes operational logs to stderr, as JSON when --json is set.
func newLogger(cmd *cobra.Command, level string) *slog.Logger {
	jsonOut, _ := cmd.Flags().GetBool("json")
	return logging.NewLogger(level, cmd.ErrOrStderr(), jsonOut)
}
