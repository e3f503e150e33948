package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/milescsmith/WGCNA/internal/store"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded simulation runs",
		Long: `Inspect the run registry in <root>/.wgcnasim/runs.db.

Examples:
  wgcnasim runs list             # Newest 20 runs
  wgcnasim runs list --limit 0   # All runs
  wgcnasim runs show 3           # Full configuration of run 3`,
	}

	cmd.AddCommand(
		newRunsListCmd(),
		newRunsShowCmd(),
	)

	return cmd
}

func openRunStore(cmd *cobra.Command) (*store.SQLiteRunStore, error) {
	root, _ := cmd.Flags().GetString("root")
	runStore, err := store.NewSQLiteRunStore(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open run registry: %w", err)
	}
	return runStore, nil
}

func newRunsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")

			runStore, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer runStore.Close()

			runs, err := runStore.ListRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"runs":  runs,
					"count": len(runs),
				})
			}

			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			fmt.Fprintf(out, "%-5s %-20s %-20s %8s %7s %8s  %s\n", "ID", "CREATED", "SEED", "SAMPLES", "GENES", "MODULES", "EXPORT")
			for _, r := range runs {
				exportDir := r.ExportDir
				if exportDir == "" {
					exportDir = "-"
				}
				fmt.Fprintf(out, "%-5d %-20s %-20d %8d %7d %8d  %s\n",
					r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Seed, r.Samples, r.Genes, len(r.Config.Modules), exportDir)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum runs to show (0 for all)")

	return cmd
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid run ID: %s", args[0])
			}

			runStore, err := openRunStore(cmd)
			if err != nil {
				return err
			}
			defer runStore.Close()

			run, err := runStore.GetRun(cmd.Context(), id)
			if errors.Is(err, store.ErrRunNotFound) {
				return fmt.Errorf("run %d not found", id)
			}
			if err != nil {
				return fmt.Errorf("failed to get run: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(run)
			}

			fmt.Fprintf(out, "Run %d\n", run.ID)
			fmt.Fprintf(out, "  Created:         %s\n", run.CreatedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(out, "  Seed:            %d\n", run.Seed)
			fmt.Fprintf(out, "  Shape:           %d samples x %d genes\n", run.Samples, run.Genes)
			fmt.Fprintf(out, "  Default loading: %g\n", run.Config.DefaultLoading)
			fmt.Fprintf(out, "  High traits:     %d\n", run.HighTraits)
			fmt.Fprintf(out, "  Checksum:        %s\n", run.MatrixChecksum)
			if run.ExportDir != "" {
				fmt.Fprintf(out, "  Export:          %s\n", run.ExportDir)
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "  %-12s %6s %10s %7s  %s\n", "MODULE", "GENES", "PROPORTION", "EFFECT", "BASE")
			for _, m := range run.Config.Modules {
				base := m.Base
				if base == "" {
					base = "signal"
				}
				genes := 0
				for _, c := range run.Modules {
					if c.Module == m.Name {
						genes = c.Genes
					}
				}
				fmt.Fprintf(out, "  %-12s %6d %10.3f %7.2f  %s\n", m.Name, genes, m.Proportion, m.EffectSize, base)
			}
			fmt.Fprintf(out, "  %-12s %6d\n", "background", run.Background)
			return nil
		},
	}
}
