// Package mcp provides an MCP (Model Context Protocol) server for wgcnasim.
package mcp

import (
	"time"

	"github.com/milescsmith/WGCNA/internal/simulate"
	"github.com/milescsmith/WGCNA/internal/store"
)

// SimulateModulesInput defines the input for the simulate_modules tool.
// Zero values fall back to the server's configured scenario.
type SimulateModulesInput struct {
	Seed      *uint64               `json:"seed,omitempty" jsonschema:"Seed for the random stream (default: configured seed)"`
	Samples   int                   `json:"samples,omitempty" jsonschema:"Number of samples (default: configured samples)"`
	Genes     int                   `json:"genes,omitempty" jsonschema:"Number of genes (default: configured genes)"`
	Modules   []simulate.ModuleSpec `json:"modules,omitempty" jsonschema:"Module definitions in declared order (default: configured modules)"`
	ExportDir string                `json:"export_dir,omitempty" jsonschema:"Export directory; relative names go under .wgcnasim/exports"`
	Record    *bool                 `json:"record,omitempty" jsonschema:"Record the run in the registry (default: configured store.record)"`
}

// SimulateModulesOutput defines the output for the simulate_modules tool.
type SimulateModulesOutput struct {
	RunID          int64            `json:"run_id,omitempty" jsonschema:"Registry ID of the run (0 when not recorded)"`
	Seed           uint64           `json:"seed" jsonschema:"Seed used for the run"`
	Summary        simulate.Summary `json:"summary" jsonschema:"Shape and per-module statistics of the generated data"`
	MatrixChecksum string           `json:"matrix_checksum" jsonschema:"sha256 of the expression matrix values"`
	ExportDir      string           `json:"export_dir,omitempty" jsonschema:"Absolute export directory when exported"`
	Message        string           `json:"message" jsonschema:"Human-readable result message"`
}

// ListRunsInput defines the input for the list_runs tool.
type ListRunsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of runs to return (default: 20)"`
}

// ListRunsOutput defines the output for the list_runs tool.
type ListRunsOutput struct {
	Runs  []RunListItem `json:"runs" jsonschema:"Recorded runs newest first"`
	Count int           `json:"count" jsonschema:"Number of runs returned"`
}

// RunListItem provides a list view of a recorded run.
type RunListItem struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Seed           uint64    `json:"seed"`
	Samples        int       `json:"samples"`
	Genes          int       `json:"genes"`
	Modules        int       `json:"modules"`
	Background     int       `json:"background"`
	MatrixChecksum string    `json:"matrix_checksum"`
	Exported       bool      `json:"exported"`
}

// GetRunInput defines the input for the get_run tool.
type GetRunInput struct {
	ID int64 `json:"id" jsonschema:"Registry ID of the run"`
}

// GetRunOutput defines the output for the get_run tool.
type GetRunOutput struct {
	Run store.Run `json:"run" jsonschema:"The recorded run including its config and module counts"`
}

func runListItem(r store.Run) RunListItem {
	return RunListItem{
		ID:             r.ID,
		CreatedAt:      r.CreatedAt,
		Seed:           r.Seed,
		Samples:        r.Samples,
		Genes:          r.Genes,
		Modules:        len(r.Config.Modules),
		Background:     r.Background,
		MatrixChecksum: r.MatrixChecksum,
		Exported:       r.ExportDir != "",
	}
}
