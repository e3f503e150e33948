// Package store defines the RunStore interface for recording simulation runs.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/milescsmith/WGCNA/internal/export"
	"github.com/milescsmith/WGCNA/internal/simulate"
)

// ErrRunNotFound is returned by GetRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded simulation.
type Run struct {
	ID             int64                  `json:"id"`
	CreatedAt      time.Time              `json:"created_at"`
	Seed           uint64                 `json:"seed"`
	Samples        int                    `json:"samples"`
	Genes          int                    `json:"genes"`
	Background     int                    `json:"background"`
	HighTraits     int                    `json:"high_traits"`
	MatrixChecksum string                 `json:"matrix_checksum"`
	ExportDir      string                 `json:"export_dir,omitempty"`
	Config         simulate.Config        `json:"config"`
	Modules        []simulate.ModuleCount `json:"modules"`
}

// RunStore defines the interface for the run registry.
type RunStore interface {
	// RecordRun stores run and returns its assigned ID.
	RecordRun(ctx context.Context, run Run) (int64, error)

	// GetRun returns the run with the given ID, or ErrRunNotFound.
	GetRun(ctx context.Context, id int64) (*Run, error)

	// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	Close() error
}

// NewRun builds a Run record from a simulation bundle.
// exportDir is empty when the bundle was not exported.
func NewRun(b *simulate.Bundle, exportDir string) Run {
	sum := simulate.Summarize(b)
	modules := append([]simulate.ModuleCount(nil), b.Expression.Counts...)
	return Run{
		CreatedAt:      time.Now().UTC(),
		Seed:           b.Seed,
		Samples:        sum.Samples,
		Genes:          sum.Genes,
		Background:     sum.Background,
		HighTraits:     sum.HighTraits,
		MatrixChecksum: export.MatrixChecksum(b.Expression.Matrix),
		ExportDir:      exportDir,
		Config:         b.Config,
		Modules:        modules,
	}
}

func encodeConfig(cfg simulate.Config) (string, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	return string(data), nil
}

func decodeConfig(data string) (simulate.Config, error) {
	var cfg simulate.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return simulate.Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
