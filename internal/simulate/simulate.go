package simulate

import (
	"fmt"
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Bundle is the read-only result of a full simulation run.
type Bundle struct {
	Config     Config
	Seed       uint64
	Reference  *Reference
	Expression *Expression
	Labels     Labels

	// MEs is samples x modules, one eigengene per column in declared order.
	MEs *mat.Dense
}

// Tracer receives stage events. *logging.TraceLogger satisfies it.
type Tracer interface {
	Log(event map[string]any)
}

// Simulator runs full simulations with logging attached.
// It holds no random state: every Run creates its own Stream.
type Simulator struct {
	logger *slog.Logger
	tracer Tracer
}

// NewSimulator creates a simulator. A nil logger falls back to slog.Default;
// tracer may be nil.
func NewSimulator(logger *slog.Logger, tracer Tracer) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{logger: logger, tracer: tracer}
}

// Simulate runs a full simulation with default logging.
func Simulate(cfg Config, seed uint64) (*Bundle, error) {
	return NewSimulator(nil, nil).Run(cfg, seed)
}

// Run validates cfg, then threads a single stream seeded by seed through
// GenerateReference and GenerateExpression, labels the result and assembles
// the eigengene matrix.
func (sim *Simulator) Run(cfg Config, seed uint64) (*Bundle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	s := NewStream(seed)

	ref, err := GenerateReference(cfg, s)
	if err != nil {
		return nil, fmt.Errorf("generating reference: %w", err)
	}
	sim.trace("reference", s, map[string]any{
		"modules": ref.Eigengenes.Len(),
		"median":  ref.Median,
	})

	expr, err := GenerateExpression(ref.Eigengenes, cfg, s)
	if err != nil {
		return nil, fmt.Errorf("generating expression: %w", err)
	}
	sim.trace("expression", s, map[string]any{
		"genes":      cfg.Genes,
		"background": expr.Counts[len(expr.Counts)-1].Genes,
	})

	labels := LabelEntities(expr.Matrix, expr.Assignment)
	sim.trace("labels", s, map[string]any{
		"samples": len(labels.Samples),
		"genes":   len(labels.Genes),
	})

	bundle := &Bundle{
		Config:     cfg,
		Seed:       seed,
		Reference:  ref,
		Expression: expr,
		Labels:     labels,
		MEs:        eigengeneMatrix(cfg.Samples, ref.Eigengenes),
	}

	sim.logger.Debug("simulation complete",
		"seed", seed,
		"samples", cfg.Samples,
		"genes", cfg.Genes,
		"modules", len(cfg.Modules),
		"draws", s.Draws(),
		"elapsed", time.Since(start))

	return bundle, nil
}

func (sim *Simulator) trace(stage string, s *Stream, fields map[string]any) {
	if sim.tracer == nil {
		return
	}
	event := map[string]any{
		"stage": stage,
		"seed":  s.Seed(),
		"draws": s.Draws(),
	}
	for k, v := range fields {
		event[k] = v
	}
	sim.tracer.Log(event)
}

func eigengeneMatrix(samples int, e Eigengenes) *mat.Dense {
	if e.Len() == 0 {
		return nil
	}
	m := mat.NewDense(samples, e.Len(), nil)
	for j, v := range e.Vectors {
		m.SetCol(j, v)
	}
	return m
}
