package simulate

import (
	"math"

	"github.com/milescsmith/WGCNA/internal/constants"
	"gonum.org/v1/gonum/mat"
)

// ModuleCount is the number of genes assigned to one module.
type ModuleCount struct {
	Module string `json:"module"`
	Genes  int    `json:"genes"`
}

// Expression is the output of GenerateExpression.
type Expression struct {
	// Matrix is samples x genes, columns in generation order.
	Matrix *mat.Dense

	// Assignment maps gene index to module name, or UnassignedModule.
	Assignment []string

	// Counts lists genes per module in declared order, background last.
	Counts []ModuleCount
}

// Count returns the number of genes assigned to module.
func (e *Expression) Count(module string) int {
	for _, c := range e.Counts {
		if c.Module == module {
			return c.Genes
		}
	}
	return 0
}

// PartitionCounts returns floor(proportion * genes) for each module in
// declared order, followed by the background remainder. Counts are truncated,
// never rounded up, so background absorbs all rounding slack.
func PartitionCounts(cfg Config) []ModuleCount {
	counts := make([]ModuleCount, 0, len(cfg.Modules)+1)
	assigned := 0
	for _, m := range cfg.Modules {
		k := int(math.Floor(m.Proportion * float64(cfg.Genes)))
		counts = append(counts, ModuleCount{Module: m.Name, Genes: k})
		assigned += k
	}
	counts = append(counts, ModuleCount{Module: constants.UnassignedModule, Genes: cfg.Genes - assigned})
	return counts
}

// GenerateExpression builds the expression matrix around the given eigengenes.
// Module genes are eigengene*loading + sqrt(1-loading^2)*noise; background
// genes are pure noise. Validation and dimension checks happen before any draw.
func GenerateExpression(eigengenes Eigengenes, cfg Config, s *Stream) (*Expression, error) {
	if err := cfg.ValidateExpression(); err != nil {
		return nil, err
	}

	vectors := make([][]float64, len(cfg.Modules))
	for i, m := range cfg.Modules {
		v, ok := eigengenes.Get(m.Name)
		if !ok {
			if m.Proportion > 0 {
				return nil, invalidf("modules."+m.Name, m.Name, "no eigengene supplied for module")
			}
			continue
		}
		if len(v) != cfg.Samples {
			return nil, mismatchf("eigengenes."+m.Name, len(v), "expected length %d", cfg.Samples)
		}
		vectors[i] = v
	}

	counts := PartitionCounts(cfg)
	n := cfg.Samples
	matrix := mat.NewDense(n, cfg.Genes, nil)
	assignment := make([]string, 0, cfg.Genes)
	noise := make([]float64, n)

	col := 0
	for i, m := range cfg.Modules {
		loading := cfg.loadingFor(m)
		for g := 0; g < counts[i].Genes; g++ {
			s.fillNormal(noise)
			matrix.SetCol(col, mix(vectors[i], loading, noise))
			assignment = append(assignment, m.Name)
			col++
		}
	}

	for ; col < cfg.Genes; col++ {
		s.fillNormal(noise)
		matrix.SetCol(col, noise)
		assignment = append(assignment, constants.UnassignedModule)
	}

	return &Expression{
		Matrix:     matrix,
		Assignment: assignment,
		Counts:     counts,
	}, nil
}

// GenerateExpressionSeed runs GenerateExpression on a fresh stream.
func GenerateExpressionSeed(eigengenes Eigengenes, cfg Config, seed uint64) (*Expression, error) {
	return GenerateExpression(eigengenes, cfg, NewStream(seed))
}
