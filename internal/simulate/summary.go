package simulate

import (
	"math"

	"github.com/milescsmith/WGCNA/internal/constants"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ModuleSummary reports realized statistics for one module.
type ModuleSummary struct {
	Module     string  `json:"module"`
	Genes      int     `json:"genes"`
	EffectSize float64 `json:"effect_size"`

	// SignalCorrelation is cor(eigengene, reference signal).
	SignalCorrelation float64 `json:"signal_correlation"`

	// TraitCorrelation is cor(eigengene, numeric trait).
	TraitCorrelation float64 `json:"trait_correlation"`

	// MeanMembership is the mean cor(gene, eigengene) over member genes.
	// Zero for modules without genes.
	MeanMembership float64 `json:"mean_membership"`
}

// Summary reports realized statistics for a bundle.
type Summary struct {
	Seed       uint64          `json:"seed"`
	Samples    int             `json:"samples"`
	Genes      int             `json:"genes"`
	Background int             `json:"background"`
	HighTraits int             `json:"high_traits"`
	Modules    []ModuleSummary `json:"modules"`
}

// Summarize computes realized correlations for every module of b.
func Summarize(b *Bundle) Summary {
	rows, cols := b.Expression.Matrix.Dims()
	traits := b.Reference.TraitValues()

	sum := Summary{
		Seed:       b.Seed,
		Samples:    rows,
		Genes:      cols,
		Background: b.Expression.Counts[len(b.Expression.Counts)-1].Genes,
	}
	for _, t := range traits {
		if t == constants.TraitHighValue {
			sum.HighTraits++
		}
	}

	members := make(map[string][]int)
	for j, m := range b.Expression.Assignment {
		members[m] = append(members[m], j)
	}

	col := make([]float64, rows)
	for i, m := range b.Config.Modules {
		eg := b.Reference.Eigengenes.Vectors[i]
		ms := ModuleSummary{
			Module:            m.Name,
			Genes:             b.Expression.Count(m.Name),
			EffectSize:        m.EffectSize,
			SignalCorrelation: finite(stat.Correlation(eg, b.Reference.Signal, nil)),
			TraitCorrelation:  finite(stat.Correlation(eg, traits, nil)),
		}
		if idx := members[m.Name]; len(idx) > 0 {
			total := 0.0
			for _, j := range idx {
				mat.Col(col, j, b.Expression.Matrix)
				total += finite(stat.Correlation(col, eg, nil))
			}
			ms.MeanMembership = total / float64(len(idx))
		}
		sum.Modules = append(sum.Modules, ms)
	}
	return sum
}

// finite maps NaN and infinities to zero so summaries stay JSON encodable.
func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
