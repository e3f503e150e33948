package simulate

import (
	"math"
	"slices"

	"github.com/milescsmith/WGCNA/internal/constants"
	"gonum.org/v1/gonum/floats"
)

// Eigengenes is an ordered mapping from module name to eigengene vector.
type Eigengenes struct {
	Names   []string
	Vectors [][]float64
}

// Get returns the eigengene of the named module.
func (e Eigengenes) Get(name string) ([]float64, bool) {
	for i, n := range e.Names {
		if n == name {
			return e.Vectors[i], true
		}
	}
	return nil, false
}

// Len returns the number of eigengenes.
func (e Eigengenes) Len() int {
	return len(e.Names)
}

func (e *Eigengenes) add(name string, v []float64) {
	e.Names = append(e.Names, name)
	e.Vectors = append(e.Vectors, v)
}

// Reference is the output of GenerateReference.
type Reference struct {
	// Primary is the latent vector R0.
	Primary []float64

	// Signal is the reference signal S, correlated with Primary.
	Signal []float64

	// Median is the sample median of Signal used for the trait split.
	Median float64

	// Traits holds one label per sample: TraitHigh when Signal > Median.
	Traits []string

	// Eigengenes holds one vector per module, in declared order.
	Eigengenes Eigengenes
}

// TraitValues returns the numeric trait encoding (high = 2, low = 1).
func (r *Reference) TraitValues() []float64 {
	out := make([]float64, len(r.Traits))
	for i, t := range r.Traits {
		out[i] = constants.TraitValue(t)
	}
	return out
}

// Mix returns rho*base + sqrt(1-rho^2)*noise, drawing len(base) values from s.
// The result has expected correlation rho with base when base is standard normal.
// Noise is always drawn, even when rho is -1, 0 or 1.
func Mix(base []float64, rho float64, s *Stream) ([]float64, error) {
	if !validCorrelation(rho) {
		return nil, invalidf("rho", rho, "must be within [-1, 1]")
	}
	noise := s.Normal(len(base))
	return mix(base, rho, noise), nil
}

func mix(base []float64, rho float64, noise []float64) []float64 {
	out := make([]float64, len(base))
	floats.ScaleTo(out, rho, base)
	floats.AddScaled(out, math.Sqrt(1-rho*rho), noise)
	return out
}

// GenerateReference draws the primary latent vector, derives the reference
// signal and one eigengene per module, and splits samples by the signal median.
// The configuration is validated before any value is drawn.
func GenerateReference(cfg Config, s *Stream) (*Reference, error) {
	if err := cfg.ValidateReference(); err != nil {
		return nil, err
	}

	n := cfg.Samples
	primary := s.Normal(n)

	rho := 1.0
	if p := cfg.Primary(); p >= 0 {
		rho = cfg.Modules[p].EffectSize
	}
	signal := mix(primary, rho, s.Normal(n))

	ref := &Reference{
		Primary: primary,
		Signal:  signal,
	}

	for _, m := range cfg.Modules {
		if m.IsPrimary() {
			ref.Eigengenes.add(m.Name, primary)
			continue
		}

		base := signal
		if m.Base != "" {
			// Validation guarantees the base was declared, and therefore derived, earlier.
			base, _ = ref.Eigengenes.Get(m.Base)
		}
		ref.Eigengenes.add(m.Name, mix(base, m.EffectSize, s.Normal(n)))
	}

	ref.Median = median(signal)
	ref.Traits = SplitTraits(signal, ref.Median)
	return ref, nil
}

// GenerateReferenceSeed runs GenerateReference on a fresh stream.
func GenerateReferenceSeed(cfg Config, seed uint64) (*Reference, error) {
	return GenerateReference(cfg, NewStream(seed))
}

// SplitTraits labels each value TraitHigh if it is strictly greater than
// threshold and TraitLow otherwise.
func SplitTraits(values []float64, threshold float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v > threshold {
			out[i] = constants.TraitHigh
		} else {
			out[i] = constants.TraitLow
		}
	}
	return out
}

// median returns the middle order statistic, averaging the two middle values
// for even lengths.
func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
