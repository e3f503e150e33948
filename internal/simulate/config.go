package simulate

import (
	"math"

	"github.com/milescsmith/WGCNA/internal/constants"
)

// ModuleSpec declares one co-expression module.
type ModuleSpec struct {
	// Name identifies the module (a colour in the WGCNA convention).
	Name string `json:"name" yaml:"name"`

	// Proportion is the fraction of genes assigned to the module, in [0, 1].
	// The module receives floor(Proportion * Genes) genes.
	Proportion float64 `json:"proportion" yaml:"proportion"`

	// EffectSize is the target correlation between the eigengene and its base, in [-1, 1].
	// For the primary module it is the correlation between R0 and the reference signal.
	EffectSize float64 `json:"effect_size" yaml:"effect_size"`

	// Base selects the vector the eigengene is mixed from:
	// "" for the reference signal, "primary" to make this module's eigengene
	// the primary latent vector, or the name of an earlier module.
	Base string `json:"base,omitempty" yaml:"base,omitempty"`

	// Loading is the correlation of member genes with the eigengene, in (0, 1].
	// Zero means Config.DefaultLoading.
	Loading float64 `json:"loading,omitempty" yaml:"loading,omitempty"`
}

// IsPrimary reports whether the module's eigengene is the primary latent vector.
func (m ModuleSpec) IsPrimary() bool {
	return m.Base == constants.PrimaryBase
}

// Config holds the parameters of a simulation run.
type Config struct {
	// Samples is the number of samples (rows). Must be at least 2.
	Samples int `json:"samples" yaml:"samples"`

	// Genes is the number of genes (columns). Must be positive.
	Genes int `json:"genes" yaml:"genes"`

	// Modules are walked in declared order for both eigengene derivation and
	// gene partitioning.
	Modules []ModuleSpec `json:"modules" yaml:"modules"`

	// DefaultLoading applies to modules with Loading == 0.
	DefaultLoading float64 `json:"default_loading" yaml:"default_loading"`
}

// DefaultConfig returns the five-module tutorial scenario: 50 samples,
// 3000 genes, with green as the primary module and blue derived from turquoise.
func DefaultConfig() Config {
	return Config{
		Samples: constants.DefaultSamples,
		Genes:   constants.DefaultGenes,
		Modules: []ModuleSpec{
			{Name: "turquoise", Proportion: 0.2, EffectSize: 0},
			{Name: "blue", Proportion: 0.15, EffectSize: 0.6, Base: "turquoise"},
			{Name: "brown", Proportion: 0.08, EffectSize: -0.6},
			{Name: "green", Proportion: 0.06, EffectSize: 0.6, Base: constants.PrimaryBase},
			{Name: "yellow", Proportion: 0.04, EffectSize: 0},
		},
		DefaultLoading: constants.DefaultLoading,
	}
}

// loadingFor returns the effective gene loading of m.
func (c Config) loadingFor(m ModuleSpec) float64 {
	if m.Loading != 0 {
		return m.Loading
	}
	return c.DefaultLoading
}

// ModuleNames returns module names in declared order.
func (c Config) ModuleNames() []string {
	names := make([]string, len(c.Modules))
	for i, m := range c.Modules {
		names[i] = m.Name
	}
	return names
}

// Primary returns the index of the primary module, or -1 if none is declared.
func (c Config) Primary() int {
	for i, m := range c.Modules {
		if m.IsPrimary() {
			return i
		}
	}
	return -1
}

// ValidateReference checks everything GenerateReference depends on.
func (c Config) ValidateReference() error {
	if c.Samples < 2 {
		return invalidf("samples", c.Samples, "need at least 2 samples")
	}

	seen := make(map[string]bool, len(c.Modules))
	primaries := 0
	for i, m := range c.Modules {
		if m.Name == "" {
			return invalidf("modules[].name", i, "module name is required")
		}
		if m.Name == constants.UnassignedModule {
			return invalidf("modules[].name", m.Name, "reserved for unassigned genes")
		}
		if seen[m.Name] {
			return invalidf("modules[].name", m.Name, "duplicate module name")
		}
		if !validCorrelation(m.EffectSize) {
			return invalidf("modules."+m.Name+".effect_size", m.EffectSize, "must be within [-1, 1]")
		}

		switch {
		case m.Base == "":
		case m.IsPrimary():
			primaries++
			if primaries > 1 {
				return invalidf("modules."+m.Name+".base", m.Base, "only one primary module is allowed")
			}
		case m.Base == m.Name:
			return invalidf("modules."+m.Name+".base", m.Base, "module cannot be derived from itself")
		case !seen[m.Base]:
			return invalidf("modules."+m.Name+".base", m.Base, "base module must be declared earlier")
		}

		seen[m.Name] = true
	}
	return nil
}

// ValidateExpression checks everything GenerateExpression depends on.
func (c Config) ValidateExpression() error {
	if c.Samples < 1 {
		return invalidf("samples", c.Samples, "must be positive")
	}
	if c.Genes < 1 {
		return invalidf("genes", c.Genes, "must be positive")
	}

	sum := 0.0
	positive := 0
	for _, m := range c.Modules {
		if m.Proportion < 0 || m.Proportion > 1 || math.IsNaN(m.Proportion) {
			return invalidf("modules."+m.Name+".proportion", m.Proportion, "must be within [0, 1]")
		}
		if m.Proportion > 0 {
			positive++
		}
		sum += m.Proportion

		loading := c.loadingFor(m)
		if !(loading > 0 && loading <= 1) {
			return invalidf("modules."+m.Name+".loading", loading, "must be within (0, 1]")
		}
	}
	if sum > 1+constants.ProportionSumTolerance {
		return invalidf("modules[].proportion", sum, "proportions sum to more than 1")
	}
	if c.Genes < positive {
		return invalidf("genes", c.Genes, "fewer genes than the %d modules with positive proportion", positive)
	}
	return nil
}

// Validate checks the whole configuration.
func (c Config) Validate() error {
	if err := c.ValidateReference(); err != nil {
		return err
	}
	return c.ValidateExpression()
}

func validCorrelation(rho float64) bool {
	return rho >= -1 && rho <= 1
}
