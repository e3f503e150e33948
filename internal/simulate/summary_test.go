package simulate

import (
	"encoding/json"
	"math"
	"testing"
)

func TestSummarize_TutorialScenario(t *testing.T) {
	b, err := Simulate(DefaultConfig(), 1)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	sum := Summarize(b)

	if sum.Samples != 50 || sum.Genes != 3000 || sum.Background != 1410 {
		t.Errorf("Summary shape = %d samples, %d genes, %d background", sum.Samples, sum.Genes, sum.Background)
	}
	if sum.HighTraits != 25 {
		t.Errorf("HighTraits = %d, want 25", sum.HighTraits)
	}
	if len(sum.Modules) != 5 {
		t.Fatalf("len(Modules) = %d, want 5", len(sum.Modules))
	}

	wantGenes := map[string]int{"turquoise": 600, "blue": 450, "brown": 240, "green": 180, "yellow": 120}
	for _, ms := range sum.Modules {
		if ms.Genes != wantGenes[ms.Module] {
			t.Errorf("%s: Genes = %d, want %d", ms.Module, ms.Genes, wantGenes[ms.Module])
		}
		// Loading 0.7 with 50 samples: member genes track their eigengene closely.
		if ms.MeanMembership < 0.5 || ms.MeanMembership > 0.9 {
			t.Errorf("%s: MeanMembership = %.3f, want near 0.7", ms.Module, ms.MeanMembership)
		}
		if math.Abs(ms.SignalCorrelation) > 1 || math.Abs(ms.TraitCorrelation) > 1 {
			t.Errorf("%s: correlation out of range: %+v", ms.Module, ms)
		}
	}

	if _, err := json.Marshal(sum); err != nil {
		t.Errorf("json.Marshal(Summary) error = %v", err)
	}
}

func TestSummarize_ModuleWithoutGenes(t *testing.T) {
	cfg := smallConfig()
	cfg.Modules[0].Proportion = 0
	b, err := Simulate(cfg, 1)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	sum := Summarize(b)
	if sum.Modules[0].Genes != 0 || sum.Modules[0].MeanMembership != 0 {
		t.Errorf("empty module summary = %+v", sum.Modules[0])
	}
}

func TestSummarize_PrimaryTracksSignal(t *testing.T) {
	cfg := smallConfig()
	cfg.Samples = 200
	cfg.Modules[1].EffectSize = 1
	b, err := Simulate(cfg, 1)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	sum := Summarize(b)
	if got := sum.Modules[1].SignalCorrelation; math.Abs(got-1) > 1e-9 {
		t.Errorf("primary with effect 1: SignalCorrelation = %v, want 1", got)
	}
}

func TestFinite(t *testing.T) {
	if finite(math.NaN()) != 0 || finite(math.Inf(1)) != 0 || finite(0.5) != 0.5 {
		t.Error("finite() should zero NaN and Inf only")
	}
}
