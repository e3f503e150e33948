package simulate

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestMix_Extremes(t *testing.T) {
	base := NewStream(3).Normal(20)

	tests := []struct {
		name string
		rho  float64
		want func(i int, noise []float64) float64
	}{
		{"rho one copies base", 1, func(i int, _ []float64) float64 { return base[i] }},
		{"rho minus one negates base", -1, func(i int, _ []float64) float64 { return -base[i] }},
		{"rho zero is pure noise", 0, func(i int, noise []float64) float64 { return noise[i] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStream(9)
			got, err := Mix(base, tt.rho, s)
			if err != nil {
				t.Fatalf("Mix() error = %v", err)
			}
			if s.Draws() != len(base) {
				t.Errorf("Draws() = %d, want %d (noise is drawn for every rho)", s.Draws(), len(base))
			}
			noise := NewStream(9).Normal(len(base))
			for i := range got {
				if want := tt.want(i, noise); math.Abs(got[i]-want) > 1e-12 {
					t.Fatalf("Mix()[%d] = %v, want %v", i, got[i], want)
				}
			}
		})
	}
}

func TestMix_InvalidRho(t *testing.T) {
	s := NewStream(1)
	_, err := Mix([]float64{1, 2, 3}, 1.1, s)
	assertConfigError(t, err, ErrInvalidConfiguration, "rho")
	if s.Draws() != 0 {
		t.Errorf("Draws() = %d after invalid rho, want 0", s.Draws())
	}
}

func TestMix_CorrelationConverges(t *testing.T) {
	const (
		n     = 50
		seeds = 100
	)

	for _, rho := range []float64{-0.6, 0, 0.3, 0.6, 0.9} {
		var sum, absDev float64
		for seed := uint64(1); seed <= seeds; seed++ {
			s := NewStream(seed)
			base := s.Normal(n)
			mixed, err := Mix(base, rho, s)
			if err != nil {
				t.Fatalf("Mix() error = %v", err)
			}
			r := stat.Correlation(base, mixed, nil)
			sum += r
			absDev += math.Abs(r - rho)
		}
		mean := sum / seeds
		if math.Abs(mean-rho) > 0.07 {
			t.Errorf("rho=%.2f: mean realized correlation %.4f", rho, mean)
		}
		if absDev/seeds >= 0.2 {
			t.Errorf("rho=%.2f: mean |r - rho| = %.4f, want < 0.2", rho, absDev/seeds)
		}
	}
}

func TestGenerateReference_DrawOrder(t *testing.T) {
	cfg := DefaultConfig()
	n := cfg.Samples
	s := NewStream(1)

	ref, err := GenerateReference(cfg, s)
	if err != nil {
		t.Fatalf("GenerateReference() error = %v", err)
	}

	// R0, signal noise, then four non-primary modules.
	if want := n * 6; s.Draws() != want {
		t.Errorf("Draws() = %d, want %d", s.Draws(), want)
	}

	// Replay the documented order by hand.
	replay := NewStream(1)
	r0 := replay.Normal(n)
	signal := mix(r0, 0.6, replay.Normal(n))
	turquoise := mix(signal, 0, replay.Normal(n))
	blue := mix(turquoise, 0.6, replay.Normal(n))
	brown := mix(signal, -0.6, replay.Normal(n))
	yellow := mix(signal, 0, replay.Normal(n))

	assertSameFloats(t, "Primary", ref.Primary, r0)
	assertSameFloats(t, "Signal", ref.Signal, signal)

	want := map[string][]float64{
		"turquoise": turquoise,
		"blue":      blue,
		"brown":     brown,
		"green":     r0,
		"yellow":    yellow,
	}
	assertSameStrings(t, "Eigengenes.Names", ref.Eigengenes.Names, cfg.ModuleNames())
	for name, v := range want {
		got, ok := ref.Eigengenes.Get(name)
		if !ok {
			t.Fatalf("missing eigengene %s", name)
		}
		assertSameFloats(t, "ME"+name, got, v)
	}
}

func TestGenerateReference_NoPrimary(t *testing.T) {
	cfg := Config{
		Samples: 8,
		Modules: []ModuleSpec{{Name: "a", EffectSize: 0.5}},
	}
	s := NewStream(4)
	ref, err := GenerateReference(cfg, s)
	if err != nil {
		t.Fatalf("GenerateReference() error = %v", err)
	}
	assertSameFloats(t, "Signal", ref.Signal, ref.Primary)
	if s.Draws() != 8*3 {
		t.Errorf("Draws() = %d, want %d", s.Draws(), 8*3)
	}
}

func TestGenerateReference_InvalidDrawsNothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Modules[1].EffectSize = 2
	s := NewStream(1)

	ref, err := GenerateReference(cfg, s)
	if ref != nil {
		t.Error("expected nil reference on error")
	}
	assertConfigError(t, err, ErrInvalidConfiguration, "modules.blue.effect_size")
	if s.Draws() != 0 {
		t.Errorf("Draws() = %d, want 0", s.Draws())
	}
}

func TestGenerateReference_TraitSplit(t *testing.T) {
	for _, n := range []int{2, 3, 10, 49, 50, 51} {
		cfg := DefaultConfig()
		cfg.Samples = n
		ref, err := GenerateReferenceSeed(cfg, 7)
		if err != nil {
			t.Fatalf("n=%d: GenerateReferenceSeed() error = %v", n, err)
		}
		if len(ref.Traits) != n {
			t.Fatalf("n=%d: len(Traits) = %d", n, len(ref.Traits))
		}
		high := 0
		for i, tr := range ref.Traits {
			switch tr {
			case "high":
				high++
				if ref.Signal[i] <= ref.Median {
					t.Errorf("n=%d: sample %d labelled high at or below median", n, i)
				}
			case "low":
				if ref.Signal[i] > ref.Median {
					t.Errorf("n=%d: sample %d labelled low above median", n, i)
				}
			default:
				t.Fatalf("n=%d: unexpected trait %q", n, tr)
			}
		}
		if high != n/2 {
			t.Errorf("n=%d: high count = %d, want %d", n, high, n/2)
		}
	}
}

func TestSplitTraits_TiesAreLow(t *testing.T) {
	got := SplitTraits([]float64{1, 2, 2, 3}, 2)
	assertSameStrings(t, "SplitTraits", got, []string{"low", "low", "low", "high"})
}

func TestMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"odd", []float64{3, 1, 2}, 2},
		{"even averages middle", []float64{4, 1, 3, 2}, 2.5},
		{"single", []float64{7}, 7},
		{"duplicates", []float64{1, 1, 1, 5}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := median(tt.values); got != tt.want {
				t.Errorf("median(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}

	if !math.IsNaN(median(nil)) {
		t.Error("median(nil) should be NaN")
	}
}

func TestMedian_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	median(values)
	assertSameFloats(t, "values", values, []float64{3, 1, 2})
}

func TestTraitValues(t *testing.T) {
	ref := &Reference{Traits: []string{"low", "high", "high"}}
	assertSameFloats(t, "TraitValues", ref.TraitValues(), []float64{1, 2, 2})
}
