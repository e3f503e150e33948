package simulate

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// assertConfigError asserts that err wraps want and names field.
func assertConfigError(t *testing.T, err error, want error, field string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", want)
	}
	if !errors.Is(err, want) {
		t.Fatalf("errors.Is(%v, %v) = false", err, want)
	}
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if field != "" && ce.Field != field {
		t.Errorf("ConfigError.Field = %q, want %q", ce.Field, field)
	}
}

// assertSameFloats asserts bit-identical slices.
func assertSameFloats(t *testing.T, name string, got, want []float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: len = %d, want %d", name, len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%s[%d] = %v, want %v", name, i, got[i], want[i])
		}
	}
}

// assertSameStrings asserts identical string slices.
func assertSameStrings(t *testing.T, name string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: len = %d, want %d", name, len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%s[%d] = %q, want %q", name, i, got[i], want[i])
		}
	}
}

// column extracts column j of m.
func column(m mat.Matrix, j int) []float64 {
	return mat.Col(nil, j, m)
}

// smallConfig is a fast two-module scenario used by many tests.
func smallConfig() Config {
	return Config{
		Samples: 10,
		Genes:   20,
		Modules: []ModuleSpec{
			{Name: "turquoise", Proportion: 0.25, EffectSize: 0.5},
			{Name: "blue", Proportion: 0.25, EffectSize: 0.8, Base: "primary"},
		},
		DefaultLoading: 0.7,
	}
}
