package constants

import "testing"

func TestValidTrait(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  bool
	}{
		{
			name:  "high is valid",
			label: TraitHigh,
			want:  true,
		},
		{
			name:  "low is valid",
			label: TraitLow,
			want:  true,
		},
		{
			name:  "empty string is invalid",
			label: "",
			want:  false,
		},
		{
			name:  "case sensitive",
			label: "High",
			want:  false,
		},
		{
			name:  "numeric encoding is not a label",
			label: "2",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidTrait(tt.label); got != tt.want {
				t.Errorf("ValidTrait(%q) = %v, want %v", tt.label, got, tt.want)
			}
		})
	}
}

func TestTraitValue(t *testing.T) {
	tests := []struct {
		label string
		want  float64
	}{
		{TraitHigh, 2},
		{TraitLow, 1},
		{"", 1},
	}

	for _, tt := range tests {
		if got := TraitValue(tt.label); got != tt.want {
			t.Errorf("TraitValue(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}
