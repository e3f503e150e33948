package constants

// Trait labels produced by the median split of the reference signal.
const (
	TraitHigh = "high"
	TraitLow  = "low"

	// TraitHighValue and TraitLowValue are the numeric encodings used when
	// correlating eigengenes with the trait (1 = low, 2 = high).
	TraitHighValue = 2.0
	TraitLowValue  = 1.0
)

// ValidTrait returns true if label is a recognized trait label.
func ValidTrait(label string) bool {
	switch label {
	case TraitHigh, TraitLow:
		return true
	}
	return false
}

// TraitValue returns the numeric encoding of a trait label.
// Anything other than TraitHigh encodes as low.
func TraitValue(label string) float64 {
	if label == TraitHigh {
		return TraitHighValue
	}
	return TraitLowValue
}
