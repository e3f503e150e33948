package simulate

import (
	"math/rand/v2"

	"github.com/milescsmith/WGCNA/internal/constants"
)

// Stream is an explicit seeded source of standard normal draws.
// It is not safe for concurrent use; give each run its own Stream.
type Stream struct {
	seed  uint64
	rng   *rand.Rand
	draws int
}

// NewStream returns a Stream fully determined by seed.
func NewStream(seed uint64) *Stream {
	return &Stream{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^constants.StreamSeedMix)),
	}
}

// Seed returns the seed the stream was created with.
func (s *Stream) Seed() uint64 {
	return s.seed
}

// Draws returns how many normal values have been drawn so far.
func (s *Stream) Draws() int {
	return s.draws
}

// Normal returns n independent standard normal values.
func (s *Stream) Normal(n int) []float64 {
	out := make([]float64, n)
	s.fillNormal(out)
	return out
}

func (s *Stream) fillNormal(dst []float64) {
	for i := range dst {
		dst[i] = s.rng.NormFloat64()
	}
	s.draws += len(dst)
}
