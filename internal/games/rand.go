package games

import "math/rand/v2"

// Rand is the randomness seam for role dealing, seat shuffling, knowledge
// ordering and timeout auto-actions. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int                     { return rand.IntN(n) }
func (defaultRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// DefaultRand is backed by the math/rand/v2 top-level generator.
var DefaultRand Rand = defaultRand{}

// NewSeededRand returns a deterministic source, mainly for tests and replays.
func NewSeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func shuffleStrings(rng Rand, s []string) {
	rng.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
