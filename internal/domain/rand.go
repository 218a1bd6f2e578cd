package domain

import "math/rand/v2"

// Rand abstracts the random source behind challenge generation so tests can
// inject a seeded generator. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// NewRand returns the default pseudo-random source.
func NewRand() Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
