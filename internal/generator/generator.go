// Package generator produces randomized stimulus delays.
package generator

import (
	"math/rand"
	"time"
)

const (
	// MinDelay is the shortest wait before a color stimulus.
	MinDelay = 1000 * time.Millisecond
	// DelaySpan is the width of the uniform delay range; delays fall in [MinDelay, MinDelay+DelaySpan).
	DelaySpan = 3000 * time.Millisecond
)

// Generator yields uniformly distributed stimulus delays.
type Generator struct {
	rnd  *rand.Rand
	seed int64
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed so a run can be replayed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed)), seed: seed}
}

// Seed returns the seed the generator was created with.
func (g *Generator) Seed() int64 {
	return g.seed
}

// Next returns a delay in whole milliseconds within [MinDelay, MinDelay+DelaySpan).
func (g *Generator) Next() time.Duration {
	ms := g.rnd.Int63n(DelaySpan.Milliseconds())
	return MinDelay + time.Duration(ms)*time.Millisecond
}

// Float64 returns a pseudo-random number in [0.0,1.0) from the same source.
func (g *Generator) Float64() float64 {
	return g.rnd.Float64()
}
