// Package random provides the probability draws consumed by the simulation.
// Every stochastic step reads from a single Source so that a run is
// reproducible from its seed.
package random

import (
	"fmt"
	"math/rand/v2"
)

// Source is a stream of uniform draws.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntRange returns a value in [lo, hi], both inclusive.
	IntRange(lo, hi int) int
}

// Uniform returns a value between a and b drawn from src.
// The bounds may be given in either order.
func Uniform(src Source, a, b float64) float64 {
	return a + (b-a)*src.Float64()
}

// Rand is a seeded PCG stream.
type Rand struct {
	r *rand.Rand
}

// New creates a stream that always yields the same draws for the same seed.
func New(seed uint64) *Rand {
	return &Rand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *Rand) Float64() float64 {
	return s.r.Float64()
}

func (s *Rand) IntRange(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + s.r.IntN(hi-lo+1)
}

// Sequence replays fixed draws. It panics when a stream runs dry so that a
// test notices an unexpected draw.
type Sequence struct {
	floats []float64
	ints   []int
	fi, ii int
}

// NewSequence creates a Sequence yielding floats in order.
func NewSequence(floats ...float64) *Sequence {
	return &Sequence{floats: floats}
}

// WithInts sets the values returned by IntRange.
func (s *Sequence) WithInts(ints ...int) *Sequence {
	s.ints = ints
	return s
}

func (s *Sequence) Float64() float64 {
	if s.fi >= len(s.floats) {
		panic(fmt.Sprintf("random: float sequence exhausted after %d draws", s.fi))
	}
	v := s.floats[s.fi]
	s.fi++
	return v
}

// IntRange returns the next scripted integer clamped into [lo, hi].
func (s *Sequence) IntRange(lo, hi int) int {
	if s.ii >= len(s.ints) {
		panic(fmt.Sprintf("random: int sequence exhausted after %d draws", s.ii))
	}
	v := s.ints[s.ii]
	s.ii++
	return clamp(v, lo, hi)
}

// Remaining returns how many float and int draws are left.
func (s *Sequence) Remaining() (floats, ints int) {
	return len(s.floats) - s.fi, len(s.ints) - s.ii
}

// Fixed returns the same draw forever.
type Fixed struct {
	Value float64
	Int   int
}

func (f Fixed) Float64() float64 { return f.Value }

func (f Fixed) IntRange(lo, hi int) int { return clamp(f.Int, lo, hi) }

func clamp(v, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
