package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRand_SameSeedSameStream(t *testing.T) {
	a, b := New(7), New(7)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Float64(), b.Float64())
		require.Equal(t, a.IntRange(-2, 2), b.IntRange(-2, 2))
	}
}

func TestRand_DrawsStayInRange(t *testing.T) {
	r := New(99)
	for i := 0; i < 1000; i++ {
		f := r.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)

		n := r.IntRange(-2, 2)
		assert.GreaterOrEqual(t, n, -2)
		assert.LessOrEqual(t, n, 2)
	}
	assert.Equal(t, 3, r.IntRange(3, 3))
}

func TestUniform(t *testing.T) {
	assert.Equal(t, 150.0, Uniform(Fixed{Value: 0.5}, 100, 200))
	assert.Equal(t, 100.0, Uniform(Fixed{Value: 0}, 100, 200))
	// reversed bounds interpolate the other way
	assert.Equal(t, 175.0, Uniform(Fixed{Value: 0.25}, 200, 100))
}

func TestSequence_ReplaysAndPanicsWhenDry(t *testing.T) {
	s := NewSequence(0.1, 0.9).WithInts(5, -5)

	assert.Equal(t, 0.1, s.Float64())
	assert.Equal(t, 2, s.IntRange(-2, 2), "clamped to hi")
	assert.Equal(t, 0.9, s.Float64())
	assert.Equal(t, -2, s.IntRange(-2, 2), "clamped to lo")

	floats, ints := s.Remaining()
	assert.Zero(t, floats)
	assert.Zero(t, ints)
	assert.Panics(t, func() { s.Float64() })
	assert.Panics(t, func() { s.IntRange(0, 1) })
}

func TestFixed_ClampsInts(t *testing.T) {
	f := Fixed{Value: 0.3, Int: 10}
	assert.Equal(t, 0.3, f.Float64())
	assert.Equal(t, 4, f.IntRange(0, 4))
	assert.Equal(t, 4, f.IntRange(4, 0))
}
