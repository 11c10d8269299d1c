package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSeeded_Deterministic(t *testing.T) {
	a, b := NewSeeded(42), NewSeeded(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

func TestIntRange(t *testing.T) {
	s := NewSeeded(7)
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		v := IntRange(s, 2, 5)
		assert.GreaterOrEqual(t, v, 2)
		assert.LessOrEqual(t, v, 5)
		seen[v] = true
	}
	assert.Len(t, seen, 4)
	assert.Equal(t, 3, IntRange(s, 3, 3))
}

func TestScripted(t *testing.T) {
	s := NewScripted([]float64{0.1, 0.9}, []int{4, 1})
	assert.Equal(t, 0.1, s.Float64())
	assert.Equal(t, 0.9, s.Float64())
	assert.Equal(t, 0.9, s.Float64())
	assert.Equal(t, 3, s.FloatCalls())
	assert.Equal(t, 1, s.IntN(3))
	assert.Equal(t, 1, s.IntN(3))
	assert.Equal(t, 0, NewScripted(nil, nil).IntN(5))
}
