package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVector(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		v := NormalizeVector([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)

		var mag float64
		for _, val := range v {
			mag += float64(val) * float64(val)
		}
		assert.InDelta(t, 1.0, math.Sqrt(mag), 1e-6)
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		v := NormalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, v)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, NormalizeVector(nil))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := []float32{3, 4}
		NormalizeVector(in)
		assert.Equal(t, []float32{3, 4}, in)
	})
}

func TestDotProduct(t *testing.T) {
	assert.InDelta(t, 11.0, DotProduct([]float32{1, 2}, []float32{3, 4}), 1e-6)
	assert.InDelta(t, 0.0, DotProduct([]float32{1, 0}, []float32{0, 1}), 1e-6)
	// Mismatched lengths use the shorter prefix
	assert.InDelta(t, 3.0, DotProduct([]float32{3}, []float32{1, 5}), 1e-6)
}

func TestCosineDistance(t *testing.T) {
	a := NormalizeVector([]float32{1, 0})

	assert.InDelta(t, 0.0, CosineDistance(a, a), 1e-6)
	assert.InDelta(t, 1.0, CosineDistance(a, NormalizeVector([]float32{0, 1})), 1e-6)
	assert.InDelta(t, 2.0, CosineDistance(a, NormalizeVector([]float32{-1, 0})), 1e-6)
}
