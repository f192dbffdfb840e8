package changepoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestGradient(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		expected []float64
	}{
		{
			name:     "empty",
			data:     []float64{},
			expected: []float64{},
		},
		{
			name:     "single sample",
			data:     []float64{7},
			expected: []float64{0},
		},
		{
			name:     "two samples",
			data:     []float64{1, 4},
			expected: []float64{3, 3},
		},
		{
			name:     "quadratic growth",
			data:     []float64{1, 2, 4, 7, 11},
			expected: []float64{1, 1.5, 2.5, 3.5, 4},
		},
		{
			name:     "falling",
			data:     []float64{10, 8, 4, 4},
			expected: []float64{-2, -3, -2, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Gradient(tt.data))
		})
	}
}

func TestAbsAndClip(t *testing.T) {
	data := []float64{-300, -5, 0, 42, 250, 900}

	Abs(data)
	assert.Equal(t, []float64{300, 5, 0, 42, 250, 900}, data)

	Clip(data, 10, 260)
	assert.Equal(t, []float64{260, 10, 10, 42, 250, 260}, data)
}

func TestGaussianKernel(t *testing.T) {
	tests := []struct {
		sigma  float64
		length int
	}{
		{sigma: 0, length: 1},
		{sigma: 1, length: 9},
		{sigma: 2, length: 17},
		{sigma: 3, length: 25},
		{sigma: 10, length: 81},
	}

	for _, tt := range tests {
		kernel := GaussianKernel(tt.sigma)
		require.Len(t, kernel, tt.length, "sigma %.1f", tt.sigma)
		assert.InDelta(t, 1.0, floats.Sum(kernel), 1e-12, "sigma %.1f", tt.sigma)

		radius := len(kernel) / 2
		for k := 1; k <= radius; k++ {
			assert.Equal(t, kernel[radius-k], kernel[radius+k], "kernel must be symmetric")
			assert.Less(t, kernel[radius+k], kernel[radius+k-1], "kernel must decay away from the centre")
		}
	}
}

func TestGaussianFilter1D(t *testing.T) {
	t.Run("constant signal is preserved", func(t *testing.T) {
		data := []float64{3, 3, 3, 3, 3, 3}
		for _, v := range GaussianFilter1D(data, 2) {
			assert.InDelta(t, 3.0, v, 1e-12)
		}
	})

	t.Run("non-positive sigma copies", func(t *testing.T) {
		data := []float64{1, 5, 2}
		out := GaussianFilter1D(data, 0)
		assert.Equal(t, data, out)
		out[0] = 99
		assert.Equal(t, 1.0, data[0])
	})

	t.Run("impulse spreads symmetrically", func(t *testing.T) {
		data := make([]float64, 41)
		data[20] = 1
		out := GaussianFilter1D(data, 2)
		assert.InDelta(t, 1.0, floats.Sum(out), 1e-12)
		for k := 1; k <= 8; k++ {
			assert.InDelta(t, out[20-k], out[20+k], 1e-15)
		}
		assert.Equal(t, 20, floats.MaxIdx(out))
	})

	t.Run("edges reflect", func(t *testing.T) {
		// A step at the left edge reflects onto itself, so the mean is kept
		data := []float64{1, 0, 0, 0, 0, 0, 0, 0, 0, 0}
		out := GaussianFilter1D(data, 1)
		assert.Greater(t, out[0], out[1])
		assert.InDelta(t, 1.0, floats.Sum(out), 1e-12)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, GaussianFilter1D(nil, 2))
	})
}

func TestReflectIndex(t *testing.T) {
	tests := []struct {
		i, n, expected int
	}{
		{i: 0, n: 4, expected: 0},
		{i: 3, n: 4, expected: 3},
		{i: -1, n: 4, expected: 0},
		{i: -2, n: 4, expected: 1},
		{i: 4, n: 4, expected: 3},
		{i: 5, n: 4, expected: 2},
		{i: 8, n: 4, expected: 0},
		{i: -9, n: 4, expected: 0},
		{i: 7, n: 1, expected: 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, reflectIndex(tt.i, tt.n), "reflectIndex(%d, %d)", tt.i, tt.n)
	}
}

func TestLocalMaxima(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		expected []int
	}{
		{name: "empty", data: nil, expected: nil},
		{name: "two samples", data: []float64{1, 2}, expected: nil},
		{name: "boundaries never qualify", data: []float64{5, 1, 5}, expected: nil},
		{name: "plateau is not strict", data: []float64{0, 2, 2, 0}, expected: nil},
		{name: "mixed", data: []float64{0, 1, 0, 2, 2, 1, 3, 1}, expected: []int{1, 6}},
		{name: "constant", data: []float64{4, 4, 4, 4}, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LocalMaxima(tt.data))
		})
	}
}
