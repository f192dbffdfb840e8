package changepoint

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// gaussianTruncate is the number of standard deviations covered by the kernel
const gaussianTruncate = 4.0

// Gradient computes the discrete derivative of data with unit spacing.
// Interior points use the centered difference, the two boundary points use
// forward and backward differences.
func Gradient(data []float64) []float64 {
	n := len(data)
	grad := make([]float64, n)
	if n < 2 {
		return grad
	}

	grad[0] = data[1] - data[0]
	for i := 1; i < n-1; i++ {
		grad[i] = (data[i+1] - data[i-1]) / 2
	}
	grad[n-1] = data[n-1] - data[n-2]

	return grad
}

// Abs replaces every element of data with its absolute value, in place
func Abs(data []float64) {
	for i, v := range data {
		data[i] = math.Abs(v)
	}
}

// Clip bounds every element of data into [low, high], in place
func Clip(data []float64, low, high float64) {
	for i, v := range data {
		switch {
		case v < low:
			data[i] = low
		case v > high:
			data[i] = high
		}
	}
}

// GaussianKernel returns the normalized Gaussian weights for sigma, covering
// gaussianTruncate standard deviations on each side.
func GaussianKernel(sigma float64) []float64 {
	if sigma <= 0 {
		return []float64{1}
	}

	radius := int(gaussianTruncate*sigma + 0.5)
	kernel := make([]float64, 2*radius+1)
	for x := -radius; x <= radius; x++ {
		kernel[x+radius] = math.Exp(-0.5 * float64(x*x) / (sigma * sigma))
	}
	floats.Scale(1/floats.Sum(kernel), kernel)

	return kernel
}

// GaussianFilter1D smooths data with a Gaussian kernel of standard deviation sigma.
// Samples beyond the edges are taken from the half-sample symmetric reflection
// of the input (d c b a | a b c d | d c b a). A non-positive sigma returns a copy.
func GaussianFilter1D(data []float64, sigma float64) []float64 {
	n := len(data)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if sigma <= 0 {
		copy(out, data)
		return out
	}

	kernel := GaussianKernel(sigma)
	radius := len(kernel) / 2

	for i := 0; i < n; i++ {
		sum := 0.0
		for k := -radius; k <= radius; k++ {
			sum += kernel[k+radius] * data[reflectIndex(i+k, n)]
		}
		out[i] = sum
	}

	return out
}

// reflectIndex maps an out-of-range index back into [0, n) by half-sample
// symmetric reflection
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// LocalMaxima returns the indices of strict local maxima of data, in ascending
// order. An index qualifies only when its value is greater than both neighbours,
// so the first and last samples never qualify.
func LocalMaxima(data []float64) []int {
	var maxima []int
	for i := 1; i < len(data)-1; i++ {
		if data[i] > data[i-1] && data[i] > data[i+1] {
			maxima = append(maxima, i)
		}
	}
	return maxima
}
