package changepoint

// DerivativeConfig tunes the two abs/clip/smooth stages for one channel type
type DerivativeConfig struct {
	// LowClip and HighClip bound the raw first derivative before smoothing
	LowClip  float64
	HighClip float64

	// LowClip2 and HighClip2 bound the raw second derivative before smoothing
	LowClip2  float64
	HighClip2 float64

	// SmoothingWidth1 and SmoothingWidth2 are the Gaussian sigmas, in samples
	SmoothingWidth1 float64
	SmoothingWidth2 float64

	UseAbsolute1 bool
	UseAbsolute2 bool
}

// DerivativeChain holds the smoothed derivatives of a channel, aligned with its samples
type DerivativeChain struct {
	First  []float64
	Second []float64
}

// ChangePoint is a detected phase transition candidate. Rank is its position
// among the channel's change points, ascending by time.
type ChangePoint struct {
	Time int64
	Rank int
}

// Analyze computes the derivative chain of channel under cfg and returns the
// strict local maxima of the second derivative as change points, ordered by time.
// Channels with fewer than three samples or a constant signal yield no change points.
func Analyze(channel Channel, cfg DerivativeConfig) (DerivativeChain, []ChangePoint) {
	_, first := derivativeStage(channel.Values(), cfg.UseAbsolute1, cfg.LowClip, cfg.HighClip, cfg.SmoothingWidth1)
	_, second := derivativeStage(first, cfg.UseAbsolute2, cfg.LowClip2, cfg.HighClip2, cfg.SmoothingWidth2)

	maxima := LocalMaxima(second)
	points := make([]ChangePoint, 0, len(maxima))
	for rank, idx := range maxima {
		points = append(points, ChangePoint{
			Time: channel.At(idx).Time,
			Rank: rank,
		})
	}

	return DerivativeChain{First: first, Second: second}, points
}

// Times returns the times of points in order
func Times(points []ChangePoint) []int64 {
	times := make([]int64, len(points))
	for i, p := range points {
		times[i] = p.Time
	}
	return times
}

// derivativeStage runs gradient, optional abs, clip and Gaussian smoothing over
// data. It returns the clipped series fed to the filter and the smoothed result.
func derivativeStage(data []float64, useAbs bool, low, high, sigma float64) (clipped, smoothed []float64) {
	clipped = Gradient(data)
	if useAbs {
		Abs(clipped)
	}
	Clip(clipped, low, high)

	return clipped, GaussianFilter1D(clipped, sigma)
}
