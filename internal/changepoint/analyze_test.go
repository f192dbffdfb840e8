package changepoint

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rampConfig responds to a single linear ramp with one peak at each end of it
var rampConfig = DerivativeConfig{
	LowClip: 0, HighClip: 100,
	LowClip2: 0, HighClip2: 10,
	SmoothingWidth1: 3, SmoothingWidth2: 4,
	UseAbsolute1: true, UseAbsolute2: true,
}

// rampChannel is flat at 0 for 40 samples, rises to 1000 over 50 samples and
// stays flat for 60 more. Samples are 10 ms apart.
func rampChannel(t *testing.T) Channel {
	t.Helper()

	samples := make([]Sample, 150)
	for i := range samples {
		v := 0.0
		switch {
		case i >= 40 && i <= 89:
			v = 20 * float64(i-39)
		case i > 89:
			v = 1000
		}
		samples[i] = Sample{Time: int64(i * 10), Value: v}
	}

	ch, err := NewChannel("speed", samples)
	require.NoError(t, err)
	return ch
}

func noisyChannel(t *testing.T, n int, seed int64) Channel {
	t.Helper()

	rng := rand.New(rand.NewSource(seed))
	samples := make([]Sample, n)
	for i := range samples {
		samples[i] = Sample{
			Time:  int64(i),
			Value: 500*math.Sin(float64(i)/15) + rng.NormFloat64()*40,
		}
	}

	ch, err := NewChannel("noisy", samples)
	require.NoError(t, err)
	return ch
}

func TestNewChannelRejectsUnorderedTime(t *testing.T) {
	_, err := NewChannel("force", []Sample{{Time: 0}, {Time: 5}, {Time: 5}})
	require.Error(t, err)

	_, err = NewChannel("force", []Sample{{Time: 3}, {Time: 1}})
	require.Error(t, err)
}

func TestNewChannelCopiesSamples(t *testing.T) {
	samples := []Sample{{Time: 0, Value: 1}, {Time: 1, Value: 2}}
	ch, err := NewChannel("torque", samples)
	require.NoError(t, err)

	samples[0].Value = 100
	assert.Equal(t, 1.0, ch.At(0).Value)
	assert.Equal(t, []int64{0, 1}, ch.Times())
}

func TestAnalyzeRamp(t *testing.T) {
	ch := rampChannel(t)

	chain, points := Analyze(ch, rampConfig)

	require.Len(t, chain.First, ch.Len())
	require.Len(t, chain.Second, ch.Len())
	require.Len(t, points, 2)

	// One peak where the rise starts, one where it ends
	assert.InDelta(t, 390, points[0].Time, 30)
	assert.InDelta(t, 890, points[1].Time, 30)
	assert.Equal(t, 0, points[0].Rank)
	assert.Equal(t, 1, points[1].Rank)

	// The first derivative is a single bump over the rise
	assert.InDelta(t, 20, chain.First[65], 1e-9)
	assert.InDelta(t, 0, chain.First[5], 1e-9)
	assert.InDelta(t, 0, chain.First[140], 1e-9)
}

func TestAnalyzeShortAndConstantChannels(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
	}{
		{name: "empty", samples: nil},
		{name: "one sample", samples: []Sample{{Time: 0, Value: 4}}},
		{name: "two samples", samples: []Sample{{Time: 0, Value: 4}, {Time: 1, Value: 900}}},
		{name: "constant", samples: []Sample{{0, 7}, {1, 7}, {2, 7}, {3, 7}, {4, 7}, {5, 7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, err := NewChannel(tt.name, tt.samples)
			require.NoError(t, err)

			chain, points := Analyze(ch, rampConfig)
			assert.Empty(t, points)
			assert.Len(t, chain.First, len(tt.samples))
			assert.Len(t, chain.Second, len(tt.samples))
		})
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	ch := noisyChannel(t, 400, 7)
	cfg := DerivativeConfig{
		LowClip: -50, HighClip: 50,
		LowClip2: -5, HighClip2: 5,
		SmoothingWidth1: 2, SmoothingWidth2: 3,
	}

	chainA, pointsA := Analyze(ch, cfg)
	chainB, pointsB := Analyze(ch, cfg)

	assert.Equal(t, chainA, chainB)
	assert.Equal(t, pointsA, pointsB)
}

func TestAnalyzeProperties(t *testing.T) {
	configs := []DerivativeConfig{
		rampConfig,
		{LowClip: 0, HighClip: 100, LowClip2: 1.8, HighClip2: 10, SmoothingWidth1: 10, SmoothingWidth2: 4, UseAbsolute1: true},
		{LowClip: -30, HighClip: 30, LowClip2: -2, HighClip2: 2, SmoothingWidth1: 1, SmoothingWidth2: 1},
	}

	for seed := int64(1); seed <= 5; seed++ {
		ch := noisyChannel(t, 300, seed)
		for _, cfg := range configs {
			chain, points := Analyze(ch, cfg)

			// Pre-smoothing samples stay inside the clip bounds
			clipped1, first := derivativeStage(ch.Values(), cfg.UseAbsolute1, cfg.LowClip, cfg.HighClip, cfg.SmoothingWidth1)
			clipped2, _ := derivativeStage(first, cfg.UseAbsolute2, cfg.LowClip2, cfg.HighClip2, cfg.SmoothingWidth2)
			for _, v := range clipped1 {
				require.GreaterOrEqual(t, v, cfg.LowClip)
				require.LessOrEqual(t, v, cfg.HighClip)
			}
			for _, v := range clipped2 {
				require.GreaterOrEqual(t, v, cfg.LowClip2)
				require.LessOrEqual(t, v, cfg.HighClip2)
			}

			// Every change point is a strict local maximum of the second derivative
			index := make(map[int64]int, ch.Len())
			for i, ts := range ch.Times() {
				index[ts] = i
			}
			for _, p := range points {
				i := index[p.Time]
				require.Greater(t, i, 0)
				require.Less(t, i, ch.Len()-1)
				require.Greater(t, chain.Second[i], chain.Second[i-1])
				require.Greater(t, chain.Second[i], chain.Second[i+1])
			}

			// Change point times strictly increase and ranks follow
			for i := 1; i < len(points); i++ {
				require.Greater(t, points[i].Time, points[i-1].Time)
				require.Equal(t, i, points[i].Rank)
			}
		}
	}
}

func TestTimes(t *testing.T) {
	points := []ChangePoint{{Time: 12, Rank: 0}, {Time: 40, Rank: 1}}
	assert.Equal(t, []int64{12, 40}, Times(points))
	assert.Empty(t, Times(nil))
}
