// Package changepoint turns a sensor channel into smoothed first and second
// derivatives and extracts the instants where the second derivative peaks.
// Those peaks mark the onset or end of an acceleration and are used as phase
// transition candidates by the phase package.
package changepoint

import "fmt"

// Sample is a single (time, value) reading of a channel. Time is in milliseconds.
type Sample struct {
	Time  int64
	Value float64
}

// Channel is one sensor's series for one weld cycle
type Channel struct {
	Name    string
	samples []Sample
}

// NewChannel builds a Channel from samples whose times must be strictly increasing.
// The samples are copied so the channel stays immutable.
func NewChannel(name string, samples []Sample) (Channel, error) {
	for i := 1; i < len(samples); i++ {
		if samples[i].Time <= samples[i-1].Time {
			return Channel{}, fmt.Errorf("channel %s: time %d at index %d is not after %d",
				name, samples[i].Time, i, samples[i-1].Time)
		}
	}

	owned := make([]Sample, len(samples))
	copy(owned, samples)
	return Channel{Name: name, samples: owned}, nil
}

// Len returns the number of samples
func (c Channel) Len() int {
	return len(c.samples)
}

// At returns the i-th sample
func (c Channel) At(i int) Sample {
	return c.samples[i]
}

// Values returns a fresh copy of the channel's values
func (c Channel) Values() []float64 {
	values := make([]float64, len(c.samples))
	for i, s := range c.samples {
		values[i] = s.Value
	}
	return values
}

// Times returns a fresh copy of the channel's timestamps
func (c Channel) Times() []int64 {
	times := make([]int64, len(c.samples))
	for i, s := range c.samples {
		times[i] = s.Time
	}
	return times
}
