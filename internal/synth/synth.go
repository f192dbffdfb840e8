// Package synth generates synthetic friction weld cycles. Every channel is a
// base level plus a sum of linear ramps, so the instants where the process
// changes phase are known exactly.
package synth

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/chrissnell/weldphase/internal/changepoint"
	"github.com/chrissnell/weldphase/internal/ingest"
	"github.com/chrissnell/weldphase/internal/record"
)

// Ramp changes a channel by Delta, linearly, between At and At+For (ms)
type Ramp struct {
	At    int64
	For   int64
	Delta float64
}

// Profile describes one weld cycle. Torque is in N·mm.
type Profile struct {
	Step     int64 // ms between samples
	Duration int64

	PositionBase float64
	Speed        []Ramp
	Position     []Ramp
	Torque       []Ramp
	Force        []Ramp

	// Noise is the standard deviation of the Gaussian noise added to every
	// channel, relative to the channel's largest excursion
	Noise float64
	Seed  int64

	Metadata record.Metadata
}

// Default timeline of a cycle, in ms
const (
	SpinUpAt   = 200
	DescendAt  = 300
	ContactAt  = 780
	UpsetAt    = 800
	ForgeAt    = 1200
	FixAt      = 1300
	SlowDownAt = 2800
	ReleaseAt  = 3300
	RetractAt  = 3400
)

// DefaultProfile is a noise-free cycle: the spindle spins up to 1500 rpm, the
// head descends 15 mm and touches the part, then keeps going at half speed
// while the part is upset by another 7.5 mm. Torque and force build up in two
// steps. The head is held until the spindle stops, the force is released and
// the head retracts.
func DefaultProfile() Profile {
	return Profile{
		Step:         2,
		Duration:     4000,
		PositionBase: 60000,
		Speed: []Ramp{
			{At: SpinUpAt, For: 50, Delta: 1500},
			{At: SlowDownAt, For: 50, Delta: -1500},
		},
		Position: []Ramp{
			{At: DescendAt, For: UpsetAt - DescendAt, Delta: -15000},
			{At: UpsetAt, For: FixAt - UpsetAt, Delta: -7500},
			{At: RetractAt, For: 400, Delta: 22500},
		},
		Torque: []Ramp{
			{At: ContactAt, For: 40, Delta: 2000},
			{At: 1000, For: 200, Delta: 3000},
			{At: SlowDownAt, For: 300, Delta: -5000},
		},
		Force: []Ramp{
			{At: ContactAt, For: 80, Delta: 4000},
			{At: ForgeAt, For: 120, Delta: 6000},
			{At: ReleaseAt, For: 200, Delta: -10000},
		},
		Metadata: record.Metadata{
			PartNumber:          "SYN-0001",
			ReportDate:          "2024-01-01",
			ReportPartContact:   "780",
			ReportPartReduction: "7.5",
			Flatness1:           "0.10",
			Flatness2:           "0.12",
			AngleDeviation:      "0.2",
		},
	}
}

// Generate samples p into a recording. Values are rounded to integers, as the
// machine stores them.
func Generate(p Profile) (ingest.Recording, error) {
	if p.Step <= 0 {
		return ingest.Recording{}, fmt.Errorf("step must be positive, got %d", p.Step)
	}
	if p.Duration < 0 {
		return ingest.Recording{}, fmt.Errorf("duration must not be negative, got %d", p.Duration)
	}

	rng := rand.New(rand.NewSource(p.Seed))
	n := int(p.Duration/p.Step) + 1

	build := func(name string, base float64, ramps []Ramp) (changepoint.Channel, error) {
		sigma := p.Noise * excursion(ramps)
		samples := make([]changepoint.Sample, n)
		for i := range samples {
			t := int64(i) * p.Step
			v := base + level(ramps, t)
			if sigma > 0 {
				v += rng.NormFloat64() * sigma
			}
			samples[i] = changepoint.Sample{Time: t, Value: math.Round(v)}
		}
		return changepoint.NewChannel(name, samples)
	}

	rec := ingest.Recording{Source: "synthetic", Metadata: p.Metadata}

	var err error
	if rec.Position, err = build(ingest.Position, p.PositionBase, p.Position); err != nil {
		return rec, err
	}
	if rec.Speed, err = build(ingest.Speed, 0, p.Speed); err != nil {
		return rec, err
	}
	if rec.Torque, err = build(ingest.Torque, 0, p.Torque); err != nil {
		return rec, err
	}
	if rec.Force, err = build(ingest.Force, 0, p.Force); err != nil {
		return rec, err
	}
	return rec, nil
}

// Batch returns n cycles of p with per-cycle seeds and part numbers
func Batch(p Profile, n int) ([]ingest.Recording, error) {
	recs := make([]ingest.Recording, 0, n)
	for i := 0; i < n; i++ {
		q := p
		q.Seed = p.Seed + int64(i)
		q.Metadata.PartNumber = fmt.Sprintf("%s-%04d", p.Metadata.PartNumber, i+1)

		rec, err := Generate(q)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func level(ramps []Ramp, t int64) float64 {
	var v float64
	for _, r := range ramps {
		switch {
		case t <= r.At:
		case r.For <= 0 || t >= r.At+r.For:
			v += r.Delta
		default:
			v += r.Delta * float64(t-r.At) / float64(r.For)
		}
	}
	return v
}

func excursion(ramps []Ramp) float64 {
	var lo, hi, v float64
	for _, r := range ramps {
		v += r.Delta
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return hi - lo
}
