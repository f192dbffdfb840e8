// Package weld runs the full phase analysis of one weld recording: change point
// detection on the speed, force and position channels, phase naming, the torque
// contact rules and assembly of the report record.
package weld

import (
	"errors"

	"github.com/chrissnell/weldphase/internal/changepoint"
	"github.com/chrissnell/weldphase/internal/ingest"
	"github.com/chrissnell/weldphase/internal/phase"
	"github.com/chrissnell/weldphase/internal/record"
	"github.com/chrissnell/weldphase/internal/threshold"
	"github.com/chrissnell/weldphase/pkg/config"
)

// Analyzer holds the tuned detector settings. It keeps no per-file state and is
// safe for concurrent use.
type Analyzer struct {
	speed    changepoint.DerivativeConfig
	force    changepoint.DerivativeConfig
	position changepoint.DerivativeConfig
	rules    []threshold.Rule
}

// ChannelResult is the analysis of one channel
type ChannelResult struct {
	Name         string
	Chain        changepoint.DerivativeChain
	ChangePoints []changepoint.ChangePoint
	Phases       phase.Mapping
}

// Result is the outcome of analyzing one recording
type Result struct {
	Record record.ProcessRecord

	Speed    ChannelResult
	Force    ChannelResult
	Position ChannelResult

	// Thresholds holds one outcome per torque rule
	Thresholds []threshold.Outcome
}

// New returns an Analyzer for the given settings
func New(a config.AnalysisData) *Analyzer {
	return &Analyzer{
		speed:    derivativeConfig(a.Speed),
		force:    derivativeConfig(a.Force),
		position: derivativeConfig(a.Position),
		rules: []threshold.Rule{
			{Name: threshold.FirstContact, Threshold: a.Torque.ContactThreshold},
			{Name: threshold.PartContact, Threshold: a.Torque.FullContactThreshold},
		},
	}
}

// Analyze labels the phases of rec and builds its report record. Missing phases
// and uncrossed thresholds become absent fields; Analyze never fails.
func (a *Analyzer) Analyze(rec ingest.Recording) Result {
	res := Result{
		Speed:    analyzeChannel(rec.Speed, a.speed, phase.SpeedPhases),
		Force:    analyzeChannel(rec.Force, a.force, phase.ForcePhases),
		Position: analyzeChannel(rec.Position, a.position, phase.PositionPhases),
	}

	bound := res.Position.Phases.Get(phase.PositionAscending)
	res.Thresholds = threshold.Evaluate(rec.Torque, bound, a.rules...)

	contact := res.Thresholds[0].Time
	fullContact := res.Thresholds[1].Time

	res.Record = record.Build(rec.Source, rec.Metadata,
		res.Speed.Phases, res.Force.Phases, res.Position.Phases,
		contact, fullContact)

	return res
}

// Channels returns the three channel results in a fixed order
func (r Result) Channels() []ChannelResult {
	return []ChannelResult{r.Speed, r.Force, r.Position}
}

// ThresholdsNotFound returns the names of the rules that produced no time.
// Rules skipped because the bound was absent are included.
func (r Result) ThresholdsNotFound() []string {
	var names []string
	for _, o := range r.Thresholds {
		if o.Err != nil {
			names = append(names, o.Rule.Name)
		}
	}
	return names
}

// BoundMissing reports whether the torque rules were skipped for lack of a bound
func (r Result) BoundMissing() bool {
	for _, o := range r.Thresholds {
		if errors.Is(o.Err, threshold.ErrNoBound) {
			return true
		}
	}
	return false
}

func analyzeChannel(ch changepoint.Channel, cfg changepoint.DerivativeConfig, names []string) ChannelResult {
	chain, points := changepoint.Analyze(ch, cfg)
	return ChannelResult{
		Name:         ch.Name,
		Chain:        chain,
		ChangePoints: points,
		Phases:       phase.Assign(points, names),
	}
}

func derivativeConfig(d config.DerivativeData) changepoint.DerivativeConfig {
	return changepoint.DerivativeConfig{
		LowClip:         d.LowClip,
		HighClip:        d.HighClip,
		LowClip2:        d.LowClip2,
		HighClip2:       d.HighClip2,
		SmoothingWidth1: d.SmoothingWidth1,
		SmoothingWidth2: d.SmoothingWidth2,
		UseAbsolute1:    d.UseAbsolute1,
		UseAbsolute2:    d.UseAbsolute2,
	}
}
