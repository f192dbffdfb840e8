// Package threshold finds the first instant a channel exceeds a fixed level
// after a lower time bound.
package threshold

import (
	"errors"
	"fmt"

	"github.com/chrissnell/weldphase/internal/changepoint"
	"github.com/chrissnell/weldphase/internal/phase"
)

var (
	// ErrNotFound is returned when no sample after the bound exceeds the threshold
	ErrNotFound = errors.New("threshold not crossed")

	// ErrNoBound is returned when the lower bound itself was not observed
	ErrNoBound = errors.New("lower bound not observed")
)

// Torque rule names, as they appear in the report
const (
	FirstContact = "first_contact"
	PartContact  = "part_contact"
)

// FirstCrossing returns the time of the first sample strictly after lowerBound
// whose value is greater than level. The result is never earlier than lowerBound.
func FirstCrossing(ch changepoint.Channel, lowerBound int64, level float64) (int64, error) {
	for i := 0; i < ch.Len(); i++ {
		s := ch.At(i)
		if s.Time > lowerBound && s.Value > level {
			return s.Time, nil
		}
	}
	return 0, fmt.Errorf("%s: no sample above %g after %d ms: %w", ch.Name, level, lowerBound, ErrNotFound)
}

// Rule is a named threshold applied to a channel
type Rule struct {
	Name      string
	Threshold float64
}

// Outcome is the result of evaluating one rule. Err is nil when Time is present.
type Outcome struct {
	Rule Rule
	Time phase.Time
	Err  error
}

// Evaluate applies every rule to ch with bound as the lower time bound. An absent
// bound makes every outcome absent with ErrNoBound; no default bound is guessed.
func Evaluate(ch changepoint.Channel, bound phase.Time, rules ...Rule) []Outcome {
	outcomes := make([]Outcome, len(rules))
	for i, r := range rules {
		outcomes[i].Rule = r

		lower, ok := bound.Get()
		if !ok {
			outcomes[i].Err = fmt.Errorf("%s: %w", r.Name, ErrNoBound)
			continue
		}

		ts, err := FirstCrossing(ch, lower, r.Threshold)
		if err != nil {
			outcomes[i].Err = fmt.Errorf("%s: %w", r.Name, err)
			continue
		}
		outcomes[i].Time = phase.At(ts)
	}
	return outcomes
}
