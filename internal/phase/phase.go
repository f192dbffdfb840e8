// Package phase names the change points of a channel with the channel's fixed,
// ordered phase vocabulary. A phase that was not detected is an explicit absent
// value rather than a missing key.
package phase

import (
	"strconv"

	"github.com/chrissnell/weldphase/internal/changepoint"
)

// Speed channel phases, in the order they occur during a weld cycle
const (
	SpeedStartsSpinning = "speed_starts_spinning"
	SpeedStabilizes     = "speed_stabilizes"
	SpeedSlowingDown    = "speed_slowing_down"
	SpeedStops          = "speed_stops"
)

// Force channel phases
const (
	ForceFirstRising  = "force_first_rising"
	ForceSecondRising = "force_second_rising"
	ForceFalling      = "force_falling"
)

// Position channel phases
const (
	PositionAscending  = "position_ascending"
	PositionFirstBump  = "position_first_bump"
	PositionStabilizes = "position_stabilizes"
	PositionDescending = "position_descending"
)

// Vocabularies per channel. Only as many change points as names are ever used.
var (
	SpeedPhases    = []string{SpeedStartsSpinning, SpeedStabilizes, SpeedSlowingDown, SpeedStops}
	ForcePhases    = []string{ForceFirstRising, ForceSecondRising, ForceFalling}
	PositionPhases = []string{PositionAscending, PositionFirstBump, PositionStabilizes, PositionDescending}
)

// Time is an optional timestamp in milliseconds
type Time struct {
	Ms    int64
	Valid bool
}

// Absent is the zero Time, used for phases that were not observed
var Absent = Time{}

// At returns a present Time
func At(ms int64) Time {
	return Time{Ms: ms, Valid: true}
}

// Get returns the timestamp and whether it is present
func (t Time) Get() (int64, bool) {
	return t.Ms, t.Valid
}

// Value returns the timestamp or nil when absent
func (t Time) Value() any {
	if !t.Valid {
		return nil
	}
	return t.Ms
}

func (t Time) String() string {
	if !t.Valid {
		return "absent"
	}
	return strconv.FormatInt(t.Ms, 10)
}

// Label is one named phase of a channel
type Label struct {
	Name string
	Time Time
}

// Mapping is the ordered result of naming a channel's change points
type Mapping struct {
	labels []Label
}

// Assign zips names against points positionally: the k-th name receives the
// k-th change point. Names without a change point are kept with an absent time,
// change points beyond the last name are dropped.
func Assign(points []changepoint.ChangePoint, names []string) Mapping {
	labels := make([]Label, len(names))
	for i, name := range names {
		labels[i] = Label{Name: name}
		if i < len(points) {
			labels[i].Time = At(points[i].Time)
		}
	}
	return Mapping{labels: labels}
}

// Get returns the time assigned to name. Unknown names are absent.
func (m Mapping) Get(name string) Time {
	for _, l := range m.labels {
		if l.Name == name {
			return l.Time
		}
	}
	return Absent
}

// Labels returns a copy of the labels in vocabulary order
func (m Mapping) Labels() []Label {
	out := make([]Label, len(m.labels))
	copy(out, m.labels)
	return out
}

// Assigned returns how many names received a change point
func (m Mapping) Assigned() int {
	n := 0
	for _, l := range m.labels {
		if l.Time.Valid {
			n++
		}
	}
	return n
}

// Missing returns the names left without a change point, in order
func (m Mapping) Missing() []string {
	var missing []string
	for _, l := range m.labels {
		if !l.Time.Valid {
			missing = append(missing, l.Name)
		}
	}
	return missing
}
