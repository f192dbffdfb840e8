package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Defaults returns the configuration tuned on production weld recordings
func Defaults() *ConfigData {
	return &ConfigData{
		Analysis: AnalysisData{
			Force: DerivativeData{
				LowClip: 0, HighClip: 100,
				LowClip2: 1.8, HighClip2: 10,
				SmoothingWidth1: 10, SmoothingWidth2: 4,
				UseAbsolute1: true, UseAbsolute2: false,
			},
			Speed: DerivativeData{
				LowClip: 0, HighClip: 100,
				LowClip2: 5, HighClip2: 10,
				SmoothingWidth1: 3, SmoothingWidth2: 4,
				UseAbsolute1: true, UseAbsolute2: true,
			},
			Position: DerivativeData{
				LowClip: 0, HighClip: 100,
				LowClip2: 5, HighClip2: 10,
				SmoothingWidth1: 2, SmoothingWidth2: 2,
				UseAbsolute1: true, UseAbsolute2: true,
			},
			Torque: TorqueData{
				ContactThreshold:     1000,
				FullContactThreshold: 3000,
				UnitScale:            10,
			},
		},
		Input: InputData{
			Extension: "csv",
			Workers:   runtime.GOMAXPROCS(0),
		},
	}
}

// Validate checks the configuration for values the detector cannot work with
func (c *ConfigData) Validate() error {
	var errs []error

	for _, name := range []string{ChannelForce, ChannelSpeed, ChannelPosition} {
		d := c.Analysis.Channel(name)
		if d.LowClip > d.HighClip {
			errs = append(errs, fmt.Errorf("%s: low-clip %g is above high-clip %g", name, d.LowClip, d.HighClip))
		}
		if d.LowClip2 > d.HighClip2 {
			errs = append(errs, fmt.Errorf("%s: low-clip2 %g is above high-clip2 %g", name, d.LowClip2, d.HighClip2))
		}
		if d.SmoothingWidth1 < 0 || d.SmoothingWidth2 < 0 {
			errs = append(errs, fmt.Errorf("%s: smoothing widths must not be negative", name))
		}
	}

	t := c.Analysis.Torque
	if t.ContactThreshold <= 0 || t.FullContactThreshold <= 0 {
		errs = append(errs, errors.New("torque: thresholds must be positive"))
	}
	if t.UnitScale <= 0 {
		errs = append(errs, errors.New("torque: unit-scale must be positive"))
	}

	if strings.TrimSpace(c.Input.Extension) == "" {
		errs = append(errs, errors.New("input: extension must not be empty"))
	}
	if c.Input.Workers < 1 {
		errs = append(errs, fmt.Errorf("input: workers must be at least 1, got %d", c.Input.Workers))
	}

	return errors.Join(errs...)
}
