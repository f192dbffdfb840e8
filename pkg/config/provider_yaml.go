package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files.
// Keys missing from the file keep their default values.
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	if y.config != nil {
		return y.config, nil
	}

	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig ConfigYAML
	if err := yaml.Unmarshal(cfgFile, &yamlConfig); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", y.filename, err)
	}

	// Overlay onto our internal format
	config := Defaults()
	yamlConfig.apply(config)

	y.config = config
	return config, nil
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// MarshalYAML renders c in the YAML file format, for `config show`
func MarshalYAML(c *ConfigData) ([]byte, error) {
	out := ConfigYAML{
		Analysis: &AnalysisYAML{
			Force:    derivativeToYAML(c.Analysis.Force),
			Speed:    derivativeToYAML(c.Analysis.Speed),
			Position: derivativeToYAML(c.Analysis.Position),
			Torque: &TorqueYAML{
				ContactThreshold:     &c.Analysis.Torque.ContactThreshold,
				FullContactThreshold: &c.Analysis.Torque.FullContactThreshold,
				UnitScale:            &c.Analysis.Torque.UnitScale,
			},
		},
		Input: &InputYAML{
			Extension: &c.Input.Extension,
			Workers:   &c.Input.Workers,
		},
		Output: &c.Output,
	}
	return yaml.Marshal(out)
}

// YAML-specific structs. Pointers distinguish a missing key from a zero value.
type ConfigYAML struct {
	Analysis *AnalysisYAML `yaml:"analysis,omitempty"`
	Input    *InputYAML    `yaml:"input,omitempty"`
	Output   *OutputData   `yaml:"output,omitempty"`
}

type AnalysisYAML struct {
	Force    *DerivativeYAML `yaml:"force,omitempty"`
	Speed    *DerivativeYAML `yaml:"speed,omitempty"`
	Position *DerivativeYAML `yaml:"position,omitempty"`
	Torque   *TorqueYAML     `yaml:"torque,omitempty"`
}

type DerivativeYAML struct {
	LowClip         *float64 `yaml:"low-clip,omitempty"`
	HighClip        *float64 `yaml:"high-clip,omitempty"`
	LowClip2        *float64 `yaml:"low-clip2,omitempty"`
	HighClip2       *float64 `yaml:"high-clip2,omitempty"`
	SmoothingWidth1 *float64 `yaml:"smoothing-width1,omitempty"`
	SmoothingWidth2 *float64 `yaml:"smoothing-width2,omitempty"`
	UseAbsolute1    *bool    `yaml:"use-absolute1,omitempty"`
	UseAbsolute2    *bool    `yaml:"use-absolute2,omitempty"`
}

type TorqueYAML struct {
	ContactThreshold     *float64 `yaml:"contact-threshold,omitempty"`
	FullContactThreshold *float64 `yaml:"full-contact-threshold,omitempty"`
	UnitScale            *float64 `yaml:"unit-scale,omitempty"`
}

type InputYAML struct {
	Extension *string `yaml:"extension,omitempty"`
	Workers   *int    `yaml:"workers,omitempty"`
}

func (c ConfigYAML) apply(config *ConfigData) {
	if a := c.Analysis; a != nil {
		a.Force.apply(&config.Analysis.Force)
		a.Speed.apply(&config.Analysis.Speed)
		a.Position.apply(&config.Analysis.Position)
		if t := a.Torque; t != nil {
			setFloat(&config.Analysis.Torque.ContactThreshold, t.ContactThreshold)
			setFloat(&config.Analysis.Torque.FullContactThreshold, t.FullContactThreshold)
			setFloat(&config.Analysis.Torque.UnitScale, t.UnitScale)
		}
	}

	if in := c.Input; in != nil {
		if in.Extension != nil {
			config.Input.Extension = *in.Extension
		}
		if in.Workers != nil {
			config.Input.Workers = *in.Workers
		}
	}

	if c.Output != nil {
		config.Output = *c.Output
	}
}

func (d *DerivativeYAML) apply(target *DerivativeData) {
	if d == nil {
		return
	}
	setFloat(&target.LowClip, d.LowClip)
	setFloat(&target.HighClip, d.HighClip)
	setFloat(&target.LowClip2, d.LowClip2)
	setFloat(&target.HighClip2, d.HighClip2)
	setFloat(&target.SmoothingWidth1, d.SmoothingWidth1)
	setFloat(&target.SmoothingWidth2, d.SmoothingWidth2)
	if d.UseAbsolute1 != nil {
		target.UseAbsolute1 = *d.UseAbsolute1
	}
	if d.UseAbsolute2 != nil {
		target.UseAbsolute2 = *d.UseAbsolute2
	}
}

func derivativeToYAML(d DerivativeData) *DerivativeYAML {
	return &DerivativeYAML{
		LowClip:         &d.LowClip,
		HighClip:        &d.HighClip,
		LowClip2:        &d.LowClip2,
		HighClip2:       &d.HighClip2,
		SmoothingWidth1: &d.SmoothingWidth1,
		SmoothingWidth2: &d.SmoothingWidth2,
		UseAbsolute1:    &d.UseAbsolute1,
		UseAbsolute2:    &d.UseAbsolute2,
	}
}

func setFloat(target *float64, v *float64) {
	if v != nil {
		*target = *v
	}
}
