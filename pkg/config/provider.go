package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	Close() error
}

// Channel names used as keys by the providers
const (
	ChannelForce    = "force"
	ChannelSpeed    = "speed"
	ChannelPosition = "position"
)

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Analysis AnalysisData `json:"analysis"`
	Input    InputData    `json:"input"`
	Output   OutputData   `json:"output,omitempty"`
}

// AnalysisData holds the domain-tuned constants of the phase detector
type AnalysisData struct {
	Force    DerivativeData `json:"force"`
	Speed    DerivativeData `json:"speed"`
	Position DerivativeData `json:"position"`
	Torque   TorqueData     `json:"torque"`
}

// DerivativeData tunes the abs/clip/smooth derivative stages for one channel
type DerivativeData struct {
	LowClip         float64 `json:"low_clip"`
	HighClip        float64 `json:"high_clip"`
	LowClip2        float64 `json:"low_clip2"`
	HighClip2       float64 `json:"high_clip2"`
	SmoothingWidth1 float64 `json:"smoothing_width1"`
	SmoothingWidth2 float64 `json:"smoothing_width2"`
	UseAbsolute1    bool    `json:"use_absolute1"`
	UseAbsolute2    bool    `json:"use_absolute2"`
}

// TorqueData holds the torque contact rules. Thresholds are in N·mm, after the
// raw N·cm readings are multiplied by UnitScale.
type TorqueData struct {
	ContactThreshold     float64 `json:"contact_threshold"`
	FullContactThreshold float64 `json:"full_contact_threshold"`
	UnitScale            float64 `json:"unit_scale"`
}

// InputData controls file discovery and the worker pool
type InputData struct {
	Extension string `json:"extension"`
	Workers   int    `json:"workers"`
}

// OutputData lists the report sinks to write. Empty values disable a sink.
type OutputData struct {
	XLSX            string `json:"xlsx,omitempty" yaml:"xlsx,omitempty"`
	CSV             string `json:"csv,omitempty" yaml:"csv,omitempty"`
	JSON            string `json:"json,omitempty" yaml:"json,omitempty"`
	MsgPack         string `json:"msgpack,omitempty" yaml:"msgpack,omitempty"`
	SQLite          string `json:"sqlite,omitempty" yaml:"sqlite,omitempty"`
	Postgres        string `json:"postgres,omitempty" yaml:"postgres,omitempty"`
	MetricsTextfile string `json:"metrics_textfile,omitempty" yaml:"metrics-textfile,omitempty"`
	Table           bool   `json:"table,omitempty" yaml:"table,omitempty"`
}

// Channel returns the derivative settings for the named channel
func (a *AnalysisData) Channel(name string) *DerivativeData {
	switch name {
	case ChannelForce:
		return &a.Force
	case ChannelSpeed:
		return &a.Speed
	case ChannelPosition:
		return &a.Position
	}
	return nil
}
