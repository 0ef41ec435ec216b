package config

import "fmt"

type Config struct {
	Engine      EngineConfig      `yaml:"engine"`
	Cameras     []CameraConfig    `yaml:"cameras"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
}

// EngineConfig holds the cut-decision thresholds and windows.
// All durations are in seconds.
type EngineConfig struct {
	TickInterval      float64 `yaml:"tick_interval_seconds"`
	ActivityThreshold float64 `yaml:"activity_threshold"`
	SmoothingAlpha    float64 `yaml:"smoothing_alpha"`
	OverrideMargin    float64 `yaml:"override_margin"`
	SilenceToWide     float64 `yaml:"silence_to_wide_seconds"`
	GuardTime         float64 `yaml:"guard_time_seconds"`
	HysteresisWindow  float64 `yaml:"hysteresis_window_seconds"`
	MinShotLength     float64 `yaml:"min_shot_length_seconds"`
	Lookahead         float64 `yaml:"lookahead_seconds"`
	DefaultWideCamera string  `yaml:"default_wide_camera"`
}

type CameraConfig struct {
	ID      string `yaml:"id"`
	Kind    string `yaml:"kind"` // closeup | wide | cutaway
	Speaker string `yaml:"speaker,omitempty"`
}

type PathsConfig struct {
	Inbox    string `yaml:"inbox"`
	Output   string `yaml:"output"`
	Archived string `yaml:"archived"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// ValidationError reports a configuration problem that must be fixed
// before any session can run.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

const (
	KindCloseup = "closeup"
	KindWide    = "wide"
	KindCutaway = "cutaway"
)

func (c *Config) Validate() error {
	if c.Engine.DefaultWideCamera == "" {
		return &ValidationError{Field: "engine.default_wide_camera", Reason: "is required"}
	}
	if len(c.Cameras) == 0 {
		return &ValidationError{Field: "cameras", Reason: "at least one camera is required"}
	}

	seen := map[string]bool{}
	foundDefault := false
	for i, cam := range c.Cameras {
		if cam.ID == "" {
			return &ValidationError{Field: fmt.Sprintf("cameras[%d].id", i), Reason: "is required"}
		}
		if seen[cam.ID] {
			return &ValidationError{Field: fmt.Sprintf("cameras[%d].id", i), Reason: "duplicate camera id " + cam.ID}
		}
		seen[cam.ID] = true

		switch cam.Kind {
		case KindCloseup:
			if cam.Speaker == "" {
				return &ValidationError{Field: fmt.Sprintf("cameras[%d].speaker", i), Reason: "closeup camera needs a speaker"}
			}
		case KindWide, KindCutaway:
		default:
			return &ValidationError{Field: fmt.Sprintf("cameras[%d].kind", i), Reason: "unknown kind " + cam.Kind}
		}

		if cam.ID == c.Engine.DefaultWideCamera {
			foundDefault = true
			if cam.Kind != KindWide {
				return &ValidationError{Field: "engine.default_wide_camera", Reason: "must reference a wide camera"}
			}
		}
	}
	if !foundDefault {
		return &ValidationError{Field: "engine.default_wide_camera", Reason: "references unknown camera " + c.Engine.DefaultWideCamera}
	}

	for _, f := range []struct {
		name  string
		value float64
	}{
		{"engine.tick_interval_seconds", c.Engine.TickInterval},
		{"engine.activity_threshold", c.Engine.ActivityThreshold},
		{"engine.smoothing_alpha", c.Engine.SmoothingAlpha},
		{"engine.override_margin", c.Engine.OverrideMargin},
		{"engine.silence_to_wide_seconds", c.Engine.SilenceToWide},
		{"engine.guard_time_seconds", c.Engine.GuardTime},
		{"engine.hysteresis_window_seconds", c.Engine.HysteresisWindow},
		{"engine.min_shot_length_seconds", c.Engine.MinShotLength},
		{"engine.lookahead_seconds", c.Engine.Lookahead},
	} {
		if f.value < 0 {
			return &ValidationError{Field: f.name, Reason: "must not be negative"}
		}
	}

	// Fill defaults for anything left at zero
	if c.Engine.TickInterval == 0 {
		c.Engine.TickInterval = 0.1
	}
	if c.Engine.ActivityThreshold == 0 {
		c.Engine.ActivityThreshold = 0.35
	}
	if c.Engine.SmoothingAlpha == 0 {
		c.Engine.SmoothingAlpha = 0.3
	}
	if c.Engine.OverrideMargin == 0 {
		c.Engine.OverrideMargin = 0.2
	}
	if c.Engine.SilenceToWide == 0 {
		c.Engine.SilenceToWide = 2.0
	}
	if c.Engine.GuardTime == 0 {
		c.Engine.GuardTime = 3.0
	}
	if c.Engine.HysteresisWindow == 0 {
		c.Engine.HysteresisWindow = 0.6
	}
	if c.Engine.MinShotLength == 0 {
		c.Engine.MinShotLength = 2.0
	}
	if c.Engine.Lookahead == 0 {
		c.Engine.Lookahead = 1.0
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = "data/inbox"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}

	return nil
}
