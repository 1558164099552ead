package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig holds the live-guidance thresholds and polling cadence. The
// schema matches the /api/params endpoint so the same JSON serves both
// startup configuration and runtime updates. All thresholds are expressed in
// normalized image coordinates; the final-measurement clinical ranges are
// fixed constants in the analysis package, not tunable here.
type TuningConfig struct {
	// Frontal live checks
	FrontalCenterMin *float64 `json:"frontal_center_min,omitempty"`
	FrontalCenterMax *float64 `json:"frontal_center_max,omitempty"`
	ShoulderDeltaMax *float64 `json:"shoulder_delta_max,omitempty"`
	HipDeltaMax      *float64 `json:"hip_delta_max,omitempty"`

	// Sagittal live checks
	SagittalCenterMin  *float64 `json:"sagittal_center_min,omitempty"`
	SagittalCenterMax  *float64 `json:"sagittal_center_max,omitempty"`
	ColumnDeviationMax *float64 `json:"column_deviation_max,omitempty"`
	HeadOffsetMax      *float64 `json:"head_offset_max,omitempty"`

	// Shared gates
	MinLiveConfidence   *float64 `json:"min_live_confidence,omitempty"`
	VisibilityThreshold *float64 `json:"visibility_threshold,omitempty"`

	// Polling params
	PollInterval     *string `json:"poll_interval,omitempty"`      // duration string like "2s"
	FrameGrabTimeout *string `json:"frame_grab_timeout,omitempty"` // duration string like "500ms"
	DetectorTimeout  *string `json:"detector_timeout,omitempty"`   // duration string like "3s"
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields omitted
// from the JSON retain their defaults via the Get* accessors, so partial
// configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath, searching the current directory and common parent
// directories. Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from internal/pose/liveguard/
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	for _, check := range []struct {
		name string
		v    *float64
	}{
		{"frontal_center_min", c.FrontalCenterMin},
		{"frontal_center_max", c.FrontalCenterMax},
		{"shoulder_delta_max", c.ShoulderDeltaMax},
		{"hip_delta_max", c.HipDeltaMax},
		{"sagittal_center_min", c.SagittalCenterMin},
		{"sagittal_center_max", c.SagittalCenterMax},
		{"column_deviation_max", c.ColumnDeviationMax},
		{"head_offset_max", c.HeadOffsetMax},
		{"min_live_confidence", c.MinLiveConfidence},
		{"visibility_threshold", c.VisibilityThreshold},
	} {
		if check.v != nil && (*check.v < 0 || *check.v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", check.name, *check.v)
		}
	}

	if c.FrontalCenterMin != nil && c.FrontalCenterMax != nil && *c.FrontalCenterMin >= *c.FrontalCenterMax {
		return fmt.Errorf("frontal_center_min %f must be below frontal_center_max %f", *c.FrontalCenterMin, *c.FrontalCenterMax)
	}
	if c.SagittalCenterMin != nil && c.SagittalCenterMax != nil && *c.SagittalCenterMin >= *c.SagittalCenterMax {
		return fmt.Errorf("sagittal_center_min %f must be below sagittal_center_max %f", *c.SagittalCenterMin, *c.SagittalCenterMax)
	}

	for _, check := range []struct {
		name string
		v    *string
	}{
		{"poll_interval", c.PollInterval},
		{"frame_grab_timeout", c.FrameGrabTimeout},
		{"detector_timeout", c.DetectorTimeout},
	} {
		if check.v != nil && *check.v != "" {
			if _, err := time.ParseDuration(*check.v); err != nil {
				return fmt.Errorf("invalid %s '%s': %w", check.name, *check.v, err)
			}
		}
	}

	return nil
}

// GetFrontalCenterMin returns the frontal_center_min value or the default.
func (c *TuningConfig) GetFrontalCenterMin() float64 {
	if c.FrontalCenterMin == nil {
		return 0.35
	}
	return *c.FrontalCenterMin
}

// GetFrontalCenterMax returns the frontal_center_max value or the default.
func (c *TuningConfig) GetFrontalCenterMax() float64 {
	if c.FrontalCenterMax == nil {
		return 0.65
	}
	return *c.FrontalCenterMax
}

// GetShoulderDeltaMax returns the shoulder_delta_max value or the default.
func (c *TuningConfig) GetShoulderDeltaMax() float64 {
	if c.ShoulderDeltaMax == nil {
		return 0.04
	}
	return *c.ShoulderDeltaMax
}

// GetHipDeltaMax returns the hip_delta_max value or the default.
func (c *TuningConfig) GetHipDeltaMax() float64 {
	if c.HipDeltaMax == nil {
		return 0.04
	}
	return *c.HipDeltaMax
}

// GetSagittalCenterMin returns the sagittal_center_min value or the default.
func (c *TuningConfig) GetSagittalCenterMin() float64 {
	if c.SagittalCenterMin == nil {
		return 0.25
	}
	return *c.SagittalCenterMin
}

// GetSagittalCenterMax returns the sagittal_center_max value or the default.
func (c *TuningConfig) GetSagittalCenterMax() float64 {
	if c.SagittalCenterMax == nil {
		return 0.75
	}
	return *c.SagittalCenterMax
}

// GetColumnDeviationMax returns the column_deviation_max value or the default.
func (c *TuningConfig) GetColumnDeviationMax() float64 {
	if c.ColumnDeviationMax == nil {
		return 0.08
	}
	return *c.ColumnDeviationMax
}

// GetHeadOffsetMax returns the head_offset_max value or the default.
func (c *TuningConfig) GetHeadOffsetMax() float64 {
	if c.HeadOffsetMax == nil {
		return 0.12
	}
	return *c.HeadOffsetMax
}

// GetMinLiveConfidence returns the min_live_confidence value or the default.
func (c *TuningConfig) GetMinLiveConfidence() float64 {
	if c.MinLiveConfidence == nil {
		return 0.4
	}
	return *c.MinLiveConfidence
}

// GetVisibilityThreshold returns the visibility_threshold value or the default.
func (c *TuningConfig) GetVisibilityThreshold() float64 {
	if c.VisibilityThreshold == nil {
		return 0.5
	}
	return *c.VisibilityThreshold
}

// GetPollInterval parses and returns the PollInterval as a time.Duration.
func (c *TuningConfig) GetPollInterval() time.Duration {
	if c.PollInterval == nil || *c.PollInterval == "" {
		return 2 * time.Second
	}
	d, err := time.ParseDuration(*c.PollInterval)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// GetFrameGrabTimeout parses and returns the FrameGrabTimeout as a time.Duration.
func (c *TuningConfig) GetFrameGrabTimeout() time.Duration {
	if c.FrameGrabTimeout == nil || *c.FrameGrabTimeout == "" {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(*c.FrameGrabTimeout)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// GetDetectorTimeout parses and returns the DetectorTimeout as a time.Duration.
func (c *TuningConfig) GetDetectorTimeout() time.Duration {
	if c.DetectorTimeout == nil || *c.DetectorTimeout == "" {
		return 3 * time.Second
	}
	d, err := time.ParseDuration(*c.DetectorTimeout)
	if err != nil {
		return 3 * time.Second
	}
	return d
}
