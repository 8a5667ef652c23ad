package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for focus-engine tuning
// parameters. All fields are pointers so partial JSON configs are safe:
// omitted fields fall back to the Get* defaults.
type TuningConfig struct {
	// Position smoothing
	PositionBufferSize *int `json:"position_buffer_size,omitempty"`

	// Distance-based scale curve. Below near_distance_meters the scale is
	// distance/near_distance_meters; at or beyond it the scale is
	// far_scale_slope*distance + far_scale_intercept. The two branches must
	// agree at the boundary.
	NearDistanceMeters *float64 `json:"near_distance_meters,omitempty"`
	FarScaleSlope      *float64 `json:"far_scale_slope,omitempty"`
	FarScaleIntercept  *float64 `json:"far_scale_intercept,omitempty"`

	// Orientation hysteresis
	TiltThresholdRad        *float64 `json:"tilt_threshold_rad,omitempty"`
	OrientationRefreshTicks *int     `json:"orientation_refresh_ticks,omitempty"`

	// Billboard placement
	BillboardOffsetMeters *float64 `json:"billboard_offset_meters,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the
// max file size. Fields omitted from the JSON file retain their default
// values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
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
// DefaultConfigPath. It searches for the file in the current directory and
// common parent directories. Panics if the file cannot be loaded, intended
// for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// ScaleContinuityTolerance is the allowed mismatch between the near and far
// scale branches at the near-distance boundary. Both branches must evaluate
// to 1.0 there or the indicator visibly pops as the camera crosses it.
const ScaleContinuityTolerance = 1e-6

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.PositionBufferSize != nil {
		if *c.PositionBufferSize < 1 {
			return fmt.Errorf("position_buffer_size must be at least 1, got %d", *c.PositionBufferSize)
		}
	}

	if c.NearDistanceMeters != nil {
		if *c.NearDistanceMeters <= 0 {
			return fmt.Errorf("near_distance_meters must be positive, got %f", *c.NearDistanceMeters)
		}
	}

	if c.TiltThresholdRad != nil {
		if *c.TiltThresholdRad <= 0 || *c.TiltThresholdRad >= math.Pi/2 {
			return fmt.Errorf("tilt_threshold_rad must be in (0, pi/2), got %f", *c.TiltThresholdRad)
		}
	}

	if c.OrientationRefreshTicks != nil {
		if *c.OrientationRefreshTicks < 1 {
			return fmt.Errorf("orientation_refresh_ticks must be at least 1, got %d", *c.OrientationRefreshTicks)
		}
	}

	if c.BillboardOffsetMeters != nil {
		if *c.BillboardOffsetMeters <= 0 {
			return fmt.Errorf("billboard_offset_meters must be positive, got %f", *c.BillboardOffsetMeters)
		}
	}

	// The scale curve must be continuous at the near boundary: both
	// branches have to yield 1.0 at near_distance_meters.
	near := c.GetNearDistanceMeters()
	far := c.GetFarScaleSlope()*near + c.GetFarScaleIntercept()
	if math.Abs(far-1.0) > ScaleContinuityTolerance {
		return fmt.Errorf("scale curve discontinuous at %.3fm: far branch yields %f, want 1.0", near, far)
	}

	return nil
}

// GetPositionBufferSize returns the position_buffer_size value or the default.
func (c *TuningConfig) GetPositionBufferSize() int {
	if c.PositionBufferSize == nil {
		return 10
	}
	return *c.PositionBufferSize
}

// GetNearDistanceMeters returns the near_distance_meters value or the default.
func (c *TuningConfig) GetNearDistanceMeters() float64 {
	if c.NearDistanceMeters == nil {
		return 0.7
	}
	return *c.NearDistanceMeters
}

// GetFarScaleSlope returns the far_scale_slope value or the default.
func (c *TuningConfig) GetFarScaleSlope() float64 {
	if c.FarScaleSlope == nil {
		return 0.25
	}
	return *c.FarScaleSlope
}

// GetFarScaleIntercept returns the far_scale_intercept value or the default.
func (c *TuningConfig) GetFarScaleIntercept() float64 {
	if c.FarScaleIntercept == nil {
		return 0.825
	}
	return *c.FarScaleIntercept
}

// GetTiltThresholdRad returns the tilt_threshold_rad value or the default
// (3pi/8, i.e. 67.5 degrees).
func (c *TuningConfig) GetTiltThresholdRad() float64 {
	if c.TiltThresholdRad == nil {
		return 3 * math.Pi / 8
	}
	return *c.TiltThresholdRad
}

// GetOrientationRefreshTicks returns the orientation_refresh_ticks value or
// the default.
func (c *TuningConfig) GetOrientationRefreshTicks() int {
	if c.OrientationRefreshTicks == nil {
		return 15
	}
	return *c.OrientationRefreshTicks
}

// GetBillboardOffsetMeters returns the billboard_offset_meters value or the
// default.
func (c *TuningConfig) GetBillboardOffsetMeters() float64 {
	if c.BillboardOffsetMeters == nil {
		return 0.8
	}
	return *c.BillboardOffsetMeters
}
