package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultsMatchCanonicalFile(t *testing.T) {
	cfg := MustLoadDefaultConfig()

	// The canonical file must spell out every default explicitly so the two
	// sources of truth cannot drift apart.
	require.NotNil(t, cfg.PositionBufferSize)
	require.NotNil(t, cfg.NearDistanceMeters)
	require.NotNil(t, cfg.TiltThresholdRad)

	assert.Equal(t, 10, cfg.GetPositionBufferSize())
	assert.Equal(t, 0.7, cfg.GetNearDistanceMeters())
	assert.Equal(t, 0.25, cfg.GetFarScaleSlope())
	assert.Equal(t, 0.825, cfg.GetFarScaleIntercept())
	assert.InDelta(t, 3*math.Pi/8, cfg.GetTiltThresholdRad(), 1e-12)
	assert.Equal(t, 15, cfg.GetOrientationRefreshTicks())
	assert.Equal(t, 0.8, cfg.GetBillboardOffsetMeters())
}

func TestEmptyConfigFallsBackToDefaults(t *testing.T) {
	cfg := EmptyTuningConfig()
	assert.Equal(t, 10, cfg.GetPositionBufferSize())
	assert.Equal(t, 0.7, cfg.GetNearDistanceMeters())
	assert.Equal(t, 15, cfg.GetOrientationRefreshTicks())
	assert.NoError(t, cfg.Validate())
}

func TestLoadPartialConfig(t *testing.T) {
	path := writeConfig(t, `{"position_buffer_size": 20}`)

	cfg, err := LoadTuningConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.GetPositionBufferSize())
	// Omitted fields keep their defaults.
	assert.Equal(t, 0.7, cfg.GetNearDistanceMeters())
	assert.Nil(t, cfg.NearDistanceMeters)
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, err := LoadTuningConfig(path)
	assert.ErrorContains(t, err, ".json extension")
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := LoadTuningConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"position_buffer_size": `)
	_, err := LoadTuningConfig(path)
	assert.ErrorContains(t, err, "parse config JSON")
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		cfg     TuningConfig
		wantErr string
	}{
		{
			name:    "zero buffer",
			cfg:     TuningConfig{PositionBufferSize: intPtr(0)},
			wantErr: "position_buffer_size",
		},
		{
			name:    "negative near distance",
			cfg:     TuningConfig{NearDistanceMeters: floatPtr(-1)},
			wantErr: "near_distance_meters",
		},
		{
			name:    "tilt threshold past vertical",
			cfg:     TuningConfig{TiltThresholdRad: floatPtr(math.Pi)},
			wantErr: "tilt_threshold_rad",
		},
		{
			name:    "zero refresh ticks",
			cfg:     TuningConfig{OrientationRefreshTicks: intPtr(0)},
			wantErr: "orientation_refresh_ticks",
		},
		{
			name:    "zero billboard offset",
			cfg:     TuningConfig{BillboardOffsetMeters: floatPtr(0)},
			wantErr: "billboard_offset_meters",
		},
		{
			name:    "discontinuous scale curve",
			cfg:     TuningConfig{FarScaleSlope: floatPtr(0.5)},
			wantErr: "discontinuous",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestValidateAcceptsShiftedContinuousCurve(t *testing.T) {
	// near=1.0 with slope 0.5 needs intercept 0.5 for continuity.
	cfg := TuningConfig{
		NearDistanceMeters: floatPtr(1.0),
		FarScaleSlope:      floatPtr(0.5),
		FarScaleIntercept:  floatPtr(0.5),
	}
	assert.NoError(t, cfg.Validate())
}

func TestLoadValidatesContent(t *testing.T) {
	path := writeConfig(t, `{"near_distance_meters": -0.5}`)
	_, err := LoadTuningConfig(path)
	assert.ErrorContains(t, err, "invalid configuration")
}
