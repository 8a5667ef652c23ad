package focus

import (
	"github.com/glasshouse-ar/reticle/internal/config"
)

// Config holds the tuning parameters for the focus engine.
type Config struct {
	PositionBufferSize      int     // Bounded position history length (FIFO)
	NearDistanceMeters      float64 // Scale curve knee: below this, scale = d/near
	FarScaleSlope           float64 // Scale curve far branch: slope*d + intercept
	FarScaleIntercept       float64
	TiltThresholdRad        float64 // Camera pitch beyond which only yaw is corrected
	OrientationRefreshTicks int     // Full reorientation at most every N detecting ticks
	BillboardOffsetMeters   float64 // Indicator offset in front of the camera in billboard mode
}

// DefaultConfig returns the engine configuration loaded from the canonical
// tuning defaults file (config/tuning.defaults.json). Panics if the file
// cannot be found — intended for tests and binaries that have already
// validated config availability.
func DefaultConfig() Config {
	cfg := config.MustLoadDefaultConfig()
	return ConfigFromTuning(cfg)
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
// Use this in production code where the TuningConfig is already loaded.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		PositionBufferSize:      cfg.GetPositionBufferSize(),
		NearDistanceMeters:      cfg.GetNearDistanceMeters(),
		FarScaleSlope:           cfg.GetFarScaleSlope(),
		FarScaleIntercept:       cfg.GetFarScaleIntercept(),
		TiltThresholdRad:        cfg.GetTiltThresholdRad(),
		OrientationRefreshTicks: cfg.GetOrientationRefreshTicks(),
		BillboardOffsetMeters:   cfg.GetBillboardOffsetMeters(),
	}
}
