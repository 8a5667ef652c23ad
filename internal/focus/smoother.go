package focus

import (
	"math"

	"github.com/glasshouse-ar/reticle/internal/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// PoseSmoother turns raw per-frame raycast hit transforms into a stable
// indicator pose. Position is low-pass filtered through a bounded FIFO mean,
// scale is a continuous function of camera distance, and orientation is
// refreshed through a hysteresis gate so noisy per-frame plane normals do not
// make the indicator twitch.
//
// The smoother is not safe for concurrent use; the controller owns it on its
// serial work queue.
type PoseSmoother struct {
	cfg Config

	// positions is the bounded history of recent world-space hit points.
	// The smoothed position is the arithmetic mean of its contents.
	positions []r3.Vec

	orientation r3.Rotation

	// Orientation hysteresis state. pointingDown records that the last
	// applied orientation was a steep-tilt yaw correction, so the next
	// shallow-tilt update must adopt the surface orientation immediately
	// instead of waiting out the refresh throttle. reorienting guards
	// against overlapping animated yaw transitions.
	pointingDown bool
	reorienting  bool

	// ticksSinceRefresh throttles full surface-orientation adoption to at
	// most once every OrientationRefreshTicks detecting ticks. It starts
	// saturated so the first shallow-tilt update applies right away.
	ticksSinceRefresh int
}

// NewPoseSmoother creates a smoother with the given configuration.
func NewPoseSmoother(cfg Config) *PoseSmoother {
	return &PoseSmoother{
		cfg:               cfg,
		positions:         make([]r3.Vec, 0, cfg.PositionBufferSize),
		orientation:       geom.Identity(),
		ticksSinceRefresh: cfg.OrientationRefreshTicks,
	}
}

// Update folds one raycast hit into the smoother and returns the resulting
// pose. camera may be nil when no camera pose is available this frame; in
// that case scale defaults to 1.0 and the orientation step is skipped.
func (s *PoseSmoother) Update(hit geom.Pose, camera *geom.Pose) SmoothedPose {
	// Position: append with FIFO eviction, output the mean.
	s.positions = append(s.positions, hit.Position)
	if len(s.positions) > s.cfg.PositionBufferSize {
		s.positions = s.positions[1:]
	}
	position := geom.Mean(s.positions)

	out := SmoothedPose{
		Position:    position,
		Scale:       1.0,
		Orientation: s.orientation,
		Update:      OrientationKeep,
	}
	if camera == nil {
		return out
	}

	out.Scale = s.scaleForDistance(geom.Dist(camera.Position, position))

	if math.Abs(camera.Pitch()) > s.cfg.TiltThresholdRad {
		// Steep tilt: plane normals flip easily when the camera is near
		// perpendicular to the surface, so suppress full reorientation and
		// correct only the yaw about the world up axis. One animated
		// transition at a time.
		if !s.reorienting {
			s.reorienting = true
			s.orientation = geom.RotationAboutUp(camera.Yaw())
			out.Orientation = s.orientation
			out.Update = OrientationYawAnimated
		}
		return out
	}

	// Shallow tilt: adopt the hit's full surface orientation, throttled to
	// every Nth tick. If the previous orientation was a steep-tilt yaw
	// correction, apply immediately so the pending snap clears without a
	// visible delay.
	s.ticksSinceRefresh++
	if s.pointingDown || s.ticksSinceRefresh >= s.cfg.OrientationRefreshTicks {
		s.pointingDown = false
		s.ticksSinceRefresh = 0
		s.orientation = hit.Orientation
		out.Orientation = s.orientation
		out.Update = OrientationAdopt
	}
	return out
}

// ReorientationDone signals that the animated yaw transition started by a
// steep-tilt update has completed. It clears the in-flight guard and marks
// the orientation as pointing downward so the next shallow-tilt update
// refreshes immediately.
func (s *PoseSmoother) ReorientationDone() {
	s.reorienting = false
	s.pointingDown = true
}

// Reset clears the position history and hysteresis state. Called whenever
// the indicator re-enters billboard mode so stale samples from before a
// tracking loss cannot contaminate the next detection.
func (s *PoseSmoother) Reset() {
	s.positions = s.positions[:0]
	s.orientation = geom.Identity()
	s.pointingDown = false
	s.reorienting = false
	s.ticksSinceRefresh = s.cfg.OrientationRefreshTicks
}

// SetConfig replaces the smoother's tuning parameters. A shrunk position
// buffer drops its oldest samples.
func (s *PoseSmoother) SetConfig(cfg Config) {
	s.cfg = cfg
	if n := len(s.positions) - cfg.PositionBufferSize; n > 0 {
		s.positions = s.positions[n:]
	}
}

// BufferLen returns the number of samples currently in the position history.
func (s *PoseSmoother) BufferLen() int {
	return len(s.positions)
}

// scaleForDistance maps camera distance to a uniform scale factor. The near
// branch shrinks the indicator towards zero as it approaches the surface;
// the far branch grows it gently. Both branches yield 1.0 at the knee.
func (s *PoseSmoother) scaleForDistance(d float64) float64 {
	if d < s.cfg.NearDistanceMeters {
		return d / s.cfg.NearDistanceMeters
	}
	return s.cfg.FarScaleSlope*d + s.cfg.FarScaleIntercept
}
