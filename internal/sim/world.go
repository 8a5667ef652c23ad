// Package sim provides a synthetic AR session for exercising the focus
// engine without a real device: a scripted camera flight over a floor with
// classified planes, noisy raycast hits, and recording fakes for the scene
// graph. It backs the focus-sim binary and replay-style tests.
package sim

import (
	"math"
	"math/rand"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/glasshouse-ar/reticle/internal/focus"
	"github.com/glasshouse-ar/reticle/internal/geom"
)

// Options configures a synthetic session.
type Options struct {
	// Seed drives all randomness; equal seeds replay identical sessions.
	Seed int64
	// WarmupFrames is how many initial frames report no camera frame,
	// mimicking AR session startup.
	WarmupFrames int
	// DropoutStart/DropoutEnd bound a window of degraded tracking in the
	// middle of the session. Zero values disable the dropout.
	DropoutStart int
	DropoutEnd   int
	// NoiseMeters is the standard deviation of per-frame hit point jitter.
	NoiseMeters float64
	// CameraHeight is the camera's height above the floor in meters.
	CameraHeight float64
}

// DefaultOptions returns the scenario used by the simulator binary.
func DefaultOptions() Options {
	return Options{
		Seed:         1,
		WarmupFrames: 30,
		DropoutStart: 180,
		DropoutEnd:   220,
		NoiseMeters:  0.008,
		CameraHeight: 1.4,
	}
}

// Plane is a classified square floor patch the scripted camera sweeps over.
type Plane struct {
	ID         string
	Center     r3.Vec
	HalfExtent float64
}

// World is the synthetic host: it implements focus.HostView over a scripted
// camera path and a fixed set of floor planes.
type World struct {
	opts   Options
	rng    *rand.Rand
	planes []Plane
	frame  int
}

// NewWorld creates a world with two classified floor planes along the sweep
// path. Plane identifiers are fresh UUIDs per world.
func NewWorld(opts Options) *World {
	return &World{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
		planes: []Plane{
			{ID: "pln_" + uuid.NewString(), Center: r3.Vec{X: 1.5}, HalfExtent: 0.6},
			{ID: "pln_" + uuid.NewString(), Center: r3.Vec{X: 4.5}, HalfExtent: 0.6},
		},
	}
}

// Planes returns the world's classified planes.
func (w *World) Planes() []Plane {
	return w.planes
}

// Frame returns the current frame index.
func (w *World) Frame() int {
	return w.frame
}

// Advance steps the scripted session by one frame.
func (w *World) Advance() {
	w.frame++
}

// cameraX oscillates the camera over the floor so both planes are visited,
// left, and revisited within a few hundred frames.
func (w *World) cameraX() float64 {
	return 3 + 3*math.Sin(2*math.Pi*float64(w.frame)/400)
}

// cameraPitch sweeps the camera tilt between shallow and steep so both
// orientation regimes of the smoother are exercised.
func (w *World) cameraPitch() float64 {
	const (
		base  = 45 * math.Pi / 180
		swing = 35 * math.Pi / 180
	)
	return base + swing*math.Abs(math.Sin(2*math.Pi*float64(w.frame)/300))
}

// CenterPoint implements focus.HostView.
func (w *World) CenterPoint() focus.Point {
	return focus.Point{X: 0.5, Y: 0.5}
}

// Camera implements focus.HostView. The camera heads along +X, pitched down
// towards the floor.
func (w *World) Camera() (geom.Pose, bool) {
	if w.frame < w.opts.WarmupFrames {
		return geom.Pose{}, false
	}
	// Face +X, then tilt down towards the floor.
	yaw := r3.NewRotation(-math.Pi/2, geom.Up)
	pitch := r3.NewRotation(-w.cameraPitch(), r3.Vec{X: 1})
	return geom.Pose{
		Position:    r3.Vec{X: w.cameraX(), Y: w.opts.CameraHeight},
		Orientation: geom.Compose(yaw, pitch),
	}, true
}

// TrackingNormal implements focus.HostView.
func (w *World) TrackingNormal() bool {
	if w.frame < w.opts.WarmupFrames {
		return false
	}
	if w.opts.DropoutEnd > w.opts.DropoutStart &&
		w.frame >= w.opts.DropoutStart && w.frame < w.opts.DropoutEnd {
		return false
	}
	return true
}

// Raycast implements focus.HostView. The ray is cast from the camera down
// its view direction onto the floor; the hit point lands ahead of the
// camera by height/tan(pitch) with Gaussian jitter. Hits inside a plane's
// extent carry that plane's identifier, everything else is an estimated
// surface with a slightly noisy normal.
func (w *World) Raycast(p focus.Point) []focus.RaycastHit {
	cam, ok := w.Camera()
	if !ok || !w.TrackingNormal() {
		return nil
	}

	lookahead := w.opts.CameraHeight / math.Tan(w.cameraPitch())
	hitPoint := r3.Vec{
		X: cam.Position.X + lookahead + w.rng.NormFloat64()*w.opts.NoiseMeters,
		Y: w.rng.NormFloat64() * w.opts.NoiseMeters,
		Z: cam.Position.Z + w.rng.NormFloat64()*w.opts.NoiseMeters,
	}

	hit := focus.RaycastHit{
		Pose: geom.Pose{Position: hitPoint, Orientation: geom.Identity()},
	}
	for _, pl := range w.planes {
		if math.Abs(hitPoint.X-pl.Center.X) <= pl.HalfExtent &&
			math.Abs(hitPoint.Z-pl.Center.Z) <= pl.HalfExtent {
			hit.PlaneID = pl.ID
			break
		}
	}
	if hit.PlaneID == "" {
		// Estimated surfaces report noisier normals than classified planes.
		tilt := w.rng.NormFloat64() * 0.05
		hit.Pose.Orientation = r3.NewRotation(tilt, r3.Vec{X: 1})
	}

	return []focus.RaycastHit{hit}
}
