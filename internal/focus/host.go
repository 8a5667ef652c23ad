package focus

import (
	"github.com/glasshouse-ar/reticle/internal/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// HostView is the controller's window into the embedding AR framework: the
// per-frame camera, tracking quality, raycasting, and view geometry.
//
// Raycast, Camera and TrackingNormal are called from the controller's work
// queue and must be safe to call there. CenterPoint reads view geometry and
// is only ever called from the UI dispatcher.
type HostView interface {
	// CenterPoint returns the view's center in screen coordinates.
	CenterPoint() Point
	// Raycast tests the screen point against estimated and known planes and
	// returns hits ordered nearest first. An empty slice is a normal
	// outcome, not an error.
	Raycast(p Point) []RaycastHit
	// Camera returns the current camera pose. ok is false when the host has
	// no frame yet.
	Camera() (pose geom.Pose, ok bool)
	// TrackingNormal reports whether camera tracking quality is normal, as
	// opposed to limited or unavailable.
	TrackingNormal() bool
}

// Scene is the mutable scene graph the indicator node lives in. Reparenting
// an already correctly parented node must be a cheap no-op for the host, but
// the controller avoids redundant calls anyway.
type Scene interface {
	// ParentToCamera attaches the node under the camera so it follows the
	// viewer (billboard mode). The node's transform becomes camera-local.
	ParentToCamera(n SceneNode)
	// ParentToRoot attaches the node under the scene root at a world
	// transform (anchored mode).
	ParentToRoot(n SceneNode)
}

// SceneNode is the indicator's node in the host scene graph. The host owns
// geometry and animation; the controller only drives the transform,
// visibility, and the two animated transitions the engine needs.
type SceneNode interface {
	SetPosition(p r3.Vec)
	SetOrientation(o r3.Rotation)
	// SetScale sets a non-uniform scale; the engine always passes a uniform
	// vector.
	SetScale(s r3.Vec)
	// AnimateOrientation transitions to the given orientation and invokes
	// done when the transition completes. A host without animation support
	// may apply the orientation and call done synchronously.
	AnimateOrientation(o r3.Rotation, done func())
	SetHidden(hidden bool)
	// FadeTo cross-fades towards hidden/visible and invokes done when the
	// fade completes. A zero-duration fade calls done synchronously.
	FadeTo(hidden bool, done func())
}

// IndicatorSkin is the pluggable rendering strategy. The core emits display
// state transitions; the skin alone decides shapes, materials and
// state-specific animation.
type IndicatorSkin interface {
	// SetupGeometry builds the skin's scene-graph content. Invoked once
	// from Controller.Initialize with the controller's work queue, which
	// the skin may retain for its own deferred work.
	SetupGeometry(q Queue)
	// SetDisplayState tells the skin which state to render. Always invoked
	// on the UI dispatcher.
	SetDisplayState(s DisplayState)
	// Size returns the skin's nominal edge length in meters at scale 1.0.
	Size() float64
}

// StateObserver receives display-state change notifications. Callbacks run
// on the UI dispatcher, once per actual state change. The controller never
// owns its observer.
type StateObserver interface {
	DisplayStateChanged(c *Controller, s DisplayState)
}

// TickTrace is one tick's worth of engine internals, captured for offline
// analysis and tuning.
type TickTrace struct {
	Tick        uint64
	TimestampNs int64

	HasHit      bool
	HitPosition r3.Vec

	Smoothed r3.Vec
	Scale    float64

	Detection DetectionKind
	PlaneID   string
	Display   DisplayState
}

// TraceCollector captures engine internals for visualisation and tuning.
// A nil collector disables tracing entirely.
type TraceCollector interface {
	IsEnabled() bool
	RecordTick(t TickTrace)
}
