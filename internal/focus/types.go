package focus

import (
	"github.com/glasshouse-ar/reticle/internal/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

// DetectionKind classifies the raw per-frame raycast outcome.
type DetectionKind string

const (
	// DetectionInitializing means no valid tracking data this frame: no
	// camera frame, degraded tracking, or no raycast hits.
	DetectionInitializing DetectionKind = "initializing"
	// DetectionEstimatedSurface means the ray hit an estimated surface
	// without a classified planar anchor.
	DetectionEstimatedSurface DetectionKind = "estimated_surface"
	// DetectionKnownPlane means the ray hit a recognized planar anchor.
	DetectionKnownPlane DetectionKind = "known_plane"
)

// DisplayState is the user-facing state an indicator skin renders.
type DisplayState string

const (
	// DisplayInitializing is the state before the first successful surface
	// detection of the session.
	DisplayInitializing DisplayState = "initializing"
	// DisplayBillboard means tracking was lost after a detection: the
	// indicator follows the camera until a surface is found again.
	DisplayBillboard DisplayState = "billboard"
	// DisplayOffPlane means the indicator sits on an estimated surface.
	DisplayOffPlane DisplayState = "off_plane"
	// DisplayOnNewPlane means the indicator anchored to a plane identifier
	// never visited before. Emitted at most once per plane per session.
	DisplayOnNewPlane DisplayState = "on_new_plane"
	// DisplayOnPlane means the indicator anchored to a previously visited
	// plane.
	DisplayOnPlane DisplayState = "on_plane"
)

// Point is a screen-space query point in view coordinates.
type Point struct {
	X float64
	Y float64
}

// RaycastHit is a reported intersection of a screen-space ray with the
// host's physical environment model.
type RaycastHit struct {
	// Pose is the world-space transform of the hit: the hit point plus the
	// surface orientation the host estimated there.
	Pose geom.Pose
	// PlaneID is the opaque identifier of the classified planar anchor the
	// hit belongs to, or empty when the surface is merely estimated.
	PlaneID string
}

// DetectionState is the discrete state derived from a raycast outcome.
// Equality (and therefore change detection) considers only Kind and PlaneID;
// the hit pose and camera are per-frame payload, not identity.
type DetectionState struct {
	Kind   DetectionKind
	Hit    RaycastHit // zero value when Kind is DetectionInitializing
	Camera *geom.Pose // nil when no camera pose was available
}

// Equal reports whether two detection states represent the same detection
// outcome. Hit positions and camera poses are excluded on purpose: the same
// surface observed at a slightly different point is still the same state.
func (s DetectionState) Equal(o DetectionState) bool {
	return s.Kind == o.Kind && s.Hit.PlaneID == o.Hit.PlaneID
}

// OrientationUpdate describes what the smoother decided to do with the
// indicator's orientation on a given tick.
type OrientationUpdate int

const (
	// OrientationKeep means the orientation was left unchanged (throttled,
	// reorientation in flight, or no camera pose).
	OrientationKeep OrientationUpdate = iota
	// OrientationAdopt means the hit's full surface orientation was adopted
	// and should be applied directly, without an animated transition.
	OrientationAdopt
	// OrientationYawAnimated means a yaw-only correction about the world up
	// axis should be applied with an animated transition. The host must call
	// PoseSmoother.ReorientationDone when the transition finishes.
	OrientationYawAnimated
)

// SmoothedPose is the smoother's output for one tick: a jitter-filtered
// world position, a distance-based uniform scale factor, and the current
// orientation with an instruction for how to apply it.
type SmoothedPose struct {
	Position    r3.Vec
	Scale       float64
	Orientation r3.Rotation
	Update      OrientationUpdate
}
