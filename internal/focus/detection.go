package focus

import "github.com/glasshouse-ar/reticle/internal/geom"

// DetectionStateMachine converts raw per-frame raycast outcomes into a
// discrete detection state. It reports whether the outcome differs from the
// previous frame's so callers can suppress redundant transition side
// effects, while still handing back the full state every frame — pose
// smoothing consumes every detecting tick, not only transitions.
//
// Not safe for concurrent use; owned by the controller queue.
type DetectionStateMachine struct {
	state DetectionState
}

// NewDetectionStateMachine creates a machine in the initializing state.
func NewDetectionStateMachine() *DetectionStateMachine {
	return &DetectionStateMachine{
		state: DetectionState{Kind: DetectionInitializing},
	}
}

// Observe classifies one frame's raycast outcome. hit is nil when the frame
// produced no usable hit (no result, degraded tracking, no camera). The
// returned changed flag is true only when the detection outcome — kind plus
// plane identifier — differs from the previous frame's.
func (m *DetectionStateMachine) Observe(hit *RaycastHit, camera *geom.Pose) (DetectionState, bool) {
	var next DetectionState
	switch {
	case hit == nil:
		next = DetectionState{Kind: DetectionInitializing}
	case hit.PlaneID != "":
		next = DetectionState{Kind: DetectionKnownPlane, Hit: *hit, Camera: camera}
	default:
		next = DetectionState{Kind: DetectionEstimatedSurface, Hit: *hit, Camera: camera}
	}

	changed := !next.Equal(m.state)
	m.state = next
	return next, changed
}

// State returns the most recent detection state.
func (m *DetectionStateMachine) State() DetectionState {
	return m.state
}
