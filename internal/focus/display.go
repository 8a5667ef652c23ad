package focus

// DisplayStateMachine derives the user-facing display state from the
// detection state plus the set of planes that have anchored the indicator
// before. It reports a change flag so observers are notified exactly once
// per actual state change.
//
// Not safe for concurrent use; owned by the controller queue.
type DisplayStateMachine struct {
	current DisplayState

	// visited is the set of plane identifiers that have anchored the
	// indicator at least once during this machine's lifetime. Membership is
	// tested before insertion: that ordering is what distinguishes a new
	// plane from a known one. The set survives tracking losses.
	visited map[string]struct{}

	// everDetected flips once the first surface detection happens; before
	// that, a no-detection frame is Initializing, after it, Billboard.
	everDetected bool
}

// NewDisplayStateMachine creates a machine with an empty visitation set.
// The first Derive call always reports a change so skins receive their
// initial state.
func NewDisplayStateMachine() *DisplayStateMachine {
	return &DisplayStateMachine{
		visited: make(map[string]struct{}),
	}
}

// Derive maps a detection state to the display state and records plane
// visitation. The changed flag is true when the result differs from the
// previously derived state, including the new-versus-known plane
// distinction.
func (m *DisplayStateMachine) Derive(det DetectionState) (DisplayState, bool) {
	var next DisplayState
	switch det.Kind {
	case DetectionInitializing:
		if m.everDetected {
			next = DisplayBillboard
		} else {
			next = DisplayInitializing
		}
	case DetectionEstimatedSurface:
		m.everDetected = true
		next = DisplayOffPlane
	case DetectionKnownPlane:
		m.everDetected = true
		id := det.Hit.PlaneID
		if _, seen := m.visited[id]; seen {
			next = DisplayOnPlane
		} else {
			next = DisplayOnNewPlane
			m.visited[id] = struct{}{}
		}
	}

	changed := next != m.current
	m.current = next
	return next, changed
}

// State returns the most recently derived display state. Empty until the
// first Derive call.
func (m *DisplayStateMachine) State() DisplayState {
	return m.current
}

// Visited reports whether the given plane identifier has anchored the
// indicator before.
func (m *DisplayStateMachine) Visited(planeID string) bool {
	_, ok := m.visited[planeID]
	return ok
}
