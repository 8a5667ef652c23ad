package focus_test

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/glasshouse-ar/reticle/internal/focus"
	"github.com/glasshouse-ar/reticle/internal/geom"
	"github.com/glasshouse-ar/reticle/internal/sim"
	"github.com/glasshouse-ar/reticle/internal/timeutil"
)

// scriptView is a HostView whose per-frame outputs the test sets directly.
type scriptView struct {
	mu       sync.Mutex
	center   focus.Point
	centers  int
	camera   *geom.Pose
	tracking bool
	hits     []focus.RaycastHit
}

func (v *scriptView) CenterPoint() focus.Point {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.centers++
	return v.center
}

func (v *scriptView) Raycast(p focus.Point) []focus.RaycastHit {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hits
}

func (v *scriptView) Camera() (geom.Pose, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.camera == nil {
		return geom.Pose{}, false
	}
	return *v.camera, true
}

func (v *scriptView) TrackingNormal() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tracking
}

func (v *scriptView) set(camera *geom.Pose, tracking bool, hits ...focus.RaycastHit) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.camera = camera
	v.tracking = tracking
	v.hits = hits
}

// recordingSkin captures the lifecycle calls a skin receives.
type recordingSkin struct {
	setups int
	states []focus.DisplayState
}

func (s *recordingSkin) SetupGeometry(q focus.Queue) { s.setups++ }

func (s *recordingSkin) SetDisplayState(d focus.DisplayState) { s.states = append(s.states, d) }

func (s *recordingSkin) Size() float64 { return 0.2 }

// recordingObserver collects display-state callbacks.
type recordingObserver struct {
	states []focus.DisplayState
}

func (o *recordingObserver) DisplayStateChanged(c *focus.Controller, s focus.DisplayState) {
	o.states = append(o.states, s)
}

// fadeNode wraps a sim.Node but holds fade completions until the test
// releases them, modelling a host with real fade durations.
type fadeNode struct {
	*sim.Node
	pending []func()
}

func (n *fadeNode) FadeTo(hidden bool, done func()) {
	n.Node.SetHidden(hidden)
	n.pending = append(n.pending, done)
}

func (n *fadeNode) release() {
	for _, done := range n.pending {
		done()
	}
	n.pending = nil
}

func levelCamera(pos r3.Vec) *geom.Pose {
	return &geom.Pose{
		Position:    pos,
		Orientation: r3.NewRotation(-30*math.Pi/180, r3.Vec{X: 1}),
	}
}

func testConfig() *focus.Config {
	return &focus.Config{
		PositionBufferSize:      10,
		NearDistanceMeters:      0.7,
		FarScaleSlope:           0.25,
		FarScaleIntercept:       0.825,
		TiltThresholdRad:        3 * math.Pi / 8,
		OrientationRefreshTicks: 15,
		BillboardOffsetMeters:   0.8,
	}
}

type fixture struct {
	view     *scriptView
	scene    *sim.SceneGraph
	node     *sim.Node
	skin     *recordingSkin
	observer *recordingObserver
	ctrl     *focus.Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		view:     &scriptView{},
		scene:    sim.NewSceneGraph(),
		node:     sim.NewNode(),
		skin:     &recordingSkin{},
		observer: &recordingObserver{},
	}
	ctrl, err := focus.New(focus.Options{
		View:      f.view,
		Scene:     f.scene,
		Node:      f.node,
		Skin:      f.skin,
		Observer:  f.observer,
		WorkQueue: focus.Immediate(),
		UIQueue:   focus.Immediate(),
		Config:    testConfig(),
	})
	require.NoError(t, err)
	f.ctrl = ctrl
	return f
}

func TestNewValidatesOptions(t *testing.T) {
	view := &scriptView{}
	scene := sim.NewSceneGraph()
	node := sim.NewNode()

	_, err := focus.New(focus.Options{Scene: scene, Node: node})
	assert.ErrorContains(t, err, "View")
	_, err = focus.New(focus.Options{View: view, Node: node})
	assert.ErrorContains(t, err, "Scene")
	_, err = focus.New(focus.Options{View: view, Scene: scene})
	assert.ErrorContains(t, err, "Node")
}

func TestLifecycleContractViolationsPanic(t *testing.T) {
	f := newFixture(t)

	assert.Panics(t, func() { f.ctrl.Tick(&focus.Point{}) })

	f.ctrl.Initialize()
	assert.Panics(t, func() { f.ctrl.Initialize() })
}

func TestInitializePlacesBillboard(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Initialize()

	assert.Equal(t, 1, f.skin.setups)
	assert.Equal(t, sim.ParentCamera, f.scene.Parent())
	pos, orient, scale, _ := f.node.Snapshot()
	assert.True(t, geom.VecApproxEqual(pos, r3.Vec{Z: -0.8}, 1e-12))
	assert.True(t, geom.RotationApproxEqual(orient, geom.Identity(), 1e-12))
	assert.Equal(t, r3.Vec{X: 1, Y: 1, Z: 1}, scale)
}

func TestAnchorsAndNotifiesOncePerPlane(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Initialize()
	cam := levelCamera(r3.Vec{Y: 1.5})

	f.view.set(cam, true, focus.RaycastHit{
		Pose:    geom.Pose{Position: r3.Vec{X: 1}, Orientation: geom.Identity()},
		PlaneID: "pln_a",
	})
	f.ctrl.Tick(&focus.Point{})

	assert.Equal(t, sim.ParentRoot, f.scene.Parent())
	assert.Equal(t,
		[]focus.DisplayState{focus.DisplayOnNewPlane},
		f.observer.states)
	assert.Equal(t, f.observer.states, f.skin.states)

	// Dwelling on the plane flips OnNewPlane to OnPlane once, then goes
	// quiet while the transform keeps following the hit.
	reparents := f.scene.Reparents
	for i := 0; i < 5; i++ {
		f.ctrl.Tick(&focus.Point{})
	}
	assert.Equal(t,
		[]focus.DisplayState{focus.DisplayOnNewPlane, focus.DisplayOnPlane},
		f.observer.states)
	assert.Equal(t, reparents, f.scene.Reparents, "staying anchored must not reparent")

	pos, _, scale, _ := f.node.Snapshot()
	assert.InDelta(t, 1.0, pos.X, 1e-12)
	// Camera 1.5m above a hit 1m to the side: far-branch scale.
	wantScale := 0.25*math.Hypot(1, 1.5) + 0.825
	assert.InDelta(t, wantScale, scale.X, 1e-9)
	assert.Equal(t, scale.X, scale.Y)
	assert.Equal(t, scale.X, scale.Z)
}

func TestTrackingLossReentersBillboardAndResetsSmoothing(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Initialize()
	cam := levelCamera(r3.Vec{Y: 1.5})

	f.view.set(cam, true, focus.RaycastHit{
		Pose: geom.Pose{Position: r3.Vec{X: 2}, Orientation: geom.Identity()},
	})
	for i := 0; i < 6; i++ {
		f.ctrl.Tick(&focus.Point{})
	}

	// Degraded tracking: back to billboard under the camera.
	f.view.set(cam, false)
	f.ctrl.Tick(&focus.Point{})
	assert.Equal(t, sim.ParentCamera, f.scene.Parent())
	pos, _, _, _ := f.node.Snapshot()
	assert.True(t, geom.VecApproxEqual(pos, r3.Vec{Z: -0.8}, 1e-12))
	assert.Equal(t, focus.DisplayBillboard, f.observer.states[len(f.observer.states)-1])

	// Repeated no-hit ticks change nothing further.
	notifications := len(f.observer.states)
	f.ctrl.Tick(&focus.Point{})
	f.ctrl.Tick(&focus.Point{})
	assert.Len(t, f.observer.states, notifications)

	// Re-detection starts from a clean buffer: the first smoothed position
	// is the new hit itself, not a blend with pre-loss samples.
	f.view.set(cam, true, focus.RaycastHit{
		Pose: geom.Pose{Position: r3.Vec{X: -3}, Orientation: geom.Identity()},
	})
	f.ctrl.Tick(&focus.Point{})
	pos, _, _, _ = f.node.Snapshot()
	assert.InDelta(t, -3.0, pos.X, 1e-12)
}

func TestInitializingBeforeFirstDetection(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Initialize()

	// No camera at all yet.
	f.view.set(nil, false)
	f.ctrl.Tick(&focus.Point{})
	assert.Equal(t, []focus.DisplayState{focus.DisplayInitializing}, f.observer.states)

	f.view.set(levelCamera(r3.Vec{Y: 1.5}), true, focus.RaycastHit{
		Pose: geom.Pose{Orientation: geom.Identity()},
	})
	f.ctrl.Tick(&focus.Point{})
	f.view.set(nil, false)
	f.ctrl.Tick(&focus.Point{})
	assert.Equal(t,
		[]focus.DisplayState{focus.DisplayInitializing, focus.DisplayOffPlane, focus.DisplayBillboard},
		f.observer.states)
}

func TestTickNilReadsCenterPoint(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Initialize()
	f.view.center = focus.Point{X: 320, Y: 240}

	f.ctrl.Tick(nil)
	assert.Equal(t, 1, f.view.centers)

	f.ctrl.Tick(&focus.Point{X: 1, Y: 1})
	assert.Equal(t, 1, f.view.centers, "explicit point must not read view geometry")
}

func TestSetVisibleDropsRequestsDuringFade(t *testing.T) {
	view := &scriptView{}
	scene := sim.NewSceneGraph()
	node := &fadeNode{Node: sim.NewNode()}
	ctrl, err := focus.New(focus.Options{
		View:      view,
		Scene:     scene,
		Node:      node,
		WorkQueue: focus.Immediate(),
		UIQueue:   focus.Immediate(),
		Config:    testConfig(),
	})
	require.NoError(t, err)
	ctrl.Initialize()

	ctrl.SetVisible(false, true)
	require.Len(t, node.pending, 1)

	// A second request while the fade is in flight is dropped.
	ctrl.SetVisible(true, true)
	assert.Len(t, node.pending, 1)

	node.release()
	_, _, _, hidden := node.Snapshot()
	assert.True(t, hidden)

	// After completion the guard is clear again.
	ctrl.SetVisible(true, true)
	require.Len(t, node.pending, 1)
	node.release()
	_, _, _, hidden = node.Snapshot()
	assert.False(t, hidden)
}

func TestSetHiddenAppliesDirectly(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Initialize()

	f.ctrl.SetHidden(true)
	_, _, _, hidden := f.node.Snapshot()
	assert.True(t, hidden)
	assert.Equal(t, 0, f.node.Fades)

	f.ctrl.SetHidden(false)
	_, _, _, hidden = f.node.Snapshot()
	assert.False(t, hidden)
}

func TestUpdateConfigAdjustsBillboardOffset(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Initialize()

	f.ctrl.UpdateConfig(func(c *focus.Config) {
		c.BillboardOffsetMeters = 1.2
	})

	// Force a billboard re-entry via a detection round trip.
	f.view.set(levelCamera(r3.Vec{Y: 1.5}), true, focus.RaycastHit{
		Pose: geom.Pose{Orientation: geom.Identity()},
	})
	f.ctrl.Tick(&focus.Point{})
	f.view.set(nil, false)
	f.ctrl.Tick(&focus.Point{})

	pos, _, _, _ := f.node.Snapshot()
	assert.True(t, geom.VecApproxEqual(pos, r3.Vec{Z: -1.2}, 1e-12))
}

// memCollector is an in-memory TraceCollector.
type memCollector struct {
	enabled bool
	ticks   []focus.TickTrace
}

func (c *memCollector) IsEnabled() bool { return c.enabled }

func (c *memCollector) RecordTick(t focus.TickTrace) { c.ticks = append(c.ticks, t) }

func TestTraceRecordsDetectingTicks(t *testing.T) {
	view := &scriptView{}
	col := &memCollector{enabled: true}
	clock := timeutil.NewMockClock(time.Unix(0, 1000))
	ctrl, err := focus.New(focus.Options{
		View:      view,
		Scene:     sim.NewSceneGraph(),
		Node:      sim.NewNode(),
		WorkQueue: focus.Immediate(),
		UIQueue:   focus.Immediate(),
		Trace:     col,
		Clock:     clock,
		Config:    testConfig(),
	})
	require.NoError(t, err)
	ctrl.Initialize()

	view.set(levelCamera(r3.Vec{Y: 1.5}), true, focus.RaycastHit{
		Pose:    geom.Pose{Position: r3.Vec{X: 1}, Orientation: geom.Identity()},
		PlaneID: "pln_a",
	})
	ctrl.Tick(&focus.Point{})
	clock.Advance(16 * time.Millisecond)
	view.set(nil, false)
	ctrl.Tick(&focus.Point{})

	require.Len(t, col.ticks, 2)
	assert.Equal(t, uint64(1), col.ticks[0].Tick)
	assert.Equal(t, int64(1000), col.ticks[0].TimestampNs)
	assert.Equal(t, int64(1000+16e6), col.ticks[1].TimestampNs)
	assert.True(t, col.ticks[0].HasHit)
	assert.Equal(t, "pln_a", col.ticks[0].PlaneID)
	assert.Equal(t, focus.DisplayOnNewPlane, col.ticks[0].Display)
	assert.False(t, col.ticks[1].HasHit)
	assert.Equal(t, focus.DetectionInitializing, col.ticks[1].Detection)
}
