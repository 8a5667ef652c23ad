package focus

import (
	"errors"
	"sync/atomic"

	"github.com/glasshouse-ar/reticle/internal/geom"
	"github.com/glasshouse-ar/reticle/internal/timeutil"
	"gonum.org/v1/gonum/spatial/r3"
)

// parentKind tracks where the indicator node currently hangs in the host
// scene graph so reparenting stays a no-op when nothing changed.
type parentKind int

const (
	parentNone parentKind = iota
	parentCamera
	parentRoot
)

// Options configures a Controller. View, Scene and Node are required; the
// rest have working defaults.
type Options struct {
	View  HostView
	Scene Scene
	Node  SceneNode

	// Skin receives display-state changes. Optional: a controller without a
	// skin still drives the node transform, which is useful for headless
	// analysis runs.
	Skin IndicatorSkin

	// Observer receives display-state change callbacks on the UI
	// dispatcher. Optional.
	Observer StateObserver

	// WorkQueue is the serial queue that owns all engine state. When nil,
	// the controller creates and owns a SerialQueue and closes it on Close.
	WorkQueue Queue

	// UIQueue dispatches observer callbacks and view-geometry reads onto
	// the host UI thread. When nil, callbacks run inline on whichever
	// goroutine produced them.
	UIQueue Queue

	// Trace captures per-tick engine internals. Optional.
	Trace TraceCollector

	// Clock stamps trace ticks. Defaults to the wall clock; tests and
	// replay runs inject a mock for stable timestamps.
	Clock timeutil.Clock

	// Config overrides the canonical tuning defaults. When nil the defaults
	// file is loaded.
	Config *Config
}

// Controller is the façade driving the focus indicator's periodic update
// cycle. It pulls camera and raycast data from the host view once per frame,
// feeds the state machines, moves the indicator node between camera-attached
// billboard mode and world-anchored mode, and notifies the skin and observer
// on display-state changes.
//
// Construction is two-phase: New performs cheap synchronous validation, and
// Initialize — invoked explicitly by the owner once its queue choice is
// final — performs the actual setup. Using a controller that skipped
// Initialize is a contract violation and panics.
type Controller struct {
	cfg Config

	view     HostView
	scene    Scene
	node     SceneNode
	skin     IndicatorSkin
	observer StateObserver
	trace    TraceCollector
	clock    timeutil.Clock

	queue      Queue
	ui         Queue
	ownedQueue *SerialQueue

	initialized atomic.Bool

	// Everything below is owned by the work queue: no locks, no concurrent
	// writers, provided embedders never call the internal entry points
	// directly.
	detection *DetectionStateMachine
	display   *DisplayStateMachine
	smoother  *PoseSmoother

	parent    parentKind
	hidden    bool
	fading    bool
	tickCount uint64
}

// New validates the options and constructs a controller. It performs no
// scene-graph work; call Initialize before the first Tick.
func New(opts Options) (*Controller, error) {
	if opts.View == nil {
		return nil, errors.New("focus: Options.View is required")
	}
	if opts.Scene == nil {
		return nil, errors.New("focus: Options.Scene is required")
	}
	if opts.Node == nil {
		return nil, errors.New("focus: Options.Node is required")
	}

	cfg := DefaultConfig()
	if opts.Config != nil {
		cfg = *opts.Config
	}

	c := &Controller{
		cfg:      cfg,
		view:     opts.View,
		scene:    opts.Scene,
		node:     opts.Node,
		skin:     opts.Skin,
		observer: opts.Observer,
		trace:    opts.Trace,
		clock:    opts.Clock,

		detection: NewDetectionStateMachine(),
		display:   NewDisplayStateMachine(),
		smoother:  NewPoseSmoother(cfg),
	}

	if opts.WorkQueue != nil {
		c.queue = opts.WorkQueue
	} else {
		c.ownedQueue = NewSerialQueue("focus")
		c.queue = c.ownedQueue
	}
	if opts.UIQueue != nil {
		c.ui = opts.UIQueue
	} else {
		c.ui = Immediate()
	}
	if c.clock == nil {
		c.clock = timeutil.RealClock{}
	}

	return c, nil
}

// Initialize performs the one-time setup: skin geometry construction and
// the initial billboard placement under the camera. Must be called exactly
// once, after the owner has finalized its queue configuration.
func (c *Controller) Initialize() {
	if !c.initialized.CompareAndSwap(false, true) {
		panic("focus: Initialize called twice")
	}
	c.queue.Async(func() {
		if c.skin != nil {
			c.skin.SetupGeometry(c.queue)
		}
		c.enterBillboard()
	})
}

// Tick advances the engine by one rendered frame. pt is the screen point to
// raycast from; when nil, the view's center is used, read via the UI
// dispatcher because view geometry belongs to the UI thread. The call never
// blocks: work is handed to the controller's serial queue and a stale tick
// that completes late is simply overwritten by the next one.
func (c *Controller) Tick(pt *Point) {
	if !c.initialized.Load() {
		panic("focus: Tick on a controller that was never initialized")
	}
	if pt == nil {
		c.ui.Async(func() {
			p := c.view.CenterPoint()
			c.queue.Async(func() { c.run(p) })
		})
		return
	}
	p := *pt
	c.queue.Async(func() { c.run(p) })
}

// run executes one tick on the work queue.
func (c *Controller) run(p Point) {
	c.tickCount++

	cam, camOK := c.view.Camera()
	var hit *RaycastHit
	if camOK && c.view.TrackingNormal() {
		if hits := c.view.Raycast(p); len(hits) > 0 {
			h := hits[0]
			hit = &h
		}
	}
	var camera *geom.Pose
	if hit != nil && camOK {
		camera = &cam
	}

	det, detChanged := c.detection.Observe(hit, camera)

	var sp SmoothedPose
	if det.Kind == DetectionInitializing {
		if detChanged {
			c.enterBillboard()
		}
	} else {
		// The detecting branch runs every tick, not only on kind changes:
		// position smoothing has to follow the hit point continuously or
		// the indicator freezes between transitions.
		c.anchorToWorld()
		sp = c.smoother.Update(det.Hit.Pose, det.Camera)
		c.applyPose(sp)
	}

	disp, dispChanged := c.display.Derive(det)
	if dispChanged {
		c.notifyDisplayState(disp)
	}

	if c.trace != nil && c.trace.IsEnabled() {
		tr := TickTrace{
			Tick:        c.tickCount,
			TimestampNs: c.clock.Now().UnixNano(),
			Smoothed:    sp.Position,
			Scale:       sp.Scale,
			Detection:   det.Kind,
			PlaneID:     det.Hit.PlaneID,
			Display:     disp,
		}
		if hit != nil {
			tr.HasHit = true
			tr.HitPosition = hit.Pose.Position
		}
		c.trace.RecordTick(tr)
	}
}

// enterBillboard resets the smoother and parks the node in front of the
// camera at unit scale. Clearing the position buffer here is what keeps
// samples from before a tracking loss out of the next detection.
func (c *Controller) enterBillboard() {
	c.smoother.Reset()
	if c.parent != parentCamera {
		c.scene.ParentToCamera(c.node)
		c.parent = parentCamera
	}
	c.node.SetPosition(r3.Vec{Z: -c.cfg.BillboardOffsetMeters})
	c.node.SetOrientation(geom.Identity())
	c.node.SetScale(r3.Vec{X: 1, Y: 1, Z: 1})
}

// anchorToWorld parents the node under the scene root. No-op when already
// anchored.
func (c *Controller) anchorToWorld() {
	if c.parent != parentRoot {
		c.scene.ParentToRoot(c.node)
		c.parent = parentRoot
	}
}

// applyPose pushes the smoothed pose into the node transform.
func (c *Controller) applyPose(sp SmoothedPose) {
	c.node.SetPosition(sp.Position)
	c.node.SetScale(r3.Vec{X: sp.Scale, Y: sp.Scale, Z: sp.Scale})
	switch sp.Update {
	case OrientationAdopt:
		c.node.SetOrientation(sp.Orientation)
	case OrientationYawAnimated:
		c.node.AnimateOrientation(sp.Orientation, func() {
			c.queue.Async(c.smoother.ReorientationDone)
		})
	case OrientationKeep:
		// Orientation untouched this tick.
	}
}

func (c *Controller) notifyDisplayState(s DisplayState) {
	c.ui.Async(func() {
		if c.skin != nil {
			c.skin.SetDisplayState(s)
		}
		if c.observer != nil {
			c.observer.DisplayStateChanged(c, s)
		}
	})
}

// SetVisible toggles the indicator's visibility, optionally with a
// cross-fade. A request arriving while a fade is in flight is dropped, not
// deferred. The final hidden flag always matches the accepted request, even
// when the host skips the fade (zero duration).
func (c *Controller) SetVisible(visible, animated bool) {
	c.queue.Async(func() { c.setVisible(visible, animated) })
}

// SetHidden is the direct-assignment equivalent of
// SetVisible(!hidden, false). It shares the fade guard so the two paths
// cannot disagree about the final flag.
func (c *Controller) SetHidden(hidden bool) {
	c.SetVisible(!hidden, false)
}

func (c *Controller) setVisible(visible, animated bool) {
	if c.fading {
		return
	}
	hidden := !visible
	if !animated {
		c.hidden = hidden
		c.node.SetHidden(hidden)
		return
	}
	c.fading = true
	c.node.FadeTo(hidden, func() {
		c.queue.Async(func() {
			c.hidden = hidden
			c.node.SetHidden(hidden)
			c.fading = false
		})
	})
}

// UpdateConfig applies fn to the controller's configuration on the work
// queue. This is the safe way to adjust tuning parameters at runtime.
func (c *Controller) UpdateConfig(fn func(*Config)) {
	c.queue.Async(func() {
		fn(&c.cfg)
		c.smoother.SetConfig(c.cfg)
	})
}

// Close shuts down the controller's owned work queue, draining submitted
// work first. Queues supplied by the embedder are left alone.
func (c *Controller) Close() {
	if c.ownedQueue != nil {
		c.ownedQueue.Close()
	}
}
