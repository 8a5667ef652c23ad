// Package focus implements the tracking core of the AR focus indicator: the
// detection and display state machines, the pose smoother, and the controller
// that drives them once per rendered frame.
//
// The package is deliberately free of any rendering: geometry, materials and
// animation live behind the IndicatorSkin and SceneNode collaborator
// interfaces supplied by the embedding host. The core consumes raw per-frame
// raycast results and camera poses and produces a jitter-filtered pose plus a
// discrete display state that skins observe.
//
// All engine state is owned by a single serial work queue; see Controller.
package focus
