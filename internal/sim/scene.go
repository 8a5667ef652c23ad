package sim

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/glasshouse-ar/reticle/internal/focus"
)

// ParentKind names where a node hangs in the fake scene graph.
type ParentKind string

const (
	ParentNone   ParentKind = ""
	ParentCamera ParentKind = "camera"
	ParentRoot   ParentKind = "root"
)

// SceneGraph is a recording implementation of focus.Scene. It tracks the
// node's current parent and counts reparent operations so tests and the
// simulator can assert reparenting stays idempotent.
type SceneGraph struct {
	mu        sync.Mutex
	parent    ParentKind
	Reparents int
}

// NewSceneGraph returns an empty scene graph.
func NewSceneGraph() *SceneGraph {
	return &SceneGraph{}
}

// ParentToCamera implements focus.Scene.
func (s *SceneGraph) ParentToCamera(n focus.SceneNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parent = ParentCamera
	s.Reparents++
}

// ParentToRoot implements focus.Scene.
func (s *SceneGraph) ParentToRoot(n focus.SceneNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parent = ParentRoot
	s.Reparents++
}

// Parent returns the node's current parent.
func (s *SceneGraph) Parent() ParentKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parent
}

// Node is a recording implementation of focus.SceneNode. Animated
// transitions complete synchronously, like a host with zero-duration
// animations.
type Node struct {
	mu          sync.Mutex
	Position    r3.Vec
	Orientation r3.Rotation
	Scale       r3.Vec
	Hidden      bool

	OrientationAnimations int
	Fades                 int
}

// NewNode returns a node at the origin.
func NewNode() *Node {
	return &Node{Scale: r3.Vec{X: 1, Y: 1, Z: 1}}
}

// SetPosition implements focus.SceneNode.
func (n *Node) SetPosition(p r3.Vec) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Position = p
}

// SetOrientation implements focus.SceneNode.
func (n *Node) SetOrientation(o r3.Rotation) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Orientation = o
}

// SetScale implements focus.SceneNode.
func (n *Node) SetScale(s r3.Vec) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Scale = s
}

// AnimateOrientation implements focus.SceneNode: the orientation is applied
// and done runs immediately.
func (n *Node) AnimateOrientation(o r3.Rotation, done func()) {
	n.mu.Lock()
	n.Orientation = o
	n.OrientationAnimations++
	n.mu.Unlock()
	done()
}

// SetHidden implements focus.SceneNode.
func (n *Node) SetHidden(hidden bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Hidden = hidden
}

// FadeTo implements focus.SceneNode: the flag is applied and done runs
// immediately.
func (n *Node) FadeTo(hidden bool, done func()) {
	n.mu.Lock()
	n.Hidden = hidden
	n.Fades++
	n.mu.Unlock()
	done()
}

// Snapshot returns a copy of the node's current transform state.
func (n *Node) Snapshot() (pos r3.Vec, orient r3.Rotation, scale r3.Vec, hidden bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.Position, n.Orientation, n.Scale, n.Hidden
}
