// Package geom provides the world-space math used by the focus engine:
// poses built from gonum vectors and quaternion rotations, camera basis
// extraction, and the tilt/yaw helpers the orientation hysteresis needs.
//
// Conventions follow the usual AR camera frame: right-handed, the camera
// looks down -Z with +Y up and +X right. World up is +Y.
package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Up is the world up axis.
var Up = r3.Vec{Y: 1}

// Identity returns the identity rotation.
func Identity() r3.Rotation {
	return r3.Rotation(quat.Number{Real: 1})
}

// RotationAboutUp returns the rotation of angle radians about the world up
// axis (right-hand rule).
func RotationAboutUp(angle float64) r3.Rotation {
	return r3.NewRotation(angle, Up)
}

// Compose returns the rotation equivalent to applying b first, then a.
func Compose(a, b r3.Rotation) r3.Rotation {
	return r3.Rotation(quat.Mul(quat.Number(a), quat.Number(b)))
}

// Pose is a rigid world-space transform: a position and an orientation.
type Pose struct {
	Position    r3.Vec
	Orientation r3.Rotation
}

// XAxis returns the pose's local +X axis expressed in world coordinates.
func (p Pose) XAxis() r3.Vec { return p.Orientation.Rotate(r3.Vec{X: 1}) }

// YAxis returns the pose's local +Y axis expressed in world coordinates.
func (p Pose) YAxis() r3.Vec { return p.Orientation.Rotate(r3.Vec{Y: 1}) }

// Forward returns the pose's view direction (local -Z) in world coordinates.
func (p Pose) Forward() r3.Vec { return p.Orientation.Rotate(r3.Vec{Z: -1}) }

// Pitch returns the pose's tilt above/below the horizon in radians.
// Positive when looking down, negative when looking up, zero when level.
func (p Pose) Pitch() float64 {
	f := p.Forward()
	return math.Asin(clamp(-f.Y, -1, 1))
}

// Yaw returns the heading angle about the world up axis derived from the
// pose's local X/Y basis vectors. This projection stays stable when the
// camera is pitched near vertical, where a forward-vector heading would
// degenerate.
func (p Pose) Yaw() float64 {
	return math.Atan2(p.XAxis().X, p.YAxis().X)
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// Mean returns the arithmetic mean of the given points.
// It panics on an empty slice; callers guard for emptiness.
func Mean(pts []r3.Vec) r3.Vec {
	if len(pts) == 0 {
		panic("geom: mean of empty point set")
	}
	var sum r3.Vec
	for _, p := range pts {
		sum = r3.Add(sum, p)
	}
	return r3.Scale(1/float64(len(pts)), sum)
}

// RotationApproxEqual reports whether two rotations are equal within tol,
// treating q and -q as the same rotation.
func RotationApproxEqual(a, b r3.Rotation, tol float64) bool {
	qa, qb := quat.Number(a), quat.Number(b)
	d := qa.Real*qb.Real + qa.Imag*qb.Imag + qa.Jmag*qb.Jmag + qa.Kmag*qb.Kmag
	return math.Abs(math.Abs(d)-1) < tol
}

// VecApproxEqual reports whether two vectors are equal within tol per component.
func VecApproxEqual(a, b r3.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
