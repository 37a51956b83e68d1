package geometry

import (
	"fmt"
	"math"

	"cubefit/internal/models"
)

// Axis names one of the coordinate axes
type Axis int

const (
	X Axis = iota
	Y
	Z
)

func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	default:
		return "unknown"
	}
}

// focalFraction places the image plane at cameraDist/focalFraction in front
// of the focal point.
const focalFraction = 10.0

// RotateAxis rotates p by theta radians about axis. The two coordinates
// orthogonal to the axis, taken in increasing order (a, b), map to
// (cos*a - sin*b, sin*a + cos*b); the coordinate along the axis is unchanged.
func RotateAxis(p Point3d, theta float64, axis Axis) Point3d {
	c, s := math.Cos(theta), math.Sin(theta)
	switch axis {
	case X:
		return Point3d{X: p.X, Y: c*p.Y - s*p.Z, Z: s*p.Y + c*p.Z}
	case Y:
		return Point3d{X: c*p.X - s*p.Z, Y: p.Y, Z: s*p.X + c*p.Z}
	default:
		return Point3d{X: c*p.X - s*p.Y, Y: s*p.X + c*p.Y, Z: p.Z}
	}
}

// Rotate applies the rotations theta = [thetaX, thetaY, thetaZ] about the
// Z axis first, then Y, then X. Stored pose data depends on this order.
func Rotate(p Point3d, theta [3]float64) Point3d {
	q := RotateAxis(p, theta[2], Z)
	q = RotateAxis(q, theta[1], Y)
	return RotateAxis(q, theta[0], X)
}

// Project maps p onto the image plane of a camera looking along the X axis
// from (cameraDist, 0, 0). cameraDist is normally negative.
//
// Returns ErrNumericalDegeneracy when p lies in the camera's focal plane or
// the projection is not finite.
func Project(p Point3d, cameraDist float64) (Point2d, error) {
	denom := p.X - cameraDist
	if denom == 0 {
		return Point2d{}, fmt.Errorf("project: point x=%g coincides with camera distance: %w",
			p.X, models.ErrNumericalDegeneracy)
	}
	lambda := (-cameraDist / focalFraction) / denom
	v := Point2d{X: p.Y, Y: p.Z}.Scale(lambda)
	if !v.IsFinite() {
		return Point2d{}, fmt.Errorf("project: non-finite projection of %v: %w",
			p, models.ErrNumericalDegeneracy)
	}
	return v, nil
}

// RotateThenProject rotates p by theta and projects the result
func RotateThenProject(p Point3d, theta [3]float64, cameraDist float64) (Point2d, error) {
	return Project(Rotate(p, theta), cameraDist)
}
