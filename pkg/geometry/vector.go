// Package geometry provides the point types, axis rotations and pinhole
// projection used to place a cube in an image, together with the codec for
// the seven-element pose parameter vector.
package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Point2d is a position in image-pixel space
type Point2d struct {
	X, Y float64
}

// Add returns p+q
func (p Point2d) Add(q Point2d) Point2d {
	return Point2d{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q
func (p Point2d) Sub(q Point2d) Point2d {
	return Point2d{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns lambda*p
func (p Point2d) Scale(lambda float64) Point2d {
	return Point2d{X: lambda * p.X, Y: lambda * p.Y}
}

// Dot returns the dot product of p and q
func (p Point2d) Dot(q Point2d) float64 {
	return p.X*q.X + p.Y*q.Y
}

// IsFinite reports whether neither coordinate is NaN or infinite
func (p Point2d) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Point3d is a position in object-local 3D space
type Point3d struct {
	X, Y, Z float64
}

// Scale returns lambda*p
func (p Point3d) Scale(lambda float64) Point3d {
	return Point3d{X: lambda * p.X, Y: lambda * p.Y, Z: lambda * p.Z}
}

// Norm returns the Euclidean length of p
func (p Point3d) Norm() float64 {
	return r3.Norm(p.Vec())
}

// Vec converts p to a gonum r3 vector
func (p Point3d) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}
