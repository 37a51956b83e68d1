package geometry

import (
	"fmt"

	"cubefit/internal/models"
)

// NumParams is the length of a pose parameter vector
const NumParams = 7

// Indices into a pose parameter vector. The layout is fixed.
const (
	ThetaX = iota
	ThetaY
	ThetaZ
	CameraDist
	Scale
	OffsetX
	OffsetY
)

// Pose is the decoded form of a parameter vector
// [thetaX, thetaY, thetaZ, cameraDist, scale, offsetX, offsetY].
type Pose struct {
	Theta      [3]float64
	CameraDist float64
	Scale      float64
	Offset     Point2d
}

// Decode splits a parameter vector into its geometric quantities
func Decode(params []float64) (Pose, error) {
	if len(params) != NumParams {
		return Pose{}, fmt.Errorf("parameter vector has %d elements, want %d: %w",
			len(params), NumParams, models.ErrInvalidArgument)
	}
	return Pose{
		Theta:      [3]float64{params[ThetaX], params[ThetaY], params[ThetaZ]},
		CameraDist: params[CameraDist],
		Scale:      params[Scale],
		Offset:     Point2d{X: params[OffsetX], Y: params[OffsetY]},
	}, nil
}

// Encode is the inverse of Decode
func (p Pose) Encode() []float64 {
	return []float64{
		p.Theta[0], p.Theta[1], p.Theta[2],
		p.CameraDist, p.Scale,
		p.Offset.X, p.Offset.Y,
	}
}

// ToImage maps a projected point into pixel space: scale*v + offset
func (p Pose) ToImage(v Point2d) Point2d {
	return v.Scale(p.Scale).Add(p.Offset)
}

// Apply rotates, projects, scales and offsets an object-space point
func (p Pose) Apply(q Point3d) (Point2d, error) {
	v, err := RotateThenProject(q, p.Theta, p.CameraDist)
	if err != nil {
		return Point2d{}, err
	}
	return p.ToImage(v), nil
}
