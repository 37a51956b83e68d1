// Package objective measures how well a posed cube explains seven points
// marked in an image.
package objective

import (
	"fmt"
	"math"

	"cubefit/internal/models"
	"cubefit/pkg/cube"
	"cubefit/pkg/geometry"
)

// Objective is the sum of squared pixel distances between the projected
// landmark corners and the observed points. Observed point i is paired with
// landmark i of cube.Landmarks; supplying points in another order yields a
// wrong fit without any error.
type Objective struct {
	observed  [cube.NumLandmarks]geometry.Point2d
	landmarks [cube.NumLandmarks]geometry.Point3d
}

// New builds an objective from exactly seven observed points
func New(observed []geometry.Point2d) (*Objective, error) {
	if len(observed) != cube.NumLandmarks {
		return nil, fmt.Errorf("got %d observed points, want %d: %w",
			len(observed), cube.NumLandmarks, models.ErrInvalidArgument)
	}
	o := &Objective{landmarks: cube.Landmarks()}
	copy(o.observed[:], observed)
	return o, nil
}

// Dims returns the length of the parameter vector Evaluate expects
func (o *Objective) Dims() int {
	return geometry.NumParams
}

// Observed returns the observed points in input order
func (o *Objective) Observed() []geometry.Point2d {
	return append([]geometry.Point2d(nil), o.observed[:]...)
}

// Evaluate returns the fit residual at params. It is zero only for a
// perfect fit.
func (o *Objective) Evaluate(params []float64) (float64, error) {
	pose, err := geometry.Decode(params)
	if err != nil {
		return 0, err
	}

	sum := 0.0
	for i := range o.landmarks {
		d, err := o.offsetAt(pose, i)
		if err != nil {
			return 0, err
		}
		sum += d.Dot(d)
	}
	return sum, nil
}

// Residuals returns the pixel distance of each landmark from its observed
// point, in input order.
func (o *Objective) Residuals(params []float64) ([]float64, error) {
	pose, err := geometry.Decode(params)
	if err != nil {
		return nil, err
	}

	res := make([]float64, len(o.landmarks))
	for i := range o.landmarks {
		d, err := o.offsetAt(pose, i)
		if err != nil {
			return nil, err
		}
		res[i] = math.Sqrt(d.Dot(d))
	}
	return res, nil
}

// RMSError returns the root mean square landmark distance in pixels
func (o *Objective) RMSError(params []float64) (float64, error) {
	sum, err := o.Evaluate(params)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(sum / float64(len(o.landmarks))), nil
}

func (o *Objective) offsetAt(pose geometry.Pose, i int) (geometry.Point2d, error) {
	v, err := pose.Apply(o.landmarks[i])
	if err != nil {
		return geometry.Point2d{}, fmt.Errorf("landmark %d: %w", i, err)
	}
	return v.Sub(o.observed[i]), nil
}
