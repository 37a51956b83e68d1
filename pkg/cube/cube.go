// Package cube builds the image-plane corners of a unit cube placed with a
// pose parameter vector.
package cube

import (
	"fmt"

	"cubefit/pkg/geometry"
)

// NumVertices is the number of cube corners
const NumVertices = 8

// NumLandmarks is the number of corners a user marks in an image
const NumLandmarks = 7

// Index returns the canonical index 4x+2y+z of the unit-cube corner (x,y,z)
// with x, y, z in {0, 1}.
func Index(x, y, z int) int {
	return 4*x + 2*y + z
}

// UnitVertices returns the corners of the unit cube {0,1}^3 in canonical
// order, so that vertex 3 is (0,1,1).
func UnitVertices() [NumVertices]geometry.Point3d {
	var verts [NumVertices]geometry.Point3d
	for x := 0; x < 2; x++ {
		for y := 0; y < 2; y++ {
			for z := 0; z < 2; z++ {
				verts[Index(x, y, z)] = geometry.Point3d{X: float64(x), Y: float64(y), Z: float64(z)}
			}
		}
	}
	return verts
}

// Landmarks returns the seven corners matched against user input, in the
// order the points must be supplied: the central corner nearest the camera,
// the top corner, then the remaining silhouette corners anti-clockwise (image
// y grows downwards). The far corner (1,1,1) is assumed hidden.
func Landmarks() [NumLandmarks]geometry.Point3d {
	return [NumLandmarks]geometry.Point3d{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 1, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 1},
		{X: 0, Y: 0, Z: 1},
		{X: 0, Y: 1, Z: 1},
		{X: 0, Y: 1, Z: 0},
	}
}

// LandmarkIndices returns the canonical vertex index of each landmark
func LandmarkIndices() [NumLandmarks]int {
	var idx [NumLandmarks]int
	for i, v := range Landmarks() {
		idx[i] = Index(int(v.X), int(v.Y), int(v.Z))
	}
	return idx
}

// Cube is a unit cube placed in an image by a pose parameter vector.
// It is immutable once created.
type Cube struct {
	params    []float64
	pose      geometry.Pose
	rotated   [NumVertices]geometry.Point3d
	projected [NumVertices]geometry.Point2d
}

// New places the unit cube with params. Each corner is rotated, projected,
// then mapped to scale*v + offset.
func New(params []float64) (*Cube, error) {
	pose, err := geometry.Decode(params)
	if err != nil {
		return nil, err
	}

	c := &Cube{
		params: append([]float64(nil), params...),
		pose:   pose,
	}
	for i, v := range UnitVertices() {
		c.rotated[i] = geometry.Rotate(v, pose.Theta)
		p, err := geometry.Project(c.rotated[i], pose.CameraDist)
		if err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
		c.projected[i] = pose.ToImage(p)
	}
	return c, nil
}

// ProjectedVertices returns the eight image-plane corners in canonical order
func (c *Cube) ProjectedVertices() [NumVertices]geometry.Point2d {
	return c.projected
}

// RotatedVertices returns the rotated unit-cube corners before projection
func (c *Cube) RotatedVertices() [NumVertices]geometry.Point3d {
	return c.rotated
}

// Parameters returns a copy of the parameter vector the cube was built from
func (c *Cube) Parameters() []float64 {
	return append([]float64(nil), c.params...)
}

// Pose returns the decoded parameters
func (c *Cube) Pose() geometry.Pose {
	return c.pose
}

// LandmarkPoints returns the projections of the seven landmark corners in
// input order, i.e. the points a perfect annotation would contain.
func (c *Cube) LandmarkPoints() []geometry.Point2d {
	idx := LandmarkIndices()
	pts := make([]geometry.Point2d, len(idx))
	for i, j := range idx {
		pts[i] = c.projected[j]
	}
	return pts
}
