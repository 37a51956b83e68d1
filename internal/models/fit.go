package models

// Vertex is an image-plane position as written to disk
type Vertex struct {
	X float64
	Y float64
}

// Fit represents the outcome of fitting a cube to one annotated image
type Fit struct {
	// ID identifies the image, e.g. the number of the sequential image file
	ID int

	// Filename is the image the annotations belong to
	Filename string

	// Params is the fitted pose parameter vector
	// [thetaX, thetaY, thetaZ, cameraDist, scale, offsetX, offsetY]
	Params []float64

	// Vertices holds the eight projected cube corners in canonical order
	Vertices [8]Vertex

	// Residual is the objective value at Params (sum of squared pixel errors)
	Residual float64

	// RMSError is the root mean square pixel distance over the landmarks
	RMSError float64

	// Iterations is the number of descent steps taken
	Iterations int

	// Converged is false when the iteration cap was reached first
	Converged bool
}

// Accepted reports whether the fit should be persisted under the given policy
func (f *Fit) Accepted(acceptUnconverged bool) bool {
	return f.Converged || acceptUnconverged
}
