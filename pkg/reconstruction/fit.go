package reconstruction

import (
	"fmt"

	"cubefit/internal/models"
	"cubefit/pkg/config"
	"cubefit/pkg/cube"
	"cubefit/pkg/geometry"
	"cubefit/pkg/objective"
	"cubefit/pkg/optimize"
)

// FitPoints fits a cube to seven ordered points: it builds the objective,
// runs gradient descent from the configured initial guess and places the
// cube with the result. observer may be nil.
//
// An unconverged descent is not an error; check Fit.Converged.
func FitPoints(id int, points []geometry.Point2d, cfg *config.Config, observer optimize.Observer) (*models.Fit, *cube.Cube, error) {
	obj, err := objective.New(points)
	if err != nil {
		return nil, nil, err
	}

	settings := cfg.OptimizeSettings()
	settings.Observer = observer

	res, err := optimize.GradientDescent(obj, cfg.InitialGuess(), cfg.Fit.Rate, cfg.Fit.Tolerance, settings)
	if err != nil {
		return nil, nil, fmt.Errorf("gradient descent: %w", err)
	}

	c, err := cube.New(res.X)
	if err != nil {
		return nil, nil, fmt.Errorf("placing fitted cube: %w", err)
	}

	rms, err := obj.RMSError(res.X)
	if err != nil {
		return nil, nil, err
	}

	fit := &models.Fit{
		ID:         id,
		Params:     c.Parameters(),
		Residual:   res.Value,
		RMSError:   rms,
		Iterations: res.Iterations,
		Converged:  res.Converged,
	}
	for i, v := range c.ProjectedVertices() {
		fit.Vertices[i] = models.Vertex{X: v.X, Y: v.Y}
	}
	return fit, c, nil
}
