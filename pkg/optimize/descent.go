// Package optimize implements fixed-step gradient descent with a separate
// learning rate for every dimension and a forward finite-difference
// gradient.
//
// The method is first order and local. It has no line search and no
// momentum, so it depends on the initial guess and on the rate vector being
// scaled to the objective's curvature; badly scaled rates oscillate or
// diverge.
package optimize

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"

	"cubefit/internal/models"
)

const (
	// DefaultStep is the forward-difference perturbation
	DefaultStep = 1e-4

	// DefaultMaxIterations caps the number of descent steps
	DefaultMaxIterations = 10000
)

// Function is a scalar objective of a parameter vector
type Function interface {
	Evaluate(x []float64) (float64, error)
}

// Dimensioner is implemented by functions with a fixed arity
type Dimensioner interface {
	Dims() int
}

// Func adapts a plain function to Function
type Func func(x []float64) float64

// Evaluate calls f
func (f Func) Evaluate(x []float64) (float64, error) {
	return f(x), nil
}

// Iteration describes the state after one descent step
type Iteration struct {
	// Iter counts steps taken so far, starting at 1
	Iter int

	// X is the estimate after the step
	X []float64

	// Gradient is the finite-difference gradient the step used
	Gradient []float64

	// GradNormSq is the squared norm of Gradient
	GradNormSq float64

	// Value is f at the point the gradient was taken
	Value float64
}

// Observer receives every iteration. The slices are only valid during
// the call.
type Observer func(Iteration)

// Settings tunes GradientDescent
type Settings struct {
	// Step is the finite-difference perturbation
	Step float64

	// MaxIterations stops the descent when reached
	MaxIterations int

	// Observer, if set, is called after every step
	Observer Observer

	// RequireConvergence makes hitting MaxIterations an ErrNonConvergence
	// error instead of a result with Converged set to false
	RequireConvergence bool
}

// DefaultSettings returns the settings used when nil is passed
func DefaultSettings() *Settings {
	return &Settings{
		Step:          DefaultStep,
		MaxIterations: DefaultMaxIterations,
	}
}

// Result is the outcome of a descent
type Result struct {
	// X is the final estimate
	X []float64

	// Iterations is the number of steps taken
	Iterations int

	// GradNormSq is the squared gradient norm of the last step
	GradNormSq float64

	// Value is f at X
	Value float64

	// Converged reports whether GradNormSq fell below the tolerance before
	// the iteration cap
	Converged bool
}

// GradientDescent minimises f from init. Each step estimates the gradient g
// with N+1 evaluations of f and moves x[i] -= rate[i]*g[i]. It stops once
// g.g < tol or after settings.MaxIterations steps.
//
// If f fails, or its value or gradient stops being finite, the descent stops
// and the last finite estimate is returned with the error.
func GradientDescent(f Function, init, rate []float64, tol float64, settings *Settings) (*Result, error) {
	if settings == nil {
		settings = DefaultSettings()
	}
	if err := validate(f, init, rate, tol, settings); err != nil {
		return nil, err
	}

	n := len(init)
	x := append([]float64(nil), init...)
	next := make([]float64, n)
	grad := make([]float64, n)
	res := &Result{X: x}

	var evalErr error
	fn := func(p []float64) float64 {
		v, err := f.Evaluate(p)
		if err != nil && evalErr == nil {
			evalErr = err
		}
		return v
	}

	for res.Iterations < settings.MaxIterations {
		value, err := f.Evaluate(x)
		if err != nil {
			return res, fmt.Errorf("iteration %d: %w", res.Iterations+1, err)
		}
		if !isFinite(value) {
			return res, fmt.Errorf("iteration %d: objective value %g: %w",
				res.Iterations+1, value, models.ErrNumericalDegeneracy)
		}
		res.Value = value

		fd.Gradient(grad, fn, x, &fd.Settings{
			Formula:     fd.Forward,
			Step:        settings.Step,
			OriginKnown: true,
			OriginValue: value,
		})
		if evalErr != nil {
			return res, fmt.Errorf("iteration %d: gradient: %w", res.Iterations+1, evalErr)
		}
		if !allFinite(grad) {
			return res, fmt.Errorf("iteration %d: non-finite gradient: %w",
				res.Iterations+1, models.ErrNumericalDegeneracy)
		}

		floats.MulTo(next, rate, grad)
		floats.SubTo(next, x, next)
		if !allFinite(next) {
			return res, fmt.Errorf("iteration %d: non-finite estimate: %w",
				res.Iterations+1, models.ErrNumericalDegeneracy)
		}
		x, next = next, x

		res.X = x
		res.Iterations++
		res.GradNormSq = floats.Dot(grad, grad)

		if settings.Observer != nil {
			settings.Observer(Iteration{
				Iter:       res.Iterations,
				X:          x,
				Gradient:   grad,
				GradNormSq: res.GradNormSq,
				Value:      value,
			})
		}

		if res.GradNormSq < tol {
			res.Converged = true
			break
		}
	}

	res.X = append([]float64(nil), x...)
	value, err := f.Evaluate(res.X)
	if err != nil {
		return res, fmt.Errorf("final evaluation: %w", err)
	}
	if !isFinite(value) {
		return res, fmt.Errorf("final evaluation: objective value %g: %w",
			value, models.ErrNumericalDegeneracy)
	}
	res.Value = value

	if !res.Converged && settings.RequireConvergence {
		return res, fmt.Errorf("squared gradient norm %g after %d iterations, tolerance %g: %w",
			res.GradNormSq, res.Iterations, tol, models.ErrNonConvergence)
	}
	return res, nil
}

func validate(f Function, init, rate []float64, tol float64, settings *Settings) error {
	if f == nil {
		return fmt.Errorf("nil objective: %w", models.ErrInvalidArgument)
	}
	if len(init) == 0 {
		return fmt.Errorf("empty initial guess: %w", models.ErrInvalidArgument)
	}
	if len(rate) != len(init) {
		return fmt.Errorf("rate has %d elements, initial guess has %d: %w",
			len(rate), len(init), models.ErrInvalidArgument)
	}
	if d, ok := f.(Dimensioner); ok && d.Dims() != len(init) {
		return fmt.Errorf("objective expects %d parameters, initial guess has %d: %w",
			d.Dims(), len(init), models.ErrInvalidArgument)
	}
	if math.IsNaN(tol) || tol < 0 {
		return fmt.Errorf("tolerance %g: %w", tol, models.ErrInvalidArgument)
	}
	if !(settings.Step > 0) {
		return fmt.Errorf("finite-difference step %g: %w", settings.Step, models.ErrInvalidArgument)
	}
	if settings.MaxIterations <= 0 {
		return fmt.Errorf("iteration cap %d: %w", settings.MaxIterations, models.ErrInvalidArgument)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(s []float64) bool {
	for _, v := range s {
		if !isFinite(v) {
			return false
		}
	}
	return true
}
