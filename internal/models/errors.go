package models

import "errors"

var (
	// ErrInvalidArgument is returned when a parameter vector, point list or
	// rate vector has the wrong length for the operation.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNumericalDegeneracy is returned when a projection hits the camera
	// singularity or an evaluation produces NaN or Inf.
	ErrNumericalDegeneracy = errors.New("numerical degeneracy")

	// ErrNonConvergence is returned when the optimizer was asked to require
	// convergence and ran out of iterations first.
	ErrNonConvergence = errors.New("optimizer did not converge")
)
