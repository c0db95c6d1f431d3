package transform

import "fmt"

// DimensionMismatchError reports operands whose point counts or
// dimensionalities disagree.
type DimensionMismatchError struct {
	What string
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: %s: want %d, got %d", e.What, e.Want, e.Got)
}

// SingularSystemError reports a fit whose linear system has no unique
// solution for the given point configuration.
type SingularSystemError struct {
	Op     string
	Reason string
}

func (e *SingularSystemError) Error() string {
	return fmt.Sprintf("%s: singular system: %s", e.Op, e.Reason)
}

// ConvergenceError reports an iterative solve that exhausted its iteration
// budget before meeting its tolerance.
type ConvergenceError struct {
	Iterations int
	RMS        float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("no convergence after %d iterations (rms %.6g)", e.Iterations, e.RMS)
}
