package sim

import (
	"errors"
	"fmt"
)

// Failure classes of a coupled run. None of them is retried: every error
// returned by the core ends the run.
var (
	// ErrConfiguration marks setup problems detected before the iteration loop.
	ErrConfiguration = errors.New("configuration error")
	// ErrNumericalInstability marks a post-collision range check failure.
	ErrNumericalInstability = errors.New("numerical instability")
	// ErrCouplingProtocol marks a desynchronised fluid/particle exchange.
	ErrCouplingProtocol = errors.New("coupling protocol error")
	// ErrOutOfBounds marks lattice access outside the bounding box.
	ErrOutOfBounds = errors.New("lattice index out of bounds")
	// ErrBoundaryOrder marks a pressure correction applied out of sequence.
	ErrBoundaryOrder = errors.New("pressure boundary phase out of order")
)

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func couplingErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCouplingProtocol, fmt.Sprintf(format, args...))
}

// InstabilityError reports the first site that failed the post-collision
// range check.
type InstabilityError struct {
	X, Y, Z   int
	Iteration int64
	Density   float64
	Reason    string
}

func (e *InstabilityError) Error() string {
	return fmt.Sprintf("numerical instability at site (%d,%d,%d), iteration %d: %s (rho=%g)",
		e.X, e.Y, e.Z, e.Iteration, e.Reason, e.Density)
}

func (e *InstabilityError) Unwrap() error { return ErrNumericalInstability }
