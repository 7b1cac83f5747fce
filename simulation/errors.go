/*
errors.go - Centralized error types for the simulation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Model packages surface these errors unchanged; API layers map them
  to HTTP status codes via the Is* helpers.

ERROR CATEGORIES:
  1. Parameter errors - Bad dynamic inputs (type, range)
  2. Lifecycle errors - Misuse of a model instance
  3. Store errors - Run persistence failures

Any parameter error is a configuration defect, not a transient
condition: there are no retries, and a run aborted mid-loop keeps the
partial series it recorded as valid history.

SEE ALSO:
  - param.go: Raises parameter errors during resolution
  - runstore.go: Raises ErrRunNotFound
*/
package simulation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidParameterType is returned when a dynamic parameter is
	// neither a number nor a function of the period index.
	ErrInvalidParameterType = errors.New("invalid parameter type")

	// ErrInvalidParameterRange is returned when a resolved parameter
	// value falls outside its allowed interval.
	ErrInvalidParameterRange = errors.New("parameter value out of range")

	// ErrSimulationConsumed is returned when Simulate is called twice
	// on the same model instance. Instances are single-use: a second
	// run would continue from mutated state and double-accumulate.
	ErrSimulationConsumed = errors.New("simulation already run on this instance")

	// ErrNegativeHorizon is returned when time_period or grace_period
	// is negative.
	ErrNegativeHorizon = errors.New("time_period and grace_period must be non-negative")

	// ErrRunNotFound is returned when a referenced run doesn't exist.
	ErrRunNotFound = errors.New("run not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidParameterTypeError identifies which parameter was given an
// unusable value, and what that value was.
type InvalidParameterTypeError struct {
	Param string
	Value any
}

func (e *InvalidParameterTypeError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("parameter %q must be a number or a function of the period index, got nothing", e.Param)
	}
	return fmt.Sprintf("parameter %q must be a number or a function of the period index, got %T (%v)", e.Param, e.Value, e.Value)
}

func (e *InvalidParameterTypeError) Unwrap() error {
	return ErrInvalidParameterType
}

// InvalidParameterRangeError reports a resolved value outside its
// allowed interval, and the period at which resolution happened.
type InvalidParameterRangeError struct {
	Param string
	Value decimal.Decimal
	T     int
}

func (e *InvalidParameterRangeError) Error() string {
	return fmt.Sprintf("parameter %q must be within [0, 1], got %s at t=%d", e.Param, e.Value, e.T)
}

func (e *InvalidParameterRangeError) Unwrap() error {
	return ErrInvalidParameterRange
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInputError returns true if the error is due to invalid caller input.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidParameterType) ||
		errors.Is(err, ErrInvalidParameterRange) ||
		errors.Is(err, ErrNegativeHorizon)
}

// IsNotFound returns true if the error indicates a missing run.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRunNotFound)
}
