/*
errors.go - Error types for schedule generation

PURPOSE:
  All failures of the dosing package in one place. Every error is local,
  synchronous and non-retryable: retrying the same pure computation gives
  the same answer.

ERROR CATEGORIES:
  1. Configuration errors - a profile or window that cannot produce a schedule
  2. Overflow errors - the generator hit its iteration bound
  3. Date errors - re-exported from the calendar package

USAGE:
  schedule, err := dosing.Generate(req)
  if errors.Is(err, dosing.ErrConfiguration) {
      // reject the request
  }
*/
package dosing

import (
	"errors"
	"fmt"

	"github.com/warp/dispense/calendar"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrConfiguration is returned when a profile or window is malformed,
	// e.g. a non-positive unit volume or a boundary before the start date.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrSchedulingOverflow is returned when the generator reaches its
	// iteration bound before covering the window.
	ErrSchedulingOverflow = errors.New("scheduling did not converge")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ConfigurationError names the offending field.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

func configErr(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// SchedulingOverflowError reports how far the generator got.
type SchedulingOverflowError struct {
	Iterations    int
	RemainingDays int
	PeriodsSoFar  int
}

func (e *SchedulingOverflowError) Error() string {
	return fmt.Sprintf("scheduling did not converge after %d iterations: %d days still uncovered (%d periods generated)",
		e.Iterations, e.RemainingDays, e.PeriodsSoFar)
}

func (e *SchedulingOverflowError) Unwrap() error {
	return ErrSchedulingOverflow
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, calendar.ErrInvalidDate)
}
