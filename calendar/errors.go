package calendar

import (
	"errors"
	"fmt"
)

// ErrInvalidDate is returned (wrapped) whenever a date falls outside the
// calendar. Use with errors.Is().
var ErrInvalidDate = errors.New("invalid date")

// InvalidDateError carries the offending date and what is wrong with it.
type InvalidDateError struct {
	Date   LocalDate
	Reason string
}

func (e *InvalidDateError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("invalid date: %s", e.Reason)
	}
	return fmt.Sprintf("invalid date %s: %s", e.Date, e.Reason)
}

func (e *InvalidDateError) Unwrap() error {
	return ErrInvalidDate
}
