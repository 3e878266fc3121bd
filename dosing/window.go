package dosing

import (
	"fmt"

	"github.com/warp/dispense/calendar"
)

// =============================================================================
// BOUNDARY POLICY - How the end of a prescription window is chosen
// =============================================================================

// BoundaryPolicy selects how the boundary date of a window is computed from
// its start date.
type BoundaryPolicy string

const (
	// BoundaryLastDayOfNthMonth ends the window on the last day of the Nth
	// month counting the start month as the first (N=6: advance 5 months).
	BoundaryLastDayOfNthMonth BoundaryPolicy = "last_day_of_nth_month"

	// BoundarySameDayClipped ends the window N months later on the start
	// day, clipped to the length of that month.
	BoundarySameDayClipped BoundaryPolicy = "same_day_clipped"

	// BoundaryFixedCheckpointDay ends the window N months later on a fixed
	// checkpoint day (the commission day, 25 by default).
	BoundaryFixedCheckpointDay BoundaryPolicy = "fixed_checkpoint_day"
)

// Valid reports whether bp is a known policy.
func (bp BoundaryPolicy) Valid() bool {
	switch bp {
	case BoundaryLastDayOfNthMonth, BoundarySameDayClipped, BoundaryFixedCheckpointDay:
		return true
	default:
		return false
	}
}

const (
	DefaultWindowMonths  = 6
	DefaultCheckpointDay = 25
)

// WindowConfig selects a boundary policy and its parameters. The zero value
// is the six-month last-day-of-month window.
type WindowConfig struct {
	Policy        BoundaryPolicy
	Months        int // N; defaults to DefaultWindowMonths
	CheckpointDay int // only for BoundaryFixedCheckpointDay; defaults to DefaultCheckpointDay
}

// withDefaults fills unset fields.
func (wc WindowConfig) withDefaults() WindowConfig {
	if wc.Policy == "" {
		wc.Policy = BoundaryLastDayOfNthMonth
	}
	if wc.Months == 0 {
		wc.Months = DefaultWindowMonths
	}
	if wc.Policy == BoundaryFixedCheckpointDay && wc.CheckpointDay == 0 {
		wc.CheckpointDay = DefaultCheckpointDay
	}
	return wc
}

// Validate checks the config after defaults are applied.
func (wc WindowConfig) Validate() error {
	wc = wc.withDefaults()
	if !wc.Policy.Valid() {
		return configErr("window.policy", "%q is not a known boundary policy", wc.Policy)
	}
	if wc.Months < 1 {
		return configErr("window.months", "must be at least 1, got %d", wc.Months)
	}
	if wc.Policy == BoundaryFixedCheckpointDay && (wc.CheckpointDay < 1 || wc.CheckpointDay > 31) {
		return configErr("window.checkpoint_day", "must be in [1, 31], got %d", wc.CheckpointDay)
	}
	return nil
}

// Boundary returns the boundary date for a window starting at start.
func (wc WindowConfig) Boundary(start calendar.LocalDate) calendar.LocalDate {
	wc = wc.withDefaults()

	switch wc.Policy {
	case BoundaryLastDayOfNthMonth:
		return start.AddMonths(wc.Months - 1).EndOfMonth()

	case BoundarySameDayClipped:
		// AddMonths already clips the day to the target month.
		return start.AddMonths(wc.Months)

	case BoundaryFixedCheckpointDay:
		b := start.AddMonths(wc.Months)
		b.Day = min(wc.CheckpointDay, calendar.MonthLength(b.Month))
		return b

	default:
		return start.AddMonths(wc.Months - 1).EndOfMonth()
	}
}

// String describes the policy, e.g. "last_day_of_nth_month(6)".
func (wc WindowConfig) String() string {
	wc = wc.withDefaults()
	if wc.Policy == BoundaryFixedCheckpointDay {
		return fmt.Sprintf("%s(%d, day %d)", wc.Policy, wc.Months, wc.CheckpointDay)
	}
	return fmt.Sprintf("%s(%d)", wc.Policy, wc.Months)
}

// =============================================================================
// WINDOW - The span a schedule has to cover
// =============================================================================

// Window is the validity window of one prescription.
type Window struct {
	Start     calendar.LocalDate
	Boundary  calendar.LocalDate
	TotalDays int
	Config    WindowConfig
}

// NewWindow computes the window for start under cfg. A boundary before the
// start is a configuration error, never an empty schedule.
func NewWindow(start calendar.LocalDate, cfg WindowConfig) (Window, error) {
	if err := start.Validate(); err != nil {
		return Window{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Window{}, err
	}

	cfg = cfg.withDefaults()
	boundary := cfg.Boundary(start)
	total := calendar.DaysBetween(start, boundary)
	if total < 0 {
		return Window{}, configErr("window", "boundary %s is before start %s", boundary, start)
	}

	return Window{Start: start, Boundary: boundary, TotalDays: total, Config: cfg}, nil
}

// Contains returns true if d is within [Start, Boundary].
func (w Window) Contains(d calendar.LocalDate) bool {
	return !d.Before(w.Start) && !d.After(w.Boundary)
}
