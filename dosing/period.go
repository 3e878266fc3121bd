package dosing

import (
	"github.com/shopspring/decimal"
	"github.com/warp/dispense/calendar"
)

// =============================================================================
// DOSE PERIOD - One dispensing interval
// =============================================================================

// DosePeriod is one dispensing: a quantity handed out on StartDate that has
// to last until EndDate inclusive.
type DosePeriod struct {
	DoseNumber         int
	StartDate          calendar.LocalDate
	EndDate            calendar.LocalDate
	DaysCount          int
	MedicationAmount   int             // units dispensed
	MedicationVolume   decimal.Decimal // MedicationAmount * UnitVolume
	DailyDoseForPeriod decimal.Decimal // after tapering
	DaysFromStart      int

	// SupplyDays is how long MedicationAmount lasts at DailyDoseForPeriod.
	// It equals DaysCount unless rounding left the period short (final
	// period, rounded down) or long (normal period clamped to MaxDaysPerDose).
	SupplyDays int

	IsFinal bool
}

// Contains returns true if d falls within the period.
func (p DosePeriod) Contains(d calendar.LocalDate) bool {
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// NextStart is the first day after the period.
func (p DosePeriod) NextStart() calendar.LocalDate {
	return p.EndDate.AddDays(1)
}

// =============================================================================
// SCHEDULE - The generator's result
// =============================================================================

// Mode records which scheduling path produced a schedule.
type Mode string

const (
	ModeCoverage   Mode = "coverage"    // day coverage with 50-62 day periods
	ModeInterval   Mode = "interval"    // fixed dispensing interval (ampoules)
	ModeSingleDose Mode = "single_dose" // one period up to the next checkpoint
)

// Schedule is an ordered, contiguous list of periods plus the window and
// profile that produced it.
type Schedule struct {
	Mode    Mode
	Window  Window
	Profile Profile
	Periods []DosePeriod

	// Ceiling is the normal-dose ceiling that bounded every rounded-down
	// period.
	Ceiling int
}

// TotalAmount sums the dispensed units.
func (s *Schedule) TotalAmount() int {
	total := 0
	for _, p := range s.Periods {
		total += p.MedicationAmount
	}
	return total
}

// TotalVolume sums the dispensed volume.
func (s *Schedule) TotalVolume() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Periods {
		total = total.Add(p.MedicationVolume)
	}
	return total
}

// TotalDays sums the period lengths.
func (s *Schedule) TotalDays() int {
	total := 0
	for _, p := range s.Periods {
		total += p.DaysCount
	}
	return total
}

// Final returns the terminal period.
func (s *Schedule) Final() (DosePeriod, bool) {
	if len(s.Periods) == 0 {
		return DosePeriod{}, false
	}
	last := s.Periods[len(s.Periods)-1]
	return last, last.IsFinal
}

// PeriodOn returns the period covering d, if any.
func (s *Schedule) PeriodOn(d calendar.LocalDate) (DosePeriod, bool) {
	for _, p := range s.Periods {
		if p.Contains(d) {
			return p, true
		}
	}
	return DosePeriod{}, false
}
