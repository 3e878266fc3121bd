/*
generator.go - Dose schedule generation

PURPOSE:
  Turns a prescription start date, a medication profile and a few options
  into an ordered list of DosePeriods that covers the prescription window.

PATHS:
  Which path runs is decided by the request and profile shape:

  single dose   Request.SingleDose set. One period long enough to reach the
                end of the start month plus a safety margin.

  interval      Ampoule with DispensingIntervalDays. Periods are exactly the
                interval long; the last takes whatever is left.

  coverage      Everything else. Normal periods round the quantity UP and
                last 50-62 days; once 62 days or fewer remain, one final
                period rounds DOWN and ends the schedule.

TERMINATION:
  Every non-final coverage period removes at least MinDaysPerDose days from
  the remaining window, and the final period always ends the loop, so a
  window of D days needs at most D/50 + 1 periods. The iteration bound only
  trips for windows longer than the bound allows; it is reported as a
  SchedulingOverflowError rather than a shortened schedule.

EXAMPLE:
  profile, _ := dosing.NewProfile(dosing.KindLiquid, 250, 12)
  schedule, err := dosing.Generate(dosing.Request{
      Start:   calendar.MustDate(1403, 1, 1),
      Profile: profile,
  })
  // schedule.Periods[0]: 3 bottles, 62 days
*/
package dosing

import (
	"github.com/shopspring/decimal"
	"github.com/warp/dispense/calendar"
)

// =============================================================================
// LIMITS
// =============================================================================

const (
	MinDaysPerDose = 50
	MaxDaysPerDose = 62

	// MaxIterations bounds the number of periods of one schedule.
	MaxIterations = 50

	// SingleDoseMarginDays is added to the rest of the start month in
	// single-dose mode.
	SingleDoseMarginDays = 5
)

// =============================================================================
// REQUEST
// =============================================================================

// Request is everything one schedule depends on.
type Request struct {
	Start   calendar.LocalDate
	Profile Profile
	Window  WindowConfig

	// MaxMedicationPerDose caps the units of a period. Zero means no cap.
	MaxMedicationPerDose int

	// SingleDose emits one period reaching the next checkpoint instead of
	// covering the whole window.
	SingleDose bool

	// MaxIterations overrides the period bound. Zero means MaxIterations.
	MaxIterations int
}

// Validate checks the request. The start date is validated here once; the
// arithmetic below assumes it.
func (r Request) Validate() error {
	if err := r.Start.Validate(); err != nil {
		return err
	}
	if err := r.Profile.Validate(); err != nil {
		return err
	}
	if err := r.Window.Validate(); err != nil {
		return err
	}
	if r.MaxMedicationPerDose < 0 {
		return configErr("max_medication_per_dose", "must not be negative, got %d", r.MaxMedicationPerDose)
	}
	if r.MaxIterations < 0 {
		return configErr("max_iterations", "must not be negative, got %d", r.MaxIterations)
	}
	return nil
}

// Mode returns the path Generate will take for r.
func (r Request) Mode() Mode {
	switch {
	case r.SingleDose:
		return ModeSingleDose
	case r.Profile.IsIntervalDriven():
		return ModeInterval
	default:
		return ModeCoverage
	}
}

func (r Request) iterationLimit() int {
	if r.MaxIterations > 0 {
		return r.MaxIterations
	}
	return MaxIterations
}

// =============================================================================
// GENERATE
// =============================================================================

// Generate builds the dispensing schedule for req.
func Generate(req Request) (*Schedule, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	window, err := NewWindow(req.Start, req.Window)
	if err != nil {
		return nil, err
	}

	b := &builder{
		profile: req.Profile,
		cursor:  req.Start,
		schedule: &Schedule{
			Mode:    req.Mode(),
			Window:  window,
			Profile: req.Profile,
		},
	}

	switch b.schedule.Mode {
	case ModeSingleDose:
		b.schedule.Ceiling = req.Profile.NormalDoseCeiling(req.MaxMedicationPerDose)
		b.singleDose(req.Start)
		return b.schedule, nil

	case ModeInterval:
		b.schedule.Ceiling = intervalCeiling(req.Profile, req.MaxMedicationPerDose)
		limit := max(req.iterationLimit(), ceilDiv(window.TotalDays, req.Profile.DispensingIntervalDays))
		if err := b.interval(window.TotalDays, req.MaxMedicationPerDose, limit); err != nil {
			return nil, err
		}
		return b.schedule, nil

	default:
		b.schedule.Ceiling = req.Profile.NormalDoseCeiling(req.MaxMedicationPerDose)
		if err := b.coverage(window.TotalDays, req.MaxMedicationPerDose, req.iterationLimit()); err != nil {
			return nil, err
		}
		return b.schedule, nil
	}
}

// =============================================================================
// BUILDER
// =============================================================================

// builder appends contiguous periods, advancing the cursor as it goes.
type builder struct {
	profile       Profile
	schedule      *Schedule
	cursor        calendar.LocalDate
	daysFromStart int
}

func (b *builder) emit(days, amount int, dose decimal.Decimal, supply int, final bool) {
	p := DosePeriod{
		DoseNumber:         len(b.schedule.Periods) + 1,
		StartDate:          b.cursor,
		EndDate:            b.cursor.AddDays(days - 1),
		DaysCount:          days,
		MedicationAmount:   amount,
		MedicationVolume:   decimal.NewFromInt(int64(amount)).Mul(b.profile.UnitVolume),
		DailyDoseForPeriod: dose,
		DaysFromStart:      b.daysFromStart,
		SupplyDays:         supply,
		IsFinal:            final,
	}
	b.schedule.Periods = append(b.schedule.Periods, p)

	b.daysFromStart += days
	b.cursor = p.NextStart()
}

func (b *builder) overflow(iterations, remaining int) error {
	return &SchedulingOverflowError{
		Iterations:    iterations,
		RemainingDays: remaining,
		PeriodsSoFar:  len(b.schedule.Periods),
	}
}

// singleDose emits one final period sized to reach the end of the start
// month plus SingleDoseMarginDays, never above the normal ceiling.
func (b *builder) singleDose(start calendar.LocalDate) {
	target := start.DaysLeftInMonth() + SingleDoseMarginDays
	dose := b.profile.TaperedDailyDose(0)

	amount := max(1, unitsFor(dose, target, b.profile.UnitVolume, floor))
	amount = min(amount, b.schedule.Ceiling)
	days := max(1, daysCovered(amount, b.profile.UnitVolume, dose))

	b.emit(days, amount, dose, days, true)
}

// coverage runs the day-coverage algorithm over remaining days.
func (b *builder) coverage(remaining, maxPerDose, limit int) error {
	for remaining > 0 {
		if len(b.schedule.Periods) >= limit {
			return b.overflow(limit, remaining)
		}

		dose := b.profile.TaperedDailyDose(b.daysFromStart)

		if remaining <= MaxDaysPerDose {
			b.finalPeriod(remaining, dose)
			return nil
		}

		days, amount, supply := b.normalPeriod(dose, maxPerDose)
		b.emit(days, amount, dose, supply, false)
		remaining -= days
	}
	return nil
}

// finalPeriod covers exactly the remaining days, rounding the quantity down
// and never exceeding the untapered ceiling.
func (b *builder) finalPeriod(remaining int, dose decimal.Decimal) {
	uv := b.profile.UnitVolume

	amount := max(1, unitsFor(dose, remaining, uv, floor))
	amount = min(amount, b.schedule.Ceiling)
	supply := max(1, daysCovered(amount, uv, dose))

	b.emit(remaining, amount, dose, supply, true)
}

// normalPeriod sizes a non-final period: the quantity rounds up and the
// period length lands in [MinDaysPerDose, MaxDaysPerDose].
func (b *builder) normalPeriod(dose decimal.Decimal, maxPerDose int) (days, amount, supply int) {
	uv := b.profile.UnitVolume

	if maxPerDose > 0 {
		amount = maxPerDose
	} else {
		amount = unitsFor(dose, MinDaysPerDose, uv, ceil)
	}
	supply = daysCovered(amount, uv, dose)

	if supply < MinDaysPerDose {
		amount = unitsFor(dose, MinDaysPerDose, uv, ceil)
		supply = daysCovered(amount, uv, dose)
	}
	if supply > MaxDaysPerDose {
		amount = max(1, unitsFor(dose, MaxDaysPerDose, uv, ceil))
		supply = daysCovered(amount, uv, dose)
	}

	// One unit can outlast MaxDaysPerDose; the period still ends there.
	days = max(1, min(supply, MaxDaysPerDose))
	return days, amount, supply
}

// interval runs the fixed-interval path for ampoules.
func (b *builder) interval(remaining, maxPerDose, limit int) error {
	uv := b.profile.UnitVolume
	step := b.profile.DispensingIntervalDays

	for remaining > 0 {
		if len(b.schedule.Periods) >= limit {
			return b.overflow(limit, remaining)
		}

		dose := b.profile.TaperedDailyDose(b.daysFromStart)

		if remaining <= step {
			amount := max(1, unitsFor(dose, remaining, uv, floor))
			amount = min(amount, b.schedule.Ceiling)
			b.emit(remaining, amount, dose, max(1, daysCovered(amount, uv, dose)), true)
			return nil
		}

		amount := max(1, unitsFor(dose, step, uv, ceil))
		if maxPerDose > 0 {
			amount = min(amount, maxPerDose)
		}
		b.emit(step, amount, dose, daysCovered(amount, uv, dose), false)
		remaining -= step
	}
	return nil
}

// intervalCeiling is the most one interval period may dispense.
func intervalCeiling(p Profile, maxPerDose int) int {
	if maxPerDose > 0 {
		return maxPerDose
	}
	return max(1, unitsFor(p.DailyDose, p.DispensingIntervalDays, p.UnitVolume, ceil))
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
