/*
Package dosing computes medication dispensing schedules on the solar calendar.

KEY CONCEPTS:
  - Profile: how a medication is packaged and consumed (unit volume, daily
    dose, optional tapering, optional fixed dispensing interval)
  - Window: the validity window of a prescription, bounded by a
    policy-selected boundary date
  - DosePeriod: one dispensing interval with a quantity and a day range
  - Generate: turns a start date, a profile and options into a Schedule

ROUNDING:
  Normal periods round the quantity UP so the patient does not run out
  before the next visit. The final period rounds DOWN so nothing is
  stockpiled past the end of the prescription. All quantities are
  decimal.Decimal so floor/ceil of products like 3*250/12 are exact.

SEE ALSO:
  - window.go: boundary policies
  - generator.go: the scheduling algorithm
  - calendar package: date arithmetic
*/
package dosing

import (
	"math"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MEDICATION KIND
// =============================================================================

// Kind identifies how a medication is packaged.
type Kind string

const (
	KindLiquid  Kind = "liquid"  // bottles measured in cc
	KindTablet  Kind = "tablet"  // packs of N tablets
	KindAmpoule Kind = "ampoule" // single ampoules
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindLiquid, KindTablet, KindAmpoule:
		return true
	default:
		return false
	}
}

// Tapering limits
const (
	MaxReductionPercent       = 50
	MinReductionIntervalMonth = 1
	MaxReductionIntervalMonth = 6

	// daysPerTaperMonth converts a reduction interval in months to days.
	daysPerTaperMonth = 30
)

// Quantity limits. Unit and day counts derived from a valid profile stay
// far inside int.
const (
	MaxUnitsPerPeriod = 1_000_000_000
	MaxDaysPerUnit    = 1_000_000
)

var (
	hundred            = decimal.NewFromInt(100)
	maxReductionPctDec = decimal.NewFromInt(MaxReductionPercent)
	maxUnitsDec        = decimal.NewFromInt(MaxUnitsPerPeriod)
	maxDaysPerUnitDec  = decimal.NewFromInt(MaxDaysPerUnit)
	maxCountDec        = decimal.NewFromInt(math.MaxInt32)
)

// =============================================================================
// PROFILE
// =============================================================================

// Profile describes a medication's dosing. Construct it with NewProfile and
// the With* methods, which return validated copies; a Profile is never
// modified in place.
type Profile struct {
	Kind       Kind
	UnitVolume decimal.Decimal // volume (or count) in one dispensed unit
	DailyDose  decimal.Decimal // volume (or count) consumed per day
	UnitLabel  string          // e.g. "bottle", "pack"

	// Tapering: the daily dose shrinks by ReductionPercent every
	// ReductionIntervalMonths (30-day months). Zero percent disables it.
	ReductionPercent        decimal.Decimal
	ReductionIntervalMonths int

	// DispensingIntervalDays drives interval scheduling for ampoules.
	// Zero means the regular day-coverage algorithm is used.
	DispensingIntervalDays int
}

// NewProfile builds and validates a profile.
func NewProfile(kind Kind, unitVolume, dailyDose float64) (Profile, error) {
	if err := finite("unit_volume", unitVolume); err != nil {
		return Profile{}, err
	}
	if err := finite("daily_dose", dailyDose); err != nil {
		return Profile{}, err
	}
	p := Profile{
		Kind:       kind,
		UnitVolume: decimal.NewFromFloat(unitVolume),
		DailyDose:  decimal.NewFromFloat(dailyDose),
		UnitLabel:  string(kind),
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// WithUnitLabel returns a copy with a different unit label.
func (p Profile) WithUnitLabel(label string) Profile {
	p.UnitLabel = label
	return p
}

// WithTapering returns a validated copy that reduces the daily dose by
// percent every intervalMonths.
func (p Profile) WithTapering(percent float64, intervalMonths int) (Profile, error) {
	if err := finite("reduction_percent", percent); err != nil {
		return Profile{}, err
	}
	p.ReductionPercent = decimal.NewFromFloat(percent)
	p.ReductionIntervalMonths = intervalMonths
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// WithDispensingInterval returns a validated copy dispensed every days days.
// Only ampoules accept an interval.
func (p Profile) WithDispensingInterval(days int) (Profile, error) {
	p.DispensingIntervalDays = days
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks every invariant of the profile. Division by UnitVolume
// and DailyDose happens throughout the generator, so both must be positive.
func (p Profile) Validate() error {
	if !p.Kind.Valid() {
		return configErr("kind", "%q is not one of liquid, tablet, ampoule", p.Kind)
	}
	if !p.UnitVolume.IsPositive() {
		return configErr("unit_volume", "must be positive, got %s", p.UnitVolume)
	}
	if !p.DailyDose.IsPositive() {
		return configErr("daily_dose", "must be positive, got %s", p.DailyDose)
	}

	if p.ReductionPercent.IsNegative() || p.ReductionPercent.GreaterThan(maxReductionPctDec) {
		return configErr("reduction_percent", "must be in [0, %d], got %s", MaxReductionPercent, p.ReductionPercent)
	}
	if p.ReductionPercent.IsPositive() &&
		(p.ReductionIntervalMonths < MinReductionIntervalMonth || p.ReductionIntervalMonths > MaxReductionIntervalMonth) {
		return configErr("reduction_interval_months", "must be in [%d, %d] when tapering, got %d",
			MinReductionIntervalMonth, MaxReductionIntervalMonth, p.ReductionIntervalMonths)
	}

	if p.DispensingIntervalDays < 0 {
		return configErr("dispensing_interval_days", "must not be negative, got %d", p.DispensingIntervalDays)
	}
	if p.DispensingIntervalDays > 0 && p.Kind != KindAmpoule {
		return configErr("dispensing_interval_days", "only applies to ampoules, not %s", p.Kind)
	}

	span := decimal.NewFromInt(int64(max(MaxDaysPerDose, p.DispensingIntervalDays)))
	if units := p.DailyDose.Mul(span).Div(p.UnitVolume); units.GreaterThan(maxUnitsDec) {
		return configErr("daily_dose", "needs %s units for %s days, more than %d", units.Ceil(), span, MaxUnitsPerPeriod)
	}
	if days := p.UnitVolume.Div(p.DailyDose); days.GreaterThan(maxDaysPerUnitDec) {
		return configErr("daily_dose", "one unit would last %s days, more than %d", days.Floor(), MaxDaysPerUnit)
	}
	return nil
}

// finite rejects NaN and infinities, which have no decimal form.
func finite(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return configErr(field, "must be a finite number, got %v", v)
	}
	return nil
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// IsTapered reports whether the daily dose shrinks over time.
func (p Profile) IsTapered() bool {
	return p.ReductionPercent.IsPositive()
}

// IsIntervalDriven reports whether periods follow a fixed dispensing
// interval instead of day coverage.
func (p Profile) IsIntervalDriven() bool {
	return p.Kind == KindAmpoule && p.DispensingIntervalDays > 0
}

// DaysPerUnit returns floor(UnitVolume / DailyDose): how long one unit lasts
// at the untapered dose. It is undefined for ampoules (ok is false).
func (p Profile) DaysPerUnit() (days int, ok bool) {
	if p.Kind == KindAmpoule {
		return 0, false
	}
	return toCount(p.UnitVolume.Div(p.DailyDose).Floor()), true
}

// TaperedDailyDose returns the daily dose in effect daysFromStart days into
// the prescription. The reduction compounds once per completed interval.
func (p Profile) TaperedDailyDose(daysFromStart int) decimal.Decimal {
	if !p.IsTapered() || p.ReductionIntervalMonths <= 0 || daysFromStart <= 0 {
		return p.DailyDose
	}

	steps := daysFromStart / (p.ReductionIntervalMonths * daysPerTaperMonth)
	factor := decimal.NewFromInt(1).Sub(p.ReductionPercent.Div(hundred))

	dose := p.DailyDose
	for i := 0; i < steps; i++ {
		dose = dose.Mul(factor)
	}
	return dose
}

// NormalDoseCeiling is the most any single period may dispense: the cap when
// one is given (cap > 0), otherwise enough units for MinDaysPerDose days at
// the untapered daily dose.
func (p Profile) NormalDoseCeiling(maxPerDose int) int {
	if maxPerDose > 0 {
		return maxPerDose
	}
	return unitsFor(p.DailyDose, MinDaysPerDose, p.UnitVolume, ceil)
}

// =============================================================================
// ROUNDING HELPERS
// =============================================================================

type rounding int

const (
	floor rounding = iota
	ceil
)

// unitsFor returns how many units cover days days at dose, rounded as asked.
func unitsFor(dose decimal.Decimal, days int, unitVolume decimal.Decimal, r rounding) int {
	units := dose.Mul(decimal.NewFromInt(int64(days))).Div(unitVolume)
	if r == ceil {
		return toCount(units.Ceil())
	}
	return toCount(units.Floor())
}

// daysCovered returns floor(amount * unitVolume / dose). A large cap can push
// the product past int; the result saturates instead of wrapping.
func daysCovered(amount int, unitVolume, dose decimal.Decimal) int {
	return toCount(decimal.NewFromInt(int64(amount)).Mul(unitVolume).Div(dose).Floor())
}

// toCount converts a whole decimal to int, saturating at math.MaxInt32.
func toCount(d decimal.Decimal) int {
	if d.GreaterThan(maxCountDec) {
		return math.MaxInt32
	}
	return int(d.IntPart())
}
