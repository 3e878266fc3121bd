package dosing_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/dispense/calendar"
	"github.com/warp/dispense/dosing"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func mustProfile(t *testing.T, kind dosing.Kind, unitVolume, dailyDose float64) dosing.Profile {
	t.Helper()
	p, err := dosing.NewProfile(kind, unitVolume, dailyDose)
	require.NoError(t, err)
	return p
}

func syrup(t *testing.T) dosing.Profile {
	return mustProfile(t, dosing.KindLiquid, 250, 12)
}

func taperedTablet(t *testing.T) dosing.Profile {
	p, err := mustProfile(t, dosing.KindTablet, 30, 2).WithTapering(10, 2)
	require.NoError(t, err)
	return p
}

func weeklyAmpoule(t *testing.T, days int) dosing.Profile {
	p, err := mustProfile(t, dosing.KindAmpoule, 1, 1).WithDispensingInterval(days)
	require.NoError(t, err)
	return p
}

// assertScheduleInvariants checks the properties every full schedule keeps.
func assertScheduleInvariants(t *testing.T, s *dosing.Schedule, cap int) {
	t.Helper()
	require.NotEmpty(t, s.Periods)

	assert.Equal(t, s.Window.TotalDays, s.TotalDays(), "periods must cover the window")
	assert.Equal(t, s.Window.Start, s.Periods[0].StartDate)

	finals := 0
	daysFromStart := 0
	for i, p := range s.Periods {
		assert.Equal(t, i+1, p.DoseNumber)
		assert.GreaterOrEqual(t, p.DaysCount, 1)
		assert.GreaterOrEqual(t, p.MedicationAmount, 1)
		assert.Equal(t, p.DaysCount-1, calendar.DaysBetween(p.StartDate, p.EndDate))
		assert.Equal(t, daysFromStart, p.DaysFromStart)
		assert.True(t, p.MedicationVolume.Equal(s.Profile.UnitVolume.Mul(decInt(p.MedicationAmount))))
		daysFromStart += p.DaysCount

		if i+1 < len(s.Periods) {
			assert.Equal(t, s.Periods[i+1].StartDate, p.NextStart(), "period %d must be followed directly", p.DoseNumber)
		}
		if p.IsFinal {
			finals++
			assert.Equal(t, len(s.Periods)-1, i, "final period must be last")
			assert.LessOrEqual(t, p.MedicationAmount, s.Profile.NormalDoseCeiling(cap))
		} else if s.Mode == dosing.ModeCoverage {
			assert.GreaterOrEqual(t, p.DaysCount, dosing.MinDaysPerDose)
			assert.LessOrEqual(t, p.DaysCount, dosing.MaxDaysPerDose)
		}
	}
	assert.Equal(t, 1, finals, "exactly one final period")
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestGenerate_ScenarioA_NoReductionNoCap(t *testing.T) {
	// GIVEN: 250cc bottles, 12cc a day, starting on the first day of the year
	// WHEN: generating the default six-month schedule
	// THEN: two 62-day periods of 3 bottles, then a 61-day final period
	//       rounded down to 2 bottles

	s, err := dosing.Generate(dosing.Request{
		Start:   calendar.MustDate(1403, 1, 1),
		Profile: syrup(t),
	})
	require.NoError(t, err)
	assertScheduleInvariants(t, s, 0)

	assert.Equal(t, dosing.ModeCoverage, s.Mode)
	assert.Equal(t, 185, s.Window.TotalDays)
	require.Len(t, s.Periods, 3)

	first := s.Periods[0]
	assert.Equal(t, 3, first.MedicationAmount)
	assert.Equal(t, 62, first.DaysCount)
	assert.False(t, first.IsFinal)
	assert.Equal(t, calendar.MustDate(1403, 2, 31), first.EndDate)
	assert.True(t, first.MedicationVolume.Equal(dec("750")))

	second := s.Periods[1]
	assert.Equal(t, calendar.MustDate(1403, 3, 1), second.StartDate)
	assert.Equal(t, 3, second.MedicationAmount)
	assert.Equal(t, 62, second.DaysCount)

	final := s.Periods[2]
	assert.True(t, final.IsFinal)
	assert.Equal(t, 61, final.DaysCount)
	assert.Equal(t, 2, final.MedicationAmount, "floor(12*61/250)")
	assert.Equal(t, 41, final.SupplyDays, "floor(2*250/12)")
	assert.Equal(t, calendar.MustDate(1403, 6, 30), final.EndDate)

	assert.Equal(t, 8, s.TotalAmount())
	assert.True(t, s.TotalVolume().Equal(dec("2000")))
	assert.Equal(t, 3, s.Ceiling)

	on, ok := s.PeriodOn(calendar.MustDate(1403, 3, 1))
	require.True(t, ok)
	assert.Equal(t, 2, on.DoseNumber)

	on, ok = s.PeriodOn(calendar.MustDate(1403, 6, 30))
	require.True(t, ok)
	assert.True(t, on.IsFinal)

	_, ok = s.PeriodOn(calendar.MustDate(1403, 7, 1))
	assert.False(t, ok, "day after the window")
	_, ok = s.PeriodOn(calendar.MustDate(1402, 12, 29))
	assert.False(t, ok, "day before the start")
}

func TestGenerate_ScenarioB_SingleDose(t *testing.T) {
	// GIVEN: one tablet a day, start on day 10 of a 31-day month
	// WHEN: single-dose mode is requested
	// THEN: 22 days left in the month + 5 margin = one 27-day final period

	s, err := dosing.Generate(dosing.Request{
		Start:      calendar.MustDate(1403, 1, 10),
		Profile:    mustProfile(t, dosing.KindTablet, 1, 1),
		SingleDose: true,
	})
	require.NoError(t, err)

	assert.Equal(t, dosing.ModeSingleDose, s.Mode)
	require.Len(t, s.Periods, 1)
	p := s.Periods[0]
	assert.Equal(t, 1, p.DoseNumber)
	assert.True(t, p.IsFinal)
	assert.Equal(t, 27, p.DaysCount)
	assert.Equal(t, 27, p.MedicationAmount)
	assert.Equal(t, calendar.MustDate(1403, 1, 10), p.StartDate)
	assert.Equal(t, calendar.MustDate(1403, 2, 5), p.EndDate)
}

func TestGenerate_SingleDose_RoundsDownAndCaps(t *testing.T) {
	// Syrup: floor(12*27/250) = 1 bottle, which lasts floor(250/12) = 20 days.
	s, err := dosing.Generate(dosing.Request{
		Start:      calendar.MustDate(1403, 1, 10),
		Profile:    syrup(t),
		SingleDose: true,
	})
	require.NoError(t, err)
	require.Len(t, s.Periods, 1)
	assert.Equal(t, 1, s.Periods[0].MedicationAmount)
	assert.Equal(t, 20, s.Periods[0].DaysCount)

	// Tablets with a cap of 20: the cap bounds the single period.
	s, err = dosing.Generate(dosing.Request{
		Start:                calendar.MustDate(1403, 1, 10),
		Profile:              mustProfile(t, dosing.KindTablet, 1, 1),
		SingleDose:           true,
		MaxMedicationPerDose: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, s.Periods[0].MedicationAmount)
	assert.Equal(t, 20, s.Periods[0].DaysCount)
}

func TestGenerate_ScenarioC_Tapering(t *testing.T) {
	// GIVEN: 2 tablets a day from 30-tablet packs, reduced 10% every 2 months
	// WHEN: generating a six-month schedule
	// THEN: each period uses the dose in effect at its start

	s, err := dosing.Generate(dosing.Request{
		Start:   calendar.MustDate(1403, 1, 1),
		Profile: taperedTablet(t),
	})
	require.NoError(t, err)
	assertScheduleInvariants(t, s, 0)
	require.Len(t, s.Periods, 4)

	want := []struct {
		days, amount int
		dose         string
	}{
		{60, 4, "2"},
		{50, 3, "1.8"},
		{50, 3, "1.8"},
		{25, 1, "1.62"},
	}
	for i, w := range want {
		p := s.Periods[i]
		assert.Equal(t, w.days, p.DaysCount, "period %d days", i+1)
		assert.Equal(t, w.amount, p.MedicationAmount, "period %d amount", i+1)
		assert.True(t, p.DailyDoseForPeriod.Equal(dec(w.dose)), "period %d dose %s", i+1, p.DailyDoseForPeriod)
	}

	assert.True(t, s.Profile.TaperedDailyDose(130).Equal(dec("1.62")))
}

// =============================================================================
// CAPS
// =============================================================================

func TestGenerate_CapBelowMinimumIsRaised(t *testing.T) {
	// GIVEN: a cap of 1 bottle, which lasts only 20 days
	// WHEN: generating
	// THEN: normal periods still reach the 50-day minimum; the final period
	//       is held to the cap

	s, err := dosing.Generate(dosing.Request{
		Start:                calendar.MustDate(1403, 1, 1),
		Profile:              syrup(t),
		MaxMedicationPerDose: 1,
	})
	require.NoError(t, err)
	assertScheduleInvariants(t, s, 1)

	assert.Equal(t, 3, s.Periods[0].MedicationAmount)
	assert.Equal(t, 62, s.Periods[0].DaysCount)

	final, ok := s.Final()
	require.True(t, ok)
	assert.Equal(t, 1, final.MedicationAmount)
}

func TestGenerate_CapAboveMaximumIsClamped(t *testing.T) {
	// 10 bottles would last 208 days; the period is clamped to 62 days and
	// the quantity recomputed for that span.
	s, err := dosing.Generate(dosing.Request{
		Start:                calendar.MustDate(1403, 1, 1),
		Profile:              syrup(t),
		MaxMedicationPerDose: 10,
	})
	require.NoError(t, err)
	assertScheduleInvariants(t, s, 10)
	assert.Equal(t, 3, s.Periods[0].MedicationAmount)
	assert.Equal(t, 62, s.Periods[0].DaysCount)
}

func TestGenerate_CapWithinBoundsIsUsed(t *testing.T) {
	// 2 tablets/day from 60-tablet packs: 2 packs last 60 days.
	s, err := dosing.Generate(dosing.Request{
		Start:                calendar.MustDate(1403, 1, 1),
		Profile:              mustProfile(t, dosing.KindTablet, 60, 2),
		MaxMedicationPerDose: 2,
	})
	require.NoError(t, err)
	assertScheduleInvariants(t, s, 2)
	assert.Equal(t, 2, s.Periods[0].MedicationAmount)
	assert.Equal(t, 60, s.Periods[0].DaysCount)
}

func TestGenerate_LongLastingUnitStillEndsPeriodAtMaximum(t *testing.T) {
	// One 100cc bottle at 0.5cc/day lasts 200 days.
	s, err := dosing.Generate(dosing.Request{
		Start:   calendar.MustDate(1403, 1, 1),
		Profile: mustProfile(t, dosing.KindLiquid, 100, 0.5),
	})
	require.NoError(t, err)
	assertScheduleInvariants(t, s, 0)

	first := s.Periods[0]
	assert.Equal(t, dosing.MaxDaysPerDose, first.DaysCount)
	assert.Equal(t, 1, first.MedicationAmount)
	assert.Equal(t, 200, first.SupplyDays)
}

func TestGenerate_HugeCapDoesNotWrapSupplyDays(t *testing.T) {
	// GIVEN: one 100000cc unit lasts 1000000 days and the cap is as large
	//        as an int allows
	// WHEN: generating
	s, err := dosing.Generate(dosing.Request{
		Start:                calendar.MustDate(1403, 1, 1),
		Profile:              mustProfile(t, dosing.KindLiquid, 100000, 0.1),
		MaxMedicationPerDose: math.MaxInt,
	})

	// THEN: supply days saturate instead of wrapping, so the cap is clamped
	//       to one unit per period as for any long-lasting unit
	require.NoError(t, err)
	assertScheduleInvariants(t, s, math.MaxInt)
	require.Len(t, s.Periods, 3)
	for _, p := range s.Periods {
		assert.Equal(t, 1, p.MedicationAmount)
		assert.Equal(t, dosing.MaxDaysPerUnit, p.SupplyDays)
	}
}

// =============================================================================
// INTERVAL PATH
// =============================================================================

func TestGenerate_AmpouleInterval(t *testing.T) {
	// GIVEN: one ampoule a day, dispensed weekly
	// WHEN: generating the 185-day window
	// THEN: 26 weekly periods of 7 ampoules and a 3-day final period

	s, err := dosing.Generate(dosing.Request{
		Start:   calendar.MustDate(1403, 1, 1),
		Profile: weeklyAmpoule(t, 7),
	})
	require.NoError(t, err)
	assert.Equal(t, dosing.ModeInterval, s.Mode)
	assertScheduleInvariants(t, s, 0)

	require.Len(t, s.Periods, 27)
	for _, p := range s.Periods[:26] {
		assert.Equal(t, 7, p.DaysCount)
		assert.Equal(t, 7, p.MedicationAmount)
	}
	final := s.Periods[26]
	assert.True(t, final.IsFinal)
	assert.Equal(t, 3, final.DaysCount)
	assert.Equal(t, 3, final.MedicationAmount)
	assert.Equal(t, 7, s.Ceiling)
}

func TestGenerate_AmpouleIntervalWithCap(t *testing.T) {
	s, err := dosing.Generate(dosing.Request{
		Start:                calendar.MustDate(1403, 1, 1),
		Profile:              weeklyAmpoule(t, 7),
		MaxMedicationPerDose: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, s.Periods[0].MedicationAmount)
	assert.Equal(t, 5, s.Periods[0].SupplyDays)
	assert.Equal(t, 3, s.Periods[len(s.Periods)-1].MedicationAmount)
}

func TestGenerate_ShortIntervalIsNotAnOverflow(t *testing.T) {
	// 185 days every 3 days needs 62 periods, more than MaxIterations.
	s, err := dosing.Generate(dosing.Request{
		Start:   calendar.MustDate(1403, 1, 1),
		Profile: weeklyAmpoule(t, 3),
	})
	require.NoError(t, err)
	assertScheduleInvariants(t, s, 0)
	assert.Len(t, s.Periods, 62)
}

func TestGenerate_AmpouleWithoutIntervalUsesCoverage(t *testing.T) {
	s, err := dosing.Generate(dosing.Request{
		Start:   calendar.MustDate(1403, 1, 1),
		Profile: mustProfile(t, dosing.KindAmpoule, 1, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, dosing.ModeCoverage, s.Mode)
	assertScheduleInvariants(t, s, 0)
}

// =============================================================================
// OVERFLOW AND VALIDATION
// =============================================================================

func TestGenerate_OverflowIsReported(t *testing.T) {
	// GIVEN: a ten-year window, which needs ~59 periods of 62 days
	// WHEN: generating with the default iteration bound
	// THEN: SchedulingOverflowError, never a truncated schedule

	s, err := dosing.Generate(dosing.Request{
		Start:   calendar.MustDate(1403, 1, 1),
		Profile: syrup(t),
		Window:  dosing.WindowConfig{Months: 120},
	})
	assert.Nil(t, s)
	require.Error(t, err)
	assert.ErrorIs(t, err, dosing.ErrSchedulingOverflow)
	assert.False(t, dosing.IsClientError(err))

	var overflow *dosing.SchedulingOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, dosing.MaxIterations, overflow.Iterations)
	assert.Equal(t, dosing.MaxIterations, overflow.PeriodsSoFar)
	assert.Positive(t, overflow.RemainingDays)
}

func TestGenerate_OverflowWithCustomBound(t *testing.T) {
	_, err := dosing.Generate(dosing.Request{
		Start:         calendar.MustDate(1403, 1, 1),
		Profile:       syrup(t),
		MaxIterations: 2,
	})

	var overflow *dosing.SchedulingOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, 2, overflow.Iterations)
	assert.Equal(t, 61, overflow.RemainingDays)
}

func TestGenerate_EmptyWindow(t *testing.T) {
	// GIVEN: a one-month window starting on the last day of the month
	// WHEN: generating
	// THEN: the boundary is the start date and no period is needed

	s, err := dosing.Generate(dosing.Request{
		Start:   calendar.MustDate(1403, 1, 31),
		Profile: syrup(t),
		Window:  dosing.WindowConfig{Months: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Window.TotalDays)
	assert.Empty(t, s.Periods)

	_, ok := s.Final()
	assert.False(t, ok)
}

func TestGenerate_RejectsInvalidInput(t *testing.T) {
	good := dosing.Request{Start: calendar.MustDate(1403, 1, 1), Profile: syrup(t)}

	bad := good
	bad.Start = calendar.LocalDate{Year: 1403, Month: 7, Day: 31}
	_, err := dosing.Generate(bad)
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)

	bad = good
	bad.Profile.DailyDose = dec("0")
	_, err = dosing.Generate(bad)
	assert.ErrorIs(t, err, dosing.ErrConfiguration)

	bad = good
	bad.MaxMedicationPerDose = -1
	_, err = dosing.Generate(bad)
	assert.ErrorIs(t, err, dosing.ErrConfiguration)

	bad = good
	bad.Window = dosing.WindowConfig{Policy: "bogus"}
	_, err = dosing.Generate(bad)
	assert.ErrorIs(t, err, dosing.ErrConfiguration)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func TestGenerate_InvariantsHoldForEveryStartDate(t *testing.T) {
	profiles := map[string]dosing.Profile{
		"syrup":          syrup(t),
		"tapered tablet": taperedTablet(t),
		"slow syrup":     mustProfile(t, dosing.KindLiquid, 100, 0.5),
		"heavy tablet":   mustProfile(t, dosing.KindTablet, 30, 3.5),
		"steep taper":    mustTaper(t, mustProfile(t, dosing.KindLiquid, 120, 7.5), 50, 1),
		"weekly ampoule": weeklyAmpoule(t, 7),
	}
	windows := []dosing.WindowConfig{
		{Policy: dosing.BoundaryLastDayOfNthMonth},
		{Policy: dosing.BoundarySameDayClipped},
		{Policy: dosing.BoundaryFixedCheckpointDay},
		{Policy: dosing.BoundaryLastDayOfNthMonth, Months: 1},
		{Policy: dosing.BoundarySameDayClipped, Months: 12},
	}
	caps := []int{0, 1, 4}

	start := calendar.MustDate(1403, 1, 1)
	for name, profile := range profiles {
		for _, w := range windows {
			for _, cap := range caps {
				t.Run(fmt.Sprintf("%s/%s/cap=%d", name, w, cap), func(t *testing.T) {
					for i := 0; i < calendar.DaysPerYear; i++ {
						s, err := dosing.Generate(dosing.Request{
							Start:                start.AddDays(i),
							Profile:              profile,
							Window:               w,
							MaxMedicationPerDose: cap,
						})
						require.NoError(t, err)
						if s.Window.TotalDays == 0 {
							// Start on the boundary itself: nothing to cover.
							assert.Empty(t, s.Periods)
							continue
						}
						assertScheduleInvariants(t, s, cap)
					}
				})
			}
		}
	}
}

func mustTaper(t *testing.T, p dosing.Profile, percent float64, months int) dosing.Profile {
	t.Helper()
	tapered, err := p.WithTapering(percent, months)
	require.NoError(t, err)
	return tapered
}
