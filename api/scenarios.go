/*
scenarios.go - Canned prescriptions for demos and smoke tests

PURPOSE:
  Provides ready-made prescriptions that exercise each scheduling path.
  The web form lists them, and running one returns the same schedule as
  posting its prescription to /api/schedules.

AVAILABLE SCENARIOS:
  six-month-syrup:   250cc bottles at 12cc/day, default window
  single-dose:       one dispensing up to the end of the month
  tapering:          tablets reduced 10% every two months
  weekly-ampoule:    one ampoule a day, collected weekly
  capped-syrup:      per-dose cap with a fixed checkpoint day
  year-rollover:     window crossing into the next year

ADDING NEW SCENARIOS:
  Append to the scenarios slice; the ID doubles as the URL segment.
*/
package api

import (
	"github.com/warp/dispense/dosing"
	"github.com/warp/dispense/factory"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "six-month-syrup",
		Name:        "Six-Month Syrup",
		Description: "250cc bottles at 12cc a day; 62-day periods of 3 bottles and a rounded-down final period",
		Category:    "coverage",
		Prescription: factory.PrescriptionJSON{
			StartDate: "1403/01/01",
			Profile:   factory.ProfileJSON{Kind: "liquid", UnitVolume: 250, DailyDose: 12},
		},
	},
	{
		ID:          "single-dose",
		Name:        "Single Dose",
		Description: "One tablet a day, dispensed once to cover the rest of the month plus a margin",
		Category:    "single_dose",
		Prescription: factory.PrescriptionJSON{
			StartDate:      "1403/01/10",
			Profile:        factory.ProfileJSON{Kind: "tablet", UnitVolume: 1, DailyDose: 1},
			SingleDoseMode: true,
		},
	},
	{
		ID:          "tapering",
		Name:        "Tapering",
		Description: "Two tablets a day from 30-tablet packs, reduced 10% every two months",
		Category:    "coverage",
		Prescription: factory.PrescriptionJSON{
			StartDate: "1403/01/01",
			Profile: factory.ProfileJSON{
				Kind: "tablet", UnitVolume: 30, DailyDose: 2,
				ReductionPercent: 10, ReductionIntervalMonths: 2,
			},
		},
	},
	{
		ID:          "weekly-ampoule",
		Name:        "Weekly Ampoule",
		Description: "One ampoule a day, collected every seven days",
		Category:    "interval",
		Prescription: factory.PrescriptionJSON{
			StartDate: "1403/01/01",
			Profile: factory.ProfileJSON{
				Kind: "ampoule", UnitVolume: 1, DailyDose: 1,
				DispensingIntervalDays: 7,
			},
		},
	},
	{
		ID:          "capped-syrup",
		Name:        "Capped Syrup",
		Description: "At most two bottles per dispensing, window ending on the 25th",
		Category:    "coverage",
		Prescription: factory.PrescriptionJSON{
			StartDate: "1403/07/15",
			Profile:   factory.ProfileJSON{Kind: "liquid", UnitVolume: 250, DailyDose: 12},
			Window: &factory.WindowJSON{
				Policy: string(dosing.BoundaryFixedCheckpointDay),
				Months: 6,
			},
			MaxMedicationPerDose: 2,
		},
	},
	{
		ID:          "year-rollover",
		Name:        "Year Rollover",
		Description: "120cc bottles at 4cc a day starting late in the year",
		Category:    "coverage",
		Prescription: factory.PrescriptionJSON{
			StartDate: "1403/11/20",
			Profile:   factory.ProfileJSON{Kind: "liquid", UnitVolume: 120, DailyDose: 4},
			Window: &factory.WindowJSON{
				Policy: string(dosing.BoundarySameDayClipped),
				Months: 6,
			},
		},
	},
}

// Scenarios returns every canned prescription.
func Scenarios() []ScenarioDTO {
	out := make([]ScenarioDTO, len(scenarios))
	copy(out, scenarios)
	return out
}

// LookupScenario finds a scenario by ID.
func LookupScenario(id string) (ScenarioDTO, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return ScenarioDTO{}, false
}
