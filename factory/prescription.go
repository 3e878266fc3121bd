/*
Package factory provides JSON to Go prescription conversion.

PURPOSE:
  Converts JSON prescription definitions into dosing.Profile, WindowConfig
  and dosing.Request values. The HTTP API, the CLI and the demo scenarios
  all describe prescriptions this way, and the factory creates validated
  Go structs from them.

JSON SCHEMA:
  {
    "start_date": "1403/01/01",
    "profile": {
      "kind": "liquid",
      "unit_volume": 250,
      "daily_dose": 12,
      "unit_label": "bottle",
      "reduction_percent": 10,
      "reduction_interval_months": 2
    },
    "window": {
      "policy": "last_day_of_nth_month",
      "months": 6
    },
    "max_medication_per_dose": 0,
    "single_dose_mode": false
  }

KEY FEATURES:
  - Validates through the dosing constructors, so a parsed profile is
    always usable
  - Accepts "syrup" as an alias of "liquid"
  - Fills the unit label from the medication-type presets when omitted

USAGE:
  f := factory.NewPrescriptionFactory()
  req, err := f.ParseRequest(jsonString)
  schedule, err := dosing.Generate(req)

SEE ALSO:
  - presets.go: medication-type defaults
  - dosing/profile.go: Profile definition
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/warp/dispense/calendar"
	"github.com/warp/dispense/dosing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ProfileJSON is the JSON representation of a medication profile.
type ProfileJSON struct {
	Kind                    string  `json:"kind"`
	UnitVolume              float64 `json:"unit_volume"`
	DailyDose               float64 `json:"daily_dose"`
	UnitLabel               string  `json:"unit_label,omitempty"`
	ReductionPercent        float64 `json:"reduction_percent,omitempty"`
	ReductionIntervalMonths int     `json:"reduction_interval_months,omitempty"`
	DispensingIntervalDays  int     `json:"dispensing_interval_days,omitempty"`
}

// WindowJSON selects the boundary policy of the prescription window.
type WindowJSON struct {
	Policy        string `json:"policy,omitempty"`
	Months        int    `json:"months,omitempty"`
	CheckpointDay int    `json:"checkpoint_day,omitempty"`
}

// PrescriptionJSON is one complete schedule request.
type PrescriptionJSON struct {
	StartDate            string      `json:"start_date"`
	Profile              ProfileJSON `json:"profile"`
	Window               *WindowJSON `json:"window,omitempty"`
	MaxMedicationPerDose int         `json:"max_medication_per_dose,omitempty"`
	SingleDoseMode       bool        `json:"single_dose_mode,omitempty"`
}

// =============================================================================
// PRESCRIPTION FACTORY
// =============================================================================

// PrescriptionFactory converts JSON prescriptions to Go structs.
type PrescriptionFactory struct {
	// DefaultWindow applies when a prescription has no window of its own.
	DefaultWindow dosing.WindowConfig

	// MaxIterations is copied into every request. Zero keeps the generator
	// default.
	MaxIterations int
}

// NewPrescriptionFactory creates a factory with the default window.
func NewPrescriptionFactory() *PrescriptionFactory {
	return &PrescriptionFactory{}
}

// ParseRequest parses a JSON string into a dosing.Request.
func (f *PrescriptionFactory) ParseRequest(jsonStr string) (dosing.Request, error) {
	var pj PrescriptionJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return dosing.Request{}, fmt.Errorf("failed to parse prescription JSON: %w", err)
	}
	return f.FromJSON(pj)
}

// FromJSON converts PrescriptionJSON to a dosing.Request.
func (f *PrescriptionFactory) FromJSON(pj PrescriptionJSON) (dosing.Request, error) {
	start, err := calendar.Parse(pj.StartDate)
	if err != nil {
		return dosing.Request{}, err
	}

	profile, err := f.ProfileFromJSON(pj.Profile)
	if err != nil {
		return dosing.Request{}, err
	}

	window := f.DefaultWindow
	if pj.Window != nil {
		window = WindowFromJSON(*pj.Window)
	}

	req := dosing.Request{
		Start:                start,
		Profile:              profile,
		Window:               window,
		MaxMedicationPerDose: pj.MaxMedicationPerDose,
		SingleDose:           pj.SingleDoseMode,
		MaxIterations:        f.MaxIterations,
	}
	if err := req.Validate(); err != nil {
		return dosing.Request{}, err
	}
	return req, nil
}

// ParseProfile parses a JSON string into a dosing.Profile.
func (f *PrescriptionFactory) ParseProfile(jsonStr string) (dosing.Profile, error) {
	var pj ProfileJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return dosing.Profile{}, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	return f.ProfileFromJSON(pj)
}

// ProfileFromJSON builds a validated profile.
func (f *PrescriptionFactory) ProfileFromJSON(pj ProfileJSON) (dosing.Profile, error) {
	kind := ParseKind(pj.Kind)

	profile, err := dosing.NewProfile(kind, pj.UnitVolume, pj.DailyDose)
	if err != nil {
		return dosing.Profile{}, err
	}

	label := pj.UnitLabel
	if label == "" {
		if mt, ok := LookupMedicationType(kind); ok {
			label = mt.UnitLabel
		}
	}
	profile = profile.WithUnitLabel(label)

	if pj.ReductionPercent != 0 || pj.ReductionIntervalMonths != 0 {
		if profile, err = profile.WithTapering(pj.ReductionPercent, pj.ReductionIntervalMonths); err != nil {
			return dosing.Profile{}, err
		}
	}

	if pj.DispensingIntervalDays != 0 {
		if profile, err = profile.WithDispensingInterval(pj.DispensingIntervalDays); err != nil {
			return dosing.Profile{}, err
		}
	}

	return profile, nil
}

// WindowFromJSON maps a window definition. Validation happens in the
// generator, where the start date is known.
func WindowFromJSON(wj WindowJSON) dosing.WindowConfig {
	return dosing.WindowConfig{
		Policy:        dosing.BoundaryPolicy(strings.ToLower(wj.Policy)),
		Months:        wj.Months,
		CheckpointDay: wj.CheckpointDay,
	}
}

// ToJSON converts a request back to its JSON form.
func (f *PrescriptionFactory) ToJSON(req dosing.Request) PrescriptionJSON {
	pj := PrescriptionJSON{
		StartDate:            req.Start.String(),
		Profile:              ProfileToJSON(req.Profile),
		MaxMedicationPerDose: req.MaxMedicationPerDose,
		SingleDoseMode:       req.SingleDose,
	}
	if req.Window != (dosing.WindowConfig{}) {
		pj.Window = &WindowJSON{
			Policy:        string(req.Window.Policy),
			Months:        req.Window.Months,
			CheckpointDay: req.Window.CheckpointDay,
		}
	}
	return pj
}

// ProfileToJSON converts a profile to ProfileJSON.
func ProfileToJSON(p dosing.Profile) ProfileJSON {
	pj := ProfileJSON{
		Kind:                   string(p.Kind),
		UnitVolume:             p.UnitVolume.InexactFloat64(),
		DailyDose:              p.DailyDose.InexactFloat64(),
		UnitLabel:              p.UnitLabel,
		DispensingIntervalDays: p.DispensingIntervalDays,
	}
	if p.IsTapered() {
		pj.ReductionPercent = p.ReductionPercent.InexactFloat64()
		pj.ReductionIntervalMonths = p.ReductionIntervalMonths
	}
	return pj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// ParseKind maps a kind name, including the "syrup" alias. Unknown names
// pass through so profile validation can report them.
func ParseKind(s string) dosing.Kind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "liquid", "syrup":
		return dosing.KindLiquid
	case "tablet":
		return dosing.KindTablet
	case "ampoule":
		return dosing.KindAmpoule
	default:
		return dosing.Kind(s)
	}
}
