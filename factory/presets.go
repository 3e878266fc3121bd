package factory

import "github.com/warp/dispense/dosing"

// MedicationType describes how a kind of medication is usually packaged.
// Forms use it to pre-fill the unit volume and label.
type MedicationType struct {
	Kind          dosing.Kind `json:"kind"`
	Label         string      `json:"label"`
	UnitLabel     string      `json:"unit_label"`
	VolumeUnit    string      `json:"volume_unit"`
	DefaultVolume float64     `json:"default_volume"`
}

var medicationTypes = []MedicationType{
	{Kind: dosing.KindLiquid, Label: "Syrup", UnitLabel: "bottle", VolumeUnit: "cc", DefaultVolume: 250},
	{Kind: dosing.KindTablet, Label: "Tablet", UnitLabel: "pack", VolumeUnit: "tablet", DefaultVolume: 30},
	{Kind: dosing.KindAmpoule, Label: "Ampoule", UnitLabel: "ampoule", VolumeUnit: "unit", DefaultVolume: 1},
}

// MedicationTypes returns the presets in display order.
func MedicationTypes() []MedicationType {
	out := make([]MedicationType, len(medicationTypes))
	copy(out, medicationTypes)
	return out
}

// LookupMedicationType returns the preset for kind.
func LookupMedicationType(kind dosing.Kind) (MedicationType, bool) {
	for _, mt := range medicationTypes {
		if mt.Kind == kind {
			return mt, true
		}
	}
	return MedicationType{}, false
}
