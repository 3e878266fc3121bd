package api

import (
	"github.com/warp/dispense/calendar"
	"github.com/warp/dispense/dosing"
	"github.com/warp/dispense/factory"
)

// =============================================================================
// SCHEDULE DTOs
// =============================================================================

// CreateScheduleRequest is the body of POST /api/schedules.
type CreateScheduleRequest = factory.PrescriptionJSON

// ScheduleDTO is a generated schedule.
type ScheduleDTO struct {
	ID           string              `json:"id"`
	Mode         string              `json:"mode"`
	StartDate    calendar.LocalDate  `json:"start_date"`
	BoundaryDate calendar.LocalDate  `json:"boundary_date"`
	Window       string              `json:"window"`
	TotalDays    int                 `json:"total_days"`
	TotalAmount  int                 `json:"total_amount"`
	TotalVolume  float64             `json:"total_volume"`
	Ceiling      int                 `json:"ceiling"`
	DaysPerUnit  *int                `json:"days_per_unit,omitempty"`
	Profile      factory.ProfileJSON `json:"profile"`
	Periods      []DosePeriodDTO     `json:"periods"`
}

// DosePeriodDTO is one dispensing.
type DosePeriodDTO struct {
	DoseNumber       int                `json:"dose_number"`
	StartDate        calendar.LocalDate `json:"start_date"`
	EndDate          calendar.LocalDate `json:"end_date"`
	DaysCount        int                `json:"days_count"`
	MedicationAmount int                `json:"medication_amount"`
	MedicationVolume float64            `json:"medication_volume"`
	DailyDose        float64            `json:"daily_dose"`
	DaysFromStart    int                `json:"days_from_start"`
	SupplyDays       int                `json:"supply_days"`
	IsFinal          bool               `json:"is_final"`
}

// =============================================================================
// CALENDAR DTOs
// =============================================================================

// TodayResponse pairs today's solar date with the civil date it came from.
type TodayResponse struct {
	Date      calendar.LocalDate `json:"date"`
	CivilDate string             `json:"civil_date"`
	DayOfYear int                `json:"day_of_year"`
}

// AddDaysRequest is the body of POST /api/calendar/add-days.
type AddDaysRequest struct {
	Date string `json:"date"`
	Days int    `json:"days"`
}

// AddDaysResponse echoes the input and the shifted date.
type AddDaysResponse struct {
	Date   calendar.LocalDate `json:"date"`
	Days   int                `json:"days"`
	Result calendar.LocalDate `json:"result"`
}

// DiffRequest is the body of POST /api/calendar/diff.
type DiffRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// DiffResponse carries the signed day difference.
type DiffResponse struct {
	From calendar.LocalDate `json:"from"`
	To   calendar.LocalDate `json:"to"`
	Days int                `json:"days"`
}

// =============================================================================
// SCENARIO & ERROR DTOs
// =============================================================================

// ScenarioDTO describes a canned prescription.
type ScenarioDTO struct {
	ID           string                   `json:"id"`
	Name         string                   `json:"name"`
	Description  string                   `json:"description"`
	Category     string                   `json:"category"`
	Prescription factory.PrescriptionJSON `json:"prescription"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

// NewScheduleDTO flattens a schedule for JSON output.
func NewScheduleDTO(id string, s *dosing.Schedule) ScheduleDTO {
	dto := ScheduleDTO{
		ID:           id,
		Mode:         string(s.Mode),
		StartDate:    s.Window.Start,
		BoundaryDate: s.Window.Boundary,
		Window:       s.Window.Config.String(),
		TotalDays:    s.TotalDays(),
		TotalAmount:  s.TotalAmount(),
		TotalVolume:  s.TotalVolume().InexactFloat64(),
		Ceiling:      s.Ceiling,
		Profile:      factory.ProfileToJSON(s.Profile),
		Periods:      make([]DosePeriodDTO, 0, len(s.Periods)),
	}
	if days, ok := s.Profile.DaysPerUnit(); ok {
		dto.DaysPerUnit = &days
	}
	for _, p := range s.Periods {
		dto.Periods = append(dto.Periods, toDosePeriodDTO(p))
	}
	return dto
}

func toDosePeriodDTO(p dosing.DosePeriod) DosePeriodDTO {
	return DosePeriodDTO{
		DoseNumber:       p.DoseNumber,
		StartDate:        p.StartDate,
		EndDate:          p.EndDate,
		DaysCount:        p.DaysCount,
		MedicationAmount: p.MedicationAmount,
		MedicationVolume: p.MedicationVolume.InexactFloat64(),
		DailyDose:        p.DailyDoseForPeriod.InexactFloat64(),
		DaysFromStart:    p.DaysFromStart,
		SupplyDays:       p.SupplyDays,
		IsFinal:          p.IsFinal,
	}
}
