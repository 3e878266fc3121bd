/*
handlers.go - HTTP API handlers for the dispensing scheduler

PURPOSE:
  Exposes schedule generation and the date calculator via REST API.
  Handles HTTP request/response, JSON serialization, and delegates to the
  calendar and dosing packages.

ENDPOINTS:
  Schedules:
    POST   /api/schedules              Generate a schedule from a prescription
    GET    /api/medication-types       Packaging presets for the form

  Calendar:
    GET    /api/calendar/today         Today's solar date
    GET    /api/calendar/months        Month table
    POST   /api/calendar/add-days      Shift a date by N days
    POST   /api/calendar/diff          Days between two dates

  Scenarios:
    GET    /api/scenarios              List canned prescriptions
    POST   /api/scenarios/{id}/run     Generate a canned prescription

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Invalid date, invalid profile or window, malformed body
  - 404: Unknown scenario
  - 422: Schedule did not converge within the iteration bound
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Canned prescriptions
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/warp/dispense/calendar"
	"github.com/warp/dispense/dosing"
	"github.com/warp/dispense/factory"
	"github.com/warp/dispense/logging"
	"github.com/warp/dispense/metrics"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Factory *factory.PrescriptionFactory
	Logger  logging.Logger
	Metrics *metrics.Metrics

	// Now is the clock behind /api/calendar/today.
	Now func() time.Time
}

// NewHandler creates a handler. Nil dependencies get working defaults.
func NewHandler(f *factory.PrescriptionFactory, log logging.Logger, m *metrics.Metrics) *Handler {
	if f == nil {
		f = factory.NewPrescriptionFactory()
	}
	if log == nil {
		log = logging.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Handler{Factory: f, Logger: log, Metrics: m, Now: time.Now}
}

// =============================================================================
// SCHEDULE ENDPOINTS
// =============================================================================

// CreateSchedule generates a schedule for the posted prescription.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	dto, err := h.generate(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto)
}

// generate runs one prescription through the factory and generator,
// recording the outcome.
func (h *Handler) generate(pj factory.PrescriptionJSON) (ScheduleDTO, error) {
	req, err := h.Factory.FromJSON(pj)
	if err != nil {
		h.Metrics.ObserveSchedule("invalid", nil, err)
		return ScheduleDTO{}, err
	}

	schedule, err := dosing.Generate(req)
	h.Metrics.ObserveSchedule(req.Mode(), schedule, err)
	if err != nil {
		return ScheduleDTO{}, err
	}

	id := uuid.NewString()
	h.Logger.Debug("schedule generated",
		logging.String("schedule_id", id),
		logging.String("mode", string(schedule.Mode)),
		logging.Int("periods", len(schedule.Periods)),
		logging.Int("total_days", schedule.Window.TotalDays),
	)
	return NewScheduleDTO(id, schedule), nil
}

// ListMedicationTypes returns the packaging presets.
func (h *Handler) ListMedicationTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.MedicationTypes())
}

// =============================================================================
// CALENDAR ENDPOINTS
// =============================================================================

// Today returns the current solar date.
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	now := h.Now()
	today := calendar.FromCivil(now)
	writeJSON(w, http.StatusOK, TodayResponse{
		Date:      today,
		CivilDate: now.Format("2006-01-02"),
		DayOfYear: calendar.DayOfYear(today),
	})
}

// ListMonths returns the month-length table.
func (h *Handler) ListMonths(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, calendar.Months())
}

// AddDays shifts a date by a signed number of days.
func (h *Handler) AddDays(w http.ResponseWriter, r *http.Request) {
	var req AddDaysRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	date, err := calendar.Parse(req.Date)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	result := date.AddDays(req.Days)
	if err := result.Validate(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AddDaysResponse{Date: date, Days: req.Days, Result: result})
}

// Diff returns the signed number of days from one date to another.
func (h *Handler) Diff(w http.ResponseWriter, r *http.Request) {
	var req DiffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	from, err := calendar.Parse(req.From)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	to, err := calendar.Parse(req.To)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DiffResponse{From: from, To: to, Days: calendar.DaysBetween(from, to)})
}

// =============================================================================
// SCENARIO ENDPOINTS
// =============================================================================

// ListScenarios returns the canned prescriptions.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Scenarios())
}

// RunScenario generates the schedule of one canned prescription.
func (h *Handler) RunScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	scenario, ok := LookupScenario(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Scenario not found", nil)
		return
	}

	dto, err := h.generate(scenario.Prescription)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps calendar and dosing errors to status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		cfgErr      *dosing.ConfigurationError
		overflowErr *dosing.SchedulingOverflowError
	)

	switch {
	case errors.As(err, &overflowErr):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: "Schedule did not converge",
			Code:  "scheduling_overflow",
			Details: map[string]int{
				"iterations":     overflowErr.Iterations,
				"remaining_days": overflowErr.RemainingDays,
				"periods":        overflowErr.PeriodsSoFar,
			},
		})

	case errors.As(err, &cfgErr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid configuration",
			Code:    "invalid_configuration",
			Details: map[string]string{"field": cfgErr.Field, "reason": cfgErr.Reason},
		})

	case errors.Is(err, calendar.ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid date",
			Code:    "invalid_date",
			Details: err.Error(),
		})

	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
