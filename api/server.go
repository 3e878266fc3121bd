/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request, echoed in logs
  2. RealIP:     Client address behind proxies
  3. Logging:    One structured entry per request
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. Metrics:    Request count and latency per route
  6. CORS:       Cross-origin requests for the web form

ROUTE GROUPS:
  /api/schedules         Schedule generation
  /api/medication-types  Packaging presets
  /api/calendar/*        Date calculator
  /api/scenarios/*       Canned prescriptions
  /healthz, /metrics     Operations

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/dispense/serve.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultCORSOrigins are the local front-end dev servers.
var DefaultCORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

// NewRouter creates a router with all routes configured. A nil origins slice
// uses DefaultCORSOrigins.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	if corsOrigins == nil {
		corsOrigins = DefaultCORSOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(h.Logger))
	r.Use(middleware.Recoverer)
	r.Use(h.Metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", h.Metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/schedules", h.CreateSchedule)
		r.Get("/medication-types", h.ListMedicationTypes)

		r.Route("/calendar", func(r chi.Router) {
			r.Get("/today", h.Today)
			r.Get("/months", h.ListMonths)
			r.Post("/add-days", h.AddDays)
			r.Post("/diff", h.Diff)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/{id}/run", h.RunScenario)
		})
	})

	return r
}
