package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/clinicore/clinic-scheduling/internal/forecast"
	"github.com/clinicore/clinic-scheduling/internal/inventory"
	"github.com/clinicore/clinic-scheduling/internal/observability/metrics"
	"github.com/clinicore/clinic-scheduling/internal/patient"
	"github.com/clinicore/clinic-scheduling/internal/prescription"
	"github.com/clinicore/clinic-scheduling/internal/schedule"
)

type RouterConfig struct {
	Schedule      *schedule.Service
	Patients      *patient.Service
	Inventory     *inventory.Service
	Prescriptions *prescription.Service
	Forecast      *forecast.Client
	Metrics       *metrics.Metrics
	Pool          *pgxpool.Pool
	Redis         *redis.Client
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(MetricsMiddleware(cfg.Metrics))

	appt := NewAppointmentHandlers(cfg.Schedule, cfg.Metrics)
	pat := NewPatientHandlers(cfg.Patients)
	stock := NewStockHandlers(cfg.Inventory, cfg.Forecast, cfg.Metrics)
	rx := NewPrescriptionHandlers(cfg.Prescriptions)
	health := NewHealthHandlers(cfg.Pool, cfg.Redis)

	r.Route("/api", func(r chi.Router) {
		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", appt.List)
			r.Post("/", appt.Create)
			r.Get("/day-map", appt.DayMap)
			r.Get("/slots", appt.Slots)
			r.Post("/toggle-day", appt.ToggleDay)
			r.Put("/{id}", appt.Update)
			r.Delete("/{id}", appt.Delete)
		})

		r.Route("/patients", func(r chi.Router) {
			r.Get("/", pat.List)
			r.Post("/", pat.Create)
			r.Get("/{id}", pat.Get)
			r.Put("/{id}", pat.Update)
			r.Delete("/{id}", pat.Delete)
		})

		r.Route("/stock", func(r chi.Router) {
			r.Get("/", stock.List)
			r.Post("/", stock.Upsert)
			r.Get("/analytics/forecast", stock.Forecast)
			r.Get("/analytics/top-forecast", stock.TopForecast)
			r.Get("/analytics/seasonality", stock.Seasonality)
			r.Get("/analytics/restock", stock.Restock)
			r.Get("/{id}", stock.Get)
			r.Put("/{id}", stock.Update)
			r.Delete("/{id}", stock.Delete)
		})

		r.Route("/prescriptions", func(r chi.Router) {
			r.Post("/", rx.Create)
			r.Get("/patient/{patientRef}", rx.ListByPatient)
			r.Put("/{id}/first-intake", rx.SetFirstIntake)
			r.Delete("/{id}", rx.Delete)
		})
	})

	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", metrics.Handler())

	return r
}
