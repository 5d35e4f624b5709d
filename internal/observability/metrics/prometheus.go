// Package metrics provides Prometheus metrics for the clinic backend.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	AppointmentsCreated   prometheus.Counter
	SlotConflicts         prometheus.Counter
	ValidationRejections  *prometheus.CounterVec
	AttendanceTransitions *prometheus.CounterVec
	DayClosureToggles     prometheus.Counter
	ForecastFallbacks     prometheus.Counter
	RequestDuration       *prometheus.HistogramVec
}

// New creates and registers all metrics
func New() *Metrics {
	m := &Metrics{
		AppointmentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "appointments_created_total",
			Help: "Total appointments booked",
		}),
		SlotConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "slot_conflicts_total",
			Help: "Total bookings rejected because the slot was taken",
		}),
		ValidationRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_validation_rejections_total",
			Help: "Bookings rejected by calendar policy, by rejection kind",
		}, []string{"kind"}),
		AttendanceTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_transitions_total",
			Help: "Appointment status transitions, by target status",
		}, []string{"status"}),
		DayClosureToggles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "day_closure_toggles_total",
			Help: "Administrative day open/close toggles",
		}),
		ForecastFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forecast_fallbacks_total",
			Help: "Forecasting-service calls that degraded to an empty result",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "route", "status"}),
	}

	prometheus.MustRegister(
		m.AppointmentsCreated,
		m.SlotConflicts,
		m.ValidationRejections,
		m.AttendanceTransitions,
		m.DayClosureToggles,
		m.ForecastFallbacks,
		m.RequestDuration,
	)

	return m
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
