package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	ChatTurnsTotal   *prometheus.CounterVec
	ChatTurnDuration prometheus.Histogram
	ChatErrorsTotal  *prometheus.CounterVec
	LLMRequestsTotal *prometheus.CounterVec

	AppointmentsBooked  prometheus.Counter
	PrescriptionsIssued prometheus.Counter
	RemindersActivated  prometheus.Counter
	RemindersDispatched prometheus.Counter
	ReminderQueueDrops  prometheus.Counter

	AuditEntriesTotal  prometheus.Counter
	AuditBufferDropped prometheus.Counter
}

// NewCollector registers every metric on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration panics.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)

	return &Collector{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		ChatTurnsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Chat turns processed, labelled by the stage the turn ended in.",
		}, []string{"stage"}),

		ChatTurnDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "turn_duration_seconds",
			Help:      "Time spent processing one chat turn including session load and save.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
		}),

		ChatErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "errors_total",
			Help:      "Chat turns answered with an error reply, by kind.",
		}, []string{"kind"}),

		LLMRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "llm_requests_total",
			Help:      "Small-talk completions requested from the language model, by outcome.",
		}, []string{"outcome"}),

		AppointmentsBooked: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clinical",
			Name:      "appointments_booked_total",
			Help:      "Total appointments booked.",
		}),

		PrescriptionsIssued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "clinical",
			Name:      "prescriptions_issued_total",
			Help:      "Total prescriptions issued.",
		}),

		RemindersActivated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "activated_total",
			Help:      "Dose reminders switched from inactive to active.",
		}),

		RemindersDispatched: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "dispatched_total",
			Help:      "Due reminders pushed to patient queues.",
		}),

		ReminderQueueDrops: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminders",
			Name:      "queue_dropped_total",
			Help:      "Reminder messages dropped because a patient queue was full. Alert if non-zero.",
		}),

		AuditEntriesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Total audit log entries written.",
		}),

		AuditBufferDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "buffer_dropped_total",
			Help:      "Audit entries dropped due to full buffer. Alert if non-zero.",
		}),
	}
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
