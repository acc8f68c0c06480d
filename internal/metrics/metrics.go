package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	Verifications *prometheus.CounterVec // outcome label: ACEPTADO|ADVERTENCIA|RECHAZADO
	ExtraTrips    *prometheus.CounterVec // known label: true|false

	WindowQueries prometheus.Counter
	WindowEntries prometheus.Histogram

	DBErrors *prometheus.CounterVec // op label

	EventsPublished  prometheus.Counter
	EventPublishErrs prometheus.Counter
	EventsConnected  prometheus.Gauge
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terminal_verifications_total",
			Help: "Check-ins recorded, by outcome.",
		}, []string{"outcome"}),
		ExtraTrips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terminal_extra_trips_total",
			Help: "Unscheduled buses recorded, by fleet membership.",
		}, []string{"known"}),
		WindowQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "terminal_window_queries_total",
			Help: "Schedule window queries served.",
		}),
		WindowEntries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "terminal_window_entries",
			Help:    "Entries returned per schedule window.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		DBErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "terminal_db_errors_total",
			Help: "Database failures surfaced to callers, by operation.",
		}, []string{"op"}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "terminal_events_published_total",
			Help: "Check-in events published to NATS.",
		}),
		EventPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "terminal_event_publish_errors_total",
			Help: "Check-in event publish failures.",
		}),
		EventsConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "terminal_nats_connected",
			Help: "1 if the NATS connection is established, 0 otherwise.",
		}),
	}

	reg.MustRegister(
		c.Verifications, c.ExtraTrips,
		c.WindowQueries, c.WindowEntries,
		c.DBErrors,
		c.EventsPublished, c.EventPublishErrs, c.EventsConnected,
	)

	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// The methods below are nil-safe so services can run without a collector.

func (c *Collector) VerificationRecorded(outcome string) {
	if c == nil {
		return
	}
	c.Verifications.WithLabelValues(outcome).Inc()
}

func (c *Collector) ExtraTripRecorded(known bool) {
	if c == nil {
		return
	}
	c.ExtraTrips.WithLabelValues(strconv.FormatBool(known)).Inc()
}

func (c *Collector) WindowServed(entries int) {
	if c == nil {
		return
	}
	c.WindowQueries.Inc()
	c.WindowEntries.Observe(float64(entries))
}

func (c *Collector) DBError(op string) {
	if c == nil {
		return
	}
	c.DBErrors.WithLabelValues(op).Inc()
}

func (c *Collector) EventPublished(err error) {
	if c == nil {
		return
	}
	if err != nil {
		c.EventPublishErrs.Inc()
		return
	}
	c.EventsPublished.Inc()
}

func (c *Collector) EventsSetConnected(connected bool) {
	if c == nil {
		return
	}
	if connected {
		c.EventsConnected.Set(1)
		return
	}
	c.EventsConnected.Set(0)
}
