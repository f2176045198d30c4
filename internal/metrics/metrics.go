package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the dispatch metrics on a private registry.
type Collector struct {
	reg *prometheus.Registry

	TripsStarted       prometheus.Counter
	TripsEnded         prometheus.Counter
	RunningTrips       prometheus.Gauge
	QueueEntries       *prometheus.CounterVec   // action label: enqueued|departed|removed
	TransitionFailures *prometheus.CounterVec   // op, kind labels
	TransitionDuration *prometheus.HistogramVec // op label
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		TripsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_trips_started_total",
			Help: "Total trips started.",
		}),
		TripsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_trips_ended_total",
			Help: "Total trips completed.",
		}),
		RunningTrips: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_running_trips",
			Help: "Trips started minus trips ended since process start.",
		}),
		QueueEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_queue_entries_total",
			Help: "Queue entry transitions.",
		}, []string{"action"}),
		TransitionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_transition_failures_total",
			Help: "Rejected or failed dispatch operations.",
		}, []string{"op", "kind"}),
		TransitionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dispatch_transition_duration_seconds",
			Help:    "Duration of dispatch transactions.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"op"}),
	}

	reg.MustRegister(
		c.TripsStarted, c.TripsEnded, c.RunningTrips,
		c.QueueEntries, c.TransitionFailures, c.TransitionDuration,
		prometheus.NewGoCollector(),
	)
	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// The methods below satisfy dispatch.Metrics.

func (c *Collector) TripStarted() {
	c.TripsStarted.Inc()
	c.RunningTrips.Inc()
}

func (c *Collector) TripEnded() {
	c.TripsEnded.Inc()
	c.RunningTrips.Dec()
}

func (c *Collector) QueueTransition(action string) {
	c.QueueEntries.WithLabelValues(action).Inc()
}

func (c *Collector) Failure(op, kind string) {
	c.TransitionFailures.WithLabelValues(op, kind).Inc()
}

func (c *Collector) Observe(op string, d time.Duration) {
	c.TransitionDuration.WithLabelValues(op).Observe(d.Seconds())
}
