package upload

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors of a Metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "dropzone").
	Namespace string

	// Subsystem is the metrics subsystem (default: "upload").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for decode duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures a Metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the decode duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "dropzone",
		Subsystem: "upload",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Offer outcomes recorded by Metrics.
const (
	OutcomeAccepted     = "accepted"
	OutcomeUnauthorized = "unauthorized"
	OutcomeIgnored      = "ignored"
)

// Abort reasons recorded by Metrics.
const (
	AbortReset      = "reset"
	AbortClosed     = "closed"
	AbortSuperseded = "superseded"
)

// Metrics holds the Prometheus collectors shared by any number of widgets.
// A nil *Metrics records nothing.
type Metrics struct {
	offersTotal    *prometheus.CounterVec
	completions    prometheus.Counter
	decodeFailures prometheus.Counter
	abortsTotal    *prometheus.CounterVec
	decodeDuration prometheus.Histogram
	activeUploads  prometheus.Gauge
	dragEvents     *prometheus.CounterVec
}

// NewMetrics creates and registers the upload collectors.
//
// Metrics collected:
//   - dropzone_upload_offers_total: offers by outcome (accepted,
//     unsupported_type, too_large, unauthorized, ignored)
//   - dropzone_upload_completions_total: completion sink invocations
//   - dropzone_upload_decode_failures_total: files that could not be read
//   - dropzone_upload_aborts_total: in-flight uploads released early, by reason
//   - dropzone_upload_decode_duration_seconds: decode latency
//   - dropzone_upload_active: accepted files not yet completed or released
//   - dropzone_upload_drag_events_total: drag events by type
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if len(config.Buckets) == 0 {
		config.Buckets = prometheus.DefBuckets
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		offersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "offers_total",
			Help:        "Total number of files offered to upload widgets",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		completions: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "completions_total",
			Help:        "Total number of completion callbacks fired",
			ConstLabels: config.ConstLabels,
		}),

		decodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "decode_failures_total",
			Help:        "Total number of accepted files that could not be decoded",
			ConstLabels: config.ConstLabels,
		}),

		abortsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "aborts_total",
			Help:        "Total number of in-flight uploads released before completion",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),

		decodeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "decode_duration_seconds",
			Help:        "File decode duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		activeUploads: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active",
			Help:        "Number of accepted files still in flight",
			ConstLabels: config.ConstLabels,
		}),

		dragEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "drag_events_total",
			Help:        "Total number of drag events by type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),
	}
}

func (m *Metrics) recordOffer(outcome string) {
	if m == nil {
		return
	}
	m.offersTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeAccepted {
		m.activeUploads.Inc()
	}
}

func (m *Metrics) recordRejection(code Code) {
	if m == nil {
		return
	}
	m.offersTotal.WithLabelValues(string(code)).Inc()
}

func (m *Metrics) recordDecode(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.decodeDuration.Observe(d.Seconds())
	if err != nil {
		m.decodeFailures.Inc()
		m.activeUploads.Dec()
	}
}

func (m *Metrics) recordCompletion() {
	if m == nil {
		return
	}
	m.completions.Inc()
	m.activeUploads.Dec()
}

func (m *Metrics) recordAbort(reason string) {
	if m == nil {
		return
	}
	m.abortsTotal.WithLabelValues(reason).Inc()
	m.activeUploads.Dec()
}

func (m *Metrics) recordDrag(kind string) {
	if m == nil {
		return
	}
	m.dragEvents.WithLabelValues(kind).Inc()
}
