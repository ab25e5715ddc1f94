package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service. Each
// instance owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	Turns          *prometheus.CounterVec
	Sessions       prometheus.GaugeFunc
	IntelExtracted *prometheus.CounterVec
	Rejections     *prometheus.CounterVec
	ReplyLatency   prometheus.Histogram
}

// NewMetrics registers every instrument under namespace. sessions reports the
// live session count when scraped; nil reports zero.
func NewMetrics(namespace string, sessions func() int) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	if sessions == nil {
		sessions = func() int { return 0 }
	}

	return &Metrics{
		registry: reg,
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Processed webhook turns by classification outcome.",
		}, []string{"scam"}),
		Sessions: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Conversations tracked since process start.",
		}, func() float64 { return float64(sessions()) }),
		IntelExtracted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intel_extracted_total",
			Help:      "Extracted intelligence values by category.",
		}, []string{"category"}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_rejections_total",
			Help:      "Webhook calls rejected before processing, by reason.",
		}, []string{"reason"}),
		ReplyLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reply_latency_ms",
			Help:      "Time spent producing a persona reply, think time included.",
			Buckets:   []float64{500, 1000, 1500, 2000, 2500, 3000, 3500, 5000},
		}),
	}
}

func (m *Metrics) ObserveTurn(scam bool) {
	label := "false"
	if scam {
		label = "true"
	}
	m.Turns.WithLabelValues(label).Inc()
}

func (m *Metrics) AddIntel(category string, n int) {
	if n > 0 {
		m.IntelExtracted.WithLabelValues(category).Add(float64(n))
	}
}

func (m *Metrics) ObserveRejection(reason string) {
	m.Rejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveReplyLatency(d time.Duration) {
	m.ReplyLatency.Observe(float64(d.Milliseconds()))
}

// Handler serves this instance's registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
