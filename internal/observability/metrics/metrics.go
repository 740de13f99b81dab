package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	namespace = "careai"
	subsystem = "ai"
)

// AIMetrics exposes counters/histograms for the skill pipeline.
type AIMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestLatency   *prometheus.HistogramVec
	providerAttempts *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	safetyEvents     *prometheus.CounterVec
	tokensTotal      *prometheus.CounterVec
}

func NewAIMetrics(reg prometheus.Registerer) *AIMetrics {
	m := &AIMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Skill executions by outcome",
		}, []string{"skill", "outcome"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_latency_seconds",
			Help:      "End-to-end latency of skill executions",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 45, 90},
		}, []string{"skill"}),
		providerAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "provider_attempts_total",
			Help:      "Generation attempts per provider",
		}, []string{"provider", "status"}),
		providerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "provider_latency_seconds",
			Help:      "Latency of a single provider call",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 45},
		}, []string{"provider", "status"}),
		safetyEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "safety_events_total",
			Help:      "Safety gate interventions",
		}, []string{"kind"}),
		tokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "tokens_total",
			Help:      "Estimated tokens processed",
		}, []string{"skill", "direction"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency, m.providerAttempts, m.providerLatency, m.safetyEvents, m.tokensTotal)
	return m
}

func (m *AIMetrics) ObserveRequest(skill, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(skill, outcome).Inc()
	m.requestLatency.WithLabelValues(skill).Observe(seconds)
}

func (m *AIMetrics) ObserveProviderAttempt(provider, status string, seconds float64) {
	if m == nil {
		return
	}
	m.providerAttempts.WithLabelValues(provider, status).Inc()
	m.providerLatency.WithLabelValues(provider, status).Observe(seconds)
}

func (m *AIMetrics) ObserveSafetyEvent(kind string) {
	if m == nil {
		return
	}
	m.safetyEvents.WithLabelValues(kind).Inc()
}

func (m *AIMetrics) ObserveTokens(skill string, input, output int) {
	if m == nil {
		return
	}
	m.tokensTotal.WithLabelValues(skill, "input").Add(float64(input))
	m.tokensTotal.WithLabelValues(skill, "output").Add(float64(output))
}
