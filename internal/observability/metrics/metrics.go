package metrics

import "github.com/prometheus/client_golang/prometheus"

// PollMetrics exposes counters/histograms for the polling loop.
type PollMetrics struct {
	fetchTotal    *prometheus.CounterVec
	matchesTotal  *prometheus.CounterVec
	deliveryTotal *prometheus.CounterVec
	passDuration  prometheus.Histogram
	nightPhase    prometheus.Gauge
}

func NewPollMetrics(reg prometheus.Registerer) *PollMetrics {
	m := &PollMetrics{
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cowin",
			Subsystem: "poll",
			Name:      "fetch_total",
			Help:      "Total availability fetches",
		}, []string{"strategy", "status"}),
		matchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cowin",
			Subsystem: "poll",
			Name:      "matches_total",
			Help:      "Total sessions matching the configured preferences",
		}, []string{"strategy"}),
		deliveryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cowin",
			Subsystem: "poll",
			Name:      "deliveries_total",
			Help:      "Total notification deliveries per channel",
		}, []string{"channel", "status"}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cowin",
			Subsystem: "poll",
			Name:      "pass_duration_seconds",
			Help:      "Duration of one pass over all configured targets",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		nightPhase: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cowin",
			Subsystem: "poll",
			Name:      "night_phase",
			Help:      "1 while the poller runs on the night interval",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.fetchTotal, m.matchesTotal, m.deliveryTotal, m.passDuration, m.nightPhase)
	return m
}

func (m *PollMetrics) ObserveFetch(strategy string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.fetchTotal.WithLabelValues(strategy, status).Inc()
}

func (m *PollMetrics) ObserveMatches(strategy string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.matchesTotal.WithLabelValues(strategy).Add(float64(n))
}

func (m *PollMetrics) ObserveDelivery(channel string, err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.deliveryTotal.WithLabelValues(channel, status).Inc()
}

func (m *PollMetrics) ObservePass(seconds float64, night bool) {
	if m == nil {
		return
	}
	m.passDuration.Observe(seconds)
	if night {
		m.nightPhase.Set(1)
	} else {
		m.nightPhase.Set(0)
	}
}
