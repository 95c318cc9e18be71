package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sellerchat",
			Name:      "resolutions_total",
			Help:      "Total questions resolved, partitioned by category and outcome.",
		},
		[]string{"category", "outcome"},
	)

	extractionAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sellerchat",
			Name:      "extraction_attempts",
			Help:      "Extraction attempts consumed per question.",
			Buckets:   []float64{1, 2, 3, 4},
		},
	)

	resolutionDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "sellerchat",
			Name:      "resolution_seconds",
			Help:      "End-to-end resolution latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
	)

	requestErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sellerchat",
			Name:      "request_errors_total",
			Help:      "Requests rejected for malformed input or handler failure.",
		},
	)
)

// Register attaches sellerchat collectors to the supplied Prometheus
// registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		resolutionsTotal,
		extractionAttempts,
		resolutionDurationSeconds,
		requestErrorsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveResolution records one resolved question.
func ObserveResolution(category, outcome string, retryCount int, duration time.Duration) {
	resolutionsTotal.WithLabelValues(category, outcome).Inc()
	extractionAttempts.Observe(float64(retryCount + 1))
	if duration < 0 {
		duration = 0
	}
	resolutionDurationSeconds.Observe(duration.Seconds())
}

// ObserveRequestError records a rejected request.
func ObserveRequestError() {
	requestErrorsTotal.Inc()
}
