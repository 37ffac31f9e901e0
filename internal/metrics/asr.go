package metrics

import "github.com/prometheus/client_golang/prometheus"

// Transcription and classification Prometheus metrics.
var (
	TranscriptionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recitevault",
			Name:      "transcription_requests_total",
			Help:      "Total number of transcription requests",
		},
		[]string{"engine", "status"},
	)

	TranscriptionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recitevault",
			Name:      "transcription_duration_seconds",
			Help:      "Transcription request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"engine"},
	)

	TranscriptionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recitevault",
			Name:      "transcription_errors_total",
			Help:      "Total transcription errors",
		},
		[]string{"engine", "error_type"},
	)

	ClassificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recitevault",
			Name:      "classifications_total",
			Help:      "Total number of tag classifications by outcome",
		},
		[]string{"category", "needs_review"},
	)

	PackageShortfallsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recitevault",
			Name:      "package_shortfalls_total",
			Help:      "Total number of items packaged with fewer takes than required",
		},
	)
)

var asrMetricsRegistered bool

// RegisterASRMetrics registers pipeline metrics. Must be called once from main.
func RegisterASRMetrics() {
	if asrMetricsRegistered {
		return
	}
	prometheus.MustRegister(TranscriptionRequestsTotal)
	prometheus.MustRegister(TranscriptionDuration)
	prometheus.MustRegister(TranscriptionErrorsTotal)
	prometheus.MustRegister(ClassificationsTotal)
	prometheus.MustRegister(PackageShortfallsTotal)
	asrMetricsRegistered = true
}
