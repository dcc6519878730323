// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of ensemble predictions by outcome",
		},
		[]string{"outcome"},
	)

	PredictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_failures_total",
			Help: "Total number of failed predictions by error code",
		},
		[]string{"error_code"},
	)

	PredictionAgreement = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prediction_model_agreement_ratio",
			Help:    "Fraction of sub-models agreeing with the ensemble outcome",
			Buckets: []float64{0.2, 0.4, 0.6, 0.8, 1.0},
		},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prediction_duration_seconds",
			Help:    "Duration of the ensemble pipeline in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "route"},
	)
)

// PredictionRecorder feeds Predictor observations into the collectors above.
type PredictionRecorder struct{}

func NewPredictionRecorder() *PredictionRecorder {
	return &PredictionRecorder{}
}

func (PredictionRecorder) RecordPrediction(outcome string, agreement float64, duration time.Duration) {
	PredictionsTotal.WithLabelValues(outcome).Inc()
	PredictionAgreement.Observe(agreement)
	PredictionDuration.Observe(duration.Seconds())
}

func (PredictionRecorder) RecordFailure(code string) {
	PredictionFailures.WithLabelValues(code).Inc()
}
