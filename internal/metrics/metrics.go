package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdcast_predictions_total",
			Help: "Crowd predictions served, by path and predicted level",
		},
		[]string{"path", "level"},
	)

	ModelRetrainsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdcast_model_retrains_total",
			Help: "Model retrains triggered by a missing or corrupt artifact",
		},
		[]string{"reason"},
	)

	ModelTrainSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crowdcast_model_train_seconds",
			Help:    "Wall time of model training runs",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	HolidayFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crowdcast_holiday_fetches_total",
			Help: "Remote holiday feed fetches by outcome",
		},
		[]string{"status"},
	)

	SnapshotsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crowdcast_snapshots_written_total",
			Help: "Daily crowd snapshots persisted to the archive",
		},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crowdcast_http_request_duration_seconds",
			Help:    "HTTP request latency by route, method and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)
