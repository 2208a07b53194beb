package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	evaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gridmix_evaluations_total",
		Help: "Scenario evaluations by outcome.",
	}, []string{"outcome"})

	evaluationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gridmix_evaluation_seconds",
		Help:    "Wall time of one multi-scenario evaluation.",
		Buckets: prometheus.DefBuckets,
	})

	datasetHours = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gridmix_dataset_hours",
		Help: "Hourly rows in the loaded capacity-factor dataset.",
	})

	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gridmix_http_requests_total",
		Help: "HTTP requests by matched route and status code.",
	}, []string{"path", "code"})
)
