package server

import (
	"strconv"
	"time"

	"github.com/Daskott/contactspro/server/ingest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contactspro",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of API requests broken down by route and status.",
	}, []string{"method", "route", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "contactspro",
		Subsystem: "http",
		Name:      "latency_seconds",
		Help:      "Latency distribution for API requests.",
		Buckets: []float64{
			0.001, 0.002, 0.005,
			0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5, 10,
		},
	}, []string{"method", "route"})

	ingestedRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contactspro",
		Subsystem: "ingest",
		Name:      "rows_total",
		Help:      "Bulk upload rows broken down by source and outcome.",
	}, []string{"source", "outcome"})
)

func observeRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func observeReport(source string, report *ingest.Report) {
	ingestedRows.WithLabelValues(source, "uploaded").Add(float64(report.Uploaded))
	ingestedRows.WithLabelValues(source, "failed").Add(float64(report.Failed))
}
