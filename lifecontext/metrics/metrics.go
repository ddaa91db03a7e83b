package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "web_data_uploads_total",
			Help: "Crawl payload deliveries by result.",
		},
		[]string{"result"}, // success, fallback, error
	)

	DeliveryTierTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_tier_attempts_total",
			Help: "Delivery attempts per strategy tier.",
		},
		[]string{"tier", "outcome"},
	)

	StreamChunksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_stream_chunks_total",
			Help: "Chat stream chunks forwarded to pages.",
		},
	)
)
