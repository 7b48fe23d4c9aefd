package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuotesTotal         = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_booking", Name: "quotes_total", Help: "Total route quotes computed"})
	RidesBookedTotal    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_booking", Name: "rides_booked_total", Help: "Total rides booked"})
	RidesCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_booking", Name: "rides_cancelled_total", Help: "Total rides cancelled"})
	RidesCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_booking", Name: "rides_completed_total", Help: "Total rides completed"})
	GeocodeCacheHits    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_booking", Name: "geocode_cache_hits_total", Help: "Geocoding cache hits"})
	GeocodeCacheMisses  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_booking", Name: "geocode_cache_misses_total", Help: "Geocoding cache misses"})
	ChatMessagesTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_booking", Name: "chat_messages_total", Help: "Chat messages delivered"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_booking", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ride_booking",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
