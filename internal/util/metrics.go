package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_placed_total",
		Help: "Total number of storefront orders placed",
	})

	OrdersRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_rejected_total",
		Help: "Total number of rejected order submissions",
	}, []string{"reason"})

	OrderRevenueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_order_revenue_minor_units_total",
		Help: "Sum of placed order totals in minor currency units",
	})

	OrderStatusChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_status_changes_total",
		Help: "Total number of order status changes by target status",
	}, []string{"status"})

	OrderCreateLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_order_create_latency_seconds",
		Help:    "Latency of order creation including the database transaction",
		Buckets: prometheus.DefBuckets,
	})

	CatalogMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_catalog_mutations_total",
		Help: "Total number of admin catalog mutations",
	}, []string{"entity", "op"})

	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_login_attempts_total",
		Help: "Total number of admin login attempts",
	}, []string{"result"})

	EventsPublishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_events_published_total",
		Help: "Total number of domain events written to Kafka",
	})

	EventsPublishFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_events_publish_failed_total",
		Help: "Total number of domain events that could not be written",
	})

	NotificationsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_notifications_sent_total",
		Help: "Total number of admin notifications by event type",
	}, []string{"type"})

	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"route"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
