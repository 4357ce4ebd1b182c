package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	postsCreatedTotal   *prometheus.CounterVec
	notificationsTotal  *prometheus.CounterVec
	pushDeliveriesTotal *prometheus.CounterVec
	chatMessagesTotal   prometheus.Counter
	chatConnections     prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total number of error responses returned.",
		}, []string{"method", "route", "status"})

		postsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feed_posts_created_total",
			Help: "Posts created, labelled by kind (post or announcement).",
		}, []string{"kind"})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "In-app notifications published, labelled by trigger.",
		}, []string{"trigger"})

		pushDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "push_deliveries_total",
			Help: "Web Push delivery attempts, labelled by outcome.",
		}, []string{"outcome"})

		chatMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_messages_sent_total",
			Help: "Chat messages persisted and broadcast.",
		})

		chatConnections = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_connections_total",
			Help: "Websocket chat connections accepted.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			postsCreatedTotal,
			notificationsTotal,
			pushDeliveriesTotal,
			chatMessagesTotal,
			chatConnections,
		)
	})
}

// HTTPRequests exposes the counter for served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// PostsCreated exposes the counter for created feed entries.
func PostsCreated() *prometheus.CounterVec {
	RegisterMetrics()
	return postsCreatedTotal
}

// NotificationsPublished exposes the counter for published notifications.
func NotificationsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// PushDeliveries exposes the counter for Web Push attempts.
func PushDeliveries() *prometheus.CounterVec {
	RegisterMetrics()
	return pushDeliveriesTotal
}

// ChatMessagesSent exposes the counter for chat messages.
func ChatMessagesSent() prometheus.Counter {
	RegisterMetrics()
	return chatMessagesTotal
}

// ChatConnectionsTotal exposes the counter for websocket connections.
func ChatConnectionsTotal() prometheus.Counter {
	RegisterMetrics()
	return chatConnections
}
