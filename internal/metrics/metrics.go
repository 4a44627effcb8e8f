package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eventhub"

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"route", "method"})

	// Domain counters
	SubscriptionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscriptions_total",
		Help:      "Subscriptions by outcome",
	}, []string{"outcome"})

	TicketsSold = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_sold_total",
		Help:      "Tickets sold",
	})

	TicketsReleased = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_released_total",
		Help:      "Tickets returned by cancelled subscriptions",
	})

	PaymentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_total",
		Help:      "Payments by gateway and status",
	}, []string{"gateway", "status"})

	PaymentAmount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_amount_total",
		Help:      "Sum of payment amounts by status",
	}, []string{"status"})

	NotificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_published_total",
		Help:      "Notification messages published by kind and result",
	}, []string{"kind", "result"})

	NotificationsStored = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_stored_total",
		Help:      "Notification rows written by the worker",
	})

	NotificationsDeadLettered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_dead_lettered_total",
		Help:      "Notification messages parked on the dead-letter topic",
	})

	registry = prometheus.NewRegistry()
	initOnce sync.Once
)

// Init registers all collectors plus the Go and process collectors
func Init() {
	initOnce.Do(func() {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			RequestsTotal,
			RequestDuration,
			SubscriptionsTotal,
			TicketsSold,
			TicketsReleased,
			PaymentsTotal,
			PaymentAmount,
			NotificationsPublished,
			NotificationsStored,
			NotificationsDeadLettered,
		)
	})
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// Middleware records request count and latency per route template
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		RequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// RecordSubscription records a subscription outcome
func RecordSubscription(outcome string, tickets int) {
	SubscriptionsTotal.WithLabelValues(outcome).Inc()
	switch outcome {
	case "created":
		TicketsSold.Add(float64(tickets))
	case "cancelled":
		TicketsReleased.Add(float64(tickets))
	}
}

// RecordPayment records a payment row reaching a status
func RecordPayment(gateway, status string, amount float64) {
	PaymentsTotal.WithLabelValues(gateway, status).Inc()
	if amount > 0 {
		PaymentAmount.WithLabelValues(status).Add(amount)
	}
}

// RecordNotification records a publish attempt
func RecordNotification(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	NotificationsPublished.WithLabelValues(kind, result).Inc()
}
