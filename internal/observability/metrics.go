package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mockchat_http_requests_total",
			Help: "Total number of HTTP requests processed by the mock chat service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mockchat_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	storeMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mockchat_store_mutations_total",
			Help: "Total number of store mutations by operation and result.",
		},
		[]string{"op", "result"},
	)
	simulationEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mockchat_simulation_events_total",
			Help: "Total number of simulated read receipts, typing markers, replies and presence flips.",
		},
		[]string{"kind"},
	)
	simulationCancelledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mockchat_simulation_tasks_cancelled_total",
			Help: "Total number of scheduled simulation tasks cancelled before firing.",
		},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mockchat_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
		[]string{"kind"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mockchat_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"kind", "event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mockchat_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
	droppedEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mockchat_dropped_events_total",
			Help: "Store events dropped because a background sink was saturated.",
		},
		[]string{"sink"},
	)
	journalWriteErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mockchat_journal_write_errors_total",
			Help: "Total number of failed event journal writes.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		storeMutationsTotal,
		simulationEventsTotal,
		simulationCancelledTotal,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
		droppedEventsTotal,
		journalWriteErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveStoreMutation counts a store mutation as ok or rejected.
func ObserveStoreMutation(op string, err error) {
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	storeMutationsTotal.WithLabelValues(op, result).Inc()
}

func IncSimulationEvent(kind string) {
	simulationEventsTotal.WithLabelValues(kind).Inc()
}

func AddSimulationCancelled(n int) {
	simulationCancelledTotal.Add(float64(n))
}

func IncWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Inc()
}

func DecWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Dec()
}

func IncWSEvent(kind, event string) {
	wsEventsTotal.WithLabelValues(kind, event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}

func IncDroppedEvent(sink string) {
	droppedEventsTotal.WithLabelValues(sink).Inc()
}

func IncJournalWriteError() {
	journalWriteErrorsTotal.Inc()
}
