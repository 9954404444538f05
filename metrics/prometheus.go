package metrics

import (
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// to prevent metrics from being initialized multiple times
	isMetricsInitVar uint32 = 0

	// active REST API connections
	activeRESTConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_rest_connections",
			Help: "Number of active REST API connections",
		},
	)

	// response times for REST APIs
	responseTimeRESTAPI = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "restapi_response_time_milliseconds",
			Help:    "REST API response time distributions",
			Buckets: []float64{1, 10, 50, 100, 200, 300, 400, 500, 1000, 5000},
		},
		[]string{"method", "endpoint"},
	)

	requestSizeRESTAPI = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "restapi_request_size_kilobytes",
			Help:    "REST API request size distributions",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"method", "endpoint"},
	)

	responseSizeRESTAPI = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "restapi_response_size_kilobytes",
			Help:    "REST API response size distributions",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"method", "endpoint"},
	)

	// Number of requests processed by REST API
	RESTRequestMetricsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rest_requests_processed_total",
		Help: "The total number of processed REST requests",
	}, []string{"method", "endpoint"})

	// Contact submissions by outcome (ok, rate_limited, not_configured, invalid_request, invalid_form, send_failed)
	ContactSubmissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_submissions_total",
		Help: "The total number of contact submissions by outcome",
	}, []string{"outcome"})

	// Emails handed to the email provider (kind: admin, ack; status: ok, error)
	ContactEmailsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_emails_total",
		Help: "The total number of contact emails sent by kind and status",
	}, []string{"kind", "status"})

	ContactEmailSendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "contact_email_send_latency_milliseconds",
		Help:    "Latency of a single email send",
		Buckets: prometheus.LinearBuckets(50, 250, 10),
	})

	// Number of tracked rate limiter keys
	RateLimiterKeys = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "contact_ratelimit_keys",
		Help: "Number of client keys tracked by the contact rate limiter",
	})

	// Number of expired form snapshots removed by the sweeper
	SnapshotsSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contact_snapshots_swept_total",
		Help: "The total number of expired contact form snapshots removed",
	})
)

func setIsMetricsInit() {
	atomic.StoreUint32(&isMetricsInitVar, 1)
}

func isMetricsInit() bool {
	return atomic.LoadUint32(&isMetricsInitVar) == 1
}

func InitMetrics() {
	if !isMetricsInit() {
		setIsMetricsInit()

		// Metrics have to be registered to be exposed
		prometheus.MustRegister(activeRESTConnections)
		prometheus.MustRegister(responseTimeRESTAPI)
		prometheus.MustRegister(RESTRequestMetricsTotal)
		prometheus.MustRegister(requestSizeRESTAPI)
		prometheus.MustRegister(responseSizeRESTAPI)
		prometheus.MustRegister(ContactSubmissionsTotal)
		prometheus.MustRegister(ContactEmailsTotal)
		prometheus.MustRegister(ContactEmailSendLatency)
		prometheus.MustRegister(RateLimiterKeys)
		prometheus.MustRegister(SnapshotsSweptTotal)
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		RESTRequestMetricsTotal.WithLabelValues(c.Request.Method, endpoint).Inc()

		r := c.Request
		w := c.Writer

		start := time.Now()

		activeRESTConnections.Inc()
		defer activeRESTConnections.Dec()

		c.Next()

		// observe request size in kilobtyes
		if r.ContentLength > 0 {
			requestSizeRESTAPI.WithLabelValues(c.Request.Method, endpoint).Observe(float64(r.ContentLength) / 1024)
		}

		if w.Size() > 0 {
			responseSizeRESTAPI.WithLabelValues(c.Request.Method, endpoint).Observe(float64(w.Size()) / 1024)
		}

		latency := time.Since(start)
		responseTimeRESTAPI.WithLabelValues(c.Request.Method, endpoint).Observe(float64(latency.Milliseconds()))
	}
}
