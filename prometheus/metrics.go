package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Authorization decisions by outcome
	AuthzDecisionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealerops_authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"outcome"}, // outcome is "allow" or "deny"
	)

	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dealerops_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dealerops_register_total",
			Help: "Total number of user registrations",
		},
	)

	// Invariant rejection counter by rule
	InvariantRejectionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealerops_invariant_rejections_total",
			Help: "Total number of writes rejected by the invariant pipeline",
		},
		[]string{"rule"}, // rule can be "capacity_exceeded", "due_date_past", etc.
	)

	// Punch transition counter
	PunchTransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealerops_punch_transitions_total",
			Help: "Total number of punch record transitions",
		},
		[]string{"transition"}, // "clock_in", "clock_out", "auto_close"
	)

	// Invitation lookup counter
	InvitationLookupCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealerops_invitation_lookups_total",
			Help: "Total number of invitation token lookups",
		},
		[]string{"result"}, // "hit" or "miss"
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealerops_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dealerops_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "login_failure", "invalid_token", "db_error" etc.
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dealerops_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dealerops_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Open punch records across all tenants
	OpenPunchGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dealerops_open_punches",
			Help: "Number of currently open punch records",
		},
	)

	// Punches closed by the last auto-close sweep
	SweepClosedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dealerops_sweep_closed_last_run",
			Help: "Punch records closed by the most recent auto-close sweep",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dealerops_info",
			Help: "Information about the dealerops service",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(AuthzDecisionCounter)
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(InvariantRejectionCounter)
	prometheus.MustRegister(PunchTransitionCounter)
	prometheus.MustRegister(InvitationLookupCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(OpenPunchGauge)
	prometheus.MustRegister(SweepClosedGauge)
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Execute the request handler
			err := next(c)

			// Record request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthzDecision records the outcome of an authorization check
func RecordAuthzDecision(allowed bool) {
	outcome := "deny"
	if allowed {
		outcome = "allow"
	}
	AuthzDecisionCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordInvariantRejection records a write rejected by the invariant pipeline
func RecordInvariantRejection(rule string) {
	InvariantRejectionCounter.With(prometheus.Labels{"rule": rule}).Inc()
}

// RecordPunchTransition records a punch record transition
func RecordPunchTransition(transition string) {
	PunchTransitionCounter.With(prometheus.Labels{"transition": transition}).Inc()
}

// RecordInvitationLookup records an invitation token lookup result
func RecordInvitationLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	InvitationLookupCounter.With(prometheus.Labels{"result": result}).Inc()
}

// RecordSweepRun records the result of an auto-close sweep
func RecordSweepRun(closed int) {
	SweepClosedGauge.Set(float64(closed))
}
