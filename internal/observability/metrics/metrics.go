package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                        sync.Once
	metricsRouter               *chi.Mux
	dbLatency                   *prometheus.HistogramVec
	httpRequestDuration         *prometheus.HistogramVec
	settlementDuration          *prometheus.HistogramVec
	settledStakesCounter        prometheus.Counter
	unsettledStakesGauge        prometheus.Gauge
	queuePublishErrorCounter    prometheus.Counter
	accrualOverflowErrorCounter prometheus.Counter
	currentEpochGauge           prometheus.Gauge
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
		registerMetrics()
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_latency_seconds",
			Help:    "Histogram of database operation durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of incoming HTTP request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "path", "status"},
	)

	settlementDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settlement_duration_seconds",
			Help:    "Histogram of settlement poller run durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"status"},
	)

	settledStakesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "settled_stakes_total",
			Help: "The total number of stake settlements committed.",
		},
	)

	unsettledStakesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "unsettled_stakes",
			Help: "The number of active stakes behind the current epoch at the last poll.",
		},
	)

	queuePublishErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_publish_error_count",
			Help: "The total number of errors when publishing records to the queue.",
		},
	)

	accrualOverflowErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "accrual_overflow_error_count",
			Help: "The total number of accrual computations rejected for overflow.",
		},
	)

	currentEpochGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "current_epoch",
			Help: "The current epoch number as derived from the epoch clock.",
		},
	)

	prometheus.MustRegister(
		dbLatency,
		httpRequestDuration,
		settlementDuration,
		settledStakesCounter,
		unsettledStakesGauge,
		queuePublishErrorCounter,
		accrualOverflowErrorCounter,
		currentEpochGauge,
	)
}

// ObserveDbLatency records the duration of a single db method call.
func ObserveDbLatency(method string, duration time.Duration, failure bool) {
	if dbLatency == nil {
		return
	}
	status := Success
	if failure {
		status = Error
	}
	dbLatency.WithLabelValues(method, status.String()).Observe(duration.Seconds())
}

// ObserveHTTPRequest records the duration of one API request.
func ObserveHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if httpRequestDuration == nil {
		return
	}
	httpRequestDuration.
		WithLabelValues(method, path, strconv.Itoa(statusCode)).
		Observe(duration.Seconds())
}

// ObserveSettlementRun records the duration of one settlement poller run.
func ObserveSettlementRun(duration time.Duration, failure bool) {
	if settlementDuration == nil {
		return
	}
	status := Success
	if failure {
		status = Error
	}
	settlementDuration.WithLabelValues(status.String()).Observe(duration.Seconds())
}

func IncSettledStakes() {
	if settledStakesCounter != nil {
		settledStakesCounter.Inc()
	}
}

func RecordUnsettledStakes(count int) {
	if unsettledStakesGauge != nil {
		unsettledStakesGauge.Set(float64(count))
	}
}

func RecordQueuePublishError() {
	if queuePublishErrorCounter != nil {
		queuePublishErrorCounter.Inc()
	}
}

func RecordAccrualOverflowError() {
	if accrualOverflowErrorCounter != nil {
		accrualOverflowErrorCounter.Inc()
	}
}

func RecordCurrentEpoch(epoch uint64) {
	if currentEpochGauge != nil {
		currentEpochGauge.Set(float64(epoch))
	}
}
