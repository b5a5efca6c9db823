package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jyotish-systemv1/internal/errs"
)

// Metrics holds all Prometheus metrics for the chart engine.
type Metrics struct {
	ComputeDur *prometheus.HistogramVec // labels: op
	Requests   *prometheus.CounterVec   // labels: op
	Failures   *prometheus.CounterVec   // labels: op, kind
	InFlight   prometheus.Gauge

	EphemerisRetries prometheus.Counter

	// Worker transport
	MessagesConsumed     prometheus.Counter
	PELMessagesReclaimed prometheus.Counter
	PoisonMessages       prometheus.Counter
	ResultsPublished     prometheus.Counter

	// Circuit breaker
	RedisCircuitBreakerState prometheus.Gauge // 0=closed, 1=open, 2=half-open
	RedisCircuitBreakerTrips prometheus.Counter
	RedisBufferedWrites      prometheus.Counter
}

// NewMetrics registers and returns all metrics on reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		ComputeDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "jyotish_compute_duration_seconds",
			Help:    "Latency of one engine operation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"op"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jyotish_requests_total",
			Help: "Engine operations started",
		}, []string{"op"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "jyotish_failures_total",
			Help: "Engine operations failed, by error kind",
		}, []string{"op", "kind"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "jyotish_requests_in_flight",
			Help: "Engine operations currently running",
		}),

		EphemerisRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "jyotish_ephemeris_retries_total",
			Help: "Ephemeris source reopens after a transient failure",
		}),

		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chartworker_messages_consumed_total",
			Help: "Chart requests read from the request stream",
		}),
		PELMessagesReclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chartworker_pel_messages_reclaimed_total",
			Help: "Messages reclaimed from the pending entries list on startup",
		}),
		PoisonMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chartworker_poison_messages_total",
			Help: "Undecodable requests acknowledged and dropped",
		}),
		ResultsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chartworker_results_published_total",
			Help: "Chart results written to the result stream",
		}),

		RedisCircuitBreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chartworker_redis_circuit_breaker_state",
			Help: "Redis circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		RedisCircuitBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chartworker_redis_circuit_breaker_trips_total",
			Help: "Times the Redis circuit breaker tripped open",
		}),
		RedisBufferedWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chartworker_redis_buffered_writes_total",
			Help: "Results buffered locally while the Redis circuit breaker was open",
		}),
	}

	reg.MustRegister(
		m.ComputeDur,
		m.Requests,
		m.Failures,
		m.InFlight,
		m.EphemerisRetries,
		m.MessagesConsumed,
		m.PELMessagesReclaimed,
		m.PoisonMessages,
		m.ResultsPublished,
		m.RedisCircuitBreakerState,
		m.RedisCircuitBreakerTrips,
		m.RedisBufferedWrites,
	)

	return m
}

// Track counts one operation and returns a func that records its duration
// and, when *errp is non-nil at that point, the failure kind.
//
//	defer m.Track("natal", &err)()
func (m *Metrics) Track(op string, errp *error) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	m.Requests.WithLabelValues(op).Inc()
	m.InFlight.Inc()
	return func() {
		m.InFlight.Dec()
		m.ComputeDur.WithLabelValues(op).Observe(time.Since(start).Seconds())
		if errp != nil && *errp != nil {
			kind := string(errs.KindOf(*errp))
			if kind == "" {
				kind = "internal"
			}
			m.Failures.WithLabelValues(op, kind).Inc()
		}
	}
}

// HealthStatus represents the worker health.
type HealthStatus struct {
	mu sync.RWMutex

	RedisConnected  bool      `json:"redis_connected"`
	EphemerisOK     bool      `json:"ephemeris_ok"`
	WorkerRunning   bool      `json:"worker_running"`
	LastRequestTime time.Time `json:"last_request_time"`
	EphemerisSource string    `json:"ephemeris_source"`

	// Liveness check results
	RedisLatencyMs  float64   `json:"redis_latency_ms"`
	SQLiteLatencyMs float64   `json:"sqlite_latency_ms"`
	LastCheckAt     time.Time `json:"last_check_at"`
	StartedAt       time.Time `json:"started_at"`
}

// NewHealthStatus returns a default health status.
func NewHealthStatus() *HealthStatus {
	return &HealthStatus{
		StartedAt:   time.Now(),
		EphemerisOK: true,
	}
}

func (h *HealthStatus) SetRedisConnected(v bool) {
	h.mu.Lock()
	h.RedisConnected = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetEphemeris(source string, ok bool) {
	h.mu.Lock()
	h.EphemerisSource = source
	h.EphemerisOK = ok
	h.mu.Unlock()
}

func (h *HealthStatus) SetWorkerRunning(v bool) {
	h.mu.Lock()
	h.WorkerRunning = v
	h.mu.Unlock()
}

func (h *HealthStatus) SetLastRequestTime(t time.Time) {
	h.mu.Lock()
	h.LastRequestTime = t
	h.mu.Unlock()
}

// CheckRedis pings Redis and records latency + connectivity.
func (h *HealthStatus) CheckRedis(ctx context.Context, rdb *goredis.Client) {
	start := time.Now()
	err := rdb.Ping(ctx).Err()
	latency := time.Since(start)

	h.mu.Lock()
	h.RedisConnected = err == nil
	h.RedisLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// Pinger is satisfied by *sql.DB and the SQLite ephemeris table.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CheckSQLite pings the ephemeris table database and records latency + health.
func (h *HealthStatus) CheckSQLite(ctx context.Context, db Pinger) {
	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	h.mu.Lock()
	h.EphemerisOK = err == nil
	h.SQLiteLatencyMs = float64(latency.Microseconds()) / 1000.0
	h.LastCheckAt = time.Now()
	h.mu.Unlock()
}

// StartLivenessChecker runs periodic dependency checks.
func (h *HealthStatus) StartLivenessChecker(ctx context.Context, rdb *goredis.Client, sqlDB Pinger, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
				if rdb != nil {
					h.CheckRedis(checkCtx, rdb)
				}
				if sqlDB != nil {
					h.CheckSQLite(checkCtx, sqlDB)
				}
				cancel()
			}
		}
	}()
}

// ServeHTTP handles the /healthz endpoint.
func (h *HealthStatus) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	overallStatus := "healthy"
	httpCode := http.StatusOK
	if !h.RedisConnected || !h.EphemerisOK || !h.WorkerRunning {
		overallStatus = "degraded"
		httpCode = http.StatusServiceUnavailable
	}
	if !h.EphemerisOK && !h.WorkerRunning {
		overallStatus = "unhealthy"
	}

	requestAge := ""
	if !h.LastRequestTime.IsZero() {
		requestAge = time.Since(h.LastRequestTime).Round(time.Millisecond).String()
	}

	status := struct {
		Status          string  `json:"status"`
		Uptime          string  `json:"uptime"`
		WorkerRunning   bool    `json:"worker_running"`
		LastRequestTime string  `json:"last_request_time"`
		RequestAge      string  `json:"request_age"`
		RedisConnected  bool    `json:"redis_connected"`
		RedisLatencyMs  float64 `json:"redis_latency_ms"`
		EphemerisOK     bool    `json:"ephemeris_ok"`
		EphemerisSource string  `json:"ephemeris_source"`
		SQLiteLatencyMs float64 `json:"sqlite_latency_ms"`
		LastCheckAt     string  `json:"last_check_at"`
	}{
		Status:          overallStatus,
		Uptime:          time.Since(h.StartedAt).Round(time.Second).String(),
		WorkerRunning:   h.WorkerRunning,
		LastRequestTime: h.LastRequestTime.Format(time.RFC3339),
		RequestAge:      requestAge,
		RedisConnected:  h.RedisConnected,
		RedisLatencyMs:  h.RedisLatencyMs,
		EphemerisOK:     h.EphemerisOK,
		EphemerisSource: h.EphemerisSource,
		SQLiteLatencyMs: h.SQLiteLatencyMs,
		LastCheckAt:     h.LastCheckAt.Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if httpCode != http.StatusOK {
		w.WriteHeader(httpCode)
	}
	json.NewEncoder(w).Encode(status)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	health *HealthStatus
	addr   string
	srv    *http.Server
}

// NewServer creates a metrics and health server. A nil gatherer serves the
// default registry.
func NewServer(addr string, health *HealthStatus, g prometheus.Gatherer) *Server {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", health.ServeHTTP)

	return &Server{
		health: health,
		addr:   addr,
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
