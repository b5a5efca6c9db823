package worker

import (
	"context"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"jyotish-systemv1/config"
	"jyotish-systemv1/internal/metrics"
	redisstore "jyotish-systemv1/internal/store/redis"
	"jyotish-systemv1/pkg/jyotish"
)

const (
	reclaimInterval = 30 * time.Second
	reclaimMinIdle  = 60 * time.Second
	livenessEvery   = 10 * time.Second
)

// Service wires the chart worker: Redis request stream in, engine, Redis
// result stream out, with metrics and health on the side.
type Service struct {
	cfg *config.Config
	log *slog.Logger

	eng      *jyotish.Engine
	closer   io.Closer
	reader   *redisstore.Reader
	writer   *redisstore.Writer
	buffered *redisstore.BufferedWriter
	breaker  *redisstore.CircuitBreaker

	prom   *metrics.Metrics
	health *metrics.HealthStatus
	server *metrics.Server
}

// NewService connects to Redis and opens the ephemeris source.
func NewService(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := &Service{
		cfg:    cfg,
		log:    logger,
		prom:   metrics.NewMetrics(reg),
		health: metrics.NewHealthStatus(),
	}
	svc.server = metrics.NewServer(cfg.Metrics.Addr, svc.health, reg)

	var err error
	svc.eng, svc.closer, err = jyotish.NewFromConfig(cfg, logger, svc.prom)
	if err != nil {
		return nil, err
	}
	svc.health.SetEphemeris(cfg.Ephemeris.Source, true)

	// ---- Connect to Redis ----
	svc.reader, err = redisstore.NewReader(redisstore.ReaderConfig{
		Addr:          cfg.Redis.Addr,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		Stream:        cfg.Redis.RequestStream,
		ConsumerGroup: cfg.Redis.Group,
		ConsumerName:  cfg.Redis.Consumer,
		BatchSize:     cfg.Worker.BatchSize,
	})
	if err != nil {
		svc.closer.Close()
		return nil, err
	}
	svc.reader.OnPoison = svc.prom.PoisonMessages.Inc

	svc.writer, err = redisstore.New(redisstore.WriterConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		svc.reader.Close()
		svc.closer.Close()
		return nil, err
	}
	svc.health.SetRedisConnected(true)

	return svc, nil
}

// Run starts all subsystems and blocks until ctx is cancelled.
func (svc *Service) Run(ctx context.Context) error {
	log.Println("[chartworker] starting chart worker...")
	defer svc.shutdown()

	// ---- Result path: circuit breaker + local buffer ----
	svc.breaker = redisstore.NewCircuitBreaker(5, 10*time.Second)
	svc.breaker.OnStateChange = func(from, to redisstore.State) {
		svc.prom.RedisCircuitBreakerState.Set(float64(to))
		if to == redisstore.StateOpen {
			svc.prom.RedisCircuitBreakerTrips.Inc()
		}
		log.Printf("[chartworker] redis circuit breaker %s -> %s", from, to)
	}
	svc.buffered = redisstore.NewBufferedWriter(ctx, svc.writer, svc.cfg.Redis.ResultStream, svc.breaker, 0)
	svc.buffered.OnBuffer = svc.prom.RedisBufferedWrites.Inc

	if err := svc.reader.EnsureConsumerGroup(ctx); err != nil {
		return err
	}

	wrk := New(svc.eng, svc.reader, svc.buffered, Options{
		Concurrency: svc.cfg.Worker.Concurrency,
		Buffer:      svc.cfg.Worker.BatchSize,
		Metrics:     svc.prom,
		Health:      svc.health,
	})

	// ---- Recover our own pending entries before new ones ----
	pending := make(chan redisstore.Message, svc.cfg.Worker.BatchSize)
	recovered := make(chan struct{})
	go func() {
		defer close(recovered)
		for m := range pending {
			wrk.Handle(ctx, m)
		}
	}()
	n, err := svc.reader.RecoverPending(ctx, pending)
	close(pending)
	<-recovered
	if err != nil {
		log.Printf("[chartworker] pending recovery error: %v", err)
	}
	if n > 0 {
		svc.prom.PELMessagesReclaimed.Add(float64(n))
		log.Printf("[chartworker] recovered %d pending requests", n)
	}

	go svc.reclaimLoop(ctx, wrk)

	var pinger metrics.Pinger
	if p, ok := svc.closer.(metrics.Pinger); ok {
		pinger = p
	}
	svc.health.StartLivenessChecker(ctx, svc.reader.Client(), pinger, livenessEvery)
	svc.server.Start()

	svc.log.Info("chart worker running",
		slog.String("request_stream", svc.reader.Stream()),
		slog.String("result_stream", svc.cfg.Redis.ResultStream),
		slog.String("ephemeris", svc.eng.String()),
		slog.Int("concurrency", svc.cfg.Worker.Concurrency),
	)

	return wrk.Run(ctx)
}

// reclaimLoop periodically claims requests abandoned by crashed consumers.
func (svc *Service) reclaimLoop(ctx context.Context, wrk *Worker) {
	ticker := time.NewTicker(reclaimInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			out := make(chan redisstore.Message, svc.cfg.Worker.BatchSize)
			done := make(chan struct{})
			go func() {
				defer close(done)
				for m := range out {
					wrk.Handle(ctx, m)
				}
			}()
			n, err := svc.reader.ReclaimStale(ctx, reclaimMinIdle, out)
			close(out)
			<-done
			if err != nil && ctx.Err() == nil {
				log.Printf("[chartworker] reclaim error: %v", err)
			}
			if n > 0 {
				svc.prom.PELMessagesReclaimed.Add(float64(n))
				log.Printf("[chartworker] reclaimed %d stale requests", n)
			}
		}
	}
}

// shutdown stops the HTTP server and closes connections.
func (svc *Service) shutdown() {
	log.Println("[chartworker] shutdown signal received...")

	shutCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	svc.server.Stop(shutCtx)

	if svc.buffered != nil && svc.buffered.PendingCount() > 0 {
		log.Printf("[chartworker] %d buffered results dropped, requests stay pending for redelivery", svc.buffered.PendingCount())
	}
	svc.writer.Close()
	svc.reader.Close()
	svc.closer.Close()

	log.Println("[chartworker] shutdown complete.")
}
