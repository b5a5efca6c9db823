// Package worker serves chart requests from a stream: it decodes each
// request, computes the report with bounded concurrency, publishes the
// result and acknowledges the request.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"jyotish-systemv1/internal/errs"
	"jyotish-systemv1/internal/logger"
	"jyotish-systemv1/internal/metrics"
	redisstore "jyotish-systemv1/internal/store/redis"
	"jyotish-systemv1/pkg/jyotish"
)

// Source delivers requests. *redisstore.Reader implements it.
type Source interface {
	Consume(ctx context.Context, out chan<- redisstore.Message) error
	Ack(ctx context.Context, m redisstore.Message) error
}

// Sink publishes results. *redisstore.BufferedWriter implements it.
type Sink interface {
	Publish(ctx context.Context, id string, data []byte) error
}

// Result is the published outcome of one request.
type Result struct {
	ID        string          `json:"id"`
	Report    *jyotish.Report `json:"report,omitempty"`
	Error     *errs.Error     `json:"error,omitempty"`
	ElapsedMs float64         `json:"elapsed_ms"`
}

// Options bound the worker.
type Options struct {
	Concurrency int // reports computed at once, default 4
	Buffer      int // delivered requests waiting for a slot, default 16
	Metrics     *metrics.Metrics
	Health      *metrics.HealthStatus
}

// Worker connects a Source and a Sink through an Engine.
type Worker struct {
	eng  *jyotish.Engine
	src  Source
	sink Sink
	opts Options
}

// New creates a Worker.
func New(eng *jyotish.Engine, src Source, sink Sink, opts Options) *Worker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 4
	}
	if opts.Buffer < 1 {
		opts.Buffer = 16
	}
	return &Worker{eng: eng, src: src, sink: sink, opts: opts}
}

// Run consumes until ctx is cancelled, then waits for in-flight requests.
// Cancellation is a clean stop and returns nil.
func (w *Worker) Run(ctx context.Context) error {
	msgs := make(chan redisstore.Message, w.opts.Buffer)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(msgs)
		return w.src.Consume(gctx, msgs)
	})
	g.Go(func() error {
		return w.dispatch(gctx, msgs)
	})

	if w.opts.Health != nil {
		w.opts.Health.SetWorkerRunning(true)
		defer w.opts.Health.SetWorkerRunning(false)
	}
	log.Printf("[worker] running (concurrency=%d)", w.opts.Concurrency)

	err := g.Wait()
	if ctx.Err() != nil && (err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		log.Printf("[worker] stopped")
		return nil
	}
	return err
}

// dispatch fans requests out to at most Concurrency handlers.
func (w *Worker) dispatch(ctx context.Context, msgs <-chan redisstore.Message) error {
	var pool errgroup.Group
	pool.SetLimit(w.opts.Concurrency)
	for m := range msgs {
		m := m
		pool.Go(func() error {
			w.Handle(ctx, m)
			return nil
		})
	}
	return pool.Wait()
}

// Handle processes one request. The request is acknowledged once a result,
// success or failure, is published. Cancelled requests stay pending for
// recovery.
func (w *Worker) Handle(ctx context.Context, m redisstore.Message) {
	start := time.Now()
	if w.opts.Metrics != nil {
		w.opts.Metrics.MessagesConsumed.Inc()
	}
	if w.opts.Health != nil {
		w.opts.Health.SetLastRequestTime(start)
	}

	tctx := logger.WithTraceID(ctx, logger.NewTraceID())
	res := Result{ID: m.ID}

	var req jyotish.Request
	if err := json.Unmarshal(m.Data, &req); err != nil {
		if w.opts.Metrics != nil {
			w.opts.Metrics.PoisonMessages.Inc()
		}
		res.Error = errs.Invalid(string(m.Data), "undecodable chart request")
		res.Error.TraceID = logger.TraceID(tctx)
	} else {
		if req.ID == "" {
			req.ID = m.ID
		}
		res.ID = req.ID
		rep, err := w.eng.Report(tctx, req)
		if errs.KindOf(err) == errs.KindCancelled {
			return
		}
		if err != nil {
			res.Error = asError(tctx, err)
		} else {
			res.Report = rep
		}
	}
	res.ElapsedMs = float64(time.Since(start).Microseconds()) / 1000

	data, err := json.Marshal(res)
	if err != nil {
		log.Printf("[worker] marshal result %s: %v", res.ID, err)
		return
	}
	if err := w.sink.Publish(ctx, res.ID, data); err != nil {
		// Unacked requests are redelivered by RecoverPending or ReclaimStale.
		if errors.Is(err, redisstore.ErrBuffered) {
			log.Printf("[worker] result %s buffered, request left pending", res.ID)
			return
		}
		log.Printf("[worker] publish %s: %v (left pending)", res.ID, err)
		return
	}
	if w.opts.Metrics != nil {
		w.opts.Metrics.ResultsPublished.Inc()
	}
	if err := w.src.Ack(ctx, m); err != nil {
		log.Printf("[worker] ack %s: %v", m.ID, err)
	}
}

func asError(ctx context.Context, err error) *errs.Error {
	var e *errs.Error
	if errors.As(err, &e) {
		return e
	}
	return &errs.Error{Kind: "internal", Message: err.Error(), TraceID: logger.TraceID(ctx)}
}
