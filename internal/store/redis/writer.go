package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

const (
	resultStreamMaxLen = 10000
	defaultResultTTL   = 24 * time.Hour
	resultKeyPrefix    = "jyotish:result:"
)

// WriterConfig configures the Redis writer.
type WriterConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
	TTL      time.Duration // lifetime of the per-request result key
}

// Writer publishes chart results and enqueues chart requests.
type Writer struct {
	client *goredis.Client
	ttl    time.Duration
}

// Client returns the underlying Redis client for health checks.
func (w *Writer) Client() *goredis.Client { return w.client }

// New creates a new Redis Writer and pings the server.
func New(cfg WriterConfig) (*Writer, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultResultTTL
	}
	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Writer{client: client, ttl: ttl}, nil
}

// ResultKey is the key holding the latest result of request id.
func ResultKey(id string) string { return resultKeyPrefix + id }

// Publish appends a result to stream and stores it under ResultKey(id), in
// one pipeline.
func (w *Writer) Publish(ctx context.Context, stream, id string, data []byte) error {
	payload := string(data)
	pipe := w.client.Pipeline()
	pipe.XAdd(ctx, &goredis.XAddArgs{
		Stream: stream,
		MaxLen: resultStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{"id": id, "data": payload},
	})
	pipe.Set(ctx, ResultKey(id), payload, w.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish %s: %w", id, err)
	}
	return nil
}

// Enqueue appends a request to stream and returns its entry id.
func (w *Writer) Enqueue(ctx context.Context, stream string, data []byte) (string, error) {
	id, err := w.client.XAdd(ctx, &goredis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{"data": string(data)},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("redis enqueue %s: %w", stream, err)
	}
	return id, nil
}

// Result reads the stored result of request id. A missing key returns
// (nil, nil).
func (w *Writer) Result(ctx context.Context, id string) ([]byte, error) {
	s, err := w.client.Get(ctx, ResultKey(id)).Result()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	return []byte(s), nil
}

// Close closes the writer.
func (w *Writer) Close() error {
	return w.client.Close()
}
