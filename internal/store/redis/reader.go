package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// Message is one stream entry. Payloads travel as JSON in the "data" field.
type Message struct {
	Stream string
	ID     string
	Data   []byte
}

// ReaderConfig configures the Redis reader.
type ReaderConfig struct {
	Addr          string
	Password      string
	DB            int
	Stream        string // request stream, e.g. "jyotish:requests"
	ConsumerGroup string // consumer group name, e.g. "chartworker"
	ConsumerName  string // unique consumer name, e.g. hostname
	BatchSize     int    // entries per XREADGROUP, default 16
}

// Reader consumes chart requests from a Redis Stream via a consumer group.
type Reader struct {
	client        *goredis.Client
	stream        string
	consumerGroup string
	consumerName  string
	count         int64

	// OnPoison is called for entries without a payload (for metrics).
	OnPoison func()
}

// NewReader creates a new Redis Reader and pings the server.
func NewReader(cfg ReaderConfig) (*Reader, error) {
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

	r := newReader(client, cfg)
	log.Printf("[redis-reader] connected to %s (stream=%s, group=%s, consumer=%s)", cfg.Addr, r.stream, r.consumerGroup, r.consumerName)
	return r, nil
}

func newReader(client *goredis.Client, cfg ReaderConfig) *Reader {
	stream := cfg.Stream
	if stream == "" {
		stream = "jyotish:requests"
	}
	group := cfg.ConsumerGroup
	if group == "" {
		group = "chartworker"
	}
	consumer := cfg.ConsumerName
	if consumer == "" {
		consumer = "worker-1"
	}
	count := int64(cfg.BatchSize)
	if count < 1 {
		count = 16
	}
	return &Reader{
		client:        client,
		count:         count,
		stream:        stream,
		consumerGroup: group,
		consumerName:  consumer,
	}
}

// Client returns the underlying Redis client for health checks.
func (r *Reader) Client() *goredis.Client { return r.client }

// Stream returns the request stream name.
func (r *Reader) Stream() string { return r.stream }

// EnsureConsumerGroup creates the consumer group on the request stream if it
// doesn't exist. Fresh groups start at "0" so requests queued before the
// first worker started are served.
func (r *Reader) EnsureConsumerGroup(ctx context.Context) error {
	err := r.client.XGroupCreateMkStream(ctx, r.stream, r.consumerGroup, "0").Err()
	if err != nil && !isBusyGroup(err) {
		return fmt.Errorf("xgroup create %s: %w", r.stream, err)
	}
	return nil
}

func isBusyGroup(err error) bool {
	return strings.HasPrefix(err.Error(), "BUSYGROUP")
}

// Consume blocks on XREADGROUP and sends each request to out. Entries are
// not acknowledged here; the caller acks with Ack once the result is
// published. Returns when ctx is cancelled.
func (r *Reader) Consume(ctx context.Context, out chan<- Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		results, err := r.client.XReadGroup(ctx, &goredis.XReadGroupArgs{
			Group:    r.consumerGroup,
			Consumer: r.consumerName,
			Streams:  []string{r.stream, ">"},
			Count:    r.count,
			Block:    2 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, goredis.Nil) || ctx.Err() != nil {
				continue
			}
			log.Printf("[redis-reader] xreadgroup error: %v", err)
			select {
			case <-time.After(500 * time.Millisecond):
			case <-ctx.Done():
			}
			continue
		}

		for _, stream := range results {
			if err := r.deliver(ctx, stream.Stream, stream.Messages, out); err != nil {
				return err
			}
		}
	}
}

// RecoverPending re-delivers entries this consumer read but never acked
// before a crash. This gives at-least-once processing.
func (r *Reader) RecoverPending(ctx context.Context, out chan<- Message) (int, error) {
	recovered := 0
	start := "0"
	for {
		results, err := r.client.XReadGroup(ctx, &goredis.XReadGroupArgs{
			Group:    r.consumerGroup,
			Consumer: r.consumerName,
			Streams:  []string{r.stream, start},
			Count:    100,
		}).Result()
		if err != nil {
			if errors.Is(err, goredis.Nil) {
				return recovered, nil
			}
			return recovered, fmt.Errorf("xreadgroup pending %s: %w", r.stream, err)
		}
		n := 0
		for _, stream := range results {
			n += len(stream.Messages)
			if len(stream.Messages) > 0 {
				start = stream.Messages[len(stream.Messages)-1].ID
			}
			if err := r.deliver(ctx, stream.Stream, stream.Messages, out); err != nil {
				return recovered, err
			}
		}
		recovered += n
		if n == 0 {
			if recovered > 0 {
				log.Printf("[redis-reader] recovered %d pending requests from %s", recovered, r.stream)
			}
			return recovered, nil
		}
	}
}

// ReclaimStale XCLAIMs entries idle longer than minIdle from other
// consumers in the group and delivers them to out.
func (r *Reader) ReclaimStale(ctx context.Context, minIdle time.Duration, out chan<- Message) (int, error) {
	pending, err := r.client.XPendingExt(ctx, &goredis.XPendingExtArgs{
		Stream: r.stream,
		Group:  r.consumerGroup,
		Start:  "-",
		End:    "+",
		Count:  50,
		Idle:   minIdle,
	}).Result()
	if err != nil || len(pending) == 0 {
		return 0, err
	}

	var staleIDs []string
	for _, p := range pending {
		if p.Consumer != r.consumerName {
			staleIDs = append(staleIDs, p.ID)
		}
	}
	if len(staleIDs) == 0 {
		return 0, nil
	}

	claimed, err := r.client.XClaim(ctx, &goredis.XClaimArgs{
		Stream:   r.stream,
		Group:    r.consumerGroup,
		Consumer: r.consumerName,
		MinIdle:  minIdle,
		Messages: staleIDs,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("xclaim %s: %w", r.stream, err)
	}
	log.Printf("[redis-reader] reclaimed %d stale PEL entries from %s", len(claimed), r.stream)
	return len(claimed), r.deliver(ctx, r.stream, claimed, out)
}

func (r *Reader) deliver(ctx context.Context, stream string, msgs []goredis.XMessage, out chan<- Message) error {
	for _, msg := range msgs {
		data, ok := msg.Values["data"].(string)
		if !ok {
			// ACK entries without a payload to avoid a poison pill
			r.client.XAck(ctx, stream, r.consumerGroup, msg.ID)
			if r.OnPoison != nil {
				r.OnPoison()
			}
			continue
		}
		select {
		case out <- Message{Stream: stream, ID: msg.ID, Data: []byte(data)}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Ack acknowledges a processed request.
func (r *Reader) Ack(ctx context.Context, m Message) error {
	return r.client.XAck(ctx, m.Stream, r.consumerGroup, m.ID).Err()
}

// Close closes the reader.
func (r *Reader) Close() error {
	return r.client.Close()
}
