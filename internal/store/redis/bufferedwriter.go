package redis

import (
	"context"
	"errors"
	"log"
	"sync"
)

// Publisher is the write side the BufferedWriter guards. *Writer
// implements it.
type Publisher interface {
	Publish(ctx context.Context, stream, id string, data []byte) error
}

// ErrBuffered is returned by BufferedWriter.Publish when the result was
// held locally instead of reaching Redis. The local buffer does not
// survive a restart, so callers must not treat the result as delivered.
var ErrBuffered = errors.New("redis: result buffered while circuit open")

// pendingWrite is a result buffered during circuit-open state.
type pendingWrite struct {
	ID   string
	Data []byte
}

// BufferedWriter wraps a Publisher with a circuit breaker. During
// circuit-open state, results are buffered locally and flushed when the
// circuit closes again.
type BufferedWriter struct {
	pub    Publisher
	cb     *CircuitBreaker
	ctx    context.Context
	stream string

	mu     sync.Mutex
	buffer []pendingWrite
	maxBuf int // max buffered results before dropping oldest (default: 1000)

	// Callbacks
	OnBuffer func()          // called when a result is buffered (for metrics)
	OnFlush  func(count int) // called after flushing buffered results
}

// NewBufferedWriter creates a BufferedWriter publishing to stream.
func NewBufferedWriter(ctx context.Context, pub Publisher, stream string, cb *CircuitBreaker, maxBufferSize int) *BufferedWriter {
	if maxBufferSize <= 0 {
		maxBufferSize = 1000
	}
	bw := &BufferedWriter{
		pub:    pub,
		cb:     cb,
		ctx:    ctx,
		stream: stream,
		buffer: make([]pendingWrite, 0, 64),
		maxBuf: maxBufferSize,
	}

	// Register flush on circuit close
	prevCallback := cb.OnStateChange
	cb.OnStateChange = func(from, to State) {
		if prevCallback != nil {
			prevCallback(from, to)
		}
		if to == StateClosed {
			go bw.flush()
		}
	}

	return bw
}

// Publish writes a result through the circuit breaker. If the circuit is
// open, the result is buffered locally and ErrBuffered is returned.
func (bw *BufferedWriter) Publish(ctx context.Context, id string, data []byte) error {
	err := bw.cb.Execute(func() error {
		return bw.pub.Publish(ctx, bw.stream, id, data)
	})
	if errors.Is(err, ErrCircuitOpen) {
		bw.bufferWrite(id, data)
		return ErrBuffered
	}
	return err
}

func (bw *BufferedWriter) bufferWrite(id string, data []byte) {
	bw.mu.Lock()
	defer bw.mu.Unlock()

	if len(bw.buffer) >= bw.maxBuf {
		// Buffer full: drop oldest
		bw.buffer = bw.buffer[1:]
	}
	bw.buffer = append(bw.buffer, pendingWrite{ID: id, Data: data})

	if bw.OnBuffer != nil {
		bw.OnBuffer()
	}
}

// flush replays all buffered results through the publisher.
func (bw *BufferedWriter) flush() {
	bw.mu.Lock()
	if len(bw.buffer) == 0 {
		bw.mu.Unlock()
		return
	}
	toFlush := bw.buffer
	bw.buffer = make([]pendingWrite, 0, 64)
	bw.mu.Unlock()

	flushed := 0
	for i, pw := range toFlush {
		if err := bw.pub.Publish(bw.ctx, bw.stream, pw.ID, pw.Data); err != nil {
			log.Printf("[buffered-writer] flush stopped after %d results: %v", flushed, err)
			bw.mu.Lock()
			bw.buffer = append(append([]pendingWrite{}, toFlush[i:]...), bw.buffer...)
			bw.mu.Unlock()
			break
		}
		flushed++
	}

	log.Printf("[buffered-writer] flushed %d buffered results", flushed)
	if bw.OnFlush != nil {
		bw.OnFlush(flushed)
	}
}

// PendingCount returns the number of buffered results waiting to be flushed.
func (bw *BufferedWriter) PendingCount() int {
	bw.mu.Lock()
	defer bw.mu.Unlock()
	return len(bw.buffer)
}
