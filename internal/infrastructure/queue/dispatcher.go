package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/adoptafacil/adoption-api/internal/core/domain"
	"github.com/adoptafacil/adoption-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 5 * time.Second
)

var (
	// ErrQueueFull is returned when the worker for an event has no buffer left.
	ErrQueueFull = errors.New("audit queue full")
	// ErrDispatcherClosed is returned by Record after Close.
	ErrDispatcherClosed = errors.New("audit dispatcher closed")
)

// AuditDispatcher moves security event writes off the request path. Events
// are sharded by email so each identity's events reach the sink in order.
type AuditDispatcher struct {
	workers []chan domain.SecurityEvent
	sink    ports.SecurityAudit
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, sink ports.SecurityAudit, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.SecurityEvent, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SecurityEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when their channel is
// drained after Close.
func (d *AuditDispatcher) Start() {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Record enqueues ev without blocking. It satisfies ports.SecurityAudit.
func (d *AuditDispatcher) Record(_ context.Context, ev domain.SecurityEvent) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	select {
	case d.workers[d.shardIndex(ev.Email)] <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and waits for queued ones to be written or
// for ctx to expire.
func (d *AuditDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, ch := range d.workers {
			close(ch)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps an email deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(email string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(email))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(id int, ch <-chan domain.SecurityEvent) {
	defer d.wg.Done()
	for ev := range ch {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := d.sink.Record(ctx, ev); err != nil {
			d.log.Error().Err(err).
				Str("event", string(ev.Type)).
				Int("worker_id", id).
				Msg("security event write failed")
		}
		cancel()
	}
}
