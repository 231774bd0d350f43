package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// Errors returned by Dispatcher.EmitEvent.
var (
	ErrDispatcherStopped = errors.New("event dispatcher is stopped")
	ErrQueueFull         = errors.New("event queue is full")
)

// DispatcherConfig holds configuration options for the Dispatcher.
type DispatcherConfig struct {
	// WorkerCount is the number of goroutines delivering events.
	// If zero or negative, defaults to 1.
	WorkerCount int

	// QueueSize is the buffer size of the event queue.
	// If zero or negative, defaults to 1.
	QueueSize int
}

type queuedEvent struct {
	ctx   context.Context
	event *Event
}

// Dispatcher is an EventEmitter that queues events and delivers them to the
// next emitter from a pool of worker goroutines, off the request path.
type Dispatcher struct {
	next        EventEmitter
	queue       chan queuedEvent
	workerCount int
	logger      *slog.Logger

	mu      sync.RWMutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

var _ EventEmitter = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher delivering to next.
func NewDispatcher(next EventEmitter, config DispatcherConfig, l *slog.Logger) *Dispatcher {
	if l == nil {
		l = slog.Default()
	}
	l = l.With("component", "event_dispatcher")

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		l.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		workerCount = 1
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 1
	}

	return &Dispatcher{
		next:        next,
		queue:       make(chan queuedEvent, queueSize),
		workerCount: workerCount,
		logger:      l,
	}
}

// Start launches the worker goroutines. Calling Start twice is a no-op.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	for i := 0; i < d.workerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}
	d.logger.Info("event dispatcher started",
		"worker_count", d.workerCount,
		"queue_cap", cap(d.queue))
}

// EmitEvent queues the event without blocking.
// It returns ErrQueueFull when the buffer is full and ErrDispatcherStopped after Stop.
func (d *Dispatcher) EmitEvent(ctx context.Context, event *Event) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrDispatcherStopped
	}

	// The request context is about to be cancelled; keep its values only.
	item := queuedEvent{ctx: context.WithoutCancel(ctx), event: event}
	select {
	case d.queue <- item:
		d.logger.Debug("event queued",
			"event_id", event.ID,
			"event_type", event.Type,
			"queue_len", len(d.queue))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(d.queue))
	}
}

// Stop closes the queue and waits for queued events to be delivered or for ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("event dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.logger.Warn("event dispatcher stop timed out", "pending", len(d.queue))
		return ctx.Err()
	}
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	d.logger.Debug("starting worker", "worker_id", id)

	for item := range d.queue {
		d.deliver(item, id)
	}

	d.logger.Debug("event queue closed, stopping worker", "worker_id", id)
}

func (d *Dispatcher) deliver(item queuedEvent, workerID int) {
	log := logger.FromContextOrDefault(item.ctx, d.logger).With(
		"event_id", item.event.ID,
		"event_type", item.event.Type,
		"worker_id", workerID,
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("event handler panicked", "panic", r)
		}
	}()

	if err := d.next.EmitEvent(item.ctx, item.event); err != nil {
		log.Error("event delivery failed", "error", err)
	}
}
