package queue

import (
	"context"
	"log/slog"
	"sync"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/pipeline"
)

// Handler runs one pipeline pass for a device.
type Handler func(ctx context.Context, deviceID string)

// HandlerQueue supports setting a handler for job delivery.
type HandlerQueue interface {
	pipeline.Queue
	SetHandler(handler Handler)
	Close()
}

// DeviceQueue dispatches jobs to one worker goroutine per device, so
// overlapping pipeline runs for the same device are serialized while devices
// stay independent. Ingestion never blocks: when a device's backlog is full
// the job is dropped, since a newer sample will trigger the next run anyway.
type DeviceQueue struct {
	mu      sync.Mutex
	handler Handler
	workers map[string]chan string
	backlog int
	closed  bool
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// NewDeviceQueue constructs the queue. backlog bounds each device's pending
// jobs.
func NewDeviceQueue(backlog int, logger *slog.Logger) *DeviceQueue {
	if backlog <= 0 {
		backlog = 8
	}
	return &DeviceQueue{
		workers: make(map[string]chan string),
		backlog: backlog,
		logger:  logger.With("component", "queue.device"),
	}
}

// SetHandler installs the pipeline run callback.
func (q *DeviceQueue) SetHandler(handler Handler) {
	q.mu.Lock()
	q.handler = handler
	q.mu.Unlock()
}

// Enqueue schedules a run for the device, spawning its worker on first use.
func (q *DeviceQueue) Enqueue(_ context.Context, deviceID string) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	jobs, ok := q.workers[deviceID]
	if !ok {
		jobs = make(chan string, q.backlog)
		q.workers[deviceID] = jobs
		q.wg.Add(1)
		go q.work(jobs)
	}
	// The send stays inside the critical section so Close never closes a
	// channel a sender can still reach. It cannot block: the channel is
	// buffered and the default arm drops on a full backlog.
	select {
	case jobs <- deviceID:
	default:
		q.logger.Warn("device backlog full, dropping run", "device", deviceID)
	}
	q.mu.Unlock()
	return nil
}

// Close stops accepting jobs and waits for in-flight runs to finish.
func (q *DeviceQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	for _, jobs := range q.workers {
		close(jobs)
	}
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *DeviceQueue) work(jobs <-chan string) {
	defer q.wg.Done()
	for deviceID := range jobs {
		q.mu.Lock()
		handler := q.handler
		q.mu.Unlock()
		if handler == nil {
			continue
		}
		handler(context.Background(), deviceID)
	}
}

var _ HandlerQueue = (*DeviceQueue)(nil)
