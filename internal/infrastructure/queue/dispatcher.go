package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/taskhub/internal/api/metrics"
	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher writes task activity entries to the audit store off the request
// path. Entries are sharded by task id across a fixed set of workers, so the
// entries of one task are written in the order they were published.
type Dispatcher struct {
	workers []chan domain.TaskActivity
	repo    ports.ActivityRepository
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ ports.ActivityPublisher = (*Dispatcher)(nil)

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.ActivityRepository, log zerolog.Logger) *Dispatcher {
	return newDispatcher(numWorkers, channelBuffer, repo, log)
}

func newDispatcher(numWorkers, buffer int, repo ports.ActivityRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.TaskActivity, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.TaskActivity, buffer)
	}
	return d
}

// Start launches the worker goroutines. Workers keep running until Close;
// writes use ctx's values but not its cancellation, so queued entries are
// still flushed during shutdown.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Publish hands an entry to the worker owning its task. It never blocks:
// when that worker's queue is full, or the dispatcher is closed, the entry
// is dropped and counted.
func (d *Dispatcher) Publish(a domain.TaskActivity) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop(a, "dispatcher closed")
		return
	}

	idx := d.shardIndex(a.TaskID)
	select {
	case d.workers[idx] <- a:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.drop(a, "activity queue full")
	}
}

// Close stops accepting entries and waits for the workers to drain their
// queues. It is safe to call more than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// shardIndex maps a task id deterministically to a worker index.
func (d *Dispatcher) shardIndex(taskID int64) int {
	h := fnv.New32a()
	_, _ = h.Write(strconv.AppendInt(nil, taskID, 10))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) drop(a domain.TaskActivity, reason string) {
	metrics.ActivityWrittenTotal.WithLabelValues("dropped").Inc()
	d.log.Warn().
		Int64("task_id", a.TaskID).
		Str("action", string(a.Action)).
		Msg(reason)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.TaskActivity) {
	defer d.wg.Done()
	depth := metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(id))

	for a := range ch {
		depth.Set(float64(len(ch)))

		start := time.Now()
		err := d.repo.Insert(ctx, &a)
		metrics.ActivityWriteDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			metrics.ActivityWrittenTotal.WithLabelValues("error").Inc()
			d.log.Error().Err(err).
				Int64("task_id", a.TaskID).
				Str("action", string(a.Action)).
				Int("worker_id", id).
				Msg("activity write failed")
			continue
		}
		metrics.ActivityWrittenTotal.WithLabelValues("ok").Inc()
	}
}
