package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/aegisai/aegis/internal/config"
	"github.com/aegisai/aegis/internal/domain/models"
	"github.com/aegisai/aegis/internal/domain/repository"
	"github.com/aegisai/aegis/internal/infrastructure/monitoring"
	"github.com/aegisai/aegis/pkg/errors"
	"github.com/aegisai/aegis/pkg/logger"
)

// Dispatcher routes tasks onto per-tenant bounded queues, each drained by a
// single worker goroutine. Failed tasks are retried with exponential backoff;
// tasks that exhaust their retries, and tasks rejected by a full queue, are
// persisted to the dead letter table.
type Dispatcher struct {
	cfg        config.TasksConfig
	handlers   map[string]Handler
	deadLetter repository.DeadLetterRepository
	metrics    *monitoring.Metrics
	logger     logger.Logger

	mu      sync.Mutex
	queues  map[string]chan *Task
	closing bool

	// baseCtx outlives request contexts; tasks run after the ingestion
	// response has been returned.
	baseCtx    context.Context
	cancelBase context.CancelFunc
	workers    sync.WaitGroup
}

func NewDispatcher(
	cfg config.TasksConfig,
	deadLetter repository.DeadLetterRepository,
	metrics *monitoring.Metrics,
	log logger.Logger,
) *Dispatcher {
	baseCtx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		cfg:        cfg,
		handlers:   make(map[string]Handler),
		deadLetter: deadLetter,
		metrics:    metrics,
		logger:     log.WithComponent("task_dispatcher"),
		queues:     make(map[string]chan *Task),
		baseCtx:    baseCtx,
		cancelBase: cancel,
	}
}

// Register binds a handler to a task kind. Must be called before Enqueue.
func (d *Dispatcher) Register(kind string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = handler
}

// Enqueue places a task on its tenant's queue without blocking. A full queue
// dead-letters the task and reports ErrQueueFull; ingestion already
// acknowledged the raw events, so the caller only logs the loss.
func (d *Dispatcher) Enqueue(ctx context.Context, task *Task) error {
	d.mu.Lock()
	if d.closing {
		d.mu.Unlock()
		return errors.New(errors.ErrInternalServer.Code(), "dispatcher is shut down")
	}
	queue, ok := d.queues[task.TenantID]
	if !ok {
		queue = make(chan *Task, d.cfg.QueueSize)
		d.queues[task.TenantID] = queue
		d.workers.Add(1)
		go d.runWorker(task.TenantID, queue)
	}
	d.mu.Unlock()

	select {
	case queue <- task:
		if d.metrics != nil {
			d.metrics.TasksEnqueued.WithLabelValues(string(task.Kind)).Inc()
			d.metrics.QueueDepth.WithLabelValues(task.TenantID).Set(float64(len(queue)))
		}
		return nil
	default:
		d.toDeadLetter(ctx, task, "queue full")
		if d.metrics != nil {
			d.metrics.TasksDeadLetters.WithLabelValues(string(task.Kind), "overflow").Inc()
		}
		return errors.ErrQueueFull(task.TenantID)
	}
}

// Shutdown stops accepting tasks and drains the queues, bounded by the
// configured grace period. Tasks still queued when the grace expires are
// abandoned; their contexts are cancelled.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closing {
		d.mu.Unlock()
		return nil
	}
	d.closing = true
	for _, queue := range d.queues {
		close(queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.workers.Wait()
		close(done)
	}()

	grace := d.cfg.ShutdownGrace()
	if grace <= 0 {
		grace = 20 * time.Second
	}
	select {
	case <-done:
		d.cancelBase()
		return nil
	case <-time.After(grace):
		d.cancelBase()
		d.logger.Warn(context.Background(), "task dispatcher drain timed out")
		return errors.New(errors.ErrInternalServer.Code(), "task drain timed out")
	case <-ctx.Done():
		d.cancelBase()
		return ctx.Err()
	}
}

func (d *Dispatcher) runWorker(tenantID string, queue chan *Task) {
	defer d.workers.Done()
	for task := range queue {
		if d.metrics != nil {
			d.metrics.QueueDepth.WithLabelValues(tenantID).Set(float64(len(queue)))
		}
		d.runTask(task)
	}
}

// runTask executes one task with retry. Steps within the task run strictly
// in sequence; ordering across tasks of the same tenant is preserved because
// retries happen inline on the tenant's worker.
func (d *Dispatcher) runTask(task *Task) {
	d.mu.Lock()
	handler, ok := d.handlers[string(task.Kind)]
	d.mu.Unlock()
	if !ok {
		d.toDeadLetter(d.baseCtx, task, "no handler registered")
		if d.metrics != nil {
			d.metrics.TasksDeadLetters.WithLabelValues(string(task.Kind), "unroutable").Inc()
		}
		return
	}

	backoff := d.cfg.RetryBackoff()
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}

	var lastErr error
	for attempt := 0; attempt <= d.cfg.MaxRetries; attempt++ {
		task.Attempts = attempt + 1
		lastErr = handler(d.baseCtx, task)
		if lastErr == nil {
			if d.metrics != nil {
				d.metrics.TasksCompleted.WithLabelValues(string(task.Kind), "ok").Inc()
			}
			return
		}
		if d.baseCtx.Err() != nil {
			break
		}
		if attempt < d.cfg.MaxRetries {
			d.logger.Warn(d.baseCtx, "task failed, retrying", logger.Fields{
				"tenant_id": task.TenantID,
				"kind":      task.Kind,
				"attempt":   task.Attempts,
				"error":     lastErr.Error(),
			})
			if d.metrics != nil {
				d.metrics.TasksRetried.WithLabelValues(string(task.Kind)).Inc()
			}
			select {
			case <-time.After(backoff):
			case <-d.baseCtx.Done():
			}
			if d.baseCtx.Err() != nil {
				break
			}
			backoff *= 2
		}
	}

	d.logger.Error(d.baseCtx, "task exhausted retries", lastErr, logger.Fields{
		"tenant_id": task.TenantID,
		"kind":      task.Kind,
		"attempts":  task.Attempts,
	})
	d.toDeadLetter(d.baseCtx, task, lastErr.Error())
	if d.metrics != nil {
		d.metrics.TasksCompleted.WithLabelValues(string(task.Kind), "failed").Inc()
		d.metrics.TasksDeadLetters.WithLabelValues(string(task.Kind), "exhausted").Inc()
	}
}

func (d *Dispatcher) toDeadLetter(ctx context.Context, task *Task, reason string) {
	if d.deadLetter == nil {
		d.logger.Error(ctx, "dropping task, no dead letter store configured", nil, logger.Fields{
			"tenant_id": task.TenantID,
			"kind":      task.Kind,
			"reason":    reason,
		})
		return
	}
	record := models.NewDeadLetterTask(task.TenantID, task.Kind, task.EncodePayload(), reason, task.Attempts)
	// A detached context so dead-lettering survives request cancellation.
	dlCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.deadLetter.Insert(dlCtx, record); err != nil {
		d.logger.Error(ctx, "failed to persist dead letter task", err, logger.Fields{
			"tenant_id": task.TenantID,
			"kind":      task.Kind,
			"reason":    reason,
		})
	}
}
