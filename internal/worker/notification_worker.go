package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/visitordesk/visitor-service/internal/events"
	"github.com/visitordesk/visitor-service/internal/service"
)

// ErrQueueFull is returned when the worker cannot accept another event.
var ErrQueueFull = errors.New("notification queue full")

// ErrStopped is returned when publishing after Stop.
var ErrStopped = errors.New("notification worker stopped")

type queued struct {
	ctx   context.Context
	event events.Event
}

// NotificationWorker delivers events to subscribers off the request path.
// It satisfies events.Dispatcher so services publish without blocking.
type NotificationWorker struct {
	inner  events.Dispatcher
	queue  chan queued
	logger *zap.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewNotificationWorker(inner events.Dispatcher, buffer int, logger *zap.Logger) *NotificationWorker {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{inner: inner, queue: make(chan queued, buffer), logger: logger}
}

// Publish enqueues the event. Request cancellation does not cancel delivery.
func (w *NotificationWorker) Publish(ctx context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return ErrStopped
	}
	select {
	case w.queue <- queued{ctx: context.WithoutCancel(ctx), event: event}:
		return nil
	default:
		w.logger.Warn("dropping event; notification queue full",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
		return ErrQueueFull
	}
}

func (w *NotificationWorker) Subscribe(eventType events.EventType, handler events.EventHandler) {
	w.inner.Subscribe(eventType, handler)
}

// Start launches the delivery loop.
func (w *NotificationWorker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for item := range w.queue {
			_ = w.inner.Publish(item.ctx, item.event)
		}
	}()
}

// Stop rejects new events and waits for queued ones to drain.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.queue)
	w.mu.Unlock()
	w.wg.Wait()
}

// StartNotificationWorker registers notification handlers and starts delivery.
func StartNotificationWorker(w *NotificationWorker, notificationService *service.NotificationService) {
	if notificationService != nil {
		notificationService.RegisterHandlers(w)
	}
	w.Start()
}
