package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/events"
)

// EventHandler processes one event off the request path.
type EventHandler interface {
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker moves ticket events from the synchronous dispatcher
// onto a single background goroutine, so a slow Redis never delays an API
// response. Events are dropped, with a warning, when the queue is full.
type NotificationWorker struct {
	handler EventHandler
	logger  *zap.Logger
	queue   chan events.Event
	wg      sync.WaitGroup
}

// NewNotificationWorker builds a worker with a queue of size buffer.
func NewNotificationWorker(handler EventHandler, logger *zap.Logger, buffer int) *NotificationWorker {
	if buffer <= 0 {
		buffer = 64
	}
	return &NotificationWorker{
		handler: handler,
		logger:  logger,
		queue:   make(chan events.Event, buffer),
	}
}

// Subscribe registers the worker for every ticket event type.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher) {
	for _, eventType := range []events.EventType{events.EventTicketCreated, events.EventTicketUpdated} {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("ticket_id", event.TicketID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

// Start drains the queue until ctx is cancelled, then handles whatever is
// still buffered before returning from Wait.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event := <-w.queue:
				w.handle(ctx, event)
			case <-ctx.Done():
				w.drain()
				return
			}
		}
	}()
}

// Wait blocks until the worker goroutine has exited.
func (w *NotificationWorker) Wait() {
	w.wg.Wait()
}

func (w *NotificationWorker) drain() {
	for {
		select {
		case event := <-w.queue:
			w.handle(context.Background(), event)
		default:
			return
		}
	}
}

func (w *NotificationWorker) handle(ctx context.Context, event events.Event) {
	if err := w.handler.Handle(ctx, event); err != nil {
		w.logger.Warn("notification failed",
			zap.String("ticket_id", event.TicketID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
