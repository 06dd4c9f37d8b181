package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/events"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []events.Event
	seen   chan struct{}
}

func (h *recordingHandler) Handle(_ context.Context, event events.Event) error {
	h.mu.Lock()
	h.events = append(h.events, event)
	h.mu.Unlock()
	h.seen <- struct{}{}
	return nil
}

func TestWorkerRelaysPublishedEvents(t *testing.T) {
	handler := &recordingHandler{seen: make(chan struct{}, 4)}
	dispatcher := events.NewInMemoryDispatcher(nil)
	w := NewNotificationWorker(handler, zap.NewNop(), 4)
	w.Subscribe(dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	_ = dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated, TicketID: "t1"})
	_ = dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketUpdated, TicketID: "t1"})

	for i := 0; i < 2; i++ {
		select {
		case <-handler.seen:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
	cancel()
	w.Wait()

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if handler.events[0].Type != events.EventTicketCreated || handler.events[1].Type != events.EventTicketUpdated {
		t.Fatalf("events out of order: %+v", handler.events)
	}
}

func TestWorkerDropsWhenQueueFull(t *testing.T) {
	handler := &recordingHandler{seen: make(chan struct{}, 4)}
	w := NewNotificationWorker(handler, zap.NewNop(), 1)

	// Not started: the first event fills the queue, the second is dropped.
	_ = w.enqueue(context.Background(), events.Event{TicketID: "a"})
	_ = w.enqueue(context.Background(), events.Event{TicketID: "b"})
	if len(w.queue) != 1 {
		t.Fatalf("expected one queued event, got %d", len(w.queue))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.Start(ctx)
	w.Wait()

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.events) != 1 || handler.events[0].TicketID != "a" {
		t.Fatalf("expected buffered event to be drained on shutdown, got %+v", handler.events)
	}
}
