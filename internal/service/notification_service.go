package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/events"
)

// EventPublisher forwards serialized events to an external channel.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// NotificationService logs ticket events and relays them to the frontend's
// socket bridge through Redis pub/sub when a publisher is configured.
type NotificationService struct {
	logger    *zap.Logger
	publisher EventPublisher
	channel   string
}

// NewNotificationService creates the service. publisher may be nil.
func NewNotificationService(logger *zap.Logger, publisher EventPublisher, channel string) *NotificationService {
	return &NotificationService{
		logger:    logger,
		publisher: publisher,
		channel:   channel,
	}
}

// Handle processes one ticket event.
func (n *NotificationService) Handle(ctx context.Context, event events.Event) error {
	switch event.Type {
	case events.EventTicketCreated:
		n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.String("actor_id", event.ActorID))
	case events.EventTicketUpdated:
		fields := []string{}
		if payload, ok := event.Payload.(events.TicketUpdatedPayload); ok {
			fields = payload.ChangedFields
		}
		n.logger.Info("TicketUpdated", zap.String("ticket_id", event.TicketID), zap.Strings("fields", fields))
	default:
		n.logger.Debug("ignoring event", zap.String("event_type", string(event.Type)))
		return nil
	}
	return n.relay(ctx, event)
}

func (n *NotificationService) relay(ctx context.Context, event events.Event) error {
	if n.publisher == nil || n.channel == "" {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := n.publisher.Publish(ctx, n.channel, body); err != nil {
		return err
	}
	n.logger.Debug("relayed ticket event",
		zap.String("channel", n.channel),
		zap.String("ticket_id", event.TicketID),
		zap.String("event_type", string(event.Type)))
	return nil
}
