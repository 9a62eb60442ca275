package fanout

import (
	"context"
	"encoding/json"
	"log/slog"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

// Broadcaster implements ports.EventPublisher on top of a Hub.
//
// Routing:
//
//	OrderCreated        public, all agents: newOrder
//	StatusOverridden    public, assigned agent: orderUpdated
//	AssignmentRequested public: deliveryRequest; requester: requestSent; displaced agent: requestDisplaced
//	OrderAccepted       public, agent: orderUpdated; displaced agent: requestDisplaced
//	RequestDecided      public, requester: orderUpdated, deliveryRequestResponse
//	StatusAdvanced      public, agent: orderUpdated
type Broadcaster struct {
	hub    *Hub
	logger *slog.Logger
}

var _ ports.EventPublisher = (*Broadcaster)(nil)

// NewBroadcaster creates a broadcaster publishing to hub.
func NewBroadcaster(hub *Hub, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{hub: hub, logger: logger.With("component", "broadcaster")}
}

// Publish routes each event. Failures are logged, never returned.
func (b *Broadcaster) Publish(ctx context.Context, events ...order.DomainEvent) {
	for _, event := range events {
		if err := b.route(event); err != nil {
			b.logger.ErrorContext(ctx, "failed to broadcast event",
				"event", event.EventName(), "order_id", event.Order().ID, "error", err)
		}
	}
}

func (b *Broadcaster) route(event order.DomainEvent) error {
	updated, err := message(KindOrderUpdated, NewOrderPayload(event.Order()))
	if err != nil {
		return err
	}
	orderID := event.Order().ID

	switch e := event.(type) {
	case order.OrderCreated:
		created := Message{Event: KindNewOrder, Data: updated.Data}
		b.hub.Publish(Public, created)
		b.hub.PublishAgents(created)

	case order.StatusOverridden:
		b.hub.Publish(Public, updated)
		if assigned := e.Order().AssignedAgent; assigned != nil {
			b.hub.Publish(AgentChannel(*assigned), updated)
		}

	case order.AssignmentRequested:
		notice, err := message(KindDeliveryRequest, DeliveryRequestNotice{
			OrderID: orderID, AgentID: e.AgentID, Status: order.RequestPending,
		})
		if err != nil {
			return err
		}
		sent, err := message(KindRequestSent, RequestSentNotice{OrderID: orderID})
		if err != nil {
			return err
		}
		b.hub.Publish(Public, notice)
		b.hub.Publish(AgentChannel(e.AgentID), sent)
		return b.displaced(orderID, e.AgentID, e.Displaced)

	case order.OrderAccepted:
		b.hub.Publish(Public, updated)
		b.hub.Publish(AgentChannel(e.AgentID), updated)
		return b.displaced(orderID, e.AgentID, e.Displaced)

	case order.RequestDecided:
		decision, err := message(KindDeliveryRequestResponse, DecisionNotice{OrderID: orderID, Decision: e.Decision})
		if err != nil {
			return err
		}
		for _, channel := range []Channel{Public, AgentChannel(e.AgentID)} {
			b.hub.Publish(channel, updated)
			b.hub.Publish(channel, decision)
		}

	case order.StatusAdvanced:
		b.hub.Publish(Public, updated)
		b.hub.Publish(AgentChannel(e.AgentID), updated)

	default:
		b.logger.Warn("no route for event", "event", event.EventName())
	}
	return nil
}

func (b *Broadcaster) displaced(orderID, by kernel.UUID, displaced *kernel.UUID) error {
	if displaced == nil {
		return nil
	}
	msg, err := message(KindRequestDisplaced, DisplacedNotice{OrderID: orderID, AgentID: by})
	if err != nil {
		return err
	}
	b.hub.Publish(AgentChannel(*displaced), msg)
	return nil
}

func message(kind Kind, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Event: kind, Data: data}, nil
}

// Tee publishes every event to each publisher in turn.
type Tee []ports.EventPublisher

// Publish implements ports.EventPublisher.
func (t Tee) Publish(ctx context.Context, events ...order.DomainEvent) {
	for _, p := range t {
		p.Publish(ctx, events...)
	}
}
