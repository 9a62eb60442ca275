// Package kafka publishes committed order events to a Kafka topic for
// downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/fanout"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer is the subset of *kgo.Client the publisher uses. TryProduce fails
// the record with kgo.ErrMaxBuffered instead of waiting for buffer space.
type Producer interface {
	TryProduce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
}

// FailureCounter counts records the broker did not accept.
type FailureCounter interface {
	IntegrationEventFailed()
}

// OrderChanged is the value of every record on the order-changed topic.
type OrderChanged struct {
	EventID    kernel.UUID         `json:"eventId"`
	EventName  string              `json:"eventName"`
	OrderID    kernel.UUID         `json:"orderId"`
	OccurredAt time.Time           `json:"occurredAt"`
	Order      fanout.OrderPayload `json:"order"`
}

// Publisher implements ports.EventPublisher. Records are keyed by order id so
// that the events of one order stay in one partition.
type Publisher struct {
	producer Producer
	topic    string
	failures FailureCounter
	logger   *slog.Logger
}

var _ ports.EventPublisher = (*Publisher)(nil)

// RecordDeliveryTimeout bounds how long a buffered record waits for the broker
// before its promise fails.
const RecordDeliveryTimeout = 30 * time.Second

// NewClient creates a franz-go client producing to topic by default.
func NewClient(brokers []string, topic string) (*kgo.Client, error) {
	return kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProduceRequestTimeout(10*time.Second),
		kgo.RecordDeliveryTimeout(RecordDeliveryTimeout),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ClientID("fulfillment"),
	)
}

// NewPublisher creates a publisher. failures may be nil.
func NewPublisher(producer Producer, topic string, failures FailureCounter, logger *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		failures: failures,
		logger:   logger.With("component", "kafka_publisher", "topic", topic),
	}
}

// Publish hands every event to the producer without waiting for the broker
// or for buffer space. A full buffer fails the event like a broker error.
func (p *Publisher) Publish(ctx context.Context, events ...order.DomainEvent) {
	for _, event := range events {
		record, err := p.record(event)
		if err != nil {
			p.fail(ctx, event, err)
			continue
		}

		// The request context ends before the broker answers.
		p.producer.TryProduce(context.WithoutCancel(ctx), record, func(_ *kgo.Record, err error) {
			if err != nil {
				p.fail(ctx, event, err)
			}
		})
	}
}

func (p *Publisher) record(event order.DomainEvent) (*kgo.Record, error) {
	snapshot := event.Order()
	value, err := json.Marshal(OrderChanged{
		EventID:    kernel.NewUUID(),
		EventName:  event.EventName(),
		OrderID:    snapshot.ID,
		OccurredAt: event.OccurredAt(),
		Order:      fanout.NewOrderPayload(snapshot),
	})
	if err != nil {
		return nil, err
	}

	return &kgo.Record{
		Topic: p.topic,
		Key:   []byte(snapshot.ID.String()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event-name", Value: []byte(event.EventName())},
		},
	}, nil
}

func (p *Publisher) fail(ctx context.Context, event order.DomainEvent, err error) {
	if p.failures != nil {
		p.failures.IntegrationEventFailed()
	}
	p.logger.ErrorContext(ctx, "failed to publish integration event",
		"event", event.EventName(), "order_id", event.Order().ID, "error", err)
}
