package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/order"
)

// EventPublisher delivers committed domain events to interested parties.
// Publishing is best effort: implementations log failures instead of returning them.
type EventPublisher interface {
	Publish(ctx context.Context, events ...order.DomainEvent)
}
