// Package ports defines the contracts between the dispatch core and its
// infrastructure: stores, unit of work, event publishing and security.
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists a mutated order with a conditional write: it only succeeds if
	// the stored version still equals aggregate.ExpectedVersion(). A lost race
	// returns an error wrapping errs.ErrVersionIsInvalid, a missing order one
	// wrapping errs.ErrObjectNotFound.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate by its identifier.
	// Returns an error wrapping errs.ErrObjectNotFound if there is none.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
