package memory

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

// OrderRepository implements ports.OrderRepository on top of a Store.
type OrderRepository struct {
	uow *UnitOfWork
}

// Add stores a new order.
func (r *OrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	w := orderWrite{snapshot: aggregate.Snapshot(), insert: true}
	if err := r.uow.writeOrder(w, aggregate.DomainEvents()); err != nil {
		return err
	}
	aggregate.ClearDomainEvents()
	return nil
}

// Update stores the order if the stored version still equals ExpectedVersion.
func (r *OrderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	w := orderWrite{snapshot: aggregate.Snapshot(), expected: aggregate.ExpectedVersion()}
	if err := r.uow.writeOrder(w, aggregate.DomainEvents()); err != nil {
		return err
	}
	aggregate.ClearDomainEvents()
	return nil
}

// Get loads an order, seeing writes buffered in the same unit of work.
func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	snapshot, ok := r.uow.pendingOrder(func(s order.Snapshot) bool { return s.ID.IsEqual(id) })
	if !ok {
		snapshot, ok = r.uow.store.order(id)
	}
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(snapshot)
}
