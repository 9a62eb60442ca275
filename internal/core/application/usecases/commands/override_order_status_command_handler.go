package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// OverrideOrderStatusCommandHandler applies the admin status override. Ordering
// rules do not apply; the change is broadcast as orderUpdated.
type OverrideOrderStatusCommandHandler struct {
	mutator    orderMutator
	dispatcher services.OrderDispatcher
}

// NewOverrideOrderStatusCommandHandler creates the handler.
func NewOverrideOrderStatusCommandHandler(uowFactory OrderUoWFactory, publisher ports.EventPublisher) OverrideOrderStatusCommandHandler {
	return OverrideOrderStatusCommandHandler{
		mutator:    newOrderMutator(uowFactory, publisher),
		dispatcher: services.NewOrderDispatcher(),
	}
}

// Handle checks admin authority, then overrides the status.
func (h OverrideOrderStatusCommandHandler) Handle(ctx context.Context, cmd OverrideOrderStatusCommand) (order.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return order.Snapshot{}, err
	}
	if err := h.dispatcher.RequireAdmin(cmd.Caller()); err != nil {
		return order.Snapshot{}, err
	}

	return h.mutator.apply(ctx, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		return h.dispatcher.OverrideStatus(cmd.Caller(), o, cmd.Status(), now)
	})
}
