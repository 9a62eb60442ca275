package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// DecideDeliveryRequestCommandHandler applies the admin decision. Approval assigns
// the requesting agent and moves the order to Accepted; rejection only closes the
// request. Without a pending request the order is left untouched and
// order.ErrNoPendingRequest is returned.
type DecideDeliveryRequestCommandHandler struct {
	mutator    orderMutator
	dispatcher services.OrderDispatcher
}

// NewDecideDeliveryRequestCommandHandler creates the handler.
func NewDecideDeliveryRequestCommandHandler(uowFactory OrderUoWFactory, publisher ports.EventPublisher) DecideDeliveryRequestCommandHandler {
	return DecideDeliveryRequestCommandHandler{
		mutator:    newOrderMutator(uowFactory, publisher),
		dispatcher: services.NewOrderDispatcher(),
	}
}

// Handle checks admin authority, then applies the decision.
func (h DecideDeliveryRequestCommandHandler) Handle(ctx context.Context, cmd DecideDeliveryRequestCommand) (order.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return order.Snapshot{}, err
	}
	if err := h.dispatcher.RequireAdmin(cmd.Caller()); err != nil {
		return order.Snapshot{}, err
	}

	return h.mutator.apply(ctx, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		return h.dispatcher.Decide(cmd.Caller(), o, cmd.Decision(), now)
	})
}
