package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// AdvanceOrderStatusCommandHandler moves an order forward on behalf of its
// assigned agent. Other agents get a Forbidden error, backward or repeated
// statuses order.ErrInvalidTransition.
type AdvanceOrderStatusCommandHandler struct {
	mutator    orderMutator
	dispatcher services.OrderDispatcher
}

// NewAdvanceOrderStatusCommandHandler creates the handler.
func NewAdvanceOrderStatusCommandHandler(uowFactory OrderUoWFactory, publisher ports.EventPublisher) AdvanceOrderStatusCommandHandler {
	return AdvanceOrderStatusCommandHandler{
		mutator:    newOrderMutator(uowFactory, publisher),
		dispatcher: services.NewOrderDispatcher(),
	}
}

// Handle checks agent authority, then advances the status.
func (h AdvanceOrderStatusCommandHandler) Handle(ctx context.Context, cmd AdvanceOrderStatusCommand) (order.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return order.Snapshot{}, err
	}
	if _, err := h.dispatcher.RequireAgent(cmd.Caller()); err != nil {
		return order.Snapshot{}, err
	}

	return h.mutator.apply(ctx, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		return h.dispatcher.AdvanceStatus(cmd.Caller(), o, cmd.Target(), now)
	})
}
