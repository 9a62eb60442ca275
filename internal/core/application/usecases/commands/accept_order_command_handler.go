package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// AcceptOrderCommandHandler assigns an unassigned order to the calling agent.
// When two agents accept the same order concurrently exactly one wins; the other
// gets order.ErrAlreadyAssigned.
type AcceptOrderCommandHandler struct {
	mutator    orderMutator
	dispatcher services.OrderDispatcher
}

// NewAcceptOrderCommandHandler creates the handler.
func NewAcceptOrderCommandHandler(uowFactory OrderUoWFactory, publisher ports.EventPublisher) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{
		mutator:    newOrderMutator(uowFactory, publisher),
		dispatcher: services.NewOrderDispatcher(),
	}
}

// Handle checks agent authority, then accepts the order.
func (h AcceptOrderCommandHandler) Handle(ctx context.Context, cmd AcceptOrderCommand) (order.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return order.Snapshot{}, err
	}
	if _, err := h.dispatcher.RequireAgent(cmd.Caller()); err != nil {
		return order.Snapshot{}, err
	}

	return h.mutator.apply(ctx, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		return h.dispatcher.DirectAccept(cmd.Caller(), o, now)
	})
}
