package commands

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
)

// RequestAssignmentCommandHandler records a pending delivery request. A pending
// request of another agent is overwritten and that agent is told so.
//
// Example:
//
//	cmd, _ := NewRequestAssignmentCommand(identity.Agent{ID: agentID}, orderID)
//	_, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, order.ErrAlreadyAssigned) {
//	    // somebody else got the order first
//	}
type RequestAssignmentCommandHandler struct {
	mutator    orderMutator
	dispatcher services.OrderDispatcher
}

// NewRequestAssignmentCommandHandler creates the handler.
func NewRequestAssignmentCommandHandler(uowFactory OrderUoWFactory, publisher ports.EventPublisher) RequestAssignmentCommandHandler {
	return RequestAssignmentCommandHandler{
		mutator:    newOrderMutator(uowFactory, publisher),
		dispatcher: services.NewOrderDispatcher(),
	}
}

// Handle checks agent authority, then records the request.
func (h RequestAssignmentCommandHandler) Handle(ctx context.Context, cmd RequestAssignmentCommand) (order.Snapshot, error) {
	if err := cmd.Validate(); err != nil {
		return order.Snapshot{}, err
	}
	if _, err := h.dispatcher.RequireAgent(cmd.Caller()); err != nil {
		return order.Snapshot{}, err
	}

	return h.mutator.apply(ctx, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		return h.dispatcher.RequestAssignment(cmd.Caller(), o, now)
	})
}
