package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/identity"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrRequestAssignmentCommandIsNotConstructed = errors.New(
		"RequestAssignmentCommand must be created via NewRequestAssignmentCommand constructor",
	)
)

// RequestAssignmentCommand is a delivery agent asking the admin for an order.
type RequestAssignmentCommand struct {
	caller  identity.Identity
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewRequestAssignmentCommand builds the command.
func NewRequestAssignmentCommand(caller identity.Identity, orderID kernel.UUID) (RequestAssignmentCommand, error) {
	if err := orderID.Validate(); err != nil {
		return RequestAssignmentCommand{}, err
	}
	return RequestAssignmentCommand{
		caller:  caller,
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RequestAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrRequestAssignmentCommandIsNotConstructed)
}

func (c RequestAssignmentCommand) Caller() identity.Identity { return c.caller }
func (c RequestAssignmentCommand) OrderID() kernel.UUID      { return c.orderID }
