package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/identity"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrAcceptOrderCommandIsNotConstructed = errors.New(
		"AcceptOrderCommand must be created via NewAcceptOrderCommand constructor",
	)
)

// AcceptOrderCommand is a delivery agent taking an unassigned order directly,
// without waiting for the admin.
type AcceptOrderCommand struct {
	caller  identity.Identity
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAcceptOrderCommand builds the command.
func NewAcceptOrderCommand(caller identity.Identity, orderID kernel.UUID) (AcceptOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return AcceptOrderCommand{}, err
	}
	return AcceptOrderCommand{
		caller:  caller,
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptOrderCommand) Validate() error {
	return c.guard.Validate(ErrAcceptOrderCommandIsNotConstructed)
}

func (c AcceptOrderCommand) Caller() identity.Identity { return c.caller }
func (c AcceptOrderCommand) OrderID() kernel.UUID      { return c.orderID }
