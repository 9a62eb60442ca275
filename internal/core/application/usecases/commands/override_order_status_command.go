package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/identity"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrOverrideOrderStatusCommandIsNotConstructed = errors.New(
		"OverrideOrderStatusCommand must be created via NewOverrideOrderStatusCommand constructor",
	)
)

// OverrideOrderStatusCommand is the admin setting any lifecycle status on an order.
// Unknown status names are rejected with a validation error.
type OverrideOrderStatusCommand struct { //nolint:recvcheck //using for validation
	caller  identity.Identity
	orderID kernel.UUID
	status  order.Status

	guard guard.ConstructorGuard
}

// NewOverrideOrderStatusCommand parses status and builds the command.
func NewOverrideOrderStatusCommand(caller identity.Identity, orderID kernel.UUID, status string) (OverrideOrderStatusCommand, error) {
	cmd := OverrideOrderStatusCommand{
		caller: caller,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setStatus(status),
	); err != nil {
		return OverrideOrderStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c OverrideOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrOverrideOrderStatusCommandIsNotConstructed)
}

func (c OverrideOrderStatusCommand) Caller() identity.Identity { return c.caller }
func (c OverrideOrderStatusCommand) OrderID() kernel.UUID      { return c.orderID }
func (c OverrideOrderStatusCommand) Status() order.Status      { return c.status }

func (c *OverrideOrderStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *OverrideOrderStatusCommand) setStatus(status string) error {
	parsed, err := order.ParseStatus(status)
	if err != nil {
		return err
	}
	c.status = parsed
	return nil
}
