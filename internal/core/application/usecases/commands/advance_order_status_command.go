package commands

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/identity"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrAdvanceOrderStatusCommandIsNotConstructed = errors.New(
		"AdvanceOrderStatusCommand must be created via NewAdvanceOrderStatusCommand constructor",
	)
)

// AdvanceOrderStatusCommand is the assigned agent moving an order forward.
// A status name outside the lifecycle is an invalid transition, not a
// validation error.
type AdvanceOrderStatusCommand struct { //nolint:recvcheck //using for validation
	caller  identity.Identity
	orderID kernel.UUID
	target  order.Status

	guard guard.ConstructorGuard
}

// NewAdvanceOrderStatusCommand builds the command.
func NewAdvanceOrderStatusCommand(caller identity.Identity, orderID kernel.UUID, newStatus string) (AdvanceOrderStatusCommand, error) {
	cmd := AdvanceOrderStatusCommand{
		caller: caller,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setTarget(newStatus),
	); err != nil {
		return AdvanceOrderStatusCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AdvanceOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrAdvanceOrderStatusCommandIsNotConstructed)
}

func (c AdvanceOrderStatusCommand) Caller() identity.Identity { return c.caller }
func (c AdvanceOrderStatusCommand) OrderID() kernel.UUID      { return c.orderID }
func (c AdvanceOrderStatusCommand) Target() order.Status      { return c.target }

func (c *AdvanceOrderStatusCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *AdvanceOrderStatusCommand) setTarget(newStatus string) error {
	parsed, err := order.ParseStatus(newStatus)
	if err != nil {
		return fmt.Errorf("%w: %q is not part of the delivery lifecycle", order.ErrInvalidTransition, newStatus)
	}
	c.target = parsed
	return nil
}
