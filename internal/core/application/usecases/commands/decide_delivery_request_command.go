package commands

import (
	"errors"

	"fulfillment/internal/core/domain/model/identity"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrDecideDeliveryRequestCommandIsNotConstructed = errors.New(
		"DecideDeliveryRequestCommand must be created via NewDecideDeliveryRequestCommand constructor",
	)
)

// DecideDeliveryRequestCommand is the admin approving or rejecting the pending
// delivery request of an order.
type DecideDeliveryRequestCommand struct { //nolint:recvcheck //using for validation
	caller   identity.Identity
	orderID  kernel.UUID
	decision order.RequestStatus

	guard guard.ConstructorGuard
}

// NewDecideDeliveryRequestCommand accepts "Approved" or "Rejected" as decision.
func NewDecideDeliveryRequestCommand(caller identity.Identity, orderID kernel.UUID, decision string) (DecideDeliveryRequestCommand, error) {
	cmd := DecideDeliveryRequestCommand{
		caller: caller,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setDecision(decision),
	); err != nil {
		return DecideDeliveryRequestCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c DecideDeliveryRequestCommand) Validate() error {
	return c.guard.Validate(ErrDecideDeliveryRequestCommandIsNotConstructed)
}

func (c DecideDeliveryRequestCommand) Caller() identity.Identity     { return c.caller }
func (c DecideDeliveryRequestCommand) OrderID() kernel.UUID          { return c.orderID }
func (c DecideDeliveryRequestCommand) Decision() order.RequestStatus { return c.decision }

func (c *DecideDeliveryRequestCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *DecideDeliveryRequestCommand) setDecision(decision string) error {
	parsed, err := order.ParseDecision(decision)
	if err != nil {
		return err
	}
	c.decision = parsed
	return nil
}
