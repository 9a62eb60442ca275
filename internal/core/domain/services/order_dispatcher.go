package services

import (
	"time"

	"fulfillment/internal/core/domain/model/identity"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
)

var (
	// ErrAuthenticationRequired is returned when an anonymous caller invokes a
	// restricted operation.
	ErrAuthenticationRequired = errs.NewUnauthorizedError("authentication required")
	// ErrAdminOnly is returned when a non-admin identity invokes an admin operation.
	ErrAdminOnly = errs.NewForbiddenError("admin role required")
	// ErrAgentOnly is returned when a non-agent identity invokes an agent operation.
	ErrAgentOnly = errs.NewForbiddenError("delivery agent role required")
)

// OrderDispatcher applies dispatch operations to an order on behalf of a caller.
// It is the single place where identities are matched against authority:
//
//	Admin    -> OverrideStatus, Decide
//	Agent    -> RequestAssignment, DirectAccept, AdvanceStatus
//	Customer -> none of the dispatch operations
//
// Example usage:
//
//	dispatcher := services.NewOrderDispatcher()
//	if err := dispatcher.RequestAssignment(caller, o, time.Now()); err != nil {
//	    return err
//	}
type OrderDispatcher struct{}

// NewOrderDispatcher creates a new OrderDispatcher instance.
func NewOrderDispatcher() OrderDispatcher {
	return OrderDispatcher{}
}

// RequireAdmin returns nil only for the Admin identity.
func (OrderDispatcher) RequireAdmin(caller identity.Identity) error {
	switch caller.(type) {
	case nil:
		return ErrAuthenticationRequired
	case identity.Admin:
		return nil
	default:
		return ErrAdminOnly
	}
}

// RequireAgent returns the agent id for an Agent identity.
func (OrderDispatcher) RequireAgent(caller identity.Identity) (kernel.UUID, error) {
	switch c := caller.(type) {
	case nil:
		return kernel.UUID{}, ErrAuthenticationRequired
	case identity.Agent:
		return c.ID, nil
	default:
		return kernel.UUID{}, ErrAgentOnly
	}
}

// OverrideStatus sets status under admin authority.
func (d OrderDispatcher) OverrideStatus(caller identity.Identity, o *order.Order, status order.Status, now time.Time) error {
	if err := d.prepare(o); err != nil {
		return err
	}
	if err := d.RequireAdmin(caller); err != nil {
		return err
	}
	return o.OverrideStatus(status, now)
}

// Decide applies the admin decision to the pending delivery request.
func (d OrderDispatcher) Decide(caller identity.Identity, o *order.Order, decision order.RequestStatus, now time.Time) error {
	if err := d.prepare(o); err != nil {
		return err
	}
	if err := d.RequireAdmin(caller); err != nil {
		return err
	}
	return o.Decide(decision, now)
}

// RequestAssignment records a delivery request of the calling agent.
func (d OrderDispatcher) RequestAssignment(caller identity.Identity, o *order.Order, now time.Time) error {
	if err := d.prepare(o); err != nil {
		return err
	}
	agent, err := d.RequireAgent(caller)
	if err != nil {
		return err
	}
	return o.RequestAssignment(agent, now)
}

// DirectAccept assigns the order to the calling agent without admin approval.
func (d OrderDispatcher) DirectAccept(caller identity.Identity, o *order.Order, now time.Time) error {
	if err := d.prepare(o); err != nil {
		return err
	}
	agent, err := d.RequireAgent(caller)
	if err != nil {
		return err
	}
	return o.DirectAccept(agent, now)
}

// AdvanceStatus moves the order forward on behalf of the calling agent, who must
// be the assigned one.
func (d OrderDispatcher) AdvanceStatus(caller identity.Identity, o *order.Order, target order.Status, now time.Time) error {
	if err := d.prepare(o); err != nil {
		return err
	}
	agent, err := d.RequireAgent(caller)
	if err != nil {
		return err
	}
	return o.AdvanceStatus(agent, target, now)
}

func (OrderDispatcher) prepare(o *order.Order) error {
	return o.Validate()
}
