// Package identity models who is calling the dispatch core. Identity is a
// closed variant: Admin, Agent or Customer. Anonymous callers carry no identity.
package identity

import (
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// Role is the wire name of an identity kind, carried in bearer tokens.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAgent    Role = "agent"
	RoleCustomer Role = "customer"
)

// Identity is implemented only by Admin, Agent and Customer.
type Identity interface {
	Role() Role
	// Subject is the principal id as written into tokens; empty for Admin.
	Subject() string
	sealed()
}

// Admin is the single administrator of the service.
type Admin struct{}

// Agent is a registered delivery agent.
type Agent struct {
	ID kernel.UUID
}

// Customer is a storefront customer.
type Customer struct {
	ID kernel.UUID
}

func (Admin) Role() Role    { return RoleAdmin }
func (Agent) Role() Role    { return RoleAgent }
func (Customer) Role() Role { return RoleCustomer }

func (Admin) Subject() string      { return "admin" }
func (a Agent) Subject() string    { return a.ID.String() }
func (c Customer) Subject() string { return c.ID.String() }

func (Admin) sealed()    {}
func (Agent) sealed()    {}
func (Customer) sealed() {}

// FromClaims rebuilds an identity from a role and a subject taken from a verified token.
func FromClaims(role, subject string) (Identity, error) {
	switch Role(strings.ToLower(role)) {
	case RoleAdmin:
		return Admin{}, nil
	case RoleAgent:
		id, err := kernel.ParseID("sub", subject)
		if err != nil {
			return nil, err
		}
		return Agent{ID: id}, nil
	case RoleCustomer:
		id, err := kernel.ParseID("sub", subject)
		if err != nil {
			return nil, err
		}
		return Customer{ID: id}, nil
	default:
		return nil, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a known role", role))
	}
}

// AgentID returns the agent id when id is an Agent.
func AgentID(id Identity) (kernel.UUID, bool) {
	a, ok := id.(Agent)
	return a.ID, ok
}

// CustomerID returns the customer id when id is a Customer.
func CustomerID(id Identity) (kernel.UUID, bool) {
	c, ok := id.(Customer)
	return c.ID, ok
}
