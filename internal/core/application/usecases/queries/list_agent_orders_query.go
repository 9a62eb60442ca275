package queries

import (
	"errors"

	"fulfillment/internal/core/domain/model/identity"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrListAgentOrdersQueryIsNotConstructed = errors.New(
		"ListAgentOrdersQuery must be created via NewListAgentOrdersQuery constructor",
	)
)

// ListAgentOrdersQuery is the work list of a delivery agent: unassigned orders
// plus the orders assigned to the caller.
type ListAgentOrdersQuery struct {
	caller identity.Identity

	guard guard.ConstructorGuard
}

// NewListAgentOrdersQuery creates the query. Authority is checked by the handler.
func NewListAgentOrdersQuery(caller identity.Identity) ListAgentOrdersQuery {
	return ListAgentOrdersQuery{caller: caller, guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
func (q ListAgentOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListAgentOrdersQueryIsNotConstructed)
}

func (q ListAgentOrdersQuery) Caller() identity.Identity { return q.caller }
