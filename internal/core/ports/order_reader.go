package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// OrderFilter narrows an order listing. Zero fields do not filter.
type OrderFilter struct {
	// VisibleTo keeps unassigned orders and orders assigned to this agent.
	VisibleTo *kernel.UUID
	// CustomerID keeps orders placed by this customer.
	CustomerID *kernel.UUID
}

// OrderView is an order as shown to API clients, with the assigned agent's name
// resolved. AssignedAgentName is empty when unassigned or when the agent is unknown.
type OrderView struct {
	order.Snapshot
	AssignedAgentName string
}

// OrderReader is the read side of the order store. Listings are ordered by
// creation time, newest first.
type OrderReader interface {
	ListOrders(ctx context.Context, filter OrderFilter) ([]OrderView, error)
	GetOrder(ctx context.Context, id kernel.UUID) (OrderView, error)
	CountByStatus(ctx context.Context) (map[order.Status]int, error)
}
