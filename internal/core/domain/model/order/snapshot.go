package order

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// Snapshot is the flat, read-only state of an order. It is what stores persist,
// what queries return and what events carry.
type Snapshot struct {
	ID              kernel.UUID
	CustomerID      *kernel.UUID
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	Quantity        int
	ProductID       string
	ProductTitle    string
	ProductPrice    float64
	ProductImage    string
	Status          Status
	AssignedAgent   *kernel.UUID
	RequestAgent    *kernel.UUID
	RequestStatus   RequestStatus
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Snapshot copies the current state of the order.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		ID:              o.id,
		CustomerID:      o.customer.ID(),
		CustomerName:    o.customer.name,
		CustomerEmail:   o.customer.email,
		CustomerAddress: o.customer.address,
		Quantity:        o.customer.quantity,
		ProductID:       o.product.id,
		ProductTitle:    o.product.title,
		ProductPrice:    o.product.price,
		ProductImage:    o.product.image,
		Status:          o.status,
		AssignedAgent:   o.AssignedAgent(),
		RequestAgent:    o.request.Agent(),
		RequestStatus:   o.request.status,
		Version:         o.version,
		CreatedAt:       o.createdAt,
		UpdatedAt:       o.updatedAt,
	}
}

// IsVisibleTo reports whether a delivery agent may see the order in their work list:
// unassigned orders and orders assigned to them.
func (s Snapshot) IsVisibleTo(agent kernel.UUID) bool {
	return s.AssignedAgent == nil || s.AssignedAgent.IsEqual(agent)
}
