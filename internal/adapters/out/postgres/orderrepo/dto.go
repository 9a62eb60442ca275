// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations, and the raw SQL
// read model used by queries.
package orderrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Customer and product snapshots are flattened into the row; Version backs the
// conditional update.
type OrderDTO struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID      *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName    string     `gorm:"not null"`
	CustomerEmail   string     `gorm:"not null"`
	CustomerAddress string     `gorm:"not null"`
	Quantity        int        `gorm:"not null"`
	ProductID       string     `gorm:"not null"`
	ProductTitle    string     `gorm:"not null"`
	ProductPrice    float64    `gorm:"not null"`
	ProductImage    string
	Status          int        `gorm:"not null;index"`
	AssignedAgentID *uuid.UUID `gorm:"type:uuid;index"`
	RequestAgentID  *uuid.UUID `gorm:"type:uuid"`
	RequestStatus   int        `gorm:"not null"`
	Version         int64      `gorm:"not null"`
	CreatedAt       time.Time  `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt       time.Time  `gorm:"not null;autoUpdateTime:false"`
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// fromDomain converts an order domain aggregate to its database representation.
func fromDomain(aggregate *order.Order) OrderDTO {
	s := aggregate.Snapshot()
	return OrderDTO{
		ID:              s.ID.Bytes(),
		CustomerID:      rawID(s.CustomerID),
		CustomerName:    s.CustomerName,
		CustomerEmail:   s.CustomerEmail,
		CustomerAddress: s.CustomerAddress,
		Quantity:        s.Quantity,
		ProductID:       s.ProductID,
		ProductTitle:    s.ProductTitle,
		ProductPrice:    s.ProductPrice,
		ProductImage:    s.ProductImage,
		Status:          int(s.Status),
		AssignedAgentID: rawID(s.AssignedAgent),
		RequestAgentID:  rawID(s.RequestAgent),
		RequestStatus:   int(s.RequestStatus),
		Version:         s.Version,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// toSnapshot converts a database DTO back to the flat order state.
func toSnapshot(dto OrderDTO) (order.Snapshot, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return order.Snapshot{}, err
	}

	customerID, err := domainID(dto.CustomerID)
	if err != nil {
		return order.Snapshot{}, err
	}
	assignedAgent, err := domainID(dto.AssignedAgentID)
	if err != nil {
		return order.Snapshot{}, err
	}
	requestAgent, err := domainID(dto.RequestAgentID)
	if err != nil {
		return order.Snapshot{}, err
	}

	return order.Snapshot{
		ID:              id,
		CustomerID:      customerID,
		CustomerName:    dto.CustomerName,
		CustomerEmail:   dto.CustomerEmail,
		CustomerAddress: dto.CustomerAddress,
		Quantity:        dto.Quantity,
		ProductID:       dto.ProductID,
		ProductTitle:    dto.ProductTitle,
		ProductPrice:    dto.ProductPrice,
		ProductImage:    dto.ProductImage,
		Status:          order.Status(dto.Status),
		AssignedAgent:   assignedAgent,
		RequestAgent:    requestAgent,
		RequestStatus:   order.RequestStatus(dto.RequestStatus),
		Version:         dto.Version,
		CreatedAt:       dto.CreatedAt.UTC(),
		UpdatedAt:       dto.UpdatedAt.UTC(),
	}, nil
}

// toDomain reconstructs the aggregate, checking every invariant through RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	s, err := toSnapshot(dto)
	if err != nil {
		return nil, err
	}
	return order.RestoreOrder(s)
}

func rawID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func domainID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
