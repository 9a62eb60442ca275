// Package agentrepo provides data transfer objects and mapping functions for delivery
// agent persistence.
package agentrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/agent"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// AgentDTO represents the database structure for persisting delivery agents.
// The unique index on email enforces one account per address.
type AgentDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"type:varchar(255);not null"`
	Email         string    `gorm:"type:varchar(320);not null;uniqueIndex"`
	PasswordHash  string    `gorm:"not null"`
	Address       string    `gorm:"not null"`
	Vehicle       string    `gorm:"type:varchar(255);not null"`
	LicenseNumber string    `gorm:"type:varchar(255);not null"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime:false"`
}

// TableName specifies the database table name for agent entities.
// Overrides GORM's default naming convention to use "agents" instead of "agent_dtos".
func (AgentDTO) TableName() string {
	return "agents"
}

func fromDomain(a *agent.Agent) AgentDTO {
	p := a.Profile()
	return AgentDTO{
		ID:            a.ID().Bytes(),
		Name:          p.Name,
		Email:         p.Email,
		PasswordHash:  a.PasswordHash(),
		Address:       p.Address,
		Vehicle:       p.Vehicle,
		LicenseNumber: p.LicenseNumber,
		CreatedAt:     a.CreatedAt(),
	}
}

func toDomain(dto AgentDTO) (*agent.Agent, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	return agent.RestoreAgent(id, agent.Profile{
		Name:          dto.Name,
		Email:         dto.Email,
		Address:       dto.Address,
		Vehicle:       dto.Vehicle,
		LicenseNumber: dto.LicenseNumber,
	}, dto.PasswordHash, dto.CreatedAt.UTC())
}
