package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/agent"
	"fulfillment/internal/core/domain/model/kernel"
)

// AgentRepository defines the persistence contract for delivery agents.
type AgentRepository interface {
	// Add persists a new agent. Returns agent.ErrEmailAlreadyRegistered when the
	// email is taken.
	Add(ctx context.Context, aggregate *agent.Agent) error

	// Get retrieves an agent by id, errs.ErrObjectNotFound if absent.
	Get(ctx context.Context, id kernel.UUID) (*agent.Agent, error)

	// GetByEmail retrieves an agent by normalized email, errs.ErrObjectNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*agent.Agent, error)
}
