package memory

import (
	"context"

	"fulfillment/internal/core/domain/model/agent"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// AgentRepository implements ports.AgentRepository on top of a Store.
type AgentRepository struct {
	uow *UnitOfWork
}

// Add stores a new agent. The email uniqueness check runs on commit.
func (r *AgentRepository) Add(_ context.Context, aggregate *agent.Agent) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.writeAgent(recordOf(aggregate))
}

func (r *AgentRepository) Get(_ context.Context, id kernel.UUID) (*agent.Agent, error) {
	rec, ok := r.uow.pendingAgent(func(a agentRecord) bool { return a.id.IsEqual(id) })
	if !ok {
		rec, ok = r.uow.store.agent(id)
	}
	if !ok {
		return nil, errs.NewObjectNotFoundError("agent", id.String())
	}
	return rec.restore()
}

func (r *AgentRepository) GetByEmail(_ context.Context, email string) (*agent.Agent, error) {
	email = agent.NormalizeEmail(email)
	rec, ok := r.uow.pendingAgent(func(a agentRecord) bool { return a.profile.Email == email })
	if !ok {
		rec, ok = r.uow.store.agentByEmail(email)
	}
	if !ok {
		return nil, errs.NewObjectNotFoundError("email", email)
	}
	return rec.restore()
}
