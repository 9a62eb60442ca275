package commands

import (
	"context"
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/agent"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// RegisterAgentCommandHandler creates delivery agent accounts. Emails are unique;
// a second registration returns agent.ErrEmailAlreadyRegistered.
type RegisterAgentCommandHandler struct {
	uowFactory AgentUoWFactory
	hasher     ports.PasswordHasher
}

// NewRegisterAgentCommandHandler creates the handler.
func NewRegisterAgentCommandHandler(uowFactory AgentUoWFactory, hasher ports.PasswordHasher) RegisterAgentCommandHandler {
	return RegisterAgentCommandHandler{
		uowFactory: uowFactory,
		hasher:     hasher,
	}
}

// Handle hashes the password and stores the agent, returning its id.
func (h RegisterAgentCommandHandler) Handle(ctx context.Context, cmd RegisterAgentCommand) (kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	hash, err := h.hasher.Hash(cmd.Password())
	if err != nil {
		return kernel.UUID{}, err
	}

	a, err := agent.NewAgent(kernel.NewUUID(), cmd.Profile(), hash, time.Now())
	if err != nil {
		return kernel.UUID{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.AgentRepository()
	_, err = repo.GetByEmail(ctx, a.Email())
	switch {
	case err == nil:
		return kernel.UUID{}, agent.ErrEmailAlreadyRegistered
	case !errors.Is(err, errs.ErrObjectNotFound):
		return kernel.UUID{}, err
	}

	if err = repo.Add(ctx, a); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	return a.ID(), nil
}
