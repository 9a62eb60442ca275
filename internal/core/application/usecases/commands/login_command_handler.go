package commands

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/agent"
	"fulfillment/internal/core/domain/model/identity"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// LoginResult is the bearer credential handed back to a client.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	// AgentID is set for agent logins.
	AgentID *kernel.UUID
}

// AgentLoginCommandHandler checks agent credentials and issues an agent token.
// Unknown emails and wrong passwords both yield agent.ErrInvalidCredentials.
type AgentLoginCommandHandler struct {
	uowFactory AgentUoWFactory
	hasher     ports.PasswordHasher
	issuer     ports.TokenIssuer
}

// NewAgentLoginCommandHandler creates the handler.
func NewAgentLoginCommandHandler(uowFactory AgentUoWFactory, hasher ports.PasswordHasher, issuer ports.TokenIssuer) AgentLoginCommandHandler {
	return AgentLoginCommandHandler{uowFactory: uowFactory, hasher: hasher, issuer: issuer}
}

// Handle returns a token for the agent behind the credentials.
func (h AgentLoginCommandHandler) Handle(ctx context.Context, cmd LoginCommand) (LoginResult, error) {
	if err := cmd.Validate(); err != nil {
		return LoginResult{}, err
	}

	a, err := h.uowFactory.Create().AgentRepository().GetByEmail(ctx, agent.NormalizeEmail(cmd.Email()))
	if errors.Is(err, errs.ErrObjectNotFound) {
		return LoginResult{}, agent.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}

	if err = h.hasher.Compare(a.PasswordHash(), cmd.Password()); err != nil {
		return LoginResult{}, agent.ErrInvalidCredentials
	}

	token, expiresAt, err := h.issuer.Issue(identity.Agent{ID: a.ID()})
	if err != nil {
		return LoginResult{}, err
	}

	id := a.ID()
	return LoginResult{Token: token, ExpiresAt: expiresAt, AgentID: &id}, nil
}

// AdminCredentials are the configured credentials of the single admin account.
type AdminCredentials struct {
	Email    string
	Password string
}

// AdminLoginCommandHandler checks the configured admin credentials and issues an
// admin token.
type AdminLoginCommandHandler struct {
	credentials AdminCredentials
	issuer      ports.TokenIssuer
}

// NewAdminLoginCommandHandler creates the handler.
func NewAdminLoginCommandHandler(credentials AdminCredentials, issuer ports.TokenIssuer) AdminLoginCommandHandler {
	return AdminLoginCommandHandler{credentials: credentials, issuer: issuer}
}

// Handle returns an admin token for matching credentials.
func (h AdminLoginCommandHandler) Handle(_ context.Context, cmd LoginCommand) (LoginResult, error) {
	if err := cmd.Validate(); err != nil {
		return LoginResult{}, err
	}

	if h.credentials.Email == "" || h.credentials.Password == "" {
		return LoginResult{}, errs.NewUnauthorizedError("admin login is disabled")
	}

	emailOK := strings.EqualFold(strings.TrimSpace(h.credentials.Email), cmd.Email())
	passwordOK := subtle.ConstantTimeCompare([]byte(h.credentials.Password), []byte(cmd.Password())) == 1
	if !emailOK || !passwordOK {
		return LoginResult{}, errs.NewUnauthorizedError("invalid email or password")
	}

	token, expiresAt, err := h.issuer.Issue(identity.Admin{})
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: expiresAt}, nil
}
