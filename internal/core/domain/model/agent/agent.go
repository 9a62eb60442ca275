package agent

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

// Domain errors for delivery agent operations.
var (
	// ErrAgentIsNotConstructed is returned when using an improperly initialized Agent.
	ErrAgentIsNotConstructed = errors.New("Agent must be created via NewAgent or RestoreAgent")
	// ErrEmailAlreadyRegistered is returned when a second agent registers with a taken email.
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	// ErrInvalidCredentials is returned by login when email or password do not match.
	ErrInvalidCredentials = errs.NewUnauthorizedError("invalid email or password")
)

// Agent is a delivery agent account. Orders reference agents by id only.
//
// Business rules:
//   - name, email, password hash, address, vehicle and license number are required
//   - email is normalized to lower case and must be unique across agents
//   - the password is never stored, only its hash
type Agent struct {
	id            kernel.UUID
	name          string
	email         string
	passwordHash  string
	address       string
	vehicle       string
	licenseNumber string
	createdAt     time.Time
	guard         guard.ConstructorGuard
}

// Profile holds the self-declared data of an agent.
type Profile struct {
	Name          string
	Email         string
	Address       string
	Vehicle       string
	LicenseNumber string
}

// NewAgent registers a new delivery agent with an already hashed password.
//
// Example:
//
//	hash, _ := hasher.Hash(password)
//	a, err := agent.NewAgent(kernel.NewUUID(), agent.Profile{Name: "Sam", Email: "sam@example.com",
//	    Address: "Depot 1", Vehicle: "Bike", LicenseNumber: "L-1"}, hash, time.Now())
func NewAgent(id kernel.UUID, profile Profile, passwordHash string, now time.Time) (*Agent, error) {
	a := &Agent{
		guard:     guard.NewConstructorGuard(),
		createdAt: now.UTC(),
	}

	if err := errors.Join(
		a.setID(id),
		a.setProfile(profile),
		a.setPasswordHash(passwordHash),
	); err != nil {
		return nil, err
	}
	return a, nil
}

// RestoreAgent rebuilds an agent from storage.
func RestoreAgent(id kernel.UUID, profile Profile, passwordHash string, createdAt time.Time) (*Agent, error) {
	return NewAgent(id, profile, passwordHash, createdAt)
}

// Validate checks that the agent was built by a constructor.
func (a *Agent) Validate() error {
	if a == nil {
		return ErrAgentIsNotConstructed
	}
	return a.guard.Validate(ErrAgentIsNotConstructed)
}

func (a *Agent) ID() kernel.UUID      { return a.id }
func (a *Agent) Name() string         { return a.name }
func (a *Agent) Email() string        { return a.email }
func (a *Agent) PasswordHash() string { return a.passwordHash }
func (a *Agent) CreatedAt() time.Time { return a.createdAt }

// Profile returns the self-declared data of the agent.
func (a *Agent) Profile() Profile {
	return Profile{
		Name:          a.name,
		Email:         a.email,
		Address:       a.address,
		Vehicle:       a.vehicle,
		LicenseNumber: a.licenseNumber,
	}
}

// NormalizeEmail is the canonical form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (a *Agent) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *Agent) setProfile(p Profile) error {
	a.name = strings.TrimSpace(p.Name)
	a.email = NormalizeEmail(p.Email)
	a.address = strings.TrimSpace(p.Address)
	a.vehicle = strings.TrimSpace(p.Vehicle)
	a.licenseNumber = strings.TrimSpace(p.LicenseNumber)

	var emailErr error
	if a.email == "" {
		emailErr = errs.NewValueIsRequiredError("email")
	} else if _, err := mail.ParseAddress(a.email); err != nil {
		emailErr = errs.NewValueIsInvalidErrorWithCause("email", err)
	}

	return errors.Join(
		requireField("name", a.name),
		emailErr,
		requireField("address", a.address),
		requireField("vehicle", a.vehicle),
		requireField("licenseNumber", a.licenseNumber),
	)
}

func (a *Agent) setPasswordHash(hash string) error {
	if hash == "" {
		return errs.NewValueIsRequiredErrorWithCause("password", fmt.Errorf("password hash is empty"))
	}
	a.passwordHash = hash
	return nil
}

func requireField(name, value string) error {
	if value == "" {
		return errs.NewValueIsRequiredError(name)
	}
	return nil
}
