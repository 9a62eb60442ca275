package commands

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"fulfillment/internal/core/domain/model/agent"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const minPasswordLength = 6

var (
	ErrRegisterAgentCommandIsNotConstructed = errors.New(
		"RegisterAgentCommand must be created via NewRegisterAgentCommand constructor",
	)
)

// RegisterAgentCommand signs up a new delivery agent.
type RegisterAgentCommand struct { //nolint:recvcheck //using for validation
	profile  agent.Profile
	password string

	guard guard.ConstructorGuard
}

// NewRegisterAgentCommand checks the password length; the profile is validated
// by the agent aggregate.
func NewRegisterAgentCommand(profile agent.Profile, password string) (RegisterAgentCommand, error) {
	cmd := RegisterAgentCommand{
		profile: profile,
		guard:   guard.NewConstructorGuard(),
	}
	if err := cmd.setPassword(password); err != nil {
		return RegisterAgentCommand{}, err
	}
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RegisterAgentCommand) Validate() error {
	return c.guard.Validate(ErrRegisterAgentCommandIsNotConstructed)
}

func (c RegisterAgentCommand) Profile() agent.Profile { return c.profile }
func (c RegisterAgentCommand) Password() string       { return c.password }

func (c *RegisterAgentCommand) setPassword(password string) error {
	if password == "" {
		return errs.NewValueIsRequiredError("password")
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return errs.NewValueIsInvalidErrorWithCause(
			"password",
			fmt.Errorf("must be at least %d characters", minPasswordLength),
		)
	}
	c.password = password
	return nil
}
