package order

import (
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions under agent authority are strictly forward-only:
//
//	Pending ──> Accepted ──> OutForDelivery ──> Delivered
//
// Skipping forward is allowed, moving to an earlier or equal state is not.
// The admin override bypasses ordering entirely (see Order.OverrideStatus).
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Pending is the initial status: the order waits for a delivery agent.
	Pending

	// Accepted means a delivery agent took the order.
	Accepted

	// OutForDelivery means the agent is on the way to the customer.
	OutForDelivery

	// Delivered is the terminal status.
	Delivered
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "Unknown",
		Pending:        "Pending",
		Accepted:       "Accepted",
		OutForDelivery: "OutForDelivery",
		Delivered:      "Delivered",
	}
}

// Lifecycle returns the four valid statuses in lifecycle order.
func Lifecycle() []Status {
	return []Status{Pending, Accepted, OutForDelivery, Delivered}
}

// ParseStatus converts a wire name into a Status. Matching ignores case and
// whitespace, so the storefront spelling "Out for Delivery" is accepted too.
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.Join(strings.Fields(s), ""))
	for status, name := range getStatusStrings() {
		if status != Unknown && strings.ToLower(name) == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause(
		"status",
		fmt.Errorf("%q is not a valid status", s),
	)
}

// Validate checks if the Status value is one of the four lifecycle states.
func (s Status) Validate() error {
	if s < Pending || s > Delivered {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire name of the status, "Unknown" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether no forward transition exists from s.
func (s Status) IsTerminal() bool {
	return s == Delivered
}

// Advance returns target if it lies strictly after s in the lifecycle.
//
// Returns:
//   - (target, nil) on a forward move
//   - (Unknown, ErrInvalidTransition) if target is invalid, equal to s or earlier than s
func (s Status) Advance(target Status) (Status, error) {
	if err := target.Validate(); err != nil {
		return Unknown, fmt.Errorf("%w: %s is not part of the delivery lifecycle", ErrInvalidTransition, target)
	}
	if target <= s {
		return Unknown, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, target)
	}
	return target, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(data []byte) error {
	parsed, err := ParseStatus(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
