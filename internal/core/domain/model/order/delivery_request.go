package order

import (
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// RequestStatus is the state of the delivery-request negotiation:
//
//	None ──> Pending ──┬──> Approved
//	                   └──> Rejected
type RequestStatus int

const (
	// RequestNone means no agent has asked for the order.
	RequestNone RequestStatus = iota

	// RequestPending means an agent asked and the admin has not decided yet.
	RequestPending

	// RequestApproved means the requesting agent got the order.
	RequestApproved

	// RequestRejected means the admin turned the request down.
	RequestRejected
)

func getRequestStatusStrings() map[RequestStatus]string {
	return map[RequestStatus]string{
		RequestNone:     "None",
		RequestPending:  "Pending",
		RequestApproved: "Approved",
		RequestRejected: "Rejected",
	}
}

// String returns the wire name of the request status.
func (s RequestStatus) String() string {
	if str, ok := getRequestStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// Validate checks that s is one of the four request states.
func (s RequestStatus) Validate() error {
	if _, ok := getRequestStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("deliveryRequest.status", fmt.Errorf("%d is not a valid request status", s))
	}
	return nil
}

// ParseRequestStatus converts a wire name into a RequestStatus.
func ParseRequestStatus(s string) (RequestStatus, error) {
	for status, name := range getRequestStatusStrings() {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return RequestNone, errs.NewValueIsInvalidErrorWithCause(
		"deliveryRequest.status",
		fmt.Errorf("%q is not a valid request status", s),
	)
}

// ParseDecision accepts only the two admin decisions, Approved and Rejected.
func ParseDecision(s string) (RequestStatus, error) {
	decision, err := ParseRequestStatus(s)
	if err != nil || (decision != RequestApproved && decision != RequestRejected) {
		return RequestNone, errs.NewValueIsInvalidErrorWithCause(
			"decision",
			fmt.Errorf("%q must be Approved or Rejected", s),
		)
	}
	return decision, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s RequestStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *RequestStatus) UnmarshalText(data []byte) error {
	parsed, err := ParseRequestStatus(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DeliveryRequest is the value object recording the latest negotiation between
// a delivery agent and the admin. A None request names no agent, every other
// state names exactly one.
type DeliveryRequest struct {
	agent  *kernel.UUID
	status RequestStatus
}

// NoDeliveryRequest returns the initial, empty request.
func NoDeliveryRequest() DeliveryRequest {
	return DeliveryRequest{status: RequestNone}
}

// NewDeliveryRequest validates the agent/status pairing.
func NewDeliveryRequest(agent *kernel.UUID, status RequestStatus) (DeliveryRequest, error) {
	if err := status.Validate(); err != nil {
		return DeliveryRequest{}, err
	}
	if status == RequestNone {
		if agent != nil {
			return DeliveryRequest{}, errs.NewValueIsInvalidErrorWithCause(
				"deliveryRequest.agent",
				fmt.Errorf("a %s request cannot name an agent", status),
			)
		}
		return NoDeliveryRequest(), nil
	}
	if agent == nil {
		return DeliveryRequest{}, errs.NewValueIsRequiredErrorWithCause(
			"deliveryRequest.agent",
			fmt.Errorf("a %s request must name an agent", status),
		)
	}
	if err := agent.Validate(); err != nil {
		return DeliveryRequest{}, err
	}
	id := *agent
	return DeliveryRequest{agent: &id, status: status}, nil
}

// Agent returns the requesting agent, nil for a None request.
func (r DeliveryRequest) Agent() *kernel.UUID {
	if r.agent == nil {
		return nil
	}
	id := *r.agent
	return &id
}

// Status returns the negotiation state.
func (r DeliveryRequest) Status() RequestStatus {
	return r.status
}

// IsPending reports whether the admin still has to decide.
func (r DeliveryRequest) IsPending() bool {
	return r.status == RequestPending
}

func (r DeliveryRequest) withStatus(status RequestStatus) DeliveryRequest {
	return DeliveryRequest{agent: r.agent, status: status}
}

func requestFrom(agent kernel.UUID, status RequestStatus) DeliveryRequest {
	return DeliveryRequest{agent: &agent, status: status}
}
