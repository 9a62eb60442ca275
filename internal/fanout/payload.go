package fanout

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// Kind is the client-facing event name.
type Kind string

const (
	KindNewOrder                Kind = "newOrder"
	KindOrderUpdated            Kind = "orderUpdated"
	KindDeliveryRequest         Kind = "deliveryRequest"
	KindRequestSent             Kind = "requestSent"
	KindDeliveryRequestResponse Kind = "deliveryRequestResponse"
	KindRequestDisplaced        Kind = "requestDisplaced"
)

// OrderPayload is the order as carried by newOrder and orderUpdated.
type OrderPayload struct {
	ID              kernel.UUID            `json:"id"`
	Customer        CustomerPayload        `json:"customer"`
	Product         ProductPayload         `json:"product"`
	Status          order.Status           `json:"status"`
	AssignedAgent   *kernel.UUID           `json:"assignedAgent"`
	DeliveryRequest DeliveryRequestPayload `json:"deliveryRequest"`
	Version         int64                  `json:"version"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

type CustomerPayload struct {
	ID       *kernel.UUID `json:"id,omitempty"`
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Address  string       `json:"address"`
	Quantity int          `json:"quantity"`
}

type ProductPayload struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image,omitempty"`
}

type DeliveryRequestPayload struct {
	Agent  *kernel.UUID        `json:"agent"`
	Status order.RequestStatus `json:"status"`
}

// NewOrderPayload maps an order snapshot to its wire form.
func NewOrderPayload(s order.Snapshot) OrderPayload {
	return OrderPayload{
		ID: s.ID,
		Customer: CustomerPayload{
			ID:       s.CustomerID,
			Name:     s.CustomerName,
			Email:    s.CustomerEmail,
			Address:  s.CustomerAddress,
			Quantity: s.Quantity,
		},
		Product: ProductPayload{
			ID:    s.ProductID,
			Title: s.ProductTitle,
			Price: s.ProductPrice,
			Image: s.ProductImage,
		},
		Status:          s.Status,
		AssignedAgent:   s.AssignedAgent,
		DeliveryRequest: DeliveryRequestPayload{Agent: s.RequestAgent, Status: s.RequestStatus},
		Version:         s.Version,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// DeliveryRequestNotice is the public deliveryRequest payload.
type DeliveryRequestNotice struct {
	OrderID kernel.UUID         `json:"orderId"`
	AgentID kernel.UUID         `json:"agentId"`
	Status  order.RequestStatus `json:"status"`
}

// RequestSentNotice confirms a request to the requesting agent.
type RequestSentNotice struct {
	OrderID kernel.UUID `json:"orderId"`
}

// DecisionNotice is the deliveryRequestResponse payload.
type DecisionNotice struct {
	OrderID  kernel.UUID         `json:"orderId"`
	Decision order.RequestStatus `json:"decision"`
}

// DisplacedNotice tells an agent that another agent's request replaced theirs.
type DisplacedNotice struct {
	OrderID kernel.UUID `json:"orderId"`
	AgentID kernel.UUID `json:"agentId"`
}
