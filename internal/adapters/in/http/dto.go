package http

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/fanout"
)

// NewOrderRequest is the body of POST /api/orders.
type NewOrderRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Address   string  `json:"address"`
	Quantity  int     `json:"quantity"`
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	MainImage string  `json:"mainImage"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type AdvanceStatusRequest struct {
	NewStatus string `json:"newStatus"`
}

type DecisionRequest struct {
	Decision string `json:"decision"`
}

type RegisterAgentRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Address       string `json:"address"`
	Vehicle       string `json:"vehicle"`
	LicenseNumber string `json:"licenseNumber"`
}

type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// OrderResponse is the REST form of an order: the fanout payload plus the
// resolved agent name.
type OrderResponse struct {
	fanout.OrderPayload
	AssignedAgentName string `json:"assignedAgentName,omitempty"`
}

type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	ID        *kernel.UUID `json:"id,omitempty"`
}

type RegisterAgentResponse struct {
	ID kernel.UUID `json:"id"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

func newOrderResponse(view ports.OrderView) OrderResponse {
	return OrderResponse{
		OrderPayload:      fanout.NewOrderPayload(view.Snapshot),
		AssignedAgentName: view.AssignedAgentName,
	}
}

func newOrderResponses(views []ports.OrderView) []OrderResponse {
	response := make([]OrderResponse, len(views))
	for i, view := range views {
		response[i] = newOrderResponse(view)
	}
	return response
}
